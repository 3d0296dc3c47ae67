package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"pondy/classifieds/internal/apperr"
	"pondy/classifieds/internal/config"
	"pondy/classifieds/internal/models"
	"pondy/classifieds/internal/utils"
)

// recordingDispatcher captures dispatched events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []models.NotificationEvent
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, event models.NotificationEvent) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) all() []models.NotificationEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.NotificationEvent{}, d.events...)
}

func setupEngagementTest(t *testing.T, dbName string) (*mongo.Database, IEngagementService, *recordingDispatcher, *models.Listing) {
	db := utils.SetupTestDB(t, dbName, "listings", "counters")
	cfg := &config.Config{}
	dispatcher := &recordingDispatcher{}
	svc := NewEngagementService(db, cfg, dispatcher)

	listingSvc := NewListingService(db, cfg)
	listing, err := listingSvc.CreateListing(context.Background(), fullIntake("9000000001"))
	require.NoError(t, err)
	listing, err = listingSvc.Approve(context.Background(), listing.PpcID)
	require.NoError(t, err)

	return db, svc, dispatcher, listing
}

func TestEngagementService_AddIsIdempotentAcrossVariants(t *testing.T) {
	_, svc, dispatcher, listing := setupEngagementTest(t, "testdb_engagement_add_idempotent")
	ctx := context.Background()

	updated, err := svc.Add(ctx, listing.PpcID, models.CategoryInterest, "+919123456789", models.EngagementPayload{})
	assert.NoError(t, err)
	assert.Equal(t, models.StatusSendInterest, updated.Status)
	require.Len(t, updated.Interest, 1)
	assert.Equal(t, "9123456789", updated.Interest[0].PhoneNumber)

	// The same actor under a different legacy format must be rejected with
	// the numbers already present.
	_, err = svc.Add(ctx, listing.PpcID, models.CategoryInterest, "919123456789", models.EngagementPayload{})
	assert.Error(t, err)
	appErr := apperr.From(err)
	assert.Equal(t, apperr.CodeDuplicateAction, appErr.Code)
	assert.Equal(t, []string{"9123456789"}, appErr.ReportedNumbers)

	// Only the successful add fired a notification, addressed to the owner.
	events := dispatcher.all()
	require.Len(t, events, 1)
	assert.Equal(t, "9000000001", events[0].RecipientPhone)
	assert.Equal(t, "9123456789", events[0].SenderPhone)
	assert.Equal(t, listing.PpcID, events[0].PpcID)
	assert.NotEmpty(t, events[0].NotificationID)
}

func TestEngagementService_AddValidatesReasonEnums(t *testing.T) {
	_, svc, _, listing := setupEngagementTest(t, "testdb_engagement_add_enums")
	ctx := context.Background()

	_, err := svc.Add(ctx, listing.PpcID, models.CategoryReport, "9123456789",
		models.EngagementPayload{ReasonCode: "Bad Vibes"})
	assert.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidEnumValue, apperr.From(err).Code)

	_, err = svc.Add(ctx, listing.PpcID, models.CategoryHelp, "9123456789",
		models.EngagementPayload{SelectHelpReason: "Telepathy"})
	assert.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidEnumValue, apperr.From(err).Code)

	// Valid reasons are stored on the entry.
	updated, err := svc.Add(ctx, listing.PpcID, models.CategoryReport, "9123456789",
		models.EngagementPayload{ReasonCode: "Already Sold", FreeText: "owner confirmed"})
	assert.NoError(t, err)
	require.Len(t, updated.Report, 1)
	assert.Equal(t, "Already Sold", updated.Report[0].ReasonCode)
	assert.Equal(t, "owner confirmed", updated.Report[0].FreeText)
	assert.Equal(t, models.StatusReport, updated.Status)
}

func TestEngagementService_RemoveEmptyingInterestDeletesListing(t *testing.T) {
	_, svc, _, listing := setupEngagementTest(t, "testdb_engagement_remove_interest")
	ctx := context.Background()

	_, err := svc.Add(ctx, listing.PpcID, models.CategoryInterest, "9123456789", models.EngagementPayload{})
	require.NoError(t, err)

	// Removing the only entry empties the log: listing goes to delete and
	// the pre-removal status is kept for undo.
	removed, err := svc.Remove(ctx, listing.PpcID, models.CategoryInterest, "+919123456789")
	assert.NoError(t, err)
	assert.Empty(t, removed.Interest)
	assert.Equal(t, models.StatusDelete, removed.Status)
	if assert.NotNil(t, removed.PreviousStatus) {
		assert.Equal(t, models.StatusSendInterest, *removed.PreviousStatus)
	}
	require.Len(t, removed.InterestRemoved, 1)

	// Undo restores membership and status, and clears the undo buffer.
	restored, err := svc.UndoRemove(ctx, listing.PpcID, models.CategoryInterest, "9123456789")
	assert.NoError(t, err)
	require.Len(t, restored.Interest, 1)
	assert.Equal(t, "9123456789", restored.Interest[0].PhoneNumber)
	assert.Empty(t, restored.InterestRemoved)
	assert.Equal(t, models.StatusSendInterest, restored.Status)
	assert.Nil(t, restored.PreviousStatus)
}

func TestEngagementService_RemoveKeepsOtherActors(t *testing.T) {
	_, svc, _, listing := setupEngagementTest(t, "testdb_engagement_remove_partial")
	ctx := context.Background()

	_, err := svc.Add(ctx, listing.PpcID, models.CategoryInterest, "9123456789", models.EngagementPayload{})
	require.NoError(t, err)
	_, err = svc.Add(ctx, listing.PpcID, models.CategoryInterest, "9123456780", models.EngagementPayload{})
	require.NoError(t, err)

	removed, err := svc.Remove(ctx, listing.PpcID, models.CategoryInterest, "9123456789")
	assert.NoError(t, err)
	require.Len(t, removed.Interest, 1)
	assert.Equal(t, "9123456780", removed.Interest[0].PhoneNumber)
	// Log is not empty, so no lifecycle transition happens.
	assert.Equal(t, models.StatusSendInterest, removed.Status)
	assert.Nil(t, removed.PreviousStatus)

	// Undo of a non-emptying removal restores the entry without touching status.
	restored, err := svc.UndoRemove(ctx, listing.PpcID, models.CategoryInterest, "9123456789")
	assert.NoError(t, err)
	assert.Len(t, restored.Interest, 2)
	assert.Equal(t, models.StatusSendInterest, restored.Status)
}

func TestEngagementService_UndoAfterPartialRemoveKeepsOwnerUndoBuffer(t *testing.T) {
	db, svc, _, listing := setupEngagementTest(t, "testdb_engagement_undo_partial_buffer")
	listingSvc := NewListingService(db, &config.Config{})
	ctx := context.Background()

	_, err := svc.Add(ctx, listing.PpcID, models.CategoryInterest, "9123456789", models.EngagementPayload{})
	require.NoError(t, err)
	_, err = svc.Add(ctx, listing.PpcID, models.CategoryInterest, "9123456780", models.EngagementPayload{})
	require.NoError(t, err)

	// Owner soft delete stashes sendInterest for their own undo.
	deleted, err := listingSvc.SoftDelete(ctx, listing.PpcID)
	require.NoError(t, err)
	require.Equal(t, models.StatusDelete, deleted.Status)
	require.NotNil(t, deleted.PreviousStatus)
	require.Equal(t, models.StatusSendInterest, *deleted.PreviousStatus)

	// A non-emptying removal never changed status, so its undo must not
	// consume the owner's stashed status either.
	removed, err := svc.Remove(ctx, listing.PpcID, models.CategoryInterest, "9123456789")
	assert.NoError(t, err)
	require.Len(t, removed.Interest, 1)
	assert.Equal(t, models.StatusDelete, removed.Status)

	restored, err := svc.UndoRemove(ctx, listing.PpcID, models.CategoryInterest, "9123456789")
	assert.NoError(t, err)
	assert.Len(t, restored.Interest, 2)
	assert.Equal(t, models.StatusDelete, restored.Status)
	if assert.NotNil(t, restored.PreviousStatus) {
		assert.Equal(t, models.StatusSendInterest, *restored.PreviousStatus)
	}

	// The owner's undo still works afterwards.
	undone, err := listingSvc.Undo(ctx, listing.PpcID)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusSendInterest, undone.Status)
	assert.Nil(t, undone.PreviousStatus)
}

func TestEngagementService_RemoveEmptyingContactRestores(t *testing.T) {
	_, svc, _, listing := setupEngagementTest(t, "testdb_engagement_remove_contact")
	ctx := context.Background()

	_, err := svc.Add(ctx, listing.PpcID, models.CategoryContact, "9123456789", models.EngagementPayload{})
	require.NoError(t, err)

	// No previous status was captured on add, so emptying the contact log
	// falls back to active.
	removed, err := svc.Remove(ctx, listing.PpcID, models.CategoryContact, "9123456789")
	assert.NoError(t, err)
	assert.Empty(t, removed.Contact)
	assert.Equal(t, models.StatusActive, removed.Status)
	assert.Nil(t, removed.PreviousStatus)
}

func TestEngagementService_FavoriteLifecycle(t *testing.T) {
	_, svc, _, listing := setupEngagementTest(t, "testdb_engagement_favorite")
	ctx := context.Background()

	updated, err := svc.Add(ctx, listing.PpcID, models.CategoryFavorite, "9123456789", models.EngagementPayload{})
	assert.NoError(t, err)
	assert.Equal(t, models.StatusFavorite, updated.Status)

	// A duplicate save answers alreadySaved, not a generic duplicate message.
	_, err = svc.Add(ctx, listing.PpcID, models.CategoryFavorite, "+919123456789", models.EngagementPayload{})
	assert.Error(t, err)
	appErr := apperr.From(err)
	assert.Equal(t, apperr.CodeDuplicateAction, appErr.Code)
	assert.Equal(t, string(models.StatusAlreadySaved), appErr.Message)

	removed, err := svc.Remove(ctx, listing.PpcID, models.CategoryFavorite, "9123456789")
	assert.NoError(t, err)
	assert.Empty(t, removed.FavoriteAdded)
	assert.Equal(t, models.StatusFavoriteRemoved, removed.Status)

	restored, err := svc.UndoRemove(ctx, listing.PpcID, models.CategoryFavorite, "9123456789")
	assert.NoError(t, err)
	require.Len(t, restored.FavoriteAdded, 1)
	assert.Equal(t, models.StatusFavorite, restored.Status)
}

func TestEngagementService_RemoveMissingEntry(t *testing.T) {
	_, svc, _, listing := setupEngagementTest(t, "testdb_engagement_remove_missing")
	ctx := context.Background()

	_, err := svc.Remove(ctx, listing.PpcID, models.CategoryInterest, "9123456789")
	assert.Error(t, err)
	assert.Equal(t, apperr.CodeNotFound, apperr.From(err).Code)

	_, err = svc.Remove(ctx, 999999, models.CategoryInterest, "9123456789")
	assert.Error(t, err)
	assert.Equal(t, apperr.CodeNotFound, apperr.From(err).Code)
}

func TestEngagementService_UndoWithoutRemoval(t *testing.T) {
	_, svc, _, listing := setupEngagementTest(t, "testdb_engagement_undo_nothing")
	ctx := context.Background()

	_, err := svc.UndoRemove(ctx, listing.PpcID, models.CategoryInterest, "9123456789")
	assert.Error(t, err)
	assert.Equal(t, apperr.CodeNoUndoAvailable, apperr.From(err).Code)
}

func TestEngagementService_InvalidCategory(t *testing.T) {
	_, svc, _, listing := setupEngagementTest(t, "testdb_engagement_bad_category")
	ctx := context.Background()

	_, err := svc.Add(ctx, listing.PpcID, models.Category("likes"), "9123456789", models.EngagementPayload{})
	assert.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidEnumValue, apperr.From(err).Code)
}
