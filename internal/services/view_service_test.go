package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"pondy/classifieds/internal/apperr"
	"pondy/classifieds/internal/config"
	appdb "pondy/classifieds/internal/db"
	"pondy/classifieds/internal/utils"
)

func setupViewTest(t *testing.T, dbName string) (*mongo.Database, IViewService, IListingService, *recordingDispatcher) {
	db := utils.SetupTestDB(t, dbName, "listings", "counters", "user_views", "notifications")
	// The dedup race guard relies on the unique viewerPhone index.
	require.NoError(t, appdb.EnsureIndexes(context.Background(), db))

	cfg := &config.Config{MostViewedDefaultWindowDays: 30, MostViewedLimit: 50}
	dispatcher := &recordingDispatcher{}
	return db, NewViewService(db, cfg, dispatcher), NewListingService(db, cfg), dispatcher
}

func TestViewService_RecordViewCountsEveryHit(t *testing.T) {
	_, viewSvc, listingSvc, dispatcher := setupViewTest(t, "testdb_view_record")
	ctx := context.Background()

	listing, err := listingSvc.CreateListing(ctx, fullIntake("9000000001"))
	require.NoError(t, err)

	first, err := viewSvc.RecordView(ctx, "9123456789", listing.PpcID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), first.Views)

	// A repeat view under a legacy phone format still bumps the counter.
	second, err := viewSvc.RecordView(ctx, "+919123456789", listing.PpcID)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), second.Views)

	// The history list stays deduped per (viewer, listing).
	record, err := viewSvc.History(ctx, "919123456789")
	assert.NoError(t, err)
	require.Len(t, record.Views, 1)
	assert.Equal(t, listing.PpcID, record.Views[0].PpcID)
	assert.Equal(t, "9000000001", record.Views[0].OwnerPhone)

	// Every view notifies the owner, deduped or not.
	events := dispatcher.all()
	assert.Len(t, events, 2)
	for _, event := range events {
		assert.Equal(t, "9000000001", event.RecipientPhone)
	}
}

func TestViewService_RecordViewRekeysLegacyRecord(t *testing.T) {
	db, viewSvc, listingSvc, _ := setupViewTest(t, "testdb_view_legacy_rekey")
	ctx := context.Background()

	seen, err := listingSvc.CreateListing(ctx, fullIntake("9000000001"))
	require.NoError(t, err)
	fresh, err := listingSvc.CreateListing(ctx, fullIntake("9000000002"))
	require.NoError(t, err)

	// A record written before phone canonicalization, keyed under the
	// country-code form.
	_, err = db.Collection("user_views").InsertOne(ctx, bson.M{
		"viewerPhone": "919123456789",
		"views": bson.A{bson.M{
			"ppcId":      seen.PpcID,
			"ownerPhone": "9000000001",
		}},
	})
	require.NoError(t, err)

	_, err = viewSvc.RecordView(ctx, "9123456789", fresh.PpcID)
	assert.NoError(t, err)

	// The legacy record was matched, rekeyed to the canonical phone and
	// appended to, rather than a second record being inserted.
	count, err := db.Collection("user_views").CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	count, err = db.Collection("user_views").CountDocuments(ctx, bson.M{"viewerPhone": "9123456789"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	record, err := viewSvc.History(ctx, "9123456789")
	assert.NoError(t, err)
	require.Len(t, record.Views, 2)
	assert.Equal(t, seen.PpcID, record.Views[0].PpcID)
	assert.Equal(t, fresh.PpcID, record.Views[1].PpcID)
}

func TestViewService_RecordViewMissingListing(t *testing.T) {
	_, viewSvc, _, _ := setupViewTest(t, "testdb_view_missing")

	_, err := viewSvc.RecordView(context.Background(), "9123456789", 999999)
	assert.Error(t, err)
	assert.Equal(t, apperr.CodeNotFound, apperr.From(err).Code)
}

func TestViewService_HistoryWithoutViews(t *testing.T) {
	_, viewSvc, _, _ := setupViewTest(t, "testdb_view_history_empty")

	record, err := viewSvc.History(context.Background(), "9123456789")
	assert.NoError(t, err)
	assert.NotNil(t, record)
	assert.Empty(t, record.Views)
}

func TestViewService_MostViewedRanking(t *testing.T) {
	db, viewSvc, listingSvc, _ := setupViewTest(t, "testdb_view_most_viewed")
	ctx := context.Background()

	popular, err := listingSvc.CreateListing(ctx, fullIntake("9000000001"))
	require.NoError(t, err)
	quiet, err := listingSvc.CreateListing(ctx, fullIntake("9000000002"))
	require.NoError(t, err)

	_, err = viewSvc.RecordView(ctx, "9123456781", popular.PpcID)
	require.NoError(t, err)
	_, err = viewSvc.RecordView(ctx, "9123456782", popular.PpcID)
	require.NoError(t, err)
	_, err = viewSvc.RecordView(ctx, "9123456781", quiet.PpcID)
	require.NoError(t, err)

	results, err := viewSvc.MostViewed(ctx, 0, ScopeAll, "")
	assert.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, popular.PpcID, results[0].PpcID)
	assert.Equal(t, int64(2), results[0].ViewCount)
	assert.Equal(t, quiet.PpcID, results[1].PpcID)
	assert.Equal(t, int64(1), results[1].ViewCount)
	assert.Equal(t, "9000000001", results[0].Listing.PhoneNumber)

	// Viewer scope only counts that viewer's events.
	scoped, err := viewSvc.MostViewed(ctx, 0, ScopeViewer, "9123456782")
	assert.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, popular.PpcID, scoped[0].PpcID)

	// Listings hard-deleted from the store drop out of the ranking.
	_, err = db.Collection("listings").UpdateOne(ctx,
		bson.M{"ppcId": quiet.PpcID},
		bson.M{"$set": bson.M{"deleted": true}})
	require.NoError(t, err)

	results, err = viewSvc.MostViewed(ctx, 0, ScopeAll, "")
	assert.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, popular.PpcID, results[0].PpcID)
}
