package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pondy/classifieds/internal/apperr"
	"pondy/classifieds/internal/config"
	"pondy/classifieds/internal/models"
	"pondy/classifieds/internal/phone"
)

// IEngagementService is the generic append-only engagement log. Every add is
// a single atomic conditional update so that two concurrent requests from the
// same actor cannot both slip past the membership check.
type IEngagementService interface {
	Add(ctx context.Context, ppcID int64, category models.Category, actorPhone string, payload models.EngagementPayload) (*models.Listing, error)
	Remove(ctx context.Context, ppcID int64, category models.Category, actorPhone string) (*models.Listing, error)
	UndoRemove(ctx context.Context, ppcID int64, category models.Category, actorPhone string) (*models.Listing, error)
}

type emptinessPolicy int

const (
	// policyDelete flips status to delete when the log empties (interest, help).
	policyDelete emptinessPolicy = iota
	// policyRestore falls back to previousStatus, or active when none was
	// captured (contact, report, soldOut). The source endpoints disagreed on
	// this; the rule here is applied uniformly.
	policyRestore
	// policyFavorite flips status to favoriteRemoved when the log empties.
	policyFavorite
)

// categorySpec binds an engagement category to its document fields and
// lifecycle labels.
type categorySpec struct {
	field        string // live log array
	removedField string // stash backing one-step undo
	addedStatus  models.Status
	policy       emptinessPolicy
}

var categorySpecs = map[models.Category]categorySpec{
	models.CategoryInterest: {"interest", "interestRemoved", models.StatusSendInterest, policyDelete},
	models.CategoryHelp:     {"help", "helpRemoved", models.StatusNeedHelp, policyDelete},
	models.CategoryContact:  {"contact", "contactRemoved", models.StatusContact, policyRestore},
	models.CategoryReport:   {"report", "reportRemoved", models.StatusReport, policyRestore},
	models.CategorySoldOut:  {"soldOut", "soldOutRemoved", models.StatusSoldOut, policyRestore},
	models.CategoryFavorite: {"favoriteAdded", "favoriteRemoved", models.StatusFavorite, policyFavorite},
}

// engagementService implements IEngagementService.
type engagementService struct {
	db         *mongo.Database
	cfg        *config.Config
	dispatcher IDispatcher
}

// NewEngagementService creates a new EngagementService.
func NewEngagementService(db *mongo.Database, cfg *config.Config, dispatcher IDispatcher) IEngagementService {
	return &engagementService{db: db, cfg: cfg, dispatcher: dispatcher}
}

// validatePayload rejects out-of-enum reason codes before any write.
func validatePayload(category models.Category, payload models.EngagementPayload) error {
	switch category {
	case models.CategoryReport:
		if !models.IsReportReason(payload.ReasonCode) {
			return apperr.InvalidEnum("reasonCode", payload.ReasonCode)
		}
	case models.CategoryHelp:
		if !models.IsHelpReason(payload.SelectHelpReason) {
			return apperr.InvalidEnum("selectHelpReason", payload.SelectHelpReason)
		}
	}
	return nil
}

// Add appends the actor to the category log, sets the category's terminal
// status and fires a notification to the owner. Guarded by a single
// conditional update: push only happens when no variant of the actor's phone
// is already present.
func (s *engagementService) Add(ctx context.Context, ppcID int64, category models.Category, actorPhone string, payload models.EngagementPayload) (*models.Listing, error) {
	spec, ok := categorySpecs[category]
	if !ok {
		return nil, apperr.InvalidEnum("category", string(category))
	}
	if err := validatePayload(category, payload); err != nil {
		return nil, err
	}
	canon, err := phone.Canonicalize(actorPhone)
	if err != nil {
		return nil, err
	}
	variants, _ := phone.Variants(canon)

	now := time.Now().UTC()
	entry := models.EngagementEntry{
		PhoneNumber:      canon,
		Date:             now,
		SelectHelpReason: payload.SelectHelpReason,
		Comment:          payload.Comment,
		ReasonCode:       payload.ReasonCode,
		FreeText:         payload.FreeText,
	}

	filter := bson.M{
		"ppcId":   ppcID,
		"deleted": bson.M{"$ne": true},
		spec.field + ".phoneNumber": bson.M{"$nin": variants},
	}
	update := bson.M{
		"$push": bson.M{spec.field: entry},
		"$set":  bson.M{"status": spec.addedStatus, "updatedAt": now},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Listing
	err = s.db.Collection(listingsCollection).FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, s.resolveAddConflict(ctx, ppcID, category)
		}
		return nil, apperr.Internal(fmt.Errorf("failed to add %s for listing %d: %w", category, ppcID, err))
	}

	dispatchBestEffort(ctx, s.dispatcher, models.NotificationEvent{
		NotificationID: uuid.NewString(),
		RecipientPhone: updated.PhoneNumber,
		SenderPhone:    canon,
		PpcID:          ppcID,
		Message:        engagementMessage(category, canon, ppcID),
	})

	return &updated, nil
}

// resolveAddConflict explains a matched-nothing add: the listing is either
// missing or the actor is already in the log. The follow-up read is only for
// error reporting, never for deciding the write.
func (s *engagementService) resolveAddConflict(ctx context.Context, ppcID int64, category models.Category) error {
	listing, err := s.findByPpcID(ctx, ppcID)
	if err != nil {
		return err
	}

	existing := listing.ActorPhones(category)
	for i, p := range existing {
		if canon, cErr := phone.Canonicalize(p); cErr == nil {
			existing[i] = canon
		}
	}
	message := fmt.Sprintf("number already present in %s for listing %d", category, ppcID)
	if category == models.CategoryFavorite {
		message = string(models.StatusAlreadySaved)
	}
	return apperr.Duplicate(message, existing)
}

// Remove moves the actor's entry into the category's removed stash and applies
// the category's emptiness policy, all in one pipeline update.
func (s *engagementService) Remove(ctx context.Context, ppcID int64, category models.Category, actorPhone string) (*models.Listing, error) {
	spec, ok := categorySpecs[category]
	if !ok {
		return nil, apperr.InvalidEnum("category", string(category))
	}
	variants, err := phone.Variants(actorPhone)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	live := "$" + spec.field
	stash := "$" + spec.removedField
	inVariants := bson.M{"$in": bson.A{"$$e.phoneNumber", variants}}
	notInVariants := bson.M{"$not": bson.A{inVariants}}
	emptied := bson.M{"$eq": bson.A{bson.M{"$size": "$" + spec.field}, 0}}

	pipeline := bson.A{
		// Split the live log into kept entries and the actor's entry, stashing
		// the latter for undo.
		bson.M{"$set": bson.M{
			spec.removedField: bson.M{"$concatArrays": bson.A{
				bson.M{"$ifNull": bson.A{stash, bson.A{}}},
				bson.M{"$filter": bson.M{"input": live, "as": "e", "cond": inVariants}},
			}},
			spec.field: bson.M{"$filter": bson.M{"input": live, "as": "e", "cond": notInVariants}},
		}},
		// Lifecycle transition by emptiness policy. previousStatus and status
		// are both computed from the pre-stage document.
		bson.M{"$set": removalStatusSet(spec, emptied, now)},
	}

	filter := bson.M{
		"ppcId":   ppcID,
		"deleted": bson.M{"$ne": true},
		spec.field + ".phoneNumber": bson.M{"$in": variants},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Listing
	err = s.db.Collection(listingsCollection).FindOneAndUpdate(ctx, filter, pipeline, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if _, findErr := s.findByPpcID(ctx, ppcID); findErr != nil {
				return nil, findErr
			}
			return nil, apperr.NotFound("no %s entry for this number on listing %d", category, ppcID)
		}
		return nil, apperr.Internal(fmt.Errorf("failed to remove %s for listing %d: %w", category, ppcID, err))
	}
	return &updated, nil
}

// removalStatusSet builds the $set stage applying a category's emptiness
// policy after the live log has been filtered.
func removalStatusSet(spec categorySpec, emptied bson.M, now time.Time) bson.M {
	keepPrevious := bson.M{"$ifNull": bson.A{"$previousStatus", "$$REMOVE"}}

	var status, previous interface{}
	switch spec.policy {
	case policyDelete:
		status = bson.M{"$cond": bson.A{emptied, models.StatusDelete, "$status"}}
		previous = bson.M{"$cond": bson.A{emptied, "$status", keepPrevious}}
	case policyFavorite:
		status = bson.M{"$cond": bson.A{emptied, models.StatusFavoriteRemoved, "$status"}}
		previous = bson.M{"$cond": bson.A{emptied, "$status", keepPrevious}}
	default: // policyRestore
		status = bson.M{"$cond": bson.A{
			emptied,
			bson.M{"$ifNull": bson.A{"$previousStatus", models.StatusActive}},
			"$status",
		}}
		previous = bson.M{"$cond": bson.A{emptied, "$$REMOVE", keepPrevious}}
	}

	return bson.M{"status": status, "previousStatus": previous, "updatedAt": now}
}

// UndoRemove restores the actor's most recently removed entry and the
// pre-removal status. The entry's timestamp is regenerated: undo guarantees
// membership restoration, not exact timestamp restoration.
func (s *engagementService) UndoRemove(ctx context.Context, ppcID int64, category models.Category, actorPhone string) (*models.Listing, error) {
	spec, ok := categorySpecs[category]
	if !ok {
		return nil, apperr.InvalidEnum("category", string(category))
	}
	canon, err := phone.Canonicalize(actorPhone)
	if err != nil {
		return nil, err
	}
	variants, _ := phone.Variants(canon)

	now := time.Now().UTC()
	live := "$" + spec.field
	stash := "$" + spec.removedField
	inVariants := bson.M{"$in": bson.A{"$$e.phoneNumber", variants}}
	notInVariants := bson.M{"$not": bson.A{inVariants}}

	pipeline := bson.A{
		bson.M{"$set": bson.M{
			"_restored": bson.M{"$last": bson.M{"$filter": bson.M{"input": stash, "as": "e", "cond": inVariants}}},
			// Whether the removal being undone was the one that emptied the
			// log (and so captured previousStatus). Evaluated before the
			// entry is put back.
			"_wasEmptied": bson.M{"$eq": bson.A{bson.M{"$size": live}, 0}},
		}},
		bson.M{"$set": bson.M{
			spec.removedField: bson.M{"$filter": bson.M{"input": stash, "as": "e", "cond": notInVariants}},
			spec.field: bson.M{"$concatArrays": bson.A{
				live,
				bson.A{bson.M{"$mergeObjects": bson.A{
					"$_restored",
					bson.M{"phoneNumber": canon, "date": now},
				}}},
			}},
		}},
		// Only an emptying removal changed status, so only its undo rolls
		// status back and consumes previousStatus. A previousStatus captured
		// by someone else (the owner's soft delete) stays untouched.
		bson.M{"$set": bson.M{
			"status": bson.M{"$cond": bson.A{
				"$_wasEmptied",
				bson.M{"$ifNull": bson.A{"$previousStatus", "$status"}},
				"$status",
			}},
			"previousStatus": bson.M{"$cond": bson.A{
				"$_wasEmptied",
				"$$REMOVE",
				bson.M{"$ifNull": bson.A{"$previousStatus", "$$REMOVE"}},
			}},
			"updatedAt": now,
		}},
		bson.M{"$unset": bson.A{"_restored", "_wasEmptied"}},
	}

	filter := bson.M{
		"ppcId":   ppcID,
		"deleted": bson.M{"$ne": true},
		spec.removedField + ".phoneNumber": bson.M{"$in": variants},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Listing
	err = s.db.Collection(listingsCollection).FindOneAndUpdate(ctx, filter, pipeline, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.Internal(fmt.Errorf("failed to undo %s removal for listing %d: %w", category, ppcID, err))
	}

	// Matched nothing: either the listing is gone or nothing was removed.
	if _, findErr := s.findByPpcID(ctx, ppcID); findErr != nil {
		return nil, findErr
	}
	return nil, apperr.NoUndo(ppcID)
}

func (s *engagementService) findByPpcID(ctx context.Context, ppcID int64) (*models.Listing, error) {
	var listing models.Listing
	filter := bson.M{"ppcId": ppcID, "deleted": bson.M{"$ne": true}}
	err := s.db.Collection(listingsCollection).FindOne(ctx, filter).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("listing %d not found", ppcID)
		}
		return nil, apperr.Internal(fmt.Errorf("error finding listing %d: %w", ppcID, err))
	}
	return &listing, nil
}

func engagementMessage(category models.Category, actorPhone string, ppcID int64) string {
	switch category {
	case models.CategoryInterest:
		return fmt.Sprintf("%s showed interest in your property PPC-%d", actorPhone, ppcID)
	case models.CategoryHelp:
		return fmt.Sprintf("%s requested help on your property PPC-%d", actorPhone, ppcID)
	case models.CategoryContact:
		return fmt.Sprintf("%s requested your contact for property PPC-%d", actorPhone, ppcID)
	case models.CategoryReport:
		return fmt.Sprintf("Your property PPC-%d was reported by %s", ppcID, actorPhone)
	case models.CategorySoldOut:
		return fmt.Sprintf("%s marked your property PPC-%d as sold out", actorPhone, ppcID)
	case models.CategoryFavorite:
		return fmt.Sprintf("%s saved your property PPC-%d", actorPhone, ppcID)
	}
	return fmt.Sprintf("New activity on your property PPC-%d", ppcID)
}
