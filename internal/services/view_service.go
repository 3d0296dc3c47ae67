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
	"pondy/classifieds/internal/db"
	"pondy/classifieds/internal/models"
	"pondy/classifieds/internal/phone"
)

// MostViewedScope selects whose view events a ranking aggregates.
type MostViewedScope string

const (
	ScopeAll    MostViewedScope = "all"
	ScopeViewer MostViewedScope = "viewer"
)

// IViewService records per-viewer view events and answers time-windowed
// most-viewed queries. The viewer's list is deduped per (viewer, ppcId); the
// listing's raw views counter increments on every call regardless.
type IViewService interface {
	RecordView(ctx context.Context, viewerPhone string, ppcID int64) (*models.Listing, error)
	History(ctx context.Context, viewerPhone string) (*models.ViewRecord, error)
	MostViewed(ctx context.Context, windowDays int, scope MostViewedScope, viewerPhone string) ([]models.MostViewedListing, error)
}

const viewsCollection = "user_views"

// viewService implements IViewService.
type viewService struct {
	db         *mongo.Database
	cfg        *config.Config
	dispatcher IDispatcher
}

// NewViewService creates a new ViewService.
func NewViewService(db *mongo.Database, cfg *config.Config, dispatcher IDispatcher) IViewService {
	return &viewService{db: db, cfg: cfg, dispatcher: dispatcher}
}

// RecordView bumps the listing's raw counter and appends to the viewer's
// deduped history. The counter measures hits; the list answers "what has this
// user looked at" for history UIs, so the two deliberately diverge.
func (s *viewService) RecordView(ctx context.Context, viewerPhone string, ppcID int64) (*models.Listing, error) {
	canon, err := phone.Canonicalize(viewerPhone)
	if err != nil {
		return nil, err
	}
	variants, _ := phone.Variants(canon)

	now := time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var listing models.Listing
	err = s.db.Collection(listingsCollection).FindOneAndUpdate(ctx,
		bson.M{"ppcId": ppcID, "deleted": bson.M{"$ne": true}},
		bson.M{"$inc": bson.M{"views": int64(1)}, "$set": bson.M{"updatedAt": now}},
		opts,
	).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("listing %d not found", ppcID)
		}
		return nil, apperr.Internal(fmt.Errorf("failed to count view on listing %d: %w", ppcID, err))
	}

	// Deduped history append. The filter excludes records already holding this
	// ppcId; when the viewer exists with the pair recorded, the upsert trips
	// the unique viewerPhone index instead of inserting a second document.
	entry := models.ViewEntry{PpcID: ppcID, OwnerPhone: listing.PhoneNumber, ViewedAt: now}
	filter := bson.M{
		"viewerPhone": bson.M{"$in": variants},
		"views.ppcId": bson.M{"$ne": ppcID},
	}
	// $set rather than $setOnInsert so a record keyed under a legacy phone
	// format is rewritten to the canonical key the first time it matches.
	update := bson.M{
		"$push": bson.M{"views": entry},
		"$set":  bson.M{"viewerPhone": canon},
	}
	_, err = s.db.Collection(viewsCollection).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil && !db.IsMongoDuplicateKeyError(err) {
		return nil, apperr.Internal(fmt.Errorf("failed to record view history for %s: %w", canon, err))
	}

	dispatchBestEffort(ctx, s.dispatcher, models.NotificationEvent{
		NotificationID: uuid.NewString(),
		RecipientPhone: listing.PhoneNumber,
		SenderPhone:    canon,
		PpcID:          ppcID,
		Message:        fmt.Sprintf("%s viewed your property PPC-%d", canon, ppcID),
	})

	return &listing, nil
}

// History returns the viewer's deduped view list, probing legacy phone formats.
func (s *viewService) History(ctx context.Context, viewerPhone string) (*models.ViewRecord, error) {
	variants, err := phone.Variants(viewerPhone)
	if err != nil {
		return nil, err
	}

	var record models.ViewRecord
	err = s.db.Collection(viewsCollection).FindOne(ctx, bson.M{"viewerPhone": bson.M{"$in": variants}}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// No history yet is an empty list, not an error.
			return &models.ViewRecord{ViewerPhone: variants[0], Views: []models.ViewEntry{}}, nil
		}
		return nil, apperr.Internal(fmt.Errorf("failed to load view history: %w", err))
	}
	return &record, nil
}

// MostViewed ranks listings by view events inside a trailing window, most
// viewed first, ties broken by recency. Listings missing from the store are
// dropped, never null-padded.
func (s *viewService) MostViewed(ctx context.Context, windowDays int, scope MostViewedScope, viewerPhone string) ([]models.MostViewedListing, error) {
	if windowDays <= 0 {
		windowDays = s.cfg.MostViewedDefaultWindowDays
	}
	limit := s.cfg.MostViewedLimit
	if limit <= 0 {
		limit = 50
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -windowDays)

	pipeline := mongo.Pipeline{}
	if scope == ScopeViewer {
		variants, err := phone.Variants(viewerPhone)
		if err != nil {
			return nil, err
		}
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"viewerPhone": bson.M{"$in": variants}}}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$unwind", Value: "$views"}},
		bson.D{{Key: "$match", Value: bson.M{"views.viewedAt": bson.M{"$gte": cutoff}}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":          "$views.ppcId",
			"viewCount":    bson.M{"$sum": 1},
			"lastViewedAt": bson.M{"$max": "$views.viewedAt"},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "viewCount", Value: -1}, {Key: "lastViewedAt", Value: -1}}}},
		bson.D{{Key: "$limit", Value: limit}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         listingsCollection,
			"localField":   "_id",
			"foreignField": "ppcId",
			"as":           "listing",
		}}},
		// Plain $unwind drops rows whose listing no longer exists.
		bson.D{{Key: "$unwind", Value: "$listing"}},
		bson.D{{Key: "$match", Value: bson.M{"listing.deleted": bson.M{"$ne": true}}}},
	)

	cursor, err := s.db.Collection(viewsCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("most-viewed aggregation failed: %w", err))
	}
	defer cursor.Close(ctx)

	results := []models.MostViewedListing{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to decode most-viewed results: %w", err))
	}
	return results, nil
}
