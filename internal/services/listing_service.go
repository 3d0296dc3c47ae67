package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pondy/classifieds/internal/apperr"
	"pondy/classifieds/internal/config"
	"pondy/classifieds/internal/db"
	"pondy/classifieds/internal/models"
	"pondy/classifieds/internal/phone"
)

// IListingService owns the listing lifecycle: intake, field updates with
// completeness recompute, soft delete and one-step undo, moderation.
type IListingService interface {
	CreateListing(ctx context.Context, input CreateListingInput) (*models.Listing, error)
	FindByPpcID(ctx context.Context, ppcID int64) (*models.Listing, error)
	UpdateFields(ctx context.Context, ppcID int64, updates map[string]interface{}) (*models.Listing, error)
	SoftDelete(ctx context.Context, ppcID int64) (*models.Listing, error)
	Undo(ctx context.Context, ppcID int64) (*models.Listing, error)
	Approve(ctx context.Context, ppcID int64) (*models.Listing, error)
}

// CreateListingInput carries the intake fields. Everything except the owner
// phone may be left empty and filled in later.
type CreateListingInput struct {
	PhoneNumber  string `json:"phoneNumber"`
	Price        string `json:"price"`
	PropertyMode string `json:"propertyMode"`
	PropertyType string `json:"propertyType"`
	PostedBy     string `json:"postedBy"`
	AreaUnit     string `json:"areaUnit"`
	SalesType    string `json:"salesType"`
	TotalArea    string `json:"totalArea"`
	City         string `json:"city"`
	Area         string `json:"area"`
	Description  string `json:"description"`
}

const (
	listingsCollection = "listings"
	countersCollection = "counters"
)

// listingService implements IListingService.
type listingService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewListingService creates a new ListingService.
func NewListingService(db *mongo.Database, cfg *config.Config) IListingService {
	return &listingService{db: db, cfg: cfg}
}

// nextPpcID returns the next public listing identifier. The counter document
// is the single source of ppcId values; ids are assigned once and never reused.
func (s *listingService) nextPpcID(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.db.Collection(countersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": "ppcId"},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate ppcId: %w", err)
	}
	return counter.Seq, nil
}

// CreateListing creates a new listing at intake. Status starts as incomplete
// unless the intake already carries every required field.
func (s *listingService) CreateListing(ctx context.Context, input CreateListingInput) (*models.Listing, error) {
	ownerPhone, err := phone.Canonicalize(input.PhoneNumber)
	if err != nil {
		return nil, err
	}

	ppcID, err := s.nextPpcID(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	now := time.Now().UTC()
	newListing := &models.Listing{
		PpcID:         ppcID,
		PhoneNumber:   ownerPhone,
		Price:         input.Price,
		PropertyMode:  input.PropertyMode,
		PropertyType:  input.PropertyType,
		PostedBy:      input.PostedBy,
		AreaUnit:      input.AreaUnit,
		SalesType:     input.SalesType,
		TotalArea:     input.TotalArea,
		City:          input.City,
		Area:          input.Area,
		Description:   input.Description,
		Status:        models.StatusIncomplete,
		Views:         0,
		Interest:      []models.EngagementEntry{},
		Help:          []models.EngagementEntry{},
		Contact:       []models.EngagementEntry{},
		Report:        []models.EngagementEntry{},
		SoldOut:       []models.EngagementEntry{},
		FavoriteAdded: []models.EngagementEntry{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if allRequiredFilled(newListing) {
		newListing.Status = models.StatusComplete
	}

	collection := s.db.Collection(listingsCollection)
	operation := func() error {
		_, insertErr := collection.InsertOne(ctx, newListing)
		return insertErr
	}
	if err := db.Try(operation); err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to insert listing %d after retries: %w", ppcID, err))
	}

	return newListing, nil
}

func allRequiredFilled(l *models.Listing) bool {
	return l.PhoneNumber != "" && l.Price != "" && l.PropertyMode != "" &&
		l.PropertyType != "" && l.PostedBy != "" && l.AreaUnit != "" &&
		l.SalesType != "" && l.TotalArea != ""
}

// FindByPpcID finds a listing that has not been hard-deleted.
func (s *listingService) FindByPpcID(ctx context.Context, ppcID int64) (*models.Listing, error) {
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

// completenessExpr recomputes status from the required field set. The
// recompute only applies while status is incomplete/complete; engagement and
// terminal labels own the field until their own transitions change it.
func completenessExpr() bson.M {
	conds := bson.A{}
	for _, f := range models.RequiredListingFields {
		conds = append(conds, bson.M{"$ne": bson.A{"$" + f, ""}})
	}
	return bson.M{"$cond": bson.A{
		bson.M{"$in": bson.A{"$status", bson.A{models.StatusIncomplete, models.StatusComplete}}},
		bson.M{"$cond": bson.A{bson.M{"$and": conds}, models.StatusComplete, models.StatusIncomplete}},
		"$status",
	}}
}

// UpdateFields updates mutable listing fields and recomputes completeness in
// the same atomic update. The recompute is pure: it never consults the
// engagement logs.
func (s *listingService) UpdateFields(ctx context.Context, ppcID int64, updates map[string]interface{}) (*models.Listing, error) {
	set := bson.M{}
	for key, value := range updates {
		switch key {
		case "price", "propertyMode", "propertyType", "postedBy", "areaUnit", "salesType", "totalArea", "city", "area", "description":
			set[key] = value
		case "phoneNumber":
			raw, _ := value.(string)
			canon, err := phone.Canonicalize(raw)
			if err != nil {
				return nil, err
			}
			set[key] = canon
		default:
			return nil, apperr.InvalidEnum("field", key)
		}
	}
	if len(set) == 0 {
		return nil, apperr.InvalidEnum("field", "")
	}
	set["updatedAt"] = time.Now().UTC()

	pipeline := bson.A{
		bson.M{"$set": set},
		bson.M{"$set": bson.M{"status": completenessExpr()}},
	}

	filter := bson.M{"ppcId": ppcID, "deleted": bson.M{"$ne": true}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Listing
	err := s.db.Collection(listingsCollection).FindOneAndUpdate(ctx, filter, pipeline, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("listing %d not found", ppcID)
		}
		return nil, apperr.Internal(fmt.Errorf("failed to update listing %d: %w", ppcID, err))
	}
	return &updated, nil
}

// SoftDelete flips status to delete, keeping the current status in
// previousStatus for undo. Deleting an already-deleted listing is a
// successful no-op that does not clobber the undo buffer.
func (s *listingService) SoftDelete(ctx context.Context, ppcID int64) (*models.Listing, error) {
	alreadyDeleted := bson.M{"$eq": bson.A{"$status", models.StatusDelete}}
	pipeline := bson.A{
		bson.M{"$set": bson.M{
			"previousStatus": bson.M{"$cond": bson.A{
				alreadyDeleted,
				bson.M{"$ifNull": bson.A{"$previousStatus", "$$REMOVE"}},
				"$status",
			}},
			"status":    models.StatusDelete,
			"updatedAt": time.Now().UTC(),
		}},
	}

	filter := bson.M{"ppcId": ppcID, "deleted": bson.M{"$ne": true}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Listing
	err := s.db.Collection(listingsCollection).FindOneAndUpdate(ctx, filter, pipeline, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("listing %d not found", ppcID)
		}
		return nil, apperr.Internal(fmt.Errorf("failed to soft delete listing %d: %w", ppcID, err))
	}
	return &updated, nil
}

// Undo restores the previous status and clears the undo buffer. Fails with
// NoUndoAvailable when no previous status was captured.
func (s *listingService) Undo(ctx context.Context, ppcID int64) (*models.Listing, error) {
	pipeline := bson.A{
		bson.M{"$set": bson.M{
			"status":    "$previousStatus",
			"updatedAt": time.Now().UTC(),
		}},
		bson.M{"$unset": "previousStatus"},
	}

	filter := bson.M{
		"ppcId":          ppcID,
		"deleted":        bson.M{"$ne": true},
		"previousStatus": bson.M{"$exists": true, "$ne": nil},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Listing
	err := s.db.Collection(listingsCollection).FindOneAndUpdate(ctx, filter, pipeline, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.Internal(fmt.Errorf("failed to undo listing %d: %w", ppcID, err))
	}

	// Matched nothing: either the listing is gone or there is nothing to undo.
	if _, findErr := s.FindByPpcID(ctx, ppcID); findErr != nil {
		return nil, findErr
	}
	return nil, apperr.NoUndo(ppcID)
}

// Approve moves a listing into the publicly visible active state.
func (s *listingService) Approve(ctx context.Context, ppcID int64) (*models.Listing, error) {
	filter := bson.M{"ppcId": ppcID, "deleted": bson.M{"$ne": true}}
	update := bson.M{"$set": bson.M{"status": models.StatusActive, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Listing
	err := s.db.Collection(listingsCollection).FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("listing %d not found", ppcID)
		}
		return nil, apperr.Internal(fmt.Errorf("failed to approve listing %d: %w", ppcID, err))
	}
	return &updated, nil
}
