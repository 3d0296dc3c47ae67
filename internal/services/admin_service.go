package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"pondy/classifieds/internal/apperr"
	"pondy/classifieds/internal/auth"
	"pondy/classifieds/internal/config"
	"pondy/classifieds/internal/models"
	"pondy/classifieds/internal/storage"
)

// ErrInvalidCredentials is returned by Login on a bad username or password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// IAdminService covers the admin-only paths: login and hard deletion with
// archival. Buyer actions never reach these.
type IAdminService interface {
	Login(ctx context.Context, username, password string) (string, error)
	HardDelete(ctx context.Context, ppcID int64, deletedBy string) (*models.ListingTombstone, error)
}

const tombstonesCollection = "listing_tombstones"

// adminService implements IAdminService.
type adminService struct {
	db      *mongo.Database
	cfg     *config.Config
	archive storage.IArchiveStorage
}

// NewAdminService creates a new AdminService. archive may be nil when no S3
// bucket is configured; hard deletes then keep only the Mongo tombstone.
func NewAdminService(db *mongo.Database, cfg *config.Config, archive storage.IArchiveStorage) IAdminService {
	return &adminService{db: db, cfg: cfg, archive: archive}
}

// Login validates the configured admin credentials and issues a JWT.
func (s *adminService) Login(ctx context.Context, username, password string) (string, error) {
	if username != s.cfg.AdminUsername || s.cfg.AdminPasswordHash == "" ||
		!auth.CheckPasswordHash(password, s.cfg.AdminPasswordHash) {
		return "", ErrInvalidCredentials
	}
	return auth.GenerateJWT(username, true, s.cfg.JwtSecret, s.cfg.JwtTTL)
}

// HardDelete archives the full listing document (S3 plus a tombstone record)
// and then removes it. This is the only path that removes listing documents.
func (s *adminService) HardDelete(ctx context.Context, ppcID int64, deletedBy string) (*models.ListingTombstone, error) {
	var listing models.Listing
	err := s.db.Collection(listingsCollection).FindOne(ctx, bson.M{"ppcId": ppcID}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("listing %d not found", ppcID)
		}
		return nil, apperr.Internal(fmt.Errorf("error finding listing %d: %w", ppcID, err))
	}

	tombstone := &models.ListingTombstone{
		PpcID:     ppcID,
		Listing:   listing,
		DeletedBy: deletedBy,
		DeletedAt: time.Now().UTC(),
	}

	if s.archive != nil {
		document, marshalErr := json.Marshal(listing)
		if marshalErr != nil {
			return nil, apperr.Internal(fmt.Errorf("failed to marshal listing %d for archive: %w", ppcID, marshalErr))
		}
		s3Key, archiveErr := s.archive.ArchiveListing(ctx, ppcID, document)
		if archiveErr != nil {
			return nil, apperr.Internal(archiveErr)
		}
		tombstone.S3Key = s3Key
	} else {
		log.Printf("No archive storage configured; hard delete of listing %d keeps only the tombstone document", ppcID)
	}

	if _, err := s.db.Collection(tombstonesCollection).InsertOne(ctx, tombstone); err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to insert tombstone for listing %d: %w", ppcID, err))
	}

	if _, err := s.db.Collection(listingsCollection).DeleteOne(ctx, bson.M{"ppcId": ppcID}); err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to delete listing %d: %w", ppcID, err))
	}

	return tombstone, nil
}
