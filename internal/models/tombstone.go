package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListingTombstone archives a hard-deleted listing. The full document is also
// uploaded to S3 before deletion; S3Key points at that object.
type ListingTombstone struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	PpcID     int64              `bson:"ppcId" json:"ppcId"`
	Listing   Listing            `bson:"listing" json:"listing"`
	S3Key     string             `bson:"s3Key,omitempty" json:"s3Key,omitempty"`
	DeletedBy string             `bson:"deletedBy" json:"deletedBy"` // admin username
	DeletedAt time.Time          `bson:"deletedAt" json:"deletedAt"`
}
