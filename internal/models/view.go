package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ViewEntry records one property a viewer has looked at. The list is deduped
// per (viewer, ppcId); the listing's raw Views counter is not.
type ViewEntry struct {
	PpcID      int64     `bson:"ppcId" json:"ppcId"`
	OwnerPhone string    `bson:"ownerPhone" json:"ownerPhone"` // owner at view time
	ViewedAt   time.Time `bson:"viewedAt" json:"viewedAt"`
}

// ViewRecord holds a viewer's deduped browsing history. ViewerPhone is
// canonical and unique-indexed.
type ViewRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ViewerPhone string             `bson:"viewerPhone" json:"viewerPhone"`
	Views       []ViewEntry        `bson:"views" json:"views"`
}

// MostViewedListing is one row of a most-viewed ranking: the view count over
// the window joined back to a listing summary.
type MostViewedListing struct {
	PpcID        int64     `bson:"_id" json:"ppcId"`
	ViewCount    int64     `bson:"viewCount" json:"viewCount"`
	LastViewedAt time.Time `bson:"lastViewedAt" json:"lastViewedAt"`
	Listing      Listing   `bson:"listing" json:"listing"`
}
