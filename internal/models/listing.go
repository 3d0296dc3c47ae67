package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Listing represents a property classified ad. The document is the unit of
// contention: status, engagement logs and the view counter all live on it so
// that every mutation can be a single atomic update.
type Listing struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	PpcID int64              `bson:"ppcId" json:"ppcId"` // public monotonic identifier, assigned once

	// Owner contact. Stored canonical (10 digits); legacy records may carry
	// a 91/+91 prefix, so reads always probe the variant set.
	PhoneNumber string `bson:"phoneNumber" json:"phoneNumber"`

	// Required fields for completeness (all strings; empty means unset).
	Price        string `bson:"price" json:"price"`
	PropertyMode string `bson:"propertyMode" json:"propertyMode"`
	PropertyType string `bson:"propertyType" json:"propertyType"`
	PostedBy     string `bson:"postedBy" json:"postedBy"`
	AreaUnit     string `bson:"areaUnit" json:"areaUnit"`
	SalesType    string `bson:"salesType" json:"salesType"`
	TotalArea    string `bson:"totalArea" json:"totalArea"`

	// Optional descriptive fields.
	City        string `bson:"city,omitempty" json:"city,omitempty"`
	Area        string `bson:"area,omitempty" json:"area,omitempty"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`

	Status         Status  `bson:"status" json:"status"`
	PreviousStatus *Status `bson:"previousStatus,omitempty" json:"previousStatus,omitempty"` // one-level undo buffer

	Views int64 `bson:"views" json:"views"` // raw hit counter, never deduped

	// Engagement logs: at most one live entry per canonical actor phone.
	Interest      []EngagementEntry `bson:"interest" json:"interest"`
	Help          []EngagementEntry `bson:"help" json:"help"`
	Contact       []EngagementEntry `bson:"contact" json:"contact"`
	Report        []EngagementEntry `bson:"report" json:"report"`
	SoldOut       []EngagementEntry `bson:"soldOut" json:"soldOut"`
	FavoriteAdded []EngagementEntry `bson:"favoriteAdded" json:"favoriteAdded"`

	// Removed-entry stashes backing one-step undo per category.
	InterestRemoved []EngagementEntry `bson:"interestRemoved,omitempty" json:"-"`
	HelpRemoved     []EngagementEntry `bson:"helpRemoved,omitempty" json:"-"`
	ContactRemoved  []EngagementEntry `bson:"contactRemoved,omitempty" json:"-"`
	ReportRemoved   []EngagementEntry `bson:"reportRemoved,omitempty" json:"-"`
	SoldOutRemoved  []EngagementEntry `bson:"soldOutRemoved,omitempty" json:"-"`
	FavoriteRemoved []EngagementEntry `bson:"favoriteRemoved,omitempty" json:"favoriteRemoved,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`

	// Set only by the admin hard-delete path; buyer actions flip Status instead.
	Deleted bool `bson:"deleted" json:"-"`
}

// Entries returns the live engagement log for the given category.
func (l *Listing) Entries(c Category) []EngagementEntry {
	switch c {
	case CategoryInterest:
		return l.Interest
	case CategoryHelp:
		return l.Help
	case CategoryContact:
		return l.Contact
	case CategoryReport:
		return l.Report
	case CategorySoldOut:
		return l.SoldOut
	case CategoryFavorite:
		return l.FavoriteAdded
	}
	return nil
}

// ActorPhones returns the phone numbers present in the given category's log.
func (l *Listing) ActorPhones(c Category) []string {
	entries := l.Entries(c)
	phones := make([]string, 0, len(entries))
	for _, e := range entries {
		phones = append(phones, e.PhoneNumber)
	}
	return phones
}
