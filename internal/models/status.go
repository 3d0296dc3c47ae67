package models

// Status is the closed set of listing statuses. It is shared by the lifecycle
// engine and every engagement category; handlers must never use raw literals.
type Status string

const (
	StatusIncomplete      Status = "incomplete"
	StatusComplete        Status = "complete"
	StatusPending         Status = "pending"
	StatusActive          Status = "active"
	StatusSendInterest    Status = "sendInterest"
	StatusSoldOut         Status = "soldOut"
	StatusReport          Status = "reportProperties"
	StatusNeedHelp        Status = "needHelp"
	StatusContact         Status = "contact"
	StatusFavorite        Status = "favorite"
	StatusFavoriteRemoved Status = "favoriteRemoved"
	StatusDelete          Status = "delete"
	StatusAlreadySaved    Status = "alreadySaved"
)

// RequiredListingFields are the BSON field names that must all be non-empty
// for a listing to count as complete.
var RequiredListingFields = []string{
	"phoneNumber",
	"price",
	"propertyMode",
	"propertyType",
	"postedBy",
	"areaUnit",
	"salesType",
	"totalArea",
}
