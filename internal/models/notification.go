package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is an in-app message to a listing owner. Creating one never
// mutates the listing, and repeated engagement events produce repeated
// notifications on purpose.
type Notification struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	NotificationID string             `bson:"notificationId" json:"notificationId"` // uuid, stable across retries
	RecipientPhone string             `bson:"recipientPhone" json:"recipientPhone"`
	SenderPhone    string             `bson:"senderPhone" json:"senderPhone"`
	PpcID          int64              `bson:"ppcId" json:"ppcId"`
	Message        string             `bson:"message" json:"message"`
	IsRead         bool               `bson:"isRead" json:"isRead"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

// NotificationEvent is the outbound event enqueued after an engagement or
// view commit. The worker turns it into a Notification document.
type NotificationEvent struct {
	NotificationID string `json:"notificationId"`
	RecipientPhone string `json:"recipientPhone"`
	SenderPhone    string `json:"senderPhone"`
	PpcID          int64  `json:"ppcId"`
	Message        string `json:"message"`
}
