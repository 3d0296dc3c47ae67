package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pondy/classifieds/internal/apperr"
	"pondy/classifieds/internal/config"
	"pondy/classifieds/internal/models"
	"pondy/classifieds/internal/phone"
)

// INotificationService persists and serves owner notifications. Creation is
// driven by the background worker; it never mutates listings, and isRead only
// changes via MarkRead.
type INotificationService interface {
	Create(ctx context.Context, event models.NotificationEvent) (*models.Notification, error)
	ListForPhone(ctx context.Context, recipientPhone string) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID string) error
}

const notificationsCollection = "notifications"

// notificationService implements INotificationService.
type notificationService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(db *mongo.Database, cfg *config.Config) INotificationService {
	return &notificationService{db: db, cfg: cfg}
}

// Create writes the notification document for an outbound event.
func (s *notificationService) Create(ctx context.Context, event models.NotificationEvent) (*models.Notification, error) {
	notification := &models.Notification{
		NotificationID: event.NotificationID,
		RecipientPhone: event.RecipientPhone,
		SenderPhone:    event.SenderPhone,
		PpcID:          event.PpcID,
		Message:        event.Message,
		IsRead:         false,
		CreatedAt:      time.Now().UTC(),
	}
	_, err := s.db.Collection(notificationsCollection).InsertOne(ctx, notification)
	if err != nil {
		return nil, fmt.Errorf("failed to insert notification %s: %w", event.NotificationID, err)
	}
	return notification, nil
}

// ListForPhone returns the recipient's notifications, newest first, probing
// the legacy phone formats.
func (s *notificationService) ListForPhone(ctx context.Context, recipientPhone string) ([]models.Notification, error) {
	variants, err := phone.Variants(recipientPhone)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.db.Collection(notificationsCollection).Find(ctx,
		bson.M{"recipientPhone": bson.M{"$in": variants}}, opts)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to list notifications: %w", err))
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to decode notifications: %w", err))
	}
	return notifications, nil
}

// MarkRead flags a single notification as read.
func (s *notificationService) MarkRead(ctx context.Context, notificationID string) error {
	result, err := s.db.Collection(notificationsCollection).UpdateOne(ctx,
		bson.M{"notificationId": notificationID},
		bson.M{"$set": bson.M{"isRead": true}})
	if err != nil {
		return apperr.Internal(fmt.Errorf("failed to mark notification %s read: %w", notificationID, err))
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("notification %s not found", notificationID)
	}
	return nil
}
