package handlers_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pondy/classifieds/internal/models"
	"pondy/classifieds/internal/services"
)

// --- Mocks ---

// MockListingService
type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) CreateListing(ctx context.Context, input services.CreateListingInput) (*models.Listing, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) FindByPpcID(ctx context.Context, ppcID int64) (*models.Listing, error) {
	args := m.Called(ctx, ppcID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) UpdateFields(ctx context.Context, ppcID int64, updates map[string]interface{}) (*models.Listing, error) {
	args := m.Called(ctx, ppcID, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) SoftDelete(ctx context.Context, ppcID int64) (*models.Listing, error) {
	args := m.Called(ctx, ppcID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) Undo(ctx context.Context, ppcID int64) (*models.Listing, error) {
	args := m.Called(ctx, ppcID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) Approve(ctx context.Context, ppcID int64) (*models.Listing, error) {
	args := m.Called(ctx, ppcID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

// MockEngagementService
type MockEngagementService struct {
	mock.Mock
}

func (m *MockEngagementService) Add(ctx context.Context, ppcID int64, category models.Category, actorPhone string, payload models.EngagementPayload) (*models.Listing, error) {
	args := m.Called(ctx, ppcID, category, actorPhone, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockEngagementService) Remove(ctx context.Context, ppcID int64, category models.Category, actorPhone string) (*models.Listing, error) {
	args := m.Called(ctx, ppcID, category, actorPhone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockEngagementService) UndoRemove(ctx context.Context, ppcID int64, category models.Category, actorPhone string) (*models.Listing, error) {
	args := m.Called(ctx, ppcID, category, actorPhone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

// MockViewService
type MockViewService struct {
	mock.Mock
}

func (m *MockViewService) RecordView(ctx context.Context, viewerPhone string, ppcID int64) (*models.Listing, error) {
	args := m.Called(ctx, viewerPhone, ppcID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockViewService) History(ctx context.Context, viewerPhone string) (*models.ViewRecord, error) {
	args := m.Called(ctx, viewerPhone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ViewRecord), args.Error(1)
}

func (m *MockViewService) MostViewed(ctx context.Context, windowDays int, scope services.MostViewedScope, viewerPhone string) ([]models.MostViewedListing, error) {
	args := m.Called(ctx, windowDays, scope, viewerPhone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MostViewedListing), args.Error(1)
}

// MockNotificationService
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Create(ctx context.Context, event models.NotificationEvent) (*models.Notification, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *MockNotificationService) ListForPhone(ctx context.Context, recipientPhone string) ([]models.Notification, error) {
	args := m.Called(ctx, recipientPhone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockNotificationService) MarkRead(ctx context.Context, notificationID string) error {
	args := m.Called(ctx, notificationID)
	return args.Error(0)
}

// MockAdminService
type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) Login(ctx context.Context, username, password string) (string, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.Error(1)
}

func (m *MockAdminService) HardDelete(ctx context.Context, ppcID int64, deletedBy string) (*models.ListingTombstone, error) {
	args := m.Called(ctx, ppcID, deletedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingTombstone), args.Error(1)
}
