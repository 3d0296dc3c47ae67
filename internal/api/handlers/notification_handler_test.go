package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"pondy/classifieds/internal/api/handlers"
	"pondy/classifieds/internal/apperr"
	"pondy/classifieds/internal/models"
)

func setupNotificationRouter(mockSvc *MockNotificationService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewNotificationHandler(mockSvc)
	r := gin.New()
	r.GET("/v1/notifications/:phone", handler.List)
	r.PUT("/v1/notifications/:id/read", handler.MarkRead)
	return r
}

func TestNotificationHandler_List(t *testing.T) {
	mockSvc := new(MockNotificationService)
	r := setupNotificationRouter(mockSvc)

	notifications := []models.Notification{
		{NotificationID: "n-1", RecipientPhone: "9000000001", Message: "new interest"},
	}
	mockSvc.On("ListForPhone", mock.Anything, "9000000001").Return(notifications, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/notifications/9000000001", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody struct {
		Data []models.Notification `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Len(t, respBody.Data, 1)
	mockSvc.AssertExpectations(t)
}

func TestNotificationHandler_MarkRead(t *testing.T) {
	mockSvc := new(MockNotificationService)
	r := setupNotificationRouter(mockSvc)

	mockSvc.On("MarkRead", mock.Anything, "n-1").Return(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/v1/notifications/n-1/read", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestNotificationHandler_MarkRead_NotFound(t *testing.T) {
	mockSvc := new(MockNotificationService)
	r := setupNotificationRouter(mockSvc)

	mockSvc.On("MarkRead", mock.Anything, "missing").
		Return(apperr.NotFound("notification %s not found", "missing"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/v1/notifications/missing/read", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
