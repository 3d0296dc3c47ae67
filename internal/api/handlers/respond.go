package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pondy/classifieds/internal/apperr"
)

// respondError maps an application error onto the HTTP response. Client
// errors carry the code and any existing actor numbers so the UI can
// reconcile without a follow-up read; internal errors stay opaque.
func respondError(c *gin.Context, err error) {
	appErr := apperr.From(err)
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}

	body := gin.H{"error": appErr.Message, "code": appErr.Code}
	if len(appErr.ReportedNumbers) > 0 {
		body["reportedNumbers"] = appErr.ReportedNumbers
	}
	c.JSON(status, body)
}

// parsePpcID extracts the public listing id from the route.
func parsePpcID(c *gin.Context) (int64, bool) {
	ppcID, err := strconv.ParseInt(c.Param("ppcId"), 10, 64)
	if err != nil || ppcID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ppcId"})
		return 0, false
	}
	return ppcID, true
}
