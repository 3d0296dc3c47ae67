package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pondy/classifieds/internal/services"
)

// ViewHandler handles view recording and most-viewed queries.
type ViewHandler struct {
	viewService services.IViewService
}

// NewViewHandler creates a new ViewHandler.
func NewViewHandler(viewService services.IViewService) *ViewHandler {
	return &ViewHandler{viewService: viewService}
}

type recordViewRequest struct {
	ViewerPhone string `json:"viewerPhone" binding:"required"`
	PpcID       int64  `json:"ppcId" binding:"required"`
}

// Record handles POST /views.
func (h *ViewHandler) Record(c *gin.Context) {
	var req recordViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "viewerPhone and ppcId are required"})
		return
	}

	listing, err := h.viewService.RecordView(c.Request.Context(), req.ViewerPhone, req.PpcID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ppcId": listing.PpcID, "views": listing.Views})
}

// History handles GET /views/history/:viewerPhone.
func (h *ViewHandler) History(c *gin.Context) {
	record, err := h.viewService.History(c.Request.Context(), c.Param("viewerPhone"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": record})
}

// MostViewed handles GET /views/most-viewed?windowDays=30&scope=all|viewer&viewerPhone=.
func (h *ViewHandler) MostViewed(c *gin.Context) {
	windowDays, _ := strconv.Atoi(c.DefaultQuery("windowDays", "0"))

	scope := services.MostViewedScope(c.DefaultQuery("scope", string(services.ScopeAll)))
	if scope != services.ScopeAll && scope != services.ScopeViewer {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scope must be all or viewer"})
		return
	}
	viewerPhone := c.Query("viewerPhone")
	if scope == services.ScopeViewer && viewerPhone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "viewerPhone is required for viewer scope"})
		return
	}

	results, err := h.viewService.MostViewed(c.Request.Context(), windowDays, scope, viewerPhone)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": results})
}
