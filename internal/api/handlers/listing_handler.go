package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pondy/classifieds/internal/services"
)

// ListingHandler handles listing intake, field updates and the owner-level
// soft delete / undo pair.
type ListingHandler struct {
	listingService services.IListingService
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(listingService services.IListingService) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

// Create handles POST /listings.
func (h *ListingHandler) Create(c *gin.Context) {
	var input services.CreateListingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	listing, err := h.listingService.CreateListing(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": listing})
}

// Get handles GET /listings/:ppcId.
func (h *ListingHandler) Get(c *gin.Context) {
	ppcID, ok := parsePpcID(c)
	if !ok {
		return
	}

	listing, err := h.listingService.FindByPpcID(c.Request.Context(), ppcID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": listing})
}

// Update handles PUT /listings/:ppcId. Status is recomputed from field
// completeness inside the same update.
func (h *ListingHandler) Update(c *gin.Context) {
	ppcID, ok := parsePpcID(c)
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	listing, err := h.listingService.UpdateFields(c.Request.Context(), ppcID, updates)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": listing})
}

// SoftDelete handles DELETE /listings/:ppcId.
func (h *ListingHandler) SoftDelete(c *gin.Context) {
	ppcID, ok := parsePpcID(c)
	if !ok {
		return
	}

	listing, err := h.listingService.SoftDelete(c.Request.Context(), ppcID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ppcId":          listing.PpcID,
		"status":         listing.Status,
		"previousStatus": listing.PreviousStatus,
	})
}

// Undo handles POST /listings/:ppcId/undo.
func (h *ListingHandler) Undo(c *gin.Context) {
	ppcID, ok := parsePpcID(c)
	if !ok {
		return
	}

	listing, err := h.listingService.Undo(c.Request.Context(), ppcID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ppcId":          listing.PpcID,
		"status":         listing.Status,
		"previousStatus": listing.PreviousStatus,
	})
}
