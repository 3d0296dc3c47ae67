package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pondy/classifieds/internal/apperr"
	"pondy/classifieds/internal/models"
	"pondy/classifieds/internal/services"
)

// EngagementHandler handles buyer engagement actions on listings.
type EngagementHandler struct {
	engagementService services.IEngagementService
}

// NewEngagementHandler creates a new EngagementHandler.
func NewEngagementHandler(engagementService services.IEngagementService) *EngagementHandler {
	return &EngagementHandler{engagementService: engagementService}
}

type engagementRequest struct {
	ActorPhone       string `json:"actorPhone" binding:"required"`
	SelectHelpReason string `json:"selectHelpReason"`
	Comment          string `json:"comment"`
	ReasonCode       string `json:"reasonCode"`
	FreeText         string `json:"freeText"`
}

// Add returns the handler for POST /listings/:ppcId/<category>.
func (h *EngagementHandler) Add(category models.Category) gin.HandlerFunc {
	return func(c *gin.Context) {
		ppcID, ok := parsePpcID(c)
		if !ok {
			return
		}

		var req engagementRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "actorPhone is required"})
			return
		}

		payload := models.EngagementPayload{
			SelectHelpReason: req.SelectHelpReason,
			Comment:          req.Comment,
			ReasonCode:       req.ReasonCode,
			FreeText:         req.FreeText,
		}

		listing, err := h.engagementService.Add(c.Request.Context(), ppcID, category, req.ActorPhone, payload)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, engagementSummary(listing, category))
	}
}

// Delete handles PUT /listings/:ppcId/:category/delete/:actorPhone.
func (h *EngagementHandler) Delete(c *gin.Context) {
	ppcID, ok := parsePpcID(c)
	if !ok {
		return
	}
	category, ok := models.ParseCategory(c.Param("category"))
	if !ok {
		respondError(c, apperr.InvalidEnum("category", c.Param("category")))
		return
	}

	listing, err := h.engagementService.Remove(c.Request.Context(), ppcID, category, c.Param("actorPhone"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, engagementSummary(listing, category))
}

// Undo handles PUT /listings/:ppcId/:category/undo/:actorPhone.
func (h *EngagementHandler) Undo(c *gin.Context) {
	ppcID, ok := parsePpcID(c)
	if !ok {
		return
	}
	category, ok := models.ParseCategory(c.Param("category"))
	if !ok {
		respondError(c, apperr.InvalidEnum("category", c.Param("category")))
		return
	}

	listing, err := h.engagementService.UndoRemove(c.Request.Context(), ppcID, category, c.Param("actorPhone"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, engagementSummary(listing, category))
}

// engagementSummary is the slice of listing state an engagement mutation
// returns: enough for the client to reconcile without another read.
func engagementSummary(listing *models.Listing, category models.Category) gin.H {
	return gin.H{
		"ppcId":          listing.PpcID,
		"status":         listing.Status,
		"previousStatus": listing.PreviousStatus,
		string(category): listing.Entries(category),
	}
}
