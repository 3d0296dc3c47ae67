package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pondy/classifieds/internal/api/middleware"
	"pondy/classifieds/internal/services"
)

// AdminHandler covers admin login, listing approval and hard deletion.
type AdminHandler struct {
	adminService   services.IAdminService
	listingService services.IListingService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService services.IAdminService, listingService services.IListingService) *AdminHandler {
	return &AdminHandler{adminService: adminService, listingService: listingService}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /admin/login.
func (h *AdminHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	token, err := h.adminService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Approve handles PUT /admin/listings/:ppcId/approve.
func (h *AdminHandler) Approve(c *gin.Context) {
	ppcID, ok := parsePpcID(c)
	if !ok {
		return
	}

	listing, err := h.listingService.Approve(c.Request.Context(), ppcID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": listing})
}

// HardDelete handles DELETE /admin/listings/:ppcId.
func (h *AdminHandler) HardDelete(c *gin.Context) {
	ppcID, ok := parsePpcID(c)
	if !ok {
		return
	}

	deletedBy, _ := c.Get(middleware.ContextKeyUsername)
	username, _ := deletedBy.(string)

	tombstone, err := h.adminService.HardDelete(c.Request.Context(), ppcID, username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tombstone})
}
