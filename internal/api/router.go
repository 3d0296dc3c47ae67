package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"pondy/classifieds/internal/api/handlers"
	"pondy/classifieds/internal/api/middleware"
	"pondy/classifieds/internal/config"
	"pondy/classifieds/internal/models"
	"pondy/classifieds/internal/services"
	"pondy/classifieds/internal/storage"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, db *mongo.Database, dispatcher services.IDispatcher) *gin.Engine {
	// Initialize services needed by API handlers
	listingService := services.NewListingService(db, cfg)
	engagementService := services.NewEngagementService(db, cfg, dispatcher)
	viewService := services.NewViewService(db, cfg, dispatcher)
	notificationService := services.NewNotificationService(db, cfg)

	var archiveStorage storage.IArchiveStorage
	if cfg.AwsS3Bucket != "" {
		var err error
		archiveStorage, err = storage.NewS3Archive(cfg)
		if err != nil {
			log.Fatalf("CRITICAL: Failed to initialize S3 archive storage: %v", err)
		}
	}
	adminService := services.NewAdminService(db, cfg, archiveStorage)

	r := gin.Default()

	// Apply global middleware first (order matters)
	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)
	r.Use(middleware.CORSMiddleware())
	r.Use(rateLimiter.Limit())

	// Initialize handlers
	listingHandler := handlers.NewListingHandler(listingService)
	engagementHandler := handlers.NewEngagementHandler(engagementService)
	viewHandler := handlers.NewViewHandler(viewService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	adminHandler := handlers.NewAdminHandler(adminService, listingService)

	v1 := r.Group("/v1")
	{
		// Listing intake and field updates
		v1.POST("/listings", listingHandler.Create)
		v1.GET("/listings/:ppcId", listingHandler.Get)
		v1.PUT("/listings/:ppcId", listingHandler.Update)
		v1.DELETE("/listings/:ppcId", listingHandler.SoftDelete)
		v1.POST("/listings/:ppcId/undo", listingHandler.Undo)

		// Engagement actions
		v1.POST("/listings/:ppcId/interest", engagementHandler.Add(models.CategoryInterest))
		v1.POST("/listings/:ppcId/help", engagementHandler.Add(models.CategoryHelp))
		v1.POST("/listings/:ppcId/contact", engagementHandler.Add(models.CategoryContact))
		v1.POST("/listings/:ppcId/report", engagementHandler.Add(models.CategoryReport))
		v1.POST("/listings/:ppcId/sold-out", engagementHandler.Add(models.CategorySoldOut))
		v1.POST("/listings/:ppcId/favorite", engagementHandler.Add(models.CategoryFavorite))
		v1.PUT("/listings/:ppcId/:category/delete/:actorPhone", engagementHandler.Delete)
		v1.PUT("/listings/:ppcId/:category/undo/:actorPhone", engagementHandler.Undo)

		// View analytics
		v1.POST("/views", viewHandler.Record)
		v1.GET("/views/history/:viewerPhone", viewHandler.History)
		v1.GET("/views/most-viewed", viewHandler.MostViewed)

		// Notifications
		v1.GET("/notifications/:phone", notificationHandler.List)
		v1.PUT("/notifications/:id/read", notificationHandler.MarkRead)

		v1.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		// Admin routes
		v1.POST("/admin/login", adminHandler.Login)
		adminRequired := v1.Group("/admin")
		adminRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret), middleware.AdminMiddleware())
		{
			adminRequired.PUT("/listings/:ppcId/approve", adminHandler.Approve)
			adminRequired.DELETE("/listings/:ppcId", adminHandler.HardDelete)
		}
	}

	return r
}
