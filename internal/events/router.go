package events

import (
	"boxoffice/internal/auth"
	"boxoffice/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupEventRoutes(router *gin.RouterGroup, controller Controller, issuer *auth.Issuer) {
	// Public routes - storefront browsing
	publicEvents := router.Group("/events")
	{
		publicEvents.GET("", controller.GetAllEvents) // GET /api/v1/events - Browse events
		publicEvents.GET("/:id", controller.GetEvent) // GET /api/v1/events/:id - Event with seat map

		// PUT /api/v1/events/:id - Save seat map (admin only)
		publicEvents.PUT("/:id", middleware.JWTAuth(issuer), middleware.RequireAdmin(), controller.UpdateSeatMap)
	}

	// Admin routes - event lifecycle
	adminEvents := router.Group("/admin/events")
	adminEvents.Use(middleware.JWTAuth(issuer), middleware.RequireAdmin())
	{
		adminEvents.POST("", controller.CreateEvent)       // POST /api/v1/admin/events - Create event
		adminEvents.DELETE("/:id", controller.DeleteEvent) // DELETE /api/v1/admin/events/:id - Delete event
	}
}
