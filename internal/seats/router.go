package seats

import (
	"boxoffice/internal/auth"
	"boxoffice/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupSeatRoutes(rg *gin.RouterGroup, controller *Controller, issuer *auth.Issuer) {
	events := rg.Group("/events/:id")
	{
		events.GET("/sectors/:sectorId/seats", controller.GetSectorSeats) // GET /api/v1/events/:id/sectors/:sectorId/seats
	}

	// SHOPPER HOLDS

	reservations := rg.Group("/events/:id/reservations")
	reservations.Use(middleware.JWTAuth(issuer))
	{
		reservations.POST("", controller.ReserveSeat)           // POST /api/v1/events/:id/reservations
		reservations.DELETE("/:seatId", controller.ReleaseSeat) // DELETE /api/v1/events/:id/reservations/:seatId
	}
}
