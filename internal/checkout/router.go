package checkout

import (
	"boxoffice/internal/auth"
	"boxoffice/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupCheckoutRoutes(rg *gin.RouterGroup, controller *Controller, issuer *auth.Issuer) {
	checkout := rg.Group("/checkout")
	checkout.Use(middleware.JWTAuth(issuer))
	{
		checkout.POST("", controller.HandOff) // POST /api/v1/checkout
	}
}
