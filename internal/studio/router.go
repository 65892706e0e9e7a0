package studio

import (
	"boxoffice/internal/auth"
	"boxoffice/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupStudioRoutes(rg *gin.RouterGroup, controller *Controller, issuer *auth.Issuer) {
	sessions := rg.Group("/admin/layouts/sessions")
	sessions.Use(middleware.JWTAuth(issuer), middleware.RequireAdmin())
	{
		sessions.POST("", controller.OpenSession)
		sessions.GET("/:sid", controller.GetSession)
		sessions.DELETE("/:sid", controller.CloseSession)

		// Draft sector
		sessions.POST("/:sid/draft", controller.StartSector)
		sessions.PATCH("/:sid/draft", controller.UpdateDraft)
		sessions.DELETE("/:sid/draft", controller.CancelDraft)
		sessions.POST("/:sid/draft/commit", controller.CommitSector)

		// Draft rows
		sessions.POST("/:sid/draft/rows", controller.AddRow)
		sessions.POST("/:sid/draft/rows/generate", controller.GenerateRows)
		sessions.POST("/:sid/draft/rows/move", controller.MoveRow)
		sessions.PATCH("/:sid/draft/rows/:rowId", controller.UpdateDraftRow)
		sessions.DELETE("/:sid/draft/rows/:rowId", controller.RemoveDraftRow)

		// Confirmed map
		sessions.DELETE("/:sid/sectors/:sectorId", controller.RemoveSector)
		sessions.PUT("/:sid/rows/:rowId", controller.ResizeRow)
		sessions.PUT("/:sid/special-seats/:rowId/:seatIndex", controller.SetSpecialSeat)
		sessions.DELETE("/:sid/special-seats/:rowId/:seatIndex", controller.ClearSpecialSeat)

		sessions.GET("/:sid/export", controller.Export)
		sessions.POST("/:sid/save", controller.Save)
	}
}
