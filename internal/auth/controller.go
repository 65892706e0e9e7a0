package auth

import (
	"net/http"

	"boxoffice/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Controller struct {
	issuer    *Issuer
	validator *validator.Validate
}

func NewController(issuer *Issuer) *Controller {
	return &Controller{
		issuer:    issuer,
		validator: validator.New(),
	}
}

// Resume decodes the state returned by the login flow into the pending selection
func (c *Controller) Resume(ctx *gin.Context) {
	var req ResumeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	pending, err := c.issuer.ParseResumeToken(req.State)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Invalid or expired resume state", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Pending selection restored", ResumeResponse{Pending: pending}, nil)
}
