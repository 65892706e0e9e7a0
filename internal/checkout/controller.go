package checkout

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"boxoffice/internal/events"
	"boxoffice/internal/seats"
	"boxoffice/internal/shared/utils/response"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// HandOff godoc
// @Summary Hand a seat selection to checkout
// @Description Verifies the seats against the seat map and live holds, then queues the hand-off.
// @Tags checkout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body HandOffRequest true "Selection"
// @Success 202 {object} response.StandardApiResponse{data=HandOffResponse}
// @Failure 409 {object} response.StandardApiResponse
// @Failure 422 {object} response.StandardApiResponse
// @Router /checkout [post]
func (c *Controller) HandOff(ctx *gin.Context) {
	var req HandOffRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	handOff, err := c.service.HandOff(ctx.Request.Context(), ctx.GetString("user_id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusAccepted, "Selection handed off to checkout",
		HandOffResponse{HandOffID: handOff.ID, Total: handOff.Total}, nil)
}

func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, events.ErrInvalidEventID):
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid event ID", nil, err.Error())
	case errors.Is(err, events.ErrEventNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, err.Error(), nil, nil)
	case errors.Is(err, ErrTooManySeats),
		errors.Is(err, ErrDuplicateSeat),
		errors.Is(err, ErrMixedSectors),
		errors.Is(err, seats.ErrSeatNotFound):
		response.RespondJSON(ctx, "error", http.StatusUnprocessableEntity, err.Error(), nil, nil)
	case errors.Is(err, ErrSeatUnavailable):
		response.RespondJSON(ctx, "error", http.StatusConflict, err.Error(), nil, nil)
	default:
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to hand off selection", nil, err.Error())
	}
}
