package seats

import (
	"errors"
	"net/http"

	"boxoffice/internal/events"
	"boxoffice/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// GetSectorSeats godoc
// @Summary Live seats of a sector
// @Description Answers with a bare array of seats; seats held by shoppers report RESERVED.
// @Tags seats
// @Produce json
// @Param id path string true "Event ID"
// @Param sectorId path string true "Sector ID"
// @Success 200 {array} seatmap.Seat
// @Failure 404 {object} response.StandardApiResponse
// @Router /events/{id}/sectors/{sectorId}/seats [get]
func (c *Controller) GetSectorSeats(ctx *gin.Context) {
	seats, err := c.service.SectorSeats(ctx.Request.Context(), ctx.Param("id"), ctx.Param("sectorId"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, seats)
}

// ReserveSeat godoc
// @Summary Hold a seat for the authenticated shopper
// @Tags seats
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param body body ReserveSeatRequest true "Seat"
// @Success 201 {object} response.StandardApiResponse
// @Failure 409 {object} response.StandardApiResponse
// @Router /events/{id}/reservations [post]
func (c *Controller) ReserveSeat(ctx *gin.Context) {
	var req ReserveSeatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	reservation, err := c.service.Reserve(ctx.Request.Context(), ctx.Param("id"), req.SeatID, ctx.GetString("user_id"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Seat reserved successfully", reservation, nil)
}

// ReleaseSeat godoc
// @Summary Release a seat held by the authenticated shopper
// @Tags seats
// @Param id path string true "Event ID"
// @Param seatId path string true "Seat ID"
// @Success 200 {object} response.StandardApiResponse
// @Router /events/{id}/reservations/{seatId} [delete]
func (c *Controller) ReleaseSeat(ctx *gin.Context) {
	if err := c.service.Release(ctx.Request.Context(), ctx.Param("id"), ctx.Param("seatId"), ctx.GetString("user_id")); err != nil {
		respondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seat released successfully", nil, nil)
}

func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, events.ErrInvalidEventID):
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid event ID", nil, err.Error())
	case errors.Is(err, events.ErrEventNotFound),
		errors.Is(err, ErrSectorNotFound),
		errors.Is(err, ErrSeatNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, err.Error(), nil, nil)
	case errors.Is(err, ErrSeatTaken):
		response.RespondJSON(ctx, "error", http.StatusConflict, err.Error(), nil, nil)
	case errors.Is(err, ErrNotHolder):
		response.RespondJSON(ctx, "error", http.StatusForbidden, err.Error(), nil, nil)
	default:
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to process seat request", nil, err.Error())
	}
}
