package studio

import (
	"errors"
	"net/http"
	"strconv"

	"boxoffice/internal/editor"
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

// OpenSession godoc
// @Summary Open an editor session over an event's seat map
// @Tags studio
// @Accept json
// @Produce json
// @Param body body OpenSessionRequest true "Event"
// @Success 201 {object} response.StandardApiResponse
// @Router /admin/layouts/sessions [post]
func (c *Controller) OpenSession(ctx *gin.Context) {
	var req OpenSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	session, err := c.service.Open(ctx.Request.Context(), req.EventID, ctx.GetString("user_id"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Editor session opened", session, nil)
}

// GetSession godoc
// @Summary Preview an editor session
// @Tags studio
// @Produce json
// @Param sid path string true "Session ID"
// @Success 200 {object} response.StandardApiResponse
// @Router /admin/layouts/sessions/{sid} [get]
func (c *Controller) GetSession(ctx *gin.Context) {
	session, err := c.service.View(ctx.Request.Context(), ctx.Param("sid"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Editor session retrieved", session, nil)
}

// CloseSession godoc
// @Summary Discard an editor session
// @Tags studio
// @Param sid path string true "Session ID"
// @Success 200 {object} response.StandardApiResponse
// @Router /admin/layouts/sessions/{sid} [delete]
func (c *Controller) CloseSession(ctx *gin.Context) {
	if err := c.service.Close(ctx.Request.Context(), ctx.Param("sid")); err != nil {
		respondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Editor session closed", nil, nil)
}

// DRAFT SECTOR

func (c *Controller) StartSector(ctx *gin.Context) {
	var req StartSectorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	c.apply(ctx, http.StatusCreated, "Sector draft started", func(e *editor.Editor) (interface{}, error) {
		return nil, e.StartSector(req.ColorIndex)
	})
}

func (c *Controller) UpdateDraft(ctx *gin.Context) {
	var req DraftPatchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	c.apply(ctx, http.StatusOK, "Sector draft updated", func(e *editor.Editor) (interface{}, error) {
		return nil, e.UpdateDraft(req)
	})
}

func (c *Controller) CancelDraft(ctx *gin.Context) {
	c.apply(ctx, http.StatusOK, "Sector draft discarded", func(e *editor.Editor) (interface{}, error) {
		e.CancelDraft()
		return nil, nil
	})
}

// CommitSector godoc
// @Summary Confirm the draft sector
// @Description Fails with 422 naming each unmet precondition; the draft is kept.
// @Tags studio
// @Produce json
// @Param sid path string true "Session ID"
// @Success 200 {object} response.StandardApiResponse
// @Failure 422 {object} response.StandardApiResponse
// @Router /admin/layouts/sessions/{sid}/draft/commit [post]
func (c *Controller) CommitSector(ctx *gin.Context) {
	c.apply(ctx, http.StatusOK, "Sector confirmed", func(e *editor.Editor) (interface{}, error) {
		return e.CommitSector()
	})
}

// DRAFT ROWS

func (c *Controller) AddRow(ctx *gin.Context) {
	c.apply(ctx, http.StatusCreated, "Row added", func(e *editor.Editor) (interface{}, error) {
		return e.AddRow()
	})
}

func (c *Controller) GenerateRows(ctx *gin.Context) {
	var req GenerateRowsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	c.apply(ctx, http.StatusCreated, "Rows generated", func(e *editor.Editor) (interface{}, error) {
		return e.GenerateRows(req.Count, req.SeatsPerRow, req.Columns)
	})
}

func (c *Controller) UpdateDraftRow(ctx *gin.Context) {
	var req RowPatchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	rowID := ctx.Param("rowId")
	c.apply(ctx, http.StatusOK, "Row updated", func(e *editor.Editor) (interface{}, error) {
		return nil, e.UpdateDraftRow(rowID, req)
	})
}

func (c *Controller) RemoveDraftRow(ctx *gin.Context) {
	rowID := ctx.Param("rowId")
	c.apply(ctx, http.StatusOK, "Row removed", func(e *editor.Editor) (interface{}, error) {
		return nil, e.RemoveRow(rowID)
	})
}

func (c *Controller) MoveRow(ctx *gin.Context) {
	var req MoveRowRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	c.apply(ctx, http.StatusOK, "Row moved", func(e *editor.Editor) (interface{}, error) {
		return nil, e.MoveRow(req.Index, req.Direction)
	})
}

// CONFIRMED MAP

func (c *Controller) RemoveSector(ctx *gin.Context) {
	sectorID := ctx.Param("sectorId")
	c.apply(ctx, http.StatusOK, "Sector removed", func(e *editor.Editor) (interface{}, error) {
		return nil, e.RemoveSector(sectorID)
	})
}

func (c *Controller) ResizeRow(ctx *gin.Context) {
	var req ResizeRowRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	rowID := ctx.Param("rowId")
	c.apply(ctx, http.StatusOK, "Row resized", func(e *editor.Editor) (interface{}, error) {
		return nil, e.ResizeRow(rowID, req.Seats, req.Columns)
	})
}

func (c *Controller) SetSpecialSeat(ctx *gin.Context) {
	seatIndex, ok := seatIndexParam(ctx)
	if !ok {
		return
	}
	var req SpecialSeatPatchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	rowID := ctx.Param("rowId")
	c.apply(ctx, http.StatusOK, "Seat override saved", func(e *editor.Editor) (interface{}, error) {
		return e.SetSpecialSeat(rowID, seatIndex, req)
	})
}

func (c *Controller) ClearSpecialSeat(ctx *gin.Context) {
	seatIndex, ok := seatIndexParam(ctx)
	if !ok {
		return
	}

	rowID := ctx.Param("rowId")
	c.apply(ctx, http.StatusOK, "Seat override cleared", func(e *editor.Editor) (interface{}, error) {
		e.ClearSpecialSeat(rowID, seatIndex)
		return nil, nil
	})
}

// Export godoc
// @Summary Export the confirmed seat map
// @Tags studio
// @Produce json
// @Param sid path string true "Session ID"
// @Success 200 {object} response.StandardApiResponse
// @Router /admin/layouts/sessions/{sid}/export [get]
func (c *Controller) Export(ctx *gin.Context) {
	export, err := c.service.Export(ctx.Request.Context(), ctx.Param("sid"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seat map exported", export, nil)
}

// Save godoc
// @Summary Persist the confirmed seat map to the event
// @Tags studio
// @Produce json
// @Param sid path string true "Session ID"
// @Success 200 {object} response.StandardApiResponse
// @Router /admin/layouts/sessions/{sid}/save [post]
func (c *Controller) Save(ctx *gin.Context) {
	session, err := c.service.Save(ctx.Request.Context(), ctx.Param("sid"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seat map saved", session, nil)
}

func (c *Controller) apply(ctx *gin.Context, status int, message string, op Operation) {
	session, err := c.service.Apply(ctx.Request.Context(), ctx.Param("sid"), op)
	if err != nil {
		respondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", status, message, session, nil)
}

func seatIndexParam(ctx *gin.Context) (int, bool) {
	idx, err := strconv.Atoi(ctx.Param("seatIndex"))
	if err != nil || idx < 0 {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid seat index", nil, ctx.Param("seatIndex"))
		return 0, false
	}
	return idx, true
}

func respondError(ctx *gin.Context, err error) {
	if response.RespondValidation(ctx, err) {
		return
	}
	switch {
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, events.ErrEventNotFound),
		errors.Is(err, editor.ErrRowNotFound),
		errors.Is(err, editor.ErrSectorNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, err.Error(), nil, nil)
	case errors.Is(err, editor.ErrDraftOpen),
		errors.Is(err, editor.ErrNoDraft):
		response.RespondJSON(ctx, "error", http.StatusConflict, err.Error(), nil, nil)
	case errors.Is(err, events.ErrInvalidEventID):
		response.RespondJSON(ctx, "error", http.StatusBadRequest, err.Error(), nil, nil)
	default:
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Editor operation failed", nil, err.Error())
	}
}
