package editor

import (
	"slices"

	"boxoffice/internal/seatmap"
)

// SpecialSeatPatch overrides parts of one seat; nil fields keep their current value
type SpecialSeatPatch struct {
	SectorLabel *string               `json:"sector"`
	Color       *string               `json:"color"`
	Price       *float64              `json:"price"`
	Status      seatmap.SpecialStatus `json:"status"`
}

// SetSpecialSeat upserts the override of a confirmed row's seat
func (e *Editor) SetSpecialSeat(rowID string, seatIndex int, p SpecialSeatPatch) (seatmap.SpecialSeat, error) {
	idx := slices.IndexFunc(e.rows, func(r seatmap.Row) bool { return r.ID == rowID })
	if idx < 0 {
		return seatmap.SpecialSeat{}, ErrRowNotFound
	}

	var errs ValidationErrors
	if seatIndex < 0 || seatIndex >= e.rows[idx].Seats {
		errs = append(errs, fieldError("seatIndex", "seat is outside the row"))
	}
	if p.Price != nil && !(*p.Price >= 0) {
		errs = append(errs, fieldError("price", "price cannot be negative"))
	}
	if p.Status != "" && !p.Status.Valid() {
		errs = append(errs, fieldError("status", "status must be available, reserved or sold"))
	}
	if len(errs) > 0 {
		return seatmap.SpecialSeat{}, errs
	}

	key := seatmap.SeatKey{RowID: rowID, SeatIndex: seatIndex}
	seat, ok := e.special[key]
	if !ok {
		seat = seatmap.SpecialSeat{RowID: rowID, SeatIndex: seatIndex, Status: seatmap.SpecialAvailable}
	}
	if p.SectorLabel != nil {
		v := *p.SectorLabel
		seat.SectorLabel = &v
	}
	if p.Color != nil {
		v := *p.Color
		seat.Color = &v
	}
	if p.Price != nil {
		v := *p.Price
		seat.Price = &v
	}
	if p.Status != "" {
		seat.Status = p.Status
	}
	e.special[key] = seat
	return seat, nil
}

// ClearSpecialSeat drops an override; clearing a missing one is a no-op
func (e *Editor) ClearSpecialSeat(rowID string, seatIndex int) {
	delete(e.special, seatmap.SeatKey{RowID: rowID, SeatIndex: seatIndex})
}
