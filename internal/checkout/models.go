package checkout

import (
	"errors"
	"time"

	"boxoffice/internal/seatmap"
)

var (
	ErrTooManySeats    = errors.New("too many seats in one hand-off")
	ErrDuplicateSeat   = errors.New("seat listed more than once")
	ErrMixedSectors    = errors.New("all seats must belong to the requested sector")
	ErrSeatUnavailable = errors.New("seat is held by another shopper or sold")
)

// HandOff is the record published to the checkout stream
type HandOff struct {
	ID        string         `json:"id"`
	EventID   string         `json:"eventId"`
	SectorID  string         `json:"sectorId"`
	UserID    string         `json:"userId"`
	Seats     []seatmap.Seat `json:"seats"`
	Total     float64        `json:"total"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (h *HandOff) SeatIDs() []string {
	ids := make([]string, len(h.Seats))
	for i, s := range h.Seats {
		ids[i] = s.ID
	}
	return ids
}
