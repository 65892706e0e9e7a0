package seats

import "boxoffice/internal/seatmap"

// Reservation is a seat located in an event's map, optionally held by a shopper
type Reservation struct {
	EventID  string       `json:"eventId"`
	SectorID string       `json:"sectorId"`
	UserID   string       `json:"userId,omitempty"`
	Seat     seatmap.Seat `json:"seat"`
}
