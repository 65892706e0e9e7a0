package checkout

import "boxoffice/internal/seatmap"

type HandOffRequest struct {
	EventID  string         `json:"eventId" binding:"required,uuid"`
	SectorID string         `json:"sectorId" binding:"required"`
	Seats    []seatmap.Seat `json:"seats" binding:"required,min=1"`
}

type HandOffResponse struct {
	HandOffID string  `json:"handOffId"`
	Total     float64 `json:"total"`
}
