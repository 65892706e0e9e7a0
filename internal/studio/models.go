// Package studio hosts seat map editor sessions for the back office. Each session keeps the
// serialized editor in Redis so any API instance can continue it.
package studio

import (
	"errors"
	"time"

	"boxoffice/internal/editor"
	"boxoffice/internal/seatmap"
)

var ErrSessionNotFound = errors.New("editor session not found")

// Session is one operator's editing session over an event's seat map
type Session struct {
	ID        string       `json:"id"`
	EventID   string       `json:"eventId"`
	CreatedBy string       `json:"createdBy"`
	State     editor.State `json:"state"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// SessionView is what every session endpoint answers with
type SessionView struct {
	ID      string         `json:"id"`
	EventID string         `json:"eventId"`
	Preview editor.Preview `json:"preview"`
	Draft   *editor.Draft  `json:"draft,omitempty"`
	Result  interface{}    `json:"result,omitempty"`
}

type ExportView struct {
	SeatMapConfig seatmap.Config          `json:"seatMapConfig"`
	Sectores      []seatmap.SectorSummary `json:"sectores"`
}
