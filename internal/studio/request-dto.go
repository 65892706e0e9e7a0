package studio

import "boxoffice/internal/editor"

type OpenSessionRequest struct {
	EventID string `json:"eventId" binding:"required,uuid"`
}

type StartSectorRequest struct {
	ColorIndex int `json:"colorIndex"`
}

type MoveRowRequest struct {
	Index     int `json:"index"`
	Direction int `json:"direction"`
}

// GenerateRowsRequest leaves range checks to the editor so failures are reported per field
type GenerateRowsRequest struct {
	Count       int `json:"count"`
	SeatsPerRow int `json:"seatsPerRow"`
	Columns     int `json:"columns"`
}

type ResizeRowRequest struct {
	Seats   int `json:"seats"`
	Columns int `json:"columns"`
}

type (
	DraftPatchRequest       = editor.DraftPatch
	RowPatchRequest         = editor.RowPatch
	SpecialSeatPatchRequest = editor.SpecialSeatPatch
)
