package auth

import "boxoffice/internal/selection"

type ResumeResponse struct {
	Pending selection.PendingSelection `json:"pending"`
}
