package response

import (
	"errors"
	"net/http"

	"boxoffice/internal/seatmap"

	"github.com/gin-gonic/gin"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// StandardApiResponse is the envelope of every REST reply. Data is set on success,
// Errors carries per-field details on validation failures.
type StandardApiResponse struct {
	Status     string      `json:"status"`
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Errors     interface{} `json:"errors,omitempty"`
}

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errs interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errs,
	})
}

// RespondValidation answers 422 with one entry per offending field when err carries
// seat map validation errors, and reports whether it did
func RespondValidation(c *gin.Context, err error) bool {
	var verrs seatmap.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	RespondJSON(c, StatusError, http.StatusUnprocessableEntity, "Validation failed", nil, verrs)
	return true
}
