// Package apiclient builds the resty clients the storefront and the back-office tools use to
// talk to the box office API, and decodes its standard response envelope.
package apiclient

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
)

// ErrUnexpectedStatus is wrapped by every non-2xx answer
var ErrUnexpectedStatus = errors.New("unexpected status")

// Envelope mirrors response.StandardApiResponse with a typed payload
type Envelope[T any] struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Message    string          `json:"message"`
	Data       T               `json:"data"`
	Errors     json.RawMessage `json:"errors,omitempty"`
}

// New returns a JSON client rooted at baseURL
func New(baseURL string, timeout time.Duration) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
}

// Check turns a transport error or a non-2xx answer into an error
func Check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		var env Envelope[json.RawMessage]
		if json.Unmarshal(resp.Body(), &env) == nil && env.Message != "" {
			return fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode(), env.Message)
		}
		return fmt.Errorf("%w %d", ErrUnexpectedStatus, resp.StatusCode())
	}
	return nil
}
