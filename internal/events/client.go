package events

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"boxoffice/internal/seatmap"
	"boxoffice/internal/shared/apiclient"

	"github.com/go-resty/resty/v2"
)

// Client talks to the event API over HTTP. It satisfies editor.Persister so tools outside the
// server process can save seat maps.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL string, timeout time.Duration, token string) *Client {
	c := apiclient.New(baseURL, timeout)
	if token != "" {
		c.SetAuthToken(token)
	}
	return &Client{http: c}
}

func (c *Client) GetEvent(ctx context.Context, eventID string) (*EventResponse, error) {
	var env apiclient.Envelope[EventResponse]
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", eventID).
		SetResult(&env).
		Get("/events/{id}")
	if err := apiclient.Check(resp, err); err != nil {
		if resp != nil && resp.StatusCode() == http.StatusNotFound {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event %s: %w", eventID, err)
	}
	return &env.Data, nil
}

func (c *Client) UpdateEvent(ctx context.Context, eventID string, update seatmap.EventUpdate) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", eventID).
		SetBody(update).
		Put("/events/{id}")
	if err := apiclient.Check(resp, err); err != nil {
		if resp != nil && resp.StatusCode() == http.StatusNotFound {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to update event %s: %w", eventID, err)
	}
	return nil
}
