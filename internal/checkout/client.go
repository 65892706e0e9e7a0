package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"boxoffice/internal/selection"
	"boxoffice/internal/shared/apiclient"
)

// Client hands selections to the checkout endpoint on behalf of a logged-in shopper
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

func (c *Client) HandOff(ctx context.Context, payload selection.HandOffPayload) (string, error) {
	var env apiclient.Envelope[HandOffResponse]
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(HandOffRequest{EventID: payload.EventID, SectorID: payload.SectorID, Seats: payload.Seats}).
		SetResult(&env).
		Post("/checkout")
	if err := apiclient.Check(resp, err); err != nil {
		return "", fmt.Errorf("failed to hand off selection: %w", err)
	}
	return env.Data.HandOffID, nil
}
