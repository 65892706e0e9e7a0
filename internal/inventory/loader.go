// Package inventory is the storefront's proxy to the live seat inventory. When the inventory
// service cannot answer, it synthesizes a seat list of the same shape so the grid stays usable.
package inventory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"boxoffice/internal/seatmap"
	"boxoffice/internal/shared/apiclient"
	"boxoffice/internal/shared/config"
	"boxoffice/internal/shared/metrics"
	"boxoffice/pkg/logger"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
)

// ErrMalformed reports a 2xx answer that is not a usable seat list
var ErrMalformed = errors.New("malformed seat inventory")

// Result is a resolved seat list and where it came from. Cause is set for demo results.
type Result struct {
	Seats []seatmap.Seat
	Mode  Mode
	Cause error
}

type Loader struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker[[]seatmap.Seat]
	synth   *Synthesizer
	shapes  ShapeResolver
	logger  *logger.Logger
}

type Option func(*Loader)

func WithSource(src Source) Option {
	return func(l *Loader) { l.synth.source = src }
}

func WithShapes(shapes ShapeResolver) Option {
	return func(l *Loader) { l.shapes = shapes }
}

func WithLogger(log *logger.Logger) Option {
	return func(l *Loader) { l.logger = log }
}

func NewLoader(cfg config.StorefrontConfig, opts ...Option) *Loader {
	l := &Loader{
		http: apiclient.New(cfg.APIBaseURL, cfg.InventoryTimeout),
		synth: NewSynthesizer(Policy{
			Occupied: cfg.DemoOccupied,
			Reserved: cfg.DemoReserved,
		}, nil),
		shapes: StaticShapes{Rows: cfg.DemoRows, SeatsPerRow: cfg.DemoSeatsPerRow, Price: cfg.DemoPrice},
		logger: logger.GetDefault(),
	}

	maxFailures := uint32(max(cfg.BreakerMaxFailures, 1))
	l.breaker = gobreaker.NewCircuitBreaker[[]seatmap.Seat](gobreaker.Settings{
		Name:        "seat-inventory",
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l.logger.Warn("inventory circuit breaker changed state",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadSeats resolves a sector's seats. It never fails: any problem with the live request
// yields a synthesized list and Mode demo.
func (l *Loader) LoadSeats(ctx context.Context, eventID, sectorID string) Result {
	start := time.Now()
	seats, err := l.breaker.Execute(func() ([]seatmap.Seat, error) {
		return l.fetch(ctx, eventID, sectorID)
	})
	if err == nil {
		metrics.RecordInventoryLoad(string(ModeLive), time.Since(start))
		return Result{Seats: seats, Mode: ModeLive}
	}

	l.logger.LogDemoFallback(ctx, eventID, sectorID, "inventory", err)
	seats = l.synth.Synthesize(l.shapes.Shape(eventID, sectorID))
	metrics.RecordInventoryLoad(string(ModeDemo), time.Since(start))
	return Result{Seats: seats, Mode: ModeDemo, Cause: err}
}

func (l *Loader) fetch(ctx context.Context, eventID, sectorID string) ([]seatmap.Seat, error) {
	resp, err := l.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"eventId":  eventID,
			"sectorId": sectorID,
		}).
		Get("/events/{eventId}/sectors/{sectorId}/seats")
	if err := apiclient.Check(resp, err); err != nil {
		return nil, fmt.Errorf("failed to load seats: %w", err)
	}
	return decodeSeats(resp.Body())
}

// decodeSeats accepts a bare array or an envelope whose data is the array
func decodeSeats(body []byte) ([]seatmap.Seat, error) {
	body = bytes.TrimSpace(body)
	var seats []seatmap.Seat
	switch {
	case len(body) > 0 && body[0] == '[':
		if err := json.Unmarshal(body, &seats); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	case len(body) > 0 && body[0] == '{':
		var env apiclient.Envelope[[]seatmap.Seat]
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		seats = env.Data
	default:
		return nil, fmt.Errorf("%w: unexpected body", ErrMalformed)
	}

	if len(seats) == 0 {
		return nil, fmt.Errorf("%w: no seats", ErrMalformed)
	}
	for i, s := range seats {
		if s.ID == "" || s.Row == "" || s.Number < 1 || !s.Status.Valid() || s.Price < 0 {
			return nil, fmt.Errorf("%w: seat %d is incomplete", ErrMalformed, i)
		}
	}
	return seats, nil
}
