package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"boxoffice/internal/seatmap"
	"boxoffice/internal/seats"
	"boxoffice/internal/selection"
	"boxoffice/internal/shared/metrics"
	"boxoffice/pkg/logger"
)

// SeatLookup is the part of the seat service checkout relies on
type SeatLookup interface {
	Locate(ctx context.Context, eventID, seatID string) (*seats.Reservation, error)
	Holders(ctx context.Context, eventID string, seatIDs []string) (map[string]string, error)
}

type Service interface {
	HandOff(ctx context.Context, userID string, req HandOffRequest) (*HandOff, error)
}

type service struct {
	seats     SeatLookup
	publisher Publisher
	maxSeats  int
	logger    *logger.Logger
}

func NewService(seats SeatLookup, publisher Publisher, maxSeats int, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	if maxSeats <= 0 {
		maxSeats = selection.DefaultMaxSeats
	}
	return &service{seats: seats, publisher: publisher, maxSeats: maxSeats, logger: log}
}

// HandOff checks a shopper's selection against the seat map and the live holds, then
// publishes it. Prices come from the seat map, not from the request.
func (s *service) HandOff(ctx context.Context, userID string, req HandOffRequest) (*HandOff, error) {
	if len(req.Seats) > s.maxSeats {
		return nil, s.reject(fmt.Errorf("%w: %d of at most %d", ErrTooManySeats, len(req.Seats), s.maxSeats))
	}

	handOff := &HandOff{
		ID:        uuid.NewString(),
		EventID:   req.EventID,
		SectorID:  req.SectorID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	seen := make(map[string]bool, len(req.Seats))
	for _, requested := range req.Seats {
		if seen[requested.ID] {
			return nil, s.reject(fmt.Errorf("%w: %s", ErrDuplicateSeat, requested.ID))
		}
		seen[requested.ID] = true

		located, err := s.seats.Locate(ctx, req.EventID, requested.ID)
		if err != nil {
			return nil, s.reject(err)
		}
		if located.SectorID != req.SectorID {
			return nil, s.reject(fmt.Errorf("%w: %s is in %s", ErrMixedSectors, requested.ID, located.SectorID))
		}
		handOff.Seats = append(handOff.Seats, located.Seat)
		handOff.Total += located.Seat.Price
	}

	holders, err := s.seats.Holders(ctx, req.EventID, handOff.SeatIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to check seat holds: %w", err)
	}
	for i, seat := range handOff.Seats {
		holder := holders[seat.ID]
		switch {
		case holder != "" && holder != userID:
			return nil, s.reject(fmt.Errorf("%w: %s", ErrSeatUnavailable, seat.ID))
		case holder == "" && seat.Status != seatmap.StatusAvailable:
			return nil, s.reject(fmt.Errorf("%w: %s", ErrSeatUnavailable, seat.ID))
		}
		// the shopper's own hold shows as available to them
		handOff.Seats[i].Status = seatmap.StatusAvailable
	}

	if err := s.publisher.Publish(ctx, handOff); err != nil {
		metrics.RecordHandOff("failed")
		return nil, fmt.Errorf("failed to publish hand-off: %w", err)
	}

	metrics.RecordHandOff("accepted")
	s.logger.LogHandOff(ctx, handOff.ID, handOff.EventID, handOff.SectorID, userID, len(handOff.Seats))
	return handOff, nil
}

func (s *service) reject(err error) error {
	metrics.RecordHandOff("rejected")
	return err
}
