package seats

import (
	"context"
	"errors"
	"fmt"

	"boxoffice/internal/seatmap"
	"boxoffice/internal/shared/metrics"
	"boxoffice/pkg/logger"
)

// SeatMapSource returns the persisted seat map of an event
type SeatMapSource interface {
	GetSeatMap(ctx context.Context, eventID string) (*seatmap.Config, error)
}

type Service interface {
	// SectorSeats lists a sector's seats with live holds reported as RESERVED
	SectorSeats(ctx context.Context, eventID, sectorID string) ([]seatmap.Seat, error)
	Reserve(ctx context.Context, eventID, seatID, userID string) (*Reservation, error)
	Release(ctx context.Context, eventID, seatID, userID string) error
	Holders(ctx context.Context, eventID string, seatIDs []string) (map[string]string, error)
	// Locate resolves a seat id of an event to its sector and storefront seat
	Locate(ctx context.Context, eventID, seatID string) (*Reservation, error)
}

type service struct {
	maps   SeatMapSource
	holds  *HoldStore
	logger *logger.Logger
}

func NewService(maps SeatMapSource, holds *HoldStore, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{maps: maps, holds: holds, logger: log}
}

func (s *service) SectorSeats(ctx context.Context, eventID, sectorID string) ([]seatmap.Seat, error) {
	cfg, err := s.maps.GetSeatMap(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if _, ok := cfg.Sector(sectorID); !ok {
		return nil, ErrSectorNotFound
	}

	seats := cfg.SectorSeats(sectorID)
	held, err := s.holds.Held(ctx, eventID)
	if err != nil {
		return nil, err
	}
	for i := range seats {
		if _, ok := held[seats[i].ID]; ok && seats[i].Status == seatmap.StatusAvailable {
			seats[i].Status = seatmap.StatusReserved
		}
	}
	return seats, nil
}

func (s *service) Locate(ctx context.Context, eventID, seatID string) (*Reservation, error) {
	cfg, err := s.maps.GetSeatMap(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return locate(cfg, eventID, seatID)
}

func (s *service) Reserve(ctx context.Context, eventID, seatID, userID string) (*Reservation, error) {
	res, err := s.Locate(ctx, eventID, seatID)
	if err != nil {
		s.reject(ctx, eventID, seatID, userID, err)
		return nil, err
	}
	if res.Seat.Status != seatmap.StatusAvailable {
		s.reject(ctx, eventID, seatID, userID, ErrSeatTaken)
		return nil, ErrSeatTaken
	}

	if err := s.holds.Hold(ctx, eventID, seatID, userID); err != nil {
		s.reject(ctx, eventID, seatID, userID, err)
		return nil, err
	}

	metrics.RecordReservation("accepted")
	s.logger.LogSeatReserved(ctx, eventID, seatID, userID)
	res.UserID = userID
	res.Seat.Status = seatmap.StatusReserved
	return res, nil
}

func (s *service) Release(ctx context.Context, eventID, seatID, userID string) error {
	if err := s.holds.Release(ctx, eventID, seatID, userID); err != nil {
		return err
	}
	metrics.ReleasesTotal.Inc()
	return nil
}

func (s *service) Holders(ctx context.Context, eventID string, seatIDs []string) (map[string]string, error) {
	return s.holds.Holders(ctx, eventID, seatIDs)
}

func (s *service) reject(ctx context.Context, eventID, seatID, userID string, err error) {
	outcome := "error"
	switch {
	case errors.Is(err, ErrSeatTaken):
		outcome = "taken"
	case errors.Is(err, ErrSeatNotFound):
		outcome = "invalid"
	}
	metrics.RecordReservation(outcome)
	s.logger.LogReservationRejected(ctx, eventID, seatID, userID, err)
}

// locate finds the row whose label prefixes the seat id. Row labels are unique within a map.
func locate(cfg *seatmap.Config, eventID, seatID string) (*Reservation, error) {
	label, number, ok := seatmap.ParseSeatID(seatID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSeatNotFound, seatID)
	}
	for _, row := range cfg.Rows {
		if row.Name != label || row.SectorID == "" {
			continue
		}
		if number > row.Seats {
			break
		}
		resolved := cfg.ResolveSeat(row, number-1)
		return &Reservation{
			EventID:  eventID,
			SectorID: row.SectorID,
			Seat: seatmap.Seat{
				ID:     seatID,
				Row:    row.Name,
				Number: number,
				Status: resolved.Status.LiveStatus(),
				Price:  resolved.Price,
			},
		}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrSeatNotFound, seatID)
}
