package events

import (
	"context"
	"errors"
	"fmt"
	"math"

	"boxoffice/internal/seatmap"
	"boxoffice/internal/shared/constants"
	"boxoffice/internal/shared/metrics"
	"boxoffice/pkg/cache"
	"boxoffice/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	CreateEvent(ctx context.Context, adminID string, req CreateEventRequest) (*EventResponse, error)
	GetEvent(ctx context.Context, id string) (*EventResponse, error)
	GetSeatMap(ctx context.Context, id string) (*seatmap.Config, error)
	ListEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error)
	UpdateSeatMap(ctx context.Context, id string, update seatmap.EventUpdate) (*EventResponse, error)
	// UpdateEvent lets the seat map editor persist straight through the service
	UpdateEvent(ctx context.Context, id string, update seatmap.EventUpdate) error
	DeleteEvent(ctx context.Context, id string) error
}

type service struct {
	repo   Repository
	cache  cache.Service
	logger *logger.Logger
}

func NewService(repo Repository, cacheService cache.Service, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{repo: repo, cache: cacheService, logger: log}
}

func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrInvalidEventID, id)
	}
	return parsed, nil
}

func (s *service) CreateEvent(ctx context.Context, adminID string, req CreateEventRequest) (*EventResponse, error) {
	status := StatusDraft
	if req.Status != "" {
		status = EventStatus(req.Status)
	}
	event := &Event{
		Name:        req.Name,
		Description: req.Description,
		Venue:       req.Venue,
		StartsAt:    req.StartsAt.UTC(),
		Status:      status,
		Sectors:     []seatmap.SectorSummary{},
		CreatedBy:   adminID,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	s.invalidate(ctx, "")

	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) GetEvent(ctx context.Context, id string) (*EventResponse, error) {
	eventID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	fetch := func() (interface{}, error) {
		event, err := s.repo.GetByID(ctx, eventID)
		if err != nil {
			return nil, err
		}
		return event.ToResponse(), nil
	}

	var resp EventResponse
	if s.cache == nil {
		data, err := fetch()
		if err != nil {
			return nil, s.wrapLookup(err)
		}
		resp = data.(EventResponse)
		return &resp, nil
	}

	if err := s.cache.GetOrSet(ctx, constants.BuildEventDetailKey(eventID.String()), constants.TTL_EVENT_DETAIL, fetch, &resp); err != nil {
		return nil, s.wrapLookup(err)
	}
	return &resp, nil
}

func (s *service) GetSeatMap(ctx context.Context, id string) (*seatmap.Config, error) {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.SeatMapConfig == nil {
		return &seatmap.Config{}, nil
	}
	return event.SeatMapConfig, nil
}

func (s *service) ListEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 {
		query.Limit = 20
	}

	fetch := func() (interface{}, error) {
		events, total, err := s.repo.List(ctx, query)
		if err != nil {
			return nil, err
		}
		out := &PaginatedEvents{
			Events:     make([]EventResponse, 0, len(events)),
			TotalCount: total,
			Page:       query.Page,
			Limit:      query.Limit,
			TotalPages: int(math.Ceil(float64(total) / float64(query.Limit))),
		}
		for i := range events {
			resp := events[i].ToResponse()
			// listings stay light; the seat map is served by the detail endpoint
			resp.SeatMapConfig = nil
			out.Events = append(out.Events, resp)
		}
		return out, nil
	}

	if s.cache == nil || query.Search != "" {
		data, err := fetch()
		if err != nil {
			return nil, fmt.Errorf("failed to list events: %w", err)
		}
		return data.(*PaginatedEvents), nil
	}

	var out PaginatedEvents
	key := constants.BuildEventListKey(query.Page, query.Limit, query.Status)
	if err := s.cache.GetOrSet(ctx, key, constants.TTL_EVENTS_LIST, fetch, &out); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return &out, nil
}

func (s *service) UpdateSeatMap(ctx context.Context, id string, update seatmap.EventUpdate) (*EventResponse, error) {
	eventID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if err := validateUpdate(update); err != nil {
		return nil, err
	}

	event, err := s.repo.UpdateSeatMap(ctx, eventID, update.Sectores, update.SeatMapConfig)
	if err != nil {
		return nil, s.wrapLookup(err)
	}
	s.invalidate(ctx, eventID.String())

	cfg := update.SeatMapConfig
	s.logger.LogSeatMapSaved(ctx, eventID.String(), len(cfg.Sectors), len(cfg.Rows), len(cfg.SpecialSeats))
	metrics.SeatMapsSaved.Inc()

	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) UpdateEvent(ctx context.Context, id string, update seatmap.EventUpdate) error {
	_, err := s.UpdateSeatMap(ctx, id, update)
	return err
}

func (s *service) DeleteEvent(ctx context.Context, id string) error {
	eventID, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, eventID); err != nil {
		return s.wrapLookup(err)
	}
	s.invalidate(ctx, eventID.String())
	return nil
}

// validateUpdate checks the seat map and that every summary matches a sector of the map
func validateUpdate(update seatmap.EventUpdate) error {
	if update.SeatMapConfig == nil {
		return seatmap.ValidationErrors{{Field: "seatMapConfig", Message: "seat map is required"}}
	}
	if err := update.SeatMapConfig.Validate(); err != nil {
		return err
	}

	var errs seatmap.ValidationErrors
	byName := make(map[string]seatmap.Sector, len(update.SeatMapConfig.Sectors))
	for _, s := range update.SeatMapConfig.Sectors {
		byName[s.Name] = s
	}
	if len(update.Sectores) != len(byName) {
		errs = append(errs, seatmap.ValidationError{
			Field:   "sectores",
			Message: fmt.Sprintf("expected %d sector summaries, got %d", len(byName), len(update.Sectores)),
		})
	}
	for i, summary := range update.Sectores {
		field := fmt.Sprintf("sectores[%d]", i)
		sector, ok := byName[summary.Nombre]
		switch {
		case !ok:
			errs = append(errs, seatmap.ValidationError{Field: field + ".nombre", Message: "no sector named " + summary.Nombre})
		case summary.Total != sector.Total:
			errs = append(errs, seatmap.ValidationError{Field: field + ".total", Message: fmt.Sprintf("total %d does not match seat map total %d", summary.Total, sector.Total)})
		case summary.Disponible > summary.Total:
			errs = append(errs, seatmap.ValidationError{Field: field + ".disponible", Message: "available seats exceed total"})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (s *service) wrapLookup(err error) error {
	if errors.Is(err, ErrEventNotFound) {
		return ErrEventNotFound
	}
	return fmt.Errorf("failed to load event: %w", err)
}

func (s *service) invalidate(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if eventID != "" {
		if err := s.cache.Delete(ctx, constants.BuildEventDetailKey(eventID)); err != nil {
			s.logger.WarnContext(ctx, "failed to invalidate event cache", "event_id", eventID, "error", err)
		}
	}
	if err := s.cache.DeletePattern(ctx, constants.CACHE_KEY_EVENTS_LIST+"*"); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate event listings", "error", err)
	}
}
