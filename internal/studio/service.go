package studio

import (
	"context"
	"fmt"
	"time"

	"boxoffice/internal/editor"
	"boxoffice/internal/seatmap"
	"boxoffice/pkg/logger"

	"github.com/google/uuid"
)

// SeatMapSource returns the persisted seat map of an event
type SeatMapSource interface {
	GetSeatMap(ctx context.Context, eventID string) (*seatmap.Config, error)
}

// Operation mutates an editor and returns what the endpoint reports besides the preview
type Operation func(e *editor.Editor) (interface{}, error)

type Service interface {
	Open(ctx context.Context, eventID, adminID string) (*SessionView, error)
	View(ctx context.Context, sessionID string) (*SessionView, error)
	Apply(ctx context.Context, sessionID string, op Operation) (*SessionView, error)
	Export(ctx context.Context, sessionID string) (*ExportView, error)
	Save(ctx context.Context, sessionID string) (*SessionView, error)
	Close(ctx context.Context, sessionID string) error
}

type service struct {
	repo      Repository
	maps      SeatMapSource
	persister editor.Persister
	logger    *logger.Logger
	now       func() time.Time
}

func NewService(repo Repository, maps SeatMapSource, persister editor.Persister, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{repo: repo, maps: maps, persister: persister, logger: log, now: time.Now}
}

func (s *service) Open(ctx context.Context, eventID, adminID string) (*SessionView, error) {
	cfg, err := s.maps.GetSeatMap(ctx, eventID)
	if err != nil {
		return nil, err
	}
	ed, err := editor.Load(*cfg)
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:        uuid.NewString(),
		EventID:   eventID,
		CreatedBy: adminID,
		State:     ed.State(),
		UpdatedAt: s.now(),
	}
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "editor session opened",
		"session_id", session.ID,
		"event_id", eventID,
		"admin_id", adminID,
	)
	return view(session, ed, nil), nil
}

func (s *service) View(ctx context.Context, sessionID string) (*SessionView, error) {
	session, ed, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return view(session, ed, nil), nil
}

func (s *service) Apply(ctx context.Context, sessionID string, op Operation) (*SessionView, error) {
	session, ed, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	result, err := op(ed)
	if err != nil {
		return nil, err
	}

	session.State = ed.State()
	session.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}
	return view(session, ed, result), nil
}

func (s *service) Export(ctx context.Context, sessionID string) (*ExportView, error) {
	_, ed, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	cfg := ed.Export()
	return &ExportView{SeatMapConfig: cfg, Sectores: cfg.Summaries()}, nil
}

func (s *service) Save(ctx context.Context, sessionID string) (*SessionView, error) {
	session, ed, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	update, err := ed.Save(ctx, s.persister, session.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to save seat map: %w", err)
	}

	session.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}
	return view(session, ed, update.Sectores), nil
}

func (s *service) Close(ctx context.Context, sessionID string) error {
	return s.repo.Delete(ctx, sessionID)
}

func (s *service) load(ctx context.Context, sessionID string) (*Session, *editor.Editor, error) {
	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	ed, err := editor.Restore(session.State)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to restore editor session %s: %w", sessionID, err)
	}
	return session, ed, nil
}

func view(session *Session, ed *editor.Editor, result interface{}) *SessionView {
	v := &SessionView{
		ID:      session.ID,
		EventID: session.EventID,
		Preview: ed.Preview(),
		Result:  result,
	}
	if d, ok := ed.Draft(); ok {
		v.Draft = &d
	}
	return v
}
