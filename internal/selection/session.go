package selection

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"boxoffice/internal/inventory"
	"boxoffice/internal/realtime"
	"boxoffice/internal/seatmap"
	"boxoffice/internal/shared/metrics"
	"boxoffice/pkg/logger"
)

type Inventory interface {
	LoadSeats(ctx context.Context, eventID, sectorID string) inventory.Result
}

// Channel is the real-time connection as the session uses it; *realtime.Channel implements it
type Channel interface {
	Start(ctx context.Context, eventID string)
	Statuses() <-chan realtime.Status
	Updates() <-chan realtime.Update
	ReserveSeat(eventID, seatID, userID string) bool
	ReleaseSeat(eventID, seatID, userID string) bool
	Close()
}

type SessionConfig struct {
	EventID  string
	SectorID string
	// UserID is empty for a shopper who has not logged in
	UserID   string
	MaxSeats int
	Resume   *PendingSelection
}

type Deps struct {
	Inventory Inventory
	Channel   Channel
	Auth      Authenticator
	Checkout  Checkout
	Logger    *logger.Logger
}

// View is a snapshot of the selection screen
type View struct {
	EventID  string          `json:"eventId"`
	SectorID string          `json:"sectorId"`
	Mode     inventory.Mode  `json:"mode"`
	Channel  realtime.Status `json:"channel"`
	Loaded   bool            `json:"loaded"`
	Seats    []seatmap.Seat  `json:"seats"`
	Selected []seatmap.Seat  `json:"selected"`
	Total    float64         `json:"total"`
	State    State           `json:"state"`
	Notices  []Notice        `json:"notices"`
}

type command func(*screen)

// Session drives one shopper's seat selection screen. A single goroutine owns the seat
// grid, the selection and the connectivity mode; every public method is a command to it.
type Session struct {
	deps    Deps
	ctx     context.Context
	cancel  context.CancelFunc
	cmds    chan command
	done    chan struct{}
	stopped chan struct{}
	loaded  chan struct{}
	final   View

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// screen is the state owned by the session goroutine
type screen struct {
	cfg       SessionConfig
	shopperID string
	deps      Deps
	ctx       context.Context
	loadedCh  chan struct{}

	seats    []seatmap.Seat
	index    map[string]int
	loaded   bool
	early    []realtime.Update
	machine  *Machine
	mode     *inventory.ModeTracker
	channel  realtime.Status
	notices  []Notice
	noticeID int
}

// Open starts loading the sector and connecting the real-time channel concurrently
func Open(ctx context.Context, cfg SessionConfig, deps Deps) *Session {
	if deps.Logger == nil {
		deps.Logger = logger.GetDefault()
	}
	ctx, cancel := context.WithCancel(ctx)

	s := &Session{
		deps:    deps,
		ctx:     ctx,
		cancel:  cancel,
		cmds:    make(chan command),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		loaded:  make(chan struct{}),
	}

	shopperID := cfg.UserID
	if shopperID == "" {
		shopperID = "guest-" + uuid.NewString()
	}
	sc := &screen{
		cfg:       cfg,
		shopperID: shopperID,
		deps:      deps,
		ctx:       ctx,
		loadedCh:  s.loaded,
		index:     make(map[string]int),
		machine:   NewMachine(cfg.MaxSeats),
		mode:      inventory.NewModeTracker(),
		channel:   realtime.StatusConnecting,
	}
	go s.loop(sc)

	// not tracked by wg: a load that outlives Close finds done closed and is dropped
	go func() {
		result := deps.Inventory.LoadSeats(ctx, cfg.EventID, cfg.SectorID)
		s.post(func(sc *screen) { sc.applyLoad(result) })
	}()

	if deps.Channel == nil {
		s.post(func(sc *screen) { sc.applyStatus(realtime.StatusFailed) })
	} else {
		deps.Channel.Start(ctx, cfg.EventID)
		s.wg.Add(1)
		go s.watch(deps.Channel)
	}
	return s
}

func (s *Session) loop(sc *screen) {
	defer close(s.stopped)
	for {
		select {
		case cmd := <-s.cmds:
			select {
			case <-s.done:
				// results arriving after Close are discarded
				s.final = sc.view()
				return
			default:
			}
			cmd(sc)
		case <-s.done:
			s.final = sc.view()
			return
		}
	}
}

func (s *Session) watch(ch Channel) {
	defer s.wg.Done()
	statuses, updates := ch.Statuses(), ch.Updates()
	for statuses != nil || updates != nil {
		select {
		case st, ok := <-statuses:
			if !ok {
				statuses = nil
				continue
			}
			if !s.post(func(sc *screen) { sc.applyStatus(st) }) {
				return
			}
		case u, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			if !s.post(func(sc *screen) { sc.applyUpdate(u) }) {
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *Session) post(cmd command) bool {
	select {
	case s.cmds <- cmd:
		return true
	case <-s.done:
		return false
	}
}

// call runs fn on the session goroutine and waits for it
func (s *Session) call(fn func(*screen)) error {
	reply := make(chan struct{})
	if !s.post(func(sc *screen) { fn(sc); close(reply) }) {
		return ErrSessionClosed
	}
	select {
	case <-reply:
		return nil
	case <-s.stopped:
		select {
		case <-reply:
			return nil
		default:
			return ErrSessionClosed
		}
	}
}

// Loaded is closed once the seat grid exists
func (s *Session) Loaded() <-chan struct{} { return s.loaded }

func (s *Session) View() View {
	var v View
	if err := s.call(func(sc *screen) { v = sc.view() }); err != nil {
		<-s.stopped
		return s.final
	}
	return v
}

// Toggle selects or deselects a seat of the grid
func (s *Session) Toggle(seatID string) (Outcome, error) {
	var (
		out Outcome
		err error
	)
	if callErr := s.call(func(sc *screen) { out, err = sc.toggle(seatID) }); callErr != nil {
		return OutcomeIgnored, callErr
	}
	return out, err
}

func (s *Session) Dismiss(noticeID int) {
	_ = s.call(func(sc *screen) { sc.dismiss(noticeID) })
}

// HandOff sends the selection to checkout, or asks an anonymous shopper to log in first.
// A successful hand-off ends the session.
func (s *Session) HandOff(ctx context.Context) (HandOffResult, error) {
	var (
		payload HandOffPayload
		pending PendingSelection
		userID  string
		err     error
	)
	callErr := s.call(func(sc *screen) {
		switch sc.machine.State() {
		case StateHandedOff:
			err = ErrHandedOff
			return
		case StateIdle:
			err = ErrEmptySelection
			return
		}
		payload = HandOffPayload{EventID: sc.cfg.EventID, SectorID: sc.cfg.SectorID, Seats: sc.machine.Seats()}
		pending = PendingSelection{EventID: sc.cfg.EventID, SectorID: sc.cfg.SectorID, SeatIDs: sc.machine.IDs()}
		userID = sc.cfg.UserID
	})
	if callErr != nil {
		return HandOffResult{}, callErr
	}
	if err != nil {
		metrics.RecordHandOff("rejected")
		return HandOffResult{}, err
	}

	if userID == "" {
		if s.deps.Auth == nil {
			return HandOffResult{}, ErrLoginRequired
		}
		redirect, err := s.deps.Auth.LoginRedirect(ctx, pending)
		if err != nil {
			return HandOffResult{}, fmt.Errorf("failed to build login redirect: %w", err)
		}
		metrics.RecordHandOff("redirected")
		return HandOffResult{Redirect: &redirect}, nil
	}

	if s.deps.Checkout == nil {
		metrics.RecordHandOff("failed")
		return HandOffResult{}, ErrNoCheckout
	}
	handOffID, err := s.deps.Checkout.HandOff(ctx, payload)
	if err != nil {
		metrics.RecordHandOff("failed")
		return HandOffResult{}, fmt.Errorf("failed to hand off selection: %w", err)
	}
	if callErr := s.call(func(sc *screen) { err = sc.machine.Complete() }); callErr != nil {
		return HandOffResult{}, callErr
	}
	if err != nil {
		return HandOffResult{}, err
	}

	metrics.RecordHandOff("accepted")
	s.deps.Logger.LogHandOff(ctx, handOffID, payload.EventID, payload.SectorID, userID, len(payload.Seats))
	s.Close()
	return HandOffResult{HandOffID: handOffID}, nil
}

// Close leaves the screen: the channel and any in-flight load are torn down and their
// late results are dropped. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.cancel()
		<-s.stopped
		if s.deps.Channel != nil {
			s.deps.Channel.Close()
		}
		s.wg.Wait()
	})
}
