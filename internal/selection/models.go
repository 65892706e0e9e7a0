// Package selection is the shopper's side of the seat map: the selection rules, the screen
// session that reconciles them with live seat activity, and the hand-off to checkout.
package selection

import (
	"context"
	"errors"
	"fmt"

	"boxoffice/internal/seatmap"
)

const DefaultMaxSeats = 10

var (
	ErrSelectionLimit = errors.New("selection limit reached")
	ErrEmptySelection = errors.New("select at least one seat")
	ErrHandedOff      = errors.New("selection already handed off")
	ErrSessionClosed  = errors.New("selection session closed")
	ErrNotLoaded      = errors.New("seats are still loading")
	ErrUnknownSeat    = errors.New("seat not found")
	ErrLoginRequired  = errors.New("login is required to check out")
	ErrNoCheckout     = errors.New("checkout is not available")
)

// LimitError is returned when a toggle would exceed the per-shopper seat limit
type LimitError struct {
	Max int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("you can select up to %d seats", e.Max)
}

func (e *LimitError) Is(target error) bool {
	return target == ErrSelectionLimit
}

// PendingSelection is carried through the login flow so the shopper gets their seats back
type PendingSelection struct {
	EventID  string   `json:"eventId"`
	SectorID string   `json:"sectorId"`
	SeatIDs  []string `json:"seatIds"`
}

type AuthRedirect struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// HandOffPayload is what checkout receives
type HandOffPayload struct {
	EventID  string         `json:"eventId"`
	SectorID string         `json:"sectorId"`
	Seats    []seatmap.Seat `json:"seats"`
}

type Authenticator interface {
	LoginRedirect(ctx context.Context, pending PendingSelection) (AuthRedirect, error)
}

type Checkout interface {
	HandOff(ctx context.Context, payload HandOffPayload) (string, error)
}

type NoticeKind string

const (
	NoticeLimit   NoticeKind = "limit"
	NoticeTaken   NoticeKind = "taken"
	NoticeDemo    NoticeKind = "demo"
	NoticeResumed NoticeKind = "resumed"
)

// Notice is a dismissible message shown next to the seat grid
type Notice struct {
	ID      int        `json:"id"`
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
	SeatID  string     `json:"seatId,omitempty"`
}

// HandOffResult is either a completed checkout hand-off or a login redirect
type HandOffResult struct {
	HandOffID string        `json:"handOffId,omitempty"`
	Redirect  *AuthRedirect `json:"redirect,omitempty"`
}
