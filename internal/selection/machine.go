package selection

import "boxoffice/internal/seatmap"

type State string

const (
	StateIdle      State = "idle"
	StateSelecting State = "selecting"
	StateHandedOff State = "handedOff"
)

type Outcome string

const (
	OutcomeIgnored Outcome = "ignored"
	OutcomeAdded   Outcome = "added"
	OutcomeRemoved Outcome = "removed"
)

// Machine holds one shopper's selection. It does no I/O.
type Machine struct {
	max       int
	seats     []seatmap.Seat
	handedOff bool
}

func NewMachine(max int) *Machine {
	if max <= 0 {
		max = DefaultMaxSeats
	}
	return &Machine{max: max}
}

func (m *Machine) Max() int { return m.max }

// Toggle applies one click on a seat
func (m *Machine) Toggle(seat seatmap.Seat) (Outcome, error) {
	if m.handedOff {
		return OutcomeIgnored, ErrHandedOff
	}
	if seat.Status != seatmap.StatusAvailable {
		return OutcomeIgnored, nil
	}
	if m.Remove(seat.ID) {
		return OutcomeRemoved, nil
	}
	if len(m.seats) >= m.max {
		return OutcomeIgnored, &LimitError{Max: m.max}
	}
	m.seats = append(m.seats, seat)
	return OutcomeAdded, nil
}

// Remove drops a seat from the selection and reports whether it was selected
func (m *Machine) Remove(seatID string) bool {
	for i, s := range m.seats {
		if s.ID == seatID {
			m.seats = append(m.seats[:i], m.seats[i+1:]...)
			return true
		}
	}
	return false
}

func (m *Machine) Contains(seatID string) bool {
	for _, s := range m.seats {
		if s.ID == seatID {
			return true
		}
	}
	return false
}

// Seats returns the selection in the order it was made
func (m *Machine) Seats() []seatmap.Seat {
	out := make([]seatmap.Seat, len(m.seats))
	copy(out, m.seats)
	return out
}

func (m *Machine) IDs() []string {
	ids := make([]string, len(m.seats))
	for i, s := range m.seats {
		ids[i] = s.ID
	}
	return ids
}

func (m *Machine) Len() int { return len(m.seats) }

func (m *Machine) Total() float64 {
	var total float64
	for _, s := range m.seats {
		total += s.Price
	}
	return total
}

func (m *Machine) State() State {
	switch {
	case m.handedOff:
		return StateHandedOff
	case len(m.seats) == 0:
		return StateIdle
	default:
		return StateSelecting
	}
}

// Complete moves a non-empty selection to the terminal handed-off state
func (m *Machine) Complete() error {
	if m.handedOff {
		return ErrHandedOff
	}
	if len(m.seats) == 0 {
		return ErrEmptySelection
	}
	m.handedOff = true
	return nil
}

func (m *Machine) Reset() {
	m.seats = nil
	m.handedOff = false
}
