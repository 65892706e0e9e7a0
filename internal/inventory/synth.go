package inventory

import (
	"math/rand/v2"

	"boxoffice/internal/seatmap"
)

// Source yields uniform numbers in [0, 1)
type Source interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// Policy is the status split of synthesized seats: the first Occupied share of draws is
// OCCUPIED, the next Reserved share RESERVED, the rest AVAILABLE
type Policy struct {
	Occupied float64
	Reserved float64
}

// Synthesizer builds a demo inventory with the same shape as a live one
type Synthesizer struct {
	policy Policy
	source Source
}

func NewSynthesizer(policy Policy, source Source) *Synthesizer {
	if source == nil {
		source = globalSource{}
	}
	return &Synthesizer{policy: policy, source: source}
}

// Synthesize assigns a drawn status to every available seat of the template. Seats the
// template already marks as taken keep their status, and prices are the template's own.
func (s *Synthesizer) Synthesize(template []seatmap.Seat) []seatmap.Seat {
	seats := make([]seatmap.Seat, len(template))
	for i, seat := range template {
		if seat.Status == "" || seat.Status == seatmap.StatusAvailable {
			seat.Status = s.draw()
		}
		seats[i] = seat
	}
	return seats
}

func (s *Synthesizer) draw() seatmap.SeatStatus {
	r := s.source.Float64()
	switch {
	case r < s.policy.Occupied:
		return seatmap.StatusOccupied
	case r < s.policy.Occupied+s.policy.Reserved:
		return seatmap.StatusReserved
	default:
		return seatmap.StatusAvailable
	}
}
