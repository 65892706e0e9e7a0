package inventory

import (
	"boxoffice/internal/seatmap"
)

// ShapeResolver returns the seat template of a sector used when the live inventory is out of reach
type ShapeResolver interface {
	Shape(eventID, sectorID string) []seatmap.Seat
}

// StaticShapes gives every sector the same Rows x SeatsPerRow grid
type StaticShapes struct {
	Rows        int
	SeatsPerRow int
	Price       float64
}

func (s StaticShapes) Shape(_, _ string) []seatmap.Seat {
	rows, perRow := max(s.Rows, 1), max(s.SeatsPerRow, 1)
	seats := make([]seatmap.Seat, 0, rows*perRow)
	for r := 0; r < rows; r++ {
		label := seatmap.RowLabel(r)
		for n := 1; n <= perRow; n++ {
			seats = append(seats, seatmap.Seat{
				ID:     seatmap.SeatID(label, n),
				Row:    label,
				Number: n,
				Status: seatmap.StatusAvailable,
				Price:  s.Price,
			})
		}
	}
	return seats
}

// LayoutShapes takes the shape from a seat map the storefront already holds, such as the one
// returned with the event. Sectors the map does not know fall back to Fallback.
type LayoutShapes struct {
	Config   *seatmap.Config
	Fallback ShapeResolver
}

func (l LayoutShapes) Shape(eventID, sectorID string) []seatmap.Seat {
	if l.Config != nil {
		if seats := l.Config.SectorSeats(sectorID); len(seats) > 0 {
			return seats
		}
	}
	if l.Fallback == nil {
		return StaticShapes{Rows: 1, SeatsPerRow: 1}.Shape(eventID, sectorID)
	}
	return l.Fallback.Shape(eventID, sectorID)
}
