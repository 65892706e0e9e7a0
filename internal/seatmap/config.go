package seatmap

import (
	"slices"
)

// EmptyMessage is what an empty seat map renders as
const EmptyMessage = "no sectors defined"

func (c *Config) IsEmpty() bool {
	return c == nil || len(c.Sectors) == 0
}

// Sector looks up a sector by id
func (c *Config) Sector(id string) (Sector, bool) {
	for _, s := range c.Sectors {
		if s.ID == id {
			return s, true
		}
	}
	return Sector{}, false
}

// Row looks up a row by id
func (c *Config) Row(id string) (Row, bool) {
	for _, r := range c.Rows {
		if r.ID == id {
			return r, true
		}
	}
	return Row{}, false
}

// RowsOf returns the rows of a sector sorted by order
func (c *Config) RowsOf(sectorID string) []Row {
	var rows []Row
	for _, r := range c.Rows {
		if r.SectorID == sectorID {
			rows = append(rows, r)
		}
	}
	SortRows(rows)
	return rows
}

// SortRows orders rows by their order index
func SortRows(rows []Row) {
	slices.SortStableFunc(rows, func(a, b Row) int { return a.Order - b.Order })
}

// SectorTotal is the number of seats across a sector's rows
func (c *Config) SectorTotal(sectorID string) int {
	total := 0
	for _, r := range c.Rows {
		if r.SectorID == sectorID {
			total += r.Seats
		}
	}
	return total
}

// Override returns the special seat registered for a row position, if any
func (c *Config) Override(rowID string, seatIndex int) (SpecialSeat, bool) {
	for _, s := range c.SpecialSeats {
		if s.RowID == rowID && s.SeatIndex == seatIndex {
			return s, true
		}
	}
	return SpecialSeat{}, false
}

// ResolvedSeat is a seat position with overrides applied over its sector's baseline
type ResolvedSeat struct {
	RowID       string        `json:"rowId"`
	SeatIndex   int           `json:"seatIndex"`
	Number      int           `json:"number"`
	SectorLabel string        `json:"sector"`
	Color       string        `json:"color"`
	Price       float64       `json:"price"`
	Status      SpecialStatus `json:"status"`
	Special     bool          `json:"special"`
}

// ResolveSeat applies the override of (row, seatIndex), if any, over the row's sector
func (c *Config) ResolveSeat(row Row, seatIndex int) ResolvedSeat {
	resolved := ResolvedSeat{
		RowID:     row.ID,
		SeatIndex: seatIndex,
		Number:    seatIndex + 1,
		Status:    SpecialAvailable,
	}
	if sector, ok := c.Sector(row.SectorID); ok {
		resolved.SectorLabel = sector.Name
		resolved.Color = sector.Color
		resolved.Price = sector.Price
	}

	special, ok := c.Override(row.ID, seatIndex)
	if !ok {
		return resolved
	}
	resolved.Special = true
	if special.SectorLabel != nil {
		resolved.SectorLabel = *special.SectorLabel
	}
	if special.Color != nil {
		resolved.Color = *special.Color
	}
	if special.Price != nil {
		resolved.Price = *special.Price
	}
	if special.Status.Valid() {
		resolved.Status = special.Status
	}
	return resolved
}

// SectorSeats lists the storefront seats of a sector in row order
func (c *Config) SectorSeats(sectorID string) []Seat {
	rows := c.RowsOf(sectorID)
	seats := make([]Seat, 0, c.SectorTotal(sectorID))
	for _, row := range rows {
		for idx := 0; idx < row.Seats; idx++ {
			resolved := c.ResolveSeat(row, idx)
			seats = append(seats, Seat{
				ID:     SeatID(row.Name, resolved.Number),
				Row:    row.Name,
				Number: resolved.Number,
				Status: resolved.Status.LiveStatus(),
				Price:  resolved.Price,
			})
		}
	}
	return seats
}

// Clone returns a deep copy so callers can hand the map over by value
func (c Config) Clone() Config {
	out := Config{
		Sectors:      slices.Clone(c.Sectors),
		Rows:         slices.Clone(c.Rows),
		SpecialSeats: make([]SpecialSeat, len(c.SpecialSeats)),
	}
	for i, s := range c.SpecialSeats {
		out.SpecialSeats[i] = s.clone()
	}
	return out
}

func (s SpecialSeat) clone() SpecialSeat {
	out := s
	if s.SectorLabel != nil {
		v := *s.SectorLabel
		out.SectorLabel = &v
	}
	if s.Color != nil {
		v := *s.Color
		out.Color = &v
	}
	if s.Price != nil {
		v := *s.Price
		out.Price = &v
	}
	return out
}
