// Package seatmap defines the venue layout shared by the back-office editor and the storefront:
// priced sectors, ordered rows split into column groups, and sparse per-seat overrides.
package seatmap

// SpecialStatus is the authored status of an overridden seat
type SpecialStatus string

const (
	SpecialAvailable SpecialStatus = "available"
	SpecialReserved  SpecialStatus = "reserved"
	SpecialSold      SpecialStatus = "sold"
)

func (s SpecialStatus) Valid() bool {
	switch s {
	case SpecialAvailable, SpecialReserved, SpecialSold:
		return true
	}
	return false
}

// Sector is a priced grouping of seats
type Sector struct {
	ID        string  `json:"id" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	Color     string  `json:"color"`
	Price     float64 `json:"price" validate:"gte=0"`
	Total     int     `json:"total" validate:"gte=0"`
	Available int     `json:"available" validate:"gte=0,ltefield=Total"`
}

// Row is an ordered line of seats, split into Columns contiguous groups for layout
type Row struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name"`
	Seats    int    `json:"seats" validate:"gte=1"`
	Columns  int    `json:"columns" validate:"gte=1"`
	Order    int    `json:"order" validate:"gte=0"`
	SectorID string `json:"sectorId,omitempty"`
}

// SeatKey identifies one seat position inside a row. SeatIndex is zero-based.
type SeatKey struct {
	RowID     string
	SeatIndex int
}

// SpecialSeat overrides the inherited sector label, color, price or status of one seat
type SpecialSeat struct {
	RowID       string        `json:"rowId" validate:"required"`
	SeatIndex   int           `json:"seatIndex" validate:"gte=0"`
	SectorLabel *string       `json:"sector,omitempty"`
	Color       *string       `json:"color,omitempty"`
	Price       *float64      `json:"price,omitempty" validate:"omitempty,gte=0"`
	Status      SpecialStatus `json:"status"`
}

func (s SpecialSeat) Key() SeatKey {
	return SeatKey{RowID: s.RowID, SeatIndex: s.SeatIndex}
}

// Config is the persisted seat map of one event
type Config struct {
	Sectors      []Sector      `json:"sectors" validate:"dive"`
	Rows         []Row         `json:"rows" validate:"dive"`
	SpecialSeats []SpecialSeat `json:"specialSeats" validate:"dive"`
}
