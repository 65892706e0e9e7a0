package seatmap

import (
	"strconv"
	"strings"
)

// SeatStatus is the live, shopper-facing status of a seat
type SeatStatus string

const (
	StatusAvailable SeatStatus = "AVAILABLE"
	StatusReserved  SeatStatus = "RESERVED"
	StatusOccupied  SeatStatus = "OCCUPIED"
)

func (s SeatStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusOccupied:
		return true
	}
	return false
}

// Seat is one resolved seat of a sector as the storefront sees it
type Seat struct {
	ID     string     `json:"id"`
	Row    string     `json:"row"`
	Number int        `json:"number"`
	Status SeatStatus `json:"status"`
	Price  float64    `json:"price"`
}

// SeatID builds the storefront identifier of a seat from its row label and 1-based number
func SeatID(row string, number int) string {
	return row + "-" + strconv.Itoa(number)
}

// ParseSeatID splits an identifier built by SeatID
func ParseSeatID(id string) (row string, number int, ok bool) {
	i := strings.LastIndexByte(id, '-')
	if i <= 0 || i == len(id)-1 {
		return "", 0, false
	}
	n, err := strconv.Atoi(id[i+1:])
	if err != nil || n < 1 {
		return "", 0, false
	}
	return id[:i], n, true
}

// LiveStatus maps an authored status to the storefront status
func (s SpecialStatus) LiveStatus() SeatStatus {
	switch s {
	case SpecialSold:
		return StatusOccupied
	case SpecialReserved:
		return StatusReserved
	default:
		return StatusAvailable
	}
}
