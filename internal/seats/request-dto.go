package seats

type ReserveSeatRequest struct {
	SeatID string `json:"seatId" binding:"required"`
}
