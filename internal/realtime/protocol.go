// Package realtime carries seat activity between shoppers over WebSocket: the server hub with
// one room per event, and the storefront channel that joins a room and requests holds.
package realtime

import (
	"fmt"

	"github.com/goccy/go-json"
)

type MessageType string

const (
	TypeJoinEvent           MessageType = "joinEvent"
	TypeReserveSeat         MessageType = "reserveSeat"
	TypeReleaseSeat         MessageType = "releaseSeat"
	TypeSeatReserved        MessageType = "seatReserved"
	TypeSeatReleased        MessageType = "seatReleased"
	TypeReservationRejected MessageType = "reservationRejected"
	TypeError               MessageType = "error"
)

// Envelope is the frame of every message in both directions
type Envelope struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type JoinEvent struct {
	EventID string `json:"eventId"`
}

// SeatRequest is the payload of reserveSeat and releaseSeat. The hub acts for the
// identity of the connection; UserID is informational only.
type SeatRequest struct {
	EventID string `json:"eventId"`
	SeatID  string `json:"seatId"`
	UserID  string `json:"userId,omitempty"`
}

// SeatReserved never names the holder. Mine is set only on the copy sent to the
// connection whose request placed the hold.
type SeatReserved struct {
	EventID string `json:"eventId"`
	SeatID  string `json:"seatId"`
	Mine    bool   `json:"mine,omitempty"`
}

type SeatReleased struct {
	EventID string `json:"eventId"`
	SeatID  string `json:"seatId"`
}

type ReservationRejected struct {
	EventID string `json:"eventId"`
	SeatID  string `json:"seatId"`
	Reason  string `json:"reason"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}

// Encode frames a payload
func Encode(t MessageType, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", t, err)
	}
	return json.Marshal(Envelope{Type: t, Data: raw})
}

// Decode reads a frame; the payload stays raw until Into
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("failed to decode message: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("failed to decode message: missing type")
	}
	return env, nil
}

func (e Envelope) Into(v interface{}) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("%s message has no data", e.Type)
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.Type, err)
	}
	return nil
}
