package realtime

import (
	"context"
	"time"

	"boxoffice/internal/shared/metrics"
	"boxoffice/pkg/logger"
)

// Reserver places and drops seat holds on behalf of connected shoppers
type Reserver interface {
	Reserve(ctx context.Context, eventID, seatID, userID string) error
	Release(ctx context.Context, eventID, seatID, userID string) error
}

type membership struct {
	client  *Client
	eventID string
}

type directMessage struct {
	client *Client
	frame  []byte
}

// roomMessage goes to every client in the room. When origin is set it receives
// originFrame instead, whether or not it joined the room.
type roomMessage struct {
	eventID     string
	frame       []byte
	origin      *Client
	originFrame []byte
}

// Hub keeps one room per event and fans seat activity out to the room's clients.
// All room state is owned by the Run goroutine.
type Hub struct {
	clients    map[*Client]bool
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	join       chan membership
	broadcast  chan roomMessage
	direct     chan directMessage
	done       chan struct{}

	reserver       Reserver
	requestTimeout time.Duration
	logger         *logger.Logger
}

func NewHub(reserver Reserver, log *logger.Logger) *Hub {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Hub{
		clients:        make(map[*Client]bool),
		rooms:          make(map[string]map[*Client]bool),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		join:           make(chan membership),
		broadcast:      make(chan roomMessage, 256),
		direct:         make(chan directMessage, 64),
		done:           make(chan struct{}),
		reserver:       reserver,
		requestTimeout: 5 * time.Second,
		logger:         log,
	}
}

// Run serves the hub until ctx is canceled, then disconnects every client
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.remove(client)
			}
			h.logger.Info("realtime hub stopped", "reason", ctx.Err())
			return ctx.Err()

		case client := <-h.register:
			h.clients[client] = true
			metrics.RealtimeClients.Inc()

		case client := <-h.unregister:
			h.remove(client)

		case m := <-h.join:
			if !h.clients[m.client] {
				continue
			}
			h.leave(m.client)
			room, ok := h.rooms[m.eventID]
			if !ok {
				room = make(map[*Client]bool)
				h.rooms[m.eventID] = room
			}
			room[m.client] = true
			m.client.eventID = m.eventID

		case msg := <-h.broadcast:
			for client := range h.rooms[msg.eventID] {
				if client != msg.origin {
					h.deliver(client, msg.frame)
				}
			}
			if msg.origin != nil && h.clients[msg.origin] {
				h.deliver(msg.origin, msg.originFrame)
			}

		case msg := <-h.direct:
			if h.clients[msg.client] {
				h.deliver(msg.client, msg.frame)
			}
		}
	}
}

func (h *Hub) deliver(client *Client, frame []byte) {
	select {
	case client.send <- frame:
	default:
		// slow client
		h.remove(client)
	}
}

func (h *Hub) remove(client *Client) {
	if !h.clients[client] {
		return
	}
	h.leave(client)
	delete(h.clients, client)
	close(client.send)
	metrics.RealtimeClients.Dec()
}

func (h *Hub) leave(client *Client) {
	if client.eventID == "" {
		return
	}
	if room, ok := h.rooms[client.eventID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, client.eventID)
		}
	}
	client.eventID = ""
}

// Publish sends a frame to every client in an event's room
func (h *Hub) Publish(eventID string, frame []byte) {
	h.publish(roomMessage{eventID: eventID, frame: frame})
}

func (h *Hub) publish(msg roomMessage) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

func (h *Hub) send(ch chan<- *Client, client *Client) bool {
	select {
	case ch <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) joinRoom(client *Client, eventID string) {
	select {
	case h.join <- membership{client: client, eventID: eventID}:
	case <-h.done:
	}
}

// handle serves one inbound frame of a client
func (h *Hub) handle(client *Client, env Envelope) {
	switch env.Type {
	case TypeJoinEvent:
		var msg JoinEvent
		if err := env.Into(&msg); err != nil || msg.EventID == "" {
			client.reply(TypeError, ErrorMessage{Message: "joinEvent needs an eventId"})
			return
		}
		h.joinRoom(client, msg.EventID)

	case TypeReserveSeat, TypeReleaseSeat:
		var req SeatRequest
		if err := env.Into(&req); err != nil || req.EventID == "" || req.SeatID == "" {
			client.reply(TypeError, ErrorMessage{Message: string(env.Type) + " needs an eventId and a seatId"})
			return
		}
		// holds belong to the connection's identity; req.UserID is never trusted
		if client.userID == "" {
			client.reply(TypeError, ErrorMessage{Message: "unknown shopper"})
			return
		}
		if env.Type == TypeReserveSeat {
			h.reserve(client, req.EventID, req.SeatID, client.userID)
		} else {
			h.release(req.EventID, req.SeatID, client.userID)
		}

	default:
		client.reply(TypeError, ErrorMessage{Message: "unsupported message type " + string(env.Type)})
	}
}

func (h *Hub) reserve(client *Client, eventID, seatID, userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), h.requestTimeout)
	defer cancel()

	if err := h.reserver.Reserve(ctx, eventID, seatID, userID); err != nil {
		client.reply(TypeReservationRejected, ReservationRejected{EventID: eventID, SeatID: seatID, Reason: err.Error()})
		return
	}

	others, err := Encode(TypeSeatReserved, SeatReserved{EventID: eventID, SeatID: seatID})
	if err != nil {
		h.logger.Error("failed to encode seatReserved", "error", err)
		return
	}
	mine, err := Encode(TypeSeatReserved, SeatReserved{EventID: eventID, SeatID: seatID, Mine: true})
	if err != nil {
		h.logger.Error("failed to encode seatReserved", "error", err)
		return
	}
	h.publish(roomMessage{eventID: eventID, frame: others, origin: client, originFrame: mine})
}

func (h *Hub) release(eventID, seatID, userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), h.requestTimeout)
	defer cancel()

	if err := h.reserver.Release(ctx, eventID, seatID, userID); err != nil {
		h.logger.Debug("seat release ignored", "event_id", eventID, "seat_id", seatID, "user_id", userID, "error", err)
		return
	}

	frame, err := Encode(TypeSeatReleased, SeatReleased{EventID: eventID, SeatID: seatID})
	if err != nil {
		h.logger.Error("failed to encode seatReleased", "error", err)
		return
	}
	h.Publish(eventID, frame)
}
