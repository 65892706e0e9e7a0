package realtime

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"boxoffice/pkg/logger"
)

// Status is the lifecycle of a storefront channel
type Status string

const (
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusFailed       Status = "failed"
	StatusTimedOut     Status = "timedOut"
	StatusDisconnected Status = "disconnected"
)

// DefaultConnectTimeout bounds the wait for the first connect outcome
const DefaultConnectTimeout = 3 * time.Second

// Update is inbound seat activity for the joined event
type Update struct {
	Type   MessageType
	SeatID string
	// Mine marks the confirmation of a hold this channel requested
	Mine   bool
	Reason string
}

type ChannelOption func(*Channel)

func WithBearerToken(token string) ChannelOption {
	return func(c *Channel) {
		if token != "" {
			c.header.Set("Authorization", "Bearer "+token)
		}
	}
}

func WithChannelLogger(log *logger.Logger) ChannelOption {
	return func(c *Channel) {
		if log != nil {
			c.logger = log
		}
	}
}

func WithDialer(d *websocket.Dialer) ChannelOption {
	return func(c *Channel) {
		if d != nil {
			c.dialer = d
		}
	}
}

// Channel is the storefront side of the real-time connection. It settles on exactly one
// connect outcome, joins one event's room and forwards that event's seat activity.
type Channel struct {
	url     string
	timeout time.Duration
	dialer  *websocket.Dialer
	header  http.Header
	logger  *logger.Logger

	statuses chan Status
	updates  chan Update
	outbound chan []byte
	done     chan struct{}

	mu        sync.Mutex
	started   bool
	settled   bool
	closed    bool
	connected bool
	eventID   string
	conn      *websocket.Conn
	timer     *time.Timer
	cancel    context.CancelFunc

	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewChannel(url string, timeout time.Duration, opts ...ChannelOption) *Channel {
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	c := &Channel{
		url:      url,
		timeout:  timeout,
		dialer:   websocket.DefaultDialer,
		header:   http.Header{},
		logger:   logger.GetDefault(),
		statuses: make(chan Status, 2),
		updates:  make(chan Update, 256),
		outbound: make(chan []byte, 64),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Statuses yields the connect outcome, then Disconnected if a live connection drops
func (c *Channel) Statuses() <-chan Status { return c.statuses }

// Updates yields seat activity in arrival order; closed by Close
func (c *Channel) Updates() <-chan Update { return c.updates }

func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Start begins connecting to the hub and joining eventID's room. It does not block.
func (c *Channel) Start(ctx context.Context, eventID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started || c.closed {
		return
	}
	c.started = true
	c.eventID = eventID

	dialCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.timer = time.AfterFunc(c.timeout, func() {
		if c.settle(StatusTimedOut) {
			cancel()
			c.logger.Warn("real-time channel timed out", "event_id", eventID, "timeout", c.timeout)
		}
	})

	c.wg.Add(1)
	go c.dial(dialCtx, eventID)
}

func (c *Channel) dial(ctx context.Context, eventID string) {
	defer c.wg.Done()

	conn, resp, err := c.dialer.DialContext(ctx, c.url, c.header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if c.settle(StatusFailed) {
			c.logger.Warn("real-time channel failed", "event_id", eventID, "error", err)
		}
		return
	}

	join, err := Encode(TypeJoinEvent, JoinEvent{EventID: eventID})
	if err != nil {
		_ = conn.Close()
		c.settle(StatusFailed)
		return
	}
	if !c.adopt(conn, join) {
		c.logger.Debug("late real-time connection discarded", "event_id", eventID)
		_ = conn.Close()
	}
}

// settle records the connect outcome once; later outcomes are ignored
func (c *Channel) settle(s Status) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.settled {
		return false
	}
	c.settled = true
	c.statuses <- s
	return true
}

func (c *Channel) adopt(conn *websocket.Conn, join []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.settled {
		return false
	}
	c.settled = true
	c.connected = true
	c.conn = conn
	c.timer.Stop()
	c.statuses <- StatusConnected

	lost := make(chan struct{})
	c.wg.Add(2)
	go c.readLoop(conn, lost)
	go c.writeLoop(conn, join, lost)
	return true
}

func (c *Channel) readLoop(conn *websocket.Conn, lost chan struct{}) {
	defer c.wg.Done()
	defer close(lost)

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			c.disconnected(err)
			return
		}
		env, err := Decode(frame)
		if err != nil {
			c.logger.Warn("ignoring real-time frame", "error", err)
			continue
		}
		update, ok := c.toUpdate(env)
		if !ok {
			continue
		}
		select {
		case c.updates <- update:
		case <-c.done:
			return
		}
	}
}

func (c *Channel) writeLoop(conn *websocket.Conn, join []byte, lost <-chan struct{}) {
	defer c.wg.Done()

	if err := c.write(conn, join); err != nil {
		return
	}
	for {
		select {
		case frame := <-c.outbound:
			if err := c.write(conn, frame); err != nil {
				c.logger.Warn("real-time request not sent", "error", err)
				return
			}
		case <-lost:
			return
		case <-c.done:
			return
		}
	}
}

func (c *Channel) write(conn *websocket.Conn, frame []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, frame)
}

func (c *Channel) disconnected(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.connected {
		return
	}
	c.connected = false
	c.logger.Warn("real-time channel disconnected", "event_id", c.eventID, "error", err)
	select {
	case c.statuses <- StatusDisconnected:
	default:
	}
}

func (c *Channel) toUpdate(env Envelope) (Update, bool) {
	switch env.Type {
	case TypeSeatReserved:
		var msg SeatReserved
		if err := env.Into(&msg); err != nil || !c.inScope(msg.EventID) {
			return Update{}, false
		}
		return Update{Type: env.Type, SeatID: msg.SeatID, Mine: msg.Mine}, msg.SeatID != ""
	case TypeSeatReleased:
		var msg SeatReleased
		if err := env.Into(&msg); err != nil || !c.inScope(msg.EventID) {
			return Update{}, false
		}
		return Update{Type: env.Type, SeatID: msg.SeatID}, msg.SeatID != ""
	case TypeReservationRejected:
		var msg ReservationRejected
		if err := env.Into(&msg); err != nil || !c.inScope(msg.EventID) {
			return Update{}, false
		}
		return Update{Type: env.Type, SeatID: msg.SeatID, Reason: msg.Reason}, msg.SeatID != ""
	case TypeError:
		var msg ErrorMessage
		_ = env.Into(&msg)
		c.logger.Warn("real-time server error", "message", msg.Message)
	}
	return Update{}, false
}

// inScope accepts messages for the joined event; an absent event id means the joined one
func (c *Channel) inScope(eventID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return eventID == "" || eventID == c.eventID
}

// ReserveSeat requests a hold without waiting; false means the request was dropped
func (c *Channel) ReserveSeat(eventID, seatID, userID string) bool {
	return c.request(TypeReserveSeat, SeatRequest{EventID: eventID, SeatID: seatID, UserID: userID})
}

// ReleaseSeat gives a hold back without waiting; false means the request was dropped
func (c *Channel) ReleaseSeat(eventID, seatID, userID string) bool {
	return c.request(TypeReleaseSeat, SeatRequest{EventID: eventID, SeatID: seatID, UserID: userID})
}

func (c *Channel) request(t MessageType, req SeatRequest) bool {
	if !c.Connected() {
		c.logger.Warn("real-time request dropped", "type", t, "seat_id", req.SeatID, "reason", "not connected")
		return false
	}
	frame, err := Encode(t, req)
	if err != nil {
		c.logger.Warn("real-time request dropped", "type", t, "seat_id", req.SeatID, "error", err)
		return false
	}
	select {
	case c.outbound <- frame:
		return true
	default:
		c.logger.Warn("real-time request dropped", "type", t, "seat_id", req.SeatID, "reason", "buffer full")
		return false
	}
}

// Close tears down the timer, any pending dial and the connection. Safe to call more than once.
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.connected = false
		if c.timer != nil {
			c.timer.Stop()
		}
		if c.cancel != nil {
			c.cancel()
		}
		conn := c.conn
		c.mu.Unlock()

		close(c.done)
		if conn != nil {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			_ = conn.Close()
		}
		c.wg.Wait()
		close(c.updates)
		close(c.statuses)
	})
}
