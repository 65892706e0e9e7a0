package realtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReserver struct {
	mu    sync.Mutex
	holds map[string]string
}

func newFakeReserver() *fakeReserver {
	return &fakeReserver{holds: make(map[string]string)}
}

func (f *fakeReserver) Reserve(_ context.Context, eventID, seatID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := eventID + "/" + seatID
	if holder, ok := f.holds[key]; ok && holder != userID {
		return errors.New("seat is already reserved")
	}
	f.holds[key] = userID
	return nil
}

func (f *fakeReserver) Release(_ context.Context, eventID, seatID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := eventID + "/" + seatID
	if f.holds[key] != userID {
		return errors.New("not the holder")
	}
	delete(f.holds, key)
	return nil
}

func (f *fakeReserver) holder(eventID, seatID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.holds[eventID+"/"+seatID]
}

func startHub(t *testing.T) (string, *fakeReserver) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	reserver := newFakeReserver()
	hub := NewHub(reserver, nil)
	go func() { _ = hub.Run(ctx) }()

	r := gin.New()
	SetupRealtimeRoutes(r, NewHandler(hub, nil), func(c *gin.Context) {
		if user := c.Query("user"); user != "" {
			c.Set("user_id", user)
		}
	})
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws", reserver
}

var readySeats atomic.Int32

func connect(t *testing.T, url, user, eventID string) *Channel {
	t.Helper()
	ch := NewChannel(url+"?user="+user, time.Second)
	t.Cleanup(ch.Close)
	ch.Start(context.Background(), eventID)

	select {
	case s := <-ch.Statuses():
		require.Equal(t, StatusConnected, s)
	case <-time.After(2 * time.Second):
		t.Fatal("no connect outcome")
	}

	// the reply comes back only once the join has been served
	ready := fmt.Sprintf("ready-%d", readySeats.Add(1))
	require.True(t, ch.ReserveSeat(eventID, ready, user))
	waitFor(t, ch, ready)
	return ch
}

// rawConn is a bare storefront connection that sees frames exactly as the hub sends them
type rawConn struct {
	t    *testing.T
	conn *websocket.Conn
}

func dialRaw(t *testing.T, url, eventID string) *rawConn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	rc := &rawConn{t: t, conn: conn}
	rc.send(TypeJoinEvent, JoinEvent{EventID: eventID})
	ready := fmt.Sprintf("ready-%d", readySeats.Add(1))
	rc.send(TypeReserveSeat, SeatRequest{EventID: eventID, SeatID: ready})
	rc.next(TypeSeatReserved, ready)
	return rc
}

func (rc *rawConn) send(mt MessageType, data interface{}) {
	frame, err := Encode(mt, data)
	require.NoError(rc.t, err)
	require.NoError(rc.t, rc.conn.WriteMessage(websocket.TextMessage, frame))
}

// next returns the raw payload of the first frame of type mt about seatID
func (rc *rawConn) next(mt MessageType, seatID string) string {
	rc.t.Helper()
	require.NoError(rc.t, rc.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, frame, err := rc.conn.ReadMessage()
		require.NoError(rc.t, err)
		env, err := Decode(frame)
		require.NoError(rc.t, err)
		var seat SeatReleased
		if env.Type == mt && env.Into(&seat) == nil && seat.SeatID == seatID {
			return string(env.Data)
		}
	}
}

// waitFor reads updates until one concerns seatID and returns it together with everything skipped
func waitFor(t *testing.T, ch *Channel, seatID string) (Update, []Update) {
	t.Helper()
	var skipped []Update
	deadline := time.After(2 * time.Second)
	for {
		select {
		case u, ok := <-ch.Updates():
			require.True(t, ok, "updates closed")
			if u.SeatID == seatID {
				return u, skipped
			}
			skipped = append(skipped, u)
		case <-deadline:
			t.Fatalf("no update for %s", seatID)
		}
	}
}

func TestDecodeRejectsFramesWithoutType(t *testing.T) {
	_, err := Decode([]byte(`{"data":{}}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)

	env, err := Decode([]byte(`{"type":"joinEvent"}`))
	require.NoError(t, err)
	var join JoinEvent
	assert.Error(t, env.Into(&join))
}

func TestEncodeFramesPayload(t *testing.T) {
	frame, err := Encode(TypeSeatReserved, SeatReserved{EventID: "e1", SeatID: "A-1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"seatReserved","data":{"eventId":"e1","seatId":"A-1"}}`, string(frame))
}

func TestHubFansOutSeatActivityPerEvent(t *testing.T) {
	url, _ := startHub(t)
	alice := connect(t, url, "alice", "e1")
	bob := connect(t, url, "bob", "e1")
	carol := connect(t, url, "carol", "e2")

	require.True(t, alice.ReserveSeat("e1", "A-1", "alice"))
	got, _ := waitFor(t, alice, "A-1")
	assert.Equal(t, Update{Type: TypeSeatReserved, SeatID: "A-1", Mine: true}, got)
	got, _ = waitFor(t, bob, "A-1")
	assert.Equal(t, Update{Type: TypeSeatReserved, SeatID: "A-1"}, got)

	require.True(t, bob.ReserveSeat("e1", "A-1", "bob"))
	got, _ = waitFor(t, bob, "A-1")
	assert.Equal(t, TypeReservationRejected, got.Type)
	assert.Contains(t, got.Reason, "already reserved")

	require.True(t, alice.ReleaseSeat("e1", "A-1", "alice"))
	got, _ = waitFor(t, bob, "A-1")
	assert.Equal(t, TypeSeatReleased, got.Type)

	require.True(t, carol.ReserveSeat("e2", "C-9", "carol"))
	_, skipped := waitFor(t, carol, "C-9")
	for _, u := range skipped {
		assert.NotEqual(t, "A-1", u.SeatID)
	}
}

func TestHubUsesTokenIdentityOverPayload(t *testing.T) {
	url, reserver := startHub(t)
	alice := connect(t, url, "alice", "e1")
	bob := connect(t, url, "bob", "e1")

	// bob claims to be alice in the payload
	require.True(t, bob.ReserveSeat("e1", "B-2", "alice"))
	got, _ := waitFor(t, alice, "B-2")
	assert.False(t, got.Mine)
	got, _ = waitFor(t, bob, "B-2")
	assert.True(t, got.Mine)
	assert.Equal(t, "bob", reserver.holder("e1", "B-2"))
}

func TestAnonymousShopperCannotReleaseAnotherHold(t *testing.T) {
	url, reserver := startHub(t)
	alice := connect(t, url, "alice", "e1")
	stranger := dialRaw(t, url, "e1")

	require.True(t, alice.ReserveSeat("e1", "A-1", "alice"))
	seen := stranger.next(TypeSeatReserved, "A-1")
	assert.NotContains(t, seen, "alice")
	assert.NotContains(t, seen, "mine")

	stranger.send(TypeReleaseSeat, SeatRequest{EventID: "e1", SeatID: "A-1", UserID: "alice"})
	stranger.send(TypeReserveSeat, SeatRequest{EventID: "e1", SeatID: "A-1", UserID: "alice"})
	rejected := stranger.next(TypeReservationRejected, "A-1")
	assert.Contains(t, rejected, "already reserved")

	assert.Equal(t, "alice", reserver.holder("e1", "A-1"))
}

func TestAnonymousConnectionsGetDistinctGuestIdentities(t *testing.T) {
	url, reserver := startHub(t)
	first := dialRaw(t, url, "e1")
	second := dialRaw(t, url, "e1")

	first.send(TypeReserveSeat, SeatRequest{EventID: "e1", SeatID: "G-1"})
	first.next(TypeSeatReserved, "G-1")
	holder := reserver.holder("e1", "G-1")
	assert.True(t, strings.HasPrefix(holder, GuestPrefix), holder)

	second.send(TypeReserveSeat, SeatRequest{EventID: "e1", SeatID: "G-1"})
	second.next(TypeReservationRejected, "G-1")
	assert.Equal(t, holder, reserver.holder("e1", "G-1"))
}

func TestChannelTimesOutOnce(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ch := NewChannel("ws"+strings.TrimPrefix(srv.URL, "http"), 50*time.Millisecond)
	ch.Start(context.Background(), "e1")

	select {
	case s := <-ch.Statuses():
		assert.Equal(t, StatusTimedOut, s)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout never fired")
	}
	assert.False(t, ch.Connected())
	assert.False(t, ch.ReserveSeat("e1", "A-1", "u1"))

	ch.Close()
	var rest []Status
	for s := range ch.Statuses() {
		rest = append(rest, s)
	}
	assert.Empty(t, rest)
}

func TestConnectionAfterTimeoutIsDiscarded(t *testing.T) {
	url, _ := startHub(t)
	slow := &websocket.Dialer{
		// the TCP connection completes only after the timer has fired
		NetDialContext: func(_ context.Context, network, addr string) (net.Conn, error) {
			time.Sleep(100 * time.Millisecond)
			return net.Dial(network, addr)
		},
	}
	ch := NewChannel(url+"?user=late", 30*time.Millisecond, WithDialer(slow))
	defer ch.Close()
	ch.Start(context.Background(), "e1")

	assert.Equal(t, StatusTimedOut, <-ch.Statuses())
	time.Sleep(200 * time.Millisecond)
	assert.False(t, ch.Connected())
	select {
	case s := <-ch.Statuses():
		t.Fatalf("unexpected second outcome %s", s)
	default:
	}
}

func TestChannelReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	ch := NewChannel(url, time.Second)
	defer ch.Close()
	ch.Start(context.Background(), "e1")

	select {
	case s := <-ch.Statuses():
		assert.Equal(t, StatusFailed, s)
	case <-time.After(2 * time.Second):
		t.Fatal("no failure reported")
	}
}

func TestChannelCloseIsIdempotent(t *testing.T) {
	ch := NewChannel("ws://127.0.0.1:1/ws", time.Second)
	assert.False(t, ch.ReleaseSeat("e1", "A-1", "u1"))
	ch.Close()
	ch.Close()
	_, ok := <-ch.Updates()
	assert.False(t, ok)
}

func TestUpdatesAreScopedToJoinedEvent(t *testing.T) {
	ch := NewChannel("ws://unused", time.Second)
	ch.eventID = "e1"

	other, _ := Encode(TypeSeatReserved, SeatReserved{EventID: "e2", SeatID: "A-1"})
	env, err := Decode(other)
	require.NoError(t, err)
	_, ok := ch.toUpdate(env)
	assert.False(t, ok)

	bare, _ := Encode(TypeSeatReserved, map[string]string{"seatId": "A-2"})
	env, err = Decode(bare)
	require.NoError(t, err)
	u, ok := ch.toUpdate(env)
	assert.True(t, ok)
	assert.Equal(t, "A-2", u.SeatID)
}
