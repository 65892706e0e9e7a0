package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/alicebob/miniredis/v2"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxoffice/internal/seatmap"
	"boxoffice/internal/seats"
)

type fakeSession struct {
	sarama.ConsumerGroupSession
	ctx    context.Context
	marked []int64
}

func (s *fakeSession) Context() context.Context { return s.ctx }

func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.marked = append(s.marked, msg.Offset)
}

type fakeClaim struct {
	sarama.ConsumerGroupClaim
	messages chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

type flakyHolds struct {
	HoldStore
	failures int
	calls    int
}

func (f *flakyHolds) Hold(ctx context.Context, eventID, seatID, userID string) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("connection reset")
	}
	return f.HoldStore.Hold(ctx, eventID, seatID, userID)
}

var keeperNow = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

func newKeeper(t *testing.T, holds HoldStore) *HoldKeeper {
	t.Helper()
	k := NewHoldKeeper(nil, []string{"checkout-handoffs"}, holds, 10*time.Minute, nil)
	k.now = func() time.Time { return keeperNow }
	k.backoff = time.Millisecond
	return k
}

func newHolds(t *testing.T) (*seats.HoldStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return seats.NewHoldStore(client, time.Minute), mr
}

func handOffMessage(t *testing.T, offset int64, handOff HandOff) *sarama.ConsumerMessage {
	t.Helper()
	value, err := json.Marshal(handOff)
	require.NoError(t, err)
	return &sarama.ConsumerMessage{Topic: "checkout-handoffs", Offset: offset, Value: value}
}

func aliceHandOff(createdAt time.Time, ids ...string) HandOff {
	h := HandOff{ID: "h-1", EventID: eventID, SectorID: "VIP", UserID: "alice", CreatedAt: createdAt}
	for _, id := range ids {
		h.Seats = append(h.Seats, seatmap.Seat{ID: id, Status: seatmap.StatusAvailable, Price: 350})
	}
	return h
}

func TestHoldKeeperStretchesHoldsToTheCheckoutWindow(t *testing.T) {
	holds, mr := newHolds(t)
	ctx := context.Background()
	k := newKeeper(t, holds)

	// alice held A-1 from the storefront; A-2 was bought without a live hold
	require.NoError(t, holds.Hold(ctx, eventID, "A-1", "alice"))

	msg := handOffMessage(t, 7, aliceHandOff(keeperNow.Add(-2*time.Minute), "A-1", "A-2"))
	require.NoError(t, k.process(ctx, msg))

	mr.FastForward(7 * time.Minute)
	held, err := holds.Held(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A-1": "alice", "A-2": "alice"}, held)

	mr.FastForward(2 * time.Minute)
	held, err = holds.Held(ctx, eventID)
	require.NoError(t, err)
	assert.Empty(t, held)
}

func TestHoldKeeperLeavesOtherShoppersHolds(t *testing.T) {
	holds, _ := newHolds(t)
	ctx := context.Background()
	k := newKeeper(t, holds)

	require.NoError(t, holds.Hold(ctx, eventID, "B-1", "bob"))

	msg := handOffMessage(t, 1, aliceHandOff(keeperNow, "A-1", "B-1"))
	require.NoError(t, k.process(ctx, msg))

	holders, err := holds.Holders(ctx, eventID, []string{"A-1", "B-1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A-1": "alice", "B-1": "bob"}, holders)
}

func TestHoldKeeperSkipsExpiredHandOffs(t *testing.T) {
	holds, _ := newHolds(t)
	ctx := context.Background()
	k := newKeeper(t, holds)

	msg := handOffMessage(t, 1, aliceHandOff(keeperNow.Add(-11*time.Minute), "A-1"))
	require.NoError(t, k.process(ctx, msg))

	held, err := holds.Held(ctx, eventID)
	require.NoError(t, err)
	assert.Empty(t, held)
}

func TestHoldKeeperRetriesTransientFailures(t *testing.T) {
	store, _ := newHolds(t)
	ctx := context.Background()

	flaky := &flakyHolds{HoldStore: store, failures: 2}
	k := newKeeper(t, flaky)
	require.NoError(t, k.process(ctx, handOffMessage(t, 1, aliceHandOff(keeperNow, "A-1"))))
	assert.Equal(t, 3, flaky.calls)

	broken := &flakyHolds{HoldStore: store, failures: 100}
	k = newKeeper(t, broken)
	err := k.process(ctx, handOffMessage(t, 2, aliceHandOff(keeperNow, "A-2")))
	require.Error(t, err)
	assert.Equal(t, k.retries+1, broken.calls)
}

func TestHoldKeeperConsumeClaimMarksEveryMessage(t *testing.T) {
	holds, _ := newHolds(t)
	k := newKeeper(t, holds)

	claim := &fakeClaim{messages: make(chan *sarama.ConsumerMessage, 2)}
	claim.messages <- &sarama.ConsumerMessage{Offset: 10, Value: []byte("not json")}
	claim.messages <- handOffMessage(t, 11, aliceHandOff(keeperNow, "A-3"))
	close(claim.messages)

	session := &fakeSession{ctx: context.Background()}
	require.NoError(t, k.ConsumeClaim(session, claim))
	assert.Equal(t, []int64{10, 11}, session.marked)

	holders, err := holds.Holders(context.Background(), eventID, []string{"A-3"})
	require.NoError(t, err)
	assert.Equal(t, "alice", holders["A-3"])
}
