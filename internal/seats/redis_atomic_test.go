package seats

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHoldStore(t *testing.T) (*HoldStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewHoldStore(client, time.Minute), mr
}

func TestExtendKeepsHoldPastItsTTL(t *testing.T) {
	holds, mr := newHoldStore(t)
	ctx := context.Background()

	require.NoError(t, holds.Hold(ctx, "evt", "A-1", "alice"))
	require.NoError(t, holds.Extend(ctx, "evt", "A-1", "alice", 10*time.Minute))

	mr.FastForward(5 * time.Minute)

	held, err := holds.Held(ctx, "evt")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A-1": "alice"}, held)
	assert.ErrorIs(t, holds.Hold(ctx, "evt", "A-1", "bob"), ErrSeatTaken)
}

func TestExtendRequiresTheHolder(t *testing.T) {
	holds, mr := newHoldStore(t)
	ctx := context.Background()

	require.NoError(t, holds.Hold(ctx, "evt", "A-1", "alice"))
	assert.ErrorIs(t, holds.Extend(ctx, "evt", "A-1", "bob", 10*time.Minute), ErrNotHolder)

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, holds.Extend(ctx, "evt", "A-1", "alice", 10*time.Minute), ErrNotHolder)

	held, err := holds.Held(ctx, "evt")
	require.NoError(t, err)
	assert.Empty(t, held)
}

func TestExtendNeverShortensAHold(t *testing.T) {
	holds, mr := newHoldStore(t)
	ctx := context.Background()

	require.NoError(t, holds.Hold(ctx, "evt", "A-1", "alice"))
	require.NoError(t, holds.Extend(ctx, "evt", "A-1", "alice", time.Second))

	mr.FastForward(30 * time.Second)

	holders, err := holds.Holders(ctx, "evt", []string{"A-1"})
	require.NoError(t, err)
	assert.Equal(t, "alice", holders["A-1"])
}
