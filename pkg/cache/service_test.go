package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestService(t *testing.T) (Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(client, nil), mr
}

func TestGetMissAndSet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var got item
	assert.ErrorIs(t, svc.Get(ctx, "k", &got), ErrCacheMiss)

	require.NoError(t, svc.Set(ctx, "k", item{Name: "a", Count: 2}, time.Minute))
	require.NoError(t, svc.Get(ctx, "k", &got))
	assert.Equal(t, item{Name: "a", Count: 2}, got)
	assert.True(t, svc.Exists(ctx, "k"))
}

func TestGetOrSetCallsFetcherOnce(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return item{Name: "fetched", Count: calls}, nil
	}

	var first, second item
	require.NoError(t, svc.GetOrSet(ctx, "k", time.Minute, fetch, &first))
	require.NoError(t, svc.GetOrSet(ctx, "k", time.Minute, fetch, &second))

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestGetOrSetPropagatesFetcherError(t *testing.T) {
	svc, _ := newTestService(t)
	boom := errors.New("boom")

	var got item
	err := svc.GetOrSet(context.Background(), "k", time.Minute, func() (interface{}, error) { return nil, boom }, &got)
	assert.ErrorIs(t, err, boom)
}

func TestDeletePatternAndTouch(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "events:1", 1, time.Minute))
	require.NoError(t, svc.Set(ctx, "events:2", 2, time.Minute))
	require.NoError(t, svc.Set(ctx, "other", 3, time.Minute))

	require.NoError(t, svc.DeletePattern(ctx, "events:*"))
	assert.False(t, mr.Exists("events:1"))
	assert.False(t, mr.Exists("events:2"))
	assert.True(t, mr.Exists("other"))

	require.NoError(t, svc.Touch(ctx, "other", time.Hour))
	assert.Equal(t, time.Hour, mr.TTL("other"))
	assert.ErrorIs(t, svc.Touch(ctx, "missing", time.Hour), ErrCacheMiss)
}

func TestGetOrSetSharesConcurrentFills(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	fetch := func() (interface{}, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return item{Name: "event", Count: 1}, nil
	}

	const shoppers = 8
	results := make([]item, shoppers)
	var wg sync.WaitGroup
	for i := range shoppers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.GetOrSet(ctx, "event:1", time.Minute, fetch, &results[i]))
		}()
	}

	<-started
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, got := range results {
		assert.Equal(t, item{Name: "event", Count: 1}, got)
	}
}
