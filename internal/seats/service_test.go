package seats

import (
	"context"
	"testing"
	"time"

	"boxoffice/internal/events"
	"boxoffice/internal/seatmap"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticMaps map[string]seatmap.Config

func (m staticMaps) GetSeatMap(_ context.Context, eventID string) (*seatmap.Config, error) {
	cfg, ok := m[eventID]
	if !ok {
		return nil, events.ErrEventNotFound
	}
	return &cfg, nil
}

func testMap() seatmap.Config {
	sold := seatmap.SpecialSold
	price := 500.0
	return seatmap.Config{
		Sectors: []seatmap.Sector{
			{ID: "VIP", Name: "VIP", Price: 350, Total: 10, Available: 9},
			{ID: "General", Name: "General", Price: 100, Total: 4, Available: 4},
		},
		Rows: []seatmap.Row{
			{ID: "r1", Name: "A", Seats: 5, Columns: 1, Order: 0, SectorID: "VIP"},
			{ID: "r2", Name: "B", Seats: 5, Columns: 1, Order: 1, SectorID: "VIP"},
			{ID: "r3", Name: "C", Seats: 4, Columns: 2, Order: 2, SectorID: "General"},
		},
		SpecialSeats: []seatmap.SpecialSeat{
			{RowID: "r1", SeatIndex: 0, Status: sold},
			{RowID: "r2", SeatIndex: 4, Price: &price, Status: seatmap.SpecialAvailable},
		},
	}
}

func newTestService(t *testing.T) (Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	holds := NewHoldStore(client, time.Minute)
	require.NoError(t, holds.PreloadScripts(context.Background()))
	return NewService(staticMaps{"evt": testMap()}, holds, nil), mr
}

func TestSectorSeatsMatchesSectorTotal(t *testing.T) {
	svc, _ := newTestService(t)

	seats, err := svc.SectorSeats(context.Background(), "evt", "VIP")
	require.NoError(t, err)

	require.Len(t, seats, 10)
	assert.Equal(t, "A-1", seats[0].ID)
	assert.Equal(t, seatmap.StatusOccupied, seats[0].Status)
	assert.Equal(t, seatmap.StatusAvailable, seats[1].Status)
	assert.Equal(t, "B-5", seats[9].ID)
	assert.Equal(t, 500.0, seats[9].Price)
	assert.Equal(t, 350.0, seats[8].Price)
}

func TestSectorSeatsErrors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SectorSeats(ctx, "evt", "Balcony")
	assert.ErrorIs(t, err, ErrSectorNotFound)

	_, err = svc.SectorSeats(ctx, "missing", "VIP")
	assert.ErrorIs(t, err, events.ErrEventNotFound)
}

func TestReserveIsExclusiveUntilReleased(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Reserve(ctx, "evt", "A-2", "alice")
	require.NoError(t, err)
	assert.Equal(t, "VIP", res.SectorID)
	assert.Equal(t, seatmap.StatusReserved, res.Seat.Status)

	// same shopper refreshes the hold
	_, err = svc.Reserve(ctx, "evt", "A-2", "alice")
	require.NoError(t, err)

	_, err = svc.Reserve(ctx, "evt", "A-2", "bob")
	assert.ErrorIs(t, err, ErrSeatTaken)

	seats, err := svc.SectorSeats(ctx, "evt", "VIP")
	require.NoError(t, err)
	assert.Equal(t, seatmap.StatusReserved, seats[1].Status)

	assert.ErrorIs(t, svc.Release(ctx, "evt", "A-2", "bob"), ErrNotHolder)
	require.NoError(t, svc.Release(ctx, "evt", "A-2", "alice"))

	_, err = svc.Reserve(ctx, "evt", "A-2", "bob")
	assert.NoError(t, err)
}

func TestReserveRejectsUnavailableAndUnknownSeats(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Reserve(ctx, "evt", "A-1", "alice")
	assert.ErrorIs(t, err, ErrSeatTaken)

	for _, id := range []string{"A-6", "Z-1", "garbage", "A-0"} {
		_, err = svc.Reserve(ctx, "evt", id, "alice")
		assert.ErrorIs(t, err, ErrSeatNotFound, id)
	}
}

func TestHoldsExpire(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	_, err := svc.Reserve(ctx, "evt", "C-1", "alice")
	require.NoError(t, err)

	holders, err := svc.Holders(ctx, "evt", []string{"C-1", "C-2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"C-1": "alice"}, holders)

	mr.FastForward(2 * time.Minute)

	seats, err := svc.SectorSeats(ctx, "evt", "General")
	require.NoError(t, err)
	assert.Equal(t, seatmap.StatusAvailable, seats[0].Status)

	_, err = svc.Reserve(ctx, "evt", "C-1", "bob")
	assert.NoError(t, err)
}
