package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"boxoffice/internal/seatmap"
	"boxoffice/internal/shared/constants"
	"boxoffice/pkg/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu     sync.Mutex
	events map[uuid.UUID]*Event
	gets   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{events: map[uuid.UUID]*Event{}}
}

func (r *fakeRepo) Create(_ context.Context, event *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	cp := *event
	r.events[event.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	event, ok := r.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	cp := *event
	return &cp, nil
}

func (r *fakeRepo) List(_ context.Context, query EventListQuery) ([]Event, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if query.Status == "" || string(e.Status) == query.Status {
			out = append(out, *e)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeRepo) UpdateSeatMap(_ context.Context, id uuid.UUID, sectors []seatmap.SectorSummary, cfg *seatmap.Config) (*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	event.Sectors = sectors
	event.SeatMapConfig = cfg
	cp := *event
	return &cp, nil
}

func (r *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return ErrEventNotFound
	}
	delete(r.events, id)
	return nil
}

func vipConfig() seatmap.Config {
	return seatmap.Config{
		Sectors: []seatmap.Sector{{ID: "VIP", Name: "VIP", Color: "#e11d48", Price: 350, Total: 10, Available: 10}},
		Rows: []seatmap.Row{
			{ID: "r1", Name: "A", Seats: 5, Columns: 1, Order: 0, SectorID: "VIP"},
			{ID: "r2", Name: "B", Seats: 5, Columns: 1, Order: 1, SectorID: "VIP"},
		},
		SpecialSeats: []seatmap.SpecialSeat{},
	}
}

func newTestService(t *testing.T) (Service, *fakeRepo, cache.Service) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repo := newFakeRepo()
	cacheService := cache.NewService(client, nil)
	return NewService(repo, cacheService, nil), repo, cacheService
}

func createEvent(t *testing.T, svc Service) *EventResponse {
	t.Helper()
	event, err := svc.CreateEvent(context.Background(), "admin-1", CreateEventRequest{
		Name:     "Opening night",
		Venue:    "Teatro Colon",
		StartsAt: time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	return event
}

func TestCreateEventDefaultsToDraft(t *testing.T) {
	svc, _, _ := newTestService(t)

	event := createEvent(t, svc)

	assert.Equal(t, StatusDraft, event.Status)
	assert.Empty(t, event.Sectores)
	assert.Zero(t, event.Capacity)
}

func TestGetEventUsesCache(t *testing.T) {
	svc, repo, cacheService := newTestService(t)
	ctx := context.Background()
	created := createEvent(t, svc)

	_, err := svc.GetEvent(ctx, created.ID)
	require.NoError(t, err)
	_, err = svc.GetEvent(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.gets)
	assert.True(t, cacheService.Exists(ctx, constants.BuildEventDetailKey(created.ID)))
}

func TestGetEventErrors(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetEvent(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidEventID)

	_, err = svc.GetEvent(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestUpdateSeatMapPersistsAndInvalidates(t *testing.T) {
	svc, _, cacheService := newTestService(t)
	ctx := context.Background()
	created := createEvent(t, svc)

	// warm the cache with the empty map
	cfg, err := svc.GetSeatMap(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, cfg.IsEmpty())

	updated, err := svc.UpdateSeatMap(ctx, created.ID, seatmap.NewEventUpdate(vipConfig()))
	require.NoError(t, err)
	assert.Equal(t, 10, updated.Capacity)
	assert.False(t, cacheService.Exists(ctx, constants.BuildEventDetailKey(created.ID)))

	cfg, err = svc.GetSeatMap(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, cfg.Rows, 2)
	assert.Equal(t, 10, cfg.SectorTotal("VIP"))
}

func TestUpdateSeatMapRejectsInconsistentPayloads(t *testing.T) {
	tests := []struct {
		name   string
		update func() seatmap.EventUpdate
		field  string
	}{
		{
			name:   "missing config",
			update: func() seatmap.EventUpdate { return seatmap.EventUpdate{} },
			field:  "seatMapConfig",
		},
		{
			name: "invalid config",
			update: func() seatmap.EventUpdate {
				cfg := vipConfig()
				cfg.Rows[1].Order = 0
				return seatmap.NewEventUpdate(cfg)
			},
			field: "Rows[1].Order",
		},
		{
			name: "row name shared by two sectors",
			update: func() seatmap.EventUpdate {
				cfg := vipConfig()
				cfg.Sectors[0].Total, cfg.Sectors[0].Available = 5, 5
				cfg.Sectors = append(cfg.Sectors, seatmap.Sector{ID: "General", Name: "General", Color: "#1e88e5", Price: 50, Total: 5, Available: 5})
				cfg.Rows[1].Name, cfg.Rows[1].SectorID = "A", "General"
				return seatmap.NewEventUpdate(cfg)
			},
			field: "Rows[1].Name",
		},
		{
			name: "summary for unknown sector",
			update: func() seatmap.EventUpdate {
				u := seatmap.NewEventUpdate(vipConfig())
				u.Sectores[0].Nombre = "Platea"
				return u
			},
			field: "sectores[0].nombre",
		},
		{
			name: "summary total differs",
			update: func() seatmap.EventUpdate {
				u := seatmap.NewEventUpdate(vipConfig())
				u.Sectores[0].Total = 12
				return u
			},
			field: "sectores[0].total",
		},
		{
			name: "missing summary",
			update: func() seatmap.EventUpdate {
				u := seatmap.NewEventUpdate(vipConfig())
				u.Sectores = nil
				return u
			},
			field: "sectores",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestService(t)
			created := createEvent(t, svc)

			_, err := svc.UpdateSeatMap(context.Background(), created.ID, tt.update())
			require.Error(t, err)
			var verrs seatmap.ValidationErrors
			require.True(t, errors.As(err, &verrs))
			assert.True(t, verrs.Has(tt.field), "expected %s in %v", tt.field, verrs)
		})
	}
}

func TestListEventsFiltersAndPaginates(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	createEvent(t, svc)
	_, err := svc.CreateEvent(ctx, "admin-1", CreateEventRequest{
		Name: "Matinee", Venue: "Gran Rex", StartsAt: time.Now(), Status: string(StatusPublished),
	})
	require.NoError(t, err)

	page, err := svc.ListEvents(ctx, EventListQuery{Status: string(StatusPublished)})
	require.NoError(t, err)
	require.Len(t, page.Events, 1)
	assert.Equal(t, "Matinee", page.Events[0].Name)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.Limit)
	assert.Equal(t, 1, page.TotalPages)
}

func TestDeleteEvent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	created := createEvent(t, svc)

	require.NoError(t, svc.DeleteEvent(ctx, created.ID))
	assert.ErrorIs(t, svc.DeleteEvent(ctx, created.ID), ErrEventNotFound)
	_, err := svc.GetEvent(ctx, created.ID)
	assert.ErrorIs(t, err, ErrEventNotFound)
}
