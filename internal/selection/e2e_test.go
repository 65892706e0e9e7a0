package selection

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxoffice/internal/editor"
	"boxoffice/internal/inventory"
	"boxoffice/internal/realtime"
	"boxoffice/internal/seatmap"
	"boxoffice/internal/shared/config"
)

func TestAuthoredSectorReachesCheckout(t *testing.T) {
	// back office: VIP at 350, two rows of five seats
	e := editor.New()
	require.NoError(t, e.StartSector(0))
	name, price := "VIP", 350.0
	require.NoError(t, e.UpdateDraft(editor.DraftPatch{Name: &name, Price: &price}))
	_, err := e.GenerateRows(2, 5, 1)
	require.NoError(t, err)
	_, err = e.CommitSector()
	require.NoError(t, err)

	cfg := e.Export()
	require.Len(t, cfg.Sectors, 1)
	assert.Equal(t, 10, cfg.Sectors[0].Total)
	sectorID := cfg.Sectors[0].ID
	assert.Equal(t, "VIP", sectorID)

	// inventory serves the exported map
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/events/e1/sectors/VIP/seats" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(cfg.SectorSeats(sectorID))
	}))
	defer srv.Close()

	loader := inventory.NewLoader(config.StorefrontConfig{
		APIBaseURL:         srv.URL,
		InventoryTimeout:   time.Second,
		BreakerMaxFailures: 3,
		BreakerOpenTimeout: time.Second,
		DemoRows:           4,
		DemoSeatsPerRow:    4,
	})

	checkout := &fakeCheckout{}
	s := openSession(t, SessionConfig{EventID: "e1", SectorID: sectorID, UserID: "u1"},
		Deps{Inventory: loader, Channel: newFakeChannel(realtime.StatusConnected), Checkout: checkout})
	waitLoaded(t, s)

	v := s.View()
	require.Equal(t, inventory.ModeLive, v.Mode)
	require.Len(t, v.Seats, 10)

	for _, id := range []string{"A-2", "B-4"} {
		out, err := s.Toggle(id)
		require.NoError(t, err)
		require.Equal(t, OutcomeAdded, out)
	}

	res, err := s.HandOff(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, res.HandOffID)

	require.Len(t, checkout.payloads, 1)
	payload := checkout.payloads[0]
	assert.Equal(t, "e1", payload.EventID)
	assert.Equal(t, "VIP", payload.SectorID)
	require.Len(t, payload.Seats, 2)
	for i, id := range []string{"A-2", "B-4"} {
		assert.Equal(t, id, payload.Seats[i].ID)
		assert.Equal(t, 350.0, payload.Seats[i].Price)
		assert.Equal(t, seatmap.StatusAvailable, payload.Seats[i].Status)
	}
}
