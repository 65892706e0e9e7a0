package editor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"boxoffice/internal/seatmap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("row-%d", n)
	})
}

func ptr[T any](v T) *T { return &v }

// buildSector opens, fills and commits a sector
func buildSector(t *testing.T, e *Editor, name string, price float64, rows, seats, columns int) seatmap.Sector {
	t.Helper()
	require.NoError(t, e.StartSector(0))
	require.NoError(t, e.UpdateDraft(DraftPatch{Name: ptr(name), Price: ptr(price)}))
	_, err := e.GenerateRows(rows, seats, columns)
	require.NoError(t, err)
	sector, err := e.CommitSector()
	require.NoError(t, err)
	return sector
}

func requireValidation(t *testing.T, err error, fields ...string) {
	t.Helper()
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs), "expected validation errors, got %v", err)
	for _, f := range fields {
		assert.True(t, verrs.Has(f), "missing %s in %v", f, verrs)
	}
}

func TestStartSector(t *testing.T) {
	e := New()

	require.NoError(t, e.StartSector(len(seatmap.Palette)+2))
	d, ok := e.Draft()
	require.True(t, ok)
	assert.Equal(t, seatmap.Palette[2], d.Sector.Color)
	assert.Empty(t, d.Rows)

	assert.ErrorIs(t, e.StartSector(0), ErrDraftOpen)
}

func TestDraftOperationsNeedDraft(t *testing.T) {
	e := New()

	_, err := e.AddRow()
	assert.ErrorIs(t, err, ErrNoDraft)
	_, err = e.GenerateRows(1, 1, 1)
	assert.ErrorIs(t, err, ErrNoDraft)
	assert.ErrorIs(t, e.RemoveRow("x"), ErrNoDraft)
	assert.ErrorIs(t, e.MoveRow(0, Down), ErrNoDraft)
	_, err = e.CommitSector()
	assert.ErrorIs(t, err, ErrNoDraft)
}

func TestGenerateRows(t *testing.T) {
	e := New(seqIDs())
	require.NoError(t, e.StartSector(0))

	rows, err := e.GenerateRows(5, 10, 2)
	require.NoError(t, err)
	require.Len(t, rows, 5)

	for i, r := range rows {
		assert.Equal(t, 10, r.Seats)
		assert.Equal(t, 2, r.Columns)
		assert.Equal(t, seatmap.RowLabel(i), r.Name)
		assert.Equal(t, i, r.Order)
	}
}

func TestGenerateRowsRejectsNonPositive(t *testing.T) {
	e := New()
	require.NoError(t, e.StartSector(0))

	_, err := e.GenerateRows(0, 10, 0)
	requireValidation(t, err, "count", "columns")

	_, err = e.GenerateRows(2, -1, 1)
	requireValidation(t, err, "seatsPerRow")

	d, _ := e.Draft()
	assert.Empty(t, d.Rows, "rejected generation must not touch the draft")
}

func TestCommitSectorValidation(t *testing.T) {
	e := New()
	buildSector(t, e, "Floor", 50, 1, 4, 1)
	require.NoError(t, e.StartSector(1))

	_, err := e.CommitSector()
	requireValidation(t, err, "name", "price", "rows")

	require.NoError(t, e.UpdateDraft(DraftPatch{Name: ptr("   "), Price: ptr(-5.0)}))
	_, err = e.AddRow()
	require.NoError(t, err)
	_, err = e.CommitSector()
	requireValidation(t, err, "name", "price")

	assert.Len(t, e.Sectors(), 1, "confirmed sectors unchanged")
	d, ok := e.Draft()
	require.True(t, ok, "draft survives a failed commit")
	assert.Len(t, d.Rows, 1)
	assert.Equal(t, "   ", d.Sector.Name)
}

func TestCommitSector(t *testing.T) {
	e := New(seqIDs())
	vip := buildSector(t, e, " VIP ", 350, 2, 5, 1)

	assert.Equal(t, "VIP", vip.ID)
	assert.Equal(t, "VIP", vip.Name)
	assert.Equal(t, 10, vip.Total)
	assert.Equal(t, 10, vip.Available)

	_, open := e.Draft()
	assert.False(t, open)

	second := buildSector(t, e, "VIP", 200, 1, 3, 1)
	assert.Equal(t, "VIP-2", second.ID)

	cfg := e.Export()
	require.Len(t, cfg.Rows, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{cfg.Rows[0].Name, cfg.Rows[1].Name, cfg.Rows[2].Name})
	assert.Equal(t, 2, cfg.Rows[2].Order, "new sector rows continue after the last confirmed row")
	assert.Equal(t, "VIP-2", cfg.Rows[2].SectorID)
}

func TestDraftRowsNeverExported(t *testing.T) {
	e := New()
	buildSector(t, e, "A", 10, 1, 2, 1)
	require.NoError(t, e.StartSector(0))
	_, err := e.GenerateRows(3, 3, 1)
	require.NoError(t, err)

	cfg := e.Export()
	assert.Len(t, cfg.Sectors, 1)
	assert.Len(t, cfg.Rows, 1)
}

func TestRowOrdersStayUniqueAcrossMutations(t *testing.T) {
	e := New(seqIDs())
	buildSector(t, e, "Lower", 80, 3, 4, 1)
	require.NoError(t, e.StartSector(1))
	_, err := e.GenerateRows(4, 6, 2)
	require.NoError(t, err)
	added, err := e.AddRow()
	require.NoError(t, err)
	require.NoError(t, e.MoveRow(4, Up))
	require.NoError(t, e.RemoveRow(added.ID))
	d, _ := e.Draft()
	require.NoError(t, e.RemoveRow(d.Rows[0].ID))

	d, _ = e.Draft()
	for i, r := range d.Rows {
		assert.Equal(t, 3+i, r.Order, "draft orders are dense after confirmed rows")
	}

	require.NoError(t, e.UpdateDraft(DraftPatch{Name: ptr("Upper"), Price: ptr(40.0)}))
	_, err = e.CommitSector()
	require.NoError(t, err)

	cfg := e.Export()
	seen := map[int]bool{}
	for _, r := range cfg.Rows {
		assert.False(t, seen[r.Order], "duplicate order %d", r.Order)
		seen[r.Order] = true
	}
	for _, s := range cfg.Sectors {
		assert.Equal(t, cfg.SectorTotal(s.ID), s.Total)
	}
	require.NoError(t, cfg.Validate())
}

func TestMoveRow(t *testing.T) {
	e := New(seqIDs())
	require.NoError(t, e.StartSector(0))
	_, err := e.GenerateRows(3, 1, 1)
	require.NoError(t, err)

	require.NoError(t, e.MoveRow(0, Down))
	d, _ := e.Draft()
	assert.Equal(t, []string{"B", "A", "C"}, []string{d.Rows[0].Name, d.Rows[1].Name, d.Rows[2].Name})
	assert.Equal(t, []int{0, 1, 2}, []int{d.Rows[0].Order, d.Rows[1].Order, d.Rows[2].Order})

	require.NoError(t, e.MoveRow(0, Up), "moving past the top is a no-op")
	require.NoError(t, e.MoveRow(2, Down), "moving past the bottom is a no-op")
	d, _ = e.Draft()
	assert.Equal(t, "B", d.Rows[0].Name)
	assert.Equal(t, "C", d.Rows[2].Name)

	assert.ErrorIs(t, e.MoveRow(7, Up), ErrRowNotFound)
	requireValidation(t, e.MoveRow(1, 3), "direction")
}

func TestRowNamesContinueFromConfirmed(t *testing.T) {
	e := New()
	buildSector(t, e, "Front", 10, 2, 2, 1)
	require.NoError(t, e.StartSector(0))

	row, err := e.AddRow()
	require.NoError(t, err)
	assert.Equal(t, "C", row.Name)
	assert.Equal(t, DefaultSeatsPerRow, row.Seats)
	assert.Equal(t, DefaultColumns, row.Columns)

	require.NoError(t, e.RemoveRow(row.ID))
	next, err := e.AddRow()
	require.NoError(t, err)
	assert.Equal(t, "C", next.Name)
}

func TestUpdateDraftRow(t *testing.T) {
	e := New()
	require.NoError(t, e.StartSector(0))
	row, err := e.AddRow()
	require.NoError(t, err)

	require.NoError(t, e.UpdateDraftRow(row.ID, RowPatch{Name: ptr("Stalls"), Seats: ptr(12), Columns: ptr(3)}))
	requireValidation(t, e.UpdateDraftRow(row.ID, RowPatch{Seats: ptr(0)}), "seats")
	assert.ErrorIs(t, e.UpdateDraftRow("ghost", RowPatch{}), ErrRowNotFound)

	d, _ := e.Draft()
	assert.Equal(t, "Stalls", d.Rows[0].Name)
	assert.Equal(t, 12, d.Rows[0].Seats)
	assert.Equal(t, 3, d.Rows[0].Columns)
}

func TestRemoveSectorCascades(t *testing.T) {
	e := New(seqIDs())
	buildSector(t, e, "A", 10, 2, 3, 1)
	b := buildSector(t, e, "B", 20, 2, 3, 1)
	buildSector(t, e, "C", 30, 1, 3, 1)

	cfg := e.Export()
	bRow := cfg.RowsOf(b.ID)[0]
	_, err := e.SetSpecialSeat(bRow.ID, 0, SpecialSeatPatch{Status: seatmap.SpecialSold})
	require.NoError(t, err)

	require.NoError(t, e.RemoveSector(b.ID))
	assert.ErrorIs(t, e.RemoveSector(b.ID), ErrSectorNotFound)

	cfg = e.Export()
	assert.Len(t, cfg.Sectors, 2)
	assert.Len(t, cfg.Rows, 3)
	assert.Empty(t, cfg.SpecialSeats)
	assert.Equal(t, []int{0, 1, 4}, []int{cfg.Rows[0].Order, cfg.Rows[1].Order, cfg.Rows[2].Order}, "gaps are kept")
	require.NoError(t, cfg.Validate())
}

func TestSpecialSeats(t *testing.T) {
	e := New(seqIDs())
	buildSector(t, e, "VIP", 350, 1, 5, 1)
	row := e.Export().Rows[0]

	_, err := e.SetSpecialSeat(row.ID, 1, SpecialSeatPatch{Price: ptr(500.0)})
	require.NoError(t, err)
	updated, err := e.SetSpecialSeat(row.ID, 1, SpecialSeatPatch{Status: seatmap.SpecialSold})
	require.NoError(t, err)
	assert.Equal(t, 500.0, *updated.Price, "patch keeps earlier fields")
	assert.Equal(t, seatmap.SpecialSold, updated.Status)

	cfg := e.Export()
	require.Len(t, cfg.SpecialSeats, 1, "same key never duplicates")

	_, err = e.SetSpecialSeat(row.ID, 5, SpecialSeatPatch{})
	requireValidation(t, err, "seatIndex")
	_, err = e.SetSpecialSeat(row.ID, 0, SpecialSeatPatch{Price: ptr(-1.0), Status: "gone"})
	requireValidation(t, err, "price", "status")
	_, err = e.SetSpecialSeat("ghost", 0, SpecialSeatPatch{})
	assert.ErrorIs(t, err, ErrRowNotFound)

	e.ClearSpecialSeat(row.ID, 1)
	e.ClearSpecialSeat(row.ID, 3)
	assert.Empty(t, e.Export().SpecialSeats)
}

func TestResizeRowKeepsTotals(t *testing.T) {
	e := New(seqIDs())
	s := buildSector(t, e, "Hall", 25, 2, 5, 1)
	row := e.Export().Rows[0]
	_, err := e.SetSpecialSeat(row.ID, 4, SpecialSeatPatch{Status: seatmap.SpecialReserved})
	require.NoError(t, err)

	require.NoError(t, e.ResizeRow(row.ID, 3, 1))
	requireValidation(t, e.ResizeRow(row.ID, 0, 0), "seats", "columns")

	cfg := e.Export()
	sector, _ := cfg.Sector(s.ID)
	assert.Equal(t, 8, sector.Total)
	assert.Equal(t, 8, sector.Available)
	assert.Len(t, cfg.SpecialSeats, 1, "overrides persist across resizes")
}

func TestPreview(t *testing.T) {
	e := New(seqIDs())

	empty := e.Preview()
	assert.True(t, empty.Empty)
	assert.Equal(t, seatmap.EmptyMessage, empty.Message)

	buildSector(t, e, "VIP", 350, 1, 5, 2)
	require.NoError(t, e.StartSector(3))
	require.NoError(t, e.UpdateDraft(DraftPatch{Name: ptr("Draft"), Price: ptr(10.0)}))
	_, err := e.GenerateRows(1, 4, 1)
	require.NoError(t, err)

	p := e.Preview()
	require.False(t, p.Empty)
	require.Len(t, p.Sectors, 2)
	assert.Equal(t, StateConfirmed, p.Sectors[0].State)
	assert.Equal(t, StateDraft, p.Sectors[1].State)
	assert.Equal(t, 4, p.Sectors[1].Sector.Total)

	groups := p.Sectors[0].Rows[0].Groups
	require.Len(t, groups, 2)
	assert.Len(t, groups[0], 3)
	assert.Len(t, groups[1], 2)
	assert.Equal(t, 350.0, groups[1][1].Price)
}

func TestStateRoundTrip(t *testing.T) {
	e := New(seqIDs())
	buildSector(t, e, "VIP", 350, 2, 5, 1)
	row := e.Export().Rows[1]
	_, err := e.SetSpecialSeat(row.ID, 2, SpecialSeatPatch{Color: ptr("#000")})
	require.NoError(t, err)
	require.NoError(t, e.StartSector(1))
	_, err = e.AddRow()
	require.NoError(t, err)

	restored, err := Restore(e.State())
	require.NoError(t, err)

	assert.Equal(t, e.Export(), restored.Export())
	d1, _ := e.Draft()
	d2, ok := restored.Draft()
	require.True(t, ok)
	assert.Equal(t, d1, d2)
}

type recordingPersister struct {
	eventID string
	update  seatmap.EventUpdate
	err     error
}

func (p *recordingPersister) UpdateEvent(_ context.Context, eventID string, update seatmap.EventUpdate) error {
	p.eventID = eventID
	p.update = update
	return p.err
}

func TestSave(t *testing.T) {
	e := New()
	buildSector(t, e, "VIP", 350, 2, 5, 1)
	p := &recordingPersister{}

	update, err := e.Save(context.Background(), p, "evt-1")
	require.NoError(t, err)

	assert.Equal(t, "evt-1", p.eventID)
	require.Len(t, update.Sectores, 1)
	assert.Equal(t, seatmap.SectorSummary{Nombre: "VIP", Precio: 350, Total: 10, Disponible: 10}, update.Sectores[0])
	require.NotNil(t, update.SeatMapConfig)
	assert.Len(t, update.SeatMapConfig.Rows, 2)

	p.err = errors.New("offline")
	_, err = e.Save(context.Background(), p, "evt-1")
	assert.ErrorIs(t, err, p.err)
}

func TestUpdateDraftRowKeepsNamesUnique(t *testing.T) {
	e := New(seqIDs())
	buildSector(t, e, "VIP", 350, 2, 5, 1)
	require.NoError(t, e.StartSector(1))
	first, err := e.AddRow()
	require.NoError(t, err)
	second, err := e.AddRow()
	require.NoError(t, err)

	requireValidation(t, e.UpdateDraftRow(first.ID, RowPatch{Name: ptr("A")}), "name")
	requireValidation(t, e.UpdateDraftRow(first.ID, RowPatch{Name: ptr(second.Name)}), "name")
	requireValidation(t, e.UpdateDraftRow(first.ID, RowPatch{Name: ptr("   ")}), "name")

	require.NoError(t, e.UpdateDraftRow(first.ID, RowPatch{Name: ptr(first.Name)}), "keeping its own name is fine")
	require.NoError(t, e.UpdateDraftRow(first.ID, RowPatch{Name: ptr(" Balcony ")}))
	d, _ := e.Draft()
	assert.Equal(t, "Balcony", d.Rows[0].Name)
}

func TestCommitSectorRejectsReusedRowNames(t *testing.T) {
	e := New(seqIDs())
	buildSector(t, e, "VIP", 350, 1, 5, 1)

	st := e.State()
	st.Draft = &Draft{
		Sector: seatmap.Sector{Name: "General", Price: 50},
		Rows:   []seatmap.Row{{ID: "restored", Name: "A", Seats: 4, Columns: 1}},
	}
	restored, err := Restore(st)
	require.NoError(t, err)

	_, err = restored.CommitSector()
	requireValidation(t, err, "rows[0].name")
	assert.Len(t, restored.Sectors(), 1)
	exported := restored.Export()
	require.NoError(t, exported.Validate())
}

func TestPricesRejectNaN(t *testing.T) {
	e := New()
	require.NoError(t, e.StartSector(0))
	require.NoError(t, e.UpdateDraft(DraftPatch{Name: ptr("Floor"), Price: ptr(math.NaN())}))
	_, err := e.AddRow()
	require.NoError(t, err)

	_, err = e.CommitSector()
	requireValidation(t, err, "price")

	require.NoError(t, e.UpdateDraft(DraftPatch{Price: ptr(40.0)}))
	_, err = e.CommitSector()
	require.NoError(t, err)

	rowID := e.Export().Rows[0].ID
	_, err = e.SetSpecialSeat(rowID, 0, SpecialSeatPatch{Price: ptr(math.NaN())})
	requireValidation(t, err, "price")

	free, err := e.SetSpecialSeat(rowID, 0, SpecialSeatPatch{Price: ptr(0.0)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, *free.Price)
}
