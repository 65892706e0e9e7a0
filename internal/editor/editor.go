// Package editor authors seat maps. Sectors are built in a draft and only join the
// confirmed map when committed; exports never contain draft data.
package editor

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"boxoffice/internal/seatmap"

	"github.com/google/uuid"
)

const (
	DefaultSeatsPerRow = 10
	DefaultColumns     = 1
)

// Draft is a sector under construction together with its rows
type Draft struct {
	Sector seatmap.Sector `json:"sector"`
	Rows   []seatmap.Row  `json:"rows"`
}

// Persister stores an exported seat map for an event
type Persister interface {
	UpdateEvent(ctx context.Context, eventID string, update seatmap.EventUpdate) error
}

// Editor holds one operator's authoring session. It is not safe for concurrent use.
type Editor struct {
	sectors []seatmap.Sector
	rows    []seatmap.Row
	special map[seatmap.SeatKey]seatmap.SpecialSeat
	draft   *Draft
	newID   func() string
}

type Option func(*Editor)

// WithIDGenerator replaces the uuid generator used for row ids
func WithIDGenerator(fn func() string) Option {
	return func(e *Editor) { e.newID = fn }
}

func New(opts ...Option) *Editor {
	e := &Editor{
		special: make(map[seatmap.SeatKey]seatmap.SpecialSeat),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load opens an editor over a persisted seat map
func Load(cfg seatmap.Config, opts ...Option) (*Editor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to load seat map: %w", err)
	}
	cfg = cfg.Clone()

	e := New(opts...)
	e.sectors = cfg.Sectors
	e.rows = cfg.Rows
	seatmap.SortRows(e.rows)
	for _, s := range cfg.SpecialSeats {
		if s.Status == "" {
			s.Status = seatmap.SpecialAvailable
		}
		e.special[s.Key()] = s
	}
	return e, nil
}

// Draft returns a copy of the open draft
func (e *Editor) Draft() (Draft, bool) {
	if e.draft == nil {
		return Draft{}, false
	}
	return Draft{Sector: e.draft.Sector, Rows: slices.Clone(e.draft.Rows)}, true
}

// Sectors returns the confirmed sectors
func (e *Editor) Sectors() []seatmap.Sector {
	return slices.Clone(e.sectors)
}

// StartSector opens an empty draft colored from the palette
func (e *Editor) StartSector(colorIndex int) error {
	if e.draft != nil {
		return ErrDraftOpen
	}
	e.draft = &Draft{
		Sector: seatmap.Sector{Color: seatmap.PaletteColor(colorIndex)},
		Rows:   []seatmap.Row{},
	}
	return nil
}

// DraftPatch edits the draft sector's details; nil fields are left alone
type DraftPatch struct {
	Name  *string  `json:"name"`
	Price *float64 `json:"price"`
	Color *string  `json:"color"`
}

func (e *Editor) UpdateDraft(p DraftPatch) error {
	if e.draft == nil {
		return ErrNoDraft
	}
	if p.Name != nil {
		e.draft.Sector.Name = *p.Name
	}
	if p.Price != nil {
		e.draft.Sector.Price = *p.Price
	}
	if p.Color != nil {
		e.draft.Sector.Color = *p.Color
	}
	return nil
}

// CancelDraft discards the open draft, if any
func (e *Editor) CancelDraft() {
	e.draft = nil
}

// CommitSector moves the draft into the confirmed map. On failure the draft is untouched
// and the returned ValidationErrors name each failed precondition.
func (e *Editor) CommitSector() (seatmap.Sector, error) {
	if e.draft == nil {
		return seatmap.Sector{}, ErrNoDraft
	}

	var errs ValidationErrors
	name := strings.TrimSpace(e.draft.Sector.Name)
	if name == "" {
		errs = append(errs, fieldError("name", "sector name is required"))
	}
	if !(e.draft.Sector.Price > 0) {
		errs = append(errs, fieldError("price", "price must be greater than zero"))
	}
	if len(e.draft.Rows) == 0 {
		errs = append(errs, fieldError("rows", "add at least one row"))
	}
	for i, r := range e.draft.Rows {
		if e.rowNameTaken(r.Name, r.ID) {
			errs = append(errs, fieldError(fmt.Sprintf("rows[%d].name", i), "row name "+r.Name+" is already used"))
		}
	}
	if len(errs) > 0 {
		return seatmap.Sector{}, errs
	}

	e.normalize()

	sector := e.draft.Sector
	sector.Name = name
	sector.ID = e.uniqueSectorID(name)
	sector.Total = 0
	for i := range e.draft.Rows {
		e.draft.Rows[i].SectorID = sector.ID
		sector.Total += e.draft.Rows[i].Seats
	}
	sector.Available = sector.Total

	e.sectors = append(e.sectors, sector)
	e.rows = append(e.rows, e.draft.Rows...)
	e.draft = nil
	return sector, nil
}

// RemoveSector deletes a confirmed sector with its rows and their overrides.
// Other rows keep their order values.
func (e *Editor) RemoveSector(sectorID string) error {
	idx := slices.IndexFunc(e.sectors, func(s seatmap.Sector) bool { return s.ID == sectorID })
	if idx < 0 {
		return ErrSectorNotFound
	}
	e.sectors = slices.Delete(e.sectors, idx, idx+1)

	removed := make(map[string]bool)
	e.rows = slices.DeleteFunc(e.rows, func(r seatmap.Row) bool {
		if r.SectorID == sectorID {
			removed[r.ID] = true
			return true
		}
		return false
	})
	for key := range e.special {
		if removed[key.RowID] {
			delete(e.special, key)
		}
	}
	return nil
}

// ResizeRow changes a confirmed row's shape and keeps its sector's counts in step.
// Overrides on seats past the new end are kept.
func (e *Editor) ResizeRow(rowID string, seats, columns int) error {
	var errs ValidationErrors
	if seats < 1 {
		errs = append(errs, fieldError("seats", "a row needs at least one seat"))
	}
	if columns < 1 {
		errs = append(errs, fieldError("columns", "a row needs at least one column"))
	}
	if len(errs) > 0 {
		return errs
	}

	idx := slices.IndexFunc(e.rows, func(r seatmap.Row) bool { return r.ID == rowID })
	if idx < 0 {
		return ErrRowNotFound
	}
	delta := seats - e.rows[idx].Seats
	e.rows[idx].Seats = seats
	e.rows[idx].Columns = columns

	for i := range e.sectors {
		if e.sectors[i].ID != e.rows[idx].SectorID {
			continue
		}
		s := &e.sectors[i]
		s.Total += delta
		s.Available = max(0, min(s.Total, s.Available+delta))
	}
	return nil
}

// Export serializes the confirmed sectors, rows and overrides
func (e *Editor) Export() seatmap.Config {
	rows := slices.Clone(e.rows)
	seatmap.SortRows(rows)

	cfg := seatmap.Config{
		Sectors:      slices.Clone(e.sectors),
		Rows:         rows,
		SpecialSeats: e.specialSeats(rows),
	}
	if cfg.Sectors == nil {
		cfg.Sectors = []seatmap.Sector{}
	}
	if cfg.Rows == nil {
		cfg.Rows = []seatmap.Row{}
	}
	return cfg.Clone()
}

// Save exports the confirmed map and hands it to the persister
func (e *Editor) Save(ctx context.Context, p Persister, eventID string) (seatmap.EventUpdate, error) {
	cfg := e.Export()
	if err := cfg.Validate(); err != nil {
		return seatmap.EventUpdate{}, fmt.Errorf("failed to export seat map: %w", err)
	}
	update := seatmap.NewEventUpdate(cfg)
	if err := p.UpdateEvent(ctx, eventID, update); err != nil {
		return seatmap.EventUpdate{}, fmt.Errorf("failed to save seat map for event %s: %w", eventID, err)
	}
	return update, nil
}

func (e *Editor) specialSeats(sortedRows []seatmap.Row) []seatmap.SpecialSeat {
	rank := make(map[string]int, len(sortedRows))
	for i, r := range sortedRows {
		rank[r.ID] = i
	}
	out := make([]seatmap.SpecialSeat, 0, len(e.special))
	for _, s := range e.special {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b seatmap.SpecialSeat) int {
		if a.RowID != b.RowID {
			return rank[a.RowID] - rank[b.RowID]
		}
		return a.SeatIndex - b.SeatIndex
	})
	return out
}

func (e *Editor) uniqueSectorID(name string) string {
	taken := func(id string) bool {
		return slices.ContainsFunc(e.sectors, func(s seatmap.Sector) bool { return s.ID == id })
	}
	if !taken(name) {
		return name
	}
	for n := 2; ; n++ {
		if id := name + "-" + strconv.Itoa(n); !taken(id) {
			return id
		}
	}
}
