package editor

import (
	"slices"
	"strings"

	"boxoffice/internal/seatmap"
)

// Move directions for MoveRow
const (
	Up   = -1
	Down = 1
)

// AddRow appends one default row to the draft
func (e *Editor) AddRow() (seatmap.Row, error) {
	if e.draft == nil {
		return seatmap.Row{}, ErrNoDraft
	}
	row := e.newRow(DefaultSeatsPerRow, DefaultColumns)
	e.draft.Rows = append(e.draft.Rows, row)
	e.normalize()
	return e.draft.Rows[len(e.draft.Rows)-1], nil
}

// GenerateRows bulk-appends count rows of the same shape to the draft
func (e *Editor) GenerateRows(count, seatsPerRow, columns int) ([]seatmap.Row, error) {
	if e.draft == nil {
		return nil, ErrNoDraft
	}
	var errs ValidationErrors
	if count < 1 {
		errs = append(errs, fieldError("count", "generate at least one row"))
	}
	if seatsPerRow < 1 {
		errs = append(errs, fieldError("seatsPerRow", "a row needs at least one seat"))
	}
	if columns < 1 {
		errs = append(errs, fieldError("columns", "a row needs at least one column"))
	}
	if len(errs) > 0 {
		return nil, errs
	}

	start := len(e.draft.Rows)
	for i := 0; i < count; i++ {
		e.draft.Rows = append(e.draft.Rows, e.newRow(seatsPerRow, columns))
	}
	e.normalize()
	return slices.Clone(e.draft.Rows[start:]), nil
}

// RowPatch edits a draft row; nil fields are left alone
type RowPatch struct {
	Name    *string `json:"name"`
	Seats   *int    `json:"seats"`
	Columns *int    `json:"columns"`
}

func (e *Editor) UpdateDraftRow(rowID string, p RowPatch) error {
	if e.draft == nil {
		return ErrNoDraft
	}
	idx := e.draftRowIndex(rowID)
	if idx < 0 {
		return ErrRowNotFound
	}

	var errs ValidationErrors
	if p.Seats != nil && *p.Seats < 1 {
		errs = append(errs, fieldError("seats", "a row needs at least one seat"))
	}
	if p.Columns != nil && *p.Columns < 1 {
		errs = append(errs, fieldError("columns", "a row needs at least one column"))
	}
	var name string
	if p.Name != nil {
		name = strings.TrimSpace(*p.Name)
		switch {
		case name == "":
			errs = append(errs, fieldError("name", "row name is required"))
		case e.rowNameTaken(name, rowID):
			errs = append(errs, fieldError("name", "row name "+name+" is already used"))
		}
	}
	if len(errs) > 0 {
		return errs
	}

	row := &e.draft.Rows[idx]
	if p.Name != nil {
		row.Name = name
	}
	if p.Seats != nil {
		row.Seats = *p.Seats
	}
	if p.Columns != nil {
		row.Columns = *p.Columns
	}
	return nil
}

// RemoveRow deletes a row from the draft
func (e *Editor) RemoveRow(rowID string) error {
	if e.draft == nil {
		return ErrNoDraft
	}
	idx := e.draftRowIndex(rowID)
	if idx < 0 {
		return ErrRowNotFound
	}
	e.draft.Rows = slices.Delete(e.draft.Rows, idx, idx+1)
	e.normalize()
	return nil
}

// MoveRow swaps the draft row at index with its neighbour in direction (Up or Down).
// Moving past either end is a no-op.
func (e *Editor) MoveRow(index, direction int) error {
	if e.draft == nil {
		return ErrNoDraft
	}
	if direction != Up && direction != Down {
		return ValidationErrors{fieldError("direction", "direction must be -1 (up) or 1 (down)")}
	}
	if index < 0 || index >= len(e.draft.Rows) {
		return ErrRowNotFound
	}
	target := index + direction
	if target < 0 || target >= len(e.draft.Rows) {
		return nil
	}
	e.draft.Rows[index], e.draft.Rows[target] = e.draft.Rows[target], e.draft.Rows[index]
	e.normalize()
	return nil
}

// normalize renumbers draft rows densely after the last confirmed order.
// Every structural draft mutation goes through here.
func (e *Editor) normalize() {
	if e.draft == nil {
		return
	}
	next := e.nextConfirmedOrder()
	for i := range e.draft.Rows {
		e.draft.Rows[i].Order = next + i
	}
}

func (e *Editor) nextConfirmedOrder() int {
	next := 0
	for _, r := range e.rows {
		next = max(next, r.Order+1)
	}
	return next
}

func (e *Editor) newRow(seats, columns int) seatmap.Row {
	return seatmap.Row{
		ID:      e.newID(),
		Name:    seatmap.RowLabel(e.nextLabelIndex()),
		Seats:   seats,
		Columns: columns,
	}
}

// nextLabelIndex continues the letter sequence past every row seen so far
func (e *Editor) nextLabelIndex() int {
	next := len(e.rows)
	if e.draft != nil {
		next += len(e.draft.Rows)
	}
	consider := func(rows []seatmap.Row) {
		for _, r := range rows {
			if i, ok := labelIndex(r.Name); ok {
				next = max(next, i+1)
			}
		}
	}
	consider(e.rows)
	if e.draft != nil {
		consider(e.draft.Rows)
	}
	return next
}

// labelIndex inverts seatmap.RowLabel for names made only of capital letters
func labelIndex(name string) (int, bool) {
	if name == "" || len(name) > 4 {
		return 0, false
	}
	n := 0
	for _, c := range name {
		if c < 'A' || c > 'Z' {
			return 0, false
		}
		n = n*26 + int(c-'A') + 1
	}
	return n - 1, true
}

// rowNameTaken reports whether a confirmed or draft row other than exceptID is called name
func (e *Editor) rowNameTaken(name, exceptID string) bool {
	named := func(r seatmap.Row) bool { return r.Name == name && r.ID != exceptID }
	if slices.ContainsFunc(e.rows, named) {
		return true
	}
	return e.draft != nil && slices.ContainsFunc(e.draft.Rows, named)
}

func (e *Editor) draftRowIndex(rowID string) int {
	return slices.IndexFunc(e.draft.Rows, func(r seatmap.Row) bool { return r.ID == rowID })
}
