package editor

import (
	"boxoffice/internal/seatmap"
)

type PreviewState string

const (
	StateConfirmed PreviewState = "confirmed"
	StateDraft     PreviewState = "draft"
)

// Preview is what the back office renders: confirmed sectors first, then the draft
type Preview struct {
	Empty   bool            `json:"empty"`
	Message string          `json:"message,omitempty"`
	Sectors []SectorPreview `json:"sectors"`
}

type SectorPreview struct {
	State  PreviewState   `json:"state"`
	Sector seatmap.Sector `json:"sector"`
	Rows   []RowPreview   `json:"rows"`
}

type RowPreview struct {
	Row    seatmap.Row              `json:"row"`
	Groups [][]seatmap.ResolvedSeat `json:"groups"`
}

func (e *Editor) Preview() Preview {
	cfg := e.Export()
	p := Preview{Sectors: []SectorPreview{}}

	for _, sector := range cfg.Sectors {
		sp := SectorPreview{State: StateConfirmed, Sector: sector}
		for _, row := range cfg.RowsOf(sector.ID) {
			sp.Rows = append(sp.Rows, RowPreview{
				Row:    row,
				Groups: groupSeats(row, func(idx int) seatmap.ResolvedSeat { return cfg.ResolveSeat(row, idx) }),
			})
		}
		p.Sectors = append(p.Sectors, sp)
	}

	if d, ok := e.Draft(); ok {
		sector := d.Sector
		for _, r := range d.Rows {
			sector.Total += r.Seats
		}
		sector.Available = sector.Total
		sp := SectorPreview{State: StateDraft, Sector: sector}
		for _, row := range d.Rows {
			sp.Rows = append(sp.Rows, RowPreview{
				Row: row,
				Groups: groupSeats(row, func(idx int) seatmap.ResolvedSeat {
					return seatmap.ResolvedSeat{
						RowID:       row.ID,
						SeatIndex:   idx,
						Number:      idx + 1,
						SectorLabel: sector.Name,
						Color:       sector.Color,
						Price:       sector.Price,
						Status:      seatmap.SpecialAvailable,
					}
				}),
			})
		}
		p.Sectors = append(p.Sectors, sp)
	}

	if len(p.Sectors) == 0 {
		p.Empty = true
		p.Message = seatmap.EmptyMessage
	}
	return p
}

func groupSeats(row seatmap.Row, resolve func(idx int) seatmap.ResolvedSeat) [][]seatmap.ResolvedSeat {
	groups := seatmap.ColumnGroups(row.Seats, row.Columns)
	out := make([][]seatmap.ResolvedSeat, len(groups))
	for i, g := range groups {
		out[i] = make([]seatmap.ResolvedSeat, len(g))
		for j, number := range g {
			out[i][j] = resolve(number - 1)
		}
	}
	return out
}
