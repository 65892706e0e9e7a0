package editor

import (
	"slices"

	"boxoffice/internal/seatmap"
)

// State is the serializable form of an editor, draft included
type State struct {
	Config seatmap.Config `json:"config"`
	Draft  *Draft         `json:"draft,omitempty"`
}

func (e *Editor) State() State {
	st := State{Config: e.Export()}
	if d, ok := e.Draft(); ok {
		st.Draft = &d
	}
	return st
}

// Restore rebuilds an editor from a saved State
func Restore(st State, opts ...Option) (*Editor, error) {
	e, err := Load(st.Config, opts...)
	if err != nil {
		return nil, err
	}
	if st.Draft != nil {
		e.draft = &Draft{Sector: st.Draft.Sector, Rows: slices.Clone(st.Draft.Rows)}
		if e.draft.Rows == nil {
			e.draft.Rows = []seatmap.Row{}
		}
		e.normalize()
	}
	return e, nil
}
