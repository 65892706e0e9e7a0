package seatmap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError names the field that broke a rule
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every violated rule
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Has reports whether a field failed
func (v ValidationErrors) Has(field string) bool {
	for _, e := range v {
		if e.Field == field {
			return true
		}
	}
	return false
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the structural invariants of a seat map and returns all violations
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs ValidationErrors

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("failed to validate seat map: %w", err)
		}
		for _, fe := range fieldErrs {
			errs = append(errs, ValidationError{
				Field:   strings.TrimPrefix(fe.Namespace(), "Config."),
				Message: fmt.Sprintf("failed %q rule", fe.Tag()),
			})
		}
	}

	sectorIDs := make(map[string]bool, len(c.Sectors))
	for i, s := range c.Sectors {
		if sectorIDs[s.ID] {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("Sectors[%d].ID", i), Message: "duplicate sector id " + s.ID})
		}
		sectorIDs[s.ID] = true
	}

	rows := make(map[string]Row, len(c.Rows))
	orders := make(map[int]string, len(c.Rows))
	names := make(map[string]string, len(c.Rows))
	for i, r := range c.Rows {
		if _, dup := rows[r.ID]; dup {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("Rows[%d].ID", i), Message: "duplicate row id " + r.ID})
		}
		rows[r.ID] = r
		if other, dup := orders[r.Order]; dup {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("Rows[%d].Order", i), Message: fmt.Sprintf("order %d already used by row %s", r.Order, other)})
		}
		orders[r.Order] = r.ID
		// seat ids are built from row names, so a repeated name would alias another row's seats
		if other, dup := names[r.Name]; dup && r.Name != "" {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("Rows[%d].Name", i), Message: fmt.Sprintf("name %s already used by row %s", r.Name, other)})
		} else {
			names[r.Name] = r.ID
		}
		if r.SectorID != "" && !sectorIDs[r.SectorID] {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("Rows[%d].SectorID", i), Message: "unknown sector " + r.SectorID})
		}
	}

	for i, s := range c.Sectors {
		if total := c.SectorTotal(s.ID); total != s.Total {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("Sectors[%d].Total", i), Message: fmt.Sprintf("total %d does not match %d seats in rows", s.Total, total)})
		}
	}

	keys := make(map[SeatKey]bool, len(c.SpecialSeats))
	for i, s := range c.SpecialSeats {
		field := fmt.Sprintf("SpecialSeats[%d]", i)
		if keys[s.Key()] {
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("duplicate override for row %s seat %d", s.RowID, s.SeatIndex)})
		}
		keys[s.Key()] = true
		if s.Status != "" && !s.Status.Valid() {
			errs = append(errs, ValidationError{Field: field + ".Status", Message: "unknown status " + string(s.Status)})
		}
		if _, ok := rows[s.RowID]; !ok {
			errs = append(errs, ValidationError{Field: field + ".RowID", Message: "unknown row " + s.RowID})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
