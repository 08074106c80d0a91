package recurrence

import (
	"contas/internal/core"
)

// DefaultProjectionCount is the number of occurrences listed when the caller
// does not ask for a specific count.
const DefaultProjectionCount = 12

// ValidateDueDay returns a *core.InvalidDueDayError when dueDay is outside 1-31.
func ValidateDueDay(dueDay int) error {
	if dueDay < 1 || dueDay > 31 {
		return &core.InvalidDueDayError{DueDay: dueDay}
	}
	return nil
}

// NextOccurrence returns the first occurrence on or after ref. When ref is
// before start the search begins at start instead, so the result is never
// earlier than the obligation's start date.
func NextOccurrence(start core.Date, dueDay int, rt core.RecurrenceType, ref core.Date) (core.Date, error) {
	if err := ValidateDueDay(dueDay); err != nil {
		return core.Date{}, err
	}
	c, err := CadenceFor(rt)
	if err != nil {
		return core.Date{}, err
	}
	return c.First(start, dueDay, effectiveRef(start, ref)), nil
}

// ProjectOccurrences lists count occurrences starting at NextOccurrence. Each
// step moves one period from the previous occurrence's month and re-clamps
// the nominal due day, so a 31st returns to the 31st after a short month.
// A count of zero or less yields an empty slice.
func ProjectOccurrences(start core.Date, dueDay int, rt core.RecurrenceType, ref core.Date, count int) ([]core.Date, error) {
	if err := ValidateDueDay(dueDay); err != nil {
		return nil, err
	}
	c, err := CadenceFor(rt)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		return []core.Date{}, nil
	}

	out := make([]core.Date, 0, count)
	d := c.First(start, dueDay, effectiveRef(start, ref))
	for i := 0; i < count; i++ {
		out = append(out, d)
		y, m := c.Step(d.Year(), d.Month())
		d = core.NewDate(y, m, ClampDueDay(dueDay, y, m))
	}
	return out, nil
}

// ProjectObligation runs ProjectOccurrences with the obligation's fields and
// drops occurrences past its end date. Errors are reported as
// *core.ConfigurationError carrying the obligation ID.
func ProjectObligation(o core.RecurringObligation, ref core.Date, count int) ([]core.Date, error) {
	if o.HasEnd() && o.EndDate.Before(o.StartDate) {
		return nil, &core.ConfigurationError{ObligationID: o.ID, Reason: "inconsistent date range", Err: core.ErrEndBeforeStart}
	}
	dates, err := ProjectOccurrences(o.StartDate, o.DueDay, o.Recurrence, ref, count)
	if err != nil {
		return nil, wrapForObligation(o.ID, err)
	}
	if !o.HasEnd() {
		return dates, nil
	}
	kept := dates[:0]
	for _, d := range dates {
		if d.After(o.EndDate) {
			break
		}
		kept = append(kept, d)
	}
	return kept, nil
}

func effectiveRef(start, ref core.Date) core.Date {
	if ref.Before(start) {
		return start
	}
	return ref
}

func wrapForObligation(id string, err error) error {
	if cfg, ok := err.(*core.ConfigurationError); ok {
		cfg.ObligationID = id
		return cfg
	}
	return &core.ConfigurationError{ObligationID: id, Reason: "invalid due day", Err: err}
}
