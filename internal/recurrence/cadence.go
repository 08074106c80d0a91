package recurrence

import (
	"time"

	"contas/internal/core"
)

// Cadence is the strategy for one recurrence type. Each implementation
// knows which months it lands in and how to step from one occurrence to the
// next.
type Cadence interface {
	// FallsIn reports whether an obligation starting at start has an
	// occurrence in year/month.
	FallsIn(start core.Date, year int, month time.Month) bool
	// First returns the earliest occurrence on or after from.
	First(start core.Date, dueDay int, from core.Date) core.Date
	// Step returns the year/month of the occurrence following year/month.
	Step(year int, month time.Month) (int, time.Month)
}

// MonthlyCadence lands every month on the clamped due day.
type MonthlyCadence struct{}

func (MonthlyCadence) FallsIn(core.Date, int, time.Month) bool { return true }

// First stays in from's month unless from is already past the due day.
func (c MonthlyCadence) First(_ core.Date, dueDay int, from core.Date) core.Date {
	y, m := from.Year(), from.Month()
	if from.Day() > ClampDueDay(dueDay, y, m) {
		y, m = c.Step(y, m)
	}
	return core.NewDate(y, m, ClampDueDay(dueDay, y, m))
}

func (MonthlyCadence) Step(year int, month time.Month) (int, time.Month) {
	return addMonths(year, month, 1)
}

// YearlyCadence lands once a year in the start date's month.
type YearlyCadence struct{}

func (YearlyCadence) FallsIn(start core.Date, _ int, month time.Month) bool {
	return start.Month() == month
}

// First uses this year's anniversary unless it is already behind from.
func (YearlyCadence) First(start core.Date, dueDay int, from core.Date) core.Date {
	y, m := from.Year(), start.Month()
	d := core.NewDate(y, m, ClampDueDay(dueDay, y, m))
	if d.Before(from) {
		y++
		d = core.NewDate(y, m, ClampDueDay(dueDay, y, m))
	}
	return d
}

func (YearlyCadence) Step(year int, month time.Month) (int, time.Month) {
	return year + 1, month
}

// cadences maps recurrence types to their strategies.
var cadences = map[core.RecurrenceType]Cadence{
	core.Monthly: MonthlyCadence{},
	core.Yearly:  YearlyCadence{},
}

// CadenceFor returns the strategy for rt, or a *core.ConfigurationError when
// rt is not registered.
func CadenceFor(rt core.RecurrenceType) (Cadence, error) {
	c, ok := cadences[rt]
	if !ok {
		return nil, core.UnknownRecurrence("", rt)
	}
	return c, nil
}

// RegisterCadence adds or replaces the strategy for rt. It is not safe to
// call concurrently with projections; register at init time.
func RegisterCadence(rt core.RecurrenceType, c Cadence) {
	cadences[rt] = c
}
