// Package services provides business logic and orchestration services.
//
// This file builds the dated instances of a month from the recurring
// obligation templates. The build is a pure projection over its inputs; the
// logger and metrics only observe skipped records.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"contas/internal/core"
	"contas/internal/metrics"
	"contas/internal/recurrence"
)

// Skip reasons, also used as metric labels.
const (
	SkipUnknownRecurrence = "unknown_recurrence"
	SkipInvalidDueDay     = "invalid_due_day"
	SkipInvalidDateRange  = "invalid_date_range"
)

type (
	// MonthView is the result of a month build.
	MonthView struct {
		Year      int
		Month     time.Month
		Instances []core.ObligationInstance
		Skipped   []SkippedObligation
	}

	// SkippedObligation records an obligation excluded for bad configuration.
	SkippedObligation struct {
		ObligationID string
		Reason       string
		Err          *core.ConfigurationError
	}
)

// InstanceBuilder turns obligations into month instances.
type InstanceBuilder struct {
	metrics *metrics.Metrics
}

// NewInstanceBuilder creates a builder. m may be nil.
func NewInstanceBuilder(m *metrics.Metrics) *InstanceBuilder {
	return &InstanceBuilder{metrics: m}
}

// BuildMonth projects the active obligations onto year/month.
//
// An obligation with an unknown cadence, an end date before its start date,
// or a due day outside 1-31 is left out and reported in MonthView.Skipped;
// one malformed record never blanks the rest of the month. The only error
// returned is for a month outside 1-12.
//
// Yearly obligations appear only in their start month. A clamped due date
// before StartDate or after EndDate produces no instance, even when the
// month itself is inside the active range.
//
// Instances are sorted by due date, then by obligation ID.
func (b *InstanceBuilder) BuildMonth(ctx context.Context, obligations []core.RecurringObligation, year int, month time.Month, paid core.PaidSet, today core.Date) (MonthView, error) {
	if month < time.January || month > time.December {
		return MonthView{}, fmt.Errorf("build month %d: %w", int(month), core.ErrInvalidMonth)
	}

	view := MonthView{Year: year, Month: month, Instances: []core.ObligationInstance{}}
	first := core.FirstOfMonth(year, month)
	last := core.LastOfMonth(year, month)

	for _, o := range obligations {
		if !o.IsActive {
			continue
		}

		cadence, skip := checkObligation(o)
		if skip != nil {
			view.Skipped = append(view.Skipped, *skip)
			b.metrics.IncrSkipped(skip.Reason)
			slog.WarnContext(ctx, "Skipping misconfigured obligation",
				"obligation_id", o.ID,
				"reason", skip.Reason,
				"error", skip.Err)
			continue
		}

		if !cadence.FallsIn(o.StartDate, year, month) {
			continue
		}
		if o.StartDate.After(last) {
			continue
		}
		if o.HasEnd() && o.EndDate.Before(first) {
			continue
		}

		day := recurrence.ClampDueDay(o.DueDay, year, month)
		due := core.NewDate(year, month, day)
		if due.Before(o.StartDate) || (o.HasEnd() && due.After(o.EndDate)) {
			continue
		}

		key := core.InstanceKey(o.ID, year, month, day)
		inst := core.ObligationInstance{
			ObligationID:  o.ID,
			InstanceKey:   key,
			DueDate:       due,
			Amount:        o.Amount,
			Status:        core.ClassifyStatus(paid.Has(key), due, today),
			Title:         o.Title,
			CategoryID:    o.CategoryID,
			CreditCardID:  o.CreditCardID,
			PaymentMethod: o.PaymentMethod,
		}
		b.metrics.IncrInstance(string(inst.Status))
		view.Instances = append(view.Instances, inst)
	}

	SortInstances(view.Instances)
	return view, nil
}

// BuildYear builds the twelve months of year concurrently.
func (b *InstanceBuilder) BuildYear(ctx context.Context, obligations []core.RecurringObligation, year int, paid core.PaidSet, today core.Date) ([]MonthView, error) {
	views := make([]MonthView, 12)
	g, gctx := errgroup.WithContext(ctx)
	for i := range views {
		month := time.Month(i + 1)
		g.Go(func() error {
			v, err := b.BuildMonth(gctx, obligations, year, month, paid, today)
			if err != nil {
				return err
			}
			views[month-1] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build year %d: %w", year, err)
	}
	return views, nil
}

// SortInstances orders by due date, breaking ties by obligation ID.
func SortInstances(in []core.ObligationInstance) {
	sort.SliceStable(in, func(i, j int) bool {
		if !in[i].DueDate.Equal(in[j].DueDate) {
			return in[i].DueDate.Before(in[j].DueDate)
		}
		return in[i].ObligationID < in[j].ObligationID
	})
}

// checkObligation returns the cadence for o, or the reason it cannot be projected.
func checkObligation(o core.RecurringObligation) (recurrence.Cadence, *SkippedObligation) {
	cadence, err := recurrence.CadenceFor(o.Recurrence)
	if err != nil {
		cfg := core.UnknownRecurrence(o.ID, o.Recurrence)
		return nil, &SkippedObligation{ObligationID: o.ID, Reason: SkipUnknownRecurrence, Err: cfg}
	}
	if o.HasEnd() && o.EndDate.Before(o.StartDate) {
		cfg := &core.ConfigurationError{
			ObligationID: o.ID,
			Reason:       "end date " + o.EndDate.String() + " is before start date " + o.StartDate.String(),
			Err:          core.ErrEndBeforeStart,
		}
		return nil, &SkippedObligation{ObligationID: o.ID, Reason: SkipInvalidDateRange, Err: cfg}
	}
	if err := recurrence.ValidateDueDay(o.DueDay); err != nil {
		cfg := &core.ConfigurationError{ObligationID: o.ID, Reason: "due day out of range", Err: err}
		return nil, &SkippedObligation{ObligationID: o.ID, Reason: SkipInvalidDueDay, Err: cfg}
	}
	return cadence, nil
}

