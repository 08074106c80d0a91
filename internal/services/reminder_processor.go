package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"contas/internal/core"
	"contas/internal/metrics"
	"contas/internal/store"
)

// Reminder kinds, also stored in the reminder log.
const (
	ReminderUpcoming = "upcoming"
	ReminderOverdue  = "overdue"
)

// OverdueLookbackDays bounds how far back a run looks for unpaid instances.
// Older overdue instances are assumed to have been notified already.
const OverdueLookbackDays = 7

type (
	// Reminder is one notification about an instance.
	Reminder struct {
		Kind     string
		Instance core.ObligationInstance
		// DaysLeft is negative for overdue instances.
		DaysLeft int
	}

	Notifier interface {
		Notify(ctx context.Context, r Reminder) error
	}

	// ReminderResult counts what one run did.
	ReminderResult struct {
		Sent    int
		Skipped int
		Failed  int
	}

	reminderStore interface {
		store.ObligationReader
		store.PaidStore
		store.ReminderLog
	}
)

// ReminderProcessor sends upcoming notices for the current and next month and
// overdue notices for instances due in the last OverdueLookbackDays, which may
// fall in the previous month. Each instance is notified at most once per kind.
type ReminderProcessor struct {
	store    reminderStore
	builder  *InstanceBuilder
	notifier Notifier
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewReminderProcessor(st reminderStore, notifier Notifier, m *metrics.Metrics) *ReminderProcessor {
	return &ReminderProcessor{
		store:    st,
		builder:  NewInstanceBuilder(m),
		notifier: notifier,
		metrics:  m,
		now:      time.Now,
	}
}

// ProcessReminders runs one pass for today. Failures for single instances are
// logged and counted; only failing to load the inputs returns an error.
func (p *ReminderProcessor) ProcessReminders(ctx context.Context, today core.Date) (ReminderResult, error) {
	var res ReminderResult
	if p.store == nil || p.notifier == nil {
		return res, fmt.Errorf("processor not properly initialized")
	}

	obligations, err := p.store.ListObligations(ctx)
	if err != nil {
		return res, fmt.Errorf("list obligations: %w", err)
	}
	windows := make(map[string]int, len(obligations))
	for _, o := range obligations {
		windows[o.ID] = o.EffectiveReminderDays()
	}

	months := reminderMonths(today)
	first, last := months[0], months[len(months)-1]
	paid, err := p.store.PaidKeys(ctx, core.FirstOfMonth(first.year, first.month), core.LastOfMonth(last.year, last.month))
	if err != nil {
		return res, fmt.Errorf("load paid keys: %w", err)
	}

	var instances []core.ObligationInstance
	for _, ym := range months {
		view, err := p.builder.BuildMonth(ctx, obligations, ym.year, ym.month, paid, today)
		if err != nil {
			return res, err
		}
		instances = append(instances, view.Instances...)
	}

	slog.InfoContext(ctx, "Processing reminders",
		"date", today.String(),
		"instances", len(instances))

	for _, inst := range instances {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		kind, ok := reminderKind(inst, today, windows[inst.ObligationID])
		if !ok {
			continue
		}

		sent, err := p.store.ReminderSent(ctx, inst.InstanceKey, kind)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to check reminder log",
				"instance_key", inst.InstanceKey,
				"kind", kind,
				"error", err)
			res.Failed++
			continue
		}
		if sent {
			res.Skipped++
			continue
		}

		r := Reminder{Kind: kind, Instance: inst, DaysLeft: daysBetween(today, inst.DueDate)}
		if err := p.notifier.Notify(ctx, r); err != nil {
			slog.ErrorContext(ctx, "Failed to send reminder",
				"instance_key", inst.InstanceKey,
				"kind", kind,
				"error", err)
			p.metrics.IncrReminder(kind, "failed")
			res.Failed++
			continue
		}
		p.metrics.IncrReminder(kind, "sent")
		res.Sent++

		if err := p.store.RecordReminder(ctx, inst.InstanceKey, kind, p.now()); err != nil {
			// the notice went out; it may be repeated on the next run
			slog.ErrorContext(ctx, "Failed to record reminder",
				"instance_key", inst.InstanceKey,
				"kind", kind,
				"error", err)
		}
	}

	slog.InfoContext(ctx, "Reminder processing complete",
		"sent", res.Sent,
		"skipped", res.Skipped,
		"failed", res.Failed)
	return res, nil
}

// reminderKind decides whether inst deserves a notice today.
func reminderKind(inst core.ObligationInstance, today core.Date, window int) (string, bool) {
	switch inst.Status {
	case core.StatusOverdue:
		if daysBetween(today, inst.DueDate) >= -OverdueLookbackDays {
			return ReminderOverdue, true
		}
	case core.StatusPending:
		left := daysBetween(today, inst.DueDate)
		if left >= 0 && left <= window {
			return ReminderUpcoming, true
		}
	}
	return "", false
}

type yearMonth struct {
	year  int
	month time.Month
}

// reminderMonths lists the months from the start of the overdue lookback
// through the month after today, in order.
func reminderMonths(today core.Date) []yearMonth {
	start := core.DateOf(today.AddDate(0, 0, -OverdueLookbackDays))
	y, m := start.Year(), start.Month()
	endY, endM := today.Year(), today.Month()+1
	if endM > time.December {
		endY, endM = endY+1, time.January
	}

	var out []yearMonth
	for {
		out = append(out, yearMonth{y, m})
		if y == endY && m == endM {
			return out
		}
		if m == time.December {
			y, m = y+1, time.January
		} else {
			m++
		}
	}
}

func daysBetween(from, to core.Date) int {
	return int(to.Sub(from.Time).Hours() / 24)
}
