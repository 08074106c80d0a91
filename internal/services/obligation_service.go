package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"contas/internal/amqp"
	"contas/internal/cache"
	"contas/internal/core"
	"contas/internal/metrics"
	"contas/internal/recurrence"
	"contas/internal/store"
)

const monthCacheName = "month"

// ErrInstanceNotFound is returned when a key does not name an instance the
// obligation actually produces.
var ErrInstanceNotFound = fmt.Errorf("instance %w", core.ErrNotFound)

// ValidationError wraps input that failed validation.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return "validation failed: " + e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

// Publisher sends instance status changes to the broker.
type Publisher interface {
	PublishInstanceStatus(ctx context.Context, msg *amqp.InstanceStatusMessage) error
}

type (
	// Timeline is a month view with everything the dashboard shows next to it.
	Timeline struct {
		View       MonthView
		Summary    core.MonthlySummary
		Days       []core.DayGroup
		Categories []core.CategorySummary
	}

	ObligationOption func(*ObligationService)
)

// ObligationService reads obligations and paid markers from the store and
// feeds them through the instance builder. Writes invalidate the month cache
// and paid toggles are published best effort.
type ObligationService struct {
	store     store.Store
	builder   *InstanceBuilder
	publisher Publisher
	months    cache.Cache[MonthView]
	metrics   *metrics.Metrics
	loc       *time.Location
	now       func() time.Time
}

func WithMetrics(m *metrics.Metrics) ObligationOption {
	return func(s *ObligationService) { s.metrics = m }
}

// WithMonthCache caches built months; keys include today's date.
func WithMonthCache(c cache.Cache[MonthView]) ObligationOption {
	return func(s *ObligationService) { s.months = c }
}

// WithLocation sets the time zone used to decide what "today" is.
func WithLocation(loc *time.Location) ObligationOption {
	return func(s *ObligationService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithClock(now func() time.Time) ObligationOption {
	return func(s *ObligationService) { s.now = now }
}

// NewObligationService wires the service. pub may be nil.
func NewObligationService(st store.Store, pub Publisher, opts ...ObligationOption) *ObligationService {
	s := &ObligationService{
		store:     st,
		publisher: pub,
		loc:       time.UTC,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.builder = NewInstanceBuilder(s.metrics)
	return s
}

// Today returns the current date in the configured time zone.
func (s *ObligationService) Today() core.Date {
	return core.DateOf(s.now().In(s.loc))
}

// Month builds one month as seen today.
func (s *ObligationService) Month(ctx context.Context, year int, month time.Month) (MonthView, error) {
	if month < time.January || month > time.December {
		return MonthView{}, &ValidationError{Err: core.ErrInvalidMonth}
	}
	today := s.Today()
	key := monthCacheKey(year, month, today)
	if s.months != nil {
		if v, ok := s.months.Get(key); ok {
			s.metrics.IncrCacheHit(monthCacheName)
			return v, nil
		}
		s.metrics.IncrCacheMiss(monthCacheName)
	}

	obligations, err := s.store.ListObligations(ctx)
	if err != nil {
		return MonthView{}, fmt.Errorf("list obligations: %w", err)
	}
	paid, err := s.store.PaidKeys(ctx, core.FirstOfMonth(year, month), core.LastOfMonth(year, month))
	if err != nil {
		return MonthView{}, fmt.Errorf("load paid keys: %w", err)
	}

	view, err := s.builder.BuildMonth(ctx, obligations, year, month, paid, today)
	if err != nil {
		return MonthView{}, err
	}
	if s.months != nil {
		s.months.Set(key, view)
	}
	return view, nil
}

// Timeline builds the month with its summary, day groups and category totals.
func (s *ObligationService) Timeline(ctx context.Context, year int, month time.Month) (Timeline, error) {
	view, err := s.Month(ctx, year, month)
	if err != nil {
		return Timeline{}, err
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return Timeline{}, fmt.Errorf("list categories: %w", err)
	}
	return Timeline{
		View:       view,
		Summary:    Summarize(view),
		Days:       GroupByDay(view.Instances),
		Categories: SummarizeByCategory(view.Instances, categories),
	}, nil
}

// Year returns the twelve monthly summaries of year.
func (s *ObligationService) Year(ctx context.Context, year int) ([]core.MonthlySummary, error) {
	obligations, err := s.store.ListObligations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list obligations: %w", err)
	}
	paid, err := s.store.PaidKeys(ctx, core.FirstOfMonth(year, time.January), core.LastOfMonth(year, time.December))
	if err != nil {
		return nil, fmt.Errorf("load paid keys: %w", err)
	}
	views, err := s.builder.BuildYear(ctx, obligations, year, paid, s.Today())
	if err != nil {
		return nil, err
	}
	out := make([]core.MonthlySummary, len(views))
	for i, v := range views {
		out[i] = Summarize(v)
	}
	return out, nil
}

// Upcoming returns pending instances due within days of today. The window
// may reach into the following month.
func (s *ObligationService) Upcoming(ctx context.Context, days, limit int) ([]core.ObligationInstance, error) {
	if days < 0 {
		return nil, &ValidationError{Err: errors.New("days must not be negative")}
	}
	if days > MaxUpcomingDays {
		return nil, &ValidationError{Err: fmt.Errorf("days must not exceed %d", MaxUpcomingDays)}
	}
	today := s.Today()
	horizon := core.DateOf(today.AddDate(0, 0, days))

	var all []core.ObligationInstance
	y, m := today.Year(), today.Month()
	for {
		view, err := s.Month(ctx, y, m)
		if err != nil {
			return nil, err
		}
		all = append(all, view.Instances...)
		if !core.LastOfMonth(y, m).Before(horizon) {
			break
		}
		if m == time.December {
			y, m = y+1, time.January
		} else {
			m++
		}
	}
	return Upcoming(all, today, days, limit), nil
}

// MarkPaid records the instance named by key as paid. A zero paidDate means today.
func (s *ObligationService) MarkPaid(ctx context.Context, key string, paidDate core.Date, notes string) (core.PaidMarker, error) {
	inst, o, err := s.resolveInstance(ctx, key)
	if err != nil {
		return core.PaidMarker{}, err
	}
	if paidDate.IsZero() {
		paidDate = s.Today()
	}

	marker := core.PaidMarker{
		InstanceKey:  inst.InstanceKey,
		ObligationID: inst.ObligationID,
		DueDate:      inst.DueDate,
		Amount:       inst.Amount,
		PaidDate:     paidDate,
		Notes:        notes,
	}
	if err := s.store.MarkPaid(ctx, marker); err != nil {
		return core.PaidMarker{}, fmt.Errorf("mark paid: %w", err)
	}
	s.invalidateMonth(inst.DueDate.Year(), inst.DueDate.Month())

	slog.InfoContext(ctx, "Instance marked as paid",
		"instance_key", key,
		"obligation_id", o.ID,
		"amount_cents", inst.Amount.Cents,
		"paid_date", paidDate.String())
	s.publish(ctx, marker, o.Title, true)
	return marker, nil
}

// MarkUnpaid removes the paid marker of key. A stored marker is removed even
// when its obligation was since edited or deactivated; without one, key must
// name an instance the obligation produces.
func (s *ObligationService) MarkUnpaid(ctx context.Context, key string) error {
	id, due, err := core.ParseInstanceKey(key)
	if err != nil {
		return &ValidationError{Err: err}
	}

	var title string
	marker, err := s.store.PaidMarker(ctx, key)
	switch {
	case errors.Is(err, core.ErrNotFound):
		inst, o, err := s.resolveInstance(ctx, key)
		if err != nil {
			return err
		}
		marker = core.PaidMarker{
			InstanceKey:  inst.InstanceKey,
			ObligationID: inst.ObligationID,
			DueDate:      inst.DueDate,
			Amount:       inst.Amount,
		}
		title = o.Title
	case err != nil:
		return fmt.Errorf("get paid marker: %w", err)
	default:
		if o, err := s.store.GetObligation(ctx, id); err == nil {
			title = o.Title
		} else {
			slog.WarnContext(ctx, "Obligation of paid marker not found",
				"instance_key", key,
				"obligation_id", id,
				"error", err)
		}
	}

	if err := s.store.MarkUnpaid(ctx, key); err != nil {
		return fmt.Errorf("mark unpaid: %w", err)
	}
	s.invalidateMonth(due.Year(), due.Month())

	slog.InfoContext(ctx, "Instance marked as unpaid", "instance_key", key, "obligation_id", id)
	marker.PaidDate, marker.Notes = core.Date{}, ""
	s.publish(ctx, marker, title, false)
	return nil
}

// resolveInstance checks that key is an instance its obligation really produces.
func (s *ObligationService) resolveInstance(ctx context.Context, key string) (core.ObligationInstance, core.RecurringObligation, error) {
	id, due, err := core.ParseInstanceKey(key)
	if err != nil {
		return core.ObligationInstance{}, core.RecurringObligation{}, &ValidationError{Err: err}
	}
	o, err := s.store.GetObligation(ctx, id)
	if err != nil {
		return core.ObligationInstance{}, core.RecurringObligation{}, fmt.Errorf("get obligation: %w", err)
	}
	view, err := s.builder.BuildMonth(ctx, []core.RecurringObligation{o}, due.Year(), due.Month(), nil, s.Today())
	if err != nil {
		return core.ObligationInstance{}, core.RecurringObligation{}, err
	}
	for _, inst := range view.Instances {
		if inst.InstanceKey == key {
			return inst, o, nil
		}
	}
	return core.ObligationInstance{}, core.RecurringObligation{}, fmt.Errorf("%s: %w", key, ErrInstanceNotFound)
}

func (s *ObligationService) publish(ctx context.Context, m core.PaidMarker, title string, paid bool) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No publisher configured, skipping status message", "instance_key", m.InstanceKey)
		return
	}
	msg := amqp.NewInstanceStatusMessage(m, title, paid, s.now())
	if err := s.publisher.PublishInstanceStatus(ctx, msg); err != nil {
		// the marker is already stored
		slog.ErrorContext(ctx, "Failed to publish instance status",
			"instance_key", m.InstanceKey,
			"status", msg.Status,
			"error", err)
	}
}

// CreateObligation validates and stores a new active obligation.
func (s *ObligationService) CreateObligation(ctx context.Context, o core.RecurringObligation) (core.RecurringObligation, error) {
	o.IsActive = true
	if o.ReminderDays == 0 {
		o.ReminderDays = core.DefaultReminderDays
	}
	if err := o.Validate(); err != nil {
		return core.RecurringObligation{}, &ValidationError{Err: err}
	}
	id, err := s.store.CreateObligation(ctx, o)
	if err != nil {
		return core.RecurringObligation{}, fmt.Errorf("create obligation: %w", err)
	}
	o.ID = id
	s.invalidateAll()
	return o, nil
}

func (s *ObligationService) UpdateObligation(ctx context.Context, o core.RecurringObligation) (core.RecurringObligation, error) {
	if o.ReminderDays == 0 {
		o.ReminderDays = core.DefaultReminderDays
	}
	if err := o.Validate(); err != nil {
		return core.RecurringObligation{}, &ValidationError{Err: err}
	}
	if err := s.store.UpdateObligation(ctx, o); err != nil {
		return core.RecurringObligation{}, fmt.Errorf("update obligation: %w", err)
	}
	s.invalidateAll()
	return o, nil
}

func (s *ObligationService) DeactivateObligation(ctx context.Context, id string) error {
	if err := s.store.DeactivateObligation(ctx, id); err != nil {
		return fmt.Errorf("deactivate obligation: %w", err)
	}
	s.invalidateAll()
	return nil
}

func (s *ObligationService) ListObligations(ctx context.Context) ([]core.RecurringObligation, error) {
	return s.store.ListObligations(ctx)
}

func (s *ObligationService) GetObligation(ctx context.Context, id string) (core.RecurringObligation, error) {
	return s.store.GetObligation(ctx, id)
}

// Occurrences projects the next count due dates of obligation id on or after
// ref. A zero ref means today; count <= 0 means DefaultProjectionCount.
func (s *ObligationService) Occurrences(ctx context.Context, id string, ref core.Date, count int) ([]core.Date, error) {
	o, err := s.store.GetObligation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get obligation: %w", err)
	}
	if ref.IsZero() {
		ref = s.Today()
	}
	if count <= 0 {
		count = recurrence.DefaultProjectionCount
	}
	return recurrence.ProjectObligation(o, ref, count)
}

func (s *ObligationService) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *ObligationService) ListCreditCards(ctx context.Context) ([]core.CreditCard, error) {
	return s.store.ListCreditCards(ctx)
}

func (s *ObligationService) UpsertCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, &ValidationError{Err: err}
	}
	id, err := s.store.UpsertCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("save category: %w", err)
	}
	c.ID = id
	return c, nil
}

func (s *ObligationService) UpsertCreditCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error) {
	if err := c.Validate(); err != nil {
		return core.CreditCard{}, &ValidationError{Err: err}
	}
	id, err := s.store.UpsertCreditCard(ctx, c)
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("save credit card: %w", err)
	}
	c.ID = id
	return c, nil
}

// Ping checks the store, for readiness probes.
func (s *ObligationService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func monthCacheKey(year int, month time.Month, today core.Date) string {
	return fmt.Sprintf("%s%s", monthCachePrefix(year, month), today.String())
}

func monthCachePrefix(year int, month time.Month) string {
	return fmt.Sprintf("month:%04d-%02d:", year, int(month))
}

func (s *ObligationService) invalidateMonth(year int, month time.Month) {
	if s.months != nil {
		s.months.DeletePrefix(monthCachePrefix(year, month))
	}
}

func (s *ObligationService) invalidateAll() {
	if s.months != nil {
		s.months.Purge()
	}
}
