// Package store declares the persistence ports used by the service layer.
// The projection core never depends on them.
package store

import (
	"context"
	"time"

	"contas/internal/core"
)

// Ports for outbound adapters.
type (
	ObligationReader interface {
		ListObligations(ctx context.Context) ([]core.RecurringObligation, error)
		GetObligation(ctx context.Context, id string) (core.RecurringObligation, error)
	}

	ObligationWriter interface {
		// CreateObligation stores o and returns the generated ID.
		CreateObligation(ctx context.Context, o core.RecurringObligation) (string, error)
		UpdateObligation(ctx context.Context, o core.RecurringObligation) error
		DeactivateObligation(ctx context.Context, id string) error
	}

	// PaidStore persists the paid markers, keyed by instance key.
	PaidStore interface {
		// PaidKeys returns the keys of instances due between from and to, inclusive.
		PaidKeys(ctx context.Context, from, to core.Date) (core.PaidSet, error)
		// PaidMarker returns the stored marker, or core.ErrNotFound.
		PaidMarker(ctx context.Context, instanceKey string) (core.PaidMarker, error)
		MarkPaid(ctx context.Context, m core.PaidMarker) error
		// MarkUnpaid removes the marker. Removing a missing marker is not an error.
		MarkUnpaid(ctx context.Context, instanceKey string) error
	}

	ReferenceReader interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
		ListCreditCards(ctx context.Context) ([]core.CreditCard, error)
	}

	// ReferenceWriter inserts or replaces categories and cards, returning the ID.
	ReferenceWriter interface {
		UpsertCategory(ctx context.Context, c core.Category) (string, error)
		UpsertCreditCard(ctx context.Context, c core.CreditCard) (string, error)
	}

	// ReminderLog remembers which reminders were already sent so the worker
	// does not notify twice for the same instance.
	ReminderLog interface {
		ReminderSent(ctx context.Context, instanceKey string, kind string) (bool, error)
		RecordReminder(ctx context.Context, instanceKey string, kind string, at time.Time) error
	}

	// Store is implemented by every backend.
	Store interface {
		ObligationReader
		ObligationWriter
		PaidStore
		ReferenceReader
		ReferenceWriter
		ReminderLog
		Ping(ctx context.Context) error
		Close() error
	}
)
