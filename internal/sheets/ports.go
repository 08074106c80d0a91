package sheets

import (
	"context"
	"time"

	"contas/internal/core"
)

type (
	// LedgerEntry is one paid instance as written to the ledger.
	LedgerEntry struct {
		InstanceKey  string
		ObligationID string
		Title        string
		DueDate      core.Date
		PaidDate     core.Date
		Amount       core.Money
		RecordedAt   time.Time
	}

	// LedgerWriter keeps one row per paid instance. Both operations are
	// idempotent so redelivered messages do not duplicate rows.
	LedgerWriter interface {
		// Upsert writes e, replacing the row of the same instance if present,
		// and returns a reference to the row.
		Upsert(ctx context.Context, e LedgerEntry) (rowRef string, err error)
		// Remove deletes the row of instanceKey. A missing row is not an error.
		Remove(ctx context.Context, instanceKey string) error
	}
)

// Validate rejects entries the ledger cannot store.
func (e LedgerEntry) Validate() error {
	if e.InstanceKey == "" {
		return core.ErrEmptyInstanceKey
	}
	if e.DueDate.IsZero() {
		return core.ErrInvalidDay
	}
	return e.Amount.Validate()
}
