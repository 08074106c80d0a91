package worker

import (
	"context"
	"fmt"
	"log/slog"

	"contas/internal/amqp"
	"contas/internal/core"
	"contas/internal/metrics"
	"contas/internal/sheets"
)

// LedgerWorker mirrors paid instances into the ledger. Paid messages write
// a row and unpaid messages clear it.
type LedgerWorker struct {
	ledger  sheets.LedgerWriter
	metrics *metrics.Metrics
}

func NewLedgerWorker(ledger sheets.LedgerWriter, m *metrics.Metrics) *LedgerWorker {
	return &LedgerWorker{ledger: ledger, metrics: m}
}

// HandleStatusMessage processes one instance status message. A returned
// error makes the consumer requeue the message.
func (w *LedgerWorker) HandleStatusMessage(ctx context.Context, msg *amqp.InstanceStatusMessage) error {
	slog.InfoContext(ctx, "Processing instance status message",
		"instance_key", msg.InstanceKey,
		"status", msg.Status,
		"timestamp", msg.Timestamp)

	switch msg.Status {
	case amqp.StatusPaid:
		entry, err := ledgerEntry(msg)
		if err != nil {
			// malformed dates never get better on retry
			slog.ErrorContext(ctx, "Dropping invalid status message",
				"instance_key", msg.InstanceKey,
				"error", err)
			return nil
		}
		ref, err := w.ledger.Upsert(ctx, entry)
		if err != nil {
			return fmt.Errorf("write ledger row: %w", err)
		}
		w.metrics.IncrLedgerRow()
		slog.InfoContext(ctx, "Instance recorded in ledger",
			"instance_key", msg.InstanceKey,
			"ref", ref)
	case amqp.StatusUnpaid:
		if err := w.ledger.Remove(ctx, msg.InstanceKey); err != nil {
			return fmt.Errorf("remove ledger row: %w", err)
		}
		slog.InfoContext(ctx, "Instance removed from ledger", "instance_key", msg.InstanceKey)
	default:
		slog.WarnContext(ctx, "Ignoring message with unknown status",
			"instance_key", msg.InstanceKey,
			"status", msg.Status)
	}
	return nil
}

func ledgerEntry(msg *amqp.InstanceStatusMessage) (sheets.LedgerEntry, error) {
	due, err := core.ParseDate(msg.DueDate)
	if err != nil {
		return sheets.LedgerEntry{}, fmt.Errorf("due date: %w", err)
	}
	e := sheets.LedgerEntry{
		InstanceKey:  msg.InstanceKey,
		ObligationID: msg.ObligationID,
		Title:        msg.Title,
		DueDate:      due,
		Amount:       core.Money{Cents: msg.AmountCents},
		RecordedAt:   msg.Timestamp,
	}
	if msg.PaidDate != "" {
		paid, err := core.ParseDate(msg.PaidDate)
		if err != nil {
			return sheets.LedgerEntry{}, fmt.Errorf("paid date: %w", err)
		}
		e.PaidDate = paid
	}
	if err := e.Validate(); err != nil {
		return sheets.LedgerEntry{}, err
	}
	return e, nil
}
