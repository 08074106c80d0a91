// Package memory is an in-process ledger used when no spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"contas/internal/sheets"
)

var _ sheets.LedgerWriter = (*Ledger)(nil)

type Ledger struct {
	mu   sync.Mutex
	rows map[string]sheets.LedgerEntry
	seq  int
}

func New() *Ledger {
	return &Ledger{rows: make(map[string]sheets.LedgerEntry)}
}

// Upsert stores the entry and returns a synthetic row reference.
func (l *Ledger) Upsert(_ context.Context, e sheets.LedgerEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	l.rows[e.InstanceKey] = e
	return fmt.Sprintf("mem:%d", l.seq), nil
}

func (l *Ledger) Remove(_ context.Context, instanceKey string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.rows, instanceKey)
	return nil
}

// Entries returns the rows ordered by due date, then instance key.
func (l *Ledger) Entries() []sheets.LedgerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]sheets.LedgerEntry, 0, len(l.rows))
	for _, e := range l.rows {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].InstanceKey < out[j].InstanceKey
	})
	return out
}
