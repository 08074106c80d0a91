package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

type (
	Status string

	// ObligationInstance is one dated occurrence of an obligation inside a
	// month. It is recomputed on every query and never stored.
	ObligationInstance struct {
		ObligationID  string        `json:"obligation_id"`
		InstanceKey   string        `json:"instance_key"`
		DueDate       Date          `json:"due_date"`
		Amount        Money         `json:"-"`
		Status        Status        `json:"status"`
		Title         string        `json:"title"`
		CategoryID    string        `json:"category_id,omitempty"`
		CreditCardID  string        `json:"credit_card_id,omitempty"`
		PaymentMethod PaymentMethod `json:"payment_method,omitempty"`
	}

	// PaidMarker is what the external store keeps for an instance the user
	// marked as paid.
	PaidMarker struct {
		InstanceKey  string
		ObligationID string
		DueDate      Date
		Amount       Money
		PaidDate     Date
		Notes        string
	}

	// PaidSet is the set of instance keys marked as paid.
	PaidSet map[string]struct{}
)

// InstanceKey derives the identity of an occurrence from the obligation and
// its clamped due date, formatted as YYYY-MM-DD-<obligationID>.
func InstanceKey(obligationID string, year int, month time.Month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d-%s", year, int(month), day, obligationID)
}

// ParseInstanceKey splits a key built by InstanceKey.
func ParseInstanceKey(key string) (obligationID string, due Date, err error) {
	if len(key) < len("2006-01-02-x") || key[10] != '-' {
		return "", Date{}, fmt.Errorf("malformed instance key %q", key)
	}
	due, err = ParseDate(key[:10])
	if err != nil {
		return "", Date{}, fmt.Errorf("malformed instance key %q: %w", key, err)
	}
	obligationID = key[11:]
	if strings.TrimSpace(obligationID) == "" {
		return "", Date{}, fmt.Errorf("malformed instance key %q: empty obligation id", key)
	}
	return obligationID, due, nil
}

// NewPaidSet builds a PaidSet from keys.
func NewPaidSet(keys ...string) PaidSet {
	s := make(PaidSet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has is safe on a nil set.
func (s PaidSet) Has(key string) bool {
	if s == nil {
		return false
	}
	_, ok := s[key]
	return ok
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusOverdue:
		return true
	default:
		return false
	}
}

// ClassifyStatus derives the status of an occurrence: paid wins, then a due
// date strictly before today is overdue, anything else is pending.
func ClassifyStatus(paid bool, due, today Date) Status {
	switch {
	case paid:
		return StatusPaid
	case due.Before(today):
		return StatusOverdue
	default:
		return StatusPending
	}
}

func (m PaidMarker) Validate() error {
	if strings.TrimSpace(m.InstanceKey) == "" {
		return ErrEmptyInstanceKey
	}
	if err := m.Amount.Validate(); err != nil {
		return err
	}
	return nil
}
