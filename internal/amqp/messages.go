package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"contas/internal/core"
)

// Status values carried by InstanceStatusMessage.
const (
	StatusPaid   = "paid"
	StatusUnpaid = "unpaid"
)

// InstanceStatusMessage announces that an instance was marked paid or unpaid.
// It carries everything the ledger needs so consumers do not have to read
// the store back.
type InstanceStatusMessage struct {
	InstanceKey  string    `json:"instance_key"`
	ObligationID string    `json:"obligation_id"`
	DueDate      string    `json:"due_date"`
	AmountCents  int64     `json:"amount_cents"`
	Status       string    `json:"status"`
	PaidDate     string    `json:"paid_date,omitempty"`
	Title        string    `json:"title,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewInstanceStatusMessage builds the message for a paid toggle.
func NewInstanceStatusMessage(m core.PaidMarker, title string, paid bool, now time.Time) *InstanceStatusMessage {
	msg := &InstanceStatusMessage{
		InstanceKey:  m.InstanceKey,
		ObligationID: m.ObligationID,
		DueDate:      m.DueDate.String(),
		AmountCents:  m.Amount.Cents,
		Status:       StatusUnpaid,
		Title:        title,
		Timestamp:    now.UTC(),
	}
	if paid {
		msg.Status = StatusPaid
		msg.PaidDate = m.PaidDate.String()
	}
	return msg
}

// Validate rejects messages a consumer cannot act on.
func (m *InstanceStatusMessage) Validate() error {
	if m.InstanceKey == "" {
		return core.ErrEmptyInstanceKey
	}
	if m.Status != StatusPaid && m.Status != StatusUnpaid {
		return errors.New("unknown status " + m.Status)
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *InstanceStatusMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// InstanceStatusMessageFromJSON decodes and validates a message.
func InstanceStatusMessageFromJSON(data []byte) (*InstanceStatusMessage, error) {
	var msg InstanceStatusMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
