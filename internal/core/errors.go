package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDueDay matches any *InvalidDueDayError.
	ErrInvalidDueDay = errors.New("invalid due day")
	// ErrConfiguration matches any *ConfigurationError.
	ErrConfiguration = errors.New("configuration error")
)

// InvalidDueDayError reports a due day outside 1-31.
type InvalidDueDayError struct {
	DueDay int
}

func (e *InvalidDueDayError) Error() string {
	return fmt.Sprintf("invalid due day %d: must be between 1 and 31", e.DueDay)
}

func (e *InvalidDueDayError) Is(target error) bool {
	return target == ErrInvalidDueDay
}

// ConfigurationError reports an obligation that cannot be projected: an
// unknown recurrence type or an inconsistent date range. Batch operations
// skip the offending obligation and keep going.
type ConfigurationError struct {
	ObligationID string
	Reason       string
	Err          error
}

func (e *ConfigurationError) Error() string {
	msg := "configuration error"
	if e.ObligationID != "" {
		msg += " for obligation " + e.ObligationID
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// UnknownRecurrence builds the ConfigurationError for an unsupported cadence.
func UnknownRecurrence(obligationID string, rt RecurrenceType) *ConfigurationError {
	return &ConfigurationError{
		ObligationID: obligationID,
		Reason:       fmt.Sprintf("unknown recurrence type %q", string(rt)),
		Err:          ErrInvalidRecurrence,
	}
}
