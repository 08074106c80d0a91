package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Monthly RecurrenceType = "monthly"
	Yearly  RecurrenceType = "yearly"
)

const (
	PaymentCreditCard     PaymentMethod = "credit_card"
	PaymentDebitCard      PaymentMethod = "debit_card"
	PaymentBankSlip       PaymentMethod = "bank_slip"
	PaymentAutomaticDebit PaymentMethod = "automatic_debit"
	PaymentPix            PaymentMethod = "pix"
)

// DefaultReminderDays is used when an obligation does not set its own window.
const DefaultReminderDays = 3

type (
	RecurrenceType string

	PaymentMethod string

	// Date is a calendar date. The time part is always midnight UTC.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Category struct {
		ID          string
		Name        string
		Description string
		Color       string
		Icon        string
		IsActive    bool
	}

	CreditCard struct {
		ID             string
		Name           string
		Bank           string
		LastFourDigits string
		CreditLimit    Money
		ClosingDay     int
		DueDay         int
		IsActive       bool
	}

	// RecurringObligation is a user-defined template for a periodic bill.
	RecurringObligation struct {
		ID            string
		Title         string
		Description   string
		Amount        Money
		DueDay        int // nominal day of month, 1-31
		Recurrence    RecurrenceType
		StartDate     Date
		EndDate       Date // zero means open-ended; inclusive otherwise
		IsActive      bool
		CategoryID    string
		CreditCardID  string
		PaymentMethod PaymentMethod
		ReminderDays  int
	}
)

var (
	ErrInvalidDay         = errors.New("invalid day")
	ErrInvalidMonth       = errors.New("invalid month")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyTitle         = errors.New("empty title")
	ErrInvalidRecurrence  = errors.New("invalid recurrence type")
	ErrInvalidPayment     = errors.New("invalid payment method")
	ErrNotFound           = errors.New("not found")
	ErrEmptyCategoryName  = errors.New("empty category name")
	ErrEmptyInstanceKey   = errors.New("empty instance key")
	ErrEndBeforeStart     = errors.New("end date must not be before start date")
	ErrInvalidReminderDay = errors.New("invalid reminder days")
)

// NewDate creates a new Date from year, month, day
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// String formats the date as YYYY-MM-DD; the zero date is empty.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }

func (d Date) After(o Date) bool { return d.Time.After(o.Time) }

func (d Date) Equal(o Date) bool { return d.Time.Equal(o.Time) }

// FirstOfMonth returns the first day of the given month.
func FirstOfMonth(year int, month time.Month) Date {
	return NewDate(year, month, 1)
}

// LastOfMonth returns the last day of the given month.
func LastOfMonth(year int, month time.Month) Date {
	return Date{Time: time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)}
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (rt RecurrenceType) IsValid() bool {
	switch rt {
	case Monthly, Yearly:
		return true
	default:
		return false
	}
}

func (pm PaymentMethod) IsValid() bool {
	switch pm {
	case PaymentCreditCard, PaymentDebitCard, PaymentBankSlip, PaymentAutomaticDebit, PaymentPix:
		return true
	default:
		return false
	}
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCategoryName
	}
	return nil
}

func (c CreditCard) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("empty credit card name")
	}
	if c.ClosingDay < 1 || c.ClosingDay > 31 {
		return ErrInvalidDay
	}
	if c.DueDay < 1 || c.DueDay > 31 {
		return &InvalidDueDayError{DueDay: c.DueDay}
	}
	if err := c.CreditLimit.Validate(); err != nil {
		return err
	}
	return nil
}

// HasEnd reports whether the obligation has an end date.
func (o RecurringObligation) HasEnd() bool {
	return !o.EndDate.IsZero()
}

// EffectiveReminderDays falls back to DefaultReminderDays when unset.
func (o RecurringObligation) EffectiveReminderDays() int {
	if o.ReminderDays <= 0 {
		return DefaultReminderDays
	}
	return o.ReminderDays
}

// Validate checks the fields users can type in. It is used on create and
// update; the projection code re-checks the fields it depends on so that
// records written by other tools cannot break a whole month.
func (o RecurringObligation) Validate() error {
	if len(strings.TrimSpace(o.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(o.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if err := o.Amount.Validate(); err != nil {
		return err
	}
	if o.DueDay < 1 || o.DueDay > 31 {
		return &InvalidDueDayError{DueDay: o.DueDay}
	}
	if !o.Recurrence.IsValid() {
		return ErrInvalidRecurrence
	}
	if err := o.StartDate.Validate(); err != nil {
		return errors.New("invalid start date: " + err.Error())
	}
	if o.HasEnd() && o.EndDate.Before(o.StartDate) {
		return ErrEndBeforeStart
	}
	if o.PaymentMethod != "" && !o.PaymentMethod.IsValid() {
		return ErrInvalidPayment
	}
	if o.ReminderDays < 0 || o.ReminderDays > 31 {
		return ErrInvalidReminderDay
	}
	return nil
}

// MarshalJSON encodes the date as "YYYY-MM-DD", or null when zero.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD", an empty string or null.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
