// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"contas/internal/core"
	"contas/internal/services"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month time.Month
}

// ParseMonthParams extracts year and month from query parameters, using
// today as the default. Present but malformed values are an error.
func ParseMonthParams(query url.Values, today core.Date) (MonthParams, error) {
	year, err := parseIntParam(query, "year", today.Year())
	if err != nil {
		return MonthParams{}, err
	}
	month, err := parseIntParam(query, "month", int(today.Month()))
	if err != nil {
		return MonthParams{}, err
	}
	if month < 1 || month > 12 {
		return MonthParams{}, fmt.Errorf("month %d: %w", month, core.ErrInvalidMonth)
	}
	if year < 1 || year > 9999 {
		return MonthParams{}, fmt.Errorf("invalid year %d", year)
	}
	return MonthParams{Year: year, Month: time.Month(month)}, nil
}

// parseIntParam returns def when key is absent.
func parseIntParam(query url.Values, key string, def int) (int, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be a number", key, v)
	}
	return n, nil
}

// decodeJSON reads one JSON object into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// sanitizeInput removes control characters except tab and newlines and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// obligationRequest is the body of create and update calls. The amount can
// be given in cents or as a decimal string such as "1.234,56".
type obligationRequest struct {
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Amount         string    `json:"amount"`
	AmountCents    *int64    `json:"amount_cents"`
	DueDay         int       `json:"due_day"`
	RecurrenceType string    `json:"recurrence_type"`
	StartDate      core.Date `json:"start_date"`
	EndDate        core.Date `json:"end_date"`
	IsActive       *bool     `json:"is_active"`
	CategoryID     string    `json:"category_id"`
	CreditCardID   string    `json:"credit_card_id"`
	PaymentMethod  string    `json:"payment_method"`
	ReminderDays   int       `json:"reminder_days"`
}

// toObligation reads a typed amount the way locale writes it.
func (req obligationRequest) toObligation(id, locale string) (core.RecurringObligation, error) {
	var cents int64
	switch {
	case req.AmountCents != nil:
		cents = *req.AmountCents
	case strings.TrimSpace(req.Amount) != "":
		c, err := core.ParseAmount(req.Amount, locale)
		if err != nil {
			return core.RecurringObligation{}, &services.ValidationError{Err: fmt.Errorf("amount: %w", err)}
		}
		cents = c
	}
	rt := core.RecurrenceType(strings.ToLower(strings.TrimSpace(req.RecurrenceType)))
	if rt == "" {
		rt = core.Monthly
	}
	o := core.RecurringObligation{
		ID:            id,
		Title:         sanitizeInput(req.Title),
		Description:   sanitizeInput(req.Description),
		Amount:        core.Money{Cents: cents},
		DueDay:        req.DueDay,
		Recurrence:    rt,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		IsActive:      true,
		CategoryID:    strings.TrimSpace(req.CategoryID),
		CreditCardID:  strings.TrimSpace(req.CreditCardID),
		PaymentMethod: core.PaymentMethod(strings.TrimSpace(req.PaymentMethod)),
		ReminderDays:  req.ReminderDays,
	}
	if req.IsActive != nil {
		o.IsActive = *req.IsActive
	}
	return o, nil
}

type markPaidRequest struct {
	PaidDate core.Date `json:"paid_date"`
	Notes    string    `json:"notes"`
}

type categoryRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	IsActive    *bool  `json:"is_active"`
}

func (req categoryRequest) toCategory() core.Category {
	c := core.Category{
		ID:          strings.TrimSpace(req.ID),
		Name:        sanitizeInput(req.Name),
		Description: sanitizeInput(req.Description),
		Color:       strings.TrimSpace(req.Color),
		Icon:        strings.TrimSpace(req.Icon),
		IsActive:    true,
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	return c
}

type creditCardRequest struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Bank             string `json:"bank"`
	LastFourDigits   string `json:"last_four_digits"`
	CreditLimitCents int64  `json:"credit_limit_cents"`
	ClosingDay       int    `json:"closing_day"`
	DueDay           int    `json:"due_day"`
	IsActive         *bool  `json:"is_active"`
}

func (req creditCardRequest) toCreditCard() core.CreditCard {
	c := core.CreditCard{
		ID:             strings.TrimSpace(req.ID),
		Name:           sanitizeInput(req.Name),
		Bank:           sanitizeInput(req.Bank),
		LastFourDigits: strings.TrimSpace(req.LastFourDigits),
		CreditLimit:    core.Money{Cents: req.CreditLimitCents},
		ClosingDay:     req.ClosingDay,
		DueDay:         req.DueDay,
		IsActive:       true,
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	return c
}
