package http

import (
	"contas/internal/core"
	"contas/internal/services"
)

// Response bodies. Amounts are sent in cents and preformatted for the
// configured locale.
type (
	obligationDTO struct {
		ID             string    `json:"id"`
		Title          string    `json:"title"`
		Description    string    `json:"description,omitempty"`
		AmountCents    int64     `json:"amount_cents"`
		Amount         string    `json:"amount"`
		DueDay         int       `json:"due_day"`
		RecurrenceType string    `json:"recurrence_type"`
		StartDate      core.Date `json:"start_date"`
		EndDate        core.Date `json:"end_date"`
		IsActive       bool      `json:"is_active"`
		CategoryID     string    `json:"category_id,omitempty"`
		CreditCardID   string    `json:"credit_card_id,omitempty"`
		PaymentMethod  string    `json:"payment_method,omitempty"`
		ReminderDays   int       `json:"reminder_days"`
	}

	instanceDTO struct {
		core.ObligationInstance
		AmountCents int64  `json:"amount_cents"`
		Amount      string `json:"amount"`
	}

	summaryDTO struct {
		Year         int    `json:"year"`
		Month        int    `json:"month"`
		TotalCents   int64  `json:"total_cents"`
		PaidCents    int64  `json:"paid_cents"`
		PendingCents int64  `json:"pending_cents"`
		OverdueCents int64  `json:"overdue_cents"`
		Total        string `json:"total"`
		Count        int    `json:"count"`
		PaidCount    int    `json:"paid_count"`
		PendingCount int    `json:"pending_count"`
		OverdueCount int    `json:"overdue_count"`
	}

	categorySummaryDTO struct {
		CategoryID   string `json:"category_id"`
		CategoryName string `json:"category_name"`
		Color        string `json:"color,omitempty"`
		TotalCents   int64  `json:"total_cents"`
		Total        string `json:"total"`
		Count        int    `json:"count"`
	}

	dayGroupDTO struct {
		Date       core.Date     `json:"date"`
		TotalCents int64         `json:"total_cents"`
		Instances  []instanceDTO `json:"instances"`
	}

	skippedDTO struct {
		ObligationID string `json:"obligation_id"`
		Reason       string `json:"reason"`
		Detail       string `json:"detail,omitempty"`
	}

	timelineDTO struct {
		Year       int                  `json:"year"`
		Month      int                  `json:"month"`
		Today      core.Date            `json:"today"`
		Summary    summaryDTO           `json:"summary"`
		Days       []dayGroupDTO        `json:"days"`
		Categories []categorySummaryDTO `json:"categories"`
		Skipped    []skippedDTO         `json:"skipped,omitempty"`
	}

	markerDTO struct {
		InstanceKey  string    `json:"instance_key"`
		ObligationID string    `json:"obligation_id"`
		DueDate      core.Date `json:"due_date"`
		AmountCents  int64     `json:"amount_cents"`
		PaidDate     core.Date `json:"paid_date"`
		Notes        string    `json:"notes,omitempty"`
	}

	categoryDTO struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
		Color       string `json:"color,omitempty"`
		Icon        string `json:"icon,omitempty"`
		IsActive    bool   `json:"is_active"`
	}

	creditCardDTO struct {
		ID               string `json:"id"`
		Name             string `json:"name"`
		Bank             string `json:"bank,omitempty"`
		LastFourDigits   string `json:"last_four_digits,omitempty"`
		CreditLimitCents int64  `json:"credit_limit_cents"`
		ClosingDay       int    `json:"closing_day"`
		DueDay           int    `json:"due_day"`
		IsActive         bool   `json:"is_active"`
	}

	occurrencesDTO struct {
		ObligationID string      `json:"obligation_id"`
		From         core.Date   `json:"from"`
		Dates        []core.Date `json:"dates"`
	}
)

func newObligationDTO(o core.RecurringObligation, locale string) obligationDTO {
	return obligationDTO{
		ID:             o.ID,
		Title:          o.Title,
		Description:    o.Description,
		AmountCents:    o.Amount.Cents,
		Amount:         core.FormatMoney(o.Amount, locale),
		DueDay:         o.DueDay,
		RecurrenceType: string(o.Recurrence),
		StartDate:      o.StartDate,
		EndDate:        o.EndDate,
		IsActive:       o.IsActive,
		CategoryID:     o.CategoryID,
		CreditCardID:   o.CreditCardID,
		PaymentMethod:  string(o.PaymentMethod),
		ReminderDays:   o.ReminderDays,
	}
}

func newInstanceDTOs(instances []core.ObligationInstance, locale string) []instanceDTO {
	out := make([]instanceDTO, len(instances))
	for i, inst := range instances {
		out[i] = instanceDTO{
			ObligationInstance: inst,
			AmountCents:        inst.Amount.Cents,
			Amount:             core.FormatMoney(inst.Amount, locale),
		}
	}
	return out
}

func newSummaryDTO(s core.MonthlySummary, locale string) summaryDTO {
	return summaryDTO{
		Year:         s.Year,
		Month:        int(s.Month),
		TotalCents:   s.Total.Cents,
		PaidCents:    s.Paid.Cents,
		PendingCents: s.Pending.Cents,
		OverdueCents: s.Overdue.Cents,
		Total:        core.FormatMoney(s.Total, locale),
		Count:        s.Count,
		PaidCount:    s.PaidCount,
		PendingCount: s.PendingCount,
		OverdueCount: s.OverdueCount,
	}
}

func newCategorySummaryDTOs(in []core.CategorySummary, locale string) []categorySummaryDTO {
	out := make([]categorySummaryDTO, len(in))
	for i, c := range in {
		out[i] = categorySummaryDTO{
			CategoryID:   c.CategoryID,
			CategoryName: c.CategoryName,
			Color:        c.Color,
			TotalCents:   c.Total.Cents,
			Total:        core.FormatMoney(c.Total, locale),
			Count:        c.Count,
		}
	}
	return out
}

func newTimelineDTO(tl services.Timeline, today core.Date, locale string) timelineDTO {
	out := timelineDTO{
		Year:       tl.View.Year,
		Month:      int(tl.View.Month),
		Today:      today,
		Summary:    newSummaryDTO(tl.Summary, locale),
		Days:       make([]dayGroupDTO, len(tl.Days)),
		Categories: newCategorySummaryDTOs(tl.Categories, locale),
	}
	for i, g := range tl.Days {
		out.Days[i] = dayGroupDTO{
			Date:       g.Date,
			TotalCents: g.Total.Cents,
			Instances:  newInstanceDTOs(g.Instances, locale),
		}
	}
	for _, s := range tl.View.Skipped {
		dto := skippedDTO{ObligationID: s.ObligationID, Reason: s.Reason}
		if s.Err != nil {
			dto.Detail = s.Err.Error()
		}
		out.Skipped = append(out.Skipped, dto)
	}
	return out
}

func newMarkerDTO(m core.PaidMarker) markerDTO {
	return markerDTO{
		InstanceKey:  m.InstanceKey,
		ObligationID: m.ObligationID,
		DueDate:      m.DueDate,
		AmountCents:  m.Amount.Cents,
		PaidDate:     m.PaidDate,
		Notes:        m.Notes,
	}
}

func newCategoryDTO(c core.Category) categoryDTO {
	return categoryDTO{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Color:       c.Color,
		Icon:        c.Icon,
		IsActive:    c.IsActive,
	}
}

func newCreditCardDTO(c core.CreditCard) creditCardDTO {
	return creditCardDTO{
		ID:               c.ID,
		Name:             c.Name,
		Bank:             c.Bank,
		LastFourDigits:   c.LastFourDigits,
		CreditLimitCents: c.CreditLimit.Cents,
		ClosingDay:       c.ClosingDay,
		DueDay:           c.DueDay,
		IsActive:         c.IsActive,
	}
}
