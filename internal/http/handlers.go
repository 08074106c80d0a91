package http

import (
	"net/http"
	"strings"

	"contas/internal/core"
	"contas/internal/services"
)

// maxOccurrences caps the projection endpoint.
const maxOccurrences = 120

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	today := s.svc.Today()
	p, err := ParseMonthParams(r.URL.Query(), today)
	if err != nil {
		BadRequestError(ctx, err.Error()).Write(w)
		return
	}
	tl, err := s.svc.Timeline(ctx, p.Year, p.Month)
	if err != nil {
		ServiceError(ctx, err).Write(w)
		return
	}
	NewJSONResponse().Data(newTimelineDTO(tl, today, s.locale)).Write(w)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := ParseMonthParams(r.URL.Query(), s.svc.Today())
	if err != nil {
		BadRequestError(ctx, err.Error()).Write(w)
		return
	}
	view, err := s.svc.Month(ctx, p.Year, p.Month)
	if err != nil {
		ServiceError(ctx, err).Write(w)
		return
	}
	NewJSONResponse().Data(newSummaryDTO(services.Summarize(view), s.locale)).Write(w)
}

func (s *Server) handleCategoryReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := ParseMonthParams(r.URL.Query(), s.svc.Today())
	if err != nil {
		BadRequestError(ctx, err.Error()).Write(w)
		return
	}
	tl, err := s.svc.Timeline(ctx, p.Year, p.Month)
	if err != nil {
		ServiceError(ctx, err).Write(w)
		return
	}
	NewJSONResponse().Data(newCategorySummaryDTOs(tl.Categories, s.locale)).Write(w)
}

func (s *Server) handleYearReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := ParseMonthParams(r.URL.Query(), s.svc.Today())
	if err != nil {
		BadRequestError(ctx, err.Error()).Write(w)
		return
	}
	sums, err := s.svc.Year(ctx, p.Year)
	if err != nil {
		ServiceError(ctx, err).Write(w)
		return
	}
	out := make([]summaryDTO, len(sums))
	for i, sum := range sums {
		out[i] = newSummaryDTO(sum, s.locale)
	}
	NewJSONResponse().Data(out).Write(w)
}

func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	days, err := parseIntParam(r.URL.Query(), "days", services.DefaultUpcomingDays)
	if err != nil {
		BadRequestError(ctx, err.Error()).Write(w)
		return
	}
	limit, err := parseIntParam(r.URL.Query(), "limit", services.DefaultUpcomingLimit)
	if err != nil {
		BadRequestError(ctx, err.Error()).Write(w)
		return
	}
	instances, err := s.svc.Upcoming(ctx, days, limit)
	if err != nil {
		ServiceError(ctx, err).Write(w)
		return
	}
	NewJSONResponse().Data(newInstanceDTOs(instances, s.locale)).Write(w)
}

func (s *Server) handleListObligations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	obligations, err := s.svc.ListObligations(ctx)
	if err != nil {
		ServiceError(ctx, err).Write(w)
		return
	}
	activeOnly := r.URL.Query().Get("active") == "true"
	out := make([]obligationDTO, 0, len(obligations))
	for _, o := range obligations {
		if activeOnly && !o.IsActive {
			continue
		}
		out = append(out, newObligationDTO(o, s.locale))
	}
	NewJSONResponse().Data(out).Write(w)
}

func (s *Server) handleCreateObligation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req obligationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(ctx, err.Error()).Write(w)
		return
	}
	o, err := req.toObligation("", s.locale)
	if err != nil {
		ServiceError(ctx, err).Write(w)
		return
	}
	created, err := s.svc.CreateObligation(ctx, o)
	if err != nil {
		ServiceError(ctx, err).Write(w)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/obligations/"+created.ID).
		Data(newObligationDTO(created, s.locale)).
		Write(w)
}

func (s *Server) handleGetObligation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	o, err := s.svc.GetObligation(ctx, r.PathValue("id"))
	if err != nil {
		ServiceError(ctx, err).Write(w)
		return
	}
	NewJSONResponse().Data(newObligationDTO(o, s.locale)).Write(w)
}

func (s *Server) handleUpdateObligation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req obligationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(ctx, err.Error()).Write(w)
		return
	}
	o, err := req.toObligation(r.PathValue("id"), s.locale)
	if err != nil {
		ServiceError(ctx, err).Write(w)
		return
	}
	updated, err := s.svc.UpdateObligation(ctx, o)
	if err != nil {
		ServiceError(ctx, err).Write(w)
		return
	}
	NewJSONResponse().Data(newObligationDTO(updated, s.locale)).Write(w)
}

func (s *Server) handleDeactivateObligation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.svc.DeactivateObligation(ctx, r.PathValue("id")); err != nil {
		ServiceError(ctx, err).Write(w)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleOccurrences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	count, err := parseIntParam(q, "count", 0)
	if err != nil {
		BadRequestError(ctx, err.Error()).Write(w)
		return
	}
	if count > maxOccurrences {
		count = maxOccurrences
	}
	var from core.Date
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		if from, err = core.ParseDate(v); err != nil {
			BadRequestError(ctx, "invalid from date: "+err.Error()).Write(w)
			return
		}
	}
	if from.IsZero() {
		from = s.svc.Today()
	}

	id := r.PathValue("id")
	dates, err := s.svc.Occurrences(ctx, id, from, count)
	if err != nil {
		ServiceError(ctx, err).Write(w)
		return
	}
	NewJSONResponse().Data(occurrencesDTO{ObligationID: id, From: from, Dates: dates}).Write(w)
}

func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req markPaidRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			BadRequestError(ctx, err.Error()).Write(w)
			return
		}
	}
	marker, err := s.svc.MarkPaid(ctx, r.PathValue("key"), req.PaidDate, sanitizeInput(req.Notes))
	if err != nil {
		ServiceError(ctx, err).Write(w)
		return
	}
	NewJSONResponse().Data(newMarkerDTO(marker)).Write(w)
}

func (s *Server) handleMarkUnpaid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.svc.MarkUnpaid(ctx, r.PathValue("key")); err != nil {
		ServiceError(ctx, err).Write(w)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cats, err := s.svc.ListCategories(ctx)
	if err != nil {
		ServiceError(ctx, err).Write(w)
		return
	}
	out := make([]categoryDTO, len(cats))
	for i, c := range cats {
		out[i] = newCategoryDTO(c)
	}
	NewJSONResponse().Data(out).Write(w)
}

func (s *Server) handleUpsertCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(ctx, err.Error()).Write(w)
		return
	}
	c, err := s.svc.UpsertCategory(ctx, req.toCategory())
	if err != nil {
		ServiceError(ctx, err).Write(w)
		return
	}
	NewJSONResponse().Data(newCategoryDTO(c)).Write(w)
}

func (s *Server) handleListCreditCards(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cards, err := s.svc.ListCreditCards(ctx)
	if err != nil {
		ServiceError(ctx, err).Write(w)
		return
	}
	out := make([]creditCardDTO, len(cards))
	for i, c := range cards {
		out[i] = newCreditCardDTO(c)
	}
	NewJSONResponse().Data(out).Write(w)
}

func (s *Server) handleUpsertCreditCard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req creditCardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(ctx, err.Error()).Write(w)
		return
	}
	c, err := s.svc.UpsertCreditCard(ctx, req.toCreditCard())
	if err != nil {
		ServiceError(ctx, err).Write(w)
		return
	}
	NewJSONResponse().Data(newCreditCardDTO(c)).Write(w)
}
