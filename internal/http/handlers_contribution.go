package http

import (
	"log/slog"
	"net/http"
	"strings"

	"dizimo/internal/core"
	"dizimo/internal/storage"
)

func (s *Server) handleCreateContribution(w http.ResponseWriter, r *http.Request) {
	var in contributionPayload
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(strings.TrimSpace(in.Amount))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}
	date, err := parseDate(in.Date)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
		return
	}

	c := core.Contribution{
		ContributorID: in.ContributorID,
		Category:      core.Category(in.Category),
		Amount:        core.Money{Cents: cents},
		Date:          date,
		Payment:       core.PaymentMethod(in.Payment),
		Envelope:      sanitizeInput(in.Envelope),
		Notes:         sanitizeInput(in.Notes),
	}

	created, err := s.contributions.Register(r.Context(), c)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, toContributionResponse(created))
}

func (s *Server) handleGetContribution(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := s.contributions.Get(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "Contribution lookup failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "contribution not found")
		return
	}
	writeJSON(w, http.StatusOK, toContributionResponse(*c))
}

func (s *Server) handleListContributions(w http.ResponseWriter, r *http.Request) {
	f, err := s.contributionFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, hasMore, err := s.contributions.List(r.Context(), f)
	if err != nil {
		slog.ErrorContext(r.Context(), "Contribution list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "list failed")
		return
	}

	out := listResponse[contributionResponse]{
		Items:   make([]contributionResponse, 0, len(items)),
		HasMore: hasMore,
	}
	for _, c := range items {
		out.Items = append(out.Items, toContributionResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

type contributionUpdatePayload struct {
	Category *string `json:"category"`
	Amount   *string `json:"amount"`
	Date     *string `json:"date"`
	Payment  *string `json:"payment_method"`
	Envelope *string `json:"envelope"`
	Notes    *string `json:"notes"`
}

func (s *Server) handleUpdateContribution(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var in contributionUpdatePayload
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var upd storage.ContributionUpdate
	if in.Category != nil {
		cat := core.Category(*in.Category)
		upd.Category = &cat
	}
	if in.Amount != nil {
		cents, err := core.ParseDecimalToCents(strings.TrimSpace(*in.Amount))
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid amount")
			return
		}
		upd.AmountCents = &cents
	}
	if in.Date != nil {
		d, err := parseDate(*in.Date)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
			return
		}
		upd.Date = &d
	}
	if in.Payment != nil {
		p := core.PaymentMethod(*in.Payment)
		upd.Payment = &p
	}
	upd.Envelope = cleaned(in.Envelope)
	upd.Notes = cleaned(in.Notes)

	if err := s.contributions.Update(r.Context(), id, upd); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteContribution(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.contributions.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
