package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dizimo/internal/core"
	"dizimo/internal/storage"
)

const maxBodySize = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// parseDate parses a date string in YYYY-MM-DD format.
func parseDate(dateStr string) (core.Date, error) {
	parsed, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return core.Date{}, err
	}
	return core.DateOf(parsed), nil
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// page reads limit/offset query parameters, falling back to the server's
// default page size.
func (s *Server) page(r *http.Request) (limit, offset int) {
	limit = s.defaultPageSize
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("offset")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

func (s *Server) contributorFilter(r *http.Request) storage.ContributorFilter {
	q := r.URL.Query()
	f := storage.ContributorFilter{
		Status: core.ContributorStatus(strings.TrimSpace(q.Get("status"))),
		Name:   sanitizeInput(q.Get("name")),
	}
	f.Limit, f.Offset = s.page(r)
	return f
}

func (s *Server) contributionFilter(r *http.Request) (storage.ContributionFilter, error) {
	q := r.URL.Query()
	var f storage.ContributionFilter
	if v := strings.TrimSpace(q.Get("contributor_id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, errors.New("invalid contributor_id")
		}
		f.ContributorID = id
	}
	f.Category = core.Category(strings.TrimSpace(q.Get("category")))
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		d, err := parseDate(v)
		if err != nil {
			return f, errors.New("invalid from date, expected YYYY-MM-DD")
		}
		f.From = d
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		d, err := parseDate(v)
		if err != nil {
			return f, errors.New("invalid to date, expected YYYY-MM-DD")
		}
		f.To = d
	}
	f.Limit, f.Offset = s.page(r)
	return f, nil
}

// sendAttachment streams generated report or export bytes as a download.
func sendAttachment(w http.ResponseWriter, name, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

type contributorPayload struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	BirthDate  string `json:"birth_date"`
	Occupation string `json:"occupation"`
	Status     string `json:"status"`
	Notes      string `json:"notes"`
}

type contributorResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
	Address    string `json:"address,omitempty"`
	BirthDate  string `json:"birth_date,omitempty"`
	Occupation string `json:"occupation,omitempty"`
	Status     string `json:"status"`
	Notes      string `json:"notes,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func toContributorResponse(c core.Contributor) contributorResponse {
	out := contributorResponse{
		ID:         c.ID,
		Name:       c.Name,
		Phone:      c.Phone,
		Email:      c.Email,
		Address:    c.Address,
		Occupation: c.Occupation,
		Status:     string(c.Status),
		Notes:      c.Notes,
		CreatedAt:  c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  c.UpdatedAt.Format(time.RFC3339),
	}
	if !c.BirthDate.IsZero() {
		out.BirthDate = c.BirthDate.Format("2006-01-02")
	}
	return out
}

type contributionPayload struct {
	ContributorID int64  `json:"contributor_id"`
	Category      string `json:"category"`
	Amount        string `json:"amount"`
	Date          string `json:"date"`
	Payment       string `json:"payment_method"`
	Envelope      string `json:"envelope"`
	Notes         string `json:"notes"`
}

type contributionResponse struct {
	ID               int64  `json:"id"`
	ContributorID    int64  `json:"contributor_id"`
	ContributorName  string `json:"contributor_name,omitempty"`
	ContributorPhone string `json:"contributor_phone,omitempty"`
	Category         string `json:"category"`
	Amount           string `json:"amount"`
	AmountCents      int64  `json:"amount_cents"`
	Date             string `json:"date"`
	Payment          string `json:"payment_method"`
	Envelope         string `json:"envelope,omitempty"`
	Notes            string `json:"notes,omitempty"`
	RecordedBy       string `json:"recorded_by,omitempty"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

func toContributionResponse(c core.Contribution) contributionResponse {
	return contributionResponse{
		ID:               c.ID,
		ContributorID:    c.ContributorID,
		ContributorName:  c.ContributorName,
		ContributorPhone: c.ContributorPhone,
		Category:         string(c.Category),
		Amount:           c.Amount.Decimal(),
		AmountCents:      c.Amount.Cents,
		Date:             c.Date.Format("2006-01-02"),
		Payment:          string(c.Payment),
		Envelope:         c.Envelope,
		Notes:            c.Notes,
		RecordedBy:       c.RecordedBy,
		CreatedAt:        c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        c.UpdatedAt.Format(time.RFC3339),
	}
}

type listResponse[T any] struct {
	Items   []T  `json:"items"`
	HasMore bool `json:"has_more"`
}
