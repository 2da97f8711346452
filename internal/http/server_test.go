package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"dizimo/internal/report"
	"dizimo/internal/services"
	"dizimo/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "dizimo.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	contributors := services.NewContributorService(repo)
	contributions := services.NewContributionService(repo, nil)
	reports := services.NewReportService(repo, report.Options{ChurchName: "Igreja Teste"})

	s := NewServer(":0", contributors, contributions, reports, 20)
	t.Cleanup(func() { s.rateLimiter.stop() })
	return s
}

func doJSON(t *testing.T, s *Server, method, target, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.RemoteAddr = "192.0.2.1:4711"
	if user != "" {
		req.Header.Set("X-User-Id", user)
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func createContributor(t *testing.T, s *Server, name string) int64 {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/contributors", "tesoureiro", map[string]string{
		"name": name,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create contributor: status %d, body %s", rec.Code, rec.Body.String())
	}
	var out struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out.ID
}

func TestContributorLifecycle(t *testing.T) {
	s := newTestServer(t)
	id := createContributor(t, s, "Ana Lima")

	rec := doJSON(t, s, http.MethodGet, "/api/contributors/"+itoa(id), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status %d", rec.Code)
	}
	var got struct {
		Name   string `json:"name"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Name != "Ana Lima" || got.Status != "Ativo" {
		t.Fatalf("got %+v", got)
	}

	rec = doJSON(t, s, http.MethodPatch, "/api/contributors/"+itoa(id), "tesoureiro", map[string]string{
		"status": "Inativo",
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("patch: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodGet, "/api/contributors?status=Inativo", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status %d", rec.Code)
	}
	var list struct {
		Items   []json.RawMessage `json:"items"`
		HasMore bool              `json:"has_more"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Items) != 1 || list.HasMore {
		t.Fatalf("list = %+v", list)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/contributors/"+itoa(id), "tesoureiro", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodGet, "/api/contributors/"+itoa(id), "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: status %d", rec.Code)
	}
}

func TestCreateContributionStampsHeaderUser(t *testing.T) {
	s := newTestServer(t)
	owner := createContributor(t, s, "Ana Lima")

	rec := doJSON(t, s, http.MethodPost, "/api/contributions", "tesoureiro", map[string]any{
		"contributor_id": owner,
		"category":       "Dízimo",
		"amount":         "150,50",
		"date":           "2026-08-09",
		"payment_method": "PIX",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	var got struct {
		AmountCents int64  `json:"amount_cents"`
		Amount      string `json:"amount"`
		RecordedBy  string `json:"recorded_by"`
		Name        string `json:"contributor_name"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.AmountCents != 15050 || got.Amount != "150,50" {
		t.Fatalf("amount = %+v", got)
	}
	if got.RecordedBy != "tesoureiro" {
		t.Fatalf("recorded_by = %q", got.RecordedBy)
	}
	if got.Name != "Ana Lima" {
		t.Fatalf("contributor_name = %q", got.Name)
	}
}

func TestCreateContributionRejectsBadAmount(t *testing.T) {
	s := newTestServer(t)
	owner := createContributor(t, s, "Ana Lima")

	rec := doJSON(t, s, http.MethodPost, "/api/contributions", "tesoureiro", map[string]any{
		"contributor_id": owner,
		"category":       "Dízimo",
		"amount":         "abc",
		"date":           "2026-08-09",
		"payment_method": "PIX",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestDeleteContributorInUseConflicts(t *testing.T) {
	s := newTestServer(t)
	owner := createContributor(t, s, "Ana Lima")

	rec := doJSON(t, s, http.MethodPost, "/api/contributions", "tesoureiro", map[string]any{
		"contributor_id": owner,
		"category":       "Dízimo",
		"amount":         "100,00",
		"date":           "2026-08-09",
		"payment_method": "Dinheiro",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create contribution: status %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/contributors/"+itoa(owner), "tesoureiro", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status %d, want 409", rec.Code)
	}
}

func TestContributionReportDownload(t *testing.T) {
	s := newTestServer(t)
	owner := createContributor(t, s, "Ana Lima")
	rec := doJSON(t, s, http.MethodPost, "/api/contributions", "tesoureiro", map[string]any{
		"contributor_id": owner,
		"category":       "Dízimo",
		"amount":         "100,00",
		"date":           "2026-08-09",
		"payment_method": "PIX",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create contribution: status %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/reports/contributions.pdf", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("Content-Type = %q", ct)
	}
	cd := rec.Header().Get("Content-Disposition")
	if !strings.HasPrefix(cd, `attachment; filename="relatorio_contribuicoes_`) {
		t.Fatalf("Content-Disposition = %q", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatal("body is not a PDF")
	}
}

func TestContributorsExportDownload(t *testing.T) {
	s := newTestServer(t)
	createContributor(t, s, "Ana Lima")

	rec := doJSON(t, s, http.MethodGet, "/api/exports/contributors.csv", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	cd := rec.Header().Get("Content-Disposition")
	if !strings.HasPrefix(cd, `attachment; filename="dizimistas_`) {
		t.Fatalf("Content-Disposition = %q", cd)
	}
	if !strings.Contains(rec.Body.String(), "Ana Lima") {
		t.Fatal("exported row missing")
	}
}

func TestStatisticsEndpoint(t *testing.T) {
	s := newTestServer(t)
	owner := createContributor(t, s, "Ana Lima")
	rec := doJSON(t, s, http.MethodPost, "/api/contributions", "tesoureiro", map[string]any{
		"contributor_id": owner,
		"category":       "Dízimo",
		"amount":         "100,00",
		"date":           time.Now().UTC().Format("2006-01-02"),
		"payment_method": "PIX",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create contribution: status %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/statistics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	var got struct {
		TotalTithes      string `json:"total_tithes"`
		ContributorCount int    `json:"contributor_count"`
		MonthlySeries    []struct {
			Label string `json:"label"`
			Total string `json:"total"`
		} `json:"monthly_series"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TotalTithes != "100,00" || got.ContributorCount != 1 {
		t.Fatalf("stats = %+v", got)
	}
	if len(got.MonthlySeries) != 12 {
		t.Fatalf("series length = %d, want 12", len(got.MonthlySeries))
	}
}

func TestRateLimiterBlocksBurst(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < 60; i++ {
		if !rl.allow("192.0.2.9") {
			t.Fatalf("request %d unexpectedly blocked", i+1)
		}
	}
	if rl.allow("192.0.2.9") {
		t.Fatal("request 61 should be blocked")
	}
	if !rl.allow("192.0.2.10") {
		t.Fatal("other client must not be affected")
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
