package http

import (
	"log/slog"
	"net/http"
)

// Report and export endpoints stream the generated document as an attachment
// so browsers save it instead of rendering it.

func (s *Server) handleContributionReport(w http.ResponseWriter, r *http.Request) {
	f, err := s.contributionFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, name, err := s.reports.ContributionReportPDF(r.Context(), f)
	if err != nil {
		slog.ErrorContext(r.Context(), "Contribution report failed", "error", err)
		writeError(w, http.StatusInternalServerError, "report generation failed")
		return
	}
	sendAttachment(w, name, "application/pdf", out)
}

func (s *Server) handleContributorReport(w http.ResponseWriter, r *http.Request) {
	out, name, err := s.reports.ContributorReportPDF(r.Context(), s.contributorFilter(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "Contributor report failed", "error", err)
		writeError(w, http.StatusInternalServerError, "report generation failed")
		return
	}
	sendAttachment(w, name, "application/pdf", out)
}

func (s *Server) handleConsolidatedReport(w http.ResponseWriter, r *http.Request) {
	f, err := s.contributionFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, name, err := s.reports.ConsolidatedReportPDF(r.Context(), f)
	if err != nil {
		slog.ErrorContext(r.Context(), "Consolidated report failed", "error", err)
		writeError(w, http.StatusInternalServerError, "report generation failed")
		return
	}
	sendAttachment(w, name, "application/pdf", out)
}

type statisticsResponse struct {
	TotalTithes      string            `json:"total_tithes"`
	TotalOfferings   string            `json:"total_offerings"`
	GrandTotal       string            `json:"grand_total"`
	LastMonthTotal   string            `json:"last_month_total"`
	MonthlyAverage   string            `json:"monthly_average"`
	ContributorCount int               `json:"contributor_count"`
	ByCategory       map[string]string `json:"by_category"`
	MonthlySeries    []monthEntry      `json:"monthly_series"`
}

type monthEntry struct {
	Label string `json:"label"`
	Total string `json:"total"`
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	f, err := s.contributionFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := s.reports.Statistics(r.Context(), f)
	if err != nil {
		slog.ErrorContext(r.Context(), "Statistics computation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "statistics failed")
		return
	}

	out := statisticsResponse{
		TotalTithes:      stats.TotalTithes.Decimal(),
		TotalOfferings:   stats.TotalOfferings.Decimal(),
		GrandTotal:       stats.GrandTotal.Decimal(),
		LastMonthTotal:   stats.LastMonthTotal.Decimal(),
		MonthlyAverage:   stats.MonthlyAverage.Decimal(),
		ContributorCount: stats.ContributorCount,
		ByCategory:       make(map[string]string, len(stats.ByCategory)),
		MonthlySeries:    make([]monthEntry, 0, len(stats.MonthlySeries)),
	}
	for cat, total := range stats.ByCategory {
		out.ByCategory[string(cat)] = total.Decimal()
	}
	for _, m := range stats.MonthlySeries {
		out.MonthlySeries = append(out.MonthlySeries, monthEntry{Label: m.Label, Total: m.Total.Decimal()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleContributionsExport(w http.ResponseWriter, r *http.Request) {
	f, err := s.contributionFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, name, err := s.reports.ContributionsCSV(r.Context(), f)
	if err != nil {
		slog.ErrorContext(r.Context(), "Contributions export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	sendAttachment(w, name, "text/csv; charset=utf-8", out)
}

func (s *Server) handleContributorsExport(w http.ResponseWriter, r *http.Request) {
	out, name, err := s.reports.ContributorsCSV(r.Context(), s.contributorFilter(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "Contributors export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	sendAttachment(w, name, "text/csv; charset=utf-8", out)
}
