package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"dizimo/internal/core"
	"dizimo/internal/report"
	"dizimo/internal/storage"
)

// ReportService builds PDF reports and CSV exports from stored records.
type ReportService struct {
	repo *storage.SQLiteRepository
	opts report.Options
	now  func() time.Time
}

func NewReportService(repo *storage.SQLiteRepository, opts report.Options) *ReportService {
	return &ReportService{
		repo: repo,
		opts: opts,
		now:  time.Now,
	}
}

// defaultWindow fills an open date window with the default reporting period:
// January 1 of the current year through today.
func (s *ReportService) defaultWindow(f storage.ContributionFilter) storage.ContributionFilter {
	if f.From.IsZero() && f.To.IsZero() {
		now := s.now()
		f.From = core.NewDate(now.Year(), time.January, 1)
		f.To = core.DateOf(now)
	}
	return f
}

func (s *ReportService) composer() (*report.Composer, time.Time) {
	now := s.now()
	opts := s.opts
	opts.GeneratedAt = now
	return report.NewComposer(opts), now
}

func contributionFilterSummary(f storage.ContributionFilter) []string {
	var out []string
	if f.ContributorID > 0 {
		out = append(out, fmt.Sprintf("Dizimista: #%d", f.ContributorID))
	}
	if f.Category != "" {
		out = append(out, "Categoria: "+string(f.Category))
	}
	return out
}

func contributorFilterSummary(f storage.ContributorFilter) []string {
	var out []string
	if f.Status != "" {
		out = append(out, "Status: "+string(f.Status))
	}
	if f.Name != "" {
		out = append(out, "Nome contém: "+f.Name)
	}
	return out
}

// ContributionReportPDF renders the period contribution report. It returns
// the document bytes and the suggested filename.
func (s *ReportService) ContributionReportPDF(ctx context.Context, f storage.ContributionFilter) ([]byte, string, error) {
	f = s.defaultWindow(f)
	f.Limit = 0
	f.Offset = 0

	records, _, err := s.repo.ListContributions(ctx, f)
	if err != nil {
		return nil, "", fmt.Errorf("contribution report: %w", err)
	}

	composer, now := s.composer()
	stats := core.ComputeStatistics(records, now)

	out, err := composer.ContributionReport(report.ContributionReportData{
		Period:  report.Period{Start: f.From, End: f.To},
		Filters: contributionFilterSummary(f),
		Stats:   stats,
		Records: records,
	})
	if err != nil {
		return nil, "", fmt.Errorf("contribution report: %w", err)
	}

	slog.InfoContext(ctx, "Contribution report generated",
		"record_count", len(records), "grand_total_cents", stats.GrandTotal.Cents)
	return out, report.PDFFileName("relatorio_contribuicoes", now), nil
}

// ContributorReportPDF renders the contributor roster report.
func (s *ReportService) ContributorReportPDF(ctx context.Context, f storage.ContributorFilter) ([]byte, string, error) {
	f.Limit = 0
	f.Offset = 0

	records, _, err := s.repo.ListContributors(ctx, f)
	if err != nil {
		return nil, "", fmt.Errorf("contributor report: %w", err)
	}

	composer, now := s.composer()
	out, err := composer.ContributorReport(report.ContributorReportData{
		Filters: contributorFilterSummary(f),
		Records: records,
	})
	if err != nil {
		return nil, "", fmt.Errorf("contributor report: %w", err)
	}

	slog.InfoContext(ctx, "Contributor report generated", "record_count", len(records))
	return out, report.PDFFileName("relatorio_dizimistas", now), nil
}

// ConsolidatedReportPDF renders the executive report. Its three queries run
// concurrently and the whole generation aborts if any of them fails; no
// partial document is ever returned.
func (s *ReportService) ConsolidatedReportPDF(ctx context.Context, f storage.ContributionFilter) ([]byte, string, error) {
	f = s.defaultWindow(f)
	f.Limit = 0
	f.Offset = 0

	now := s.now()
	var (
		periodRecords   []core.Contribution
		trailingRecords []core.Contribution
		totalOnFile     int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		periodRecords, _, err = s.repo.ListContributions(gctx, f)
		return err
	})
	g.Go(func() error {
		// The 12-month series window is anchored at today, not at the
		// report period.
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -11, 0)
		var err error
		trailingRecords, _, err = s.repo.ListContributions(gctx, storage.ContributionFilter{
			From: core.DateOf(start),
			To:   core.DateOf(now),
		})
		return err
	})
	g.Go(func() error {
		var err error
		totalOnFile, err = s.repo.CountContributors(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, "", fmt.Errorf("consolidated report: %w", err)
	}

	stats := core.ComputeStatistics(periodRecords, now)
	stats.MonthlySeries = core.ComputeStatistics(trailingRecords, now).MonthlySeries

	composer, _ := s.composer()
	out, err := composer.ConsolidatedReport(report.ConsolidatedReportData{
		Period:            report.Period{Start: f.From, End: f.To},
		Stats:             stats,
		Top:               core.TopContributors(periodRecords, 10),
		TotalContributors: totalOnFile,
	})
	if err != nil {
		return nil, "", fmt.Errorf("consolidated report: %w", err)
	}

	slog.InfoContext(ctx, "Consolidated report generated",
		"record_count", len(periodRecords), "contributors_on_file", totalOnFile)
	return out, report.PDFFileName("relatorio_consolidado", now), nil
}

// Statistics computes the aggregate snapshot for the filtered window without
// rendering a document. The dashboard endpoint serves it as JSON.
func (s *ReportService) Statistics(ctx context.Context, f storage.ContributionFilter) (core.Statistics, error) {
	f = s.defaultWindow(f)
	f.Limit = 0
	f.Offset = 0
	records, _, err := s.repo.ListContributions(ctx, f)
	if err != nil {
		return core.Statistics{}, fmt.Errorf("statistics: %w", err)
	}
	return core.ComputeStatistics(records, s.now()), nil
}

// ContributionsCSV exports contribution rows matching the filter.
func (s *ReportService) ContributionsCSV(ctx context.Context, f storage.ContributionFilter) ([]byte, string, error) {
	f.Limit = 0
	f.Offset = 0
	records, _, err := s.repo.ListContributions(ctx, f)
	if err != nil {
		return nil, "", fmt.Errorf("contributions export: %w", err)
	}
	return report.ContributionsCSV(records), report.CSVFileName("contribuicoes", s.now()), nil
}

// ContributorsCSV exports contributor rows matching the filter.
func (s *ReportService) ContributorsCSV(ctx context.Context, f storage.ContributorFilter) ([]byte, string, error) {
	f.Limit = 0
	f.Offset = 0
	records, _, err := s.repo.ListContributors(ctx, f)
	if err != nil {
		return nil, "", fmt.Errorf("contributors export: %w", err)
	}
	return report.ContributorsCSV(records), report.CSVFileName("dizimistas", s.now()), nil
}
