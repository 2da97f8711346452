// Command report generates a PDF report or CSV export from the command line,
// without going through the HTTP server. Useful for scheduled jobs and for
// the treasurer's monthly close.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"dizimo/internal/config"
	"dizimo/internal/core"
	applog "dizimo/internal/log"
	"dizimo/internal/report"
	"dizimo/internal/services"
	"dizimo/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentReport)
	applog.SetDefault(logger)

	var (
		kind        = flag.String("kind", "contributions", "report kind: contributions, contributors, consolidated, contributions-csv, contributors-csv")
		from        = flag.String("from", "", "start date (YYYY-MM-DD)")
		to          = flag.String("to", "", "end date (YYYY-MM-DD)")
		contributor = flag.Int64("contributor", 0, "filter by contributor id")
		category    = flag.String("category", "", "filter by category")
		status      = flag.String("status", "", "filter contributors by status")
		name        = flag.String("name", "", "filter contributors by name substring")
		outDir      = flag.String("out", ".", "output directory")
	)
	flag.Parse()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	reports := services.NewReportService(repo, report.Options{
		ChurchName:   cfg.ChurchName,
		Address:      cfg.ChurchAddress,
		FooterNotice: cfg.ReportFooter,
	})

	contributionFilter, err := buildContributionFilter(*from, *to, *contributor, *category)
	if err != nil {
		logger.Error("Invalid filter", "error", err)
		os.Exit(1)
	}
	contributorFilter := storage.ContributorFilter{
		Status: core.ContributorStatus(*status),
		Name:   *name,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var (
		data     []byte
		fileName string
	)
	switch *kind {
	case "contributions":
		data, fileName, err = reports.ContributionReportPDF(ctx, contributionFilter)
	case "contributors":
		data, fileName, err = reports.ContributorReportPDF(ctx, contributorFilter)
	case "consolidated":
		data, fileName, err = reports.ConsolidatedReportPDF(ctx, contributionFilter)
	case "contributions-csv":
		data, fileName, err = reports.ContributionsCSV(ctx, contributionFilter)
	case "contributors-csv":
		data, fileName, err = reports.ContributorsCSV(ctx, contributorFilter)
	default:
		logger.Error("Unknown report kind", "kind", *kind)
		os.Exit(1)
	}
	if err != nil {
		logger.Error("Report generation failed", "error", err, "kind", *kind)
		os.Exit(1)
	}

	outPath := filepath.Join(*outDir, fileName)
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		logger.Error("Failed to write output file", "error", err, "path", outPath)
		os.Exit(1)
	}

	logger.Info("Report written", "path", outPath, "bytes", len(data), "kind", *kind)
	fmt.Println(outPath)
}

func buildContributionFilter(from, to string, contributor int64, category string) (storage.ContributionFilter, error) {
	var f storage.ContributionFilter
	f.ContributorID = contributor
	f.Category = core.Category(category)
	if from != "" {
		parsed, err := time.Parse("2006-01-02", from)
		if err != nil {
			return f, fmt.Errorf("parse from date: %w", err)
		}
		f.From = core.DateOf(parsed)
	}
	if to != "" {
		parsed, err := time.Parse("2006-01-02", to)
		if err != nil {
			return f, fmt.Errorf("parse to date: %w", err)
		}
		f.To = core.DateOf(parsed)
	}
	return f, nil
}
