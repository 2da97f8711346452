package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"dizimo/internal/core"
	"dizimo/internal/report"
	"dizimo/internal/storage"
)

func testReportService(t *testing.T, repo *storage.SQLiteRepository, now time.Time) *ReportService {
	t.Helper()
	svc := NewReportService(repo, report.Options{
		ChurchName:   "Igreja Batista Central",
		FooterNotice: "Documento confidencial",
	})
	svc.now = func() time.Time { return now }
	return svc
}

func seedContributions(t *testing.T, repo *storage.SQLiteRepository) {
	t.Helper()
	ana := registerContributor(t, repo, "Ana Lima")
	bruno := registerContributor(t, repo, "Bruno Costa")

	seed := func(contributor int64, cat core.Category, cents int64, d core.Date) {
		_, err := repo.CreateContribution(context.Background(), core.Contribution{
			ContributorID: contributor,
			Category:      cat,
			Amount:        core.Money{Cents: cents},
			Date:          d,
			Payment:       core.PaymentPix,
		})
		if err != nil {
			t.Fatalf("CreateContribution: %v", err)
		}
	}
	seed(ana.ID, core.CategoryTithe, 10000, core.NewDate(2026, time.August, 2))
	seed(ana.ID, core.CategoryMissions, 2000, core.NewDate(2026, time.July, 10))
	seed(bruno.ID, core.CategoryTithe, 5000, core.NewDate(2026, time.March, 15))
	// Outside the default window, must not show up in the period report.
	seed(bruno.ID, core.CategoryTithe, 99900, core.NewDate(2025, time.December, 20))
}

func TestContributionReportPDFDefaultWindow(t *testing.T) {
	repo := testRepo(t)
	seedContributions(t, repo)
	now := time.Date(2026, time.August, 28, 14, 5, 9, 0, time.UTC)
	svc := testReportService(t, repo, now)

	out, name, err := svc.ContributionReportPDF(context.Background(), storage.ContributionFilter{})
	if err != nil {
		t.Fatalf("ContributionReportPDF: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}
	if name != "relatorio_contribuicoes_2026-08-28_14-05-09.pdf" {
		t.Fatalf("filename = %q", name)
	}
	// The default window starts at January 1, so the December record stays
	// out: R$ 999,00 never appears.
	if bytes.Contains(out, []byte("999,00")) {
		t.Fatal("record outside the default window leaked into the report")
	}
}

func TestContributorReportPDF(t *testing.T) {
	repo := testRepo(t)
	registerContributor(t, repo, "Ana Lima")
	now := time.Date(2026, time.August, 28, 9, 0, 0, 0, time.UTC)
	svc := testReportService(t, repo, now)

	out, name, err := svc.ContributorReportPDF(context.Background(), storage.ContributorFilter{Status: core.StatusActive})
	if err != nil {
		t.Fatalf("ContributorReportPDF: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}
	if name != "relatorio_dizimistas_2026-08-28_09-00-00.pdf" {
		t.Fatalf("filename = %q", name)
	}
	if !bytes.Contains(out, []byte("Ana Lima")) {
		t.Fatal("contributor row missing")
	}
}

func TestConsolidatedReportPDF(t *testing.T) {
	repo := testRepo(t)
	seedContributions(t, repo)
	now := time.Date(2026, time.August, 28, 14, 5, 9, 0, time.UTC)
	svc := testReportService(t, repo, now)

	out, name, err := svc.ConsolidatedReportPDF(context.Background(), storage.ContributionFilter{})
	if err != nil {
		t.Fatalf("ConsolidatedReportPDF: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}
	if name != "relatorio_consolidado_2026-08-28_14-05-09.pdf" {
		t.Fatalf("filename = %q", name)
	}
	// The series is anchored at today and spans 12 months, so set/2025 is
	// its first label.
	if !bytes.Contains(out, []byte("set/2025")) {
		t.Fatal("12-month series missing its oldest label")
	}
	if !bytes.Contains(out, []byte("Ana Lima")) {
		t.Fatal("top contributors ranking missing")
	}
}

func TestContributionsCSVExport(t *testing.T) {
	repo := testRepo(t)
	seedContributions(t, repo)
	now := time.Date(2026, time.August, 28, 14, 5, 9, 0, time.UTC)
	svc := testReportService(t, repo, now)

	out, name, err := svc.ContributionsCSV(context.Background(), storage.ContributionFilter{})
	if err != nil {
		t.Fatalf("ContributionsCSV: %v", err)
	}
	if name != "contribuicoes_2026-08-28.csv" {
		t.Fatalf("filename = %q", name)
	}
	if !bytes.HasPrefix(out, []byte("Nome,Categoria,Valor,Data,")) {
		t.Fatalf("header = %q", bytes.SplitN(out, []byte("\n"), 2)[0])
	}
	if !bytes.Contains(out, []byte("Ana Lima")) {
		t.Fatal("joined contributor name missing from export")
	}
}

func TestContributorsCSVExport(t *testing.T) {
	repo := testRepo(t)
	registerContributor(t, repo, "Ana Lima")
	now := time.Date(2026, time.August, 28, 14, 5, 9, 0, time.UTC)
	svc := testReportService(t, repo, now)

	out, name, err := svc.ContributorsCSV(context.Background(), storage.ContributorFilter{})
	if err != nil {
		t.Fatalf("ContributorsCSV: %v", err)
	}
	if name != "dizimistas_2026-08-28.csv" {
		t.Fatalf("filename = %q", name)
	}
	if !bytes.Contains(out, []byte("Ana Lima")) {
		t.Fatal("contributor row missing from export")
	}
}
