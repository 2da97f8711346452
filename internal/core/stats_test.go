package core

import (
	"testing"
	"time"
)

func contribution(contributor int64, cat Category, cents int64, date Date) Contribution {
	return Contribution{
		ContributorID: contributor,
		Category:      cat,
		Amount:        Money{Cents: cents},
		Date:          date,
		Payment:       PaymentCash,
	}
}

func TestComputeStatisticsTotals(t *testing.T) {
	now := time.Date(2026, time.August, 28, 10, 0, 0, 0, time.UTC)
	records := []Contribution{
		contribution(1, CategoryTithe, 10000, NewDate(2026, time.August, 2)),
		contribution(2, CategoryTithe, 5000, NewDate(2026, time.August, 9)),
		contribution(1, CategoryGratitude, 2500, NewDate(2026, time.August, 16)),
		contribution(3, CategoryMissions, 1500, NewDate(2026, time.July, 5)),
	}

	stats := ComputeStatistics(records, now)

	if stats.TotalTithes.Cents != 15000 {
		t.Fatalf("TotalTithes = %d, want 15000", stats.TotalTithes.Cents)
	}
	if stats.TotalOfferings.Cents != 4000 {
		t.Fatalf("TotalOfferings = %d, want 4000", stats.TotalOfferings.Cents)
	}
	if got := stats.TotalTithes.Add(stats.TotalOfferings); got != stats.GrandTotal {
		t.Fatalf("tithes+offerings = %d, grand total = %d", got.Cents, stats.GrandTotal.Cents)
	}
	if stats.ContributorCount != 3 {
		t.Fatalf("ContributorCount = %d, want 3", stats.ContributorCount)
	}
	// Two distinct months (jul, ago) -> average is half the grand total.
	if stats.MonthlyAverage.Cents != stats.GrandTotal.Cents/2 {
		t.Fatalf("MonthlyAverage = %d, want %d", stats.MonthlyAverage.Cents, stats.GrandTotal.Cents/2)
	}
	if stats.ByCategory[CategoryTithe].Cents != 15000 {
		t.Fatalf("ByCategory[tithe] = %d, want 15000", stats.ByCategory[CategoryTithe].Cents)
	}
	if stats.ByCategory[CategoryMissions].Cents != 1500 {
		t.Fatalf("ByCategory[missions] = %d, want 1500", stats.ByCategory[CategoryMissions].Cents)
	}
}

func TestComputeStatisticsLastMonthWindow(t *testing.T) {
	now := time.Date(2026, time.August, 28, 0, 0, 0, 0, time.UTC)
	records := []Contribution{
		contribution(1, CategoryTithe, 1000, NewDate(2026, time.July, 1)),
		contribution(2, CategoryTithe, 2000, NewDate(2026, time.July, 31)),
		contribution(3, CategoryTithe, 4000, NewDate(2026, time.August, 1)), // current month, excluded
		contribution(4, CategoryTithe, 8000, NewDate(2026, time.June, 30)),  // too old, excluded
	}

	stats := ComputeStatistics(records, now)

	if stats.LastMonthTotal.Cents != 3000 {
		t.Fatalf("LastMonthTotal = %d, want 3000", stats.LastMonthTotal.Cents)
	}
}

func TestComputeStatisticsMonthlySeries(t *testing.T) {
	now := time.Date(2026, time.August, 28, 0, 0, 0, 0, time.UTC)
	records := []Contribution{
		contribution(1, CategoryTithe, 1000, NewDate(2026, time.August, 3)),
		contribution(1, CategoryTithe, 2000, NewDate(2025, time.September, 3)),
		// Older than the trailing window, never shows up.
		contribution(1, CategoryTithe, 9000, NewDate(2024, time.January, 3)),
	}

	stats := ComputeStatistics(records, now)

	if len(stats.MonthlySeries) != 12 {
		t.Fatalf("series length = %d, want 12", len(stats.MonthlySeries))
	}
	first, last := stats.MonthlySeries[0], stats.MonthlySeries[11]
	if first.Label != "set/2025" {
		t.Fatalf("first label = %q, want set/2025", first.Label)
	}
	if last.Label != "ago/2026" {
		t.Fatalf("last label = %q, want ago/2026", last.Label)
	}
	if first.Total.Cents != 2000 {
		t.Fatalf("first month total = %d, want 2000", first.Total.Cents)
	}
	if last.Total.Cents != 1000 {
		t.Fatalf("last month total = %d, want 1000", last.Total.Cents)
	}
	for i := 1; i < 11; i++ {
		if stats.MonthlySeries[i].Total.Cents != 0 {
			t.Fatalf("month %d total = %d, want 0", i, stats.MonthlySeries[i].Total.Cents)
		}
	}
}

func TestComputeStatisticsEmptyInput(t *testing.T) {
	now := time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC)

	stats := ComputeStatistics(nil, now)

	if stats.GrandTotal.Cents != 0 || stats.MonthlyAverage.Cents != 0 {
		t.Fatalf("empty input must yield zero totals, got %+v", stats)
	}
	if stats.ContributorCount != 0 {
		t.Fatalf("ContributorCount = %d, want 0", stats.ContributorCount)
	}
	if len(stats.ByCategory) != 0 {
		t.Fatalf("ByCategory has %d entries, want 0", len(stats.ByCategory))
	}
	if len(stats.MonthlySeries) != 12 {
		t.Fatalf("series length = %d, want 12 even with no data", len(stats.MonthlySeries))
	}
	for _, m := range stats.MonthlySeries {
		if m.Total.Cents != 0 {
			t.Fatalf("month %s total = %d, want 0", m.Label, m.Total.Cents)
		}
	}
	if stats.MonthlySeries[11].Label != "fev/2026" {
		t.Fatalf("last label = %q, want fev/2026", stats.MonthlySeries[11].Label)
	}
}

func TestComputeStatisticsUnknownCategory(t *testing.T) {
	now := time.Date(2026, time.August, 28, 0, 0, 0, 0, time.UTC)
	records := []Contribution{
		contribution(1, "Bazar", 700, NewDate(2026, time.August, 1)),
	}

	stats := ComputeStatistics(records, now)

	// Pure reduction: non-enumerated values keep their own bucket and count
	// as offerings.
	if stats.ByCategory["Bazar"].Cents != 700 {
		t.Fatalf("ByCategory[Bazar] = %d, want 700", stats.ByCategory["Bazar"].Cents)
	}
	if stats.TotalOfferings.Cents != 700 {
		t.Fatalf("TotalOfferings = %d, want 700", stats.TotalOfferings.Cents)
	}
}

func TestTopContributors(t *testing.T) {
	date := NewDate(2026, time.August, 1)
	records := []Contribution{
		contribution(1, CategoryTithe, 5000, date),
		contribution(2, CategoryTithe, 10000, date),
		contribution(1, CategoryTithe, 5000, date),
		contribution(3, CategoryTithe, 5000, date),
	}
	records[0].ContributorName = "Ana"
	records[1].ContributorName = "Bruno"
	records[2].ContributorName = "Ana"
	records[3].ContributorName = "Carla"

	top := TopContributors(records, 10)

	if len(top) != 3 {
		t.Fatalf("len = %d, want 3", len(top))
	}
	// Ana and Bruno tie at 10000; Ana appeared first in the input.
	if top[0].Name != "Ana" || top[0].Total.Cents != 10000 || top[0].Count != 2 {
		t.Fatalf("top[0] = %+v", top[0])
	}
	if top[1].Name != "Bruno" || top[1].Total.Cents != 10000 {
		t.Fatalf("top[1] = %+v", top[1])
	}
	if top[2].Name != "Carla" || top[2].Total.Cents != 5000 {
		t.Fatalf("top[2] = %+v", top[2])
	}
}

func TestTopContributorsCap(t *testing.T) {
	date := NewDate(2026, time.August, 1)
	var records []Contribution
	for i := int64(1); i <= 14; i++ {
		records = append(records, contribution(i, CategoryTithe, i*100, date))
	}

	top := TopContributors(records, 10)

	if len(top) != 10 {
		t.Fatalf("len = %d, want 10", len(top))
	}
	if top[0].ContributorID != 14 {
		t.Fatalf("top[0].ContributorID = %d, want 14", top[0].ContributorID)
	}
}
