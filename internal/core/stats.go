package core

import (
	"sort"
	"strconv"
	"time"
)

// MonthTotal is one entry of the trailing 12-month series.
type MonthTotal struct {
	Label string // "jan/2026"
	Year  int
	Month time.Month
	Total Money
}

// Statistics is the derived snapshot computed from a set of contribution
// records. It is never persisted.
type Statistics struct {
	TotalTithes    Money
	TotalOfferings Money
	GrandTotal     Money

	// LastMonthTotal covers the full prior calendar month relative to the
	// reference date, regardless of the query window.
	LastMonthTotal Money

	// MonthlyAverage is the grand total divided by the number of distinct
	// calendar months present in the input. Zero when the input is empty.
	MonthlyAverage Money

	ContributorCount int

	// ByCategory sums amounts by the exact category value found in the
	// data. No enum validation happens here; unknown values get their own
	// bucket.
	ByCategory map[Category]Money

	// MonthlySeries always has exactly 12 entries, oldest first, ending at
	// the month of the reference date.
	MonthlySeries []MonthTotal
}

// ContributorTotal is one row of the top-contributors ranking.
type ContributorTotal struct {
	ContributorID int64
	Name          string
	Count         int
	Total         Money
}

var monthAbbr = [...]string{
	"jan", "fev", "mar", "abr", "mai", "jun",
	"jul", "ago", "set", "out", "nov", "dez",
}

// MonthLabel formats a year+month pair as an abbreviated Portuguese label,
// e.g. "set/2026".
func MonthLabel(year int, month time.Month) string {
	return monthAbbr[month-1] + "/" + strconv.Itoa(year)
}

// ComputeStatistics reduces a flat list of contribution records into the
// derived snapshot. now supplies the wall-clock reference for the prior-month
// window and the 12-month series.
func ComputeStatistics(records []Contribution, now time.Time) Statistics {
	stats := Statistics{
		ByCategory:    make(map[Category]Money, 6),
		MonthlySeries: make([]MonthTotal, 0, 12),
	}

	priorMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)

	months := make(map[string]struct{})
	contributors := make(map[int64]struct{})

	for _, rec := range records {
		if rec.Category == CategoryTithe {
			stats.TotalTithes = stats.TotalTithes.Add(rec.Amount)
		} else {
			stats.TotalOfferings = stats.TotalOfferings.Add(rec.Amount)
		}
		stats.ByCategory[rec.Category] = stats.ByCategory[rec.Category].Add(rec.Amount)

		if rec.Date.SameMonth(priorMonth.Year(), priorMonth.Month()) {
			stats.LastMonthTotal = stats.LastMonthTotal.Add(rec.Amount)
		}

		months[MonthLabel(rec.Date.Year(), rec.Date.Month())] = struct{}{}
		contributors[rec.ContributorID] = struct{}{}
	}

	stats.GrandTotal = stats.TotalTithes.Add(stats.TotalOfferings)
	stats.ContributorCount = len(contributors)
	if len(months) > 0 {
		stats.MonthlyAverage = Money{Cents: stats.GrandTotal.Cents / int64(len(months))}
	}

	// The 12-month window is always emitted, data or not.
	for i := 11; i >= 0; i-- {
		m := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		entry := MonthTotal{
			Label: MonthLabel(m.Year(), m.Month()),
			Year:  m.Year(),
			Month: m.Month(),
		}
		for _, rec := range records {
			if rec.Date.SameMonth(m.Year(), m.Month()) {
				entry.Total = entry.Total.Add(rec.Amount)
			}
		}
		stats.MonthlySeries = append(stats.MonthlySeries, entry)
	}

	return stats
}

// TopContributors groups the records by contributor, sums each group and
// returns at most n groups ordered by descending total. Ties keep the order
// in which the contributors first appear in the input (stable sort).
func TopContributors(records []Contribution, n int) []ContributorTotal {
	index := make(map[int64]int)
	totals := make([]ContributorTotal, 0)

	for _, rec := range records {
		i, ok := index[rec.ContributorID]
		if !ok {
			i = len(totals)
			index[rec.ContributorID] = i
			totals = append(totals, ContributorTotal{
				ContributorID: rec.ContributorID,
				Name:          rec.ContributorName,
			})
		}
		totals[i].Total = totals[i].Total.Add(rec.Amount)
		totals[i].Count++
		if totals[i].Name == "" {
			totals[i].Name = rec.ContributorName
		}
	}

	sort.SliceStable(totals, func(a, b int) bool {
		return totals[a].Total.Cents > totals[b].Total.Cents
	})

	if len(totals) > n {
		totals = totals[:n]
	}
	return totals
}
