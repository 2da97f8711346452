// Package worker keeps an on-disk mirror of the contribution export current.
// It consumes contribution events and rewrites the CSV snapshot so external
// tools (accounting spreadsheets, backups) always see fresh data without
// querying the database.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"dizimo/internal/amqp"
	"dizimo/internal/report"
	"dizimo/internal/storage"
)

// ExportWorker rewrites CSV snapshots in response to contribution events.
type ExportWorker struct {
	repo   *storage.SQLiteRepository
	outDir string

	mu sync.Mutex
}

func NewExportWorker(repo *storage.SQLiteRepository, outDir string) *ExportWorker {
	return &ExportWorker{repo: repo, outDir: outDir}
}

// HandleEvent refreshes the mirror after any contribution change. The event
// payload only signals that something changed; the snapshot is always rebuilt
// from the database.
func (w *ExportWorker) HandleEvent(ctx context.Context, event *amqp.ContributionEvent) error {
	slog.InfoContext(ctx, "Refreshing export mirror",
		"action", event.Action,
		"contribution_id", event.ContributionID)
	return w.Refresh(ctx)
}

// Refresh rebuilds both CSV snapshots. Files are written atomically via a
// temp file rename so readers never see a partial export.
func (w *ExportWorker) Refresh(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(w.outDir, 0755); err != nil {
		return fmt.Errorf("refresh export mirror: %w", err)
	}

	contributions, _, err := w.repo.ListContributions(ctx, storage.ContributionFilter{})
	if err != nil {
		return fmt.Errorf("refresh export mirror: %w", err)
	}
	if err := w.writeAtomic("contribuicoes.csv", report.ContributionsCSV(contributions)); err != nil {
		return err
	}

	contributors, _, err := w.repo.ListContributors(ctx, storage.ContributorFilter{})
	if err != nil {
		return fmt.Errorf("refresh export mirror: %w", err)
	}
	if err := w.writeAtomic("dizimistas.csv", report.ContributorsCSV(contributors)); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Export mirror refreshed",
		"contributions", len(contributions),
		"contributors", len(contributors),
		"dir", w.outDir)
	return nil
}

func (w *ExportWorker) writeAtomic(name string, data []byte) error {
	final := filepath.Join(w.outDir, name)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write export mirror %s: %w", name, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("write export mirror %s: %w", name, err)
	}
	return nil
}
