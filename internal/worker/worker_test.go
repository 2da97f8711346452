package worker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dizimo/internal/amqp"
	"dizimo/internal/core"
	"dizimo/internal/storage"
)

func testRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "dizimo.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestHandleEventRewritesSnapshots(t *testing.T) {
	repo := testRepo(t)
	outDir := t.TempDir()
	w := NewExportWorker(repo, outDir)

	contributor, err := repo.CreateContributor(context.Background(), core.Contributor{
		Name:   "Ana Lima",
		Status: core.StatusActive,
	})
	if err != nil {
		t.Fatalf("CreateContributor: %v", err)
	}
	created, err := repo.CreateContribution(context.Background(), core.Contribution{
		ContributorID: contributor.ID,
		Category:      core.CategoryTithe,
		Amount:        core.Money{Cents: 10000},
		Date:          core.NewDate(2026, time.August, 9),
		Payment:       core.PaymentPix,
	})
	if err != nil {
		t.Fatalf("CreateContribution: %v", err)
	}

	event := amqp.NewContributionEvent(amqp.ActionRegistered, created.ID, contributor.ID, "tesoureiro")
	if err := w.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	contributions, err := os.ReadFile(filepath.Join(outDir, "contribuicoes.csv"))
	if err != nil {
		t.Fatalf("read contributions snapshot: %v", err)
	}
	if !strings.Contains(string(contributions), "Ana Lima") {
		t.Fatal("contribution row missing from snapshot")
	}

	contributors, err := os.ReadFile(filepath.Join(outDir, "dizimistas.csv"))
	if err != nil {
		t.Fatalf("read contributors snapshot: %v", err)
	}
	if !strings.Contains(string(contributors), "Ana Lima") {
		t.Fatal("contributor row missing from snapshot")
	}

	// No stray temp files left behind.
	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestRefreshEmptyDatabase(t *testing.T) {
	repo := testRepo(t)
	outDir := t.TempDir()
	w := NewExportWorker(repo, outDir)

	if err := w.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(outDir, "contribuicoes.csv"))
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if !strings.HasPrefix(string(data), "Nome,Categoria,Valor,Data,") {
		t.Fatalf("header = %q", strings.SplitN(string(data), "\n", 2)[0])
	}
}
