package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"signtrack/internal/domain"
	"signtrack/internal/infra/sqlite/migrations"
	"signtrack/internal/repository"
	"signtrack/internal/workflow"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := migrations.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func sampleSnapshot(batchID string) workflow.Snapshot {
	return workflow.Snapshot{
		BatchID:           batchID,
		SessionID:         "s1",
		OverallProgress:   30,
		CurrentStageLabel: "Signing documents...",
		IsProcessing:      true,
		Files: []domain.WorkflowFile{
			{ID: "f1", Name: "a.xml", Path: "/tmp/a.xml", Status: domain.StatusProcessing, Stage: domain.StageSign, Progress: 20},
			{ID: "f2", Name: "b.xml", Path: "/tmp/b.xml", Status: domain.StatusProcessing, Stage: domain.StageSave, Progress: 40, TTNInvoiceID: "TTN-7"},
		},
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Parallel()

	repo := repository.NewGormJournalRepo(newTestDB(t))
	ctx := context.Background()

	if err := repo.SaveSnapshot(ctx, sampleSnapshot("batch-1")); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	loaded, err := repo.LoadCurrent(ctx)
	if err != nil {
		t.Fatalf("LoadCurrent() error = %v", err)
	}
	if loaded.BatchID != "batch-1" || loaded.SessionID != "s1" {
		t.Fatalf("loaded ids = %s/%s", loaded.BatchID, loaded.SessionID)
	}
	if loaded.OverallProgress != 30 || !loaded.IsProcessing {
		t.Fatalf("loaded state = %d/%v", loaded.OverallProgress, loaded.IsProcessing)
	}
	if len(loaded.Files) != 2 {
		t.Fatalf("loaded files = %d, want 2", len(loaded.Files))
	}
	if loaded.Files[0].Name != "a.xml" || loaded.Files[1].Name != "b.xml" {
		t.Fatalf("file order lost: %s, %s", loaded.Files[0].Name, loaded.Files[1].Name)
	}
	if loaded.Files[1].TTNInvoiceID != "TTN-7" {
		t.Fatalf("invoice ref = %q, want TTN-7", loaded.Files[1].TTNInvoiceID)
	}
	if loaded.Result != nil {
		t.Fatal("result materialized for a live batch")
	}
}

func TestSaveSnapshotUpsertsCurrentBatch(t *testing.T) {
	t.Parallel()

	repo := repository.NewGormJournalRepo(newTestDB(t))
	ctx := context.Background()

	snap := sampleSnapshot("batch-1")
	if err := repo.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	snap.OverallProgress = 100
	snap.IsProcessing = false
	snap.Files[0].Status = domain.StatusCompleted
	snap.Files[0].Progress = 100
	snap.Files[1].Status = domain.StatusCompleted
	snap.Files[1].Progress = 100
	result := domain.NewWorkflowResult(true, "All 2 file(s) processed successfully", "http://pipeline.test/zip/s1", snap.Files)
	snap.Result = &result

	if err := repo.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot() update error = %v", err)
	}

	loaded, err := repo.LoadCurrent(ctx)
	if err != nil {
		t.Fatalf("LoadCurrent() error = %v", err)
	}
	if loaded.OverallProgress != 100 || loaded.IsProcessing {
		t.Fatalf("loaded state = %d/%v, want 100/false", loaded.OverallProgress, loaded.IsProcessing)
	}
	if loaded.Result == nil || !loaded.Result.Success || loaded.Result.SuccessfulFiles != 2 {
		t.Fatalf("result = %+v", loaded.Result)
	}
	if loaded.Result.ZipDownloadURL != "http://pipeline.test/zip/s1" {
		t.Fatalf("zip url = %q", loaded.Result.ZipDownloadURL)
	}
}

func TestSaveSnapshotEvictsOtherBatches(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := repository.NewGormJournalRepo(db)
	ctx := context.Background()

	if err := repo.SaveSnapshot(ctx, sampleSnapshot("batch-1")); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	if err := repo.SaveSnapshot(ctx, sampleSnapshot("batch-2")); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	loaded, err := repo.LoadCurrent(ctx)
	if err != nil {
		t.Fatalf("LoadCurrent() error = %v", err)
	}
	if loaded.BatchID != "batch-2" {
		t.Fatalf("current batch = %s, want batch-2", loaded.BatchID)
	}

	var sessions int64
	if err := db.Model(&repository.SessionModel{}).Count(&sessions).Error; err != nil {
		t.Fatalf("count error = %v", err)
	}
	if sessions != 1 {
		t.Fatalf("sessions = %d, want 1", sessions)
	}
	var orphans int64
	if err := db.Model(&repository.FileModel{}).Where("batch_id = ?", "batch-1").Count(&orphans).Error; err != nil {
		t.Fatalf("count error = %v", err)
	}
	if orphans != 0 {
		t.Fatalf("orphaned files = %d", orphans)
	}
}

func TestSaveSnapshotRequiresBatchID(t *testing.T) {
	t.Parallel()

	repo := repository.NewGormJournalRepo(newTestDB(t))
	if err := repo.SaveSnapshot(context.Background(), workflow.Snapshot{}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("SaveSnapshot() error = %v, want ErrValidation", err)
	}
}

func TestLoadCurrentEmptyJournal(t *testing.T) {
	t.Parallel()

	repo := repository.NewGormJournalRepo(newTestDB(t))
	if _, err := repo.LoadCurrent(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("LoadCurrent() error = %v, want ErrNotFound", err)
	}
}

func TestClearEmptiesJournal(t *testing.T) {
	t.Parallel()

	repo := repository.NewGormJournalRepo(newTestDB(t))
	ctx := context.Background()

	if err := repo.SaveSnapshot(ctx, sampleSnapshot("batch-1")); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, err := repo.LoadCurrent(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("LoadCurrent() after Clear error = %v, want ErrNotFound", err)
	}
}
