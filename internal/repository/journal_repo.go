package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"signtrack/internal/domain"
	"signtrack/internal/workflow"
)

// JournalRepository persists the state of the current batch so a restarted
// process can show where the run left off. Only one batch lives in the journal
// at a time; writing a snapshot for a new batch id evicts the old one.
type JournalRepository interface {
	SaveSnapshot(ctx context.Context, snap workflow.Snapshot) error
	LoadCurrent(ctx context.Context) (*workflow.Snapshot, error)
	Clear(ctx context.Context) error
}

type GormJournalRepo struct {
	db *gorm.DB
}

func NewGormJournalRepo(db *gorm.DB) *GormJournalRepo {
	return &GormJournalRepo{db: db}
}

// SaveSnapshot writes the snapshot as the journal's only batch. The whole
// write runs in one transaction so a crash never leaves files from one batch
// attached to the session row of another.
func (r *GormJournalRepo) SaveSnapshot(ctx context.Context, snap workflow.Snapshot) error {
	if snap.BatchID == "" {
		return domain.ErrValidation
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("batch_id <> ?", snap.BatchID).Delete(&SessionModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("batch_id <> ?", snap.BatchID).Delete(&FileModel{}).Error; err != nil {
			return err
		}

		session := sessionModelFromSnapshot(snap)
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "batch_id"}},
			UpdateAll: true,
		}).Create(session).Error; err != nil {
			return err
		}

		// Files are replaced wholesale; per-row diffing buys nothing at
		// batch sizes of a few hundred.
		if err := tx.Where("batch_id = ?", snap.BatchID).Delete(&FileModel{}).Error; err != nil {
			return err
		}
		files := fileModelsFromSnapshot(snap)
		if len(files) == 0 {
			return nil
		}
		return tx.Create(&files).Error
	})
}

// LoadCurrent returns the journaled batch, or domain.ErrNotFound when the
// journal is empty.
func (r *GormJournalRepo) LoadCurrent(ctx context.Context) (*workflow.Snapshot, error) {
	var session SessionModel
	err := r.db.WithContext(ctx).Order("updated_at DESC").First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var files []FileModel
	err = r.db.WithContext(ctx).
		Where("batch_id = ?", session.BatchID).
		Order("position ASC").
		Find(&files).Error
	if err != nil {
		return nil, err
	}

	return snapshotFromModels(&session, files), nil
}

// Clear empties the journal.
func (r *GormJournalRepo) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&FileModel{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&SessionModel{}).Error
	})
}
