package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"signtrack/internal/repository"
)

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "000001_create_workflow_sessions",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&repository.SessionModel{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.SessionModel{})
			},
		},
		{
			ID: "000002_create_workflow_files",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.FileModel{}); err != nil {
					return err
				}
				return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_workflow_files_batch_position ON workflow_files (batch_id, position)`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.FileModel{})
			},
		},
	})

	return m.Migrate()
}
