package repository

import (
	"time"

	"signtrack/internal/domain"
	"signtrack/internal/workflow"
)

// SessionModel is the persistence model for the workflow_sessions table. The
// journal keeps exactly one row: the current batch. Terminal result fields are
// flattened into the row since a batch has at most one result.
type SessionModel struct {
	BatchID         string `gorm:"type:varchar(36);primaryKey"`
	SessionID       string `gorm:"type:varchar(64)"`
	OverallProgress int    `gorm:"not null;default:0"`
	StageLabel      string `gorm:"type:varchar(255)"`
	IsProcessing    bool   `gorm:"not null;default:false"`
	LastError       string `gorm:"type:text"`
	HasResult       bool   `gorm:"not null;default:false"`
	ResultSuccess   bool   `gorm:"not null;default:false"`
	ResultMessage   string `gorm:"type:text"`
	ResultZipURL    string `gorm:"type:text"`
	SuccessfulFiles int    `gorm:"not null;default:0"`
	FailedFiles     int    `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (SessionModel) TableName() string {
	return "workflow_sessions"
}

// FileModel is the persistence model for workflow_files. Position preserves
// the staging order across restarts.
type FileModel struct {
	ID                string `gorm:"type:varchar(36);primaryKey"`
	BatchID           string `gorm:"type:varchar(36);not null;index"`
	Position          int    `gorm:"not null"`
	Name              string `gorm:"type:varchar(255);not null"`
	Path              string `gorm:"type:text;not null"`
	Status            string `gorm:"type:varchar(20);not null"`
	Stage             int    `gorm:"not null;default:0"`
	Progress          int    `gorm:"not null;default:0"`
	RawStage          string `gorm:"type:varchar(64)"`
	Error             string `gorm:"type:text"`
	CompletionMessage string `gorm:"type:text"`
	TTNInvoiceID      string `gorm:"type:varchar(64);column:ttn_invoice_id"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (FileModel) TableName() string {
	return "workflow_files"
}

func sessionModelFromSnapshot(snap workflow.Snapshot) *SessionModel {
	model := &SessionModel{
		BatchID:         snap.BatchID,
		SessionID:       snap.SessionID,
		OverallProgress: snap.OverallProgress,
		StageLabel:      snap.CurrentStageLabel,
		IsProcessing:    snap.IsProcessing,
		LastError:       snap.LastError,
	}
	if snap.Result != nil {
		model.HasResult = true
		model.ResultSuccess = snap.Result.Success
		model.ResultMessage = snap.Result.Message
		model.ResultZipURL = snap.Result.ZipDownloadURL
		model.SuccessfulFiles = snap.Result.SuccessfulFiles
		model.FailedFiles = snap.Result.FailedFiles
	}
	return model
}

func fileModelsFromSnapshot(snap workflow.Snapshot) []FileModel {
	models := make([]FileModel, 0, len(snap.Files))
	for i, f := range snap.Files {
		models = append(models, FileModel{
			ID:                f.ID,
			BatchID:           snap.BatchID,
			Position:          i,
			Name:              f.Name,
			Path:              f.Path,
			Status:            f.Status.String(),
			Stage:             int(f.Stage),
			Progress:          f.Progress,
			RawStage:          f.RawStage,
			Error:             f.Error,
			CompletionMessage: f.CompletionMessage,
			TTNInvoiceID:      f.TTNInvoiceID,
		})
	}
	return models
}

func snapshotFromModels(session *SessionModel, files []FileModel) *workflow.Snapshot {
	if session == nil {
		return nil
	}

	snap := &workflow.Snapshot{
		BatchID:           session.BatchID,
		SessionID:         session.SessionID,
		OverallProgress:   session.OverallProgress,
		CurrentStageLabel: session.StageLabel,
		IsProcessing:      session.IsProcessing,
		LastError:         session.LastError,
	}

	if len(files) > 0 {
		snap.Files = make([]domain.WorkflowFile, 0, len(files))
		for _, m := range files {
			snap.Files = append(snap.Files, domain.WorkflowFile{
				ID:                m.ID,
				Name:              m.Name,
				Path:              m.Path,
				Status:            domain.Status(m.Status),
				Stage:             domain.Stage(m.Stage),
				Progress:          m.Progress,
				RawStage:          m.RawStage,
				Error:             m.Error,
				CompletionMessage: m.CompletionMessage,
				TTNInvoiceID:      m.TTNInvoiceID,
			})
		}
	}

	if session.HasResult {
		snap.Result = &domain.WorkflowResult{
			Success:         session.ResultSuccess,
			TotalFiles:      len(snap.Files),
			Message:         session.ResultMessage,
			ZipDownloadURL:  session.ResultZipURL,
			SuccessfulFiles: session.SuccessfulFiles,
			FailedFiles:     session.FailedFiles,
			Files:           snap.Files,
		}
	}
	return snap
}
