package workflow

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"signtrack/internal/domain"
)

const (
	idleStageLabel       = "Ready"
	submittingStageLabel = "Preparing files..."
	processingStageLabel = "Processing files through the signing pipeline..."

	// Liveness progress values shown between submission and the first poll
	// response, so the batch visibly moves before the server reports anything.
	submitInitialProgress   = 10
	acceptedInitialProgress = 5
)

// Session is the state container for one batch run. It replaces the shared
// singleton store of earlier designs: the caller constructs it, passes it to
// the tracker, and may hold read-only snapshots while polling runs.
//
// All mutation goes through Session methods under one lock; everything handed
// out (Files, Snapshot) is a copy.
type Session struct {
	mu sync.RWMutex

	batchID    string
	files      []domain.WorkflowFile
	sessionID  string
	processing bool
	overall    int
	stageLabel string
	result     *domain.WorkflowResult
	lastError  string

	newID func() string
}

func NewSession() *Session {
	return &Session{
		batchID:    uuid.NewString(),
		stageLabel: idleStageLabel,
		newID:      uuid.NewString,
	}
}

// Snapshot is the read-only view produced for observers (rendering layer,
// status API, journal). It shares nothing with the live session.
type Snapshot struct {
	BatchID           string
	SessionID         string
	Files             []domain.WorkflowFile
	OverallProgress   int
	CurrentStageLabel string
	IsProcessing      bool
	Result            *domain.WorkflowResult
	LastError         string
}

// AddFiles stages local documents for submission. Ignored while a run is in
// flight; the batch is fixed once submitted.
func (s *Session) AddFiles(paths ...string) []domain.WorkflowFile {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.processing {
		return nil
	}

	added := make([]domain.WorkflowFile, 0, len(paths))
	for _, path := range paths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		file := domain.WorkflowFile{
			ID:     s.newID(),
			Name:   filepath.Base(trimmed),
			Path:   trimmed,
			Status: domain.StatusPending,
			Stage:  domain.StageUpload,
		}
		s.files = append(s.files, file)
		added = append(added, file)
	}
	return added
}

// RemoveFile drops a staged file by id. No-op while processing.
func (s *Session) RemoveFile(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.processing {
		return false
	}
	for i := range s.files {
		if s.files[i].ID == id {
			s.files = append(s.files[:i], s.files[i+1:]...)
			return true
		}
	}
	return false
}

// ClearFiles drops all staged files. No-op while processing.
func (s *Session) ClearFiles() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.processing {
		s.files = nil
	}
}

// Reset returns the session to its initial empty state under a fresh batch
// id. It is the only way to start over after a terminal result.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.batchID = s.newID()
	s.files = nil
	s.sessionID = ""
	s.processing = false
	s.overall = 0
	s.stageLabel = idleStageLabel
	s.result = nil
	s.lastError = ""
}

// Files returns a copy of the current file records.
func (s *Session) Files() []domain.WorkflowFile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyFiles(s.files)
}

func (s *Session) BatchID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.batchID
}

func (s *Session) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

func (s *Session) IsProcessing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.processing
}

// Result returns the terminal result, or nil while the batch is live.
func (s *Session) Result() *domain.WorkflowResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyResult(s.result)
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		BatchID:           s.batchID,
		SessionID:         s.sessionID,
		Files:             copyFiles(s.files),
		OverallProgress:   s.overall,
		CurrentStageLabel: s.stageLabel,
		IsProcessing:      s.processing,
		Result:            copyResult(s.result),
		LastError:         s.lastError,
	}
}

// MarkSubmitting flips the session into processing and gives every file the
// liveness-signaling state before the submission request goes out.
func (s *Session) MarkSubmitting() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.processing = true
	s.stageLabel = submittingStageLabel
	s.lastError = ""
	for i := range s.files {
		s.files[i].Status = domain.StatusProcessing
		s.files[i].Stage = domain.StageSign
		s.files[i].Progress = submitInitialProgress
	}
}

// AcceptSession records the remote session handle. Files stay in their
// liveness state; the submission acknowledgment carries no results and must
// not mark anything completed.
func (s *Session) AcceptSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessionID = sessionID
	s.stageLabel = processingStageLabel
	for i := range s.files {
		s.files[i].Status = domain.StatusProcessing
		s.files[i].Stage = domain.StageSign
		s.files[i].Progress = acceptedInitialProgress
	}
	s.overall = OverallProgress(s.files)
}

// RejectSubmission handles a 2xx submission response without a session
// handle: processing stops with an explanatory label but no result, since
// nothing ever ran.
func (s *Session) RejectSubmission(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(message) == "" {
		message = domain.ErrNoSession.Error()
	}
	s.processing = false
	s.stageLabel = "Error: " + message
	s.lastError = message
}

// FailSubmission handles a transport/HTTP submission failure: every file goes
// to Error and a failed result is synthesized immediately. Submission failure
// is terminal for the batch.
func (s *Session) FailSubmission(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.files {
		s.files[i].Status = domain.StatusError
		s.files[i].Error = message
		s.files[i].CompletionMessage = ""
	}
	s.processing = false
	s.stageLabel = "Submission failed"
	s.lastError = message

	result := domain.NewWorkflowResult(false, message, "", s.files)
	s.result = &result
}

// ExpireSession handles a 404 on the progress query: processing halts with a
// distinct error, and no result is fabricated.
func (s *Session) ExpireSession(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result != nil {
		return
	}
	s.processing = false
	s.stageLabel = "Session expired"
	s.lastError = message
}

// RecordTransientError notes a recoverable poll failure in the process-wide
// error slot without touching files or stopping the run.
func (s *Session) RecordTransientError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.processing {
		return
	}
	s.lastError = message
}

// ClearError clears the process-wide error slot.
func (s *Session) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = ""
}

func copyFiles(files []domain.WorkflowFile) []domain.WorkflowFile {
	if files == nil {
		return nil
	}
	out := make([]domain.WorkflowFile, len(files))
	copy(out, files)
	return out
}

func copyResult(result *domain.WorkflowResult) *domain.WorkflowResult {
	if result == nil {
		return nil
	}
	out := *result
	out.Files = copyFiles(result.Files)
	return &out
}
