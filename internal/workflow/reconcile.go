package workflow

import (
	"signtrack/internal/domain"
	"signtrack/internal/pipeline"
)

// Outcome reports what one reconciliation did with a poll response.
type Outcome struct {
	// Discarded is true when the response arrived after a terminal result or
	// after processing stopped; nothing was mutated.
	Discarded bool
	// Terminal is true when this response produced the frozen result.
	Terminal bool
}

// Reconcile merges one poll response into the session: per-file updates,
// aggregate recomputation, and terminal resolution, all under one lock so
// observers never see a half-applied response.
func (s *Session) Reconcile(resp *pipeline.ProgressResponse) Outcome {
	if resp == nil {
		return Outcome{Discarded: true}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A stale in-flight response must not resurrect a finished session.
	if s.result != nil || !s.processing {
		return Outcome{Discarded: true}
	}

	for i := range s.files {
		if entry, ok := matchServerEntry(resp.Files, s.files[i].Name); ok {
			applyServerUpdate(&s.files[i], entry)
		}
	}

	if domain.IsTerminalBatchToken(resp.Status) {
		s.resolveTerminalLocked(resp)
		return Outcome{Terminal: true}
	}

	s.recalculateLocked()
	if msg := resp.Message; msg != "" {
		s.stageLabel = msg
	}
	return Outcome{}
}

// matchServerEntry finds the server entry for a local file by filename, the
// only correlation key the server echoes back. Duplicate filenames within a
// batch merge onto the first match.
func matchServerEntry(entries []pipeline.FileProgress, name string) (pipeline.FileProgress, bool) {
	for _, entry := range entries {
		if entry.Name() == name {
			return entry, true
		}
	}
	return pipeline.FileProgress{}, false
}

// applyServerUpdate reconciles one server entry onto a local record.
func applyServerUpdate(file *domain.WorkflowFile, entry pipeline.FileProgress) {
	file.Status = domain.MapStatus(entry.Status)

	// Stage falls back to the current one when the server omits it or speaks
	// a vocabulary the enum does not know; the raw token stays visible. A
	// recognized stage never moves the file backwards.
	token := entry.StageToken()
	if stage, ok := domain.MapStage(token); ok {
		if stage > file.Stage {
			file.Stage = stage
		}
		file.RawStage = ""
	} else if token != "" {
		file.RawStage = token
	}

	progress := domain.ClampProgress(entry.Progress)
	switch {
	case file.Status == domain.StatusCompleted:
		file.Progress = 100
	case file.Status == domain.StatusProcessing && progress < file.Progress:
		// Progress is monotonic while processing; ignore server regressions.
	default:
		file.Progress = progress
	}

	// The server narrates progress and reports failures through the same
	// free-text field; the allow-list is the only discriminator available.
	if text := entry.ErrorText(); text != "" {
		if domain.IsCompletionMessage(text) {
			file.CompletionMessage = text
			file.Error = ""
		} else {
			file.Error = text
			file.CompletionMessage = ""
		}
	}
	if file.Status == domain.StatusCompleted {
		file.Error = ""
	}

	if ref := entry.InvoiceRef(); ref != "" {
		file.TTNInvoiceID = ref
	}
}

// recalculateLocked refreshes the aggregate progress and stage label from the
// file records. Callers hold the write lock.
func (s *Session) recalculateLocked() {
	s.overall = OverallProgress(s.files)
	s.stageLabel = domain.ReadableStageLabel(CurrentActiveStage(s.files), s.overall)
}

// resolveTerminalLocked freezes the result. Exactly one result is produced
// per session; overall progress is forced to 100 and processing stops, which
// shuts the poller down. Callers hold the write lock.
func (s *Session) resolveTerminalLocked(resp *pipeline.ProgressResponse) {
	success := domain.IsSuccessBatchToken(resp.Status)

	message := resp.Message
	if message == "" {
		if success {
			message = "Processing completed successfully"
		} else {
			message = "Processing completed with errors"
		}
	}

	result := domain.NewWorkflowResult(success, message, resp.ZipDownloadURL, s.files)
	s.result = &result
	s.overall = 100
	s.stageLabel = message
	s.processing = false
}
