package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"signtrack/internal/domain"
	"signtrack/internal/observability"
	"signtrack/internal/pipeline"
	"signtrack/internal/repository"
	"signtrack/internal/workflow"
)

// PipelineClient is the outbound port to the remote signing pipeline.
type PipelineClient interface {
	Submit(ctx context.Context, files []pipeline.SubmitFile) (*pipeline.SubmitResponse, error)
	Progress(ctx context.Context, sessionID string) (*pipeline.ProgressResponse, error)
}

// Tracker drives one batch run: it submits the staged files, reconciles each
// poll response into the session, and writes the current state through to the
// journal. All mutation of the session funnels through here, keeping the
// single-reconciliation-timeline guarantee.
type Tracker struct {
	session *workflow.Session
	client  PipelineClient
	journal repository.JournalRepository
	logger  *zap.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

func NewTracker(
	session *workflow.Session,
	client PipelineClient,
	journal repository.JournalRepository,
	logger *zap.Logger,
) (*Tracker, error) {
	if session == nil {
		return nil, fmt.Errorf("session is required")
	}
	if client == nil {
		return nil, fmt.Errorf("pipeline client is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Tracker{
		session: session,
		client:  client,
		journal: journal,
		logger:  logger,
		now:     time.Now,
	}, nil
}

func (t *Tracker) SetMetrics(metrics *observability.Metrics) {
	if t == nil {
		return
	}
	t.metrics = metrics
}

// Submit sends the staged batch to the pipeline and stores the returned
// session handle. An empty batch is a no-op. Submission failure is terminal:
// there is no retry at this layer.
func (t *Tracker) Submit(ctx context.Context) error {
	files := t.session.Files()
	if len(files) == 0 {
		t.logger.Info("submit skipped, no files staged")
		return nil
	}

	t.session.MarkSubmitting()

	submitFiles := make([]pipeline.SubmitFile, 0, len(files))
	for _, f := range files {
		submitFiles = append(submitFiles, pipeline.SubmitFile{Name: f.Name, Path: f.Path})
	}

	resp, err := t.client.Submit(ctx, submitFiles)
	if err != nil {
		t.session.FailSubmission(err.Error())
		t.metrics.IncSubmission("failed")
		t.persist(ctx)
		t.logger.Error("batch submission failed",
			zap.Int("files", len(files)),
			zap.Error(err),
		)
		return fmt.Errorf("batch submission failed: %w", err)
	}

	sessionID := ""
	message := ""
	if resp != nil {
		sessionID = strings.TrimSpace(resp.SessionID)
		message = strings.TrimSpace(resp.Message)
	}

	// A 2xx acknowledgment without a session handle cannot be tracked; the
	// batch never observably ran.
	if sessionID == "" {
		t.session.RejectSubmission(message)
		t.metrics.IncSubmission("rejected")
		t.persist(ctx)
		t.logger.Error("submission acknowledged without session id",
			zap.String("message", message),
		)
		return domain.ErrNoSession
	}

	t.session.AcceptSession(sessionID)
	t.metrics.IncSubmission("accepted")
	t.persist(ctx)
	t.logger.Info("batch accepted by pipeline",
		zap.String("sessionId", sessionID),
		zap.Int("files", len(files)),
	)
	return nil
}

// Poll fetches the remote state once and reconciles it. It reports
// terminal=true when polling should stop: a frozen result, session expiry,
// or processing already over. Transient failures are absorbed so the next
// scheduled tick retries.
func (t *Tracker) Poll(ctx context.Context) (bool, error) {
	if !t.session.IsProcessing() {
		return true, nil
	}

	sessionID := t.session.SessionID()
	if sessionID == "" {
		return true, fmt.Errorf("%w: polling without a session handle", domain.ErrValidation)
	}

	logger := observability.WithContextLogger(t.logger, observability.WithSessionID(ctx, sessionID))

	resp, err := t.client.Progress(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			t.session.ExpireSession(domain.ErrSessionExpired.Error())
			t.metrics.IncPoll("expired")
			t.metrics.IncPollFailure("session_expired")
			t.persist(ctx)
			logger.Error("session expired, tracking stopped", zap.Error(err))
			return true, err
		}
		if errors.Is(err, context.Canceled) {
			return false, err
		}

		t.session.RecordTransientError("progress refresh failed: " + err.Error())
		t.metrics.IncPoll("failed")
		t.metrics.IncPollFailure("transient")
		logger.Warn("progress poll failed, will retry", zap.Error(err))
		return false, nil
	}

	start := t.now()
	outcome := t.session.Reconcile(resp)
	t.metrics.ObserveReconcileDuration(t.now().Sub(start))

	if outcome.Discarded {
		t.metrics.IncPoll("discarded")
		logger.Info("poll response discarded, session already settled")
		return true, nil
	}

	t.session.ClearError()

	snap := t.session.Snapshot()
	t.metrics.IncPoll("ok")
	t.metrics.SetOverallProgress(snap.OverallProgress)
	t.metrics.SetFilesByStatus(statusCounts(snap.Files))
	t.persist(ctx)

	if outcome.Terminal {
		fields := []zap.Field{zap.Bool("success", snap.Result != nil && snap.Result.Success)}
		if snap.Result != nil {
			fields = append(fields,
				zap.Int("succeeded", snap.Result.SuccessfulFiles),
				zap.Int("failed", snap.Result.FailedFiles),
			)
		}
		logger.Info("batch finished", fields...)
		return true, nil
	}

	logger.Debug("progress reconciled",
		zap.Int("overallProgress", snap.OverallProgress),
		zap.String("stage", snap.CurrentStageLabel),
	)
	return false, nil
}

// Snapshot exposes the read-only view for observers.
func (t *Tracker) Snapshot() workflow.Snapshot {
	return t.session.Snapshot()
}

// Reset clears the session and the journal so a new batch can start.
func (t *Tracker) Reset(ctx context.Context) error {
	t.session.Reset()
	if t.journal == nil {
		return nil
	}
	if err := t.journal.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear journal: %w", err)
	}
	return nil
}

func (t *Tracker) persist(ctx context.Context) {
	if t.journal == nil {
		return
	}
	if err := t.journal.SaveSnapshot(ctx, t.session.Snapshot()); err != nil {
		t.logger.Warn("journal write failed", zap.Error(err))
	}
}

func statusCounts(files []domain.WorkflowFile) map[string]int {
	counts := map[string]int{
		domain.StatusPending.String():    0,
		domain.StatusProcessing.String(): 0,
		domain.StatusCompleted.String():  0,
		domain.StatusError.String():      0,
	}
	for _, f := range files {
		counts[f.Status.String()]++
	}
	return counts
}
