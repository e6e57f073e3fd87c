package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"signtrack/internal/domain"
	"signtrack/internal/ratelimit"
	"signtrack/internal/workflow"
)

const refreshLimitKey = "manual_refresh"

// StatusProvider is the read side of the tracked batch.
type StatusProvider interface {
	Snapshot() workflow.Snapshot
}

// RefreshTrigger requests an immediate poll. It reports false when no poll is
// waiting to be collapsed (loop idle, in flight, or stopped).
type RefreshTrigger interface {
	Refresh() bool
}

type StatusHandler struct {
	provider StatusProvider
	trigger  RefreshTrigger
	limiter  ratelimit.RateLimiter
}

func NewStatusHandler(provider StatusProvider, trigger RefreshTrigger, limiter ratelimit.RateLimiter) (*StatusHandler, error) {
	if provider == nil {
		return nil, fmt.Errorf("status provider is required")
	}
	return &StatusHandler{provider: provider, trigger: trigger, limiter: limiter}, nil
}

func RegisterStatusRoutes(router fiber.Router, provider StatusProvider, trigger RefreshTrigger, limiter ratelimit.RateLimiter) error {
	h, err := NewStatusHandler(provider, trigger, limiter)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Get("/status", h.GetStatus)
	v1.Get("/files", h.ListFiles)
	v1.Post("/refresh", h.TriggerRefresh)

	return nil
}

type statusResponse struct {
	BatchID         string          `json:"batchId"`
	SessionID       string          `json:"sessionId,omitempty"`
	IsProcessing    bool            `json:"isProcessing"`
	OverallProgress int             `json:"overallProgress"`
	StageLabel      string          `json:"stageLabel"`
	LastError       string          `json:"lastError,omitempty"`
	Stages          []stageItem     `json:"stages"`
	Result          *resultResponse `json:"result,omitempty"`
}

type stageItem struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

type fileResponse struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Status            string `json:"status"`
	Stage             string `json:"stage"`
	RawStage          string `json:"rawStage,omitempty"`
	Progress          int    `json:"progress"`
	Error             string `json:"error,omitempty"`
	CompletionMessage string `json:"completionMessage,omitempty"`
	TTNInvoiceID      string `json:"ttnInvoiceId,omitempty"`
}

type resultResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	TotalFiles      int    `json:"totalFiles"`
	SuccessfulFiles int    `json:"successfulFiles"`
	FailedFiles     int    `json:"failedFiles"`
	ZipDownloadURL  string `json:"zipDownloadUrl,omitempty"`
}

func (h *StatusHandler) GetStatus(c *fiber.Ctx) error {
	snap := h.provider.Snapshot()

	stages := make([]stageItem, 0, len(domain.Stages()))
	for _, stage := range domain.Stages() {
		stages = append(stages, stageItem{
			Name:  stage.String(),
			State: string(workflow.StageStateFor(snap.Files, stage)),
		})
	}

	return c.Status(fiber.StatusOK).JSON(statusResponse{
		BatchID:         snap.BatchID,
		SessionID:       snap.SessionID,
		IsProcessing:    snap.IsProcessing,
		OverallProgress: snap.OverallProgress,
		StageLabel:      snap.CurrentStageLabel,
		LastError:       snap.LastError,
		Stages:          stages,
		Result:          toResultResponse(snap.Result),
	})
}

func (h *StatusHandler) ListFiles(c *fiber.Ctx) error {
	snap := h.provider.Snapshot()

	files := make([]fileResponse, 0, len(snap.Files))
	for _, f := range snap.Files {
		files = append(files, fileResponse{
			ID:                f.ID,
			Name:              f.Name,
			Status:            f.Status.String(),
			Stage:             f.Stage.String(),
			RawStage:          f.RawStage,
			Progress:          f.Progress,
			Error:             f.Error,
			CompletionMessage: f.CompletionMessage,
			TTNInvoiceID:      f.TTNInvoiceID,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"batchId": snap.BatchID,
		"files":   files,
	})
}

// TriggerRefresh asks the poll loop for an immediate poll. Rate limited so a
// hammered endpoint cannot turn manual refresh into a busy loop against the
// pipeline.
func (h *StatusHandler) TriggerRefresh(c *fiber.Ctx) error {
	if h.trigger == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "polling is not running")
	}

	if h.limiter != nil {
		allowed, err := h.limiter.Allow(c.Context(), refreshLimitKey)
		if err != nil {
			return toHTTPError(err)
		}
		if !allowed {
			return fiber.NewError(fiber.StatusTooManyRequests, "refresh rate limit exceeded")
		}
	}

	if !h.trigger.Refresh() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"accepted": false,
			"reason":   "no poll is scheduled",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"accepted": true,
	})
}

func toResultResponse(result *domain.WorkflowResult) *resultResponse {
	if result == nil {
		return nil
	}
	return &resultResponse{
		Success:         result.Success,
		Message:         result.Message,
		TotalFiles:      result.TotalFiles,
		SuccessfulFiles: result.SuccessfulFiles,
		FailedFiles:     result.FailedFiles,
		ZipDownloadURL:  result.ZipDownloadURL,
	}
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return err
	}
}
