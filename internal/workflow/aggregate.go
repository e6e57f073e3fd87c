package workflow

import (
	"math"

	"signtrack/internal/domain"
)

// OverallProgress is the rounded mean of all file progress values, regardless
// of status. A completed file contributes 100; an errored file contributes
// its last known progress, which keeps partial failure informative.
func OverallProgress(files []domain.WorkflowFile) int {
	if len(files) == 0 {
		return 0
	}
	total := 0
	for _, f := range files {
		total += f.Progress
	}
	return int(math.Round(float64(total) / float64(len(files))))
}

// CurrentActiveStage is the most advanced stage across all files: the batch
// is as advanced as its most advanced member, since stages are not
// synchronized between files. Ties go to the first file at that stage.
func CurrentActiveStage(files []domain.WorkflowFile) domain.Stage {
	active := domain.StageUpload
	for _, f := range files {
		if f.Stage > active {
			active = f.Stage
		}
	}
	return active
}

// StageState is the derived per-stage position used by progress displays.
type StageState string

const (
	StageStatePending StageState = "pending"
	StageStateActive  StageState = "active"
	StageStateDone    StageState = "done"
)

// StageStateFor derives the display state of one canonical stage. The
// three-tier fallback exists because "all files individually at S" and
// "batch is nominally at S" can disagree transiently.
func StageStateFor(files []domain.WorkflowFile, stage domain.Stage) StageState {
	if len(files) == 0 {
		return StageStatePending
	}

	for _, f := range files {
		if f.Status == domain.StatusProcessing && f.Stage == stage {
			return StageStateActive
		}
	}

	passed := true
	for _, f := range files {
		if f.Stage > stage {
			continue
		}
		if f.Stage == stage && f.Status == domain.StatusCompleted {
			continue
		}
		passed = false
		break
	}
	if passed {
		return StageStateDone
	}

	if stage == CurrentActiveStage(files) {
		return StageStateActive
	}
	return StageStatePending
}
