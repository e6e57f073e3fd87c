package workflow

import (
	"testing"

	"signtrack/internal/domain"
)

func TestOverallProgressIsRoundedMean(t *testing.T) {
	t.Parallel()

	files := []domain.WorkflowFile{
		{Progress: 10},
		{Progress: 50},
		{Progress: 100},
	}
	if got := OverallProgress(files); got != 53 {
		t.Fatalf("OverallProgress = %d, want 53", got)
	}

	if got := OverallProgress(nil); got != 0 {
		t.Fatalf("OverallProgress(nil) = %d, want 0", got)
	}
}

func TestOverallProgressCountsErroredFilesAsIs(t *testing.T) {
	t.Parallel()

	files := []domain.WorkflowFile{
		{Status: domain.StatusCompleted, Progress: 100},
		{Status: domain.StatusError, Progress: 40},
	}
	if got := OverallProgress(files); got != 70 {
		t.Fatalf("OverallProgress = %d, want 70", got)
	}
}

func TestCurrentActiveStageIsMostAdvanced(t *testing.T) {
	t.Parallel()

	files := []domain.WorkflowFile{
		{Stage: domain.StageSign},
		{Stage: domain.StageValidate},
		{Stage: domain.StageSave},
	}
	if got := CurrentActiveStage(files); got != domain.StageValidate {
		t.Fatalf("CurrentActiveStage = %s, want validate", got)
	}

	if got := CurrentActiveStage(nil); got != domain.StageUpload {
		t.Fatalf("CurrentActiveStage(nil) = %s, want upload", got)
	}
}

func TestStageStateForThreeTierFallback(t *testing.T) {
	t.Parallel()

	files := []domain.WorkflowFile{
		{Status: domain.StatusProcessing, Stage: domain.StageSave},
		{Status: domain.StatusCompleted, Stage: domain.StageComplete, Progress: 100},
	}

	// A file is actively processing at Save.
	if got := StageStateFor(files, domain.StageSave); got != StageStateActive {
		t.Fatalf("save state = %s, want active", got)
	}
	// Every file has passed Sign.
	if got := StageStateFor(files, domain.StageSign); got != StageStateDone {
		t.Fatalf("sign state = %s, want done", got)
	}
	// Nobody reached Transform yet and it is not the nominal batch stage.
	if got := StageStateFor(files, domain.StageTransform); got != StageStatePending {
		t.Fatalf("transform state = %s, want pending", got)
	}
}

func TestStageStateForNominalBatchStage(t *testing.T) {
	t.Parallel()

	// No file is Processing at Validate, not every file passed it, but it is
	// the most advanced stage: the batch is nominally there.
	files := []domain.WorkflowFile{
		{Status: domain.StatusPending, Stage: domain.StageValidate},
		{Status: domain.StatusProcessing, Stage: domain.StageSign},
	}
	if got := StageStateFor(files, domain.StageValidate); got != StageStateActive {
		t.Fatalf("validate state = %s, want active", got)
	}
}
