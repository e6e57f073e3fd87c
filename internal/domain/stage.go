package domain

import "strings"

// Stage is a canonical pipeline position. The numeric order is load-bearing:
// the batch is considered as advanced as its most advanced file, and a file
// never moves backwards.
type Stage int

const (
	StageUpload Stage = iota
	StageSign
	StageSave
	StageValidate
	StageTransform
	StageComplete
)

var stageNames = map[Stage]string{
	StageUpload:    "upload",
	StageSign:      "sign",
	StageSave:      "save",
	StageValidate:  "validate",
	StageTransform: "transform",
	StageComplete:  "complete",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s Stage) IsValid() bool {
	_, ok := stageNames[s]
	return ok
}

// Stages lists all canonical stages in pipeline order.
func Stages() []Stage {
	return []Stage{StageUpload, StageSign, StageSave, StageValidate, StageTransform, StageComplete}
}

// stageTokens is the single translation table between server vocabulary and
// the canonical enum. PACKAGE and the terminal markers collapse into the
// final stage because the server reports them as pipeline positions.
var stageTokens = map[string]Stage{
	"UPLOAD":    StageUpload,
	"SIGN":      StageSign,
	"SAVE":      StageSave,
	"VALIDATE":  StageValidate,
	"TRANSFORM": StageTransform,
	"PACKAGE":   StageComplete,
	"COMPLETED": StageComplete,
	"FAILED":    StageComplete,
}

// MapStage translates a server stage token into a canonical stage. Matching
// is case-insensitive. Unknown tokens report ok=false so the caller can keep
// the file's current stage instead of guessing.
func MapStage(token string) (Stage, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(token))
	if normalized == "" {
		return StageUpload, false
	}
	stage, ok := stageTokens[normalized]
	return stage, ok
}

var stageMessages = map[Stage]string{
	StageUpload:    "Preparing files...",
	StageSign:      "Digital signing in progress...",
	StageSave:      "Saving to TTN in progress...",
	StageValidate:  "ANCE validation in progress...",
	StageTransform: "HTML rendering in progress...",
	StageComplete:  "Finalizing...",
}

// ReadableStageLabel renders a human-readable description for a stage,
// switching to an "almost done" form once progress passes 90.
func ReadableStageLabel(stage Stage, progress int) string {
	message, ok := stageMessages[stage]
	if !ok {
		message = "Processing in progress..."
	}
	if progress > 90 {
		message = strings.Replace(message, "in progress...", "almost done...", 1)
	}
	return message
}
