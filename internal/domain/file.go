package domain

// WorkflowFile is one submitted document's tracked state. The ID is
// client-generated and immutable; Name is the only correlation key the
// progress endpoint echoes back.
type WorkflowFile struct {
	ID   string
	Name string
	// Path points at the local payload. It is owned by this record until
	// submission and read-only afterwards.
	Path     string
	Status   Status
	Stage    Stage
	Progress int
	// RawStage keeps the server's stage token when it does not map onto the
	// canonical enum, so an unknown future stage stays visible.
	RawStage string
	// Error and CompletionMessage are mutually exclusive: the server reports
	// both failure text and benign progress narration in one field.
	Error             string
	CompletionMessage string
	// TTNInvoiceID is issued by the downstream system once the file reaches
	// the Save stage.
	TTNInvoiceID string
}

// ClampProgress forces a progress value into the 0-100 range.
func ClampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
