package domain

// WorkflowResult is the terminal snapshot of a batch run. It is immutable
// once created; producing it is the single allowed terminal transition.
type WorkflowResult struct {
	Success         bool
	TotalFiles      int
	SuccessfulFiles int
	FailedFiles     int
	ZipDownloadURL  string
	Message         string
	Files           []WorkflowFile
}

// NewWorkflowResult freezes the final file list into a result. The file slice
// is copied so later session mutations cannot leak into the snapshot.
func NewWorkflowResult(success bool, message string, zipDownloadURL string, files []WorkflowFile) WorkflowResult {
	frozen := make([]WorkflowFile, len(files))
	copy(frozen, files)

	succeeded := 0
	failed := 0
	for _, f := range frozen {
		switch f.Status {
		case StatusCompleted:
			succeeded++
		case StatusError:
			failed++
		}
	}

	return WorkflowResult{
		Success:         success,
		TotalFiles:      len(frozen),
		SuccessfulFiles: succeeded,
		FailedFiles:     failed,
		ZipDownloadURL:  zipDownloadURL,
		Message:         message,
		Files:           frozen,
	}
}
