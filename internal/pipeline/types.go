package pipeline

import "strings"

// SubmitFile is one local document handed to the submission endpoint.
type SubmitFile struct {
	Name string
	Path string
}

// SubmitResponse is the acknowledgment returned by the submission endpoint.
// The pipeline responds immediately with a session handle, not final results.
type SubmitResponse struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// ProgressResponse is one poll of the remote run state.
type ProgressResponse struct {
	Status          string         `json:"status"`
	OverallProgress *int           `json:"overallProgress,omitempty"`
	Message         string         `json:"message,omitempty"`
	ZipDownloadURL  string         `json:"zipDownloadUrl,omitempty"`
	Files           []FileProgress `json:"files"`
}

// FileProgress is one file entry in a progress response. The server is not
// consistent about field names, so both observed variants are decoded and
// normalized through the accessor methods.
type FileProgress struct {
	Filename     string `json:"filename"`
	FileNameAlt  string `json:"fileName"`
	Status       string `json:"status"`
	Stage        string `json:"stage"`
	CurrentStage string `json:"currentStage"`
	Progress     int    `json:"progress"`
	Error        string `json:"error"`
	ErrorMessage string `json:"errorMessage"`
	TTNInvoiceID string `json:"ttnInvoiceId"`
	InvoiceID    string `json:"invoiceId"`
}

// Name returns the filename under whichever field the server populated.
func (f FileProgress) Name() string {
	if name := strings.TrimSpace(f.Filename); name != "" {
		return name
	}
	return strings.TrimSpace(f.FileNameAlt)
}

// StageToken returns the raw stage token, preferring the primary field.
func (f FileProgress) StageToken() string {
	if token := strings.TrimSpace(f.Stage); token != "" {
		return token
	}
	return strings.TrimSpace(f.CurrentStage)
}

// ErrorText returns the free-text error field. The server overloads it for
// both failure text and completion narration; classification happens during
// reconciliation, not here.
func (f FileProgress) ErrorText() string {
	if msg := strings.TrimSpace(f.ErrorMessage); msg != "" {
		return msg
	}
	return strings.TrimSpace(f.Error)
}

// InvoiceRef returns the downstream invoice identifier under either variant.
func (f FileProgress) InvoiceRef() string {
	if ref := strings.TrimSpace(f.TTNInvoiceID); ref != "" {
		return ref
	}
	return strings.TrimSpace(f.InvoiceID)
}
