package domain

import "strings"

// Status represents the lifecycle state of a tracked file.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusError      Status = "ERROR"
)

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusError:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions occur for this status.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

// MapStatus translates a server status token into a canonical status. The
// mapping is totalized: unknown tokens default to Pending so a new server
// vocabulary never breaks reconciliation.
func MapStatus(token string) Status {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "COMPLETED":
		return StatusCompleted
	case "FAILED", "ERROR":
		return StatusError
	case "PROCESSING":
		return StatusProcessing
	case "PENDING":
		return StatusPending
	default:
		return StatusPending
	}
}

// Batch-level terminal tokens reported by the progress endpoint.
const (
	batchStatusCompleted = "COMPLETED"
	batchStatusFailed    = "FAILED"
)

// IsTerminalBatchToken reports whether a server batch status token marks the
// whole run as finished.
func IsTerminalBatchToken(token string) bool {
	normalized := strings.ToUpper(strings.TrimSpace(token))
	return normalized == batchStatusCompleted || normalized == batchStatusFailed
}

// IsSuccessBatchToken reports whether a terminal batch token means success.
func IsSuccessBatchToken(token string) bool {
	return strings.ToUpper(strings.TrimSpace(token)) == batchStatusCompleted
}
