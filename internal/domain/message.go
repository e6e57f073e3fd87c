package domain

import "strings"

// completionPhrases is the allow-list of benign narration the pipeline
// misreports in its error field. Matching is a substring check because the
// server appends details after the phrase ("Validation finished, 0
// signatures").
var completionPhrases = []string{
	"processing finished",
	"completed successfully",
	"success",
	"ttn id:",
	"validation finished",
	"rendering finished",
}

// IsCompletionMessage reports whether an error-like message from the server
// is actually benign completion narration rather than a failure.
func IsCompletionMessage(message string) bool {
	normalized := strings.ToLower(strings.TrimSpace(message))
	if normalized == "" {
		return false
	}
	for _, phrase := range completionPhrases {
		if strings.Contains(normalized, phrase) {
			return true
		}
	}
	return false
}
