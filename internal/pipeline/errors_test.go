package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestAPIErrorMessage(t *testing.T) {
	t.Parallel()

	err := &APIError{StatusCode: 503, Message: "temporary glitch", Cause: errors.New("boom")}
	want := "pipeline error: status=503: temporary glitch: boom"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}

	var nilErr *APIError
	if nilErr.Error() != "<nil>" {
		t.Fatalf("nil Error() = %q", nilErr.Error())
	}
}

func TestIsTransientClassification(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
		{"transient api error", &APIError{StatusCode: 500, Transient: true}, true},
		{"permanent api error", &APIError{StatusCode: 404, Transient: false}, false},
		{"wrapped transient", fmt.Errorf("poll: %w", &APIError{Transient: true}), true},
		{"plain error", errors.New("boom"), false},
	}

	for _, tc := range cases {
		if got := IsTransient(tc.err); got != tc.want {
			t.Fatalf("%s: IsTransient = %v, want %v", tc.name, got, tc.want)
		}
	}
}
