package domain

import "testing"

func TestMapStatusIsTotal(t *testing.T) {
	t.Parallel()

	cases := []struct {
		token string
		want  Status
	}{
		{"COMPLETED", StatusCompleted},
		{"completed", StatusCompleted},
		{"FAILED", StatusError},
		{"ERROR", StatusError},
		{"PROCESSING", StatusProcessing},
		{"PENDING", StatusPending},
		{" pending ", StatusPending},
		{"", StatusPending},
		{"SOMETHING_NEW", StatusPending},
	}

	for _, tc := range cases {
		if got := MapStatus(tc.token); got != tc.want {
			t.Fatalf("MapStatus(%q) = %s, want %s", tc.token, got, tc.want)
		}
	}
}

func TestStatusIsTerminal(t *testing.T) {
	t.Parallel()

	if !StatusCompleted.IsTerminal() || !StatusError.IsTerminal() {
		t.Fatal("completed/error must be terminal")
	}
	if StatusPending.IsTerminal() || StatusProcessing.IsTerminal() {
		t.Fatal("pending/processing must not be terminal")
	}
}

func TestTerminalBatchTokens(t *testing.T) {
	t.Parallel()

	if !IsTerminalBatchToken("COMPLETED") || !IsTerminalBatchToken("failed") {
		t.Fatal("COMPLETED/FAILED must be terminal batch tokens")
	}
	if IsTerminalBatchToken("PROCESSING") || IsTerminalBatchToken("") {
		t.Fatal("non-terminal token misclassified")
	}
	if !IsSuccessBatchToken("completed") {
		t.Fatal("COMPLETED must be a success token")
	}
	if IsSuccessBatchToken("FAILED") {
		t.Fatal("FAILED must not be a success token")
	}
}
