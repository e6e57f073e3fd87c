package domain

import "testing"

func TestClampProgress(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   int
		want int
	}{
		{-50, 0},
		{-1, 0},
		{0, 0},
		{42, 42},
		{100, 100},
		{101, 100},
		{5000, 100},
	}
	for _, tc := range cases {
		if got := ClampProgress(tc.in); got != tc.want {
			t.Fatalf("ClampProgress(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestNewWorkflowResultCounts(t *testing.T) {
	t.Parallel()

	files := []WorkflowFile{
		{ID: "f1", Name: "a.xml", Status: StatusCompleted, Progress: 100},
		{ID: "f2", Name: "b.xml", Status: StatusError, Progress: 60},
		{ID: "f3", Name: "c.xml", Status: StatusCompleted, Progress: 100},
	}

	result := NewWorkflowResult(false, "done with errors", "https://example.test/archive.zip", files)

	if result.TotalFiles != 3 {
		t.Fatalf("TotalFiles = %d, want 3", result.TotalFiles)
	}
	if result.SuccessfulFiles != 2 {
		t.Fatalf("SuccessfulFiles = %d, want 2", result.SuccessfulFiles)
	}
	if result.FailedFiles != 1 {
		t.Fatalf("FailedFiles = %d, want 1", result.FailedFiles)
	}
	if result.ZipDownloadURL != "https://example.test/archive.zip" {
		t.Fatalf("ZipDownloadURL = %q", result.ZipDownloadURL)
	}
}

func TestNewWorkflowResultFreezesFiles(t *testing.T) {
	t.Parallel()

	files := []WorkflowFile{{ID: "f1", Name: "a.xml", Status: StatusCompleted, Progress: 100}}
	result := NewWorkflowResult(true, "ok", "", files)

	files[0].Status = StatusError
	files[0].Progress = 0

	if result.Files[0].Status != StatusCompleted {
		t.Fatalf("result file status mutated to %s", result.Files[0].Status)
	}
	if result.Files[0].Progress != 100 {
		t.Fatalf("result file progress mutated to %d", result.Files[0].Progress)
	}
}
