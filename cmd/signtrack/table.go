package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"signtrack/internal/domain"
	"signtrack/internal/workflow"
)

func renderFileTable(files []domain.WorkflowFile) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"FILE", "STATUS", "STAGE", "PROGRESS", "DETAIL"})

	for _, f := range files {
		stage := f.Stage.String()
		if f.RawStage != "" {
			stage = fmt.Sprintf("%s (%s)", stage, f.RawStage)
		}
		tw.AppendRow(table.Row{
			f.Name,
			f.Status.String(),
			stage,
			fmt.Sprintf("%d%%", f.Progress),
			fileDetail(f),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
	})

	return tw.Render()
}

func fileDetail(f domain.WorkflowFile) string {
	parts := make([]string, 0, 2)
	if f.Error != "" {
		parts = append(parts, f.Error)
	} else if f.CompletionMessage != "" {
		parts = append(parts, f.CompletionMessage)
	}
	if f.TTNInvoiceID != "" {
		parts = append(parts, "TTN "+f.TTNInvoiceID)
	}
	return strings.Join(parts, "; ")
}

func renderSnapshot(snap workflow.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Batch %s", snap.BatchID)
	if snap.SessionID != "" {
		fmt.Fprintf(&b, " (session %s)", snap.SessionID)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s (%d%%)\n", snap.CurrentStageLabel, snap.OverallProgress)
	if snap.LastError != "" {
		fmt.Fprintf(&b, "Last error: %s\n", snap.LastError)
	}

	if len(snap.Files) > 0 {
		b.WriteString(renderFileTable(snap.Files))
		b.WriteString("\n")
	}

	if snap.Result != nil {
		verdict := "FAILED"
		if snap.Result.Success {
			verdict = "SUCCEEDED"
		}
		fmt.Fprintf(&b, "%s: %d/%d file(s) completed", verdict, snap.Result.SuccessfulFiles, snap.Result.TotalFiles)
		if snap.Result.FailedFiles > 0 {
			fmt.Fprintf(&b, ", %d failed", snap.Result.FailedFiles)
		}
		b.WriteString("\n")
		if snap.Result.Message != "" {
			fmt.Fprintf(&b, "%s\n", snap.Result.Message)
		}
		if snap.Result.ZipDownloadURL != "" {
			fmt.Fprintf(&b, "Archive: %s\n", snap.Result.ZipDownloadURL)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
