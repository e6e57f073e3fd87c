package config

import (
	"os"
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("SIGNTRACK_PIPELINE_URL", "http://pipeline.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.PipelineURL != "http://pipeline.test" {
		t.Fatalf("PipelineURL = %q", cfg.PipelineURL)
	}
	if cfg.JournalPath != "signtrack.db" {
		t.Fatalf("JournalPath = %q, want signtrack.db", cfg.JournalPath)
	}
	if cfg.ListenAddr != "127.0.0.1:8745" {
		t.Fatalf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.RefreshPerMinute != 12 || cfg.RefreshBurst != 3 {
		t.Fatalf("refresh limits = %d/%d, want 12/3", cfg.RefreshPerMinute, cfg.RefreshBurst)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SIGNTRACK_PIPELINE_URL", "http://pipeline.test")
	t.Setenv("SIGNTRACK_AUTH_TOKEN", "tok-1")
	t.Setenv("SIGNTRACK_JOURNAL_PATH", "/var/lib/signtrack/journal.db")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.AuthToken != "tok-1" {
		t.Fatalf("AuthToken = %q", cfg.AuthToken)
	}
	if cfg.JournalPath != "/var/lib/signtrack/journal.db" {
		t.Fatalf("JournalPath = %q", cfg.JournalPath)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadRequiresPipelineURL(t *testing.T) {
	// t.Setenv registers the restore; the variable itself must be absent.
	t.Setenv("SIGNTRACK_PIPELINE_URL", "placeholder")
	os.Unsetenv("SIGNTRACK_PIPELINE_URL")

	if _, err := Load(); err == nil {
		t.Fatal("Load() without pipeline url must fail")
	}
}
