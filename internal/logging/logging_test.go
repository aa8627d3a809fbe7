package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNew_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("hidden")
	logger.Warn("shown", zap.String("archive", "update.zip"))
	_ = logger.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "update.zip") {
		t.Errorf("warn message missing: %s", out)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("extracting", zap.String("archive", "a.zip"))
	_ = logger.Sync()

	if !strings.Contains(buf.String(), `"archive":"a.zip"`) {
		t.Errorf("expected JSON field, got %s", buf.String())
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Error("Expected error for invalid level")
	}
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Error("Expected error for invalid format")
	}
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "updater.log")
	var buf bytes.Buffer
	logger, err := New(Options{File: path, Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("relaunched", zap.Int("pid", 42))
	_ = logger.Sync()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), `"pid":42`) {
		t.Errorf("log file missing entry: %s", content)
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		verbose  bool
		quiet    bool
		want     string
	}{
		{"default", "", false, false, "info"},
		{"verbose", "", true, false, "debug"},
		{"quiet", "", false, true, "error"},
		{"explicit wins", "warn", true, false, "warn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LevelFor(tt.explicit, tt.verbose, tt.quiet); got != tt.want {
				t.Errorf("LevelFor() = %s, want %s", got, tt.want)
			}
		})
	}
}
