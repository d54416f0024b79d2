package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestBuildJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")

	logger, err := build(true, false, []string{path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.Debug("hidden")
	logger.Info("statistics loaded", zap.Duration("took", 1500*time.Millisecond))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected debug entry to be filtered, got %d lines: %s", len(lines), data)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decoding entry: %v", err)
	}

	if entry["step"] != "statistics loaded" || entry["level"] != "info" || entry["took"] != "1.5s" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNewDebug(t *testing.T) {
	logger, err := New(false, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !logger.Core().Enabled(zap.DebugLevel) {
		t.Fatalf("expected debug level to be enabled")
	}
}
