package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup(Config{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	logger.Debug("hello", "kind", "guild")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if line["msg"] != "hello" || line["kind"] != "guild" {
		t.Fatalf("unexpected log line: %v", line)
	}
}

func TestSetupLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup(Config{Level: "warn", Output: &buf})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info line should have been filtered: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestSetupFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "svc.log")
	var buf bytes.Buffer
	logger, err := Setup(Config{FilePath: path, Output: &buf})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	logger.Info("persisted line")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected log file to exist: %v", err)
	}
	if !strings.Contains(string(data), "persisted line") {
		t.Fatalf("log file missing line: %q", string(data))
	}
	if !strings.Contains(buf.String(), "persisted line") {
		t.Fatalf("primary writer missing line: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"Warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
