// Package logger provides structured logging for relaychat.
package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Info("hello", "count", 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["msg"] != "hello" {
		t.Errorf("msg = %v, want hello", entry["msg"])
	}
	if entry["count"] != float64(3) {
		t.Errorf("count = %v, want 3", entry["count"])
	}
}

func TestNew_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "text", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Info("hello")

	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("text output missing message, got %q", buf.String())
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "warn", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Info("should be dropped")
	if buf.Len() != 0 {
		t.Errorf("info record emitted at warn level: %q", buf.String())
	}

	l.Warn("should appear")
	if buf.Len() == 0 {
		t.Error("warn record was dropped at warn level")
	}
}

func TestSetLevel_Dynamic(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer SetLevel("info")

	l.Debug("dropped")
	if buf.Len() != 0 {
		t.Fatal("debug record emitted at info level")
	}

	SetLevel("debug")
	if got := GetLevel(); got != "debug" {
		t.Errorf("GetLevel() = %q, want debug", got)
	}

	l.Debug("kept")
	if buf.Len() == 0 {
		t.Error("debug record dropped after SetLevel(debug)")
	}
}

func TestWith_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.With("session_id", "rcss-test").Info("attached")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["session_id"] != "rcss-test" {
		t.Errorf("session_id = %v, want rcss-test", entry["session_id"])
	}
}

func TestDefault_NeverNil(t *testing.T) {
	if Default() == nil {
		t.Fatal("Default() returned nil")
	}
}
