package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	t.Run("with default output", func(t *testing.T) {
		logger := NewLogger(Config{Level: InfoLevel})
		if logger == nil {
			t.Fatal("NewLogger returned nil")
		}
	})

	t.Run("with custom output", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewLogger(Config{Level: InfoLevel, Output: buf})
		if logger.writer != buf {
			t.Error("Logger should use provided output writer")
		}
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"error", ErrorLevel},
		{"verbose", InfoLevel},
		{"", InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLogLevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		configLvl LogLevel
		logLvl    LogLevel
		shouldLog bool
	}{
		{"debug logs debug", DebugLevel, DebugLevel, true},
		{"debug logs error", DebugLevel, ErrorLevel, true},
		{"info skips debug", InfoLevel, DebugLevel, false},
		{"info logs info", InfoLevel, InfoLevel, true},
		{"warn skips info", WarnLevel, InfoLevel, false},
		{"warn logs warn", WarnLevel, WarnLevel, true},
		{"error skips warn", ErrorLevel, WarnLevel, false},
		{"error logs error", ErrorLevel, ErrorLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := NewLogger(Config{Level: tt.configLvl, Output: buf})

			logger.log(tt.logLvl, "test message", nil)

			hasOutput := buf.Len() > 0
			if hasOutput != tt.shouldLog {
				t.Errorf("shouldLog = %v, but hasOutput = %v", tt.shouldLog, hasOutput)
			}
		})
	}
}

func TestJSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(Config{Format: JSONFormat, Level: InfoLevel, Output: buf})

	logger.Info("fetched file", map[string]interface{}{"path": "utils/helper.js"})

	var entry logEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry.Level != "info" {
		t.Errorf("level = %q, want info", entry.Level)
	}
	if entry.Message != "fetched file" {
		t.Errorf("message = %q", entry.Message)
	}
	if entry.Fields["path"] != "utils/helper.js" {
		t.Errorf("fields = %v", entry.Fields)
	}
	if entry.Timestamp == "" {
		t.Error("timestamp missing")
	}
}

func TestHumanFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(Config{Format: HumanFormat, Level: InfoLevel, Output: buf})

	logger.Warn("fetch failed", map[string]interface{}{"path": "a.js"})

	output := buf.String()
	if !strings.Contains(output, "[warn]") {
		t.Errorf("output should contain level tag, got: %s", output)
	}
	if !strings.Contains(output, "fetch failed") {
		t.Errorf("output should contain message, got: %s", output)
	}
	if !strings.Contains(output, "path=a.js") {
		t.Errorf("output should contain fields, got: %s", output)
	}
}

func TestWithAttachesBaseFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(Config{Format: JSONFormat, Level: InfoLevel, Output: buf})

	child := logger.With(map[string]interface{}{"repository": "acme/webapp"})
	child.Info("built context", map[string]interface{}{"files": 3})

	var entry logEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry.Fields["repository"] != "acme/webapp" {
		t.Errorf("base field missing: %v", entry.Fields)
	}
	if entry.Fields["files"] != float64(3) {
		t.Errorf("call field missing: %v", entry.Fields)
	}
}

func TestWithDoesNotMutateParent(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(Config{Format: JSONFormat, Level: InfoLevel, Output: buf})

	_ = logger.With(map[string]interface{}{"repository": "acme/webapp"})
	logger.Info("plain entry", nil)

	var entry logEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if _, ok := entry.Fields["repository"]; ok {
		t.Error("parent logger picked up child fields")
	}
}
