package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	config := Config{
		Level:  LevelDebug,
		Format: "json",
		Output: &buf,
	}

	logger := NewLogger(config)
	if logger == nil {
		t.Fatal("Expected logger to be created, got nil")
	}

	logger.Info("test message", "key", "value")
	output := buf.String()

	if !strings.Contains(output, "test message") {
		t.Errorf("Expected output to contain 'test message', got: %s", output)
	}
	if !strings.Contains(output, "key") {
		t.Errorf("Expected output to contain 'key', got: %s", output)
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Level != LevelInfo {
		t.Errorf("Expected default level %q, got %q", LevelInfo, config.Level)
	}
	if config.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", config.Format)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{
		Level:  LevelWarn,
		Format: "text",
		Output: &buf,
	})

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")

	output := buf.String()
	if strings.Contains(output, "debug message") || strings.Contains(output, "info message") {
		t.Errorf("Expected debug/info to be filtered at warn level, got: %s", output)
	}
	if !strings.Contains(output, "warn message") {
		t.Errorf("Expected warn message in output, got: %s", output)
	}
}

func TestWithTransport(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{
		Level:  LevelInfo,
		Format: "json",
		Output: &buf,
	})

	logger.WithTransport("cli").Info("dispatched")

	output := buf.String()
	if !strings.Contains(output, `"transport":"cli"`) {
		t.Errorf("Expected transport field in output, got: %s", output)
	}
}

func TestWithOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{
		Level:  LevelInfo,
		Format: "json",
		Output: &buf,
	})

	logger.WithOperation("ping", "req-123").Info("dispatched")

	output := buf.String()
	if !strings.Contains(output, `"operation":"ping"`) {
		t.Errorf("Expected operation field in output, got: %s", output)
	}
	if !strings.Contains(output, `"request_id":"req-123"`) {
		t.Errorf("Expected request_id field in output, got: %s", output)
	}
}
