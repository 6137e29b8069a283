package internal

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetLogLevel(t *testing.T) {
	originalLevel := logLevel
	defer func() { logLevel = originalLevel }()

	SetLogLevel(LogLevelDebug)
	if logLevel != LogLevelDebug {
		t.Errorf("SetLogLevel() logLevel = %v, want LogLevelDebug", logLevel)
	}

	SetLogLevel(LogLevelError)
	if logLevel != LogLevelError {
		t.Errorf("SetLogLevel() logLevel = %v, want LogLevelError", logLevel)
	}
}

func TestSetVerbose(t *testing.T) {
	originalLevel := logLevel
	defer func() { logLevel = originalLevel }()

	SetVerbose(true)
	if logLevel != LogLevelDebug {
		t.Errorf("SetVerbose(true) logLevel = %v, want LogLevelDebug", logLevel)
	}

	SetVerbose(false)
	if logLevel != LogLevelInfo {
		t.Errorf("SetVerbose(false) logLevel = %v, want LogLevelInfo", logLevel)
	}
}

func TestLogOutputRespectsLevel(t *testing.T) {
	originalLevel := logLevel
	defer func() {
		logLevel = originalLevel
		CloseLogger()
	}()

	var buf bytes.Buffer
	SetLogOutput(&buf)
	SetLogLevel(LogLevelInfo)

	LogInfo("bot %s created", "docs-bot")
	LogDebug("hidden detail")

	output := buf.String()
	if !strings.Contains(output, "bot docs-bot created") {
		t.Errorf("expected info message in output, got: %q", output)
	}
	if !strings.Contains(output, "INFO") {
		t.Errorf("expected INFO level marker in output, got: %q", output)
	}
	if strings.Contains(output, "hidden detail") {
		t.Errorf("debug message should be filtered at info level, got: %q", output)
	}
}

func TestSetLogFile(t *testing.T) {
	defer CloseLogger()

	path := filepath.Join(t.TempDir(), "logs", "anybot.log")
	if err := SetLogFile(path); err != nil {
		t.Fatalf("SetLogFile() error = %v", err)
	}

	LogWarn("written to %s", "file")
	CloseLogger()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("log file missing message, got: %q", string(data))
	}
	if !strings.Contains(string(data), `"level":"WARN"`) {
		t.Errorf("log file should be JSON with level field, got: %q", string(data))
	}
}

func TestLogLevels(t *testing.T) {
	if LogLevelError >= LogLevelWarn {
		t.Error("LogLevelError should be less than LogLevelWarn")
	}
	if LogLevelWarn >= LogLevelInfo {
		t.Error("LogLevelWarn should be less than LogLevelInfo")
	}
	if LogLevelInfo >= LogLevelDebug {
		t.Error("LogLevelInfo should be less than LogLevelDebug")
	}
}
