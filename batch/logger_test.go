package batch_test

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/MasterOfBinary/ocrbatch/batch"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    batch.LogLevel
		expected string
	}{
		{batch.LogLevelDebug, "DEBUG"},
		{batch.LogLevelInfo, "INFO"},
		{batch.LogLevelWarn, "WARN"},
		{batch.LogLevelError, "ERROR"},
		{batch.LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("LogLevel.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    batch.LogLevel
		wantErr bool
	}{
		{"debug", batch.LogLevelDebug, false},
		{" Info ", batch.LogLevelInfo, false},
		{"", batch.LogLevelInfo, false},
		{"warning", batch.LogLevelWarn, false},
		{"ERROR", batch.LogLevelError, false},
		{"loud", batch.LogLevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := batch.ParseLogLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLogLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNoOpLogger(t *testing.T) {
	logger := &batch.NoOpLogger{}

	// These should not panic
	logger.Log(batch.LogLevelInfo, "test")
	logger.Debug("debug %d", 1)
	logger.Info("info %s", "test")
	logger.Warn("warn %v", true)
	logger.Error("error %f", 3.14)
}

func newBufferedLogger(minLevel batch.LogLevel) (*batch.SimpleLogger, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	logger := &batch.SimpleLogger{
		MinLevel:     minLevel,
		StdoutLogger: log.New(&stdout, "", 0),
		StderrLogger: log.New(&stderr, "", 0),
	}
	return logger, &stdout, &stderr
}

func TestSimpleLogger(t *testing.T) {
	t.Run("levels", func(t *testing.T) {
		logger, stdout, stderr := newBufferedLogger(batch.LogLevelInfo)

		logger.Debug("debug message")
		logger.Info("read %d records", 3)
		logger.Warn("warn message")
		logger.Error("error message")

		if strings.Contains(stdout.String(), "[DEBUG]") {
			t.Errorf("debug message was not filtered: %q", stdout.String())
		}
		if !strings.Contains(stdout.String(), "[INFO] read 3 records") {
			t.Errorf("stdout missing info message: %q", stdout.String())
		}
		for _, want := range []string{"[WARN] warn message", "[ERROR] error message"} {
			if !strings.Contains(stderr.String(), want) {
				t.Errorf("stderr missing %q: %q", want, stderr.String())
			}
		}
	})

	t.Run("prefix", func(t *testing.T) {
		logger, stdout, _ := newBufferedLogger(batch.LogLevelDebug)
		tagged := logger.WithPrefix("stream-1")

		tagged.Info("epoch %d", 2)
		logger.Info("untagged")

		out := stdout.String()
		if !strings.Contains(out, "[INFO] stream-1: epoch 2") {
			t.Errorf("missing prefixed line: %q", out)
		}
		if !strings.Contains(out, "[INFO] untagged") {
			t.Errorf("WithPrefix modified the original logger: %q", out)
		}
	})
}
