package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(LevelWarn, &buf)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below level should be dropped, got %q", out)
	}
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "warn message") {
		t.Errorf("expected warn line, got %q", out)
	}
	if !strings.Contains(out, "ERROR") || !strings.Contains(out, "error message") {
		t.Errorf("expected error line, got %q", out)
	}
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(LevelDebug, &buf).Component("scheduler")

	l.Info("job finished", Int("created", 3), Error(errors.New("boom")))

	out := buf.String()
	for _, want := range []string{"component=scheduler", "created=3", "error=boom", "job finished"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestLogger_ChildSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	parent := NewWithWriter(LevelInfo, &buf)
	child := parent.With(String("k", "v"))

	parent.SetLevel(LevelError)
	child.Info("should be hidden")

	if buf.Len() != 0 {
		t.Errorf("child logger should follow parent level, got %q", buf.String())
	}
}

func TestLogger_CallerIsUserCode(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(LevelInfo, &buf)

	l.Info("where")

	if !strings.Contains(buf.String(), "logger/logger_test.go") {
		t.Errorf("expected caller to point at the test file, got %q", buf.String())
	}
}

func TestField_QuotesStringsWithSpaces(t *testing.T) {
	f := String("text", "hello world")
	if got := f.String(); got != `text="hello world"` {
		t.Errorf("unexpected field rendering: %s", got)
	}
	if got := String("k", "plain").String(); got != "k=plain" {
		t.Errorf("unexpected field rendering: %s", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
