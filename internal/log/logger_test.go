package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestVerbosityGating(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelQuiet, &buf)

	Info("info message")
	Debug("debug message")
	if buf.Len() != 0 {
		t.Errorf("quiet mode should suppress info/debug, got %q", buf.String())
	}

	Warn("warn message")
	if !strings.Contains(buf.String(), "warn message") {
		t.Errorf("warn should always be visible, got %q", buf.String())
	}
}

func TestInfoLevel(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelInfo, &buf)

	Info("scanning repo", "repo", "tally")
	out := buf.String()
	if !strings.Contains(out, "scanning repo") || !strings.Contains(out, "repo=tally") {
		t.Errorf("expected info line with attrs, got %q", out)
	}

	buf.Reset()
	Debug("page fetched")
	if buf.Len() != 0 {
		t.Errorf("info level should suppress debug, got %q", buf.String())
	}
}

func TestProgressLine(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelInfo, &buf)

	Progress("processing %d/%d", 1, 3)
	if !strings.Contains(buf.String(), "\rprocessing 1/3") {
		t.Errorf("expected carriage-return progress line, got %q", buf.String())
	}

	ProgressDone()
	if !strings.Contains(buf.String(), " done") {
		t.Errorf("expected progress completion, got %q", buf.String())
	}
}

func TestProgressPreservedBeforeLog(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelInfo, &buf)

	Progress("working")
	Info("interleaved")
	out := buf.String()
	// The progress line must be terminated by a newline before the log line.
	if !strings.Contains(out, "working\n") {
		t.Errorf("expected newline after progress before log output, got %q", out)
	}
}
