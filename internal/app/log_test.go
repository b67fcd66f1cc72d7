package app

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestDriveHandlerFormatsTabDelimitedRecord(t *testing.T) {
	var buf bytes.Buffer
	h := &driveHandler{w: &buf}
	logger := slog.New(h)

	logger.Info("upload finished", "path", "/a.txt", "bytes", 42)

	line := strings.TrimRight(buf.String(), "\n")
	fields := strings.Split(line, "\t")
	if len(fields) != 5 {
		t.Fatalf("fields = %v, want 5 (timestamp, level, message, path=, bytes=)", fields)
	}
	if fields[1] != "INFO" {
		t.Errorf("level = %q, want INFO", fields[1])
	}
	if fields[2] != "upload finished" {
		t.Errorf("message = %q", fields[2])
	}
	if fields[3] != "path=/a.txt" {
		t.Errorf("attr = %q, want path=/a.txt", fields[3])
	}
	if fields[4] != "bytes=42" {
		t.Errorf("attr = %q, want bytes=42", fields[4])
	}
}

func TestDriveHandlerWithAttrsPersistsAcrossCalls(t *testing.T) {
	var buf bytes.Buffer
	h := &driveHandler{w: &buf}
	logger := slog.New(h).With("pubkey", "abc123")

	logger.Warn("retrying")

	line := buf.String()
	if !strings.Contains(line, "pubkey=abc123") {
		t.Errorf("expected persisted attr in output, got %q", line)
	}
	if !strings.Contains(line, "WARN") {
		t.Errorf("expected WARN level, got %q", line)
	}
}

func TestDriveHandlerEnabledAlwaysTrue(t *testing.T) {
	h := &driveHandler{w: &bytes.Buffer{}}
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Enabled(Debug) = false, want true")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("Enabled(Error) = false, want true")
	}
}

func TestSlogAdapterSatisfiesDriveLogger(t *testing.T) {
	var buf bytes.Buffer
	a := &slogAdapter{l: slog.New(&driveHandler{w: &buf})}

	a.Debug("d")
	a.Info("i")
	a.Warn("w")
	a.Error("e")

	out := buf.String()
	for _, want := range []string{"d", "i", "w", "e"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log output to contain %q, got %q", want, out)
		}
	}
}
