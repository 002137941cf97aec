package logbook

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestAppendAndTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "r1", "logbook.log")
	fixed := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	lb, err := New(path, WithClock(func() time.Time { return fixed }))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	lb.Info("phase %d started", 1)
	lb.Warn("no utilities returned")
	lb.Error("agent timeout")

	lines := lb.Tail(10)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "INFO") || !strings.Contains(lines[0], "phase 1 started") {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if !strings.HasPrefix(lines[0], "2026-03-14T09:00:00Z") {
		t.Fatalf("expected fixed timestamp, got %q", lines[0])
	}
}

func TestTailLimits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logbook.log")
	lb, err := New(path)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for i := 0; i < 5; i++ {
		lb.Info("entry %d", i)
	}
	lines := lb.Tail(2)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[1], "entry 4") {
		t.Fatalf("expected newest entry last, got %q", lines[1])
	}
	if got := lb.Tail(0); got != nil {
		t.Fatalf("expected nil for zero limit")
	}
}

func TestTailMissingFile(t *testing.T) {
	lb := &Logbook{path: filepath.Join(t.TempDir(), "absent.log"), clock: time.Now}
	if got := lb.Tail(5); got != nil {
		t.Fatalf("expected nil for missing file, got %v", got)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"info":    LevelInfo,
		"WARN":    LevelWarn,
		"warning": LevelWarn,
		"err":     LevelError,
		"ERROR":   LevelError,
		"debug":   LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestNilLogbookIsSafe(t *testing.T) {
	var lb *Logbook
	lb.Info("ignored")
	if lb.Path() != "" {
		t.Fatalf("expected empty path")
	}
}
