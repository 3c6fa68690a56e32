package shared

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestFormatMinutes(t *testing.T) {
	tc := []struct {
		name    string
		minutes int
		want    string
	}{
		{name: "zero", minutes: 0, want: "0m"},
		{name: "under an hour", minutes: 48, want: "48m"},
		{name: "exact hours", minutes: 120, want: "2h"},
		{name: "hours and minutes", minutes: 155, want: "2h 35m"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatMinutes(tt.minutes); got != tt.want {
				t.Errorf("FormatMinutes(%d) = %v, want %v", tt.minutes, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("Interstellar", 6); got != "Inter…" {
		t.Errorf("got %q", got)
	}
	if got := Truncate("Up", 6); got != "Up" {
		t.Errorf("got %q", got)
	}
}

func TestLogger(t *testing.T) {
	t.Run("SetLogLevel", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewLogger(buf)

		if err := SetLogLevel(logger, "warn"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if logger.GetLevel() != log.WarnLevel {
			t.Errorf("expected warn level, got %v", logger.GetLevel())
		}

		logger.Info("hidden")
		if strings.Contains(buf.String(), "hidden") {
			t.Error("info message should be filtered at warn level")
		}

		if err := SetLogLevel(logger, "loud"); err == nil {
			t.Error("expected error for unknown level")
		}
	})

	t.Run("NewFileLogger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "tui.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		logger.Info("hello file")

		if _, err := NewFileLogger(""); err == nil {
			t.Error("expected error for empty path")
		}
	})
}

func TestOpenBrowser(t *testing.T) {
	if err := OpenBrowser("file:///etc/passwd"); err == nil {
		t.Error("expected non-web URL to be rejected")
	}

	orig := getRuntime
	getRuntime = func() string { return "plan9" }
	defer func() { getRuntime = orig }()

	if err := OpenBrowser("https://example.com/poster.jpg"); err == nil {
		t.Error("expected unsupported platform error")
	}
}
