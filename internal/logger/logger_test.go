package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestInit_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, slog.LevelInfo)
	t.Cleanup(func() { Init(&bytes.Buffer{}, slog.LevelInfo) })

	Debug("hidden")
	Info("codex saved", "chapters", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line logged at info level: %s", out)
	}
	if !strings.Contains(out, "codex saved") || !strings.Contains(out, "chapters=3") {
		t.Errorf("info line missing: %s", out)
	}
}

func TestWith_CarriesAttributes(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, slog.LevelDebug)
	t.Cleanup(func() { Init(&bytes.Buffer{}, slog.LevelInfo) })

	With("project", "ashfall").Debug("loaded")
	if !strings.Contains(buf.String(), "project=ashfall") {
		t.Errorf("attribute missing: %s", buf.String())
	}
}

func TestWarnError_Levels(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, slog.LevelWarn)
	t.Cleanup(func() { Init(&bytes.Buffer{}, slog.LevelInfo) })

	Info("hidden")
	Warn("index refresh failed", "err", "locked")
	Error("codex save failed", "err", "disk full")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line logged at warn level: %s", out)
	}
	for _, want := range []string{"level=WARN", "err=locked", "level=ERROR", `err="disk full"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}
