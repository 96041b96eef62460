package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("chatty"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLogger_ComponentAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentApp, Output: &buf})

	logger.WithComponent(ComponentLoader).Info("Survey load completed", FieldPages, 2)
	logger.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "component=loader") {
		t.Errorf("expected loader component, got %q", out)
	}
	if !strings.Contains(out, "pages=2") {
		t.Errorf("expected pages field, got %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line should be filtered at info level")
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Component: ComponentHTTP, Output: &buf})

	ctx := NewContext(context.Background(), logger)
	if got := FromContext(ctx); got != logger {
		t.Error("expected the stored logger")
	}
	if got := FromContext(context.Background()); got.Component() != "unknown" {
		t.Errorf("expected fallback logger, got component %q", got.Component())
	}
}

func TestLogFields(t *testing.T) {
	fields := NewFields().
		WithComponent(ComponentLoader).
		WithOperation(OpLoad).
		WithLoad("run-1", 2, 10, 7).
		WithError(errors.New("boom")).
		WithError(nil)

	if fields[FieldRunID] != "run-1" || fields[FieldInserted] != 7 {
		t.Errorf("unexpected fields %v", fields)
	}
	if fields[FieldError] != "boom" {
		t.Errorf("nil error must not overwrite, got %v", fields[FieldError])
	}
	if got := len(fields.ToSlice()); got != 2*len(fields) {
		t.Errorf("ToSlice length = %d, want %d", got, 2*len(fields))
	}
}
