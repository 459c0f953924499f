package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v (%q)", err, buf.String())
	}
	return entry
}

func TestLoggerJSONFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.Info("server started", "port", "10000")

	entry := logLine(t, &buf)
	if entry["message"] != "server started" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v", entry["level"])
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("timestamp field missing")
	}
	if entry["port"] != "10000" {
		t.Errorf("port = %v", entry["port"])
	}
}

func TestLoggerWarnLevelName(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter("debug", &buf)

	log.Warn("slow query")

	entry := logLine(t, &buf)
	if entry["level"] != "warning" {
		t.Errorf("level = %v, want warning", entry["level"])
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter("error", &buf)

	log.Info("should be dropped")
	if buf.Len() != 0 {
		t.Errorf("info record written at error level: %q", buf.String())
	}

	log.Error("should be written")
	if buf.Len() == 0 {
		t.Error("error record not written")
	}
}

func TestFanoutDeliversToEnabledSinks(t *testing.T) {
	t.Parallel()

	var verbose, quiet bytes.Buffer
	log := slog.New(newFanoutHandler(
		slog.NewJSONHandler(&verbose, &slog.HandlerOptions{Level: slog.LevelDebug}),
		nil,
		slog.NewJSONHandler(&quiet, &slog.HandlerOptions{Level: slog.LevelError}),
	))

	log.Info("routine event")
	if verbose.Len() == 0 {
		t.Error("debug sink did not receive the info record")
	}
	if quiet.Len() != 0 {
		t.Errorf("error sink received an info record: %q", quiet.String())
	}

	log.Error("broken")
	if quiet.Len() == 0 {
		t.Error("error sink did not receive the error record")
	}
}

func TestFanoutWithAttrsReachesAllSinks(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	log := slog.New(newFanoutHandler(
		slog.NewJSONHandler(&a, nil),
		slog.NewJSONHandler(&b, nil),
	).WithAttrs([]slog.Attr{slog.String("service", "curiosity")}))

	log.Info("tagged")

	for name, buf := range map[string]*bytes.Buffer{"first": &a, "second": &b} {
		entry := logLine(t, buf)
		if entry["service"] != "curiosity" {
			t.Errorf("%s sink missing shared attr: %v", name, entry)
		}
	}
}

func TestFanoutEnabled(t *testing.T) {
	t.Parallel()

	h := newFanoutHandler(
		slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}),
	)

	ctx := context.Background()
	if h.Enabled(ctx, slog.LevelInfo) {
		t.Error("enabled at info with warn and error sinks")
	}
	if !h.Enabled(ctx, slog.LevelWarn) {
		t.Error("not enabled at warn despite a warn sink")
	}
}

func TestLoggerWithHelpers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithModule("answer").WithField("question_id", float64(7)).Info("fetched")

	entry := logLine(t, &buf)
	if entry["module"] != "answer" {
		t.Errorf("module = %v", entry["module"])
	}
	if entry["question_id"] != float64(7) {
		t.Errorf("question_id = %v", entry["question_id"])
	}
}
