package logging_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"clipflow/internal/logging"
	"clipflow/internal/services"
)

func consoleLine(t *testing.T, level string, emit func(logger *slog.Logger)) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: level, OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	emit(logger)
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return strings.TrimSuffix(string(content), "\n")
}

func TestConsoleScopeOrder(t *testing.T) {
	line := consoleLine(t, "info", func(l *slog.Logger) {
		ctx := services.WithRequestID(context.Background(), "9f8e7d6c-1111-2222-3333-444455556666")
		ctx = services.WithStage(ctx, "edit")
		ctx = services.WithProjectID(ctx, "proj_1a2b3c4d")
		logger := logging.WithContext(ctx, logging.NewComponentLogger(l, "workflow"))
		logger.Info("segment edited",
			logging.Float64("start", 2.3),
			logging.String(logging.FieldSegmentID, "seg_0011aabb"),
			logging.String(logging.FieldEventType, "segment_toggle"),
		)
	})

	want := "INFO workflow [proj_1a2b3c4d/seg_0011aabb edit #9f8e7d6c]: segment edited event_type=segment_toggle start=2.3"
	if !strings.HasSuffix(line, want) {
		t.Fatalf("unexpected console line\n got: %q\nwant suffix: %q", line, want)
	}
	if _, err := time.Parse(time.RFC3339, strings.Fields(line)[0]); err != nil {
		t.Fatalf("expected RFC3339 timestamp, got %q: %v", line, err)
	}
}

func TestConsoleLeadFieldsComeFirst(t *testing.T) {
	line := consoleLine(t, "info", func(l *slog.Logger) {
		logging.WarnWithContext(logging.NewComponentLogger(l, "watch"), "marked interrupted analyses as failed", "analysis_interrupted",
			logging.Int64("projects", 2),
			logging.Alert("analysis_interrupted"),
		)
	})

	want := `WARN watch: marked interrupted analyses as failed alert=analysis_interrupted event_type=analysis_interrupted ` +
		`impact="operation completed with warnings" error_hint="check logs for details" projects=2`
	if !strings.HasSuffix(line, want) {
		t.Fatalf("unexpected console line\n got: %q\nwant suffix: %q", line, want)
	}
}

func TestConsoleScopeWithoutComponent(t *testing.T) {
	line := consoleLine(t, "info", func(l *slog.Logger) {
		l.Info("stage only", logging.String(logging.FieldStage, "extract"))
	})
	if !strings.HasSuffix(line, "INFO [extract]: stage only") {
		t.Fatalf("unexpected console line %q", line)
	}
}

func TestConsoleValueFormatting(t *testing.T) {
	line := consoleLine(t, "info", func(l *slog.Logger) {
		l.WithGroup("render").Info("",
			logging.Duration("elapsed", 1234567*time.Microsecond),
			logging.Error(errors.New("exit status 1: no such file")),
			logging.Bool("moved", true),
		)
	})
	want := `INFO (no message) render.elapsed=1.235s render.error="exit status 1: no such file" render.moved=true`
	if !strings.HasSuffix(line, want) {
		t.Fatalf("unexpected console line\n got: %q\nwant suffix: %q", line, want)
	}
}

func TestConsoleSourceOnlyAtDebug(t *testing.T) {
	info := consoleLine(t, "info", func(l *slog.Logger) { l.Info("plain") })
	if strings.Contains(info, ".go:") {
		t.Fatalf("expected no call site at info level, got %q", info)
	}
	debug := consoleLine(t, "debug", func(l *slog.Logger) { l.Debug("located") })
	if !strings.Contains(debug, "located (console_test.go:") {
		t.Fatalf("expected call site at debug level, got %q", debug)
	}
}
