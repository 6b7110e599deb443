package watch_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"clipflow/internal/config"
	"clipflow/internal/logging"
	"clipflow/internal/project"
	"clipflow/internal/services"
	"clipflow/internal/testsupport"
	"clipflow/internal/watch"
	"clipflow/internal/workflow"
)

func newWatcher(t *testing.T) (*config.Config, *project.Store, *watch.Watcher) {
	t.Helper()
	return newWatcherWithLogger(t, nil)
}

func newWatcherWithLogger(t *testing.T, logger *slog.Logger) (*config.Config, *project.Store, *watch.Watcher) {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithInbox())
	cfg.Watch.SettleDelayMS = 50
	cfg.Watch.MaxConcurrent = 2
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	store := testsupport.MustOpenStore(t, cfg)
	svc := workflow.NewService(cfg, store,
		&testsupport.FakeTranscriber{Transcript: testsupport.TakeTranscript()},
		nil,
		workflow.WithProber(&testsupport.FakeProber{Seconds: 20}),
		workflow.WithMediaTool(&testsupport.FakeMedia{}),
	)
	w, err := watch.New(cfg, svc, logger)
	if err != nil {
		t.Fatalf("watch.New: %v", err)
	}
	return cfg, store, w
}

func TestNewRequiresInbox(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	svc := workflow.NewService(cfg, store, &testsupport.FakeTranscriber{}, nil)
	if _, err := watch.New(cfg, svc, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRunIngestsInboxFiles(t *testing.T) {
	cfg, store, w := newWatcher(t)

	existing := filepath.Join(cfg.Watch.InboxDir, "before.mp4")
	testsupport.WriteFile(t, existing, 128)

	done := make(chan *workflow.AnalysisResult, 8)
	w.OnDone(func(_ string, result *workflow.AnalysisResult, err error) {
		if err == nil {
			done <- result
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	testsupport.WriteFile(t, filepath.Join(cfg.Watch.InboxDir, "after.mov"), 128)
	testsupport.WriteFile(t, filepath.Join(cfg.Watch.InboxDir, "notes.txt"), 8)

	var names []string
	timeout := time.After(10 * time.Second)
	for len(names) < 2 {
		select {
		case result := <-done:
			if result.Project.Status != project.StatusAnalyzed {
				t.Errorf("expected analyzed project, got %s", result.Project.Status)
			}
			names = append(names, result.Project.Name)
		case <-timeout:
			cancel()
			t.Fatalf("timed out waiting for ingestion, got %v", names)
		}
	}
	cancel()
	if err := <-runErr; err != nil {
		t.Fatalf("Run returned %v", err)
	}

	sort.Strings(names)
	if names[0] != "after" || names[1] != "before" {
		t.Fatalf("unexpected project names %v", names)
	}
	projects, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(projects))
	}
	if _, err := os.Stat(filepath.Join(cfg.Watch.InboxDir, "notes.txt")); err != nil {
		t.Fatalf("non-video file should stay in the inbox: %v", err)
	}
}

func TestRunRefusesSecondInstance(t *testing.T) {
	cfg, _, w := newWatcher(t)
	held := flock.New(filepath.Join(cfg.Paths.LogDir, "clipflow-watch.lock"))
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("failed to take lock: ok=%v err=%v", ok, err)
	}
	t.Cleanup(func() { _ = held.Unlock() })

	if err := w.Run(context.Background()); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRunResetsInterruptedAnalyses(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "watch.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	cfg, store, w := newWatcherWithLogger(t, logger)
	p := testsupport.NewProject(t, store, cfg, "Crashed")
	p.Status = project.StatusAnalyzing
	if err := store.Update(context.Background(), p); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := w.Run(ctx); err != nil {
		t.Fatalf("Run returned %v", err)
	}

	got, err := store.Get(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != project.StatusError || got.ErrorMessage == "" {
		t.Fatalf("expected interrupted project marked as error, got %#v", got)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var warned bool
	for _, line := range strings.Split(strings.TrimSpace(string(content)), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		if entry[logging.FieldEventType] == "analysis_interrupted" {
			warned = true
			if entry["level"] != "warn" || entry[logging.FieldAlert] != "analysis_interrupted" || entry["projects"] != float64(1) {
				t.Fatalf("unexpected interrupted-analysis warning %v", entry)
			}
		}
	}
	if !warned {
		t.Fatalf("expected an interrupted-analysis warning in %q", content)
	}
}
