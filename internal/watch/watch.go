package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"

	"clipflow/internal/config"
	"clipflow/internal/logging"
	"clipflow/internal/services"
	"clipflow/internal/workflow"
)

const lockFileName = "clipflow-watch.lock"

// Watcher turns inbox files into analyzed projects.
type Watcher struct {
	cfg      *config.Config
	svc      *workflow.Service
	logger   *slog.Logger
	inbox    string
	settle   time.Duration
	lockPath string
	lock     *flock.Flock

	sem     chan struct{}
	ready   chan string
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	pending map[string]*time.Timer
	active  map[string]struct{}
	running atomic.Bool

	// onDone, when set, observes every finished ingestion.
	onDone func(path string, result *workflow.AnalysisResult, err error)
}

// New constructs a Watcher for cfg.Watch.InboxDir.
func New(cfg *config.Config, svc *workflow.Service, logger *slog.Logger) (*Watcher, error) {
	if cfg == nil || svc == nil {
		return nil, errors.New("watcher requires config and workflow service")
	}
	inbox := strings.TrimSpace(cfg.Watch.InboxDir)
	if inbox == "" {
		return nil, services.Wrap(services.ErrConfiguration, "watch", "config", "watch.inbox_dir is not set", nil)
	}
	maxConcurrent := cfg.Watch.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	lockPath := filepath.Join(cfg.Paths.LogDir, lockFileName)
	return &Watcher{
		cfg:      cfg,
		svc:      svc,
		logger:   logging.NewComponentLogger(logger, "watch"),
		inbox:    inbox,
		settle:   time.Duration(cfg.Watch.SettleDelayMS) * time.Millisecond,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		sem:      make(chan struct{}, maxConcurrent),
		ready:    make(chan string, 16),
		pending:  make(map[string]*time.Timer),
		active:   make(map[string]struct{}),
	}, nil
}

// OnDone registers a callback invoked after each ingestion finishes.
func (w *Watcher) OnDone(fn func(path string, result *workflow.AnalysisResult, err error)) {
	w.onDone = fn
}

// Run watches the inbox until ctx is canceled, then waits for in-flight
// analyses to finish. A second watcher on the same log directory fails with
// services.ErrConflict.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		return errors.New("watcher already running")
	}
	defer w.running.Store(false)

	ok, err := w.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire watch lock: %w", err)
	}
	if !ok {
		return services.Wrap(services.ErrConflict, "watch", "lock", "another clipflow watcher is already running", nil)
	}
	defer func() {
		if err := w.lock.Unlock(); err != nil {
			w.logger.Warn("failed to release watch lock", logging.Error(err))
		}
	}()

	if err := os.MkdirAll(w.inbox, 0o755); err != nil {
		return fmt.Errorf("ensure inbox: %w", err)
	}
	if reset, err := w.svc.Store().ResetStuckAnalyzing(ctx); err != nil {
		return fmt.Errorf("reset interrupted analyses: %w", err)
	} else if reset > 0 {
		logging.WarnWithContext(w.logger, "marked interrupted analyses as failed", "analysis_interrupted",
			logging.Alert("analysis_interrupted"),
			logging.Int64("projects", reset),
			logging.String(logging.FieldImpact, "projects need to be re-analyzed"),
			logging.String(logging.FieldErrorHint, "run clipflow analyze <id>"),
		)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()
	if err := fsw.Add(w.inbox); err != nil {
		return fmt.Errorf("add watch path: %w", err)
	}

	w.logger.Info("watching inbox",
		logging.String(logging.FieldEventType, "watch_start"),
		logging.String("inbox", w.inbox),
		logging.Int("max_concurrent", cap(w.sem)),
		logging.Duration("settle_delay", w.settle),
	)
	w.mu.Lock()
	w.stop = make(chan struct{})
	w.mu.Unlock()
	defer w.shutdown()

	w.scanExisting()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				w.schedule(event.Name)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Warn("watcher error", logging.Error(err))
		case path := <-w.ready:
			w.dispatch(ctx, path)
		}
	}
}

func (w *Watcher) scanExisting() {
	entries, err := os.ReadDir(w.inbox)
	if err != nil {
		w.logger.Warn("failed to scan inbox", logging.Error(err))
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			w.schedule(filepath.Join(w.inbox, entry.Name()))
		}
	}
}

// schedule (re)starts the settle timer for path. Writes keep pushing the
// timer back so a file is only picked up once it stops growing.
func (w *Watcher) schedule(path string) {
	if !workflow.IsVideoFile(path) {
		w.logger.Debug("ignoring non-video file", logging.String("path", path))
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, busy := w.active[path]; busy {
		return
	}
	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.settle)
		return
	}
	stop := w.stop
	w.pending[path] = time.AfterFunc(w.settle, func() { w.settled(path, stop) })
}

// settled hands a quiet file to the Run loop. Once stop is closed the loop
// no longer reads ready, so the path is dropped instead.
func (w *Watcher) settled(path string, stop <-chan struct{}) {
	w.mu.Lock()
	delete(w.pending, path)
	if _, err := os.Stat(path); err != nil {
		w.mu.Unlock()
		return
	}
	w.active[path] = struct{}{}
	w.mu.Unlock()

	select {
	case w.ready <- path:
	case <-stop:
		w.release(path)
	}
}

func (w *Watcher) dispatch(ctx context.Context, path string) {
	select {
	case w.sem <- struct{}{}:
	case <-ctx.Done():
		w.release(path)
		return
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() { <-w.sem }()
		defer w.release(path)

		result, err := w.svc.Ingest(ctx, path)
		if err != nil {
			w.logger.Error("ingestion failed",
				logging.String(logging.FieldEventType, "ingest_failure"),
				logging.String("path", path),
				logging.String("error_kind", services.Kind(err)),
				logging.Error(err),
			)
		}
		if w.onDone != nil {
			w.onDone(path, result, err)
		}
	}()
}

func (w *Watcher) release(path string) {
	w.mu.Lock()
	delete(w.active, path)
	w.mu.Unlock()
}

func (w *Watcher) shutdown() {
	w.mu.Lock()
	if w.stop != nil {
		close(w.stop)
	}
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	w.logger.Info("waiting for in-flight analyses")
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	// Paths sent before stop closed are still buffered.
	for {
		select {
		case <-done:
			w.logger.Info("inbox watcher stopped", logging.String(logging.FieldEventType, "watch_stop"))
			return
		case path := <-w.ready:
			w.release(path)
		}
	}
}
