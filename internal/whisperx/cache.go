package whisperx

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"clipflow/internal/logging"
	"clipflow/internal/transcript"
)

// Cache hands out one Model per model size. It is safe for concurrent use.
type Cache struct {
	cfg    Config
	logger *slog.Logger
	run    CommandRunner

	mu     sync.Mutex
	models map[string]*Model
}

// NewCache creates an empty cache. logger may be nil.
func NewCache(cfg Config, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Cache{
		cfg:    cfg.withDefaults(),
		logger: logging.NewComponentLogger(logger, "whisperx"),
		run:    execRunner,
		models: make(map[string]*Model),
	}
}

// WithCommandRunner sets a custom command runner (for testing). It applies
// to models created after the call.
func (c *Cache) WithCommandRunner(runner CommandRunner) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if runner == nil {
		runner = execRunner
	}
	c.run = runner
}

// Config returns the effective configuration.
func (c *Cache) Config() Config {
	return c.cfg
}

// Model returns the cached model for size, creating it on first use. An
// empty size selects the configured default.
func (c *Cache) Model(size string) *Model {
	size = strings.TrimSpace(size)
	if size == "" {
		size = c.cfg.Model
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.models[size]; ok {
		return m
	}
	m := &Model{
		size:   size,
		cfg:    c.cfg,
		run:    c.run,
		logger: c.logger.With(logging.String("model", size)),
	}
	c.models[size] = m
	return m
}

// Sizes lists the cached model sizes in sorted order.
func (c *Cache) Sizes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	sizes := make([]string, 0, len(c.models))
	for size := range c.models {
		sizes = append(sizes, size)
	}
	sort.Strings(sizes)
	return sizes
}

// Purge drops every cached model.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models = make(map[string]*Model)
}

// Transcribe runs the cached model for size. It lets a Cache stand in
// wherever a single transcription entry point is expected.
func (c *Cache) Transcribe(ctx context.Context, audio, outputDir, size, language string, progress ProgressFunc) (transcript.Transcript, error) {
	return c.Model(size).Transcribe(ctx, audio, outputDir, language, progress)
}
