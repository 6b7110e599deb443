// Package logging assembles structured slog loggers and formatting helpers used
// across ClipFlow.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with project IDs, stages, and correlation IDs. The package also
// provides a no-op logger for tests and for pure components that accept an
// optional logger.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape as the rest of the system.
package logging
