package preflight

import (
	"context"
	"fmt"
	"strings"

	"clipflow/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	if strings.TrimSpace(cfg.Watch.InboxDir) != "" {
		results = append(results, CheckDirectoryAccess("Inbox directory", cfg.Watch.InboxDir))
	}
	for _, status := range CheckSystemDeps(ctx, cfg) {
		r := Result{Name: status.Name, Passed: status.Available || status.Optional, Detail: status.Detail}
		if status.Available {
			r.Detail = status.Command
		}
		results = append(results, r)
	}
	if cfg.WhisperX.CUDAEnabled {
		results = append(results, CheckCUDA())
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// Summary joins failed results into a single line.
func Summary(results []Result) string {
	parts := make([]string, 0, len(results))
	for _, r := range Failed(results) {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return strings.Join(parts, "; ")
}
