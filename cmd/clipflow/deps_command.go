package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clipflow/internal/deps"
	"clipflow/internal/preflight"
	"clipflow/internal/services"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Check external binaries and directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)
			results := preflight.RunAll(cmd.Context(), cfg)
			if asJSON {
				return writeJSON(cmd, map[string]any{
					"dependencies": statuses,
					"checks":       results,
				})
			}

			out := cmd.OutOrStdout()
			for _, line := range dependencyLines(statuses, shouldColorize(out)) {
				fmt.Fprintln(out, line)
			}
			failed := preflight.Failed(results)
			if len(failed) > 0 {
				return services.Wrap(services.ErrPrecondition, "deps", "check", preflight.Summary(results), nil)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func dependencyLines(statuses []deps.Status, colorize bool) []string {
	missing := deps.Missing(statuses)
	summaryKind := statusOK
	available := 0
	for _, s := range statuses {
		if s.Available {
			available++
		}
	}
	summary := fmt.Sprintf("%d of %d available", available, len(statuses))
	if len(missing) > 0 {
		summaryKind = statusError
	}
	lines := []string{renderStatusLine("Summary", summaryKind, summary, colorize)}
	for _, s := range statuses {
		switch {
		case s.Available:
			lines = append(lines, renderStatusLine(s.Name, statusOK, fmt.Sprintf("Ready (command: %s)", s.Command), colorize))
		case s.Optional:
			lines = append(lines, renderStatusLine(s.Name, statusWarn, s.Detail, colorize))
		default:
			detail := s.Detail
			if detail == "" {
				detail = "not available"
			}
			lines = append(lines, renderStatusLine(s.Name, statusError, detail, colorize))
		}
	}
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, m := range missing {
			names = append(names, m.Name)
		}
		lines = append(lines, statusIndent+"Missing dependencies: "+strings.Join(names, ", "))
	}
	return lines
}
