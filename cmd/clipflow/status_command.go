package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipflow/internal/project"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status [id]",
		Short: "Show analysis status for one project, or counts for all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(false)
			if err != nil {
				return err
			}
			store := svc.Store()
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			if len(args) == 0 {
				counts, err := store.CountByStatus(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, counts)
				}
				for _, status := range project.AllStatuses() {
					fmt.Fprintln(out, renderStatusLine(string(status), projectStatusKind(status), fmt.Sprintf("%d", counts[status]), colorize))
				}
				return nil
			}

			p, err := store.MustGet(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			running, err := svc.AnalysisRunning(p.ID)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, map[string]any{
					"id":            p.ID,
					"status":        p.Status,
					"progress":      p.Progress,
					"error_message": p.ErrorMessage,
					"running":       running,
				})
			}
			fmt.Fprintln(out, renderStatusLine("Project", statusInfo, p.ID+" "+p.Name, colorize))
			fmt.Fprintln(out, renderStatusLine("Status", projectStatusKind(p.Status), string(p.Status), colorize))
			fmt.Fprintln(out, renderStatusLine("Progress", statusInfo, formatPercent(p.Progress), colorize))
			fmt.Fprintln(out, renderStatusLine("Analysis running", statusInfo, yesNo(running), colorize))
			if p.ErrorMessage != "" {
				fmt.Fprintln(out, renderStatusLine("Error", statusError, p.ErrorMessage, colorize))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
