package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipflow/internal/services"
)

func newTranscriptCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "transcript <id>",
		Short: "Print a project's transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			if _, err := store.MustGet(cmd.Context(), args[0]); err != nil {
				return err
			}
			tr, err := store.Transcript(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if tr == nil {
				return services.Wrap(services.ErrPrecondition, "cli", "transcript",
					fmt.Sprintf("project %s has not been transcribed yet", args[0]), nil)
			}
			if asJSON {
				return writeJSON(cmd, tr)
			}
			out := cmd.OutOrStdout()
			for _, seg := range tr.Segments {
				fmt.Fprintf(out, "[%s - %s] %s\n", formatSeconds(seg.Start), formatSeconds(seg.End), seg.Text)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newMarkersCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "markers <id>",
		Short: "List the cue markers found in a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			if _, err := store.MustGet(cmd.Context(), args[0]); err != nil {
				return err
			}
			markers, err := store.Markers(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, markers)
			}
			if len(markers) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No markers")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(markerColumns, markerRows(markers)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
