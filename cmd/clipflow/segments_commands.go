package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipflow/internal/slicer"
)

func newSegmentsCommand(ctx *commandContext) *cobra.Command {
	segmentsCmd := &cobra.Command{
		Use:   "segments",
		Short: "Review and adjust a project's segments",
	}
	segmentsCmd.AddCommand(newSegmentsListCommand(ctx))
	segmentsCmd.AddCommand(newSegmentsToggleCommand(ctx))
	segmentsCmd.AddCommand(newSegmentsSetCommand(ctx))
	return segmentsCmd
}

func newSegmentsListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "list <id>",
		Aliases: []string{"ls"},
		Short:   "List segments in timeline order",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			if _, err := store.MustGet(cmd.Context(), args[0]); err != nil {
				return err
			}
			segments, err := store.Segments(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, segments)
			}
			out := cmd.OutOrStdout()
			if len(segments) == 0 {
				fmt.Fprintln(out, "No segments")
				return nil
			}
			fmt.Fprintln(out, renderTable(segmentColumns, segmentRows(segments)))
			fmt.Fprintf(out, "Kept: %.3fs\n", slicer.KeptDuration(segments))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newSegmentsToggleCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id> <segment-id>",
		Short: "Enable or disable a segment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(false)
			if err != nil {
				return err
			}
			seg, err := svc.ToggleSegment(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			state := "disabled"
			if seg.Enabled {
				state = "enabled"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Segment %s %s\n", seg.ID, state)
			return nil
		},
	}
}

func newSegmentsSetCommand(ctx *commandContext) *cobra.Command {
	var start, end float64
	cmd := &cobra.Command{
		Use:   "set <id> <segment-id>",
		Short: "Move a segment's start and/or end",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var startPtr, endPtr *float64
			if cmd.Flags().Changed("start") {
				startPtr = &start
			}
			if cmd.Flags().Changed("end") {
				endPtr = &end
			}
			svc, err := ctx.service(false)
			if err != nil {
				return err
			}
			seg, err := svc.PatchSegment(cmd.Context(), args[0], args[1], startPtr, endPtr)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Segment %s now %s - %s\n", seg.ID, formatSeconds(seg.Start), formatSeconds(seg.End))
			return nil
		},
	}
	cmd.Flags().Float64Var(&start, "start", 0, "New start in seconds")
	cmd.Flags().Float64Var(&end, "end", 0, "New end in seconds")
	return cmd
}
