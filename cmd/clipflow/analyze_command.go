package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"clipflow/internal/logging"
	"clipflow/internal/slicer"
	"clipflow/internal/workflow"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var reslice bool
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "analyze <id>",
		Short: "Transcribe a project's source and cut it into segments",
		Long: "Run the full pipeline: probe, extract audio, transcribe with WhisperX, detect cue markers, and slice.\n" +
			"With --reslice the stored transcript is reused and only detection and slicing run again.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(false)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			var progress workflow.ProgressFunc
			if !asJSON {
				progress = newProgressPrinter(out, shouldColorize(out)).report
			}

			run := svc.Analyze
			if reslice {
				run = svc.Reslice
			}
			result, err := run(cmd.Context(), args[0], progress)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, map[string]any{
					"project":  newProjectView(result.Project),
					"markers":  result.Markers,
					"segments": result.Segments,
				})
			}
			fmt.Fprintf(out, "Analyzed %s: %d markers, %d segments, %.3fs kept of %.3fs\n",
				result.Project.ID,
				len(result.Markers),
				len(result.Segments),
				slicer.KeptDuration(result.Segments),
				result.Project.DurationSeconds,
			)
			if len(result.Segments) > 0 {
				fmt.Fprintln(out, renderTable(segmentColumns, segmentRows(result.Segments)))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&reslice, "reslice", false, "Reuse the stored transcript")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

// progressPrinter writes one line per stage change or 10% step. On a
// terminal it redraws a single line instead.
type progressPrinter struct {
	out      io.Writer
	terminal bool
	sampler  *logging.ProgressSampler
}

func newProgressPrinter(out io.Writer, terminal bool) *progressPrinter {
	return &progressPrinter{out: out, terminal: terminal, sampler: logging.NewProgressSampler(0.1)}
}

func (p *progressPrinter) report(stage string, fraction float64) {
	if !p.sampler.ShouldLog(fraction, stage) {
		return
	}
	line := fmt.Sprintf("%-10s %4s", stage, formatPercent(fraction))
	if p.terminal {
		fmt.Fprintf(p.out, "\r\x1b[2K%s", line)
		if fraction >= 1 {
			fmt.Fprintln(p.out)
		}
		return
	}
	fmt.Fprintln(p.out, line)
}
