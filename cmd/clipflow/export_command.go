package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clipflow/internal/workflow"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var output string
	var toStdout bool
	names := make([]string, 0, len(workflow.Formats))
	for _, f := range workflow.Formats {
		names = append(names, string(f))
	}
	cmd := &cobra.Command{
		Use:       "export <" + strings.Join(names, "|") + "> <id>",
		Short:     "Export enabled keep segments",
		Long:      "Write an edit decision list (edl), FCP XML (xml), subtitles (srt), or a cut video (video) from the enabled keep segments.",
		Args:      cobra.ExactArgs(2),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := workflow.ParseFormat(args[0])
			if err != nil {
				return err
			}
			svc, err := ctx.service(format == workflow.FormatVideo)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if toStdout {
				content, err := svc.Render(cmd.Context(), args[1], format)
				if err != nil {
					return err
				}
				fmt.Fprint(out, content)
				return nil
			}
			result, err := svc.Export(cmd.Context(), args[1], format, output)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Wrote %s (%d segments) to %s\n", result.Format, result.Segments, result.Path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file (default: the project's exports directory)")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Print the document instead of writing a file (not for video)")
	return cmd
}
