package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"clipflow/internal/project"
	"clipflow/internal/services"
	"clipflow/internal/workflow"
)

func newProjectCommand(ctx *commandContext) *cobra.Command {
	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Create, inspect, and remove projects",
	}
	projectCmd.AddCommand(newProjectCreateCommand(ctx))
	projectCmd.AddCommand(newProjectListCommand(ctx))
	projectCmd.AddCommand(newProjectShowCommand(ctx))
	projectCmd.AddCommand(newProjectDeleteCommand(ctx))
	projectCmd.AddCommand(newProjectImportCommand(ctx))
	projectCmd.AddCommand(newProjectSettingsCommand(ctx))
	return projectCmd
}

// settingsFlags holds the per-project analysis overrides shared by create and
// settings.
type settingsFlags struct {
	mode       string
	language   string
	model      string
	ng         []string
	ok         []string
	start      []string
	end        []string
	preBuffer  float64
	postBuffer float64
	maxWindow  int
}

func (f *settingsFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.mode, "mode", "", "Slicing mode (backtrack or interval)")
	flags.StringVar(&f.language, "language", "", "Transcription language code, or auto")
	flags.StringVar(&f.model, "model", "", "WhisperX model size")
	flags.StringSliceVar(&f.ng, "ng", nil, "NG keywords (repeat or comma-separate)")
	flags.StringSliceVar(&f.ok, "ok", nil, "OK keywords")
	flags.StringSliceVar(&f.start, "start", nil, "START keywords")
	flags.StringSliceVar(&f.end, "end", nil, "END keywords")
	flags.Float64Var(&f.preBuffer, "pre-buffer", 0, "Seconds kept before each cut")
	flags.Float64Var(&f.postBuffer, "post-buffer", 0, "Seconds kept after each cut")
	flags.IntVar(&f.maxWindow, "max-window-words", 0, "Words joined when matching long keywords")
}

// apply overlays the flags the user actually set onto base.
func (f *settingsFlags) apply(flags *pflag.FlagSet, base project.Settings) project.Settings {
	if flags.Changed("mode") {
		base.Mode = strings.ToLower(strings.TrimSpace(f.mode))
	}
	if flags.Changed("language") {
		base.Language = strings.TrimSpace(f.language)
	}
	if flags.Changed("model") {
		base.Model = strings.TrimSpace(f.model)
	}
	if flags.Changed("ng") {
		base.NGKeywords = f.ng
	}
	if flags.Changed("ok") {
		base.OKKeywords = f.ok
	}
	if flags.Changed("start") {
		base.StartKeywords = f.start
	}
	if flags.Changed("end") {
		base.EndKeywords = f.end
	}
	if flags.Changed("pre-buffer") {
		base.PreBuffer = f.preBuffer
	}
	if flags.Changed("post-buffer") {
		base.PostBuffer = f.postBuffer
	}
	if flags.Changed("max-window-words") {
		base.MaxWindowWords = f.maxWindow
	}
	return base
}

func newProjectCreateCommand(ctx *commandContext) *cobra.Command {
	var flags settingsFlags
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			settings := flags.apply(cmd.Flags(), project.SettingsFromConfig(cfg))
			if err := settings.Validate(); err != nil {
				return err
			}
			svc, err := ctx.service(false)
			if err != nil {
				return err
			}
			p, err := svc.CreateProject(cmd.Context(), args[0], &settings)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, newProjectView(p))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%s)\n", p.ID, p.Name)
			return nil
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newProjectListCommand(ctx *commandContext) *cobra.Command {
	var statusFilters []string
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := make([]project.Status, 0, len(statusFilters))
			for _, raw := range statusFilters {
				status, ok := project.ParseStatus(raw)
				if !ok {
					return services.Wrap(services.ErrValidation, "cli", "list", fmt.Sprintf("unknown status %q", raw), nil)
				}
				statuses = append(statuses, status)
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			projects, err := store.List(cmd.Context(), statuses...)
			if err != nil {
				return err
			}
			if asJSON {
				views := make([]projectView, 0, len(projects))
				for _, p := range projects {
					views = append(views, newProjectView(p))
				}
				return writeJSON(cmd, views)
			}
			if len(projects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(projectColumns, projectRows(projects)))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&statusFilters, "status", nil, "Only show projects in these states")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newProjectShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a project's details and settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			p, err := store.MustGet(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, newProjectView(p))
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader(p.Name, colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Status", projectStatusKind(p.Status), string(p.Status), colorize))
			s := p.Settings
			rows := [][]string{
				{"ID", p.ID},
				{"Source", p.SourceFilename},
				{"Duration", formatSeconds(p.DurationSeconds)},
				{"Mode", s.Mode},
				{"Language", s.Language},
				{"Model", s.Model},
				{"Buffers", fmt.Sprintf("pre %.3fs / post %.3fs", s.PreBuffer, s.PostBuffer)},
				{"NG", strings.Join(s.NGKeywords, ", ")},
				{"OK", strings.Join(s.OKKeywords, ", ")},
				{"START", strings.Join(s.StartKeywords, ", ")},
				{"END", strings.Join(s.EndKeywords, ", ")},
			}
			if p.ErrorMessage != "" {
				rows = append(rows, []string{"Error", p.ErrorMessage})
			}
			fmt.Fprintln(out, renderTable([]column{{header: "Field"}, {header: "Value"}}, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newProjectDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a project and its files",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(false)
			if err != nil {
				return err
			}
			if err := svc.DeleteProject(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", args[0])
			return nil
		},
	}
}

func newProjectImportCommand(ctx *commandContext) *cobra.Command {
	var move bool
	cmd := &cobra.Command{
		Use:   "import <id> <video>",
		Short: "Attach a source video to a project",
		Long: "Copy (or with --move, relocate) a video into the project. Supported containers: " +
			strings.Join(workflow.VideoExtensions, " ") + ". Any previous analysis is discarded.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(false)
			if err != nil {
				return err
			}
			p, err := svc.ImportSource(cmd.Context(), args[0], args[1], workflow.ImportOptions{Move: move})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s into %s\n", p.SourceFilename, p.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&move, "move", false, "Move the file instead of copying it")
	return cmd
}

func newProjectSettingsCommand(ctx *commandContext) *cobra.Command {
	var flags settingsFlags
	cmd := &cobra.Command{
		Use:   "settings <id>",
		Short: "Change a project's analysis settings",
		Long:  "Change keywords, mode, or buffers. Run `clipflow analyze --reslice` afterwards to apply them without transcribing again.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(false)
			if err != nil {
				return err
			}
			p, err := svc.Store().MustGet(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			updated, err := svc.UpdateSettings(cmd.Context(), p.ID, flags.apply(cmd.Flags(), p.Settings))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated settings for %s (mode %s)\n", updated.ID, updated.Settings.Mode)
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}
