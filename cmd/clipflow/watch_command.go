package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipflow/internal/config"
	"clipflow/internal/preflight"
	"clipflow/internal/services"
	"clipflow/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var inbox string
	var skipChecks bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Analyze every video dropped into the inbox directory",
		Long:  "Watch watch.inbox_dir and turn each new video into an analyzed project. Runs until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("inbox") {
				expanded, err := config.ExpandPath(inbox)
				if err != nil {
					return fmt.Errorf("resolve inbox path: %w", err)
				}
				cfg.Watch.InboxDir = expanded
				if err := cfg.EnsureDirectories(); err != nil {
					return err
				}
			}
			if !skipChecks {
				if summary := preflight.Summary(preflight.RunAll(cmd.Context(), cfg)); summary != "" {
					return services.Wrap(services.ErrPrecondition, "watch", "preflight", summary, nil)
				}
			}
			svc, err := ctx.service(true)
			if err != nil {
				return err
			}
			logger, err := ctx.logger(true)
			if err != nil {
				return err
			}
			w, err := watch.New(cfg, svc, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", cfg.Watch.InboxDir)
			return w.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&inbox, "inbox", "", "Inbox directory (overrides watch.inbox_dir)")
	cmd.Flags().BoolVar(&skipChecks, "skip-checks", false, "Skip dependency and directory checks")
	return cmd
}
