package app

import (
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/motorlot/lotsync/pkg/logging"
	"github.com/motorlot/lotsync/pkg/sync"
)

// NewSyncCommand creates the sync command: one batch run against the
// configured backend.
func (a *App) NewSyncCommand() *cobra.Command {
	var (
		batchSize int
		delay     time.Duration
		manual    bool
		startRow  int
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one synchronization batch",
		Long: `Sync loads the inventory sheet and processes eligible records in source
order: publishing purchased vehicles, updating changed ones, and trashing
retired ones. The run stops after the batch cap and can be resumed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := a.Engine()
			if err != nil {
				return err
			}

			ctx := logging.WithLogger(cmd.Context(), a.logger)

			var opts []sync.Option
			if batchSize > 0 {
				opts = append(opts, sync.WithBatchSize(batchSize))
			}
			if cmd.Flags().Changed("delay") {
				opts = append(opts, sync.WithDelay(delay))
			}
			if manual || startRow > 0 {
				opts = append(opts, sync.WithManualStart(startRow))
			}

			result, err := engine.Sync(ctx, opts...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Summary())
			return nil
		},
	}

	cmd.Flags().IntVarP(&batchSize, "batch", "b", 0, "records to process this run (default from config)")
	cmd.Flags().DurationVar(&delay, "delay", sync.DefaultDelay, "pause between records")
	cmd.Flags().BoolVarP(&manual, "manual", "m", false, "bypass the modified-since check and resume from the stored offset")
	cmd.Flags().IntVar(&startRow, "start-row", 0, "start from this sheet row (implies --manual)")

	return cmd
}

// NewOffsetCommand creates the offset command group: show, set, and clear
// the manual start-row checkpoint.
func (a *App) NewOffsetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "offset",
		Short: "Manage the manual start-row checkpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the stored start row",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.StateStore()
			if err != nil {
				return err
			}
			row, err := store.ManualStartRow()
			if err != nil {
				return err
			}
			if row == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no offset set")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "next manual run starts at row %d\n", row)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <row>",
		Short: "Set the start row for the next manual run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid row %q: %w", args[0], err)
			}
			store, err := a.StateStore()
			if err != nil {
				return err
			}
			if err := store.SetManualStartRow(row); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "offset set to row %d\n", row)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear the stored start row",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.StateStore()
			if err != nil {
				return err
			}
			if err := store.ClearManualStartRow(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "offset cleared")
			return nil
		},
	})

	return cmd
}

// NewStatusCommand creates the status command: the most recent recorded run
// and the stored manual offset, if any.
func (a *App) NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the last run and the stored offset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.StateStore()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			run, err := store.LastRun(cmd.Context())
			if err != nil {
				return err
			}
			if run == nil {
				fmt.Fprintln(out, "no runs recorded")
			} else {
				fmt.Fprintf(out, "last run %s started %s\n", run.ID, run.StartedAt.Format(time.RFC3339))
				if !run.FinishedAt.IsZero() {
					fmt.Fprintf(out, "finished %s: %d processed, %d failed\n",
						run.FinishedAt.Format(time.RFC3339), run.Processed, run.Failed)
				}
				if run.Error != "" {
					fmt.Fprintf(out, "error: %s\n", run.Error)
				}
			}

			row, err := store.ManualStartRow()
			if err != nil {
				return err
			}
			if row != 0 {
				fmt.Fprintf(out, "next manual run starts at row %d\n", row)
			}
			return nil
		},
	}
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "lotsync version %s\n", a.version)
			fmt.Fprintf(out, "commit: %s\n", a.commit)
			fmt.Fprintf(out, "built: %s\n", a.date)
			fmt.Fprintf(out, "go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
