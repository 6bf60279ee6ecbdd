package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the lotsync CLI with the given arguments. This is the main
// entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "lotsync",
		Short:   "Vehicle inventory to CMS synchronization",
		Version: a.version,
		Long: `Lotsync synchronizes a tabular vehicle inventory into a content backend.

Purchased vehicles are published as posts with their taxonomy terms,
photos, and relations; retired vehicles are trashed. Runs are batched,
rate-limited, and resumable through a persisted checkpoint.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.config.ConfigFile, "config", "", "config file (default is $HOME/.lotsync.yaml)")
	pf.BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	pf.BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	pf.Bool("no-color", false, "disable colored output")
	pf.String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	pf.StringVar(&a.config.SheetPath, "sheet", a.config.SheetPath, "path to the inventory CSV file")
	pf.StringVar(&a.config.StatePath, "state", a.config.StatePath, "path to the state database")

	rootCmd.SetVersionTemplate("lotsync {{.Version}}\n")

	rootCmd.AddCommand(a.NewSyncCommand())
	rootCmd.AddCommand(a.NewOffsetCommand())
	rootCmd.AddCommand(a.NewStatusCommand())
	rootCmd.AddCommand(a.NewVersionCommand())

	return rootCmd
}

// setupCommand runs before any command: it folds parsed flags back into the
// config and reinitializes the logger accordingly.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	verbose := mustGetBool(cmd, "verbose")
	quiet := mustGetBool(cmd, "quiet")
	noColor := mustGetBool(cmd, "no-color")
	logLevel := mustGetString(cmd, "log-level")

	a.config.UpdateFromFlags(verbose, quiet, noColor, logLevel)

	logger := NewLogger(a.config)
	a.logger = &logger
	return nil
}

// ExitOnError prints an error and exits with status 1. Meant for top-level
// error handling in main.go.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag or panics; only for flags defined in
// this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag or panics; only for flags defined
// in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
