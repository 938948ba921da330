package main

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/cardsync/cmd/cardsync/commands"
	"github.com/walteh/cardsync/cmd/cardsync/opts"
	"github.com/walteh/cardsync/pkg/config"
	"github.com/walteh/cardsync/pkg/git"
	"github.com/walteh/cardsync/pkg/log"
	"github.com/walteh/cardsync/pkg/precondition"
	"gitlab.com/tozd/go/errors"
)

// run executes the command line and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootOpts := &opts.RootOpts{}
	rootCmd := newRootCmd(rootOpts, stdout, stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		console := log.New(stderr, zerolog.Nop())
		console.Error(err.Error())
	}
	return exitCode(err)
}

func newRootCmd(rootOpts *opts.RootOpts, stdout, stderr io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cardsync",
		Short: "Publish health card exports into a GitHub Pages site",
		Long: `cardsync copies an exported health card folder (report, images and
sites index) into a static site clone, flattening image links so the report
works from the healthcards folder, and optionally commits and pushes it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			rootOpts.ConfigExplicit = cmd.Flags().Changed("config")
			zlog := setupLogging(rootOpts.Debug, stderr)
			ctx := zlog.WithContext(cmd.Context())
			ctx = log.NewContext(ctx, log.New(stdout, zlog))
			cmd.SetContext(ctx)
			return nil
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	addRootFlags(rootCmd, rootOpts)

	rootCmd.AddCommand(
		commands.NewSyncCmd(rootOpts),
		commands.NewPlanCmd(rootOpts),
		commands.NewCleanCmd(rootOpts),
		commands.NewPagesCmd(rootOpts),
	)
	return rootCmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, rootOpts *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&rootOpts.ConfigFile, "config", "c", config.DefaultFile, "config file path (.yaml, .yml, .hcl or .json)")
	cmd.PersistentFlags().BoolVarP(&rootOpts.Debug, "debug", "d", false, "enable debug logging")
}

// setupLogging builds the structured logger, silent unless debugging since
// the console logger already tells the user what happened
func setupLogging(debug bool, stderr io.Writer) zerolog.Logger {
	if !debug {
		return zerolog.New(stderr).Level(zerolog.Disabled)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: stderr}).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

// exitCode maps a command error to the process exit status
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if precondition.Is(err) {
		return 2
	}
	var cmdErr *git.CommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitCode > 0 {
		return cmdErr.ExitCode
	}
	return 1
}
