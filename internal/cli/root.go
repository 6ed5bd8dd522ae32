// Package cli implements the triage command line.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	infralogger "github.com/jonesrussell/north-cloud/triage/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/triage/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/triage/internal/config"
)

// Version is set at build time with -ldflags.
var Version = "dev"

type options struct {
	configPath string
	debug      bool
	// stderrLogs keeps stdout clean for commands that print results.
	stderrLogs bool
}

// NewRootCommand builds the command tree. Running it without a subcommand
// starts the server.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "triage",
		Short:         "Conversational mental-health triage service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"config file (default is $CONFIG_PATH or ./config.yml)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug mode")

	root.AddCommand(
		newServeCommand(opts),
		newMigrateCommand(opts),
		newAnalyzeCommand(opts),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command.
func Execute(ctx context.Context, args []string, out io.Writer) error {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(out)
	return root.ExecuteContext(ctx)
}

// setup loads configuration and the logger shared by every subcommand.
func setup(opts *options) (*config.Config, infralogger.Logger, error) {
	cfg, err := bootstrap.LoadConfig(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	if opts.debug {
		cfg.Service.Debug = true
		cfg.Logging.Level = "debug"
	}
	if opts.stderrLogs {
		cfg.Logging.OutputPaths = []string{"stderr"}
	}
	if Version != "dev" {
		cfg.Service.Version = Version
	}

	logger, err := bootstrap.CreateLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "triage version %s\n", Version)
		},
	}
}
