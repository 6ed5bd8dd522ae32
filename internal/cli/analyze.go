package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/triage/internal/bootstrap"
)

func newAnalyzeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <text>",
		Short: "Analyze one message and print the result as JSON",
		Long:  "Runs the analysis pipeline once without touching the database.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.stderrLogs = true
			cfg, logger, err := setup(opts)
			if err != nil {
				return err
			}

			models, err := bootstrap.SetupModels(cfg, nil, nil, logger)
			if err != nil {
				return err
			}
			p := bootstrap.SetupPipeline(cfg, models, nil, nil, logger)

			analysis := p.Analyze(cmd.Context(), strings.Join(args, " "))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err = enc.Encode(analysis); err != nil {
				return fmt.Errorf("encode analysis: %w", err)
			}
			return nil
		},
	}
}
