package cmd

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/trendguard/trendguard/internal/model"
	"github.com/trendguard/trendguard/internal/orchestrator"
)

// healthCmd reports whether the analysis service and its collectors are up.
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the analysis service and its collectors",
	Example: `  trendguard health
  trendguard health --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		start := time.Now()
		health, err := deps.Client.HealthCheck(cmd.Context())
		if err != nil {
			return errors.New(orchestrator.UserMessage(err, "analysis service unreachable at "+deps.Client.BaseURL()))
		}
		result := newResult(model.KindServiceHealth, commandLine(cmd, args), health, len(health.Services)+1, start)
		return emit(cmd, deps, result)
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
