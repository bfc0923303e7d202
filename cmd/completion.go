package cmd

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// completionCmd wraps Cobra's built-in shell completion generator.
// Trend-name arguments complete from the live catalogue.
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for trendguard.

  source <(trendguard completion bash)
  source <(trendguard completion zsh)
  trendguard completion fish | source

Trend names after 'trends analyze', 'trends health' and 'trends scan'
are completed from the analysis service when it is reachable.`,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	DisableFlagsInUseLine: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		root := cmd.Root()
		switch args[0] {
		case "bash":
			return root.GenBashCompletionV2(cmd.OutOrStdout(), true)
		case "zsh":
			return root.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return root.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return root.GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
		default:
			return cmd.Help()
		}
	},
}

// completionTimeout bounds the catalogue lookup so a down service never
// stalls the shell.
const completionTimeout = 2 * time.Second

// completeTrendNames offers catalogue entries matching toComplete, skipping
// names already on the command line.
func completeTrendNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	deps, err := buildDeps()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer deps.Close()

	ctx, cancel := context.WithTimeout(context.Background(), completionTimeout)
	defer cancel()
	list, err := deps.Client.ListTrends(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	used := make(map[string]bool, len(args))
	for _, a := range args {
		used[a] = true
	}
	var out []string
	for _, t := range list.Trends {
		if used[t.TrendName] || !strings.HasPrefix(strings.ToLower(t.TrendName), strings.ToLower(toComplete)) {
			continue
		}
		out = append(out, t.TrendName+"\t"+t.Archetype)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func singleTrendName(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return completeTrendNames(cmd, args, toComplete)
}

func init() {
	rootCmd.AddCommand(completionCmd)

	trendsAnalyzeCmd.ValidArgsFunction = singleTrendName
	trendsHealthCmd.ValidArgsFunction = singleTrendName
	trendsStatsCmd.ValidArgsFunction = singleTrendName
	trendsScanCmd.ValidArgsFunction = completeTrendNames
}
