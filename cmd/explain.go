package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/trendguard/trendguard/internal/insight"
	"github.com/trendguard/trendguard/internal/model"
	"github.com/trendguard/trendguard/internal/pipeline"
)

var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Explain saved analyses without calling the service",
	Long: `Read an analysis document previously returned by the service and render
it exactly as the online commands would. Input is a file argument or stdin.

Examples:
  curl -s -d '{"trend_name":"planking"}' localhost:8000/api/trends/analyze | trendguard explain trend
  trendguard explain campaign result.json --format md
  trendguard trends scan --raw | trendguard explain trend --stream --format csv`,
}

// ─── explain campaign ─────────────────────────────────────────────────────────

var explainCampaignCmd = &cobra.Command{
	Use:   "campaign [FILE]",
	Short: "Render a saved campaign analysis",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		r, closeFn, err := readInput(cmd, firstArg(args))
		if err != nil {
			return err
		}
		defer closeFn()

		res, err := pipeline.ReadCampaignResult(r)
		if err != nil {
			return err
		}
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		view := insight.AssembleCampaign(res)
		result := newResult(model.KindCampaign, commandLine(cmd, args), &view, 1, start)
		result.Warnings = view.Warnings
		return emit(cmd, deps, result)
	},
}

// ─── explain trend ────────────────────────────────────────────────────────────

var explainStream bool

var explainTrendCmd = &cobra.Command{
	Use:   "trend [FILE]",
	Short: "Render a saved trend analysis (or a JSONL stream with --stream)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		r, closeFn, err := readInput(cmd, firstArg(args))
		if err != nil {
			return err
		}
		defer closeFn()

		var analyses []model.TrendAnalysis
		if explainStream {
			analyses, err = pipeline.ReadTrendAnalyses(r)
		} else {
			var a *model.TrendAnalysis
			if a, err = pipeline.ReadTrendAnalysis(r); err == nil {
				analyses = []model.TrendAnalysis{*a}
			}
		}
		if err != nil {
			return err
		}
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		if !explainStream {
			view := insight.AssembleTrend(&analyses[0])
			return emit(cmd, deps, newResult(model.KindTrend, commandLine(cmd, args), &view, view.Points, start))
		}
		views := make([]insight.TrendView, len(analyses))
		for i := range analyses {
			views[i] = insight.AssembleTrend(&analyses[i])
		}
		return emit(cmd, deps, newResult(model.KindTrendScan, commandLine(cmd, args), views, len(views), start))
	},
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func init() {
	rootCmd.AddCommand(explainCmd)
	explainCmd.AddCommand(explainCampaignCmd)
	explainCmd.AddCommand(explainTrendCmd)

	explainTrendCmd.Flags().BoolVar(&explainStream, "stream", false, "read a JSONL stream of analyses")
}
