package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/trendguard/trendguard/internal/analyze"
	"github.com/trendguard/trendguard/internal/app"
	"github.com/trendguard/trendguard/internal/insight"
	"github.com/trendguard/trendguard/internal/model"
	"github.com/trendguard/trendguard/internal/orchestrator"
	"github.com/trendguard/trendguard/internal/pipeline"
)

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Browse and explain trend lifecycles",
	Long: `Commands for the trend catalogue kept by the analysis service.

A trend moves through Emerging, Growth, Peak, Saturation and Decline.
When a decline is detected, trendguard explains it from three daily
metrics:
  velocity   growth momentum (0-1)
  fatigue    audience saturation (0-1)
  retention  share of the audience still engaging (0-1)`,
}

// ─── trends list ──────────────────────────────────────────────────────────────

var trendsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the trends available for analysis",
	Example: `  trendguard trends list
  trendguard trends list --format csv`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		start := time.Now()
		ctrl := deps.NewController(cmd.Context())
		defer ctrl.Stop()

		if _, err := ctrl.LoadTrends(); err != nil {
			return err
		}
		if err := ctrl.Await(cmd.Context(), orchestrator.TrendList); err != nil {
			return err
		}
		view := ctrl.TrendListView()
		if view.Status != orchestrator.StatusSuccess || view.Result == nil {
			return errors.New(view.Error)
		}
		result := newResult(model.KindTrendList, commandLine(cmd, args), view.Result, view.Result.Count, start)
		return emit(cmd, deps, result)
	},
}

// ─── trends analyze ───────────────────────────────────────────────────────────

var trendsAnalyzeCmd = &cobra.Command{
	Use:   "analyze <TREND_NAME>",
	Short: "Explain one trend's lifecycle and decline",
	Example: `  trendguard trends analyze "ice bucket challenge"
  trendguard trends analyze planking --format md`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		start := time.Now()
		ctrl := deps.NewController(cmd.Context())
		defer ctrl.Stop()

		if _, err := ctrl.SelectTrend(args[0]); err != nil {
			return err
		}
		if err := ctrl.Await(cmd.Context(), orchestrator.Trend); err != nil {
			return err
		}
		view := ctrl.TrendView()
		if view.Status != orchestrator.StatusSuccess || view.Result == nil {
			return fmt.Errorf("%s: %s", args[0], view.Error)
		}
		result := newResult(model.KindTrend, commandLine(cmd, args), view.Result, view.Result.Points, start)
		return emit(cmd, deps, result)
	},
}

// ─── trends health ────────────────────────────────────────────────────────────

var trendsHealthCmd = &cobra.Command{
	Use:   "health <TREND_NAME>",
	Short: "Quick health check of a trend (sentiment, platforms, news)",
	Example: `  trendguard trends health "stanley cup"
  trendguard trends health "stanley cup" --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		start := time.Now()
		health, err := deps.Client.CheckTrendHealth(cmd.Context(), args[0])
		if err != nil {
			return errors.New(orchestrator.UserMessage(err, orchestrator.FallbackAnalysis))
		}
		if health.TrendName == "" {
			health.TrendName = args[0]
		}
		result := newResult(model.KindTrendHealth, commandLine(cmd, args), health, 1, start)
		return emit(cmd, deps, result)
	},
}

// ─── trends stats ─────────────────────────────────────────────────────────────

var trendsStatsFlags struct {
	Input  string
	Method string
}

var trendsStatsCmd = &cobra.Command{
	Use:   "stats [TREND_NAME]",
	Short: "Descriptive statistics and slopes of a trend's daily metrics",
	Long: `Summarises velocity, fatigue and retention over the trend's lifecycle
data: mean, median, range, first and last values, and the fitted change
per day. A metric whose slope stays within ±0.005 a day is "flat".

Without a trend name, one analysis document is read from --input or
stdin.`,
	Example: `  trendguard trends stats planking
  trendguard trends stats planking --method linear --format csv
  trendguard trends scan planking --raw | trendguard trends stats`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		method, err := analyze.ParseMethod(trendsStatsFlags.Method)
		if err != nil {
			return err
		}
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		start := time.Now()
		a, err := loadAnalysis(cmd, deps, args, trendsStatsFlags.Input)
		if err != nil {
			return err
		}
		report, err := analyze.Trend(a, method)
		if err != nil {
			return err
		}
		result := newResult(model.KindTrendStats, commandLine(cmd, args), report, len(report.Metrics), start)
		return emit(cmd, deps, result)
	},
}

// ─── trends scan ──────────────────────────────────────────────────────────────

var trendsScanFlags struct {
	DeclineOnly bool
	Raw         bool
}

var trendsScanCmd = &cobra.Command{
	Use:   "scan [TREND_NAME...]",
	Short: "Analyze many trends concurrently",
	Long: `Analyze the named trends, or the whole catalogue when none are given.

Requests run concurrently up to --concurrency. A trend that fails to
analyze is reported as a warning; the rest are still shown.

--raw writes the service's analyses as JSONL, suitable for
'trendguard explain trend --stream'.`,
	Example: `  trendguard trends scan
  trendguard trends scan planking "ice bucket" --concurrency 2
  trendguard trends scan --decline-only --format md
  trendguard trends scan --raw > analyses.jsonl`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		start := time.Now()
		names := normaliseNames(args)
		if len(names) == 0 {
			list, err := deps.Client.ListTrends(cmd.Context())
			if err != nil {
				return errors.New(orchestrator.UserMessage(err, orchestrator.FallbackTrendList))
			}
			for _, t := range list.Trends {
				names = append(names, t.TrendName)
			}
		}

		analyses, warnings := batchAnalyzeTrends(cmd.Context(), deps, names)
		if err := cmd.Context().Err(); err != nil {
			return err
		}

		if trendsScanFlags.Raw {
			w, closeFn, err := outputWriter(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer closeFn()
			return pipeline.WriteJSONL(w, analyses)
		}

		views := make([]insight.TrendView, 0, len(analyses))
		for i := range analyses {
			v := insight.AssembleTrend(&analyses[i])
			if trendsScanFlags.DeclineOnly && !v.DeclineDetected {
				continue
			}
			views = append(views, v)
		}
		result := newResult(model.KindTrendScan, commandLine(cmd, args), views, len(views), start)
		result.Warnings = warnings
		return emit(cmd, deps, result)
	},
}

// batchAnalyzeTrends analyzes names concurrently, bounded by
// deps.Config.Concurrency. Results keep the input order; failures are
// returned as warnings and never abort the batch.
func batchAnalyzeTrends(ctx context.Context, deps *app.Deps, names []string) ([]model.TrendAnalysis, []string) {
	concurrency := deps.Config.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	results := make([]*model.TrendAnalysis, len(names))
	errs := make([]error, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, name := range names {
		g.Go(func() error {
			a, err := deps.Client.AnalyzeTrend(gctx, name)
			if err != nil {
				errs[i] = err
				return nil
			}
			if a.TrendName == "" {
				a.TrendName = name
			}
			results[i] = a
			return nil
		})
	}
	_ = g.Wait()

	var analyses []model.TrendAnalysis
	var warnings []string
	for i, a := range results {
		if errs[i] != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %s", names[i], orchestrator.UserMessage(errs[i], orchestrator.FallbackAnalysis)))
			continue
		}
		if a != nil {
			analyses = append(analyses, *a)
		}
	}
	return analyses, warnings
}

func init() {
	rootCmd.AddCommand(trendsCmd)
	trendsCmd.AddCommand(trendsListCmd)
	trendsCmd.AddCommand(trendsAnalyzeCmd)
	trendsCmd.AddCommand(trendsHealthCmd)
	trendsCmd.AddCommand(trendsStatsCmd)
	trendsCmd.AddCommand(trendsScanCmd)

	trendsStatsCmd.Flags().StringVar(&trendsStatsFlags.Input, "input", "", "analysis document to read when no trend name is given (- for stdin)")
	trendsStatsCmd.Flags().StringVar(&trendsStatsFlags.Method, "method", string(analyze.TheilSen), "slope estimator: theil-sen or linear")

	trendsScanCmd.Flags().BoolVar(&trendsScanFlags.DeclineOnly, "decline-only", false, "show only trends with a detected decline")
	trendsScanCmd.Flags().BoolVar(&trendsScanFlags.Raw, "raw", false, "write raw analyses as JSONL instead of rendering")
}
