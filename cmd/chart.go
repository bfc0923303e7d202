package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trendguard/trendguard/internal/chart"
	"github.com/trendguard/trendguard/internal/insight"
	"github.com/trendguard/trendguard/internal/model"
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Draw a trend's lifecycle as an ASCII chart",
	Long: `Chart commands draw a trend analysis in the terminal.

The analysis is fetched from the service when a trend name is given;
otherwise a single analysis document is read from --input or stdin.

Examples:
  trendguard chart lifecycle planking
  trendguard chart lifecycle planking --metric all --height 8
  trendguard chart states "ice bucket challenge"
  trendguard trends scan planking --raw | trendguard chart states`,
}

var chartFlags struct {
	Input  string
	Metric string
	Width  int
	Height int
}

// ─── chart lifecycle ──────────────────────────────────────────────────────────

var chartLifecycleCmd = &cobra.Command{
	Use:   "lifecycle [TREND_NAME]",
	Short: "Plot a lifecycle metric day by day",
	Long: `Plots velocity, fatigue or retention over the trend's observed days on
a fixed 0-1 scale. When a decline was detected its date is marked under
the X axis. --metric all stacks the three metrics.`,
	Example: `  trendguard chart lifecycle planking
  trendguard chart lifecycle planking --metric fatigue
  trendguard trends scan planking --raw | trendguard chart lifecycle --metric all`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		metrics, err := chartMetrics(chartFlags.Metric)
		if err != nil {
			return err
		}
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()
		a, err := loadAnalysis(cmd, deps, args, chartFlags.Input)
		if err != nil {
			return err
		}
		if len(a.LifecycleData) < 2 {
			return fmt.Errorf("%s: not enough lifecycle data to chart (%d points)", a.TrendName, len(a.LifecycleData))
		}

		w, closeFn, err := outputWriter(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer closeFn()

		var mark, markLabel string
		view := insight.AssembleTrend(a)
		if view.Decline != nil {
			mark = view.Decline.Date
			markLabel = fmt.Sprintf("decline %s (%s)", view.Decline.Date, view.Decline.State)
		}
		for i, m := range metrics {
			if i > 0 {
				fmt.Fprintln(w)
			}
			err := chart.Plot(w, chart.Series(a.LifecycleData, m), chart.PlotOptions{
				Width:     chartFlags.Width,
				Height:    chartFlags.Height,
				Title:     fmt.Sprintf("%s %s", a.TrendName, m),
				UnitScale: true,
				Mark:      mark,
				MarkLabel: markLabel,
			})
			if err != nil {
				return err
			}
		}
		return nil
	},
}

// ─── chart states ─────────────────────────────────────────────────────────────

var chartStatesCmd = &cobra.Command{
	Use:   "states [TREND_NAME]",
	Short: "Bar chart of the time spent in each lifecycle state",
	Example: `  trendguard chart states planking
  trendguard chart states --input analysis.json --width 60`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()
		a, err := loadAnalysis(cmd, deps, args, chartFlags.Input)
		if err != nil {
			return err
		}
		shares := insight.Distribution(a.StateDistribution)
		if len(shares) == 0 {
			return fmt.Errorf("%s: no state distribution to chart", a.TrendName)
		}
		bars := make([]chart.Point, 0, len(shares))
		for _, s := range shares {
			bars = append(bars, chart.Point{Label: string(s.State), Value: s.Share})
		}

		w, closeFn, err := outputWriter(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer closeFn()
		return chart.Bar(w, bars, chart.BarOptions{
			Width:  chartFlags.Width,
			Title:  statesTitle(a),
			Format: chart.Percent,
		})
	},
}

func statesTitle(a *model.TrendAnalysis) string {
	n := a.TotalPoints
	if n == 0 {
		n = len(a.LifecycleData)
	}
	if n == 0 {
		return a.TrendName + " lifecycle states"
	}
	return fmt.Sprintf("%s lifecycle states (%d points)", a.TrendName, n)
}

// chartMetrics expands the --metric value; "all" selects every metric.
func chartMetrics(s string) ([]chart.Metric, error) {
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		return chart.Metrics, nil
	}
	m, err := chart.ParseMetric(s)
	if err != nil {
		return nil, err
	}
	return []chart.Metric{m}, nil
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.AddCommand(chartLifecycleCmd)
	chartCmd.AddCommand(chartStatesCmd)

	chartCmd.PersistentFlags().StringVar(&chartFlags.Input, "input", "", "analysis document to chart when no trend name is given (- for stdin)")
	chartCmd.PersistentFlags().IntVar(&chartFlags.Width, "width", 0, "chart width in characters (default: $COLUMNS, fallback 80)")
	chartLifecycleCmd.Flags().StringVar(&chartFlags.Metric, "metric", "velocity", "metric to plot: velocity, fatigue, retention or all")
	chartLifecycleCmd.Flags().IntVar(&chartFlags.Height, "height", 12, "chart height in rows")

	chartLifecycleCmd.ValidArgsFunction = singleTrendName
	chartStatesCmd.ValidArgsFunction = singleTrendName
}
