package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/trendguard/trendguard/internal/app"
	"github.com/trendguard/trendguard/internal/model"
	"github.com/trendguard/trendguard/internal/orchestrator"
	"github.com/trendguard/trendguard/internal/pipeline"
	"github.com/trendguard/trendguard/internal/render"
)

// outputWriter returns the --out file when set, or fallback otherwise.
// The returned close function is always safe to call.
func outputWriter(fallback io.Writer) (io.Writer, func() error, error) {
	if globalFlags.Out == "" {
		return fallback, func() error { return nil }, nil
	}
	f, err := os.Create(globalFlags.Out)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, f.Close, nil
}

// resolveFormat returns the effective format string, falling back to "table".
func resolveFormat(cfgFormat string) string {
	if globalFlags.Format != "" {
		return globalFlags.Format
	}
	if cfgFormat != "" {
		return cfgFormat
	}
	return render.FormatTable
}

// newResult wraps a payload in a Result envelope timed from start.
func newResult(kind, command string, data any, items int, start time.Time) *model.Result {
	return &model.Result{
		Kind:        kind,
		GeneratedAt: time.Now(),
		Command:     command,
		Data:        data,
		Stats: model.ResultStats{
			DurationMs: time.Since(start).Milliseconds(),
			Items:      items,
		},
	}
}

// emit renders result to the command's output (or --out) and prints the
// warnings/stats footer on stderr unless --quiet is set.
func emit(cmd *cobra.Command, deps *app.Deps, result *model.Result) error {
	w, closeFn, err := outputWriter(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeFn()

	if err := render.Render(w, result, resolveFormat(deps.Config.Format)); err != nil {
		return err
	}
	if !deps.Config.Quiet {
		render.PrintFooter(cmd.ErrOrStderr(), result, deps.Config.Verbose)
	}
	return nil
}

// commandLine reconstructs the invoked command for Result.Command.
func commandLine(cmd *cobra.Command, args []string) string {
	path := strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name()+" ")
	if len(args) == 0 {
		return path
	}
	return path + " " + strings.Join(args, " ")
}

// readInput opens path for reading; "-" or "" means stdin.
func readInput(cmd *cobra.Command, path string) (io.Reader, func() error, error) {
	if path == "" || path == "-" {
		return cmd.InOrStdin(), func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening input: %w", err)
	}
	return f, f.Close, nil
}

// normaliseNames trims trend names and removes empties and duplicates while
// preserving order.
func normaliseNames(names []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// loadAnalysis fetches the named trend, or reads one analysis from input
// (stdin when empty) when no name is given. A --raw scan stream yields its
// first record.
func loadAnalysis(cmd *cobra.Command, deps *app.Deps, args []string, input string) (*model.TrendAnalysis, error) {
	if len(args) == 0 {
		r, closeFn, err := readInput(cmd, input)
		if err != nil {
			return nil, err
		}
		defer closeFn()
		return pipeline.ReadFirstTrendAnalysis(r)
	}
	return fetchAnalysis(cmd.Context(), deps.Client, args[0])
}

type trendAnalyzer interface {
	AnalyzeTrend(ctx context.Context, trendName string) (*model.TrendAnalysis, error)
}

func fetchAnalysis(ctx context.Context, c trendAnalyzer, name string) (*model.TrendAnalysis, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("trend name must not be empty")
	}
	a, err := c.AnalyzeTrend(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %s", name, orchestrator.UserMessage(err, orchestrator.FallbackAnalysis))
	}
	if a.TrendName == "" {
		a.TrendName = name
	}
	return a, nil
}
