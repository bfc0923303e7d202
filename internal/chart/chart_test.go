package chart_test

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/trendguard/trendguard/internal/chart"
	"github.com/trendguard/trendguard/internal/model"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

// days builds consecutive daily points starting 2024-03-01.
func days(values ...float64) []chart.Point {
	out := make([]chart.Point, len(values))
	for i, v := range values {
		out[i] = chart.Point{Label: fmt.Sprintf("2024-03-%02d", i+1), Value: v}
	}
	return out
}

// ─── Metrics ──────────────────────────────────────────────────────────────────

func TestParseMetric(t *testing.T) {
	for _, s := range []string{"velocity", " Fatigue ", "RETENTION"} {
		if _, err := chart.ParseMetric(s); err != nil {
			t.Errorf("ParseMetric(%q): %v", s, err)
		}
	}
	if _, err := chart.ParseMetric("reach"); err == nil {
		t.Error("expected error for unknown metric")
	}
}

func TestSeries(t *testing.T) {
	data := []model.LifecyclePoint{
		{Date: "2024-03-01", Velocity: 0.9, Fatigue: 0.1, Retention: 0.8},
		{Date: "2024-03-02", Velocity: 0.4, Fatigue: 0.6, Retention: 0.5},
	}
	got := chart.Series(data, chart.Fatigue)
	if len(got) != 2 {
		t.Fatalf("expected 2 points, got %d", len(got))
	}
	if got[0].Label != "2024-03-01" || got[1].Value != 0.6 {
		t.Errorf("unexpected series %+v", got)
	}
}

// ─── Plot ─────────────────────────────────────────────────────────────────────

func TestPlotBasic(t *testing.T) {
	var buf strings.Builder
	err := chart.Plot(&buf, days(0.2, 0.5, 0.9, 0.7, 0.3, 0.1), chart.PlotOptions{Width: 40, Height: 6, Title: "planking velocity"})
	if err != nil {
		t.Fatalf("Plot returned error: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "planking velocity  (2024-03-01 to 2024-03-06)\n") {
		t.Errorf("unexpected title line:\n%s", out)
	}
	if !strings.Contains(out, "└") {
		t.Error("output missing bottom axis")
	}
	if !strings.Contains(out, "0.9") || !strings.Contains(out, "0.1") {
		t.Errorf("expected min and max tick labels:\n%s", out)
	}
	// title + height rows + axis + date labels
	if lines := strings.Count(out, "\n"); lines != 1+6+2 {
		t.Errorf("expected 9 lines, got %d:\n%s", lines, out)
	}
}

func TestPlotFlatSeries(t *testing.T) {
	var buf strings.Builder
	if err := chart.Plot(&buf, days(0.5, 0.5, 0.5), chart.PlotOptions{Width: 30, Height: 4}); err != nil {
		t.Fatalf("Plot flat: %v", err)
	}
	if !strings.Contains(buf.String(), "───") {
		t.Errorf("flat series should draw a horizontal run:\n%s", buf.String())
	}
}

func TestPlotUnitScale(t *testing.T) {
	var buf strings.Builder
	if err := chart.Plot(&buf, days(0.4, 0.5, 0.6), chart.PlotOptions{Width: 30, Height: 8, UnitScale: true}); err != nil {
		t.Fatalf("Plot: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "1┤") || !strings.Contains(out, "0┤") {
		t.Errorf("unit scale should label 0 and 1:\n%s", out)
	}
}

func TestPlotMark(t *testing.T) {
	var buf strings.Builder
	opts := chart.PlotOptions{Width: 30, Height: 4, Mark: "2024-03-03", MarkLabel: "decline 2024-03-03"}
	if err := chart.Plot(&buf, days(0.9, 0.8, 0.4, 0.2), opts); err != nil {
		t.Fatalf("Plot: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	last := lines[len(lines)-1]
	if !strings.HasSuffix(last, "▲ decline 2024-03-03") {
		t.Errorf("expected decline marker as last line, got %q", last)
	}
}

func TestPlotMarkAbsent(t *testing.T) {
	var buf strings.Builder
	if err := chart.Plot(&buf, days(0.9, 0.8, 0.4), chart.PlotOptions{Width: 30, Height: 4, Mark: "1999-01-01"}); err != nil {
		t.Fatalf("Plot: %v", err)
	}
	if strings.Contains(buf.String(), "▲") {
		t.Error("marker for an unknown label should be omitted")
	}
}

func TestPlotNaNGap(t *testing.T) {
	var buf strings.Builder
	if err := chart.Plot(&buf, days(0.1, math.NaN(), 0.9, 0.5), chart.PlotOptions{Width: 30, Height: 4}); err != nil {
		t.Fatalf("Plot with NaN: %v", err)
	}
}

func TestPlotTooFewPoints(t *testing.T) {
	var buf strings.Builder
	if err := chart.Plot(&buf, days(0.5, math.NaN()), chart.PlotOptions{}); err == nil {
		t.Error("expected error for a single valid point")
	}
}

// ─── Bar ──────────────────────────────────────────────────────────────────────

func TestBarShares(t *testing.T) {
	bars := []chart.Point{
		{Label: "Growth", Value: 0.5},
		{Label: "Decline", Value: 0.25},
		{Label: "Peak", Value: 0},
	}
	var buf strings.Builder
	if err := chart.Bar(&buf, bars, chart.BarOptions{Width: 40, Title: "States", Format: chart.Percent}); err != nil {
		t.Fatalf("Bar: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 || lines[0] != "States" {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
	growth := strings.Count(lines[1], "█")
	decline := strings.Count(lines[2], "█")
	if growth <= decline || decline == 0 {
		t.Errorf("bar lengths should follow values: growth=%d decline=%d", growth, decline)
	}
	if strings.Count(lines[3], "█") != 0 {
		t.Errorf("zero share should have no bar: %q", lines[3])
	}
	if !strings.Contains(lines[1], "50.0%") || !strings.Contains(lines[2], "25.0%") {
		t.Errorf("expected percentage labels:\n%s", buf.String())
	}
}

func TestBarEmpty(t *testing.T) {
	var buf strings.Builder
	if err := chart.Bar(&buf, []chart.Point{{Label: "x", Value: math.NaN()}}, chart.BarOptions{}); err == nil {
		t.Error("expected error when nothing is renderable")
	}
}

func TestPercent(t *testing.T) {
	if got := chart.Percent(0.125); got != "12.5%" {
		t.Errorf("Percent: got %q", got)
	}
}
