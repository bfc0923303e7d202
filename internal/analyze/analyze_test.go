package analyze_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/trendguard/trendguard/internal/analyze"
	"github.com/trendguard/trendguard/internal/model"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

// daily builds consecutive lifecycle points from 2024-03-01 where velocity
// takes v, fatigue rises by 0.1 a day from 0.1 and retention stays at 0.5.
func daily(v ...float64) []model.LifecyclePoint {
	out := make([]model.LifecyclePoint, len(v))
	for i := range v {
		out[i] = model.LifecyclePoint{
			Date:      fmt.Sprintf("2024-03-%02d", i+1),
			Velocity:  v[i],
			Fatigue:   0.1 + 0.1*float64(i),
			Retention: 0.5,
		}
	}
	return out
}

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func byMetric(t *testing.T, sums []analyze.Summary, name string) analyze.Summary {
	t.Helper()
	for _, s := range sums {
		if s.Metric == name {
			return s
		}
	}
	t.Fatalf("no summary for %s", name)
	return analyze.Summary{}
}

// ─── Lifecycle ────────────────────────────────────────────────────────────────

func TestLifecycleOrderAndCounts(t *testing.T) {
	sums, err := analyze.Lifecycle(daily(0.9, 0.7, 0.5, 0.3), analyze.TheilSen)
	if err != nil {
		t.Fatalf("Lifecycle: %v", err)
	}
	if len(sums) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(sums))
	}
	for i, want := range []string{"velocity", "fatigue", "retention"} {
		if sums[i].Metric != want {
			t.Errorf("summary %d: expected %s, got %s", i, want, sums[i].Metric)
		}
		if sums[i].Count != 4 {
			t.Errorf("%s: expected count 4, got %d", want, sums[i].Count)
		}
	}
}

func TestLifecycleDescriptive(t *testing.T) {
	sums, err := analyze.Lifecycle(daily(0.9, 0.7, 0.5, 0.3), analyze.TheilSen)
	if err != nil {
		t.Fatal(err)
	}
	v := byMetric(t, sums, "velocity")
	if !approxEqual(v.Mean, 0.6, 1e-9) {
		t.Errorf("Mean: expected 0.6, got %g", v.Mean)
	}
	if !approxEqual(v.Median, 0.6, 1e-9) {
		t.Errorf("Median: expected 0.6, got %g", v.Median)
	}
	if v.Min != 0.3 || v.Max != 0.9 || v.First != 0.9 || v.Last != 0.3 {
		t.Errorf("extremes: %+v", v)
	}
	if !approxEqual(v.Change, -0.6, 1e-9) {
		t.Errorf("Change: expected -0.6, got %g", v.Change)
	}
}

func TestLifecycleDirections(t *testing.T) {
	sums, err := analyze.Lifecycle(daily(0.9, 0.7, 0.5, 0.3), analyze.TheilSen)
	if err != nil {
		t.Fatal(err)
	}
	v := byMetric(t, sums, "velocity")
	if v.Direction != "falling" || !approxEqual(v.Slope, -0.2, 1e-9) {
		t.Errorf("velocity: direction=%s slope=%g", v.Direction, v.Slope)
	}
	if !approxEqual(v.R2, 1, 1e-9) {
		t.Errorf("velocity: perfect line should give R2=1, got %g", v.R2)
	}
	if f := byMetric(t, sums, "fatigue"); f.Direction != "rising" {
		t.Errorf("fatigue: expected rising, got %s", f.Direction)
	}
	if r := byMetric(t, sums, "retention"); r.Direction != "flat" || r.Slope != 0 {
		t.Errorf("retention: expected flat with zero slope, got %s %g", r.Direction, r.Slope)
	}
}

func TestLifecycleTheilSenResistsOutlier(t *testing.T) {
	data := daily(0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5)
	data[3].Velocity = 1.0

	robust, err := analyze.Lifecycle(data, analyze.TheilSen)
	if err != nil {
		t.Fatal(err)
	}
	if v := byMetric(t, robust, "velocity"); v.Slope != 0 || v.Direction != "flat" {
		t.Errorf("theil-sen: expected flat slope, got %g (%s)", v.Slope, v.Direction)
	}

	ols, err := analyze.Lifecycle(data, analyze.Linear)
	if err != nil {
		t.Fatal(err)
	}
	if v := byMetric(t, ols, "velocity"); v.Slope == 0 || v.Method != analyze.Linear {
		t.Errorf("linear: expected the outlier to tilt the fit, got %g", v.Slope)
	}
}

func TestLifecycleUsesDateGaps(t *testing.T) {
	data := []model.LifecyclePoint{
		{Date: "2024-03-01", Velocity: 0.8},
		{Date: "2024-03-11", Velocity: 0.3},
	}
	sums, err := analyze.Lifecycle(data, analyze.Linear)
	if err != nil {
		t.Fatal(err)
	}
	if v := byMetric(t, sums, "velocity"); !approxEqual(v.Slope, -0.05, 1e-9) {
		t.Errorf("ten-day gap: expected slope -0.05, got %g", v.Slope)
	}
}

func TestLifecycleUnparsableDatesFallBackToIndex(t *testing.T) {
	data := []model.LifecyclePoint{
		{Date: "day one", Velocity: 0.8},
		{Date: "day two", Velocity: 0.3},
	}
	sums, err := analyze.Lifecycle(data, analyze.Linear)
	if err != nil {
		t.Fatal(err)
	}
	if v := byMetric(t, sums, "velocity"); !approxEqual(v.Slope, -0.5, 1e-9) {
		t.Errorf("index axis: expected slope -0.5, got %g", v.Slope)
	}
}

func TestLifecycleTooFewPoints(t *testing.T) {
	if _, err := analyze.Lifecycle(daily(0.5), analyze.TheilSen); err == nil {
		t.Error("expected error for a single point")
	}
}

func TestTrendReport(t *testing.T) {
	a := &model.TrendAnalysis{TrendName: "planking", LifecycleData: daily(0.9, 0.7, 0.5)}
	r, err := analyze.Trend(a, analyze.Linear)
	if err != nil {
		t.Fatalf("Trend: %v", err)
	}
	if r.TrendName != "planking" || r.Points != 3 || r.Method != analyze.Linear || len(r.Metrics) != 3 {
		t.Errorf("unexpected report %+v", r)
	}

	_, err = analyze.Trend(&model.TrendAnalysis{TrendName: "sourdough"}, analyze.Linear)
	if err == nil || err.Error() != "sourdough: analyze: need at least 2 lifecycle points, got 0" {
		t.Errorf("unexpected error %v", err)
	}
}

// ─── ParseMethod ──────────────────────────────────────────────────────────────

func TestParseMethod(t *testing.T) {
	cases := map[string]analyze.Method{"": analyze.TheilSen, "theil-sen": analyze.TheilSen, "linear": analyze.Linear}
	for in, want := range cases {
		got, err := analyze.ParseMethod(in)
		if err != nil || got != want {
			t.Errorf("ParseMethod(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := analyze.ParseMethod("lowess"); err == nil {
		t.Error("expected error for unknown method")
	}
}
