// Package analyze computes descriptive statistics and slopes over the daily
// lifecycle metrics of a trend. All functions are pure; no I/O.
package analyze

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/trendguard/trendguard/internal/model"
)

// Method selects the slope estimator.
type Method string

const (
	Linear   Method = "linear"
	TheilSen Method = "theil-sen"
)

// ParseMethod resolves a slope estimator name; empty means TheilSen.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case "", TheilSen:
		return TheilSen, nil
	case Linear:
		return Linear, nil
	}
	return "", fmt.Errorf("unknown method %q (expected linear or theil-sen)", s)
}

// FlatSlope is the per-day slope magnitude below which a metric is "flat".
const FlatSlope = 0.005

// ─── Summary ──────────────────────────────────────────────────────────────────

// Summary holds descriptive statistics and the fitted slope of one metric.
type Summary struct {
	Metric    string  `json:"metric"`
	Count     int     `json:"count"`
	Mean      float64 `json:"mean"`
	Std       float64 `json:"std"`
	Min       float64 `json:"min"`
	Median    float64 `json:"median"`
	Max       float64 `json:"max"`
	First     float64 `json:"first"`
	Last      float64 `json:"last"`
	Change    float64 `json:"change"`        // Last - First
	Slope     float64 `json:"slope_per_day"` // fitted change per day
	R2        float64 `json:"r2"`
	Direction string  `json:"direction"` // "rising", "falling", "flat"
	Method    Method  `json:"method"`
}

// Report is the lifecycle statistics of one trend.
type Report struct {
	TrendName string    `json:"trend_name"`
	Points    int       `json:"points"`
	Method    Method    `json:"method"`
	Metrics   []Summary `json:"metrics"`
}

// Trend builds the statistics report of a trend analysis.
func Trend(a *model.TrendAnalysis, method Method) (*Report, error) {
	sums, err := Lifecycle(a.LifecycleData, method)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.TrendName, err)
	}
	return &Report{TrendName: a.TrendName, Points: len(a.LifecycleData), Method: method, Metrics: sums}, nil
}

// Lifecycle summarises velocity, fatigue and retention over data, in that
// order. Points whose dates all parse are placed on a day axis; otherwise
// each point is one day after the previous.
func Lifecycle(data []model.LifecyclePoint, method Method) ([]Summary, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("analyze: need at least 2 lifecycle points, got %d", len(data))
	}
	xs := dayAxis(data)
	type metric struct {
		name string
		get  func(model.LifecyclePoint) float64
	}
	metrics := []metric{
		{"velocity", func(p model.LifecyclePoint) float64 { return p.Velocity }},
		{"fatigue", func(p model.LifecyclePoint) float64 { return p.Fatigue }},
		{"retention", func(p model.LifecyclePoint) float64 { return p.Retention }},
	}

	out := make([]Summary, 0, len(metrics))
	for _, m := range metrics {
		pts := make([]point, len(data))
		for i, d := range data {
			pts[i] = point{xs[i], m.get(d)}
		}
		out = append(out, summarize(m.name, pts, method))
	}
	return out, nil
}

// summarize computes statistics over pts. NaN values are excluded.
func summarize(name string, pts []point, method Method) Summary {
	s := Summary{Metric: name, Method: method}
	var valid []point
	for _, p := range pts {
		if !math.IsNaN(p.y) {
			valid = append(valid, p)
		}
	}
	s.Count = len(valid)
	if len(valid) == 0 {
		nan := math.NaN()
		s.Mean, s.Std, s.Min, s.Median, s.Max = nan, nan, nan, nan, nan
		s.First, s.Last, s.Change, s.Slope, s.R2 = nan, nan, nan, nan, nan
		s.Direction = "flat"
		return s
	}

	vals := make([]float64, len(valid))
	for i, p := range valid {
		vals[i] = p.y
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)

	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.Median = percentile(sorted, 50)
	s.Mean = sumF(vals) / float64(len(vals))
	s.Std = stddevF(vals, s.Mean)
	s.First = vals[0]
	s.Last = vals[len(vals)-1]
	s.Change = s.Last - s.First

	var intercept float64
	switch {
	case len(valid) < 2:
		s.Slope, intercept = 0, s.Mean
	case method == Linear:
		s.Slope, intercept = olsRegress(valid)
	default:
		s.Slope = theilSenSlope(valid)
		intercept = s.Mean - s.Slope*meanX(valid)
	}
	s.R2 = r2(valid, s.Slope, intercept)

	switch {
	case s.Slope > FlatSlope:
		s.Direction = "rising"
	case s.Slope < -FlatSlope:
		s.Direction = "falling"
	default:
		s.Direction = "flat"
	}
	return s
}

// dayAxis returns days since the first point, or plain indexes when any date
// fails to parse.
func dayAxis(data []model.LifecyclePoint) []float64 {
	xs := make([]float64, len(data))
	var t0 time.Time
	for i, d := range data {
		t, err := time.Parse(time.DateOnly, d.Date)
		if err != nil {
			for j := range xs {
				xs[j] = float64(j)
			}
			return xs
		}
		if i == 0 {
			t0 = t
		}
		xs[i] = t.Sub(t0).Hours() / 24
	}
	return xs
}

// ─── Math helpers ─────────────────────────────────────────────────────────────

type point struct{ x, y float64 }

func sumF(vals []float64) float64 {
	var s float64
	for _, v := range vals {
		s += v
	}
	return s
}

func stddevF(vals []float64, m float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	var sq float64
	for _, v := range vals {
		d := v - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(vals)-1))
}

func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	idx := p / 100 * float64(n-1)
	lo := int(idx)
	if lo+1 >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}

func olsRegress(pts []point) (slope, intercept float64) {
	n := float64(len(pts))
	var xSum, ySum, xySum, x2Sum float64
	for _, p := range pts {
		xSum += p.x
		ySum += p.y
		xySum += p.x * p.y
		x2Sum += p.x * p.x
	}
	denom := n*x2Sum - xSum*xSum
	if denom == 0 {
		return 0, ySum / n
	}
	slope = (n*xySum - xSum*ySum) / denom
	intercept = (ySum - slope*xSum) / n
	return
}

// theilSenSlope is the median of all pairwise slopes.
func theilSenSlope(pts []point) float64 {
	var slopes []float64
	for i := range pts {
		for j := i + 1; j < len(pts); j++ {
			if dx := pts[j].x - pts[i].x; dx != 0 {
				slopes = append(slopes, (pts[j].y-pts[i].y)/dx)
			}
		}
	}
	if len(slopes) == 0 {
		return 0
	}
	sort.Float64s(slopes)
	return percentile(slopes, 50)
}

func r2(pts []point, slope, intercept float64) float64 {
	var yMean float64
	for _, p := range pts {
		yMean += p.y
	}
	yMean /= float64(len(pts))

	var ssTot, ssRes float64
	for _, p := range pts {
		pred := slope*p.x + intercept
		ssTot += (p.y - yMean) * (p.y - yMean)
		ssRes += (p.y - pred) * (p.y - pred)
	}
	if ssTot == 0 {
		return 1
	}
	return 1 - ssRes/ssTot
}

func meanX(pts []point) float64 {
	var s float64
	for _, p := range pts {
		s += p.x
	}
	return s / float64(len(pts))
}
