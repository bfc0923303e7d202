// Package chart renders trend lifecycles as ASCII terminal charts.
//
//   - Plot: multi-line chart of one lifecycle metric over time, with an
//     optional marker under the decline date
//   - Bar: horizontal bars, used for the lifecycle state distribution
package chart

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/trendguard/trendguard/internal/model"
)

// Point is one labelled value. Plot labels are dates; bar labels are names.
type Point struct {
	Label string
	Value float64
}

// ─── Metrics ──────────────────────────────────────────────────────────────────

// Metric names one of the daily lifecycle metrics.
type Metric string

const (
	Velocity  Metric = "velocity"
	Fatigue   Metric = "fatigue"
	Retention Metric = "retention"
)

// Metrics lists the plottable metrics in display order.
var Metrics = []Metric{Velocity, Fatigue, Retention}

// ParseMetric resolves a metric name case-insensitively.
func ParseMetric(s string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Metrics {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q (expected velocity, fatigue or retention)", s)
}

// Series extracts metric m from the lifecycle data, one point per day.
func Series(data []model.LifecyclePoint, m Metric) []Point {
	out := make([]Point, 0, len(data))
	for _, d := range data {
		var v float64
		switch m {
		case Velocity:
			v = d.Velocity
		case Fatigue:
			v = d.Fatigue
		case Retention:
			v = d.Retention
		default:
			v = math.NaN()
		}
		out = append(out, Point{Label: d.Date, Value: v})
	}
	return out
}

// ─── Plot ─────────────────────────────────────────────────────────────────────

// PlotOptions controls multi-line plot rendering.
type PlotOptions struct {
	// Width is the total character width including the Y-axis labels.
	// If 0, auto-detects from $COLUMNS, falls back to 80.
	Width int
	// Height is the number of rows in the chart body. If 0, defaults to 12.
	Height int
	Title  string
	// UnitScale pins the Y axis to [0, 1] instead of the data range.
	UnitScale bool
	// Mark is the label of a point to flag under the X axis.
	Mark      string
	MarkLabel string
}

// Plot renders pts to w as a multi-line chart. NaN values are drawn as gaps.
func Plot(w io.Writer, pts []Point, opts PlotOptions) error {
	width := opts.Width
	if width <= 0 {
		width = termWidth()
	}
	height := opts.Height
	if height <= 0 {
		height = 12
	}

	var valid int
	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		if math.IsNaN(p.Value) {
			continue
		}
		valid++
		minVal = math.Min(minVal, p.Value)
		maxVal = math.Max(maxVal, p.Value)
	}
	if valid < 2 {
		return fmt.Errorf("chart plot: need at least 2 data points (got %d)", valid)
	}
	if opts.UnitScale {
		minVal = math.Min(minVal, 0)
		maxVal = math.Max(maxVal, 1)
	}

	ticks := yTicks(minVal, maxVal, height)
	yLabelWidth := 0
	for _, t := range ticks {
		if l := len(formatFloat(t)); l > yLabelWidth {
			yLabelWidth = l
		}
	}
	plotWidth := width - yLabelWidth - 1
	if plotWidth < 10 {
		plotWidth = 10
	}

	cols := sampleCols(pts, plotWidth)
	grid := buildGrid(cols, minVal, maxVal, height)

	if opts.Title != "" {
		fmt.Fprintf(w, "%s  (%s to %s)\n", opts.Title, pts[0].Label, pts[len(pts)-1].Label)
	}
	for row := 0; row < height; row++ {
		label := ""
		for _, t := range ticks {
			if math.Abs(rowForValue(t, minVal, maxVal, height)-float64(row)) < 0.5 {
				label = formatFloat(t)
				break
			}
		}
		axis := "┤"
		if label == "" {
			axis = " "
		}
		fmt.Fprintf(w, "%*s%s%s\n", yLabelWidth, label, axis, string(grid[row]))
	}
	pad := strings.Repeat(" ", yLabelWidth)
	fmt.Fprintf(w, "%s└%s\n", pad, strings.Repeat("─", plotWidth))
	fmt.Fprintf(w, "%s %s\n", pad, xAxisLabels(pts, plotWidth))

	if col := markColumn(pts, opts.Mark, plotWidth); col >= 0 {
		text := "▲"
		if opts.MarkLabel != "" {
			text += " " + opts.MarkLabel
		}
		fmt.Fprintf(w, "%s %s%s\n", pad, strings.Repeat(" ", col), text)
	}
	return nil
}

// markColumn maps the point labelled mark to its plot column, or -1.
func markColumn(pts []Point, mark string, plotWidth int) int {
	if mark == "" {
		return -1
	}
	for i, p := range pts {
		if p.Label == mark {
			return i * plotWidth / len(pts)
		}
	}
	return -1
}

// ─── Bar ──────────────────────────────────────────────────────────────────────

// BarOptions controls horizontal bar chart rendering.
type BarOptions struct {
	// Width is the total character width. If 0, auto-detects from $COLUMNS.
	Width int
	Title string
	// Format renders the value column. Defaults to a compact float.
	Format func(float64) string
}

// Bar renders one bar per point, scaled from zero to the largest value.
// NaN and negative values are skipped.
func Bar(w io.Writer, bars []Point, opts BarOptions) error {
	totalWidth := opts.Width
	if totalWidth <= 0 {
		totalWidth = termWidth()
	}
	format := opts.Format
	if format == nil {
		format = formatFloat
	}

	var valid []Point
	maxVal := 0.0
	for _, b := range bars {
		if math.IsNaN(b.Value) || b.Value < 0 {
			continue
		}
		valid = append(valid, b)
		maxVal = math.Max(maxVal, b.Value)
	}
	if len(valid) == 0 {
		return fmt.Errorf("chart bar: nothing to render")
	}

	labelWidth, valWidth := 0, 0
	for _, b := range valid {
		labelWidth = max(labelWidth, len([]rune(b.Label)))
		valWidth = max(valWidth, len(format(b.Value)))
	}
	barArea := totalWidth - labelWidth - valWidth - 4
	if barArea < 4 {
		barArea = 4
	}
	if maxVal == 0 {
		maxVal = 1
	}

	if opts.Title != "" {
		fmt.Fprintln(w, opts.Title)
	}
	for _, b := range valid {
		n := int(math.Round(b.Value / maxVal * float64(barArea)))
		if n < 1 && b.Value > 0 {
			n = 1
		}
		fmt.Fprintf(w, "%-*s  %*s  %s\n", labelWidth, b.Label, valWidth, format(b.Value), strings.Repeat("█", n))
	}
	return nil
}

// ─── Grid building ────────────────────────────────────────────────────────────

// sampleCols reduces pts to n columns, each the mean of its bucket or NaN.
func sampleCols(pts []Point, n int) []float64 {
	total := len(pts)
	cols := make([]float64, n)
	for col := 0; col < n; col++ {
		lo := col * total / n
		hi := (col+1)*total/n - 1
		if hi < lo {
			hi = lo
		}
		sum, count := 0.0, 0
		for i := lo; i <= hi && i < total; i++ {
			if !math.IsNaN(pts[i].Value) {
				sum += pts[i].Value
				count++
			}
		}
		if count == 0 {
			cols[col] = math.NaN()
		} else {
			cols[col] = sum / float64(count)
		}
	}
	return cols
}

// rowForValue returns the float row index (0 is the top) for v.
func rowForValue(v, minVal, maxVal float64, height int) float64 {
	if maxVal == minVal {
		return float64(height) / 2
	}
	return (maxVal - v) / (maxVal - minVal) * float64(height-1)
}

// buildGrid draws cols into a height×len(cols) rune grid, joining adjacent
// values with box-drawing characters.
func buildGrid(cols []float64, minVal, maxVal float64, height int) [][]rune {
	grid := make([][]rune, height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", len(cols)))
	}

	rowOf := make([]int, len(cols))
	for col, v := range cols {
		if math.IsNaN(v) {
			rowOf[col] = -1
			continue
		}
		r := int(math.Round(rowForValue(v, minVal, maxVal, height)))
		rowOf[col] = min(max(r, 0), height-1)
	}

	for col, r := range rowOf {
		if r < 0 {
			continue
		}
		prev, next := -1, -1
		if col > 0 {
			prev = rowOf[col-1]
		}
		if col < len(cols)-1 {
			next = rowOf[col+1]
		}
		grid[r][col] = glyph(prev, r, next)

		// vertical connector towards the previous column
		if prev >= 0 && prev != r {
			lo, hi := min(r, prev), max(r, prev)
			for fill := lo + 1; fill < hi; fill++ {
				if grid[fill][col] == ' ' {
					grid[fill][col] = '│'
				}
			}
		}
	}
	return grid
}

// glyph picks the character at row r given the neighbouring rows (-1 is a gap).
func glyph(prev, r, next int) rune {
	switch {
	case prev < 0 && next < 0:
		return '·'
	case (prev < 0 || prev == r) && (next < 0 || next == r):
		return '─'
	case next > r && (prev < 0 || prev <= r):
		return '╭'
	case next >= 0 && next < r && (prev < 0 || prev >= r):
		return '╰'
	case prev >= 0 && prev < r && (next < 0 || next >= r):
		return '╮'
	case prev > r && (next < 0 || next <= r):
		return '╯'
	}
	return '─'
}

// ─── Axis helpers ─────────────────────────────────────────────────────────────

// yTicks returns evenly spaced tick values: four, or three on short charts.
func yTicks(minVal, maxVal float64, height int) []float64 {
	if maxVal == minVal {
		return []float64{minVal}
	}
	n := 4
	if height <= 6 {
		n = 3
	}
	ticks := make([]float64, n)
	for i := range ticks {
		ticks[i] = minVal + float64(i)*(maxVal-minVal)/float64(n-1)
	}
	return ticks
}

// xAxisLabels places the first, middle and last labels across plotWidth.
func xAxisLabels(pts []Point, plotWidth int) string {
	buf := []rune(strings.Repeat(" ", plotWidth))
	writeAt := func(pos int, s string) {
		for i, ch := range []rune(s) {
			if pos+i >= 0 && pos+i < len(buf) {
				buf[pos+i] = ch
			}
		}
	}
	first, mid, last := pts[0].Label, pts[len(pts)/2].Label, pts[len(pts)-1].Label
	writeAt(0, first)
	if plotWidth >= len(first)+len(mid)+len(last)+4 {
		writeAt(plotWidth/2-len(mid)/2, mid)
	}
	writeAt(plotWidth-len(last), last)
	return strings.TrimRight(string(buf), " ")
}

// ─── Utilities ────────────────────────────────────────────────────────────────

// formatFloat keeps at most two decimals and drops trailing zeros.
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "."
	}
	if v == 0 {
		return "0"
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// Percent formats a share in [0, 1] as a percentage.
func Percent(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 1, 64) + "%"
}

// termWidth returns the terminal width from $COLUMNS, defaulting to 80.
func termWidth() int {
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if n, err := strconv.Atoi(cols); err == nil && n > 20 {
			return n
		}
	}
	return 80
}
