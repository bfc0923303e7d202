package render_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendguard/trendguard/internal/analyze"
	"github.com/trendguard/trendguard/internal/insight"
	"github.com/trendguard/trendguard/internal/model"
	"github.com/trendguard/trendguard/internal/render"
)

func ptr[T any](v T) *T { return &v }

func result(kind string, data any) *model.Result {
	return &model.Result{
		Kind:        kind,
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Command:     "test",
		Data:        data,
	}
}

func campaign() *insight.CampaignView {
	v := insight.AssembleCampaign(&model.CampaignResult{
		ViabilityScore:      ptr(82.0),
		Summary:             "Strong organic momentum",
		MarketStatus:        "emerging",
		OptimalLaunchWindow: "next 2 weeks",
		RiskFactors: []model.RiskFactor{
			{Risk: "Creator fatigue", Severity: model.SeverityHigh, Mitigation: "Rotate creators"},
		},
		Recommendations: []string{"Post **daily** at peak hours"},
	})
	return &v
}

func declining() *insight.TrendView {
	v := insight.AssembleTrend(&model.TrendAnalysis{
		TrendName:       "planking",
		TotalPoints:     30,
		DeclineDetected: true,
		StateDistribution: map[string]float64{
			"Growth":  10,
			"Decline": 10,
		},
		DeclineInfo: &model.DeclineInfo{
			Date:  "2024-04-02",
			State: model.StateDecline,
			Metrics: &model.Metrics{
				Velocity:  ptr(0.2),
				Fatigue:   ptr(0.8),
				Retention: ptr(0.3),
			},
		},
	})
	return &v
}

func trendList() *insight.TrendListView {
	v := insight.AssembleTrendList([]model.TrendSummary{
		{TrendName: "planking", Archetype: "flash", DataPoints: 30, StartDate: "2024-03-01", EndDate: "2024-03-30"},
		{TrendName: "ice bucket", DataPoints: 12},
	})
	return &v
}

// ─── Format validation ────────────────────────────────────────────────────────

func TestValidFormat(t *testing.T) {
	for _, f := range render.Formats {
		assert.True(t, render.ValidFormat(f), f)
	}
	assert.False(t, render.ValidFormat("xml"))
	assert.False(t, render.ValidFormat(""))
}

// ─── JSON ─────────────────────────────────────────────────────────────────────

func TestJSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.Render(&buf, result(model.KindCampaign, campaign()), render.FormatJSON))

	var env struct {
		Kind string `json:"kind"`
		Data struct {
			Score   float64 `json:"score"`
			Verdict struct {
				Label string `json:"label"`
			} `json:"verdict"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.Equal(t, model.KindCampaign, env.Kind)
	assert.Equal(t, 82.0, env.Data.Score)
	assert.Equal(t, "High Potential", env.Data.Verdict.Label)
}

func TestJSONLOneRecordPerTrend(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.Render(&buf, result(model.KindTrendList, trendList()), render.FormatJSONL))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var first model.TrendSummary
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "planking", first.TrendName)
}

// ─── CSV / TSV ────────────────────────────────────────────────────────────────

func TestCSVTrendList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.Render(&buf, result(model.KindTrendList, trendList()), render.FormatCSV))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"trend", "archetype", "data_points", "start", "end"}, records[0])
	assert.Equal(t, []string{"planking", "flash", "30", "2024-03-01", "2024-03-30"}, records[1])
	assert.Equal(t, insight.Placeholder, records[2][1])
}

func TestTSVServiceHealthSorted(t *testing.T) {
	var buf bytes.Buffer
	health := &model.ServiceHealth{Status: "ok", Services: map[string]bool{"reddit": false, "gemini": true}}
	require.NoError(t, render.Render(&buf, result(model.KindServiceHealth, health), render.FormatTSV))

	want := "service\tstatus\napi\tok\ngemini\tup\nreddit\tdown\n"
	assert.Equal(t, want, buf.String())
}

func TestCSVTrendStats(t *testing.T) {
	report, err := analyze.Trend(&model.TrendAnalysis{
		TrendName: "planking",
		LifecycleData: []model.LifecyclePoint{
			{Date: "2024-03-01", Velocity: 0.9, Fatigue: 0.2, Retention: 0.5},
			{Date: "2024-03-02", Velocity: 0.5, Fatigue: 0.4, Retention: 0.5},
		},
	}, analyze.Linear)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, render.Render(&buf, result(model.KindTrendStats, report), render.FormatCSV))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "metric", records[0][0])
	assert.Equal(t, "slope/day", records[0][8])
	assert.Equal(t, []string{"velocity", "0.70", "0.70", "0.50", "0.90", "0.90", "0.50", "-0.40", "-0.4000", "1.00", "falling"}, records[1])
	assert.Equal(t, "flat", records[3][10])
}

func TestCSVUnknownPayloadFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.Render(&buf, result("mystery", map[string]int{"n": 1}), render.FormatCSV))
	assert.Contains(t, buf.String(), `"{""n"":1}"`)
}

// ─── Table ────────────────────────────────────────────────────────────────────

func TestTableCampaign(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.Render(&buf, result(model.KindCampaign, campaign()), render.FormatTable))

	out := buf.String()
	assert.Contains(t, out, "Campaign Viability: 82/100  [High Potential]")
	assert.Contains(t, out, "Creator fatigue")
	assert.Contains(t, out, "HIGH")
	assert.Contains(t, out, "1. Post daily at peak hours")
	assert.NotContains(t, out, "**")
	assert.Contains(t, out, "data unavailable")
}

func TestTableTrendDecline(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.Render(&buf, result(model.KindTrend, declining()), render.FormatTable))

	out := buf.String()
	assert.Contains(t, out, "Decline detected on 2024-04-02")
	assert.Contains(t, out, "80%")
	assert.Contains(t, out, "Action:")
	assert.Contains(t, out, "State Distribution (30 points)")
	assert.Contains(t, out, "50.0%")
}

func TestTableHealthyTrend(t *testing.T) {
	v := insight.AssembleTrend(&model.TrendAnalysis{TrendName: "sourdough"})
	var buf bytes.Buffer
	require.NoError(t, render.Render(&buf, result(model.KindTrend, &v), render.FormatTable))
	assert.Contains(t, buf.String(), insight.HealthyMessage)
	assert.NotContains(t, buf.String(), "Decline detected")
}

func TestTableEmptyList(t *testing.T) {
	empty := insight.AssembleTrendList(nil)
	var buf bytes.Buffer
	require.NoError(t, render.Render(&buf, result(model.KindTrendList, &empty), render.FormatTable))
	assert.Equal(t, "(no results)\n", buf.String())
}

func TestTableHashtags(t *testing.T) {
	cmp := &model.HashtagComparison{
		Platform: "tiktok",
		Comparison: []model.HashtagScore{
			{Hashtag: "#fyp", PopularityScore: ptr(95.0), Competition: "high", Recommended: false},
			{Hashtag: "#booktok", PopularityScore: ptr(70.0), Competition: "medium", Recommended: true},
		},
		BestCombination: []string{"#booktok", "#reads"},
		StrategyTip:     "Pair a niche tag with a broad one",
	}
	var buf bytes.Buffer
	require.NoError(t, render.Render(&buf, result(model.KindHashtags, cmp), render.FormatTable))

	out := buf.String()
	assert.Contains(t, out, "Hashtags on tiktok")
	assert.Contains(t, out, "#booktok")
	assert.Contains(t, out, "Best combination: #booktok #reads")
	assert.Contains(t, out, "Tip: Pair a niche tag with a broad one")
}

// ─── Markdown ─────────────────────────────────────────────────────────────────

func TestMarkdownKeepsEmphasis(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.Render(&buf, result(model.KindCampaign, campaign()), render.FormatMD))

	out := buf.String()
	assert.Contains(t, out, "## Campaign Viability: 82/100 (High Potential)")
	assert.Contains(t, out, "1. Post **daily** at peak hours")
	assert.Contains(t, out, "- **Creator fatigue** (high): Rotate creators")
}

func TestMarkdownEscapesPipes(t *testing.T) {
	tbl := &model.Table{Columns: []string{"KEY", "VALUE"}, Rows: [][]string{{"a|b", "line1\nline2"}}}
	var buf bytes.Buffer
	require.NoError(t, render.Render(&buf, result(model.KindTable, tbl), render.FormatMD))

	want := "| KEY | VALUE |\n|----|----|\n| a\\|b | line1 line2 |\n"
	assert.Equal(t, want, buf.String())
}

// ─── Footer / RenderTo ────────────────────────────────────────────────────────

func TestPrintFooter(t *testing.T) {
	r := result(model.KindTrendScan, nil)
	r.Warnings = []string{"trend \"x\": not found"}
	r.Stats = model.ResultStats{DurationMs: 42, Items: 3}

	var quiet bytes.Buffer
	render.PrintFooter(&quiet, r, false)
	assert.Equal(t, "⚠  trend \"x\": not found\n", quiet.String())

	var verbose bytes.Buffer
	render.PrintFooter(&verbose, r, true)
	assert.Contains(t, verbose.String(), "[2026-03-01T12:00:00Z • 3 items • 42ms]")
}

func TestRenderToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, render.RenderTo(path, result(model.KindTrendList, trendList()), render.FormatJSON))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind": "trend_list"`)
}
