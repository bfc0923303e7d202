package pipeline_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/trendguard/trendguard/internal/model"
	"github.com/trendguard/trendguard/internal/pipeline"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

// jsonl joins lines with newlines and appends a trailing newline.
func jsonl(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

// ─── Documents ────────────────────────────────────────────────────────────────

func TestReadCampaignResult(t *testing.T) {
	input := `{"viability_score": 72, "predicted_lifecycle_days": 21,
		"risk_factors": ["Oversaturated niche", {"risk": "Creator churn", "severity": "high"}],
		"recommendations": ["Lead with **UGC**"]}`
	res, err := pipeline.ReadCampaignResult(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ViabilityScore == nil || *res.ViabilityScore != 72 {
		t.Errorf("viability_score: expected 72, got %v", res.ViabilityScore)
	}
	if res.PredictedLifecycleDays == nil || *res.PredictedLifecycleDays != 21 {
		t.Errorf("predicted_lifecycle_days: expected 21, got %v", res.PredictedLifecycleDays)
	}
	if len(res.RiskFactors) != 2 {
		t.Fatalf("expected 2 risk factors, got %d", len(res.RiskFactors))
	}
	if res.RiskFactors[0].Risk != "Oversaturated niche" || !res.RiskFactors[0].Bare {
		t.Errorf("bare risk factor: got %+v", res.RiskFactors[0])
	}
	if res.RiskFactors[1].Severity != model.SeverityHigh {
		t.Errorf("object risk factor severity: got %q", res.RiskFactors[1].Severity)
	}
}

func TestReadTrendAnalysis(t *testing.T) {
	input := `{"trend_name":"planking","decline_detected":true,
		"decline_info":{"date":"2024-04-02","state":"Decline","metrics":{"velocity":0.2,"fatigue":0.8,"retention":0.3}}}`
	a, err := pipeline.ReadTrendAnalysis(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.TrendName != "planking" || !a.DeclineDetected {
		t.Errorf("unexpected analysis: %+v", a)
	}
	if a.DeclineInfo == nil || a.DeclineInfo.Metrics == nil || *a.DeclineInfo.Metrics.Fatigue != 0.8 {
		t.Errorf("decline metrics not decoded: %+v", a.DeclineInfo)
	}
}

func TestReadCampaignInputHashtagForms(t *testing.T) {
	tests := []struct {
		name string
		json string
		want []string
	}{
		{"array", `{"topic":"x","hashtags":["#a", " #b ", ""]}`, []string{"#a", "#b"}},
		{"string", `{"topic":"x","hashtags":"#a, #b ,"}`, []string{"#a", "#b"}},
		{"absent", `{"topic":"x"}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := pipeline.ReadCampaignInput(strings.NewReader(tt.json))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if in.Topic != "x" {
				t.Errorf("topic: expected x, got %q", in.Topic)
			}
			if strings.Join(in.Hashtags, "|") != strings.Join(tt.want, "|") {
				t.Errorf("hashtags: expected %v, got %v", tt.want, in.Hashtags)
			}
		})
	}
}

func TestReadCampaignInputBadHashtags(t *testing.T) {
	_, err := pipeline.ReadCampaignInput(strings.NewReader(`{"hashtags": 7}`))
	if err == nil || !strings.Contains(err.Error(), "hashtags") {
		t.Errorf("expected hashtags error, got %v", err)
	}
}

func TestReadDocumentEmptyInput(t *testing.T) {
	_, err := pipeline.ReadCampaignResult(strings.NewReader("  \n"))
	if err == nil || !strings.Contains(err.Error(), "stdin empty") {
		t.Errorf("expected empty-input error, got %v", err)
	}
}

func TestReadDocumentInvalidJSON(t *testing.T) {
	if _, err := pipeline.ReadTrendAnalysis(strings.NewReader("{nope")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

// ─── JSONL streams ────────────────────────────────────────────────────────────

func TestReadTrendAnalysesSkipsBlankAndComments(t *testing.T) {
	input := jsonl(
		`// exported from trends scan`,
		`{"trend_name":"planking","total_points":30}`,
		``,
		`{"trend_name":"ice bucket","decline_detected":false}`,
	)
	got, err := pipeline.ReadTrendAnalyses(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 analyses, got %d", len(got))
	}
	if got[0].TotalPoints != 30 || got[1].TrendName != "ice bucket" {
		t.Errorf("unexpected analyses: %+v", got)
	}
}

func TestReadTrendAnalysesReportsLine(t *testing.T) {
	input := jsonl(`{"trend_name":"a"}`, `{broken`)
	_, err := pipeline.ReadTrendAnalyses(strings.NewReader(input))
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("expected line 2 error, got %v", err)
	}
}

func TestReadTrendAnalysesRequiresName(t *testing.T) {
	_, err := pipeline.ReadTrendAnalyses(strings.NewReader(jsonl(`{"total_points":3}`)))
	if err == nil || !strings.Contains(err.Error(), "trend_name") {
		t.Errorf("expected missing trend_name error, got %v", err)
	}
}

func TestReadTrendAnalysesEmpty(t *testing.T) {
	if _, err := pipeline.ReadTrendAnalyses(strings.NewReader("")); err == nil {
		t.Error("expected error for empty stream")
	}
}

func TestReadFirstTrendAnalysis(t *testing.T) {
	pretty := "{\n  \"trend_name\": \"planking\",\n  \"decline_detected\": true\n}\n"
	a, err := pipeline.ReadFirstTrendAnalysis(strings.NewReader(pretty))
	if err != nil {
		t.Fatalf("pretty document: %v", err)
	}
	if a.TrendName != "planking" || !a.DeclineDetected {
		t.Errorf("unexpected analysis %+v", a)
	}

	stream := jsonl(`{"trend_name":"first"}`, `{"trend_name":"second"}`)
	a, err = pipeline.ReadFirstTrendAnalysis(strings.NewReader(stream))
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if a.TrendName != "first" {
		t.Errorf("expected first record, got %q", a.TrendName)
	}
}

func TestReadFirstTrendAnalysisErrors(t *testing.T) {
	if _, err := pipeline.ReadFirstTrendAnalysis(strings.NewReader("  \n")); err == nil || !strings.Contains(err.Error(), "no document") {
		t.Errorf("empty input: got %v", err)
	}
	if _, err := pipeline.ReadFirstTrendAnalysis(strings.NewReader(`{"total_points":3}`)); err == nil {
		t.Error("expected error for missing trend_name")
	}
}

func TestWriteJSONLRoundTrip(t *testing.T) {
	in := []model.TrendAnalysis{{TrendName: "a", TotalPoints: 1}, {TrendName: "b", DeclineDetected: true}}
	var buf bytes.Buffer
	if err := pipeline.WriteJSONL(&buf, in); err != nil {
		t.Fatalf("WriteJSONL: %v", err)
	}
	if n := len(nonEmptyLines(buf.String())); n != 2 {
		t.Fatalf("expected 2 lines, got %d", n)
	}
	out, err := pipeline.ReadTrendAnalyses(&buf)
	if err != nil {
		t.Fatalf("ReadTrendAnalyses: %v", err)
	}
	if out[0].TrendName != "a" || !out[1].DeclineDetected {
		t.Errorf("round trip mismatch: %+v", out)
	}
}
