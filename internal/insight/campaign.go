// Package insight assembles service payloads into read-only view models.
// Assembly is a pure function of its input: payloads are never mutated, and
// absent optional fields become explicit placeholders rather than errors.
package insight

import (
	"slices"
	"strconv"

	"github.com/trendguard/trendguard/internal/classify"
	"github.com/trendguard/trendguard/internal/model"
)

// Placeholder stands in for an absent scalar field.
const Placeholder = "—"

// MaxListItems caps risk factors and recommendations in a campaign view.
const MaxListItems = 5

// DefaultViabilityScore is shown when the service omits a viability score.
const DefaultViabilityScore = 50

// RiskItem is one normalised risk factor.
type RiskItem struct {
	Risk       string         `json:"risk"`
	Severity   model.Severity `json:"severity"`
	Mitigation string         `json:"mitigation,omitempty"`
}

// CampaignView is the presentation model of a campaign analysis.
type CampaignView struct {
	Score           float64          `json:"score"`
	Verdict         classify.Verdict `json:"verdict"`
	Summary         string           `json:"summary,omitempty"`
	LifecycleDays   string           `json:"lifecycle_days"`
	MarketStatus    string           `json:"market_status"`
	Saturation      string           `json:"saturation"`
	Risks           []RiskItem       `json:"risks"`
	Recommendations [][]Segment      `json:"recommendations"`
	LaunchWindow    string           `json:"launch_window,omitempty"`
	Signals         SignalsView      `json:"signals"`
	Warnings        []string         `json:"warnings,omitempty"`
}

// AssembleCampaign derives the view model of a campaign result.
// A nil result yields a view built entirely from defaults and placeholders.
func AssembleCampaign(r *model.CampaignResult) CampaignView {
	if r == nil {
		r = &model.CampaignResult{}
	}

	score := float64(DefaultViabilityScore)
	if r.ViabilityScore != nil {
		score = classify.ViabilityScale.Clamp(*r.ViabilityScore)
	}

	v := CampaignView{
		Score:         score,
		Verdict:       classify.Viability(score),
		Summary:       r.Summary,
		LifecycleDays: Placeholder,
		MarketStatus:  orPlaceholder(r.MarketStatus),
		Saturation:    Placeholder,
		LaunchWindow:  r.OptimalLaunchWindow,
		Signals:       AssembleSignals(r.AdditionalMetrics),
	}
	if r.PredictedLifecycleDays != nil && *r.PredictedLifecycleDays > 0 {
		v.LifecycleDays = strconv.Itoa(*r.PredictedLifecycleDays)
	}
	if r.CompetitiveAnalysis != nil {
		v.Saturation = orPlaceholder(r.CompetitiveAnalysis.MarketSaturation)
	}
	if r.ParseError != "" {
		v.Warnings = append(v.Warnings, r.ParseError)
	}

	risks := r.RiskFactors
	if len(risks) > MaxListItems {
		risks = risks[:MaxListItems]
	}
	v.Risks = make([]RiskItem, len(risks))
	for i, rf := range risks {
		v.Risks[i] = RiskItem{Risk: rf.Risk, Severity: normaliseSeverity(rf.Severity), Mitigation: rf.Mitigation}
	}

	recs := r.Recommendations
	if len(recs) > MaxListItems {
		recs = recs[:MaxListItems]
	}
	v.Recommendations = make([][]Segment, len(recs))
	for i, rec := range recs {
		v.Recommendations[i] = ParseEmphasis(rec)
	}
	return v
}

// Clone returns a deep copy of v.
func (v CampaignView) Clone() CampaignView {
	v.Risks = slices.Clone(v.Risks)
	if v.Recommendations != nil {
		recs := make([][]Segment, len(v.Recommendations))
		for i, rec := range v.Recommendations {
			recs[i] = slices.Clone(rec)
		}
		v.Recommendations = recs
	}
	v.Signals = v.Signals.Clone()
	v.Warnings = slices.Clone(v.Warnings)
	return v
}

func normaliseSeverity(s model.Severity) model.Severity {
	switch s {
	case model.SeverityHigh, model.SeverityMedium, model.SeverityLow:
		return s
	}
	return model.SeverityMedium
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}
