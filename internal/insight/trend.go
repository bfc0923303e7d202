package insight

import (
	"encoding/json"
	"slices"
	"sort"
	"strings"

	"github.com/trendguard/trendguard/internal/model"
	"github.com/trendguard/trendguard/internal/narrative"
)

// HealthyMessage is the whole narrative of a trend with no detected decline.
const HealthyMessage = "No Decline Detected - Trend is Healthy! This trend is still in a growth or peak phase."

// MaxExplanationChars caps the AI explanation shown with a decline.
const MaxExplanationChars = 500

// ExplanationSuffix is appended to every shown AI explanation, truncated or not.
const ExplanationSuffix = "..."

// nonTextExplanation is shown when the service sends a non-string explanation.
const nonTextExplanation = "Analysis complete"

// StateShare is one state's share of a trend's observed days.
type StateShare struct {
	State model.LifecycleState `json:"state"`
	Share float64              `json:"share"`
}

// DeclineView is the presentation model of a decline snapshot.
type DeclineView struct {
	Date        string                `json:"date"`
	State       model.LifecycleState  `json:"state"`
	Archetype   string                `json:"archetype,omitempty"`
	Explanation narrative.Explanation `json:"explanation"`
	AIAnalysis  string                `json:"ai_analysis,omitempty"`
}

// TrendView is the presentation model of a trend analysis.
// Narrative is HealthyMessage when no decline was detected and the causal
// chain otherwise.
type TrendView struct {
	TrendName         string       `json:"trend_name"`
	DeclineDetected   bool         `json:"decline_detected"`
	Narrative         string       `json:"narrative"`
	Decline           *DeclineView `json:"decline,omitempty"`
	StateDistribution []StateShare `json:"state_distribution,omitempty"`
	Points            int          `json:"points"`
}

// AssembleTrend derives the view model of a trend analysis.
func AssembleTrend(a *model.TrendAnalysis) TrendView {
	if a == nil {
		a = &model.TrendAnalysis{}
	}
	v := TrendView{
		TrendName:         a.TrendName,
		DeclineDetected:   a.DeclineDetected,
		Narrative:         HealthyMessage,
		StateDistribution: Distribution(a.StateDistribution),
		Points:            a.TotalPoints,
	}
	if v.Points == 0 {
		v.Points = len(a.LifecycleData)
	}
	if !a.DeclineDetected {
		return v
	}

	info := a.DeclineInfo
	if info == nil {
		info = &model.DeclineInfo{}
	}
	var m model.Metrics
	if info.Metrics != nil {
		m = *info.Metrics
	}
	d := &DeclineView{
		Date:        orPlaceholder(info.Date),
		State:       info.State,
		Archetype:   info.Archetype,
		Explanation: narrative.Explain(info.State, m, info.Archetype),
	}
	if info.Investigation != nil {
		d.AIAnalysis = aiAnalysis(info.Investigation.Explanation)
	}
	v.Decline = d
	v.Narrative = d.Explanation.CausalChain
	return v
}

// Clone returns a deep copy of v.
func (v TrendView) Clone() TrendView {
	v.StateDistribution = slices.Clone(v.StateDistribution)
	if v.Decline != nil {
		d := *v.Decline
		d.Explanation = d.Explanation.Clone()
		v.Decline = &d
	}
	return v
}

// aiAnalysis truncates a string explanation to MaxExplanationChars runes and
// appends ExplanationSuffix unconditionally. Empty or null explanations
// yield "" (no section).
func aiAnalysis(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nonTextExplanation + ExplanationSuffix
	}
	if text == "" {
		return ""
	}
	r := []rune(text)
	if len(r) > MaxExplanationChars {
		r = r[:MaxExplanationChars]
	}
	return string(r) + ExplanationSuffix
}

// Distribution normalises a state distribution (counts or proportions) into
// shares summing to 1, ordered by lifecycle stage and then by name for
// states outside the known lifecycle. Non-positive entries are dropped.
func Distribution(dist map[string]float64) []StateShare {
	var total float64
	for _, n := range dist {
		if n > 0 {
			total += n
		}
	}
	if total == 0 {
		return nil
	}

	rank := make(map[model.LifecycleState]int, len(model.LifecycleStates))
	for i, s := range model.LifecycleStates {
		rank[s] = i
	}
	out := make([]StateShare, 0, len(dist))
	for name, n := range dist {
		if n <= 0 {
			continue
		}
		out = append(out, StateShare{State: model.LifecycleState(name), Share: n / total})
	}
	sort.Slice(out, func(i, j int) bool {
		ri, iok := rank[out[i].State]
		rj, jok := rank[out[j].State]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		}
		return out[i].State < out[j].State
	})
	return out
}

// ─── Trend List ───────────────────────────────────────────────────────────────

// TrendListView is the presentation model of the trend catalogue.
type TrendListView struct {
	Trends          []model.TrendSummary `json:"trends"`
	Count           int                  `json:"count"`
	TotalDataPoints int                  `json:"total_data_points"`
}

// Clone returns a deep copy of v.
func (v TrendListView) Clone() TrendListView {
	v.Trends = slices.Clone(v.Trends)
	return v
}

// AssembleTrendList copies the catalogue and totals its observed days.
func AssembleTrendList(trends []model.TrendSummary) TrendListView {
	v := TrendListView{Trends: append([]model.TrendSummary(nil), trends...), Count: len(trends)}
	for _, t := range trends {
		if t.DataPoints > 0 {
			v.TotalDataPoints += t.DataPoints
		}
	}
	return v
}
