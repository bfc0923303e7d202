package insight

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/trendguard/trendguard/internal/classify"
	"github.com/trendguard/trendguard/internal/model"
)

// Signal source identifiers.
const (
	SourceGoogleTrends = "google_trends"
	SourceReddit       = "reddit"
)

// Coverage names which external sources contributed to a campaign result.
type Coverage string

const (
	CoverageBoth       Coverage = "search+community"
	CoverageSearchOnly Coverage = "search"
	CoverageCommunity  Coverage = "community"
	CoverageNone       Coverage = "none"
)

// MetricLine is one labelled, pre-formatted source metric.
type MetricLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SignalSection is the rendered state of one external sub-report.
// When Available is false, Unavailable carries the explicit placeholder and
// every other field is empty.
type SignalSection struct {
	Source         string       `json:"source"`
	Title          string       `json:"title"`
	Available      bool         `json:"available"`
	Unavailable    string       `json:"unavailable,omitempty"`
	Context        string       `json:"context,omitempty"`
	Metrics        []MetricLine `json:"metrics,omitempty"`
	RiskLevel      string       `json:"risk_level,omitempty"`
	RiskScore      string       `json:"risk_score,omitempty"`
	Recommendation string       `json:"recommendation,omitempty"`
	Signals        []string     `json:"signals,omitempty"`
}

// SignalsView holds both external sections. Each source is evaluated on
// its own; nothing is blended across sources.
type SignalsView struct {
	Coverage     Coverage      `json:"coverage"`
	GoogleTrends SignalSection `json:"google_trends"`
	Reddit       SignalSection `json:"reddit"`
}

const (
	titleGoogleTrends = "Google Trends Analysis"
	titleReddit       = "Reddit Community Analysis"
)

// AssembleSignals renders the optional external sub-reports.
// A sub-report without a metrics block is treated as absent.
func AssembleSignals(am *model.AdditionalMetrics) SignalsView {
	var g *model.GoogleTrendsReport
	var r *model.RedditReport
	if am != nil {
		if am.GoogleTrends != nil && am.GoogleTrends.Metrics != nil {
			g = am.GoogleTrends
		}
		if am.Reddit != nil && am.Reddit.Metrics != nil {
			r = am.Reddit
		}
	}

	switch {
	case g != nil && r != nil:
		return SignalsView{Coverage: CoverageBoth, GoogleTrends: searchSection(g), Reddit: communitySection(r)}
	case g != nil && r == nil:
		return SignalsView{Coverage: CoverageSearchOnly, GoogleTrends: searchSection(g), Reddit: unavailable(SourceReddit, titleReddit)}
	case g == nil && r != nil:
		return SignalsView{Coverage: CoverageCommunity, GoogleTrends: unavailable(SourceGoogleTrends, titleGoogleTrends), Reddit: communitySection(r)}
	default:
		return SignalsView{
			Coverage:     CoverageNone,
			GoogleTrends: unavailable(SourceGoogleTrends, titleGoogleTrends),
			Reddit:       unavailable(SourceReddit, titleReddit),
		}
	}
}

// Clone returns a deep copy of v.
func (v SignalsView) Clone() SignalsView {
	v.GoogleTrends = v.GoogleTrends.clone()
	v.Reddit = v.Reddit.clone()
	return v
}

func (s SignalSection) clone() SignalSection {
	s.Metrics = slices.Clone(s.Metrics)
	s.Signals = slices.Clone(s.Signals)
	return s
}

func unavailable(source, title string) SignalSection {
	return SignalSection{Source: source, Title: title, Unavailable: "data unavailable"}
}

func searchSection(rep *model.GoogleTrendsReport) SignalSection {
	m := rep.Metrics
	s := SignalSection{
		Source:    SourceGoogleTrends,
		Title:     titleGoogleTrends,
		Available: true,
		Metrics: []MetricLine{
			{Label: "Direction", Value: direction(m.Direction)},
			{Label: "Search Interest", Value: withSuffix(fixed(m.CurrentValue, 0), "/100")},
			{Label: "Slope", Value: signed(m.Slope, 1, 2, "")},
			{Label: "Peak Value", Value: fixed(m.PeakValue, 0)},
		},
	}
	applyRisk(&s, rep.RiskAnalysis)
	return s
}

func communitySection(rep *model.RedditReport) SignalSection {
	m := rep.Metrics
	subs := "various subreddits"
	if len(rep.SubredditsAnalyzed) > 0 {
		subs = strings.Join(rep.SubredditsAnalyzed, ", ")
	}
	s := SignalSection{
		Source:    SourceReddit,
		Title:     titleReddit,
		Available: true,
		Context:   fmt.Sprintf("Scraped from old.reddit.com: %s • %d posts", subs, rep.TotalPosts),
		Metrics: []MetricLine{
			{Label: "Avg Engagement", Value: fixed(m.AvgEngagement, 1)},
			{Label: "Engagement Δ", Value: signed(m.EngagementVelocity, 100, 1, "%")},
			{Label: "Post Frequency Δ", Value: signed(m.PostVelocity, 100, 1, "%")},
			{Label: "Sentiment Shift", Value: signed(m.SentimentShift, 1, 2, "")},
		},
	}
	applyRisk(&s, rep.RiskAnalysis)
	return s
}

// applyRisk fills the shared risk contract. A missing risk_level is derived
// from the score; a missing score leaves the level as reported.
func applyRisk(s *SignalSection, ra *model.RiskAnalysis) {
	s.RiskLevel = Placeholder
	s.RiskScore = Placeholder
	if ra == nil {
		return
	}
	level := strings.ToLower(strings.TrimSpace(ra.RiskLevel))
	if ra.RiskScore != nil {
		score := classify.RiskScoreScale.Clamp(*ra.RiskScore)
		s.RiskScore = strconv.FormatFloat(score, 'f', -1, 64) + "/100"
		if level == "" {
			level = classify.RiskScore(score)
		}
	}
	if level != "" {
		s.RiskLevel = level
	}
	s.Recommendation = ra.Recommendation
	s.Signals = append([]string(nil), ra.Signals...)
}

func direction(d string) string {
	switch strings.ToLower(d) {
	case "rising":
		return "Rising"
	case "declining":
		return "Declining"
	case "stable":
		return "Stable"
	case "":
		return Placeholder
	}
	return d
}

func fixed(v *float64, prec int) string {
	if v == nil || math.IsNaN(*v) {
		return Placeholder
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}

// signed formats v*scale with a leading "+" for positive values only.
func signed(v *float64, scale float64, prec int, suffix string) string {
	if v == nil || math.IsNaN(*v) {
		return Placeholder
	}
	x := *v * scale
	out := strconv.FormatFloat(x, 'f', prec, 64) + suffix
	if x > 0 {
		out = "+" + out
	}
	return out
}

func withSuffix(s, suffix string) string {
	if s == Placeholder {
		return s
	}
	return s + suffix
}
