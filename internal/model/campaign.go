package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ─── Campaign Input ───────────────────────────────────────────────────────────

// Platform is a target social platform.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformTwitter   Platform = "twitter"
	PlatformYouTube   Platform = "youtube"
	PlatformLinkedIn  Platform = "linkedin"
)

// Platforms lists every accepted platform in display order.
var Platforms = []Platform{PlatformInstagram, PlatformTikTok, PlatformTwitter, PlatformYouTube, PlatformLinkedIn}

// Valid reports whether p is one of the accepted platforms.
func (p Platform) Valid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// Duration bounds for CampaignInput.PlannedDurationDays.
const (
	MinDurationDays = 7
	MaxDurationDays = 365
)

// CampaignInput is the description of a planned campaign submitted for analysis.
// UploadedPostContent is produced by an ingestion step outside the core and is
// sent as null when absent.
type CampaignInput struct {
	Topic               string   `json:"topic"`
	Hashtags            []string `json:"hashtags"`
	Platform            Platform `json:"platform"`
	CampaignAim         string   `json:"campaign_aim"`
	TargetAudience      string   `json:"target_audience"`
	PlannedDurationDays int      `json:"planned_duration_days"`
	AdditionalContext   *string  `json:"additional_context"`
	UploadedPostContent *string  `json:"uploaded_post_content"`
}

// ParseHashtags splits a comma-separated hashtag field, trims each entry and
// drops empties. Order is preserved.
func ParseHashtags(field string) []string {
	parts := strings.Split(field, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// FieldError describes one rejected CampaignInput field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned for malformed user input (a CampaignInput or
// an empty trend selection). It lists every failing field, not just the first.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

// Validate checks required fields, the platform enum and the duration range.
// It returns nil or a *ValidationError.
func (in CampaignInput) Validate() error {
	var errs []FieldError
	required := []struct {
		field string
		value string
	}{
		{"topic", in.Topic},
		{"campaign_aim", in.CampaignAim},
		{"target_audience", in.TargetAudience},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, FieldError{Field: r.field, Message: "is required"})
		}
	}
	if len(in.Hashtags) == 0 {
		errs = append(errs, FieldError{Field: "hashtags", Message: "at least one hashtag is required"})
	}
	for i, h := range in.Hashtags {
		if strings.TrimSpace(h) == "" {
			errs = append(errs, FieldError{Field: "hashtags", Message: fmt.Sprintf("entry %d is empty", i)})
		}
	}
	if !in.Platform.Valid() {
		errs = append(errs, FieldError{
			Field:   "platform",
			Message: fmt.Sprintf("%q is not one of %s", in.Platform, joinPlatforms()),
		})
	}
	if in.PlannedDurationDays < MinDurationDays || in.PlannedDurationDays > MaxDurationDays {
		errs = append(errs, FieldError{
			Field:   "planned_duration_days",
			Message: fmt.Sprintf("must be between %d and %d, got %d", MinDurationDays, MaxDurationDays, in.PlannedDurationDays),
		})
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func joinPlatforms() string {
	names := make([]string, len(Platforms))
	for i, p := range Platforms {
		names[i] = string(p)
	}
	return strings.Join(names, "|")
}

// ─── Campaign Result ──────────────────────────────────────────────────────────

// Severity of a risk factor.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// RiskFactor is either a bare label or a structured record on the wire.
// Both forms decode into this struct; Bare records which form was seen.
type RiskFactor struct {
	Risk       string   `json:"risk"`
	Severity   Severity `json:"severity,omitempty"`
	Mitigation string   `json:"mitigation,omitempty"`
	Bare       bool     `json:"-"`
}

// UnmarshalJSON accepts `"label"` or `{"risk": ..., "severity": ..., "mitigation": ...}`.
func (r *RiskFactor) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		*r = RiskFactor{Risk: label, Bare: true}
		return nil
	}
	type record RiskFactor
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("risk factor: %w", err)
	}
	*r = RiskFactor(rec)
	return nil
}

// CompetitiveAnalysis is the competitive landscape block of a campaign result.
type CompetitiveAnalysis struct {
	ActiveCompetitors []string `json:"active_competitors,omitempty"`
	MarketSaturation  string   `json:"market_saturation,omitempty"`
	KeyPlayers        []string `json:"key_players,omitempty"`
}

// CampaignResult is the service's analysis of a CampaignInput.
// Optional fields are pointers or empty strings; absence is never an error.
type CampaignResult struct {
	ViabilityScore         *float64             `json:"viability_score,omitempty"`
	Summary                string               `json:"summary,omitempty"`
	PredictedLifecycleDays *int                 `json:"predicted_lifecycle_days,omitempty"`
	MarketStatus           string               `json:"market_status,omitempty"`
	RiskFactors            []RiskFactor         `json:"risk_factors,omitempty"`
	Recommendations        []string             `json:"recommendations,omitempty"`
	OptimalLaunchWindow    string               `json:"optimal_launch_window,omitempty"`
	CompetitiveAnalysis    *CompetitiveAnalysis `json:"competitive_analysis,omitempty"`
	AdditionalMetrics      *AdditionalMetrics   `json:"additional_metrics,omitempty"`
	AnalyzedAt             string               `json:"analyzed_at,omitempty"`
	ParseError             string               `json:"parse_error,omitempty"`
}

// UnmarshalJSON decodes the model-generated scalars leniently: numbers and
// numeric strings are accepted, fractional days are rounded, and any other
// value leaves the field absent instead of failing the whole result.
func (r *CampaignResult) UnmarshalJSON(data []byte) error {
	type record CampaignResult
	aux := struct {
		*record
		ViabilityScore         json.RawMessage `json:"viability_score"`
		PredictedLifecycleDays json.RawMessage `json:"predicted_lifecycle_days"`
	}{record: (*record)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.ViabilityScore = looseNumber(aux.ViabilityScore)
	r.PredictedLifecycleDays = nil
	if d := looseNumber(aux.PredictedLifecycleDays); d != nil && math.Abs(*d) < math.MaxInt32 {
		days := int(math.Round(*d))
		r.PredictedLifecycleDays = &days
	}
	return nil
}

// looseNumber reads a JSON number or numeric string. Null, non-numeric and
// non-finite values yield nil.
func looseNumber(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return nil
		}
		if v, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return nil
		}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
