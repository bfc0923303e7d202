package model

// ─── Pass-through Payloads ────────────────────────────────────────────────────

// TrendHealth is the quick health check of an existing trend.
type TrendHealth struct {
	TrendName       string   `json:"trend_name"`
	HealthStatus    string   `json:"health_status,omitempty"`
	HealthScore     *float64 `json:"health_score,omitempty"`
	Sentiment       string   `json:"sentiment,omitempty"`
	ActivePlatforms []string `json:"active_platforms,omitempty"`
	KeyCreators     []string `json:"key_creators,omitempty"`
	RecentNews      []string `json:"recent_news,omitempty"`
	DeclineSignals  []string `json:"decline_signals,omitempty"`
	Recommendation  string   `json:"recommendation,omitempty"`
	RawAnalysis     string   `json:"raw_analysis,omitempty"`
	CheckedAt       string   `json:"checked_at,omitempty"`
}

// HashtagScore is one row of a hashtag comparison.
type HashtagScore struct {
	Hashtag         string   `json:"hashtag"`
	PopularityScore *float64 `json:"popularity_score,omitempty"`
	Competition     string   `json:"competition,omitempty"`
	TrendDirection  string   `json:"trend_direction,omitempty"`
	SaturationRisk  string   `json:"saturation_risk,omitempty"`
	Recommended     bool     `json:"recommended"`
	Reason          string   `json:"reason,omitempty"`
}

// HashtagComparison ranks candidate hashtags for a platform.
type HashtagComparison struct {
	Platform        string         `json:"platform,omitempty"`
	Comparison      []HashtagScore `json:"comparison,omitempty"`
	BestCombination []string       `json:"best_combination,omitempty"`
	Avoid           []string       `json:"avoid,omitempty"`
	StrategyTip     string         `json:"strategy_tip,omitempty"`
	RawAnalysis     string         `json:"raw_analysis,omitempty"`
}

// ServiceHealth is the analysis service's liveness report.
type ServiceHealth struct {
	Status    string          `json:"status"`
	Timestamp string          `json:"timestamp,omitempty"`
	Services  map[string]bool `json:"services,omitempty"`
}
