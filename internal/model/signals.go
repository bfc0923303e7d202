package model

// ─── External Signal Reports ──────────────────────────────────────────────────

// RiskAnalysis is the risk block shared by every external signal report.
type RiskAnalysis struct {
	RiskLevel      string   `json:"risk_level,omitempty"`
	RiskScore      *float64 `json:"risk_score,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
	Signals        []string `json:"signals,omitempty"`
}

// SearchInterestMetrics is the Google Trends metrics bag.
type SearchInterestMetrics struct {
	Direction    string   `json:"direction,omitempty"` // rising|declining|stable
	CurrentValue *float64 `json:"current_value,omitempty"`
	Slope        *float64 `json:"slope,omitempty"`
	PeakValue    *float64 `json:"peak_value,omitempty"`
}

// CommunityMetrics is the Reddit metrics bag.
type CommunityMetrics struct {
	AvgEngagement      *float64 `json:"avg_engagement,omitempty"`
	EngagementVelocity *float64 `json:"engagement_velocity,omitempty"`
	PostVelocity       *float64 `json:"post_velocity,omitempty"`
	SentimentShift     *float64 `json:"sentiment_shift,omitempty"`
}

// GoogleTrendsReport is the search-interest sub-report.
type GoogleTrendsReport struct {
	Metrics      *SearchInterestMetrics `json:"metrics,omitempty"`
	RiskAnalysis *RiskAnalysis          `json:"risk_analysis,omitempty"`
}

// RedditReport is the community-signal sub-report.
type RedditReport struct {
	Metrics            *CommunityMetrics `json:"metrics,omitempty"`
	RiskAnalysis       *RiskAnalysis     `json:"risk_analysis,omitempty"`
	SubredditsAnalyzed []string          `json:"subreddits_analyzed,omitempty"`
	TotalPosts         int               `json:"total_posts,omitempty"`
}

// AdditionalMetrics nests the optional external sub-reports of a campaign result.
// Each pointer is nil when the source was not consulted.
type AdditionalMetrics struct {
	GoogleTrends *GoogleTrendsReport `json:"google_trends,omitempty"`
	Reddit       *RedditReport       `json:"reddit,omitempty"`
}
