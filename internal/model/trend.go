package model

import (
	"encoding/json"
)

// ─── Trend Types ──────────────────────────────────────────────────────────────

// LifecycleState is a hidden-state label assigned by the service's lifecycle model.
type LifecycleState string

const (
	StateEmerging   LifecycleState = "Emerging"
	StateGrowth     LifecycleState = "Growth"
	StatePeak       LifecycleState = "Peak"
	StateSaturation LifecycleState = "Saturation"
	StateDecline    LifecycleState = "Decline"
)

// LifecycleStates lists the states in lifecycle order.
var LifecycleStates = []LifecycleState{StateEmerging, StateGrowth, StatePeak, StateSaturation, StateDecline}

// TrendSummary is one entry of the trend catalogue.
type TrendSummary struct {
	TrendName  string `json:"trend_name"`
	Archetype  string `json:"archetype,omitempty"`
	DataPoints int    `json:"data_points"`
	StartDate  string `json:"start_date,omitempty"`
	EndDate    string `json:"end_date,omitempty"`
}

// TrendList is the wire envelope of the trend catalogue.
type TrendList struct {
	Trends  []TrendSummary `json:"trends"`
	Count   int            `json:"count"`
	Message string         `json:"message,omitempty"`
}

// Metrics is the velocity/fatigue/retention triple, each normalised to [0,1].
// A nil field was absent from the payload.
type Metrics struct {
	Velocity  *float64 `json:"velocity,omitempty"`
	Fatigue   *float64 `json:"fatigue,omitempty"`
	Retention *float64 `json:"retention,omitempty"`
}

// LifecyclePoint is one observed day of a trend.
type LifecyclePoint struct {
	Date      string         `json:"date"`
	Velocity  float64        `json:"velocity"`
	Fatigue   float64        `json:"fatigue"`
	Retention float64        `json:"retention"`
	State     LifecycleState `json:"state,omitempty"`
}

// Investigation carries the service's free-text explanation of a decline.
// Explanation is kept raw because the service does not guarantee a string.
type Investigation struct {
	Explanation     json.RawMessage `json:"explanation,omitempty"`
	ConfidenceScore *float64        `json:"confidence_score,omitempty"`
}

// DeclineInfo is the snapshot captured where a trend is judged to be declining.
type DeclineInfo struct {
	Date          string         `json:"date"`
	State         LifecycleState `json:"state"`
	Metrics       *Metrics       `json:"metrics,omitempty"`
	Archetype     string         `json:"archetype,omitempty"`
	Investigation *Investigation `json:"investigation,omitempty"`
}

// TrendAnalysis is the service's lifecycle analysis of one trend.
// StateDistribution may hold raw counts or proportions; consumers normalise.
type TrendAnalysis struct {
	TrendName         string             `json:"trend_name"`
	TotalPoints       int                `json:"total_points,omitempty"`
	LifecycleData     []LifecyclePoint   `json:"lifecycle_data,omitempty"`
	StateDistribution map[string]float64 `json:"state_distribution,omitempty"`
	DeclineDetected   bool               `json:"decline_detected"`
	DeclineInfo       *DeclineInfo       `json:"decline_info,omitempty"`
}
