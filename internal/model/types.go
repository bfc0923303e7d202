// Package model defines the canonical data types used throughout trendguard.
// These types mirror the analysis service's JSON payloads and the result
// envelope that every command returns. Payload types are treated as
// immutable once decoded; derived views live in package insight.
package model

import (
	"time"
)

// ─── Result Envelope ─────────────────────────────────────────────────────────

// ResultStats carries timing metadata for a command result.
type ResultStats struct {
	DurationMs int64 `json:"duration_ms"`
	Items      int   `json:"items"`
}

// Result is the uniform envelope returned by every command.
// The Data field holds the typed payload; Kind identifies what is in it.
// Renderers switch on Kind to format output appropriately.
type Result struct {
	Kind        string      `json:"kind"`
	GeneratedAt time.Time   `json:"generated_at"`
	Command     string      `json:"command"`
	Data        interface{} `json:"data"`
	Warnings    []string    `json:"warnings,omitempty"`
	Stats       ResultStats `json:"stats"`
}

// Kind constants for Result.Kind.
const (
	KindCampaign      = "campaign"
	KindTrend         = "trend"
	KindTrendList     = "trend_list"
	KindTrendScan     = "trend_scan"
	KindTrendHealth   = "trend_health"
	KindTrendStats    = "trend_stats"
	KindHashtags      = "hashtag_comparison"
	KindServiceHealth = "service_health"
	KindTable         = "table"
)

// Table is a generic two-dimensional result used by commands whose output
// has no dedicated Kind (for example `config get`).
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}
