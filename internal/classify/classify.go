// Package classify maps continuous metrics onto discrete tiers.
// Every threshold used by trendguard lives here; other packages call
// through these functions instead of comparing against literals.
// All functions are pure; no I/O.
package classify

import (
	"math"
)

// Band pairs an exclusive upper bound with the label assigned to values below it.
type Band[L any] struct {
	Upper float64
	Label L
}

// Scale is an ordered set of bands over a declared [Min, Max] range.
// Bands must have strictly increasing bounds; the final band's bound is
// ignored and treated as +Inf, so every value maps to exactly one label.
type Scale[L any] struct {
	Min   float64
	Max   float64
	Bands []Band[L]
}

// Clamp restricts v to [min, max]. NaN clamps to min and ±Inf to the
// nearest bound, so the result is always finite and in range.
func Clamp(v, min, max float64) float64 {
	switch {
	case math.IsNaN(v):
		return min
	case v < min:
		return min
	case v > max:
		return max
	}
	return v
}

// Classify returns the label of the first band whose bound is greater than value.
// The final band catches everything else.
func Classify[L any](value float64, bands []Band[L]) L {
	for i, b := range bands {
		if i == len(bands)-1 || value < b.Upper {
			return b.Label
		}
	}
	var zero L
	return zero
}

// Of clamps value to the scale's range and classifies it.
func (s Scale[L]) Of(value float64) L {
	return Classify(Clamp(value, s.Min, s.Max), s.Bands)
}

// Clamp restricts value to the scale's declared range.
func (s Scale[L]) Clamp(value float64) float64 {
	return Clamp(value, s.Min, s.Max)
}

// ─── Viability ────────────────────────────────────────────────────────────────

// Tone is the presentation colour family attached to a viability label.
type Tone string

const (
	ToneRed     Tone = "red"
	ToneAmber   Tone = "amber"
	ToneEmerald Tone = "emerald"
)

// Verdict is a viability label with its colour tone.
type Verdict struct {
	Label string `json:"label"`
	Tone  Tone   `json:"tone"`
}

const (
	HighRisk      = "High Risk"
	ModerateRisk  = "Moderate Risk"
	HighPotential = "High Potential"
)

// ViabilityScale classifies a 0-100 campaign viability score.
var ViabilityScale = Scale[Verdict]{
	Min: 0,
	Max: 100,
	Bands: []Band[Verdict]{
		{Upper: 40, Label: Verdict{Label: HighRisk, Tone: ToneRed}},
		{Upper: 75, Label: Verdict{Label: ModerateRisk, Tone: ToneAmber}},
		{Upper: math.Inf(1), Label: Verdict{Label: HighPotential, Tone: ToneEmerald}},
	},
}

// Viability classifies a campaign viability score.
func Viability(score float64) Verdict {
	return ViabilityScale.Of(score)
}

// ─── Lifecycle Metrics ────────────────────────────────────────────────────────

// Tier is the label of a lifecycle metric reading.
type Tier string

const (
	Weak     Tier = "Weak"
	Moderate Tier = "Moderate"
	Strong   Tier = "Strong"
	Low      Tier = "Low"
	High     Tier = "High"
	Poor     Tier = "Poor"
	Fair     Tier = "Fair"
)

// VelocityScale: <0.3 Weak, <0.6 Moderate, else Strong.
var VelocityScale = Scale[Tier]{
	Min: 0, Max: 1,
	Bands: []Band[Tier]{{0.3, Weak}, {0.6, Moderate}, {math.Inf(1), Strong}},
}

// FatigueScale: <0.4 Low, <0.7 Moderate, else High.
var FatigueScale = Scale[Tier]{
	Min: 0, Max: 1,
	Bands: []Band[Tier]{{0.4, Low}, {0.7, Moderate}, {math.Inf(1), High}},
}

// RetentionScale: <0.4 Poor, <0.7 Fair, else Strong.
var RetentionScale = Scale[Tier]{
	Min: 0, Max: 1,
	Bands: []Band[Tier]{{0.4, Poor}, {0.7, Fair}, {math.Inf(1), Strong}},
}

// Velocity classifies a normalised adoption velocity.
func Velocity(v float64) Tier { return VelocityScale.Of(v) }

// Fatigue classifies a normalised audience fatigue.
func Fatigue(v float64) Tier { return FatigueScale.Of(v) }

// Retention classifies a normalised audience retention.
func Retention(v float64) Tier { return RetentionScale.Of(v) }

// ─── External Risk ────────────────────────────────────────────────────────────

// Risk levels reported by external signal sources.
const (
	RiskMinimal = "minimal"
	RiskLow     = "low"
	RiskMedium  = "medium"
	RiskHigh    = "high"
)

// RiskScoreScale derives a level from a 0-100 risk score when a report
// omits its own risk_level.
var RiskScoreScale = Scale[string]{
	Min: 0, Max: 100,
	Bands: []Band[string]{{15, RiskMinimal}, {30, RiskLow}, {50, RiskMedium}, {math.Inf(1), RiskHigh}},
}

// RiskScore classifies an external risk score.
func RiskScore(score float64) string { return RiskScoreScale.Of(score) }
