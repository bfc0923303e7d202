// Package narrative turns lifecycle metric readings into fixed-template
// explanations: per-metric causes, a remediation action, a causal chain and
// recovery actions. Text around numbers is fixed; every number comes from
// the supplied metrics. Absent metrics render as Unavailable and suppress
// the rules that depend on them.
package narrative

import (
	"fmt"
	"math"
	"slices"

	"github.com/trendguard/trendguard/internal/classify"
	"github.com/trendguard/trendguard/internal/model"
)

// Unavailable replaces any value or sentence derived from an absent metric.
const Unavailable = "data unavailable"

// Rule cut points that are not tier boundaries.
const (
	velocityStalledBelow  = 0.3
	fatigueSaturatedAbove = 0.7
	retentionWeakBelow    = 0.4
	actionFatigueAbove    = 0.6
	recoveryVelocityBelow = 0.5
)

// Metric names.
const (
	MetricVelocity  = "velocity"
	MetricFatigue   = "fatigue"
	MetricRetention = "retention"
)

// Action is emitted when fatigue exceeds the action cut point.
const Action = "Introduce new creative angles, collaborate with fresh creators, or pivot messaging"

// RecoveryActions are emitted, in order, when velocity is below the recovery cut point.
var RecoveryActions = []string{
	"Inject fresh creative angles - partner with new influencers or creators",
	"Launch limited-time campaigns to create urgency and re-engage audience",
	"Pivot messaging to address current audience interests and pain points",
	"Reduce posting frequency to combat fatigue while maintaining quality",
}

// causeTable holds the two-branch cause sentences for one metric.
type causeTable struct {
	unhealthy string
	healthy   string
	isBad     func(v float64) bool
}

var causes = map[string]causeTable{
	MetricVelocity: {
		unhealthy: "Reduced new user adoption and decreased content creation",
		healthy:   "Active community engagement and content virality",
		isBad:     func(v float64) bool { return v < velocityStalledBelow },
	},
	MetricFatigue: {
		unhealthy: "Oversaturation of similar content, declining novelty, repetitive messaging",
		healthy:   "Content remains fresh and engaging with audience",
		isBad:     func(v float64) bool { return v > fatigueSaturatedAbove },
	},
	MetricRetention: {
		unhealthy: "Weak community bonds, lack of ongoing value, or competing trends",
		healthy:   "Strong community engagement and consistent value delivery",
		isBad:     func(v float64) bool { return v < retentionWeakBelow },
	},
}

// readings describe what a tier means for each metric.
var readings = map[string]map[classify.Tier]string{
	MetricVelocity: {
		classify.Strong:   "Velocity measures the speed of trend adoption and growth. Current reading shows strong momentum.",
		classify.Moderate: "Velocity measures the speed of trend adoption and growth. Current reading shows moderate pace.",
		classify.Weak:     "Velocity measures the speed of trend adoption and growth. Current reading shows declining interest.",
	},
	MetricFatigue: {
		classify.High:     "Fatigue indicates audience saturation and repetition aversion. High fatigue suggests content oversaturation.",
		classify.Moderate: "Fatigue indicates audience saturation and repetition aversion. Moderate fatigue indicates need for fresh content.",
		classify.Low:      "Fatigue indicates audience saturation and repetition aversion. Low fatigue means audience is still engaged.",
	},
	MetricRetention: {
		classify.Strong: "Retention tracks how well the trend keeps audience attention. Strong retention indicates loyal community.",
		classify.Fair:   "Retention tracks how well the trend keeps audience attention. Fair retention with room for improvement.",
		classify.Poor:   "Retention tracks how well the trend keeps audience attention. Poor retention suggests audience drop-off.",
	},
}

// MetricNote is the explanation of one metric.
// Value is the clamped reading; it is nil when the metric was absent.
type MetricNote struct {
	Metric  string        `json:"metric"`
	Value   *float64      `json:"value,omitempty"`
	Percent string        `json:"percent"`
	Tier    classify.Tier `json:"tier,omitempty"`
	Reading string        `json:"reading"`
	Cause   string        `json:"cause"`
}

// Available reports whether the metric was present in the payload.
func (n MetricNote) Available() bool { return n.Value != nil }

// Explanation is the full narrative for one decline snapshot.
// Action is empty when no action applies.
type Explanation struct {
	Velocity        MetricNote `json:"velocity"`
	Fatigue         MetricNote `json:"fatigue"`
	Retention       MetricNote `json:"retention"`
	Action          string     `json:"action,omitempty"`
	CausalChain     string     `json:"causal_chain"`
	RecoveryActions []string   `json:"recovery_actions,omitempty"`
}

// Clone returns a deep copy of e.
func (e Explanation) Clone() Explanation {
	e.Velocity = e.Velocity.clone()
	e.Fatigue = e.Fatigue.clone()
	e.Retention = e.Retention.clone()
	e.RecoveryActions = slices.Clone(e.RecoveryActions)
	return e
}

func (n MetricNote) clone() MetricNote {
	if n.Value != nil {
		v := *n.Value
		n.Value = &v
	}
	return n
}

// Explain composes the narrative for a state, its metrics and an optional archetype.
func Explain(state model.LifecycleState, m model.Metrics, archetype string) Explanation {
	e := Explanation{
		Velocity:  note(MetricVelocity, m.Velocity, classify.VelocityScale),
		Fatigue:   note(MetricFatigue, m.Fatigue, classify.FatigueScale),
		Retention: note(MetricRetention, m.Retention, classify.RetentionScale),
	}

	if e.Fatigue.Available() && *e.Fatigue.Value > actionFatigueAbove {
		e.Action = Action
	}
	if e.Velocity.Available() && *e.Velocity.Value < recoveryVelocityBelow {
		e.RecoveryActions = append([]string(nil), RecoveryActions...)
	}

	if state == model.StateDecline {
		e.CausalChain = declineChain(e, archetype)
	} else {
		e.CausalChain = maturationChain(e)
	}
	return e
}

func note(metric string, raw *float64, scale classify.Scale[classify.Tier]) MetricNote {
	n := MetricNote{Metric: metric, Percent: Unavailable, Reading: Unavailable, Cause: Unavailable}
	if raw == nil {
		return n
	}
	v := scale.Clamp(*raw)
	n.Value = &v
	n.Percent = Percent(v)
	n.Tier = scale.Of(v)
	n.Reading = readings[metric][n.Tier]

	c := causes[metric]
	if c.isBad(v) {
		n.Cause = c.unhealthy
	} else {
		n.Cause = c.healthy
	}
	return n
}

// Percent renders a normalised value as a whole percentage ("20%").
// Halves round away from zero.
func Percent(v float64) string {
	return fmt.Sprintf("%d%%", int64(math.Round(v*100)))
}

func declineChain(e Explanation, archetype string) string {
	if archetype == "" {
		archetype = "standard"
	}
	return fmt.Sprintf(
		"The trend entered decline due to a combination of factors: "+
			"decreased velocity (%s) reduced new user adoption → "+
			"increased fatigue (%s) from content oversaturation → "+
			"dropping retention (%s) as audience attention shifted to newer trends. "+
			"This cascade effect is typical of %s patterns.",
		e.Velocity.Percent, e.Fatigue.Percent, e.Retention.Percent, archetype,
	)
}

func maturationChain(e Explanation) string {
	return fmt.Sprintf(
		"The trend shows signs of maturation with velocity at %s and fatigue building to %s. "+
			"Market saturation is approaching. Early intervention can prevent full decline.",
		e.Velocity.Percent, e.Fatigue.Percent,
	)
}
