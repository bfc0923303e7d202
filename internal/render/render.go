// Package render converts Result values into human-readable or machine-parseable
// output. Each format is a separate function; the top-level Render dispatcher
// selects based on the format string.
package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/trendguard/trendguard/internal/analyze"
	"github.com/trendguard/trendguard/internal/insight"
	"github.com/trendguard/trendguard/internal/model"
)

// Format constants matching --format flag values.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
	FormatTSV   = "tsv"
	FormatMD    = "md"
)

// Formats lists every accepted --format value.
var Formats = []string{FormatTable, FormatJSON, FormatJSONL, FormatCSV, FormatTSV, FormatMD}

// ValidFormat reports whether f is an accepted --format value.
func ValidFormat(f string) bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

// Render writes result to w in the specified format.
func Render(w io.Writer, result *model.Result, format string) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, result)
	case FormatJSONL:
		return renderJSONL(w, result)
	case FormatCSV:
		return renderDelimited(w, result, ',')
	case FormatTSV:
		return renderDelimited(w, result, '\t')
	case FormatMD:
		return renderMarkdown(w, result)
	default:
		return renderTable(w, result)
	}
}

// RenderTo writes to stdout by default; if path is non-empty, writes to file.
func RenderTo(path string, result *model.Result, format string) error {
	if path == "" {
		return Render(os.Stdout, result, format)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()
	return Render(f, result, format)
}

// ─── JSON ─────────────────────────────────────────────────────────────────────

func renderJSON(w io.Writer, result *model.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// ─── JSONL ────────────────────────────────────────────────────────────────────

// renderJSONL writes one record per line for list-like kinds and the bare
// payload otherwise.
func renderJSONL(w io.Writer, result *model.Result) error {
	enc := json.NewEncoder(w)
	switch d := result.Data.(type) {
	case *insight.TrendListView:
		for _, t := range d.Trends {
			if err := enc.Encode(t); err != nil {
				return err
			}
		}
		return nil
	case []insight.TrendView:
		for _, v := range d {
			if err := enc.Encode(v); err != nil {
				return err
			}
		}
		return nil
	case *model.HashtagComparison:
		for _, s := range d.Comparison {
			if err := enc.Encode(s); err != nil {
				return err
			}
		}
		return nil
	case *analyze.Report:
		for _, s := range d.Metrics {
			if err := enc.Encode(s); err != nil {
				return err
			}
		}
		return nil
	default:
		return enc.Encode(result.Data)
	}
}

// ─── CSV / TSV ────────────────────────────────────────────────────────────────

func renderDelimited(w io.Writer, result *model.Result, sep rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = sep

	if t, ok := tabular(result); ok {
		_ = cw.Write(lower(t.Columns))
		for _, r := range t.Rows {
			_ = cw.Write(r)
		}
	} else {
		// Fallback: serialize as JSON on a single line
		b, _ := json.Marshal(result.Data)
		_ = cw.Write([]string{string(b)})
	}

	cw.Flush()
	return cw.Error()
}

// ─── Markdown ─────────────────────────────────────────────────────────────────

func renderMarkdown(w io.Writer, result *model.Result) error {
	switch d := result.Data.(type) {
	case *insight.CampaignView:
		return campaignMarkdown(w, d)
	case *insight.TrendView:
		return trendMarkdown(w, d)
	}
	t, ok := tabular(result)
	if !ok {
		return renderJSON(w, result)
	}
	mdTable(w, t)
	return nil
}

func mdTable(w io.Writer, t model.Table) {
	fmt.Fprintf(w, "| %s |\n", strings.Join(t.Columns, " | "))
	seps := make([]string, len(t.Columns))
	for i := range seps {
		seps[i] = "----"
	}
	fmt.Fprintf(w, "|%s|\n", strings.Join(seps, "|"))
	for _, r := range t.Rows {
		cells := make([]string, len(r))
		for i, c := range r {
			cells[i] = mdEscape(c)
		}
		fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
	}
}

func mdSegments(segs []insight.Segment) string {
	var b strings.Builder
	for _, s := range segs {
		if s.Emphasis && s.Text != "" {
			b.WriteString("**" + s.Text + "**")
		} else {
			b.WriteString(s.Text)
		}
	}
	return mdEscape(b.String())
}

func campaignMarkdown(w io.Writer, v *insight.CampaignView) error {
	fmt.Fprintf(w, "## Campaign Viability: %s/100 (%s)\n\n", score(v.Score), v.Verdict.Label)
	if v.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", mdEscape(v.Summary))
	}
	mdTable(w, campaignFacts(v))

	if len(v.Risks) > 0 {
		fmt.Fprintf(w, "\n### Risk Factors\n\n")
		for _, r := range v.Risks {
			line := fmt.Sprintf("- **%s** (%s)", mdEscape(r.Risk), r.Severity)
			if r.Mitigation != "" {
				line += ": " + mdEscape(r.Mitigation)
			}
			fmt.Fprintln(w, line)
		}
	}
	if len(v.Recommendations) > 0 {
		fmt.Fprintf(w, "\n### Recommendations\n\n")
		for i, rec := range v.Recommendations {
			fmt.Fprintf(w, "%d. %s\n", i+1, mdSegments(rec))
		}
	}
	for _, s := range []insight.SignalSection{v.Signals.GoogleTrends, v.Signals.Reddit} {
		fmt.Fprintf(w, "\n### %s\n\n", s.Title)
		if !s.Available {
			fmt.Fprintf(w, "_%s_\n", s.Unavailable)
			continue
		}
		if s.Context != "" {
			fmt.Fprintf(w, "%s\n\n", mdEscape(s.Context))
		}
		mdTable(w, signalTable(s))
		for _, sig := range s.Signals {
			fmt.Fprintf(w, "- %s\n", mdEscape(sig))
		}
	}
	return nil
}

func trendMarkdown(w io.Writer, v *insight.TrendView) error {
	fmt.Fprintf(w, "## Trend: %s\n\n%s\n", mdEscape(v.TrendName), mdEscape(v.Narrative))
	if d := v.Decline; d != nil {
		fmt.Fprintf(w, "\n### Decline (%s, %s)\n\n", d.Date, d.State)
		mdTable(w, metricTable(d))
		if d.Explanation.Action != "" {
			fmt.Fprintf(w, "\n**Action:** %s\n", d.Explanation.Action)
		}
		if len(d.Explanation.RecoveryActions) > 0 {
			fmt.Fprintf(w, "\n### Recovery Actions\n\n")
			for _, a := range d.Explanation.RecoveryActions {
				fmt.Fprintf(w, "- %s\n", a)
			}
		}
		if d.AIAnalysis != "" {
			fmt.Fprintf(w, "\n### AI Analysis\n\n%s\n", mdEscape(d.AIAnalysis))
		}
	}
	if len(v.StateDistribution) > 0 {
		fmt.Fprintf(w, "\n### State Distribution\n\n")
		mdTable(w, distributionTable(v.StateDistribution))
	}
	return nil
}

// ─── Tabular projections ──────────────────────────────────────────────────────

// tabular projects list-like and record-like payloads onto rows. It reports
// false for payloads with no flat projection.
func tabular(result *model.Result) (model.Table, bool) {
	switch d := result.Data.(type) {
	case *model.Table:
		return *d, true
	case *insight.TrendListView:
		t := model.Table{Columns: []string{"TREND", "ARCHETYPE", "DATA POINTS", "START", "END"}}
		for _, tr := range d.Trends {
			t.Rows = append(t.Rows, []string{
				tr.TrendName, orDash(tr.Archetype), strconv.Itoa(tr.DataPoints), orDash(tr.StartDate), orDash(tr.EndDate),
			})
		}
		return t, true
	case []insight.TrendView:
		t := model.Table{Columns: []string{"TREND", "DECLINE", "STATE", "DATE", "VELOCITY", "FATIGUE", "RETENTION"}}
		for _, v := range d {
			row := []string{v.TrendName, yesNo(v.DeclineDetected), insight.Placeholder, insight.Placeholder,
				insight.Placeholder, insight.Placeholder, insight.Placeholder}
			if dv := v.Decline; dv != nil {
				row[2] = orDash(string(dv.State))
				row[3] = dv.Date
				row[4] = dv.Explanation.Velocity.Percent
				row[5] = dv.Explanation.Fatigue.Percent
				row[6] = dv.Explanation.Retention.Percent
			}
			t.Rows = append(t.Rows, row)
		}
		return t, true
	case *model.HashtagComparison:
		t := model.Table{Columns: []string{"HASHTAG", "POPULARITY", "COMPETITION", "DIRECTION", "SATURATION", "RECOMMENDED", "REASON"}}
		for _, s := range d.Comparison {
			t.Rows = append(t.Rows, []string{
				s.Hashtag, optNum(s.PopularityScore), orDash(s.Competition), orDash(s.TrendDirection),
				orDash(s.SaturationRisk), yesNo(s.Recommended), s.Reason,
			})
		}
		return t, true
	case *analyze.Report:
		t := model.Table{Columns: []string{"METRIC", "MEAN", "MEDIAN", "MIN", "MAX", "FIRST", "LAST", "CHANGE", "SLOPE/DAY", "R2", "DIRECTION"}}
		for _, m := range d.Metrics {
			t.Rows = append(t.Rows, []string{
				m.Metric, fixed(m.Mean), fixed(m.Median), fixed(m.Min), fixed(m.Max), fixed(m.First), fixed(m.Last),
				signed(m.Change, 2), signed(m.Slope, 4), fixed(m.R2), m.Direction,
			})
		}
		return t, true
	case *model.ServiceHealth:
		t := model.Table{Columns: []string{"SERVICE", "STATUS"}}
		t.Rows = append(t.Rows, []string{"api", orDash(d.Status)})
		names := make([]string, 0, len(d.Services))
		for name := range d.Services {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			status := "down"
			if d.Services[name] {
				status = "up"
			}
			t.Rows = append(t.Rows, []string{name, status})
		}
		return t, true
	case *model.TrendHealth:
		return model.Table{Columns: []string{"FIELD", "VALUE"}, Rows: [][]string{
			{"Trend", d.TrendName},
			{"Health Status", orDash(d.HealthStatus)},
			{"Health Score", optNum(d.HealthScore)},
			{"Sentiment", orDash(d.Sentiment)},
			{"Active Platforms", joinOrDash(d.ActivePlatforms)},
			{"Key Creators", joinOrDash(d.KeyCreators)},
			{"Recent News", joinOrDash(d.RecentNews)},
			{"Decline Signals", joinOrDash(d.DeclineSignals)},
			{"Recommendation", orDash(d.Recommendation)},
		}}, true
	case *insight.CampaignView:
		t := campaignFacts(d)
		t.Rows = append([][]string{{"Viability Score", score(d.Score)}, {"Verdict", d.Verdict.Label}}, t.Rows...)
		return t, true
	case *insight.TrendView:
		t := model.Table{Columns: []string{"FIELD", "VALUE"}, Rows: [][]string{
			{"Trend", d.TrendName},
			{"Decline Detected", yesNo(d.DeclineDetected)},
			{"Narrative", d.Narrative},
		}}
		if dv := d.Decline; dv != nil {
			t.Rows = append(t.Rows,
				[]string{"Decline Date", dv.Date},
				[]string{"State", string(dv.State)},
				[]string{"Velocity", dv.Explanation.Velocity.Percent},
				[]string{"Fatigue", dv.Explanation.Fatigue.Percent},
				[]string{"Retention", dv.Explanation.Retention.Percent},
			)
		}
		return t, true
	}
	return model.Table{}, false
}

func campaignFacts(v *insight.CampaignView) model.Table {
	rows := [][]string{
		{"Predicted Lifecycle (days)", v.LifecycleDays},
		{"Market Status", v.MarketStatus},
		{"Market Saturation", v.Saturation},
	}
	if v.LaunchWindow != "" {
		rows = append(rows, []string{"Optimal Launch Window", v.LaunchWindow})
	}
	rows = append(rows, []string{"Signal Coverage", string(v.Signals.Coverage)})
	return model.Table{Columns: []string{"FIELD", "VALUE"}, Rows: rows}
}

func signalTable(s insight.SignalSection) model.Table {
	t := model.Table{Columns: []string{"METRIC", "VALUE"}}
	for _, m := range s.Metrics {
		t.Rows = append(t.Rows, []string{m.Label, m.Value})
	}
	t.Rows = append(t.Rows, []string{"Risk Level", s.RiskLevel}, []string{"Risk Score", s.RiskScore})
	if s.Recommendation != "" {
		t.Rows = append(t.Rows, []string{"Recommendation", s.Recommendation})
	}
	return t
}

func metricTable(d *insight.DeclineView) model.Table {
	t := model.Table{Columns: []string{"METRIC", "VALUE", "TIER", "CAUSE"}}
	for _, n := range []struct {
		label string
		tier  string
		pct   string
		cause string
	}{
		{"Velocity", string(d.Explanation.Velocity.Tier), d.Explanation.Velocity.Percent, d.Explanation.Velocity.Cause},
		{"Fatigue", string(d.Explanation.Fatigue.Tier), d.Explanation.Fatigue.Percent, d.Explanation.Fatigue.Cause},
		{"Retention", string(d.Explanation.Retention.Tier), d.Explanation.Retention.Percent, d.Explanation.Retention.Cause},
	} {
		t.Rows = append(t.Rows, []string{n.label, n.pct, orDash(n.tier), n.cause})
	}
	return t
}

func distributionTable(shares []insight.StateShare) model.Table {
	t := model.Table{Columns: []string{"STATE", "SHARE"}}
	for _, s := range shares {
		t.Rows = append(t.Rows, []string{string(s.State), fmt.Sprintf("%.1f%%", s.Share*100)})
	}
	return t
}

// ─── Warnings / Stats Footer ─────────────────────────────────────────────────

// PrintFooter writes warnings and stats to w when verbose mode is on.
func PrintFooter(w io.Writer, result *model.Result, verbose bool) {
	for _, warn := range result.Warnings {
		fmt.Fprintf(w, "⚠  %s\n", warn)
	}
	if verbose {
		fmt.Fprintf(w, "\n[%s • %d items • %dms]\n",
			result.GeneratedAt.Format(time.RFC3339),
			result.Stats.Items,
			result.Stats.DurationMs,
		)
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func score(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optNum(v *float64) string {
	if v == nil {
		return insight.Placeholder
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func fixed(v float64) string {
	if math.IsNaN(v) {
		return insight.Placeholder
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func signed(v float64, prec int) string {
	if math.IsNaN(v) {
		return insight.Placeholder
	}
	return fmt.Sprintf("%+.*f", prec, v)
}

func orDash(s string) string {
	if s == "" {
		return insight.Placeholder
	}
	return s
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return insight.Placeholder
	}
	return strings.Join(items, ", ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func lower(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = strings.ReplaceAll(strings.ToLower(c), " ", "_")
	}
	return out
}

func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
