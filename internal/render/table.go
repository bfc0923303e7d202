package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/trendguard/trendguard/internal/insight"
	"github.com/trendguard/trendguard/internal/model"
)

// ─── Table ────────────────────────────────────────────────────────────────────

func renderTable(w io.Writer, result *model.Result) error {
	switch d := result.Data.(type) {
	case *insight.CampaignView:
		return renderCampaignTable(w, d)
	case *insight.TrendView:
		return renderTrendTable(w, d)
	case *model.TrendHealth:
		t, _ := tabular(result)
		printKVTable(w, t.Rows)
		if d.RawAnalysis != "" && d.HealthStatus == "" {
			fmt.Fprintf(w, "\n%s\n", d.RawAnalysis)
		}
		return nil
	case *model.HashtagComparison:
		return renderHashtagTable(w, d, result)
	}

	t, ok := tabular(result)
	if !ok {
		// Unknown kind: fall back to JSON
		return renderJSON(w, result)
	}
	if len(t.Rows) == 0 {
		fmt.Fprintln(w, "(no results)")
		return nil
	}
	gridTable(w, t, 40)
	return nil
}

func gridTable(w io.Writer, t model.Table, colWidth int) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(t.Columns)
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAutoWrapText(false)
	tw.SetColWidth(colWidth)
	for _, r := range t.Rows {
		tw.Append(r)
	}
	tw.Render()
}

// printKVTable renders FIELD / VALUE rows with wrapping for long values.
func printKVTable(w io.Writer, rows [][]string) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"FIELD", "VALUE"})
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetColWidth(80)
	tw.SetAutoWrapText(true)
	for _, r := range rows {
		tw.Append(r)
	}
	tw.Render()
}

func renderCampaignTable(w io.Writer, v *insight.CampaignView) error {
	fmt.Fprintf(w, "Campaign Viability: %s/100  [%s]\n", score(v.Score), v.Verdict.Label)
	if v.Summary != "" {
		fmt.Fprintf(w, "%s\n", v.Summary)
	}
	fmt.Fprintln(w)
	printKVTable(w, campaignFacts(v).Rows)

	if len(v.Risks) > 0 {
		fmt.Fprintf(w, "\nRisk Factors\n")
		tw := tablewriter.NewWriter(w)
		tw.SetHeader([]string{"RISK", "SEVERITY", "MITIGATION"})
		tw.SetBorder(true)
		tw.SetRowLine(false)
		tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		tw.SetAlignment(tablewriter.ALIGN_LEFT)
		tw.SetColWidth(50)
		tw.SetAutoWrapText(true)
		for _, r := range v.Risks {
			tw.Append([]string{r.Risk, strings.ToUpper(string(r.Severity)), orDash(r.Mitigation)})
		}
		tw.Render()
	}

	if len(v.Recommendations) > 0 {
		fmt.Fprintf(w, "\nRecommendations\n")
		for i, rec := range v.Recommendations {
			fmt.Fprintf(w, "  %d. %s\n", i+1, insight.PlainText(rec))
		}
	}

	for _, s := range []insight.SignalSection{v.Signals.GoogleTrends, v.Signals.Reddit} {
		fmt.Fprintf(w, "\n%s\n", s.Title)
		if !s.Available {
			fmt.Fprintf(w, "  %s\n", s.Unavailable)
			continue
		}
		if s.Context != "" {
			fmt.Fprintf(w, "  %s\n", s.Context)
		}
		gridTable(w, signalTable(s), 60)
		for _, sig := range s.Signals {
			fmt.Fprintf(w, "  • %s\n", sig)
		}
	}
	return nil
}

func renderTrendTable(w io.Writer, v *insight.TrendView) error {
	fmt.Fprintf(w, "Trend: %s\n%s\n", v.TrendName, v.Narrative)
	if d := v.Decline; d != nil {
		fmt.Fprintf(w, "\nDecline detected on %s (state: %s", d.Date, orDash(string(d.State)))
		if d.Archetype != "" {
			fmt.Fprintf(w, ", archetype: %s", d.Archetype)
		}
		fmt.Fprintln(w, ")")

		tw := tablewriter.NewWriter(w)
		mt := metricTable(d)
		tw.SetHeader(mt.Columns)
		tw.SetBorder(true)
		tw.SetRowLine(false)
		tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		tw.SetAlignment(tablewriter.ALIGN_LEFT)
		tw.SetColumnAlignment([]int{
			tablewriter.ALIGN_LEFT,
			tablewriter.ALIGN_RIGHT,
			tablewriter.ALIGN_LEFT,
			tablewriter.ALIGN_LEFT,
		})
		tw.SetColWidth(60)
		tw.SetAutoWrapText(true)
		for _, r := range mt.Rows {
			tw.Append(r)
		}
		tw.Render()

		fmt.Fprintf(w, "\n%s\n", d.Explanation.CausalChain)
		if d.Explanation.Action != "" {
			fmt.Fprintf(w, "\nAction: %s\n", d.Explanation.Action)
		}
		if len(d.Explanation.RecoveryActions) > 0 {
			fmt.Fprintf(w, "\nRecovery Actions\n")
			for _, a := range d.Explanation.RecoveryActions {
				fmt.Fprintf(w, "  • %s\n", a)
			}
		}
		if d.AIAnalysis != "" {
			fmt.Fprintf(w, "\nAI Analysis\n  %s\n", d.AIAnalysis)
		}
	}
	if len(v.StateDistribution) > 0 {
		fmt.Fprintf(w, "\nState Distribution (%d points)\n", v.Points)
		gridTable(w, distributionTable(v.StateDistribution), 20)
	}
	return nil
}

func renderHashtagTable(w io.Writer, d *model.HashtagComparison, result *model.Result) error {
	if d.Platform != "" {
		fmt.Fprintf(w, "Hashtags on %s\n", d.Platform)
	}
	t, _ := tabular(result)
	if len(t.Rows) > 0 {
		gridTable(w, t, 40)
	} else if d.RawAnalysis != "" {
		fmt.Fprintf(w, "%s\n", d.RawAnalysis)
	}
	if len(d.BestCombination) > 0 {
		fmt.Fprintf(w, "\nBest combination: %s\n", strings.Join(d.BestCombination, " "))
	}
	if len(d.Avoid) > 0 {
		fmt.Fprintf(w, "Avoid: %s\n", strings.Join(d.Avoid, " "))
	}
	if d.StrategyTip != "" {
		fmt.Fprintf(w, "Tip: %s\n", d.StrategyTip)
	}
	return nil
}
