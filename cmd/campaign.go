package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/trendguard/trendguard/internal/model"
	"github.com/trendguard/trendguard/internal/orchestrator"
	"github.com/trendguard/trendguard/internal/pipeline"
)

var campaignCmd = &cobra.Command{
	Use:   "campaign",
	Short: "Score planned campaigns for viability",
	Long: `Commands for submitting a planned campaign to the analysis service.

The service returns a 0-100 viability score, predicted lifecycle, risk
factors and recommendations, plus optional Google Trends and Reddit
signals when those collectors are configured.`,
}

// ─── campaign analyze ─────────────────────────────────────────────────────────

var campaignFlags struct {
	Input    string
	PostFile string
	Topic    string
	Hashtags string
	Platform string
	Aim      string
	Audience string
	Duration int
	Context  string
}

var campaignAnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a planned campaign",
	Example: `  trendguard campaign analyze --topic "Summer skincare" --hashtags "#skincare, #summer" \
      --platform tiktok --aim "drive sign-ups" --audience "gen z" --duration 30
  trendguard campaign analyze --input campaign.json --format md
  trendguard campaign analyze --input campaign.json --post-file caption.txt`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := campaignInput(cmd)
		if err != nil {
			return err
		}
		if err := in.Validate(); err != nil {
			return err
		}

		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		start := time.Now()
		ctrl := deps.NewController(cmd.Context())
		defer ctrl.Stop()

		if _, err := ctrl.SubmitCampaign(in); err != nil {
			return err
		}
		if err := ctrl.Await(cmd.Context(), orchestrator.Campaign); err != nil {
			return err
		}
		view := ctrl.CampaignView()
		if view.Status != orchestrator.StatusSuccess || view.Result == nil {
			return errors.New(view.Error)
		}

		result := newResult(model.KindCampaign, commandLine(cmd, args), view.Result, 1, start)
		result.Warnings = view.Result.Warnings
		return emit(cmd, deps, result)
	},
}

// campaignInput builds the request from --input (if any) with explicitly set
// flags layered on top.
func campaignInput(cmd *cobra.Command) (model.CampaignInput, error) {
	in := model.CampaignInput{
		Platform:            model.PlatformInstagram,
		PlannedDurationDays: 30,
	}
	if campaignFlags.Input != "" {
		r, closeFn, err := readInput(cmd, campaignFlags.Input)
		if err != nil {
			return in, err
		}
		doc, err := pipeline.ReadCampaignInput(r)
		_ = closeFn()
		if err != nil {
			return in, err
		}
		if doc.Platform == "" {
			doc.Platform = in.Platform
		}
		if doc.PlannedDurationDays == 0 {
			doc.PlannedDurationDays = in.PlannedDurationDays
		}
		in = *doc
	}

	f := cmd.Flags()
	if f.Changed("topic") {
		in.Topic = campaignFlags.Topic
	}
	if f.Changed("hashtags") {
		in.Hashtags = model.ParseHashtags(campaignFlags.Hashtags)
	}
	if f.Changed("platform") {
		in.Platform = model.Platform(strings.ToLower(campaignFlags.Platform))
	}
	if f.Changed("aim") {
		in.CampaignAim = campaignFlags.Aim
	}
	if f.Changed("audience") {
		in.TargetAudience = campaignFlags.Audience
	}
	if f.Changed("duration") {
		in.PlannedDurationDays = campaignFlags.Duration
	}
	if f.Changed("context") {
		in.AdditionalContext = optional(campaignFlags.Context)
	}
	if in.AdditionalContext != nil && strings.TrimSpace(*in.AdditionalContext) == "" {
		in.AdditionalContext = nil
	}

	if campaignFlags.PostFile != "" {
		data, err := os.ReadFile(campaignFlags.PostFile)
		if err != nil {
			return in, fmt.Errorf("reading post file: %w", err)
		}
		in.UploadedPostContent = optional(strings.TrimSpace(string(data)))
	}
	return in, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func init() {
	rootCmd.AddCommand(campaignCmd)
	campaignCmd.AddCommand(campaignAnalyzeCmd)

	f := campaignAnalyzeCmd.Flags()
	f.StringVar(&campaignFlags.Input, "input", "", "read the campaign from a JSON file (- for stdin)")
	f.StringVar(&campaignFlags.PostFile, "post-file", "", "attach the text of an existing post")
	f.StringVar(&campaignFlags.Topic, "topic", "", "campaign topic")
	f.StringVar(&campaignFlags.Hashtags, "hashtags", "", "comma-separated hashtags")
	f.StringVar(&campaignFlags.Platform, "platform", string(model.PlatformInstagram),
		"instagram|tiktok|twitter|youtube|linkedin")
	f.StringVar(&campaignFlags.Aim, "aim", "", "what the campaign should achieve")
	f.StringVar(&campaignFlags.Audience, "audience", "", "target audience")
	f.IntVar(&campaignFlags.Duration, "duration", 30, "planned duration in days (7-365)")
	f.StringVar(&campaignFlags.Context, "context", "", "additional context for the analysis")
}
