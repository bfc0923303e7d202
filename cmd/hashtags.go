package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/trendguard/trendguard/internal/model"
	"github.com/trendguard/trendguard/internal/orchestrator"
)

var hashtagsCmd = &cobra.Command{
	Use:   "hashtags",
	Short: "Compare candidate hashtags",
}

// ─── hashtags compare ─────────────────────────────────────────────────────────

var hashtagsPlatform string

var hashtagsCompareCmd = &cobra.Command{
	Use:   "compare <HASHTAG...>",
	Short: "Rank hashtags by popularity, competition and saturation risk",
	Example: `  trendguard hashtags compare "#booktok" "#reads" "#fyp" --platform tiktok
  trendguard hashtags compare "#skincare,#spf" --format jsonl`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tags := model.ParseHashtags(strings.Join(args, ","))
		if len(tags) == 0 {
			return &model.ValidationError{Fields: []model.FieldError{{Field: "hashtags", Message: "at least one hashtag is required"}}}
		}
		platform := model.Platform(strings.ToLower(hashtagsPlatform))
		if !platform.Valid() {
			return fmt.Errorf("unknown platform %q", hashtagsPlatform)
		}

		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		start := time.Now()
		cmp, err := deps.Client.CompareHashtags(cmd.Context(), tags, platform)
		if err != nil {
			return errors.New(orchestrator.UserMessage(err, orchestrator.FallbackAnalysis))
		}
		result := newResult(model.KindHashtags, commandLine(cmd, args), cmp, len(cmp.Comparison), start)
		return emit(cmd, deps, result)
	},
}

func init() {
	rootCmd.AddCommand(hashtagsCmd)
	hashtagsCmd.AddCommand(hashtagsCompareCmd)

	hashtagsCompareCmd.Flags().StringVar(&hashtagsPlatform, "platform", string(model.PlatformInstagram),
		"instagram|tiktok|twitter|youtube|linkedin")
}
