package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/trendguard/trendguard/internal/config"
)

// Version is the release string. Untagged builds report this default;
// release builds set it with:
//
//	go build -ldflags "-X github.com/trendguard/trendguard/cmd.Version=v0.3.1"
var Version = "v0.3.0"

// versionInfo is the --format json payload.
type versionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	GOOS      string `json:"goos"`
	GOARCH    string `json:"goarch"`
	BuildTime string `json:"build_time,omitempty"`
	BaseURL   string `json:"base_url"`
}

func currentVersion() versionInfo {
	return versionInfo{
		Version:   Version,
		GoVersion: runtime.Version(),
		GOOS:      runtime.GOOS,
		GOARCH:    runtime.GOARCH,
		BuildTime: BuildTime,
	}
}

// BuildTime is set alongside Version with
// -X github.com/trendguard/trendguard/cmd.BuildTime=2026-10-14T12:00:00Z.
var BuildTime = ""

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the trendguard version and build information",
	Long: `Print the trendguard version string and build metadata.

Plain text by default, one value per line. The service line shows the
base URL this invocation would use. Use --format json for structured output.

Examples:
  trendguard version
  trendguard version --format json
  trendguard version --format json | jq .version`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := globalFlags.Format
		if format == "" {
			format = "text"
		}
		info := currentVersion()
		info.BaseURL = config.DefaultBaseURL
		if cfg, err := config.Load(globalFlags.BaseURL); err == nil {
			info.BaseURL = cfg.BaseURL
		}

		switch format {
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)

		case "jsonl":
			// One line so it can be mixed into a JSONL stream.
			b, err := json.Marshal(info)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", b)
			return nil

		default:
			fmt.Fprintf(cmd.OutOrStdout(), "trendguard %s\n", info.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "go         %s\n", info.GoVersion)
			fmt.Fprintf(cmd.OutOrStdout(), "os         %s/%s\n", info.GOOS, info.GOARCH)
			if info.BuildTime != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "built      %s\n", info.BuildTime)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "service    %s\n", info.BaseURL)
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
