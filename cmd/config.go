package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/trendguard/trendguard/internal/config"
	"github.com/trendguard/trendguard/internal/model"
	"github.com/trendguard/trendguard/internal/render"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage trendguard configuration",
	Long: `Read and write trendguard configuration stored in config.json.

Settings resolve in this order (later wins): built-in defaults,
config.json, .env, TRENDGUARD_* environment variables, CLI flags.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a template config.json in the current directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigFile
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config.json already exists at %s (delete it first to re-initialise)", path)
		}
		if err := config.WriteFile(path, config.Template()); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Created %s\n", path)
		fmt.Fprintf(out, "  base_url points at %s; edit it if the service runs elsewhere.\n", config.DefaultBaseURL)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current resolved configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(globalFlags.BaseURL)
		if err != nil {
			return err
		}

		orNone := func(s string) string {
			if s == "" {
				return "(not found)"
			}
			return s
		}
		logFile := cfg.LogFile
		if logFile == "" {
			logFile = "(stderr only)"
		}

		table := &model.Table{
			Columns: []string{"KEY", "VALUE"},
			Rows: [][]string{
				{"base_url", cfg.BaseURL},
				{"default_format", cfg.Format},
				{"timeout", cfg.Timeout.String()},
				{"rate", fmt.Sprintf("%.1f req/s", cfg.Rate)},
				{"retries", strconv.Itoa(cfg.Retries)},
				{"concurrency", strconv.Itoa(cfg.Concurrency)},
				{"log_level", cfg.LogLevel},
				{"log_file", logFile},
				{"config_file", orNone(cfg.ConfigPath)},
				{"env_file", orNone(cfg.EnvPath)},
			},
		}
		result := &model.Result{
			Kind:        model.KindTable,
			GeneratedAt: time.Now(),
			Command:     "config get",
			Data:        table,
			Stats:       model.ResultStats{Items: len(table.Rows)},
		}
		w, closeFn, err := outputWriter(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer closeFn()
		if err := render.Render(w, result, resolveFormat(cfg.Format)); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠  %v\n", err)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value in config.json",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]

		// Load existing file or start from template
		path := config.DefaultConfigFile
		f := config.Template()
		existing, err := config.ReadFile(path)
		switch {
		case err == nil:
			f = *existing
		case !errors.Is(err, os.ErrNotExist):
			return err
		}

		if err := f.Set(key, val); err != nil {
			return err
		}
		if err := config.WriteFile(path, f); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Set %s in %s\n", key, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}
