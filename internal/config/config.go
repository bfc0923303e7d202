// Package config handles loading and resolving trendguard configuration.
// Resolution order (later layers win):
//  1. built-in defaults
//  2. config.json in the current working directory
//  3. .env in the current working directory
//  4. environment variables TRENDGUARD_*
//  5. CLI flags (applied by the caller after Load)
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

const (
	DefaultConfigFile  = "config.json"
	DefaultEnvFile     = ".env"
	DefaultBaseURL     = "http://localhost:8000/"
	DefaultFormat      = "table"
	DefaultTimeout     = 60 * time.Second
	DefaultConcurrency = 4
	DefaultRate        = 5.0
	DefaultRetries     = 0
	DefaultLogLevel    = "warn"

	EnvBaseURL  = "TRENDGUARD_BASE_URL"
	EnvLogLevel = "TRENDGUARD_LOG_LEVEL"
	EnvLogFile  = "TRENDGUARD_LOG_FILE"
	EnvTimeout  = "TRENDGUARD_TIMEOUT"
)

// Keys lists every settable config.json key in display order.
var Keys = []string{"base_url", "default_format", "timeout", "rate", "retries", "concurrency", "log_level", "log_file"}

// File is the on-disk representation of config.json.
type File struct {
	BaseURL       string  `json:"base_url"`
	DefaultFormat string  `json:"default_format"`
	Timeout       string  `json:"timeout"`
	Rate          float64 `json:"rate"`
	Retries       int     `json:"retries"`
	Concurrency   int     `json:"concurrency"`
	LogLevel      string  `json:"log_level,omitempty"`
	LogFile       string  `json:"log_file,omitempty"`
}

// Config is the fully-resolved runtime configuration.
type Config struct {
	BaseURL     string
	Format      string
	Timeout     time.Duration
	Rate        float64
	Retries     int
	Concurrency int
	LogLevel    string
	LogFile     string
	ConfigPath  string // config.json that was loaded, empty if none
	EnvPath     string // .env that was loaded, empty if none

	// Runtime overrides set from CLI flags after Load()
	Quiet   bool
	Verbose bool
	Debug   bool
}

// Load resolves configuration from all sources.
// flagBaseURL is the value of --base-url (empty string if not set).
func Load(flagBaseURL string) (*Config, error) {
	cfg := &Config{
		BaseURL:     DefaultBaseURL,
		Format:      DefaultFormat,
		Timeout:     DefaultTimeout,
		Rate:        DefaultRate,
		Retries:     DefaultRetries,
		Concurrency: DefaultConcurrency,
		LogLevel:    DefaultLogLevel,
	}

	// Layer 1: config.json
	f, path, err := loadFile()
	switch {
	case err == nil:
		if err := applyFile(cfg, f, path); err != nil {
			return nil, err
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	// Layer 2: .env, then the process environment on top of it
	env, envPath, err := loadDotEnv()
	if err != nil {
		return nil, err
	}
	cfg.EnvPath = envPath
	for _, k := range []string{EnvBaseURL, EnvLogLevel, EnvLogFile, EnvTimeout} {
		if v, ok := os.LookupEnv(k); ok && v != "" {
			env[k] = v
		}
	}
	if err := applyEnv(cfg, env); err != nil {
		return nil, err
	}

	// Layer 3: CLI flag
	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}
	return cfg, nil
}

// Validate returns an error describing every invalid setting.
func (c *Config) Validate() error {
	var problems []string
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		problems = append(problems, fmt.Sprintf("base_url %q is not an http(s) URL", c.BaseURL))
	}
	if c.Rate <= 0 {
		problems = append(problems, "rate must be positive")
	}
	if c.Retries < 0 {
		problems = append(problems, "retries must not be negative")
	}
	if c.Concurrency < 1 {
		problems = append(problems, "concurrency must be at least 1")
	}
	if c.Timeout <= 0 {
		problems = append(problems, "timeout must be positive")
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("log_level %q is not one of debug|info|warn|error", c.LogLevel))
	}
	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid configuration:\n  " + strings.Join(problems, "\n  ") +
		"\n\nFix config.json, .env or the TRENDGUARD_* environment (see `trendguard config get`).")
}

// loadFile attempts to read config.json from the current working directory.
// A missing file yields an error wrapping os.ErrNotExist.
func loadFile() (*File, string, error) {
	path, err := filepath.Abs(DefaultConfigFile)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("config.json not found at %s: %w", path, os.ErrNotExist)
		}
		return nil, "", fmt.Errorf("reading config.json: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, "", fmt.Errorf("parsing config.json: %w", err)
	}
	return &f, path, nil
}

// loadDotEnv reads .env without touching the process environment.
func loadDotEnv() (map[string]string, string, error) {
	path, err := filepath.Abs(DefaultEnvFile)
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(path); err != nil {
		return map[string]string{}, "", nil
	}
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, "", fmt.Errorf("parsing .env: %w", err)
	}
	return env, path, nil
}

// applyFile copies values from a parsed File into cfg,
// skipping any fields that are zero/empty.
func applyFile(cfg *Config, f *File, path string) error {
	cfg.ConfigPath = path
	if f.BaseURL != "" {
		cfg.BaseURL = f.BaseURL
	}
	if f.DefaultFormat != "" {
		cfg.Format = f.DefaultFormat
	}
	if f.Timeout != "" {
		d, err := parseTimeout(f.Timeout)
		if err != nil {
			return fmt.Errorf("config.json timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if f.Rate > 0 {
		cfg.Rate = f.Rate
	}
	if f.Retries > 0 {
		cfg.Retries = f.Retries
	}
	if f.Concurrency > 0 {
		cfg.Concurrency = f.Concurrency
	}
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.LogFile = f.LogFile
	}
	return nil
}

func applyEnv(cfg *Config, env map[string]string) error {
	if v := env[EnvBaseURL]; v != "" {
		cfg.BaseURL = v
	}
	if v := env[EnvLogLevel]; v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := env[EnvLogFile]; v != "" {
		cfg.LogFile = v
	}
	if v := env[EnvTimeout]; v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.Timeout = d
	}
	return nil
}

// parseTimeout accepts a Go duration ("90s") or bare seconds ("90").
func parseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return 0, fmt.Errorf("invalid duration %q (e.g. 30s, 2m or bare seconds)", s)
}

// Template returns a File populated with sensible defaults, suitable for
// writing an initial config.json via `trendguard config init`.
func Template() File {
	return File{
		BaseURL:       DefaultBaseURL,
		DefaultFormat: DefaultFormat,
		Timeout:       DefaultTimeout.String(),
		Rate:          DefaultRate,
		Retries:       DefaultRetries,
		Concurrency:   DefaultConcurrency,
		LogLevel:      DefaultLogLevel,
	}
}

// Set assigns one key of f from its string form.
func (f *File) Set(key, val string) error {
	switch strings.ToLower(key) {
	case "base_url":
		f.BaseURL = val
	case "default_format", "format":
		f.DefaultFormat = val
	case "timeout":
		if _, err := time.ParseDuration(val); err != nil {
			return fmt.Errorf("timeout must be a duration such as 30s or 2m")
		}
		f.Timeout = val
	case "rate":
		r, err := strconv.ParseFloat(val, 64)
		if err != nil || r <= 0 {
			return fmt.Errorf("rate must be a positive number")
		}
		f.Rate = r
	case "retries":
		n, err := strconv.Atoi(val)
		if err != nil || n < 0 {
			return fmt.Errorf("retries must be a non-negative integer")
		}
		f.Retries = n
	case "concurrency":
		n, err := strconv.Atoi(val)
		if err != nil || n < 1 {
			return fmt.Errorf("concurrency must be a positive integer")
		}
		f.Concurrency = n
	case "log_level":
		if _, err := zapcore.ParseLevel(val); err != nil {
			return fmt.Errorf("log_level must be one of debug|info|warn|error")
		}
		f.LogLevel = strings.ToLower(val)
	case "log_file":
		f.LogFile = val
	default:
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s", key, strings.Join(Keys, ", "))
	}
	return nil
}

// ReadFile reads a config.json from path.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &f, nil
}

// WriteFile serialises a File to the given path.
func WriteFile(path string, f File) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0600)
}
