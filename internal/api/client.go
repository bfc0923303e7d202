// Package api implements the HTTP client for the trend analysis service.
// All methods are context-aware and respect the shared rate limiter. Transient
// errors (429, 5xx, network) are retried only when retries are configured.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/trendguard/trendguard/internal/model"
)

const (
	DefaultBaseURL  = "http://localhost:8000/"
	userAgent       = "trendguard-cli/1.0"
	requestIDHeader = "X-Request-ID"
)

// Client is the analysis service HTTP client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	retries    int
	log        *zap.Logger
}

// Options configures NewClient. Zero values select defaults.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RatePerSec float64
	Retries    int
	Logger     *zap.Logger
	HTTPClient *http.Client
}

// NewClient creates a Client.
func NewClient(opts Options) *Client {
	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	ratePerSec := opts.RatePerSec
	if ratePerSec <= 0 {
		ratePerSec = 5
	}
	burst := int(ratePerSec)
	if burst < 1 {
		burst = 1
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	retries := opts.Retries
	if retries < 0 {
		retries = 0
	}
	return &Client{
		baseURL:    base,
		httpClient: hc,
		limiter:    rate.NewLimiter(rate.Limit(ratePerSec), burst),
		retries:    retries,
		log:        log,
	}
}

// BaseURL returns the normalised service root.
func (c *Client) BaseURL() string { return c.baseURL }

// ─── Campaign ─────────────────────────────────────────────────────────────────

// AnalyzeCampaign submits a campaign description for analysis.
func (c *Client) AnalyzeCampaign(ctx context.Context, in model.CampaignInput) (*model.CampaignResult, error) {
	var out model.CampaignResult
	if err := c.do(ctx, http.MethodPost, "api/campaign/analyze", in, &out); err != nil {
		return nil, fmt.Errorf("campaign analysis %q: %w", in.Topic, err)
	}
	return &out, nil
}

// CheckTrendHealth runs the quick trend health check.
func (c *Client) CheckTrendHealth(ctx context.Context, trendName string) (*model.TrendHealth, error) {
	body := map[string]string{"trend_name": trendName}
	var out model.TrendHealth
	if err := c.do(ctx, http.MethodPost, "api/campaign/health", body, &out); err != nil {
		return nil, fmt.Errorf("trend health %q: %w", trendName, err)
	}
	if out.TrendName == "" {
		out.TrendName = trendName
	}
	return &out, nil
}

// CompareHashtags ranks candidate hashtags for a platform.
func (c *Client) CompareHashtags(ctx context.Context, hashtags []string, platform model.Platform) (*model.HashtagComparison, error) {
	body := struct {
		Hashtags []string       `json:"hashtags"`
		Platform model.Platform `json:"platform"`
	}{hashtags, platform}
	var out model.HashtagComparison
	if err := c.do(ctx, http.MethodPost, "api/campaign/compare-hashtags", body, &out); err != nil {
		return nil, fmt.Errorf("hashtag comparison: %w", err)
	}
	if out.Platform == "" {
		out.Platform = string(platform)
	}
	return &out, nil
}

// ─── Trends ───────────────────────────────────────────────────────────────────

// ListTrends fetches the trend catalogue.
func (c *Client) ListTrends(ctx context.Context) (*model.TrendList, error) {
	var out model.TrendList
	if err := c.do(ctx, http.MethodGet, "api/trends/list", nil, &out); err != nil {
		return nil, fmt.Errorf("trend list: %w", err)
	}
	if out.Count == 0 {
		out.Count = len(out.Trends)
	}
	return &out, nil
}

// AnalyzeTrend fetches the lifecycle analysis of one trend.
func (c *Client) AnalyzeTrend(ctx context.Context, trendName string) (*model.TrendAnalysis, error) {
	body := map[string]string{"trend_name": trendName}
	var out model.TrendAnalysis
	if err := c.do(ctx, http.MethodPost, "api/trends/analyze", body, &out); err != nil {
		return nil, fmt.Errorf("trend analysis %q: %w", trendName, err)
	}
	if out.TrendName == "" {
		out.TrendName = trendName
	}
	return &out, nil
}

// ─── Service ──────────────────────────────────────────────────────────────────

// HealthCheck reports service liveness.
func (c *Client) HealthCheck(ctx context.Context) (*model.ServiceHealth, error) {
	var out model.ServiceHealth
	if err := c.do(ctx, http.MethodGet, "api/health", nil, &out); err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}
	return &out, nil
}

// ─── Low-level HTTP ───────────────────────────────────────────────────────────

// do performs one logical request with rate limiting and optional retries.
// in is JSON-encoded as the body when non-nil.
func (c *Client) do(ctx context.Context, method, endpoint string, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		payload = b
	}

	reqURL := c.baseURL + endpoint
	reqID := uuid.NewString()
	log := c.log.With(zap.String("request_id", reqID), zap.String("method", method), zap.String("url", reqURL))
	log.Debug("api request", zap.Int("bytes", len(payload)))

	attempts := c.retries + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))*500) * time.Millisecond
			log.Debug("retrying after backoff", zap.Int("attempt", attempt), zap.Duration("backoff", backoff))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
		if err != nil {
			return fmt.Errorf("building request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set(requestIDHeader, reqID)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("http: %w", err)
			continue
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("reading body: %w", err)
			continue
		}
		log.Debug("api response", zap.Int("status", resp.StatusCode), zap.Int("bytes", len(data)))

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			apiErr := newAPIError(resp.StatusCode, data)
			if apiErr.Temporary() {
				lastErr = apiErr
				continue
			}
			return apiErr
		}

		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	}
	if attempts == 1 {
		return lastErr
	}
	return fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

// ─── Errors ───────────────────────────────────────────────────────────────────

// APIError is a non-2xx response. Message holds the service's structured
// detail when it sent one.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
	}
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Detail returns the structured, human-readable error detail, or "".
func (e *APIError) Detail() string { return e.Message }

// Temporary reports whether the request may succeed when retried.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// newAPIError extracts the FastAPI "detail" field, which is either a string
// or a list of validation records carrying "msg".
func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status, Body: strings.TrimSpace(string(body))}
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &env) != nil || len(env.Detail) == 0 {
		return e
	}
	var s string
	if json.Unmarshal(env.Detail, &s) == nil {
		e.Message = strings.TrimSpace(s)
		return e
	}
	var items []struct {
		Msg string `json:"msg"`
		Loc []any  `json:"loc"`
	}
	if json.Unmarshal(env.Detail, &items) == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg == "" {
				continue
			}
			if field := lastLoc(it.Loc); field != "" {
				msgs = append(msgs, field+": "+it.Msg)
			} else {
				msgs = append(msgs, it.Msg)
			}
		}
		e.Message = strings.Join(msgs, "; ")
	}
	return e
}

func lastLoc(loc []any) string {
	if len(loc) == 0 {
		return ""
	}
	if s, ok := loc[len(loc)-1].(string); ok && s != "body" {
		return s
	}
	return ""
}
