package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendguard/trendguard/internal/api"
	"github.com/trendguard/trendguard/internal/model"
	"github.com/trendguard/trendguard/internal/orchestrator"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

func mockServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for path, h := range handlers {
		mux.HandleFunc(path, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(baseURL string, retries int) *api.Client {
	return api.NewClient(api.Options{BaseURL: baseURL, Timeout: 5 * time.Second, RatePerSec: 1000, Retries: retries})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var _ orchestrator.Transport = (*api.Client)(nil)

// ─── Endpoints ────────────────────────────────────────────────────────────────

func TestAnalyzeCampaignRequest(t *testing.T) {
	srv := mockServer(t, map[string]http.HandlerFunc{
		"/api/campaign/analyze": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			_, err := uuid.Parse(r.Header.Get("X-Request-ID"))
			assert.NoError(t, err, "request id is a uuid")

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "X", body["topic"])
			assert.Equal(t, []any{"#a", "#b"}, body["hashtags"])
			assert.Contains(t, body, "uploaded_post_content")
			assert.Nil(t, body["uploaded_post_content"])

			writeJSON(w, http.StatusOK, map[string]any{
				"viability_score": 72,
				"risk_factors":    []any{"copycats", map[string]string{"risk": "cost", "severity": "low"}},
				"recommendations": []string{"Use **reels**"},
				"market_status":   "Growing",
			})
		},
	})

	in := model.CampaignInput{
		Topic:               "X",
		Hashtags:            model.ParseHashtags("#a, #b ,"),
		Platform:            model.PlatformTikTok,
		CampaignAim:         "Y",
		TargetAudience:      "Z",
		PlannedDurationDays: 30,
	}
	res, err := newClient(srv.URL, 0).AnalyzeCampaign(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, res.ViabilityScore)
	assert.Equal(t, 72.0, *res.ViabilityScore)
	require.Len(t, res.RiskFactors, 2)
	assert.True(t, res.RiskFactors[0].Bare)
	assert.Equal(t, model.SeverityLow, res.RiskFactors[1].Severity)
}

func TestListAndAnalyzeTrends(t *testing.T) {
	srv := mockServer(t, map[string]http.HandlerFunc{
		"/api/trends/list": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			writeJSON(w, http.StatusOK, map[string]any{
				"trends": []map[string]any{
					{"trend_name": "Ice Bucket", "archetype": "viral_crash", "data_points": 60},
					{"trend_name": "Harlem Shake", "data_points": 30},
				},
			})
		},
		"/api/trends/analyze": func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				TrendName string `json:"trend_name"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			writeJSON(w, http.StatusOK, map[string]any{
				"trend_name":         body.TrendName,
				"decline_detected":   true,
				"state_distribution": map[string]float64{"Growth": 0.5, "Decline": 0.5},
				"decline_info": map[string]any{
					"date":    "2014-09-01",
					"state":   "Decline",
					"metrics": map[string]float64{"velocity": 0.2, "fatigue": 0.8, "retention": 0.3},
				},
			})
		},
	})
	c := newClient(srv.URL, 0)

	list, err := c.ListTrends(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, list.Count, "count falls back to the number of trends")
	assert.Equal(t, "viral_crash", list.Trends[0].Archetype)

	a, err := c.AnalyzeTrend(context.Background(), "Ice Bucket")
	require.NoError(t, err)
	assert.Equal(t, "Ice Bucket", a.TrendName)
	assert.True(t, a.DeclineDetected)
	require.NotNil(t, a.DeclineInfo)
	require.NotNil(t, a.DeclineInfo.Metrics)
	assert.Equal(t, 0.8, *a.DeclineInfo.Metrics.Fatigue)
}

func TestPassThroughEndpoints(t *testing.T) {
	srv := mockServer(t, map[string]http.HandlerFunc{
		"/api/campaign/health": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"health_status": "declining", "health_score": 35})
		},
		"/api/campaign/compare-hashtags": func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				Hashtags []string `json:"hashtags"`
				Platform string   `json:"platform"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "instagram", body.Platform)
			writeJSON(w, http.StatusOK, map[string]any{
				"comparison":       []map[string]any{{"hashtag": body.Hashtags[0], "recommended": true}},
				"best_combination": body.Hashtags,
			})
		},
		"/api/health": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"status": "healthy", "services": map[string]bool{"gemini": true}})
		},
	})
	c := newClient(srv.URL, 0)
	ctx := context.Background()

	h, err := c.CheckTrendHealth(ctx, "Planking")
	require.NoError(t, err)
	assert.Equal(t, "Planking", h.TrendName)
	assert.Equal(t, "declining", h.HealthStatus)

	cmp, err := c.CompareHashtags(ctx, []string{"#ootd", "#style"}, model.PlatformInstagram)
	require.NoError(t, err)
	assert.Equal(t, "instagram", cmp.Platform)
	assert.Equal(t, []string{"#ootd", "#style"}, cmp.BestCombination)

	sh, err := c.HealthCheck(ctx)
	require.NoError(t, err)
	assert.Equal(t, "healthy", sh.Status)
	assert.True(t, sh.Services["gemini"])
}

// ─── Errors ───────────────────────────────────────────────────────────────────

func TestErrorDetailExtraction(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{"string detail", http.StatusNotFound, `{"detail": "Trend 'x' not found"}`, "Trend 'x' not found"},
		{"validation list", http.StatusUnprocessableEntity,
			`{"detail": [{"loc": ["body", "trend_name"], "msg": "field required"}, {"loc": ["body"], "msg": "bad"}]}`,
			"trend_name: field required; bad"},
		{"no detail", http.StatusBadRequest, `oops`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := mockServer(t, map[string]http.HandlerFunc{
				"/api/trends/analyze": func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
					_, _ = io.WriteString(w, tt.body)
				},
			})
			_, err := newClient(srv.URL, 0).AnalyzeTrend(context.Background(), "x")
			require.Error(t, err)

			var apiErr *api.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantDetail, apiErr.Detail())

			want := tt.wantDetail
			if want == "" {
				want = err.Error()
			}
			assert.Equal(t, want, orchestrator.UserMessage(err, "fallback"))
		})
	}
}

func TestIsNotFound(t *testing.T) {
	srv := mockServer(t, map[string]http.HandlerFunc{
		"/api/trends/analyze": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "No trend data found"})
		},
	})
	_, err := newClient(srv.URL, 0).AnalyzeTrend(context.Background(), "x")
	assert.True(t, api.IsNotFound(err))
	assert.False(t, api.IsNotFound(errors.New("other")))
}

func TestNoRetryByDefault(t *testing.T) {
	var hits atomic.Int32
	srv := mockServer(t, map[string]http.HandlerFunc{
		"/api/health": func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "down"})
		},
	})
	_, err := newClient(srv.URL, 0).HealthCheck(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, "down", orchestrator.UserMessage(err, ""))
}

func TestRetriesTransientErrors(t *testing.T) {
	var hits atomic.Int32
	srv := mockServer(t, map[string]http.HandlerFunc{
		"/api/health": func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
		},
	})
	h, err := newClient(srv.URL, 2).HealthCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", h.Status)
	assert.Equal(t, int32(2), hits.Load())
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := mockServer(t, map[string]http.HandlerFunc{
		"/api/health": func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		},
	})
	_, err := newClient(srv.URL, 3).HealthCheck(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestContextCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := mockServer(t, map[string]http.HandlerFunc{
		"/api/health": func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		},
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := newClient(srv.URL, 3).HealthCheck(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBaseURLNormalised(t *testing.T) {
	assert.Equal(t, api.DefaultBaseURL, api.NewClient(api.Options{}).BaseURL())
	assert.Equal(t, "http://svc:9000/", api.NewClient(api.Options{BaseURL: "http://svc:9000"}).BaseURL())
}
