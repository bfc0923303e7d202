package app_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendguard/trendguard/internal/app"
	"github.com/trendguard/trendguard/internal/config"
	"github.com/trendguard/trendguard/internal/orchestrator"
)

func TestDepsWireClientControllerAndLogFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/trends/list", r.URL.Path)
		_, _ = w.Write([]byte(`{"trends":[{"trend_name":"planking","data_points":30}],"count":1}`))
	}))
	t.Cleanup(srv.Close)

	logFile := filepath.Join(t.TempDir(), "trendguard.log")
	cfg := &config.Config{
		BaseURL:     srv.URL,
		Timeout:     5 * time.Second,
		Rate:        10,
		Concurrency: 2,
		LogLevel:    "warn",
		LogFile:     logFile,
		Debug:       true,
	}
	var console bytes.Buffer
	deps, err := app.New(cfg, app.WithConsole(&console))
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/", deps.Client.BaseURL(), "client normalises the base URL to end in a slash")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ctrl := deps.NewController(ctx)
	_, err = ctrl.LoadTrends()
	require.NoError(t, err)
	require.NoError(t, ctrl.Await(ctx, orchestrator.TrendList))
	view := ctrl.TrendListView()
	ctrl.Stop()

	require.Equal(t, orchestrator.StatusSuccess, view.Status)
	assert.Equal(t, 30, view.Result.TotalDataPoints)

	require.NoError(t, deps.Close())
	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"logger":"trendguard.api"`, "--debug should lift the file core to debug")
	assert.Contains(t, string(data), `"logger":"trendguard.controller"`)
	assert.Contains(t, console.String(), "trendguard.api", "console output is redirected, not written to stderr")
}

func TestNewRejectsBadLogLevel(t *testing.T) {
	_, err := app.New(&config.Config{BaseURL: "http://localhost:8000", LogLevel: "chatty"})
	assert.Error(t, err)
}
