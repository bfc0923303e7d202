package logging_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trendguard/trendguard/internal/logging"
)

func TestConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	opts := logging.DefaultOptions()
	opts.Console = &buf

	log, closeFn, err := logging.New(opts)
	require.NoError(t, err)
	log.Info("hidden")
	log.Warn("shown", zap.String("trend", "planking"))
	require.NoError(t, closeFn())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "planking")
}

func TestFileCoreWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tg.log")
	opts := logging.DefaultOptions()
	opts.Level = "debug"
	opts.File = path
	opts.Console = &bytes.Buffer{}

	log, closeFn, err := logging.New(opts)
	require.NoError(t, err)
	log.Debug("api request", zap.String("request_id", "abc"))
	require.NoError(t, closeFn())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	sc := bufio.NewScanner(f)
	require.True(t, sc.Scan())
	var entry map[string]any
	require.NoError(t, json.Unmarshal(sc.Bytes(), &entry))
	assert.Equal(t, "api request", entry["message"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "abc", entry["request_id"])
	assert.Equal(t, "trendguard", entry["logger"])
}

func TestInvalidLevel(t *testing.T) {
	_, _, err := logging.New(logging.Options{Level: "chatty"})
	assert.Error(t, err)
}
