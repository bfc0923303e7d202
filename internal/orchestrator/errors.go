package orchestrator

import (
	"errors"
	"strings"
)

// Fallback messages shown when a failure carries no usable text.
const (
	FallbackAnalysis  = "Analysis failed"
	FallbackTrendList = "Failed to load trends. Make sure the backend is running."
)

// ErrStopped is returned by Controller methods after Stop.
var ErrStopped = errors.New("orchestrator: controller stopped")

// detailer is implemented by transport errors that carry a structured,
// human-readable detail (api.APIError).
type detailer interface {
	Detail() string
}

// UserMessage picks the best message for err: a structured detail anywhere
// in its chain, then its own text, then fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var d detailer
	if errors.As(err, &d) {
		if s := strings.TrimSpace(d.Detail()); s != "" {
			return s
		}
	}
	if s := strings.TrimSpace(err.Error()); s != "" {
		return s
	}
	return fallback
}
