// Package pipeline provides helpers for reading analysis documents from stdin
// and writing JSONL streams, the canonical pipe format between trendguard
// invocations.
package pipeline

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/trendguard/trendguard/internal/model"
)

// maxLine bounds a single JSONL record. AI explanations make analyses large.
const maxLine = 4 * 1024 * 1024

// ReadCampaignResult decodes one campaign analysis document from r.
func ReadCampaignResult(r io.Reader) (*model.CampaignResult, error) {
	var res model.CampaignResult
	if err := readDocument(r, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ReadCampaignInput decodes one campaign request document from r.
// The hashtags field may be a JSON array or the comma-separated form the
// --hashtags flag accepts.
func ReadCampaignInput(r io.Reader) (*model.CampaignInput, error) {
	var doc struct {
		model.CampaignInput
		Hashtags json.RawMessage `json:"hashtags"`
	}
	if err := readDocument(r, &doc); err != nil {
		return nil, err
	}
	in := doc.CampaignInput
	tags, err := hashtags(doc.Hashtags)
	if err != nil {
		return nil, err
	}
	in.Hashtags = tags
	return &in, nil
}

// ReadTrendAnalysis decodes one trend analysis document from r.
func ReadTrendAnalysis(r io.Reader) (*model.TrendAnalysis, error) {
	var a model.TrendAnalysis
	if err := readDocument(r, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// ReadFirstTrendAnalysis decodes the first analysis in r, which may hold a
// single document (pretty-printed or not) or a JSONL stream.
func ReadFirstTrendAnalysis(r io.Reader) (*model.TrendAnalysis, error) {
	var a model.TrendAnalysis
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("no document read from input (is stdin empty?)")
		}
		return nil, fmt.Errorf("invalid JSON document: %w", err)
	}
	if a.TrendName == "" {
		return nil, fmt.Errorf("analysis is missing trend_name")
	}
	return &a, nil
}

// ReadTrendAnalyses reads a JSONL stream of trend analyses. Blank lines and
// lines starting with // are skipped.
func ReadTrendAnalyses(r io.Reader) ([]model.TrendAnalysis, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLine)

	var out []model.TrendAnalysis
	lineNum := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lineNum++
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		var a model.TrendAnalysis
		if err := json.Unmarshal([]byte(line), &a); err != nil {
			return nil, fmt.Errorf("line %d: invalid JSON: %w", lineNum, err)
		}
		if a.TrendName == "" {
			return nil, fmt.Errorf("line %d: missing trend_name", lineNum)
		}
		out = append(out, a)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no analyses read from input (is stdin empty?)")
	}
	return out, nil
}

// WriteJSONL writes items as JSONL to w.
func WriteJSONL[T any](w io.Writer, items []T) error {
	enc := json.NewEncoder(w)
	for _, it := range items {
		if err := enc.Encode(it); err != nil {
			return err
		}
	}
	return nil
}

// IsTTY returns true if f is a terminal (not a pipe).
func IsTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

func readDocument(r io.Reader, v any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("no document read from input (is stdin empty?)")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid JSON document: %w", err)
	}
	return nil
}

func hashtags(raw json.RawMessage) ([]string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal(trimmed, &list); err == nil {
		return model.ParseHashtags(strings.Join(list, ",")), nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return nil, fmt.Errorf("hashtags must be a string or an array of strings")
	}
	return model.ParseHashtags(s), nil
}
