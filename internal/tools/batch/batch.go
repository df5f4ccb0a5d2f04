package batch

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Result is the outcome of one item in a batch call.
type Result struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// BatchResult aggregates per-item results with summary counts.
type BatchResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// NewSuccessResult builds a successful Result carrying the item's payload.
func NewSuccessResult(id, payload string) Result {
	return Result{ID: id, Status: statusSuccess, Result: payload}
}

// NewErrorResult builds a failed Result carrying the error text.
func NewErrorResult(id string, err error) Result {
	return Result{ID: id, Status: statusError, Error: err.Error()}
}

// ParseStringOrArray accepts a tool argument that may arrive as a single
// string, an array of strings, or, from clients that double-encode, a JSON
// array inside a string. The parameter name is only used in error messages.
func ParseStringOrArray(param interface{}, name string) ([]string, error) {
	switch v := param.(type) {
	case nil:
		return nil, fmt.Errorf("%s is required", name)
	case string:
		if v == "" {
			return nil, fmt.Errorf("%s cannot be empty", name)
		}
		if ids, ok := decodeJSONArray(v); ok {
			return validated(ids, name)
		}
		return []string{v}, nil
	case []interface{}:
		ids := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", name, i)
			}
			ids = append(ids, s)
		}
		return validated(ids, name)
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", name)
	}
}

// decodeJSONArray reports whether s parses as a JSON string array.
// Bracketed text that is not valid JSON, like "[URGENT] reply", does not.
func decodeJSONArray(s string) ([]string, bool) {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "[") {
		return nil, false
	}
	var ids []string
	if err := json.Unmarshal([]byte(trimmed), &ids); err != nil {
		return nil, false
	}
	return ids, true
}

func validated(ids []string, name string) ([]string, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%s cannot be empty", name)
	}
	for i, id := range ids {
		if id == "" {
			return nil, fmt.Errorf("%s[%d] cannot be empty", name, i)
		}
	}
	return ids, nil
}

// ProcessBatch runs fn over every id, collecting one Result per id in the
// input order. A failing id never stops the rest of the batch.
func ProcessBatch(ids []string, fn func(id string) (string, error)) []Result {
	results := make([]Result, 0, len(ids))
	for _, id := range ids {
		payload, err := fn(id)
		if err != nil {
			results = append(results, NewErrorResult(id, err))
			continue
		}
		results = append(results, NewSuccessResult(id, payload))
	}
	return results
}

// FormatResults renders results as indented JSON with summary counts.
func FormatResults(results []Result) string {
	br := BatchResult{
		Total:   len(results),
		Results: results,
	}
	for _, r := range results {
		if r.Status == statusSuccess {
			br.Successful++
		} else {
			br.Failed++
		}
	}

	out, _ := json.MarshalIndent(br, "", "  ")
	return string(out)
}
