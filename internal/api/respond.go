package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"proofdeck/internal/apperror"
)

// maxBodyBytes caps request bodies well above any valid payload.
const maxBodyBytes = 1 << 20

// writeJSON writes v as the JSON response body. An encode failure after the
// header is written cannot be reported to the client.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeBody reads the request body into a generic map for schema validation.
// Malformed or non-object JSON comes back as a validation error rather than a
// bare decode error.
func decodeBody(r *http.Request) (map[string]any, error) {
	defer r.Body.Close()

	var raw any
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, bodyError("request body is required")
		}
		return nil, bodyError("request body must be valid JSON")
	}

	body, ok := raw.(map[string]any)
	if !ok {
		return nil, bodyError("request body must be a JSON object")
	}
	return body, nil
}

func bodyError(message string) *apperror.Error {
	fields := apperror.NewFieldErrors()
	fields.Add("body", message)
	return apperror.NewValidation("Validation failed", fields)
}

// field accessors over validated map data. Validation guarantees the declared
// types, so lookups are lenient rather than defensive.

func strField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func strPtrField(m map[string]any, key string) *string {
	if s, ok := m[key].(string); ok {
		return &s
	}
	return nil
}

func intField(m map[string]any, key string) int64 {
	switch v := m[key].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		// The schema's integer check accepts forms like "2.0" that Int64
		// rejects; truncation is exact for those.
		f, _ := v.Float64()
		return int64(f)
	}
	return 0
}

// dateField parses an ISO date string field into a *time.Time. The schema has
// already checked the pattern; a parse failure still surfaces as a validation
// error for values like "2026-02-30".
func dateField(m map[string]any, key string) (*time.Time, error) {
	s, ok := m[key].(string)
	if !ok || s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		fields := apperror.NewFieldErrors()
		fields.Add(key, "must be a valid calendar date in YYYY-MM-DD form")
		return nil, apperror.NewValidation("Validation failed", fields)
	}
	return &t, nil
}

func strSliceField(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
