package apperror

import (
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var kindPrinter = message.NewPrinter(language.English)

// From converts any value into exactly one taxonomy error. It is total: every
// input, of any shape, maps to a defined output, and it never fails itself.
//
//   - a taxonomy error is returned unchanged (same pointer), including when it
//     sits inside a wrap chain;
//   - a schema-engine validation error becomes the 422 validation variant
//     carrying the engine's issues;
//   - any other error becomes a 500 non-operational error preserving the
//     original message;
//   - any non-error value becomes a 500 non-operational error with the
//     stringified value in context.
func From(v any) *Error {
	switch x := v.(type) {
	case *Error:
		return x
	case *jsonschema.ValidationError:
		return FromSchemaError(x)
	case error:
		var appErr *Error
		if errors.As(x, &appErr) {
			return appErr
		}
		var schemaErr *jsonschema.ValidationError
		if errors.As(x, &schemaErr) {
			return FromSchemaError(schemaErr)
		}
		msg := x.Error()
		if msg == "" {
			msg = "Internal server error"
		}
		return newInternal(msg, x)
	default:
		return newInternal("Internal server error", nil).
			WithContext("value", fmt.Sprintf("%v", v))
	}
}

// ShouldLog reports whether the (converted) error warrants a log record.
// Operational errors are expected user-facing conditions, not bugs, and are
// not logged by default.
func ShouldLog(v any) bool {
	return !From(v).Operational
}

// StatusCode returns the HTTP status of the converted error.
func StatusCode(v any) int {
	return From(v).StatusCode
}

// LogRecord returns the full server-side serialization of the converted
// error.
func LogRecord(v any) map[string]any {
	return From(v).SerializeForLog()
}

// ClientPayload returns the client-safe serialization of the converted error.
func ClientPayload(v any, includeDetails bool) map[string]any {
	return From(v).SerializeForClient(includeDetails)
}

// ClientMessage returns the client-safe message of the converted error.
func ClientMessage(v any, includeDetails bool) string {
	return From(v).ClientMessage(includeDetails)
}

// SchemaIssue is one leaf failure reported by the validation engine.
type SchemaIssue struct {
	Path    string // dot-joined field path; empty for the document root
	Kind    string // schema keyword that failed, e.g. "minLength", "required"
	Message string
}

// SchemaIssues flattens an engine validation error into leaf issues, in the
// order the engine reports them. "required" failures are expanded to one
// issue per missing property so that each missing field gets its own path.
func SchemaIssues(ve *jsonschema.ValidationError) []SchemaIssue {
	var issues []SchemaIssue
	collectIssues(ve, &issues)
	return issues
}

func collectIssues(ve *jsonschema.ValidationError, out *[]SchemaIssue) {
	if len(ve.Causes) > 0 {
		for _, cause := range ve.Causes {
			collectIssues(cause, out)
		}
		return
	}

	if req, ok := ve.ErrorKind.(*kind.Required); ok {
		for _, missing := range req.Missing {
			*out = append(*out, SchemaIssue{
				Path:    joinPath(ve.InstanceLocation, missing),
				Kind:    "required",
				Message: fmt.Sprintf("missing required property '%s'", missing),
			})
		}
		return
	}

	kindName := ""
	if kp := ve.ErrorKind.KeywordPath(); len(kp) > 0 {
		kindName = kp[len(kp)-1]
	}
	*out = append(*out, SchemaIssue{
		Path:    joinPath(ve.InstanceLocation),
		Kind:    kindName,
		Message: ve.ErrorKind.LocalizedString(kindPrinter),
	})
}

// FromSchemaError converts an engine validation error into the 422 validation
// variant, with dot-joined field paths and per-path message lists in engine
// order.
func FromSchemaError(ve *jsonschema.ValidationError) *Error {
	fields := NewFieldErrors()
	for _, issue := range SchemaIssues(ve) {
		fields.Add(issue.Path, issue.Message)
	}
	return NewValidation("Validation failed", fields, WithCause(ve))
}

func joinPath(loc []string, extra ...string) string {
	parts := make([]string, 0, len(loc)+len(extra))
	parts = append(parts, loc...)
	parts = append(parts, extra...)
	return strings.Join(parts, ".")
}
