// Package apperror defines the operational error taxonomy used across the
// service: every failure carries an HTTP status code, an operational flag,
// and optional diagnostic context, and knows how to serialize itself for
// server logs (full detail, including stack) and for HTTP clients (redacted).
package apperror

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
	"time"
)

// GenericClientMessage is shown to clients for every non-operational error,
// regardless of detail settings. Non-operational errors are bugs, and their
// real messages must never leak outside the server.
const GenericClientMessage = "An unexpected error occurred"

// Taxonomy tags carried in Error.Name and in the "name" field of serialized
// responses. Clients are expected to branch on these.
const (
	NameError          = "Error"
	NameInternal       = "InternalError"
	NameValidation     = "ValidationError"
	NameAuthentication = "AuthenticationError"
	NameAuthorization  = "AuthorizationError"
	NameToken          = "TokenError"
	NameNotFound       = "NotFoundError"
	NameConflict       = "ConflictError"
)

// Error is the single error type behind the taxonomy. The Name field is the
// variant tag; Fields is populated only on the validation variant.
//
// An Error is immutable after construction except for Context, which may be
// attached via WithContext before the error reaches the request boundary.
type Error struct {
	Name        string
	Message     string
	StatusCode  int
	Operational bool
	Context     map[string]any
	Timestamp   time.Time
	Fields      *FieldErrors

	stack []uintptr
	cause error
}

// Option configures an Error during construction.
type Option func(*Error)

// NonOperational marks the error as a programming fault rather than an
// expected condition. Non-operational errors are always logged and always
// redacted for clients.
func NonOperational() Option {
	return func(e *Error) { e.Operational = false }
}

// WithContextMap attaches the given context map at construction time.
func WithContextMap(ctx map[string]any) Option {
	return func(e *Error) {
		for k, v := range ctx {
			e.WithContext(k, v)
		}
	}
}

// WithCause records the underlying error for errors.Is / errors.As chains.
func WithCause(err error) Option {
	return func(e *Error) { e.cause = err }
}

// WithName overrides the taxonomy tag. Intended for extensions that need a
// status code outside the predefined variants.
func WithName(name string) Option {
	return func(e *Error) { e.Name = name }
}

// New constructs a base taxonomy error. Status codes outside [400,599] fall
// back to 500: every error must map to a valid HTTP error status.
func New(message string, statusCode int, opts ...Option) *Error {
	if statusCode < 400 || statusCode > 599 {
		statusCode = 500
	}
	e := &Error{
		Name:        NameError,
		Message:     message,
		StatusCode:  statusCode,
		Operational: true,
		Timestamp:   time.Now().UTC(),
		stack:       callers(3),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Error implements the error interface as "<name>: <message>".
func (e *Error) Error() string {
	return e.Name + ": " + e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// WithContext attaches one diagnostic key/value in place and returns the
// receiver for chaining. Context is the only mutable part of an Error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = map[string]any{}
	}
	e.Context[key] = value
	return e
}

// Stack renders the stack captured at construction.
func (e *Error) Stack() string {
	if len(e.stack) == 0 {
		return ""
	}
	var b strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		f, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", f.Function, f.File, f.Line)
		if !more {
			break
		}
	}
	return b.String()
}

// ClientMessage returns the message safe to show to an HTTP client.
//
// Operational errors expose their real message; with includeDetails the
// context map is appended as a flattened "key: value" rendering. For
// non-operational errors the fixed generic message is returned regardless of
// includeDetails.
func (e *Error) ClientMessage(includeDetails bool) string {
	if !e.Operational {
		return GenericClientMessage
	}
	if !includeDetails || len(e.Context) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s: %v", k, e.Context[k]))
	}
	return e.Message + " (" + strings.Join(pairs, ", ") + ")"
}

// SerializeForLog returns the full server-side record of the error. It always
// includes the stack; it is never sent to clients.
func (e *Error) SerializeForLog() map[string]any {
	rec := map[string]any{
		"name":       e.Name,
		"message":    e.Message,
		"statusCode": e.StatusCode,
		"timestamp":  e.Timestamp.Format(time.RFC3339Nano),
		"stack":      e.Stack(),
	}
	if len(e.Context) > 0 {
		rec["context"] = e.Context
	}
	if e.Fields != nil && e.Fields.Len() > 0 {
		rec["errors"] = e.Fields
	}
	return rec
}

// SerializeForClient returns the wire shape sent to HTTP clients:
// {name, message, statusCode, errors?, context?}. The message goes through
// the same redaction as ClientMessage. The context map is gated on
// includeDetails alone: when details are enabled and the map is non-empty it
// is included, for operational and non-operational errors alike. The stack
// never appears.
func (e *Error) SerializeForClient(includeDetails bool) map[string]any {
	body := map[string]any{
		"name":       e.Name,
		"message":    e.ClientMessage(false),
		"statusCode": e.StatusCode,
	}
	if e.Fields != nil && e.Fields.Len() > 0 {
		body["errors"] = e.Fields
	}
	if includeDetails && len(e.Context) > 0 {
		body["context"] = e.Context
	}
	return body
}

// FieldError returns the first message recorded for a field. Only meaningful
// on the validation variant; other variants report no field errors.
func (e *Error) FieldError(field string) (string, bool) {
	if e.Fields == nil {
		return "", false
	}
	return e.Fields.First(field)
}

// HasFieldError reports whether any message was recorded for a field.
func (e *Error) HasFieldError(field string) bool {
	return e.Fields != nil && e.Fields.Has(field)
}

// AllErrors flattens the per-field messages in field insertion order, then
// message order within each field.
func (e *Error) AllErrors() []string {
	if e.Fields == nil {
		return nil
	}
	return e.Fields.All()
}

func callers(skip int) []uintptr {
	pc := make([]uintptr, 32)
	n := runtime.Callers(skip, pc)
	return pc[:n]
}
