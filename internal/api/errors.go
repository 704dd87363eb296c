// Package api exposes the HTTP surface: chi route registration, request
// validation schemas, and the boundary that turns returned errors into
// taxonomy responses.
package api

import (
	"log/slog"
	"net/http"

	"proofdeck/internal/apperror"
	"proofdeck/internal/middleware"
)

// HandlerFunc is an http.HandlerFunc that reports failure instead of writing
// the error response itself.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// ErrorHandler is the boundary between handlers and the wire. Every error a
// handler returns, and every panic it raises, passes through here exactly
// once: converted to the taxonomy, logged when non-operational, and answered
// with the client-safe serialization at the error's status code.
type ErrorHandler struct {
	Logger *slog.Logger
	// IncludeDetails controls whether error context reaches clients. Off in
	// production.
	IncludeDetails bool
}

// Wrap adapts a HandlerFunc into a standard http.HandlerFunc. Returned errors
// and panics are routed to Handle.
func (h *ErrorHandler) Wrap(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.Handle(w, r, rec)
			}
		}()
		if err := fn(w, r); err != nil {
			h.Handle(w, r, err)
		}
	}
}

// Handle converts any value into a taxonomy error and writes the response
// immediately. Used directly by code that cannot return an error through
// Wrap.
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, v any) {
	e := apperror.From(v)

	if apperror.ShouldLog(e) && h.Logger != nil {
		h.Logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
			slog.Any("error", e.SerializeForLog()),
		)
	}

	writeJSON(w, e.StatusCode, e.SerializeForClient(h.IncludeDetails))
}
