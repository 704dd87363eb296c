package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"proofdeck/internal/apperror"
)

type principalKey struct{}

// WithPrincipal stores the authenticated principal (subject) in the context.
func WithPrincipal(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, principalKey{}, subject)
}

// PrincipalFromContext extracts the authenticated principal from the context.
func PrincipalFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(principalKey{}).(string)
	return subject, ok
}

// Auth returns a middleware that requires a valid bearer token. The verified
// subject is stored in the request context; failures are answered with the
// taxonomy's authentication/token payloads.
func Auth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				writeAuthError(w, apperror.NewAuthentication("missing bearer token"))
				return
			}

			claims, err := validator.Validate(r.Context(), strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				writeAuthError(w, apperror.NewToken("", apperror.WithCause(err)))
				return
			}
			if claims.Subject == "" {
				writeAuthError(w, apperror.NewToken("token has no subject"))
				return
			}

			ctx := WithPrincipal(r.Context(), claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeAuthError answers with the client-safe serialization of the error.
// Details are never included on the auth path.
func writeAuthError(w http.ResponseWriter, e *apperror.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(e.SerializeForClient(false))
}
