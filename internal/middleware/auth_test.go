package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func mintToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestSharedSecretValidator_ValidToken(t *testing.T) {
	v := NewSharedSecretValidator(testSecret)
	token := mintToken(t, testSecret, jwt.MapClaims{
		"sub":   "user-1",
		"iss":   "proofdeck-admin",
		"aud":   "proofdeck",
		"email": "user@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	claims, err := v.Validate(t.Context(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "proofdeck-admin", claims.Issuer)
	assert.Equal(t, []string{"proofdeck"}, claims.Audience)
	require.NotNil(t, claims.Email)
	assert.Equal(t, "user@example.com", *claims.Email)
}

func TestSharedSecretValidator_AudienceList(t *testing.T) {
	v := NewSharedSecretValidator(testSecret)
	token := mintToken(t, testSecret, jwt.MapClaims{
		"sub": "user-1",
		"aud": []string{"a", "b"},
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	claims, err := v.Validate(t.Context(), token)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, claims.Audience)
}

func TestSharedSecretValidator_Rejects(t *testing.T) {
	v := NewSharedSecretValidator(testSecret)

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", mintToken(t, "other-secret", jwt.MapClaims{"sub": "u"})},
		{"expired", mintToken(t, testSecret, jwt.MapClaims{
			"sub": "u",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})},
		{"garbage", "not.a.jwt"},
		{"alg none", func() string {
			tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "u"})
			s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
			require.NoError(t, err)
			return s
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(t.Context(), tt.token)
			assert.Error(t, err)
		})
	}
}

func authedHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, ok := PrincipalFromContext(r.Context())
		require.True(t, ok)
		w.Header().Set("X-Subject", subject)
		w.WriteHeader(http.StatusOK)
	})
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAuth_ValidToken(t *testing.T) {
	v := NewSharedSecretValidator(testSecret)
	h := Auth(v)(authedHandler(t))

	req := httptest.NewRequest(http.MethodGet, "/v1/albums", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, testSecret, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Header().Get("X-Subject"))
}

func TestAuth_MissingHeader(t *testing.T) {
	h := Auth(NewSharedSecretValidator(testSecret))(authedHandler(t))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/albums", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "AuthenticationError", body["name"])
	assert.Equal(t, "missing bearer token", body["message"])
}

func TestAuth_InvalidToken(t *testing.T) {
	h := Auth(NewSharedSecretValidator(testSecret))(authedHandler(t))

	req := httptest.NewRequest(http.MethodGet, "/v1/albums", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TokenError", decodeError(t, rec)["name"])
}

func TestAuth_TokenWithoutSubject(t *testing.T) {
	h := Auth(NewSharedSecretValidator(testSecret))(authedHandler(t))

	req := httptest.NewRequest(http.MethodGet, "/v1/albums", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, testSecret, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TokenError", decodeError(t, rec)["name"])
}
