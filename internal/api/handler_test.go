package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proofdeck/internal/middleware"
	"proofdeck/internal/service"
	"proofdeck/internal/testutil"
)

const testOwner = "photographer-1"

type testEnv struct {
	router chi.Router
	albums *testutil.MemAlbumRepo
	photos *testutil.MemPhotoRepo
}

// authStub injects a fixed principal, standing in for the JWT middleware.
func authStub(subject string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithPrincipal(r.Context(), subject)))
		})
	}
}

func newTestEnv(t *testing.T, withStorage bool) *testEnv {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	albumRepo := testutil.NewMemAlbumRepo()
	photoRepo := testutil.NewMemPhotoRepo()

	var presigner *testutil.FakePresigner
	albumSvc := service.NewAlbumService(albumRepo, 14*24*time.Hour, logger)
	var photoSvc *service.PhotoService
	if withStorage {
		presigner = &testutil.FakePresigner{}
		photoSvc = service.NewPhotoService(photoRepo, presigner, 15*time.Minute, time.Hour, logger)
	} else {
		photoSvc = service.NewPhotoService(photoRepo, nil, 15*time.Minute, time.Hour, logger)
	}

	eh := &ErrorHandler{Logger: logger, IncludeDetails: true}
	handler := NewHandler(albumSvc, photoSvc, eh)
	router := NewRouter(handler, RouterOptions{Auth: authStub(testOwner)})

	return &testEnv{router: router, albums: albumRepo, photos: photoRepo}
}

func (env *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) createAlbum(t *testing.T, title string) map[string]any {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/v1/albums", map[string]any{"title": title})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeResponse(t, rec)
}

func fieldErrors(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	body := decodeResponse(t, rec)
	errs, ok := body["errors"].(map[string]any)
	require.True(t, ok, "expected errors object, got %s", rec.Body.String())
	return errs
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, true)
	rec := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateAlbum(t *testing.T) {
	env := newTestEnv(t, true)
	album := env.createAlbum(t, "Nguyen Wedding")

	assert.Equal(t, "Nguyen Wedding", album["title"])
	assert.Equal(t, "draft", album["status"])
	assert.NotEmpty(t, album["id"])
}

func TestCreateAlbum_ValidationErrors(t *testing.T) {
	env := newTestEnv(t, true)

	tests := []struct {
		name      string
		body      map[string]any
		wantField string
	}{
		{"missing title", map[string]any{}, "title"},
		{"empty title", map[string]any{"title": ""}, "title"},
		{"unknown field", map[string]any{"title": "x", "bogus": 1}, ""},
		{"bad date format", map[string]any{"title": "x", "event_start_date": "June 1st"}, "event_start_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/v1/albums", tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

			body := decodeResponse(t, rec)
			assert.Equal(t, "ValidationError", body["name"])
			if tt.wantField != "" {
				assert.Contains(t, fieldErrors(t, rec), tt.wantField)
			}
		})
	}
}

func TestCreateAlbum_EventDateOrder(t *testing.T) {
	env := newTestEnv(t, true)
	rec := env.do(t, http.MethodPost, "/v1/albums", map[string]any{
		"title":            "Reversed",
		"event_start_date": "2026-08-20",
		"event_end_date":   "2026-08-10",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, fieldErrors(t, rec), "event_end_date")
}

func TestCreateAlbum_MalformedBody(t *testing.T) {
	env := newTestEnv(t, true)

	req := httptest.NewRequest(http.MethodPost, "/v1/albums", bytes.NewReader([]byte(`{"title": `)))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, fieldErrors(t, rec), "body")
}

func TestListAlbums_Pagination(t *testing.T) {
	env := newTestEnv(t, true)
	for i := 0; i < 3; i++ {
		env.createAlbum(t, fmt.Sprintf("Album %d", i))
	}

	rec := env.do(t, http.MethodGet, "/v1/albums?page=2&limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeResponse(t, rec)
	assert.Len(t, body["items"], 1)
	assert.Equal(t, float64(2), body["page"])
	assert.Equal(t, float64(2), body["limit"])
	assert.Equal(t, float64(3), body["total"])
	assert.Equal(t, float64(2), body["total_pages"])
}

func TestListAlbums_PaginationDefaults(t *testing.T) {
	env := newTestEnv(t, true)
	env.createAlbum(t, "Only One")

	rec := env.do(t, http.MethodGet, "/v1/albums", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeResponse(t, rec)
	assert.Equal(t, float64(1), body["page"])
	assert.Equal(t, float64(20), body["limit"])
}

func TestListAlbums_InvalidPagination(t *testing.T) {
	env := newTestEnv(t, true)

	tests := []struct {
		name  string
		query string
		field string
	}{
		{"non-numeric page", "?page=abc", "page"},
		{"zero page", "?page=0", "page"},
		{"limit above max", "?limit=150", "limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/v1/albums"+tt.query, nil)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
			assert.Contains(t, fieldErrors(t, rec), tt.field)
		})
	}
}

func TestGetAlbum_ForeignOwner(t *testing.T) {
	env := newTestEnv(t, true)
	album := env.createAlbum(t, "Mine")

	// Same album requested through a router authenticated as someone else.
	otherRouter := NewRouter(
		NewHandler(
			service.NewAlbumService(env.albums, 0, slog.New(slog.DiscardHandler)),
			service.NewPhotoService(env.photos, nil, time.Minute, time.Minute, slog.New(slog.DiscardHandler)),
			&ErrorHandler{Logger: slog.New(slog.DiscardHandler)},
		),
		RouterOptions{Auth: authStub("someone-else")},
	)

	req := httptest.NewRequest(http.MethodGet, "/v1/albums/"+album["id"].(string), nil)
	rec := httptest.NewRecorder()
	otherRouter.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "AuthorizationError", decodeResponse(t, rec)["name"])
}

func TestGetAlbum_BadID(t *testing.T) {
	env := newTestEnv(t, true)
	rec := env.do(t, http.MethodGet, "/v1/albums/not-a-uuid", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	errs := fieldErrors(t, rec)
	assert.Equal(t, []any{"albumID must be a UUID"}, errs["albumID"])
}

func TestPublishAndShareFlow(t *testing.T) {
	env := newTestEnv(t, true)
	album := env.createAlbum(t, "Share Me")
	id := album["id"].(string)

	// Sharing a draft album is a conflict.
	rec := env.do(t, http.MethodPost, "/v1/albums/"+id+"/share", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ConflictError", decodeResponse(t, rec)["name"])

	rec = env.do(t, http.MethodPost, "/v1/albums/"+id+"/publish", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "published", decodeResponse(t, rec)["status"])

	rec = env.do(t, http.MethodPost, "/v1/albums/"+id+"/share", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	shared := decodeResponse(t, rec)
	token, _ := shared["share_token"].(string)
	require.NotEmpty(t, token)

	// The share view works without auth and does not echo the token back.
	rec = env.do(t, http.MethodGet, "/v1/share/"+token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeResponse(t, rec)
	assert.Equal(t, "Share Me", view["title"])
	assert.NotContains(t, view, "share_token")

	// Revoking the link kills the share view.
	rec = env.do(t, http.MethodDelete, "/v1/albums/"+id+"/share", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/share/"+token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShare_UnknownToken(t *testing.T) {
	env := newTestEnv(t, true)
	rec := env.do(t, http.MethodGet, "/v1/share/00000000-0000-0000-0000-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadFlow(t *testing.T) {
	env := newTestEnv(t, true)
	album := env.createAlbum(t, "Uploads")
	id := album["id"].(string)
	base := "/v1/albums/" + id + "/photos"

	// Request an upload URL.
	rec := env.do(t, http.MethodPost, base+"/upload-url", map[string]any{
		"filename":     "portrait 01.jpg",
		"content_type": "image/jpeg",
		"size_bytes":   1024,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	grant := decodeResponse(t, rec)
	photo := grant["photo"].(map[string]any)
	photoID := photo["id"].(string)
	assert.Equal(t, "pending", photo["upload_status"])
	assert.Contains(t, grant["upload_url"], "albums/"+id+"/")

	// Download before confirmation is a conflict.
	rec = env.do(t, http.MethodGet, base+"/"+photoID+"/download-url", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Confirm, then download.
	rec = env.do(t, http.MethodPost, base+"/"+photoID+"/confirm", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "uploaded", decodeResponse(t, rec)["upload_status"])

	rec = env.do(t, http.MethodGet, base+"/"+photoID+"/download-url", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeResponse(t, rec)["download_url"], "storage.test/get/")

	// Review it.
	rec = env.do(t, http.MethodPost, base+"/"+photoID+"/proof", map[string]any{
		"status": "approved",
		"note":   "love this one",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	reviewed := decodeResponse(t, rec)
	assert.Equal(t, "approved", reviewed["proof_status"])
	assert.Equal(t, "love this one", reviewed["proof_note"])
}

func TestUpload_RejectedContentType(t *testing.T) {
	env := newTestEnv(t, true)
	album := env.createAlbum(t, "Uploads")

	rec := env.do(t, http.MethodPost, "/v1/albums/"+album["id"].(string)+"/photos/upload-url", map[string]any{
		"filename":     "script.sh",
		"content_type": "application/x-sh",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	errs := fieldErrors(t, rec)
	assert.Equal(t, []any{"content_type must be an image MIME type"}, errs["content_type"])
}

func TestUpload_StorageNotConfigured(t *testing.T) {
	env := newTestEnv(t, false)
	album := env.createAlbum(t, "No Storage")

	rec := env.do(t, http.MethodPost, "/v1/albums/"+album["id"].(string)+"/photos/upload-url", map[string]any{
		"filename":     "a.jpg",
		"content_type": "image/jpeg",
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "StorageUnavailableError", decodeResponse(t, rec)["name"])
}

func TestProofBatch(t *testing.T) {
	env := newTestEnv(t, true)
	album := env.createAlbum(t, "Batch")
	id := album["id"].(string)
	base := "/v1/albums/" + id + "/photos"

	var photoIDs []string
	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodPost, base+"/upload-url", map[string]any{
			"filename":     fmt.Sprintf("img-%d.jpg", i),
			"content_type": "image/jpeg",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		photoID := decodeResponse(t, rec)["photo"].(map[string]any)["id"].(string)
		rec = env.do(t, http.MethodPost, base+"/"+photoID+"/confirm", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		photoIDs = append(photoIDs, photoID)
	}

	rec := env.do(t, http.MethodPost, base+"/proof", map[string]any{
		"photo_ids": photoIDs,
		"status":    "rejected",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	items := decodeResponse(t, rec)["items"].([]any)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.Equal(t, "rejected", item.(map[string]any)["proof_status"])
	}
}

func TestProofBatch_EmptyList(t *testing.T) {
	env := newTestEnv(t, true)
	album := env.createAlbum(t, "Batch")

	rec := env.do(t, http.MethodPost, "/v1/albums/"+album["id"].(string)+"/photos/proof", map[string]any{
		"photo_ids": []string{},
		"status":    "approved",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, fieldErrors(t, rec), "photo_ids")
}

func TestSharePhotoRoutes(t *testing.T) {
	env := newTestEnv(t, true)
	album := env.createAlbum(t, "Client Review")
	id := album["id"].(string)

	// Upload and confirm one photo, publish, share.
	rec := env.do(t, http.MethodPost, "/v1/albums/"+id+"/photos/upload-url", map[string]any{
		"filename":     "a.jpg",
		"content_type": "image/jpeg",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	photoID := decodeResponse(t, rec)["photo"].(map[string]any)["id"].(string)
	rec = env.do(t, http.MethodPost, "/v1/albums/"+id+"/photos/"+photoID+"/confirm", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	env.do(t, http.MethodPost, "/v1/albums/"+id+"/publish", nil)
	rec = env.do(t, http.MethodPost, "/v1/albums/"+id+"/share", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	token := decodeResponse(t, rec)["share_token"].(string)

	shareBase := "/v1/share/" + token + "/photos"

	rec = env.do(t, http.MethodGet, shareBase, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeResponse(t, rec)["items"], 1)

	rec = env.do(t, http.MethodGet, shareBase+"/"+photoID+"/download-url", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, shareBase+"/"+photoID+"/proof", map[string]any{
		"status": "approved",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "approved", decodeResponse(t, rec)["proof_status"])
}

func TestDeleteAlbum(t *testing.T) {
	env := newTestEnv(t, true)
	album := env.createAlbum(t, "Doomed")
	id := album["id"].(string)

	rec := env.do(t, http.MethodDelete, "/v1/albums/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/albums/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
