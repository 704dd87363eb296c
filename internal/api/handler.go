package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"proofdeck/internal/apperror"
	"proofdeck/internal/domain"
	"proofdeck/internal/middleware"
	"proofdeck/internal/service"
	"proofdeck/internal/validation"
)

// Handler holds the services behind the HTTP surface.
type Handler struct {
	albums *service.AlbumService
	photos *service.PhotoService
	eh     *ErrorHandler
}

// NewHandler creates a Handler wired to the given services.
func NewHandler(albums *service.AlbumService, photos *service.PhotoService, eh *ErrorHandler) *Handler {
	return &Handler{albums: albums, photos: photos, eh: eh}
}

// Routes registers the authenticated photographer routes on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/albums", func(r chi.Router) {
		r.Get("/", h.eh.Wrap(h.listAlbums))
		r.Post("/", h.eh.Wrap(h.createAlbum))
		r.Route("/{albumID}", func(r chi.Router) {
			r.Get("/", h.eh.Wrap(h.getAlbum))
			r.Patch("/", h.eh.Wrap(h.updateAlbum))
			r.Delete("/", h.eh.Wrap(h.deleteAlbum))
			r.Post("/publish", h.eh.Wrap(h.publishAlbum))
			r.Post("/archive", h.eh.Wrap(h.archiveAlbum))
			r.Post("/share", h.eh.Wrap(h.shareAlbum))
			r.Delete("/share", h.eh.Wrap(h.unshareAlbum))
			r.Route("/photos", func(r chi.Router) {
				r.Get("/", h.eh.Wrap(h.listPhotos))
				r.Post("/upload-url", h.eh.Wrap(h.requestUpload))
				r.Post("/proof", h.eh.Wrap(h.setProofBatch))
				r.Route("/{photoID}", func(r chi.Router) {
					r.Delete("/", h.eh.Wrap(h.deletePhoto))
					r.Post("/confirm", h.eh.Wrap(h.confirmUpload))
					r.Get("/download-url", h.eh.Wrap(h.downloadPhoto))
					r.Post("/proof", h.eh.Wrap(h.setProof))
				})
			})
		})
	})
}

// ShareRoutes registers the unauthenticated client routes, addressed by share
// token instead of bearer identity.
func (h *Handler) ShareRoutes(r chi.Router) {
	r.Route("/share/{token}", func(r chi.Router) {
		r.Get("/", h.eh.Wrap(h.shareGetAlbum))
		r.Route("/photos", func(r chi.Router) {
			r.Get("/", h.eh.Wrap(h.shareListPhotos))
			r.Post("/proof", h.eh.Wrap(h.shareSetProofBatch))
			r.Get("/{photoID}/download-url", h.eh.Wrap(h.shareDownloadPhoto))
			r.Post("/{photoID}/proof", h.eh.Wrap(h.shareSetProof))
		})
	})
}

// principal extracts the authenticated subject. The auth middleware
// guarantees it on protected routes; a missing principal is a wiring bug
// answered as an authentication failure rather than a panic.
func principal(r *http.Request) (string, error) {
	subject, ok := middleware.PrincipalFromContext(r.Context())
	if !ok || subject == "" {
		return "", apperror.NewAuthentication("")
	}
	return subject, nil
}

// ownedAlbum validates the albumID route parameter and resolves the album,
// enforcing ownership.
func (h *Handler) ownedAlbum(r *http.Request) (*domain.Album, error) {
	owner, err := principal(r)
	if err != nil {
		return nil, err
	}
	params, err := validation.ValidateParams(albumParamsSchema, map[string]any{
		"albumID": chi.URLParam(r, "albumID"),
	})
	if err != nil {
		return nil, err
	}
	return h.albums.GetOwned(r.Context(), owner, strField(params.(map[string]any), "albumID"))
}

// sharedAlbum validates the token route parameter and resolves the album
// behind it.
func (h *Handler) sharedAlbum(r *http.Request) (*domain.Album, error) {
	params, err := validation.ValidateParams(shareTokenParamsSchema, map[string]any{
		"token": chi.URLParam(r, "token"),
	})
	if err != nil {
		return nil, err
	}
	return h.albums.ResolveShare(r.Context(), strField(params.(map[string]any), "token"))
}

// photoID validates the photoID route parameter alongside the album's.
func photoID(r *http.Request) (string, error) {
	params, err := validation.ValidateParams(photoParamsSchema, map[string]any{
		"albumID": chi.URLParam(r, "albumID"),
		"photoID": chi.URLParam(r, "photoID"),
	})
	if err != nil {
		return "", err
	}
	return strField(params.(map[string]any), "photoID"), nil
}

// sharePhotoID validates the photoID parameter on share-token routes, where
// no albumID parameter exists.
func sharePhotoID(r *http.Request) (string, error) {
	params, err := validation.ValidateParams(sharePhotoParamsSchema, map[string]any{
		"photoID": chi.URLParam(r, "photoID"),
	})
	if err != nil {
		return "", err
	}
	return strField(params.(map[string]any), "photoID"), nil
}

// pageFromQuery validates pagination parameters, applying defaults and string
// coercion.
func pageFromQuery(r *http.Request) (domain.Page, error) {
	data, err := validation.ValidateQuery(paginationSchema, validation.QueryToMap(r.URL.Query()))
	if err != nil {
		return domain.Page{}, err
	}
	m := data.(map[string]any)
	return domain.Page{Page: int(intField(m, "page")), Limit: int(intField(m, "limit"))}, nil
}

// Response DTOs. Share-token responses reuse the same shapes minus the
// owner-only fields.

type albumResponse struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description,omitempty"`
	Status         string  `json:"status"`
	EventStartDate *string `json:"event_start_date,omitempty"`
	EventEndDate   *string `json:"event_end_date,omitempty"`
	ShareToken     *string `json:"share_token,omitempty"`
	ShareExpiresAt *string `json:"share_expires_at,omitempty"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

type photoResponse struct {
	ID           string `json:"id"`
	AlbumID      string `json:"album_id"`
	Filename     string `json:"filename"`
	ContentType  string `json:"content_type"`
	SizeBytes    int64  `json:"size_bytes"`
	UploadStatus string `json:"upload_status"`
	ProofStatus  string `json:"proof_status"`
	ProofNote    string `json:"proof_note,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

type pageResponse[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func albumToResponse(a *domain.Album, includeShare bool) albumResponse {
	resp := albumResponse{
		ID:             a.ID,
		Title:          a.Title,
		Description:    a.Description,
		Status:         a.Status,
		EventStartDate: dateString(a.EventStartDate),
		EventEndDate:   dateString(a.EventEndDate),
		CreatedAt:      a.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      a.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if includeShare {
		resp.ShareToken = a.ShareToken
		resp.ShareExpiresAt = timeString(a.ShareExpiresAt)
	}
	return resp
}

func photoToResponse(p *domain.Photo) photoResponse {
	return photoResponse{
		ID:           p.ID,
		AlbumID:      p.AlbumID,
		Filename:     p.Filename,
		ContentType:  p.ContentType,
		SizeBytes:    p.SizeBytes,
		UploadStatus: p.UploadStatus,
		ProofStatus:  p.ProofStatus,
		ProofNote:    p.ProofNote,
		CreatedAt:    p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func photoPage(photos []domain.Photo, page domain.Page, total int64) pageResponse[photoResponse] {
	items := make([]photoResponse, 0, len(photos))
	for i := range photos {
		items = append(items, photoToResponse(&photos[i]))
	}
	n := page.Normalized()
	return pageResponse[photoResponse]{
		Items: items, Page: n.Page, Limit: n.Limit,
		Total: total, TotalPages: page.PageCount(total),
	}
}

func dateString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format("2006-01-02")
	return &s
}

func timeString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
