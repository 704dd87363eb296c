package api

import (
	"net/http"
	"time"

	"proofdeck/internal/domain"
	"proofdeck/internal/service"
	"proofdeck/internal/validation"
)

type uploadGrantResponse struct {
	Photo     photoResponse `json:"photo"`
	UploadURL string        `json:"upload_url"`
	ExpiresAt string        `json:"expires_at"`
}

type downloadResponse struct {
	DownloadURL string `json:"download_url"`
	ExpiresAt   string `json:"expires_at"`
}

func (h *Handler) requestUpload(w http.ResponseWriter, r *http.Request) error {
	album, err := h.ownedAlbum(r)
	if err != nil {
		return err
	}
	body, err := decodeBody(r)
	if err != nil {
		return err
	}
	data, err := validation.ValidateBody(uploadRequestSchema, body)
	if err != nil {
		return err
	}
	m := data.(map[string]any)

	grant, err := h.photos.RequestUpload(r.Context(), album, service.UploadRequestInput{
		Filename:    strField(m, "filename"),
		ContentType: strField(m, "content_type"),
		SizeBytes:   intField(m, "size_bytes"),
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, uploadGrantResponse{
		Photo:     photoToResponse(grant.Photo),
		UploadURL: grant.UploadURL,
		ExpiresAt: grant.ExpiresAt.UTC().Format(time.RFC3339),
	})
	return nil
}

func (h *Handler) confirmUpload(w http.ResponseWriter, r *http.Request) error {
	album, err := h.ownedAlbum(r)
	if err != nil {
		return err
	}
	id, err := photoID(r)
	if err != nil {
		return err
	}

	// The body is optional; when present it may carry the final object size.
	var sizeBytes int64
	if r.ContentLength != 0 {
		body, err := decodeBody(r)
		if err != nil {
			return err
		}
		data, err := validation.ValidateBody(confirmUploadSchema, body)
		if err != nil {
			return err
		}
		sizeBytes = intField(data.(map[string]any), "size_bytes")
	}

	photo, err := h.photos.ConfirmUpload(r.Context(), album, id, sizeBytes)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, photoToResponse(photo))
	return nil
}

func (h *Handler) listPhotos(w http.ResponseWriter, r *http.Request) error {
	album, err := h.ownedAlbum(r)
	if err != nil {
		return err
	}
	return h.writePhotoPage(w, r, album)
}

func (h *Handler) downloadPhoto(w http.ResponseWriter, r *http.Request) error {
	album, err := h.ownedAlbum(r)
	if err != nil {
		return err
	}
	id, err := photoID(r)
	if err != nil {
		return err
	}
	return h.writeDownload(w, r, album, id)
}

func (h *Handler) setProof(w http.ResponseWriter, r *http.Request) error {
	album, err := h.ownedAlbum(r)
	if err != nil {
		return err
	}
	id, err := photoID(r)
	if err != nil {
		return err
	}
	return h.writeProof(w, r, album, id)
}

func (h *Handler) setProofBatch(w http.ResponseWriter, r *http.Request) error {
	album, err := h.ownedAlbum(r)
	if err != nil {
		return err
	}
	return h.writeProofBatch(w, r, album)
}

func (h *Handler) deletePhoto(w http.ResponseWriter, r *http.Request) error {
	album, err := h.ownedAlbum(r)
	if err != nil {
		return err
	}
	id, err := photoID(r)
	if err != nil {
		return err
	}
	if err := h.photos.Delete(r.Context(), album, id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// Share-token photo routes. The album is resolved through the token; photo
// operations are then identical to the owner paths.

func (h *Handler) shareListPhotos(w http.ResponseWriter, r *http.Request) error {
	album, err := h.sharedAlbum(r)
	if err != nil {
		return err
	}
	return h.writePhotoPage(w, r, album)
}

func (h *Handler) shareDownloadPhoto(w http.ResponseWriter, r *http.Request) error {
	album, err := h.sharedAlbum(r)
	if err != nil {
		return err
	}
	id, err := sharePhotoID(r)
	if err != nil {
		return err
	}
	return h.writeDownload(w, r, album, id)
}

func (h *Handler) shareSetProof(w http.ResponseWriter, r *http.Request) error {
	album, err := h.sharedAlbum(r)
	if err != nil {
		return err
	}
	id, err := sharePhotoID(r)
	if err != nil {
		return err
	}
	return h.writeProof(w, r, album, id)
}

func (h *Handler) shareSetProofBatch(w http.ResponseWriter, r *http.Request) error {
	album, err := h.sharedAlbum(r)
	if err != nil {
		return err
	}
	return h.writeProofBatch(w, r, album)
}

func (h *Handler) writePhotoPage(w http.ResponseWriter, r *http.Request, album *domain.Album) error {
	page, err := pageFromQuery(r)
	if err != nil {
		return err
	}
	photos, total, err := h.photos.List(r.Context(), album, page)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, photoPage(photos, page, total))
	return nil
}

func (h *Handler) writeDownload(w http.ResponseWriter, r *http.Request, album *domain.Album, photoID string) error {
	url, expires, err := h.photos.DownloadURL(r.Context(), album, photoID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, downloadResponse{
		DownloadURL: url,
		ExpiresAt:   expires.UTC().Format(time.RFC3339),
	})
	return nil
}

func (h *Handler) writeProof(w http.ResponseWriter, r *http.Request, album *domain.Album, photoID string) error {
	body, err := decodeBody(r)
	if err != nil {
		return err
	}
	data, err := validation.ValidateBody(proofSchema, body)
	if err != nil {
		return err
	}
	m := data.(map[string]any)

	photo, err := h.photos.SetProof(r.Context(), album, photoID, strField(m, "status"), strField(m, "note"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, photoToResponse(photo))
	return nil
}

func (h *Handler) writeProofBatch(w http.ResponseWriter, r *http.Request, album *domain.Album) error {
	body, err := decodeBody(r)
	if err != nil {
		return err
	}
	data, err := proofBatchPipeline.Validate(body)
	if err != nil {
		return err
	}
	m := data.(map[string]any)

	photos, err := h.photos.SetProofBatch(r.Context(), album,
		strSliceField(m, "photo_ids"), strField(m, "status"), strField(m, "note"))
	if err != nil {
		return err
	}

	items := make([]photoResponse, 0, len(photos))
	for i := range photos {
		items = append(items, photoToResponse(&photos[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
	return nil
}
