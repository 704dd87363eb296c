package api

import (
	"net/http"

	"proofdeck/internal/domain"
	"proofdeck/internal/service"
	"proofdeck/internal/validation"
)

func (h *Handler) createAlbum(w http.ResponseWriter, r *http.Request) error {
	owner, err := principal(r)
	if err != nil {
		return err
	}
	body, err := decodeBody(r)
	if err != nil {
		return err
	}
	data, err := validation.ValidateBody(createAlbumSchema, body)
	if err != nil {
		return err
	}
	m := data.(map[string]any)

	in := service.CreateAlbumInput{Title: strField(m, "title"), Description: strField(m, "description")}
	if in.EventStartDate, err = dateField(m, "event_start_date"); err != nil {
		return err
	}
	if in.EventEndDate, err = dateField(m, "event_end_date"); err != nil {
		return err
	}

	album, err := h.albums.Create(r.Context(), owner, in)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, albumToResponse(album, true))
	return nil
}

func (h *Handler) listAlbums(w http.ResponseWriter, r *http.Request) error {
	owner, err := principal(r)
	if err != nil {
		return err
	}
	page, err := pageFromQuery(r)
	if err != nil {
		return err
	}
	albums, total, err := h.albums.List(r.Context(), owner, page)
	if err != nil {
		return err
	}

	items := make([]albumResponse, 0, len(albums))
	for i := range albums {
		items = append(items, albumToResponse(&albums[i], true))
	}
	n := page.Normalized()
	writeJSON(w, http.StatusOK, pageResponse[albumResponse]{
		Items: items, Page: n.Page, Limit: n.Limit,
		Total: total, TotalPages: page.PageCount(total),
	})
	return nil
}

func (h *Handler) getAlbum(w http.ResponseWriter, r *http.Request) error {
	album, err := h.ownedAlbum(r)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, albumToResponse(album, true))
	return nil
}

func (h *Handler) updateAlbum(w http.ResponseWriter, r *http.Request) error {
	owner, err := principal(r)
	if err != nil {
		return err
	}
	album, err := h.ownedAlbum(r)
	if err != nil {
		return err
	}
	body, err := decodeBody(r)
	if err != nil {
		return err
	}
	data, err := validation.ValidateBody(updateAlbumSchema, body)
	if err != nil {
		return err
	}
	m := data.(map[string]any)

	in := service.UpdateAlbumInput{
		Title:       strPtrField(m, "title"),
		Description: strPtrField(m, "description"),
	}
	if in.EventStartDate, err = dateField(m, "event_start_date"); err != nil {
		return err
	}
	if in.EventEndDate, err = dateField(m, "event_end_date"); err != nil {
		return err
	}

	updated, err := h.albums.Update(r.Context(), owner, album.ID, in)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, albumToResponse(updated, true))
	return nil
}

func (h *Handler) deleteAlbum(w http.ResponseWriter, r *http.Request) error {
	owner, err := principal(r)
	if err != nil {
		return err
	}
	album, err := h.ownedAlbum(r)
	if err != nil {
		return err
	}
	if err := h.albums.Delete(r.Context(), owner, album.ID); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// transition runs an owned-album lifecycle operation and writes the updated
// album. Publish, archive, share, and unshare all share this shape.
func (h *Handler) transition(w http.ResponseWriter, r *http.Request,
	op func(owner, id string) (*domain.Album, error)) error {
	owner, err := principal(r)
	if err != nil {
		return err
	}
	album, err := h.ownedAlbum(r)
	if err != nil {
		return err
	}
	updated, err := op(owner, album.ID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, albumToResponse(updated, true))
	return nil
}

func (h *Handler) publishAlbum(w http.ResponseWriter, r *http.Request) error {
	return h.transition(w, r, func(owner, id string) (*domain.Album, error) {
		return h.albums.Publish(r.Context(), owner, id)
	})
}

func (h *Handler) archiveAlbum(w http.ResponseWriter, r *http.Request) error {
	return h.transition(w, r, func(owner, id string) (*domain.Album, error) {
		return h.albums.Archive(r.Context(), owner, id)
	})
}

func (h *Handler) shareAlbum(w http.ResponseWriter, r *http.Request) error {
	return h.transition(w, r, func(owner, id string) (*domain.Album, error) {
		return h.albums.Share(r.Context(), owner, id)
	})
}

func (h *Handler) unshareAlbum(w http.ResponseWriter, r *http.Request) error {
	return h.transition(w, r, func(owner, id string) (*domain.Album, error) {
		return h.albums.Unshare(r.Context(), owner, id)
	})
}

// shareGetAlbum serves the album view behind a share token. The token itself
// and the owner identity are not echoed back.
func (h *Handler) shareGetAlbum(w http.ResponseWriter, r *http.Request) error {
	album, err := h.sharedAlbum(r)
	if err != nil {
		return err
	}
	resp := albumToResponse(album, false)
	resp.ShareExpiresAt = timeString(album.ShareExpiresAt)
	writeJSON(w, http.StatusOK, resp)
	return nil
}
