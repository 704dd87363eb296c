// Package testutil provides in-memory repository and storage fakes shared by
// the service and API tests.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"proofdeck/internal/apperror"
	"proofdeck/internal/domain"
)

// MemAlbumRepo is an in-memory AlbumRepository.
type MemAlbumRepo struct {
	mu     sync.Mutex
	albums map[string]domain.Album
	// FailWith, when set, is returned by every method. Used to exercise
	// conversion of unexpected repository failures.
	FailWith error
}

// NewMemAlbumRepo returns an empty in-memory album repository.
func NewMemAlbumRepo() *MemAlbumRepo {
	return &MemAlbumRepo{albums: map[string]domain.Album{}}
}

var _ domain.AlbumRepository = (*MemAlbumRepo)(nil)

func (r *MemAlbumRepo) Create(_ context.Context, a *domain.Album) (*domain.Album, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	for _, existing := range r.albums {
		if existing.CreatedBy == a.CreatedBy && existing.Title == a.Title {
			return nil, apperror.NewConflict("Album already exists")
		}
	}
	r.albums[a.ID] = *a
	cp := *a
	return &cp, nil
}

func (r *MemAlbumRepo) GetByID(_ context.Context, id string) (*domain.Album, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	a, ok := r.albums[id]
	if !ok {
		return nil, apperror.NewNotFound("Album", id)
	}
	cp := a
	return &cp, nil
}

func (r *MemAlbumRepo) GetByShareToken(_ context.Context, token string) (*domain.Album, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	for _, a := range r.albums {
		if a.ShareToken != nil && *a.ShareToken == token {
			cp := a
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("Album", "")
}

func (r *MemAlbumRepo) List(_ context.Context, owner string, page domain.Page) ([]domain.Album, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, 0, r.FailWith
	}
	var owned []domain.Album
	for _, a := range r.albums {
		if a.CreatedBy == owner {
			owned = append(owned, a)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].CreatedAt.After(owned[j].CreatedAt) })

	total := int64(len(owned))
	n := page.Normalized()
	start := (n.Page - 1) * n.Limit
	if start >= len(owned) {
		return []domain.Album{}, total, nil
	}
	end := start + n.Limit
	if end > len(owned) {
		end = len(owned)
	}
	return owned[start:end], total, nil
}

func (r *MemAlbumRepo) Update(_ context.Context, a *domain.Album) (*domain.Album, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	if _, ok := r.albums[a.ID]; !ok {
		return nil, apperror.NewNotFound("Album", a.ID)
	}
	a.UpdatedAt = time.Now().UTC()
	r.albums[a.ID] = *a
	cp := *a
	return &cp, nil
}

func (r *MemAlbumRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	if _, ok := r.albums[id]; !ok {
		return apperror.NewNotFound("Album", id)
	}
	delete(r.albums, id)
	return nil
}

func (r *MemAlbumRepo) ClearExpiredShares(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return 0, r.FailWith
	}
	var cleared int64
	for id, a := range r.albums {
		if a.ShareToken != nil && a.ShareExpiresAt != nil && a.ShareExpiresAt.Before(now) {
			a.ShareToken = nil
			a.ShareExpiresAt = nil
			r.albums[id] = a
			cleared++
		}
	}
	return cleared, nil
}

// MemPhotoRepo is an in-memory PhotoRepository.
type MemPhotoRepo struct {
	mu     sync.Mutex
	photos map[string]domain.Photo
	order  []string
	// FailWith, when set, is returned by every method.
	FailWith error
}

// NewMemPhotoRepo returns an empty in-memory photo repository.
func NewMemPhotoRepo() *MemPhotoRepo {
	return &MemPhotoRepo{photos: map[string]domain.Photo{}}
}

var _ domain.PhotoRepository = (*MemPhotoRepo)(nil)

func (r *MemPhotoRepo) Create(_ context.Context, p *domain.Photo) (*domain.Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	r.photos[p.ID] = *p
	r.order = append(r.order, p.ID)
	cp := *p
	return &cp, nil
}

func (r *MemPhotoRepo) GetByID(_ context.Context, id string) (*domain.Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	p, ok := r.photos[id]
	if !ok {
		return nil, apperror.NewNotFound("Photo", id)
	}
	cp := p
	return &cp, nil
}

func (r *MemPhotoRepo) ListByAlbum(_ context.Context, albumID string, page domain.Page) ([]domain.Photo, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, 0, r.FailWith
	}
	var inAlbum []domain.Photo
	for _, id := range r.order {
		if p, ok := r.photos[id]; ok && p.AlbumID == albumID {
			inAlbum = append(inAlbum, p)
		}
	}
	total := int64(len(inAlbum))
	n := page.Normalized()
	start := (n.Page - 1) * n.Limit
	if start >= len(inAlbum) {
		return []domain.Photo{}, total, nil
	}
	end := start + n.Limit
	if end > len(inAlbum) {
		end = len(inAlbum)
	}
	return inAlbum[start:end], total, nil
}

func (r *MemPhotoRepo) Update(_ context.Context, p *domain.Photo) (*domain.Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	if _, ok := r.photos[p.ID]; !ok {
		return nil, apperror.NewNotFound("Photo", p.ID)
	}
	p.UpdatedAt = time.Now().UTC()
	r.photos[p.ID] = *p
	cp := *p
	return &cp, nil
}

func (r *MemPhotoRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	if _, ok := r.photos[id]; !ok {
		return apperror.NewNotFound("Photo", id)
	}
	delete(r.photos, id)
	return nil
}

func (r *MemPhotoRepo) DeleteStalePending(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return 0, r.FailWith
	}
	var removed int64
	for id, p := range r.photos {
		if p.UploadStatus == domain.UploadStatusPending && p.CreatedAt.Before(cutoff) {
			delete(r.photos, id)
			removed++
		}
	}
	return removed, nil
}

// FakePresigner returns deterministic URLs instead of talking to storage.
type FakePresigner struct {
	// Err, when set, is returned by both methods.
	Err error
}

var _ domain.Presigner = (*FakePresigner)(nil)

func (f *FakePresigner) PresignPutObject(_ context.Context, key, contentType string, _ time.Duration) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	return "https://storage.test/put/" + key + "?ct=" + contentType, nil
}

func (f *FakePresigner) PresignGetObject(_ context.Context, key string, _ time.Duration) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	return "https://storage.test/get/" + key, nil
}
