package domain

import (
	"context"
	"time"
)

// AlbumRepository persists albums.
type AlbumRepository interface {
	Create(ctx context.Context, a *Album) (*Album, error)
	GetByID(ctx context.Context, id string) (*Album, error)
	GetByShareToken(ctx context.Context, token string) (*Album, error)
	List(ctx context.Context, owner string, page Page) ([]Album, int64, error)
	Update(ctx context.Context, a *Album) (*Album, error)
	Delete(ctx context.Context, id string) error
	// ClearExpiredShares removes share tokens whose expiry is before now and
	// returns the number of albums touched.
	ClearExpiredShares(ctx context.Context, now time.Time) (int64, error)
}

// PhotoRepository persists photos.
type PhotoRepository interface {
	Create(ctx context.Context, p *Photo) (*Photo, error)
	GetByID(ctx context.Context, id string) (*Photo, error)
	ListByAlbum(ctx context.Context, albumID string, page Page) ([]Photo, int64, error)
	Update(ctx context.Context, p *Photo) (*Photo, error)
	Delete(ctx context.Context, id string) error
	// DeleteStalePending removes photos still pending upload that were created
	// before the cutoff and returns the number of rows removed.
	DeleteStalePending(ctx context.Context, cutoff time.Time) (int64, error)
}

// Presigner issues time-limited URLs against object storage.
type Presigner interface {
	PresignPutObject(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
	PresignGetObject(ctx context.Context, key string, expiry time.Duration) (string, error)
}
