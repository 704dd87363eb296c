package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"proofdeck/internal/domain"
)

// Compile-time check.
var _ domain.AlbumRepository = (*AlbumRepo)(nil)

// AlbumRepo implements domain.AlbumRepository on Postgres.
type AlbumRepo struct {
	db *gorm.DB
}

// NewAlbumRepo creates a new AlbumRepo.
func NewAlbumRepo(db *gorm.DB) *AlbumRepo {
	return &AlbumRepo{db: db}
}

// Create inserts a new album.
func (r *AlbumRepo) Create(ctx context.Context, a *domain.Album) (*domain.Album, error) {
	m := albumFromDomain(a)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, mapDBError(err, "Album", a.Title)
	}
	return albumToDomain(m), nil
}

// GetByID returns an album by ID.
func (r *AlbumRepo) GetByID(ctx context.Context, id string) (*domain.Album, error) {
	var m AlbumModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, mapDBError(err, "Album", id)
	}
	return albumToDomain(&m), nil
}

// GetByShareToken returns an album by its share token.
func (r *AlbumRepo) GetByShareToken(ctx context.Context, token string) (*domain.Album, error) {
	var m AlbumModel
	if err := r.db.WithContext(ctx).First(&m, "share_token = ?", token).Error; err != nil {
		return nil, mapDBError(err, "Album", "")
	}
	return albumToDomain(&m), nil
}

// List returns one page of the owner's albums, newest first, plus the total
// count.
func (r *AlbumRepo) List(ctx context.Context, owner string, page domain.Page) ([]domain.Album, int64, error) {
	q := r.db.WithContext(ctx).Model(&AlbumModel{}).Where("created_by = ?", owner)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []AlbumModel
	err := q.Order("created_at DESC").
		Limit(page.Normalized().Limit).
		Offset(page.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	albums := make([]domain.Album, 0, len(rows))
	for i := range rows {
		albums = append(albums, *albumToDomain(&rows[i]))
	}
	return albums, total, nil
}

// Update persists the full album record.
func (r *AlbumRepo) Update(ctx context.Context, a *domain.Album) (*domain.Album, error) {
	m := albumFromDomain(a)
	m.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&AlbumModel{ID: m.ID}).Select("*").Omit("id", "created_at").Updates(m)
	if res.Error != nil {
		return nil, mapDBError(res.Error, "Album", a.ID)
	}
	if res.RowsAffected == 0 {
		return nil, mapDBError(gorm.ErrRecordNotFound, "Album", a.ID)
	}
	return r.GetByID(ctx, a.ID)
}

// Delete removes an album; photos cascade at the schema level.
func (r *AlbumRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&AlbumModel{}, "id = ?", id)
	if res.Error != nil {
		return mapDBError(res.Error, "Album", id)
	}
	if res.RowsAffected == 0 {
		return mapDBError(gorm.ErrRecordNotFound, "Album", id)
	}
	return nil
}

// ClearExpiredShares removes share tokens whose expiry has passed.
func (r *AlbumRepo) ClearExpiredShares(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&AlbumModel{}).
		Where("share_token IS NOT NULL AND share_expires_at IS NOT NULL AND share_expires_at < ?", now).
		Updates(map[string]any{"share_token": nil, "share_expires_at": nil, "updated_at": now})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
