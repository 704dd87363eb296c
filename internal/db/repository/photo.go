package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"proofdeck/internal/domain"
)

// Compile-time check.
var _ domain.PhotoRepository = (*PhotoRepo)(nil)

// PhotoRepo implements domain.PhotoRepository on Postgres.
type PhotoRepo struct {
	db *gorm.DB
}

// NewPhotoRepo creates a new PhotoRepo.
func NewPhotoRepo(db *gorm.DB) *PhotoRepo {
	return &PhotoRepo{db: db}
}

// Create inserts a new photo row.
func (r *PhotoRepo) Create(ctx context.Context, p *domain.Photo) (*domain.Photo, error) {
	m := photoFromDomain(p)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, mapDBError(err, "Photo", p.Filename)
	}
	return photoToDomain(m), nil
}

// GetByID returns a photo by ID.
func (r *PhotoRepo) GetByID(ctx context.Context, id string) (*domain.Photo, error) {
	var m PhotoModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, mapDBError(err, "Photo", id)
	}
	return photoToDomain(&m), nil
}

// ListByAlbum returns one page of an album's photos in upload order, plus
// the total count.
func (r *PhotoRepo) ListByAlbum(ctx context.Context, albumID string, page domain.Page) ([]domain.Photo, int64, error) {
	q := r.db.WithContext(ctx).Model(&PhotoModel{}).Where("album_id = ?", albumID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []PhotoModel
	err := q.Order("created_at ASC").
		Limit(page.Normalized().Limit).
		Offset(page.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	photos := make([]domain.Photo, 0, len(rows))
	for i := range rows {
		photos = append(photos, *photoToDomain(&rows[i]))
	}
	return photos, total, nil
}

// Update persists the full photo record.
func (r *PhotoRepo) Update(ctx context.Context, p *domain.Photo) (*domain.Photo, error) {
	m := photoFromDomain(p)
	m.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&PhotoModel{ID: m.ID}).Select("*").Omit("id", "created_at").Updates(m)
	if res.Error != nil {
		return nil, mapDBError(res.Error, "Photo", p.ID)
	}
	if res.RowsAffected == 0 {
		return nil, mapDBError(gorm.ErrRecordNotFound, "Photo", p.ID)
	}
	return r.GetByID(ctx, p.ID)
}

// Delete removes a photo row.
func (r *PhotoRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&PhotoModel{}, "id = ?", id)
	if res.Error != nil {
		return mapDBError(res.Error, "Photo", id)
	}
	if res.RowsAffected == 0 {
		return mapDBError(gorm.ErrRecordNotFound, "Photo", id)
	}
	return nil
}

// DeleteStalePending removes photos whose upload was never confirmed.
func (r *PhotoRepo) DeleteStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("upload_status = ? AND created_at < ?", domain.UploadStatusPending, cutoff).
		Delete(&PhotoModel{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
