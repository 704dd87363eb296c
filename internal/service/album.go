package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"proofdeck/internal/apperror"
	"proofdeck/internal/domain"
)

// CreateAlbumInput carries the validated fields for album creation.
type CreateAlbumInput struct {
	Title          string
	Description    string
	EventStartDate *time.Time
	EventEndDate   *time.Time
}

// UpdateAlbumInput carries partial updates; nil fields are left unchanged.
type UpdateAlbumInput struct {
	Title          *string
	Description    *string
	EventStartDate *time.Time
	EventEndDate   *time.Time
}

// AlbumService provides album management operations.
type AlbumService struct {
	repo     domain.AlbumRepository
	shareTTL time.Duration
	logger   *slog.Logger
}

// NewAlbumService creates a new AlbumService. shareTTL bounds the lifetime of
// issued share links.
func NewAlbumService(repo domain.AlbumRepository, shareTTL time.Duration, logger *slog.Logger) *AlbumService {
	if shareTTL <= 0 {
		shareTTL = 14 * 24 * time.Hour
	}
	return &AlbumService{repo: repo, shareTTL: shareTTL, logger: logger}
}

// Create persists a new draft album for the owner.
func (s *AlbumService) Create(ctx context.Context, owner string, in CreateAlbumInput) (*domain.Album, error) {
	if err := checkEventDates(in.EventStartDate, in.EventEndDate); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	album := &domain.Album{
		ID:             uuid.NewString(),
		Title:          in.Title,
		Description:    in.Description,
		Status:         domain.AlbumStatusDraft,
		EventStartDate: in.EventStartDate,
		EventEndDate:   in.EventEndDate,
		CreatedBy:      owner,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return s.repo.Create(ctx, album)
}

// GetOwned returns the album if it exists and belongs to the owner.
func (s *AlbumService) GetOwned(ctx context.Context, owner, id string) (*domain.Album, error) {
	album, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if album.CreatedBy != owner {
		return nil, apperror.NewAuthorization("")
	}
	return album, nil
}

// List returns one page of the owner's albums plus the total count.
func (s *AlbumService) List(ctx context.Context, owner string, page domain.Page) ([]domain.Album, int64, error) {
	return s.repo.List(ctx, owner, page.Normalized())
}

// Update applies partial changes to an owned album.
func (s *AlbumService) Update(ctx context.Context, owner, id string, in UpdateAlbumInput) (*domain.Album, error) {
	album, err := s.GetOwned(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		album.Title = *in.Title
	}
	if in.Description != nil {
		album.Description = *in.Description
	}
	if in.EventStartDate != nil {
		album.EventStartDate = in.EventStartDate
	}
	if in.EventEndDate != nil {
		album.EventEndDate = in.EventEndDate
	}
	if err := checkEventDates(album.EventStartDate, album.EventEndDate); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, album)
}

// Publish moves a draft album to published. Publishing is idempotent for
// already-published albums; archived albums cannot be republished.
func (s *AlbumService) Publish(ctx context.Context, owner, id string) (*domain.Album, error) {
	album, err := s.GetOwned(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	switch album.Status {
	case domain.AlbumStatusPublished:
		return album, nil
	case domain.AlbumStatusArchived:
		return nil, apperror.NewConflict("archived albums cannot be published")
	}
	album.Status = domain.AlbumStatusPublished
	return s.repo.Update(ctx, album)
}

// Archive retires an album; its share link is revoked at the same time.
func (s *AlbumService) Archive(ctx context.Context, owner, id string) (*domain.Album, error) {
	album, err := s.GetOwned(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if album.Status == domain.AlbumStatusArchived {
		return album, nil
	}
	album.Status = domain.AlbumStatusArchived
	album.ShareToken = nil
	album.ShareExpiresAt = nil
	return s.repo.Update(ctx, album)
}

// Delete removes an owned album and, through the schema, its photos.
func (s *AlbumService) Delete(ctx context.Context, owner, id string) error {
	if _, err := s.GetOwned(ctx, owner, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Share issues (or re-issues) the album's share link. Only published albums
// can be shared.
func (s *AlbumService) Share(ctx context.Context, owner, id string) (*domain.Album, error) {
	album, err := s.GetOwned(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if album.Status != domain.AlbumStatusPublished {
		return nil, apperror.NewConflict("only published albums can be shared")
	}
	token := uuid.NewString()
	expires := time.Now().UTC().Add(s.shareTTL)
	album.ShareToken = &token
	album.ShareExpiresAt = &expires
	s.logger.Info("share link issued", "album_id", album.ID, "expires_at", expires)
	return s.repo.Update(ctx, album)
}

// Unshare revokes the album's share link if present.
func (s *AlbumService) Unshare(ctx context.Context, owner, id string) (*domain.Album, error) {
	album, err := s.GetOwned(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if album.ShareToken == nil {
		return album, nil
	}
	album.ShareToken = nil
	album.ShareExpiresAt = nil
	return s.repo.Update(ctx, album)
}

// ResolveShare returns the album behind a share token. Expired or unknown
// tokens both resolve to not-found so a caller cannot probe which albums
// exist.
func (s *AlbumService) ResolveShare(ctx context.Context, token string) (*domain.Album, error) {
	album, err := s.repo.GetByShareToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !album.ShareActive(time.Now().UTC()) || album.Status != domain.AlbumStatusPublished {
		return nil, apperror.NewNotFound("Album", "")
	}
	return album, nil
}

// checkEventDates enforces date-range ordering as a field-level validation
// error rather than a schema failure, since it spans two fields.
func checkEventDates(start, end *time.Time) error {
	if start == nil || end == nil || !end.Before(*start) {
		return nil
	}
	fields := apperror.NewFieldErrors()
	fields.Add("event_end_date", "must not be before event_start_date")
	return apperror.NewValidation("Validation failed", fields)
}
