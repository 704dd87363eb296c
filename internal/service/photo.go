package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"proofdeck/internal/apperror"
	"proofdeck/internal/domain"
)

// UploadRequestInput carries the validated fields of an upload-URL request.
type UploadRequestInput struct {
	Filename    string
	ContentType string
	SizeBytes   int64
}

// UploadGrant is the result of a granted upload: the pending photo row and
// the presigned PUT URL the client must use before it expires.
type UploadGrant struct {
	Photo     *domain.Photo
	UploadURL string
	ExpiresAt time.Time
}

// PhotoService provides photo upload, delivery, and proof-review operations.
// All methods take an already-authorized album: callers resolve it through
// AlbumService.GetOwned or ResolveShare first.
type PhotoService struct {
	repo        domain.PhotoRepository
	presigner   domain.Presigner // nil when object storage is not configured
	uploadTTL   time.Duration
	downloadTTL time.Duration
	logger      *slog.Logger
}

// NewPhotoService creates a new PhotoService.
func NewPhotoService(repo domain.PhotoRepository, presigner domain.Presigner, uploadTTL, downloadTTL time.Duration, logger *slog.Logger) *PhotoService {
	return &PhotoService{
		repo:        repo,
		presigner:   presigner,
		uploadTTL:   uploadTTL,
		downloadTTL: downloadTTL,
		logger:      logger,
	}
}

// RequestUpload creates a pending photo row and issues a presigned PUT URL
// for it. Archived albums no longer accept uploads.
func (s *PhotoService) RequestUpload(ctx context.Context, album *domain.Album, in UploadRequestInput) (*UploadGrant, error) {
	if err := s.requireStorage(); err != nil {
		return nil, err
	}
	if album.Status == domain.AlbumStatusArchived {
		return nil, apperror.NewConflict("archived albums do not accept uploads")
	}

	now := time.Now().UTC()
	photo := &domain.Photo{
		ID:           uuid.NewString(),
		AlbumID:      album.ID,
		Filename:     in.Filename,
		ContentType:  in.ContentType,
		SizeBytes:    in.SizeBytes,
		UploadStatus: domain.UploadStatusPending,
		ProofStatus:  domain.ProofStatusUnreviewed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	photo.ObjectKey = objectKey(album.ID, photo.ID, in.Filename)

	created, err := s.repo.Create(ctx, photo)
	if err != nil {
		return nil, err
	}

	url, err := s.presigner.PresignPutObject(ctx, created.ObjectKey, created.ContentType, s.uploadTTL)
	if err != nil {
		return nil, err
	}
	return &UploadGrant{Photo: created, UploadURL: url, ExpiresAt: now.Add(s.uploadTTL)}, nil
}

// ConfirmUpload marks a pending photo as uploaded. Confirming twice is a
// no-op.
func (s *PhotoService) ConfirmUpload(ctx context.Context, album *domain.Album, photoID string, sizeBytes int64) (*domain.Photo, error) {
	photo, err := s.getInAlbum(ctx, album, photoID)
	if err != nil {
		return nil, err
	}
	if photo.UploadStatus == domain.UploadStatusUploaded {
		return photo, nil
	}
	photo.UploadStatus = domain.UploadStatusUploaded
	if sizeBytes > 0 {
		photo.SizeBytes = sizeBytes
	}
	return s.repo.Update(ctx, photo)
}

// List returns one page of the album's photos plus the total count.
func (s *PhotoService) List(ctx context.Context, album *domain.Album, page domain.Page) ([]domain.Photo, int64, error) {
	return s.repo.ListByAlbum(ctx, album.ID, page.Normalized())
}

// DownloadURL issues a presigned GET URL for a confirmed photo.
func (s *PhotoService) DownloadURL(ctx context.Context, album *domain.Album, photoID string) (string, time.Time, error) {
	if err := s.requireStorage(); err != nil {
		return "", time.Time{}, err
	}
	photo, err := s.getInAlbum(ctx, album, photoID)
	if err != nil {
		return "", time.Time{}, err
	}
	if photo.UploadStatus != domain.UploadStatusUploaded {
		return "", time.Time{}, apperror.NewConflict("photo upload has not been confirmed")
	}
	url, err := s.presigner.PresignGetObject(ctx, photo.ObjectKey, s.downloadTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	return url, time.Now().UTC().Add(s.downloadTTL), nil
}

// SetProof records the client's review decision for a confirmed photo.
func (s *PhotoService) SetProof(ctx context.Context, album *domain.Album, photoID, status, note string) (*domain.Photo, error) {
	if !domain.ValidProofStatus(status) {
		fields := apperror.NewFieldErrors()
		fields.Add("status", fmt.Sprintf("must be one of %s, %s, %s",
			domain.ProofStatusUnreviewed, domain.ProofStatusApproved, domain.ProofStatusRejected))
		return nil, apperror.NewValidation("Validation failed", fields)
	}
	photo, err := s.getInAlbum(ctx, album, photoID)
	if err != nil {
		return nil, err
	}
	if photo.UploadStatus != domain.UploadStatusUploaded {
		return nil, apperror.NewConflict("photo upload has not been confirmed")
	}
	photo.ProofStatus = status
	photo.ProofNote = note
	return s.repo.Update(ctx, photo)
}

// SetProofBatch applies one review decision to several photos. The photo list
// must be non-empty (enforced by the request schema); the first failure
// aborts the batch.
func (s *PhotoService) SetProofBatch(ctx context.Context, album *domain.Album, photoIDs []string, status, note string) ([]domain.Photo, error) {
	updated := make([]domain.Photo, 0, len(photoIDs))
	for _, id := range photoIDs {
		photo, err := s.SetProof(ctx, album, id, status, note)
		if err != nil {
			return nil, err
		}
		updated = append(updated, *photo)
	}
	return updated, nil
}

// Delete removes a photo row. The stored object is left for the storage
// lifecycle policy; the key becomes unreachable once the row is gone.
func (s *PhotoService) Delete(ctx context.Context, album *domain.Album, photoID string) error {
	photo, err := s.getInAlbum(ctx, album, photoID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, photo.ID)
}

// getInAlbum fetches a photo and hides photos of other albums behind
// not-found.
func (s *PhotoService) getInAlbum(ctx context.Context, album *domain.Album, photoID string) (*domain.Photo, error) {
	photo, err := s.repo.GetByID(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if photo.AlbumID != album.ID {
		return nil, apperror.NewNotFound("Photo", photoID)
	}
	return photo, nil
}

func (s *PhotoService) requireStorage() error {
	if s.presigner == nil {
		return apperror.New("object storage is not configured", http.StatusServiceUnavailable,
			apperror.WithName("StorageUnavailableError"))
	}
	return nil
}

// objectKey builds the storage key for a photo. The filename is reduced to
// its base name and whitespace is collapsed so keys stay URL-friendly.
func objectKey(albumID, photoID, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.Join(strings.Fields(base), "-")
	return fmt.Sprintf("albums/%s/%s-%s", albumID, photoID, base)
}
