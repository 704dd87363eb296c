package repository

import (
	"time"

	"proofdeck/internal/domain"
)

// AlbumModel is the ORM mapping for the albums table.
type AlbumModel struct {
	ID             string `gorm:"primaryKey"`
	Title          string
	Description    string
	Status         string
	EventStartDate *time.Time
	EventEndDate   *time.Time
	ShareToken     *string
	ShareExpiresAt *time.Time
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName pins the table name regardless of ORM pluralization rules.
func (AlbumModel) TableName() string { return "albums" }

// PhotoModel is the ORM mapping for the photos table.
type PhotoModel struct {
	ID           string `gorm:"primaryKey"`
	AlbumID      string
	Filename     string
	ObjectKey    string
	ContentType  string
	SizeBytes    int64
	UploadStatus string
	ProofStatus  string
	ProofNote    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName pins the table name regardless of ORM pluralization rules.
func (PhotoModel) TableName() string { return "photos" }

func albumToDomain(m *AlbumModel) *domain.Album {
	return &domain.Album{
		ID:             m.ID,
		Title:          m.Title,
		Description:    m.Description,
		Status:         m.Status,
		EventStartDate: m.EventStartDate,
		EventEndDate:   m.EventEndDate,
		ShareToken:     m.ShareToken,
		ShareExpiresAt: m.ShareExpiresAt,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func albumFromDomain(a *domain.Album) *AlbumModel {
	return &AlbumModel{
		ID:             a.ID,
		Title:          a.Title,
		Description:    a.Description,
		Status:         a.Status,
		EventStartDate: a.EventStartDate,
		EventEndDate:   a.EventEndDate,
		ShareToken:     a.ShareToken,
		ShareExpiresAt: a.ShareExpiresAt,
		CreatedBy:      a.CreatedBy,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func photoToDomain(m *PhotoModel) *domain.Photo {
	return &domain.Photo{
		ID:           m.ID,
		AlbumID:      m.AlbumID,
		Filename:     m.Filename,
		ObjectKey:    m.ObjectKey,
		ContentType:  m.ContentType,
		SizeBytes:    m.SizeBytes,
		UploadStatus: m.UploadStatus,
		ProofStatus:  m.ProofStatus,
		ProofNote:    m.ProofNote,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func photoFromDomain(p *domain.Photo) *PhotoModel {
	return &PhotoModel{
		ID:           p.ID,
		AlbumID:      p.AlbumID,
		Filename:     p.Filename,
		ObjectKey:    p.ObjectKey,
		ContentType:  p.ContentType,
		SizeBytes:    p.SizeBytes,
		UploadStatus: p.UploadStatus,
		ProofStatus:  p.ProofStatus,
		ProofNote:    p.ProofNote,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
