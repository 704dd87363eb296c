// Package domain defines the core types and repository ports for the
// photo-proofing service.
package domain

import "time"

// Album lifecycle states.
const (
	AlbumStatusDraft     = "draft"
	AlbumStatusPublished = "published"
	AlbumStatusArchived  = "archived"
)

// Album is a proofing gallery owned by a photographer. Clients access a
// published album through its share token until the token expires.
type Album struct {
	ID             string
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

// ShareActive reports whether the album currently has a non-expired share
// token.
func (a *Album) ShareActive(now time.Time) bool {
	if a.ShareToken == nil {
		return false
	}
	return a.ShareExpiresAt == nil || a.ShareExpiresAt.After(now)
}
