package domain

import "time"

// Photo upload states. A photo row is created when the upload URL is issued
// and stays pending until the client confirms the object landed in storage.
const (
	UploadStatusPending  = "pending"
	UploadStatusUploaded = "uploaded"
)

// Proof review states set by the album's client.
const (
	ProofStatusUnreviewed = "unreviewed"
	ProofStatusApproved   = "approved"
	ProofStatusRejected   = "rejected"
)

// Photo is a single proof image inside an album. ObjectKey addresses the
// original in object storage; the service never stores image bytes itself.
type Photo struct {
	ID           string
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

// ValidProofStatus reports whether s is a recognized review state.
func ValidProofStatus(s string) bool {
	return s == ProofStatusUnreviewed || s == ProofStatusApproved || s == ProofStatusRejected
}
