package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShareActive(t *testing.T) {
	now := time.Now().UTC()
	token := "tok"
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name  string
		album Album
		want  bool
	}{
		{"no token", Album{}, false},
		{"token without expiry", Album{ShareToken: &token}, true},
		{"token with future expiry", Album{ShareToken: &token, ShareExpiresAt: &future}, true},
		{"token expired", Album{ShareToken: &token, ShareExpiresAt: &past}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.album.ShareActive(now))
		})
	}
}

func TestValidProofStatus(t *testing.T) {
	assert.True(t, ValidProofStatus(ProofStatusUnreviewed))
	assert.True(t, ValidProofStatus(ProofStatusApproved))
	assert.True(t, ValidProofStatus(ProofStatusRejected))
	assert.False(t, ValidProofStatus("maybe"))
	assert.False(t, ValidProofStatus(""))
}
