// Package service implements the application's business operations on top of
// the domain repository ports.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"proofdeck/internal/config"
	"proofdeck/internal/domain"
)

// Compile-time check.
var _ domain.Presigner = (*S3Presigner)(nil)

// S3Presigner issues presigned URLs against an S3-compatible bucket. Uploads
// go straight from the browser to storage; the API never proxies image bytes.
type S3Presigner struct {
	presignClient *s3.PresignClient
	bucket        string
}

// NewS3Presigner creates a presigner for the configured bucket. Path-style
// addressing is used for compatibility with non-AWS S3 endpoints.
func NewS3Presigner(cfg config.StorageConfig) *S3Presigner {
	client := s3.New(s3.Options{
		Region: cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.KeyID, cfg.Secret, "",
		),
		BaseEndpoint: aws.String(fmt.Sprintf("https://%s", cfg.Endpoint)),
		UsePathStyle: true,
	})

	return &S3Presigner{
		presignClient: s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
	}
}

// PresignPutObject generates a presigned PUT URL for an upload. The content
// type is pinned into the signature so the client cannot upload something
// else under the issued URL.
func (p *S3Presigner) PresignPutObject(ctx context.Context, key, contentType string, expiry time.Duration) (string, error) {
	result, err := p.presignClient.PresignPutObject(ctx,
		&s3.PutObjectInput{
			Bucket:      aws.String(p.bucket),
			Key:         aws.String(key),
			ContentType: aws.String(contentType),
		},
		s3.WithPresignExpires(expiry),
	)
	if err != nil {
		return "", fmt.Errorf("presign PutObject for %q: %w", key, err)
	}
	return result.URL, nil
}

// PresignGetObject generates a presigned GET URL for a download.
func (p *S3Presigner) PresignGetObject(ctx context.Context, key string, expiry time.Duration) (string, error) {
	result, err := p.presignClient.PresignGetObject(ctx,
		&s3.GetObjectInput{
			Bucket: aws.String(p.bucket),
			Key:    aws.String(key),
		},
		s3.WithPresignExpires(expiry),
	)
	if err != nil {
		return "", fmt.Errorf("presign GetObject for %q: %w", key, err)
	}
	return result.URL, nil
}
