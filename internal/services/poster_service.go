package services

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"movie-ratings/internal/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

// PresignExpiry is how long an upload URL stays valid.
const PresignExpiry = 15 * time.Minute

// PosterStorage keeps uploaded poster images in object storage.
type PosterStorage interface {
	// PresignUpload returns a PUT URL for the browser and the public URL the
	// object will be served from.
	PresignUpload(ctx context.Context, filename, contentType string) (uploadURL, publicURL string, err error)
	Delete(ctx context.Context, publicURL string) error
	// Owns reports whether publicURL points into the poster bucket.
	Owns(publicURL string) bool
}

type PosterUpload struct {
	UploadURL string `json:"upload_url"`
	PublicURL string `json:"public_url"`
	ExpiresIn int    `json:"expires_in" example:"900"`
}

type posterStorage struct {
	client  *minio.Client
	bucket  string
	baseURL string
	logger  *logrus.Logger
}

func NewPosterStorage(ctx context.Context, cfg config.MinIOConfig, logger *logrus.Logger) (PosterStorage, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"bucket":   cfg.BucketName,
		"useSSL":   cfg.UseSSL,
	}).Info("Poster storage initialized")

	s := &posterStorage{
		client:  client,
		bucket:  cfg.BucketName,
		baseURL: publicBase(cfg.PublicURL, cfg.BucketName),
		logger:  logger,
	}

	if err := s.ensureBucket(ctx, cfg.Region); err != nil {
		logger.WithError(err).Warn("Failed to configure poster bucket, continuing")
	}
	return s, nil
}

// publicBase is scheme://host/bucket of the public URL.
func publicBase(publicURL, bucket string) string {
	scheme := "http://"
	if strings.HasPrefix(publicURL, "https://") {
		scheme = "https://"
	}
	host := strings.TrimPrefix(strings.TrimPrefix(publicURL, "https://"), "http://")
	if idx := strings.Index(host, "/"); idx != -1 {
		host = host[:idx]
	}
	return scheme + host + "/" + bucket
}

func (s *posterStorage) ensureBucket(ctx context.Context, region string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if region == "" {
			region = "us-east-1"
		}
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		s.logger.WithField("bucket", s.bucket).Info("Bucket created")
	}

	policy := fmt.Sprintf(`{
		"Version": "2012-10-17",
		"Statement": [
			{
				"Effect": "Allow",
				"Principal": {"AWS": ["*"]},
				"Action": ["s3:GetObject"],
				"Resource": ["arn:aws:s3:::%s/*"]
			}
		]
	}`, s.bucket)
	if err := s.client.SetBucketPolicy(ctx, s.bucket, policy); err != nil {
		return fmt.Errorf("failed to set bucket policy: %w", err)
	}
	return nil
}

// objectName keeps the uploaded file's stem and extension and appends a short
// random suffix.
func objectName(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" {
		base = ""
	}
	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, stem)
	if stem == "" {
		stem = "poster"
	}
	return fmt.Sprintf("%s_%s%s", stem, uuid.New().String()[:8], ext)
}

func (s *posterStorage) PresignUpload(ctx context.Context, filename, contentType string) (string, string, error) {
	object := objectName(filename)

	presigned, err := s.client.PresignedPutObject(ctx, s.bucket, object, PresignExpiry)
	if err != nil {
		s.logger.WithError(err).Error("Failed to generate presigned URL")
		return "", "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"filename":     filename,
		"object":       object,
		"content_type": contentType,
	}).Info("Generated poster upload URL")

	return presigned.String(), s.baseURL + "/" + object, nil
}

func (s *posterStorage) Owns(publicURL string) bool {
	return strings.HasPrefix(publicURL, s.baseURL+"/")
}

func (s *posterStorage) Delete(ctx context.Context, publicURL string) error {
	if !s.Owns(publicURL) {
		return fmt.Errorf("poster %q is not stored in bucket %s", publicURL, s.bucket)
	}
	object, err := url.PathUnescape(strings.TrimPrefix(publicURL, s.baseURL+"/"))
	if err != nil {
		return fmt.Errorf("invalid poster url: %w", err)
	}

	if err := s.client.RemoveObject(ctx, s.bucket, object, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete poster: %w", err)
	}
	s.logger.WithField("object", object).Info("Poster deleted")
	return nil
}
