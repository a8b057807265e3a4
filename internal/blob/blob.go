// Package blob stores uploaded images in an S3-compatible bucket.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lostfound/found-api/internal/config"
)

const randomPrefixLength = 7

var ErrEmptyFilename = errors.New("filename is required")

// Object describes a stored blob.
type Object struct {
	URL         string `json:"url"`
	Pathname    string `json:"pathname"`
	ContentType string `json:"contentType"`
}

// Putter is the subset of the S3 client used for uploads.
type Putter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store uploads objects with public read URLs.
type Store struct {
	client  Putter
	bucket  string
	baseURL string
	logger  *logrus.Logger
}

// NewStore creates a blob store. baseURL is the public prefix objects are
// served from, without trailing slash.
func NewStore(client Putter, bucket, baseURL string, logger *logrus.Logger) *Store {
	return &Store{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// NewS3Client builds an S3 client. A custom endpoint (MinIO, LocalStack)
// switches to static credentials when an access key is configured.
func NewS3Client(ctx context.Context, cfg *config.S3Config, logger *logrus.Logger) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	logger.WithFields(logrus.Fields{
		"bucket":   cfg.Bucket,
		"region":   cfg.Region,
		"endpoint": cfg.Endpoint,
	}).Info("S3 client initialized")

	return client, nil
}

// PublicBaseURL derives the URL prefix objects are readable at.
func PublicBaseURL(cfg *config.S3Config) string {
	if cfg.PublicBaseURL != "" {
		return cfg.PublicBaseURL
	}
	if cfg.Endpoint != "" {
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}

// Put stores body under "<random>-<filename>" and returns its public URL.
func (s *Store) Put(ctx context.Context, filename, contentType string, body io.Reader) (*Object, error) {
	name := SanitizeFilename(filename)
	if name == "" {
		return nil, ErrEmptyFilename
	}
	if contentType == "" {
		contentType = DetectContentType(name)
	}

	pathname := UniquePathname(name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(pathname),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.logger.WithError(err).WithField("pathname", pathname).Error("Failed to upload object")
		return nil, fmt.Errorf("put object failed: %w", err)
	}

	return &Object{
		URL:         s.baseURL + "/" + pathname,
		Pathname:    pathname,
		ContentType: contentType,
	}, nil
}

// UniquePathname prefixes name with a short random id.
func UniquePathname(name string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return id[:randomPrefixLength] + "-" + name
}

// SanitizeFilename strips directories and whitespace from a client filename.
func SanitizeFilename(filename string) string {
	name := strings.TrimSpace(strings.ReplaceAll(filename, "\\", "/"))
	if name == "" {
		return ""
	}
	name = path.Base(name)
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return strings.ReplaceAll(name, " ", "_")
}

func DetectContentType(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
