package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/taskhive/backend/config"
)

// FileStorage stores and retrieves uploaded files (user and project avatars).
type FileStorage interface {
	Save(ctx context.Context, filename string, content io.Reader, contentType string) error
	Open(ctx context.Context, filename string) (io.ReadCloser, error)
}

// NewFileStorage picks the backend from STORAGE_BACKEND: "s3" or "local"
// (default, writing under STORAGE_DIR).
func NewFileStorage(cfg map[string]string) (FileStorage, error) {
	switch config.GetString(cfg, "STORAGE_BACKEND", "local") {
	case "s3":
		return NewS3Storage(cfg)
	default:
		return NewLocalStorage(config.GetString(cfg, "STORAGE_DIR", "storage/images")), nil
	}
}

// LocalStorage keeps files on the local filesystem.
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) *LocalStorage {
	return &LocalStorage{dir: dir}
}

func (s *LocalStorage) Save(ctx context.Context, filename string, content io.Reader, contentType string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}
	// filepath.Base strips any path components smuggled into the filename
	f, err := os.Create(filepath.Join(s.dir, filepath.Base(filename)))
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (s *LocalStorage) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.dir, filepath.Base(filename)))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// S3Storage keeps files in an S3 bucket.
type S3Storage struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Storage reads S3_BUCKET (required), S3_PREFIX, AWS_REGION and
// optionally AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY (otherwise the default
// credential chain applies).
func NewS3Storage(cfg map[string]string) (*S3Storage, error) {
	bucket := config.GetString(cfg, "S3_BUCKET", "")
	if bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET environment variable is required for the s3 storage backend")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.GetString(cfg, "AWS_REGION", "us-east-1")),
	}
	accessKey := config.GetString(cfg, "AWS_ACCESS_KEY_ID", "")
	secretKey := config.GetString(cfg, "AWS_SECRET_ACCESS_KEY", "")
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Storage{
		client: s3.NewFromConfig(awsCfg),
		bucket: bucket,
		prefix: config.GetString(cfg, "S3_PREFIX", "images/"),
	}, nil
}

func (s *S3Storage) Save(ctx context.Context, filename string, content io.Reader, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.prefix + filepath.Base(filename)),
		Body:        content,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

func (s *S3Storage) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + filepath.Base(filename)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from S3: %w", err)
	}
	return out.Body, nil
}
