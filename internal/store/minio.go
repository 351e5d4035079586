package store

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	invoicedoc "github.com/alnah/go-invoicedoc"
)

// DocxContentType is the media type of stored documents.
const DocxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// MinioConfig holds the object storage connection settings.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Prefix    string // prepended to every object name
	UseSSL    bool
}

// MinioStore keeps documents as objects in an S3-compatible bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
	prefix string
	cfg    MinioConfig
}

// NewMinioStore creates a client for cfg. It does not contact the server;
// call EnsureBucket before first use.
func NewMinioStore(cfg MinioConfig) (*MinioStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio store: bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &MinioStore{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix, cfg: cfg}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Save uploads data, replacing any object of the same name.
func (s *MinioStore) Save(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.prefix+name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: DocxContentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}
	return nil
}

// Open downloads the object called name.
func (s *MinioStore) Open(ctx context.Context, name string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.prefix+name, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.openErr(name, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.openErr(name, err)
	}
	return data, nil
}

func (s *MinioStore) openErr(name string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%w: %s", invoicedoc.ErrArtifactNotFound, name)
	}
	return fmt.Errorf("failed to download %s: %w", name, err)
}

// Location returns the object URL of name.
func (s *MinioStore) Location(name string) string {
	protocol := "http"
	if s.cfg.UseSSL {
		protocol = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s%s", protocol, s.cfg.Endpoint, s.bucket, s.prefix, name)
}

// Compile-time interface check.
var _ invoicedoc.Store = (*MinioStore)(nil)
