package devserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrBlobNotFound is returned by BlobStore.Get for unknown keys.
var ErrBlobNotFound = errors.New("blob not found")

// Blob is a stored object.
type Blob struct {
	Data        []byte
	ContentType string
}

// BlobStore holds image bytes keyed by hosting id.
type BlobStore interface {
	Put(ctx context.Context, key string, b Blob) error
	Get(ctx context.Context, key string) (Blob, error)
	Delete(ctx context.Context, key string) error
}

// MemoryBlobs is a BlobStore backed by a map.
type MemoryBlobs struct {
	mu    sync.RWMutex
	blobs map[string]Blob
}

func NewMemoryBlobs() *MemoryBlobs {
	return &MemoryBlobs{blobs: make(map[string]Blob)}
}

func (m *MemoryBlobs) Put(_ context.Context, key string, b Blob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = Blob{Data: bytes.Clone(b.Data), ContentType: b.ContentType}
	return nil
}

func (m *MemoryBlobs) Get(_ context.Context, key string) (Blob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blobs[key]
	if !ok {
		return Blob{}, fmt.Errorf("get %s: %w", key, ErrBlobNotFound)
	}
	return Blob{Data: bytes.Clone(b.Data), ContentType: b.ContentType}, nil
}

func (m *MemoryBlobs) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

// Len returns the number of stored blobs.
func (m *MemoryBlobs) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

// S3Options configures an S3 compatible bucket.
type S3Options struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

// S3Blobs is a BlobStore backed by an S3 compatible bucket.
type S3Blobs struct {
	client *s3.Client
	bucket string
}

// NewS3Blobs creates a path-style S3 client. Static credentials are used when
// both keys are set; otherwise the default AWS credential chain applies.
func NewS3Blobs(ctx context.Context, opts S3Options) (*S3Blobs, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	region := opts.Region
	if region == "" {
		region = "auto"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = true
	})

	return &S3Blobs{client: client, bucket: opts.Bucket}, nil
}

func (s *S3Blobs) Put(ctx context.Context, key string, b Blob) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(b.Data),
		ContentType: aws.String(b.ContentType),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

func (s *S3Blobs) Get(ctx context.Context, key string) (Blob, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return Blob{}, fmt.Errorf("get object %s: %w", key, ErrBlobNotFound)
		}
		return Blob{}, fmt.Errorf("get object %s: %w", key, err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return Blob{}, fmt.Errorf("read object %s: %w", key, err)
	}
	return Blob{Data: data, ContentType: aws.ToString(out.ContentType)}, nil
}

func (s *S3Blobs) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}
