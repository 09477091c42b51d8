package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
)

// MinioOptions holds connection parameters for a MinIO bucket.
type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
}

// Minio stores objects in a MinIO (or any S3-compatible) bucket.
type Minio struct {
	client *minio.Client
	bucket string
}

// NewMinio connects to the endpoint and makes sure the bucket exists.
func NewMinio(ctx context.Context, opts MinioOptions) (*Minio, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", opts.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{Region: opts.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", opts.Bucket, err)
		}
		log.Info().Str("bucket", opts.Bucket).Msg("created upload bucket")
	}
	return &Minio{client: client, bucket: opts.Bucket}, nil
}

// Put uploads r under key.
func (m *Minio) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if !ValidKey(key) {
		return ErrInvalidKey
	}
	info, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	log.Debug().Str("key", key).Int64("size", info.Size).Str("etag", info.ETag).Msg("stored upload in bucket")
	return nil
}

// Open fetches the object at key. GetObject is lazy, so the object is
// stat'ed up front to surface a missing key as ErrObjectNotFound.
func (m *Minio) Open(ctx context.Context, key string) (io.ReadCloser, Info, error) {
	if !ValidKey(key) {
		return nil, Info{}, ErrInvalidKey
	}
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, Info{}, mapMinioErr(err)
	}
	st, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, Info{}, mapMinioErr(err)
	}
	return obj, Info{Size: st.Size, ContentType: st.ContentType}, nil
}

func mapMinioErr(err error) error {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
		return ErrObjectNotFound
	}
	return fmt.Errorf("get object: %w", err)
}
