package store

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/input-output-hk/s3-checksum/errors"
	"github.com/input-output-hk/s3-checksum/s3types"
)

const minioPageSize = 1000

// minioObject is the part of *minio.Object the store reads.
type minioObject interface {
	io.ReadCloser
	Stat() (minio.ObjectInfo, error)
}

// minioAPI is the part of the minio client the store uses.
type minioAPI interface {
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	Open(ctx context.Context, bucket, key string) (minioObject, error)
}

type minioClient struct {
	*minio.Client
}

func (c minioClient) Open(ctx context.Context, bucket, key string) (minioObject, error) {
	return c.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
}

// MinioConfig configures a MinioStore.
type MinioConfig struct {
	// Endpoint is a URL such as http://localhost:9000
	Endpoint string
	Region   string

	// PathStyle forces path-style bucket addressing
	PathStyle bool
}

// MinioStore reads from an S3-compatible service through minio-go.
type MinioStore struct {
	client   minioAPI
	pageSize int
}

// NewMinio connects to cfg.Endpoint. Credentials come from the standard AWS
// and MinIO environment variables, then the shared AWS credentials file.
func NewMinio(cfg MinioConfig) (*MinioStore, error) {
	u, err := url.Parse(cfg.Endpoint)
	if err != nil || u.Host == "" {
		return nil, errors.NewError("minio", errors.ErrInvalidInput).WithMessage("endpoint " + cfg.Endpoint)
	}

	lookup := minio.BucketLookupAuto
	if cfg.PathStyle {
		lookup = minio.BucketLookupPath
	}

	client, err := minio.New(u.Host, &minio.Options{
		Creds: credentials.NewChainCredentials([]credentials.Provider{
			&credentials.EnvAWS{},
			&credentials.EnvMinio{},
			&credentials.FileAWSCredentials{},
		}),
		Secure:       u.Scheme == "https",
		Region:       cfg.Region,
		BucketLookup: lookup,
	})
	if err != nil {
		return nil, errors.NewError("minio", err).WithMessage("create client")
	}

	return &MinioStore{client: minioClient{client}, pageSize: minioPageSize}, nil
}

// ListPage implements s3types.ObjectStore. The token is the last key of the
// previous page.
func (s *MinioStore) ListPage(ctx context.Context, bucket, prefix, token string) (*s3types.ListPage, error) {
	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := s.client.ListObjects(listCtx, bucket, minio.ListObjectsOptions{
		Prefix:     prefix,
		Recursive:  true,
		StartAfter: token,
		MaxKeys:    s.pageSize,
	})

	page := &s3types.ListPage{Objects: make([]s3types.Object, 0, s.pageSize)}
	for info := range ch {
		if info.Err != nil {
			cancel()
			drain(ch)
			return nil, translateError("list", bucket, prefix, info.Err)
		}
		page.Objects = append(page.Objects, s3types.Object{
			Key:          info.Key,
			Size:         info.Size,
			LastModified: info.LastModified,
			ETag:         info.ETag,
		})
		if len(page.Objects) == s.pageSize {
			page.NextToken = info.Key
			cancel()
			drain(ch)
			break
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return page, nil
}

// GetObject implements s3types.ObjectStore.
func (s *MinioStore) GetObject(ctx context.Context, bucket, key string) (*s3types.ObjectBody, error) {
	obj, err := s.client.Open(ctx, bucket, key)
	if err != nil {
		return nil, translateError("fetch", bucket, key, err)
	}

	// minio defers the request until the first Stat or Read.
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, translateError("fetch", bucket, key, err)
	}

	return &s3types.ObjectBody{
		Body:          obj,
		ContentLength: info.Size,
		LastModified:  lastModifiedOrNil(info.LastModified),
		ContentType:   info.ContentType,
	}, nil
}

func drain(ch <-chan minio.ObjectInfo) {
	for range ch { //nolint:revive // drain until the lister goroutine exits
	}
}

func translateError(op, bucket, key string, err error) error {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NotFound":
		return errors.NewObjectError(op, bucket, key, errors.ErrObjectNotFound)
	case "NoSuchBucket":
		return errors.NewObjectError(op, bucket, key, errors.ErrBucketNotFound)
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return errors.NewObjectError(op, bucket, key,
			fmt.Errorf("%w: %s", errors.ErrAccessDenied, resp.Message))
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.NewObjectError(op, bucket, key, fmt.Errorf("%w: %w", errors.ErrTimeout, err))
	}
	return errors.NewObjectError(op, bucket, key, err)
}

func lastModifiedOrNil(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

var _ s3types.ObjectStore = (*MinioStore)(nil)
