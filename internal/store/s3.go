package store

import (
	"context"

	"github.com/input-output-hk/s3-checksum/internal/operations/download"
	"github.com/input-output-hk/s3-checksum/internal/operations/list"
	"github.com/input-output-hk/s3-checksum/internal/s3api"
	"github.com/input-output-hk/s3-checksum/s3types"
)

// S3Store reads from S3 through the AWS SDK.
type S3Store struct {
	lister     *list.Lister
	downloader *download.Downloader
	pageSize   int32
}

// NewS3 wraps an SDK client.
func NewS3(client s3api.S3API) *S3Store {
	return &S3Store{
		lister:     list.New(client),
		downloader: download.New(client),
		pageSize:   list.MaxPageSize,
	}
}

// ListPage implements s3types.ObjectStore.
func (s *S3Store) ListPage(ctx context.Context, bucket, prefix, token string) (*s3types.ListPage, error) {
	return s.lister.Page(ctx, &list.Config{
		Bucket:            bucket,
		Prefix:            prefix,
		ContinuationToken: token,
		PageSize:          s.pageSize,
	})
}

// GetObject implements s3types.ObjectStore.
func (s *S3Store) GetObject(ctx context.Context, bucket, key string) (*s3types.ObjectBody, error) {
	return s.downloader.Open(ctx, bucket, key)
}

var _ s3types.ObjectStore = (*S3Store)(nil)
