package source

import (
	"context"

	"github.com/input-output-hk/s3-checksum/errors"
	"github.com/input-output-hk/s3-checksum/s3types"
)

// Listing enumerates a bucket page by page. At most one page is held.
type Listing struct {
	store  s3types.ObjectStore
	bucket string
	prefix string

	page    []s3types.Object
	idx     int
	token   string
	started bool
}

// NewListing creates a source over every key in bucket under prefix.
func NewListing(store s3types.ObjectStore, bucket, prefix string) *Listing {
	return &Listing{store: store, bucket: bucket, prefix: prefix}
}

// Next implements Source.
func (l *Listing) Next(ctx context.Context) (s3types.WorkItem, bool, error) {
	for {
		for l.idx < len(l.page) {
			obj := l.page[l.idx]
			l.idx++
			if obj.Key == "" {
				continue
			}
			return s3types.WorkItem{Key: obj.Key}, true, nil
		}

		if l.started && l.token == "" {
			return s3types.WorkItem{}, false, nil
		}

		page, err := l.store.ListPage(ctx, l.bucket, l.prefix, l.token)
		if err != nil {
			var e *errors.Error
			if errors.As(err, &e) {
				return s3types.WorkItem{}, false, err
			}
			return s3types.WorkItem{}, false, errors.NewError("list", err).WithBucket(l.bucket)
		}

		l.started = true
		l.page = page.Objects
		l.idx = 0
		l.token = page.NextToken
	}
}
