// Package worker fetches objects and stream-hashes their bodies.
package worker

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"

	"github.com/input-output-hk/s3-checksum/errors"
	"github.com/input-output-hk/s3-checksum/internal/distributor"
	"github.com/input-output-hk/s3-checksum/internal/hasher"
	"github.com/input-output-hk/s3-checksum/internal/pool"
	"github.com/input-output-hk/s3-checksum/s3types"
)

// Pool holds what every worker shares. All fields are read-only once
// workers start.
type Pool struct {
	Store     s3types.ObjectStore
	Bucket    string
	Algorithm s3types.Algorithm

	// Workers is the number of goroutines Run starts. Values below 1 mean 1.
	Workers int

	Progress s3types.ProgressTracker
	Chunks   *pool.ChunkPool
	Logger   *slog.Logger
}

// Run starts Workers goroutines that drain dist, and closes results once
// every one of them has returned. It returns the first worker error.
func (p *Pool) Run(ctx context.Context, dist *distributor.Distributor, results chan<- s3types.ResultRecord) error {
	defer close(results)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < max(p.Workers, 1); i++ {
		g.Go(func() error {
			return p.Work(gctx, i, dist, results)
		})
	}
	return g.Wait()
}

// Work runs one worker: it requests items from dist until none remain and
// sends one record per item to results. It returns only ctx's error.
func (p *Pool) Work(ctx context.Context, id int, dist *distributor.Distributor, results chan<- s3types.ResultRecord) error {
	logger := p.logger().With("worker", id)

	for {
		item, ok, err := dist.Request(ctx)
		if err != nil {
			return err
		}
		if !ok {
			logger.Debug("no more work")
			return nil
		}

		record := p.Process(ctx, item)
		if record.Err != nil {
			logger.Debug("item failed", "key", item.Key, "error", record.Err)
		}
		if p.Progress != nil {
			p.Progress.ItemDone(record.Failed())
		}

		select {
		case results <- record:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Process fetches and hashes one item. Failures are reported in the record.
func (p *Pool) Process(ctx context.Context, item s3types.WorkItem) s3types.ResultRecord {
	record := s3types.ResultRecord{Key: item.Key, ExpectedHash: item.ExpectedHash}

	body, err := p.Store.GetObject(ctx, p.Bucket, item.Key)
	if err != nil {
		record.Err = p.wrap(item.Key, err)
		return record
	}
	defer func() { _ = body.Body.Close() }()

	h, err := hasher.New(p.Algorithm)
	if err != nil {
		record.Err = err
		return record
	}

	contentType, err := p.stream(h, body.Body)
	if err != nil {
		record.Err = p.wrap(item.Key, err)
		return record
	}

	size := body.ContentLength
	if size < 0 {
		size = h.Written()
	} else if h.Written() != size {
		record.Err = errors.NewObjectError("fetch", p.Bucket, item.Key,
			fmt.Errorf("%w: read %d of %d bytes", errors.ErrTruncatedBody, h.Written(), size))
		return record
	}

	if contentType == "" {
		contentType = body.ContentType
	}

	record.Hash = h.Finish()
	record.Size = size
	record.LastModified = body.LastModified
	record.ContentType = contentType
	return record
}

// stream copies r into h through a pooled chunk and sniffs the content type
// of the first chunk.
func (p *Pool) stream(h *hasher.Hasher, r io.Reader) (string, error) {
	chunks := p.Chunks
	if chunks == nil {
		chunks = pool.Default()
	}
	bufPtr := chunks.Get()
	defer chunks.Put(bufPtr)
	buf := *bufPtr

	var contentType string
	first := true
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := h.Write(buf[:n]); werr != nil {
				return "", werr
			}
			if first {
				contentType = mimetype.Detect(buf[:n]).String()
				first = false
			}
			if p.Progress != nil {
				p.Progress.AddBytes(int64(n))
			}
		}
		if err == io.EOF {
			return contentType, nil
		}
		if err != nil {
			return "", err
		}
	}
}

func (p *Pool) wrap(key string, err error) error {
	var e *errors.Error
	if errors.As(err, &e) {
		return err
	}
	return errors.NewObjectError("fetch", p.Bucket, key, err)
}

func (p *Pool) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
