// Package pipeline wires a source, the distributor, a pool of workers and
// the aggregator into one run.
package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/input-output-hk/s3-checksum/internal/aggregator"
	"github.com/input-output-hk/s3-checksum/internal/distributor"
	"github.com/input-output-hk/s3-checksum/internal/pool"
	"github.com/input-output-hk/s3-checksum/internal/source"
	"github.com/input-output-hk/s3-checksum/internal/worker"
	"github.com/input-output-hk/s3-checksum/s3types"
)

// Config describes one run.
type Config struct {
	Source     source.Source
	Store      s3types.ObjectStore
	Bucket     string
	Algorithm  s3types.Algorithm
	Workers    int
	Progress   s3types.ProgressTracker
	Chunks     *pool.ChunkPool
	Aggregator *aggregator.Aggregator
	Logger     *slog.Logger
}

// Run executes the pipeline and blocks until every record has been
// aggregated. The first fatal error (source failure, cancellation, or an
// output manifest failure) is returned alongside whatever summary the
// aggregator produced.
func Run(ctx context.Context, cfg Config) (*s3types.Summary, error) {
	workers := max(cfg.Workers, 1)
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	g, gctx := errgroup.WithContext(ctx)
	dist := distributor.New(workers)
	results := make(chan s3types.ResultRecord, workers)

	g.Go(func() error {
		return dist.Run(gctx, cfg.Source)
	})

	wp := &worker.Pool{
		Store:     cfg.Store,
		Bucket:    cfg.Bucket,
		Algorithm: cfg.Algorithm,
		Workers:   workers,
		Progress:  cfg.Progress,
		Chunks:    cfg.Chunks,
		Logger:    logger,
	}
	g.Go(func() error {
		return wp.Run(gctx, dist, results)
	})

	logger.Debug("pipeline started", "bucket", cfg.Bucket, "workers", workers, "algorithm", cfg.Algorithm.String())

	summary, aggErr := cfg.Aggregator.Run(results)
	if err := g.Wait(); err != nil {
		return summary, err
	}
	return summary, aggErr
}
