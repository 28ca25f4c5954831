package s3checksum

import (
	"context"
	"io"
	"time"

	"github.com/input-output-hk/s3-checksum/errors"
	"github.com/input-output-hk/s3-checksum/internal/aggregator"
	"github.com/input-output-hk/s3-checksum/internal/manifest"
	"github.com/input-output-hk/s3-checksum/internal/metrics"
	"github.com/input-output-hk/s3-checksum/internal/pipeline"
	"github.com/input-output-hk/s3-checksum/internal/pool"
	"github.com/input-output-hk/s3-checksum/internal/source"
	"github.com/input-output-hk/s3-checksum/internal/validation"
	"github.com/input-output-hk/s3-checksum/s3types"
)

// Run crawls bucket and returns the run summary.
//
// Without WithVerifyManifest the bucket is listed and a manifest is written
// to "<bucket>.<algorithm>" (or the WithOutputPath override). With it, the
// manifest is replayed and every object is verified against its digest.
//
// Per-object failures and mismatches are recorded in Summary.Errors and do
// not fail the run. A non-nil error means the run aborted: invalid input,
// an unreadable or malformed verification manifest, a listing failure, an
// output manifest failure, or cancellation. The summary may still be
// non-nil in that case and reflects the records merged before the abort.
func (c *Client) Run(ctx context.Context, bucket string, opts ...s3types.RunOption) (*s3types.Summary, error) {
	cfg := s3types.RunConfig{
		Algorithm: s3types.DefaultAlgorithm,
		Workers:   c.config.Concurrency,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, err
	}
	if err := validation.ValidatePrefix(cfg.Prefix); err != nil {
		return nil, err
	}
	if !cfg.Algorithm.Valid() {
		return nil, errors.NewError("run", errors.ErrUnsupportedAlgorithm).WithMessage(cfg.Algorithm.String())
	}
	if cfg.Output == nil {
		cfg.Output = io.Discard
	}

	logger := c.logger.With("bucket", bucket, "algorithm", cfg.Algorithm.String())

	mode := s3types.ModeWrite
	var (
		src    source.Source
		output *manifest.Writer
	)
	if cfg.VerifyManifest != "" {
		mode = s3types.ModeVerify
		replay, err := source.OpenManifest(c.fs, c.resolve(cfg.VerifyManifest), cfg.Algorithm, cfg.Prefix, logger)
		if err != nil {
			return nil, err
		}
		defer replay.Close()
		src = replay
	} else {
		outputPath := cfg.OutputPath
		if outputPath == "" {
			outputPath = manifest.FileName(bucket, cfg.Algorithm)
		}
		w, err := manifest.Create(c.fs, c.resolve(outputPath))
		if err != nil {
			return nil, err
		}
		output = w
		src = source.NewListing(c.store, bucket, cfg.Prefix)
	}

	var recorder *metrics.Recorder
	if cfg.MetricsFile != "" {
		recorder = metrics.New(bucket, cfg.Algorithm)
	}

	agg := aggregator.New(aggregator.Config{
		Mode:      mode,
		Algorithm: cfg.Algorithm,
		Manifest:  output,
		Out:       cfg.Output,
		Metrics:   recorder,
		Logger:    logger,
	})

	logger.Info("run started", "mode", string(mode), "prefix", cfg.Prefix, "workers", cfg.Workers)
	started := time.Now()

	summary, err := pipeline.Run(ctx, pipeline.Config{
		Source:     src,
		Store:      c.store,
		Bucket:     bucket,
		Algorithm:  cfg.Algorithm,
		Workers:    cfg.Workers,
		Progress:   cfg.Progress,
		Chunks:     pool.Default(),
		Aggregator: agg,
		Logger:     logger,
	})

	if cfg.Progress != nil {
		cfg.Progress.Complete()
	}

	if mErr := recorder.WriteTextfile(cfg.MetricsFile); mErr != nil {
		logger.Warn("metrics textfile not written", "path", cfg.MetricsFile, "error", mErr)
	}

	if err != nil {
		logger.Error("run aborted", "error", err, "elapsed", time.Since(started))
		return summary, err
	}

	logger.Info("run finished",
		"objects", summary.TotalCount,
		"bytes", summary.TotalBytes,
		"errors", len(summary.Errors),
		"elapsed", time.Since(started))
	return summary, nil
}
