// Package commands implements the s3checksum CLI commands.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	s3checksum "github.com/input-output-hk/s3-checksum"
	"github.com/input-output-hk/s3-checksum/errors"
	"github.com/input-output-hk/s3-checksum/internal/config"
	"github.com/input-output-hk/s3-checksum/internal/progress"
	"github.com/input-output-hk/s3-checksum/internal/report"
	"github.com/input-output-hk/s3-checksum/s3types"
)

// clientFactory builds the client for a resolved configuration.
type clientFactory func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*s3checksum.Client, error)

// RootCommand holds the state of one CLI invocation.
type RootCommand struct {
	configPath string
	newClient  clientFactory
}

// NewRootCommand creates the s3checksum command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(defaultClient)
}

func newRootCommand(factory clientFactory) *cobra.Command {
	rc := &RootCommand{newClient: factory}

	cmd := &cobra.Command{
		Use:   "s3checksum",
		Short: "Compute or verify checksums of every object in an S3 bucket",
		Long: `s3checksum streams every object in a bucket through a hash and writes a
manifest of "<digest> <key>" lines to <bucket>.<algorithm>.

With --check it instead replays an existing manifest and verifies each
object against its recorded digest. The exit status is non-zero when any
object could not be fetched or did not match.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          rc.run,
	}

	flags := cmd.Flags()
	flags.StringP("bucket", "b", "", "bucket name (required)")
	flags.StringP("path", "p", "", "only process keys under this prefix")
	flags.StringP("check", "c", "", "verify objects against this manifest")
	flags.StringP("algorithm", "a", config.DefaultAlgorithm, "hash algorithm: sha1, sha256, sha512")
	flags.IntP("threads", "t", config.DefaultThreads, "number of concurrent workers")
	flags.StringP("url", "u", "", "custom S3-compatible endpoint URL")
	flags.String("region", "", "region (defaults to the SDK configuration)")
	flags.Bool("path-style", false, "force path-style addressing")
	flags.String("backend", config.DefaultBackend, "object store client: s3 or minio")
	flags.StringP("output", "o", "", "output manifest path (default <bucket>.<algorithm>)")
	flags.String("metrics-file", "", "write Prometheus metrics to this file when the run ends")
	flags.Bool("no-progress", false, "disable the progress bar")
	flags.Bool("no-color", false, "disable colored output")
	flags.String("log-level", config.DefaultLogLevel, "log level: debug, info, warn, error")
	flags.String("log-format", config.DefaultLogFormat, "log format: text or json")
	flags.StringVar(&rc.configPath, "config", "", "config file (yaml, json or toml)")

	return cmd
}

func (rc *RootCommand) run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(rc.configPath, cmd.Flags())
	if err != nil {
		return err
	}

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	logger, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}

	if cfg.NoColor {
		color.NoColor = true //nolint:reassign
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := rc.newClient(ctx, cfg, logger)
	if err != nil {
		return err
	}

	opts := []s3types.RunOption{
		s3checksum.WithAlgorithm(cfg.AlgorithmValue()),
		s3checksum.WithWorkers(cfg.Threads),
		s3checksum.WithPrefix(cfg.Path),
		s3checksum.WithOutput(stdout),
		s3checksum.WithMetricsFile(cfg.MetricsFile),
	}
	if cfg.Check != "" {
		opts = append(opts, s3checksum.WithVerifyManifest(cfg.Check))
	}
	if cfg.Output != "" {
		opts = append(opts, s3checksum.WithOutputPath(cfg.Output))
	}
	if !cfg.NoProgress {
		label := "hashing"
		if cfg.Check != "" {
			label = "verifying"
		}
		opts = append(opts, s3checksum.WithProgress(progress.New(stderr, label)))
	}

	summary, err := client.Run(ctx, cfg.Bucket, opts...)
	if err != nil {
		return err
	}

	if err := report.Write(stdout, summary, report.Options{NoColor: cfg.NoColor}); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if !summary.OK() {
		return fmt.Errorf("%w: %d object(s) failed", errors.ErrRunFailed, len(summary.Errors))
	}
	return nil
}

func defaultClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*s3checksum.Client, error) {
	return s3checksum.New(ctx,
		s3checksum.WithBackend(s3types.Backend(cfg.Backend)),
		s3checksum.WithRegion(cfg.Region),
		s3checksum.WithEndpoint(cfg.URL),
		s3checksum.WithForcePathStyle(cfg.PathStyle),
		s3checksum.WithConcurrency(cfg.Threads),
		s3checksum.WithLogger(logger),
	)
}

func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
