package s3checksum

import (
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/go-git/go-billy/v5"

	"github.com/input-output-hk/s3-checksum/s3types"
)

// WithRegion sets the AWS region.
// If not specified, uses the region from the credential chain, then us-east-1.
func WithRegion(region string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Region = region
	}
}

// WithMaxRetries sets the maximum number of attempts for failed requests.
// Default is 3.
func WithMaxRetries(maxRetries int) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithTimeout sets the HTTP client timeout. Zero means no timeout.
func WithTimeout(timeout time.Duration) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithConcurrency sets the default worker count for runs.
// Default is 4. Non-positive values are ignored.
func WithConcurrency(concurrency int) s3types.Option {
	return func(c *s3types.ClientConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithForcePathStyle forces path-style URLs instead of virtual-hosted style.
// Setting an endpoint implies path style on the AWS backend.
func WithForcePathStyle(forcePathStyle bool) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithAWSConfig provides a custom AWS configuration instead of loading the
// default one.
func WithAWSConfig(config *aws.Config) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithEndpoint sets a custom S3-compatible endpoint URL such as
// http://localhost:4566.
func WithEndpoint(endpoint string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithBackend selects the object store implementation. The minio backend
// requires an endpoint.
func WithBackend(backend s3types.Backend) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Backend = backend
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Logger = logger
	}
}

// WithFilesystem sets where manifests are read and written.
// If not specified, defaults to the OS filesystem rooted at the working directory.
func WithFilesystem(filesystem billy.Filesystem) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Filesystem = filesystem
	}
}

// WithPrefix restricts a run to keys beginning with prefix.
func WithPrefix(prefix string) s3types.RunOption {
	return func(c *s3types.RunConfig) {
		c.Prefix = prefix
	}
}

// WithVerifyManifest switches the run to verify mode against the manifest at path.
func WithVerifyManifest(path string) s3types.RunOption {
	return func(c *s3types.RunConfig) {
		c.VerifyManifest = path
	}
}

// WithAlgorithm selects the digest. Default is SHA-256.
func WithAlgorithm(alg s3types.Algorithm) s3types.RunOption {
	return func(c *s3types.RunConfig) {
		c.Algorithm = alg
	}
}

// WithWorkers sets the worker count for this run, overriding the client's
// concurrency. Non-positive values are ignored.
func WithWorkers(workers int) s3types.RunOption {
	return func(c *s3types.RunConfig) {
		if workers > 0 {
			c.Workers = workers
		}
	}
}

// WithOutputPath overrides the output manifest path. Default is
// "<bucket>.<algorithm>".
func WithOutputPath(path string) s3types.RunOption {
	return func(c *s3types.RunConfig) {
		c.OutputPath = path
	}
}

// WithOutput receives one commentary line per successful object.
func WithOutput(w io.Writer) s3types.RunOption {
	return func(c *s3types.RunConfig) {
		c.Output = w
	}
}

// WithProgress sets a progress tracker for the run.
func WithProgress(tracker s3types.ProgressTracker) s3types.RunOption {
	return func(c *s3types.RunConfig) {
		c.Progress = tracker
	}
}

// WithMetricsFile writes run metrics in the Prometheus text format to path
// when the run ends.
func WithMetricsFile(path string) s3types.RunOption {
	return func(c *s3types.RunConfig) {
		c.MetricsFile = path
	}
}
