package s3checksum

import (
	"context"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/input-output-hk/s3-checksum/errors"
	"github.com/input-output-hk/s3-checksum/internal/s3api"
	"github.com/input-output-hk/s3-checksum/internal/store"
	"github.com/input-output-hk/s3-checksum/internal/validation"
	"github.com/input-output-hk/s3-checksum/s3types"
)

// Default client settings.
const (
	DefaultRegion      = "us-east-1"
	DefaultMaxRetries  = 3
	DefaultConcurrency = 4
)

// Client runs checksum crawls against one object store. It is safe for
// concurrent use; each Run is independent.
type Client struct {
	// store is the object store the crawl reads from
	store s3types.ObjectStore

	// config holds the resolved client configuration
	config s3types.ClientConfig

	logger *slog.Logger

	// fs is where manifests are read and written
	fs billy.Filesystem

	// hostFS is set when fs is the OS filesystem rooted at /
	hostFS bool
}

// New creates a client with the provided options. The default backend uses
// the AWS SDK and the default credential chain.
//
// Example:
//
//	client, err := s3checksum.New(ctx,
//	    s3checksum.WithEndpoint("http://localhost:9000"),
//	    s3checksum.WithMaxRetries(5),
//	)
func New(ctx context.Context, opts ...s3types.Option) (*Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := validation.ValidateEndpoint(cfg.Endpoint); err != nil {
		return nil, err
	}

	var (
		objectStore s3types.ObjectStore
		err         error
	)
	switch cfg.Backend {
	case s3types.BackendS3, "":
		objectStore, err = newAWSStore(ctx, &cfg)
	case s3types.BackendMinio:
		objectStore, err = store.NewMinio(store.MinioConfig{
			Endpoint:  cfg.Endpoint,
			Region:    cfg.Region,
			PathStyle: cfg.ForcePathStyle,
		})
	default:
		err = errors.NewError("client initialization", errors.ErrInvalidInput).
			WithMessage("unknown backend " + string(cfg.Backend))
	}
	if err != nil {
		return nil, err
	}

	return newClient(objectStore, cfg), nil
}

func newAWSStore(ctx context.Context, cfg *s3types.ClientConfig) (*store.S3Store, error) {
	var awsCfg aws.Config
	if cfg.CustomAWSConfig != nil {
		awsCfg = *cfg.CustomAWSConfig
	} else {
		loaded, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, errors.NewError("client initialization", err)
		}
		awsCfg = loaded
	}

	if cfg.Region != "" {
		awsCfg.Region = cfg.Region
	} else if awsCfg.Region == "" {
		awsCfg.Region = DefaultRegion
	}

	if cfg.MaxRetries > 0 {
		awsCfg.RetryMaxAttempts = cfg.MaxRetries
	}

	var s3Opts []func(*s3.Options)

	// Custom endpoints are S3-compatible services that rarely support
	// virtual-hosted addressing.
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	} else if cfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	if cfg.Timeout > 0 {
		httpClient := &http.Client{
			Timeout: cfg.Timeout,
		}
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	return store.NewS3(s3.NewFromConfig(awsCfg, s3Opts...)), nil
}

// NewWithClient creates a client over a custom S3API implementation.
// This is primarily used for testing with mocked clients.
func NewWithClient(client s3api.S3API, opts ...s3types.Option) *Client {
	return NewWithStore(store.NewS3(client), opts...)
}

// NewWithStore creates a client over any ObjectStore.
func NewWithStore(objectStore s3types.ObjectStore, opts ...s3types.Option) *Client {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return newClient(objectStore, cfg)
}

func defaultConfig() s3types.ClientConfig {
	return s3types.ClientConfig{
		MaxRetries:  DefaultMaxRetries,
		Concurrency: DefaultConcurrency,
		Backend:     s3types.BackendS3,
	}
}

func newClient(objectStore s3types.ObjectStore, cfg s3types.ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	filesystem, hostFS := cfg.Filesystem, false
	if filesystem == nil {
		filesystem, hostFS = osfs.New("/"), true
	}

	return &Client{
		store:  objectStore,
		config: cfg,
		logger: logger,
		fs:     filesystem,
		hostFS: hostFS,
	}
}

// resolve makes p absolute on the host filesystem so relative manifest paths
// are taken from the working directory.
func (c *Client) resolve(p string) string {
	if !c.hostFS || filepath.IsAbs(p) {
		return p
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// Store returns the object store the client reads from.
func (c *Client) Store() s3types.ObjectStore {
	return c.store
}
