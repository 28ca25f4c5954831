package s3checksum

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/s3-checksum/errors"
	"github.com/input-output-hk/s3-checksum/internal/store"
	"github.com/input-output-hk/s3-checksum/internal/testutil"
	"github.com/input-output-hk/s3-checksum/s3types"
)

// TestClient_New tests construction for both backends.
func TestClient_New(t *testing.T) {
	awsCfg := &aws.Config{Region: "eu-west-1"}

	tests := []struct {
		name      string
		opts      []s3types.Option
		wantErr   error
		wantMinio bool
	}{
		{
			name: "aws backend with custom config",
			opts: []s3types.Option{WithAWSConfig(awsCfg)},
		},
		{
			name: "aws backend with endpoint",
			opts: []s3types.Option{WithAWSConfig(awsCfg), WithEndpoint("http://localhost:4566"), WithTimeout(time.Second)},
		},
		{
			name:      "minio backend",
			opts:      []s3types.Option{WithBackend(s3types.BackendMinio), WithEndpoint("http://localhost:9000")},
			wantMinio: true,
		},
		{
			name:    "minio backend without endpoint",
			opts:    []s3types.Option{WithBackend(s3types.BackendMinio)},
			wantErr: errors.ErrInvalidInput,
		},
		{
			name:    "unknown backend",
			opts:    []s3types.Option{WithAWSConfig(awsCfg), WithBackend("gcs")},
			wantErr: errors.ErrInvalidInput,
		},
		{
			name:    "endpoint without scheme",
			opts:    []s3types.Option{WithAWSConfig(awsCfg), WithEndpoint("localhost:4566")},
			wantErr: errors.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(context.Background(), tt.opts...)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, client)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, client)
			if tt.wantMinio {
				assert.IsType(t, &store.MinioStore{}, client.Store())
			} else {
				assert.IsType(t, &store.S3Store{}, client.Store())
			}
		})
	}
}

// TestClient_Defaults verifies the configuration applied without options.
func TestClient_Defaults(t *testing.T) {
	client := NewWithClient(testutil.NewMockBuilder().Build())

	assert.Equal(t, DefaultConcurrency, client.config.Concurrency)
	assert.Equal(t, DefaultMaxRetries, client.config.MaxRetries)
	assert.Equal(t, s3types.BackendS3, client.config.Backend)
	assert.NotNil(t, client.logger)
	assert.True(t, client.hostFS)
}

// TestClient_Resolve verifies relative manifest paths on the host filesystem.
func TestClient_Resolve(t *testing.T) {
	host := NewWithStore(testutil.NewMemStore(nil))
	assert.True(t, len(host.resolve("bkt.sha256")) > len("bkt.sha256"))
	assert.Equal(t, "/data/bkt.sha256", host.resolve("/data/bkt.sha256"))

	mem := NewWithStore(testutil.NewMemStore(nil), WithFilesystem(memfs.New()))
	assert.Equal(t, "bkt.sha256", mem.resolve("bkt.sha256"))
}

// TestOptions verifies that each option sets its field.
func TestOptions(t *testing.T) {
	awsCfg := &aws.Config{}
	fs := memfs.New()

	cfg := defaultConfig()
	for _, opt := range []s3types.Option{
		WithRegion("us-west-2"),
		WithMaxRetries(7),
		WithTimeout(30 * time.Second),
		WithConcurrency(16),
		WithForcePathStyle(true),
		WithAWSConfig(awsCfg),
		WithEndpoint("http://localhost:4566"),
		WithBackend(s3types.BackendMinio),
		WithFilesystem(fs),
	} {
		opt(&cfg)
	}

	assert.Equal(t, "us-west-2", cfg.Region)
	assert.Equal(t, 7, cfg.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 16, cfg.Concurrency)
	assert.True(t, cfg.ForcePathStyle)
	assert.Same(t, awsCfg, cfg.CustomAWSConfig)
	assert.Equal(t, "http://localhost:4566", cfg.Endpoint)
	assert.Equal(t, s3types.BackendMinio, cfg.Backend)
	assert.Equal(t, fs, cfg.Filesystem)
}

// TestWithConcurrency verifies that non-positive values keep the default.
func TestWithConcurrency(t *testing.T) {
	tests := []struct {
		name  string
		value int
		want  int
	}{
		{"positive", 8, 8},
		{"zero", 0, DefaultConcurrency},
		{"negative", -1, DefaultConcurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			WithConcurrency(tt.value)(&cfg)
			assert.Equal(t, tt.want, cfg.Concurrency)
		})
	}
}

// TestRunOptions verifies that each run option sets its field.
func TestRunOptions(t *testing.T) {
	tracker := &testutil.MockProgressTracker{}

	var cfg s3types.RunConfig
	for _, opt := range []s3types.RunOption{
		WithPrefix("logs/"),
		WithVerifyManifest("bkt.sha1"),
		WithAlgorithm(s3types.SHA1),
		WithWorkers(3),
		WithWorkers(0),
		WithOutputPath("out.sha1"),
		WithProgress(tracker),
		WithMetricsFile("run.prom"),
	} {
		opt(&cfg)
	}

	assert.Equal(t, "logs/", cfg.Prefix)
	assert.Equal(t, "bkt.sha1", cfg.VerifyManifest)
	assert.Equal(t, s3types.SHA1, cfg.Algorithm)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "out.sha1", cfg.OutputPath)
	assert.Same(t, tracker, cfg.Progress)
	assert.Equal(t, "run.prom", cfg.MetricsFile)
}
