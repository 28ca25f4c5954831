// Package config loads CLI settings from defaults, an optional config file,
// the environment, and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/input-output-hk/s3-checksum/s3types"
)

// envPrefix is the environment variable prefix for all settings.
const envPrefix = "S3CHECKSUM"

// Defaults.
const (
	DefaultAlgorithm = "sha256"
	DefaultThreads   = 4
	DefaultBackend   = string(s3types.BackendS3)
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Validation errors.
var (
	ErrMissingBucket   = errors.New("bucket is required")
	ErrInvalidWorkers  = errors.New("threads must be at least 1")
	ErrInvalidBackend  = errors.New("backend must be s3 or minio")
	ErrInvalidLogLevel = errors.New("log level must be debug, info, warn or error")
	ErrInvalidFormat   = errors.New("log format must be text or json")
)

// Config is the resolved CLI configuration.
type Config struct {
	Bucket      string `mapstructure:"bucket"`
	Path        string `mapstructure:"path"`
	Check       string `mapstructure:"check"`
	Algorithm   string `mapstructure:"algorithm"`
	Threads     int    `mapstructure:"threads"`
	URL         string `mapstructure:"url"`
	Region      string `mapstructure:"region"`
	PathStyle   bool   `mapstructure:"path-style"`
	Backend     string `mapstructure:"backend"`
	Output      string `mapstructure:"output"`
	MetricsFile string `mapstructure:"metrics-file"`
	NoProgress  bool   `mapstructure:"no-progress"`
	NoColor     bool   `mapstructure:"no-color"`
	LogLevel    string `mapstructure:"log-level"`
	LogFormat   string `mapstructure:"log-format"`
}

// Load resolves the configuration. An empty path skips the config file.
// Flags that were not set on the command line fall back to the environment,
// the config file, and then the defaults.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	applyDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("bucket", "")
	v.SetDefault("path", "")
	v.SetDefault("check", "")
	v.SetDefault("algorithm", DefaultAlgorithm)
	v.SetDefault("threads", DefaultThreads)
	v.SetDefault("url", "")
	v.SetDefault("region", "")
	v.SetDefault("path-style", false)
	v.SetDefault("backend", DefaultBackend)
	v.SetDefault("output", "")
	v.SetDefault("metrics-file", "")
	v.SetDefault("no-progress", false)
	v.SetDefault("no-color", false)
	v.SetDefault("log-level", DefaultLogLevel)
	v.SetDefault("log-format", DefaultLogFormat)
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Bucket) == "" {
		return ErrMissingBucket
	}
	if c.Threads < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidWorkers, c.Threads)
	}
	if _, err := s3types.ParseAlgorithm(c.Algorithm); err != nil {
		return err
	}
	switch s3types.Backend(c.Backend) {
	case s3types.BackendS3, s3types.BackendMinio:
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidBackend, c.Backend)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidFormat, c.LogFormat)
	}
	return nil
}

// AlgorithmValue returns the parsed algorithm. Call after Validate.
func (c *Config) AlgorithmValue() s3types.Algorithm {
	alg, err := s3types.ParseAlgorithm(c.Algorithm)
	if err != nil {
		return s3types.DefaultAlgorithm
	}
	return alg
}

// Level returns the slog level for LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: got %q", ErrInvalidLogLevel, c.LogLevel)
	}
	return level, nil
}
