// Package s3types provides shared type definitions for the checksum crawler.
package s3types

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/go-git/go-billy/v5"

	"github.com/input-output-hk/s3-checksum/errors"
)

// Algorithm selects the digest used for every object in a run.
type Algorithm int

// Supported digest algorithms.
const (
	SHA1 Algorithm = iota
	SHA256
	SHA512
)

// DefaultAlgorithm is used when no algorithm is configured.
const DefaultAlgorithm = SHA256

// String returns the lowercase algorithm name used in manifest file names.
func (a Algorithm) String() string {
	switch a {
	case SHA1:
		return "sha1"
	case SHA256:
		return "sha256"
	case SHA512:
		return "sha512"
	default:
		return fmt.Sprintf("algorithm(%d)", int(a))
	}
}

// HexLen returns the length of a lowercase hex digest for the algorithm.
func (a Algorithm) HexLen() int {
	switch a {
	case SHA1:
		return 40
	case SHA256:
		return 64
	case SHA512:
		return 128
	default:
		return 0
	}
}

// Valid reports whether a is a supported algorithm.
func (a Algorithm) Valid() bool {
	return a.HexLen() > 0
}

// ParseAlgorithm parses names such as "sha256" or "SHA-256".
func ParseAlgorithm(name string) (Algorithm, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "")
	switch normalized {
	case "sha1":
		return SHA1, nil
	case "sha256":
		return SHA256, nil
	case "sha512":
		return SHA512, nil
	default:
		return 0, errors.NewError("parse algorithm", errors.ErrUnsupportedAlgorithm).WithMessage(name)
	}
}

// Backend names an object store implementation.
type Backend string

// Supported backends.
const (
	// BackendS3 talks to AWS S3 (or an S3-compatible endpoint) through the AWS SDK
	BackendS3 Backend = "s3"

	// BackendMinio talks to an S3-compatible endpoint through minio-go
	BackendMinio Backend = "minio"
)

// Object is one entry of a listing page.
type Object struct {
	// Key is the object key
	Key string

	// Size is the object size in bytes
	Size int64

	// LastModified is when the object was last modified
	LastModified time.Time

	// ETag is the entity tag reported by the store
	ETag string
}

// ListPage is a single page of a listing.
type ListPage struct {
	Objects []Object

	// NextToken continues the listing. Empty when the listing is complete.
	NextToken string
}

// ObjectBody is an open object stream. The caller must close Body.
type ObjectBody struct {
	Body io.ReadCloser

	// ContentLength is the advertised size, or -1 when unknown
	ContentLength int64

	// LastModified is nil when the store does not report it
	LastModified *time.Time

	// ContentType is the type advertised by the store, if any
	ContentType string
}

// ObjectStore is the remote namespace the crawler reads from.
// Implementations must be safe for concurrent use.
type ObjectStore interface {
	// ListPage returns the page of keys under prefix that follows token.
	// An empty token starts the listing.
	ListPage(ctx context.Context, bucket, prefix, token string) (*ListPage, error)

	// GetObject opens the object for streaming.
	GetObject(ctx context.Context, bucket, key string) (*ObjectBody, error)
}

// WorkItem is one unit of work handed to a worker.
type WorkItem struct {
	Key string

	// ExpectedHash is the lowercase hex digest from a verification manifest.
	// Empty when the run is not verifying.
	ExpectedHash string
}

// ResultRecord is what a worker reports for one item. Exactly one of Hash and
// Err is set.
type ResultRecord struct {
	Key          string
	Size         int64
	Hash         string
	Err          error
	ExpectedHash string
	LastModified *time.Time
	ContentType  string
}

// Failed reports whether the fetch or hash failed.
func (r ResultRecord) Failed() bool {
	return r.Err != nil
}

// Mismatched reports whether a computed hash differs from the expected one.
func (r ResultRecord) Mismatched() bool {
	return r.Err == nil && r.ExpectedHash != "" && r.ExpectedHash != r.Hash
}

// ProgressTracker receives live progress from workers. Implementations must be
// safe for concurrent use.
type ProgressTracker interface {
	// AddBytes is called as object bytes are hashed
	AddBytes(n int64)

	// ItemDone is called once per processed item
	ItemDone(failed bool)

	// Complete is called when the run ends
	Complete()
}

// Mode is the run mode.
type Mode string

// Run modes.
const (
	ModeWrite  Mode = "write"
	ModeVerify Mode = "verify"
)

// CategoryStat is the count and byte total for one category.
type CategoryStat struct {
	Name  string
	Count int64
	Bytes int64
}

// Summary is the final result of a run.
type Summary struct {
	Mode      Mode
	Algorithm Algorithm

	// Categories is sorted by Name
	Categories []CategoryStat

	TotalCount int64
	TotalBytes int64

	// Errors maps an item key to its diagnostic
	Errors map[string]string

	// ManifestPath is the output manifest written in write mode
	ManifestPath string

	Duration time.Duration
}

// OK reports whether the run finished without ledger entries.
func (s *Summary) OK() bool {
	return len(s.Errors) == 0
}

// ErrorKeys returns the ledger keys in lexicographic order.
func (s *Summary) ErrorKeys() []string {
	keys := make([]string, 0, len(s.Errors))
	for k := range s.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ClientConfig holds configuration for the client.
type ClientConfig struct {
	Region          string
	Endpoint        string
	MaxRetries      int
	Timeout         time.Duration
	Concurrency     int
	ForcePathStyle  bool
	CustomAWSConfig *aws.Config
	Backend         Backend
	Logger          *slog.Logger
	Filesystem      billy.Filesystem // Filesystem for manifest files
}

// RunConfig holds configuration for a single run.
type RunConfig struct {
	Prefix         string
	VerifyManifest string
	Algorithm      Algorithm
	Workers        int
	OutputPath     string
	Output         io.Writer
	Progress       ProgressTracker
	MetricsFile    string
}

type (
	// Option is a functional option for configuring the client.
	Option func(*ClientConfig)
	// RunOption is a functional option for configuring a run.
	RunOption func(*RunConfig)
)
