package aggregator

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s3errors "github.com/input-output-hk/s3-checksum/errors"
	"github.com/input-output-hk/s3-checksum/internal/manifest"
	"github.com/input-output-hk/s3-checksum/s3types"
)

const helloSHA256 = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

func feed(records ...s3types.ResultRecord) <-chan s3types.ResultRecord {
	ch := make(chan s3types.ResultRecord, len(records))
	for _, r := range records {
		ch <- r
	}
	close(ch)
	return ch
}

func TestCategory(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"a.txt", "txt"},
		{"photos/IMG_001.JPG", "jpg"},
		{"archive.tar.gz", "gz"},
		{"README", "README"},
		{"dir.d/Makefile", "dir.d/Makefile"},
		{"trailing.", "trailing."},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, Category(tt.key))
		})
	}
}

func TestCommentary(t *testing.T) {
	modified := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	line := Commentary(s3types.ResultRecord{Key: "a.txt", Hash: helloSHA256, Size: 5, LastModified: &modified})
	assert.Equal(t, helloSHA256+" a.txt\t(5 B / 2024-03-01T10:00:00Z)", line)

	line = Commentary(s3types.ResultRecord{Key: "b", Hash: "ab", Size: 2000})
	assert.Equal(t, "ab b\t(2.0 kB / [Unknown last modified date])", line)

	line = Commentary(s3types.ResultRecord{Key: "c.json", Hash: "cd", Size: 2, ContentType: "application/json"})
	assert.Equal(t, "cd c.json\t(2 B / [Unknown last modified date] / application/json)", line)
}

// TestAggregator_WriteMode verifies statistics, manifest lines and commentary.
func TestAggregator_WriteMode(t *testing.T) {
	fs := memfs.New()
	w, err := manifest.Create(fs, "bkt.sha256")
	require.NoError(t, err)

	var out bytes.Buffer
	agg := New(Config{Mode: s3types.ModeWrite, Algorithm: s3types.SHA256, Manifest: w, Out: &out})
	assert.Equal(t, Idle, agg.State())

	summary, err := agg.Run(feed(
		s3types.ResultRecord{Key: "a.txt", Hash: helloSHA256, Size: 5},
		s3types.ResultRecord{Key: "z.bin", Hash: "00", Size: 10},
		s3types.ResultRecord{Key: "b.TXT", Hash: "11", Size: 7},
		s3types.ResultRecord{Key: "missing.bin", Err: s3errors.NewObjectError("fetch", "bkt", "missing.bin", s3errors.ErrObjectNotFound)},
	))
	require.NoError(t, err)
	assert.Equal(t, Done, agg.State())

	assert.Equal(t, []s3types.CategoryStat{
		{Name: "bin", Count: 1, Bytes: 10},
		{Name: "txt", Count: 2, Bytes: 12},
	}, summary.Categories)
	assert.Equal(t, int64(3), summary.TotalCount)
	assert.Equal(t, int64(22), summary.TotalBytes)
	assert.False(t, summary.OK())
	assert.Equal(t, []string{"missing.bin"}, summary.ErrorKeys())
	assert.Contains(t, summary.Errors["missing.bin"], "object not found")
	assert.Equal(t, "bkt.sha256", summary.ManifestPath)

	data, err := util.ReadFile(fs, "bkt.sha256")
	require.NoError(t, err)
	assert.Equal(t, helloSHA256+" a.txt\n00 z.bin\n11 b.TXT\n", string(data))
	assert.Len(t, strings.Split(strings.TrimSpace(out.String()), "\n"), 3)
}

// TestAggregator_VerifyMode verifies mismatch detection.
func TestAggregator_VerifyMode(t *testing.T) {
	agg := New(Config{Mode: s3types.ModeVerify, Algorithm: s3types.SHA256})

	summary, err := agg.Run(feed(
		s3types.ResultRecord{Key: "a.txt", Hash: helloSHA256, ExpectedHash: helloSHA256, Size: 5},
		s3types.ResultRecord{Key: "c.txt", Hash: helloSHA256, ExpectedHash: strings.Repeat("0", 64), Size: 5},
	))
	require.NoError(t, err)

	assert.Equal(t, s3types.ModeVerify, summary.Mode)
	assert.Equal(t, int64(2), summary.TotalCount)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors["c.txt"], "expected "+strings.Repeat("0", 64))
	assert.Contains(t, summary.Errors["c.txt"], "computed "+helloSHA256)
	assert.Empty(t, summary.ManifestPath)
}

// TestAggregator_Empty verifies an empty run succeeds with zero totals.
func TestAggregator_Empty(t *testing.T) {
	summary, err := New(Config{}).Run(feed())
	require.NoError(t, err)
	assert.True(t, summary.OK())
	assert.Zero(t, summary.TotalCount)
	assert.Zero(t, summary.TotalBytes)
	assert.Empty(t, summary.Categories)
}

type failingFS struct {
	billy.Filesystem
}

func (f failingFS) Create(name string) (billy.File, error) {
	file, err := f.Filesystem.Create(name)
	if err != nil {
		return nil, err
	}
	return failingFile{file}, nil
}

type failingFile struct {
	billy.File
}

func (failingFile) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

// TestAggregator_ManifestFailure verifies a write failure is reported after draining.
func TestAggregator_ManifestFailure(t *testing.T) {
	w, err := manifest.Create(failingFS{memfs.New()}, "out.sha1")
	require.NoError(t, err)

	agg := New(Config{Mode: s3types.ModeWrite, Algorithm: s3types.SHA1, Manifest: w})
	summary, err := agg.Run(feed(
		s3types.ResultRecord{Key: "a", Hash: "aa", Size: 1},
		s3types.ResultRecord{Key: "b", Hash: "bb", Size: 1},
	))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	require.NotNil(t, summary)
	assert.Equal(t, int64(2), summary.TotalCount)
	assert.Equal(t, Done, agg.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "draining", Draining.String())
	assert.Equal(t, "finalizing", Finalizing.String())
	assert.Equal(t, "done", Done.String())
}
