package manifest

import (
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s3errors "github.com/input-output-hk/s3-checksum/errors"
	"github.com/input-output-hk/s3-checksum/s3types"
)

// TestParseLine covers separators, trimming and blank handling.
func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Entry
		wantOK  bool
		wantErr error
	}{
		{name: "simple", line: "abc a.txt", want: Entry{Hash: "abc", Key: "a.txt"}, wantOK: true},
		{name: "uppercase hash", line: "ABCDEF dir/b.bin", want: Entry{Hash: "abcdef", Key: "dir/b.bin"}, wantOK: true},
		{name: "tab separator", line: "abc\tkey", want: Entry{Hash: "abc", Key: "key"}, wantOK: true},
		{name: "surrounding space", line: "  abc   spaced key  ", want: Entry{Hash: "abc", Key: "spaced key"}, wantOK: true},
		{name: "blank", line: "   ", wantOK: false},
		{name: "empty", line: "", wantOK: false},
		{name: "no separator", line: "justonetoken", wantErr: ErrMalformedLine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := ParseLine(tt.line)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestCheckLength verifies strict length validation per algorithm.
func TestCheckLength(t *testing.T) {
	assert.NoError(t, CheckLength(strings.Repeat("a", 64), s3types.SHA256))
	assert.NoError(t, CheckLength(strings.Repeat("a", 40), s3types.SHA1))

	err := CheckLength(strings.Repeat("a", 40), s3types.SHA256)
	assert.ErrorIs(t, err, s3errors.ErrHashLength)
}

// TestFileName verifies the default manifest name.
func TestFileName(t *testing.T) {
	assert.Equal(t, "photos.sha256", FileName("photos", s3types.SHA256))
	assert.Equal(t, "photos.sha512", FileName("photos", s3types.SHA512))
}

// TestWriterRoundTrip verifies written lines parse back to the same entries.
func TestWriterRoundTrip(t *testing.T) {
	fs := memfs.New()

	w, err := Create(fs, "bkt.sha1")
	require.NoError(t, err)
	require.NoError(t, w.Append("aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d", "a.txt"))
	require.NoError(t, w.Append("da39a3ee5e6b4b0d3255bfef95601890afd80709", "empty"))
	require.NoError(t, w.Close())
	assert.Equal(t, "bkt.sha1", w.Path())

	data, err := util.ReadFile(fs, "bkt.sha1")
	require.NoError(t, err)
	assert.Equal(t,
		"aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d a.txt\nda39a3ee5e6b4b0d3255bfef95601890afd80709 empty\n",
		string(data))

	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		e, ok, err := ParseLine(line)
		require.NoError(t, err)
		require.True(t, ok)
		assert.NoError(t, CheckLength(e.Hash, s3types.SHA1))
	}
}
