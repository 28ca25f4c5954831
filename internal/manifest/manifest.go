// Package manifest reads and writes checksum manifests: one
// "<hex digest> <key>" pair per line.
package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-git/go-billy/v5"

	s3errors "github.com/input-output-hk/s3-checksum/errors"
	"github.com/input-output-hk/s3-checksum/s3types"
)

// ErrMalformedLine is returned for a non-blank line without a separator.
var ErrMalformedLine = errors.New("manifest: line has no separator")

// Entry is one parsed manifest line.
type Entry struct {
	Hash string
	Key  string
}

// FileName returns the default manifest name for a bucket and algorithm.
func FileName(bucket string, alg s3types.Algorithm) string {
	return bucket + "." + alg.String()
}

// Format renders a manifest line without the trailing newline.
func Format(digest, key string) string {
	return digest + " " + key
}

// ParseLine splits line at its first whitespace. The hash is lowercased.
// Blank lines return ok=false and no error.
func ParseLine(line string) (entry Entry, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Entry{}, false, nil
	}

	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return Entry{}, false, ErrMalformedLine
	}

	return Entry{
		Hash: strings.ToLower(strings.TrimSpace(line[:i])),
		Key:  strings.TrimSpace(line[i+1:]),
	}, true, nil
}

// CheckLength fails with ErrHashLength when hash is not a digest of alg.
func CheckLength(hash string, alg s3types.Algorithm) error {
	if len(hash) != alg.HexLen() {
		return s3errors.NewError("manifest", s3errors.ErrHashLength).
			WithMessage(fmt.Sprintf("%s: got %d characters, want %d", alg, len(hash), alg.HexLen()))
	}
	return nil
}

// Writer appends lines to a manifest file. It is not safe for concurrent
// use; the aggregator is its only caller.
type Writer struct {
	path string
	file billy.File
	buf  *bufio.Writer
}

// Create truncates or creates the manifest at path on fs.
func Create(fs billy.Filesystem, path string) (*Writer, error) {
	f, err := fs.Create(path)
	if err != nil {
		return nil, s3errors.NewError("manifest create", err).WithKey(path)
	}
	return &Writer{path: path, file: f, buf: bufio.NewWriter(f)}, nil
}

// Append writes one line.
func (w *Writer) Append(digest, key string) error {
	if _, err := w.buf.WriteString(Format(digest, key) + "\n"); err != nil {
		return s3errors.NewError("manifest write", err).WithKey(w.path)
	}
	return nil
}

// Path returns the manifest location.
func (w *Writer) Path() string {
	return w.path
}

// Close flushes buffered lines and closes the file.
func (w *Writer) Close() error {
	flushErr := w.buf.Flush()
	closeErr := w.file.Close()
	if flushErr != nil {
		return s3errors.NewError("manifest flush", flushErr).WithKey(w.path)
	}
	if closeErr != nil {
		return s3errors.NewError("manifest close", closeErr).WithKey(w.path)
	}
	return nil
}
