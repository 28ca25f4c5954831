package source

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/input-output-hk/s3-checksum/errors"
	"github.com/input-output-hk/s3-checksum/internal/manifest"
	"github.com/input-output-hk/s3-checksum/s3types"
)

// maxLineSize bounds a single manifest line.
const maxLineSize = 1024 * 1024

// ManifestReplay reads expected digests from a manifest, one line at a time.
type ManifestReplay struct {
	path    string
	file    billy.File
	scanner *bufio.Scanner
	alg     s3types.Algorithm
	prefix  string
	logger  *slog.Logger
	line    int
}

// OpenManifest opens path on fs for replay. Keys outside prefix are skipped.
func OpenManifest(
	fs billy.Filesystem,
	path string,
	alg s3types.Algorithm,
	prefix string,
	logger *slog.Logger,
) (*ManifestReplay, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.NewError("manifest", errors.ErrManifestOpen).WithKey(path).WithMessage(err.Error())
	}
	if logger == nil {
		logger = slog.Default()
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	return &ManifestReplay{
		path:    path,
		file:    f,
		scanner: scanner,
		alg:     alg,
		prefix:  prefix,
		logger:  logger,
	}, nil
}

// Next implements Source.
func (r *ManifestReplay) Next(ctx context.Context) (s3types.WorkItem, bool, error) {
	for r.scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return s3types.WorkItem{}, false, err
		}
		r.line++
		text := r.scanner.Text()

		entry, ok, err := manifest.ParseLine(text)
		if err != nil {
			r.logger.Warn("skipping manifest line", "path", r.path, "line", r.line, "content", text)
			continue
		}
		if !ok {
			continue
		}

		if r.prefix != "" && !strings.HasPrefix(entry.Key, r.prefix) {
			continue
		}

		if err := manifest.CheckLength(entry.Hash, r.alg); err != nil {
			var e *errors.Error
			if errors.As(err, &e) {
				e.WithKey(r.path).WithMessage(fmt.Sprintf("line %d", r.line))
			}
			return s3types.WorkItem{}, false, err
		}

		return s3types.WorkItem{Key: entry.Key, ExpectedHash: entry.Hash}, true, nil
	}

	if err := r.scanner.Err(); err != nil {
		return s3types.WorkItem{}, false, errors.NewError("manifest", err).WithKey(r.path)
	}
	return s3types.WorkItem{}, false, nil
}

// Close releases the manifest file.
func (r *ManifestReplay) Close() error {
	return r.file.Close()
}
