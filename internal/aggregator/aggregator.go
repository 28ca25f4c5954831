// Package aggregator is the single consumer of worker results. It owns all
// per-run state: category statistics, the error ledger and the output
// manifest.
package aggregator

import (
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/input-output-hk/s3-checksum/internal/manifest"
	"github.com/input-output-hk/s3-checksum/internal/metrics"
	"github.com/input-output-hk/s3-checksum/s3types"
)

// unknownModified is printed when the store does not report a timestamp.
const unknownModified = "[Unknown last modified date]"

// State is the aggregator lifecycle.
type State int

// Lifecycle states.
const (
	Idle State = iota
	Draining
	Finalizing
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Draining:
		return "draining"
	case Finalizing:
		return "finalizing"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Config configures an Aggregator.
type Config struct {
	Mode      s3types.Mode
	Algorithm s3types.Algorithm

	// Manifest receives "<digest> <key>" lines. Nil disables the output manifest.
	Manifest *manifest.Writer

	// Out receives one commentary line per successful item. Nil discards.
	Out io.Writer

	Metrics *metrics.Recorder
	Logger  *slog.Logger
}

// Aggregator merges result records into a summary.
type Aggregator struct {
	cfg        Config
	state      State
	categories map[string]*s3types.CategoryStat
	ledger     map[string]string
	count      int64
	bytes      int64
	writeErr   error
	started    time.Time
}

// New creates an idle aggregator.
func New(cfg Config) *Aggregator {
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Aggregator{
		cfg:        cfg,
		categories: make(map[string]*s3types.CategoryStat),
		ledger:     make(map[string]string),
	}
}

// State returns the current lifecycle state.
func (a *Aggregator) State() State {
	return a.state
}

// Run drains results until the channel is closed, then finalizes. A manifest
// write failure is returned after draining, together with the summary.
func (a *Aggregator) Run(results <-chan s3types.ResultRecord) (*s3types.Summary, error) {
	a.state = Draining
	a.started = time.Now()

	for rec := range results {
		a.add(rec)
	}

	a.state = Finalizing
	if a.cfg.Manifest != nil {
		if err := a.cfg.Manifest.Close(); err != nil && a.writeErr == nil {
			a.writeErr = err
		}
	}

	summary := a.summary()
	a.cfg.Metrics.Finish(summary.Duration, summary.OK())
	a.state = Done
	return summary, a.writeErr
}

func (a *Aggregator) add(rec s3types.ResultRecord) {
	a.cfg.Metrics.Observe(rec)

	if rec.Failed() {
		a.ledger[rec.Key] = rec.Err.Error()
		a.cfg.Logger.Warn("object failed", "key", rec.Key, "error", rec.Err)
		return
	}

	stat, ok := a.categories[Category(rec.Key)]
	if !ok {
		stat = &s3types.CategoryStat{Name: Category(rec.Key)}
		a.categories[stat.Name] = stat
	}
	stat.Count++
	stat.Bytes += rec.Size
	a.count++
	a.bytes += rec.Size

	fmt.Fprintln(a.cfg.Out, Commentary(rec))

	if a.cfg.Manifest != nil && a.writeErr == nil {
		if err := a.cfg.Manifest.Append(rec.Hash, rec.Key); err != nil {
			a.writeErr = err
			a.cfg.Logger.Error("output manifest write failed", "path", a.cfg.Manifest.Path(), "error", err)
		}
	}

	if rec.Mismatched() {
		a.ledger[rec.Key] = fmt.Sprintf("checksum mismatch: expected %s, computed %s", rec.ExpectedHash, rec.Hash)
	}
}

func (a *Aggregator) summary() *s3types.Summary {
	s := &s3types.Summary{
		Mode:       a.cfg.Mode,
		Algorithm:  a.cfg.Algorithm,
		Categories: make([]s3types.CategoryStat, 0, len(a.categories)),
		TotalCount: a.count,
		TotalBytes: a.bytes,
		Errors:     a.ledger,
		Duration:   time.Since(a.started),
	}
	if a.cfg.Manifest != nil {
		s.ManifestPath = a.cfg.Manifest.Path()
	}
	for _, stat := range a.categories {
		s.Categories = append(s.Categories, *stat)
	}
	sort.Slice(s.Categories, func(i, j int) bool {
		return s.Categories[i].Name < s.Categories[j].Name
	})
	return s
}

// Category derives the statistics bucket of a key: its lowercased extension
// without the dot, or the whole key when it has none.
func Category(key string) string {
	ext := path.Ext(key)
	if ext == "" || ext == "." {
		return key
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Commentary renders the per-item progress line. The content type is
// appended when known.
func Commentary(rec s3types.ResultRecord) string {
	modified := unknownModified
	if rec.LastModified != nil {
		modified = rec.LastModified.UTC().Format(time.RFC3339)
	}
	size := humanize.Bytes(uint64(max(rec.Size, 0)))
	if rec.ContentType != "" {
		return fmt.Sprintf("%s\t(%s / %s / %s)", manifest.Format(rec.Hash, rec.Key), size, modified, rec.ContentType)
	}
	return fmt.Sprintf("%s\t(%s / %s)", manifest.Format(rec.Hash, rec.Key), size, modified)
}
