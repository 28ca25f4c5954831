// Package progress renders live hashing progress on a terminal.
package progress

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/input-output-hk/s3-checksum/s3types"
)

// Bar is a byte spinner that also counts processed objects. The total is
// unknown up front because keys are listed lazily.
type Bar struct {
	bar    *progressbar.ProgressBar
	label  string
	items  atomic.Int64
	failed atomic.Int64
}

// New creates a bar writing to w.
func New(w io.Writer, label string) *Bar {
	b := &Bar{label: label}
	b.bar = progressbar.NewOptions64(
		-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetDescription(label),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowIts(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(120*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	return b
}

// AddBytes implements s3types.ProgressTracker.
func (b *Bar) AddBytes(n int64) {
	_ = b.bar.Add64(n)
}

// ItemDone implements s3types.ProgressTracker.
func (b *Bar) ItemDone(failed bool) {
	items := b.items.Add(1)
	nFailed := b.failed.Load()
	if failed {
		nFailed = b.failed.Add(1)
	}
	b.bar.Describe(b.describe(items, nFailed))
}

// Complete implements s3types.ProgressTracker.
func (b *Bar) Complete() {
	_ = b.bar.Finish()
}

// Items returns the number of processed objects and how many failed.
func (b *Bar) Items() (total, failed int64) {
	return b.items.Load(), b.failed.Load()
}

func (b *Bar) describe(items, failed int64) string {
	if failed == 0 {
		return fmt.Sprintf("%s %d objects", b.label, items)
	}
	return fmt.Sprintf("%s %d objects (%d failed)", b.label, items, failed)
}

var _ s3types.ProgressTracker = (*Bar)(nil)
