// Package source produces the work items of a run, either by listing a
// bucket or by replaying a verification manifest.
package source

import (
	"context"

	"github.com/input-output-hk/s3-checksum/s3types"
)

// Source yields work items on demand. ok is false once the source is
// exhausted; any error is fatal to the run.
type Source interface {
	Next(ctx context.Context) (item s3types.WorkItem, ok bool, err error)
}
