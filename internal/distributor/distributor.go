// Package distributor hands work items to workers on demand. A worker asks
// for one item by submitting a single-use reply slot; the distributor pulls
// exactly one item from its source per slot.
package distributor

import (
	"context"

	"github.com/input-output-hk/s3-checksum/internal/source"
	"github.com/input-output-hk/s3-checksum/s3types"
)

// Distributor pairs reply slots with source items.
type Distributor struct {
	requests chan chan s3types.WorkItem
	done     chan struct{}
}

// New creates a distributor whose request queue holds one slot per worker.
func New(workers int) *Distributor {
	if workers < 1 {
		workers = 1
	}
	return &Distributor{
		requests: make(chan chan s3types.WorkItem, workers),
		done:     make(chan struct{}),
	}
}

// Run serves requests from src until it is exhausted, it fails, or ctx is
// cancelled. Slots are buffered, so fulfilling one never blocks.
func (d *Distributor) Run(ctx context.Context, src source.Source) error {
	defer close(d.done)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var reply chan s3types.WorkItem
		select {
		case reply = <-d.requests:
		case <-ctx.Done():
			return ctx.Err()
		}

		item, ok, err := src.Next(ctx)
		if err != nil {
			close(reply)
			return err
		}
		if !ok {
			close(reply)
			return nil
		}
		reply <- item
	}
}

// Request asks for the next item. ok is false when no more work will come.
func (d *Distributor) Request(ctx context.Context) (item s3types.WorkItem, ok bool, err error) {
	reply := make(chan s3types.WorkItem, 1)

	select {
	case d.requests <- reply:
	case <-d.done:
		return s3types.WorkItem{}, false, nil
	case <-ctx.Done():
		return s3types.WorkItem{}, false, ctx.Err()
	}

	select {
	case item, ok = <-reply:
		return item, ok, nil
	case <-d.done:
		// The slot may have been filled just before the distributor stopped.
		select {
		case item, ok = <-reply:
			return item, ok, nil
		default:
			return s3types.WorkItem{}, false, nil
		}
	case <-ctx.Done():
		return s3types.WorkItem{}, false, ctx.Err()
	}
}

// Done is closed once Run has returned.
func (d *Distributor) Done() <-chan struct{} {
	return d.done
}
