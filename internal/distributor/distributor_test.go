package distributor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/s3-checksum/s3types"
)

type sliceSource struct {
	mu     sync.Mutex
	items  []s3types.WorkItem
	failAt int
	err    error
	pulled int
}

func (s *sliceSource) Next(ctx context.Context) (s3types.WorkItem, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil && s.pulled == s.failAt {
		return s3types.WorkItem{}, false, s.err
	}
	if s.pulled >= len(s.items) {
		return s3types.WorkItem{}, false, nil
	}
	item := s.items[s.pulled]
	s.pulled++
	return item, true, nil
}

func (s *sliceSource) Pulled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pulled
}

func makeItems(n int) []s3types.WorkItem {
	items := make([]s3types.WorkItem, n)
	for i := range items {
		items[i] = s3types.WorkItem{Key: fmt.Sprintf("k%04d", i)}
	}
	return items
}

// TestDistributor_ExactlyOnce verifies every item reaches exactly one worker.
func TestDistributor_ExactlyOnce(t *testing.T) {
	for _, workers := range []int{1, 4, 16} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			ctx := context.Background()
			src := &sliceSource{items: makeItems(500)}
			d := New(workers)

			runErr := make(chan error, 1)
			go func() { runErr <- d.Run(ctx, src) }()

			var mu sync.Mutex
			seen := map[string]int{}
			var wg sync.WaitGroup
			for w := 0; w < workers; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for {
						item, ok, err := d.Request(ctx)
						if !assert.NoError(t, err) || !ok {
							return
						}
						mu.Lock()
						seen[item.Key]++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			require.NoError(t, <-runErr)
			assert.Len(t, seen, 500)
			for k, n := range seen {
				assert.Equal(t, 1, n, k)
			}
		})
	}
}

// TestDistributor_DemandDriven verifies nothing is pulled without a request.
func TestDistributor_DemandDriven(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &sliceSource{items: makeItems(10)}
	d := New(2)
	go func() { _ = d.Run(ctx, src) }()

	item, ok, err := d.Request(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "k0000", item.Key)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, src.Pulled())
}

// TestDistributor_SourceError verifies a source failure stops the run and releases workers.
func TestDistributor_SourceError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("bad manifest")
	src := &sliceSource{items: makeItems(5), failAt: 2, err: boom}
	d := New(1)

	runErr := make(chan error, 1)
	go func() { runErr <- d.Run(ctx, src) }()

	got := 0
	for {
		_, ok, err := d.Request(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
		got++
	}

	assert.Equal(t, 2, got)
	assert.ErrorIs(t, <-runErr, boom)
	<-d.Done()

	_, ok, err := d.Request(ctx)
	assert.NoError(t, err)
	assert.False(t, ok)
}

// TestDistributor_Cancel verifies blocked requests return on cancellation.
func TestDistributor_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	d := New(1)

	errCh := make(chan error, 1)
	go func() {
		_, _, err := d.Request(ctx)
		errCh <- err
	}()

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
}
