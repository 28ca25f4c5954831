package testutil

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/input-output-hk/s3-checksum/errors"
	"github.com/input-output-hk/s3-checksum/s3types"
)

// MemStore is an in-memory s3types.ObjectStore. Configure it before use;
// afterwards it is safe for concurrent reads.
type MemStore struct {
	// Objects maps key to content
	Objects map[string][]byte

	// PageSize limits keys per listing page. Defaults to 1000.
	PageSize int

	// GetErrors fails GetObject for the listed keys
	GetErrors map[string]error

	// Truncate makes the body of a key end after n bytes while the full
	// length is still advertised
	Truncate map[string]int

	// ListErr fails every listing call
	ListErr error

	// UnknownLength reports ContentLength -1 for every object
	UnknownLength bool

	// LastModified is reported for every object; zero means unknown
	LastModified time.Time

	mu        sync.Mutex
	getCalls  map[string]int
	listCalls int
}

// NewMemStore creates a store holding objects.
func NewMemStore(objects map[string][]byte) *MemStore {
	return &MemStore{
		Objects:      objects,
		LastModified: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// ListPage implements s3types.ObjectStore.
func (m *MemStore) ListPage(ctx context.Context, bucket, prefix, token string) (*s3types.ListPage, error) {
	m.mu.Lock()
	m.listCalls++
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.ListErr != nil {
		return nil, errors.NewError("list", m.ListErr).WithBucket(bucket)
	}

	keys := make([]string, 0, len(m.Objects))
	for k := range m.Objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if token != "" {
		n, err := strconv.Atoi(token)
		if err != nil {
			return nil, errors.NewError("list", errors.ErrInvalidInput).WithMessage("bad token " + token)
		}
		start = n
	}
	size := m.PageSize
	if size <= 0 {
		size = 1000
	}
	end := min(start+size, len(keys))

	page := &s3types.ListPage{}
	for _, k := range keys[start:end] {
		page.Objects = append(page.Objects, s3types.Object{
			Key:          k,
			Size:         int64(len(m.Objects[k])),
			LastModified: m.LastModified,
		})
	}
	if end < len(keys) {
		page.NextToken = strconv.Itoa(end)
	}
	return page, nil
}

// GetObject implements s3types.ObjectStore.
func (m *MemStore) GetObject(ctx context.Context, bucket, key string) (*s3types.ObjectBody, error) {
	m.mu.Lock()
	if m.getCalls == nil {
		m.getCalls = make(map[string]int)
	}
	m.getCalls[key]++
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.GetErrors[key]; ok {
		return nil, errors.NewObjectError("fetch", bucket, key, err)
	}
	data, ok := m.Objects[key]
	if !ok {
		return nil, errors.NewObjectError("fetch", bucket, key, errors.ErrObjectNotFound)
	}

	length := int64(len(data))
	if n, ok := m.Truncate[key]; ok && n < len(data) {
		data = data[:n]
	}
	if m.UnknownLength {
		length = -1
	}

	body := &s3types.ObjectBody{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: length,
	}
	if !m.LastModified.IsZero() {
		t := m.LastModified
		body.LastModified = &t
	}
	return body, nil
}

// GetCalls returns how often key was fetched.
func (m *MemStore) GetCalls(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getCalls[key]
}

// TotalGetCalls returns the number of GetObject calls across all keys.
func (m *MemStore) TotalGetCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.getCalls {
		total += n
	}
	return total
}

// ListCalls returns the number of ListPage calls.
func (m *MemStore) ListCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

var _ s3types.ObjectStore = (*MemStore)(nil)
