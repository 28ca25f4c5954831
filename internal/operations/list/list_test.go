package list

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s3errors "github.com/input-output-hk/s3-checksum/errors"
)

// pagedS3Client serves a fixed key set in pages of the requested size.
type pagedS3Client struct {
	keys  []string
	calls []*s3.ListObjectsV2Input
}

func (m *pagedS3Client) ListObjectsV2(
	ctx context.Context,
	input *s3.ListObjectsV2Input,
	opts ...func(*s3.Options),
) (*s3.ListObjectsV2Output, error) {
	m.calls = append(m.calls, input)

	start := 0
	if input.ContinuationToken != nil {
		_, err := fmt.Sscanf(*input.ContinuationToken, "tok-%d", &start)
		if err != nil {
			return nil, err
		}
	}

	end := start + int(aws.ToInt32(input.MaxKeys))
	if end > len(m.keys) {
		end = len(m.keys)
	}

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(m.keys))}
	for _, k := range m.keys[start:end] {
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(k),
			Size:         aws.Int64(int64(len(k))),
			LastModified: aws.Time(time.Unix(0, 0)),
		})
	}
	if end < len(m.keys) {
		out.NextContinuationToken = aws.String(fmt.Sprintf("tok-%d", end))
	}
	return out, nil
}

// TestPaginator_WalksAllPages verifies continuation tokens are followed to the end.
func TestPaginator_WalksAllPages(t *testing.T) {
	keys := make([]string, 2500)
	for i := range keys {
		keys[i] = fmt.Sprintf("obj-%04d", i)
	}
	client := &pagedS3Client{keys: keys}

	p := New(client).NewPaginator("bkt", "obj-")

	var got []string
	pages := 0
	for p.HasMorePages() {
		page, err := p.NextPage(context.Background())
		require.NoError(t, err)
		pages++
		for _, o := range page.Objects {
			got = append(got, o.Key)
		}
	}

	assert.Equal(t, 3, pages)
	assert.Equal(t, keys, got)
	require.Len(t, client.calls, 3)
	assert.Nil(t, client.calls[0].ContinuationToken)
	assert.Equal(t, "obj-", aws.ToString(client.calls[0].Prefix))
	assert.Equal(t, "tok-1000", aws.ToString(client.calls[1].ContinuationToken))
}

// TestLister_Page verifies the single page request shape.
func TestLister_Page(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		wantKeys int32
		wantNext string
	}{
		{name: "default page size", config: Config{Bucket: "b"}, wantKeys: 1000},
		{name: "small page", config: Config{Bucket: "b", PageSize: 2}, wantKeys: 2, wantNext: "tok-2"},
		{name: "oversized page clamped", config: Config{Bucket: "b", PageSize: 5000}, wantKeys: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &pagedS3Client{keys: []string{"a", "b", "c"}}

			page, err := New(client).Page(context.Background(), &tt.config)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKeys, aws.ToInt32(client.calls[0].MaxKeys))
			assert.Nil(t, client.calls[0].Prefix)
			assert.Equal(t, tt.wantNext, page.NextToken)
		})
	}
}

type failingS3Client struct{ err error }

func (f failingS3Client) ListObjectsV2(
	context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options),
) (*s3.ListObjectsV2Output, error) {
	return nil, f.err
}

// TestLister_PageError verifies SDK errors are translated.
func TestLister_PageError(t *testing.T) {
	_, err := New(failingS3Client{err: &types.NoSuchBucket{}}).Page(context.Background(), &Config{Bucket: "nope"})
	require.Error(t, err)
	assert.ErrorIs(t, err, s3errors.ErrBucketNotFound)

	base := errors.New("network down")
	_, err = New(failingS3Client{err: base}).Page(context.Background(), &Config{Bucket: "b"})
	assert.ErrorIs(t, err, base)
}
