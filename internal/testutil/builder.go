package testutil

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// MockBuilder provides a fluent interface for building MockS3Client instances.
type MockBuilder struct {
	client *MockS3Client
}

// NewMockBuilder creates a new MockBuilder.
func NewMockBuilder() *MockBuilder {
	return &MockBuilder{
		client: &MockS3Client{},
	}
}

// Build returns the configured MockS3Client.
func (b *MockBuilder) Build() *MockS3Client {
	return b.client
}

// WithGetObject configures the GetObject behavior.
func (b *MockBuilder) WithGetObject(
	fn func(context.Context, *s3.GetObjectInput) (*s3.GetObjectOutput, error),
) *MockBuilder {
	b.client.GetObjectFunc = func(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		return fn(ctx, params)
	}
	return b
}

// WithListObjectsV2 configures the ListObjectsV2 behavior.
func (b *MockBuilder) WithListObjectsV2(
	fn func(context.Context, *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error),
) *MockBuilder {
	b.client.ListObjectsV2Func = func(ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
		return fn(ctx, params)
	}
	return b
}

// WithObjects serves listing and reads from an in-memory bucket. Listing
// honors Prefix, MaxKeys and ContinuationToken.
func (b *MockBuilder) WithObjects(objects map[string][]byte) *MockBuilder {
	keys := make([]string, 0, len(objects))
	for k := range objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	modified := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	b.client.ListObjectsV2Func = func(ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
		prefix := aws.ToString(params.Prefix)
		var matched []string
		for _, k := range keys {
			if strings.HasPrefix(k, prefix) {
				matched = append(matched, k)
			}
		}

		start := 0
		if params.ContinuationToken != nil {
			n, err := strconv.Atoi(*params.ContinuationToken)
			if err != nil {
				return nil, err
			}
			start = n
		}
		pageSize := int(aws.ToInt32(params.MaxKeys))
		if pageSize <= 0 {
			pageSize = 1000
		}
		end := min(start+pageSize, len(matched))

		contents := make([]types.Object, 0, end-start)
		for _, k := range matched[start:end] {
			contents = append(contents, CreateTestObject(k, int64(len(objects[k])), modified))
		}
		output := CreateListObjectsV2Output(contents, prefix, "", end < len(matched))
		if end < len(matched) {
			output.NextContinuationToken = aws.String(strconv.Itoa(end))
		}
		return output, nil
	}

	b.client.GetObjectFunc = func(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		data, ok := objects[aws.ToString(params.Key)]
		if !ok {
			return nil, &types.NoSuchKey{Message: aws.String("The specified key does not exist.")}
		}
		return &s3.GetObjectOutput{
			Body:          io.NopCloser(bytes.NewReader(data)),
			ContentLength: aws.Int64(int64(len(data))),
			LastModified:  aws.Time(modified),
		}, nil
	}
	return b
}

// WithObjectNotFound makes every GetObject call fail with NoSuchKey.
func (b *MockBuilder) WithObjectNotFound() *MockBuilder {
	b.client.GetObjectFunc = func(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		return nil, &types.NoSuchKey{}
	}
	return b
}

// WithEmptyBucket makes listing return no objects.
func (b *MockBuilder) WithEmptyBucket() *MockBuilder {
	b.client.ListObjectsV2Func = func(ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
		return &s3.ListObjectsV2Output{
			Contents:    []types.Object{},
			IsTruncated: aws.Bool(false),
			KeyCount:    aws.Int32(0),
		}, nil
	}
	return b
}

// WithAccessDenied makes every operation fail with AccessDenied.
func (b *MockBuilder) WithAccessDenied() *MockBuilder {
	accessDenied := &smithy.GenericAPIError{Code: "AccessDenied", Message: "Access Denied"}

	b.client.GetObjectFunc = func(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		return nil, accessDenied
	}
	b.client.ListObjectsV2Func = func(ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
		return nil, accessDenied
	}
	return b
}

// WithListError makes listing fail with err.
func (b *MockBuilder) WithListError(err error) *MockBuilder {
	if err == nil {
		err = errors.New("list failed")
	}
	b.client.ListObjectsV2Func = func(ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
		return nil, err
	}
	return b
}
