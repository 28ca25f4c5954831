package testutil

import (
	"bytes"
	"crypto/md5" //nolint:gosec // ETag simulation only
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// StringPtr returns a pointer to the given string.
func StringPtr(s string) *string {
	return &s
}

// Int64Ptr returns a pointer to the given int64.
func Int64Ptr(i int64) *int64 {
	return &i
}

// TimePtr returns a pointer to the given time.
func TimePtr(t time.Time) *time.Time {
	return &t
}

// GenerateRandomData generates random test data of the specified size.
func GenerateRandomData(size int) []byte {
	data := make([]byte, size)
	_, _ = rand.Read(data)
	return data
}

// GenerateTestBucketName generates a unique, valid bucket name for testing.
func GenerateTestBucketName(prefix string) string {
	if prefix == "" {
		prefix = "test"
	}
	return fmt.Sprintf("%s-%d", strings.ToLower(prefix), time.Now().UnixNano())
}

// CreateTestObject creates a listing entry for mocked ListObjectsV2 responses.
func CreateTestObject(key string, size int64, lastModified time.Time) types.Object {
	return types.Object{
		Key:          StringPtr(key),
		Size:         Int64Ptr(size),
		LastModified: TimePtr(lastModified),
		ETag:         StringPtr(fmt.Sprintf(`"%x"`, md5.Sum([]byte(key)))), //nolint:gosec // test data
		StorageClass: types.ObjectStorageClassStandard,
	}
}

// CreateListObjectsV2Output creates a ListObjectsV2 response.
func CreateListObjectsV2Output(
	objects []types.Object, prefix, delimiter string, truncated bool,
) *s3.ListObjectsV2Output {
	output := &s3.ListObjectsV2Output{
		Contents:    objects,
		KeyCount:    Int32Ptr(int32(len(objects))), //nolint:gosec // test sizes are small
		MaxKeys:     Int32Ptr(1000),
		Name:        StringPtr("test-bucket"),
		Prefix:      StringPtr(prefix),
		Delimiter:   StringPtr(delimiter),
		IsTruncated: BoolPtr(truncated),
	}
	if truncated && len(objects) > 0 {
		output.NextContinuationToken = StringPtr("next-token")
	}
	return output
}

// CreateGetObjectOutput creates a GetObject response streaming data.
func CreateGetObjectOutput(data []byte, contentType string) *s3.GetObjectOutput {
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: Int64Ptr(int64(len(data))),
		ContentType:   StringPtr(contentType),
		LastModified:  TimePtr(time.Now()),
	}
}

// Int32Ptr returns a pointer to the given int32.
func Int32Ptr(i int32) *int32 {
	return &i
}

// BoolPtr returns a pointer to the given bool.
func BoolPtr(b bool) *bool {
	return &b
}

// WriteManifest writes lines to path on fs, each terminated by a newline.
func WriteManifest(fs billy.Filesystem, path string, lines ...string) error {
	var buf strings.Builder
	for _, l := range lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	return util.WriteFile(fs, path, []byte(buf.String()), 0o644)
}
