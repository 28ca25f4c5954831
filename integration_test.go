//go:build integration
// +build integration

package s3checksum_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s3checksum "github.com/input-output-hk/s3-checksum"
	"github.com/input-output-hk/s3-checksum/internal/testutil"
	"github.com/input-output-hk/s3-checksum/s3types"
)

// TestIntegrationRoundTrip writes a manifest against LocalStack and verifies it.
func TestIntegrationRoundTrip(t *testing.T) {
	ctx := context.Background()
	container, s3Client, cleanup := testutil.SetupLocalStackTest(t)
	defer cleanup()

	bucketName := testutil.GenerateTestBucketName("checksum")
	objects := map[string][]byte{
		"a.txt":           []byte("hello"),
		"data/large.bin":  testutil.GenerateRandomData(3 * 1024 * 1024),
		"data/small.bin":  testutil.GenerateRandomData(10),
		"docs/readme.md":  []byte("# readme"),
		"docs/empty.json": {},
	}
	require.NoError(t, testutil.SeedBucketInLocalStack(ctx, s3Client, bucketName, objects))
	defer testutil.CleanupTestBucketInLocalStack(ctx, s3Client, bucketName)

	fs := memfs.New()
	client := s3checksum.NewWithClient(s3Client, s3checksum.WithFilesystem(fs))

	t.Run("write", func(t *testing.T) {
		var out bytes.Buffer
		summary, err := client.Run(ctx, bucketName, s3checksum.WithOutput(&out))
		require.NoError(t, err)
		assert.True(t, summary.OK(), "ledger: %v", summary.Errors)
		assert.Equal(t, int64(len(objects)), summary.TotalCount)

		sum := sha256.Sum256(objects["data/large.bin"])
		data, err := util.ReadFile(fs, bucketName+".sha256")
		require.NoError(t, err)
		assert.Contains(t, string(data), hex.EncodeToString(sum[:])+" data/large.bin\n")
	})

	t.Run("verify", func(t *testing.T) {
		summary, err := client.Run(ctx, bucketName,
			s3checksum.WithVerifyManifest(bucketName+".sha256"),
			s3checksum.WithWorkers(8))
		require.NoError(t, err)
		assert.True(t, summary.OK(), "ledger: %v", summary.Errors)
		assert.Equal(t, int64(len(objects)), summary.TotalCount)
	})

	t.Run("verify detects a deleted object", func(t *testing.T) {
		require.NoError(t, util.WriteFile(fs, "check.sha256",
			[]byte("486ea46224d1bb4fb680f34f7c9ad96a8f24ec88be73ea8e5a6c65260e9cb8a7 missing.bin\n"), 0o644))

		summary, err := client.Run(ctx, bucketName, s3checksum.WithVerifyManifest("check.sha256"))
		require.NoError(t, err)
		assert.False(t, summary.OK())
		assert.Contains(t, summary.Errors["missing.bin"], "object not found")
	})

	t.Run("minio backend", func(t *testing.T) {
		t.Setenv("AWS_ACCESS_KEY_ID", "test")
		t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

		minioClient, err := s3checksum.New(ctx,
			s3checksum.WithBackend(s3types.BackendMinio),
			s3checksum.WithEndpoint(container.Endpoint()),
			s3checksum.WithRegion(container.Region()),
			s3checksum.WithForcePathStyle(true),
			s3checksum.WithFilesystem(fs))
		require.NoError(t, err)

		summary, err := minioClient.Run(ctx, bucketName,
			s3checksum.WithVerifyManifest(bucketName+".sha256"),
			s3checksum.WithPrefix("data/"))
		require.NoError(t, err)
		assert.True(t, summary.OK(), "ledger: %v", summary.Errors)
		assert.Equal(t, int64(2), summary.TotalCount)
	})
}
