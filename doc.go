// Package s3checksum computes and verifies checksums of objects in an S3
// bucket.
//
// A run either lists a bucket (optionally under a prefix) and writes a
// manifest of "<digest> <key>" lines, or replays an existing manifest and
// verifies every object against it. Objects are streamed through a pool of
// workers that pull work on demand; results are merged into per-category
// statistics and an error ledger.
//
// Example usage:
//
//	client, err := s3checksum.New(ctx, s3checksum.WithRegion("eu-west-1"))
//	if err != nil {
//	    return err
//	}
//
//	summary, err := client.Run(ctx, "my-bucket",
//	    s3checksum.WithAlgorithm(s3types.SHA512),
//	    s3checksum.WithWorkers(8),
//	)
//	if err != nil {
//	    return err
//	}
//	if !summary.OK() {
//	    // inspect summary.Errors
//	}
package s3checksum
