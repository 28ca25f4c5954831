// Package store provides the object store backends the crawler reads from:
// AWS S3 through the AWS SDK and S3-compatible services through minio-go.
package store
