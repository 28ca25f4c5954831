package download

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/s3-checksum/internal/s3api"
	"github.com/input-output-hk/s3-checksum/s3types"
)

// Downloader opens S3 objects.
type Downloader struct {
	s3Client s3api.S3API
}

// New creates a new Downloader instance.
func New(s3Client s3api.S3API) *Downloader {
	return &Downloader{
		s3Client: s3Client,
	}
}

// Open issues a GetObject request and returns the open body together with
// the reported metadata. ContentLength is -1 when S3 does not report it.
func (d *Downloader) Open(ctx context.Context, bucket, key string) (*s3types.ObjectBody, error) {
	output, err := d.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s3api.TranslateError("fetch", bucket, key, err)
	}

	size := int64(-1)
	if output.ContentLength != nil {
		size = *output.ContentLength
	}

	var lastModified *time.Time
	if output.LastModified != nil {
		t := *output.LastModified
		lastModified = &t
	}

	return &s3types.ObjectBody{
		Body:          output.Body,
		ContentLength: size,
		LastModified:  lastModified,
		ContentType:   aws.ToString(output.ContentType),
	}, nil
}
