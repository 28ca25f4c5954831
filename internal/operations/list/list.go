package list

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/s3-checksum/internal/s3api"
	"github.com/input-output-hk/s3-checksum/s3types"
)

// MaxPageSize is the largest page S3 will return.
const MaxPageSize int32 = 1000

// S3Interface defines the S3 operations we need.
type S3Interface interface {
	ListObjectsV2(
		ctx context.Context,
		input *s3.ListObjectsV2Input,
		opts ...func(*s3.Options),
	) (*s3.ListObjectsV2Output, error)
}

// Lister fetches listing pages.
type Lister struct {
	client S3Interface
}

// New creates a new Lister.
func New(client S3Interface) *Lister {
	return &Lister{
		client: client,
	}
}

// Config holds configuration for a page request.
type Config struct {
	Bucket            string
	Prefix            string
	ContinuationToken string
	PageSize          int32
}

// Page fetches the page identified by config.ContinuationToken.
func (l *Lister) Page(ctx context.Context, config *Config) (*s3types.ListPage, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(config.Bucket),
		MaxKeys: aws.Int32(optimalPageSize(config.PageSize)),
	}
	if config.Prefix != "" {
		input.Prefix = aws.String(config.Prefix)
	}
	if config.ContinuationToken != "" {
		input.ContinuationToken = aws.String(config.ContinuationToken)
	}

	output, err := l.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, s3api.TranslateError("list", config.Bucket, config.Prefix, err)
	}

	return convertOutput(output), nil
}

// Paginator walks a listing page by page.
type Paginator struct {
	lister    *Lister
	config    Config
	token     string
	firstPage bool
}

// NewPaginator creates a paginator that starts at the beginning of the listing.
func (l *Lister) NewPaginator(bucket, prefix string) *Paginator {
	return &Paginator{
		lister:    l,
		config:    Config{Bucket: bucket, Prefix: prefix, PageSize: MaxPageSize},
		firstPage: true,
	}
}

// HasMorePages returns true if there are more pages to fetch.
func (p *Paginator) HasMorePages() bool {
	return p.firstPage || p.token != ""
}

// NextPage fetches the next page of results.
func (p *Paginator) NextPage(ctx context.Context) (*s3types.ListPage, error) {
	cfg := p.config
	cfg.ContinuationToken = p.token

	page, err := p.lister.Page(ctx, &cfg)
	if err != nil {
		return nil, err
	}

	p.firstPage = false
	p.token = page.NextToken
	return page, nil
}

func convertOutput(output *s3.ListObjectsV2Output) *s3types.ListPage {
	page := &s3types.ListPage{
		Objects: make([]s3types.Object, 0, len(output.Contents)),
	}

	if aws.ToBool(output.IsTruncated) {
		page.NextToken = aws.ToString(output.NextContinuationToken)
	}

	for _, obj := range output.Contents {
		page.Objects = append(page.Objects, s3types.Object{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
			ETag:         aws.ToString(obj.ETag),
		})
	}

	return page
}

func optimalPageSize(size int32) int32 {
	if size > 0 && size <= MaxPageSize {
		return size
	}
	return MaxPageSize
}
