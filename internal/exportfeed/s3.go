package exportfeed

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client used by the downloader.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Downloader fetches exported report files from the export bucket.
type Downloader struct {
	client S3API
	bucket string
}

// NewDownloader creates a downloader for the export bucket.
func NewDownloader(client S3API, bucket string) *Downloader {
	if client == nil {
		panic("exportfeed: S3 client cannot be nil")
	}
	if bucket == "" {
		panic("exportfeed: bucket cannot be empty")
	}
	return &Downloader{client: client, bucket: bucket}
}

// Fetch downloads one exported object.
func (d *Downloader) Fetch(ctx context.Context, key string) ([]byte, error) {
	out, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("exportfeed: s3 get %s: %w", key, err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("exportfeed: read %s: %w", key, err)
	}
	return data, nil
}
