package sync

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Destination uploads settings snapshots to an S3-compatible bucket,
// replacing one object on every sync.
type S3Destination struct {
	client *s3.Client
	bucket string
	key    string
}

// NewS3Destination loads the default AWS credential chain for region. A
// non-empty endpoint switches to path-style addressing for MinIO and
// similar servers.
func NewS3Destination(ctx context.Context, bucket, key, region, endpoint string) (*S3Destination, error) {
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("s3 destination needs a bucket and key")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &S3Destination{
		client: s3.NewFromConfig(cfg, func(o *s3.Options) {
			if endpoint != "" {
				o.BaseEndpoint = aws.String(endpoint)
				o.UsePathStyle = true
			}
		}),
		bucket: bucket,
		key:    key,
	}, nil
}

func (d *S3Destination) String() string {
	return "s3://" + d.bucket + "/" + d.key
}

// Write replaces the snapshot object with data.
func (d *S3Destination) Write(ctx context.Context, data []byte) error {
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(d.bucket),
		Key:           aws.String(d.key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(data))),
		CacheControl:  aws.String("no-cache"),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", d, err)
	}
	return nil
}
