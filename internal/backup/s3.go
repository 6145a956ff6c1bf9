package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/nexus-dash/nexus/internal/config"
)

// ErrNoBucket is returned when S3 export is requested without a bucket.
var ErrNoBucket = errors.New("backup: S3 bucket not configured")

const defaultS3Key = "nexus/settings.json"

// S3Destination uploads the export to an S3 compatible bucket.
type S3Destination struct {
	client *s3.Client
	bucket string
	key    string
}

// NewS3Destination creates an S3 destination. A non-empty endpoint enables
// path-style addressing (MinIO and similar).
func NewS3Destination(ctx context.Context, cfg config.S3) (*S3Destination, error) {
	if cfg.Bucket == "" {
		return nil, ErrNoBucket
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	key := cfg.Key
	if key == "" {
		key = defaultS3Key
	}

	return &S3Destination{
		client: s3.NewFromConfig(awsCfg, s3opts...),
		bucket: cfg.Bucket,
		key:    key,
	}, nil
}

// Key is the object key written to.
func (d *S3Destination) Key() string {
	return d.key
}

func (d *S3Destination) Write(ctx context.Context, data []byte) error {
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(d.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3 put object: %w", err)
	}

	return nil
}
