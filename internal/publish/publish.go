// Package publish uploads pipeline outputs for downstream consumers.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Publisher stores a named blob somewhere the model training job can reach.
type Publisher interface {
	Publish(ctx context.Context, name string, data []byte) error
}

// S3Config configures the S3 publisher.
type S3Config struct {
	Bucket   string
	Prefix   string // key prefix, joined with the file name
	Region   string
	Endpoint string // S3-compatible services (MinIO, etc.)
	// Static credentials. Empty means the default AWS credential chain.
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	MaxAttempts     int // default 3
}

// putObjectAPI is the part of *s3.Client the publisher uses.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher uploads files to S3 or an S3-compatible store.
type S3Publisher struct {
	client  putObjectAPI
	cfg     S3Config
	backoff time.Duration
}

// Compile-time interface check.
var _ Publisher = (*S3Publisher)(nil)

// NewS3Publisher builds an S3 client from cfg.
func NewS3Publisher(ctx context.Context, cfg S3Config) (*S3Publisher, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.UsePathStyle
		})
	}

	return newS3Publisher(s3.NewFromConfig(awsCfg, s3Opts...), cfg), nil
}

func newS3Publisher(client putObjectAPI, cfg S3Config) *S3Publisher {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &S3Publisher{client: client, cfg: cfg, backoff: 200 * time.Millisecond}
}

// Key returns the object key for name.
func (p *S3Publisher) Key(name string) string {
	return path.Join(strings.Trim(p.cfg.Prefix, "/"), name)
}

// Publish uploads data under Key(name), retrying with doubling backoff.
func (p *S3Publisher) Publish(ctx context.Context, name string, data []byte) error {
	key := p.Key(name)
	wait := p.backoff

	var lastErr error
	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		_, lastErr = p.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(p.cfg.Bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType(name)),
		})
		if lastErr == nil {
			return nil
		}
		if attempt == p.cfg.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("publish %s: %w", key, ctx.Err())
		case <-time.After(wait):
		}
		wait *= 2
	}

	return fmt.Errorf("publish s3://%s/%s after %d attempts: %w", p.cfg.Bucket, key, p.cfg.MaxAttempts, lastErr)
}

func contentType(name string) string {
	switch path.Ext(name) {
	case ".csv":
		return "text/csv"
	case ".md":
		return "text/markdown"
	default:
		return "application/octet-stream"
	}
}
