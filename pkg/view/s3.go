package view

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client used by S3Source.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads bundles from an S3 bucket.
//
// Example usage:
//
//	client := s3.New(s3.Options{Region: "eu-central-1", Credentials: creds})
//	src := view.NewS3Source(client, "fractals-assets", "views/")
type S3Source struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Source creates an S3 bundle source.
//
// Parameters:
//   - client: S3 client from aws-sdk-go-v2
//   - bucket: bucket name
//   - prefix: key prefix prepended to bundle names (e.g., "views/")
func NewS3Source(client S3API, bucket, prefix string) *S3Source {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Source{
		client: client,
		bucket: bucket,
		prefix: strings.TrimPrefix(prefix, "/"),
	}
}

// Key returns the object key for a bundle file.
func (s *S3Source) Key(file string) string {
	return s.prefix + strings.TrimPrefix(file, "/")
}

// Open implements Source.
func (s *S3Source) Open(ctx context.Context, file string) (io.ReadCloser, error) {
	key := s.Key(file)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if stderrors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrNotFound, s.bucket, key)
		}
		return nil, fmt.Errorf("s3 get s3://%s/%s: %w", s.bucket, key, err)
	}
	return out.Body, nil
}

// NewS3Client builds an S3 client for a region and optional endpoint.
// Credentials come from the standard AWS environment variables; when they
// are absent the client sends anonymous requests (public buckets).
func NewS3Client(region, endpoint string, getenv func(string) string) *s3.Client {
	opts := s3.Options{
		Region:      region,
		Credentials: envCredentials(getenv),
	}
	if endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

func envCredentials(getenv func(string) string) aws.CredentialsProvider {
	id := getenv("AWS_ACCESS_KEY_ID")
	secret := getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.AnonymousCredentials{}
	}
	creds := aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    getenv("AWS_SESSION_TOKEN"),
		Source:          "Environment",
	}
	return aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		return creds, nil
	})
}
