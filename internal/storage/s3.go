package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options configures an S3-compatible backend such as MinIO.
type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// s3API is the subset of *s3.Client the store uses.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3ImageStore struct {
	client   s3API
	bucket   string
	endpoint string
	now      func() time.Time
}

func NewS3ImageStore(ctx context.Context, opts S3Options) (*S3ImageStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(opts.Endpoint)
		o.UsePathStyle = true
	})

	return newS3ImageStore(client, opts.Bucket, opts.Endpoint), nil
}

func newS3ImageStore(client s3API, bucket, endpoint string) *S3ImageStore {
	return &S3ImageStore{client: client, bucket: bucket, endpoint: endpoint, now: time.Now}
}

func (s *S3ImageStore) prefix() string {
	return s.endpoint + "/" + s.bucket + "/"
}

func (s *S3ImageStore) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	key := objectName(s.now(), name)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put image object: %w", err)
	}

	return s.prefix() + key, nil
}

func (s *S3ImageStore) Delete(ctx context.Context, imgPath string) error {
	key := keyFromPath(imgPath, s.prefix())
	if key == "" {
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete image object: %w", err)
	}
	return nil
}
