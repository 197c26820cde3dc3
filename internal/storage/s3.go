package storage

import (
	"bytes"
	"context"
	"strings"

	"github.com/Kapsk2801/Lost-Found/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

// An S3 stores objects in an S3 compatible bucket.
type S3 struct {
	client *s3.Client
	bucket string
	public string
}

// NewS3 returns an S3 store.
// Static credentials are used when provided, the default AWS chain otherwise.
func NewS3(ctx context.Context, cfg config.S3) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage.s3.bucket not found")
	}

	var options []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		options = append(options, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		options = append(options, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awscfg, err := awsconfig.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return nil, errors.Wrap(err, "could not load AWS configuration")
	}

	client := s3.NewFromConfig(awscfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})

	return &S3{
		client: client,
		bucket: cfg.Bucket,
		public: publicURL(cfg),
	}, nil
}

// Put stores the object under the given key and returns its public URL.
func (s *S3) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", errors.Wrap(err, "could not upload object")
	}

	return s.public + "/" + key, nil
}

// Delete removes the object stored under the given key.
func (s *S3) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return errors.Wrap(err, "could not delete object")
}

// Key returns the key of the object served at the given URL.
func (s *S3) Key(url string) string {
	return keyFromURL(s.public, url)
}

func publicURL(cfg config.S3) string {
	if cfg.PublicURL != "" {
		return strings.TrimSuffix(cfg.PublicURL, "/")
	}
	if cfg.Endpoint != "" {
		return strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	return "https://" + cfg.Bucket + ".s3." + region + ".amazonaws.com"
}
