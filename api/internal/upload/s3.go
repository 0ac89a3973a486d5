package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"food-lens/api/internal/config"
	"food-lens/api/internal/util"
)

const s3Prefix = "uploads/"

// S3Store puts uploads into an S3-compatible bucket (AWS, R2, MinIO).
type S3Store struct {
	client *s3.Client
	bucket string
	log    *zap.Logger
}

func NewS3Store(ctx context.Context, cfg config.UploadConfig, log *zap.Logger) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, bucket: cfg.S3Bucket, log: log}, nil
}

func (s *S3Store) Put(ctx context.Context, name string, data []byte) (string, error) {
	key := s3Prefix + uuid.New().String() + "-" + SanitizeFilename(name)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(util.SniffImageMIME(data)),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		s.log.Error("Failed to upload file to S3", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("put s3://%s/%s: %w", s.bucket, key, err)
	}

	s.log.Debug("File uploaded to S3", zap.String("key", key), zap.Int("size", len(data)))
	return key, nil
}

func (s *S3Store) Get(ctx context.Context, location string) ([]byte, error) {
	if !strings.HasPrefix(location, s3Prefix) {
		return nil, fmt.Errorf("key %q is outside %s", location, s3Prefix)
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(location),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, location, err)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", s.bucket, location, err)
	}
	return b, nil
}

// NewStore picks the S3 store when a bucket is configured and the local dir otherwise.
func NewStore(ctx context.Context, cfg config.UploadConfig, log *zap.Logger) (Store, error) {
	if cfg.UseS3() {
		return NewS3Store(ctx, cfg, log)
	}
	return NewLocalStore(cfg.Dir)
}
