package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"losadmin/internal/config"
	"losadmin/internal/utils/logger"
)

const reportPrefix = "reports/"

// S3Store uploads artifacts to a bucket and returns pre-signed GET URLs.
type S3Store struct {
	client *s3.Client
	bucket string
	expiry time.Duration
	logger *logger.Logger
}

func NewS3Store(ctx context.Context, cfg config.S3Config, expiry time.Duration) (*S3Store, error) {
	log := logger.New("s3_store")

	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, log.Error("S3 credentials are empty ❌", fmt.Errorf("accessKey or secretKey is empty"))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
		awsconfig.WithRetryMode(aws.RetryModeStandard),
		awsconfig.WithRetryMaxAttempts(3),
	)
	if err != nil {
		return nil, log.Error("Unable to load SDK config ❌", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.BucketName)}); err != nil {
		return nil, log.Error("Failed to verify S3 bucket ❌", err)
	}

	log.Success("S3 artifact store initialized for bucket %s", cfg.BucketName)
	return NewS3StoreWithClient(client, cfg.BucketName, expiry), nil
}

// NewS3StoreWithClient wraps an already configured client.
func NewS3StoreWithClient(client *s3.Client, bucket string, expiry time.Duration) *S3Store {
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &S3Store{
		client: client,
		bucket: bucket,
		expiry: expiry,
		logger: logger.New("s3_store"),
	}
}

func (s *S3Store) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := reportPrefix + name
	s.logger.Info("📤 Uploading artifact %s", key)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", s.logger.Error("Failed to upload artifact %s", err, key)
	}

	return s.SignedURL(ctx, key)
}

// SignedURL returns a pre-signed GET URL for key valid for the configured expiry.
func (s *S3Store) SignedURL(ctx context.Context, key string) (string, error) {
	presigned, err := s3.NewPresignClient(s.client).PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", s.logger.Error("Failed to generate pre-signed URL for %s", err, key)
	}
	return presigned.URL, nil
}
