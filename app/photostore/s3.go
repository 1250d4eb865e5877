package photostore

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tstore-shop/account-service/app/models"
)

// Config holds the S3/MinIO settings for the photo bucket.
type Config struct {
	Endpoint        string // custom endpoint for MinIO/R2; empty for real S3
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	UsePathStyle    bool // true for MinIO
	Bucket          string
	CDNBaseURL      string // base URL photo URLs are built from
}

// S3Store stores account photos in an S3-compatible bucket.
type S3Store struct {
	client     *s3.Client
	bucket     string
	cdnBaseURL string
	log        zerolog.Logger
}

// NewS3Store creates an S3 client configured for MinIO, R2 or AWS.
func NewS3Store(cfg Config, log zerolog.Logger) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	}
	if cfg.Endpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               cfg.Endpoint,
				HostnameImmutable: true,
			}, nil
		})
		opts = append(opts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Store{
		client:     client,
		bucket:     cfg.Bucket,
		cdnBaseURL: cfg.CDNBaseURL,
		log:        log.With().Str("component", "photo_store").Logger(),
	}, nil
}

// Upload writes the photo bytes under an opaque key and returns the stored
// photo reference.
func (s *S3Store) Upload(ctx context.Context, data io.Reader, size int64, contentType string) (models.Photo, error) {
	key := "users/" + uuid.NewString()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          data,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return models.Photo{}, fmt.Errorf("failed to put object %s: %w", key, err)
	}

	s.log.Debug().Str("key", key).Int64("size", size).Msg("photo uploaded")
	return models.Photo{
		ID:  key,
		URL: s.cdnBaseURL + "/" + key,
	}, nil
}

// Delete removes a stored photo by its reference id.
func (s *S3Store) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(id),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", id, err)
	}
	return nil
}

// EnsureBucket creates the photo bucket if it does not exist yet. Useful for
// local MinIO where buckets are not provisioned out of band.
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}
	s.log.Info().Str("bucket", s.bucket).Msg("creating bucket")
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}
