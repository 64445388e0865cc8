package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

type S3Options struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string
}

// s3API is the subset of *s3.Client the store uses.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store puts uploads in an S3 bucket under <folder>/<yyyy>/<mm>/<uuid><ext>.
type S3Store struct {
	client  s3API
	bucket  string
	baseURL string
	now     func() time.Time
}

func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, errors.New("S3_BUCKET is required for the s3 media driver")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return newS3Store(s3.NewFromConfig(cfg), opts), nil
}

func newS3Store(client s3API, opts S3Options) *S3Store {
	baseURL := strings.TrimRight(opts.PublicURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
	}
	return &S3Store{client: client, bucket: opts.Bucket, baseURL: baseURL, now: time.Now}
}

func (s *S3Store) Driver() string { return "s3" }

func (s *S3Store) BaseURL() string { return s.baseURL }

func (s *S3Store) Save(ctx context.Context, upload Upload) (*StoredMedia, error) {
	folder, err := cleanFolder(upload.Folder)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	key := fmt.Sprintf("%s/%d/%02d/%s%s", folder, now.Year(), now.Month(), uuid.New().String(), ext)
	ct := contentType(upload.Filename)

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          upload.Body,
		ContentLength: aws.Int64(upload.Size),
		ContentType:   aws.String(ct),
		CacheControl:  aws.String("max-age=86400"),
		Metadata: map[string]string{
			"original-filename": filepath.Base(upload.Filename),
			"upload-timestamp":  now.Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	url := s.baseURL + "/" + key
	return &StoredMedia{Path: url, URL: url, ContentType: ct, Size: upload.Size}, nil
}

func (s *S3Store) Delete(ctx context.Context, path string) error {
	key := strings.TrimPrefix(path, s.baseURL+"/")
	if key == path || key == "" {
		return ErrInvalidPath
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}
