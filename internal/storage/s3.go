package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// PutObjectAPI is the part of the S3 client used for uploads.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads public-read objects to a single bucket.
type S3Store struct {
	client  PutObjectAPI
	bucket  string
	timeout time.Duration
	now     func() time.Time
}

// NewS3Store loads the default AWS credential chain for region.
func NewS3Store(ctx context.Context, region, bucket string, timeout time.Duration) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3StoreWithClient(s3.NewFromConfig(cfg), bucket, timeout), nil
}

func NewS3StoreWithClient(client PutObjectAPI, bucket string, timeout time.Duration) *S3Store {
	return &S3Store{client: client, bucket: bucket, timeout: timeout, now: time.Now}
}

func (s *S3Store) Upload(ctx context.Context, img *Image, entityType, entityID string) (string, error) {
	key := ObjectKey(entityType, entityID, img.Ext, s.now())

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(img.Data),
		ContentType:   aws.String(img.ContentType),
		ContentLength: aws.Int64(int64(len(img.Data))),
		ACL:           types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		log.Printf("[UPLOAD] [ERROR] s3 put %s failed: %v", key, err)
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	log.Printf("[UPLOAD] [INFO] stored s3://%s/%s", s.bucket, key)
	return s.URL(key), nil
}

// URL returns the public virtual-hosted URL of key.
func (s *S3Store) URL(key string) string {
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
}
