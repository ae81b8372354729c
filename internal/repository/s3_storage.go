package repository

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appConfig "github.com/palaver-chat/palaver/internal/config"
	"github.com/palaver-chat/palaver/internal/domain"
)

// S3StorageProvider implements domain.StorageProvider against any
// S3-compatible store (AWS, SeaweedFS, MinIO)
type S3StorageProvider struct {
	client    *s3.Client
	bucket    string
	publicURL string
	enabled   bool
}

// NewS3StorageProvider creates the S3 provider. A disabled provider is still
// a valid selection candidate; the client is only built and the bucket only
// checked when the provider is enabled.
func NewS3StorageProvider(ctx context.Context, cfg appConfig.S3Config) (*S3StorageProvider, error) {
	if !cfg.Enabled {
		return &S3StorageProvider{enabled: false}, nil
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config, %v", err)
	}

	// Path-style addressing is required for most S3-compatible stores
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	provider := &S3StorageProvider{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: cfg.Endpoint,
		enabled:   true,
	}

	if err := provider.ensureBucket(ctx); err != nil {
		return nil, err
	}

	return provider, nil
}

// Enabled reports whether the provider was switched on in configuration
func (p *S3StorageProvider) Enabled() bool {
	return p.enabled
}

// Save uploads the binary to S3 and returns the object URL
func (p *S3StorageProvider) Save(ctx context.Context, content io.Reader, file *domain.File) (string, error) {
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(p.objectKey(file)),
		Body:        content,
		ContentType: aws.String(file.Type),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return p.ResolveURL(file), nil
}

// ResolveURL returns the object URL for a stored record.
// Format: {Endpoint}/{Bucket}/{Key}
func (p *S3StorageProvider) ResolveURL(file *domain.File) string {
	return fmt.Sprintf("%s/%s/%s", p.publicURL, p.bucket, p.objectKey(file))
}

// objectKey namespaces objects by record id so renames and duplicate
// filenames never collide
func (p *S3StorageProvider) objectKey(file *domain.File) string {
	return fmt.Sprintf("%s/%s", file.ID, file.Name)
}

// ensureBucket checks if bucket exists, creating it if necessary
func (p *S3StorageProvider) ensureBucket(ctx context.Context) error {
	_, err := p.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(p.bucket),
	})

	if err != nil {
		_, err = p.client.CreateBucket(ctx, &s3.CreateBucketInput{
			Bucket: aws.String(p.bucket),
		})
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", p.bucket, err)
		}
	}
	return nil
}
