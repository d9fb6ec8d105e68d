// Package s3store stores gallery photos in any S3-compatible bucket (AWS S3,
// MinIO, R2). It is selected with STORAGE_DRIVER=s3.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
	"tailor-gallery-backend/internal/assets"
)

type Config struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	UsePathStyle  bool
}

// PutObjectAPI is the subset of the S3 client used for uploads.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type ObjectStore struct {
	client        PutObjectAPI
	bucket        string
	publicBaseURL string
	logger        *zap.Logger
}

var _ assets.ObjectStore = (*ObjectStore)(nil)

func New(ctx context.Context, cfg Config, logger *zap.Logger) (*ObjectStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("storage credentials are required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint != "" {
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid storage endpoint: %w", err)
		}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	publicBase := cfg.PublicBaseURL
	if publicBase == "" {
		publicBase = defaultPublicBase(endpoint, region, cfg.Bucket, cfg.UsePathStyle)
	}

	return NewWithClient(client, cfg.Bucket, publicBase, logger), nil
}

// NewWithClient builds a store on an existing client; publicBaseURL is the
// prefix that object keys are appended to when building retrieval URLs.
func NewWithClient(client PutObjectAPI, bucket, publicBaseURL string, logger *zap.Logger) *ObjectStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ObjectStore{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}
}

func (s *ObjectStore) PutObject(ctx context.Context, key string, body io.Reader, contentType string) error {
	if key == "" {
		return errors.New("storage key is required")
	}

	// The SDK needs a seekable body to sign plain-HTTP requests.
	if _, ok := body.(io.ReadSeeker); !ok {
		data, err := io.ReadAll(body)
		if err != nil {
			return fmt.Errorf("failed to read object body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}

	s.logger.Debug("object stored", zap.String("bucket", s.bucket), zap.String("key", key))
	return nil
}

// PublicURL joins the public base URL and key, escaping each key segment.
func (s *ObjectStore) PublicURL(key string) string {
	return s.publicBaseURL + "/" + assets.EscapeKey(key)
}

func defaultPublicBase(endpoint, region, bucket string, pathStyle bool) string {
	if endpoint == "" {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	if pathStyle {
		return endpoint + "/" + bucket
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return endpoint + "/" + bucket
	}
	return fmt.Sprintf("%s://%s.%s", u.Scheme, bucket, u.Host)
}
