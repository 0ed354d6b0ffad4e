package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

type S3AssetSinkCredentials struct {
	AccessKey string
	SecretKey string
}

type S3AssetSink struct {
	svc      *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

type S3AssetSinkOpts struct {
	Bucket         string
	Prefix         string
	Region         string
	Endpoint       string
	ForcePathStyle bool
	Credentials    S3AssetSinkCredentials

	// HTTPClient overrides the client used by the SDK.
	HTTPClient *http.Client
}

func NewS3AssetSink(ctx context.Context, opts S3AssetSinkOpts) (*S3AssetSink, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket cannot be empty")
	}

	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")

	if opts.Credentials.AccessKey != "" && opts.Credentials.SecretKey != "" {
		accessKey = opts.Credentials.AccessKey
		secretKey = opts.Credentials.SecretKey
	}

	cfg, err := getAWSConfig(ctx, accessKey, secretKey, opts.Region, opts.HTTPClient)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	svc := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.ForcePathStyle {
			o.UsePathStyle = true
		}
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})

	return &S3AssetSink{
		svc:      svc,
		uploader: manager.NewUploader(svc),
		bucket:   opts.Bucket,
		prefix:   strings.Trim(opts.Prefix, "/"),
	}, nil
}

func getAWSConfig(ctx context.Context, accessKey string, secretKey string, region string, httpClient *http.Client) (aws.Config, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}

	if httpClient != nil {
		loadOpts = append(loadOpts, config.WithHTTPClient(httpClient))
	}

	if accessKey != "" && secretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}

	return config.LoadDefaultConfig(ctx, loadOpts...)
}

func (s *S3AssetSink) Root() string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.prefix)
}

// Key maps a relative asset path onto an object key under the sink prefix.
// Backslashes are treated as separators so keys are the same on every platform.
func (s *S3AssetSink) Key(relPath string) string {
	key := strings.ReplaceAll(relPath, "\\", "/")
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

func (s *S3AssetSink) Put(ctx context.Context, relPath string, data []byte) (string, error) {
	if relPath == "" {
		return s.Root(), ErrEmptyPath
	}

	key := s.Key(relPath)
	location := fmt.Sprintf("s3://%s/%s", s.bucket, key)

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return location, fmt.Errorf("failed to upload object: %w", err)
	}

	log.Debug().Str("bucket", s.bucket).Str("key", key).Msg("uploaded asset")
	return location, nil
}

func (s *S3AssetSink) Close() error {
	return nil
}
