package ingest

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config addresses an S3 compatible endpoint (AWS or MinIO).
type S3Config struct {
	Region          string
	Endpoint        string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
}

// S3Object is a parsed s3://bucket/key location.
type S3Object struct {
	Bucket string
	Key    string
}

// IsS3URI reports whether location uses the s3:// scheme.
func IsS3URI(location string) bool {
	return strings.HasPrefix(strings.ToLower(location), "s3://")
}

// ParseS3URI splits s3://bucket/key.
func ParseS3URI(location string) (S3Object, error) {
	if !IsS3URI(location) {
		return S3Object{}, fmt.Errorf("not an s3 uri: %q", location)
	}
	rest := location[len("s3://"):]
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || strings.TrimLeft(key, "/") == "" {
		return S3Object{}, fmt.Errorf("s3 uri must be s3://bucket/key: %q", location)
	}
	return S3Object{Bucket: bucket, Key: strings.TrimLeft(key, "/")}, nil
}

func newS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// FetchS3 opens the object body; the caller closes it.
func FetchS3(ctx context.Context, cfg S3Config, obj S3Object) (io.ReadCloser, error) {
	client, err := newS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(obj.Bucket), Key: aws.String(obj.Key)})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", obj.Bucket, obj.Key, err)
	}
	return out.Body, nil
}
