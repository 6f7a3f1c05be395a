// Package s3 reads records from objects in S3-compatible storage
// (AWS S3 or MinIO) under s3://bucket/key locations.
package s3

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/custodia-labs/gridview/internal/connectors/filesystem"
	"github.com/custodia-labs/gridview/internal/core/domain"
	"github.com/custodia-labs/gridview/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.RecordSource = (*Source)(nil)

// DefaultRegion is used when none is configured.
const DefaultRegion = "us-east-1"

// Config holds explicit construction parameters. Credentials come from the
// default AWS chain (environment, shared config, instance role).
type Config struct {
	Region    string
	Endpoint  string // optional; set for MinIO and other S3-compatible stores
	PathStyle bool
}

// Source loads records from S3 objects. A key ending in "/" loads and
// concatenates every supported object under that prefix.
type Source struct {
	client *s3.Client
}

// NewSource creates an S3 record source from Config.
func NewSource(ctx context.Context, cfg Config) (*Source, error) {
	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle || cfg.Endpoint != "" {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewSourceWithClient(client), nil
}

// NewSourceWithClient wraps an existing client.
func NewSourceWithClient(client *s3.Client) *Source {
	return &Source{client: client}
}

// Scheme returns "s3".
func (s *Source) Scheme() string {
	return domain.SchemeS3
}

// Load reads the object or prefix named by path ("bucket/key").
func (s *Source) Load(ctx context.Context, path string) (domain.RecordSet, error) {
	bucket, key, ok := strings.Cut(path, "/")
	if !ok || bucket == "" {
		return domain.RecordSet{}, fmt.Errorf("%w: s3 location must be bucket/key, got %q", domain.ErrInvalidInput, path)
	}
	if key == "" || strings.HasSuffix(key, "/") {
		return s.loadPrefix(ctx, bucket, key)
	}
	return s.loadObject(ctx, bucket, key)
}

func (s *Source) loadObject(ctx context.Context, bucket, key string) (domain.RecordSet, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &bucket, Key: &key})
	if err != nil {
		return domain.RecordSet{}, wrapError(err, bucket, key)
	}
	defer out.Body.Close()
	return filesystem.Decode(out.Body, key)
}

func (s *Source) loadPrefix(ctx context.Context, bucket, prefix string) (domain.RecordSet, error) {
	set := domain.RecordSet{Records: []domain.Record{}}
	seen := make(map[string]bool)
	objects := 0

	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: &bucket,
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return domain.RecordSet{}, wrapError(err, bucket, prefix)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !filesystem.Supported(key) {
				continue
			}
			part, err := s.loadObject(ctx, bucket, key)
			if err != nil {
				return domain.RecordSet{}, err
			}
			objects++
			for _, col := range part.Columns {
				if !seen[col] {
					seen[col] = true
					set.Columns = append(set.Columns, col)
				}
			}
			set.Records = append(set.Records, part.Records...)
		}
	}
	if objects == 0 {
		return domain.RecordSet{}, fmt.Errorf("s3://%s/%s: no supported objects: %w", bucket, prefix, domain.ErrNotFound)
	}
	return set, nil
}

func wrapError(err error, bucket, key string) error {
	var noKey *types.NoSuchKey
	var noBucket *types.NoSuchBucket
	var respErr *awshttp.ResponseError
	switch {
	case errors.As(err, &noKey), errors.As(err, &noBucket):
		return fmt.Errorf("s3://%s/%s: %w", bucket, key, domain.ErrNotFound)
	case errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound:
		return fmt.Errorf("s3://%s/%s: %w", bucket, key, domain.ErrNotFound)
	}
	return fmt.Errorf("s3://%s/%s: %w", bucket, key, err)
}
