package lode

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/justapithecus/lode/lode"
	lodes3 "github.com/justapithecus/lode/lode/s3"
)

// s3MaxAttempts bounds SDK retries per artifact write. Upload failures are
// logged and never fail a run, so a stalled bucket must not stall CI.
const s3MaxAttempts = 3

var bucketName = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

// S3Config locates the artifact bucket. Credentials always come from the
// AWS default chain.
type S3Config struct {
	Bucket string
	Prefix string
	// Region overrides the chain's region.
	Region string
	// Endpoint targets an S3-compatible provider such as MinIO or R2.
	Endpoint     string
	UsePathStyle bool
}

// Validate checks the bucket name and, when set, the endpoint URL.
func (c *S3Config) Validate() error {
	var errs []error
	switch {
	case c.Bucket == "":
		errs = append(errs, errors.New("S3 bucket is required"))
	case !bucketName.MatchString(c.Bucket):
		errs = append(errs, fmt.Errorf("invalid S3 bucket name %q", c.Bucket))
	}
	if c.Endpoint != "" {
		if u, err := url.Parse(c.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("invalid S3 endpoint %q (want scheme://host)", c.Endpoint))
		}
	}
	return errors.Join(errs...)
}

// ParseS3Path splits "bucket/prefix", "bucket" or "s3://bucket/prefix/"
// into bucket and a prefix without surrounding slashes.
func ParseS3Path(path string) (bucket, prefix string) {
	path = strings.TrimPrefix(path, "s3://")
	bucket, prefix, _ = strings.Cut(path, "/")
	return bucket, strings.Trim(prefix, "/")
}

func (c S3Config) clientOptions(o *s3.Options) {
	if c.Endpoint != "" {
		endpoint := c.Endpoint
		o.BaseEndpoint = &endpoint
	}
	o.UsePathStyle = c.UsePathStyle
	o.RetryMaxAttempts = s3MaxAttempts
}

// NewS3Factory builds a Lode store factory backed by S3. The client is
// shared by every store the factory opens.
func NewS3Factory(ctx context.Context, s3cfg S3Config) (lode.StoreFactory, error) {
	if err := s3cfg.Validate(); err != nil {
		return nil, err
	}

	var loadOpts []func(*config.LoadOptions) error
	if s3cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(s3cfg.Region))
	}
	awsConfig, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, wrap(OpOpen, "s3://"+s3cfg.Bucket, err)
	}
	client := s3.NewFromConfig(awsConfig, s3cfg.clientOptions)

	return func() (lode.Store, error) {
		return lodes3.New(client, lodes3.Config{Bucket: s3cfg.Bucket, Prefix: s3cfg.Prefix})
	}, nil
}

// NewS3Store opens a run Store on S3.
func NewS3Store(ctx context.Context, cfg Config, s3cfg S3Config) (*Store, error) {
	factory, err := NewS3Factory(ctx, s3cfg)
	if err != nil {
		return nil, err
	}
	return NewStoreWithFactory(cfg, factory)
}
