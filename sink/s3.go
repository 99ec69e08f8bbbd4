package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/ZaguanLabs/sitelai"
)

// Errors returned (wrapped in *sitelai.WriteError) by S3Writer.
var (
	ErrAccessDenied       = errors.New("access denied")
	ErrBucketNotFound     = errors.New("bucket not found")
	ErrServiceUnavailable = errors.New("storage service unavailable")
	ErrInvalidConfig      = errors.New("invalid storage configuration")
)

// S3Client is the subset of the S3 API used by S3Writer.
type S3Client interface {
	PutObject(ctx context.Context, params *s3aws.PutObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.PutObjectOutput, error)
}

// S3Config configures the bucket that receives translated pages.
type S3Config struct {
	Bucket         string
	Region         string
	Prefix         string // Key prefix, e.g. "site/"
	AccessKeyID    string
	SecretKey      string
	Endpoint       string        // For S3-compatible services like MinIO
	ForcePathStyle bool          // Required for MinIO and some S3-compatible services
	CacheControl   string        // Optional Cache-Control header for every object
	UploadTimeout  time.Duration // Zero relies on the caller's deadline
}

// S3Writer uploads documents to an S3 bucket.
type S3Writer struct {
	client        S3Client
	bucket        string
	prefix        string
	cacheControl  string
	uploadTimeout time.Duration
}

// NewS3Client builds an S3 client from cfg. Static credentials are used
// when both keys are set; otherwise the default AWS credential chain applies.
func NewS3Client(ctx context.Context, cfg S3Config, httpClient *http.Client) (*s3aws.Client, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("%w: region is required", ErrInvalidConfig)
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
		))
	}
	if httpClient != nil {
		opts = append(opts, config.WithHTTPClient(httpClient))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3aws.NewFromConfig(awsConfig, func(o *s3aws.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	}), nil
}

// NewS3Writer creates a writer for cfg.Bucket using client.
func NewS3Writer(client S3Client, cfg S3Config) (*S3Writer, error) {
	if client == nil || cfg.Bucket == "" {
		return nil, ErrInvalidConfig
	}

	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}

	return &S3Writer{
		client:        client,
		bucket:        cfg.Bucket,
		prefix:        prefix,
		cacheControl:  cfg.CacheControl,
		uploadTimeout: cfg.UploadTimeout,
	}, nil
}

// Key returns the object key a document name is stored under.
func (w *S3Writer) Key(name string) string {
	return w.prefix + name
}

// Write implements Writer.
func (w *S3Writer) Write(ctx context.Context, name string, data []byte) error {
	clean, err := cleanName(name)
	if err != nil {
		return &sitelai.WriteError{Path: name, Cause: err}
	}
	key := w.Key(clean)

	if w.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.uploadTimeout)
		defer cancel()
	}

	input := &s3aws.PutObjectInput{
		Bucket:        aws.String(w.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType(path.Base(clean))),
	}
	if w.cacheControl != "" {
		input.CacheControl = aws.String(w.cacheControl)
	}

	if _, err := w.client.PutObject(ctx, input); err != nil {
		return &sitelai.WriteError{
			Path:  "s3://" + w.bucket + "/" + key,
			Cause: classifyS3Error(err),
		}
	}
	return nil
}

// classifyS3Error maps S3 failures onto the sentinel errors above.
func classifyS3Error(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return fmt.Errorf("%w: %v", ErrBucketNotFound, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch code := apiErr.ErrorCode(); code {
		case "AccessDenied":
			return fmt.Errorf("%w: %v", ErrAccessDenied, err)
		case "NoSuchBucket":
			return fmt.Errorf("%w: %v", ErrBucketNotFound, err)
		case "SlowDown", "ServiceUnavailable", "RequestTimeout":
			return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
		default:
			return fmt.Errorf("put object failed (code: %s): %w", code, err)
		}
	}

	return fmt.Errorf("put object failed: %w", err)
}

// Verify S3Writer implements Writer
var _ Writer = (*S3Writer)(nil)
