package tabular

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/de-tools/invoice-reconciler/pkg/models/domain"
)

const s3Scheme = "s3://"

// ObjectGetter is the part of the S3 client the opener needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Opener opens input locations: local paths, or s3://bucket/key objects.
// An Opener is safe for concurrent use.
type Opener struct {
	region string

	mu     sync.Mutex
	client ObjectGetter
}

type OpenerOption func(*Opener)

func WithRegion(region string) OpenerOption {
	return func(o *Opener) { o.region = region }
}

// WithS3Client replaces the lazily created S3 client.
func WithS3Client(client ObjectGetter) OpenerOption {
	return func(o *Opener) { o.client = client }
}

func NewOpener(opts ...OpenerOption) *Opener {
	o := &Opener{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Opener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if !strings.HasPrefix(location, s3Scheme) {
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("could not open file %s: %w", location, err)
		}
		return f, nil
	}

	bucket, key, err := splitS3Location(location)
	if err != nil {
		return nil, err
	}
	client, err := o.s3Client(ctx)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", location, err)
	}
	return out.Body, nil
}

// ReadTable opens location and reads it as a table.
func (o *Opener) ReadTable(ctx context.Context, location string) (table domain.Table, err error) {
	rc, err := o.Open(ctx, location)
	if err != nil {
		return table, err
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", location, cerr)
		}
	}()
	return Read(location, rc)
}

func (o *Opener) s3Client(ctx context.Context) (ObjectGetter, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.client != nil {
		return o.client, nil
	}
	var opts []func(*awsconfig.LoadOptions) error
	if o.region != "" {
		opts = append(opts, awsconfig.WithRegion(o.region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	o.client = s3.NewFromConfig(cfg)
	return o.client, nil
}

func splitS3Location(location string) (string, string, error) {
	rest := strings.TrimPrefix(location, s3Scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid S3 location %q: expected s3://bucket/key", location)
	}
	return bucket, key, nil
}
