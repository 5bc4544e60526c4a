package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"

	"github.com/nkjain92/gpt-image-1/pkg/metrics"
)

// NewS3Client builds an S3 client from the default AWS credential chain.
// A non-empty endpoint switches to path-style addressing for S3-compatible
// servers such as MinIO.
func NewS3Client(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// S3Repository stores images as objects under a key prefix in one bucket.
type S3Repository struct {
	client *s3.Client
	bucket string
	prefix string
	label  string
	reg    *metrics.Registry
}

// NewS3Repository keys objects as "<label>/<name>".
func NewS3Repository(client *s3.Client, bucket, label string, reg *metrics.Registry) *S3Repository {
	return &S3Repository{client: client, bucket: bucket, prefix: label + "/", label: label, reg: reg}
}

// Save buffers the stream so the object is only created after a complete read.
func (r *S3Repository) Save(ctx context.Context, name string, src io.Reader) (Object, error) {
	if !ValidName(name) {
		return Object{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return Object{}, fmt.Errorf("read %s: %w", name, err)
	}

	logger := log.Ctx(ctx).With().Str("store", r.label).Str("bucket", r.bucket).Str("image", name).Logger()
	logger.Debug().Msg("uploading to s3")

	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(r.prefix + name),
		ContentType: aws.String(ContentType(name)),
		Body:        bytes.NewReader(data),
	})
	if err != nil {
		return Object{}, fmt.Errorf("put %s: %w", name, err)
	}

	logger.Info().Int("bytes", len(data)).Msg("image saved to s3")
	r.reg.Inc(ctx, metrics.ImagesStored, metrics.Labels{"store": r.label}, 1)
	r.reg.Inc(ctx, metrics.ImagesBytesStored, metrics.Labels{"store": r.label}, int64(len(data)))

	return Object{Name: name, ModTime: time.Now(), Size: int64(len(data))}, nil
}

func (r *S3Repository) Get(ctx context.Context, name string) (io.ReadCloser, Object, error) {
	if !ValidName(name) {
		return nil, Object{}, ErrNotFound
	}
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.prefix + name),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, Object{}, ErrNotFound
		}
		return nil, Object{}, fmt.Errorf("get %s: %w", name, err)
	}
	return out.Body, Object{Name: name, ModTime: aws.ToTime(out.LastModified)}, nil
}

// List pages through the prefix. Keys nested below the prefix are ignored
// so the store stays flat.
func (r *S3Repository) List(ctx context.Context) ([]Object, error) {
	var out []Object
	p := s3.NewListObjectsV2Paginator(r.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(r.bucket),
		Prefix: aws.String(r.prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", r.prefix, err)
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), r.prefix)
			if !ValidName(name) {
				continue
			}
			out = append(out, Object{Name: name, ModTime: aws.ToTime(obj.LastModified)})
		}
	}
	return out, nil
}

func (r *S3Repository) Delete(ctx context.Context, name string) error {
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.prefix + name),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}
