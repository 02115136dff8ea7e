package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/houi19lb/Gstore-theme-sub001/internal/model"
	"github.com/houi19lb/Gstore-theme-sub001/internal/port/outbound"
	"github.com/houi19lb/Gstore-theme-sub001/internal/shared/config"
)

// objectPutter is the subset of *s3.Client the archive needs.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewClient creates an S3 client for an S3-compatible endpoint.
func NewClient(ctx context.Context, cfg config.ArchiveConfig) (*s3.Client, error) {
	if !cfg.Enabled() {
		return nil, errors.New("incomplete archive configuration")
	}

	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")

	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(creds),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// PayloadArchiveAdapter implements PayloadArchivePort on an S3 bucket.
type PayloadArchiveAdapter struct {
	client objectPutter
	bucket string
	prefix string
	now    func() time.Time
}

// NewPayloadArchiveAdapter creates a new payload archive adapter.
func NewPayloadArchiveAdapter(client objectPutter, bucket, prefix string) *PayloadArchiveAdapter {
	return &PayloadArchiveAdapter{
		client: client,
		bucket: bucket,
		prefix: prefix,
		now:    time.Now,
	}
}

// Archive stores body as <prefix>/<kind>/<yyyy>/<mm>/<dd>/<ref>-<uuid>.json.
func (a *PayloadArchiveAdapter) Archive(ctx context.Context, kind model.GatewayKind, ref string, body []byte) error {
	key := a.objectKey(kind, ref)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

func (a *PayloadArchiveAdapter) objectKey(kind model.GatewayKind, ref string) string {
	day := a.now().UTC().Format("2006/01/02")
	name := fmt.Sprintf("%s-%s.json", sanitizeRef(ref), uuid.NewString())
	return path.Join(a.prefix, kind.String(), day, name)
}

// sanitizeRef keeps references usable as a single key segment.
func sanitizeRef(ref string) string {
	out := make([]rune, 0, len(ref))
	for _, r := range ref {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "unknown"
	}
	return string(out)
}

var _ outbound.PayloadArchivePort = (*PayloadArchiveAdapter)(nil)
