package s3

import (
	"context"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/houi19lb/Gstore-theme-sub001/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	f.body, _ = io.ReadAll(params.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestPayloadArchiveAdapter_Archive(t *testing.T) {
	putter := &fakePutter{}
	a := NewPayloadArchiveAdapter(putter, "audit", "webhooks")
	a.now = func() time.Time { return time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC) }

	err := a.Archive(context.Background(), model.GatewayPix, "tx/1", []byte(`{"status":"paid"}`))

	require.NoError(t, err)
	assert.Equal(t, "audit", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "application/json", aws.ToString(putter.input.ContentType))
	assert.Regexp(t, regexp.MustCompile(`^webhooks/pix/2026/03/10/tx_1-[0-9a-f-]{36}\.json$`), aws.ToString(putter.input.Key))
	assert.Equal(t, `{"status":"paid"}`, string(putter.body))
}

func TestPayloadArchiveAdapter_ArchiveError(t *testing.T) {
	a := NewPayloadArchiveAdapter(&fakePutter{err: errors.New("access denied")}, "audit", "")

	err := a.Archive(context.Background(), model.GatewayLinkCheckout, "lnk_1", []byte(`{}`))

	assert.ErrorContains(t, err, "access denied")
}

func TestSanitizeRef(t *testing.T) {
	assert.Equal(t, "abc-1_2", sanitizeRef("abc-1_2"))
	assert.Equal(t, "a_b_c", sanitizeRef("a/b.c"))
	assert.Equal(t, "unknown", sanitizeRef(""))
}
