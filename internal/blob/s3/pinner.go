package s3blob

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/MayankSewatkar/vantagepoint/internal/domain"
)

// Pinner implements domain.Pinner by uploading objects to the pinning
// service bucket. The service pins every object it receives.
type Pinner struct {
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// NewPinner creates a Pinner that stores objects under prefix in the
// client's bucket.
func NewPinner(c *Client, prefix string) *Pinner {
	return &Pinner{
		uploader: manager.NewUploader(c.s3),
		bucket:   c.bucket,
		prefix:   prefix,
	}
}

// Key returns the object key used for path.
func (p *Pinner) Key(path string) string {
	return p.prefix + path
}

// Pin uploads data under path.
func (p *Pinner) Pin(ctx context.Context, path string, data io.Reader, contentType string) error {
	_, err := p.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(p.Key(path)),
		Body:        data,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3blob: pin %s: %w", path, err)
	}
	return nil
}

var _ domain.Pinner = (*Pinner)(nil)
