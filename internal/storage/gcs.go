package storage

import (
	"context"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSBucket serves both sides of the source-file lifecycle: uploads from
// the config endpoints and downloads from the turn pipeline. Objects stay
// private; the stored path is the object name, not a URL.
type GCSBucket struct {
	client *gcs.Client
	bucket string
}

func NewGCSBucket(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCSBucket, error) {
	c, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GCSBucket{client: c, bucket: bucket}, nil
}

func (b *GCSBucket) Close() error { return b.client.Close() }

func (b *GCSBucket) Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (string, error) {
	obj := b.client.Bucket(b.bucket).Object(objectName)

	w := obj.NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	return objectName, nil
}

func (b *GCSBucket) Download(ctx context.Context, objectName string) ([]byte, error) {
	rc, err := b.client.Bucket(b.bucket).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}
