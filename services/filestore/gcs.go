package filestore

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

type GCSStore struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

var _ Store = (*GCSStore)(nil)

// NewGCSStore stores files in a bucket. baseURL defaults to the bucket's public URL.
func NewGCSStore(ctx context.Context, bucket, baseURL, credentialsFile string) (*GCSStore, error) {
	if bucket == "" {
		return nil, errors.New("GCS bucket is required")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating GCS client")
	}
	if baseURL == "" || baseURL[0] == '/' {
		baseURL = "https://storage.googleapis.com/" + bucket
	}
	return &GCSStore{client: client, bucket: bucket, baseURL: baseURL}, nil
}

func (s *GCSStore) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	obj := s.client.Bucket(s.bucket).Object(name).If(storage.Conditions{DoesNotExist: true})
	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000"

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", errors.Wrapf(err, "uploading %s", name)
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrapf(err, "finalizing %s", name)
	}
	return joinURL(s.baseURL, name), nil
}

func (s *GCSStore) Delete(ctx context.Context, name string) error {
	err := s.client.Bucket(s.bucket).Object(name).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return errors.Wrapf(err, "deleting %s", name)
	}
	return nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
