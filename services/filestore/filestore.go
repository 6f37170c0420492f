package filestore

import (
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/belleza/salon/core"
)

// Store saves uploaded files and returns the URL they are served at.
type Store interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (url string, err error)
	Delete(ctx context.Context, name string) error
}

// New returns the Store selected by conf.Upload.Backend.
func New(ctx context.Context, conf *core.Config) (Store, error) {
	switch strings.ToLower(conf.Upload.Backend) {
	case "", "local":
		return NewLocalStore(conf.Upload.Dir, conf.Upload.BaseURL)
	case "gcs":
		return NewGCSStore(ctx, conf.Upload.Bucket, conf.Upload.BaseURL, conf.Upload.CredentialsFile)
	default:
		return nil, errors.Errorf("unknown upload backend %q", conf.Upload.Backend)
	}
}

func joinURL(base, name string) string {
	return strings.TrimSuffix(base, "/") + "/" + name
}
