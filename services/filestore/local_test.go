package filestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/belleza/salon/core"
)

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewLocalStore(dir, "/uploads/")
	require.NoError(t, err)

	url, err := s.Save(ctx, "a.png", "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/a.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	_, err = s.Save(ctx, "a.png", "image/png", strings.NewReader("again"))
	assert.Error(t, err, "existing files are never overwritten")

	for _, name := range []string{"", "..", "../evil.png", "sub/dir.png"} {
		_, err = s.Save(ctx, name, "image/png", strings.NewReader("x"))
		assert.Error(t, err, name)
	}

	require.NoError(t, s.Delete(ctx, "a.png"))
	require.NoError(t, s.Delete(ctx, "a.png"))
	_, err = os.Stat(filepath.Join(dir, "a.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestNew(t *testing.T) {
	conf := &core.Config{}
	conf.Upload.Dir = t.TempDir()

	s, err := New(context.Background(), conf)
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, s)

	conf.Upload.Backend = "ftp"
	_, err = New(context.Background(), conf)
	assert.Error(t, err)
}
