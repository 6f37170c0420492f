package echoapi_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/belleza/salon/apps/api/echo"
	"github.com/belleza/salon/core"
)

var (
	pngData = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	gifData = append([]byte("GIF89a"), bytes.Repeat([]byte{0}, 32)...)
)

type formFile struct {
	field, name string
	data        []byte
}

func newUploadRequest(t *testing.T, path, token string, files ...formFile) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, httptest.NewRecorder()
}

func Test_uploadApi_image(t *testing.T) {
	env := setup(t)
	token := getToken(t, env.conf, env.createAdmin(t))

	t.Run("auth required", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/v1/upload/image", "", formFile{"image", "a.png", pngData})
		env.serve(req, rec)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("no file", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/v1/upload/image", token)
		env.serve(req, rec)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"image": "no file uploaded"}`, rec.Body.String())
	})

	t.Run("not an image", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/v1/upload/image", token, formFile{"image", "notes.png", []byte("just some text")})
		env.serve(req, rec)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"image": "notes.png: only image files are allowed"}`, rec.Body.String())
	})

	t.Run("png", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/v1/upload/image", token, formFile{"image", "photo.jpeg", pngData})
		env.serve(req, rec)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var res UploadResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, "image/png", res.MimeType)
		assert.True(t, strings.HasSuffix(res.Filename, ".png"))
		assert.Equal(t, "/uploads/"+res.Filename, res.URL)
		assert.EqualValues(t, len(pngData), res.Size)

		stored, err := os.ReadFile(filepath.Join(env.conf.Upload.Dir, res.Filename))
		require.NoError(t, err)
		assert.Equal(t, pngData, stored)

		// uploads are served back
		req, rec = newRequest(http.MethodGet, res.URL)
		env.serve(req, rec)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, pngData, rec.Body.Bytes())
	})
}

func Test_uploadApi_images(t *testing.T) {
	env := setup(t, func(conf *core.Config) { conf.Upload.MaxFiles = 2 })
	token := getToken(t, env.conf, env.createStaffUser(t))

	countFiles := func(t *testing.T) int {
		entries, err := os.ReadDir(env.conf.Upload.Dir)
		require.NoError(t, err)
		return len(entries)
	}

	t.Run("too many files", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/v1/upload/images", token,
			formFile{"images", "a.png", pngData}, formFile{"images", "b.png", pngData}, formFile{"images", "c.png", pngData})
		env.serve(req, rec)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"images": "at most 2 files can be uploaded at once"}`, rec.Body.String())
	})

	t.Run("one bad file rejects the batch", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/v1/upload/images", token,
			formFile{"images", "a.png", pngData}, formFile{"images", "b.txt", []byte("hello")})
		env.serve(req, rec)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Zero(t, countFiles(t))
	})

	t.Run("batch", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/v1/upload/images", token,
			formFile{"images", "a.png", pngData}, formFile{"images", "b.gif", gifData})
		env.serve(req, rec)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var res []UploadResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		require.Len(t, res, 2)
		assert.Equal(t, "image/png", res[0].MimeType)
		assert.Equal(t, "image/gif", res[1].MimeType)
		assert.NotEqual(t, res[0].Filename, res[1].Filename)
		assert.Equal(t, 2, countFiles(t))
	})
}

func Test_uploadApi_bodyLimit(t *testing.T) {
	env := setup(t, func(conf *core.Config) { conf.Upload.MaxBytes = 1024 })
	token := getToken(t, env.conf, env.createAdmin(t))

	big := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 4096)...)
	req, rec := newUploadRequest(t, "/v1/upload/image", token, formFile{"image", "big.png", big})
	env.serve(req, rec)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
