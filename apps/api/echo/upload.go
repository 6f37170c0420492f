package echoapi

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/belleza/salon/core"
	"github.com/belleza/salon/services/filestore"
)

const (
	imageField  = "image"
	imagesField = "images"
	sniffLen    = 512 // bytes read by http.DetectContentType
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type uploadApi struct {
	store        filestore.Store
	allowedTypes []string
	maxFiles     int
}

func registerUploadAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	conf := deps.Conf
	api := uploadApi{
		store:        deps.FileStore,
		allowedTypes: conf.Upload.AllowedMIMETypes,
		maxFiles:     conf.Upload.MaxFiles,
	}

	ug := g.Group("/upload", jwt, middleware.BodyLimit(fmt.Sprintf("%dB", conf.Upload.MaxBytes)))
	ug.POST("/image", api.uploadImage)
	ug.POST("/images", api.uploadImages)
}

func (api *uploadApi) uploadImage(ctx echo.Context) error {
	fh, err := ctx.FormFile(imageField)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: imageField, Error: "no file uploaded"})
	}

	img, err := api.sniff(fh, imageField)
	if err != nil {
		return err
	}
	res, err := api.save(ctx, img)
	if err != nil {
		return errors.Wrap(err, "saving image")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *uploadApi) uploadImages(ctx echo.Context) error {
	form, err := ctx.MultipartForm()
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: imagesField, Error: "no file uploaded"})
	}
	files := form.File[imagesField]
	switch {
	case len(files) == 0:
		return core.NewValidationError(nil, core.FieldError{Field: imagesField, Error: "no file uploaded"})
	case len(files) > api.maxFiles:
		return core.NewValidationError(nil, core.FieldError{
			Field: imagesField,
			Error: fmt.Sprintf("at most %d files can be uploaded at once", api.maxFiles),
		})
	}

	// every file is checked before anything is stored
	imgs := make([]sniffedImage, 0, len(files))
	for _, fh := range files {
		img, err := api.sniff(fh, imagesField)
		if err != nil {
			return err
		}
		imgs = append(imgs, img)
	}

	res := make([]UploadResponse, 0, len(imgs))
	for _, img := range imgs {
		r, err := api.save(ctx, img)
		if err != nil {
			return errors.Wrap(err, "saving images")
		}
		res = append(res, r)
	}
	return ctx.JSON(http.StatusCreated, res)
}

type sniffedImage struct {
	header   *multipart.FileHeader
	mimeType string
}

// sniff detects the file's MIME type from its content; the client supplied Content-Type is ignored.
func (api *uploadApi) sniff(fh *multipart.FileHeader, field string) (sniffedImage, error) {
	f, err := fh.Open()
	if err != nil {
		return sniffedImage{}, errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return sniffedImage{}, errors.Wrap(err, "reading uploaded file")
	}

	mimeType := http.DetectContentType(head[:n])
	if _, known := imageExtensions[mimeType]; !known || !slices.Contains(api.allowedTypes, mimeType) {
		return sniffedImage{}, core.NewValidationError(nil, core.FieldError{
			Field: field,
			Error: fmt.Sprintf("%s: only image files are allowed", fh.Filename),
		})
	}
	return sniffedImage{header: fh, mimeType: mimeType}, nil
}

func (api *uploadApi) save(ctx echo.Context, img sniffedImage) (UploadResponse, error) {
	f, err := img.header.Open()
	if err != nil {
		return UploadResponse{}, errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()

	name := uuid.NewString() + imageExtensions[img.mimeType]
	url, err := api.store.Save(ctx.Request().Context(), name, img.mimeType, f)
	if err != nil {
		return UploadResponse{}, errors.Wrapf(err, "storing %s", name)
	}
	return UploadResponse{URL: url, Filename: name, Size: img.header.Size, MimeType: img.mimeType}, nil
}

type UploadResponse struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimetype"`
}
