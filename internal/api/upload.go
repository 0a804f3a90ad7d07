package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aswin0605itsme-droid/Eggai/internal/camera"
	"github.com/aswin0605itsme-droid/Eggai/internal/common"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
)

// formImage reads the multipart file in field. A missing field yields an
// empty image so the caller's validation decides the message.
func formImage(c echo.Context, field string) (model.Image, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return model.Image{}, nil
	}
	if err != nil {
		return model.Image{}, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}

	f, err := fh.Open()
	if err != nil {
		return model.Image{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		return model.Image{}, fmt.Errorf("failed to read upload: %w", err)
	}
	mime := fh.Header.Get(echo.HeaderContentType)
	if mime == "" || mime == echo.MIMEOctetStream {
		mime = camera.DetectMIME(fh.Filename, data)
	}
	return model.Image{MIMEType: mime, Data: data}, nil
}
