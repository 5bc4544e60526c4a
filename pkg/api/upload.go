package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nkjain92/gpt-image-1/pkg/imaging"
	"github.com/nkjain92/gpt-image-1/pkg/models"
)

// multipartOverhead is the allowance for boundaries, part headers and
// small form fields on top of the per-file ceiling.
const multipartOverhead = 64 << 10

// Upload handles POST /api/upload. Parts are streamed: the file goes
// straight into the uploads store and is never buffered in memory.
func (h *Handlers) Upload(c echo.Context) error {
	ctx := c.Request().Context()
	req := c.Request()
	req.Body = http.MaxBytesReader(c.Response(), req.Body, h.uploader.MaxBytes()+multipartOverhead)

	reader, err := req.MultipartReader()
	if err != nil {
		return h.uploader.Reject(ctx, "form", imaging.ErrNoFile)
	}

	var stored *imaging.StoredImage
	fail := func(reason string, verr *imaging.ValidationError) error {
		if stored != nil {
			h.uploader.Discard(ctx, *stored)
		}
		return h.uploader.Reject(ctx, reason, verr)
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				return fail("size", h.uploader.SizeError())
			}
			return fail("form", imaging.ErrNoFile)
		}

		f := imaging.UploadedFile{
			FieldName:   part.FormName(),
			FileName:    part.FileName(),
			ContentType: part.Header.Get(echo.HeaderContentType),
			Body:        part,
		}
		if !h.uploader.Wants(f) {
			_ = part.Close()
			continue
		}
		if stored != nil {
			_ = part.Close()
			return fail("count", imaging.ErrTooManyFiles)
		}

		img, err := h.uploader.Receive(ctx, f)
		_ = part.Close()
		if err != nil {
			return err
		}
		stored = &img
	}

	if stored == nil {
		return h.uploader.Reject(ctx, "field", imaging.ErrNoFile)
	}
	return c.JSON(http.StatusOK, models.UploadResponse{Success: true, Filename: stored.Filename, URL: stored.URL})
}
