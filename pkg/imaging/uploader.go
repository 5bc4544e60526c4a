package imaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/nkjain92/gpt-image-1/pkg/metrics"
	"github.com/nkjain92/gpt-image-1/pkg/repository/image"
)

// UploadField is the only multipart field an upload is read from.
const UploadField = "file"

// DefaultUploadMaxBytes is the per-file ceiling.
const DefaultUploadMaxBytes = 5 << 20

// UploadTypes are the accepted declared media types.
var UploadTypes = []string{"image/jpeg", "image/png", "image/webp"}

var (
	errTooLarge = errors.New("upload exceeds size ceiling")

	ErrNoFile       = &ValidationError{Message: "No file uploaded or invalid file type"}
	ErrTooManyFiles = &ValidationError{Message: "Only one file can be uploaded at a time"}
)

// UploadedFile is one file part as received, before validation.
type UploadedFile struct {
	FieldName   string
	FileName    string
	ContentType string
	Body        io.Reader
}

// Uploader validates uploaded files and stores them under fresh names.
type Uploader struct {
	repo     image.ImageRepository
	maxBytes int64
	reg      *metrics.Registry
}

func NewUploader(repo image.ImageRepository, maxBytes int64, reg *metrics.Registry) *Uploader {
	if maxBytes <= 0 {
		maxBytes = DefaultUploadMaxBytes
	}
	return &Uploader{repo: repo, maxBytes: maxBytes, reg: reg}
}

// MaxBytes is the per-file ceiling.
func (u *Uploader) MaxBytes() int64 { return u.maxBytes }

// SizeError is the validation error reported for oversized uploads.
func (u *Uploader) SizeError() *ValidationError {
	return invalid("File size exceeds %s limit", formatBytes(u.maxBytes))
}

// Wants reports whether a part is a candidate upload at all. Parts in other
// fields are ignored rather than rejected.
func (u *Uploader) Wants(f UploadedFile) bool {
	return f.FieldName == UploadField && f.FileName != ""
}

// Receive validates the declared media type, then streams the body into
// the uploads store, failing as soon as the ceiling is crossed.
func (u *Uploader) Receive(ctx context.Context, f UploadedFile) (StoredImage, error) {
	if !u.Wants(f) {
		return StoredImage{}, u.Reject(ctx, "field", ErrNoFile)
	}
	mediaType, ok := acceptedType(f.ContentType)
	if !ok {
		return StoredImage{}, u.Reject(ctx, "type", invalid("Invalid file type %q. Supported types are: %s", f.ContentType, strings.Join(UploadTypes, ", ")))
	}

	name := uuid.NewString() + uploadExtension(f.FileName, mediaType)
	obj, err := u.repo.Save(ctx, name, &ceilingReader{r: f.Body, remaining: u.maxBytes})
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.Is(err, errTooLarge) || errors.As(err, &mbe) {
			return StoredImage{}, u.Reject(ctx, "size", u.SizeError())
		}
		log.Ctx(ctx).Error().Err(err).Str("image", name).Msg("saving upload failed")
		return StoredImage{}, &StorageError{Op: "save", Err: err}
	}

	log.Ctx(ctx).Info().Str("image", name).Str("original", f.FileName).Str("content_type", mediaType).Msg("upload stored")
	return StoredImage{Filename: name, URL: UploadsURL + name, ModTime: obj.ModTime}, nil
}

// Discard removes an upload that was stored before the request turned out
// to be invalid.
func (u *Uploader) Discard(ctx context.Context, img StoredImage) {
	if err := u.repo.Delete(ctx, img.Filename); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("image", img.Filename).Msg("discarding upload failed")
	}
}

// Reject counts a refused upload and returns err unchanged.
func (u *Uploader) Reject(ctx context.Context, reason string, err *ValidationError) error {
	u.reg.Inc(ctx, metrics.UploadsRejected, metrics.Labels{"reason": reason}, 1)
	log.Ctx(ctx).Warn().Str("reason", reason).Msg(err.Message)
	return err
}

func acceptedType(declared string) (string, bool) {
	mt, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return "", false
	}
	mt = strings.ToLower(mt)
	return mt, lo.Contains(UploadTypes, mt)
}

// uploadExtension keeps the client's extension when it is a recognized
// image extension and otherwise derives one from the declared media type.
func uploadExtension(fileName, mediaType string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if imagePattern.MatchString(ext) {
		return ext
	}
	if m := mimetype.Lookup(mediaType); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	return ".img"
}

func formatBytes(n int64) string {
	if n%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", n>>20)
	}
	if n%(1<<10) == 0 {
		return fmt.Sprintf("%dKB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}

// ceilingReader fails once more than remaining bytes have been read.
type ceilingReader struct {
	r         io.Reader
	remaining int64
}

func (c *ceilingReader) Read(p []byte) (int, error) {
	if c.remaining < 0 {
		return 0, errTooLarge
	}
	if int64(len(p)) > c.remaining+1 {
		p = p[:c.remaining+1]
	}
	n, err := c.r.Read(p)
	c.remaining -= int64(n)
	if c.remaining < 0 {
		return n, errTooLarge
	}
	return n, err
}
