package image

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound is returned by Get when no object has the requested name.
var ErrNotFound = errors.New("image not found")

// ErrInvalidName is returned for names that are not a single plain path element.
var ErrInvalidName = errors.New("invalid image name")

// Object describes one stored image.
type Object struct {
	Name    string
	ModTime time.Time
	Size    int64
}

// ImageRepository is a flat, name-addressed image store.
// Names are chosen by the caller; the repository never generates them.
type ImageRepository interface {
	// Save streams r into a new object called name. A failed read from r
	// leaves nothing behind under name.
	Save(ctx context.Context, name string, r io.Reader) (Object, error)
	// Get opens the object for reading.
	Get(ctx context.Context, name string) (io.ReadCloser, Object, error)
	// List returns every object in the store in no particular order.
	List(ctx context.Context) ([]Object, error)
	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, name string) error
}

// ValidName reports whether name can address an object: a single path
// element, not hidden, no traversal.
func ValidName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	if strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return false
	}
	return true
}

// ContentType maps an image file name to its media type by extension.
func ContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
