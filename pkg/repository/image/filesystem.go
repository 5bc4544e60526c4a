package image

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/nkjain92/gpt-image-1/pkg/metrics"
)

// FileRepository stores images as files in one flat directory.
type FileRepository struct {
	dir   string
	label string
	reg   *metrics.Registry
}

// NewFileRepository returns a repository rooted at dir. The directory is
// created lazily on first Save or List. label names the store in logs and metrics.
func NewFileRepository(dir, label string, reg *metrics.Registry) *FileRepository {
	return &FileRepository{dir: dir, label: label, reg: reg}
}

// Dir returns the root directory.
func (r *FileRepository) Dir() string { return r.dir }

// Save writes into a temporary file in the same directory and renames it
// into place once the copy is complete.
func (r *FileRepository) Save(ctx context.Context, name string, src io.Reader) (Object, error) {
	if !ValidName(name) {
		return Object{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return Object{}, fmt.Errorf("create %s: %w", r.dir, err)
	}

	tmp, err := os.CreateTemp(r.dir, ".tmp-*")
	if err != nil {
		return Object{}, fmt.Errorf("create temp file: %w", err)
	}
	n, err := io.Copy(tmp, src)
	if err == nil {
		err = tmp.Chmod(0o644)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return Object{}, fmt.Errorf("write %s: %w", name, err)
	}

	dst := filepath.Join(r.dir, name)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		_ = os.Remove(tmp.Name())
		return Object{}, fmt.Errorf("rename %s: %w", name, err)
	}
	info, err := os.Stat(dst)
	if err != nil {
		return Object{}, fmt.Errorf("stat %s: %w", name, err)
	}

	log.Ctx(ctx).Info().Str("store", r.label).Str("image", name).Int64("bytes", n).Msg("image saved to disk")
	r.reg.Inc(ctx, metrics.ImagesStored, metrics.Labels{"store": r.label}, 1)
	r.reg.Inc(ctx, metrics.ImagesBytesStored, metrics.Labels{"store": r.label}, n)

	return Object{Name: name, ModTime: info.ModTime(), Size: info.Size()}, nil
}

func (r *FileRepository) Get(_ context.Context, name string) (io.ReadCloser, Object, error) {
	if !ValidName(name) {
		return nil, Object{}, ErrNotFound
	}
	f, err := os.Open(filepath.Join(r.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, Object{}, ErrNotFound
	}
	if err != nil {
		return nil, Object{}, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, Object{}, err
	}
	if info.IsDir() {
		f.Close()
		return nil, Object{}, ErrNotFound
	}
	return f, Object{Name: name, ModTime: info.ModTime(), Size: info.Size()}, nil
}

// List ensures the directory exists and reads one stat per entry. Entries
// that disappear between the scan and the stat are skipped.
func (r *FileRepository) List(_ context.Context) ([]Object, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", r.dir, err)
	}
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.dir, err)
	}

	out := make([]Object, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Object{Name: e.Name(), ModTime: info.ModTime(), Size: info.Size()})
	}
	return out, nil
}

func (r *FileRepository) Delete(ctx context.Context, name string) error {
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	err := os.Remove(filepath.Join(r.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	log.Ctx(ctx).Info().Str("store", r.label).Str("image", name).Msg("image removed from disk")
	return nil
}
