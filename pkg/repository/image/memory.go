package image

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nkjain92/gpt-image-1/pkg/metrics"
)

type imageEntry struct {
	data    []byte
	modTime time.Time
}

// MemoryRepository is an in-memory ImageRepository implementation.
// Contents are lost on restart.
type MemoryRepository struct {
	mu    sync.RWMutex
	data  map[string]*imageEntry
	label string
	reg   *metrics.Registry
	now   func() time.Time
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository(label string, reg *metrics.Registry) *MemoryRepository {
	return &MemoryRepository{
		data:  make(map[string]*imageEntry),
		label: label,
		reg:   reg,
		now:   time.Now,
	}
}

// SetClock replaces the modification-time source.
func (r *MemoryRepository) SetClock(now func() time.Time) { r.now = now }

// Save buffers the whole stream before publishing it, so a failed read
// leaves nothing stored.
func (r *MemoryRepository) Save(ctx context.Context, name string, src io.Reader) (Object, error) {
	if !ValidName(name) {
		return Object{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	buf, err := io.ReadAll(src)
	if err != nil {
		return Object{}, fmt.Errorf("read %s: %w", name, err)
	}

	entry := &imageEntry{data: buf, modTime: r.now()}

	r.mu.Lock()
	r.data[name] = entry
	r.mu.Unlock()

	log.Ctx(ctx).Info().Str("store", r.label).Str("image", name).Int("bytes", len(buf)).Msg("image saved to memory")
	r.reg.Inc(ctx, metrics.ImagesStored, metrics.Labels{"store": r.label}, 1)
	r.reg.Inc(ctx, metrics.ImagesBytesStored, metrics.Labels{"store": r.label}, int64(len(buf)))

	return Object{Name: name, ModTime: entry.modTime, Size: int64(len(buf))}, nil
}

// Get returns a reader over a copy of the stored data.
func (r *MemoryRepository) Get(_ context.Context, name string) (io.ReadCloser, Object, error) {
	r.mu.RLock()
	e, ok := r.data[name]
	r.mu.RUnlock()
	if !ok || e == nil {
		return nil, Object{}, ErrNotFound
	}
	out := make([]byte, len(e.data))
	copy(out, e.data)
	return io.NopCloser(bytes.NewReader(out)), Object{Name: name, ModTime: e.modTime, Size: int64(len(out))}, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]Object, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Object, 0, len(r.data))
	for name, e := range r.data {
		out = append(out, Object{Name: name, ModTime: e.modTime, Size: int64(len(e.data))})
	}
	return out, nil
}

// Delete removes the entry from memory.
func (r *MemoryRepository) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	e, ok := r.data[name]
	if ok {
		delete(r.data, name)
	}
	r.mu.Unlock()

	if ok && e != nil {
		log.Ctx(ctx).Info().Str("store", r.label).Str("image", name).Int("bytes", len(e.data)).Msg("image memory freed")
	}
	return nil
}
