package imaging

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/nkjain92/gpt-image-1/pkg/metrics"
	"github.com/nkjain92/gpt-image-1/pkg/repository/image"
)

// URL prefixes under which the two stores are served.
const (
	ResultsURL = "/results/"
	UploadsURL = "/uploads/"
)

// GenerationRequest asks for one image from a text prompt. Fields are
// checked in declaration order, so quality errors win over size errors.
type GenerationRequest struct {
	Prompt     string `validate:"required"`
	Quality    string `validate:"oneof=low medium high auto"`
	Size       string `validate:"oneof=1024x1024 1536x1024 1024x1536 auto"`
	Background string `validate:"omitempty,oneof=transparent opaque auto"`
}

// EditRequest asks for one image derived from previously uploaded images.
type EditRequest struct {
	Prompt  string   `validate:"required"`
	Quality string   `validate:"oneof=low medium high auto"`
	Size    string   `validate:"oneof=1024x1024 1536x1024 1024x1536 auto"`
	Images  []string `validate:"min=1,max=16,dive,required"`
	Mask    string   `validate:"omitempty,pngfile"`
}

// Generator calls the provider and persists the result in the results store.
type Generator struct {
	provider Provider
	results  image.ImageRepository
	uploads  image.ImageRepository
	timeout  time.Duration
	reg      *metrics.Registry
}

// NewGenerator wires a generator. uploads is only read, to resolve edit
// references. A zero timeout leaves the provider call bounded by ctx alone.
func NewGenerator(provider Provider, results, uploads image.ImageRepository, timeout time.Duration, reg *metrics.Registry) *Generator {
	return &Generator{
		provider: provider,
		results:  results,
		uploads:  uploads,
		timeout:  timeout,
		reg:      reg,
	}
}

// Generate validates req, calls the provider once and stores the image as
// a fresh "<uuid>.png". Nothing is written on any failure path.
func (g *Generator) Generate(ctx context.Context, req GenerationRequest) (StoredImage, error) {
	req.Prompt = strings.TrimSpace(req.Prompt)
	req.Size = withDefault(req.Size, DefaultSize)
	req.Quality = withDefault(req.Quality, DefaultQuality)
	if err := checkStruct(req); err != nil {
		g.reg.Inc(ctx, metrics.ValidationFailures, metrics.Labels{"op": "generate"}, 1)
		return StoredImage{}, err
	}

	opts := Options{Size: req.Size, Quality: req.Quality, Background: req.Background}
	data, err := g.call(ctx, "generate", func(ctx context.Context) ([]byte, error) {
		return g.provider.Generate(ctx, req.Prompt, opts)
	})
	if err != nil {
		return StoredImage{}, err
	}
	return g.store(ctx, data)
}

// Edit resolves the referenced uploads, calls the provider's edit endpoint
// and stores the result like Generate.
func (g *Generator) Edit(ctx context.Context, req EditRequest) (StoredImage, error) {
	req.Prompt = strings.TrimSpace(req.Prompt)
	req.Size = withDefault(req.Size, DefaultSize)
	req.Quality = withDefault(req.Quality, DefaultQuality)
	if err := checkStruct(req); err != nil {
		g.reg.Inc(ctx, metrics.ValidationFailures, metrics.Labels{"op": "edit"}, 1)
		return StoredImage{}, err
	}

	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()
	open := func(name string) (Reference, error) {
		if !IsImageName(name) {
			return Reference{}, invalid("Reference image not found: %s", name)
		}
		rc, _, err := g.uploads.Get(ctx, name)
		if errors.Is(err, image.ErrNotFound) {
			return Reference{}, invalid("Reference image not found: %s", name)
		}
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Str("image", name).Msg("opening reference image failed")
			return Reference{}, &StorageError{Op: "open", Err: err}
		}
		closers = append(closers, rc)
		return Reference{Name: name, ContentType: image.ContentType(name), Body: rc}, nil
	}

	refs := make([]Reference, 0, len(req.Images))
	for _, name := range req.Images {
		ref, err := open(name)
		if err != nil {
			return StoredImage{}, err
		}
		refs = append(refs, ref)
	}
	var mask *Reference
	if req.Mask != "" {
		ref, err := open(req.Mask)
		if err != nil {
			return StoredImage{}, err
		}
		mask = &ref
	}

	opts := Options{Size: req.Size, Quality: req.Quality}
	data, err := g.call(ctx, "edit", func(ctx context.Context) ([]byte, error) {
		return g.provider.Edit(ctx, req.Prompt, opts, refs, mask)
	})
	if err != nil {
		return StoredImage{}, err
	}
	return g.store(ctx, data)
}

// call runs one provider request. It is never retried.
func (g *Generator) call(ctx context.Context, op string, fn func(context.Context) ([]byte, error)) ([]byte, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	g.reg.Inc(ctx, metrics.ProviderCalls, metrics.Labels{"op": op}, 1)
	start := time.Now()
	data, err := fn(ctx)
	if err == nil && len(data) == 0 {
		err = ErrNoImageData
	}
	if err != nil {
		g.reg.Inc(ctx, metrics.ProviderFailures, metrics.Labels{"op": op}, 1)
		log.Ctx(ctx).Error().Err(err).Str("op", op).Dur("duration", time.Since(start)).Msg("image provider call failed")
		return nil, &ProviderError{Op: op, Err: err}
	}

	log.Ctx(ctx).Info().Str("op", op).Int("bytes", len(data)).Dur("duration", time.Since(start)).Msg("image provider call succeeded")
	return data, nil
}

func (g *Generator) store(ctx context.Context, data []byte) (StoredImage, error) {
	name := uuid.NewString() + ".png"
	obj, err := g.results.Save(ctx, name, bytes.NewReader(data))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("image", name).Msg("saving generated image failed")
		return StoredImage{}, &StorageError{Op: "save", Err: err}
	}
	return StoredImage{Filename: name, URL: ResultsURL + name, ModTime: obj.ModTime}, nil
}

func withDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
