package imaging_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"

	"github.com/nkjain92/gpt-image-1/pkg/imaging"
	"github.com/nkjain92/gpt-image-1/pkg/metrics"
	"github.com/nkjain92/gpt-image-1/pkg/repository/image"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\nfake-image-payload")

type editCall struct {
	prompt string
	images []string
	bodies []string
	mask   string
}

// stubProvider records calls and returns canned output.
type stubProvider struct {
	mu      sync.Mutex
	calls   int
	opts    []imaging.Options
	edits   []editCall
	data    []byte
	err     error
	blockOn chan struct{}
}

func (p *stubProvider) Generate(ctx context.Context, _ string, opts imaging.Options) ([]byte, error) {
	p.mu.Lock()
	p.calls++
	p.opts = append(p.opts, opts)
	p.mu.Unlock()
	if p.blockOn != nil {
		select {
		case <-p.blockOn:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return p.data, p.err
}

func (p *stubProvider) Edit(_ context.Context, prompt string, opts imaging.Options, images []imaging.Reference, mask *imaging.Reference) ([]byte, error) {
	call := editCall{prompt: prompt}
	for _, ref := range images {
		body, _ := io.ReadAll(ref.Body)
		call.images = append(call.images, ref.Name)
		call.bodies = append(call.bodies, string(body))
	}
	if mask != nil {
		call.mask = mask.Name
	}
	p.mu.Lock()
	p.calls++
	p.opts = append(p.opts, opts)
	p.edits = append(p.edits, call)
	p.mu.Unlock()
	return p.data, p.err
}

func (p *stubProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type stubAssistant struct {
	calls   int
	hints   imaging.PromptHints
	prompts []string
	err     error
}

func (a *stubAssistant) SuggestPrompts(_ context.Context, _ string, hints imaging.PromptHints) ([]string, error) {
	a.calls++
	a.hints = hints
	return a.prompts, a.err
}

// brokenRepository fails every operation.
type brokenRepository struct{}

var errBroken = errors.New("disk on fire")

func (brokenRepository) Save(context.Context, string, io.Reader) (image.Object, error) {
	return image.Object{}, errBroken
}

func (brokenRepository) Get(context.Context, string) (io.ReadCloser, image.Object, error) {
	return nil, image.Object{}, errBroken
}

func (brokenRepository) List(context.Context) ([]image.Object, error) { return nil, errBroken }

func (brokenRepository) Delete(context.Context, string) error { return errBroken }

type fixture struct {
	provider   *stubProvider
	results    *image.FileRepository
	uploads    *image.FileRepository
	reg        *metrics.Registry
	generator  *imaging.Generator
	resultsDir string
	uploadsDir string
}

func newFixture(t interface{ TempDir() string }) *fixture {
	root := t.TempDir()
	f := &fixture{
		provider:   &stubProvider{data: pngBytes},
		reg:        metrics.NewRegistry(),
		resultsDir: filepath.Join(root, "public", "results"),
		uploadsDir: filepath.Join(root, "public", "uploads"),
	}
	f.results = image.NewFileRepository(f.resultsDir, "results", f.reg)
	f.uploads = image.NewFileRepository(f.uploadsDir, "uploads", f.reg)
	f.generator = imaging.NewGenerator(f.provider, f.results, f.uploads, 0, f.reg)
	return f
}
