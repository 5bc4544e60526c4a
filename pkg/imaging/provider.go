package imaging

import (
	"context"
	"io"
	"time"
)

// Options are the generation knobs forwarded to the provider.
type Options struct {
	Size       string
	Quality    string
	Background string
}

// Reference is an input image handed to the provider for edits.
type Reference struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// Provider is the external image model. Implementations return the raw
// bytes of exactly one image.
type Provider interface {
	Generate(ctx context.Context, prompt string, opts Options) ([]byte, error)
	Edit(ctx context.Context, prompt string, opts Options, images []Reference, mask *Reference) ([]byte, error)
}

// PromptAssistant turns a rough idea into detailed image prompts.
type PromptAssistant interface {
	SuggestPrompts(ctx context.Context, idea string, hints PromptHints) ([]string, error)
}

// PromptHints are optional stylistic constraints for the assistant.
type PromptHints struct {
	Style string
	Mood  string
}

// StoredImage is an image persisted in one of the stores.
type StoredImage struct {
	Filename string
	URL      string
	ModTime  time.Time
}
