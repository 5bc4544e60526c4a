package imaging

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/nkjain92/gpt-image-1/pkg/metrics"
)

// Hint values offered by the prompt helper.
var (
	PromptStyles = []string{"Photorealistic", "Digital Art", "Anime", "Oil Painting", "3D Render", "Sketch"}
	PromptMoods  = []string{"Bright", "Dark", "Dreamy", "Ethereal", "Dramatic", "Peaceful"}
)

// PromptHelper expands short ideas into detailed prompts.
type PromptHelper struct {
	assistant PromptAssistant
	timeout   time.Duration
	reg       *metrics.Registry
}

func NewPromptHelper(assistant PromptAssistant, timeout time.Duration, reg *metrics.Registry) *PromptHelper {
	return &PromptHelper{assistant: assistant, timeout: timeout, reg: reg}
}

// Suggest validates the idea and hints before calling the assistant.
// Blank suggestions are dropped; an answer with none left is a provider error.
func (h *PromptHelper) Suggest(ctx context.Context, idea string, hints PromptHints) ([]string, error) {
	idea = strings.TrimSpace(idea)
	if idea == "" {
		h.reg.Inc(ctx, metrics.ValidationFailures, metrics.Labels{"op": "prompt"}, 1)
		return nil, invalid("Idea is required")
	}
	if err := checkHint("style", hints.Style, PromptStyles); err != nil {
		h.reg.Inc(ctx, metrics.ValidationFailures, metrics.Labels{"op": "prompt"}, 1)
		return nil, err
	}
	if err := checkHint("mood", hints.Mood, PromptMoods); err != nil {
		h.reg.Inc(ctx, metrics.ValidationFailures, metrics.Labels{"op": "prompt"}, 1)
		return nil, err
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	h.reg.Inc(ctx, metrics.ProviderCalls, metrics.Labels{"op": "prompt"}, 1)
	prompts, err := h.assistant.SuggestPrompts(ctx, idea, hints)
	if err == nil {
		prompts = lo.FilterMap(prompts, func(p string, _ int) (string, bool) {
			p = strings.TrimSpace(p)
			return p, p != ""
		})
		if len(prompts) == 0 {
			err = ErrNoSuggestions
		}
	}
	if err != nil {
		h.reg.Inc(ctx, metrics.ProviderFailures, metrics.Labels{"op": "prompt"}, 1)
		log.Ctx(ctx).Error().Err(err).Msg("prompt assistant call failed")
		return nil, &ProviderError{Op: "prompt", Err: err}
	}
	return prompts, nil
}

func checkHint(name, value string, allowed []string) error {
	if value == "" || lo.Contains(allowed, value) {
		return nil
	}
	return invalid("Invalid %s value. Supported values are: %s", name, strings.Join(allowed, ", "))
}
