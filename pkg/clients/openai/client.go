package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/rs/zerolog/log"

	"github.com/nkjain92/gpt-image-1/pkg/imaging"
	"github.com/nkjain92/gpt-image-1/pkg/models"
	"github.com/nkjain92/gpt-image-1/pkg/prompting"
)

// Client implements imaging.Provider and imaging.PromptAssistant on top of
// the OpenAI images and chat completions APIs.
type Client struct {
	client     openai.Client
	imageModel string
	chatModel  string
}

// Config holds the connection settings.
type Config struct {
	APIKey     string
	BaseURL    string
	ImageModel string
	ChatModel  string
	// VerifyModels lists the account's models at startup and fails when
	// a configured model is missing.
	VerifyModels bool
}

var (
	_ imaging.Provider        = (*Client)(nil)
	_ imaging.PromptAssistant = (*Client)(nil)
)

func isModelInList(model string, models []openai.Model) bool {
	for i := range models {
		if models[i].ID == model {
			return true
		}
	}

	return false
}

// NewClient builds a client. Requests are never retried: a failed
// generation is reported to the caller as is.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is not set")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	if cfg.VerifyModels {
		// Test connectivity by listing models
		modelList, err := client.Models.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("connection test failed: %w", err)
		}
		for _, model := range []string{cfg.ImageModel, cfg.ChatModel} {
			if !isModelInList(model, modelList.Data) {
				return nil, fmt.Errorf("such model does not exists: %s", model)
			}
		}
	}

	return &Client{
		client:     client,
		imageModel: cfg.ImageModel,
		chatModel:  cfg.ChatModel,
	}, nil
}

// Generate requests one image and returns its decoded bytes.
func (c *Client) Generate(ctx context.Context, prompt string, opts imaging.Options) ([]byte, error) {
	params := openai.ImageGenerateParams{
		Prompt:  prompt,
		Model:   openai.ImageModel(c.imageModel),
		N:       openai.Int(1),
		Size:    openai.ImageGenerateParamsSize(opts.Size),
		Quality: openai.ImageGenerateParamsQuality(opts.Quality),
	}
	if opts.Background != "" {
		params.Background = openai.ImageGenerateParamsBackground(opts.Background)
	}

	response, err := c.client.Images.Generate(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai image generation failed: %w", err)
	}
	return decodeImage(response)
}

// Edit uploads the reference images, and the optional mask, and returns
// the decoded bytes of the derived image.
func (c *Client) Edit(ctx context.Context, prompt string, opts imaging.Options, images []imaging.Reference, mask *imaging.Reference) ([]byte, error) {
	files := make([]io.Reader, 0, len(images))
	for _, ref := range images {
		files = append(files, openai.File(ref.Body, ref.Name, ref.ContentType))
	}
	params := openai.ImageEditParams{
		Prompt:  prompt,
		Model:   openai.ImageModel(c.imageModel),
		N:       openai.Int(1),
		Image:   openai.ImageEditParamsImageUnion{OfFileArray: files},
		Size:    openai.ImageEditParamsSize(opts.Size),
		Quality: openai.ImageEditParamsQuality(opts.Quality),
	}
	if mask != nil {
		params.Mask = openai.File(mask.Body, mask.Name, mask.ContentType)
	}

	response, err := c.client.Images.Edit(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai image edit failed: %w", err)
	}
	return decodeImage(response)
}

func decodeImage(response *openai.ImagesResponse) ([]byte, error) {
	if response == nil || len(response.Data) == 0 || response.Data[0].B64JSON == "" {
		return nil, imaging.ErrNoImageData
	}
	data, err := base64.StdEncoding.DecodeString(response.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode image payload: %w", err)
	}
	return data, nil
}

func (c *Client) makePromtParams(message string) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(c.chatModel),
		MaxTokens: openai.Int(2000),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(prompting.SystemPrompt()),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(message),
					},
				},
			},
		},
	}
}

// SuggestPrompts asks the chat model for detailed prompts built around idea.
func (c *Client) SuggestPrompts(ctx context.Context, idea string, hints imaging.PromptHints) ([]string, error) {
	params := c.makePromtParams(prompting.UserMessage(idea, hints.Style, hints.Mood))
	response, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	if len(response.Choices) == 0 {
		return nil, imaging.ErrNoSuggestions
	}

	content := trimMessage(response.Choices[0].Message.Content)
	prompts, err := models.DecodeStringArray([]byte(content))
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("content", content).Msg("assistant answered with malformed JSON")
		return nil, fmt.Errorf("decode assistant answer: %w", err)
	}
	return prompts, nil
}

func trimMessage(message string) string {
	message = strings.TrimSpace(message)
	return strings.TrimPrefix(strings.TrimSuffix(message, "\n```"), "```json\n")
}
