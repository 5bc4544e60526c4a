package inject

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/samber/do"

	"github.com/nkjain92/gpt-image-1/pkg/api"
	"github.com/nkjain92/gpt-image-1/pkg/clients/openai"
	"github.com/nkjain92/gpt-image-1/pkg/config"
	"github.com/nkjain92/gpt-image-1/pkg/imaging"
	"github.com/nkjain92/gpt-image-1/pkg/metrics"
	"github.com/nkjain92/gpt-image-1/pkg/repository/image"
)

// Names of the two image stores.
const (
	ResultsStore = "results"
	UploadsStore = "uploads"
)

// Setup registers every service lazily; nothing is built until invoked,
// so commands that only read the stores never touch the provider.
func Setup(ctx context.Context, cfg config.Config) *do.Injector {
	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Debug().Msgf(format, args...)
		},
	})

	do.ProvideValue[config.Config](injector, cfg)
	do.ProvideValue[*metrics.Registry](injector, metrics.NewRegistry())

	do.Provide[*s3.Client](injector, func(i *do.Injector) (*s3.Client, error) {
		return image.NewS3Client(ctx, cfg.Storage.S3Region, cfg.Storage.S3Endpoint)
	})
	do.ProvideNamed[image.ImageRepository](injector, ResultsStore, newStore(ResultsStore, cfg.Storage.ResultsDir))
	do.ProvideNamed[image.ImageRepository](injector, UploadsStore, newStore(UploadsStore, cfg.Storage.UploadsDir))

	do.Provide[*openai.Client](injector, func(i *do.Injector) (*openai.Client, error) {
		return openai.NewClient(ctx, openai.Config{
			APIKey:       cfg.OpenAI.APIKey,
			BaseURL:      cfg.OpenAI.BaseURL,
			ImageModel:   cfg.OpenAI.ImageModel,
			ChatModel:    cfg.OpenAI.ChatModel,
			VerifyModels: cfg.OpenAI.VerifyModels,
		})
	})

	do.Provide[*imaging.Generator](injector, func(i *do.Injector) (*imaging.Generator, error) {
		client, err := do.Invoke[*openai.Client](i)
		if err != nil {
			return nil, err
		}
		return imaging.NewGenerator(
			client,
			do.MustInvokeNamed[image.ImageRepository](i, ResultsStore),
			do.MustInvokeNamed[image.ImageRepository](i, UploadsStore),
			cfg.OpenAI.Timeout,
			do.MustInvoke[*metrics.Registry](i),
		), nil
	})
	do.Provide[*imaging.PromptHelper](injector, func(i *do.Injector) (*imaging.PromptHelper, error) {
		client, err := do.Invoke[*openai.Client](i)
		if err != nil {
			return nil, err
		}
		return imaging.NewPromptHelper(client, cfg.OpenAI.Timeout, do.MustInvoke[*metrics.Registry](i)), nil
	})
	do.Provide[*imaging.Uploader](injector, func(i *do.Injector) (*imaging.Uploader, error) {
		return imaging.NewUploader(
			do.MustInvokeNamed[image.ImageRepository](i, UploadsStore),
			cfg.UploadMaxBytes,
			do.MustInvoke[*metrics.Registry](i),
		), nil
	})

	do.Provide[*api.Handlers](injector, func(i *do.Injector) (*api.Handlers, error) {
		generator, err := do.Invoke[*imaging.Generator](i)
		if err != nil {
			return nil, err
		}
		prompts, err := do.Invoke[*imaging.PromptHelper](i)
		if err != nil {
			return nil, err
		}
		return api.NewHandlers(
			generator,
			prompts,
			do.MustInvoke[*imaging.Uploader](i),
			do.MustInvokeNamed[image.ImageRepository](i, ResultsStore),
			do.MustInvokeNamed[image.ImageRepository](i, UploadsStore),
		), nil
	})
	do.Provide[*echo.Echo](injector, func(i *do.Injector) (*echo.Echo, error) {
		handlers, err := do.Invoke[*api.Handlers](i)
		if err != nil {
			return nil, err
		}
		return api.NewServer(handlers, do.MustInvoke[*metrics.Registry](i)), nil
	})

	return injector
}

func newStore(label, dir string) do.Provider[image.ImageRepository] {
	return func(i *do.Injector) (image.ImageRepository, error) {
		cfg := do.MustInvoke[config.Config](i)
		reg := do.MustInvoke[*metrics.Registry](i)

		switch cfg.Storage.Driver {
		case config.StorageFS:
			return image.NewFileRepository(dir, label, reg), nil
		case config.StorageMemory:
			return image.NewMemoryRepository(label, reg), nil
		case config.StorageS3:
			client, err := do.Invoke[*s3.Client](i)
			if err != nil {
				return nil, err
			}
			return image.NewS3Repository(client, cfg.Storage.S3Bucket, label, reg), nil
		default:
			return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
		}
	}
}
