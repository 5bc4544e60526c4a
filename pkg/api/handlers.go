package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mailru/easyjson"
	"github.com/samber/lo"

	"github.com/nkjain92/gpt-image-1/pkg/imaging"
	"github.com/nkjain92/gpt-image-1/pkg/models"
	"github.com/nkjain92/gpt-image-1/pkg/repository/image"
)

// maxJSONBytes bounds the JSON request bodies.
const maxJSONBytes = 1 << 20

type ImageGenerator interface {
	Generate(ctx context.Context, req imaging.GenerationRequest) (imaging.StoredImage, error)
	Edit(ctx context.Context, req imaging.EditRequest) (imaging.StoredImage, error)
}

type PromptSuggester interface {
	Suggest(ctx context.Context, idea string, hints imaging.PromptHints) ([]string, error)
}

// Handlers serves the JSON API and the stored image bytes.
type Handlers struct {
	generator ImageGenerator
	prompts   PromptSuggester
	uploader  *imaging.Uploader

	results image.ImageRepository
	uploads image.ImageRepository

	resultsList *imaging.Lister
	uploadsList *imaging.Lister
}

// NewHandlers constructs Handlers with provided services and stores.
func NewHandlers(generator ImageGenerator, prompts PromptSuggester, uploader *imaging.Uploader, results, uploads image.ImageRepository) *Handlers {
	return &Handlers{
		generator:   generator,
		prompts:     prompts,
		uploader:    uploader,
		results:     results,
		uploads:     uploads,
		resultsList: imaging.NewLister(results, imaging.ResultsURL),
		uploadsList: imaging.NewLister(uploads, imaging.UploadsURL),
	}
}

// Generate handles POST /api/generate
func (h *Handlers) Generate(c echo.Context) error {
	var req models.GenerateRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	img, err := h.generator.Generate(c.Request().Context(), imaging.GenerationRequest{
		Prompt:     req.Prompt,
		Size:       req.Size,
		Quality:    req.Quality,
		Background: req.Background,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.GenerateResponse{Success: true, ImageURL: img.URL})
}

// Edit handles POST /api/edit
func (h *Handlers) Edit(c echo.Context) error {
	var req models.EditRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	img, err := h.generator.Edit(c.Request().Context(), imaging.EditRequest{
		Prompt:  req.Prompt,
		Size:    req.Size,
		Quality: req.Quality,
		Images:  req.Images,
		Mask:    req.Mask,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.GenerateResponse{Success: true, ImageURL: img.URL})
}

// PromptHelper handles POST /api/prompt-helper
func (h *Handlers) PromptHelper(c echo.Context) error {
	var req models.PromptRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	prompts, err := h.prompts.Suggest(c.Request().Context(), req.Idea, imaging.PromptHints{Style: req.Style, Mood: req.Mood})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.PromptResponse{Success: true, Prompts: prompts})
}

// ListResults handles GET /api/images
func (h *Handlers) ListResults(c echo.Context) error {
	return listResponse(c, h.resultsList)
}

// ListUploads handles GET /api/uploads
func (h *Handlers) ListUploads(c echo.Context) error {
	return listResponse(c, h.uploadsList)
}

// ServeResult handles GET /results/:name
func (h *Handlers) ServeResult(c echo.Context) error {
	return serveImage(c, h.results)
}

// ServeUpload handles GET /uploads/:name
func (h *Handlers) ServeUpload(c echo.Context) error {
	return serveImage(c, h.uploads)
}

// Healthz handles GET /healthz
func (h *Handlers) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func listResponse(c echo.Context, l *imaging.Lister) error {
	images := l.List(c.Request().Context())
	return c.JSON(http.StatusOK, models.ListResponse{
		Success: true,
		Images: lo.Map(images, func(img imaging.StoredImage, _ int) models.ImageEntry {
			return models.ImageEntry{Filename: img.Filename, URL: img.URL, Timestamp: img.ModTime.UnixMilli()}
		}),
	})
}

func serveImage(c echo.Context, repo image.ImageRepository) error {
	name := c.Param("name")
	if !imaging.IsImageName(name) {
		return echo.ErrNotFound
	}
	rc, obj, err := repo.Get(c.Request().Context(), name)
	if errors.Is(err, image.ErrNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return &imaging.StorageError{Op: "open", Err: err}
	}
	defer rc.Close()

	c.Response().Header().Set(echo.HeaderContentType, image.ContentType(name))
	c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	if rs, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(c.Response(), c.Request(), name, obj.ModTime, rs)
		return nil
	}
	return c.Stream(http.StatusOK, image.ContentType(name), rc)
}

// bindJSON decodes a bounded JSON body through the easyjson codecs.
func bindJSON(c echo.Context, v easyjson.Unmarshaler) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxJSONBytes+1))
	if err != nil {
		return &imaging.ValidationError{Message: "Could not read request body"}
	}
	if len(body) > maxJSONBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Request body too large")
	}
	if err := easyjson.Unmarshal(body, v); err != nil {
		return &imaging.ValidationError{Message: "Invalid JSON body"}
	}
	return nil
}
