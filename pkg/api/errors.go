package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/nkjain92/gpt-image-1/pkg/imaging"
	"github.com/nkjain92/gpt-image-1/pkg/models"
)

// Generic messages for failures whose details stay in the logs.
const (
	msgGenerateFailed = "Failed to generate image"
	msgPromptFailed   = "Failed to generate prompts"
	msgStorageFailed  = "Failed to store image"
	msgInternal       = "Internal server error"
)

// ErrorHandler renders every error as {"error": "..."}. Validation errors
// keep their message; provider and storage failures are reduced to a
// generic one.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, message := classify(err)
	if status >= http.StatusInternalServerError {
		log.Ctx(c.Request().Context()).Error().Err(err).Int("status", status).Msg("request failed")
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, models.ErrorResponse{Error: message})
	}
	if werr != nil {
		log.Ctx(c.Request().Context()).Error().Err(werr).Msg("writing error response failed")
	}
}

func classify(err error) (int, string) {
	var (
		verr    *imaging.ValidationError
		perr    *imaging.ProviderError
		serr    *imaging.StorageError
		httpErr *echo.HTTPError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Message
	case errors.As(err, &perr):
		if perr.Op == "prompt" {
			return http.StatusInternalServerError, msgPromptFailed
		}
		return http.StatusInternalServerError, msgGenerateFailed
	case errors.As(err, &serr):
		return http.StatusInternalServerError, msgStorageFailed
	case errors.As(err, &httpErr):
		if msg, ok := httpErr.Message.(string); ok {
			return httpErr.Code, msg
		}
		return httpErr.Code, http.StatusText(httpErr.Code)
	default:
		return http.StatusInternalServerError, msgInternal
	}
}
