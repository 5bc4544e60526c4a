package api

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/nkjain92/gpt-image-1/pkg/metrics"
	"github.com/nkjain92/gpt-image-1/pkg/middleware"
)

// NewServer builds the echo instance with middleware, error handling and
// every route registered.
func NewServer(h *Handlers, reg *metrics.Registry) *echo.Echo {
	server := echo.New()
	server.HideBanner = true
	server.HidePort = true
	server.HTTPErrorHandler = ErrorHandler
	server.Server.ReadHeaderTimeout = 10 * time.Second

	server.Use(middleware.RequestLogger(reg))
	server.Use(echomw.Recover())

	RegisterRoutes(server, h, reg)
	return server
}

// RegisterRoutes attaches the API, image and operational routes.
func RegisterRoutes(e *echo.Echo, h *Handlers, reg *metrics.Registry) {
	g := e.Group("/api")
	g.POST("/generate", h.Generate)
	g.POST("/edit", h.Edit)
	g.POST("/upload", h.Upload)
	g.POST("/prompt-helper", h.PromptHelper)
	g.GET("/images", h.ListResults)
	g.GET("/uploads", h.ListUploads)

	e.GET("/results/:name", h.ServeResult)
	e.GET("/uploads/:name", h.ServeUpload)

	e.GET("/healthz", h.Healthz)
	e.GET("/metrics", reg.TextHandler)
	e.GET("/metrics.json", reg.JSONHandler)
}
