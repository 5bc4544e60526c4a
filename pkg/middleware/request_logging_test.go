package middleware_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"

	"github.com/nkjain92/gpt-image-1/pkg/metrics"
	"github.com/nkjain92/gpt-image-1/pkg/middleware"
)

func newServer(reg *metrics.Registry) *echo.Echo {
	e := echo.New()
	e.Use(middleware.RequestLogger(reg))
	e.GET("/ok/:id", func(c echo.Context) error {
		log.Ctx(c.Request().Context()).Info().Msg("inside handler")
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/fail", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadGateway, "upstream")
	})
	return e
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestRequestLoggerCountsByRoute(t *testing.T) {
	buf := captureLogs(t)
	reg := metrics.NewRegistry()
	e := newServer(reg)

	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok/"+id, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	}

	require.Equal(t, int64(2), reg.Value(metrics.HTTPRequests, metrics.Labels{"method": "GET", "route": "/ok/:id", "status": "2xx"}))
	require.Contains(t, buf.String(), `"request_id"`)
	require.Contains(t, buf.String(), "inside handler")
}

func TestRequestLoggerKeepsIncomingRequestID(t *testing.T) {
	captureLogs(t)
	e := newServer(nil)

	req := httptest.NewRequest(http.MethodGet, "/ok/1", nil)
	req.Header.Set(echo.HeaderXRequestID, "abc-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, "abc-123", rec.Header().Get(echo.HeaderXRequestID))
}

func TestRequestLoggerRecordsErrorStatus(t *testing.T) {
	buf := captureLogs(t)
	reg := metrics.NewRegistry()
	e := newServer(reg)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, int64(1), reg.Value(metrics.HTTPRequestErrors, metrics.Labels{"method": "GET", "route": "/fail", "status": "5xx"}))
	require.Contains(t, buf.String(), `"status":502`)
}
