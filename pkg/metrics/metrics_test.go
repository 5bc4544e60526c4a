package metrics_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/nkjain92/gpt-image-1/pkg/metrics"
)

func TestIncIsKeyedByLabels(t *testing.T) {
	reg := metrics.NewRegistry()
	ctx := context.Background()

	reg.Inc(ctx, metrics.ImagesStored, metrics.Labels{"store": "results"}, 1)
	reg.Inc(ctx, metrics.ImagesStored, metrics.Labels{"store": "results"}, 2)
	reg.Inc(ctx, metrics.ImagesStored, metrics.Labels{"store": "uploads"}, 1)

	require.Equal(t, int64(3), reg.Value(metrics.ImagesStored, metrics.Labels{"store": "results"}))
	require.Equal(t, int64(1), reg.Value(metrics.ImagesStored, metrics.Labels{"store": "uploads"}))
	require.Equal(t, []string{
		"images_stored_total{store=results} 3",
		"images_stored_total{store=uploads} 1",
	}, reg.SnapshotLines())
}

func TestIncConcurrent(t *testing.T) {
	reg := metrics.NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg.Inc(context.Background(), metrics.ProviderCalls, nil, 1)
		}()
	}
	wg.Wait()
	require.Equal(t, int64(50), reg.Value(metrics.ProviderCalls, nil))
}

func TestNilRegistryIsNoop(t *testing.T) {
	var reg *metrics.Registry
	require.NotPanics(t, func() {
		reg.Inc(context.Background(), metrics.ProviderCalls, nil, 1)
	})
	require.Zero(t, reg.Value(metrics.ProviderCalls, nil))
	require.Empty(t, reg.SnapshotLines())
	require.Empty(t, reg.SnapshotJSON())
}

func TestTextHandler(t *testing.T) {
	reg := metrics.NewRegistry()
	reg.Inc(context.Background(), metrics.HTTPRequests, metrics.Labels{"status": "2xx"}, 4)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/metrics", nil), rec)

	require.NoError(t, reg.TextHandler(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "http_requests_total{status=2xx} 4\n", rec.Body.String())
}
