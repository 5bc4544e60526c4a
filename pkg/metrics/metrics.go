package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Counter names emitted by the service.
const (
	HTTPRequests       = "http_requests_total"
	HTTPRequestErrors  = "http_requests_errors_total"
	ImagesStored       = "images_stored_total"
	ImagesBytesStored  = "images_bytes_stored_total"
	ProviderCalls      = "provider_calls_total"
	ProviderFailures   = "provider_failures_total"
	UploadsRejected    = "uploads_rejected_total"
	ValidationFailures = "validation_failures_total"
)

// Labels attached to a counter increment.
type Labels map[string]string

// Registry stores counters for exposition and mirrors them to OTel counters.
type Registry struct {
	mu       sync.RWMutex
	counters map[string]*atomic.Int64 // key = fullKey(name, labels)
	meter    metric.Meter
	otelCtrs map[string]metric.Int64Counter // base name -> instrument
}

func NewRegistry() *Registry {
	m := otel.GetMeterProvider().Meter("gpt-image-1")
	return &Registry{
		counters: make(map[string]*atomic.Int64),
		meter:    m,
		otelCtrs: make(map[string]metric.Int64Counter),
	}
}

// fullKey makes deterministic key from name and labels map.
func fullKey(name string, labels Labels) string {
	if len(labels) == 0 {
		return name
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(labels[k])
	}
	b.WriteByte('}')
	return b.String()
}

// Inc increases a named counter by n with labels.
// Also records the increment via OpenTelemetry counter instrument.
// A nil registry is a no-op so components can run without metrics.
func (r *Registry) Inc(ctx context.Context, name string, labels Labels, n int64) {
	if r == nil {
		return
	}
	key := fullKey(name, labels)

	r.mu.RLock()
	c := r.counters[key]
	r.mu.RUnlock()
	if c == nil {
		r.mu.Lock()
		if c = r.counters[key]; c == nil {
			var v atomic.Int64
			r.counters[key] = &v
			c = &v
		}
		r.mu.Unlock()
	}
	c.Add(n)

	r.mu.RLock()
	inst := r.otelCtrs[name]
	r.mu.RUnlock()
	if inst == nil {
		r.mu.Lock()
		if inst = r.otelCtrs[name]; inst == nil {
			ctr, _ := r.meter.Int64Counter(name)
			r.otelCtrs[name] = ctr
			inst = ctr
		}
		r.mu.Unlock()
	}
	if inst != nil {
		attrs := make([]attribute.KeyValue, 0, len(labels))
		for k, v := range labels {
			attrs = append(attrs, attribute.String(k, v))
		}
		inst.Add(ctx, n, metric.WithAttributes(attrs...))
	}
}

// Value returns the current value of one labelled counter. A nil registry
// reports zero.
func (r *Registry) Value(name string, labels Labels) int64 {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c := r.counters[fullKey(name, labels)]; c != nil {
		return c.Load()
	}
	return 0
}

// SnapshotLines returns sorted text lines representing current counters.
func (r *Registry) SnapshotLines() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.counters))
	for k := range r.counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s %d", k, r.counters[k].Load()))
	}
	return lines
}

// SnapshotJSON returns a map of counter->value for JSON rendering.
func (r *Registry) SnapshotJSON() map[string]int64 {
	if r == nil {
		return map[string]int64{}
	}
	out := make(map[string]int64)
	r.mu.RLock()
	for k, v := range r.counters {
		out[k] = v.Load()
	}
	r.mu.RUnlock()
	return out
}

// TextHandler writes counters in simple text format.
func (r *Registry) TextHandler(c echo.Context) error {
	return c.String(http.StatusOK, strings.Join(append(r.SnapshotLines(), ""), "\n"))
}

// JSONHandler writes counters as JSON.
func (r *Registry) JSONHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, r.SnapshotJSON())
}
