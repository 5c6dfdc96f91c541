// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package router

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// prometheusRegisterer is the subset of *prometheus.Registry needed to
// publish the match-duration histogram; named locally so options.go does
// not need to import the prometheus package itself.
type prometheusRegisterer = prometheus.Registerer

// observability bundles the optional tracer and metrics instruments a
// Matcher wraps Warmup/Match with. A nil *observability (the default, zero
// allocations) makes every recording call below a no-op — instrumentation
// never sits on the hot matching path unless explicitly configured
// (spec.md §5's no-I/O guarantee).
type observability struct {
	tracer         trace.Tracer
	matchDuration  *prometheus.HistogramVec
	warmupDuration prometheus.Histogram
}

// buildObservability constructs the observability bundle from the options
// recorded on m, or returns nil if neither tracing nor metrics were
// configured.
func (m *Matcher) buildObservability() *observability {
	if m.tracerName == "" && m.metricsRegisterer == nil {
		return nil
	}

	obs := &observability{}
	if m.tracerName != "" {
		obs.tracer = otel.Tracer(m.tracerName)
	}
	if m.metricsRegisterer != nil {
		obs.matchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "routeforge_match_duration_seconds",
			Help:    "Duration of Matcher.Match calls in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"})
		obs.warmupDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "routeforge_warmup_duration_seconds",
			Help: "Duration of Matcher.Warmup/Swap calls in seconds.",
		})
		m.metricsRegisterer.MustRegister(obs.matchDuration, obs.warmupDuration)
	}
	return obs
}

// ensureObservability lazily builds m.obs on first use so NewMatcher need
// not eagerly register Prometheus collectors before Warmup is ever called.
func (m *Matcher) ensureObservability() *observability {
	if m.obs == nil && (m.tracerName != "" || m.metricsRegisterer != nil) {
		m.obs = m.buildObservability()
	}
	return m.obs
}

func (m *Matcher) recordMatchDuration(d time.Duration) {
	obs := m.ensureObservability()
	if obs == nil || obs.matchDuration == nil {
		return
	}
	obs.matchDuration.WithLabelValues("observed").Observe(d.Seconds())
}

func (m *Matcher) recordWarmupDuration(d time.Duration) {
	obs := m.ensureObservability()
	if obs == nil || obs.warmupDuration == nil {
		return
	}
	obs.warmupDuration.Observe(d.Seconds())
}

// NewStdoutTracerProvider builds a *sdktrace.TracerProvider that writes
// spans to stdout, for local development and tests. Register it globally
// with otel.SetTracerProvider before constructing a Matcher with
// WithTracer, or pass a named tracer sourced from it directly. Production
// callers typically wire their own TracerProvider (OTLP, etc.) instead.
func NewStdoutTracerProvider() (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	return sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter)), nil
}

// startMatchSpan starts a tracing span around a single Match call. When no
// tracer is configured it returns the context unchanged and a no-op finish
// function.
func (m *Matcher) startMatchSpan(ctx context.Context, method, path string) (context.Context, func(matched bool)) {
	obs := m.ensureObservability()
	if obs == nil || obs.tracer == nil {
		return ctx, func(bool) {}
	}
	ctx, span := obs.tracer.Start(ctx, "router.Match", trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.target", path),
	))
	return ctx, func(matched bool) {
		span.SetAttributes(attribute.Bool("router.matched", matched))
		span.End()
	}
}
