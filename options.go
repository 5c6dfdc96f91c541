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

// Option configures a Matcher at construction time.
type Option func(*Matcher)

// WithDiagnostics sets a diagnostic handler for the matcher.
//
// Diagnostic events are optional informational events surfaced at
// catalog-build and warm-up time; the matcher functions correctly whether
// diagnostics are collected or not, and the routine NoRouteMatched path
// never emits one.
//
// Example with logging:
//
//	import "log/slog"
//
//	handler := router.DiagnosticHandlerFunc(func(e router.DiagnosticEvent) {
//	    slog.Info(e.Message, "kind", e.Kind, "fields", e.Fields)
//	})
//	m := router.NewMatcher(router.WithDiagnostics(handler))
func WithDiagnostics(handler DiagnosticHandler) Option {
	return func(m *Matcher) {
		m.diagnostics = handler
	}
}

// WithBasePathExtractor injects a callback that returns the current
// server-provided script-name prefix to strip from an incoming path before
// matching (spec.md §6/§9). The base path is never read from a process
// global; callers that have no such prefix should simply omit this option.
func WithBasePathExtractor(extractor func() string) Option {
	return func(m *Matcher) {
		m.basePath = extractor
	}
}

// WithBloomFilterSize sets the bloom filter bit-array size used for
// negative lookups in the static route bucket. Larger sizes reduce false
// positives at the cost of memory; recommended 2-3x the static route count.
//
// Default: 1024.
func WithBloomFilterSize(size uint64) Option {
	return func(m *Matcher) {
		if size > 0 {
			m.bloomFilterSize = size
		}
	}
}

// WithBloomFilterHashFunctions sets the number of hash functions used by
// the static bucket's bloom filter. Values outside [1, 10] are clamped.
//
// Default: 3.
func WithBloomFilterHashFunctions(numFuncs int) Option {
	return func(m *Matcher) {
		m.bloomHashFunctions = max(1, min(numFuncs, 10))
	}
}

// WithTracer enables OpenTelemetry span emission around Warmup and Match.
// When unset, instrumentation is a nil-checked no-op and never allocates,
// preserving the no-I/O, no-suspension hot path guarantee of spec.md §5.
func WithTracer(tracerName string) Option {
	return func(m *Matcher) {
		m.tracerName = tracerName
	}
}

// WithMetrics enables a Prometheus histogram recording Match duration,
// registered against reg. When unset, metrics recording is a nil-checked
// no-op.
func WithMetrics(reg prometheusRegisterer) Option {
	return func(m *Matcher) {
		m.metricsRegisterer = reg
	}
}
