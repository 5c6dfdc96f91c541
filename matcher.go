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
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/lattice-dev/routeforge/compiler"
)

// State is one of the Matcher's three observable states (spec.md §4.4).
type State int

const (
	// Fresh means the catalog is open and no warm-up has happened yet.
	Fresh State = iota
	// Warm means an artifact has been built from a live Catalog.
	Warm
	// Loaded means an artifact was restored from a cache and is
	// equivalent to Warm for matching purposes.
	Loaded
)

// Match is the result of a successful Matcher.Match call. It carries its
// own copy of the bound arguments so that concurrent matches against the
// same Route never observe each other's bindings — the concurrency-driven
// redesign of spec.md §3's "arguments" field described in SPEC_FULL.md.
type Match struct {
	Route *Route
	Args  map[string]string
}

// matcherState is the immutable, atomically-published artifact a Matcher
// matches against. A hot-reload builds a new one off to the side and
// installs it with a single atomic pointer store; nothing already
// published is ever mutated in place (spec.md §5).
type matcherState struct {
	routes []*Route

	staticIndex    *compiler.StaticIndex
	staticRouteIdx []int // static bucket position -> index into routes

	dynamicGroup    *compiler.DynamicGroup
	dynamicRouteIdx []int // dynamic bucket position -> index into routes

	names  map[string]*Route
	loaded bool // true if this state came from Load rather than Warmup
}

// Matcher accepts (method, scheme, host, path) and returns the matched
// route plus bound arguments, or a typed error (spec.md §4.4). It is safe
// for concurrent use once warm.
type Matcher struct {
	state atomic.Pointer[matcherState]

	diagnostics DiagnosticHandler
	basePath    func() string

	bloomFilterSize    uint64
	bloomHashFunctions int

	tracerName        string
	metricsRegisterer prometheusRegisterer

	obs *observability // lazily built in Warmup/Load when tracing/metrics are configured
}

// NewMatcher creates a Matcher in the Fresh state.
func NewMatcher(opts ...Option) *Matcher {
	m := &Matcher{
		bloomFilterSize:    1024,
		bloomHashFunctions: 3,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State reports the Matcher's current observable state.
func (m *Matcher) State() State {
	st := m.state.Load()
	if st == nil {
		return Fresh
	}
	if st.loaded {
		return Loaded
	}
	return Warm
}

// Warmup builds the matching artifact from catalog's routes and publishes
// it atomically. It is safe to call more than once (hot-reload): each call
// builds a new state off to the side before swapping it in, per the
// copy-on-write resource model of spec.md §5.
func (m *Matcher) Warmup(catalog *Catalog) error {
	start := time.Now()
	if obs := m.ensureObservability(); obs != nil && obs.tracer != nil {
		_, span := obs.tracer.Start(context.Background(), "router.Warmup")
		defer span.End()
	}
	routes := catalog.snapshot()
	st, err := m.buildState(routes, false)
	if err != nil {
		return err
	}
	m.state.Store(st)
	m.recordWarmupDuration(time.Since(start))
	m.emitDiagnostic(DiagCatalogWarmed, "catalog warmed", map[string]any{"routes": len(routes)})
	return nil
}

// Swap is an alias for Warmup naming the hot-reload use case explicitly:
// build a fresh artifact from a (possibly new) catalog and install it
// atomically, without ever mutating the previously published one.
func (m *Matcher) Swap(catalog *Catalog) error {
	return m.Warmup(catalog)
}

func (m *Matcher) buildState(routes []*Route, loaded bool) (*matcherState, error) {
	st := &matcherState{
		routes: routes,
		names:  make(map[string]*Route),
		loaded: loaded,
	}

	var staticPaths []string
	var staticRouteIdx []int
	var dynamicRoutes []compiler.DynamicRoute
	var dynamicRouteIdx []int

	for i, r := range routes {
		pp, err := compiler.Parse(r.pattern)
		if err != nil {
			return nil, wrapMalformed(r.pattern, err)
		}

		r.mergeParsedSchemeHost(pp.Scheme, pp.Host)
		if pp.HandlerTail != nil {
			r.setHandlerRef(pp.HandlerTail)
		}

		cr, err := compiler.CompilePath(pp, r.asserts, r.defaults)
		if err != nil {
			return nil, wrapMalformed(r.pattern, err)
		}
		for _, h := range r.hosts {
			if err := compiler.AddHost(cr, h, r.asserts, r.defaults); err != nil {
				return nil, wrapMalformed(r.pattern, err)
			}
		}

		r.freeze(cr)

		if r.name != "" {
			if _, exists := st.names[r.name]; exists {
				return nil, &DuplicateRouteError{Name: r.name}
			}
			st.names[r.name] = r
		}

		if len(r.compiled.Variables) > 8 {
			m.emitDiagnostic(DiagHighParamCount, "route has a high variable count", map[string]any{
				"pattern": r.pattern,
				"count":   len(r.compiled.Variables),
			})
		}
		m.emitDiagnostic(DiagRouteRegistered, "route registered", map[string]any{"pattern": r.pattern})

		// A route is static iff its path has no variables AND it has no
		// host constraint — host-constrained routes always need
		// match-time host disambiguation (spec.md §4.4).
		if cr.IsStatic && len(cr.HostRegexes) == 0 {
			staticPaths = append(staticPaths, compiler.CanonicalizeStaticPath(r.pattern))
			staticRouteIdx = append(staticRouteIdx, i)
			continue
		}

		dynamicRoutes = append(dynamicRoutes, compiler.DynamicRoute{
			Index:      len(dynamicRoutes),
			PathSource: cr.PathSource,
			Variables:  cr.Variables,
		})
		dynamicRouteIdx = append(dynamicRouteIdx, i)
	}

	st.staticIndex = compiler.NewStaticIndex(staticPaths, m.bloomFilterSize, m.bloomHashFunctions)
	st.staticRouteIdx = staticRouteIdx

	const highFalsePositiveThreshold = 0.05
	if fpRate := st.staticIndex.EstimatedFalsePositiveRate(); fpRate > highFalsePositiveThreshold {
		m.emitDiagnostic(DiagBloomFalsePositiveRate, "bloom filter false-positive rate is high; consider increasing bloom filter size", map[string]any{
			"estimated_rate": fpRate,
			"static_routes":  len(staticPaths),
			"bloom_bits":     m.bloomFilterSize,
		})
	}

	group, err := compiler.Build(dynamicRoutes)
	if err != nil {
		return nil, wrapMalformed("<dynamic group>", err)
	}
	st.dynamicGroup = group
	st.dynamicRouteIdx = dynamicRouteIdx

	return st, nil
}

func wrapMalformed(pattern string, err error) error {
	if mpe, ok := err.(*compiler.MalformedPatternError); ok {
		return &MalformedPatternError{Pattern: mpe.Pattern, Reason: mpe.Reason}
	}
	return &MalformedPatternError{Pattern: pattern, Reason: err.Error()}
}

// Match resolves (method, scheme, host, path) against the warm artifact.
func (m *Matcher) Match(method, scheme, host, path string) (*Match, error) {
	return m.MatchContext(context.Background(), method, scheme, host, path)
}

// MatchContext is Match with an explicit context, used to propagate a
// tracing span around the call when WithTracer was configured. Callers
// that don't need tracing can use Match.
func (m *Matcher) MatchContext(ctx context.Context, method, scheme, host, path string) (*Match, error) {
	start := time.Now()
	_, finish := m.startMatchSpan(ctx, method, path)
	result, err := m.match(method, scheme, host, path)
	finish(err == nil)
	m.recordMatchDuration(time.Since(start))
	return result, err
}

func (m *Matcher) match(method, scheme, host, path string) (*Match, error) {
	st := m.state.Load()
	if st == nil {
		return nil, ErrNotWarm
	}

	canonicalPath := m.canonicalize(path)

	if idx, ok := st.staticIndex.Lookup(compiler.CanonicalizeStaticPath(canonicalPath)); ok {
		route := st.routes[st.staticRouteIdx[idx]]
		return m.finish(route, nil, method, scheme, host)
	}

	if st.dynamicGroup != nil {
		if pos, captures, ok := st.dynamicGroup.Match(canonicalPath); ok {
			route := st.routes[st.dynamicRouteIdx[pos]]
			return m.finish(route, captures, method, scheme, host)
		}
	}

	return nil, ErrNoRouteMatched
}

// canonicalize implements spec.md §6: strip an optional base-path prefix,
// percent-decode, map an empty path to "/", and prefix "/" to a path that
// starts with one of ':', '-', '_', '~', '@' (other paths are left as is).
func (m *Matcher) canonicalize(path string) string {
	if m.basePath != nil {
		if bp := m.basePath(); bp != "" && bp != "/" {
			path = strings.TrimPrefix(path, bp)
		}
	}

	if decoded, err := url.PathUnescape(path); err == nil {
		path = decoded
	}

	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		switch path[0] {
		case ':', '-', '_', '~', '@':
			path = "/" + path
		}
	}
	return path
}

func (m *Matcher) finish(route *Route, pathCaptures map[string]string, method, scheme, host string) (*Match, error) {
	if !route.allowsMethod(method) {
		return nil, &MethodNotAllowedError{Allowed: route.Methods()}
	}
	if !route.allowsScheme(scheme) {
		return nil, &SchemeNotAllowedError{Allowed: route.SchemesList()}
	}

	var hostCaptures map[string]string
	if len(route.compiled.HostRegexes) > 0 {
		matched := false
		for _, hre := range route.compiled.HostRegexes {
			if sm := hre.FindStringSubmatch(host); sm != nil {
				hostCaptures = make(map[string]string, len(sm))
				for i, name := range hre.SubexpNames() {
					if name != "" && sm[i] != "" {
						hostCaptures[name] = sm[i]
					}
				}
				matched = true
				break
			}
		}
		if !matched {
			return nil, &HostNotAllowedError{Host: host}
		}
	}

	args := make(map[string]string, len(route.compiled.Variables))
	for _, v := range route.compiled.Variables {
		val, ok := hostCaptures[v.Name]
		if !ok {
			val, ok = pathCaptures[v.Name]
		}
		if !ok || val == "" {
			if v.HasDefault {
				args[v.Name] = v.Default
			}
			continue
		}
		if decoded, err := url.PathUnescape(val); err == nil {
			args[v.Name] = decoded
		} else {
			args[v.Name] = val
		}
	}

	return &Match{Route: route, Args: args}, nil
}

func (m *Matcher) emitDiagnostic(kind DiagnosticKind, message string, fields map[string]any) {
	if m.diagnostics == nil {
		return
	}
	m.diagnostics.OnDiagnostic(DiagnosticEvent{Kind: kind, Message: message, Fields: fields})
}
