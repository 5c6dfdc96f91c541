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
	"maps"
	"sort"
	"strings"
	"sync"

	"github.com/lattice-dev/routeforge/compiler"
)

// Route is a single registered route definition. It provides a fluent
// builder interface for asserts, defaults, and metadata.
//
// A Route is constructed, then mutated only while its Catalog is still
// open (group application, builder calls), then frozen when the Matcher
// is warmed up. After warm-up every field here is immutable; per-request
// parameter bindings are never stored on the Route itself (see Match in
// matcher.go) — this is the concurrency-driven redesign of the data model
// described in SPEC_FULL.md §3.
type Route struct {
	mu sync.Mutex

	pattern string // the raw pattern string, as given to NewRoute

	methods map[string]bool // uppercase verb set; empty means "any verb"
	schemes map[string]bool // lowercase scheme set; empty means scheme-agnostic
	hosts   []string        // host pattern templates (may contain placeholders)

	asserts  map[string][]string // variable name -> regex fragment or literal alternatives
	defaults map[string]string   // variable name -> default value

	middlewareNames []string

	handler    any                // opaque, never interpreted by this package
	handlerRef *compiler.HandlerRef // parsed "*<Class@method>" tail, informational only

	name        string
	description string
	tags        []string

	group *Group // set by Group.Add, used only for name-prefix composition

	compiled *compiler.CompiledRoute
	frozen   bool
}

// NewRoute creates a Route for the given methods and pattern. methods is
// normalized to uppercase; a nil/empty slice means "matches any verb".
func NewRoute(methods []string, pattern string, handler any) *Route {
	m := make(map[string]bool, len(methods))
	for _, meth := range methods {
		m[strings.ToUpper(meth)] = true
	}
	if pattern == "" {
		pattern = "/"
	}
	if !strings.HasPrefix(pattern, "/") && !strings.Contains(pattern, "://") && !strings.HasPrefix(pattern, "//") {
		pattern = "/" + pattern
	}
	return &Route{
		pattern: pattern,
		methods: m,
		handler: handler,
	}
}

func (r *Route) checkMutable() {
	if r.frozen {
		panic("router: route cannot be modified after the matcher has been warmed up")
	}
}

// Where sets an explicit assert for a path/host variable: a regex fragment,
// or — when more than one alternative is given — a set of literal
// alternatives joined with '|' at compile time. This is priority step 3 of
// spec.md §4.2's assertion resolution (named presets and inline regex both
// take precedence over it).
func (r *Route) Where(name string, alternatives ...string) *Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkMutable()
	if r.asserts == nil {
		r.asserts = make(map[string][]string)
	}
	r.asserts[name] = append([]string(nil), alternatives...)
	return r
}

func (r *Route) wherePreset(name, preset string) *Route {
	p, _ := compiler.Preset(preset)
	return r.Where(name, p)
}

// WhereInt constrains name to the "int" preset (\d+).
func (r *Route) WhereInt(name string) *Route { return r.wherePreset(name, "int") }

// WhereLower constrains name to the "lower" preset ([a-z]+).
func (r *Route) WhereLower(name string) *Route { return r.wherePreset(name, "lower") }

// WhereUpper constrains name to the "upper" preset ([A-Z]+).
func (r *Route) WhereUpper(name string) *Route { return r.wherePreset(name, "upper") }

// WhereAlpha constrains name to the "alpha" preset ([A-Za-z]+).
func (r *Route) WhereAlpha(name string) *Route { return r.wherePreset(name, "alpha") }

// WhereAlnum constrains name to the "alnum" preset ([A-Za-z0-9]+).
func (r *Route) WhereAlnum(name string) *Route { return r.wherePreset(name, "alnum") }

// WhereYear constrains name to the "year" preset.
func (r *Route) WhereYear(name string) *Route { return r.wherePreset(name, "year") }

// WhereMonth constrains name to the "month" preset.
func (r *Route) WhereMonth(name string) *Route { return r.wherePreset(name, "month") }

// WhereDay constrains name to the "day" preset.
func (r *Route) WhereDay(name string) *Route { return r.wherePreset(name, "day") }

// WhereUUID constrains name to the "uuid" preset.
func (r *Route) WhereUUID(name string) *Route { return r.wherePreset(name, "uuid") }

// WhereEnum constrains name to one of the given literal values.
func (r *Route) WhereEnum(name string, values ...string) *Route {
	return r.Where(name, values...)
}

// Default sets the default value substituted for name when a match or a
// URL generation call leaves it unbound.
func (r *Route) Default(name, value string) *Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkMutable()
	if r.defaults == nil {
		r.defaults = make(map[string]string)
	}
	r.defaults[name] = value
	return r
}

// Schemes restricts the route to the given lowercase schemes.
func (r *Route) Schemes(schemes ...string) *Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkMutable()
	if r.schemes == nil {
		r.schemes = make(map[string]bool, len(schemes))
	}
	for _, s := range schemes {
		r.schemes[strings.ToLower(s)] = true
	}
	return r
}

// Hosts restricts the route to the given host pattern templates.
func (r *Route) Hosts(hosts ...string) *Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkMutable()
	r.hosts = append(r.hosts, hosts...)
	return r
}

// Use appends middleware name references, opaque to this package.
func (r *Route) Use(names ...string) *Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkMutable()
	r.middlewareNames = append(r.middlewareNames, names...)
	return r
}

// SetName assigns a unique name to the route for URL generation and
// introspection. Group name prefixes (outermost-first) are applied
// automatically when the route belongs to a group.
func (r *Route) SetName(name string) *Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkMutable()
	if r.group != nil {
		name = r.group.namePrefix() + name
	}
	r.name = name
	return r
}

// SetDescription sets an optional human-readable description.
func (r *Route) SetDescription(desc string) *Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkMutable()
	r.description = desc
	return r
}

// SetTags attaches categorization tags to the route.
func (r *Route) SetTags(tags ...string) *Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkMutable()
	r.tags = append(r.tags, tags...)
	return r
}

// Pattern returns the route's raw pattern string.
func (r *Route) Pattern() string { return r.pattern }

// SchemesList returns a sorted copy of the route's scheme set (empty means
// scheme-agnostic).
func (r *Route) SchemesList() []string {
	out := make([]string, 0, len(r.schemes))
	for s := range r.schemes {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Methods returns a sorted copy of the route's method set (empty means any).
func (r *Route) Methods() []string {
	out := make([]string, 0, len(r.methods))
	for m := range r.methods {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Name returns the route's name, empty if unnamed.
func (r *Route) Name() string { return r.name }

// Description returns the route's description, empty if unset.
func (r *Route) Description() string { return r.description }

// Tags returns the route's tags.
func (r *Route) Tags() []string { return r.tags }

// Handler returns the opaque handler value passed to NewRoute.
func (r *Route) Handler() any { return r.handler }

// HandlerRef returns the parsed "*<Class@method>" pattern tail, or nil if
// the pattern did not embed one. It is purely informational: the matcher
// never interprets or dispatches through it.
func (r *Route) HandlerRef() *compiler.HandlerRef { return r.handlerRef }

// Asserts returns a copy of the route's explicit variable asserts.
func (r *Route) Asserts() map[string][]string {
	if len(r.asserts) == 0 {
		return nil
	}
	out := make(map[string][]string, len(r.asserts))
	for k, v := range r.asserts {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Defaults returns a copy of the route's default values.
func (r *Route) Defaults() map[string]string {
	if len(r.defaults) == 0 {
		return nil
	}
	out := make(map[string]string, len(r.defaults))
	maps.Copy(out, r.defaults)
	return out
}

// MiddlewareNames returns the route's ordered middleware name references.
func (r *Route) MiddlewareNames() []string { return r.middlewareNames }

// allowsScheme reports whether scheme is permitted by the route; an empty
// scheme set means scheme-agnostic.
func (r *Route) allowsScheme(scheme string) bool {
	if len(r.schemes) == 0 {
		return true
	}
	return r.schemes[strings.ToLower(scheme)]
}

// allowsMethod reports whether method is permitted by the route; an empty
// method set means "matches any verb".
func (r *Route) allowsMethod(method string) bool {
	if len(r.methods) == 0 {
		return true
	}
	return r.methods[strings.ToUpper(method)]
}

// mergeParsedSchemeHost folds a scheme/host embedded in the pattern itself
// (e.g. "https://api.example.com/v1/{id}") into the route's explicit
// scheme/host sets. Called by Matcher.Warmup during compilation, before the
// route is frozen.
func (r *Route) mergeParsedSchemeHost(scheme, host string) {
	if scheme != "" {
		if r.schemes == nil {
			r.schemes = make(map[string]bool, 1)
		}
		r.schemes[scheme] = true
	}
	if host != "" {
		r.hosts = append(r.hosts, host)
	}
}

// setHandlerRef records the parsed handler-tail reference. Called by
// Matcher.Warmup during compilation, before the route is frozen.
func (r *Route) setHandlerRef(ref *compiler.HandlerRef) {
	r.handlerRef = ref
}

// freeze marks the route immutable; called by the Matcher at warm-up and
// when loading an artifact.
func (r *Route) freeze(compiled *compiler.CompiledRoute) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.compiled = compiled
	r.frozen = true
}
