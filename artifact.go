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
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/lattice-dev/routeforge/compiler"
)

// artifactVersion guards against loading a cache produced by an
// incompatible layout of this struct.
const artifactVersion = 1

// Artifact is the precompiled-catalog cache, serialized with
// encoding/json. It stores the frozen route records in catalog order (each
// flagged static or not, with its compiled regex sources and variable
// layout) plus the grouped dynamic regex source. The static table, the
// dynamic mark order and the per-mark variable layouts are not stored as
// fields of their own; Load rebuilds them from the route records. Loading
// one lets a Matcher skip pattern parsing and regex synthesis entirely and
// enter the Loaded state directly.
type Artifact struct {
	Version          int             `json:"version"`
	ContentHash      string          `json:"content_hash"`
	Routes           []ArtifactRoute `json:"routes"`
	GroupRegexSource string          `json:"group_regex_source,omitempty"`
}

// ArtifactRoute is one frozen route record within an Artifact: its
// registration inputs plus its already-compiled regex source and variable
// layout, so Load never has to re-run the parser or regex synthesis.
// Handler is the route's handler value as given to NewRoute, encoded as-is
// by encoding/json; a handler encoding/json cannot encode (a func, a
// channel) makes marshaling the Artifact fail.
type ArtifactRoute struct {
	Pattern         string              `json:"pattern"`
	Handler         any                 `json:"handler,omitempty"`
	Methods         []string            `json:"methods,omitempty"`
	Schemes         []string            `json:"schemes,omitempty"`
	Hosts           []string            `json:"hosts,omitempty"`
	Name            string              `json:"name,omitempty"`
	Description     string              `json:"description,omitempty"`
	Tags            []string            `json:"tags,omitempty"`
	Asserts         map[string][]string `json:"asserts,omitempty"`
	Defaults        map[string]string   `json:"defaults,omitempty"`
	MiddlewareNames []string            `json:"middleware,omitempty"`

	PathSource  string             `json:"path_source"`
	HostSources []string           `json:"host_sources,omitempty"`
	Variables   []ArtifactVariable `json:"variables,omitempty"`
	PathTokens  []compiler.Token   `json:"path_tokens"`
	HostTokens  [][]compiler.Token `json:"host_tokens,omitempty"`
	Template    string             `json:"template"`
	IsStatic    bool               `json:"is_static"`
}

// ArtifactVariable mirrors compiler.VarBinding for serialization. AssertSource
// is the anchored assertion regex's source text, recompiled on Load so a
// loaded Matcher's Generate still rejects a value that doesn't satisfy its
// variable's pattern.
type ArtifactVariable struct {
	Name         string `json:"name"`
	Default      string `json:"default,omitempty"`
	HasDefault   bool   `json:"has_default,omitempty"`
	Optional     bool   `json:"optional,omitempty"`
	AssertSource string `json:"assert_source"`
}

// BuildArtifact snapshots the Matcher's current warm state into a
// serializable Artifact. The Matcher must already be Warm or Loaded.
func (m *Matcher) BuildArtifact() (*Artifact, error) {
	st := m.state.Load()
	if st == nil {
		return nil, ErrNotWarm
	}

	a := &Artifact{
		Version: artifactVersion,
		Routes:  make([]ArtifactRoute, len(st.routes)),
	}
	infos := make([]RouteInfo, len(st.routes))

	for i, r := range st.routes {
		infos[i] = r.describe()
		cr := r.compiled
		ar := ArtifactRoute{
			Pattern:         r.pattern,
			Handler:         r.handler,
			Methods:         r.Methods(),
			Schemes:         r.SchemesList(),
			Hosts:           append([]string(nil), r.hosts...),
			Name:            r.name,
			Description:     r.description,
			Tags:            r.tags,
			Asserts:         r.Asserts(),
			Defaults:        r.Defaults(),
			MiddlewareNames: r.middlewareNames,
			PathSource:      cr.PathSource,
			HostSources:     cr.HostSources,
			PathTokens:      cr.PathTokens,
			HostTokens:      cr.HostTokens,
			Template:        cr.Template,
			IsStatic:        cr.IsStatic,
		}
		for _, v := range cr.Variables {
			var assertSource string
			if v.AssertRegex != nil {
				assertSource = v.AssertRegex.String()
			}
			ar.Variables = append(ar.Variables, ArtifactVariable{
				Name: v.Name, Default: v.Default, HasDefault: v.HasDefault, Optional: v.Optional,
				AssertSource: assertSource,
			})
		}
		a.Routes[i] = ar
	}

	if st.dynamicGroup != nil {
		a.GroupRegexSource = st.dynamicGroup.Source()
	}

	hash, err := contentHash(infos)
	if err != nil {
		return nil, err
	}
	a.ContentHash = hash

	return a, nil
}

// IsStale reports whether catalog's current route definitions differ from
// the ones the artifact was built from, per spec.md §4.6's "detect
// staleness by a cheap content hash" requirement. Calling IsStale never
// freezes catalog — it may still be open afterward.
func (a *Artifact) IsStale(catalog *Catalog) (bool, error) {
	hash, err := contentHash(catalog.Routes())
	if err != nil {
		return false, err
	}
	return hash != a.ContentHash, nil
}

// contentHash hashes a deterministic JSON encoding of the route
// definitions an artifact or catalog carries. encoding/json marshals map
// keys in sorted order, so two equal route sets always hash identically
// regardless of registration-time map iteration order (grounded on the
// teacher's router/cache.go sha256-based ETag: "hash bytes, compare on
// reload", applied here to catalog content instead of HTTP response
// bodies). The compile-time fields IsStatic and ParamCount are zeroed
// before hashing, so a warmed route and an identical unwarmed one hash the
// same.
func contentHash(infos []RouteInfo) (string, error) {
	inputs := make([]RouteInfo, len(infos))
	for i, info := range infos {
		info.IsStatic, info.ParamCount = false, 0
		inputs[i] = info
	}
	b, err := json.Marshal(inputs)
	if err != nil {
		return "", fmt.Errorf("router: failed to hash catalog content: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// Load restores a Matcher directly into the Loaded state from a
// previously built Artifact, skipping pattern parsing and regex synthesis:
// only the already-compiled regex source strings are recompiled.
func (m *Matcher) Load(artifact *Artifact) error {
	if artifact.Version != artifactVersion {
		return &MalformedPatternError{Pattern: "<artifact>", Reason: fmt.Sprintf("unsupported artifact version %d", artifact.Version)}
	}

	routes := make([]*Route, len(artifact.Routes))
	var staticPaths []string
	var staticRouteIdx []int
	var dynamicRoutes []compiler.DynamicRoute
	var dynamicRouteIdx []int

	names := make(map[string]*Route, len(artifact.Routes))

	for i, ar := range artifact.Routes {
		r := NewRoute(ar.Methods, ar.Pattern, ar.Handler)
		r.schemes = toSet(ar.Schemes)
		r.hosts = ar.Hosts
		r.asserts = ar.Asserts
		r.defaults = ar.Defaults
		r.middlewareNames = ar.MiddlewareNames
		r.name = ar.Name
		r.description = ar.Description
		r.tags = ar.Tags

		pathRegex, err := regexp.Compile(`^` + ar.PathSource + `/?$`)
		if err != nil {
			return &MalformedPatternError{Pattern: ar.Pattern, Reason: err.Error()}
		}

		cr := &compiler.CompiledRoute{
			PathRegex:  pathRegex,
			PathSource: ar.PathSource,
			Template:   ar.Template,
			PathTokens: ar.PathTokens,
			HostTokens: ar.HostTokens,
			IsStatic:   ar.IsStatic,
		}
		for _, v := range ar.Variables {
			var assertRegex *regexp.Regexp
			if v.AssertSource != "" {
				assertRegex, err = regexp.Compile(v.AssertSource)
				if err != nil {
					return &MalformedPatternError{Pattern: ar.Pattern, Reason: err.Error()}
				}
			}
			cr.Variables = append(cr.Variables, compiler.VarBinding{
				Name: v.Name, Default: v.Default, HasDefault: v.HasDefault, Optional: v.Optional,
				AssertRegex: assertRegex,
			})
		}
		for _, hs := range ar.HostSources {
			hostRegex, err := regexp.Compile(`(?i)^` + hs + `$`)
			if err != nil {
				return &MalformedPatternError{Pattern: ar.Pattern, Reason: err.Error()}
			}
			cr.HostRegexes = append(cr.HostRegexes, hostRegex)
			cr.HostSources = append(cr.HostSources, hs)
		}

		r.freeze(cr)
		routes[i] = r

		if r.name != "" {
			if _, exists := names[r.name]; exists {
				return &DuplicateRouteError{Name: r.name}
			}
			names[r.name] = r
		}

		if cr.IsStatic && len(cr.HostRegexes) == 0 {
			staticPaths = append(staticPaths, compiler.CanonicalizeStaticPath(ar.Pattern))
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

	group, err := compiler.LoadGroup(artifact.GroupRegexSource, dynamicRoutes)
	if err != nil {
		return wrapMalformed("<dynamic group>", err)
	}

	st := &matcherState{
		routes:          routes,
		staticIndex:     compiler.NewStaticIndex(staticPaths, m.bloomFilterSize, m.bloomHashFunctions),
		staticRouteIdx:  staticRouteIdx,
		dynamicGroup:    group,
		dynamicRouteIdx: dynamicRouteIdx,
		names:           names,
		loaded:          true,
	}
	m.state.Store(st)
	m.emitDiagnostic(DiagCatalogWarmed, "catalog loaded from artifact", map[string]any{"routes": len(routes)})
	return nil
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]bool, len(values))
	for _, v := range values {
		out[v] = true
	}
	return out
}
