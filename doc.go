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

// Package router compiles a catalog of HTTP route patterns into a matcher
// that resolves (method, scheme, host, path) tuples to a route and its
// bound variables, without touching net/http or any transport layer.
//
// # Building a catalog
//
// Catalog holds Routes, arranged with optional Groups that share a path
// prefix, host, scheme, middleware names, and default/assert overrides. A
// Route's pattern may embed a scheme and host ("https://{tenant}.example.
// com/v1/{id}"), placeholders ("{id}", "{id:\d+}", "{id=0}",
// "{id:\d+=0}"), nested optional groups ("/posts[/{id}[/comments]]"), and
// a trailing "*<Class@method>" handler-tail reference that this package
// never interprets.
//
// # Warming up
//
// A Catalog is only a registration surface; nothing is compiled until a
// Matcher is warmed up against it:
//
//	catalog := router.NewCatalog()
//	catalog.Add([]string{"GET"}, "/posts/{id:int}", handler).SetName("post.show")
//	m := router.NewMatcher()
//	if err := m.Warmup(catalog); err != nil { ... }
//
// Warmup parses every pattern, compiles its path and host regexes,
// partitions routes into a static bucket (bloom-filter-guarded hash
// lookup) and a dynamic bucket (one grouped alternation regex, see the
// compiler package's doc comment), and publishes the result atomically.
// Swap does the same thing under a name that makes the hot-reload
// use case explicit: build off to the side, then install with one
// atomic pointer store, so a Match running concurrently with a Swap
// never observes a partially-built state.
//
// # Matching
//
// Match (and its context-aware sibling MatchContext) returns a *Match
// carrying the resolved *Route and a fresh map of bound arguments — never
// a pointer into shared state, so concurrent matches against the same
// route never interfere with each other. A matched path that fails the
// method, scheme, or host constraint returns a typed error:
// MethodNotAllowedError and SchemeNotAllowedError carry the allowed set,
// HostNotAllowedError carries the rejected host.
//
// # Generating URLs
//
// Generate inverts a named route's compiled template back into a
// concrete path (and host/scheme, if the route constrains them),
// substituting supplied parameters, falling back to defaults, and eliding
// optional groups left entirely unset.
//
// # Caching
//
// BuildArtifact snapshots a warm Matcher into an Artifact that can be
// marshaled with encoding/json and stored between process restarts; Load
// restores a Matcher straight into the Loaded state from one, skipping
// pattern parsing and regex synthesis. Artifact.IsStale compares a
// content hash against a live Catalog to decide whether a cached artifact
// still reflects the current route definitions.
package router
