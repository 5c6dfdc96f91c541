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

import "sync"

// Catalog is the append-only collection of Route records (spec.md §3). It
// is single-threaded during the build phase; once a Matcher warms up from
// it, the catalog is frozen and adding a route to it (through Add or
// through a Group's Add and verb helpers) panics.
type Catalog struct {
	mu     sync.Mutex
	routes []*Route
	frozen bool
}

// NewCatalog creates an empty, open Catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Add registers a new route directly on the catalog (outside any group).
func (c *Catalog) Add(methods []string, pattern string, handler any) *Route {
	r := NewRoute(methods, pattern, handler)
	c.add(r)
	return r
}

// Group creates a top-level Group rooted at this catalog with the given
// path prefix.
func (c *Catalog) Group(prefix string) *Group {
	return NewGroup(c, prefix)
}

func (c *Catalog) add(r *Route) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		panic("router: cannot add routes to a catalog after its matcher has been warmed up")
	}
	c.routes = append(c.routes, r)
}

// snapshot returns the routes added so far and marks the catalog frozen,
// called by Matcher.Warmup.
func (c *Catalog) snapshot() []*Route {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frozen = true
	return append([]*Route(nil), c.routes...)
}

// Routes returns introspection snapshots for every route added so far.
// Fields populated at compile time (IsStatic, ParamCount) are zero-valued
// until the catalog has been warmed up.
func (c *Catalog) Routes() []RouteInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]RouteInfo, len(c.routes))
	for i, r := range c.routes {
		out[i] = r.describe()
	}
	return out
}
