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

// RouteInfo is a read-only introspection snapshot of a registered route,
// used for debugging, documentation generation, and monitoring. It never
// exposes mutable route internals.
type RouteInfo struct {
	Methods     []string          // HTTP methods, empty means any verb
	Pattern     string            // route pattern as given to NewRoute
	Name        string            // route name, empty if unnamed
	Schemes     []string          // allowed schemes, empty means scheme-agnostic
	Hosts       []string          // host pattern templates, empty means host-agnostic
	Middleware  []string          // middleware name references, in order
	Asserts     map[string]string // variable name -> joined assert fragment
	Defaults    map[string]string // variable name -> default value
	IsStatic    bool              // true if the route has no path variables and no host constraint
	ParamCount  int               // number of distinct path+host variables
	Description string
	Tags        []string
}

// describe builds the RouteInfo snapshot for a frozen route.
func (r *Route) describe() RouteInfo {
	info := RouteInfo{
		Methods:     r.Methods(),
		Pattern:     r.pattern,
		Name:        r.name,
		Description: r.description,
		Tags:        r.tags,
		Middleware:  r.middlewareNames,
		Defaults:    r.Defaults(),
	}
	info.Hosts = append(info.Hosts, r.hosts...)
	info.Schemes = r.SchemesList()
	if len(r.asserts) > 0 {
		info.Asserts = make(map[string]string, len(r.asserts))
		for name, alts := range r.asserts {
			joined := ""
			for i, a := range alts {
				if i > 0 {
					joined += "|"
				}
				joined += a
			}
			info.Asserts[name] = joined
		}
	}
	if r.compiled != nil {
		info.IsStatic = r.compiled.IsStatic && len(r.hosts) == 0
		info.ParamCount = len(r.compiled.Variables)
	}
	return info
}
