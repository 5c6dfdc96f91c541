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

package compiler

import "strings"

// presets is the named assertion table. Keys are matched exactly against
// the inline token text of a {name:TOKEN} placeholder.
var presets = map[string]string{
	"int":   `\d+`,
	"lower": `[a-z]+`,
	"upper": `[A-Z]+`,
	"alpha": `[A-Za-z]+`,
	"alnum": `[A-Za-z0-9]+`,
	"year":  `[12][0-9]{3}`,
	"month": `0[1-9]|1[012]`,
	"day":   `0[1-9]|[12][0-9]|3[01]`,
	"uuid":  `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`,
}

// DefaultPathClass and DefaultHostClass are the fallback character classes
// used when a variable has no inline assert, no preset, and no route-level
// assert override (priority step 4 of the resolution below).
const (
	DefaultPathClass = `[^/]+`
	DefaultHostClass = `[^.]+`
)

// ResolveAssertion implements the placeholder assertion priority order of
// spec.md §4.2, as resolved in SPEC_FULL.md §4.1:
//
//  1. A named preset resolved by EXACT match on the inline token text.
//  2. Otherwise, the inline token text itself used as a literal regex
//     fragment (after stripping one leading '^' and trailing '$', already
//     done by the parser).
//  3. A per-route explicit assert for the variable; if it is a list of
//     literal alternatives, they are joined with '|'.
//  4. defaultClass, the caller-supplied fallback ([^/]+ for path variables,
//     [^.]+ for host variables).
//
// Read literally, spec.md's steps 1 and 2 look like independent ranked
// alternatives, but every preset name is itself syntactically a valid
// literal regex fragment matching itself — so "inline regex" and "named
// preset by exact match" can't both win on their own terms. The only
// reading under which the preset table is ever reachable is: try the
// preset table first, and treat the inline text as a literal fragment only
// when it isn't an exact preset key.
func ResolveAssertion(inline string, hasInline bool, routeAssert []string, hasRouteAssert bool, defaultClass string) string {
	if hasInline {
		if p, ok := presets[inline]; ok {
			return p
		}
		return inline
	}
	if hasRouteAssert && len(routeAssert) > 0 {
		return strings.Join(routeAssert, "|")
	}
	return defaultClass
}

// Preset looks up a named preset by exact key, returning its regex
// fragment and whether it exists.
func Preset(name string) (string, bool) {
	p, ok := presets[name]
	return p, ok
}
