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

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DynamicRoute is one alternative contributed to a DynamicGroup, identified
// by its position (mark index) in the catalog's dynamic bucket.
type DynamicRoute struct {
	Index      int
	PathSource string // unanchored regex fragment, CompiledRoute.PathSource
	Variables  []VarBinding
}

// DynamicGroup is the grouped mega-regex of spec.md §4.4: all dynamic
// routes' path fragments joined into one alternation, each ending in a
// zero-width, always-present capture group that identifies which
// alternative fired. Go's regexp (RE2) has no MARK/named-alternative
// feature; this is the capture-group mark emulation substitute spec.md §9
// explicitly allows.
//
// RE2 resolves alternation submatches by leftmost declaration-order
// priority, so branch 0 wins over branch 1 when both could match at the
// same position — exactly the catalog-insertion-order precedence spec.md
// §4.4 requires.
type DynamicGroup struct {
	regex  *regexp.Regexp
	routes []DynamicRoute
}

var captureNameRe = regexp.MustCompile(`\(\?P<([A-Za-z_][A-Za-z0-9_]*)>`)

// markPrefix names the zero-width mark capture for alternative i.
func markPrefix(i int) string { return "mark" + strconv.Itoa(i) }

// varPrefix names the private-capture prefix used to keep variable names
// globally unique across every branch of the shared regex, since Go's
// regexp/syntax rejects duplicate group names within one expression.
func varPrefix(i int) string { return fmt.Sprintf("r%d_", i) }

// Build joins every dynamic route's path fragment into one alternation
// regex. routes is expected in catalog (declaration) order; that order
// becomes the mark/alternation priority order.
func Build(routes []DynamicRoute) (*DynamicGroup, error) {
	if len(routes) == 0 {
		return &DynamicGroup{regex: nil, routes: nil}, nil
	}

	branches := make([]string, len(routes))
	for i, r := range routes {
		renamed := captureNameRe.ReplaceAllString(r.PathSource, `(?P<`+varPrefix(i)+`$1>`)
		branches[i] = renamed + `(?P<` + markPrefix(i) + `>)`
	}

	source := `^(?:` + strings.Join(branches, "|") + `)/?$`
	re, err := regexp.Compile(source)
	if err != nil {
		return nil, &MalformedPatternError{Pattern: source, Reason: err.Error()}
	}

	return &DynamicGroup{regex: re, routes: routes}, nil
}

// Match runs the grouped regex against path. On success it returns the
// index of the winning route (its position in the slice passed to Build)
// and the named captures for that route's own variables, keyed by their
// original (unprefixed) variable name. A variable present in the table but
// absent from the captures map means its optional span did not match;
// the caller falls back to the route's default for that variable.
func (g *DynamicGroup) Match(path string) (routeIndex int, captures map[string]string, ok bool) {
	if g.regex == nil {
		return 0, nil, false
	}

	idx := g.regex.FindStringSubmatchIndex(path)
	if idx == nil {
		return 0, nil, false
	}
	names := g.regex.SubexpNames()

	winner := -1
	for i, name := range names {
		if name == "" || !strings.HasPrefix(name, "mark") {
			continue
		}
		if idx[2*i] != -1 {
			n, err := strconv.Atoi(strings.TrimPrefix(name, "mark"))
			if err != nil {
				continue
			}
			winner = n
			break
		}
	}
	if winner < 0 || winner >= len(g.routes) {
		// Invariant violation: a mark fired with no corresponding route.
		// Per spec.md §4.4's failure semantics, this should never happen
		// and is reserved for a panic rather than a typed runtime error.
		panic("compiler: dynamic group matched with no corresponding mark")
	}

	prefix := varPrefix(winner)
	captures = make(map[string]string, len(g.routes[winner].Variables))
	for _, v := range g.routes[winner].Variables {
		want := prefix + v.Name
		for i, name := range names {
			if name != want {
				continue
			}
			if idx[2*i] == -1 {
				continue // absent: caller falls back to default/null
			}
			captures[v.Name] = path[idx[2*i]:idx[2*i+1]]
			break
		}
	}

	return winner, captures, true
}

// Len reports how many dynamic routes the group was built from.
func (g *DynamicGroup) Len() int { return len(g.routes) }

// Source returns the compiled group regex's source text, empty if the
// group has no dynamic routes. Used by the cache artifact to persist the
// already-joined alternation so a reload can recompile it directly instead
// of re-running Build's branch-joining logic.
func (g *DynamicGroup) Source() string {
	if g.regex == nil {
		return ""
	}
	return g.regex.String()
}

// LoadGroup reconstructs a DynamicGroup from a previously persisted group
// regex source and its route table, skipping Build's rename-and-join work.
// routes must be in the same order used to produce source originally.
func LoadGroup(source string, routes []DynamicRoute) (*DynamicGroup, error) {
	if source == "" {
		return &DynamicGroup{}, nil
	}
	re, err := regexp.Compile(source)
	if err != nil {
		return nil, &MalformedPatternError{Pattern: source, Reason: err.Error()}
	}
	return &DynamicGroup{regex: re, routes: routes}, nil
}
