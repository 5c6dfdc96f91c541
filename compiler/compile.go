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
	"regexp"
	"strings"
)

// VarBinding is one entry of a CompiledRoute's ordered variable table.
type VarBinding struct {
	Name       string
	Default    string
	HasDefault bool
	Optional   bool // true if the placeholder sits inside an optional group

	// AssertRegex anchors the resolved assertion class this variable was
	// compiled against (preset, inline regex, route-level assert, or the
	// path/host default class). URL generation matches a substituted or
	// defaulted value against it before rendering, so a generated URL can
	// never contain a value its own route would refuse to match.
	AssertRegex *regexp.Regexp
}

// CompiledRoute is the triple (path_regex, host_regexes, variables_map) of
// spec.md §4.2, plus the URL-generation template.
type CompiledRoute struct {
	// PathRegex is the anchored regex matching the full path.
	PathRegex *regexp.Regexp
	// PathSource is the unanchored regex fragment (no leading "^", no
	// trailing "$"), used by dynamic.go to build the grouped alternation.
	PathSource string

	// HostRegexes holds one anchored, case-insensitive regex per declared
	// host pattern; empty when the route has no host constraint.
	HostRegexes []*regexp.Regexp
	HostSources []string

	// Variables is ordered host-variables-first, then path-variables, in
	// declaration order, per spec.md §3's CompiledRoute.variables.
	Variables []VarBinding

	// Template is the pattern with each {...} replaced by <name>, with
	// optional-group and separator markup intact, for URL generation.
	Template string

	// PathTokens is the path's original token stream, retained so URL
	// generation can walk group nesting directly instead of re-parsing
	// Template.
	PathTokens []Token

	// HostTokens holds one token stream per declared host, aligned with
	// HostSources/HostRegexes.
	HostTokens [][]Token

	// IsStatic is true iff the path has no variables. Host constraints are
	// evaluated separately by the caller (a route with a host constraint
	// is never placed in the static bucket even if IsStatic is true here).
	IsStatic bool
}

// CompilePath compiles a parsed pattern's path tokens into a CompiledRoute.
// routeAsserts is the route/group-level assert override map (priority step
// 3); it may be nil. Host compilation is handled separately by AddHost, so
// that a pattern-embedded host and any route/group-level Hosts() additions
// go through the exact same code path.
func CompilePath(pp *ParsedPattern, routeAsserts map[string][]string, routeDefaults map[string]string) (*CompiledRoute, error) {
	pathSource, pathVars, err := buildRegex(pp.Tokens, routeAsserts, routeDefaults, DefaultPathClass)
	if err != nil {
		return nil, err
	}

	pathRegex, err := regexp.Compile(`^` + pathSource + `/?$`)
	if err != nil {
		return nil, &MalformedPatternError{Pattern: pathSource, Reason: err.Error()}
	}

	cr := &CompiledRoute{
		PathRegex:  pathRegex,
		PathSource: pathSource,
		Variables:  pathVars,
		Template:   buildTemplate(pp.Tokens),
		PathTokens: pp.Tokens,
		IsStatic:   len(pathVars) == 0,
	}

	return cr, nil
}

// AddHost compiles an additional host alternative and appends it to cr's
// host regex list, supporting routes with more than one declared host
// (spec.md §4.2: "with more than one host, they are joined in an
// alternation").
func AddHost(cr *CompiledRoute, hostPattern string, routeAsserts map[string][]string, routeDefaults map[string]string) error {
	hostRegex, hostSource, hostVars, hostTokens, err := compileHost(hostPattern, routeAsserts, routeDefaults)
	if err != nil {
		return err
	}
	cr.HostRegexes = append(cr.HostRegexes, hostRegex)
	cr.HostSources = append(cr.HostSources, hostSource)
	cr.HostTokens = append(cr.HostTokens, hostTokens)
	// Host variables precede path variables in discovery order (spec.md §3);
	// a later host's variables follow those of the hosts added before it.
	var newVars []VarBinding
	for _, v := range hostVars {
		if !containsVar(cr.Variables, v.Name) {
			newVars = append(newVars, v)
		}
	}
	pathVarCount := 0
	for _, t := range cr.PathTokens {
		if t.Kind == TokenVar {
			pathVarCount++
		}
	}
	hostEnd := len(cr.Variables) - pathVarCount
	vars := append(append([]VarBinding(nil), cr.Variables[:hostEnd]...), newVars...)
	cr.Variables = append(vars, cr.Variables[hostEnd:]...)
	return nil
}

func containsVar(vars []VarBinding, name string) bool {
	for _, v := range vars {
		if v.Name == name {
			return true
		}
	}
	return false
}

// compileHost compiles a single host template. Host compilation uses the
// same placeholder engine as path compilation, but with a different
// default character class ([^.]+, stopping at the next label separator)
// and a case-insensitive match flag, since host names SHOULD be compared
// case-insensitively (spec.md §9).
func compileHost(hostPattern string, routeAsserts map[string][]string, routeDefaults map[string]string) (*regexp.Regexp, string, []VarBinding, []Token, error) {
	tokens, err := tokenize(hostPattern)
	if err != nil {
		return nil, "", nil, nil, err
	}
	if err := validateTokens(tokens); err != nil {
		return nil, "", nil, nil, err
	}

	source, vars, err := buildRegex(tokens, routeAsserts, routeDefaults, DefaultHostClass)
	if err != nil {
		return nil, "", nil, nil, err
	}

	re, err := regexp.Compile(`(?i)^` + source + `$`)
	if err != nil {
		return nil, "", nil, nil, &MalformedPatternError{Pattern: source, Reason: err.Error()}
	}
	return re, source, vars, tokens, nil
}

// buildRegex walks a token stream and produces an unanchored regex
// fragment plus the ordered variable table. Optional groups become
// "(?:...)?" wrappers; nesting is handled with a stack of builders so that
// "[a[b]c]"-style nested optionals compile correctly.
func buildRegex(tokens []Token, routeAsserts map[string][]string, routeDefaults map[string]string, defaultClass string) (string, []VarBinding, error) {
	stack := []*strings.Builder{{}}
	var vars []VarBinding
	depth := 0

	for _, t := range tokens {
		top := stack[len(stack)-1]
		switch t.Kind {
		case TokenLiteral:
			top.WriteString(regexp.QuoteMeta(t.Literal))
		case TokenGroupOpen:
			stack = append(stack, &strings.Builder{})
			depth++
		case TokenGroupClose:
			inner := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			depth--
			newTop := stack[len(stack)-1]
			newTop.WriteString("(?:")
			newTop.WriteString(inner.String())
			newTop.WriteString(")?")
		case TokenVar:
			var overrides []string
			var hasOverride bool
			if routeAsserts != nil {
				overrides, hasOverride = routeAsserts[t.Name]
			}
			class := ResolveAssertion(t.Assert, t.HasAssert, overrides, hasOverride, defaultClass)
			top.WriteString("(?P<")
			top.WriteString(t.Name)
			top.WriteString(">")
			top.WriteString(class)
			top.WriteString(")")

			assertRegex, err := regexp.Compile(`^(?:` + class + `)$`)
			if err != nil {
				return "", nil, &MalformedPatternError{Pattern: class, Reason: err.Error()}
			}

			// An inline "{name=default}" wins; otherwise a route-level
			// Default(name, value) call fills the same slot (spec.md §3's
			// default resolution applies uniformly to both sources).
			def, hasDefault := t.Default, t.HasDefault
			if !hasDefault && routeDefaults != nil {
				if rd, ok := routeDefaults[t.Name]; ok {
					def, hasDefault = rd, true
				}
			}

			vars = append(vars, VarBinding{
				Name:        t.Name,
				Default:     def,
				HasDefault:  hasDefault,
				Optional:    depth > 0,
				AssertRegex: assertRegex,
			})
		}
	}

	return stack[0].String(), vars, nil
}

// buildTemplate reconstructs the URL-generation template: each {...}
// placeholder becomes <name>, group brackets and literal separators are
// preserved verbatim.
func buildTemplate(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		switch t.Kind {
		case TokenLiteral:
			b.WriteString(t.Literal)
		case TokenGroupOpen:
			b.WriteByte('[')
		case TokenGroupClose:
			b.WriteByte(']')
		case TokenVar:
			b.WriteByte('<')
			b.WriteString(t.Name)
			b.WriteByte('>')
		}
	}
	return b.String()
}
