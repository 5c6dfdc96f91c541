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
	"github.com/lattice-dev/routeforge/compiler"
)

// GeneratedURI is the result of Generate: a path plus, when the route
// carries host/scheme constraints, the host and scheme chosen to populate
// them (spec.md §4.5).
type GeneratedURI struct {
	Path   string
	Host   string
	Scheme string
}

// pathEscapeExceptions are characters RFC 3986 allows unescaped in a path
// segment that net/url.PathEscape would otherwise percent-encode; kept
// literal so generated URLs stay readable (spec.md §4.5's percent-encoding
// exceptions: "/ . - _ ~ : @").
var pathEscapeExceptions = map[byte]bool{
	'/': true, '.': true, '-': true, '_': true, '~': true, ':': true, '@': true,
}

// escapePathValue percent-encodes v for inclusion in a generated path,
// leaving the exception set (pathEscapeExceptions) and unreserved
// characters literal. url.PathEscape has no such exception list of its
// own, so the encoding is done byte-by-byte here instead.
func escapePathValue(v string) string {
	out := make([]byte, 0, len(v))
	for i := 0; i < len(v); i++ {
		c := v[i]
		if pathEscapeExceptions[c] || isUnreserved(c) {
			out = append(out, c)
			continue
		}
		out = append(out, '%', hexDigit(c>>4), hexDigit(c&0xf))
	}
	return string(out)
}

func isUnreserved(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

func hexDigit(n byte) byte {
	if n < 10 {
		return '0' + n
	}
	return 'A' + (n - 10)
}

// Generate inverts a named route's compiled template into a concrete URI,
// per spec.md §4.5: substitute from params, fall back to defaults, elide
// optional groups left entirely unset, and fail if a required variable
// outside any optional group has neither a value nor a default.
func (m *Matcher) Generate(name string, params map[string]string) (GeneratedURI, error) {
	st := m.state.Load()
	if st == nil {
		return GeneratedURI{}, ErrNotWarm
	}

	route, ok := st.names[name]
	if !ok {
		return GeneratedURI{}, &URLGenerationError{Kind: URLGenUnknownName, Name: name}
	}

	cr := route.compiled
	values := make(map[string]string, len(cr.Variables))
	for _, v := range cr.Variables {
		val, ok := params[v.Name]
		if !ok && v.HasDefault {
			val, ok = v.Default, true
		}
		if !ok {
			if !v.Optional {
				return GeneratedURI{}, &URLGenerationError{Kind: URLGenMissingRequired, Name: v.Name}
			}
			continue
		}
		if v.AssertRegex != nil && !v.AssertRegex.MatchString(val) {
			return GeneratedURI{}, &URLGenerationError{Kind: URLGenPatternMismatch, Name: v.Name, Value: val}
		}
		values[v.Name] = val
	}

	out := GeneratedURI{
		Path: compiler.RenderTokens(cr.PathTokens, values, escapePathValue),
	}

	if len(cr.HostTokens) > 0 {
		out.Host = compiler.RenderTokens(cr.HostTokens[0], values, nil)
		out.Scheme = preferredScheme(route)
	} else if len(route.schemes) > 0 {
		out.Scheme = preferredScheme(route)
	}

	return out, nil
}

// preferredScheme picks https over http when both are allowed, otherwise
// the lexicographically first allowed scheme (spec.md §4.5's "scheme
// preference" note, grounded on gorilla/mux's Route.URL scheme defaulting).
func preferredScheme(route *Route) string {
	schemes := route.SchemesList()
	if len(schemes) == 0 {
		return ""
	}
	for _, s := range schemes {
		if s == "https" {
			return s
		}
	}
	return schemes[0]
}
