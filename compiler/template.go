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

// RenderTokens reconstructs a literal string from a compiled path or host
// token stream, substituting each TokenVar from values and eliding any
// optional group whose variables were all left out of values (spec.md
// §4.5 step 3). Callers resolve defaults and reject missing required
// variables before calling this — values should contain only variables
// that the caller has already decided to render.
//
// escape, when non-nil, is applied to each substituted value (e.g.
// percent-encoding); a nil escape substitutes the raw value.
func RenderTokens(tokens []Token, values map[string]string, escape func(string) string) string {
	if escape == nil {
		escape = func(s string) string { return s }
	}
	idx := 0
	out, _ := renderSpan(tokens, &idx, values, escape)
	return out
}

// renderSpan renders tokens starting at *idx until it reaches the end of
// the stream or an unmatched TokenGroupClose (which it leaves for the
// caller to consume). It reports whether any variable within the span was
// present in values, the signal the enclosing group uses to decide
// whether to keep itself.
func renderSpan(tokens []Token, idx *int, values map[string]string, escape func(string) string) (string, bool) {
	var b strings.Builder
	hadValue := false

	for *idx < len(tokens) {
		t := tokens[*idx]
		switch t.Kind {
		case TokenLiteral:
			b.WriteString(t.Literal)
			*idx++

		case TokenGroupOpen:
			*idx++
			inner, innerHad := renderSpan(tokens, idx, values, escape)
			if *idx < len(tokens) && tokens[*idx].Kind == TokenGroupClose {
				*idx++
			}
			if innerHad {
				b.WriteString(inner)
				hadValue = true
			}

		case TokenGroupClose:
			return b.String(), hadValue

		case TokenVar:
			if val, ok := values[t.Name]; ok {
				b.WriteString(escape(val))
				hadValue = true
			}
			*idx++
		}
	}

	return b.String(), hadValue
}
