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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, pattern string) *ParsedPattern {
	t.Helper()
	pp, err := Parse(pattern)
	require.NoError(t, err)
	return pp
}

func TestCompilePath_StaticRoute(t *testing.T) {
	t.Parallel()

	pp := mustParse(t, "/healthz")
	cr, err := CompilePath(pp, nil, nil)
	require.NoError(t, err)
	assert.True(t, cr.IsStatic)
	assert.Empty(t, cr.Variables)
	assert.True(t, cr.PathRegex.MatchString("/healthz"))
}

func TestCompilePath_PresetVariable(t *testing.T) {
	t.Parallel()

	pp := mustParse(t, "/posts/{id:int}")
	cr, err := CompilePath(pp, nil, nil)
	require.NoError(t, err)
	assert.False(t, cr.IsStatic)
	require.Len(t, cr.Variables, 1)
	assert.Equal(t, "id", cr.Variables[0].Name)

	assert.True(t, cr.PathRegex.MatchString("/posts/42"))
	assert.False(t, cr.PathRegex.MatchString("/posts/abc"))
}

func TestCompilePath_VarBindingAssertRegexMatchesResolvedClass(t *testing.T) {
	t.Parallel()

	pp := mustParse(t, "/posts/{id:int}")
	cr, err := CompilePath(pp, nil, nil)
	require.NoError(t, err)
	require.Len(t, cr.Variables, 1)

	require.NotNil(t, cr.Variables[0].AssertRegex)
	assert.True(t, cr.Variables[0].AssertRegex.MatchString("42"))
	assert.False(t, cr.Variables[0].AssertRegex.MatchString("abc"))
}

func TestCompilePath_RouteAssertOverride(t *testing.T) {
	t.Parallel()

	pp := mustParse(t, "/posts/{status}")
	cr, err := CompilePath(pp, map[string][]string{"status": {"draft", "published"}}, nil)
	require.NoError(t, err)

	assert.True(t, cr.PathRegex.MatchString("/posts/draft"))
	assert.True(t, cr.PathRegex.MatchString("/posts/published"))
	assert.False(t, cr.PathRegex.MatchString("/posts/archived"))
}

func TestCompilePath_InlineDefaultWinsOverRouteDefault(t *testing.T) {
	t.Parallel()

	pp := mustParse(t, "/posts/{page=1}")
	cr, err := CompilePath(pp, nil, map[string]string{"page": "99"})
	require.NoError(t, err)
	require.Len(t, cr.Variables, 1)
	assert.True(t, cr.Variables[0].HasDefault)
	assert.Equal(t, "1", cr.Variables[0].Default)
}

func TestCompilePath_RouteLevelDefaultFillsVarBinding(t *testing.T) {
	t.Parallel()

	pp := mustParse(t, "/posts/{page}")
	cr, err := CompilePath(pp, nil, map[string]string{"page": "1"})
	require.NoError(t, err)
	require.Len(t, cr.Variables, 1)
	assert.True(t, cr.Variables[0].HasDefault)
	assert.Equal(t, "1", cr.Variables[0].Default)
}

func TestCompilePath_NestedOptionalGroup(t *testing.T) {
	t.Parallel()

	pp := mustParse(t, "/posts[/{id:int}[/comments]]")
	cr, err := CompilePath(pp, nil, nil)
	require.NoError(t, err)

	assert.True(t, cr.PathRegex.MatchString("/posts"))
	assert.True(t, cr.PathRegex.MatchString("/posts/42"))
	assert.True(t, cr.PathRegex.MatchString("/posts/42/comments"))
	assert.False(t, cr.PathRegex.MatchString("/posts/comments"))

	require.Len(t, cr.Variables, 1)
	assert.True(t, cr.Variables[0].Optional)
}

func TestAddHost_HostVariablesPrecedePathVariables(t *testing.T) {
	t.Parallel()

	pp := mustParse(t, "/posts/{id:int}")
	cr, err := CompilePath(pp, nil, nil)
	require.NoError(t, err)

	require.NoError(t, AddHost(cr, "{tenant}.example.com", nil, nil))
	require.Len(t, cr.Variables, 2)
	assert.Equal(t, "tenant", cr.Variables[0].Name)
	assert.Equal(t, "id", cr.Variables[1].Name)

	require.Len(t, cr.HostRegexes, 1)
	assert.True(t, cr.HostRegexes[0].MatchString("acme.example.com"))
	assert.True(t, cr.HostRegexes[0].MatchString("ACME.EXAMPLE.COM"), "host match should be case-insensitive")
}

func TestAddHost_MultipleHostsAlternate(t *testing.T) {
	t.Parallel()

	pp := mustParse(t, "/posts")
	cr, err := CompilePath(pp, nil, nil)
	require.NoError(t, err)

	require.NoError(t, AddHost(cr, "api.example.com", nil, nil))
	require.NoError(t, AddHost(cr, "api.example.org", nil, nil))
	require.Len(t, cr.HostRegexes, 2)
	assert.True(t, cr.HostRegexes[0].MatchString("api.example.com"))
	assert.True(t, cr.HostRegexes[1].MatchString("api.example.org"))
}

func TestBuildTemplate(t *testing.T) {
	t.Parallel()

	pp := mustParse(t, "/posts[/{id:int}]")
	cr, err := CompilePath(pp, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "/posts[/<id>]", cr.Template)
}
