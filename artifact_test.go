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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildWarmCatalog() *Catalog {
	c := NewCatalog()
	c.Add([]string{"GET"}, "/healthz", "health").SetName("health")
	c.Add([]string{"GET"}, "/posts/{id:int}", "show").SetName("post.show").Default("id", "0")
	c.Add([]string{"GET"}, "/posts/{slug}", "showBySlug").SetName("post.showBySlug")
	return c
}

func TestBuildArtifact_RequiresWarmMatcher(t *testing.T) {
	t.Parallel()

	m := NewMatcher()
	_, err := m.BuildArtifact()
	assert.ErrorIs(t, err, ErrNotWarm)
}

func TestArtifact_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	c := buildWarmCatalog()
	m := NewMatcher()
	require.NoError(t, m.Warmup(c))

	artifact, err := m.BuildArtifact()
	require.NoError(t, err)
	require.NotEmpty(t, artifact.ContentHash)

	blob, err := json.Marshal(artifact)
	require.NoError(t, err)

	var restored Artifact
	require.NoError(t, json.Unmarshal(blob, &restored))

	loaded := NewMatcher()
	require.NoError(t, loaded.Load(&restored))
	assert.Equal(t, Loaded, loaded.State())

	match, err := loaded.Match("GET", "http", "example.com", "/posts/42")
	require.NoError(t, err)
	assert.Equal(t, "42", match.Args["id"])
	assert.Equal(t, "show", match.Route.Handler())

	match, err = loaded.Match("GET", "http", "example.com", "/posts/hello")
	require.NoError(t, err)
	assert.Equal(t, "showBySlug", match.Route.Handler())

	match, err = loaded.Match("GET", "http", "example.com", "/healthz")
	require.NoError(t, err)
	assert.Equal(t, "health", match.Route.Handler())
}

func TestArtifact_LoadedMatcherSupportsURLGeneration(t *testing.T) {
	t.Parallel()

	c := buildWarmCatalog()
	m := NewMatcher()
	require.NoError(t, m.Warmup(c))
	artifact, err := m.BuildArtifact()
	require.NoError(t, err)

	loaded := NewMatcher()
	require.NoError(t, loaded.Load(artifact))

	out, err := loaded.Generate("post.show", map[string]string{"id": "9"})
	require.NoError(t, err)
	assert.Equal(t, "/posts/9", out.Path)
}

func TestArtifact_LoadedMatcherStillValidatesGeneratePattern(t *testing.T) {
	t.Parallel()

	c := buildWarmCatalog()
	m := NewMatcher()
	require.NoError(t, m.Warmup(c))
	artifact, err := m.BuildArtifact()
	require.NoError(t, err)

	blob, err := json.Marshal(artifact)
	require.NoError(t, err)
	var restored Artifact
	require.NoError(t, json.Unmarshal(blob, &restored))

	loaded := NewMatcher()
	require.NoError(t, loaded.Load(&restored))

	_, err = loaded.Generate("post.show", map[string]string{"id": "not-a-number"})
	var uge *URLGenerationError
	require.ErrorAs(t, err, &uge)
	assert.Equal(t, URLGenPatternMismatch, uge.Kind)
}

func TestArtifact_IsStaleDetectsRouteSetChange(t *testing.T) {
	t.Parallel()

	c := buildWarmCatalog()
	m := NewMatcher()
	require.NoError(t, m.Warmup(c))
	artifact, err := m.BuildArtifact()
	require.NoError(t, err)

	unchanged := buildWarmCatalog()
	stale, err := artifact.IsStale(unchanged)
	require.NoError(t, err)
	assert.False(t, stale)

	changed := buildWarmCatalog()
	changed.Add([]string{"GET"}, "/comments", nil)
	stale, err = artifact.IsStale(changed)
	require.NoError(t, err)
	assert.True(t, stale)
}

func TestArtifact_RejectsUnsupportedVersion(t *testing.T) {
	t.Parallel()

	m := NewMatcher()
	err := m.Load(&Artifact{Version: 999})
	var mpe *MalformedPatternError
	assert.ErrorAs(t, err, &mpe)
}

func TestArtifact_DuplicateNameRejectedOnLoad(t *testing.T) {
	t.Parallel()

	c := NewCatalog()
	c.Add([]string{"GET"}, "/posts", nil).SetName("dup")

	m := NewMatcher()
	require.NoError(t, m.Warmup(c))
	artifact, err := m.BuildArtifact()
	require.NoError(t, err)

	// Duplicate a route record by hand to exercise Load's own name-collision
	// guard, independent of Warmup's.
	artifact.Routes = append(artifact.Routes, artifact.Routes[0])

	loaded := NewMatcher()
	err = loaded.Load(artifact)
	var dre *DuplicateRouteError
	assert.ErrorAs(t, err, &dre)
}
