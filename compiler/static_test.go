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
)

func TestCanonicalizeStaticPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"/", "/"},
		{"/posts", "/posts"},
		{"/posts/", "/posts"},
		{"/posts//", "/posts/"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalizeStaticPath(tt.in))
	}
}

func TestStaticIndex_LookupAndBloomGuard(t *testing.T) {
	t.Parallel()

	paths := []string{"/healthz", "/posts", "/version"}
	si := NewStaticIndex(paths, 1024, 3)

	for i, p := range paths {
		idx, ok := si.Lookup(p)
		assert.True(t, ok)
		assert.Equal(t, i, idx)
	}

	_, ok := si.Lookup("/nonexistent")
	assert.False(t, ok)
}

func TestStaticIndex_EmptyIndex(t *testing.T) {
	t.Parallel()

	si := NewStaticIndex(nil, 1024, 3)
	_, ok := si.Lookup("/anything")
	assert.False(t, ok)
	assert.Equal(t, float64(0), si.EstimatedFalsePositiveRate())
}

func TestStaticIndex_EstimatedFalsePositiveRateGrowsWithLoad(t *testing.T) {
	t.Parallel()

	var paths []string
	for i := 0; i < 50; i++ {
		paths = append(paths, "/route-"+string(rune('a'+i%26))+string(rune('0'+i/26)))
	}

	small := NewStaticIndex(paths, 64, 3)
	large := NewStaticIndex(paths, 65536, 3)

	assert.Greater(t, small.EstimatedFalsePositiveRate(), large.EstimatedFalsePositiveRate())
}
