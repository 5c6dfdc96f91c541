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
	"hash/fnv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBloomFilter_NoFalseNegatives(t *testing.T) {
	t.Parallel()

	bf := NewBloomFilter(4096, 3)
	added := []string{"/posts", "/posts/latest", "/healthz", "/about", "/comments/recent"}
	for _, p := range added {
		bf.Add([]byte(p))
	}

	for _, p := range added {
		assert.True(t, bf.Test([]byte(p)), "expected %q to test positive after Add", p)
	}
}

func TestBloomFilter_DefinitelyAbsentRejectsUnadded(t *testing.T) {
	t.Parallel()

	bf := NewBloomFilter(4096, 3)
	bf.Add([]byte("/posts"))

	assert.False(t, bf.Test([]byte("/nowhere-near-anything-we-added")))
}

func TestBloomFilter_TestWithPrecomputedHashMatchesTest(t *testing.T) {
	t.Parallel()

	bf := NewBloomFilter(2048, 3)
	bf.Add([]byte("/posts/42"))

	assert.True(t, bf.Test([]byte("/posts/42")))

	for _, p := range []string{"/posts/42", "/nowhere-near-anything-we-added"} {
		h := fnv.New64a()
		h.Write([]byte(p))
		assert.Equal(t, bf.Test([]byte(p)), bf.TestWithPrecomputedHash(h.Sum64()), "path %q", p)
	}
}

func TestBloomFilter_EstimatedFalsePositiveRate(t *testing.T) {
	t.Parallel()

	bf := NewBloomFilter(1024, 3)

	rateAtZero := bf.EstimatedFalsePositiveRate(0)
	assert.Equal(t, float64(0), rateAtZero)

	for i := range 50 {
		bf.Add([]byte(fmt.Sprintf("/route-%d", i)))
	}
	rateAt50 := bf.EstimatedFalsePositiveRate(50)

	for i := 50; i < 500; i++ {
		bf.Add([]byte(fmt.Sprintf("/route-%d", i)))
	}
	rateAt500 := bf.EstimatedFalsePositiveRate(500)

	t.Logf("estimated FP rate at n=50: %.6f, at n=500: %.6f", rateAt50, rateAt500)
	assert.Greater(t, rateAt500, rateAt50)
	assert.GreaterOrEqual(t, rateAt50, float64(0))
	assert.LessOrEqual(t, rateAt500, float64(1))
}

func TestBloomFilter_ZeroSizeFilterReportsZeroRate(t *testing.T) {
	t.Parallel()

	bf := NewBloomFilter(0, 3)
	assert.Equal(t, float64(0), bf.EstimatedFalsePositiveRate(10))
}
