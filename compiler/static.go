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

// CanonicalizeStaticPath applies spec.md §6's canonicalization rule for
// static lookup: a trailing "/" is removed unless the path is exactly "/".
// It is used both when classifying a route at compile time and when
// looking up an incoming request path at match time, so the two sides of
// the comparison always agree.
func CanonicalizeStaticPath(path string) string {
	if path == "" || path == "/" {
		return path
	}
	trimmed := strings.TrimSuffix(path, "/")
	if trimmed == "" {
		return "/"
	}
	return trimmed
}

// StaticIndex is the matcher's static-route bucket: a canonicalized-path
// hash table guarded by a bloom filter that rejects definite misses before
// the map lookup runs.
type StaticIndex struct {
	routes map[string]int
	bloom  *BloomFilter
}

// NewStaticIndex builds a StaticIndex over paths, which must already be
// canonicalized. The returned index maps each path to its position in
// paths (the caller's own route-reference table).
func NewStaticIndex(paths []string, bloomSize uint64, bloomHashFuncs int) *StaticIndex {
	si := &StaticIndex{
		routes: make(map[string]int, len(paths)),
		bloom:  NewBloomFilter(bloomSize, bloomHashFuncs),
	}
	for i, p := range paths {
		si.routes[p] = i
		si.bloom.Add([]byte(p))
	}
	return si
}

// Lookup returns the route index registered for canonicalPath, if any.
func (si *StaticIndex) Lookup(canonicalPath string) (int, bool) {
	if si == nil || len(si.routes) == 0 {
		return 0, false
	}
	if !si.bloom.Test([]byte(canonicalPath)) {
		return 0, false // definitely not present
	}
	idx, ok := si.routes[canonicalPath]
	return idx, ok
}

// EstimatedFalsePositiveRate estimates the bloom filter's false-positive
// probability from its configured bit width, hash function count, and the
// number of elements inserted: (1 - e^(-k*n/m))^k.
func (si *StaticIndex) EstimatedFalsePositiveRate() float64 {
	if si == nil || si.bloom == nil {
		return 0
	}
	return si.bloom.EstimatedFalsePositiveRate(len(si.routes))
}
