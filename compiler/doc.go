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

// Package compiler parses route patterns, synthesizes regexes from them,
// and matches request paths against the compiled forms.
//
// # Architecture
//
// Routing splits into two buckets, decided once per route at compile time:
//
//  1. Static routes — no path variables, no host constraint. Looked up by
//     canonicalized path through StaticIndex, a hash table guarded by a
//     bloom filter for fast rejection of unknown paths.
//  2. Dynamic routes — everything else. All of their path regex fragments
//     are joined into one DynamicGroup: a single alternation regex under a
//     shared anchor, matched in one pass regardless of catalog size.
//
// Static lookups always take priority over dynamic ones for the same
// canonicalized path, per the router's static-first tie-break rule.
//
// # Pattern compilation
//
// Parse tokenizes a pattern into literals, placeholders, and nested
// optional groups, plus any embedded scheme/host/handler-tail. CompilePath
// turns that token stream into a CompiledRoute: an anchored path regex and
// an ordered variable table; AddHost appends one anchored host regex (and
// its variables) per declared host. Placeholder
// assertions resolve through ResolveAssertion, in priority order: inline
// regex/preset, route-level override, default character class.
//
// # Grouped dynamic matching and mark emulation
//
// Go's regexp package (RE2) has no PCRE-style MARK or named-alternative
// feature, so DynamicGroup emulates it with capture groups: every dynamic
// route contributes one alternation branch ending in a zero-width,
// always-present capture (its "mark"); the branch's own named captures are
// prefixed to stay globally unique, since RE2 rejects duplicate capture
// names in one expression. After a single regex match, exactly one mark
// capture has a non -1 offset — that identifies the winning route, whose
// own (reprefixed) captures are then read back by name.
//
// RE2's alternation submatch semantics pick the leftmost-declared
// alternative that matches, so building the group in catalog order gives
// the declaration-order precedence routing requires without any extra
// bookkeeping.
//
// # Import boundary
//
// This package never imports the root router package. Catalog/Route types
// live there; compiler only deals in tokens, regexes, and plain value
// types, so the router package can depend on compiler without a cycle.
package compiler
