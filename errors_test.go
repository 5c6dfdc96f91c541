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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMethodNotAllowedError_UnwrapsToSentinel(t *testing.T) {
	t.Parallel()

	err := &MethodNotAllowedError{Allowed: []string{"GET", "POST"}}
	assert.ErrorIs(t, err, ErrMethodNotAllowed)
	assert.Contains(t, err.Error(), "GET")
}

func TestSchemeNotAllowedError_UnwrapsToSentinel(t *testing.T) {
	t.Parallel()

	err := &SchemeNotAllowedError{Allowed: []string{"https"}}
	assert.ErrorIs(t, err, ErrSchemeNotAllowed)
}

func TestHostNotAllowedError_UnwrapsToSentinel(t *testing.T) {
	t.Parallel()

	err := &HostNotAllowedError{Host: "evil.example.com"}
	assert.ErrorIs(t, err, ErrHostNotAllowed)
	assert.Contains(t, err.Error(), "evil.example.com")
}

func TestMalformedPatternError_UnwrapsToSentinel(t *testing.T) {
	t.Parallel()

	err := &MalformedPatternError{Pattern: "/posts/{}", Reason: "empty variable name"}
	assert.ErrorIs(t, err, ErrMalformedPattern)
	assert.Contains(t, err.Error(), "empty variable name")
}

func TestDuplicateRouteError_UnwrapsToSentinel(t *testing.T) {
	t.Parallel()

	err := &DuplicateRouteError{Name: "post.show"}
	assert.ErrorIs(t, err, ErrDuplicateRoute)
}

func TestURLGenerationError_UnwrapsByKind(t *testing.T) {
	t.Parallel()

	unknown := &URLGenerationError{Kind: URLGenUnknownName, Name: "nope"}
	assert.ErrorIs(t, unknown, ErrUnknownRouteName)
	assert.NotErrorIs(t, unknown, ErrMissingRequiredParam)

	missing := &URLGenerationError{Kind: URLGenMissingRequired, Name: "id"}
	assert.ErrorIs(t, missing, ErrMissingRequiredParam)
	assert.NotErrorIs(t, missing, ErrUnknownRouteName)
}

func TestURLGenerationError_UnknownKindErrorString(t *testing.T) {
	t.Parallel()

	err := &URLGenerationError{Kind: URLGenerationKind(99), Name: "whatever"}
	assert.Equal(t, "router: url generation failed", err.Error())
}

func TestErrors_AsWorksThroughStandardWrapping(t *testing.T) {
	t.Parallel()

	wrapped := errorsJoinWrap(&MethodNotAllowedError{Allowed: []string{"GET"}})
	var mna *MethodNotAllowedError
	assert.True(t, errors.As(wrapped, &mna))
	assert.Equal(t, []string{"GET"}, mna.Allowed)
}

func errorsJoinWrap(err error) error {
	return errors.Join(err)
}
