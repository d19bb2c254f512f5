// SPDX-License-Identifier: MIT
//
// Copyright (C) 2021 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package internal

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpectPanic(t *testing.T) {
	boom := errors.New("boom")

	ok, err := ExpectPanic(boom, func() { panic(boom) })
	assert.True(t, ok)
	assert.NoError(t, err)

	ok, err = ExpectPanic(nil, func() { panic("anything") })
	assert.True(t, ok)
	assert.NoError(t, err)

	ok, err = ExpectPanic(boom, func() { panic("boom") })
	assert.True(t, ok)
	assert.NoError(t, err)

	ok, err = ExpectPanic(boom, func() {})
	assert.False(t, ok)
	assert.Equal(t, errNoPanic, err)

	ok, err = ExpectPanic(boom, func() { panic(errors.New("bang")) })
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestExpectPanic_Wrapped(t *testing.T) {
	boom := errors.New("boom")
	ok, err := ExpectPanic(boom, func() { panic(fmt.Errorf("context: %w", boom)) })
	assert.True(t, ok)
	assert.NoError(t, err)
}
