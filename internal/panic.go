// SPDX-License-Identifier: MIT
//
// Copyright (C) 2021 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package internal holds test helpers shared by the Must* wrappers' tests.
package internal

import (
	"fmt"

	"github.com/pkg/errors"
)

var errNoPanic = errors.New("no panic")

// catch runs f and returns what it panicked with as an error, or nil.
func catch(f func()) (err error) {
	defer func() {
		switch v := recover().(type) {
		case nil:
		case error:
			err = v
		default:
			err = fmt.Errorf("%v", v)
		}
	}()
	f()
	return nil
}

// ExpectPanic runs f and checks that it panics. A nil expected accepts any panic.
// Otherwise the panic must wrap expected (errors.Is) or carry the same message.
func ExpectPanic(expected error, f func()) (bool, error) {
	got := catch(f)
	switch {
	case got == nil:
		return false, errNoPanic
	case expected == nil, errors.Is(got, expected), got.Error() == expected.Error():
		return true, nil
	}
	return false, errors.Errorf("expected panic %q, got %q", expected, got)
}
