// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package modulus

import (
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"

	"github.com/iofinnet/modgen/crypto/primegen"
)

const (
	// DefaultFactorBits is the reference size of each prime factor.
	DefaultFactorBits = 64
	// DefaultMaxRedraws bounds how often q is redrawn because it equals p.
	DefaultMaxRedraws = 64
	// MinFactorBits is the smallest size with two distinct primes (5 and 7).
	MinFactorBits = 3
)

type (
	Parameters struct {
		rand       io.Reader
		factorBits int
		maxTrials  int
		maxRedraws int
	}

	ParameterOption func(*Parameters)
)

// WithFactorBits sets the bit length of each prime factor.
func WithFactorBits(bits int) ParameterOption {
	return func(p *Parameters) {
		p.factorBits = bits
	}
}

// WithMaxTrials caps the candidates drawn per prime; 0 keeps the generator default and a
// negative value removes the cap.
func WithMaxTrials(n int) ParameterOption {
	return func(p *Parameters) {
		p.maxTrials = n
	}
}

// WithMaxRedraws bounds how often q is redrawn when it collides with p.
func WithMaxRedraws(n int) ParameterOption {
	return func(p *Parameters) {
		p.maxRedraws = n
	}
}

func NewParameters(rand io.Reader, opts ...ParameterOption) (*Parameters, error) {
	params := &Parameters{
		rand:       rand,
		factorBits: DefaultFactorBits,
		maxRedraws: DefaultMaxRedraws,
	}
	for _, opt := range opts {
		opt(params)
	}
	return params, params.Validate()
}

func (params *Parameters) Rand() io.Reader {
	return params.rand
}

func (params *Parameters) FactorBits() int {
	return params.factorBits
}

func (params *Parameters) MaxTrials() int {
	return params.maxTrials
}

func (params *Parameters) MaxRedraws() int {
	return params.maxRedraws
}

// Validate reports every invalid setting at once.
func (params *Parameters) Validate() error {
	var result error
	if params.rand == nil {
		result = multierror.Append(result, errors.New("random source must not be nil"))
	}
	if params.factorBits < MinFactorBits {
		result = multierror.Append(result, fmt.Errorf("factor size must be at least %d bits, got %d", MinFactorBits, params.factorBits))
	}
	if params.maxRedraws < 0 {
		result = multierror.Append(result, fmt.Errorf("max redraws must not be negative, got %d", params.maxRedraws))
	}
	return result
}

func (params *Parameters) generatorOptions() []primegen.Option {
	if params.maxTrials == 0 {
		return nil
	}
	return []primegen.Option{primegen.WithMaxTrials(params.maxTrials)}
}
