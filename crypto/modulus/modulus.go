// Copyright © 2021 Io FinNet Group, Inc.

// Package modulus builds an RSA-style modulus N = p*q from two distinct random
// primes of equal size. N has 2b-1 or 2b bits for b-bit factors.
package modulus

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/iofinnet/modgen/common"
	big "github.com/iofinnet/modgen/common/int"
	"github.com/iofinnet/modgen/crypto/mr"
	"github.com/iofinnet/modgen/crypto/primegen"
)

var ErrNoDistinctPrime = errors.New("could not draw a second prime distinct from the first")

type (
	Modulus struct {
		P          *big.Int `json:"p"`
		Q          *big.Int `json:"q"`
		N          *big.Int `json:"n"`
		FactorBits int      `json:"factor_bits"`

		// generation statistics
		PTrials int           `json:"-"`
		QTrials int           `json:"-"`
		Redraws int           `json:"-"`
		Elapsed time.Duration `json:"-"`
	}
)

// Generate draws p, then draws q until q != p, and multiplies them.
// A random source failure, an exhausted trial cap or a cancelled ctx aborts with no partial result.
func Generate(ctx context.Context, params *Parameters) (*Modulus, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	gen, err := primegen.NewGenerator(params.rand, params.factorBits, params.generatorOptions()...)
	if err != nil {
		return nil, err
	}

	common.Logger.Infof("generating a modulus from two %d-bit primes...", params.factorBits)
	start := time.Now()
	pRes, err := gen.Next(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "generating p")
	}
	qRes, err := gen.Next(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "generating q")
	}
	qTrials, redraws := qRes.Trials, 0
	for qRes.Prime.Cmp(pRes.Prime) == 0 {
		if redraws >= params.maxRedraws {
			return nil, errors.Wrapf(ErrNoDistinctPrime, "%d redraws of %d-bit q", redraws, params.factorBits)
		}
		redraws++
		common.Logger.Warnf("q equals p, redrawing q (%d/%d)", redraws, params.maxRedraws)
		if qRes, err = gen.Next(ctx); err != nil {
			return nil, errors.Wrap(err, "redrawing q")
		}
		qTrials += qRes.Trials
	}

	m := &Modulus{
		P:          pRes.Prime,
		Q:          qRes.Prime,
		N:          new(big.Int).Mul(pRes.Prime, qRes.Prime),
		FactorBits: params.factorBits,
		PTrials:    pRes.Trials,
		QTrials:    qTrials,
		Redraws:    redraws,
		Elapsed:    time.Since(start),
	}
	common.Logger.Infof("%d-bit modulus generated. took %s", m.N.BitLen(), m.Elapsed)
	return m, nil
}

// RandomModulus returns p*q for two distinct factorBits-bit primes using default limits.
func RandomModulus(rand io.Reader, factorBits int) (*big.Int, error) {
	params, err := NewParameters(rand, WithFactorBits(factorBits))
	if err != nil {
		return nil, err
	}
	m, err := Generate(context.Background(), params)
	if err != nil {
		return nil, err
	}
	return m.N, nil
}

// Validate reports every broken invariant of m: both factors prime, of size
// FactorBits, distinct, and multiplying to N.
func (m *Modulus) Validate() error {
	if m == nil || m.P == nil || m.Q == nil || m.N == nil {
		return errors.New("modulus is incomplete")
	}
	var result error
	for _, f := range []struct {
		name string
		v    *big.Int
	}{{"p", m.P}, {"q", m.Q}} {
		if !mr.IsProbablePrime(f.v) {
			result = multierror.Append(result, fmt.Errorf("%s is not prime", f.name))
		}
		if f.v.BitLen() != m.FactorBits {
			result = multierror.Append(result, fmt.Errorf("%s has %d bits, want %d", f.name, f.v.BitLen(), m.FactorBits))
		}
	}
	if m.P.Cmp(m.Q) == 0 {
		result = multierror.Append(result, errors.New("p and q are equal"))
	}
	if new(big.Int).Mul(m.P, m.Q).Cmp(m.N) != 0 {
		result = multierror.Append(result, errors.New("n != p*q"))
	}
	if bl := m.N.BitLen(); bl != 2*m.FactorBits && bl != 2*m.FactorBits-1 {
		result = multierror.Append(result, fmt.Errorf("n has %d bits, want %d or %d", bl, 2*m.FactorBits-1, 2*m.FactorBits))
	}
	return result
}

func (m *Modulus) String() string {
	return m.N.String()
}
