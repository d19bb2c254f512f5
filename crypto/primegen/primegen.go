// Copyright © 2021 Io FinNet Group, Inc.

// Package primegen draws random primes of an exact bit length.
//
// Each trial reads a fresh bits-long pattern from the injected random source,
// forces the top bit (so the bit length is exactly bits) and the bottom bit (so
// the candidate is odd), and keeps it if crypto/mr accepts it. Candidates are
// independent of each other; there is no incremental search.
package primegen

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/iofinnet/modgen/common"
	big "github.com/iofinnet/modgen/common/int"
	"github.com/iofinnet/modgen/crypto/mr"
)

const (
	// MinBits is the smallest supported prime size.
	MinBits = 2
	// DefaultTrialFactor sets the default trial cap to DefaultTrialFactor*bits.
	// The expected trial count for odd candidates is about bits*ln(2)/2.
	DefaultTrialFactor = 50
)

var (
	ErrBitsTooSmall        = errors.New("prime size must be at least 2 bits")
	ErrGenerationExhausted = errors.New("prime generation exhausted the trial limit")
)

type (
	Generator struct {
		rand      io.Reader
		bits      int
		maxTrials int
		buf       []byte
	}

	Option func(*Generator)

	// Result describes one accepted prime.
	Result struct {
		Prime   *big.Int
		Bits    int
		Trials  int
		Elapsed time.Duration
	}
)

// WithMaxTrials caps the number of candidates drawn per prime. n <= 0 removes the cap.
func WithMaxTrials(n int) Option {
	return func(g *Generator) {
		g.maxTrials = n
	}
}

// NewGenerator returns a Generator for primes of exactly bits bits.
// The Generator owns its buffer and must not be used concurrently.
func NewGenerator(rand io.Reader, bits int, opts ...Option) (*Generator, error) {
	if bits < MinBits {
		return nil, errors.Wrapf(ErrBitsTooSmall, "got %d", bits)
	}
	if rand == nil {
		return nil, errors.New("NewGenerator: nil random source")
	}
	g := &Generator{
		rand:      rand,
		bits:      bits,
		maxTrials: DefaultTrialFactor * bits,
		buf:       make([]byte, (bits+7)/8),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Generator) Bits() int {
	return g.bits
}

func (g *Generator) MaxTrials() int {
	return g.maxTrials
}

// Next draws candidates until one is prime. It fails on a random source error,
// when the trial cap is exceeded, or when ctx is done.
func (g *Generator) Next(ctx context.Context) (*Result, error) {
	start := time.Now()
	for trials := 1; g.maxTrials <= 0 || trials <= g.maxTrials; trials++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		candidate, err := g.candidate()
		if err != nil {
			return nil, err
		}
		if mr.IsProbablePrime(candidate) {
			res := &Result{Prime: candidate, Bits: g.bits, Trials: trials, Elapsed: time.Since(start)}
			common.Logger.Debugf("found %d-bit prime ..%s after %d trials in %s",
				g.bits, common.FormatBigInt(candidate), trials, res.Elapsed)
			return res, nil
		}
	}
	return nil, errors.Wrapf(ErrGenerationExhausted, "%d candidates of %d bits", g.maxTrials, g.bits)
}

// candidate reads a random bits-long odd value with its top bit set.
func (g *Generator) candidate() (*big.Int, error) {
	if _, err := io.ReadFull(g.rand, g.buf); err != nil {
		return nil, errors.Wrap(err, "random source failure in prime generation")
	}
	b := uint(g.bits % 8)
	if b == 0 {
		b = 8
	}
	// Clear bits in the first byte to make sure the candidate has a size <= bits.
	g.buf[0] &= uint8(int(1<<b) - 1)
	// Set the top bit so the size is exactly bits, and the bottom bit for oddness.
	g.buf[0] |= 1 << (b - 1)
	g.buf[len(g.buf)-1] |= 1
	return new(big.Int).SetBytes(g.buf), nil
}

// RandomPrime returns a uniformly drawn prime p with p.BitLen() == bits,
// using the default trial cap.
func RandomPrime(rand io.Reader, bits int) (*big.Int, error) {
	g, err := NewGenerator(rand, bits)
	if err != nil {
		return nil, err
	}
	res, err := g.Next(context.Background())
	if err != nil {
		return nil, err
	}
	return res.Prime, nil
}

// MustRandomPrime panics where RandomPrime would return an error.
func MustRandomPrime(rand io.Reader, bits int) *big.Int {
	p, err := RandomPrime(rand, bits)
	if err != nil {
		panic(err)
	}
	return p
}
