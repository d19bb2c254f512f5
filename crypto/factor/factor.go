// Copyright © 2021 Io FinNet Group, Inc.

// Package factor splits integers into primes: trial division, perfect squares,
// Pollard's p-1 (stage 1) and Brent's variant of Pollard's rho, applied
// recursively until every part is prime or the budget runs out.
//
// It is meant for re-factoring small moduli (up to ~64-bit factors of the
// smooth or lucky kind, ~32-bit factors in general), not as a general purpose
// factoring engine.
package factor

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/iofinnet/modgen/common"
	big "github.com/iofinnet/modgen/common/int"
	"github.com/iofinnet/modgen/crypto/mr"
)

const (
	// TrialDivisionBound is the largest divisor tried before the heavier methods.
	TrialDivisionBound = 349
	// DefaultPMinus1Bound is the stage 1 smoothness bound B for Pollard's p-1.
	DefaultPMinus1Bound = 200000
	// DefaultRhoRestarts is the number of random polynomials tried per composite.
	DefaultRhoRestarts = 16
	// DefaultRhoIterations caps the polynomial evaluations per rho attempt.
	DefaultRhoIterations = 1 << 22

	rhoBlockSize = 1 << 9
)

const (
	StatusComplete Status = "ok"
	StatusTimeout  Status = "timeout"
	StatusNoResult Status = "noresult"
)

var (
	ErrIncomplete  = errors.New("factorization incomplete")
	ErrNotPositive = errors.New("only positive integers can be factored")

	one = big.NewInt(1)
)

type (
	Status string

	Result struct {
		N *big.Int
		// Factors holds the prime factors found, ascending, with multiplicity.
		Factors []*big.Int
		// Remaining holds composite parts that could not be split.
		Remaining []*big.Int
		Status    Status
		Elapsed   time.Duration
	}

	// Power is a prime with its exponent in N.
	Power struct {
		Prime    *big.Int `json:"prime"`
		Exponent int      `json:"exponent"`
	}

	Option func(*factorizer)

	factorizer struct {
		rand          io.Reader
		pMinus1Bound  int
		rhoRestarts   int
		rhoIterations int

		trialPrimes []*big.Int
		p1Primes    []uint
		res         *Result
	}
)

// WithRand sets the source of the rho starting points. Defaults to common.CryptoSource().
func WithRand(rand io.Reader) Option {
	return func(f *factorizer) {
		f.rand = rand
	}
}

// WithPMinus1Bound sets the p-1 smoothness bound; 0 disables p-1.
func WithPMinus1Bound(b int) Option {
	return func(f *factorizer) {
		f.pMinus1Bound = b
	}
}

// WithRhoRestarts sets how many random polynomials rho tries per composite.
func WithRhoRestarts(n int) Option {
	return func(f *factorizer) {
		f.rhoRestarts = n
	}
}

// WithRhoIterations caps the evaluations per rho attempt; 0 means no cap.
func WithRhoIterations(n int) Option {
	return func(f *factorizer) {
		f.rhoIterations = n
	}
}

// Factorize splits n > 0 into its prime factors. If some composite part cannot be
// split within the budget or before ctx is done, the partial result is returned
// together with ErrIncomplete. n is not modified.
func Factorize(ctx context.Context, n *big.Int, opts ...Option) (*Result, error) {
	if n == nil || n.Sign() <= 0 {
		return nil, ErrNotPositive
	}
	f := &factorizer{
		rand:          common.CryptoSource(),
		pMinus1Bound:  DefaultPMinus1Bound,
		rhoRestarts:   DefaultRhoRestarts,
		rhoIterations: DefaultRhoIterations,
		res:           &Result{N: n.Clone(), Status: StatusComplete},
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.rhoRestarts < 1 {
		f.rhoRestarts = 1
	}
	for _, p := range common.GetPrimesUpTo(TrialDivisionBound) {
		f.trialPrimes = append(f.trialPrimes, big.NewInt(uint64(p)))
	}

	start := time.Now()
	if err := f.split(ctx, n.Clone()); err != nil {
		return nil, err
	}
	res := f.res
	res.Elapsed = time.Since(start)
	sort.Slice(res.Factors, func(i, j int) bool { return res.Factors[i].Cmp(res.Factors[j]) < 0 })
	if len(res.Remaining) > 0 {
		if ctx.Err() != nil {
			res.Status = StatusTimeout
		} else {
			res.Status = StatusNoResult
		}
		return res, errors.Wrapf(ErrIncomplete, "%d composite part(s) left after %s", len(res.Remaining), res.Elapsed)
	}
	return res, nil
}

// split records the prime factors of n, or n itself as remaining when it resists.
func (f *factorizer) split(ctx context.Context, n *big.Int) error {
	if n.Cmp(one) == 0 {
		return nil
	}
	if mr.IsProbablePrime(n) {
		f.res.Factors = append(f.res.Factors, n)
		return nil
	}

	d, err := f.findDivisor(ctx, n)
	if err != nil {
		return err
	}
	if d == nil {
		common.Logger.Debugf("could not split %d-bit composite ..%s", n.BitLen(), common.FormatBigInt(n))
		f.res.Remaining = append(f.res.Remaining, n)
		return nil
	}
	common.Logger.Debugf("split %d-bit composite ..%s by ..%s", n.BitLen(), common.FormatBigInt(n), common.FormatBigInt(d))
	if err := f.split(ctx, d); err != nil {
		return err
	}
	return f.split(ctx, new(big.Int).Div(n, d))
}

// findDivisor returns a non-trivial divisor of the composite n, or nil.
func (f *factorizer) findDivisor(ctx context.Context, n *big.Int) (*big.Int, error) {
	rem := new(big.Int)
	for _, p := range f.trialPrimes {
		if rem.Mod(n, p).Sign() == 0 && n.Cmp(p) != 0 {
			return p.Clone(), nil
		}
	}

	if r := new(big.Int).Sqrt(n); new(big.Int).Mul(r, r).Cmp(n) == 0 {
		return r, nil
	}

	if ctx.Err() != nil {
		return nil, nil
	}
	if d := f.pMinus1(n); d != nil {
		return d, nil
	}

	for try := 0; try < f.rhoRestarts; try++ {
		if ctx.Err() != nil {
			return nil, nil
		}
		d, err := f.rho(ctx, n)
		if err != nil {
			return nil, err
		}
		if d != nil {
			return d, nil
		}
	}
	return nil, nil
}

// pMinus1 is Pollard's p-1 stage 1: a = 2^(prod p^e, p^e <= B) mod n, gcd(a-1, n).
func (f *factorizer) pMinus1(n *big.Int) *big.Int {
	if f.pMinus1Bound < 2 {
		return nil
	}
	if f.p1Primes == nil {
		f.p1Primes = common.GetPrimesUpTo(f.pMinus1Bound)
	}
	bound := uint64(f.pMinus1Bound)
	a := big.NewInt(2)
	e := new(big.Int)
	for _, p := range f.p1Primes {
		pe := uint64(p)
		for pe*uint64(p) <= bound {
			pe *= uint64(p)
		}
		a.Exp(a, e.SetUint64(pe), n)
	}
	g := new(big.Int).GCD(nil, nil, a.Sub(a, one), n)
	if g.Cmp(one) > 0 && g.Cmp(n) < 0 {
		return g
	}
	return nil
}

// rho runs one Brent-Pollard rho attempt with f(y) = y^2 + c mod n for random y, c.
func (f *factorizer) rho(ctx context.Context, n *big.Int) (*big.Int, error) {
	y, err := common.GetRandomPositiveInt(f.rand, n)
	if err != nil {
		return nil, err
	}
	c, err := common.GetRandomPositiveInt(f.rand, n)
	if err != nil {
		return nil, err
	}
	mod := big.ModInt(n)
	next := func(v *big.Int) *big.Int {
		return mod.Add(mod.Mul(v, v), c)
	}
	absDiff := func(a, b *big.Int) *big.Int {
		return new(big.Int).Abs(new(big.Int).Sub(a, b))
	}

	g, q := big.NewInt(1), big.NewInt(1)
	var x, ys *big.Int
	iterations := 0
	exhausted := func() bool {
		return f.rhoIterations > 0 && iterations >= f.rhoIterations
	}
	for r := 1; g.Cmp(one) == 0; r *= 2 {
		x = y
		for i := 0; i < r; i++ {
			y = next(y)
		}
		iterations += r
		for k := 0; k < r && g.Cmp(one) == 0; k += rhoBlockSize {
			ys = y
			steps := rhoBlockSize
			if r-k < steps {
				steps = r - k
			}
			for i := 0; i < steps; i++ {
				y = next(y)
				q = mod.Mul(q, absDiff(x, y))
			}
			iterations += steps
			g.GCD(nil, nil, q, n)
			if ctx.Err() != nil || exhausted() {
				break
			}
		}
		if g.Cmp(one) == 0 && (ctx.Err() != nil || exhausted()) {
			return nil, nil
		}
	}

	if g.Cmp(n) == 0 {
		// the block overshot; replay it one step at a time
		for {
			ys = next(ys)
			g.GCD(nil, nil, absDiff(x, ys), n)
			if g.Cmp(one) > 0 {
				break
			}
		}
	}
	if g.Cmp(n) < 0 {
		return g, nil
	}
	return nil, nil
}

// Complete reports whether every part of N was reduced to primes.
func (r *Result) Complete() bool {
	return len(r.Remaining) == 0
}

// Multiplicities groups the factors into prime powers, ascending.
func (r *Result) Multiplicities() []Power {
	var out []Power
	for _, p := range r.Factors {
		if len(out) > 0 && out[len(out)-1].Prime.Cmp(p) == 0 {
			out[len(out)-1].Exponent++
			continue
		}
		out = append(out, Power{Prime: p, Exponent: 1})
	}
	return out
}

// Product multiplies the factors and remaining parts back together.
func (r *Result) Product() *big.Int {
	prod := big.NewInt(1)
	for _, p := range r.Factors {
		prod.Mul(prod, p)
	}
	for _, c := range r.Remaining {
		prod.Mul(prod, c)
	}
	return prod
}
