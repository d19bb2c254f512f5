// Copyright © 2021 Io FinNet Group, Inc.

// Package mr implements a Miller-Rabin primality test over a fixed witness set.
//
// The bases (2, 325, 9375, 28178, 450775, 9780504, 1795265022) are Jim Sinclair's
// set: together they leave no strong pseudoprime below 2^64, so the test is exact
// there. Above 2^64 it is a strong probable prime test with seven bases.
package mr

import (
	"github.com/iofinnet/modgen/common"
	big "github.com/iofinnet/modgen/common/int"
)

var (
	one = big.NewInt(1)
	two = big.NewInt(2)

	witnesses = []uint64{2, 325, 9375, 28178, 450775, 9780504, 1795265022}

	smallPrimes = common.SmallPrimes()
)

// Witnesses returns a copy of the ordered witness bases.
func Witnesses() []uint64 {
	out := make([]uint64, len(witnesses))
	copy(out, witnesses)
	return out
}

// IsProbablePrime reports whether n is prime. It is defined for every input:
// nil, negative values, 0 and 1 are not prime. n is not modified.
func IsProbablePrime(n *big.Int) bool {
	if n == nil || n.Cmp(two) < 0 {
		return false
	}
	rem := new(big.Int)
	for _, p := range smallPrimes {
		if rem.Mod(n, p).Sign() == 0 {
			return n.Cmp(p) == 0
		}
	}

	// n-1 = d * 2^s, d odd
	nMinus1 := new(big.Int).Sub(n, one)
	s := nMinus1.TrailingZeroBits()
	d := new(big.Int).Rsh(nMinus1, s)

	modN := big.ModInt(n)
	a := new(big.Int)
	for _, w := range witnesses {
		a.Mod(a.SetUint64(w), n)
		if a.Sign() == 0 || a.Cmp(one) == 0 || a.Cmp(nMinus1) == 0 {
			continue
		}
		x := modN.Exp(a, d)
		if x.Cmp(one) == 0 || x.Cmp(nMinus1) == 0 {
			continue
		}
		// square up to s-1 times looking for -1; not finding it proves n composite
		passed := false
		for r := uint(1); r < s; r++ {
			x = modN.Mul(x, x)
			if x.Cmp(nMinus1) == 0 {
				passed = true
				break
			}
		}
		if !passed {
			return false
		}
	}
	return true
}
