// Copyright © 2021 Io FinNet Group, Inc.

package common

import (
	big "github.com/iofinnet/modgen/common/int"
)

// smallPrimes are the trial divisors applied before Miller-Rabin: every prime below 41.
var smallPrimes = []uint64{
	2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37,
}

// SmallPrimes returns the trial division primes as fresh *big.Int values.
func SmallPrimes() []*big.Int {
	out := make([]*big.Int, len(smallPrimes))
	for i, p := range smallPrimes {
		out[i] = big.NewInt(p)
	}
	return out
}

// GetPrimesUpTo returns the primes p <= limit in ascending order, from a sieve
// over the odd numbers.
func GetPrimesUpTo(limit int) []uint {
	if limit < 2 {
		return []uint{}
	}
	// composite[i] marks 2i+1
	composite := make([]bool, limit/2+1)
	primes := []uint{2}
	for i := 1; 2*i+1 <= limit; i++ {
		if composite[i] {
			continue
		}
		p := 2*i + 1
		primes = append(primes, uint(p))
		for j := p * p / 2; 2*j+1 <= limit; j += p {
			composite[j] = true
		}
	}
	return primes
}

// IsPrimeByTrialDivision is the naive O(sqrt n) check. It is only meant for
// small values, as a reference for the faster tests.
func IsPrimeByTrialDivision(n uint64) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for i := uint64(3); i <= n/i; i += 2 {
		if n%i == 0 {
			return false
		}
	}
	return true
}
