// Copyright © 2021 Io FinNet Group, Inc.

package primegen

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iofinnet/modgen/common"
	big "github.com/iofinnet/modgen/common/int"
	"github.com/iofinnet/modgen/crypto/mr"
	"github.com/iofinnet/modgen/internal"
)

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy source unavailable")
}

func TestRandomPrime_Shape(t *testing.T) {
	t.Parallel()
	for _, bits := range []int{16, 32, 64} {
		bits := bits
		t.Run(fmt.Sprintf("%d bits", bits), func(t *testing.T) {
			t.Parallel()
			src := common.MustNewDeterministicSource([]byte(fmt.Sprintf("TestRandomPrime_Shape/%d", bits)))
			for i := 0; i < 1000; i++ {
				p, err := RandomPrime(src, bits)
				require.NoError(t, err)
				require.Equal(t, bits, p.BitLen())
				require.Equal(t, uint(1), p.Bit(0))
				require.True(t, mr.IsProbablePrime(p), p.String())
			}
		})
	}
}

func TestRandomPrime_SmallSizes(t *testing.T) {
	t.Parallel()
	src := common.MustNewDeterministicSource([]byte("TestRandomPrime_SmallSizes"))
	for bits := MinBits; bits <= 12; bits++ {
		for i := 0; i < 50; i++ {
			p := MustRandomPrime(src, bits)
			require.Equal(t, bits, p.BitLen())
			require.True(t, common.IsPrimeByTrialDivision(p.Uint64()), "bits=%d p=%s", bits, p)
		}
	}
	// 2 bits leaves a single odd candidate with the top bit set
	assert.Equal(t, "3", MustRandomPrime(src, 2).String())
}

func TestRandomPrime_ReachesEveryPrimeOfTheSize(t *testing.T) {
	t.Parallel()
	src := common.MustNewDeterministicSource([]byte("TestRandomPrime_ReachesEveryPrimeOfTheSize"))
	seen := map[uint64]bool{}
	for i := 0; i < 500; i++ {
		seen[MustRandomPrime(src, 5).Uint64()] = true
	}
	assert.Equal(t, map[uint64]bool{17: true, 19: true, 23: true, 29: true, 31: true}, seen)
}

func TestRandomPrime_IsReproducibleForASeed(t *testing.T) {
	t.Parallel()
	a := common.MustNewDeterministicSource([]byte("seed"))
	b := common.MustNewDeterministicSource([]byte("seed"))
	for i := 0; i < 10; i++ {
		assert.Equal(t, MustRandomPrime(a, 64).String(), MustRandomPrime(b, 64).String())
	}
}

func TestRandomPrime_BitsTooSmall(t *testing.T) {
	t.Parallel()
	for _, bits := range []int{-1, 0, 1} {
		p, err := RandomPrime(zeroReader{}, bits)
		assert.Nil(t, p)
		assert.True(t, errors.Is(err, ErrBitsTooSmall), "bits=%d err=%v", bits, err)
	}
	// fails before touching the source
	_, err := RandomPrime(failingReader{}, 1)
	assert.True(t, errors.Is(err, ErrBitsTooSmall))
}

func TestRandomPrime_SourceFailureIsPropagated(t *testing.T) {
	t.Parallel()
	p, err := RandomPrime(failingReader{}, 64)
	assert.Nil(t, p)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "entropy source unavailable")
		assert.False(t, errors.Is(err, ErrGenerationExhausted))
	}
}

func TestGenerator_Exhausted(t *testing.T) {
	t.Parallel()
	// an all-zero source always yields 2^7+1 = 129 = 3*43
	g, err := NewGenerator(zeroReader{}, 8, WithMaxTrials(25))
	require.NoError(t, err)
	res, err := g.Next(context.Background())
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ErrGenerationExhausted), "err=%v", err)
}

func TestGenerator_DefaultTrialCap(t *testing.T) {
	t.Parallel()
	g, err := NewGenerator(zeroReader{}, 64)
	require.NoError(t, err)
	assert.Equal(t, 64, g.Bits())
	assert.Equal(t, DefaultTrialFactor*64, g.MaxTrials())

	g, err = NewGenerator(zeroReader{}, 64, WithMaxTrials(0))
	require.NoError(t, err)
	assert.Equal(t, 0, g.MaxTrials())
}

func TestGenerator_NilSource(t *testing.T) {
	t.Parallel()
	_, err := NewGenerator(nil, 64)
	assert.Error(t, err)
}

func TestGenerator_ContextCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g, err := NewGenerator(zeroReader{}, 8, WithMaxTrials(-1))
	require.NoError(t, err)
	_, err = g.Next(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestGenerator_Result(t *testing.T) {
	t.Parallel()
	src := common.MustNewDeterministicSource([]byte("TestGenerator_Result"))
	g, err := NewGenerator(src, 64)
	require.NoError(t, err)
	res, err := g.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 64, res.Bits)
	assert.GreaterOrEqual(t, res.Trials, 1)
	assert.LessOrEqual(t, res.Trials, g.MaxTrials())
	assert.True(t, mr.IsProbablePrime(res.Prime))
}

func TestCandidateShape(t *testing.T) {
	t.Parallel()
	src := common.MustNewDeterministicSource([]byte("TestCandidateShape"))
	for _, bits := range []int{2, 3, 7, 8, 9, 15, 16, 17, 63, 64, 65} {
		g, err := NewGenerator(src, bits)
		require.NoError(t, err)
		for i := 0; i < 200; i++ {
			c, err := g.candidate()
			require.NoError(t, err)
			require.Equal(t, bits, c.BitLen())
			require.Equal(t, uint(1), c.Bit(0))
		}
	}
	// the all-zero pattern becomes exactly 2^(bits-1)+1
	g, _ := NewGenerator(zeroReader{}, 64)
	c, err := g.candidate()
	require.NoError(t, err)
	want := new(big.Int).SetBit(big.NewInt(1), 63, 1)
	assert.Equal(t, 0, want.Cmp(c))
}

func TestMustRandomPrime_Panics(t *testing.T) {
	t.Parallel()
	ok, err := internal.ExpectPanic(ErrBitsTooSmall, func() {
		MustRandomPrime(zeroReader{}, 1)
	})
	assert.True(t, ok)
	assert.NoError(t, err)

	ok, _ = internal.ExpectPanic(ErrGenerationExhausted, func() {
		MustRandomPrime(zeroReader{}, 1)
	})
	assert.False(t, ok)
}

func BenchmarkRandomPrime64(b *testing.B) {
	src := common.MustNewDeterministicSource([]byte("BenchmarkRandomPrime64"))
	for i := 0; i < b.N; i++ {
		MustRandomPrime(src, 64)
	}
}
