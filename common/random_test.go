// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package common

import (
	"bytes"
	"errors"
	"io"
	"testing"

	big "github.com/iofinnet/modgen/common/int"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy source unavailable")
}

func TestDeterministicSourceIsReproducible(t *testing.T) {
	t.Parallel()
	a := MustNewDeterministicSource([]byte("seed"))
	b := MustNewDeterministicSource([]byte("seed"))
	c := MustNewDeterministicSource([]byte("other seed"))

	bufA, bufB, bufC := make([]byte, 100), make([]byte, 100), make([]byte, 100)
	_, err := io.ReadFull(a, bufA)
	require.NoError(t, err)
	_, err = io.ReadFull(b, bufB)
	require.NoError(t, err)
	_, err = io.ReadFull(c, bufC)
	require.NoError(t, err)

	assert.Equal(t, bufA, bufB)
	assert.NotEqual(t, bufA, bufC)
	assert.NotEqual(t, make([]byte, 100), bufA)

	// the stream advances between reads
	next := make([]byte, 100)
	_, err = io.ReadFull(a, next)
	require.NoError(t, err)
	assert.False(t, bytes.Equal(bufA, next))
}

func TestCryptoSource(t *testing.T) {
	t.Parallel()
	buf := make([]byte, 32)
	_, err := io.ReadFull(CryptoSource(), buf)
	require.NoError(t, err)
}

func TestGetRandomInt(t *testing.T) {
	t.Parallel()
	src := MustNewDeterministicSource([]byte("TestGetRandomInt"))
	for _, bits := range []int{1, 7, 8, 9, 64, 129} {
		for i := 0; i < 100; i++ {
			n := MustGetRandomInt(src, bits)
			assert.LessOrEqual(t, n.BitLen(), bits)
			assert.GreaterOrEqual(t, n.Sign(), 0)
		}
	}
	_, err := GetRandomInt(src, 0)
	assert.Error(t, err)
	_, err = GetRandomInt(failingReader{}, 64)
	assert.Error(t, err)
	assert.Panics(t, func() { MustGetRandomInt(failingReader{}, 64) })
}

func TestGetRandomPositiveInt(t *testing.T) {
	t.Parallel()
	src := MustNewDeterministicSource([]byte("TestGetRandomPositiveInt"))
	upper := big.NewInt(10)
	seen := map[uint64]bool{}
	for i := 0; i < 500; i++ {
		n, err := GetRandomPositiveInt(src, upper)
		require.NoError(t, err)
		assert.Equal(t, 1, n.Sign())
		assert.Equal(t, -1, n.Cmp(upper))
		seen[n.Uint64()] = true
	}
	assert.Len(t, seen, 9)

	_, err := GetRandomPositiveInt(src, big.NewInt(1))
	assert.Error(t, err)
	_, err = GetRandomPositiveInt(src, nil)
	assert.Error(t, err)
}
