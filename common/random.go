// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package common

import (
	"crypto/rand"
	"crypto/sha256"
	"io"

	big "github.com/iofinnet/modgen/common/int"
	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20"
)

const (
	mustGetRandomIntMaxBits = 1 << 16
)

var (
	zero = big.NewInt(0)
	two  = big.NewInt(2)
)

// CryptoSource returns the operating system's CSPRNG.
func CryptoSource() io.Reader {
	return rand.Reader
}

type deterministicSource struct {
	stream *chacha20.Cipher
}

// NewDeterministicSource returns an endless, reproducible stream of uniform bytes.
// The ChaCha20 key is SHA-256(seed) and the nonce is zero, so equal seeds give equal streams.
// The source is not safe for concurrent use.
func NewDeterministicSource(seed []byte) (io.Reader, error) {
	key := sha256.Sum256(seed)
	nonce := make([]byte, chacha20.NonceSize)
	stream, err := chacha20.NewUnauthenticatedCipher(key[:], nonce)
	if err != nil {
		return nil, errors.Wrap(err, "chacha20 init failure in NewDeterministicSource")
	}
	return &deterministicSource{stream: stream}, nil
}

// MustNewDeterministicSource panics if the ChaCha20 stream cannot be created.
func MustNewDeterministicSource(seed []byte) io.Reader {
	src, err := NewDeterministicSource(seed)
	if err != nil {
		panic(err)
	}
	return src
}

func (s *deterministicSource) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	s.stream.XORKeyStream(p, p)
	return len(p), nil
}

// GetRandomInt returns a uniform value in [0, 2^bits) drawn from rand.
func GetRandomInt(rand io.Reader, bits int) (*big.Int, error) {
	if bits <= 0 || mustGetRandomIntMaxBits < bits {
		return nil, errors.Errorf("GetRandomInt: bits should be positive, non-zero and less than %d", mustGetRandomIntMaxBits)
	}
	bytes := make([]byte, (bits+7)/8)
	if _, err := io.ReadFull(rand, bytes); err != nil {
		return nil, errors.Wrap(err, "rand read failure in GetRandomInt")
	}
	// clear the excess high bits of the first byte
	if b := uint(bits % 8); b != 0 {
		bytes[0] &= uint8(int(1<<b) - 1)
	}
	return new(big.Int).SetBytes(bytes), nil
}

// MustGetRandomInt panics if it is unable to read from rand or when bits is out of range.
func MustGetRandomInt(rand io.Reader, bits int) *big.Int {
	n, err := GetRandomInt(rand, bits)
	if err != nil {
		panic(err)
	}
	return n
}

// GetRandomPositiveInt returns a uniform value in [1, upper) by rejection sampling.
func GetRandomPositiveInt(rand io.Reader, upper *big.Int) (*big.Int, error) {
	if upper == nil || upper.Cmp(two) < 0 {
		return nil, errors.New("GetRandomPositiveInt: upper bound must be at least 2")
	}
	for {
		try, err := GetRandomInt(rand, upper.BitLen())
		if err != nil {
			return nil, err
		}
		if try.Cmp(upper) < 0 && try.Cmp(zero) > 0 {
			return try, nil
		}
	}
}
