// Copyright © 2021 Io FinNet Group, Inc.

// Package int wraps math/big with value-returning arithmetic and an optional
// best-effort constant time modular exponentiation backed by saferith.
package int

import (
	"encoding/json"
	"math/big"

	big_const "github.com/cronokirby/saferith"
)

type (
	// Int is an arbitrary-precision integer. The zero value is 0.
	// An Int must not be mutated concurrently.
	Int struct {
		i *big.Int
	}
)

var (
	constantTimeIntEnabled = false

	one = big.NewInt(1)
)

// EnableConstantTimeArithmetic routes Exp through saferith (experimental, slower).
// Must be called before any prime is generated or tested, or behaviour may be unpredictable.
func EnableConstantTimeArithmetic() (enabled bool) {
	constantTimeIntEnabled = true
	return constantTimeIntEnabled
}

// ConstantTimeArithmeticEnabled reports whether Exp uses the saferith backend.
func ConstantTimeArithmeticEnabled() bool {
	return constantTimeIntEnabled
}

func NewInt(x uint64) *Int {
	return &Int{new(big.Int).SetUint64(x)}
}

// Wrap takes ownership of i2; the caller must not modify it afterwards.
func Wrap(i2 *big.Int) *Int {
	if i2 == nil {
		return nil
	}
	return &Int{i2}
}

func SetString(s string, base int) (*Int, bool) {
	bi, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, false
	}
	return Wrap(bi), true
}

func (z *Int) Set(x *Int) *Int {
	z.ensureInitialized()
	z.i.Set(x.Big())
	return z
}
func (z *Int) SetBytes(data []byte) *Int {
	z.ensureInitialized()
	z.i.SetBytes(data)
	return z
}
func (z *Int) SetUint64(x uint64) *Int {
	z.ensureInitialized()
	z.i.SetUint64(x)
	return z
}
func (z *Int) SetInt64(x int64) *Int {
	z.ensureInitialized()
	z.i.SetInt64(x)
	return z
}
func (z *Int) Clone() *Int {
	return &Int{new(big.Int).Set(z.Big())}
}

// arithmetic

func (z *Int) Add(x, y *Int) *Int {
	z.ensureInitialized()
	z.i.Add(x.Big(), y.Big())
	return z
}
func (z *Int) Sub(x, y *Int) *Int {
	z.ensureInitialized()
	z.i.Sub(x.Big(), y.Big())
	return z
}
func (z *Int) Mul(x, y *Int) *Int {
	z.ensureInitialized()
	z.i.Mul(x.Big(), y.Big())
	return z
}
func (z *Int) Div(x, y *Int) *Int {
	z.ensureInitialized()
	z.i.Div(x.Big(), y.Big())
	return z
}

// Mod sets z to the Euclidean modulus x mod y, always in [0, |y|).
func (z *Int) Mod(x, y *Int) *Int {
	z.ensureInitialized()
	z.i.Mod(x.Big(), y.Big())
	return z
}
func (z *Int) Neg(x *Int) *Int {
	z.ensureInitialized()
	z.i.Neg(x.Big())
	return z
}
func (z *Int) Abs(x *Int) *Int {
	z.ensureInitialized()
	z.i.Abs(x.Big())
	return z
}

// Exp sets z = x**y mod |m|. If m is nil or zero, z = x**y.
// In constant time mode an odd modulus greater than one is handled by saferith.
func (z *Int) Exp(x, y, m *Int) *Int {
	z.ensureInitialized()
	if m == nil || m.Sign() == 0 {
		z.i.Exp(x.Big(), y.Big(), nil)
		return z
	}
	if constantTimeIntEnabled && m.Bit(0) == 1 && m.Big().Cmp(one) > 0 && y.Sign() >= 0 {
		z.i = ctExp(x.Big(), y.Big(), m.Big())
		return z
	}
	z.i.Exp(x.Big(), y.Big(), m.Big())
	return z
}
func (z *Int) GCD(x, y, a, b *Int) *Int {
	z.ensureInitialized()
	if x == nil && y == nil {
		z.i.GCD(nil, nil, a.Big(), b.Big())
		return z
	}
	z.i.GCD(x.Big(), y.Big(), a.Big(), b.Big())
	return z
}
func (z *Int) Sqrt(x *Int) *Int {
	z.ensureInitialized()
	z.i.Sqrt(x.Big())
	return z
}

// bits

func (z *Int) Lsh(x *Int, n uint) *Int {
	z.ensureInitialized()
	z.i.Lsh(x.Big(), n)
	return z
}
func (z *Int) Rsh(x *Int, n uint) *Int {
	z.ensureInitialized()
	z.i.Rsh(x.Big(), n)
	return z
}
func (z *Int) And(x, y *Int) *Int {
	z.ensureInitialized()
	z.i.And(x.Big(), y.Big())
	return z
}
func (z *Int) SetBit(x *Int, i int, b uint) *Int {
	z.ensureInitialized()
	z.i.SetBit(x.Big(), i, b)
	return z
}

// getters

func (z *Int) Cmp(y *Int) (r int) {
	return z.Big().Cmp(y.Big())
}
func (z *Int) Sign() int {
	return z.Big().Sign()
}
func (z *Int) BitLen() int {
	return z.Big().BitLen()
}
func (z *Int) Bit(i int) uint {
	return z.Big().Bit(i)
}
func (z *Int) TrailingZeroBits() uint {
	return z.Big().TrailingZeroBits()
}
func (z *Int) IsUint64() bool {
	return z.Big().IsUint64()
}
func (z *Int) Uint64() uint64 {
	return z.Big().Uint64()
}
func (z *Int) Bytes() []byte {
	return z.Big().Bytes()
}
func (z *Int) ProbablyPrime(n int) bool {
	return z.Big().ProbablyPrime(n)
}
func (z *Int) String() string {
	if z == nil {
		return "<nil>"
	}
	return z.Big().String()
}
func (z *Int) Text(base int) string {
	if z == nil {
		return "<nil>"
	}
	return z.Big().Text(base)
}

// Big returns the backing *big.Int. The result aliases z.
func (z *Int) Big() *big.Int {
	if z == nil {
		return new(big.Int)
	}
	z.ensureInitialized()
	return z.i
}

// -----

func (z *Int) ensureInitialized() {
	if z.i == nil {
		z.i = new(big.Int)
	}
}

// ctExp needs an odd modulus m > 1 and a non-negative exponent.
func ctExp(x, y, m *big.Int) *big.Int {
	mod := big_const.ModulusFromBytes(m.Bytes())
	base := new(big.Int).Mod(x, m)
	xNat := new(big_const.Nat).SetBytes(base.Bytes())
	yNat := new(big_const.Nat).SetBytes(y.Bytes())
	return new(big_const.Nat).Exp(xNat, yNat, mod).Big()
}

func (z *Int) MarshalJSON() ([]byte, error) {
	return json.Marshal(z.Big())
}

func (z *Int) UnmarshalJSON(b []byte) error {
	var Z big.Int
	if err := json.Unmarshal(b, &Z); err != nil {
		return err
	}
	z.i = &Z
	return nil
}
