// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package int

// modInt performs all of its arithmetic with reduction modulo a fixed, positive modulus.
// Every operation returns a new *Int in [0, m).
type modInt struct {
	m *Int
}

func ModInt(mod *Int) *modInt {
	return &modInt{mod.Clone()}
}

func (mi *modInt) Add(x, y *Int) *Int {
	i := new(Int)
	i.Add(x, y)
	return i.Mod(i, mi.m)
}

func (mi *modInt) Sub(x, y *Int) *Int {
	i := new(Int)
	i.Sub(x, y)
	return i.Mod(i, mi.m)
}

func (mi *modInt) Mul(x, y *Int) *Int {
	i := new(Int)
	i.Mul(x, y)
	return i.Mod(i, mi.m)
}

func (mi *modInt) Exp(x, y *Int) *Int {
	return new(Int).Exp(x, y, mi.m)
}

func (mi *modInt) Reduce(x *Int) *Int {
	return new(Int).Mod(x, mi.m)
}

// Modulus returns a copy of the modulus.
func (mi *modInt) Modulus() *Int {
	return mi.m.Clone()
}
