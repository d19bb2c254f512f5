// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package common

import (
	big "github.com/iofinnet/modgen/common/int"

	"github.com/ipfs/go-log"
)

// LoggerName is the go-log subsystem name; pass it to log.SetLogLevel.
const LoggerName = "modgen"

var Logger = log.Logger(LoggerName)

// FormatBigInt renders the low 32 bits of a in hex, enough to tell values apart in logs
// without writing whole primes out.
func FormatBigInt(a *big.Int) string {
	if a == nil {
		return "<nil>"
	}
	var aux = new(big.Int).SetUint64(0xFFFFFFFF)
	return new(big.Int).And(a, aux).Text(16)
}
