// Copyright © 2021 Io FinNet Group, Inc.

package common

import (
	"regexp"
	"strconv"
	"strings"

	big "github.com/iofinnet/modgen/common/int"
	"github.com/pkg/errors"
)

const maxParseExponent = 1 << 16

var (
	ErrUnrecognizedInteger = errors.New("unrecognized integer format; use decimal, 0x-hex, colon-hex, a*b or a^k±c")

	decimalRe  = regexp.MustCompile(`^-?[0-9]+$`)
	hexRe      = regexp.MustCompile(`^(0x)?[0-9a-f]+$`)
	colonHexRe = regexp.MustCompile(`^[0-9a-f]{1,2}(:[0-9a-f]{1,2})+$`)
	powRe      = regexp.MustCompile(`^([0-9]+)\^([0-9]+)(([+-])([0-9]+))?$`)
	mulRe      = regexp.MustCompile(`^([0-9a-fx:]+)\*([0-9a-fx:]+)$`)
)

// ParseInteger reads an integer written as decimal ("-17"), 0x-hex ("0xff"),
// colon-hex ("00:c3:1f"), a product of two terms ("0xff*97") or a power with an
// offset ("2^127-1"). Whitespace is ignored. Bare digit strings are decimal.
func ParseInteger(s string) (*big.Int, error) {
	s = strings.ToLower(strings.Join(strings.Fields(s), ""))
	if s == "" {
		return nil, errors.New("empty integer")
	}
	if m := powRe.FindStringSubmatch(s); m != nil {
		return parsePow(m[1], m[2], m[4], m[5])
	}
	if m := mulRe.FindStringSubmatch(s); m != nil {
		a, err := parseTerm(m[1])
		if err != nil {
			return nil, err
		}
		b, err := parseTerm(m[2])
		if err != nil {
			return nil, err
		}
		return new(big.Int).Mul(a, b), nil
	}
	return parseTerm(s)
}

func parseTerm(s string) (*big.Int, error) {
	switch {
	case decimalRe.MatchString(s):
		n, _ := big.SetString(s, 10)
		return n, nil
	case colonHexRe.MatchString(s):
		n, _ := big.SetString(strings.ReplaceAll(s, ":", ""), 16)
		return n, nil
	case hexRe.MatchString(s):
		n, _ := big.SetString(strings.TrimPrefix(s, "0x"), 16)
		return n, nil
	}
	return nil, errors.Wrapf(ErrUnrecognizedInteger, "%q", s)
}

func parsePow(base, exp, sign, offset string) (*big.Int, error) {
	k, err := strconv.Atoi(exp)
	if err != nil || k > maxParseExponent {
		return nil, errors.Errorf("exponent %q out of range (max %d)", exp, maxParseExponent)
	}
	a, _ := big.SetString(base, 10)
	n := new(big.Int).Exp(a, big.NewInt(uint64(k)), nil)
	if sign == "" {
		return n, nil
	}
	c, _ := big.SetString(offset, 10)
	if sign == "-" {
		return n.Sub(n, c), nil
	}
	return n.Add(n, c), nil
}
