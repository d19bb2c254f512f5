// Copyright © 2021 Io FinNet Group, Inc.

package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/iofinnet/modgen/common"
	"github.com/iofinnet/modgen/crypto/modulus"
)

const (
	formatDecimal = "decimal"
	formatHex     = "hex"
	formatJSON    = "json"
)

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// config is the generate command's settings, from a YAML file and/or flags.
type config struct {
	Bits         int    `yaml:"bits"`
	MaxTrials    int    `yaml:"max_trials"`
	MaxRedraws   int    `yaml:"max_redraws"`
	Format       string `yaml:"format"`
	LogLevel     string `yaml:"log_level"`
	Seed         string `yaml:"seed"`
	Stats        bool   `yaml:"stats"`
	ConstantTime bool   `yaml:"constant_time"`
}

func defaultConfig() config {
	return config{
		Bits:       modulus.DefaultFactorBits,
		MaxRedraws: modulus.DefaultMaxRedraws,
		Format:     formatDecimal,
		LogLevel:   "warn",
	}
}

// loadConfig reads YAML over the defaults. Unknown keys are rejected.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return cfg, errors.Wrap(err, "open config")
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

func (c config) validate() error {
	var result error
	if c.Bits < modulus.MinFactorBits {
		result = multierror.Append(result, fmt.Errorf("bits must be at least %d, got %d", modulus.MinFactorBits, c.Bits))
	}
	if c.MaxRedraws < 0 {
		result = multierror.Append(result, fmt.Errorf("max_redraws must not be negative, got %d", c.MaxRedraws))
	}
	switch c.Format {
	case formatDecimal, formatHex, formatJSON:
	default:
		result = multierror.Append(result, fmt.Errorf("unknown format %q", c.Format))
	}
	if !logLevels[c.LogLevel] {
		result = multierror.Append(result, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	if _, err := hex.DecodeString(c.Seed); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "seed must be hex"))
	}
	return result
}

// source returns the deterministic stream for a seed, or the system CSPRNG without one.
func (c config) source() (io.Reader, error) {
	if c.Seed == "" {
		return common.CryptoSource(), nil
	}
	seed, err := hex.DecodeString(c.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "seed must be hex")
	}
	return common.NewDeterministicSource(seed)
}
