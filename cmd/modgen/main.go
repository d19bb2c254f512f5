// Copyright © 2021 Io FinNet Group, Inc.

// Command modgen prints the product of two distinct random primes.
//
// Usage:
//
//	modgen [-bits 64] [-format decimal|hex|json] [-seed hex] [-stats] [-config file.yaml]
//	modgen prime <n>
//	modgen factor [-timeout 3s] [-p1-bound B] [-rho-restarts R] [-rho-iters I] <n>
//
// <n> may be decimal, 0x-hex, colon-hex, a*b or a^k±c.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/ipfs/go-log"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/iofinnet/modgen/common"
	big "github.com/iofinnet/modgen/common/int"
	"github.com/iofinnet/modgen/crypto/factor"
	"github.com/iofinnet/modgen/crypto/modulus"
	"github.com/iofinnet/modgen/crypto/mr"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "prime":
			return runPrime(args[1:], stdout, stderr)
		case "factor":
			return runFactor(args[1:], stdout, stderr)
		}
	}
	return runGenerate(args, stdout, stderr)
}

func fail(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "modgen: %v\n", err)
	return exitError
}

func runGenerate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("modgen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	def := defaultConfig()
	configPath := fs.String("config", "", "YAML config file; flags override it")
	bits := fs.Int("bits", def.Bits, "bit length of each prime factor")
	maxTrials := fs.Int("max-trials", def.MaxTrials, "candidates per prime before giving up (0: 50*bits, <0: unlimited)")
	maxRedraws := fs.Int("max-redraws", def.MaxRedraws, "redraws of q while it equals p")
	format := fs.String("format", def.Format, "output format: decimal, hex or json")
	logLevel := fs.String("log-level", def.LogLevel, "debug, info, warn or error")
	seed := fs.String("seed", def.Seed, "hex seed for a reproducible run (not for real keys)")
	stats := fs.Bool("stats", def.Stats, "print generation statistics to stderr")
	constantTime := fs.Bool("constant-time", def.ConstantTime, "use saferith for modular exponentiation")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "modgen: unexpected argument %q\n", fs.Arg(0))
		fs.Usage()
		return exitUsage
	}

	cfg := def
	if *configPath != "" {
		var err error
		if cfg, err = loadConfig(*configPath); err != nil {
			return fail(stderr, err)
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "bits":
			cfg.Bits = *bits
		case "max-trials":
			cfg.MaxTrials = *maxTrials
		case "max-redraws":
			cfg.MaxRedraws = *maxRedraws
		case "format":
			cfg.Format = *format
		case "log-level":
			cfg.LogLevel = *logLevel
		case "seed":
			cfg.Seed = *seed
		case "stats":
			cfg.Stats = *stats
		case "constant-time":
			cfg.ConstantTime = *constantTime
		}
	})
	if err := cfg.validate(); err != nil {
		return fail(stderr, err)
	}
	if err := log.SetLogLevel(common.LoggerName, cfg.LogLevel); err != nil {
		return fail(stderr, err)
	}
	if cfg.ConstantTime {
		big.EnableConstantTimeArithmetic()
	}

	src, err := cfg.source()
	if err != nil {
		return fail(stderr, err)
	}
	params, err := modulus.NewParameters(src,
		modulus.WithFactorBits(cfg.Bits),
		modulus.WithMaxTrials(cfg.MaxTrials),
		modulus.WithMaxRedraws(cfg.MaxRedraws))
	if err != nil {
		return fail(stderr, err)
	}
	m, err := modulus.Generate(context.Background(), params)
	if err != nil {
		return fail(stderr, err)
	}
	if err := writeModulus(stdout, m, cfg.Format); err != nil {
		return fail(stderr, err)
	}
	if cfg.Stats {
		writeStats(stderr, m)
	}
	return exitOK
}

func writeModulus(w io.Writer, m *modulus.Modulus, format string) error {
	var err error
	switch format {
	case formatHex:
		_, err = fmt.Fprintf(w, "0x%s\n", m.N.Text(16))
	case formatJSON:
		var bz []byte
		if bz, err = json.Marshal(m); err == nil {
			_, err = fmt.Fprintf(w, "%s\n", bz)
		}
	default:
		_, err = fmt.Fprintln(w, m.N.String())
	}
	return errors.Wrap(err, "write modulus")
}

func writeStats(w io.Writer, m *modulus.Modulus) {
	p := message.NewPrinter(language.English)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"value", "bits", "trials", "redraws"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.Append([]string{"p", strconv.Itoa(m.P.BitLen()), p.Sprintf("%d", m.PTrials), "-"})
	table.Append([]string{"q", strconv.Itoa(m.Q.BitLen()), p.Sprintf("%d", m.QTrials), p.Sprintf("%d", m.Redraws)})
	table.Append([]string{"n", strconv.Itoa(m.N.BitLen()), "-", "-"})
	table.SetFooter([]string{"elapsed", "", "", m.Elapsed.Round(time.Microsecond).String()})
	table.Render()
}

type primeReport struct {
	N              *big.Int `json:"n"`
	Input          string   `json:"n_str"`
	Classification string   `json:"classification"`
	Bits           int      `json:"bits"`
}

type factorReport struct {
	primeReport
	Factors   []factor.Power `json:"factors,omitempty"`
	Remaining []*big.Int     `json:"remaining,omitempty"`
	Status    factor.Status  `json:"status"`
	ElapsedMS int64          `json:"elapsed_ms"`
}

func classify(n *big.Int, input string) primeReport {
	r := primeReport{N: n, Input: input, Bits: n.BitLen()}
	switch {
	case mr.IsProbablePrime(n):
		r.Classification = "prime"
	case n.Cmp(big.NewInt(2)) < 0:
		r.Classification = "neither"
	default:
		r.Classification = "composite"
	}
	return r
}

func parseSingleArg(fs *flag.FlagSet, args []string, stderr io.Writer) (*big.Int, string, bool) {
	if err := fs.Parse(args); err != nil {
		return nil, "", false
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "modgen %s: expected exactly one integer\n", fs.Name())
		fs.Usage()
		return nil, "", false
	}
	n, err := common.ParseInteger(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "modgen %s: %v\n", fs.Name(), err)
		return nil, "", false
	}
	return n, fs.Arg(0), true
}

func writeJSON(w io.Writer, v interface{}) error {
	bz, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", bz)
	return err
}

func runPrime(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("prime", flag.ContinueOnError)
	fs.SetOutput(stderr)
	n, input, ok := parseSingleArg(fs, args, stderr)
	if !ok {
		return exitUsage
	}
	if err := writeJSON(stdout, classify(n, input)); err != nil {
		return fail(stderr, err)
	}
	return exitOK
}

func runFactor(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("factor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	timeout := fs.Duration("timeout", 3*time.Second, "give up after this long (0: no limit)")
	p1Bound := fs.Int("p1-bound", factor.DefaultPMinus1Bound, "Pollard p-1 smoothness bound (0: skip p-1)")
	rhoRestarts := fs.Int("rho-restarts", factor.DefaultRhoRestarts, "random polynomials per composite")
	rhoIters := fs.Int("rho-iters", factor.DefaultRhoIterations, "evaluations per rho attempt (0: unlimited)")
	seed := fs.String("seed", "", "hex seed for reproducible rho starting points")
	n, input, ok := parseSingleArg(fs, args, stderr)
	if !ok {
		return exitUsage
	}
	if n.Sign() <= 0 {
		return fail(stderr, factor.ErrNotPositive)
	}

	cfg := defaultConfig()
	cfg.Seed = *seed
	src, err := cfg.source()
	if err != nil {
		return fail(stderr, err)
	}
	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}
	res, err := factor.Factorize(ctx, n,
		factor.WithRand(src),
		factor.WithPMinus1Bound(*p1Bound),
		factor.WithRhoRestarts(*rhoRestarts),
		factor.WithRhoIterations(*rhoIters))
	if err != nil && !errors.Is(err, factor.ErrIncomplete) {
		return fail(stderr, err)
	}
	report := factorReport{
		primeReport: classify(n, input),
		Factors:     res.Multiplicities(),
		Remaining:   res.Remaining,
		Status:      res.Status,
		ElapsedMS:   res.Elapsed.Milliseconds(),
	}
	if err := writeJSON(stdout, report); err != nil {
		return fail(stderr, err)
	}
	return exitOK
}
