// Package param parses the KEYWORD-value problem declaration format
// (spec 6, "Problem declaration"): a plain-text file of one option per
// line, e.g.
//
//	DIMENSION 5
//	X0 0 0 0 0 0
//	LOWER_BOUND -6 -6 -6 -6 -6
//	UPPER_BOUND 5 6 7 +INF +INF
//	BB_OUTPUT_TYPE OBJ PB PB
//	BB_EXE ./bb.sh
//	MAX_BB_EVAL 1000
//	DIRECTION_TYPE ORTHO_2N
//	SEED 42
//
// This is explicitly an external-collaborator interface (spec 1's
// Non-goals list parameter-file parsing as out of core scope); the
// core algorithm only ever consumes the resulting algo.Problem value.
package param

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/rwcarlsen/mads"
)

// DirectionType names a poll direction strategy (spec 6's
// DIRECTION_TYPE option).
type DirectionType string

const (
	Ortho2N   DirectionType = "ORTHO_2N"
	OrthoNp1  DirectionType = "ORTHO_NP1"
)

// Params holds a parsed problem declaration (spec 6's option table).
// param.Params carries everything the core's algo.Problem needs plus
// the driver-level knobs (budgets, direction type, seed, thread count)
// that sit one layer above the core.
type Params struct {
	Dimension     int
	X0            []float64
	LowerBound    []mads.Float
	UpperBound    []mads.Float
	Granularity   []float64
	BBOutputType  []mads.OutputType
	BBExe         string
	MaxBBEval     int
	MaxEval       int
	MaxTime       int // seconds
	DirectionType DirectionType
	NbThreads     int
	Seed          int64
	HMax0         float64
	CacheFile     string
}

// Default returns a Params with the option defaults the core assumes
// when a key is absent from the file.
func Default() Params {
	return Params{
		DirectionType: Ortho2N,
		NbThreads:     1,
		HMax0:         math.Inf(1),
		Seed:          1,
	}
}

// Parse reads a KEYWORD-value parameter file from r (spec 6).
func Parse(r io.Reader) (Params, error) {
	p := Default()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		key := strings.ToUpper(fields[0])
		vals := fields[1:]
		if err := p.apply(key, vals); err != nil {
			return p, fmt.Errorf("param: line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return p, err
	}
	return p, p.validate()
}

func (p *Params) apply(key string, vals []string) error {
	switch key {
	case "DIMENSION":
		n, err := strconv.Atoi(first(vals))
		if err != nil {
			return fmt.Errorf("DIMENSION: %w", err)
		}
		p.Dimension = n
	case "X0":
		xs, err := parseFloats(vals)
		if err != nil {
			return fmt.Errorf("X0: %w", err)
		}
		p.X0 = xs
	case "LOWER_BOUND":
		b, err := parseBounds(vals)
		if err != nil {
			return fmt.Errorf("LOWER_BOUND: %w", err)
		}
		p.LowerBound = b
	case "UPPER_BOUND":
		b, err := parseBounds(vals)
		if err != nil {
			return fmt.Errorf("UPPER_BOUND: %w", err)
		}
		p.UpperBound = b
	case "GRANULARITY":
		g, err := parseFloats(vals)
		if err != nil {
			return fmt.Errorf("GRANULARITY: %w", err)
		}
		p.Granularity = g
	case "BB_OUTPUT_TYPE":
		types, err := parseOutputTypes(vals)
		if err != nil {
			return fmt.Errorf("BB_OUTPUT_TYPE: %w", err)
		}
		p.BBOutputType = types
	case "BB_EXE":
		p.BBExe = first(vals)
	case "MAX_BB_EVAL":
		n, err := strconv.Atoi(first(vals))
		if err != nil {
			return fmt.Errorf("MAX_BB_EVAL: %w", err)
		}
		p.MaxBBEval = n
	case "MAX_EVAL":
		n, err := strconv.Atoi(first(vals))
		if err != nil {
			return fmt.Errorf("MAX_EVAL: %w", err)
		}
		p.MaxEval = n
	case "MAX_TIME":
		n, err := strconv.Atoi(first(vals))
		if err != nil {
			return fmt.Errorf("MAX_TIME: %w", err)
		}
		p.MaxTime = n
	case "DIRECTION_TYPE":
		p.DirectionType = DirectionType(strings.ToUpper(first(vals)))
	case "NB_THREADS":
		n, err := strconv.Atoi(first(vals))
		if err != nil {
			return fmt.Errorf("NB_THREADS: %w", err)
		}
		p.NbThreads = n
	case "SEED":
		n, err := strconv.ParseInt(first(vals), 10, 64)
		if err != nil {
			return fmt.Errorf("SEED: %w", err)
		}
		p.Seed = n
	case "H_MAX_0":
		f, err := strconv.ParseFloat(first(vals), 64)
		if err != nil {
			return fmt.Errorf("H_MAX_0: %w", err)
		}
		p.HMax0 = f
	case "CACHE_FILE":
		p.CacheFile = first(vals)
	default:
		return fmt.Errorf("unknown option %q", key)
	}
	return nil
}

func (p *Params) validate() error {
	if p.Dimension <= 0 {
		return fmt.Errorf("param: DIMENSION must be positive, got %d", p.Dimension)
	}
	if len(p.X0) != p.Dimension {
		return fmt.Errorf("param: X0 has %d entries, want %d", len(p.X0), p.Dimension)
	}
	if p.LowerBound != nil && len(p.LowerBound) != p.Dimension {
		return fmt.Errorf("param: LOWER_BOUND has %d entries, want %d", len(p.LowerBound), p.Dimension)
	}
	if p.UpperBound != nil && len(p.UpperBound) != p.Dimension {
		return fmt.Errorf("param: UPPER_BOUND has %d entries, want %d", len(p.UpperBound), p.Dimension)
	}
	for i := range p.LowerBound {
		if len(p.UpperBound) == p.Dimension && p.LowerBound[i].IsDefined() && p.UpperBound[i].IsDefined() &&
			p.LowerBound[i].Value() > p.UpperBound[i].Value() {
			return fmt.Errorf("param: lower bound exceeds upper bound at coordinate %d", i)
		}
	}
	return nil
}

func first(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

func parseFloats(vals []string) ([]float64, error) {
	out := make([]float64, len(vals))
	for i, v := range vals {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func parseBounds(vals []string) ([]mads.Float, error) {
	out := make([]mads.Float, len(vals))
	for i, v := range vals {
		switch strings.ToUpper(v) {
		case "+INF", "INF":
			out[i] = mads.Undefined
		case "-INF":
			out[i] = mads.Undefined
		default:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, err
			}
			out[i] = mads.Def(f)
		}
	}
	return out, nil
}

func parseOutputTypes(vals []string) ([]mads.OutputType, error) {
	out := make([]mads.OutputType, len(vals))
	for i, v := range vals {
		switch strings.ToUpper(v) {
		case "OBJ":
			out[i] = mads.Objective
		case "PB":
			out[i] = mads.Progressive
		case "EB":
			out[i] = mads.Extreme
		case "EXTRA_O", "NOTHING":
			out[i] = mads.Extra
		default:
			return nil, fmt.Errorf("unknown BB_OUTPUT_TYPE token %q", v)
		}
	}
	return out, nil
}
