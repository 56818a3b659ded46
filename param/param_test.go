package param

import (
	"strings"
	"testing"

	"github.com/rwcarlsen/mads"
)

const sample = `
DIMENSION 3
X0 0 0 0
LOWER_BOUND -6 -6 -6
UPPER_BOUND 5 6 +INF
BB_OUTPUT_TYPE OBJ PB EB
BB_EXE ./bb.sh
MAX_BB_EVAL 1000
DIRECTION_TYPE ORTHO_NP1
SEED 42
`

func TestParseSample(t *testing.T) {
	p, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	if p.Dimension != 3 {
		t.Errorf("Dimension = %d, want 3", p.Dimension)
	}
	if len(p.X0) != 3 {
		t.Fatalf("X0 = %v, want length 3", p.X0)
	}
	if p.UpperBound[2].IsDefined() {
		t.Error("+INF upper bound should be undefined")
	}
	if p.BBOutputType[0] != mads.Objective || p.BBOutputType[1] != mads.Progressive || p.BBOutputType[2] != mads.Extreme {
		t.Errorf("BBOutputType = %v", p.BBOutputType)
	}
	if p.BBExe != "./bb.sh" {
		t.Errorf("BBExe = %q", p.BBExe)
	}
	if p.MaxBBEval != 1000 {
		t.Errorf("MaxBBEval = %d, want 1000", p.MaxBBEval)
	}
	if p.DirectionType != OrthoNp1 {
		t.Errorf("DirectionType = %q", p.DirectionType)
	}
	if p.Seed != 42 {
		t.Errorf("Seed = %d, want 42", p.Seed)
	}
}

func TestParseRejectsDimensionMismatch(t *testing.T) {
	_, err := Parse(strings.NewReader("DIMENSION 3\nX0 0 0\n"))
	if err == nil {
		t.Fatal("expected an error for X0/DIMENSION mismatch")
	}
}

func TestParseRejectsUnknownOption(t *testing.T) {
	_, err := Parse(strings.NewReader("DIMENSION 1\nX0 0\nBOGUS_OPTION 5\n"))
	if err == nil {
		t.Fatal("expected an error for unknown option")
	}
}

func TestParseRejectsInvertedBounds(t *testing.T) {
	_, err := Parse(strings.NewReader("DIMENSION 1\nX0 0\nLOWER_BOUND 5\nUPPER_BOUND -5\n"))
	if err == nil {
		t.Fatal("expected an error for lower bound exceeding upper bound")
	}
}

func TestDefaultsApplyWhenOptionsAbsent(t *testing.T) {
	p, err := Parse(strings.NewReader("DIMENSION 1\nX0 0\n"))
	if err != nil {
		t.Fatal(err)
	}
	if p.DirectionType != Ortho2N {
		t.Errorf("default DirectionType = %q, want ORTHO_2N", p.DirectionType)
	}
	if p.NbThreads != 1 {
		t.Errorf("default NbThreads = %d, want 1", p.NbThreads)
	}
}
