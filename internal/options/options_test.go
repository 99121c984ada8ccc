package options

import (
	"testing"

	"github.com/pietlang/pietc/internal/codegen"
	"github.com/pietlang/pietc/internal/image"
	"github.com/pietlang/pietc/internal/logging"
)

func TestParseDefaults(t *testing.T) {
	opts, err := Parse([]string{"prog.bmp"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if opts.ImagePath != "prog.bmp" {
		t.Errorf("ImagePath = %q, want prog.bmp", opts.ImagePath)
	}
	if opts.Verbosity != logging.Normal {
		t.Errorf("default Verbosity = %v, want Normal", opts.Verbosity)
	}
	if opts.OptLevel != codegen.OptNone {
		t.Errorf("default OptLevel = %v, want OptNone", opts.OptLevel)
	}
	if opts.UnknownPolicy != image.RejectUnknown {
		t.Errorf("default UnknownPolicy = %v, want RejectUnknown", opts.UnknownPolicy)
	}
}

func TestParseRequiresExactlyOneImageArg(t *testing.T) {
	if _, err := Parse(nil); err == nil {
		t.Error("expected error with no image path argument")
	}
	if _, err := Parse([]string{"a.bmp", "b.bmp"}); err == nil {
		t.Error("expected error with two image path arguments")
	}
}

func TestParseForceOneSetsCodelWidth(t *testing.T) {
	opts, err := Parse([]string{"-d", "prog.bmp"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if opts.ForceWidth != 1 {
		t.Errorf("ForceWidth = %d, want 1", opts.ForceWidth)
	}
}

func TestParseOptLevelsAreMutuallyExclusive(t *testing.T) {
	if _, err := Parse([]string{"--o1", "--o2", "prog.bmp"}); err == nil {
		t.Error("expected error for --o1 and --o2 together")
	}
	opts, err := Parse([]string{"--o3", "prog.bmp"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if opts.OptLevel != codegen.OptAggressive {
		t.Errorf("OptLevel = %v, want OptAggressive", opts.OptLevel)
	}
}

func TestParseOptLevelIncompatibleWithInterpret(t *testing.T) {
	if _, err := Parse([]string{"-i", "--o1", "prog.bmp"}); err == nil {
		t.Error("expected error combining -i with an optimization flag")
	}
}

func TestParseUnknownPolicyFlags(t *testing.T) {
	if _, err := Parse([]string{"--uw", "--ub", "prog.bmp"}); err == nil {
		t.Error("expected error combining --uw and --ub")
	}
	opts, err := Parse([]string{"--uw", "prog.bmp"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if opts.UnknownPolicy != image.TreatAsWhite {
		t.Errorf("UnknownPolicy = %v, want TreatAsWhite", opts.UnknownPolicy)
	}
}

func TestParseInvalidVerbosity(t *testing.T) {
	if _, err := Parse([]string{"-v", "5", "prog.bmp"}); err == nil {
		t.Error("expected error for out-of-range -v")
	}
}
