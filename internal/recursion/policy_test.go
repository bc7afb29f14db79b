package recursion

import (
	"errors"
	"testing"

	"github.com/spf13/pflag"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		mode      Mode
		budget    int
		recursive bool
		unbounded bool
	}{
		{"empty is non-recursive", "", ModeNone, 0, false, false},
		{"unlimited", "unlimited", ModeUnbounded, 0, true, true},
		{"zero depth", "0", ModeBounded, 0, true, false},
		{"depth three", "3", ModeBounded, 3, true, false},
		{"large depth", "1000", ModeBounded, 1000, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.input, err)
			}

			if p.Mode() != tt.mode {
				t.Errorf("Parse(%q).Mode() = %v, want %v", tt.input, p.Mode(), tt.mode)
			}

			if p.InitialBudget() != tt.budget {
				t.Errorf("Parse(%q).InitialBudget() = %d, want %d", tt.input, p.InitialBudget(), tt.budget)
			}

			if p.AllowsRecursion() != tt.recursive {
				t.Errorf("Parse(%q).AllowsRecursion() = %v, want %v", tt.input, p.AllowsRecursion(), tt.recursive)
			}

			if p.IsUnbounded() != tt.unbounded {
				t.Errorf("Parse(%q).IsUnbounded() = %v, want %v", tt.input, p.IsUnbounded(), tt.unbounded)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	for _, input := range []string{"-1", "abc", "1.5", " 3", "Unlimited", "3x"} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", input)
			}

			if !errors.Is(err, ErrInvalidRecursionDepth) {
				t.Errorf("Parse(%q) error = %v, want ErrInvalidRecursionDepth", input, err)
			}
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, p := range []Policy{None(), Unbounded(), Bounded(0), Bounded(7)} {
		parsed, err := Parse(p.String())
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", p.String(), err)
		}

		if parsed != p {
			t.Errorf("round trip of %q = %+v, want %+v", p.String(), parsed, p)
		}
	}
}

func TestZeroValueIsNone(t *testing.T) {
	var p Policy

	if p != None() {
		t.Errorf("zero Policy = %+v, want None()", p)
	}
}

func TestPermitsDir(t *testing.T) {
	tests := []struct {
		policy Policy
		depth  int
		want   bool
	}{
		{None(), 0, true},
		{None(), 1, false},
		{Bounded(0), 0, true},
		{Bounded(0), 1, false},
		{Bounded(2), 2, true},
		{Bounded(2), 3, false},
		{Unbounded(), 50, true},
	}

	for _, tt := range tests {
		if got := tt.policy.PermitsDir(tt.depth); got != tt.want {
			t.Errorf("%v(%q).PermitsDir(%d) = %v, want %v", tt.policy.Mode(), tt.policy.String(), tt.depth, got, tt.want)
		}
	}
}

func TestPolicyAsFlag(t *testing.T) {
	newFlags := func(p *Policy) *pflag.FlagSet {
		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		fs.VarP(p, "recursive", "r", "recursion")
		fs.Lookup("recursive").NoOptDefVal = Unlimited

		return fs
	}

	tests := []struct {
		name string
		args []string
		want Policy
	}{
		{"absent", []string{"dir"}, None()},
		{"bare long flag", []string{"--recursive", "dir"}, Unbounded()},
		{"bare short flag", []string{"-r"}, Unbounded()},
		{"long with depth", []string{"--recursive=2"}, Bounded(2)},
		{"short with depth", []string{"-r=4"}, Bounded(4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Policy

			if err := newFlags(&p).Parse(tt.args); err != nil {
				t.Fatalf("Parse(%v) returned error: %v", tt.args, err)
			}

			if p != tt.want {
				t.Errorf("policy = %+v, want %+v", p, tt.want)
			}
		})
	}

	var p Policy
	if err := newFlags(&p).Parse([]string{"--recursive=abc"}); err == nil {
		t.Error("expected error for --recursive=abc")
	}
}
