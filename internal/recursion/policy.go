// Package recursion defines how deep a scan may descend below its root directory.
package recursion

import (
	"errors"
	"fmt"
	"strconv"
)

// Unlimited is the textual form of an unbounded policy.
const Unlimited = "unlimited"

// ErrInvalidRecursionDepth is returned when a policy cannot be parsed.
var ErrInvalidRecursionDepth = errors.New("invalid recursion depth")

// Mode enumerates the recursion behaviours.
type Mode int

const (
	// ModeNone scans only the direct entries of the root.
	ModeNone Mode = iota
	// ModeBounded descends up to a fixed number of levels below the root.
	ModeBounded
	// ModeUnbounded descends without limit.
	ModeUnbounded
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeBounded:
		return "bounded"
	case ModeUnbounded:
		return "unbounded"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Policy is a recursion policy. The zero value is the non-recursive policy.
type Policy struct {
	mode  Mode
	depth int
}

// None returns the non-recursive policy.
func None() Policy {
	return Policy{mode: ModeNone}
}

// Unbounded returns the policy that descends without limit.
func Unbounded() Policy {
	return Policy{mode: ModeUnbounded}
}

// Bounded returns a policy descending at most depth levels below the root.
// A negative depth is clamped to zero.
func Bounded(depth int) Policy {
	return Policy{mode: ModeBounded, depth: max(depth, 0)}
}

// Parse converts the textual form of a policy.
//
//	""          -> None
//	"unlimited" -> Unbounded
//	"N"         -> Bounded(N), N >= 0
//
// Any other input yields an error wrapping ErrInvalidRecursionDepth.
func Parse(text string) (Policy, error) {
	switch text {
	case "":
		return None(), nil
	case Unlimited:
		return Unbounded(), nil
	}

	depth, err := strconv.Atoi(text)
	if err != nil || depth < 0 {
		return Policy{}, fmt.Errorf("%w: %q (expected a non-negative integer or %q)",
			ErrInvalidRecursionDepth, text, Unlimited)
	}

	return Bounded(depth), nil
}

// Mode returns the policy mode.
func (p Policy) Mode() Mode {
	return p.mode
}

// AllowsRecursion reports whether subdirectories may be entered at all.
func (p Policy) AllowsRecursion() bool {
	return p.mode != ModeNone
}

// IsUnbounded reports whether the policy places no limit on depth.
func (p Policy) IsUnbounded() bool {
	return p.mode == ModeUnbounded
}

// InitialBudget returns the budget assigned to the root directory.
// It is zero for both None and Unbounded; callers must consult IsUnbounded
// before interpreting a budget.
func (p Policy) InitialBudget() int {
	if p.mode == ModeBounded {
		return p.depth
	}

	return 0
}

// PermitsDir reports whether the files of a directory at the given depth are
// in scope. The root is at depth 0, its subdirectories at depth 1.
func (p Policy) PermitsDir(depth int) bool {
	switch p.mode {
	case ModeUnbounded:
		return true
	case ModeBounded:
		return depth <= p.depth
	default:
		return depth == 0
	}
}

// String returns the textual form accepted by Parse.
func (p Policy) String() string {
	switch p.mode {
	case ModeUnbounded:
		return Unlimited
	case ModeBounded:
		return strconv.Itoa(p.depth)
	default:
		return ""
	}
}

// Set implements pflag.Value.
func (p *Policy) Set(text string) error {
	parsed, err := Parse(text)
	if err != nil {
		return err
	}

	*p = parsed

	return nil
}

// Type implements pflag.Value.
func (p *Policy) Type() string {
	return "depth"
}
