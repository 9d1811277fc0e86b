// Package version handles recipe version identifiers and Spack-style ranges.
//
// Identifiers that parse as semantic versions ("6.12", "v1.1", "15.0.0") are
// ordered with semver. Everything else ("develop", "BetaLin-2023-11-09") is an
// opaque name that only matches exactly or by dotted prefix.
package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version is a single declared version identifier.
type Version struct {
	raw string
	sv  *semver.Version // nil for opaque identifiers
}

// Parse returns the Version for s. It never fails for a non-empty string.
func Parse(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, fmt.Errorf("empty version identifier")
	}
	v := Version{raw: s}
	if sv, err := semver.NewVersion(s); err == nil {
		v.sv = sv
	}
	return v, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) String() string { return v.raw }

// IsZero reports whether v was never set.
func (v Version) IsZero() bool { return v.raw == "" }

// Ordered reports whether v can take part in range comparisons.
func (v Version) Ordered() bool { return v.sv != nil }

// Equal reports exact identity of the identifiers.
func (v Version) Equal(o Version) bool { return v.raw == o.raw }

// HasPrefix reports whether v equals p or refines it ("3.10.6.1" refines "3.10.6").
func (v Version) HasPrefix(p Version) bool {
	if v.raw == p.raw {
		return true
	}
	return strings.HasPrefix(v.raw, p.raw+".")
}

// Range is a Spack-style version constraint:
//
//	"1.2"      exact (or a refinement of it)
//	"1.2:"     1.2 and later
//	":1.2"     up to and including 1.2.x
//	"1.2:1.4"  both bounds, inclusive
//	""         any version
type Range struct {
	lo, hi   Version
	ranged   bool
	fromText string
}

// Any matches every version.
var Any = Range{}

// ParseRange parses a constraint as written after '@' in a spec string.
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Any, nil
	}
	r := Range{fromText: s}
	lo, hi, ranged := strings.Cut(s, ":")
	r.ranged = ranged
	if lo != "" {
		v, err := Parse(lo)
		if err != nil {
			return Range{}, fmt.Errorf("parsing range %q: %w", s, err)
		}
		r.lo = v
	}
	if ranged && hi != "" {
		v, err := Parse(hi)
		if err != nil {
			return Range{}, fmt.Errorf("parsing range %q: %w", s, err)
		}
		r.hi = v
	}
	if ranged && ((!r.lo.IsZero() && !r.lo.Ordered()) || (!r.hi.IsZero() && !r.hi.Ordered())) {
		return Range{}, fmt.Errorf("range %q: bounds must be numeric versions", s)
	}
	return r, nil
}

// MustParseRange is ParseRange for literals known to be valid.
func MustParseRange(s string) Range {
	r, err := ParseRange(s)
	if err != nil {
		panic(err)
	}
	return r
}

// IsAny reports whether r places no constraint.
func (r Range) IsAny() bool { return r.lo.IsZero() && r.hi.IsZero() }

func (r Range) String() string { return r.fromText }

// Contains reports whether v satisfies r.
func (r Range) Contains(v Version) bool {
	if r.IsAny() {
		return true
	}
	if v.IsZero() {
		return false
	}
	if !r.ranged {
		return v.HasPrefix(r.lo)
	}
	if !v.Ordered() {
		return false
	}
	if !r.lo.IsZero() && v.sv.LessThan(r.lo.sv) {
		return false
	}
	if !r.hi.IsZero() && v.sv.GreaterThan(r.hi.sv) && !v.HasPrefix(r.hi) {
		return false
	}
	return true
}

// Intersects reports whether some version could satisfy both ranges. Opaque
// exact ranges only intersect when one refines the other.
func (r Range) Intersects(o Range) bool {
	if r.IsAny() || o.IsAny() {
		return true
	}
	if !r.ranged {
		return o.Contains(r.lo) || (!o.ranged && o.lo.HasPrefix(r.lo))
	}
	if !o.ranged {
		return r.Contains(o.lo)
	}
	if !r.lo.IsZero() && !o.hi.IsZero() && r.lo.sv.GreaterThan(o.hi.sv) && !r.lo.HasPrefix(o.hi) {
		return false
	}
	if !o.lo.IsZero() && !r.hi.IsZero() && o.lo.sv.GreaterThan(r.hi.sv) && !o.lo.HasPrefix(r.hi) {
		return false
	}
	return true
}
