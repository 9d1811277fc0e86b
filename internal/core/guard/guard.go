// Package guard provides typed predicates over a resolved spec.
//
// A Guard is a pure function of a *spec.Spec. Recipes compose them with All,
// Any and Not instead of probing strings like "+cuda" in spec.
package guard

import (
	"strings"

	"github.com/platoengine/recipe/internal/core/spec"
	"github.com/platoengine/recipe/internal/core/version"
)

// Guard decides whether a rule applies to a spec.
type Guard interface {
	Holds(s *spec.Spec) bool
	String() string
}

// Variants is implemented by guards that reference variants of the spec they
// are evaluated against. Dependency-scoped guards do not report theirs.
type Variants interface {
	VariantNames() []string
}

// Referenced returns every variant name g tests on its own spec.
func Referenced(g Guard) []string {
	if v, ok := g.(Variants); ok {
		return v.VariantNames()
	}
	return nil
}

type always struct{}

func (always) Holds(*spec.Spec) bool { return true }
func (always) String() string        { return "" }

// Always holds for every spec; it is the guard of an unconditional rule.
var Always Guard = always{}

// IsAlways reports whether g is the unconditional guard.
func IsAlways(g Guard) bool {
	_, ok := g.(always)
	return ok || g == nil
}

type variantOn string

// VariantOn holds when the boolean variant is set and true ("+name").
func VariantOn(name string) Guard { return variantOn(name) }

func (g variantOn) Holds(s *spec.Spec) bool { return s.Variants.Get(string(g)).On() }
func (g variantOn) String() string          { return "+" + string(g) }
func (g variantOn) VariantNames() []string  { return []string{string(g)} }

type variantOff string

// VariantOff holds when the boolean variant is set and false ("~name").
// An unset variant satisfies neither VariantOn nor VariantOff.
func VariantOff(name string) Guard { return variantOff(name) }

func (g variantOff) Holds(s *spec.Spec) bool { return s.Variants.Get(string(g)).Off() }
func (g variantOff) String() string          { return "~" + string(g) }
func (g variantOff) VariantNames() []string  { return []string{string(g)} }

type variantEquals struct{ name, value string }

// VariantEquals holds when the variant is set to value ("name=value").
func VariantEquals(name, value string) Guard { return variantEquals{name, value} }

func (g variantEquals) Holds(s *spec.Spec) bool { return s.Variants.Get(g.name).Is(g.value) }
func (g variantEquals) String() string          { return g.name + "=" + g.value }
func (g variantEquals) VariantNames() []string  { return []string{g.name} }

type versionIn struct{ r version.Range }

// VersionIn holds when the spec's version lies in r ("@r").
func VersionIn(r version.Range) Guard { return versionIn{r} }

func (g versionIn) Holds(s *spec.Spec) bool { return g.r.Contains(s.Version) }
func (g versionIn) String() string          { return "@" + g.r.String() }

type onDep struct {
	name string
	g    Guard
}

// OnDependency evaluates g against the resolved dependency called name. It
// does not hold when that dependency is absent.
func OnDependency(name string, g Guard) Guard { return onDep{name, g} }

func (g onDep) Holds(s *spec.Spec) bool {
	d, ok := s.Dep(g.name)
	return ok && g.g.Holds(d)
}

func (g onDep) String() string {
	inner := g.g.String()
	if inner != "" && !strings.HasPrefix(inner, "+") && !strings.HasPrefix(inner, "~") && !strings.HasPrefix(inner, "@") {
		inner = " " + inner
	}
	return "^" + g.name + inner
}

type all []Guard

// All holds when every guard holds. All() is Always.
func All(gs ...Guard) Guard {
	gs = compact(gs)
	switch len(gs) {
	case 0:
		return Always
	case 1:
		return gs[0]
	}
	return all(gs)
}

func (a all) Holds(s *spec.Spec) bool {
	for _, g := range a {
		if !g.Holds(s) {
			return false
		}
	}
	return true
}

func (a all) String() string { return join(a, "") }

func (a all) VariantNames() []string { return names(a) }

type anyOf []Guard

// Any holds when at least one guard holds. Any() never holds.
func Any(gs ...Guard) Guard {
	if len(gs) == 1 {
		return gs[0]
	}
	return anyOf(gs)
}

func (a anyOf) Holds(s *spec.Spec) bool {
	for _, g := range a {
		if g.Holds(s) {
			return true
		}
	}
	return false
}

func (a anyOf) String() string { return join(a, " | ") }

func (a anyOf) VariantNames() []string { return names(a) }

type not struct{ g Guard }

// Not inverts g. Note Not(VariantOn(x)) holds for an unset x, unlike
// VariantOff(x).
func Not(g Guard) Guard { return not{g} }

func (n not) Holds(s *spec.Spec) bool { return !n.g.Holds(s) }
func (n not) String() string          { return "!" + n.g.String() }
func (n not) VariantNames() []string  { return Referenced(n.g) }

func compact(gs []Guard) []Guard {
	out := gs[:0:0]
	for _, g := range gs {
		if !IsAlways(g) {
			out = append(out, g)
		}
	}
	return out
}

func join(gs []Guard, sep string) string {
	parts := make([]string, 0, len(gs))
	for i, g := range gs {
		p := g.String()
		// Separate terms that would otherwise run together ("gotype=int").
		if sep == "" && i > 0 && p != "" && !strings.ContainsAny(p[:1], "+~@^!") {
			p = " " + p
		} else if sep == "" && i > 0 && strings.HasPrefix(p, "^") {
			p = " " + p
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, sep)
}

func names(gs []Guard) []string {
	var out []string
	for _, g := range gs {
		out = append(out, Referenced(g)...)
	}
	return out
}
