// Package constraint parses spec strings as written in recipes and on the
// command line:
//
//	trilinos@15.0.0+kokkos~epetra gotype=int cxxstd=17
//	+cuda+mpmd
//	@6.12: ^platoengine+services
//
// A parsed Constraint is either checked against a resolved spec or turned
// into a guard.
package constraint

import (
	"fmt"
	"strings"

	"github.com/platoengine/recipe/internal/core/guard"
	"github.com/platoengine/recipe/internal/core/spec"
	"github.com/platoengine/recipe/internal/core/variant"
	"github.com/platoengine/recipe/internal/core/version"
)

// Constraint is a package name with an optional version range, variant
// requirements and constraints on its own dependencies.
type Constraint struct {
	Name     string
	Version  version.Range
	Variants []variant.Override
	Deps     []Constraint

	text string
}

func (c Constraint) String() string {
	if c.text != "" {
		return c.text
	}
	var b strings.Builder
	b.WriteString(c.Name)
	if !c.Version.IsAny() {
		b.WriteString("@" + c.Version.String())
	}
	var pairs []string
	for _, o := range c.Variants {
		if o.Flag != nil {
			b.WriteString(o.String())
		} else {
			pairs = append(pairs, o.String())
		}
	}
	for _, p := range pairs {
		b.WriteString(" " + p)
	}
	for _, d := range c.Deps {
		b.WriteString(" ^" + d.String())
	}
	return strings.TrimSpace(b.String())
}

// Parse reads a single constraint. Alternatives ("|") and negation ("!") are
// guard syntax and rejected here.
func Parse(s string) (Constraint, error) {
	toks, err := tokenize(s)
	if err != nil {
		return Constraint{}, err
	}
	c := Constraint{text: strings.TrimSpace(s)}
	cur := &c
	for i, tok := range toks {
		if tok == "|" || strings.HasPrefix(tok, "!") {
			return Constraint{}, fmt.Errorf("constraint %q: %q is only valid in a when= guard", s, tok)
		}
		if strings.HasPrefix(tok, "^") {
			p, err := parseToken(tok[1:])
			if err != nil {
				return Constraint{}, fmt.Errorf("constraint %q: %w", s, err)
			}
			if p.name == "" {
				return Constraint{}, fmt.Errorf("constraint %q: ^ must name a dependency", s)
			}
			c.Deps = append(c.Deps, Constraint{Name: p.name})
			cur = &c.Deps[len(c.Deps)-1]
			if err := cur.apply(p); err != nil {
				return Constraint{}, fmt.Errorf("constraint %q: %w", s, err)
			}
			continue
		}
		p, err := parseToken(tok)
		if err != nil {
			return Constraint{}, fmt.Errorf("constraint %q: %w", s, err)
		}
		if p.name != "" {
			if i != 0 {
				return Constraint{}, fmt.Errorf("constraint %q: unexpected package name %q", s, p.name)
			}
			c.Name = p.name
		}
		if err := cur.apply(p); err != nil {
			return Constraint{}, fmt.Errorf("constraint %q: %w", s, err)
		}
	}
	return c, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Constraint {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Constraint) apply(p parsed) error {
	for _, t := range p.terms {
		switch t.kind {
		case termVersion:
			if !c.Version.IsAny() {
				return fmt.Errorf("version given twice for %q", c.Name)
			}
			c.Version = t.rng
		case termOn:
			c.Variants = append(c.Variants, variant.Enable(t.name))
		case termOff:
			c.Variants = append(c.Variants, variant.Disable(t.name))
		case termEq:
			c.Variants = append(c.Variants, variant.Set(t.name, t.value))
		}
	}
	return nil
}

// Unmet lists the parts of c that s does not satisfy; an empty result means
// s satisfies c. The name is not compared.
func (c Constraint) Unmet(s *spec.Spec) []string {
	var out []string
	if !c.Version.Contains(s.Version) {
		out = append(out, fmt.Sprintf("version %s not in @%s", s.Version, c.Version))
	}
	for _, o := range c.Variants {
		v := s.Variants.Get(o.Name)
		switch {
		case o.Flag != nil && *o.Flag && !v.On():
			out = append(out, fmt.Sprintf("wants %s, has %s", o, describe(o.Name, v)))
		case o.Flag != nil && !*o.Flag && !v.Off():
			out = append(out, fmt.Sprintf("wants %s, has %s", o, describe(o.Name, v)))
		case o.Flag == nil && !v.Is(o.Text):
			out = append(out, fmt.Sprintf("wants %s, has %s", o, describe(o.Name, v)))
		}
	}
	for _, d := range c.Deps {
		dep, ok := s.Dep(d.Name)
		if !ok {
			out = append(out, fmt.Sprintf("wants dependency ^%s", d.Name))
			continue
		}
		for _, u := range d.Unmet(dep) {
			out = append(out, "^"+d.Name+": "+u)
		}
	}
	return out
}

// Guard turns c into a guard over the owning spec. The name, if any, is
// ignored; dependency constraints become OnDependency guards.
func (c Constraint) Guard() guard.Guard {
	var gs []guard.Guard
	if !c.Version.IsAny() {
		gs = append(gs, guard.VersionIn(c.Version))
	}
	for _, o := range c.Variants {
		gs = append(gs, overrideGuard(o))
	}
	for _, d := range c.Deps {
		gs = append(gs, guard.OnDependency(d.Name, d.Guard()))
	}
	return guard.All(gs...)
}

func overrideGuard(o variant.Override) guard.Guard {
	switch {
	case o.Flag != nil && *o.Flag:
		return guard.VariantOn(o.Name)
	case o.Flag != nil:
		return guard.VariantOff(o.Name)
	default:
		return guard.VariantEquals(o.Name, o.Text)
	}
}

func describe(name string, v variant.Value) string {
	switch {
	case !v.IsSet():
		return name + " unset"
	case v.On():
		return "+" + name
	case v.Off():
		return "~" + name
	default:
		return name + "=" + v.String()
	}
}
