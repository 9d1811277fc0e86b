// Package spec holds the resolved identity and configuration of one package
// instance in a build graph.
package spec

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/platoengine/recipe/internal/core/variant"
	"github.com/platoengine/recipe/internal/core/version"
)

// Compiler identifies the toolchain a spec is built with.
type Compiler struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

func (c Compiler) String() string {
	if c.Version == "" {
		return c.Name
	}
	return c.Name + "@" + c.Version
}

// Spec is a PackageSpec. Treat it as read-only once built; New copies its
// inputs so callers cannot mutate it through their own maps.
type Spec struct {
	Name     string
	Version  version.Version
	Variants variant.Assignment
	Deps     map[string]*Spec
	Prefix   string
	Attrs    map[string]string
	Compiler Compiler
}

// New builds a Spec from copies of the given maps.
func New(name string, v version.Version, variants variant.Assignment, deps map[string]*Spec) *Spec {
	s := &Spec{
		Name:     name,
		Version:  v,
		Variants: variants.Clone(),
		Deps:     make(map[string]*Spec, len(deps)),
		Attrs:    map[string]string{},
	}
	for k, d := range deps {
		s.Deps[k] = d
	}
	return s
}

// WithPrefix returns a copy of s installed at prefix.
func (s *Spec) WithPrefix(prefix string) *Spec {
	c := *s
	c.Prefix = prefix
	c.Attrs = maps.Clone(s.Attrs)
	if c.Attrs == nil {
		c.Attrs = map[string]string{}
	}
	return &c
}

// Dep returns the resolved dependency called name.
func (s *Spec) Dep(name string) (*Spec, bool) {
	if s == nil {
		return nil, false
	}
	d, ok := s.Deps[name]
	return d, ok && d != nil
}

// DepNames returns the dependency names in sorted order.
func (s *Spec) DepNames() []string {
	names := make([]string, 0, len(s.Deps))
	for k := range s.Deps {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// derived holds attributes computed from the install prefix when not given
// explicitly.
var derived = []string{"lib", "lib64", "include", "bin", "etc", "share"}

// Attr looks up an install-location attribute. "prefix" and the standard
// subdirectories are derived from Prefix; anything else must be in Attrs.
// A dotted path ("bin.nvcc_wrapper") joins the remainder onto the base attr.
func (s *Spec) Attr(path string) (string, error) {
	head, rest, _ := strings.Cut(path, ".")
	base, err := s.attr(head)
	if err != nil {
		return "", err
	}
	if rest == "" {
		return base, nil
	}
	return filepath.Join(append([]string{base}, strings.Split(rest, ".")...)...), nil
}

func (s *Spec) attr(name string) (string, error) {
	if v, ok := s.Attrs[name]; ok {
		return v, nil
	}
	if name == "" || name == "prefix" {
		if s.Prefix == "" {
			return "", fmt.Errorf("%s has no install prefix", s.Name)
		}
		return s.Prefix, nil
	}
	if slices.Contains(derived, name) {
		if s.Prefix == "" {
			return "", fmt.Errorf("%s has no install prefix", s.Name)
		}
		return filepath.Join(s.Prefix, name), nil
	}
	return "", fmt.Errorf("%s has no attribute %q", s.Name, name)
}

// String renders the spec in the familiar "name@version+a~b k=v" form.
func (s *Spec) String() string {
	var b strings.Builder
	b.WriteString(s.Name)
	if !s.Version.IsZero() {
		b.WriteString("@" + s.Version.String())
	}
	if vs := s.Variants.String(); vs != "" {
		if !strings.HasPrefix(vs, "+") && !strings.HasPrefix(vs, "~") {
			b.WriteString(" ")
		}
		b.WriteString(vs)
	}
	return b.String()
}
