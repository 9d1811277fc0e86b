// Package recipe holds package declarations: versions, variants, dependency
// and conflict rules, and the argument and environment templates a resolved
// configuration is rendered from.
package recipe

import (
	"fmt"
	"slices"
	"strings"

	"github.com/platoengine/recipe/internal/core/constraint"
	"github.com/platoengine/recipe/internal/core/envmod"
	"github.com/platoengine/recipe/internal/core/guard"
	"github.com/platoengine/recipe/internal/core/variant"
	"github.com/platoengine/recipe/internal/core/version"
)

// Package is a compiled recipe. Capability contributions are already merged
// in; rules keep declaration order with capability rules first.
type Package struct {
	Name           string
	Description    string
	Homepage       string
	URL            string
	URLTemplate    string
	Git            string
	Maintainers    []string
	Capabilities   []string
	BuildDirectory string

	Versions     []Version
	Variants     []variant.Declaration
	Dependencies []Dependency
	Conflicts    []Conflict
	Patches      []Patch
	Args         []ArgRule
	BuildEnv     []EnvRule
	RunEnv       []EnvRule
}

// Version is a declared version and where its content comes from.
type Version struct {
	ID         version.Version
	SHA256     string
	URL        string
	Branch     string
	Tag        string
	Commit     string
	Submodules bool
	Preferred  bool
}

// Dependency imposes Target on the named package whenever When holds.
type Dependency struct {
	Target constraint.Constraint
	When   guard.Guard
	Types  []string
}

func (d Dependency) String() string {
	if guard.IsAlways(d.When) {
		return d.Target.String()
	}
	return fmt.Sprintf("%s when %s", d.Target, d.When)
}

// Conflict fails resolution when both guards hold.
type Conflict struct {
	Spec guard.Guard
	When guard.Guard
	Msg  string
}

func (c Conflict) String() string {
	if guard.IsAlways(c.When) {
		return c.Spec.String()
	}
	return fmt.Sprintf("%s when %s", c.Spec, c.When)
}

// Patch is applied to the source tree when When holds.
type Patch struct {
	File   string
	SHA256 string
	When   guard.Guard
}

// ArgRule emits Values when When holds and Else otherwise. Both are
// templates.
type ArgRule struct {
	When   guard.Guard
	Values []string
	Else   []string
}

// EnvRule emits Mod, whose Value is a template, when When holds.
type EnvRule struct {
	When guard.Guard
	Mod  envmod.Modification
}

// Variant returns the declaration called name.
func (p *Package) Variant(name string) (variant.Declaration, bool) {
	for _, d := range p.Variants {
		if d.Name == name {
			return d, true
		}
	}
	return variant.Declaration{}, false
}

// Version returns the declared version with identifier id.
func (p *Package) Version(id string) (Version, bool) {
	for _, v := range p.Versions {
		if v.ID.String() == id {
			return v, true
		}
	}
	return Version{}, false
}

// DefaultVersion is the preferred version, or the first declared one.
func (p *Package) DefaultVersion() (Version, bool) {
	for _, v := range p.Versions {
		if v.Preferred {
			return v, true
		}
	}
	if len(p.Versions) == 0 {
		return Version{}, false
	}
	return p.Versions[0], true
}

// DependencyNames lists every package any dependency rule may require,
// regardless of guards, sorted and without duplicates.
func (p *Package) DependencyNames() []string {
	var names []string
	for _, d := range p.Dependencies {
		if !slices.Contains(names, d.Target.Name) {
			names = append(names, d.Target.Name)
		}
	}
	slices.Sort(names)
	return names
}

// HasCapability reports whether the recipe composes the named capability.
func (p *Package) HasCapability(name string) bool {
	for _, c := range p.Capabilities {
		if c == name {
			return true
		}
	}
	return false
}

// DefineArg renders a CMake cache definition the way recipes write them:
// -DNAME:TYPE=value.
func DefineArg(name, typ, value string) string {
	if typ == "" {
		typ = "STRING"
	}
	return fmt.Sprintf("-D%s:%s=%s", name, strings.ToUpper(typ), value)
}
