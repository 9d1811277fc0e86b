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

// CompositionError reports two capabilities declaring the same variant
// differently while the recipe itself stays silent about it.
type CompositionError struct {
	Package      string
	Variant      string
	Capabilities [2]string
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("%s: variant %q is declared differently by capabilities %q and %q; declare it in the recipe to settle it",
		e.Package, e.Variant, e.Capabilities[0], e.Capabilities[1])
}

// ValidationError collects every problem found in one recipe.
type ValidationError struct {
	Package  string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("recipe %s is invalid:\n  - %s", e.Package, strings.Join(e.Problems, "\n  - "))
}

type compiler struct {
	pkg      *Package
	problems []string
}

func (c *compiler) fail(format string, args ...any) {
	c.problems = append(c.problems, fmt.Sprintf(format, args...))
}

func (c *compiler) guard(where, expr string) guard.Guard {
	g, err := constraint.ParseGuard(expr)
	if err != nil {
		c.fail("%s: %v", where, err)
		return guard.Always
	}
	return g
}

// Compile turns a decoded recipe file into a Package, merging its
// capabilities and validating the result.
func Compile(f File) (*Package, error) {
	return compile(f, capabilities)
}

func compile(f File, known map[string]File) (*Package, error) {
	name := strings.TrimSpace(f.Package.Name)
	if name == "" {
		return nil, &ValidationError{Package: "<unnamed>", Problems: []string{"package.name is required"}}
	}
	p := &Package{
		Name:           name,
		Description:    f.Package.Description,
		Homepage:       f.Package.Homepage,
		URL:            f.Package.URL,
		URLTemplate:    f.Package.URLTemplate,
		Git:            f.Package.Git,
		Maintainers:    f.Package.Maintainers,
		Capabilities:   f.Package.Capabilities,
		BuildDirectory: f.Package.BuildDirectory,
	}
	c := &compiler{pkg: p}

	var parts []File
	var partNames []string
	for _, capName := range f.Package.Capabilities {
		frag, ok := known[capName]
		if !ok {
			c.fail("unknown capability %q (known: %s)", capName, strings.Join(sortedKeys(known), ", "))
			continue
		}
		parts = append(parts, frag)
		partNames = append(partNames, capName)
		if p.BuildDirectory == "" {
			p.BuildDirectory = frag.Package.BuildDirectory
		}
	}

	if err := c.variants(f, parts, partNames); err != nil {
		return nil, err
	}
	c.versions(f.Versions)

	for _, part := range append(parts, f) {
		c.dependencies(part.DependsOn)
		c.conflicts(part.Conflicts)
		c.patches(part.Patches)
		c.args(part.Args)
		p.BuildEnv = append(p.BuildEnv, c.env("build_env", part.BuildEnv)...)
		p.RunEnv = append(p.RunEnv, c.env("run_env", part.RunEnv)...)
	}

	c.validate()
	if len(c.problems) > 0 {
		return nil, &ValidationError{Package: name, Problems: c.problems}
	}
	return p, nil
}

func (c *compiler) variants(f File, parts []File, partNames []string) error {
	own := map[string]bool{}
	for _, e := range f.Variants {
		own[e.Name] = true
	}
	from := map[string]string{}
	for i, part := range parts {
		capName := partNames[i]
		for _, e := range part.Variants {
			if own[e.Name] {
				continue
			}
			d, ok := c.variant(e)
			if !ok {
				continue
			}
			if prev, seen := from[e.Name]; seen {
				existing, _ := c.pkg.Variant(e.Name)
				if !existing.Equivalent(d) {
					return &CompositionError{Package: c.pkg.Name, Variant: e.Name, Capabilities: [2]string{prev, capName}}
				}
				continue
			}
			from[e.Name] = capName
			c.pkg.Variants = append(c.pkg.Variants, d)
		}
	}
	for _, e := range f.Variants {
		// Capability variants the recipe redeclares were skipped above, so a
		// hit here is a duplicate within the recipe itself.
		if _, dup := c.pkg.Variant(e.Name); dup {
			c.fail("variant %q declared twice", e.Name)
			continue
		}
		if d, ok := c.variant(e); ok {
			c.pkg.Variants = append(c.pkg.Variants, d)
		}
	}
	return nil
}

func (c *compiler) variant(e VariantEntry) (variant.Declaration, bool) {
	name := strings.TrimSpace(e.Name)
	if name == "" || strings.ContainsAny(name, "+~@^=! ") {
		c.fail("invalid variant name %q", e.Name)
		return variant.Declaration{}, false
	}
	d := variant.Declaration{Name: name, Description: e.Description, Values: e.Values}
	if len(e.Values) > 0 {
		d.Kind = variant.Enum
	}
	switch def := e.Default.(type) {
	case nil:
	case bool:
		if d.Kind == variant.Enum {
			c.fail("variant %q lists values but has a boolean default", name)
			return d, false
		}
		d.Default = variant.BoolValue(def)
	case string:
		d.Kind = variant.Enum
		d.Default = variant.EnumValue(def)
	case int64:
		d.Kind = variant.Enum
		d.Default = variant.EnumValue(fmt.Sprint(def))
	default:
		c.fail("variant %q: unsupported default %v (%T)", name, def, def)
		return d, false
	}
	if err := d.Validate(d.Default); err != nil {
		c.fail("default: %v", err)
		return d, false
	}
	return d, true
}

func (c *compiler) versions(entries []VersionEntry) {
	preferred := 0
	for _, e := range entries {
		id, err := version.Parse(e.Name)
		if err != nil {
			c.fail("version: %v", err)
			continue
		}
		if _, dup := c.pkg.Version(id.String()); dup {
			c.fail("version %q declared twice", id)
			continue
		}
		refs := 0
		for _, r := range []string{e.SHA256, e.Branch, e.Tag, e.Commit} {
			if r != "" {
				refs++
			}
		}
		if refs != 1 {
			c.fail("version %q must give exactly one of sha256, branch, tag or commit", id)
		}
		if e.Preferred {
			preferred++
		}
		c.pkg.Versions = append(c.pkg.Versions, Version{
			ID:         id,
			SHA256:     e.SHA256,
			URL:        e.URL,
			Branch:     e.Branch,
			Tag:        e.Tag,
			Commit:     e.Commit,
			Submodules: e.Submodules,
			Preferred:  e.Preferred,
		})
	}
	if preferred > 1 {
		c.fail("%d versions are marked preferred", preferred)
	}
}

func (c *compiler) dependencies(entries []DependsEntry) {
	for _, e := range entries {
		target, err := constraint.Parse(e.Spec)
		if err != nil {
			c.fail("depends_on: %v", err)
			continue
		}
		if target.Name == "" {
			c.fail("depends_on %q: missing package name", e.Spec)
			continue
		}
		for _, t := range e.Type {
			if !slices.Contains([]string{"build", "link", "run", "test"}, t) {
				c.fail("depends_on %q: unknown type %q", e.Spec, t)
			}
		}
		types := e.Type
		if len(types) == 0 {
			types = []string{"build", "link"}
		}
		c.pkg.Dependencies = append(c.pkg.Dependencies, Dependency{
			Target: target,
			When:   c.guard("depends_on "+e.Spec, e.When),
			Types:  types,
		})
	}
}

func (c *compiler) conflicts(entries []ConflictEntry) {
	for _, e := range entries {
		if strings.TrimSpace(e.Spec) == "" {
			c.fail("conflict: spec is required")
			continue
		}
		c.pkg.Conflicts = append(c.pkg.Conflicts, Conflict{
			Spec: c.guard("conflict "+e.Spec, e.Spec),
			When: c.guard("conflict "+e.Spec, e.When),
			Msg:  e.Msg,
		})
	}
}

func (c *compiler) patches(entries []PatchEntry) {
	for _, e := range entries {
		if e.File == "" {
			c.fail("patch: file is required")
			continue
		}
		c.pkg.Patches = append(c.pkg.Patches, Patch{
			File:   e.File,
			SHA256: e.SHA256,
			When:   c.guard("patch "+e.File, e.When),
		})
	}
}

func (c *compiler) args(entries []ArgEntry) {
	for i, e := range entries {
		where := fmt.Sprintf("arg #%d", i+1)
		rule := ArgRule{When: c.guard(where, e.When), Values: e.Values, Else: e.Else}

		if e.Define != "" {
			if len(e.Values) > 0 || len(e.Else) > 0 {
				c.fail("%s: define cannot be combined with values/else", where)
				continue
			}
			switch {
			case e.FromVariant != "" && e.Value != "":
				c.fail("%s: define takes value or from_variant, not both", where)
				continue
			case e.FromVariant != "":
				d, ok := c.pkg.Variant(e.FromVariant)
				if !ok {
					c.fail("%s: from_variant names unknown variant %q", where, e.FromVariant)
					continue
				}
				typ := "STRING"
				if d.Kind == variant.Bool {
					typ = "BOOL"
				}
				rule.Values = []string{DefineArg(e.Define, typ, "${variant."+d.Name+"}")}
			default:
				rule.Values = []string{DefineArg(e.Define, e.Type, e.Value)}
			}
		} else if e.FromVariant != "" || e.Value != "" || e.Type != "" {
			c.fail("%s: value, type and from_variant need define", where)
			continue
		}

		if len(rule.Values) == 0 && len(rule.Else) == 0 {
			c.fail("%s: emits nothing", where)
			continue
		}
		c.pkg.Args = append(c.pkg.Args, rule)
	}
}

func (c *compiler) env(table string, entries []EnvEntry) []EnvRule {
	var out []EnvRule
	for _, e := range entries {
		op, err := envmod.ParseOp(e.Op)
		if err != nil {
			c.fail("%s %s: %v", table, e.Name, err)
			continue
		}
		if strings.TrimSpace(e.Name) == "" {
			c.fail("%s: name is required", table)
			continue
		}
		if op != envmod.Unset && e.Value == "" {
			c.fail("%s %s: %s needs a value", table, e.Name, op)
			continue
		}
		out = append(out, EnvRule{
			When: c.guard(table+" "+e.Name, e.When),
			Mod:  envmod.Modification{Op: op, Name: e.Name, Value: e.Value, Separator: e.Separator},
		})
	}
	return out
}
