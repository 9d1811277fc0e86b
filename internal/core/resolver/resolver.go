// Package resolver turns a recipe, a set of variant overrides and the resolved
// dependency specs into a concrete build configuration: the final variant
// assignment, the ordered build-tool arguments and the environment operations
// for build and run time.
//
// Resolution is a pure function of its inputs. It reads nothing from the
// process environment or the filesystem, so callers may resolve independent
// packages concurrently.
package resolver

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/platoengine/recipe/internal/core/envmod"
	"github.com/platoengine/recipe/internal/core/hasher"
	"github.com/platoengine/recipe/internal/core/recipe"
	"github.com/platoengine/recipe/internal/core/source"
	"github.com/platoengine/recipe/internal/core/spec"
	"github.com/platoengine/recipe/internal/core/variant"
)

// Request is everything a resolution depends on besides the recipe.
type Request struct {
	// Overrides are applied in order on top of the declared defaults.
	Overrides []variant.Override
	// Version selects a declared version; empty picks the default one.
	Version string
	// Deps are the already-resolved dependencies, keyed by package name.
	Deps map[string]*spec.Spec
	// Prefix is where the package will be installed.
	Prefix string
	// StageDir is the unpacked source tree.
	StageDir string
	Compiler spec.Compiler
}

// Mismatch reports a resolved dependency that does not satisfy what a rule
// imposes on it. The resolver reports these and leaves the dependency alone.
type Mismatch struct {
	Dependency string
	Rule       string
	Problems   []string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s (%s): %s", m.Dependency, m.Rule, strings.Join(m.Problems, "; "))
}

// Result is a resolved configuration.
type Result struct {
	Spec       *spec.Spec
	Fetch      source.Fetch
	Args       []string
	WorkDir    string
	BuildEnv   envmod.Modifications
	RunEnv     envmod.Modifications
	Patches    []string
	Mismatches []Mismatch
}

// Resolve computes the configuration of pkg for req. Any error aborts the
// whole resolution; no partial Result is returned.
func Resolve(pkg *recipe.Package, req Request) (*Result, error) {
	if err := checkOverrideNames(pkg, req.Overrides); err != nil {
		return nil, err
	}
	ver, err := selectVersion(pkg, req.Version)
	if err != nil {
		return nil, err
	}
	assign, err := assignVariants(pkg, req.Overrides)
	if err != nil {
		return nil, err
	}

	self := spec.New(pkg.Name, ver.ID, assign, req.Deps)
	self.Prefix = req.Prefix
	self.Compiler = req.Compiler

	for _, c := range pkg.Conflicts {
		if c.Spec.Holds(self) && c.When.Holds(self) {
			return nil, &ConflictError{Package: pkg.Name, Spec: c.Spec.String(), When: c.When.String(), Msg: c.Msg}
		}
	}

	res := &Result{Spec: self, WorkDir: req.StageDir}
	if pkg.BuildDirectory != "" && req.StageDir != "" {
		res.WorkDir = filepath.Join(req.StageDir, pkg.BuildDirectory)
	}

	for _, d := range pkg.Dependencies {
		if !d.When.Holds(self) {
			continue
		}
		dep, ok := self.Dep(d.Target.Name)
		if !ok {
			return nil, &MissingDependencyError{Package: pkg.Name, Dependency: d.Target.Name, Rule: d.String()}
		}
		if problems := d.Target.Unmet(dep); len(problems) > 0 {
			res.Mismatches = append(res.Mismatches, Mismatch{Dependency: d.Target.Name, Rule: d.String(), Problems: problems})
		}
	}

	for _, rule := range pkg.Args {
		values := rule.Else
		if rule.When.Holds(self) {
			values = rule.Values
		}
		for _, tmpl := range values {
			arg, err := render(self, tmpl)
			if err != nil {
				return nil, err
			}
			res.Args = append(res.Args, arg)
		}
	}

	if res.BuildEnv, err = envOps(self, pkg.BuildEnv); err != nil {
		return nil, err
	}
	if res.RunEnv, err = envOps(self, pkg.RunEnv); err != nil {
		return nil, err
	}

	for _, p := range pkg.Patches {
		if p.When.Holds(self) {
			res.Patches = append(res.Patches, p.File)
		}
	}

	if res.Fetch, err = source.Describe(pkg, ver); err != nil {
		return nil, fmt.Errorf("failed to describe source: %w", err)
	}
	return res, nil
}

func selectVersion(pkg *recipe.Package, requested string) (recipe.Version, error) {
	if requested != "" {
		if v, ok := pkg.Version(requested); ok {
			return v, nil
		}
	} else if v, ok := pkg.DefaultVersion(); ok {
		return v, nil
	}
	known := make([]string, len(pkg.Versions))
	for i, v := range pkg.Versions {
		known[i] = v.ID.String()
	}
	return recipe.Version{}, &UnknownVersionError{Package: pkg.Name, Version: requested, Known: known}
}

// checkOverrideNames rejects overrides of undeclared variants. It runs before
// version selection and value checks.
func checkOverrideNames(pkg *recipe.Package, overrides []variant.Override) error {
	for _, o := range overrides {
		if _, ok := pkg.Variant(o.Name); !ok {
			return &UnknownVariantError{Package: pkg.Name, Override: o.String(), Variant: o.Name}
		}
	}
	return nil
}

func assignVariants(pkg *recipe.Package, overrides []variant.Override) (variant.Assignment, error) {
	assign := make(variant.Assignment, len(pkg.Variants))
	for _, d := range pkg.Variants {
		assign[d.Name] = d.Default
	}
	for _, o := range overrides {
		d, ok := pkg.Variant(o.Name)
		if !ok {
			return nil, &UnknownVariantError{Package: pkg.Name, Override: o.String(), Variant: o.Name}
		}
		v, err := o.Resolve(d)
		if err != nil {
			return nil, &VariantValueError{Package: pkg.Name, Override: o.String(), Err: err}
		}
		assign[d.Name] = v
	}
	return assign, nil
}

func envOps(self *spec.Spec, rules []recipe.EnvRule) (envmod.Modifications, error) {
	var out envmod.Modifications
	for _, r := range rules {
		if !r.When.Holds(self) {
			continue
		}
		m := r.Mod
		if m.Op != envmod.Unset {
			v, err := render(self, m.Value)
			if err != nil {
				return nil, err
			}
			m.Value = v
		}
		out = append(out, m)
	}
	return out, nil
}

// Digest fingerprints everything the result hands to a build: identical
// inputs always give the same digest.
func (r *Result) Digest() string {
	lines := []string{
		"spec " + r.Spec.String(),
		"compiler " + r.Spec.Compiler.String(),
		"fetch " + r.Fetch.Integrity(),
		"workdir " + r.WorkDir,
	}
	for _, name := range r.Spec.DepNames() {
		if d, ok := r.Spec.Dep(name); ok {
			lines = append(lines, "dep "+d.String()+" "+d.Prefix)
		}
	}
	for _, a := range r.Args {
		lines = append(lines, "arg "+a)
	}
	for _, p := range r.Patches {
		lines = append(lines, "patch "+p)
	}
	for _, m := range r.BuildEnv {
		lines = append(lines, "build_env "+m.String())
	}
	for _, m := range r.RunEnv {
		lines = append(lines, "run_env "+m.String())
	}
	return hasher.Lines(lines...)
}
