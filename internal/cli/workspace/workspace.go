// Package workspace holds what the recipe commands share: the flags that
// locate a workspace, target parsing, and the resolve call wired to the
// install store.
package workspace

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/platoengine/recipe/internal/core/config"
	"github.com/platoengine/recipe/internal/core/lockfile"
	"github.com/platoengine/recipe/internal/core/project"
	"github.com/platoengine/recipe/internal/core/recipe"
	"github.com/platoengine/recipe/internal/core/resolver"
	"github.com/platoengine/recipe/internal/core/spec"
	"github.com/platoengine/recipe/internal/core/variant"
)

// Flags locate the workspace. Every command that reads recipe.toml takes them.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "dir",
			Aliases: []string{"C"},
			Value:   ".",
			Usage:   "Workspace directory containing " + config.ProjectTomlName,
		},
		&cli.StringFlag{
			Name:  "repo",
			Usage: "Recipe repository directory (overrides [repo] path)",
		},
		&cli.StringFlag{
			Name:  "store",
			Usage: "Install store file (overrides [store] path)",
		},
		&cli.StringFlag{
			Name:  "lockfile",
			Usage: "Lockfile path (overrides [lock] path)",
		},
		&cli.StringFlag{
			Name:  "compiler",
			Usage: "Compiler as name@version (overrides [compiler])",
		},
	}
}

// Open loads the workspace named by the flags.
func Open(c *cli.Context) (*config.Workspace, error) {
	overrides := project.Project{
		Repo:  project.RepoConfig{Path: c.String("repo")},
		Store: project.StoreConfig{Path: c.String("store")},
		Lock:  project.LockConfig{Path: c.String("lockfile")},
	}
	if s := c.String("compiler"); s != "" {
		name, ver, _ := strings.Cut(s, "@")
		if name == "" {
			return nil, fmt.Errorf("invalid --compiler %q: expected name@version", s)
		}
		overrides.Compiler = spec.Compiler{Name: name, Version: ver}
	}
	return config.OpenWorkspace(c.String("dir"), overrides)
}

// Target is a package request as typed on the command line:
// name[@version] followed by variant overrides.
type Target struct {
	Name      string
	Version   string
	Overrides []variant.Override
}

// ParseTarget parses "platoanalyze@develop+cuda" plus any further override
// arguments ("cuda_arch=80", "~esp").
func ParseTarget(args ...string) (Target, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return Target{}, fmt.Errorf("missing package name")
	}
	head := strings.TrimSpace(args[0])
	end := strings.IndexAny(head, "@+~ ")
	if end < 0 {
		end = len(head)
	}
	t := Target{Name: head[:end]}
	rest := head[end:]
	if strings.HasPrefix(rest, "@") {
		rest = rest[1:]
		vend := strings.IndexAny(rest, "+~ ")
		if vend < 0 {
			vend = len(rest)
		}
		t.Version = rest[:vend]
		rest = rest[vend:]
		if t.Version == "" {
			return Target{}, fmt.Errorf("empty version in %q", head)
		}
	}
	if t.Name == "" {
		return Target{}, fmt.Errorf("missing package name in %q", head)
	}
	ovs, err := variant.ParseOverrides(append([]string{rest}, args[1:]...)...)
	if err != nil {
		return Target{}, err
	}
	t.Overrides = ovs
	return t, nil
}

// OverrideStrings renders overrides back the way they were typed.
func OverrideStrings(ovs []variant.Override) []string {
	if len(ovs) == 0 {
		return nil
	}
	out := make([]string, len(ovs))
	for i, o := range ovs {
		out[i] = o.String()
	}
	return out
}

// Locations are install and stage directories chosen for one resolution.
// Empty fields take the workspace defaults.
type Locations struct {
	Prefix   string
	StageDir string
}

// Resolve resolves t in ws. Dependencies come from the install store.
func Resolve(ws *config.Workspace, t Target, loc Locations) (*recipe.Package, *resolver.Result, error) {
	pkg, err := ws.Repo.Get(t.Name)
	if err != nil {
		return nil, nil, err
	}
	deps, err := ws.Store.Specs(pkg.DependencyNames()...)
	if err != nil {
		return nil, nil, err
	}

	ver := t.Version
	if ver == "" {
		if v, ok := pkg.DefaultVersion(); ok {
			ver = v.ID.String()
		}
	}
	if loc.Prefix == "" && ws.Store.Root != "" {
		loc.Prefix = filepath.Join(ws.Store.Root, pkg.Name+"-"+ver)
	}
	if loc.StageDir == "" {
		loc.StageDir = filepath.Join(ws.Dir, "stage", pkg.Name+"-"+ver)
	}

	res, err := resolver.Resolve(pkg, resolver.Request{
		Overrides: t.Overrides,
		Version:   t.Version,
		Deps:      deps,
		Prefix:    loc.Prefix,
		StageDir:  loc.StageDir,
		Compiler:  ws.Project.Compiler,
	})
	if err != nil {
		return nil, nil, err
	}
	return pkg, res, nil
}

// LockEntry is what the lockfile records for a resolution of t.
func LockEntry(t Target, res *resolver.Result) lockfile.PackageEntry {
	return lockfile.PackageEntry{
		Version:   res.Spec.Version.String(),
		Source:    res.Fetch.URL,
		Hash:      res.Fetch.Integrity(),
		Variants:  res.Spec.Variants.String(),
		Overrides: OverrideStrings(t.Overrides),
		Prefix:    res.Spec.Prefix,
		Digest:    res.Digest(),
	}
}

// TargetFromLock rebuilds the request recorded in a lock entry.
func TargetFromLock(name string, e lockfile.PackageEntry) (Target, error) {
	ovs, err := variant.ParseOverrides(e.Overrides...)
	if err != nil {
		return Target{}, fmt.Errorf("lockfile entry %s: %w", name, err)
	}
	return Target{Name: name, Version: e.Version, Overrides: ovs}, nil
}
