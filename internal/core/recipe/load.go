package recipe

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the recipe file inside each package directory.
const FileName = "package.toml"

// Parse decodes and compiles a recipe. Unknown keys are rejected so a typo
// in a rule does not silently drop it.
func Parse(data []byte) (*Package, error) {
	var f File
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode recipe: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("recipe has unknown keys: %s", strings.Join(keys, ", "))
	}
	return Compile(f)
}

// Load reads the recipe at path.
func Load(path string) (*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Repo is a directory of recipes laid out as <dir>/<name>/package.toml.
type Repo struct {
	Dir      string
	packages map[string]*Package
}

// LoadRepo loads every recipe under dir. The directory name must match the
// declared package name.
func LoadRepo(dir string) (*Repo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	r := &Repo{Dir: dir, packages: map[string]*Package{}}
	var errs []error
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name(), FileName)
		p, err := Load(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if p.Name != e.Name() {
			errs = append(errs, fmt.Errorf("%s: package name %q does not match directory %q", path, p.Name, e.Name()))
			continue
		}
		r.packages[p.Name] = p
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return r, nil
}

// Get returns the recipe called name.
func (r *Repo) Get(name string) (*Package, error) {
	p, ok := r.packages[name]
	if !ok {
		return nil, fmt.Errorf("no recipe named %q in %s", name, r.Dir)
	}
	return p, nil
}

// Names lists the recipes in sorted order.
func (r *Repo) Names() []string {
	names := make([]string, 0, len(r.packages))
	for k := range r.packages {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}
