// Package lockfile records resolved configurations so they can be reproduced
// and checked for drift.
package lockfile

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"github.com/BurntSushi/toml"
)

const LockfileName = "recipe-lock.toml"
const APIVersion = "1"

// PackageEntry represents a single package entry in the lockfile.
// Example:
// [packages."platoanalyze"]
//
//	version = "develop"
//	source = "https://github.com/platoengine/platoanalyze.git"
//	hash = "branch:develop"
//	variants = "+amgx+cuda~esp build_type=RelWithDebInfo cuda_arch=80"
//	overrides = ["cuda_arch=80"]
//	digest = "sha256:<digest of the resolved configuration>"
type PackageEntry struct {
	Version   string   `toml:"version"`
	Source    string   `toml:"source"`
	Hash      string   `toml:"hash"`
	Variants  string   `toml:"variants"`
	Overrides []string `toml:"overrides,omitempty"`
	Prefix    string   `toml:"prefix,omitempty"`
	Digest    string   `toml:"digest"`
}

// Lockfile represents the structure of the recipe-lock.toml file.
type Lockfile struct {
	ApiVersion string                  `toml:"api_version"`
	Packages   map[string]PackageEntry `toml:"packages"`
}

// New creates a new Lockfile instance with default values.
func New() *Lockfile {
	return &Lockfile{
		ApiVersion: APIVersion,
		Packages:   make(map[string]PackageEntry),
	}
}

// Load loads the lockfile at path.
// If the lockfile doesn't exist, it returns a new Lockfile instance.
func Load(path string) (*Lockfile, error) {
	lf := New()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return lf, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat lockfile %s: %w", path, err)
	}

	if _, err := toml.DecodeFile(path, lf); err != nil {
		return nil, fmt.Errorf("failed to decode lockfile %s: %w", path, err)
	}
	if lf.ApiVersion == "" {
		lf.ApiVersion = APIVersion
	}
	if lf.ApiVersion != APIVersion {
		return nil, fmt.Errorf("lockfile %s has api_version %q, want %q", path, lf.ApiVersion, APIVersion)
	}
	if lf.Packages == nil {
		lf.Packages = make(map[string]PackageEntry)
	}
	return lf, nil
}

// Save writes the lockfile to path. The file is only touched once encoding
// has succeeded.
func Save(path string, lf *Lockfile) error {
	if err := writeTOML(path, lf); err != nil {
		return fmt.Errorf("failed to save lockfile %s: %w", path, err)
	}
	return nil
}

func writeTOML(path string, v any) error {
	buf := new(bytes.Buffer)
	if err := toml.NewEncoder(buf).Encode(v); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// AddOrUpdatePackage adds or updates a package entry in the lockfile and
// reports whether the recorded digest changed.
func (lf *Lockfile) AddOrUpdatePackage(name string, entry PackageEntry) bool {
	if lf.Packages == nil {
		lf.Packages = make(map[string]PackageEntry)
	}
	old, ok := lf.Packages[name]
	lf.Packages[name] = entry
	return !ok || old.Digest != entry.Digest
}

// RemovePackage drops a package entry and reports whether it was present.
func (lf *Lockfile) RemovePackage(name string) bool {
	if _, ok := lf.Packages[name]; !ok {
		return false
	}
	delete(lf.Packages, name)
	return true
}

// Names lists the locked packages in sorted order.
func (lf *Lockfile) Names() []string {
	names := make([]string, 0, len(lf.Packages))
	for k := range lf.Packages {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}
