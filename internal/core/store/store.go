// Package store is the database of installed packages. Each entry becomes a
// resolved dependency spec that recipes can read attributes from.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/platoengine/recipe/internal/core/spec"
	"github.com/platoengine/recipe/internal/core/variant"
	"github.com/platoengine/recipe/internal/core/version"
)

const FileName = "installs.toml"

// Install is one installed package.
// Example:
// [installs.trilinos]
//
//	version = "15.0.0"
//	prefix = "/opt/trilinos-15.0.0"
//	variants = "+kokkos+mpi~cuda gotype=int"
//	attrs = { mpicc = "/usr/bin/mpicc" }
type Install struct {
	Version  string            `toml:"version"`
	Prefix   string            `toml:"prefix,omitempty"`
	Variants string            `toml:"variants,omitempty"`
	Attrs    map[string]string `toml:"attrs,omitempty"`
}

// Store represents the structure of the installs.toml file. Root is where
// installs without an explicit prefix live, as <root>/<name>-<version>.
type Store struct {
	Root     string             `toml:"-"`
	Installs map[string]Install `toml:"installs"`
}

// New creates an empty Store.
func New() *Store {
	return &Store{Installs: make(map[string]Install)}
}

// Load reads the store at path. A missing file is an empty store.
func Load(path string) (*Store, error) {
	s := New()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return s, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat install store %s: %w", path, err)
	}

	if _, err := toml.DecodeFile(path, s); err != nil {
		return nil, fmt.Errorf("failed to decode install store %s: %w", path, err)
	}
	if s.Installs == nil {
		s.Installs = make(map[string]Install)
	}
	for name, in := range s.Installs {
		if err := in.validate(); err != nil {
			return nil, fmt.Errorf("install store %s: %s: %w", path, name, err)
		}
	}
	return s, nil
}

// Save writes the store to path. The file is only touched once encoding
// has succeeded.
func Save(path string, s *Store) error {
	if err := writeTOML(path, s); err != nil {
		return fmt.Errorf("failed to save install store %s: %w", path, err)
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

func (in Install) validate() error {
	if in.Version == "" {
		return errors.New("missing version")
	}
	if _, err := version.Parse(in.Version); err != nil {
		return err
	}
	if _, err := variant.ParseAssignment(in.Variants); err != nil {
		return err
	}
	return nil
}

// Add records an install, replacing any previous one of the same name.
func (s *Store) Add(name string, in Install) error {
	if name == "" {
		return errors.New("install needs a package name")
	}
	if err := in.validate(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if s.Installs == nil {
		s.Installs = make(map[string]Install)
	}
	s.Installs[name] = in
	return nil
}

// Remove drops an install and reports whether it was present.
func (s *Store) Remove(name string) bool {
	if _, ok := s.Installs[name]; !ok {
		return false
	}
	delete(s.Installs, name)
	return true
}

// Names lists the installed packages in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.Installs))
	for k := range s.Installs {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Spec builds the resolved spec of an installed package.
func (s *Store) Spec(name string) (*spec.Spec, error) {
	in, ok := s.Installs[name]
	if !ok {
		return nil, fmt.Errorf("%s is not installed", name)
	}
	v, err := version.Parse(in.Version)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	assign, err := variant.ParseAssignment(in.Variants)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	prefix := in.Prefix
	if prefix == "" && s.Root != "" {
		prefix = filepath.Join(s.Root, name+"-"+in.Version)
	}
	sp := spec.New(name, v, assign, nil).WithPrefix(prefix)
	for k, val := range in.Attrs {
		sp.Attrs[k] = val
	}
	return sp, nil
}

// Specs builds the specs of the named installs. Names that are not installed
// are skipped.
func (s *Store) Specs(names ...string) (map[string]*spec.Spec, error) {
	out := make(map[string]*spec.Spec, len(names))
	for _, name := range names {
		if _, ok := s.Installs[name]; !ok {
			continue
		}
		sp, err := s.Spec(name)
		if err != nil {
			return nil, err
		}
		out[name] = sp
	}
	return out, nil
}
