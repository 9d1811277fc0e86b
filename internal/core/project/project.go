// Package project describes a recipe workspace as configured by recipe.toml.
package project

import (
	"path/filepath"

	"github.com/platoengine/recipe/internal/core/spec"
)

// Project represents the overall structure of the recipe.toml file.
type Project struct {
	Repo     RepoConfig    `toml:"repo"`
	Store    StoreConfig   `toml:"store"`
	Compiler spec.Compiler `toml:"compiler"`
	Lock     LockConfig    `toml:"lock"`
}

// RepoConfig locates the recipe repository.
type RepoConfig struct {
	Path string `toml:"path"`
}

// StoreConfig locates the database of installed packages. Root is where
// packages without an explicit prefix are installed, as <root>/<name>-<version>.
type StoreConfig struct {
	Path string `toml:"path"`
	Root string `toml:"root"`
}

// LockConfig locates the lockfile.
type LockConfig struct {
	Path string `toml:"path"`
}

// NewProject returns a Project filled with the default layout.
func NewProject() *Project {
	return &Project{
		Repo:  RepoConfig{Path: "packages"},
		Store: StoreConfig{Path: "installs.toml", Root: "opt"},
		Lock:  LockConfig{Path: "recipe-lock.toml"},
	}
}

// InDir returns a copy of p with every relative path anchored at dir.
func (p *Project) InDir(dir string) *Project {
	c := *p
	anchor := func(path string) string {
		if path == "" || filepath.IsAbs(path) {
			return path
		}
		return filepath.Join(dir, path)
	}
	c.Repo.Path = anchor(c.Repo.Path)
	c.Store.Path = anchor(c.Store.Path)
	c.Store.Root = anchor(c.Store.Root)
	c.Lock.Path = anchor(c.Lock.Path)
	return &c
}
