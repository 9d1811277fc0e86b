package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/platoengine/recipe/internal/core/lockfile"
	"github.com/platoengine/recipe/internal/core/project"
	"github.com/platoengine/recipe/internal/core/recipe"
	"github.com/platoengine/recipe/internal/core/store"
)

const ProjectTomlName = "recipe.toml"

// LoadProjectToml reads the recipe.toml file from the given dirPath. A missing
// file yields the default layout; keys present in the file override it.
func LoadProjectToml(dirPath string) (*project.Project, error) {
	proj := project.NewProject()
	fullPath := filepath.Join(dirPath, ProjectTomlName)
	data, err := os.ReadFile(fullPath)
	if errors.Is(err, os.ErrNotExist) {
		return proj, nil
	}
	if err != nil {
		return nil, err
	}

	if err := toml.Unmarshal(data, proj); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", fullPath, err)
	}
	return proj, nil
}

// WriteProjectToml marshals the Project data and writes it to the specified dirPath.
// It will overwrite the file if it already exists.
func WriteProjectToml(dirPath string, data *project.Project) error {
	buf := new(bytes.Buffer)
	if err := toml.NewEncoder(buf).Encode(data); err != nil {
		return err
	}

	fullPath := filepath.Join(dirPath, ProjectTomlName)
	file, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	_, err = file.Write(buf.Bytes())
	return err
}

// Workspace is an opened recipe.toml together with the files it points at.
// Every path in Project is absolute or relative to the working directory.
type Workspace struct {
	Dir     string
	Project *project.Project
	Repo    *recipe.Repo
	Store   *store.Store
	Lock    *lockfile.Lockfile
}

// OpenWorkspace loads recipe.toml from dir, then the recipe repository, the
// install store and the lockfile it names. Repo, store and lock paths in
// overrides replace the configured ones when non-empty.
func OpenWorkspace(dir string, overrides project.Project) (*Workspace, error) {
	proj, err := LoadProjectToml(dir)
	if err != nil {
		return nil, err
	}
	if overrides.Repo.Path != "" {
		proj.Repo.Path = overrides.Repo.Path
	}
	if overrides.Store.Path != "" {
		proj.Store.Path = overrides.Store.Path
	}
	if overrides.Store.Root != "" {
		proj.Store.Root = overrides.Store.Root
	}
	if overrides.Lock.Path != "" {
		proj.Lock.Path = overrides.Lock.Path
	}
	if overrides.Compiler.Name != "" {
		proj.Compiler = overrides.Compiler
	}
	proj = proj.InDir(dir)

	repo, err := recipe.LoadRepo(proj.Repo.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe repository %s: %w", proj.Repo.Path, err)
	}
	st, err := store.Load(proj.Store.Path)
	if err != nil {
		return nil, err
	}
	st.Root = proj.Store.Root
	lf, err := lockfile.Load(proj.Lock.Path)
	if err != nil {
		return nil, err
	}
	return &Workspace{Dir: dir, Project: proj, Repo: repo, Store: st, Lock: lf}, nil
}

// SaveStore writes the install store back to its configured path.
func (w *Workspace) SaveStore() error {
	return store.Save(w.Project.Store.Path, w.Store)
}

// SaveLock writes the lockfile back to its configured path.
func (w *Workspace) SaveLock() error {
	return lockfile.Save(w.Project.Lock.Path, w.Lock)
}
