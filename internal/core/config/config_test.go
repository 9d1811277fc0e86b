package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platoengine/recipe/internal/core/lockfile"
	"github.com/platoengine/recipe/internal/core/project"
	"github.com/platoengine/recipe/internal/core/spec"
	"github.com/platoengine/recipe/internal/core/store"
)

const minimalRecipe = `
[package]
name = "header"

[[version]]
name = "1.0"
sha256 = "0000"
url = "https://example.com/header-1.0.tar.gz"
`

func writeRecipe(t *testing.T, repoDir, name, content string) {
	t.Helper()
	dir := filepath.Join(repoDir, name)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.toml"), []byte(content), 0644))
}

func TestLoadProjectToml_Valid(t *testing.T) {
	tempDir := t.TempDir()
	validTomlContent := `
[repo]
path = "recipes"

[store]
root = "/opt/plato"

[compiler]
name = "gcc"
version = "12.2.0"
`
	projectFilePath := filepath.Join(tempDir, ProjectTomlName)
	err := os.WriteFile(projectFilePath, []byte(validTomlContent), 0644)
	require.NoError(t, err)

	proj, err := LoadProjectToml(tempDir)
	require.NoError(t, err)
	require.NotNil(t, proj)

	assert.Equal(t, "recipes", proj.Repo.Path)
	assert.Equal(t, "/opt/plato", proj.Store.Root)
	assert.Equal(t, "installs.toml", proj.Store.Path, "unset keys keep their defaults")
	assert.Equal(t, "recipe-lock.toml", proj.Lock.Path)
	assert.Equal(t, spec.Compiler{Name: "gcc", Version: "12.2.0"}, proj.Compiler)
}

func TestLoadProjectToml_NotFound(t *testing.T) {
	tempDir := t.TempDir()
	proj, err := LoadProjectToml(tempDir)
	require.NoError(t, err, "a missing recipe.toml means the default layout")
	assert.Equal(t, project.NewProject(), proj)
}

func TestLoadProjectToml_InvalidFormat(t *testing.T) {
	tempDir := t.TempDir()
	invalidTomlContent := `
[repo
path = "recipes"
`
	projectFilePath := filepath.Join(tempDir, ProjectTomlName)
	err := os.WriteFile(projectFilePath, []byte(invalidTomlContent), 0644)
	require.NoError(t, err)

	_, err = LoadProjectToml(tempDir)
	assert.ErrorContains(t, err, "failed to decode")
}

func TestWriteProjectToml_RoundTrip(t *testing.T) {
	tempDir := t.TempDir()
	projData := project.NewProject()
	projData.Compiler = spec.Compiler{Name: "clang", Version: "17"}
	projData.Store.Root = "/scratch/opt"

	err := WriteProjectToml(tempDir, projData)
	require.NoError(t, err)

	loaded, err := LoadProjectToml(tempDir)
	require.NoError(t, err)
	assert.Equal(t, projData, loaded)
}

func TestWriteProjectToml_Overwrite(t *testing.T) {
	tempDir := t.TempDir()
	projectFilePath := filepath.Join(tempDir, ProjectTomlName)
	require.NoError(t, os.WriteFile(projectFilePath, []byte("[repo]\npath = \"old\"\n"), 0644))

	require.NoError(t, WriteProjectToml(tempDir, project.NewProject()))

	loaded, err := LoadProjectToml(tempDir)
	require.NoError(t, err)
	assert.Equal(t, "packages", loaded.Repo.Path)
}

func TestOpenWorkspace(t *testing.T) {
	tempDir := t.TempDir()
	writeRecipe(t, filepath.Join(tempDir, "packages"), "header", minimalRecipe)
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, store.FileName),
		[]byte("[installs.cmake]\nversion = \"3.27.9\"\n"), 0644))

	ws, err := OpenWorkspace(tempDir, project.Project{})
	require.NoError(t, err)
	assert.Equal(t, []string{"header"}, ws.Repo.Names())
	assert.Equal(t, []string{"cmake"}, ws.Store.Names())
	assert.Equal(t, filepath.Join(tempDir, "opt"), ws.Store.Root)
	assert.Empty(t, ws.Lock.Packages)

	cmake, err := ws.Store.Spec("cmake")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tempDir, "opt", "cmake-3.27.9"), cmake.Prefix)

	ws.Lock.AddOrUpdatePackage("header", lockfile.PackageEntry{Version: "1.0", Digest: "sha256:x"})
	require.NoError(t, ws.SaveLock())
	require.NoError(t, ws.Store.Add("ninja", store.Install{Version: "1.11"}))
	require.NoError(t, ws.SaveStore())

	reopened, err := OpenWorkspace(tempDir, project.Project{})
	require.NoError(t, err)
	assert.Equal(t, []string{"header"}, reopened.Lock.Names())
	assert.Equal(t, []string{"cmake", "ninja"}, reopened.Store.Names())
}

func TestOpenWorkspace_Overrides(t *testing.T) {
	tempDir := t.TempDir()
	writeRecipe(t, filepath.Join(tempDir, "elsewhere"), "header", minimalRecipe)

	ws, err := OpenWorkspace(tempDir, project.Project{
		Repo:     project.RepoConfig{Path: "elsewhere"},
		Lock:     project.LockConfig{Path: "other-lock.toml"},
		Compiler: spec.Compiler{Name: "gcc", Version: "13"},
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tempDir, "elsewhere"), ws.Project.Repo.Path)
	assert.Equal(t, filepath.Join(tempDir, "other-lock.toml"), ws.Project.Lock.Path)
	assert.Equal(t, "gcc@13", ws.Project.Compiler.String())
}

func TestOpenWorkspace_MissingRepo(t *testing.T) {
	tempDir := t.TempDir()
	_, err := OpenWorkspace(tempDir, project.Project{})
	assert.ErrorContains(t, err, "failed to load recipe repository")
}

func TestOpenWorkspace_BadRecipe(t *testing.T) {
	tempDir := t.TempDir()
	writeRecipe(t, filepath.Join(tempDir, "packages"), "header", "[package]\nname = \"other\"\n")

	_, err := OpenWorkspace(tempDir, project.Project{})
	assert.ErrorContains(t, err, "does not match directory")
}
