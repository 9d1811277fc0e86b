package list

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/platoengine/recipe/internal/core/config"
	"github.com/platoengine/recipe/internal/core/lockfile"
	"github.com/platoengine/recipe/internal/core/store"
)

// setupListTestEnvironment creates a temporary workspace pointing at the
// bundled recipes, with optional store and lockfile contents.
func setupListTestEnvironment(t *testing.T, installsContent, lockfileContent string) string {
	t.Helper()
	tempDir := t.TempDir()

	repo, err := filepath.Abs("../../../packages")
	require.NoError(t, err)
	projectToml := "[repo]\npath = " + `"` + filepath.ToSlash(repo) + `"` + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, config.ProjectTomlName), []byte(projectToml), 0644))

	if installsContent != "" {
		err := os.WriteFile(filepath.Join(tempDir, store.FileName), []byte(installsContent), 0644)
		require.NoError(t, err, "Failed to write installs.toml")
	}
	if lockfileContent != "" {
		err := os.WriteFile(filepath.Join(tempDir, lockfile.LockfileName), []byte(lockfileContent), 0644)
		require.NoError(t, err, "Failed to write recipe-lock.toml")
	}
	return tempDir
}

// runListCommand executes the list command against testDir and captures its output.
func runListCommand(t *testing.T, testDir string, extraArgs ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := &cli.App{
		Name:     "recipe",
		Writer:   &out,
		Commands: []*cli.Command{NewListCommand()},
		// Prevent os.Exit from being called by urfave/cli during tests
		ExitErrHandler: func(_ *cli.Context, _ error) {},
	}
	args := append([]string{"recipe", "list", "--dir", testDir}, extraArgs...)
	err := app.Run(args)
	return out.String(), err
}

func TestListCommand_Bundled(t *testing.T) {
	tempDir := setupListTestEnvironment(t, "", "")
	output, err := runListCommand(t, tempDir)
	require.NoError(t, err)

	assert.Contains(t, output, "recipes:")
	for _, name := range []string{"arborx", "dakota", "esp", "moris", "platoanalyze", "platoengine", "py-optimism", "py-plato-optimism"} {
		assert.Contains(t, output, name+"@")
	}
	assert.Contains(t, output, "esp@123Lin not locked")
	assert.Contains(t, output, "arborx@master not locked [cmake]")
	assert.Contains(t, output, "[cmake,cuda]")
	assert.NotContains(t, output, "installed")
}

func TestListCommand_LockedAndInstalled(t *testing.T) {
	installs := `
[installs.esp]
version = "122Lin"
prefix = "/opt/esp"
`
	lock := `
api_version = "1"
[packages.arborx]
version = "v1.1"
source = "https://github.com/arborx/arborx/archive/v1.1.tar.gz"
hash = "sha256:2b5f"
variants = "+mpi+serial~cuda~openmp build_type=RelWithDebInfo"
digest = "sha256:0123456789abcdef0123"
`
	tempDir := setupListTestEnvironment(t, installs, lock)
	output, err := runListCommand(t, tempDir)
	require.NoError(t, err)

	var arborxLine, espLine string
	for _, line := range strings.Split(output, "\n") {
		switch {
		case strings.HasPrefix(line, "arborx@"):
			arborxLine = line
		case strings.HasPrefix(line, "esp@"):
			espLine = line
		}
	}
	assert.Equal(t, "arborx@master locked v1.1 0123456789ab [cmake]", arborxLine)
	assert.Equal(t, "esp@123Lin not locked installed 122Lin", espLine)
}

func TestListCommand_EmptyRepository(t *testing.T) {
	tempDir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(tempDir, "packages"), 0755))

	output, err := runListCommand(t, tempDir)
	require.NoError(t, err)
	assert.Contains(t, output, "No recipes found in")
}

func TestListCommand_RepositoryNotFound(t *testing.T) {
	tempDir := t.TempDir()

	_, err := runListCommand(t, tempDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load recipe repository")
}

func TestListCommand_InvalidLockfile(t *testing.T) {
	tempDir := setupListTestEnvironment(t, "", `api_version = "0.5"`)

	_, err := runListCommand(t, tempDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `api_version "0.5"`)
}
