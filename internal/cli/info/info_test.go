package info

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func runInfoCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	repo, err := filepath.Abs("../../../packages")
	require.NoError(t, err)

	var out bytes.Buffer
	app := &cli.App{
		Name:           "recipe",
		Writer:         &out,
		Commands:       []*cli.Command{NewInfoCommand()},
		ExitErrHandler: func(_ *cli.Context, _ error) {},
	}
	fullArgs := append([]string{"recipe", "info", "--dir", t.TempDir(), "--repo", repo}, args...)
	err = app.Run(fullArgs)
	return out.String(), err
}

func TestInfoCommand_ArborX(t *testing.T) {
	t.Parallel()
	output, err := runInfoCommand(t, "arborx")
	require.NoError(t, err)

	assert.Contains(t, output, "ArborX is a performance-portable library for geometric search")
	assert.Contains(t, output, "capabilities: cmake")
	assert.Contains(t, output, "https://github.com/arborx/arborx.git (branch master) (default)")
	assert.Contains(t, output, "https://github.com/arborx/arborx/archive/v1.1.tar.gz")
	assert.Contains(t, output, "(commit 3158660351d69456cc9310c7b325cff7859b90a8)")
	assert.Contains(t, output, "build_type")
	assert.Contains(t, output, "[Debug, Release, RelWithDebInfo, MinSizeRel]")
	assert.Contains(t, output, "kokkos when +cuda | +serial | +openmp")
	assert.Contains(t, output, "v1.1-header_only.patch when @v1.1")
}

func TestInfoCommand_Conflicts(t *testing.T) {
	t.Parallel()
	output, err := runInfoCommand(t, "platoanalyze")
	require.NoError(t, err)

	assert.Contains(t, output, "conflicts:")
	assert.Contains(t, output, "CUDA builds need cuda_arch=<compute capability>")
	assert.Contains(t, output, "with submodules (default)")
}

func TestInfoCommand_Errors(t *testing.T) {
	t.Parallel()

	_, err := runInfoCommand(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires exactly one package name")

	_, err = runInfoCommand(t, "trilinos")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no recipe named "trilinos"`)
}
