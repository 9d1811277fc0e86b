package recipe_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platoengine/recipe/internal/core/envmod"
	"github.com/platoengine/recipe/internal/core/recipe"
	"github.com/platoengine/recipe/internal/core/spec"
	"github.com/platoengine/recipe/internal/core/variant"
	"github.com/platoengine/recipe/internal/core/version"
)

const packagesDir = "../../../packages"

func TestLoadRepo_Bundled(t *testing.T) {
	t.Parallel()

	repo, err := recipe.LoadRepo(packagesDir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"arborx", "dakota", "esp", "moris", "platoanalyze", "platoengine", "py-optimism", "py-plato-optimism",
	}, repo.Names())

	_, err = repo.Get("nope")
	assert.ErrorContains(t, err, `no recipe named "nope"`)
}

func TestCompile_CapabilityVariantsMerged(t *testing.T) {
	t.Parallel()

	repo, err := recipe.LoadRepo(packagesDir)
	require.NoError(t, err)

	pe, err := repo.Get("platoengine")
	require.NoError(t, err)
	for _, name := range []string{"build_type", "cuda", "cuda_arch", "expy", "services"} {
		_, ok := pe.Variant(name)
		assert.True(t, ok, "variant %s", name)
	}
	assert.Equal(t, "build", pe.BuildDirectory)

	// Capability argument rules lead.
	require.NotEmpty(t, pe.Args)
	assert.Equal(t, []string{"-DCMAKE_INSTALL_PREFIX:PATH=${self.prefix}"}, pe.Args[0].Values)
	assert.Equal(t, []string{"-DCMAKE_BUILD_TYPE:STRING=${variant.build_type}"}, pe.Args[1].Values)
}

func TestCompile_RecipeVariantWinsOverCapability(t *testing.T) {
	t.Parallel()

	repo, err := recipe.LoadRepo(packagesDir)
	require.NoError(t, err)

	pa, err := repo.Get("platoanalyze")
	require.NoError(t, err)
	d, ok := pa.Variant("cuda")
	require.True(t, ok)
	assert.True(t, d.Default.On())
	assert.Equal(t, "Compile with Nvidia CUDA", d.Description)

	n := 0
	for _, v := range pa.Variants {
		if v.Name == "cuda" {
			n++
		}
	}
	assert.Equal(t, 1, n)
}

func TestDefaultVersion(t *testing.T) {
	t.Parallel()

	repo, err := recipe.LoadRepo(packagesDir)
	require.NoError(t, err)

	esp, err := repo.Get("esp")
	require.NoError(t, err)
	v, ok := esp.DefaultVersion()
	require.True(t, ok)
	assert.Equal(t, "123Lin", v.ID.String())

	arborx, err := repo.Get("arborx")
	require.NoError(t, err)
	v, ok = arborx.DefaultVersion()
	require.True(t, ok)
	assert.Equal(t, "master", v.ID.String())
	assert.Equal(t, "master", v.Branch)
}

func TestParse_MinimalRecipe(t *testing.T) {
	t.Parallel()

	p, err := recipe.Parse([]byte(`
[package]
name = "demo"

[[version]]
name = "1.0"
tag = "v1.0"

[[variant]]
name = "mpi"
default = true

[[variant]]
name = "precision"
default = "double"
values = ["single", "double"]

[[variant]]
name = "extra"

[[depends_on]]
spec = "mpi"
when = "+mpi"

[[arg]]
define = "DEMO_MPI"
from_variant = "mpi"

[[arg]]
define = "DEMO_PRECISION"
from_variant = "precision"

[[arg]]
define = "MPI_HOME"
type = "path"
value = "${mpi.prefix}"

[[run_env]]
op = "prepend"
name = "PATH"
value = "${self.bin}"
`))
	require.NoError(t, err)

	assert.Equal(t, "demo", p.Name)
	require.Len(t, p.Variants, 3)
	assert.Equal(t, variant.Enum, p.Variants[1].Kind)
	assert.False(t, p.Variants[2].Default.IsSet())

	require.Len(t, p.Dependencies, 1)
	assert.Equal(t, []string{"build", "link"}, p.Dependencies[0].Types)
	assert.Equal(t, "mpi when +mpi", p.Dependencies[0].String())

	require.Len(t, p.Args, 3)
	assert.Equal(t, []string{"-DDEMO_MPI:BOOL=${variant.mpi}"}, p.Args[0].Values)
	assert.Equal(t, []string{"-DDEMO_PRECISION:STRING=${variant.precision}"}, p.Args[1].Values)
	assert.Equal(t, []string{"-DMPI_HOME:PATH=${mpi.prefix}"}, p.Args[2].Values)

	require.Len(t, p.RunEnv, 1)
	assert.Equal(t, envmod.Prepend, p.RunEnv[0].Mod.Op)
}

func TestParse_ConflictGuards(t *testing.T) {
	t.Parallel()

	p, err := recipe.Parse([]byte(`
[package]
name = "demo"

[[variant]]
name = "a"
default = true

[[variant]]
name = "b"
default = false

[[conflict]]
spec = "+a"
when = "+b"
msg = "pick one"
`))
	require.NoError(t, err)
	require.Len(t, p.Conflicts, 1)
	c := p.Conflicts[0]
	assert.Equal(t, "+a when +b", c.String())

	s := spec.New("demo", version.Version{}, variant.Assignment{
		"a": variant.BoolValue(true),
		"b": variant.BoolValue(true),
	}, nil)
	assert.True(t, c.Spec.Holds(s) && c.When.Holds(s))
}

func TestParse_ValidationProblems(t *testing.T) {
	t.Parallel()

	_, err := recipe.Parse([]byte(`
[package]
name = "broken"
capabilities = ["autotools"]

[[version]]
name = "1.0"

[[version]]
name = "2.0"
sha256 = "abc"
branch = "main"

[[variant]]
name = "mpi"
default = true

[[variant]]
name = "mpi"
default = false

[[variant]]
name = "mode"
default = true
values = ["a", "b"]

[[depends_on]]
spec = "hdf5"
when = "+nosuch"
type = ["runtime"]

[[arg]]
values = ["-DX=${variant.missing}"]

[[arg]]
values = ["-DP=${self.prefix", "-DE=${}", "-DD=$${literal}"]

[[arg]]
when = "+mpi"

[[build_env]]
op = "replace"
name = "PATH"
value = "/x"
`))
	var verr *recipe.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, "broken", verr.Package)

	joined := verr.Error()
	for _, want := range []string{
		`unknown capability "autotools"`,
		`version "1.0" must give exactly one`,
		`version "2.0" must give exactly one`,
		`variant "mpi" declared twice`,
		`variant "mode" lists values but has a boolean default`,
		`unknown type "runtime"`,
		`unknown variant "nosuch"`,
		`template reads unknown variant "missing"`,
		`arg -DP=${self.prefix: unterminated ${ in template`,
		`arg -DE=${}: empty ${} in template`,
		"emits nothing",
		`unknown environment operation "replace"`,
	} {
		assert.Contains(t, joined, want)
	}
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	_, err := recipe.Parse([]byte(`
[package]
name = "demo"
homepgae = "typo"
`))
	assert.ErrorContains(t, err, "unknown keys: package.homepgae")
}

func TestParse_RequiresName(t *testing.T) {
	t.Parallel()

	_, err := recipe.Parse([]byte(`[package]`))
	var verr *recipe.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Problems, "package.name is required")
}

func TestLoadRepo_NameMustMatchDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "alpha"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alpha", recipe.FileName), []byte("[package]\nname = \"beta\"\n"), 0o644))
	// Directories without a recipe are skipped.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "notes"), 0o755))

	_, err := recipe.LoadRepo(dir)
	assert.ErrorContains(t, err, `package name "beta" does not match directory "alpha"`)
}

func TestDefineArg(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "-DFOO:STRING=bar", recipe.DefineArg("FOO", "", "bar"))
	assert.Equal(t, "-DFOO:PATH=/x", recipe.DefineArg("FOO", "path", "/x"))
}

func TestTemplateRefs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"mpi.mpicc", "variant.cuda"}, recipe.TemplateRefs("cc=${mpi.mpicc} $$HOME ${variant.cuda}"))
	assert.Empty(t, recipe.TemplateRefs("plain"))
}

func TestCapabilityNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"cmake", "cuda"}, recipe.CapabilityNames())
}

func TestDependencyNames(t *testing.T) {
	t.Parallel()

	repo, err := recipe.LoadRepo(packagesDir)
	require.NoError(t, err)

	esp, err := repo.Get("esp")
	require.NoError(t, err)
	assert.Equal(t, []string{"python"}, esp.DependencyNames(), "guarded rules on one target collapse")

	ax, err := repo.Get("arborx")
	require.NoError(t, err)
	assert.Equal(t, []string{"cmake", "cuda", "kokkos", "mpi"}, ax.DependencyNames())
}

func TestCheckTemplate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tmpl    string
		wantErr string
	}{
		{tmpl: "-DX=${self.prefix}/lib"},
		{tmpl: "cost=$$5"},
		{tmpl: "$${not.a.ref}"},
		{tmpl: "trailing $"},
		{tmpl: "-DX=${self.prefix", wantErr: "unterminated"},
		{tmpl: "${a}${", wantErr: "unterminated"},
		{tmpl: "-DY=${}", wantErr: "empty"},
	}
	for _, tt := range tests {
		err := recipe.CheckTemplate(tt.tmpl)
		if tt.wantErr == "" {
			assert.NoError(t, err, tt.tmpl)
			continue
		}
		assert.ErrorContains(t, err, tt.wantErr, tt.tmpl)
	}
}
