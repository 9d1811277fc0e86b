package variant_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platoengine/recipe/internal/core/variant"
)

func TestUnsetIsNeitherOnNorOff(t *testing.T) {
	t.Parallel()
	assert.False(t, variant.Unset.On())
	assert.False(t, variant.Unset.Off())
	assert.False(t, variant.Unset.Is("false"))
	assert.NotEqual(t, variant.BoolValue(false), variant.Unset)
}

func TestParseOverrides(t *testing.T) {
	t.Parallel()

	ovs, err := variant.ParseOverrides("+cuda~mpi", "-openmp", "build_type=Release", "+omega-h")
	require.NoError(t, err)
	require.Len(t, ovs, 5)

	assert.Equal(t, "+cuda", ovs[0].String())
	assert.Equal(t, "~mpi", ovs[1].String())
	assert.Equal(t, "openmp", ovs[2].Name)
	require.NotNil(t, ovs[2].Flag)
	assert.False(t, *ovs[2].Flag)
	assert.Equal(t, "build_type", ovs[3].Name)
	assert.Equal(t, "Release", ovs[3].Text)
	assert.Equal(t, "omega-h", ovs[4].Name, "hyphen inside a name is not a sigil")
}

func TestParseOverrides_Invalid(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"cuda", "+", "=x", "gotype=", "+a+"} {
		_, err := variant.ParseOverrides(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestOverrideResolve(t *testing.T) {
	t.Parallel()

	boolDecl := variant.Declaration{Name: "mpi", Kind: variant.Bool}
	enumDecl := variant.Declaration{Name: "build_type", Kind: variant.Enum, Values: []string{"Debug", "Release"}}

	v, err := variant.Enable("mpi").Resolve(boolDecl)
	require.NoError(t, err)
	assert.True(t, v.On())

	v, err = variant.Set("mpi", "off").Resolve(boolDecl)
	require.NoError(t, err)
	assert.True(t, v.Off())

	_, err = variant.Enable("build_type").Resolve(enumDecl)
	require.Error(t, err)

	_, err = variant.Set("build_type", "Fast").Resolve(enumDecl)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not one of")

	v, err = variant.Set("build_type", "Debug").Resolve(enumDecl)
	require.NoError(t, err)
	assert.True(t, v.Is("Debug"))
}

func TestAssignmentString(t *testing.T) {
	t.Parallel()

	a := variant.Assignment{
		"mpi":        variant.BoolValue(false),
		"cuda":       variant.BoolValue(true),
		"build_type": variant.EnumValue("Release"),
		"docs":       variant.Unset,
	}
	assert.Equal(t, "+cuda~mpi build_type=Release", a.String())

	c := a.Clone()
	c["mpi"] = variant.BoolValue(true)
	assert.True(t, a["mpi"].Off(), "clone must not alias")
}

func TestParseAssignment(t *testing.T) {
	t.Parallel()

	a, err := variant.ParseAssignment("+kokkos~epetra gotype=int cxxstd=17")
	require.NoError(t, err)
	assert.True(t, a.Get("kokkos").On())
	assert.True(t, a.Get("epetra").Off())
	assert.True(t, a.Get("gotype").Is("int"))
	assert.Equal(t, "+kokkos~epetra cxxstd=17 gotype=int", a.String())

	a, err = variant.ParseAssignment("")
	require.NoError(t, err)
	assert.Empty(t, a)

	_, err = variant.ParseAssignment("kokkos")
	assert.Error(t, err)
}
