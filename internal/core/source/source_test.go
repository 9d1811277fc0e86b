// Package source_test contains tests for the source package.
package source_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platoengine/recipe/internal/core/recipe"
	"github.com/platoengine/recipe/internal/core/source"
)

func loadPackage(t *testing.T, name string) *recipe.Package {
	t.Helper()
	repo, err := recipe.LoadRepo("../../../packages")
	require.NoError(t, err)
	p, err := repo.Get(name)
	require.NoError(t, err)
	return p
}

func version(t *testing.T, p *recipe.Package, id string) recipe.Version {
	t.Helper()
	v, ok := p.Version(id)
	require.True(t, ok, "%s has no version %s", p.Name, id)
	return v
}

func TestDescribe_ArchiveFromExtrapolatedURL(t *testing.T) {
	t.Parallel()
	p := loadPackage(t, "arborx")

	f, err := source.Describe(p, version(t, p, "v1.1"))
	require.NoError(t, err)
	assert.Equal(t, source.Archive, f.Kind)
	assert.Equal(t, "https://github.com/arborx/arborx/archive/v1.1.tar.gz", f.URL)
	assert.Equal(t, "sha256:2b5f2d2d5cec57c52f470c2bf4f42621b40271f870b4f80cb57e52df1acd90ce", f.Checksum)
	assert.Equal(t, "github:arborx/arborx@v1.1", f.Canonical)
	assert.Equal(t, f.Checksum, f.Integrity())

	f, err = source.Describe(p, version(t, p, "0.8-beta2"))
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/arborx/arborx/archive/v0.8-beta2.tar.gz", f.URL)
}

func TestDescribe_ArchiveFromTemplate(t *testing.T) {
	t.Parallel()
	p := loadPackage(t, "dakota")

	f, err := source.Describe(p, version(t, p, "6.12"))
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/snl-dakota/dakota/releases/download/v6.12.0/dakota-6.12.0-public-src-cli.tar.gz", f.URL)
	assert.Equal(t, "github:snl-dakota/dakota@6.12", f.Canonical)
}

func TestDescribe_ArchiveWithOwnURL(t *testing.T) {
	t.Parallel()
	p := loadPackage(t, "esp")

	f, err := source.Describe(p, version(t, p, "120Lin"))
	require.NoError(t, err)
	assert.Equal(t, "https://acdl.mit.edu/ESP/archive/ESP120Lin.tgz", f.URL)
	assert.Empty(t, f.Canonical, "not hosted on GitHub")
	assert.Equal(t, f.URL, f.String())
}

func TestDescribe_GitRefs(t *testing.T) {
	t.Parallel()

	pa := loadPackage(t, "platoanalyze")
	f, err := source.Describe(pa, version(t, pa, "develop"))
	require.NoError(t, err)
	assert.Equal(t, source.Git, f.Kind)
	assert.Equal(t, "https://github.com/platoengine/platoanalyze.git", f.URL)
	assert.Equal(t, "branch", f.RefKind)
	assert.Equal(t, "develop", f.Ref)
	assert.True(t, f.Submodules)
	assert.Equal(t, "branch:develop", f.Integrity())
	assert.Equal(t, "github:platoengine/platoanalyze@develop", f.Canonical)
	assert.Contains(t, f.String(), "with submodules")

	ax := loadPackage(t, "arborx")
	f, err = source.Describe(ax, version(t, ax, "header_only"))
	require.NoError(t, err)
	assert.Equal(t, "commit:3158660351d69456cc9310c7b325cff7859b90a8", f.Integrity())
}

func TestDescribe_ShorthandGitURL(t *testing.T) {
	t.Parallel()

	p, err := recipe.Parse([]byte(`
[package]
name = "demo"
git = "github:acme/demo"

[[version]]
name = "1.0"
tag = "v1.0"
`))
	require.NoError(t, err)

	f, err := source.Describe(p, p.Versions[0])
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/acme/demo.git", f.URL)
	assert.Equal(t, "tag:v1.0", f.Integrity())
	assert.Equal(t, "github:acme/demo@v1.0", f.Canonical)
}

func TestDescribe_MissingLocation(t *testing.T) {
	t.Parallel()

	p, err := recipe.Parse([]byte(`
[package]
name = "demo"

[[version]]
name = "1.0"
sha256 = "abc"

[[version]]
name = "main"
branch = "main"
`))
	require.NoError(t, err)

	_, err = source.Describe(p, p.Versions[0])
	assert.ErrorContains(t, err, "no url to download the archive from")

	_, err = source.Describe(p, p.Versions[1])
	assert.ErrorContains(t, err, "no git url")
}

func TestParseSourceURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		url         string
		owner, repo string
		errContains string
	}{
		{name: "shorthand", url: "github:owner/repo", owner: "owner", repo: "repo"},
		{name: "shorthand with ref", url: "github:owner/repo@main", owner: "owner", repo: "repo"},
		{name: "clone url", url: "https://github.com/owner/repo.git", owner: "owner", repo: "repo"},
		{name: "ssh url", url: "ssh://git@github.com/kkmaute/moris", owner: "kkmaute", repo: "moris"},
		{name: "archive", url: "https://github.com/owner/repo/archive/v1.0.tar.gz", owner: "owner", repo: "repo"},
		{name: "shorthand with path", url: "github:owner/repo/file.txt", errContains: "expected github:owner/repo"},
		{name: "owner only", url: "https://github.com/owner", errContains: "Expected at least /<owner>/<repo>"},
		{name: "other host", url: "https://gitlab.com/owner/repo", errContains: "unsupported source URL host: gitlab.com"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			loc, err := source.ParseSourceURL(tt.url)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.owner, loc.Owner)
			assert.Equal(t, tt.repo, loc.Repo)
			assert.Equal(t, "github", loc.Provider)
		})
	}
}
