package recipe

// File is the on-disk shape of a package.toml recipe.
//
//	[package]
//	name = "arborx"
//	capabilities = ["cmake"]
//
//	[[version]]
//	name = "v1.1"
//	sha256 = "2b5f..."
//
//	[[variant]]
//	name = "mpi"
//	default = true
//
//	[[depends_on]]
//	spec = "mpi"
//	when = "+mpi"
//
//	[[arg]]
//	define = "ARBORX_ENABLE_MPI"
//	from_variant = "mpi"
type File struct {
	Package   Meta            `toml:"package"`
	Versions  []VersionEntry  `toml:"version"`
	Variants  []VariantEntry  `toml:"variant"`
	DependsOn []DependsEntry  `toml:"depends_on"`
	Conflicts []ConflictEntry `toml:"conflict"`
	Patches   []PatchEntry    `toml:"patch"`
	Args      []ArgEntry      `toml:"arg"`
	BuildEnv  []EnvEntry      `toml:"build_env"`
	RunEnv    []EnvEntry      `toml:"run_env"`
}

// Meta holds the [package] table.
type Meta struct {
	Name           string   `toml:"name"`
	Description    string   `toml:"description,omitempty"`
	Homepage       string   `toml:"homepage,omitempty"`
	URL            string   `toml:"url,omitempty"`
	URLTemplate    string   `toml:"url_template,omitempty"` // "{version}" is replaced
	Git            string   `toml:"git,omitempty"`
	Maintainers    []string `toml:"maintainers,omitempty"`
	Capabilities   []string `toml:"capabilities,omitempty"`
	BuildDirectory string   `toml:"build_directory,omitempty"`
}

// VersionEntry is one [[version]]. Exactly one of SHA256, Branch, Tag or
// Commit identifies the content.
type VersionEntry struct {
	Name       string `toml:"name"`
	SHA256     string `toml:"sha256,omitempty"`
	URL        string `toml:"url,omitempty"`
	Branch     string `toml:"branch,omitempty"`
	Tag        string `toml:"tag,omitempty"`
	Commit     string `toml:"commit,omitempty"`
	Submodules bool   `toml:"submodules,omitempty"`
	Preferred  bool   `toml:"preferred,omitempty"`
}

// VariantEntry is one [[variant]]. Default is a bool for switches, a string
// for enumerations, or absent for a variant that starts unset.
type VariantEntry struct {
	Name        string   `toml:"name"`
	Default     any      `toml:"default,omitempty"`
	Description string   `toml:"description,omitempty"`
	Values      []string `toml:"values,omitempty"`
}

type DependsEntry struct {
	Spec string   `toml:"spec"`
	When string   `toml:"when,omitempty"`
	Type []string `toml:"type,omitempty"`
}

type ConflictEntry struct {
	Spec string `toml:"spec"`
	When string `toml:"when,omitempty"`
	Msg  string `toml:"msg,omitempty"`
}

type PatchEntry struct {
	File   string `toml:"file"`
	When   string `toml:"when,omitempty"`
	SHA256 string `toml:"sha256,omitempty"`
}

// ArgEntry is one [[arg]] rule. Either Values/Else list raw arguments, or
// Define names a CMake cache entry set from Value or FromVariant.
type ArgEntry struct {
	When        string   `toml:"when,omitempty"`
	Values      []string `toml:"values,omitempty"`
	Else        []string `toml:"else,omitempty"`
	Define      string   `toml:"define,omitempty"`
	Value       string   `toml:"value,omitempty"`
	Type        string   `toml:"type,omitempty"`
	FromVariant string   `toml:"from_variant,omitempty"`
}

type EnvEntry struct {
	Op        string `toml:"op"`
	Name      string `toml:"name"`
	Value     string `toml:"value,omitempty"`
	Separator string `toml:"separator,omitempty"`
	When      string `toml:"when,omitempty"`
}
