package recipe

import "slices"

// Capabilities are reusable fragments a recipe composes by name, in place of
// inheriting from several base classes. Each one is written in the same
// shape as a recipe file.
var capabilities = map[string]File{
	"cmake": {
		Package: Meta{BuildDirectory: "build"},
		Variants: []VariantEntry{{
			Name:        "build_type",
			Default:     "RelWithDebInfo",
			Description: "CMake build type",
			Values:      []string{"Debug", "Release", "RelWithDebInfo", "MinSizeRel"},
		}},
		DependsOn: []DependsEntry{{Spec: "cmake", Type: []string{"build"}}},
		Args: []ArgEntry{
			{Define: "CMAKE_INSTALL_PREFIX", Type: "PATH", Value: "${self.prefix}"},
			{Define: "CMAKE_BUILD_TYPE", FromVariant: "build_type"},
		},
	},
	"cuda": {
		Variants: []VariantEntry{
			{Name: "cuda", Default: false, Description: "Build with CUDA"},
			{
				Name:        "cuda_arch",
				Default:     "none",
				Description: "CUDA architecture",
				Values:      []string{"none", "60", "70", "75", "80", "86", "89", "90"},
			},
		},
		DependsOn: []DependsEntry{{Spec: "cuda", When: "+cuda"}},
		Conflicts: []ConflictEntry{{
			Spec: "cuda_arch=none",
			When: "+cuda",
			Msg:  "CUDA builds need cuda_arch=<compute capability>",
		}},
	},
}

// CapabilityNames lists the capabilities a recipe may compose.
func CapabilityNames() []string {
	return sortedKeys(capabilities)
}

func sortedKeys(m map[string]File) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}
