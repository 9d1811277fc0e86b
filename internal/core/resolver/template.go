package resolver

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/platoengine/recipe/internal/core/recipe"
	"github.com/platoengine/recipe/internal/core/spec"
)

// render expands the ${...} references of a template against the package
// being resolved:
//
//	${self.attr}, ${<own name>.attr}   install-location attribute of the package
//	${<dep>.attr}                      attribute of a resolved dependency
//	${variant.X}                       variant value, booleans as ON/OFF
//	${compiler.name}, ${compiler.version}
//	${version}, ${name}
//	$$                                 a literal dollar
//
// An omitted attr means prefix.
func render(self *spec.Spec, tmpl string) (string, error) {
	if err := recipe.CheckTemplate(tmpl); err != nil {
		return "", &TemplateSubstitutionError{Package: self.Name, Template: tmpl, Err: err}
	}
	var failed *TemplateSubstitutionError
	out := os.Expand(tmpl, func(ref string) string {
		if failed != nil {
			return ""
		}
		v, err := lookup(self, ref)
		if err != nil {
			failed = &TemplateSubstitutionError{Package: self.Name, Template: tmpl, Ref: ref, Err: err}
			return ""
		}
		return v
	})
	if failed != nil {
		return "", failed
	}
	return out, nil
}

func lookup(self *spec.Spec, ref string) (string, error) {
	switch ref {
	case "$":
		return "$", nil
	case "name":
		return self.Name, nil
	case "version":
		return self.Version.String(), nil
	}

	head, rest, _ := strings.Cut(ref, ".")
	switch head {
	case "variant":
		v, ok := self.Variants[rest]
		if !ok {
			return "", fmt.Errorf("no variant %q", rest)
		}
		if !v.IsSet() {
			return "", fmt.Errorf("variant %q is unset", rest)
		}
		return v.CMake(), nil
	case "compiler":
		var v string
		switch rest {
		case "name":
			v = self.Compiler.Name
		case "version":
			v = self.Compiler.Version
		default:
			return "", fmt.Errorf("unknown compiler attribute %q", rest)
		}
		if v == "" {
			return "", errors.New("no compiler given")
		}
		return v, nil
	case "self", self.Name:
		return self.Attr(rest)
	}

	dep, ok := self.Dep(head)
	if !ok {
		return "", fmt.Errorf("no resolved dependency %q", head)
	}
	return dep.Attr(rest)
}
