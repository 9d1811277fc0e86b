package recipe

import (
	"errors"
	"os"
	"strings"

	"github.com/platoengine/recipe/internal/core/guard"
)

// validate checks that every variant a rule tests or a template reads is
// declared.
func (c *compiler) validate() {
	p := c.pkg
	check := func(where string, g guard.Guard) {
		for _, name := range guard.Referenced(g) {
			if _, ok := p.Variant(name); !ok {
				c.fail("%s: unknown variant %q", where, name)
			}
		}
	}
	checkTemplate := func(where, tmpl string) {
		if err := CheckTemplate(tmpl); err != nil {
			c.fail("%s: %v", where, err)
			return
		}
		for _, ref := range TemplateRefs(tmpl) {
			if name, ok := strings.CutPrefix(ref, "variant."); ok {
				if _, ok := p.Variant(name); !ok {
					c.fail("%s: template reads unknown variant %q", where, name)
				}
			}
		}
	}

	for _, d := range p.Dependencies {
		check("depends_on "+d.Target.String(), d.When)
	}
	for _, cf := range p.Conflicts {
		check("conflict "+cf.String(), cf.Spec)
		check("conflict "+cf.String(), cf.When)
	}
	for _, pt := range p.Patches {
		check("patch "+pt.File, pt.When)
	}
	for _, a := range p.Args {
		check("arg", a.When)
		for _, v := range append(append([]string{}, a.Values...), a.Else...) {
			checkTemplate("arg "+v, v)
		}
	}
	for _, rules := range [][]EnvRule{p.BuildEnv, p.RunEnv} {
		for _, r := range rules {
			check("env "+r.Mod.Name, r.When)
			checkTemplate("env "+r.Mod.Name, r.Mod.Value)
		}
	}
}

// CheckTemplate reports references os.Expand would silently drop: a "${"
// without its closing brace and an empty "${}".
func CheckTemplate(tmpl string) error {
	for i := 0; i < len(tmpl)-1; i++ {
		if tmpl[i] != '$' {
			continue
		}
		switch tmpl[i+1] {
		case '$':
			i++
		case '{':
			end := strings.IndexByte(tmpl[i+2:], '}')
			switch {
			case end < 0:
				return errors.New("unterminated ${ in template")
			case end == 0:
				return errors.New("empty ${} in template")
			}
			i += end + 2
		}
	}
	return nil
}

// TemplateRefs lists the ${...} references in a template, in order. "$$"
// is a literal dollar and is not reported.
func TemplateRefs(tmpl string) []string {
	var refs []string
	os.Expand(tmpl, func(name string) string {
		if name != "$" {
			refs = append(refs, name)
		}
		return ""
	})
	return refs
}
