package constraint

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/platoengine/recipe/internal/core/guard"
	"github.com/platoengine/recipe/internal/core/version"
)

type termKind int

const (
	termVersion termKind = iota
	termOn
	termOff
	termEq
)

type term struct {
	kind  termKind
	name  string
	value string
	rng   version.Range
}

type parsed struct {
	name  string
	terms []term
}

// ParseGuard reads a when= expression. Terms separated by whitespace must all
// hold, "|" separates alternatives, a leading "!" negates one term and
// "^name" scopes the following terms to a dependency. The empty string is
// guard.Always.
func ParseGuard(s string) (guard.Guard, error) {
	toks, err := tokenize(s)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return guard.Always, nil
	}

	var alts []guard.Guard
	var cur []guard.Guard
	var dep string
	var depTerms []guard.Guard
	flushDep := func() {
		if dep != "" {
			cur = append(cur, guard.OnDependency(dep, guard.All(depTerms...)))
		}
		dep, depTerms = "", nil
	}
	flushAlt := func() error {
		flushDep()
		if len(cur) == 0 {
			return fmt.Errorf("guard %q: empty alternative", s)
		}
		alts = append(alts, guard.All(cur...))
		cur = nil
		return nil
	}

	for _, tok := range toks {
		if tok == "|" {
			if err := flushAlt(); err != nil {
				return nil, err
			}
			continue
		}
		negate := strings.HasPrefix(tok, "!")
		tok = strings.TrimPrefix(tok, "!")
		if strings.HasPrefix(tok, "^") {
			if negate {
				return nil, fmt.Errorf("guard %q: negating a dependency scope is not supported", s)
			}
			flushDep()
			p, err := parseToken(tok[1:])
			if err != nil {
				return nil, fmt.Errorf("guard %q: %w", s, err)
			}
			if p.name == "" {
				return nil, fmt.Errorf("guard %q: ^ must name a dependency", s)
			}
			dep = p.name
			depTerms = termGuards(p.terms)
			continue
		}
		p, err := parseToken(tok)
		if err != nil {
			return nil, fmt.Errorf("guard %q: %w", s, err)
		}
		if p.name != "" {
			return nil, fmt.Errorf("guard %q: unexpected package name %q", s, p.name)
		}
		g := guard.All(termGuards(p.terms)...)
		if negate {
			g = guard.Not(g)
		}
		if dep != "" {
			depTerms = append(depTerms, g)
		} else {
			cur = append(cur, g)
		}
	}
	if err := flushAlt(); err != nil {
		return nil, err
	}
	return guard.Any(alts...), nil
}

// MustParseGuard is ParseGuard for literals known to be valid.
func MustParseGuard(s string) guard.Guard {
	g, err := ParseGuard(s)
	if err != nil {
		panic(err)
	}
	return g
}

func termGuards(ts []term) []guard.Guard {
	out := make([]guard.Guard, 0, len(ts))
	for _, t := range ts {
		switch t.kind {
		case termVersion:
			out = append(out, guard.VersionIn(t.rng))
		case termOn:
			out = append(out, guard.VariantOn(t.name))
		case termOff:
			out = append(out, guard.VariantOff(t.name))
		case termEq:
			out = append(out, guard.VariantEquals(t.name, t.value))
		}
	}
	return out
}

// tokenize splits on whitespace outside quotes and isolates "|".
func tokenize(s string) ([]string, error) {
	var toks []string
	var b strings.Builder
	var quote rune
	flush := func() {
		if b.Len() > 0 {
			toks = append(toks, b.String())
			b.Reset()
		}
	}
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			b.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
		case r == '|':
			flush()
			toks = append(toks, "|")
		case unicode.IsSpace(r):
			flush()
		default:
			b.WriteRune(r)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote in %q", s)
	}
	flush()
	return toks, nil
}

// parseToken reads one whitespace-free token such as "trilinos@15.0.0+kokkos",
// "~tpetra", "@6.12:" or "gotype=int".
func parseToken(tok string) (parsed, error) {
	var p parsed
	if name, value, ok := strings.Cut(tok, "="); ok {
		if name == "" || value == "" || strings.ContainsAny(name, "+~@") {
			return p, fmt.Errorf("invalid assignment %q", tok)
		}
		p.terms = append(p.terms, term{kind: termEq, name: name, value: value})
		return p, nil
	}

	rest := tok
	if strings.HasPrefix(rest, "-") {
		rest = "~" + rest[1:]
	}
	if i := strings.IndexAny(rest, "@+~"); i != 0 {
		if i < 0 {
			i = len(rest)
		}
		p.name = rest[:i]
		rest = rest[i:]
	}

	for rest != "" {
		sigil := rest[0]
		body := rest[1:]
		end := strings.IndexAny(body, "@+~")
		if end < 0 {
			end = len(body)
		}
		word := body[:end]
		rest = body[end:]

		switch sigil {
		case '@':
			r, err := version.ParseRange(word)
			if err != nil {
				return p, err
			}
			if r.IsAny() {
				return p, fmt.Errorf("empty version after @ in %q", tok)
			}
			p.terms = append(p.terms, term{kind: termVersion, rng: r})
		case '+', '~':
			if word == "" {
				return p, fmt.Errorf("empty variant name in %q", tok)
			}
			k := termOn
			if sigil == '~' {
				k = termOff
			}
			p.terms = append(p.terms, term{kind: k, name: word})
		default:
			return p, fmt.Errorf("unexpected %q in %q", sigil, tok)
		}
	}
	return p, nil
}
