// Package envmod describes environment mutations as data. The resolver
// returns them and callers apply them to an explicit Environment; nothing in
// here touches the process environment.
package envmod

import (
	"fmt"
	"os"
	"slices"
	"strings"
)

// Op is the kind of mutation.
type Op string

const (
	Set     Op = "set"
	Prepend Op = "prepend"
	Append  Op = "append"
	Unset   Op = "unset"
)

// DefaultSeparator joins path-like values.
const DefaultSeparator = ":"

// ParseOp validates the text form used in recipes.
func ParseOp(s string) (Op, error) {
	switch op := Op(strings.ToLower(strings.TrimSpace(s))); op {
	case Set, Prepend, Append, Unset:
		return op, nil
	case "":
		return "", fmt.Errorf("environment operation is required")
	default:
		return "", fmt.Errorf("unknown environment operation %q (want set, prepend, append or unset)", s)
	}
}

// Modification is one operation on one variable.
type Modification struct {
	Op        Op
	Name      string
	Value     string
	Separator string
}

func (m Modification) sep() string {
	if m.Separator == "" {
		return DefaultSeparator
	}
	return m.Separator
}

func (m Modification) String() string {
	switch m.Op {
	case Unset:
		return fmt.Sprintf("unset %s", m.Name)
	case Set:
		return fmt.Sprintf("set %s=%s", m.Name, m.Value)
	default:
		return fmt.Sprintf("%s %s %s (sep %q)", m.Op, m.Name, m.Value, m.sep())
	}
}

// Modifications is an ordered list of operations.
type Modifications []Modification

func (ms *Modifications) add(m Modification) { *ms = append(*ms, m) }

// Set appends a set operation.
func (ms *Modifications) Set(name, value string) {
	ms.add(Modification{Op: Set, Name: name, Value: value})
}

// PrependPath appends a prepend operation.
func (ms *Modifications) PrependPath(name, value, sep string) {
	ms.add(Modification{Op: Prepend, Name: name, Value: value, Separator: sep})
}

// AppendPath appends an append operation.
func (ms *Modifications) AppendPath(name, value, sep string) {
	ms.add(Modification{Op: Append, Name: name, Value: value, Separator: sep})
}

// Unset appends an unset operation.
func (ms *Modifications) Unset(name string) {
	ms.add(Modification{Op: Unset, Name: name})
}

// Names returns the touched variable names in first-touch order.
func (ms Modifications) Names() []string {
	var out []string
	for _, m := range ms {
		if !slices.Contains(out, m.Name) {
			out = append(out, m.Name)
		}
	}
	return out
}

// Apply runs the operations in order against a copy of base and returns it.
// Each prepend goes to the front, so the last prepend applied ends up first.
func (ms Modifications) Apply(base Environment) Environment {
	env := base.Clone()
	for _, m := range ms {
		switch m.Op {
		case Set:
			env[m.Name] = m.Value
		case Unset:
			delete(env, m.Name)
		case Prepend:
			if cur, ok := env[m.Name]; ok && cur != "" {
				env[m.Name] = m.Value + m.sep() + cur
			} else {
				env[m.Name] = m.Value
			}
		case Append:
			if cur, ok := env[m.Name]; ok && cur != "" {
				env[m.Name] = cur + m.sep() + m.Value
			} else {
				env[m.Name] = m.Value
			}
		}
	}
	return env
}

// Environment is an explicit environment value.
type Environment map[string]string

// FromEnviron builds an Environment from "KEY=value" pairs as returned by
// os.Environ.
func FromEnviron(pairs []string) Environment {
	env := make(Environment, len(pairs))
	for _, p := range pairs {
		if k, v, ok := strings.Cut(p, "="); ok && k != "" {
			env[k] = v
		}
	}
	return env
}

// Current snapshots the process environment.
func Current() Environment { return FromEnviron(os.Environ()) }

// Clone returns a copy safe to modify.
func (e Environment) Clone() Environment {
	out := make(Environment, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Diff lists the variables whose value differs from base, sorted by name.
// Removed variables have Present=false.
func (e Environment) Diff(base Environment) []Change {
	var out []Change
	for k, v := range e {
		if old, ok := base[k]; !ok || old != v {
			out = append(out, Change{Name: k, Value: v, Present: true})
		}
	}
	for k := range base {
		if _, ok := e[k]; !ok {
			out = append(out, Change{Name: k})
		}
	}
	slices.SortFunc(out, func(a, b Change) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Change is one entry of Environment.Diff.
type Change struct {
	Name    string
	Value   string
	Present bool
}
