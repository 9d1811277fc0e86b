// Package variant models user-selectable build options.
package variant

import (
	"fmt"
	"slices"
	"strings"
)

// Kind tells a boolean switch from an enumerated choice.
type Kind int

const (
	Bool Kind = iota
	Enum
)

func (k Kind) String() string {
	if k == Enum {
		return "enum"
	}
	return "bool"
}

// Value is the state of one variant. The zero Value is unset, which is
// distinct from false: neither "+x" nor "~x" holds for it.
type Value struct {
	set  bool
	kind Kind
	b    bool
	s    string
}

// Unset is the value of a variant with no default and no override.
var Unset = Value{}

// BoolValue returns a set boolean value.
func BoolValue(b bool) Value { return Value{set: true, kind: Bool, b: b} }

// EnumValue returns a set enumerated value.
func EnumValue(s string) Value { return Value{set: true, kind: Enum, s: s} }

// IsSet reports whether the value was given by a default or an override.
func (v Value) IsSet() bool { return v.set }

// Kind of a set value.
func (v Value) Kind() Kind { return v.kind }

// On reports a set boolean true.
func (v Value) On() bool { return v.set && v.kind == Bool && v.b }

// Off reports a set boolean false.
func (v Value) Off() bool { return v.set && v.kind == Bool && !v.b }

// Is reports whether v is the enumerated value s. Booleans compare against
// "true"/"false".
func (v Value) Is(s string) bool {
	if !v.set {
		return false
	}
	if v.kind == Bool {
		b, ok := parseBool(s)
		return ok && b == v.b
	}
	return v.s == s
}

// String renders the value as it appears after "name=".
func (v Value) String() string {
	switch {
	case !v.set:
		return ""
	case v.kind == Bool:
		if v.b {
			return "true"
		}
		return "false"
	default:
		return v.s
	}
}

// CMake renders a boolean as ON/OFF and an enum verbatim.
func (v Value) CMake() string {
	if v.kind == Bool {
		if v.On() {
			return "ON"
		}
		return "OFF"
	}
	return v.s
}

// Declaration is a variant as declared by a recipe or capability.
type Declaration struct {
	Name        string
	Default     Value
	Description string
	Kind        Kind
	Values      []string // allowed values for Enum
}

// Validate checks that v lies within the declared domain.
func (d Declaration) Validate(v Value) error {
	if !v.IsSet() {
		return nil
	}
	if v.Kind() != d.Kind {
		return fmt.Errorf("variant %q is %s, got %s value %q", d.Name, d.Kind, v.Kind(), v)
	}
	if d.Kind == Enum && len(d.Values) > 0 && !slices.Contains(d.Values, v.s) {
		return fmt.Errorf("variant %q: %q is not one of [%s]", d.Name, v.s, strings.Join(d.Values, ", "))
	}
	return nil
}

// Coerce turns the text form of a value into a Value of the declared kind.
func (d Declaration) Coerce(s string) (Value, error) {
	if d.Kind == Bool {
		b, ok := parseBool(s)
		if !ok {
			return Value{}, fmt.Errorf("variant %q is boolean, got %q", d.Name, s)
		}
		return BoolValue(b), nil
	}
	v := EnumValue(s)
	return v, d.Validate(v)
}

// Equivalent reports whether two declarations describe the same variant.
func (d Declaration) Equivalent(o Declaration) bool {
	return d.Name == o.Name && d.Kind == o.Kind && d.Default == o.Default && slices.Equal(d.Values, o.Values)
}

// Assignment maps variant names to values.
type Assignment map[string]Value

// Clone returns a copy safe to modify.
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Get returns the value of name, Unset when absent.
func (a Assignment) Get(name string) Value { return a[name] }

// Names returns the sorted variant names.
func (a Assignment) Names() []string {
	names := make([]string, 0, len(a))
	for k := range a {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// String renders the assignment in spec syntax, booleans first, sorted by name:
// "+cuda~mpi build_type=Release".
func (a Assignment) String() string {
	var flags, pairs strings.Builder
	for _, name := range a.Names() {
		v := a[name]
		switch {
		case !v.IsSet():
		case v.Kind() == Bool && v.On():
			flags.WriteString("+" + name)
		case v.Kind() == Bool:
			flags.WriteString("~" + name)
		default:
			pairs.WriteString(" " + name + "=" + v.String())
		}
	}
	return strings.TrimSpace(flags.String() + pairs.String())
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true", "on", "yes", "1":
		return true, true
	case "false", "off", "no", "0":
		return false, true
	}
	return false, false
}
