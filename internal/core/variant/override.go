package variant

import (
	"fmt"
	"strings"
)

// Override is one user request against a variant: "+name", "~name" (or
// "-name"), or "name=value".
type Override struct {
	Name string
	// Flag is set for the +/~ forms, Text for name=value.
	Flag   *bool
	Text   string
	Source string
}

func (o Override) String() string {
	if o.Source != "" {
		return o.Source
	}
	if o.Flag != nil {
		if *o.Flag {
			return "+" + o.Name
		}
		return "~" + o.Name
	}
	return o.Name + "=" + o.Text
}

// Resolve turns the override into a value of the declared kind.
func (o Override) Resolve(d Declaration) (Value, error) {
	if o.Flag != nil {
		if d.Kind != Bool {
			return Value{}, fmt.Errorf("variant %q takes a value (%s=...), not %s", d.Name, d.Name, o)
		}
		return BoolValue(*o.Flag), nil
	}
	return d.Coerce(o.Text)
}

// Enable returns the "+name" override.
func Enable(name string) Override {
	t := true
	return Override{Name: name, Flag: &t}
}

// Disable returns the "~name" override.
func Disable(name string) Override {
	f := false
	return Override{Name: name, Flag: &f}
}

// Set returns the "name=value" override.
func Set(name, value string) Override {
	return Override{Name: name, Text: value}
}

// ParseOverrides parses command-line style variant tokens. A single token may
// chain flags ("+cuda~mpi+omega-h"); "-" acts as a sigil only at the start of
// a token so hyphenated names survive.
func ParseOverrides(tokens ...string) ([]Override, error) {
	var out []Override
	for _, tok := range tokens {
		for _, field := range strings.Fields(tok) {
			ovs, err := parseField(field)
			if err != nil {
				return nil, err
			}
			out = append(out, ovs...)
		}
	}
	return out, nil
}

func parseField(field string) ([]Override, error) {
	if name, value, ok := strings.Cut(field, "="); ok {
		if name == "" || strings.ContainsAny(name, "+~") {
			return nil, fmt.Errorf("invalid variant assignment %q", field)
		}
		value = strings.Trim(value, `"'`)
		if value == "" {
			return nil, fmt.Errorf("variant assignment %q has no value", field)
		}
		return []Override{{Name: name, Text: value, Source: field}}, nil
	}

	if strings.HasPrefix(field, "-") {
		field = "~" + field[1:]
	}
	if field == "" || (field[0] != '+' && field[0] != '~') {
		return nil, fmt.Errorf("invalid variant flag %q: expected +name, ~name or name=value", field)
	}

	var out []Override
	for len(field) > 0 {
		on := field[0] == '+'
		rest := field[1:]
		end := strings.IndexAny(rest, "+~")
		if end < 0 {
			end = len(rest)
		}
		name := rest[:end]
		if name == "" {
			return nil, fmt.Errorf("invalid variant flag %q: empty name", field)
		}
		if on {
			out = append(out, Enable(name))
		} else {
			out = append(out, Disable(name))
		}
		field = rest[end:]
	}
	return out, nil
}

// ParseAssignment reads a rendered assignment such as "+cuda~mpi gotype=int"
// without declarations to check it against: flags become booleans and
// name=value pairs become enum values.
func ParseAssignment(s string) (Assignment, error) {
	ovs, err := ParseOverrides(s)
	if err != nil {
		return nil, err
	}
	a := make(Assignment, len(ovs))
	for _, o := range ovs {
		if o.Flag != nil {
			a[o.Name] = BoolValue(*o.Flag)
		} else {
			a[o.Name] = EnumValue(o.Text)
		}
	}
	return a, nil
}
