package resolver

import (
	"fmt"
	"strings"
)

// UnknownVariantError is returned when an override names a variant the
// package does not declare.
type UnknownVariantError struct {
	Package  string
	Override string
	Variant  string
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("%s: unknown variant %q in override %q", e.Package, e.Variant, e.Override)
}

// VariantValueError is returned when an override gives a declared variant a
// value outside its domain.
type VariantValueError struct {
	Package  string
	Override string
	Err      error
}

func (e *VariantValueError) Error() string {
	return fmt.Sprintf("%s: override %q: %v", e.Package, e.Override, e.Err)
}

func (e *VariantValueError) Unwrap() error { return e.Err }

// UnknownVersionError is returned when the requested version is not declared.
type UnknownVersionError struct {
	Package string
	Version string
	Known   []string
}

func (e *UnknownVersionError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("%s declares no versions", e.Package)
	}
	return fmt.Sprintf("%s has no version %q (declared: %s)", e.Package, e.Version, strings.Join(e.Known, ", "))
}

// ConflictError is returned when both guards of a conflict rule hold.
type ConflictError struct {
	Package string
	Spec    string
	When    string
	Msg     string
}

func (e *ConflictError) Error() string {
	s := fmt.Sprintf("%s: %q conflicts with %q", e.Package, e.Spec, e.When)
	if e.When == "" {
		s = fmt.Sprintf("%s: %q is not allowed", e.Package, e.Spec)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

// MissingDependencyError is returned when a dependency rule applies but the
// resolved set has no entry for its target.
type MissingDependencyError struct {
	Package    string
	Dependency string
	Rule       string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("%s: dependency %q is required (%s) but was not resolved", e.Package, e.Dependency, e.Rule)
}

// TemplateSubstitutionError is returned when an argument or environment
// template reads something the resolved specs do not have.
type TemplateSubstitutionError struct {
	Package  string
	Template string
	Ref      string
	Err      error
}

func (e *TemplateSubstitutionError) Error() string {
	if e.Ref == "" {
		return fmt.Sprintf("%s: cannot expand %q: %v", e.Package, e.Template, e.Err)
	}
	return fmt.Sprintf("%s: cannot expand ${%s} in %q: %v", e.Package, e.Ref, e.Template, e.Err)
}

func (e *TemplateSubstitutionError) Unwrap() error { return e.Err }
