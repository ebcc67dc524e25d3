// Package variable holds the per-workspace registry of named, typed variables.
//
// A Variable's id is fixed at creation; its name and type can change, but only
// through the Map that owns it. Everything else refers to a variable by id and
// resolves it on demand, so a rename never invalidates a reference.
//
// A Map is not safe for concurrent use. Editors drive it from a single event
// loop.
package variable

// Variable is one user-defined variable.
type Variable struct {
	id   string
	name string
	typ  string
}

// ID returns the stable identifier.
func (v *Variable) ID() string { return v.id }

// Name returns the current display name.
func (v *Variable) Name() string { return v.name }

// Type returns the variable type. The empty string is the default type.
func (v *Variable) Type() string { return v.typ }
