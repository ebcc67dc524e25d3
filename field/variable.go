// Package field provides the variable field: a block widget that refers to
// one workspace variable by id.
//
// A field starts unattached, holding only a candidate variable name. Once
// SetSourceBlock gives it a block, every lookup goes field -> block ->
// workspace -> registry. The field stores the id alone, so renaming or
// retyping the variable never requires touching the field.
package field

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/tailored-agentic-units/varbind/observability"
	"github.com/tailored-agentic-units/varbind/variable"
	"github.com/tailored-agentic-units/varbind/workspace"
)

// Kind is the block-type field kind served by this package.
const Kind = "field_variable"

func init() {
	if err := workspace.RegisterFieldKind(Kind, fromSpec); err != nil {
		panic(err)
	}
}

// Validator inspects a proposed id before binding. It may return a different
// id to bind instead, or an error to reject the change.
type Validator func(id string) (string, error)

// Option configures a Variable field.
type Option func(*Variable)

// WithName sets the field's name on its block.
func WithName(name string) Option {
	return func(f *Variable) { f.name = name }
}

// WithVariableTypes restricts which variable types the field accepts.
func WithVariableTypes(types ...string) Option {
	return func(f *Variable) { f.variableTypes = slices.Clone(types) }
}

// WithDefaultType sets the type used when InitModel creates a variable.
func WithDefaultType(typ string) Option {
	return func(f *Variable) { f.defaultType = typ }
}

// WithValidator installs a validator run by SetValue.
func WithValidator(v Validator) Option {
	return func(f *Variable) { f.validator = v }
}

// MenuOption is one entry of the variable dropdown.
type MenuOption struct {
	Text  string // variable name
	Value string // variable id
}

// Variable is a field bound to a workspace variable by id.
type Variable struct {
	name          string
	candidate     string
	variableTypes []string
	defaultType   string
	validator     Validator
	block         *workspace.Block
	value         string
}

// NewVariable creates an unattached field. varName is the name of the
// variable InitModel binds to; it is not an id. When types are restricted and
// no default type is given, the first allowed type is the default.
func NewVariable(varName string, opts ...Option) *Variable {
	f := &Variable{candidate: varName}
	for _, opt := range opts {
		opt(f)
	}
	if f.defaultType == "" && len(f.variableTypes) > 0 {
		f.defaultType = f.variableTypes[0]
	}
	return f
}

func fromSpec(spec workspace.FieldSpec) (workspace.Field, error) {
	if spec.DefaultType != "" && len(spec.VariableTypes) > 0 &&
		!slices.Contains(spec.VariableTypes, spec.DefaultType) {
		return nil, fmt.Errorf("%w: %q", ErrDefaultTypeNotAllowed, spec.DefaultType)
	}
	return NewVariable(spec.Variable,
		WithName(spec.Name),
		WithVariableTypes(spec.VariableTypes...),
		WithDefaultType(spec.DefaultType),
	), nil
}

func (f *Variable) Name() string { return f.name }

// CandidateName returns the variable name given at construction.
func (f *Variable) CandidateName() string { return f.candidate }

// SetSourceBlock attaches the field to b and registers it among b's fields.
// Attaching to the same block again changes nothing; attaching to another
// block moves the field off the previous one. A block that refuses the field
// leaves it unattached.
func (f *Variable) SetSourceBlock(b *workspace.Block) {
	if f.block == b {
		return
	}
	if f.block != nil {
		f.block.RemoveField(f)
	}
	f.block = b
	if b == nil {
		return
	}
	if err := b.AppendField(f); err != nil {
		f.block = nil
	}
}

func (f *Variable) SourceBlock() *workspace.Block {
	return f.block
}

// Attached reports whether the field can currently resolve variables.
func (f *Variable) Attached() bool {
	return f.resolveWorkspace() != nil
}

func (f *Variable) resolveWorkspace() *workspace.Workspace {
	if f.block == nil {
		return nil
	}
	return f.block.Workspace()
}

// SetValue binds the field to the variable with id. It fails with a
// *MissingSourceBlockError when unattached and an *UnknownVariableError when
// the id is not in the workspace; on any failure the current binding stays.
func (f *Variable) SetValue(id string) error {
	ws := f.resolveWorkspace()
	if ws == nil {
		return &MissingSourceBlockError{ID: id}
	}

	if f.validator != nil {
		validated, err := f.validator(id)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrRejected, err)
		}
		id = validated
	}

	v, ok := ws.GetVariableByID(id)
	if !ok {
		return &UnknownVariableError{ID: id}
	}
	if len(f.variableTypes) > 0 && !slices.Contains(f.variableTypes, v.Type()) {
		return &TypeMismatchError{ID: id, Type: v.Type()}
	}

	if f.value == id {
		return nil
	}
	old := f.value
	f.value = id

	observability.Emit(ws.Observer(), observability.Event{
		Type:   EventBind,
		Level:  observability.LevelVerbose,
		Source: ws.ID(),
		Data: map[string]any{
			"block_id": f.block.ID(),
			"field":    f.name,
			"old_id":   old,
			"id":       id,
		},
	})
	return nil
}

// InitModel binds an unbound, attached field to the variable named by its
// candidate name and default type, creating that variable when absent. An
// empty candidate name draws a fresh unique name.
func (f *Variable) InitModel() error {
	if f.value != "" {
		return nil
	}
	ws := f.resolveWorkspace()
	if ws == nil {
		return fmt.Errorf("%w: %s", ErrMissingSourceBlock, f.candidate)
	}

	name := f.candidate
	if name == "" {
		name = variable.GenerateUniqueName(ws.Variables())
	}

	v, ok := ws.GetVariable(name, f.defaultType)
	if !ok {
		created, err := ws.CreateVariable(name, f.defaultType, "")
		if err != nil {
			return err
		}
		v = created
	}
	return f.SetValue(v.ID())
}

// Value returns the bound variable id, or "" when unbound.
func (f *Variable) Value() string { return f.value }

// VariableID is Value, satisfying workspace.VariableReference.
func (f *Variable) VariableID() string { return f.value }

// Variable resolves the bound variable.
func (f *Variable) Variable() (*variable.Variable, bool) {
	ws := f.resolveWorkspace()
	if ws == nil || f.value == "" {
		return nil, false
	}
	return ws.GetVariableByID(f.value)
}

// Text returns the bound variable's current name, or the candidate name when
// nothing is bound.
func (f *Variable) Text() string {
	if v, ok := f.Variable(); ok {
		return v.Name()
	}
	return f.candidate
}

// VariableTypes returns the types offered in the dropdown: the restricted
// list if set, otherwise every type in the workspace, otherwise the default
// type alone.
func (f *Variable) VariableTypes() []string {
	if len(f.variableTypes) > 0 {
		return slices.Clone(f.variableTypes)
	}
	if ws := f.resolveWorkspace(); ws != nil {
		if types := ws.Variables().VariableTypes(); len(types) > 0 {
			return types
		}
	}
	return []string{""}
}

// Options lists the variables the field could bind to, sorted by name
// without regard to case. Unattached fields have no options.
func (f *Variable) Options() []MenuOption {
	ws := f.resolveWorkspace()
	if ws == nil {
		return nil
	}

	var vars []*variable.Variable
	for _, typ := range f.VariableTypes() {
		vars = append(vars, ws.Variables().VariablesOfType(typ)...)
	}
	sort.SliceStable(vars, func(i, j int) bool {
		return strings.ToLower(vars[i].Name()) < strings.ToLower(vars[j].Name())
	})

	options := make([]MenuOption, 0, len(vars))
	for _, v := range vars {
		options = append(options, MenuOption{Text: v.Name(), Value: v.ID()})
	}
	return options
}

// Dispose detaches the field from its block. The bound id is kept for
// inspection.
func (f *Variable) Dispose() {
	if b := f.block; b != nil {
		f.block = nil
		b.RemoveField(f)
	}
}
