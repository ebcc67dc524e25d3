package workspace

import (
	"fmt"
	"sort"
	"sync"
)

// Field is a widget hosted by a block. A field is built unattached and joins a
// block through SetSourceBlock; from then on it resolves workspace state
// through that block.
type Field interface {
	// Name is the field's name on its block, e.g. "VAR".
	Name() string
	SetSourceBlock(b *Block)
	SourceBlock() *Block
	// InitModel runs once the field is attached to a new block, letting it
	// resolve or create whatever workspace state it refers to.
	InitModel() error
	Dispose()
}

// VariableReference is a field bound to a variable by id.
type VariableReference interface {
	Field
	VariableID() string
}

// FieldSpec declares one field of a block type.
type FieldSpec struct {
	Kind          string
	Name          string
	Variable      string   // initial variable name, variable fields only
	VariableTypes []string // allowed variable types; empty allows any
	DefaultType   string
}

// FieldFactory builds an unattached field from its declaration.
type FieldFactory func(spec FieldSpec) (Field, error)

var fieldKinds = struct {
	factories map[string]FieldFactory
	mu        sync.RWMutex
}{
	factories: make(map[string]FieldFactory),
}

// RegisterFieldKind makes a field kind available to block types. Packages
// providing fields call it from init.
func RegisterFieldKind(kind string, factory FieldFactory) error {
	if kind == "" {
		return ErrEmptyFieldKind
	}

	fieldKinds.mu.Lock()
	defer fieldKinds.mu.Unlock()

	if _, exists := fieldKinds.factories[kind]; exists {
		return fmt.Errorf("%w: %s", ErrFieldKindExists, kind)
	}
	fieldKinds.factories[kind] = factory
	return nil
}

// FieldKinds lists the registered field kinds, sorted.
func FieldKinds() []string {
	fieldKinds.mu.RLock()
	defer fieldKinds.mu.RUnlock()

	kinds := make([]string, 0, len(fieldKinds.factories))
	for kind := range fieldKinds.factories {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

func newField(spec FieldSpec) (Field, error) {
	fieldKinds.mu.RLock()
	factory, exists := fieldKinds.factories[spec.Kind]
	fieldKinds.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFieldKind, spec.Kind)
	}

	f, err := factory(spec)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", spec.Name, err)
	}
	return f, nil
}
