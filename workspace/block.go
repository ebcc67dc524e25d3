package workspace

import (
	"fmt"
	"slices"

	"github.com/tailored-agentic-units/varbind/observability"
)

// Block is a live block on a workspace. It owns its fields; disposing the
// block disposes them and removes the block from its workspace.
type Block struct {
	id        string
	typ       string
	workspace *Workspace
	fields    []Field
	disposed  bool
}

func (b *Block) ID() string   { return b.id }
func (b *Block) Type() string { return b.typ }

// Workspace returns the owning workspace, or nil once the block is disposed.
func (b *Block) Workspace() *Workspace {
	return b.workspace
}

// Disposed reports whether Dispose has run.
func (b *Block) Disposed() bool {
	return b.disposed
}

// Fields returns the block's fields in declaration order.
func (b *Block) Fields() []Field {
	return slices.Clone(b.fields)
}

// Field returns the field called name.
func (b *Block) Field(name string) (Field, bool) {
	for _, f := range b.fields {
		if f.Name() == name {
			return f, true
		}
	}
	return nil, false
}

// AppendField attaches f to the end of the block. Field names must be unique
// on a block; unnamed fields are exempt. Appending a field the block already
// holds is a no-op, so a field's SetSourceBlock may call back into it.
func (b *Block) AppendField(f Field) error {
	if f == nil {
		return ErrNilField
	}
	if slices.Contains(b.fields, f) {
		return nil
	}
	if b.disposed {
		return fmt.Errorf("%w: %s", ErrBlockDisposed, b.id)
	}
	if owner := f.SourceBlock(); owner != nil && owner != b {
		return fmt.Errorf("%w: %s", ErrFieldAttached, owner.id)
	}
	if name := f.Name(); name != "" {
		if _, exists := b.Field(name); exists {
			return fmt.Errorf("%w: %s", ErrDuplicateField, name)
		}
	}

	b.fields = append(b.fields, f)
	f.SetSourceBlock(b)
	return nil
}

// RemoveField detaches f from the block without disposing it.
func (b *Block) RemoveField(f Field) {
	b.fields = slices.DeleteFunc(b.fields, func(held Field) bool { return held == f })
}

// VariableIDs returns the ids referenced by the block's variable fields,
// skipping unbound ones.
func (b *Block) VariableIDs() []string {
	var ids []string
	for _, f := range b.fields {
		if ref, ok := f.(VariableReference); ok && ref.VariableID() != "" {
			ids = append(ids, ref.VariableID())
		}
	}
	return ids
}

// Dispose tears the block down. Calling it again is a no-op.
func (b *Block) Dispose() {
	ws := b.teardown()
	if ws == nil {
		return
	}

	ws.emit(EventBlockDispose, observability.LevelVerbose, map[string]any{
		"block_id": b.id,
		"type":     b.typ,
	})
}

// teardown disposes the fields and unlinks the block from its workspace,
// returning that workspace, or nil when already torn down.
func (b *Block) teardown() *Workspace {
	if b.disposed {
		return nil
	}
	b.disposed = true

	fields := b.fields
	b.fields = nil
	for _, f := range fields {
		f.Dispose()
	}

	ws := b.workspace
	ws.removeBlock(b)
	b.workspace = nil
	return ws
}
