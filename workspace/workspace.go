// Package workspace hosts blocks and the variable registry they bind to.
//
// A Workspace owns exactly one variable.Map for its whole lifetime. Blocks are
// created from registered block types; their fields reach the registry through
// the block's back-reference, never through global state, so independent
// workspaces coexist freely:
//
//	ws, err := workspace.New(&cfg, workspace.WithBlockTypes(types...))
//	ws.CreateVariable("name1", "type1", "id1")
//	b, err := ws.NewBlock("get_var_block", "")
//	defer ws.Dispose()
//
// Workspaces are not safe for concurrent use.
package workspace

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/varbind/observability"
	"github.com/tailored-agentic-units/varbind/variable"
)

// Option configures a Workspace after config-driven initialization.
type Option func(*Workspace)

// WithObserver replaces the config-selected observer.
func WithObserver(o observability.Observer) Option {
	return func(w *Workspace) { w.base = o }
}

// WithBlockTypes defines block types on the new workspace. Conflicts are
// reported by New.
func WithBlockTypes(types ...BlockType) Option {
	return func(w *Workspace) { w.pending = append(w.pending, types...) }
}

// Workspace is a set of live blocks plus the variables they refer to.
type Workspace struct {
	id         string
	base       observability.Observer
	observer   *observability.MultiObserver
	variables  *variable.Map
	blockTypes map[string]BlockType
	blocks     map[string]*Block
	order      []string
	pending    []BlockType
	disposed   bool
}

// New creates a Workspace from configuration and seeds its variables.
func New(cfg *Config, opts ...Option) (*Workspace, error) {
	id := cfg.ID
	if id == "" {
		id = uuid.Must(uuid.NewV7()).String()
	}

	var base observability.Observer = observability.NewSlogObserver(slog.Default())
	if cfg.Observer != "" {
		obs, err := observability.GetObserver(cfg.Observer)
		if err != nil {
			return nil, fmt.Errorf("failed to select observer: %w", err)
		}
		base = obs
	}

	w := &Workspace{
		id:         id,
		base:       base,
		blockTypes: make(map[string]BlockType),
		blocks:     make(map[string]*Block),
	}

	for _, opt := range opts {
		opt(w)
	}

	w.observer = observability.NewMultiObserver(w.base)
	w.variables = variable.NewMap(w.id, w.observer)

	for _, bt := range w.pending {
		if err := w.DefineBlockType(bt); err != nil {
			return nil, err
		}
	}
	w.pending = nil

	for _, vc := range cfg.Variables {
		if _, err := w.variables.CreateVariable(vc.Name, vc.Type, vc.ID); err != nil {
			return nil, fmt.Errorf("failed to seed variable %q: %w", vc.Name, err)
		}
	}

	w.emit(EventCreate, observability.LevelInfo, map[string]any{
		"variables":   w.variables.Len(),
		"block_types": len(w.blockTypes),
	})
	return w, nil
}

// ID returns the workspace identifier.
func (w *Workspace) ID() string {
	return w.id
}

// Observer returns the observer that receives this workspace's events,
// change listeners included.
func (w *Workspace) Observer() observability.Observer {
	return w.observer
}

// AddChangeListener subscribes obs to every subsequent event.
func (w *Workspace) AddChangeListener(obs observability.Observer) {
	w.observer.Add(obs)
}

// Variables exposes the registry for read-heavy callers.
func (w *Workspace) Variables() *variable.Map {
	return w.variables
}

// Disposed reports whether Dispose has run.
func (w *Workspace) Disposed() bool {
	return w.disposed
}

// CreateVariable adds a variable to the registry. See variable.Map.
func (w *Workspace) CreateVariable(name, typ, id string) (*variable.Variable, error) {
	if w.disposed {
		return nil, ErrDisposed
	}
	return w.variables.CreateVariable(name, typ, id)
}

// GetVariableByID resolves id. It never fails; absence is the false result.
func (w *Workspace) GetVariableByID(id string) (*variable.Variable, bool) {
	return w.variables.GetVariableByID(id)
}

// GetVariable finds a variable by case-insensitive name and exact type.
func (w *Workspace) GetVariable(name, typ string) (*variable.Variable, bool) {
	return w.variables.GetVariable(name, typ)
}

// AllVariables returns every variable in creation order.
func (w *Workspace) AllVariables() []*variable.Variable {
	return w.variables.AllVariables()
}

// RenameVariableByID renames in place. Fields keep their ids and show the
// new name on their next read.
func (w *Workspace) RenameVariableByID(id, newName string) error {
	if w.disposed {
		return ErrDisposed
	}
	return w.variables.RenameVariableByID(id, newName)
}

// SetVariableType retypes in place.
func (w *Workspace) SetVariableType(id, typ string) error {
	if w.disposed {
		return ErrDisposed
	}
	return w.variables.SetVariableType(id, typ)
}

// DeleteVariableByID disposes every block that uses the variable, then removes
// it, so no live field is left pointing at a missing id.
func (w *Workspace) DeleteVariableByID(id string) error {
	if w.disposed {
		return ErrDisposed
	}
	if _, ok := w.variables.GetVariableByID(id); !ok {
		return fmt.Errorf("%w: %s", variable.ErrVariableNotFound, id)
	}

	for _, b := range w.VariableUsesByID(id) {
		b.Dispose()
	}
	return w.variables.DeleteVariableByID(id)
}

// VariableUsesByID returns the live blocks with a field bound to id, in
// creation order.
func (w *Workspace) VariableUsesByID(id string) []*Block {
	var uses []*Block
	for _, b := range w.Blocks() {
		if slices.Contains(b.VariableIDs(), id) {
			uses = append(uses, b)
		}
	}
	return uses
}

// DefineBlockType registers a block type on this workspace.
func (w *Workspace) DefineBlockType(bt BlockType) error {
	if bt.Type == "" {
		return ErrEmptyBlockType
	}
	if _, exists := w.blockTypes[bt.Type]; exists {
		return fmt.Errorf("%w: %s", ErrBlockTypeExists, bt.Type)
	}
	w.blockTypes[bt.Type] = bt
	return nil
}

// BlockType looks up a registered block type.
func (w *Workspace) BlockType(name string) (BlockType, bool) {
	bt, ok := w.blockTypes[name]
	return bt, ok
}

// NewBlock instantiates a registered block type. An empty id draws a fresh
// one. Every declared field is built, attached, and given the chance to
// initialize its model. On any failure the half-built block is torn down
// without a dispose event and variables its fields created are deleted.
func (w *Workspace) NewBlock(typ, id string) (*Block, error) {
	if w.disposed {
		return nil, ErrDisposed
	}
	bt, ok := w.blockTypes[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBlockType, typ)
	}
	if id == "" {
		id = uuid.Must(uuid.NewV7()).String()
	}
	if _, exists := w.blocks[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateBlockID, id)
	}

	b := &Block{id: id, typ: typ, workspace: w}
	w.blocks[id] = b
	w.order = append(w.order, id)

	existing := make(map[string]bool, w.variables.Len())
	for _, v := range w.variables.AllVariables() {
		existing[v.ID()] = true
	}

	if err := w.buildFields(b, bt); err != nil {
		b.teardown()
		for _, v := range w.variables.AllVariables() {
			if !existing[v.ID()] {
				w.variables.DeleteVariableByID(v.ID())
			}
		}
		return nil, fmt.Errorf("failed to create block %q: %w", typ, err)
	}

	w.emit(EventBlockCreate, observability.LevelVerbose, map[string]any{
		"block_id": id,
		"type":     typ,
	})
	return b, nil
}

func (w *Workspace) buildFields(b *Block, bt BlockType) error {
	for _, spec := range bt.Fields {
		f, err := newField(spec)
		if err != nil {
			return err
		}
		if err := b.AppendField(f); err != nil {
			return err
		}
	}
	for _, f := range b.fields {
		if err := f.InitModel(); err != nil {
			return fmt.Errorf("field %q: %w", f.Name(), err)
		}
	}
	return nil
}

// BlockByID returns a live block.
func (w *Workspace) BlockByID(id string) (*Block, bool) {
	b, ok := w.blocks[id]
	return b, ok
}

// Blocks returns the live blocks in creation order.
func (w *Workspace) Blocks() []*Block {
	blocks := make([]*Block, 0, len(w.order))
	for _, id := range w.order {
		blocks = append(blocks, w.blocks[id])
	}
	return blocks
}

// Dispose disposes every block and clears the registry. Calling it again is
// a no-op.
func (w *Workspace) Dispose() {
	if w.disposed {
		return
	}

	blocks := len(w.order)
	for _, b := range w.Blocks() {
		b.Dispose()
	}
	w.variables.Clear()
	w.disposed = true

	w.emit(EventDispose, observability.LevelInfo, map[string]any{"blocks": blocks})
}

func (w *Workspace) removeBlock(b *Block) {
	delete(w.blocks, b.id)
	w.order = slices.DeleteFunc(w.order, func(id string) bool { return id == b.id })
}

func (w *Workspace) emit(t observability.EventType, level observability.Level, data map[string]any) {
	observability.Emit(w.observer, observability.Event{
		Type:   t,
		Level:  level,
		Source: w.id,
		Data:   data,
	})
}
