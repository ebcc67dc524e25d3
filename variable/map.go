package variable

import (
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/varbind/observability"
)

// Map owns the variables of one workspace. Ids are unique for the life of
// the Map, so an id freed by delete or clear is never handed out again;
// names are not unique. A case-folded name index serves GetVariable.
type Map struct {
	source   string
	observer observability.Observer
	byID     map[string]*Variable
	byName   map[string][]string
	order    []string
	retired  map[string]bool
}

// NewMap creates an empty Map. Events are tagged with source and sent to
// observer; a nil observer discards them.
func NewMap(source string, observer observability.Observer) *Map {
	if observer == nil {
		observer = observability.NoOpObserver{}
	}
	return &Map{
		source:   source,
		observer: observer,
		byID:     make(map[string]*Variable),
		byName:   make(map[string][]string),
		retired:  make(map[string]bool),
	}
}

// NewID returns a fresh variable id.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// CreateVariable adds a variable. An empty id draws a fresh one from NewID.
// Returns a *DuplicateIDError when id is already present. Name and type are
// not checked for uniqueness.
func (m *Map) CreateVariable(name, typ, id string) (*Variable, error) {
	if id == "" {
		id = NewID()
	}
	if _, exists := m.byID[id]; exists || m.retired[id] {
		return nil, &DuplicateIDError{ID: id}
	}

	v := &Variable{id: id, name: name, typ: typ}
	m.byID[id] = v
	m.order = append(m.order, id)
	m.index(v)

	m.emit(EventCreate, observability.LevelInfo, map[string]any{
		"id":   id,
		"name": name,
		"type": typ,
	})
	return v, nil
}

// GetVariableByID returns the variable with id. A missing id is reported by
// the boolean, never by an error.
func (m *Map) GetVariableByID(id string) (*Variable, bool) {
	v, ok := m.byID[id]
	return v, ok
}

// GetVariable finds a variable by case-insensitive name and exact type. When
// several match, the earliest created wins.
func (m *Map) GetVariable(name, typ string) (*Variable, bool) {
	for _, id := range m.byName[foldName(name)] {
		if v := m.byID[id]; v.typ == typ {
			return v, true
		}
	}
	return nil, false
}

// RenameVariableByID changes a variable's name in place.
func (m *Map) RenameVariableByID(id, newName string) error {
	v, ok := m.byID[id]
	if !ok {
		return notFound(id)
	}
	if v.name == newName {
		return nil
	}

	oldName := v.name
	m.unindex(v)
	v.name = newName
	m.index(v)

	m.emit(EventRename, observability.LevelInfo, map[string]any{
		"id":       id,
		"old_name": oldName,
		"name":     newName,
	})
	return nil
}

// SetVariableType changes a variable's type in place.
func (m *Map) SetVariableType(id, typ string) error {
	v, ok := m.byID[id]
	if !ok {
		return notFound(id)
	}
	if v.typ == typ {
		return nil
	}

	oldType := v.typ
	v.typ = typ

	m.emit(EventRetype, observability.LevelInfo, map[string]any{
		"id":       id,
		"old_type": oldType,
		"type":     typ,
	})
	return nil
}

// DeleteVariableByID removes a variable. The id stays retired: CreateVariable
// rejects it from then on.
func (m *Map) DeleteVariableByID(id string) error {
	v, ok := m.byID[id]
	if !ok {
		return notFound(id)
	}

	m.unindex(v)
	delete(m.byID, id)
	m.retired[id] = true
	m.order = slices.DeleteFunc(m.order, func(s string) bool { return s == id })

	m.emit(EventDelete, observability.LevelInfo, map[string]any{
		"id":   id,
		"name": v.name,
		"type": v.typ,
	})
	return nil
}

// AllVariables returns every variable in creation order.
func (m *Map) AllVariables() []*Variable {
	vars := make([]*Variable, 0, len(m.order))
	for _, id := range m.order {
		vars = append(vars, m.byID[id])
	}
	return vars
}

// VariablesOfType returns the variables of exactly typ in creation order.
func (m *Map) VariablesOfType(typ string) []*Variable {
	var vars []*Variable
	for _, id := range m.order {
		if v := m.byID[id]; v.typ == typ {
			vars = append(vars, v)
		}
	}
	return vars
}

// VariableTypes returns the distinct types in use, sorted.
func (m *Map) VariableTypes() []string {
	seen := make(map[string]bool)
	types := []string{}
	for _, v := range m.byID {
		if !seen[v.typ] {
			seen[v.typ] = true
			types = append(types, v.typ)
		}
	}
	sort.Strings(types)
	return types
}

// Len returns the number of variables.
func (m *Map) Len() int {
	return len(m.byID)
}

// Clear removes every variable.
func (m *Map) Clear() {
	if len(m.byID) == 0 {
		return
	}
	count := len(m.byID)
	for id := range m.byID {
		m.retired[id] = true
	}
	m.byID = make(map[string]*Variable)
	m.byName = make(map[string][]string)
	m.order = nil

	m.emit(EventClear, observability.LevelVerbose, map[string]any{"count": count})
}

func (m *Map) index(v *Variable) {
	key := foldName(v.name)
	m.byName[key] = append(m.byName[key], v.id)
}

func (m *Map) unindex(v *Variable) {
	key := foldName(v.name)
	ids := slices.DeleteFunc(m.byName[key], func(s string) bool { return s == v.id })
	if len(ids) == 0 {
		delete(m.byName, key)
		return
	}
	m.byName[key] = ids
}

func (m *Map) emit(t observability.EventType, level observability.Level, data map[string]any) {
	observability.Emit(m.observer, observability.Event{
		Type:   t,
		Level:  level,
		Source: m.source,
		Data:   data,
	})
}

func foldName(name string) string {
	return strings.ToLower(name)
}
