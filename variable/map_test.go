package variable_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/varbind/observability"
	"github.com/tailored-agentic-units/varbind/variable"
)

type recorder struct {
	events []observability.Event
}

func (r *recorder) OnEvent(_ context.Context, e observability.Event) {
	r.events = append(r.events, e)
}

func (r *recorder) types() []observability.EventType {
	out := make([]observability.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func checkVariable(t *testing.T, v *variable.Variable, name, typ, id string) {
	t.Helper()
	require.NotNil(t, v)
	assert.Equal(t, name, v.Name())
	assert.Equal(t, typ, v.Type())
	assert.Equal(t, id, v.ID())
}

func TestCreateVariable_RoundTrip(t *testing.T) {
	tests := []struct {
		name, typ, id string
	}{
		{name: "name1", typ: "type1", id: "id1"},
		{name: "name1", typ: "type2", id: "id2"},
		{name: "", typ: "", id: "id3"},
		{name: "Name1", typ: "type1", id: "id4"},
	}

	m := variable.NewMap("test", nil)
	for _, tt := range tests {
		_, err := m.CreateVariable(tt.name, tt.typ, tt.id)
		require.NoError(t, err)
	}

	for _, tt := range tests {
		v, ok := m.GetVariableByID(tt.id)
		require.True(t, ok, "GetVariableByID(%q)", tt.id)
		checkVariable(t, v, tt.name, tt.typ, tt.id)
	}
	assert.Equal(t, len(tests), m.Len())
}

func TestCreateVariable_DuplicateID(t *testing.T) {
	m := variable.NewMap("test", nil)
	_, err := m.CreateVariable("name1", "type1", "id1")
	require.NoError(t, err)

	for _, args := range [][2]string{{"name1", "type1"}, {"other", ""}, {"name2", "type2"}} {
		v, err := m.CreateVariable(args[0], args[1], "id1")
		assert.Nil(t, v)
		require.Error(t, err)
		assert.True(t, errors.Is(err, variable.ErrDuplicateID))
		assert.Equal(t, `Variable id, "id1", is already in use.`, err.Error())

		var dup *variable.DuplicateIDError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, "id1", dup.ID)
	}

	v, _ := m.GetVariableByID("id1")
	checkVariable(t, v, "name1", "type1", "id1")
}

func TestCreateVariable_GeneratesID(t *testing.T) {
	m := variable.NewMap("test", nil)
	a, err := m.CreateVariable("a", "", "")
	require.NoError(t, err)
	b, err := m.CreateVariable("a", "", "")
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestGetVariableByID_NotFound(t *testing.T) {
	m := variable.NewMap("test", nil)
	v, ok := m.GetVariableByID("missing")
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestGetVariable(t *testing.T) {
	m := variable.NewMap("test", nil)
	m.CreateVariable("Count", "", "id1")
	m.CreateVariable("count", "Number", "id2")
	m.CreateVariable("COUNT", "Number", "id3")

	tests := []struct {
		name   string
		lookup string
		typ    string
		wantID string
	}{
		{name: "exact", lookup: "Count", typ: "", wantID: "id1"},
		{name: "case insensitive", lookup: "cOuNt", typ: "", wantID: "id1"},
		{name: "earliest wins", lookup: "count", typ: "Number", wantID: "id2"},
		{name: "type mismatch", lookup: "count", typ: "String"},
		{name: "unknown name", lookup: "total", typ: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := m.GetVariable(tt.lookup, tt.typ)
			if tt.wantID == "" {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.wantID, v.ID())
		})
	}
}

func TestRenameVariableByID(t *testing.T) {
	m := variable.NewMap("test", nil)
	v, _ := m.CreateVariable("old", "type1", "id1")

	require.NoError(t, m.RenameVariableByID("id1", "new"))

	same, ok := m.GetVariableByID("id1")
	require.True(t, ok)
	assert.Same(t, v, same)
	checkVariable(t, same, "new", "type1", "id1")

	_, ok = m.GetVariable("old", "type1")
	assert.False(t, ok)
	got, ok := m.GetVariable("NEW", "type1")
	require.True(t, ok)
	assert.Equal(t, "id1", got.ID())
}

func TestRenameVariableByID_CaseOnly(t *testing.T) {
	m := variable.NewMap("test", nil)
	m.CreateVariable("total", "", "id1")

	require.NoError(t, m.RenameVariableByID("id1", "Total"))

	v, ok := m.GetVariable("total", "")
	require.True(t, ok)
	assert.Equal(t, "Total", v.Name())
}

func TestSetVariableType(t *testing.T) {
	m := variable.NewMap("test", nil)
	m.CreateVariable("x", "", "id1")

	require.NoError(t, m.SetVariableType("id1", "Number"))

	v, _ := m.GetVariableByID("id1")
	checkVariable(t, v, "x", "Number", "id1")
	assert.Empty(t, m.VariablesOfType(""))
	assert.Len(t, m.VariablesOfType("Number"), 1)
}

func TestMutations_UnknownID(t *testing.T) {
	m := variable.NewMap("test", nil)

	tests := []struct {
		name string
		call func() error
	}{
		{name: "rename", call: func() error { return m.RenameVariableByID("nope", "x") }},
		{name: "retype", call: func() error { return m.SetVariableType("nope", "x") }},
		{name: "delete", call: func() error { return m.DeleteVariableByID("nope") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			assert.ErrorIs(t, err, variable.ErrVariableNotFound)
			assert.Contains(t, err.Error(), "nope")
		})
	}
}

func TestDeleteVariableByID(t *testing.T) {
	m := variable.NewMap("test", nil)
	m.CreateVariable("a", "", "id1")
	m.CreateVariable("b", "", "id2")

	require.NoError(t, m.DeleteVariableByID("id1"))

	_, ok := m.GetVariableByID("id1")
	assert.False(t, ok)
	_, ok = m.GetVariable("a", "")
	assert.False(t, ok)
	assert.Equal(t, 1, m.Len())

	// deleted ids are never reused
	_, err := m.CreateVariable("a2", "", "id1")
	assert.ErrorIs(t, err, variable.ErrDuplicateID)
	assert.Equal(t, `Variable id, "id1", is already in use.`, err.Error())
	assert.Equal(t, 1, m.Len())
}

func TestAllVariables_CreationOrder(t *testing.T) {
	m := variable.NewMap("test", nil)
	for i := 3; i > 0; i-- {
		m.CreateVariable(fmt.Sprintf("v%d", i), "", fmt.Sprintf("id%d", i))
	}
	m.DeleteVariableByID("id2")

	var ids []string
	for _, v := range m.AllVariables() {
		ids = append(ids, v.ID())
	}
	if diff := cmp.Diff([]string{"id3", "id1"}, ids); diff != "" {
		t.Errorf("AllVariables() ids mismatch (-want +got):\n%s", diff)
	}
}

func TestVariableTypes(t *testing.T) {
	m := variable.NewMap("test", nil)
	assert.Empty(t, m.VariableTypes())

	m.CreateVariable("a", "String", "id1")
	m.CreateVariable("b", "", "id2")
	m.CreateVariable("c", "Number", "id3")
	m.CreateVariable("d", "String", "id4")

	if diff := cmp.Diff([]string{"", "Number", "String"}, m.VariableTypes()); diff != "" {
		t.Errorf("VariableTypes() mismatch (-want +got):\n%s", diff)
	}
}

func TestClear(t *testing.T) {
	rec := &recorder{}
	m := variable.NewMap("test", rec)
	m.CreateVariable("a", "", "id1")

	m.Clear()
	m.Clear()

	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.AllVariables())
	_, err := m.CreateVariable("a", "", "id1")
	assert.ErrorIs(t, err, variable.ErrDuplicateID)
	if diff := cmp.Diff([]observability.EventType{variable.EventCreate, variable.EventClear}, rec.types()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestEvents(t *testing.T) {
	rec := &recorder{}
	m := variable.NewMap("ws-1", rec)

	m.CreateVariable("a", "", "id1")
	m.RenameVariableByID("id1", "b")
	m.RenameVariableByID("id1", "b")
	m.SetVariableType("id1", "Number")
	m.DeleteVariableByID("id1")
	m.CreateVariable("c", "", "id1")
	m.CreateVariable("c", "", "id2")
	m.CreateVariable("c", "", "id2")

	want := []observability.EventType{
		variable.EventCreate,
		variable.EventRename,
		variable.EventRetype,
		variable.EventDelete,
		variable.EventCreate,
	}
	if diff := cmp.Diff(want, rec.types()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	rename := rec.events[1]
	assert.Equal(t, "ws-1", rename.Source)
	assert.Equal(t, "a", rename.Data["old_name"])
	assert.Equal(t, "b", rename.Data["name"])
	assert.False(t, rename.Timestamp.IsZero())
}

func TestGenerateUniqueName(t *testing.T) {
	m := variable.NewMap("test", nil)
	assert.Equal(t, "i", variable.GenerateUniqueName(m))

	m.CreateVariable("i", "", "")
	m.CreateVariable("J", "Number", "")
	assert.Equal(t, "k", variable.GenerateUniqueName(m))

	for _, letter := range "ijkmnopqrstuvwxyzabcdefgh" {
		if _, ok := m.GetVariable(string(letter), ""); !ok {
			m.CreateVariable(string(letter), "", "")
		}
	}
	assert.Equal(t, "i1", variable.GenerateUniqueName(m))
}
