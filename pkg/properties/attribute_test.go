package properties

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/modelcore/pkg/types"
)

func saved(p Property, e *Element) []any {
	var out []any
	p.Save(e, func(_ string, v any) { out = append(out, v) })
	return out
}

func TestAttributeSetAndDefault(t *testing.T) {
	f := newFixture(t)
	m, rec, _ := f.newModel(t)
	b := m.MustCreate(f.block)
	rec.reset()

	assert.Equal(t, "", f.name.Get(b))
	assert.Empty(t, saved(f.name, b), "default is not stored")

	require.NoError(t, f.name.Set(b, "engine"))
	require.NoError(t, f.name.Set(b, "engine"))
	assert.Equal(t, "engine", f.name.Get(b))
	assert.Equal(t, []any{"engine"}, saved(f.name, b))

	events := eventsOf[AttributeUpdated](rec)
	require.Len(t, events, 1, "identical set emits once")
	assert.Equal(t, "", events[0].Old)
	assert.Equal(t, "engine", events[0].New)
	assert.Same(t, b, events[0].Element())

	require.NoError(t, f.name.Set(b, ""))
	assert.Empty(t, saved(f.name, b), "setting the default clears storage")
	assert.Len(t, eventsOf[AttributeUpdated](rec), 2)
}

func TestAttributeDelete(t *testing.T) {
	f := newFixture(t)
	m, rec, _ := f.newModel(t)
	b := m.MustCreate(f.block)

	require.NoError(t, f.count.Set(b, int64(7)))
	assert.Equal(t, 7, f.count.Get(b))
	rec.reset()

	require.NoError(t, f.count.Delete(b))
	assert.Equal(t, 0, f.count.Get(b))
	require.NoError(t, f.count.Delete(b))
	require.Len(t, rec.events, 1)
	ev := rec.events[0].(AttributeUpdated)
	assert.Equal(t, 7, ev.Old)
	assert.Equal(t, 0, ev.New)
}

func TestAttributeSetIsStrict(t *testing.T) {
	f := newFixture(t)
	m, _, _ := f.newModel(t)
	b := m.MustCreate(f.block)

	tests := []struct {
		name  string
		attr  *Attribute
		value any
	}{
		{"int into string", f.name, 3},
		{"string into int", f.count, "3"},
		{"legacy bool spelling", f.count, "True"},
		{"float into int", f.count, 2.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.attr.Get(b)
			err := tt.attr.Set(b, tt.value)
			assert.ErrorIs(t, err, types.ErrTypeMismatch)
			assert.Equal(t, before, tt.attr.Get(b))
		})
	}
}

func TestAttributeLoadCoercion(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    int
		wantErr bool
	}{
		{"True", "True", 1, false},
		{"False", "False", 0, false},
		{"one", "1", 1, false},
		{"zero", "0", 0, false},
		{"decimal", " 42 ", 42, false},
		{"json number", float64(12), 12, false},
		{"bool", true, 1, false},
		{"int", 5, 5, false},
		{"fraction", 2.5, 0, true},
		{"word", "many", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			m, _, _ := f.newModel(t)
			b := m.MustCreate(f.block)

			err := f.count.Load(b, tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrTypeMismatch)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.count.Get(b))
		})
	}
}

func TestEnumerationScenario(t *testing.T) {
	f := newFixture(t)
	m, rec, _ := f.newModel(t)
	x := m.MustCreate(f.block)
	rec.reset()

	assert.Equal(t, "initial", f.kind.Get(x))

	require.NoError(t, f.kind.Set(x, "final"))
	events := eventsOf[AttributeUpdated](rec)
	require.Len(t, events, 1)
	assert.Equal(t, "initial", events[0].Old)
	assert.Equal(t, "final", events[0].New)

	err := f.kind.Set(x, "bogus")
	assert.ErrorIs(t, err, types.ErrTypeMismatch)
	assert.Equal(t, "final", f.kind.Get(x))
	assert.Len(t, rec.events, 1)
}

func TestEnumerationLoadAndSave(t *testing.T) {
	f := newFixture(t)
	m, _, _ := f.newModel(t)
	x := m.MustCreate(f.block)

	require.NoError(t, f.kind.Load(x, "final"))
	assert.Equal(t, []any{"final"}, saved(f.kind, x))
	assert.ErrorIs(t, f.kind.Load(x, 1), types.ErrTypeMismatch)
	assert.ErrorIs(t, f.kind.Load(x, "bogus"), types.ErrTypeMismatch)

	require.NoError(t, f.kind.Delete(x))
	assert.Equal(t, "initial", f.kind.Get(x))
	assert.Empty(t, saved(f.kind, x))
	assert.Equal(t, []string{"initial", "final"}, f.kind.Values())
}

func TestAttributeUnlinkResets(t *testing.T) {
	f := newFixture(t)
	m, rec, _ := f.newModel(t)
	b := m.MustCreate(f.block)
	require.NoError(t, f.name.Set(b, "gone"))
	require.NoError(t, f.kind.Set(b, "final"))
	rec.reset()

	b.Unlink()

	assert.Equal(t, "", f.name.Get(b))
	assert.Equal(t, "initial", f.kind.Get(b))
	assert.Len(t, eventsOf[AttributeUpdated](rec), 2)
	assert.ErrorIs(t, f.name.Set(b, "again"), types.ErrElementUnlinked)
}

func TestAttributeOnForeignClass(t *testing.T) {
	f := newFixture(t)
	m, _, _ := f.newModel(t)
	n := m.MustCreate(f.node)

	assert.ErrorIs(t, f.name.Set(n, "x"), types.ErrTypeMismatch)
}

func TestScalarLoadRequiresWritableElement(t *testing.T) {
	f := newFixture(t)
	m, rec, _ := f.newModel(t)
	dead := m.MustCreate(f.block)
	dead.Unlink()
	n := m.MustCreate(f.node)
	rec.reset()

	tests := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{"string on unlinked element", func() error { return f.name.Load(dead, "ghost") }, types.ErrElementUnlinked},
		{"legacy int on unlinked element", func() error { return f.count.Load(dead, "True") }, types.ErrElementUnlinked},
		{"enumeration on unlinked element", func() error { return f.kind.Load(dead, "final") }, types.ErrElementUnlinked},
		{"string on foreign class", func() error { return f.name.Load(n, "x") }, types.ErrTypeMismatch},
		{"enumeration on foreign class", func() error { return f.kind.Load(n, "final") }, types.ErrTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), tt.wantErr)
		})
	}

	assert.Equal(t, "", f.name.Get(dead))
	assert.Equal(t, 0, f.count.Get(dead))
	assert.Equal(t, "initial", f.kind.Get(dead))
	assert.Nil(t, n.slots[f.name.slot], "a foreign element keeps its storage untouched")
	assert.Nil(t, n.slots[f.kind.slot])
	assert.Empty(t, rec.events)
}
