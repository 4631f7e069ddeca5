package properties

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/modelcore/pkg/types"
)

func TestDerivedUnionValue(t *testing.T) {
	f := newFixture(t)
	m, _, _ := f.newModel(t)
	a := m.MustCreate(f.node)
	x := m.MustCreate(f.node)
	y := m.MustCreate(f.node)
	z := m.MustCreate(f.node)

	assert.True(t, f.all.Value(a).IsEmpty())
	assert.True(t, f.all.Value(a).IsMany())

	require.NoError(t, f.children.Set(a, x))
	require.NoError(t, f.members.Set(a, x))
	require.NoError(t, f.members.Set(a, y))
	assert.Equal(t, []*Element{x, y}, f.all.Value(a).Items())

	cached := f.all.version
	require.NoError(t, f.children.Set(a, z))
	assert.Greater(t, f.all.version, cached, "a subset change invalidates the cache")
	assert.Equal(t, []*Element{x, z, y}, f.all.Value(a).Items())

	require.NoError(t, f.children.Delete(a, x))
	assert.Equal(t, []*Element{z, x, y}, f.all.Value(a).Items())
}

func TestDerivedUnionSuppressesDuplicates(t *testing.T) {
	f := newFixture(t)
	m, rec, _ := f.newModel(t)
	a := m.MustCreate(f.node)
	x := m.MustCreate(f.node)
	rec.reset()

	require.NoError(t, f.children.Set(a, x))
	require.NoError(t, f.members.Set(a, x))
	added := eventsOf[DerivedAdded](rec)
	require.Len(t, added, 1, "x reachable through two subsets is added once")
	assert.Same(t, x, added[0].New)
	assert.Same(t, a, added[0].Element())

	require.NoError(t, f.children.Delete(a, x))
	assert.Empty(t, eventsOf[DerivedDeleted](rec), "x is still a member")

	require.NoError(t, f.members.Delete(a, x))
	deleted := eventsOf[DerivedDeleted](rec)
	require.Len(t, deleted, 1)
	assert.Same(t, x, deleted[0].Old)
	assert.True(t, f.all.Value(a).IsEmpty())
}

func TestDerivedUnionReportsReorder(t *testing.T) {
	f := newFixture(t)
	m, rec, _ := f.newModel(t)
	a := m.MustCreate(f.node)
	x := m.MustCreate(f.node)
	y := m.MustCreate(f.node)
	require.NoError(t, f.children.Set(a, x))
	require.NoError(t, f.children.Set(a, y))
	rec.reset()

	require.NoError(t, f.children.Swap(a, x, y))

	assert.Len(t, eventsOf[DerivedUpdated](rec), 1)
	assert.Equal(t, []*Element{y, x}, f.all.Value(a).Items())
}

func TestDerivedSingleSuppressesAmbiguity(t *testing.T) {
	f := newFixture(t)
	m, rec, _ := f.newModel(t)
	a := m.MustCreate(f.node)
	x := m.MustCreate(f.node)
	y := m.MustCreate(f.node)
	rec.reset()

	require.NoError(t, f.left.Set(a, x))
	sets := derivedSets(rec, f.side)
	require.Len(t, sets, 1)
	assert.Nil(t, sets[0].Old)
	assert.Same(t, x, sets[0].New)

	require.NoError(t, f.right.Set(a, y))
	assert.Len(t, derivedSets(rec, f.side), 1, "two candidates: no event")

	require.NoError(t, f.left.Set(a, nil))
	sets = derivedSets(rec, f.side)
	require.Len(t, sets, 2)
	assert.Nil(t, sets[1].Old, "the previous state was ambiguous")
	assert.Same(t, y, sets[1].New)
	assert.Same(t, y, f.side.Get(a))

	require.NoError(t, f.right.Set(a, nil))
	sets = derivedSets(rec, f.side)
	require.Len(t, sets, 3)
	assert.Same(t, y, sets[2].Old)
	assert.Nil(t, sets[2].New)
}

func TestDerivedSingleSameValueThroughBothSubsets(t *testing.T) {
	f := newFixture(t)
	m, rec, _ := f.newModel(t)
	a := m.MustCreate(f.node)
	x := m.MustCreate(f.node)
	require.NoError(t, f.left.Set(a, x))
	rec.reset()

	require.NoError(t, f.right.Set(a, x))
	assert.Empty(t, derivedSets(rec, f.side), "value unchanged")

	require.NoError(t, f.left.Set(a, nil))
	assert.Empty(t, derivedSets(rec, f.side), "x is still reachable through right")
	assert.Same(t, x, f.side.Get(a))
}

func TestDerivedSingleOneSubsetMapsEvents(t *testing.T) {
	f := newFixture(t)
	m, rec, _ := f.newModel(t)
	a := m.MustCreate(f.node)
	x := m.MustCreate(f.node)
	z := m.MustCreate(f.node)
	rec.reset()

	require.NoError(t, f.left.Set(a, x))
	require.NoError(t, f.left.Set(a, z))
	require.NoError(t, f.left.Set(a, nil))

	sets := derivedSets(rec, f.only)
	require.Len(t, sets, 3)
	assert.Equal(t, []*Element{nil, x, z}, []*Element{sets[0].Old, sets[1].Old, sets[2].Old})
	assert.Equal(t, []*Element{x, z, nil}, []*Element{sets[0].New, sets[1].New, sets[2].New})
}

func TestDerivedFilter(t *testing.T) {
	f := newFixture(t)
	m, rec, _ := f.newModel(t)
	a := m.MustCreate(f.node)
	x := m.MustCreate(f.node)
	y := m.MustCreate(f.node)
	rec.reset()

	require.NoError(t, f.children.Set(a, x))
	require.NoError(t, f.children.Set(a, y))
	sets := derivedSets(rec, f.first)
	require.Len(t, sets, 1, "appending after the first child leaves the value alone")
	assert.Same(t, x, sets[0].New)

	require.NoError(t, f.children.Delete(a, x))
	sets = derivedSets(rec, f.first)
	require.Len(t, sets, 2)
	assert.Same(t, x, sets[1].Old)
	assert.Same(t, y, sets[1].New)
	assert.Same(t, y, f.first.Get(a))
}

func TestDerivedIsReadOnly(t *testing.T) {
	f := newFixture(t)
	m, _, _ := f.newModel(t)
	a := m.MustCreate(f.node)
	x := m.MustCreate(f.node)

	assert.ErrorIs(t, f.all.Set(a, x), types.ErrDerivedReadOnly)
	assert.ErrorIs(t, f.all.Delete(a, x), types.ErrDerivedReadOnly)
	assert.ErrorIs(t, f.all.Load(a, x), types.ErrDerivedReadOnly)
	assert.ErrorIs(t, a.Set("side", x), types.ErrDerivedReadOnly)
	assert.Empty(t, saved(f.all, a))
}

func TestDerivedPostloadInvalidates(t *testing.T) {
	f := newFixture(t)
	m, _, _ := f.newModel(t)
	a := m.MustCreate(f.node)
	x := m.MustCreate(f.node)

	restore := m.BlockEvents()
	require.NoError(t, f.children.Load(a, x))
	restore()
	before := f.all.version

	m.Postload()

	assert.Greater(t, f.all.version, before)
	assert.Equal(t, []*Element{x}, f.all.Value(a).Items())
}

func TestDerivedOnUnrelatedClassIsEmpty(t *testing.T) {
	f := newFixture(t)
	m, _, _ := f.newModel(t)
	b := m.MustCreate(f.block)

	assert.True(t, f.all.Value(b).IsEmpty())
	assert.Nil(t, f.side.Get(b))
}

func TestDerivedUnionWithReentrantObserver(t *testing.T) {
	type nodes struct{ a, x, y *Element }
	subsetChange := func(p Property) func(Event) bool {
		return func(ev Event) bool { return ev.Property() == p }
	}
	tests := []struct {
		name        string
		prepare     func(f *fixture, n nodes) error
		trigger     func(f *fixture, n nodes) error
		match       func(f *fixture) func(Event) bool
		react       func(f *fixture, n nodes) error
		wantAll     func(n nodes) []*Element
		wantAdded   func(n nodes) []*Element
		wantDeleted func(n nodes) []*Element
	}{
		{
			name:        "observer adds the element to another subset",
			trigger:     func(f *fixture, n nodes) error { return f.children.Set(n.a, n.x) },
			match:       func(f *fixture) func(Event) bool { return subsetChange(f.children) },
			react:       func(f *fixture, n nodes) error { return f.members.Set(n.a, n.x) },
			wantAll:     func(n nodes) []*Element { return []*Element{n.x} },
			wantAdded:   func(n nodes) []*Element { return []*Element{n.x} },
			wantDeleted: func(nodes) []*Element { return nil },
		},
		{
			name:        "observer reverts the change",
			trigger:     func(f *fixture, n nodes) error { return f.children.Set(n.a, n.x) },
			match:       func(f *fixture) func(Event) bool { return subsetChange(f.children) },
			react:       func(f *fixture, n nodes) error { return f.children.Delete(n.a, n.x) },
			wantAll:     func(nodes) []*Element { return nil },
			wantAdded:   func(nodes) []*Element { return nil },
			wantDeleted: func(nodes) []*Element { return nil },
		},
		{
			name:        "observer moves the element between subsets",
			prepare:     func(f *fixture, n nodes) error { return f.children.Set(n.a, n.x) },
			trigger:     func(f *fixture, n nodes) error { return f.children.Delete(n.a, n.x) },
			match:       func(f *fixture) func(Event) bool { return subsetChange(f.children) },
			react:       func(f *fixture, n nodes) error { return f.members.Set(n.a, n.x) },
			wantAll:     func(n nodes) []*Element { return []*Element{n.x} },
			wantAdded:   func(nodes) []*Element { return nil },
			wantDeleted: func(nodes) []*Element { return nil },
		},
		{
			name:    "observer of the union removes another element",
			prepare: func(f *fixture, n nodes) error { return f.members.Set(n.a, n.x) },
			trigger: func(f *fixture, n nodes) error { return f.children.Set(n.a, n.y) },
			match: func(f *fixture) func(Event) bool {
				return func(ev Event) bool {
					_, ok := ev.(DerivedAdded)
					return ok && ev.Property() == Property(f.all)
				}
			},
			react:       func(f *fixture, n nodes) error { return f.members.Delete(n.a, n.x) },
			wantAll:     func(n nodes) []*Element { return []*Element{n.y} },
			wantAdded:   func(n nodes) []*Element { return []*Element{n.y} },
			wantDeleted: func(n nodes) []*Element { return []*Element{n.x} },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			m, rec, _ := f.newModel(t)
			n := nodes{a: m.MustCreate(f.node), x: m.MustCreate(f.node), y: m.MustCreate(f.node)}
			if tt.prepare != nil {
				require.NoError(t, tt.prepare(f, n))
			}
			rec.reset()
			fired := reactOnce(t, m, tt.match(f), func() error { return tt.react(f, n) })

			require.NoError(t, tt.trigger(f, n))

			require.True(t, *fired)
			var added, deleted []*Element
			for _, ev := range rec.forProperty(f.all) {
				switch ev := ev.(type) {
				case DerivedAdded:
					added = append(added, ev.New)
				case DerivedDeleted:
					deleted = append(deleted, ev.Old)
				}
			}
			assert.Equal(t, tt.wantAdded(n), added, "added")
			assert.Equal(t, tt.wantDeleted(n), deleted, "deleted")
			assert.ElementsMatch(t, tt.wantAll(n), f.all.Value(n.a).Items())
		})
	}
}

func TestDerivedUnionWhileUnlinking(t *testing.T) {
	f := newFixture(t)
	m, rec, _ := f.newModel(t)
	a := m.MustCreate(f.node)
	x := m.MustCreate(f.node)
	y := m.MustCreate(f.node)
	require.NoError(t, f.children.Set(a, x))
	require.NoError(t, f.members.Set(a, y))
	require.NoError(t, f.left.Set(a, x))
	rec.reset()

	a.Unlink()

	var deleted []*Element
	for _, ev := range eventsOf[DerivedDeleted](rec) {
		if ev.Property() == Property(f.all) {
			deleted = append(deleted, ev.Old)
		}
	}
	assert.ElementsMatch(t, []*Element{x, y}, deleted)
	sets := derivedSets(rec, f.side)
	require.Len(t, sets, 1)
	assert.Same(t, x, sets[0].Old)
	assert.Nil(t, sets[0].New)
	assert.Nil(t, a.slots[f.all.slot], "unlinking releases the cached value")
	assert.Nil(t, a.slots[f.side.slot])
}

func derivedSets(r *recorder, p Property) []DerivedSet {
	var out []DerivedSet
	for _, ev := range r.forProperty(p) {
		if s, ok := ev.(DerivedSet); ok {
			out = append(out, s)
		}
	}
	return out
}
