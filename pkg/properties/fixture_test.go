package properties

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixture is a small schema exercising every property kind.
//
//	Base (abstract)
//	Block < Base: owns <>-> Block (composite, opposite ownedBy), name, count, kind
//	Comment < Base: annotated -> Block (no opposite)
//	Node < Base: left, right -> Node; children, members -> Node (no opposites)
//	             all = children | members, side = left | right, only = left,
//	             first = first of children
//	Special < Node: specialChildren redefines children with target Special
//	Sibling < Node
type fixture struct {
	schema *Schema

	base, block, comment, node, special, sibling *Class

	owns, ownedBy *Association
	name, count   *Attribute
	kind          *Enumeration
	annotated     *Association

	left, right, children, members *Association
	all, side, only, first         *DerivedUnion
	specialChildren                *Redefinition
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{schema: NewSchema()}
	s := f.schema

	f.base = s.MustClass("Base").Abstract()
	f.block = s.MustClass("Block", f.base)
	f.comment = s.MustClass("Comment", f.base)
	f.node = s.MustClass("Node", f.base)
	f.special = s.MustClass("Special", f.node)
	f.sibling = s.MustClass("Sibling", f.node)

	f.owns = NewAssociation("owns", f.block, 0, Unbounded, Composite(), WithOpposite("ownedBy"))
	f.ownedBy = NewAssociation("ownedBy", f.block, 0, 1, WithOpposite("owns"))
	f.name = NewAttribute("name", String, nil)
	f.count = NewAttribute("count", Int, 0)
	f.kind = NewEnumeration("kind", []string{"initial", "final"}, "initial")
	f.block.MustRegister(f.owns, f.ownedBy, f.name, f.count, f.kind)

	f.annotated = NewAssociation("annotated", f.block, 0, Unbounded)
	f.comment.MustRegister(f.annotated)

	f.left = NewAssociation("left", f.node, 0, 1)
	f.right = NewAssociation("right", f.node, 0, 1)
	f.children = NewAssociation("children", f.node, 0, Unbounded)
	f.members = NewAssociation("members", f.node, 0, Unbounded)
	f.all = NewDerivedUnion("all", f.node, 0, Unbounded, f.children, f.members)
	f.side = NewDerivedUnion("side", f.node, 0, 1, f.left, f.right)
	f.only = NewDerivedUnion("only", f.node, 0, 1, f.left)
	f.first = NewDerived("first", f.node, 0, 1, func(_ *Element, values []Value) []*Element {
		if v := values[0].One(); v != nil {
			return []*Element{v}
		}
		return nil
	}, f.children)
	f.node.MustRegister(f.left, f.right, f.children, f.members, f.all, f.side, f.only, f.first)

	f.specialChildren = NewRedefinition("specialChildren", f.special, f.children)
	f.special.MustRegister(f.specialChildren)

	require.NoError(t, s.Freeze())
	return f
}

// newModel returns a model over the fixture schema, a recorder subscribed to
// it, and the buffer the model logs into.
func (f *fixture) newModel(t *testing.T) (*Model, *recorder, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m, err := NewModel(f.schema, WithLogger(logger))
	require.NoError(t, err)
	rec := &recorder{}
	m.Subscribe(rec)
	return m, rec, &buf
}

type recorder struct {
	events []Event
}

func (r *recorder) Handle(ev Event) { r.events = append(r.events, ev) }

func (r *recorder) reset() { r.events = nil }

// forProperty returns the recorded events about p.
func (r *recorder) forProperty(p Property) []Event {
	var out []Event
	for _, ev := range r.events {
		if ev.Property() == p {
			out = append(out, ev)
		}
	}
	return out
}

// eventsOf returns the recorded events of type T.
func eventsOf[T Event](r *recorder) []T {
	var out []T
	for _, ev := range r.events {
		if v, ok := ev.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// reactOnce subscribes an observer that runs fn on the first event matching
// match. The returned flag reports whether it ran.
func reactOnce(t *testing.T, m *Model, match func(Event) bool, fn func() error) *bool {
	t.Helper()
	fired := new(bool)
	m.Subscribe(ObserverFunc(func(ev Event) {
		if *fired || !match(ev) {
			return
		}
		*fired = true
		require.NoError(t, fn())
	}))
	return fired
}
