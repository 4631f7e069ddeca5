package properties

// Event is an immutable change notification. Element is the element whose
// property changed; Property is nil for lifecycle events.
type Event interface {
	Element() *Element
	Property() Property
}

// Observer receives events synchronously on the goroutine that caused them.
type Observer interface {
	Handle(ev Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ev Event)

// Handle calls f(ev).
func (f ObserverFunc) Handle(ev Event) { f(ev) }

type change struct {
	element  *Element
	property Property
}

func (c change) Element() *Element { return c.element }
func (c change) Property() Property { return c.property }

// AttributeUpdated reports a changed attribute or enumeration value. Old and
// New are effective values, defaults included.
type AttributeUpdated struct {
	change
	Old, New any
}

// AssociationSet reports a replaced single-valued association. New is nil
// when the link was removed.
type AssociationSet struct {
	change
	Old, New *Element
}

// AssociationAdded reports an element appended to a many-valued association.
type AssociationAdded struct {
	change
	New   *Element
	Index int
}

// AssociationDeleted reports an element removed from a many-valued
// association, with the index it occupied.
type AssociationDeleted struct {
	change
	Old   *Element
	Index int
}

// AssociationUpdated reports a reordering of a many-valued association.
type AssociationUpdated struct {
	change
}

// DerivedSet reports a new value of a single-valued derived union.
type DerivedSet struct {
	change
	Old, New *Element
}

// DerivedAdded reports an element that became part of a derived union.
type DerivedAdded struct {
	change
	New *Element
}

// DerivedDeleted reports an element that is no longer part of a derived union.
type DerivedDeleted struct {
	change
	Old *Element
}

// DerivedUpdated reports that a derived value changed in a way that is not
// expressed as single additions or removals.
type DerivedUpdated struct {
	change
}

// RedefinedSet mirrors an AssociationSet or DerivedSet of the redefined
// property.
type RedefinedSet struct {
	change
	Old, New *Element
}

// RedefinedAdded mirrors an addition to the redefined property.
type RedefinedAdded struct {
	change
	New *Element
}

// RedefinedDeleted mirrors a removal from the redefined property.
type RedefinedDeleted struct {
	change
	Old *Element
}

// RedefinedUpdated mirrors a reordering or recomputation of the redefined
// property.
type RedefinedUpdated struct {
	change
}

// ElementCreated reports an element created by a Model.
type ElementCreated struct {
	change
}

// ElementDeleted reports an element that has been unlinked.
type ElementDeleted struct {
	change
}

type deltaKind int

const (
	deltaSet deltaKind = iota
	deltaAdded
	deltaDeleted
	deltaUpdated
)

// referenceDelta reduces an element-valued event to its shape.
func referenceDelta(ev Event) (deltaKind, *Element, *Element, bool) {
	switch ev := ev.(type) {
	case AssociationSet:
		return deltaSet, ev.Old, ev.New, true
	case DerivedSet:
		return deltaSet, ev.Old, ev.New, true
	case RedefinedSet:
		return deltaSet, ev.Old, ev.New, true
	case AssociationAdded:
		return deltaAdded, nil, ev.New, true
	case DerivedAdded:
		return deltaAdded, nil, ev.New, true
	case RedefinedAdded:
		return deltaAdded, nil, ev.New, true
	case AssociationDeleted:
		return deltaDeleted, ev.Old, nil, true
	case DerivedDeleted:
		return deltaDeleted, ev.Old, nil, true
	case RedefinedDeleted:
		return deltaDeleted, ev.Old, nil, true
	case AssociationUpdated, DerivedUpdated, RedefinedUpdated:
		return deltaUpdated, nil, nil, true
	}
	return 0, nil, nil, false
}
