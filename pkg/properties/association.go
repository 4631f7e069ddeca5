package properties

import (
	"github.com/mesh-intelligence/modelcore/pkg/collection"
	"github.com/mesh-intelligence/modelcore/pkg/types"
)

// Association is a reference from the owning class to a target class. It is
// single-valued when Upper is 1 and an ordered, duplicate-free list
// otherwise. Every link is mirrored on the target: through the declared
// opposite association, or through the association's Stub when there is
// none.
type Association struct {
	property
	target       *Class
	composite    bool
	oppositeName string
	opposite     *Association
	stub         *Stub
}

// AssociationOption configures an Association.
type AssociationOption func(*Association)

// Composite makes the owner responsible for the lifetime of its targets:
// unlinking the owner unlinks every linked target.
func Composite() AssociationOption {
	return func(a *Association) { a.composite = true }
}

// WithOpposite names the association on the target class that holds the
// reverse link. Both sides must name each other.
func WithOpposite(name string) AssociationOption {
	return func(a *Association) { a.oppositeName = name }
}

// NewAssociation declares an association to target with multiplicity
// lower..upper. Use Unbounded for a many-valued upper bound.
func NewAssociation(name string, target *Class, lower, upper int, opts ...AssociationOption) *Association {
	a := &Association{property: newProperty(name, lower, upper), target: target}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Association) validate() error {
	if a.target == nil {
		return errorf("SCHEMA_UNKNOWN_CLASS").
			With("property", a.name).
			Wrapf(types.ErrUnknownClass, "association %s has no target", a.name)
	}
	return validMultiplicity(&a.property)
}

func validMultiplicity(p *property) error {
	if p.lower < 0 || p.upper == 0 || p.upper < Unbounded || (p.upper != Unbounded && p.lower > p.upper) {
		return errorf("SCHEMA_MULTIPLICITY").
			With("property", p.name).
			With("lower", p.lower).
			With("upper", p.upper).
			Wrapf(types.ErrMultiplicity, "%s [%d..%d]", p.name, p.lower, p.upper)
	}
	return nil
}

// Target returns the class of the linked elements.
func (a *Association) Target() *Class { return a.target }

// IsComposite reports whether the owner owns its targets.
func (a *Association) IsComposite() bool { return a.composite }

// Opposite returns the reverse association, or nil when the reverse links
// are kept by a Stub.
func (a *Association) Opposite() *Association { return a.opposite }

// Stub returns the reverse-link tracker of an association without an
// opposite, or nil.
func (a *Association) Stub() *Stub { return a.stub }

// Value returns the linked elements of e.
func (a *Association) Value(e *Element) Value {
	if a.IsMany() {
		set := a.items(e)
		if set == nil {
			return manyValue(nil)
		}
		return manyValue(set.Items())
	}
	return singleValue(a.single(e))
}

// Get returns the linked element of a single-valued association, or the
// first element of a many-valued one.
func (a *Association) Get(e *Element) *Element {
	if a.IsMany() {
		if set := a.items(e); set != nil {
			v, _ := set.At(0)
			return v
		}
		return nil
	}
	return a.single(e)
}

// Set links value to e. A single-valued association replaces its current
// link; a many-valued one appends value unless already present. A nil value
// clears a single-valued association.
func (a *Association) Set(e *Element, value *Element) error {
	if err := checkWritable(&a.property, e); err != nil {
		return err
	}
	if value == nil {
		if a.IsMany() {
			return typeMismatch(&a.property, e, value)
		}
		return a.Delete(e, nil)
	}
	return a.set(e, value, false)
}

// Delete removes the link from e to value. Single-valued associations accept
// nil to remove whatever is linked; many-valued associations require a value.
// Deleting an element that is not linked does nothing.
func (a *Association) Delete(e *Element, value *Element) error {
	if err := checkWritable(&a.property, e); err != nil {
		return err
	}
	if value == nil {
		if a.IsMany() {
			return compositeDelete(&a.property)
		}
		value = a.single(e)
		if value == nil {
			return nil
		}
	}
	a.del(e, value, false, true)
	return nil
}

// Swap exchanges the positions of x and y in a many-valued association and
// emits AssociationUpdated.
func (a *Association) Swap(e, x, y *Element) error {
	if err := checkWritable(&a.property, e); err != nil {
		return err
	}
	if !a.IsMany() {
		return typeMismatch(&a.property, e, "swap")
	}
	set := a.items(e)
	if set == nil || !set.Swap(x, y) {
		return errorf("NOT_LINKED").
			With("property", a.qualifiedName()).
			With("element", e.String()).
			Wrapf(types.ErrNotLinked, "cannot swap %s and %s", x, y)
	}
	if x != y {
		a.notify(AssociationUpdated{change{element: e, property: a}})
	}
	return nil
}

// Unlink breaks every link of e, reciprocal included. Targets of a composite
// association are unlinked after their link is broken.
func (a *Association) Unlink(e *Element) {
	for _, v := range a.Value(e).items {
		a.del(e, v, false, true)
		if a.composite {
			v.Unlink()
		}
	}
	delete(e.loadOrder, a.slot)
}

// Save passes every linked element to save, in order.
func (a *Association) Save(e *Element, save SaveFunc) {
	for _, v := range a.Value(e).items {
		save(a.name, v)
	}
}

// Load links a saved element. When the opposite is single-valued and already
// points at another element, the link is refused with a warning so that a
// load stream cannot steal ownership.
func (a *Association) Load(e *Element, value any) error {
	if err := checkWritable(&a.property, e); err != nil {
		return err
	}
	v, ok := value.(*Element)
	if !ok || v == nil || !v.IsKindOf(a.target) {
		return typeMismatch(&a.property, e, value)
	}
	if a.opposite != nil && !a.opposite.IsMany() {
		if cur := a.opposite.single(v); cur != nil && cur != e {
			e.logger().Warn("refusing to steal opposite reference on load",
				"property", a.qualifiedName(),
				"element", e.String(),
				"value", v.String(),
				"current", cur.String())
			return nil
		}
	}
	if a.IsMany() {
		e.recordLoad(a.slot, v)
	}
	return a.set(e, v, false)
}

// Postload restores the load order of a many-valued association.
func (a *Association) Postload(e *Element) {
	order, ok := e.loadOrder[a.slot]
	if !ok {
		return
	}
	delete(e.loadOrder, a.slot)
	if set := a.items(e); set != nil {
		set.Reorder(order)
	}
}

func (a *Association) single(e *Element) *Element {
	v, _ := e.slots[a.slot].(*Element)
	return v
}

func (a *Association) items(e *Element) *collection.OrderedSet[*Element] {
	set, _ := e.slots[a.slot].(*collection.OrderedSet[*Element])
	return set
}

func (a *Association) contains(e, v *Element) bool {
	if a.IsMany() {
		set := a.items(e)
		return set != nil && set.Contains(v)
	}
	return v != nil && a.single(e) == v
}

// set links v to e. Unless fromOpposite, the reverse link is recorded on the
// opposite or the stub before the event is emitted. Callers have checked that
// e is live and carries a, and set checks v against both sides, so linking
// the opposite cannot fail.
func (a *Association) set(e, v *Element, fromOpposite bool) error {
	if v == e {
		return selfReference(&a.property, e)
	}
	if !v.IsKindOf(a.target) {
		return typeMismatch(&a.property, e, v)
	}
	if v.unlinked || v.unlinking {
		return unlinkedElement(&a.property, v)
	}
	if a.opposite != nil && (!e.IsKindOf(a.opposite.target) || !v.IsKindOf(a.opposite.owner)) {
		return typeMismatch(&a.property, e, v)
	}

	var ev Event
	if a.IsMany() {
		set := a.items(e)
		if set == nil {
			set = collection.New[*Element]()
			e.slots[a.slot] = set
		}
		if !set.Add(v) {
			return nil
		}
		ev = AssociationAdded{change: change{element: e, property: a}, New: v, Index: set.Len() - 1}
	} else {
		old := a.single(e)
		if old == v {
			return nil
		}
		if old != nil {
			a.del(e, old, false, false)
		}
		e.slots[a.slot] = v
		ev = AssociationSet{change: change{element: e, property: a}, Old: old, New: v}
	}

	if !fromOpposite {
		if a.opposite != nil {
			_ = a.opposite.set(v, e, true)
		} else {
			a.stub.add(v, e)
		}
	}
	a.notify(ev)
	return nil
}

// del removes the link from e to v. Unless fromOpposite, the reverse link is
// removed first.
func (a *Association) del(e, v *Element, fromOpposite, notify bool) {
	if !a.contains(e, v) {
		return
	}
	if !fromOpposite {
		if a.opposite != nil {
			a.opposite.del(v, e, true, true)
		} else if a.stub != nil {
			a.stub.remove(v, e)
		}
	}
	if a.IsMany() {
		set := a.items(e)
		idx, _ := set.Remove(v)
		if set.Len() == 0 {
			e.slots[a.slot] = nil
		}
		if notify {
			a.notify(AssociationDeleted{change: change{element: e, property: a}, Old: v, Index: idx})
		}
		return
	}
	e.slots[a.slot] = nil
	if notify {
		a.notify(AssociationSet{change: change{element: e, property: a}, Old: v})
	}
}
