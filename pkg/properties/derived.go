package properties

import (
	"github.com/samber/lo"

	"github.com/mesh-intelligence/modelcore/pkg/types"
)

// FilterFunc computes a derived value from the current values of the
// subsets, in subset order. Subsets not defined on e contribute an empty
// Value.
type FilterFunc func(e *Element, subsets []Value) []*Element

// DerivedUnion is a read-only reference computed from other references, its
// subsets. Without a filter the value is the ordered union of the subset
// values. Values are cached per element and invalidated by a version counter
// that every subset change bumps. Events are derived by comparing the value
// after a subset change with the value last reported for the element.
type DerivedUnion struct {
	property
	target  *Class
	subsets []Reference
	filter  FilterFunc
	version uint64
}

type derivedCache struct {
	data    Value
	version uint64

	// reported is the value as of the last propagated change.
	reported []*Element
}

// NewDerivedUnion declares the union of subsets.
func NewDerivedUnion(name string, target *Class, lower, upper int, subsets ...Reference) *DerivedUnion {
	return &DerivedUnion{
		property: newProperty(name, lower, upper),
		target:   target,
		subsets:  subsets,
	}
}

// NewDerived declares a derived reference computed by filter. Changes are
// reported as DerivedUpdated, or as DerivedSet when single-valued.
func NewDerived(name string, target *Class, lower, upper int, filter FilterFunc, subsets ...Reference) *DerivedUnion {
	d := NewDerivedUnion(name, target, lower, upper, subsets...)
	d.filter = filter
	return d
}

// Include adds subsets, typically ones declared on classes defined after the
// union. It fails once the schema is frozen.
func (d *DerivedUnion) Include(subsets ...Reference) error {
	if d.owner != nil && d.owner.schema.frozen {
		return schemaFrozen(d.qualifiedName())
	}
	d.subsets = append(d.subsets, subsets...)
	return nil
}

// MustInclude is Include, panicking on error.
func (d *DerivedUnion) MustInclude(subsets ...Reference) {
	if err := d.Include(subsets...); err != nil {
		panic(err)
	}
}

func (d *DerivedUnion) validate() error {
	if d.target == nil {
		return errorf("SCHEMA_UNKNOWN_CLASS").
			With("property", d.name).
			Wrapf(types.ErrUnknownClass, "derived %s has no target", d.name)
	}
	return validMultiplicity(&d.property)
}

// Target returns the class of the derived elements.
func (d *DerivedUnion) Target() *Class { return d.target }

// Subsets returns the references the value is computed from.
func (d *DerivedUnion) Subsets() []Reference {
	out := make([]Reference, len(d.subsets))
	copy(out, d.subsets)
	return out
}

// Value returns the derived value of e, recomputing it when the cached one is
// stale. A single-valued union with more than one candidate yields the first
// and logs a warning.
func (d *DerivedUnion) Value(e *Element) Value {
	if d.owner == nil || !e.IsKindOf(d.owner) {
		return d.wrap(nil)
	}
	c, _ := e.slots[d.slot].(*derivedCache)
	if c != nil && c.version == d.version {
		return c.data
	}
	items := d.compute(e)
	if !d.IsMany() && len(items) > 1 {
		e.logger().Warn("derived union has more than one value",
			"property", d.qualifiedName(),
			"element", e.String(),
			"count", len(items))
	}
	v := d.wrap(items)
	if e.unlinking || e.unlinked {
		return v
	}
	if c == nil {
		c = &derivedCache{}
		e.slots[d.slot] = c
	}
	c.data, c.version = v, d.version
	return v
}

// Get returns the single derived element, or the first of a many-valued one.
func (d *DerivedUnion) Get(e *Element) *Element {
	return d.Value(e).One()
}

// Set always fails: derived properties are read-only.
func (d *DerivedUnion) Set(*Element, *Element) error { return readOnly(&d.property) }

// Delete always fails: derived properties are read-only.
func (d *DerivedUnion) Delete(*Element, *Element) error { return readOnly(&d.property) }

// Unlink drops the cached value.
func (d *DerivedUnion) Unlink(e *Element) {
	e.slots[d.slot] = nil
}

// Save does nothing: derived values are recomputed on load.
func (d *DerivedUnion) Save(*Element, SaveFunc) {}

// Load always fails: derived properties are read-only.
func (d *DerivedUnion) Load(*Element, any) error { return readOnly(&d.property) }

// Postload invalidates every cached value.
func (d *DerivedUnion) Postload(*Element) {
	d.version++
}

func (d *DerivedUnion) wrap(items []*Element) Value {
	if d.IsMany() {
		return manyValue(items)
	}
	if len(items) == 0 {
		return Value{}
	}
	return singleValue(items[0])
}

func (d *DerivedUnion) subsetValues(e *Element) []Value {
	return lo.Map(d.subsets, func(s Reference, _ int) Value {
		if s.Owner() == nil || !e.IsKindOf(s.Owner()) {
			return Value{}
		}
		return s.Value(e)
	})
}

func (d *DerivedUnion) compute(e *Element) []*Element {
	values := d.subsetValues(e)
	if d.filter != nil {
		return d.filter(e, values)
	}
	return union(values)
}

func union(values []Value) []*Element {
	return lo.Uniq(lo.FlatMap(values, func(v Value, _ int) []*Element {
		return v.items
	}))
}

// propagate turns a change of a subset into the apparent change of the
// union. The new value is recorded before any event goes out, so an observer
// that changes a subset again while handling one is diffed against the value
// it saw.
func (d *DerivedUnion) propagate(ev Event) {
	d.version++
	e := ev.Element()
	if d.owner == nil || !e.IsKindOf(d.owner) {
		return
	}
	kind, old, now, ok := referenceDelta(ev)
	if !ok {
		return
	}
	before := d.before(e, ev.Property(), kind, old, now)
	current := d.compute(e)
	if !e.unlinking {
		d.record(e, current)
	}
	switch {
	case !d.IsMany():
		d.propagateSingle(e, before, current)
	case d.filter != nil || kind == deltaUpdated:
		d.notify(DerivedUpdated{change{element: e, property: d}})
	default:
		d.propagateMany(e, before, current)
	}
}

// before returns the value last reported for e. An element that never saw a
// change reports the empty value. Nothing is recorded while e is being
// unlinked, so the value is rebuilt by undoing the change on the changed
// subset.
func (d *DerivedUnion) before(e *Element, changed Property, kind deltaKind, old, now *Element) []*Element {
	if !e.unlinking {
		if c, ok := e.slots[d.slot].(*derivedCache); ok {
			return c.reported
		}
		return nil
	}
	values := d.subsetValues(e)
	for i, s := range d.subsets {
		if Property(s) != changed {
			continue
		}
		items := values[i].Items()
		switch kind {
		case deltaAdded:
			items = lo.Without(items, now)
		case deltaDeleted:
			items = append(items, old)
		case deltaSet:
			items = lo.Without(items, now)
			if old != nil {
				items = append(items, old)
			}
		}
		values[i] = Value{many: values[i].many, items: items}
	}
	if d.filter != nil {
		return d.filter(e, values)
	}
	return union(values)
}

func (d *DerivedUnion) record(e *Element, current []*Element) {
	c, ok := e.slots[d.slot].(*derivedCache)
	if !ok {
		c = &derivedCache{}
		e.slots[d.slot] = c
	}
	c.data, c.version, c.reported = d.wrap(current), d.version, current
}

func (d *DerivedUnion) propagateMany(e *Element, before, current []*Element) {
	for _, x := range before {
		if !lo.Contains(current, x) {
			d.notify(DerivedDeleted{change: change{element: e, property: d}, Old: x})
		}
	}
	for _, x := range current {
		if !lo.Contains(before, x) {
			d.notify(DerivedAdded{change: change{element: e, property: d}, New: x})
		}
	}
}

// propagateSingle emits DerivedSet only when the union is unambiguous now. An
// ambiguous previous value is reported as a nil Old.
func (d *DerivedUnion) propagateSingle(e *Element, before, current []*Element) {
	if len(current) > 1 {
		return
	}
	var oldValue, newValue *Element
	if len(before) == 1 {
		oldValue = before[0]
	}
	if len(current) == 1 {
		newValue = current[0]
	}
	if oldValue != newValue {
		d.notify(DerivedSet{change: change{element: e, property: d}, Old: oldValue, New: newValue})
	}
}
