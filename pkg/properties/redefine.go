package properties

import (
	"github.com/mesh-intelligence/modelcore/pkg/types"
)

// Redefinition narrows an inherited reference for a more specific class. It
// has no storage of its own: reads and writes go to the original property,
// and changes of the original on elements of the redefining class are
// mirrored as Redefined events.
type Redefinition struct {
	property
	target   *Class
	original Reference
}

// NewRedefinition declares a redefinition of original whose values are of
// type target. The owning class passed to Register is the class the
// redefinition applies to.
func NewRedefinition(name string, target *Class, original Reference) *Redefinition {
	r := &Redefinition{property: newProperty(name, 0, 1), target: target, original: original}
	if original != nil {
		r.lower, r.upper = original.Lower(), original.Upper()
	}
	return r
}

func (r *Redefinition) validate() error {
	if r.original == nil {
		return errorf("SCHEMA_UNKNOWN_ORIGINAL").
			With("property", r.name).
			Wrapf(types.ErrPropertyNotFound, "redefinition %s has no original", r.name)
	}
	if r.target == nil || !r.target.IsKindOf(r.original.Target()) {
		return errorf("SCHEMA_INVALID_REDEFINITION").
			With("property", r.name).
			Wrapf(types.ErrTypeMismatch, "%s must narrow the type of %s", r.name, r.original.Name())
	}
	return nil
}

// Target returns the narrowed type.
func (r *Redefinition) Target() *Class { return r.target }

// Original returns the redefined property.
func (r *Redefinition) Original() Reference { return r.original }

// redefines reports whether p is the original of r, directly or through a
// chain of redefinitions.
func (r *Redefinition) redefines(p Property) bool {
	for o := r.original; o != nil; {
		if Property(o) == p {
			return true
		}
		next, ok := o.(*Redefinition)
		if !ok {
			return false
		}
		o = next.original
	}
	return false
}

// Value returns the value of the original on e.
func (r *Redefinition) Value(e *Element) Value {
	if r.owner == nil || !e.IsKindOf(r.owner) {
		return Value{many: r.IsMany()}
	}
	return r.original.Value(e)
}

// Get returns the single value, or the first of a many-valued original.
func (r *Redefinition) Get(e *Element) *Element {
	return r.Value(e).One()
}

// Set writes value through the original.
func (r *Redefinition) Set(e *Element, value *Element) error {
	if err := r.check(e, value); err != nil {
		return err
	}
	w, ok := r.original.(linker)
	if !ok {
		return readOnly(&r.property)
	}
	return w.Set(e, value)
}

// Delete removes value through the original.
func (r *Redefinition) Delete(e *Element, value *Element) error {
	if err := r.check(e, value); err != nil {
		return err
	}
	w, ok := r.original.(linker)
	if !ok {
		return readOnly(&r.property)
	}
	return w.Delete(e, value)
}

func (r *Redefinition) check(e, value *Element) error {
	if err := checkWritable(&r.property, e); err != nil {
		return err
	}
	if value != nil && !value.IsKindOf(r.target) {
		return typeMismatch(&r.property, e, value)
	}
	return nil
}

// Unlink unlinks the original.
func (r *Redefinition) Unlink(e *Element) {
	r.original.Unlink(e)
}

// Save does nothing: the original saves the shared values.
func (r *Redefinition) Save(*Element, SaveFunc) {}

// Load restores a value through the original.
func (r *Redefinition) Load(e *Element, value any) error {
	if err := checkWritable(&r.property, e); err != nil {
		return err
	}
	if v, ok := value.(*Element); !ok || !v.IsKindOf(r.target) {
		return typeMismatch(&r.property, e, value)
	}
	return r.original.Load(e, value)
}

// Postload does nothing for redefinitions.
func (r *Redefinition) Postload(*Element) {}

// propagate mirrors changes of the original on elements of the redefining
// class.
func (r *Redefinition) propagate(ev Event) {
	if ev.Property() != Property(r.original) {
		return
	}
	e := ev.Element()
	if !e.IsKindOf(r.owner) {
		return
	}
	kind, old, now, ok := referenceDelta(ev)
	if !ok {
		return
	}
	c := change{element: e, property: r}
	switch kind {
	case deltaSet:
		r.notify(RedefinedSet{change: c, Old: old, New: now})
	case deltaAdded:
		r.notify(RedefinedAdded{change: c, New: now})
	case deltaDeleted:
		r.notify(RedefinedDeleted{change: c, Old: old})
	case deltaUpdated:
		r.notify(RedefinedUpdated{c})
	}
}
