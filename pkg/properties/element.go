package properties

import (
	"log/slog"

	"github.com/mesh-intelligence/modelcore/pkg/types"
)

// Element is a model entity. It owns one storage slot per storing property of
// its schema; descriptors read and write those slots. Elements are created by
// a Model.
type Element struct {
	id    string
	class *Class
	model *Model
	slots []any

	// loadOrder records the order in which values were loaded into
	// many-valued associations, keyed by slot, until Postload.
	loadOrder map[int][]*Element

	unlinking bool
	unlinked  bool
}

func newElement(m *Model, class *Class, id string) *Element {
	return &Element{
		id:    id,
		class: class,
		model: m,
		slots: make([]any, class.schema.slots),
	}
}

// ID returns the element's identifier.
func (e *Element) ID() string { return e.id }

// Class returns the element's class.
func (e *Element) Class() *Class { return e.class }

// Model returns the model that created the element.
func (e *Element) Model() *Model { return e.model }

// IsKindOf reports whether the element's class is c or inherits from it.
func (e *Element) IsKindOf(c *Class) bool { return e != nil && e.class.IsKindOf(c) }

// IsUnlinked reports whether Unlink has run.
func (e *Element) IsUnlinked() bool { return e.unlinked }

// String returns "Class:id".
func (e *Element) String() string {
	if e == nil {
		return "<nil>"
	}
	return e.class.name + ":" + e.id
}

// Unlink destroys the element. Every property releases its storage and breaks
// reciprocal links, composite targets are unlinked in turn, and elements that
// still point here through an association without an opposite drop the link.
// Unlink runs once; later calls do nothing.
func (e *Element) Unlink() {
	if e.unlinking || e.unlinked {
		return
	}
	e.unlinking = true
	for _, p := range e.class.all {
		p.Unlink(e)
	}
	for _, st := range e.class.schema.stubs {
		st.unlink(e)
	}
	e.loadOrder = nil
	e.unlinking = false
	e.unlinked = true
	if e.model != nil {
		e.model.forget(e)
	}
	e.dispatch(ElementDeleted{change{element: e}})
}

// Get returns the value of the named property: the effective value for
// attributes and enumerations, a Value for references.
func (e *Element) Get(name string) (any, error) {
	p, err := e.property(name)
	if err != nil {
		return nil, err
	}
	switch p := p.(type) {
	case *Attribute:
		return p.Get(e), nil
	case *Enumeration:
		return p.Get(e), nil
	case Reference:
		return p.Value(e), nil
	}
	return nil, notFound(e, name)
}

// Set assigns value to the named property. References take an *Element; a
// nil value clears a single-valued property.
func (e *Element) Set(name string, value any) error {
	p, err := e.property(name)
	if err != nil {
		return err
	}
	switch p := p.(type) {
	case *Attribute:
		return p.Set(e, value)
	case *Enumeration:
		if value == nil {
			return p.Delete(e)
		}
		s, ok := value.(string)
		if !ok {
			return typeMismatch(&p.property, e, value)
		}
		return p.Set(e, s)
	case linker:
		v, ok := asElement(value)
		if !ok {
			return typeMismatch(p.base(), e, value)
		}
		return p.Set(e, v)
	}
	return notFound(e, name)
}

// Delete removes value from the named property. Attributes and enumerations
// ignore value and reset to their default.
func (e *Element) Delete(name string, value any) error {
	p, err := e.property(name)
	if err != nil {
		return err
	}
	switch p := p.(type) {
	case *Attribute:
		return p.Delete(e)
	case *Enumeration:
		return p.Delete(e)
	case linker:
		v, ok := asElement(value)
		if !ok {
			return typeMismatch(p.base(), e, value)
		}
		return p.Delete(e, v)
	}
	return notFound(e, name)
}

// linker is implemented by the reference properties that accept writes.
type linker interface {
	Property
	Set(e *Element, value *Element) error
	Delete(e *Element, value *Element) error
}

func asElement(value any) (*Element, bool) {
	if value == nil {
		return nil, true
	}
	v, ok := value.(*Element)
	return v, ok
}

func (e *Element) property(name string) (Property, error) {
	if p, ok := e.class.Property(name); ok {
		return p, nil
	}
	return nil, notFound(e, name)
}

func notFound(e *Element, name string) error {
	return errorf("PROPERTY_NOT_FOUND").
		With("element", e.String()).
		With("property", name).
		Wrapf(types.ErrPropertyNotFound, "%s has no property %s", e.class.name, name)
}

func (e *Element) recordLoad(slot int, v *Element) {
	if e.loadOrder == nil {
		e.loadOrder = make(map[int][]*Element)
	}
	e.loadOrder[slot] = append(e.loadOrder[slot], v)
}

func (e *Element) dispatch(ev Event) {
	if e.model != nil {
		e.model.dispatch(ev)
	}
}

func (e *Element) logger() *slog.Logger {
	if e.model != nil {
		return e.model.logger
	}
	return slog.Default()
}
