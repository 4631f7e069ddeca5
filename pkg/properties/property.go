// Package properties implements the reactive property and association engine
// that every model element is built on: typed attributes, enumerations,
// bidirectional (optionally composite) associations, derived unions, and
// redefinitions, all kept mutually consistent and reported through change
// events.
//
// A Schema is declared once at startup: classes are created, properties are
// registered on them, and Freeze resolves opposites and wires the dependency
// edges between derived properties and the properties they are computed from.
// Elements are created through a Model built on a frozen schema. Descriptors
// are stateless and shared per class; per-element state lives in slots on the
// Element.
//
// The engine is single-threaded and synchronous. A Model and its elements are
// not safe for concurrent use.
package properties

// Unbounded is the upper multiplicity bound of a many-valued property.
const Unbounded = -1

// SaveFunc receives one stored value of a property during Save. Many-valued
// associations call it once per linked element, in order.
type SaveFunc func(name string, value any)

// Property is the contract shared by every descriptor kind.
type Property interface {
	// Name returns the property name, unique within its owning class.
	Name() string

	// Owner returns the class the property is registered on, or nil before
	// registration.
	Owner() *Class

	// Lower and Upper return the multiplicity bounds. Upper is Unbounded for
	// many-valued properties.
	Lower() int
	Upper() int

	// IsMany reports whether the property holds an ordered collection.
	IsMany() bool

	// Unlink releases the property's storage on e. It is called once when e
	// is destroyed.
	Unlink(e *Element)

	// Save passes every stored (non-default) value of e to save.
	Save(e *Element, save SaveFunc)

	// Load restores one saved value on e.
	Load(e *Element, value any) error

	// Postload runs after a complete load pass.
	Postload(e *Element)

	base() *property
}

// Reference is implemented by the element-valued properties: associations,
// derived unions, and redefinitions.
type Reference interface {
	Property

	// Target returns the declared type of the referenced elements.
	Target() *Class

	// Value returns the current value on e. It never fails; absent storage
	// yields an empty value.
	Value(e *Element) Value
}

// propagator is implemented by properties that depend on other properties.
type propagator interface {
	propagate(ev Event)
}

// validator is implemented by properties that check their own declaration
// when registered.
type validator interface {
	validate() error
}

// property holds the state common to all descriptors.
type property struct {
	name       string
	owner      *Class
	lower      int
	upper      int
	slot       int
	dependents []propagator
}

func newProperty(name string, lower, upper int) property {
	return property{name: name, lower: lower, upper: upper, slot: -1}
}

func (p *property) Name() string { return p.name }
func (p *property) Owner() *Class { return p.owner }
func (p *property) Lower() int { return p.lower }
func (p *property) Upper() int { return p.upper }
func (p *property) IsMany() bool { return p.upper == Unbounded || p.upper > 1 }
func (p *property) base() *property { return p }

// qualifiedName returns Owner.name for diagnostics.
func (p *property) qualifiedName() string {
	if p.owner == nil {
		return p.name
	}
	return p.owner.name + "." + p.name
}

// notify dispatches ev to the element's model observers, then to every
// dependent property.
func (p *property) notify(ev Event) {
	ev.Element().dispatch(ev)
	for _, d := range p.dependents {
		d.propagate(ev)
	}
}

// Value is the value of a Reference: a single element (possibly nil) or an
// ordered list, depending on the multiplicity of the property it came from.
type Value struct {
	many  bool
	items []*Element
}

func singleValue(e *Element) Value {
	if e == nil {
		return Value{}
	}
	return Value{items: []*Element{e}}
}

func manyValue(items []*Element) Value {
	return Value{many: true, items: items}
}

// IsMany reports whether the value came from a many-valued property.
func (v Value) IsMany() bool { return v.many }

// One returns the single element, or the first element of a list, or nil.
func (v Value) One() *Element {
	if len(v.items) == 0 {
		return nil
	}
	return v.items[0]
}

// Items returns a copy of the elements in order.
func (v Value) Items() []*Element {
	out := make([]*Element, len(v.items))
	copy(out, v.items)
	return out
}

// Len returns the number of elements.
func (v Value) Len() int { return len(v.items) }

// IsEmpty reports whether the value holds no element.
func (v Value) IsEmpty() bool { return len(v.items) == 0 }

// Contains reports whether e is part of the value.
func (v Value) Contains(e *Element) bool {
	for _, it := range v.items {
		if it == e {
			return true
		}
	}
	return false
}
