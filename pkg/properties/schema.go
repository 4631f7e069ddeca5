package properties

import (
	"strings"

	"github.com/mesh-intelligence/modelcore/pkg/types"
)

// Schema is the registration arena for classes and their properties. It is
// built once at startup and frozen before any Model uses it; after Freeze the
// property graph is read-only.
type Schema struct {
	classes map[string]*Class
	order   []*Class
	slots   int
	stubs   []*Stub
	frozen  bool
}

// NewSchema returns an empty, unfrozen schema.
func NewSchema() *Schema {
	return &Schema{classes: make(map[string]*Class)}
}

// Class declares a class with the given superclasses. Superclasses must
// belong to the same schema.
func (s *Schema) Class(name string, supers ...*Class) (*Class, error) {
	if s.frozen {
		return nil, schemaFrozen(name)
	}
	if strings.TrimSpace(name) == "" {
		return nil, errorf("SCHEMA_INVALID_NAME").Wrapf(types.ErrInvalidName, "class name cannot be empty")
	}
	if _, exists := s.classes[name]; exists {
		return nil, errorf("SCHEMA_DUPLICATE_CLASS").With("class", name).Wrapf(types.ErrDuplicateClass, "%s", name)
	}
	for _, sup := range supers {
		if sup == nil || sup.schema != s {
			return nil, errorf("SCHEMA_UNKNOWN_CLASS").With("class", name).Wrapf(types.ErrUnknownClass, "superclass of %s", name)
		}
	}
	c := &Class{
		name:   name,
		supers: supers,
		schema: s,
		own:    make(map[string]Property),
	}
	s.classes[name] = c
	s.order = append(s.order, c)
	return c, nil
}

// MustClass is Class, panicking on error. It is intended for schema
// declarations at package initialization only.
func (s *Schema) MustClass(name string, supers ...*Class) *Class {
	c, err := s.Class(name, supers...)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the class with the given name.
func (s *Schema) Lookup(name string) (*Class, bool) {
	c, ok := s.classes[name]
	return c, ok
}

// Classes returns every class in declaration order.
func (s *Schema) Classes() []*Class {
	out := make([]*Class, len(s.order))
	copy(out, s.order)
	return out
}

// IsFrozen reports whether Freeze completed.
func (s *Schema) IsFrozen() bool { return s.frozen }

// Freeze completes the schema: it linearizes every class's property list,
// resolves association opposites, creates stubs for associations without an
// opposite, and wires derived unions and redefinitions to the properties they
// depend on. Freeze is idempotent once it has succeeded.
func (s *Schema) Freeze() error {
	if s.frozen {
		return nil
	}
	for _, c := range s.order {
		if err := c.build(); err != nil {
			return err
		}
	}
	for _, c := range s.order {
		for _, p := range c.props {
			if err := s.wire(p); err != nil {
				return err
			}
		}
	}
	s.frozen = true
	return nil
}

func (s *Schema) wire(p Property) error {
	switch p := p.(type) {
	case *Association:
		if p.oppositeName == "" {
			p.stub = newStub(p)
			s.stubs = append(s.stubs, p.stub)
			return nil
		}
		found, ok := p.target.Property(p.oppositeName)
		opp, isAssoc := found.(*Association)
		if !ok || !isAssoc {
			return errorf("SCHEMA_UNKNOWN_OPPOSITE").
				With("property", p.qualifiedName()).
				With("opposite", p.oppositeName).
				Wrapf(types.ErrUnknownOpposite, "%s.%s", p.target.name, p.oppositeName)
		}
		if opp.oppositeName != p.name {
			return errorf("SCHEMA_OPPOSITE_MISMATCH").
				With("property", p.qualifiedName()).
				With("opposite", opp.qualifiedName()).
				Wrapf(types.ErrOppositeMismatch, "%s and %s", p.qualifiedName(), opp.qualifiedName())
		}
		p.opposite = opp
	case *DerivedUnion:
		for _, sub := range p.subsets {
			if sub.Owner() == nil {
				return errorf("SCHEMA_UNKNOWN_SUBSET").
					With("property", p.qualifiedName()).
					With("subset", sub.Name()).
					Wrapf(types.ErrPropertyNotFound, "subset %s of %s is not registered", sub.Name(), p.qualifiedName())
			}
			b := sub.base()
			b.dependents = append(b.dependents, p)
		}
	case *Redefinition:
		if p.original.Owner() == nil {
			return errorf("SCHEMA_UNKNOWN_ORIGINAL").
				With("property", p.qualifiedName()).
				Wrapf(types.ErrPropertyNotFound, "redefined property %s is not registered", p.original.Name())
		}
		b := p.original.base()
		b.dependents = append(b.dependents, p)
	}
	return nil
}

func schemaFrozen(what string) error {
	return errorf("SCHEMA_FROZEN").With("name", what).Wrapf(types.ErrSchemaFrozen, "cannot declare %s", what)
}

// Class is an element type. Classes form a multiple-inheritance hierarchy;
// an element of a class carries every property of the class and its
// ancestors.
type Class struct {
	name     string
	supers   []*Class
	schema   *Schema
	abstract bool

	props []Property          // own properties in registration order
	own   map[string]Property // own properties by name

	built  bool
	all    []Property          // own and inherited, linearized
	byName map[string]Property // visible properties by name
}

// Name returns the class name.
func (c *Class) Name() string { return c.name }

// Supers returns the direct superclasses.
func (c *Class) Supers() []*Class {
	out := make([]*Class, len(c.supers))
	copy(out, c.supers)
	return out
}

// Schema returns the schema the class belongs to.
func (c *Class) Schema() *Schema { return c.schema }

// IsAbstract reports whether elements of this exact class can be created.
func (c *Class) IsAbstract() bool { return c.abstract }

// Abstract marks the class abstract and returns it.
func (c *Class) Abstract() *Class {
	c.abstract = true
	return c
}

// IsKindOf reports whether c is other or inherits from it.
func (c *Class) IsKindOf(other *Class) bool {
	if c == nil || other == nil {
		return false
	}
	if c == other {
		return true
	}
	for _, s := range c.supers {
		if s.IsKindOf(other) {
			return true
		}
	}
	return false
}

// Register adds p to the class and reserves its per-element storage slot.
// It returns ErrSchemaFrozen after Freeze and ErrDuplicateProperty when the
// name is taken or p is already registered.
func (c *Class) Register(p Property) error {
	if c.schema.frozen {
		return schemaFrozen(c.name + "." + p.Name())
	}
	b := p.base()
	if strings.TrimSpace(b.name) == "" {
		return errorf("SCHEMA_INVALID_NAME").With("class", c.name).Wrapf(types.ErrInvalidName, "property name cannot be empty")
	}
	if b.owner != nil {
		return errorf("SCHEMA_DUPLICATE_PROPERTY").
			With("property", b.qualifiedName()).
			Wrapf(types.ErrDuplicateProperty, "%s is already registered", b.qualifiedName())
	}
	if _, exists := c.own[b.name]; exists {
		return errorf("SCHEMA_DUPLICATE_PROPERTY").
			With("class", c.name).
			With("property", b.name).
			Wrapf(types.ErrDuplicateProperty, "%s.%s", c.name, b.name)
	}
	if v, ok := p.(validator); ok {
		if err := v.validate(); err != nil {
			return err
		}
	}
	b.owner = c
	if stores(p) {
		b.slot = c.schema.slots
		c.schema.slots++
	}
	c.own[b.name] = p
	c.props = append(c.props, p)
	return nil
}

// MustRegister is Register, panicking on error. It is intended for schema
// declarations at package initialization only.
func (c *Class) MustRegister(props ...Property) {
	for _, p := range props {
		if err := c.Register(p); err != nil {
			panic(err)
		}
	}
}

// stores reports whether p keeps per-element state.
func stores(p Property) bool {
	_, redefines := p.(*Redefinition)
	return !redefines
}

// Property returns the property visible on c under name, searching
// superclasses. A redefinition shadows the property it redefines.
func (c *Class) Property(name string) (Property, bool) {
	if c.built {
		p, ok := c.byName[name]
		return p, ok
	}
	if p, ok := c.own[name]; ok {
		return p, true
	}
	for _, s := range c.supers {
		if p, ok := s.Property(name); ok {
			return p, true
		}
	}
	return nil, false
}

// Properties returns every property of c, own and inherited, own first.
// Before Freeze only own properties are returned.
func (c *Class) Properties() []Property {
	src := c.all
	if !c.built {
		src = c.props
	}
	out := make([]Property, len(src))
	copy(out, src)
	return out
}

func (c *Class) build() error {
	if c.built {
		return nil
	}
	all := make([]Property, 0, len(c.props))
	byName := make(map[string]Property, len(c.props))
	seen := make(map[Property]bool)
	for _, p := range c.props {
		seen[p] = true
		all = append(all, p)
		byName[p.Name()] = p
	}
	for _, s := range c.supers {
		if err := s.build(); err != nil {
			return err
		}
		for _, p := range s.all {
			if seen[p] {
				continue
			}
			seen[p] = true
			all = append(all, p)
			existing, taken := byName[p.Name()]
			if !taken {
				byName[p.Name()] = p
				continue
			}
			if r, ok := existing.(*Redefinition); ok && r.redefines(p) {
				continue
			}
			if r, ok := p.(*Redefinition); ok && r.redefines(existing) {
				byName[p.Name()] = p
				continue
			}
			return errorf("SCHEMA_DUPLICATE_PROPERTY").
				With("class", c.name).
				With("property", p.Name()).
				Wrapf(types.ErrDuplicateProperty, "%s.%s clashes with an inherited property", c.name, p.Name())
		}
	}
	c.all = all
	c.byName = byName
	c.built = true
	return nil
}

// String returns the class name.
func (c *Class) String() string { return c.name }
