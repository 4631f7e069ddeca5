package properties

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/mesh-intelligence/modelcore/pkg/collection"
	"github.com/mesh-intelligence/modelcore/pkg/types"
)

// Model creates and tracks the live elements of one frozen schema and fans
// change events out to its observers.
type Model struct {
	schema   *Schema
	logger   *slog.Logger
	elements map[string]*Element
	order    *collection.OrderedSet[*Element]

	observers []*subscription
	blocked   int
}

type subscription struct {
	observer Observer
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithLogger sets the logger used for engine diagnostics.
func WithLogger(logger *slog.Logger) ModelOption {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewModel returns an empty model over schema, which must be frozen.
func NewModel(schema *Schema, opts ...ModelOption) (*Model, error) {
	if schema == nil || !schema.frozen {
		return nil, errorf("SCHEMA_NOT_FROZEN").Wrapf(types.ErrSchemaNotFrozen, "cannot build a model")
	}
	m := &Model{
		schema:   schema,
		logger:   slog.Default(),
		elements: make(map[string]*Element),
		order:    collection.New[*Element](),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Schema returns the model's schema.
func (m *Model) Schema() *Schema { return m.schema }

// Logger returns the model's diagnostic logger.
func (m *Model) Logger() *slog.Logger { return m.logger }

// Create instantiates class with a fresh UUID v7 and emits ElementCreated.
func (m *Model) Create(class *Class) (*Element, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, errorf("ID_GENERATION").Wrapf(err, "generating element id")
	}
	return m.CreateWithID(class, id.String())
}

// CreateWithID instantiates class under a caller-chosen id. Persistence uses
// it to restore elements.
func (m *Model) CreateWithID(class *Class, id string) (*Element, error) {
	if class == nil || class.schema != m.schema {
		return nil, errorf("UNKNOWN_CLASS").Wrapf(types.ErrUnknownClass, "class is not part of the model schema")
	}
	if class.abstract {
		return nil, errorf("ABSTRACT_CLASS").With("class", class.name).Wrapf(types.ErrAbstractClass, "%s", class.name)
	}
	if strings.TrimSpace(id) == "" {
		return nil, errorf("INVALID_ID").Wrapf(types.ErrInvalidID, "element id cannot be empty")
	}
	if _, exists := m.elements[id]; exists {
		return nil, errorf("DUPLICATE_ELEMENT").With("id", id).Wrapf(types.ErrDuplicateElement, "%s", id)
	}
	e := newElement(m, class, id)
	m.elements[id] = e
	m.order.Add(e)
	m.dispatch(ElementCreated{change{element: e}})
	return e, nil
}

// MustCreate is Create, panicking on error. Intended for tests and fixtures.
func (m *Model) MustCreate(class *Class) *Element {
	e, err := m.Create(class)
	if err != nil {
		panic(err)
	}
	return e
}

// Lookup returns the live element with id.
func (m *Model) Lookup(id string) (*Element, error) {
	e, ok := m.elements[id]
	if !ok {
		return nil, errorf("NOT_FOUND").With("id", id).Wrapf(types.ErrNotFound, "%s", id)
	}
	return e, nil
}

// Elements returns every live element in creation order.
func (m *Model) Elements() []*Element {
	return m.order.Items()
}

// Select returns the live elements that are kind of class, in creation order.
func (m *Model) Select(class *Class) []*Element {
	return lo.Filter(m.order.Items(), func(e *Element, _ int) bool {
		return e.IsKindOf(class)
	})
}

// Len returns the number of live elements.
func (m *Model) Len() int { return m.order.Len() }

// Subscribe registers o for every event of the model. The returned function
// removes the subscription.
func (m *Model) Subscribe(o Observer) (cancel func()) {
	sub := &subscription{observer: o}
	m.observers = append(m.observers, sub)
	return func() {
		m.observers = lo.Filter(m.observers, func(s *subscription, _ int) bool {
			return s != sub
		})
	}
}

// BlockEvents stops observer dispatch until the returned function is called.
// Calls nest. Dependent propagation between properties is not affected.
func (m *Model) BlockEvents() (restore func()) {
	m.blocked++
	var done bool
	return func() {
		if !done {
			done = true
			m.blocked--
		}
	}
}

// Postload runs every property's postload hook on every element. Call it
// after a complete load pass.
func (m *Model) Postload() {
	for _, e := range m.order.Items() {
		for _, p := range e.class.all {
			p.Postload(e)
		}
	}
}

// Flush unlinks every element.
func (m *Model) Flush() {
	for _, e := range m.order.Items() {
		e.Unlink()
	}
}

func (m *Model) forget(e *Element) {
	delete(m.elements, e.id)
	m.order.Remove(e)
}

func (m *Model) dispatch(ev Event) {
	if m.blocked > 0 || len(m.observers) == 0 {
		return
	}
	snapshot := make([]*subscription, len(m.observers))
	copy(snapshot, m.observers)
	for _, s := range snapshot {
		s.observer.Handle(ev)
	}
}
