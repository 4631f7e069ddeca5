package properties

import (
	"slices"

	"github.com/mesh-intelligence/modelcore/pkg/types"
)

// Enumeration is a single-valued string field restricted to a fixed set of
// literals.
type Enumeration struct {
	property
	values []string
	def    string
}

// NewEnumeration declares an enumeration. An empty default selects the first
// literal.
func NewEnumeration(name string, values []string, def string) *Enumeration {
	if def == "" && len(values) > 0 {
		def = values[0]
	}
	return &Enumeration{
		property: newProperty(name, 0, 1),
		values:   slices.Clone(values),
		def:      def,
	}
}

func (en *Enumeration) validate() error {
	if len(en.values) == 0 {
		return errorf("SCHEMA_INVALID_ENUMERATION").
			With("property", en.name).
			Wrapf(types.ErrTypeMismatch, "%s declares no literals", en.name)
	}
	if !slices.Contains(en.values, en.def) {
		return errorf("SCHEMA_INVALID_DEFAULT").
			With("property", en.name).
			Wrapf(types.ErrTypeMismatch, "default %q is not a literal of %s", en.def, en.name)
	}
	return nil
}

// Values returns the literals in declaration order.
func (en *Enumeration) Values() []string { return slices.Clone(en.values) }

// Default returns the default literal.
func (en *Enumeration) Default() string { return en.def }

// Get returns the stored literal or the default.
func (en *Enumeration) Get(e *Element) string {
	return scalarValue(&en.property, e, en.def).(string)
}

// Set stores value, which must be one of the literals.
func (en *Enumeration) Set(e *Element, value string) error {
	if err := checkWritable(&en.property, e); err != nil {
		return err
	}
	if !slices.Contains(en.values, value) {
		return typeMismatch(&en.property, e, value)
	}
	storeScalar(en, e, en.def, value)
	return nil
}

// Delete resets the enumeration to its default.
func (en *Enumeration) Delete(e *Element) error {
	if err := checkWritable(&en.property, e); err != nil {
		return err
	}
	clearScalar(en, e, en.def)
	return nil
}

// Unlink resets the enumeration to its default.
func (en *Enumeration) Unlink(e *Element) {
	clearScalar(en, e, en.def)
}

// Save passes a stored literal to save.
func (en *Enumeration) Save(e *Element, save SaveFunc) {
	if v := e.slots[en.slot]; v != nil {
		save(en.name, v)
	}
}

// Load restores a saved literal.
func (en *Enumeration) Load(e *Element, value any) error {
	if err := checkWritable(&en.property, e); err != nil {
		return err
	}
	s, ok := value.(string)
	if !ok || !slices.Contains(en.values, s) {
		return typeMismatch(&en.property, e, value)
	}
	storeScalar(en, e, en.def, s)
	return nil
}

// Postload does nothing for enumerations.
func (en *Enumeration) Postload(*Element) {}
