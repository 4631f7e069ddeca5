package properties

import (
	"math"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/modelcore/pkg/types"
)

// AttrType is the value type of a scalar attribute.
type AttrType int

const (
	String AttrType = iota
	Int
)

func (t AttrType) String() string {
	switch t {
	case String:
		return "string"
	case Int:
		return "int"
	}
	return "unknown"
}

// Attribute is a single-valued string or int field with a default. A value
// equal to the default is not stored.
type Attribute struct {
	property
	typ AttrType
	def any
}

// NewAttribute declares an attribute. A nil default means the zero value of
// typ.
func NewAttribute(name string, typ AttrType, def any) *Attribute {
	a := &Attribute{property: newProperty(name, 0, 1), typ: typ}
	if def == nil {
		a.def = a.zero()
	} else if v, ok := a.coerce(def); ok {
		a.def = v
	} else {
		a.def = def
	}
	return a
}

func (a *Attribute) validate() error {
	if _, ok := a.coerce(a.def); !ok {
		return errorf("SCHEMA_INVALID_DEFAULT").
			With("property", a.name).
			Wrapf(types.ErrTypeMismatch, "default %v is not a %s", a.def, a.typ)
	}
	return nil
}

// Type returns the attribute's value type.
func (a *Attribute) Type() AttrType { return a.typ }

// Default returns the default value.
func (a *Attribute) Default() any { return a.def }

// Get returns the stored value or the default.
func (a *Attribute) Get(e *Element) any {
	return scalarValue(&a.property, e, a.def)
}

// Set stores value, which must be a string or a Go integer matching the
// attribute type. A nil value resets to the default.
func (a *Attribute) Set(e *Element, value any) error {
	if err := checkWritable(&a.property, e); err != nil {
		return err
	}
	if value == nil {
		clearScalar(a, e, a.def)
		return nil
	}
	v, ok := a.coerce(value)
	if !ok {
		return typeMismatch(&a.property, e, value)
	}
	storeScalar(a, e, a.def, v)
	return nil
}

// Delete resets the attribute to its default.
func (a *Attribute) Delete(e *Element) error {
	if err := checkWritable(&a.property, e); err != nil {
		return err
	}
	clearScalar(a, e, a.def)
	return nil
}

// Unlink resets the attribute to its default.
func (a *Attribute) Unlink(e *Element) {
	clearScalar(a, e, a.def)
}

// Save passes a stored override to save.
func (a *Attribute) Save(e *Element, save SaveFunc) {
	if v := e.slots[a.slot]; v != nil {
		save(a.name, v)
	}
}

// Load restores a saved value. Int attributes also accept the legacy
// spellings "True" and "False" as 1 and 0, decimal strings, and integral
// floats as produced by JSON decoding.
func (a *Attribute) Load(e *Element, value any) error {
	if err := checkWritable(&a.property, e); err != nil {
		return err
	}
	v, ok := a.coerce(value)
	if !ok && a.typ == Int {
		v, ok = legacyInt(value)
	}
	if !ok {
		return typeMismatch(&a.property, e, value)
	}
	storeScalar(a, e, a.def, v)
	return nil
}

// Postload does nothing for attributes.
func (a *Attribute) Postload(*Element) {}

func (a *Attribute) zero() any {
	if a.typ == Int {
		return 0
	}
	return ""
}

func (a *Attribute) coerce(value any) (any, bool) {
	switch a.typ {
	case String:
		s, ok := value.(string)
		return s, ok
	case Int:
		switch n := value.(type) {
		case int:
			return n, true
		case int8:
			return int(n), true
		case int16:
			return int(n), true
		case int32:
			return int(n), true
		case int64:
			return int(n), true
		case uint8:
			return int(n), true
		case uint16:
			return int(n), true
		case uint32:
			return int(n), true
		}
	}
	return nil, false
}

func legacyInt(value any) (any, bool) {
	switch v := value.(type) {
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return int(v), true
		}
	case string:
		switch s := strings.TrimSpace(v); s {
		case "True", "true":
			return 1, true
		case "False", "false":
			return 0, true
		default:
			if n, err := strconv.Atoi(s); err == nil {
				return n, true
			}
		}
	}
	return nil, false
}

// scalarValue returns the stored value of a scalar property or def.
func scalarValue(p *property, e *Element, def any) any {
	if v := e.slots[p.slot]; v != nil {
		return v
	}
	return def
}

// storeScalar writes v, keeping storage empty when v equals def, and emits
// AttributeUpdated when the effective value changed.
func storeScalar(self Property, e *Element, def, v any) {
	p := self.base()
	old := scalarValue(p, e, def)
	if v == def {
		e.slots[p.slot] = nil
	} else {
		e.slots[p.slot] = v
	}
	if old != v {
		p.notify(AttributeUpdated{change: change{element: e, property: self}, Old: old, New: v})
	}
}

// clearScalar removes a stored override, emitting AttributeUpdated back to
// def if there was one.
func clearScalar(self Property, e *Element, def any) {
	p := self.base()
	old := e.slots[p.slot]
	if old == nil {
		return
	}
	e.slots[p.slot] = nil
	p.notify(AttributeUpdated{change: change{element: e, property: self}, Old: old, New: def})
}
