package properties

import (
	"fmt"

	"github.com/samber/oops"

	"github.com/mesh-intelligence/modelcore/pkg/types"
)

func errorf(code string) oops.OopsErrorBuilder {
	return oops.In("properties").Code(code)
}

func typeMismatch(p *property, e *Element, value any) error {
	return errorf("TYPE_MISMATCH").
		With("property", p.qualifiedName()).
		With("element", e.String()).
		With("value", fmt.Sprint(value)).
		Wrapf(types.ErrTypeMismatch, "%s cannot hold %v", p.qualifiedName(), value)
}

func ownerMismatch(p *property, e *Element) error {
	return errorf("TYPE_MISMATCH").
		With("property", p.qualifiedName()).
		With("element", e.String()).
		Wrapf(types.ErrTypeMismatch, "%s is not defined on %s", p.qualifiedName(), e.class.name)
}

func selfReference(p *property, e *Element) error {
	return errorf("SELF_REFERENCE").
		With("property", p.qualifiedName()).
		With("element", e.String()).
		Wrapf(types.ErrSelfReference, "%s cannot refer to its owner", p.qualifiedName())
}

func unlinkedElement(p *property, e *Element) error {
	return errorf("ELEMENT_UNLINKED").
		With("property", p.qualifiedName()).
		With("element", e.String()).
		Wrapf(types.ErrElementUnlinked, "%s on %s", p.qualifiedName(), e)
}

func readOnly(p *property) error {
	return errorf("DERIVED_READ_ONLY").
		With("property", p.qualifiedName()).
		Wrapf(types.ErrDerivedReadOnly, "%s", p.qualifiedName())
}

func compositeDelete(p *property) error {
	return errorf("COMPOSITE_DELETE").
		With("property", p.qualifiedName()).
		Wrapf(types.ErrCompositeDelete, "%s", p.qualifiedName())
}

// checkWritable rejects mutations through p on elements that do not carry p
// or are no longer alive.
func checkWritable(p *property, e *Element) error {
	if e.unlinked || e.unlinking {
		return unlinkedElement(p, e)
	}
	if p.owner == nil || !e.IsKindOf(p.owner) {
		return ownerMismatch(p, e)
	}
	return nil
}
