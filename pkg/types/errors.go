package types

import "errors"

// Property engine errors. These are programmer errors: the call site violated
// a precondition and the engine left state unchanged.
var (
	ErrTypeMismatch     = errors.New("type mismatch")
	ErrSelfReference    = errors.New("association target equals owner")
	ErrAssociationStub  = errors.New("association stub cannot be accessed directly")
	ErrCompositeDelete  = errors.New("delete on a many-valued property requires a value")
	ErrDerivedReadOnly  = errors.New("derived property is read-only")
	ErrElementUnlinked  = errors.New("element is unlinked")
	ErrPropertyNotFound = errors.New("property not found")
)

// Schema registration errors.
var (
	ErrSchemaFrozen      = errors.New("schema is frozen")
	ErrSchemaNotFrozen   = errors.New("schema is not frozen")
	ErrInvalidName       = errors.New("invalid name")
	ErrDuplicateClass    = errors.New("class already defined")
	ErrDuplicateProperty = errors.New("property already registered")
	ErrUnknownClass      = errors.New("unknown class")
	ErrUnknownOpposite   = errors.New("unknown opposite property")
	ErrOppositeMismatch  = errors.New("opposite properties do not point at each other")
	ErrAbstractClass     = errors.New("abstract class cannot be instantiated")
	ErrMultiplicity      = errors.New("invalid multiplicity")
)

// Model errors.
var (
	ErrNotFound         = errors.New("element not found")
	ErrInvalidID        = errors.New("invalid element ID")
	ErrDuplicateElement = errors.New("element ID already in use")
	ErrNotLinked        = errors.New("element is not linked")
)
