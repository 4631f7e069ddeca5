// Package metamodel declares a small SysML-flavoured metamodel on top of the
// property engine: packages and profiles, blocks and stereotypes with owned
// properties, and comments annotating any element.
//
//	Element (abstract)
//	├── Comment
//	└── NamedElement (abstract)
//	    ├── Namespace (abstract)
//	    │   ├── Package ──── Profile
//	    │   └── Block ────── Stereotype
//	    ├── PackageableElement (abstract): Package, Block
//	    └── Property
package metamodel

import (
	"github.com/mesh-intelligence/modelcore/pkg/properties"
)

// Visibility literals.
const (
	VisibilityPublic    = "public"
	VisibilityPrivate   = "private"
	VisibilityProtected = "protected"
	VisibilityPackage   = "package"
)

// Aggregation literals.
const (
	AggregationNone      = "none"
	AggregationShared    = "shared"
	AggregationComposite = "composite"
)

// Metamodel holds a frozen schema and handles to its classes and properties.
type Metamodel struct {
	Schema *properties.Schema

	Element            *properties.Class
	Comment            *properties.Class
	NamedElement       *properties.Class
	Namespace          *properties.Class
	PackageableElement *properties.Class
	Package            *properties.Class
	Profile            *properties.Class
	Block              *properties.Class
	Stereotype         *properties.Class
	Property           *properties.Class

	// Element
	OwnedElement *properties.DerivedUnion
	Owner        *properties.DerivedUnion
	OwnedComment *properties.Association

	// Comment
	Body             *properties.Attribute
	AnnotatedElement *properties.Association

	// NamedElement
	Name       *properties.Attribute
	Visibility *properties.Enumeration

	// Namespace
	OwnedMember *properties.DerivedUnion

	// PackageableElement
	OwningPackage *properties.Association

	// Package
	PackagedElement *properties.Association

	// Profile
	OwnedStereotype *properties.Redefinition

	// Block
	OwnedAttribute *properties.Association
	IsAbstract     *properties.Attribute

	// Property
	Class       *properties.Association
	Aggregation *properties.Enumeration
	Type        *properties.Association
}

// New declares and freezes the metamodel.
func New() (*Metamodel, error) {
	mm := &Metamodel{Schema: properties.NewSchema()}
	if err := mm.declare(); err != nil {
		return nil, err
	}
	if err := mm.Schema.Freeze(); err != nil {
		return nil, err
	}
	return mm, nil
}

// MustNew is New, panicking on error.
func MustNew() *Metamodel {
	mm, err := New()
	if err != nil {
		panic(err)
	}
	return mm
}

func (mm *Metamodel) declare() error {
	s := mm.Schema
	var err error
	class := func(name string, supers ...*properties.Class) *properties.Class {
		if err != nil {
			return nil
		}
		var c *properties.Class
		c, err = s.Class(name, supers...)
		return c
	}
	register := func(c *properties.Class, props ...properties.Property) {
		for _, p := range props {
			if err != nil {
				return
			}
			err = c.Register(p)
		}
	}

	mm.Element = class("Element")
	mm.Comment = class("Comment", mm.Element)
	mm.NamedElement = class("NamedElement", mm.Element)
	mm.Namespace = class("Namespace", mm.NamedElement)
	mm.PackageableElement = class("PackageableElement", mm.NamedElement)
	mm.Package = class("Package", mm.Namespace, mm.PackageableElement)
	mm.Profile = class("Profile", mm.Package)
	mm.Block = class("Block", mm.Namespace, mm.PackageableElement)
	mm.Stereotype = class("Stereotype", mm.Block)
	mm.Property = class("Property", mm.NamedElement)
	if err != nil {
		return err
	}
	mm.Element.Abstract()
	mm.NamedElement.Abstract()
	mm.Namespace.Abstract()
	mm.PackageableElement.Abstract()

	mm.OwnedComment = properties.NewAssociation("ownedComment", mm.Comment, 0, properties.Unbounded, properties.Composite())
	mm.OwnedElement = properties.NewDerivedUnion("ownedElement", mm.Element, 0, properties.Unbounded, mm.OwnedComment)
	mm.Owner = properties.NewDerivedUnion("owner", mm.Element, 0, 1)
	register(mm.Element, mm.OwnedElement, mm.Owner, mm.OwnedComment)

	mm.Body = properties.NewAttribute("body", properties.String, nil)
	mm.AnnotatedElement = properties.NewAssociation("annotatedElement", mm.Element, 0, properties.Unbounded)
	register(mm.Comment, mm.Body, mm.AnnotatedElement)

	mm.Name = properties.NewAttribute("name", properties.String, nil)
	mm.Visibility = properties.NewEnumeration("visibility",
		[]string{VisibilityPublic, VisibilityPrivate, VisibilityProtected, VisibilityPackage}, VisibilityPublic)
	register(mm.NamedElement, mm.Name, mm.Visibility)

	mm.OwnedMember = properties.NewDerivedUnion("ownedMember", mm.NamedElement, 0, properties.Unbounded)
	register(mm.Namespace, mm.OwnedMember)

	mm.OwningPackage = properties.NewAssociation("owningPackage", mm.Package, 0, 1,
		properties.WithOpposite("packagedElement"))
	register(mm.PackageableElement, mm.OwningPackage)

	mm.PackagedElement = properties.NewAssociation("packagedElement", mm.PackageableElement, 0, properties.Unbounded,
		properties.Composite(), properties.WithOpposite("owningPackage"))
	register(mm.Package, mm.PackagedElement)

	mm.OwnedStereotype = properties.NewRedefinition("ownedStereotype", mm.Stereotype, mm.PackagedElement)
	register(mm.Profile, mm.OwnedStereotype)

	mm.OwnedAttribute = properties.NewAssociation("ownedAttribute", mm.Property, 0, properties.Unbounded,
		properties.Composite(), properties.WithOpposite("class"))
	mm.IsAbstract = properties.NewAttribute("isAbstract", properties.Int, 0)
	register(mm.Block, mm.OwnedAttribute, mm.IsAbstract)

	mm.Class = properties.NewAssociation("class", mm.Block, 0, 1, properties.WithOpposite("ownedAttribute"))
	mm.Aggregation = properties.NewEnumeration("aggregation",
		[]string{AggregationNone, AggregationShared, AggregationComposite}, AggregationNone)
	mm.Type = properties.NewAssociation("type", mm.Block, 0, 1)
	register(mm.Property, mm.Class, mm.Aggregation, mm.Type)
	if err != nil {
		return err
	}

	if err := mm.OwnedMember.Include(mm.PackagedElement, mm.OwnedAttribute); err != nil {
		return err
	}
	if err := mm.OwnedElement.Include(mm.OwnedMember); err != nil {
		return err
	}
	return mm.Owner.Include(mm.OwningPackage, mm.Class)
}
