package metamodel

import (
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/mesh-intelligence/modelcore/pkg/properties"
)

// QualifiedNameSeparator joins the names of nested namespaces.
const QualifiedNameSeparator = "::"

// NameOf returns the name of a named element, or "" for other elements.
func (mm *Metamodel) NameOf(e *properties.Element) string {
	if !e.IsKindOf(mm.NamedElement) {
		return ""
	}
	return mm.Name.Get(e).(string)
}

// QualifiedName joins the names of e and its owners, outermost first.
func (mm *Metamodel) QualifiedName(e *properties.Element) string {
	var names []string
	seen := map[*properties.Element]bool{}
	for cur := e; cur != nil && !seen[cur]; cur = mm.Owner.Get(cur) {
		seen[cur] = true
		names = append(names, mm.NameOf(cur))
	}
	slices.Reverse(names)
	return strings.Join(names, QualifiedNameSeparator)
}

// Members returns the owned members of a namespace with the given name.
func (mm *Metamodel) Members(ns *properties.Element, name string) []*properties.Element {
	return lo.Filter(mm.OwnedMember.Value(ns).Items(), func(e *properties.Element, _ int) bool {
		return mm.NameOf(e) == name
	})
}

// Resolve finds the element with the given qualified name among the top level
// packages of m.
func (mm *Metamodel) Resolve(m *properties.Model, qualifiedName string) (*properties.Element, bool) {
	parts := strings.Split(qualifiedName, QualifiedNameSeparator)
	roots := lo.Filter(m.Select(mm.NamedElement), func(e *properties.Element, _ int) bool {
		return mm.Owner.Get(e) == nil && mm.NameOf(e) == parts[0]
	})
	if len(roots) == 0 {
		return nil, false
	}
	cur := roots[0]
	for _, part := range parts[1:] {
		next := mm.Members(cur, part)
		if len(next) == 0 {
			return nil, false
		}
		cur = next[0]
	}
	return cur, true
}

// Stereotypes returns the stereotypes owned by a profile.
func (mm *Metamodel) Stereotypes(profile *properties.Element) []*properties.Element {
	return lo.Filter(mm.OwnedStereotype.Value(profile).Items(), func(e *properties.Element, _ int) bool {
		return e.IsKindOf(mm.Stereotype)
	})
}
