package properties

import (
	"github.com/mesh-intelligence/modelcore/pkg/collection"
	"github.com/mesh-intelligence/modelcore/pkg/types"
)

// Stub records, for an association without an opposite, which elements link
// to each target. It exists so that unlinking a target can find and break
// every link that points at it. A Stub is never readable or writable through
// the public API.
type Stub struct {
	association *Association
	refs        map[*Element]*collection.OrderedSet[*Element]
}

func newStub(a *Association) *Stub {
	return &Stub{association: a, refs: make(map[*Element]*collection.OrderedSet[*Element])}
}

// Association returns the association the stub serves.
func (s *Stub) Association() *Association { return s.association }

// Get always fails with ErrAssociationStub.
func (s *Stub) Get(e *Element) (Value, error) {
	return Value{}, s.denied(e)
}

// Set always fails with ErrAssociationStub.
func (s *Stub) Set(e, _ *Element) error {
	return s.denied(e)
}

// Delete always fails with ErrAssociationStub.
func (s *Stub) Delete(e, _ *Element) error {
	return s.denied(e)
}

func (s *Stub) denied(e *Element) error {
	return errorf("ASSOCIATION_STUB").
		With("property", s.association.qualifiedName()).
		With("element", e.String()).
		Wrapf(types.ErrAssociationStub, "stub of %s", s.association.qualifiedName())
}

func (s *Stub) add(target, src *Element) {
	set, ok := s.refs[target]
	if !ok {
		set = collection.New[*Element]()
		s.refs[target] = set
	}
	set.Add(src)
}

func (s *Stub) remove(target, src *Element) {
	set, ok := s.refs[target]
	if !ok {
		return
	}
	set.Remove(src)
	if set.Len() == 0 {
		delete(s.refs, target)
	}
}

// referrers returns the elements linking to target.
func (s *Stub) referrers(target *Element) []*Element {
	if set, ok := s.refs[target]; ok {
		return set.Items()
	}
	return nil
}

// unlink breaks every link that points at target.
func (s *Stub) unlink(target *Element) {
	for _, src := range s.referrers(target) {
		s.association.del(src, target, false, true)
	}
	delete(s.refs, target)
}
