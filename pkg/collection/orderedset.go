// Package collection provides the insertion-ordered, duplicate-free set used as
// the value of many-valued properties.
package collection

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// OrderedSet is an insertion-ordered set. The zero value is not usable; call
// New. OrderedSet is not safe for concurrent use.
type OrderedSet[T comparable] struct {
	m *orderedmap.OrderedMap[T, struct{}]
}

// New returns an OrderedSet holding items in order, skipping duplicates.
func New[T comparable](items ...T) *OrderedSet[T] {
	s := &OrderedSet[T]{m: orderedmap.New[T, struct{}]()}
	for _, it := range items {
		s.Add(it)
	}
	return s
}

// Len returns the number of items.
func (s *OrderedSet[T]) Len() int {
	return s.m.Len()
}

// Contains reports whether v is in the set.
func (s *OrderedSet[T]) Contains(v T) bool {
	_, ok := s.m.Get(v)
	return ok
}

// Add appends v. It returns false if v was already present; the order is
// left unchanged in that case.
func (s *OrderedSet[T]) Add(v T) bool {
	if s.Contains(v) {
		return false
	}
	s.m.Set(v, struct{}{})
	return true
}

// Insert places v at index, shifting later items back. An index at or past
// the end appends. It returns false if v was already present.
func (s *OrderedSet[T]) Insert(index int, v T) bool {
	if s.Contains(v) {
		return false
	}
	mark, ok := s.At(index)
	s.m.Set(v, struct{}{})
	if ok {
		_ = s.m.MoveBefore(v, mark)
	}
	return true
}

// Remove deletes v and returns the index it occupied, or -1 and false when
// v was not present.
func (s *OrderedSet[T]) Remove(v T) (int, bool) {
	idx := s.Index(v)
	if idx < 0 {
		return -1, false
	}
	s.m.Delete(v)
	return idx, true
}

// Index returns the position of v, or -1.
func (s *OrderedSet[T]) Index(v T) int {
	if !s.Contains(v) {
		return -1
	}
	i := 0
	for p := s.m.Oldest(); p != nil; p = p.Next() {
		if p.Key == v {
			return i
		}
		i++
	}
	return -1
}

// At returns the item at index.
func (s *OrderedSet[T]) At(index int) (T, bool) {
	var zero T
	if index < 0 || index >= s.m.Len() {
		return zero, false
	}
	i := 0
	for p := s.m.Oldest(); p != nil; p = p.Next() {
		if i == index {
			return p.Key, true
		}
		i++
	}
	return zero, false
}

// Swap exchanges the positions of a and b. It returns false when either is
// missing.
func (s *OrderedSet[T]) Swap(a, b T) bool {
	if !s.Contains(a) || !s.Contains(b) {
		return false
	}
	if a == b {
		return true
	}
	if s.Index(a) > s.Index(b) {
		a, b = b, a
	}
	next, hasNext := s.At(s.Index(b) + 1)
	_ = s.m.MoveBefore(b, a)
	if hasNext {
		_ = s.m.MoveBefore(a, next)
	} else {
		_ = s.m.MoveToBack(a)
	}
	return true
}

// Reorder moves the given items to the front in the given order. Items not in
// the set are ignored; items not named keep their relative order behind them.
func (s *OrderedSet[T]) Reorder(order []T) {
	seen := make(map[T]struct{}, len(order))
	front := make([]T, 0, len(order))
	for _, v := range order {
		if _, dup := seen[v]; dup || !s.Contains(v) {
			continue
		}
		seen[v] = struct{}{}
		front = append(front, v)
	}
	for i := len(front) - 1; i >= 0; i-- {
		_ = s.m.MoveToFront(front[i])
	}
}

// Items returns a copy of the items in order.
func (s *OrderedSet[T]) Items() []T {
	out := make([]T, 0, s.m.Len())
	for p := s.m.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}
