package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderedSetAdd(t *testing.T) {
	s := New("a", "b", "a", "c")

	assert.Equal(t, []string{"a", "b", "c"}, s.Items())
	assert.False(t, s.Add("b"), "duplicate add must be refused")
	assert.True(t, s.Add("d"))
	assert.Equal(t, 4, s.Len())
}

func TestOrderedSetInsert(t *testing.T) {
	tests := []struct {
		name  string
		index int
		want  []string
	}{
		{"front", 0, []string{"x", "a", "b", "c"}},
		{"middle", 1, []string{"a", "x", "b", "c"}},
		{"end", 3, []string{"a", "b", "c", "x"}},
		{"past end appends", 10, []string{"a", "b", "c", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New("a", "b", "c")
			assert.True(t, s.Insert(tt.index, "x"))
			assert.Equal(t, tt.want, s.Items())
		})
	}
}

func TestOrderedSetRemove(t *testing.T) {
	s := New("a", "b", "c")

	idx, ok := s.Remove("b")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, []string{"a", "c"}, s.Items())

	idx, ok = s.Remove("missing")
	assert.False(t, ok)
	assert.Equal(t, -1, idx)
}

func TestOrderedSetIndexAndAt(t *testing.T) {
	s := New(10, 20, 30)

	assert.Equal(t, 2, s.Index(30))
	assert.Equal(t, -1, s.Index(40))
	v, ok := s.At(1)
	assert.True(t, ok)
	assert.Equal(t, 20, v)
	_, ok = s.At(3)
	assert.False(t, ok)
}

func TestOrderedSetSwap(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want []string
	}{
		{"ends", "a", "d", []string{"d", "b", "c", "a"}},
		{"reversed arguments", "d", "a", []string{"d", "b", "c", "a"}},
		{"adjacent", "b", "c", []string{"a", "c", "b", "d"}},
		{"last pair", "c", "d", []string{"a", "b", "d", "c"}},
		{"same item", "b", "b", []string{"a", "b", "c", "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New("a", "b", "c", "d")
			assert.True(t, s.Swap(tt.a, tt.b))
			assert.Equal(t, tt.want, s.Items())
		})
	}

	s := New("a", "b")
	assert.False(t, s.Swap("a", "missing"))
	assert.Equal(t, []string{"a", "b"}, s.Items())
}

func TestOrderedSetReorder(t *testing.T) {
	s := New("a", "b", "c", "d")

	s.Reorder([]string{"c", "missing", "a", "c"})
	assert.Equal(t, []string{"c", "a", "b", "d"}, s.Items())

	s.Reorder(nil)
	assert.Equal(t, []string{"c", "a", "b", "d"}, s.Items())
	assert.True(t, s.Add("e"))
	assert.Equal(t, 4, s.Index("e"), "the set stays usable after reordering")
}

func TestOrderedSetItemsIsCopy(t *testing.T) {
	s := New("a", "b")
	items := s.Items()
	items[0] = "z"

	assert.Equal(t, []string{"a", "b"}, s.Items())
}
