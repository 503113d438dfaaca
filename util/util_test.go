package util

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStack(t *testing.T) {
	var s Stack[int]
	s.Push(1)
	s.Push(2)
	s.Push(3)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []int{3, 2, 1}, slices.Collect(s.FromTop()))

	top, ok := s.Pop()
	assert.True(t, ok)
	assert.Equal(t, 3, top)
	assert.Equal(t, 2, s.Len())

	s.Pop()
	s.Pop()
	_, ok = s.Pop()
	assert.False(t, ok)
}

func TestIterHelpers(t *testing.T) {
	doubled := MapIter(ConcatIter(slices.Values([]int{1, 2}), slices.Values([]int{3})), func(i int) int { return i * 2 })
	assert.Equal(t, []int{2, 4, 6}, slices.Collect(doubled))

	set := SetFromSeq(slices.Values([]string{"a", "b", "a"}), 2)
	assert.Equal(t, 2, set.Size())
	assert.True(t, set.Contains("b"))
}
