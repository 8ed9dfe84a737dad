package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackPushPopIsLIFO(t *testing.T) {
	s := NewStack[int]()
	s.Push(1)
	s.Push(2)
	s.Push(3)

	v, ok := s.Pop()
	require.True(t, ok)
	assert.Equal(t, 3, v)

	v, ok = s.Pop()
	require.True(t, ok)
	assert.Equal(t, 2, v)

	assert.Equal(t, 1, s.Size())
}

func TestStackPopEmptyReturnsFalse(t *testing.T) {
	s := NewStack[string]()
	_, ok := s.Pop()
	assert.False(t, ok)
	assert.True(t, s.Empty())
}

func TestStackPeekDoesNotRemove(t *testing.T) {
	s := NewStack[int]()
	s.Push(42)
	v, ok := s.Peek()
	require.True(t, ok)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, s.Size())
}

func TestStackGetIsTopDownOneIndexed(t *testing.T) {
	s := NewStack[int]()
	s.Push(10)
	s.Push(20)
	s.Push(30)

	top, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, 30, top)

	bottom, ok := s.Get(s.Size())
	require.True(t, ok)
	assert.Equal(t, 10, bottom)

	_, ok = s.Get(0)
	assert.False(t, ok)
	_, ok = s.Get(s.Size() + 1)
	assert.False(t, ok)
}

func TestStackEachVisitsTopToBottom(t *testing.T) {
	s := NewStack[int]()
	s.Push(1)
	s.Push(2)
	s.Push(3)

	var visited []int
	s.Each(func(v int) bool {
		visited = append(visited, v)
		return true
	})
	assert.Equal(t, []int{3, 2, 1}, visited)
}

func TestStackEachStopsEarly(t *testing.T) {
	s := NewStack[int]()
	s.Push(1)
	s.Push(2)
	s.Push(3)

	var visited []int
	s.Each(func(v int) bool {
		visited = append(visited, v)
		return v != 2
	})
	assert.Equal(t, []int{3, 2}, visited)
}
