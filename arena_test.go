package wildmesh

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSegmentsGrowKeepsElementsInPlace(t *testing.T) {
	s := newSegments[int](2)
	s.grow(3, func(v []int) { v[0], v[1] = 7, 8 })
	require.Equal(t, 3, s.len())
	require.Equal(t, []int{7, 8}, s.slice(2))

	p := &s.slice(1)[0]
	*p = 42
	s.grow(3000, nil)
	require.Equal(t, 3000, s.len())
	require.Same(t, p, &s.slice(1)[0])
	require.Equal(t, []int{42, 8}, s.slice(1))
	require.Equal(t, []int{0, 0}, s.slice(2999))

	s.grow(10, nil)
	require.Equal(t, 3000, s.len(), "grow never shrinks")
}

func TestSegmentsSliceIsCapped(t *testing.T) {
	s := newSegments[int](3)
	s.grow(2, nil)
	v := s.slice(0)
	require.Len(t, v, 3)
	v = append(v, 9)
	require.Equal(t, []int{0, 0, 0}, s.slice(1))
}
