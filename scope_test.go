package wildmesh

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	m, _ := quad(t)
	_, err := Register[float64](m, "position", Vertex, 2)
	require.ErrorIs(t, err, ErrAttributeExists)
	_, err = Register[int](m, "tag", Tetrahedron, 1)
	require.ErrorIs(t, err, ErrDimension)
	_, err = Register[int](m, "tag", Edge, 0)
	require.Error(t, err)
	_, err = Register[int](m, "tag", Edge, 2, 1, 2, 3)
	require.Error(t, err)

	w, err := Register[float64](m, "weight", Edge, 2, 0.5)
	require.NoError(t, err)
	require.Equal(t, m.Capacity(Edge), w.Len())
	require.Equal(t, []float64{0.5, 0.5}, w.Get(4))

	got, err := Lookup[float64](m, "weight", Edge)
	require.NoError(t, err)
	require.Same(t, w, got)
	_, err = Lookup[int](m, "weight", Edge)
	require.ErrorIs(t, err, ErrAttributeType)
	_, err = Lookup[float64](m, "weight", Face)
	require.Error(t, err)

	require.Equal(t, []string{"weight"}, m.Attributes().Names(Edge))
	require.True(t, m.Attributes().Unregister("weight", Edge))
	require.False(t, m.Attributes().Unregister("weight", Edge))
	require.Empty(t, m.Attributes().Names(Edge))
}

func TestScopeDiscardRestores(t *testing.T) {
	m, pos := quad(t)
	s := m.Attributes().Begin()
	require.Equal(t, 1, m.Attributes().OpenScopes())
	pos.Set(s, 2, 5, 5)
	pos.Set(s, 2, 6, 6)
	pos.SetScalar(s, 0, -1)
	require.Equal(t, []float64{6, 6}, pos.Get(2))
	require.Equal(t, 2, s.Len())

	s.Discard()
	require.Equal(t, 0, m.Attributes().OpenScopes())
	require.Equal(t, []float64{1, 1}, pos.Get(2))
	require.Equal(t, []float64{0, 0}, pos.Get(0))
}

func TestNestedScopes(t *testing.T) {
	m, pos := quad(t)
	outer := m.Attributes().Begin()
	pos.SetScalar(outer, 1, 10)

	inner := outer.Begin()
	require.Equal(t, 2, inner.Depth())
	require.Same(t, outer, inner.Parent())
	pos.SetScalar(inner, 1, 20)
	pos.SetScalar(inner, 3, 30)
	inner.Discard()
	require.Equal(t, 10.0, pos.Scalar(1), "inner discard keeps outer writes")
	require.Equal(t, 0.0, pos.Scalar(3))

	inner = outer.Begin()
	pos.SetScalar(inner, 1, 20)
	pos.SetScalar(inner, 3, 30)
	inner.Commit()
	require.Equal(t, 20.0, pos.Scalar(1))

	outer.Discard()
	require.Equal(t, 1.0, pos.Scalar(1), "outer discard undoes committed children")
	require.Equal(t, 0.0, pos.Scalar(3))
	require.Equal(t, 0, m.Attributes().OpenScopes())
}

func TestCommitIsPermanent(t *testing.T) {
	m, pos := quad(t)
	s := m.Attributes().Begin()
	pos.With(s).Set(3, 0.25, 0.75)
	s.Commit()
	require.Equal(t, []float64{0.25, 0.75}, pos.Get(3))
}

func TestParentScopeShowsEnclosingState(t *testing.T) {
	m, pos := quad(t)
	outer := m.Attributes().Begin()
	pos.SetScalar(outer, 2, 3)
	inner := outer.Begin()
	pos.SetScalar(inner, 2, 4)

	acc := pos.With(inner)
	inner.ParentScope(func() {
		require.Equal(t, 3.0, acc.Scalar(2))
		require.Equal(t, 0.0, acc.Scalar(0))
		require.Panics(t, func() { acc.SetScalar(2, 5) })
	})
	require.Equal(t, 4.0, acc.Scalar(2))

	outer.ParentScope(func() {
		require.Equal(t, 1.0, pos.With(outer).Scalar(2))
	})
	inner.Discard()
	outer.Discard()
}

func TestScopeMisusePanics(t *testing.T) {
	m, pos := quad(t)
	outer := m.Attributes().Begin()
	inner := outer.Begin()
	require.Panics(t, func() { pos.SetScalar(outer, 0, 1) })
	require.Panics(t, func() { outer.Commit() })
	require.Panics(t, func() { outer.Begin() })
	inner.Commit()
	require.Panics(t, func() { inner.Discard() })
	outer.Commit()
	require.Panics(t, func() { pos.Set(nil, 0, 1) })
}
