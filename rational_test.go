package wildmesh

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHybridPositions(t *testing.T) {
	m, pos := mustBuild(t, 2,
		[][]float64{{0, 0}, {3, 1}, {1, 0.5}},
		[][]int{{0, 1, 2}})
	h, err := RegisterHybridPositions(m, pos.Name(), 2)
	require.NoError(t, err)
	require.Same(t, pos, h.Float)
	require.True(t, h.Rounded.Scalar(2))
	require.Equal(t, Positive, h.Orientation(nil, []int{0, 1, 2}))

	// Just above the line through 0 and 1; the nearest floats are below it.
	tiny := new(big.Rat).SetFrac(big.NewInt(1), new(big.Int).Lsh(big.NewInt(1), 80))
	y := new(big.Rat).Add(big.NewRat(1, 3), tiny)
	h.SetExact(nil, 2, big.NewRat(1, 1), y)
	require.False(t, h.Rounded.Scalar(2))
	require.Equal(t, Positive, h.Orientation(nil, []int{0, 1, 2}))
	require.Equal(t, Negative, FilteredPredicates{}.Orientation([][]float64{pos.Get(0), pos.Get(1), pos.Get(2)}))
	require.False(t, h.Round(nil, 2))
	require.False(t, h.Rounded.Scalar(2))

	h.SetExact(nil, 2, big.NewRat(1, 1), big.NewRat(1, 2))
	require.True(t, h.Round(nil, 2))
	require.True(t, h.Rounded.Scalar(2))
	require.Equal(t, []float64{1, 0.5}, pos.Get(2))
	require.Nil(t, h.Exact.Get(2)[0])
}

func TestHybridMidpoint(t *testing.T) {
	m, pos := mustBuild(t, 2,
		[][]float64{{0, 0}, {3, 1}, {1, 0.5}},
		[][]int{{0, 1, 2}})
	h, err := RegisterHybridPositions(m, "position", 2)
	require.NoError(t, err)

	s := m.Attributes().Begin()
	h.SetMidpoint(s, 2, 0, 1)
	require.Equal(t, []float64{1.5, 0.5}, h.Float.Read(s, 2))
	require.Equal(t, Zero, h.Orientation(s, []int{0, 1, 2}))
	require.Zero(t, h.Coords(s, 2)[0].Cmp(big.NewRat(3, 2)))
	s.Discard()

	require.True(t, h.Rounded.Scalar(2))
	require.Equal(t, []float64{1, 0.5}, pos.Get(2))

	h.SetFloat(nil, 2, 2, 2)
	require.True(t, h.Rounded.Scalar(2))
	require.Zero(t, h.Coords(nil, 2)[1].Cmp(big.NewRat(2, 1)))
}

func TestRegisterHybridPositionsArity(t *testing.T) {
	m, pos := quad(t)
	_, err := RegisterHybridPositions(m, pos.Name(), 3)
	require.ErrorIs(t, err, ErrAttributeType)
}
