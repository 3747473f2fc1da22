package wildmesh

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func unitTet(t *testing.T) (*Mesh, *Attribute[float64]) {
	return mustBuild(t, 3,
		[][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		[][]int{{0, 1, 2, 3}})
}

func TestEdgeSplitTriangle(t *testing.T) {
	m, pos := quad(t)
	old := edge(t, m, 0, 2)
	out, o := m.Apply(&EdgeSplit{Positions: pos}, old)
	require.Equal(t, Applied, o)
	require.Len(t, out, 1)

	v := m.VertexID(out[0])
	require.Equal(t, 4, v)
	require.Equal(t, []float64{0.5, 0.5}, pos.Get(v))
	require.Equal(t, 5, m.NumVertices())
	require.Equal(t, 4, m.NumCells())
	require.False(t, m.IsValid(old))
	_, ok := m.TupleFromEdge(0, 2)
	require.False(t, ok)
	edge(t, m, 0, v)
	edge(t, m, v, 2)
	edge(t, m, v, 1)
	edge(t, m, v, 3)
	require.NoError(t, m.CheckConnectivity())
	requirePositive(t, m, pos)
	require.InDelta(t, 1.0, volume(m, pos), 1e-12)
}

func TestEdgeSplitStaleHandle(t *testing.T) {
	m, pos := quad(t)
	e := edge(t, m, 0, 2)
	_, o := m.Apply(&EdgeSplit{Positions: pos}, e)
	require.Equal(t, Applied, o)
	_, o = m.Apply(&EdgeSplit{Positions: pos}, e)
	require.Equal(t, Stale, o)
	require.Equal(t, 5, m.NumVertices())
}

func TestEdgeSplitEveryEdgeOfTet(t *testing.T) {
	m, pos := unitTet(t)
	split := &EdgeSplit{Positions: pos}
	for a := 0; a < 4; a++ {
		for b := a + 1; b < 4; b++ {
			_, o := m.Apply(split, edge(t, m, a, b))
			require.Equal(t, Applied, o)
		}
	}
	require.Equal(t, 10, m.NumVertices())
	require.Equal(t, 10, m.VertexCapacity())
	require.NoError(t, m.CheckConnectivity())
	requirePositive(t, m, pos)
	require.InDelta(t, 1.0/6, volume(m, pos), 1e-12)
}

func TestEdgeSplitCarriesEdgeAttributes(t *testing.T) {
	m, pos := unitTet(t)
	tag, err := Register[int](m, "tag", Edge, 1)
	require.NoError(t, err)
	flag, err := Register[int](m, "flag", Face, 1, -1)
	require.NoError(t, err)
	tag.SetScalar(nil, m.SimplexID(Edge, edge(t, m, 0, 1)), 7)
	tag.SetScalar(nil, m.SimplexID(Edge, edge(t, m, 2, 3)), 9)
	f, _ := m.TupleFromSimplex(1, 2, 3)
	flag.SetScalar(nil, m.SimplexID(Face, f), 5)

	out, o := m.Apply(&EdgeSplit{Positions: pos}, edge(t, m, 0, 1))
	require.Equal(t, Applied, o)
	v := m.VertexID(out[0])

	tagOf := func(a, b int) int {
		return tag.Scalar(m.SimplexID(Edge, edge(t, m, a, b)))
	}
	require.Equal(t, 7, tagOf(0, v))
	require.Equal(t, 7, tagOf(v, 1))
	require.Equal(t, 0, tagOf(v, 2))
	require.Equal(t, 0, tagOf(v, 3))
	require.Equal(t, 9, tagOf(2, 3))

	f, ok := m.TupleFromSimplex(1, 2, 3)
	require.True(t, ok)
	require.Equal(t, 5, flag.Scalar(m.SimplexID(Face, f)))
	g, ok := m.TupleFromSimplex(v, 2, 3)
	require.True(t, ok)
	require.Equal(t, -1, flag.Scalar(m.SimplexID(Face, g)))
}

func TestEdgeSplitCopiesCellAttributes(t *testing.T) {
	m, pos := quad(t)
	region, err := Register[string](m, "region", Face, 1)
	require.NoError(t, err)
	region.SetScalar(nil, 0, "a")
	region.SetScalar(nil, 1, "b")

	_, o := m.Apply(&EdgeSplit{Positions: pos}, edge(t, m, 0, 2))
	require.Equal(t, Applied, o)
	counts := map[string]int{}
	for c := 0; c < m.CellCapacity(); c++ {
		counts[region.Scalar(c)]++
	}
	require.Equal(t, map[string]int{"a": 2, "b": 2}, counts)
}

func TestEdgeSplitRejectedAfterRollsBack(t *testing.T) {
	m, pos := quad(t)
	before := m.Export(pos)
	split := &EdgeSplit{
		Positions: pos,
		Checks: Policy{After: func(*Editor, []Tuple) bool {
			return false
		}},
	}
	e := edge(t, m, 0, 2)
	_, o := m.Apply(split, e)
	require.Equal(t, RejectedAfter, o)
	require.Equal(t, before, m.Export(pos))
	require.True(t, m.IsValid(e))
	require.NoError(t, m.CheckConnectivity())
	require.Equal(t, 0, m.Attributes().OpenScopes())

	// The vertex allocated by the failed edit is reused.
	_, o = m.Apply(&EdgeSplit{Positions: pos}, e)
	require.Equal(t, Applied, o)
	require.Equal(t, 5, m.VertexCapacity())
}

func TestCellSplit(t *testing.T) {
	m, pos := unitTet(t)
	out, o := m.Apply(&CellSplit{Positions: pos}, m.TupleFromCell(0))
	require.Equal(t, Applied, o)
	v := m.VertexID(out[0])
	require.Equal(t, []float64{0.25, 0.25, 0.25}, pos.Get(v))
	require.Equal(t, 4, m.NumCells())
	require.Len(t, m.OneRingVertices(v), 4)
	require.NoError(t, m.CheckConnectivity())
	requirePositive(t, m, pos)
	require.InDelta(t, 1.0/6, volume(m, pos), 1e-12)
}
