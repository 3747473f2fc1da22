package wildmesh

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func kite(t *testing.T) (*Mesh, *Attribute[float64]) {
	return mustBuild(t, 2,
		[][]float64{{0, 0}, {1, -0.2}, {2, 0}, {1, 0.2}},
		[][]int{{0, 1, 2}, {0, 2, 3}})
}

func octahedron(t *testing.T) (*Mesh, *Attribute[float64]) {
	return mustBuild(t, 3,
		[][]float64{{0, 0, 1}, {0, 0, -1}, {1, 0, 0}, {0, 1, 0}, {-1, 0, 0}, {0, -1, 0}},
		[][]int{{0, 1, 2, 3}, {0, 1, 3, 4}, {0, 1, 4, 5}, {0, 1, 5, 2}})
}

func TestEdgeSwapTriangles(t *testing.T) {
	m, pos := quad(t)
	out, o := m.Apply(&EdgeSwap{}, edge(t, m, 0, 2))
	require.Equal(t, Applied, o)
	require.True(t, m.Equal(Edge, out[0], edge(t, m, 1, 3)))
	_, ok := m.TupleFromEdge(0, 2)
	require.False(t, ok)
	require.Equal(t, 2, m.CellCapacity())
	require.NoError(t, m.CheckConnectivity())
	requirePositive(t, m, pos)

	_, o = m.Apply(&EdgeSwap{}, edge(t, m, 1, 3))
	require.Equal(t, Applied, o)
	edge(t, m, 0, 2)
	requirePositive(t, m, pos)
}

func TestEdgeSwapBoundaryEdge(t *testing.T) {
	m, _ := quad(t)
	_, o := m.Apply(&EdgeSwap{}, edge(t, m, 0, 1))
	require.Equal(t, RejectedBefore, o)
}

func TestEdgeSwapEnergy(t *testing.T) {
	m, pos := kite(t)
	swap := &EdgeSwap{Checks: Policy{Invariants: []Invariant{
		NoInversion{Positions: pos},
		EnergyBound{Positions: pos, Energy: InverseQuality, Slack: -1e-9},
	}}}
	_, o := m.Apply(swap, edge(t, m, 0, 2))
	require.Equal(t, Applied, o)
	_, o = m.Apply(swap, edge(t, m, 1, 3))
	require.Equal(t, RejectedAfter, o)
	edge(t, m, 1, 3)
	requirePositive(t, m, pos)
}

func TestEdgeSwapRejectsInversion(t *testing.T) {
	// A non-convex quad: swapping its diagonal would fold a triangle.
	m, pos := mustBuild(t, 2,
		[][]float64{{0, 0}, {2, 0}, {0.5, 0.5}, {0, 2}},
		[][]int{{0, 1, 2}, {0, 2, 3}})
	_, o := m.Apply(&EdgeSwap{Checks: Policy{Invariants: []Invariant{NoInversion{Positions: pos}}}}, edge(t, m, 0, 2))
	require.Equal(t, RejectedAfter, o)
	edge(t, m, 0, 2)
	require.NoError(t, m.CheckConnectivity())
}

func TestFaceSwapAndBack(t *testing.T) {
	m, pos := twoTets(t)
	f, ok := m.TupleFromSimplex(1, 2, 3)
	require.True(t, ok)
	check := Policy{Invariants: []Invariant{NoInversion{Positions: pos}}}

	out, o := m.Apply(&FaceSwap{Checks: check}, f)
	require.Equal(t, Applied, o)
	require.True(t, m.Equal(Edge, out[0], edge(t, m, 0, 4)))
	require.Equal(t, 3, m.NumCells())
	_, ok = m.TupleFromSimplex(1, 2, 3)
	require.False(t, ok)
	require.NoError(t, m.CheckConnectivity())
	requirePositive(t, m, pos)

	out, o = m.Apply(&EdgeSwap{Checks: check}, edge(t, m, 0, 4))
	require.Equal(t, Applied, o)
	require.Equal(t, 2, m.NumCells())
	_, ok = m.TupleFromEdge(0, 4)
	require.False(t, ok)
	g, ok := m.TupleFromSimplex(1, 2, 3)
	require.True(t, ok)
	require.True(t, m.Equal(Face, out[0], g))
	require.NoError(t, m.CheckConnectivity())
	requirePositive(t, m, pos)
	require.InDelta(t, volume(m, pos), 1.0/3, 1e-12)
}

func TestFaceSwapBoundaryFace(t *testing.T) {
	m, _ := twoTets(t)
	f, _ := m.TupleFromSimplex(0, 1, 2)
	_, o := m.Apply(&FaceSwap{}, f)
	require.Equal(t, RejectedBefore, o)
}

func TestEdgeSwap44(t *testing.T) {
	m, pos := octahedron(t)
	check := Policy{Invariants: []Invariant{NoInversion{Positions: pos}}}
	_, o := m.Apply(&EdgeSwap{Checks: check}, edge(t, m, 0, 1))
	require.Equal(t, Applied, o)
	require.Equal(t, 4, m.NumCells())
	_, ok := m.TupleFromEdge(0, 1)
	require.False(t, ok)
	edge(t, m, 2, 4)
	require.NoError(t, m.CheckConnectivity())
	requirePositive(t, m, pos)
	require.InDelta(t, 4.0/3, volume(m, pos), 1e-12)
}

func TestEdgeSwap44PicksBestScore(t *testing.T) {
	m, pos := octahedron(t)
	// Stretch the octahedron along y so that the diagonal (3, 5) is
	// longer than (2, 4).
	pos.Set(nil, 3, 0, 2, 0)
	pos.Set(nil, 5, 0, -2, 0)
	swap := &EdgeSwap{
		Checks: Policy{Invariants: []Invariant{NoInversion{Positions: pos}}},
		Score: func(e *Editor, out []Tuple) float64 {
			worst := 0.0
			for _, c := range e.AffectedCells(out) {
				var pts [][]float64
				for _, v := range e.Mesh().CellVertices(c) {
					pts = append(pts, pos.Get(v))
				}
				worst = max(worst, InverseQuality(pts))
			}
			return worst
		},
	}
	_, o := m.Apply(swap, edge(t, m, 0, 1))
	require.Equal(t, Applied, o)
	edge(t, m, 2, 4)
	_, ok := m.TupleFromEdge(3, 5)
	require.False(t, ok)
	require.NoError(t, m.CheckConnectivity())
	requirePositive(t, m, pos)
	require.Equal(t, 0, m.Attributes().OpenScopes())
	require.InDelta(t, 8.0/3, volume(m, pos), 1e-12)
}

func TestEdgeSwap56(t *testing.T) {
	// Five tetrahedra around the edge (0, 1), whose ring is a regular
	// pentagon.
	positions := [][]float64{{0, 0, 1}, {0, 0, -1}}
	var cells [][]int
	for k := 0; k < 5; k++ {
		a := 2 * math.Pi * float64(k) / 5
		positions = append(positions, []float64{math.Cos(a), math.Sin(a), 0})
		cells = append(cells, []int{0, 1, 2 + k, 2 + (k+1)%5})
	}
	m, pos := mustBuild(t, 3, positions, cells)
	want := volume(m, pos)
	require.InDelta(t, 2*math.Sin(2*math.Pi/5)*5/6, want, 1e-12)

	check := Policy{Invariants: []Invariant{NoInversion{Positions: pos}}}
	_, o := m.Apply(&EdgeSwap{Checks: check}, edge(t, m, 0, 1))
	require.Equal(t, Applied, o)
	require.Equal(t, 6, m.NumCells())
	_, ok := m.TupleFromEdge(0, 1)
	require.False(t, ok)

	diagonals := 0
	for i := 2; i < 7; i++ {
		for j := i + 2; j < 7; j++ {
			if i == 2 && j == 6 {
				continue
			}
			if _, ok := m.TupleFromEdge(i, j); ok {
				diagonals++
			}
		}
	}
	require.Equal(t, 2, diagonals)
	require.NoError(t, m.CheckConnectivity())
	requirePositive(t, m, pos)
	require.InDelta(t, want, volume(m, pos), 1e-12)
	require.Equal(t, 0, m.Attributes().OpenScopes())
}

func TestEdgeSwapRingTooLarge(t *testing.T) {
	m, _ := octahedron(t)
	_, o := m.Apply(&EdgeSwap{MaxRing: 3}, edge(t, m, 0, 1))
	require.Equal(t, RejectedBefore, o)
}
