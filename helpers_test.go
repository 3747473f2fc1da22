package wildmesh

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustBuild(t *testing.T, dim int, positions [][]float64, cells [][]int) (*Mesh, *Attribute[float64]) {
	t.Helper()
	b := NewBuilder(dim)
	b.Orient = true
	b.AddMesh(positions, cells)
	m, pos, err := b.Build()
	require.NoError(t, err)
	require.NoError(t, m.CheckConnectivity())
	return m, pos
}

// quad is the unit square cut along the diagonal (0, 2).
func quad(t *testing.T) (*Mesh, *Attribute[float64]) {
	return mustBuild(t, 2,
		[][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		[][]int{{0, 1, 2}, {0, 2, 3}})
}

func grid2D(t *testing.T, n int) (*Mesh, *Attribute[float64]) {
	pos, tris := Grid2D(n, n)
	return mustBuild(t, 2, pos, tris)
}

func grid3D(t *testing.T, n int) (*Mesh, *Attribute[float64]) {
	pos, tets := Grid3D(n)
	return mustBuild(t, 3, pos, tets)
}

func edge(t *testing.T, m *Mesh, a, b int) Tuple {
	t.Helper()
	e, ok := m.TupleFromEdge(a, b)
	require.True(t, ok, "edge (%d, %d) does not exist", a, b)
	return e
}

func requirePositive(t *testing.T, m *Mesh, pos *Attribute[float64]) {
	t.Helper()
	for c := 0; c < m.CellCapacity(); c++ {
		if m.IsCellRemoved(c) {
			continue
		}
		var pts [][]float64
		for _, v := range m.CellVertices(c) {
			pts = append(pts, pos.Get(v))
		}
		require.Equal(t, Positive, FilteredPredicates{}.Orientation(pts), "cell %d %v", c, m.CellVertices(c))
	}
}

func maxEdgeLength(m *Mesh, pos *Attribute[float64]) float64 {
	longest := 0.0
	for _, e := range m.Edges() {
		a, b := m.edgeEnds(e)
		longest = max(longest, edgeLength(pos.Get(a), pos.Get(b)))
	}
	return longest
}

// volume returns the total signed measure of the live cells.
func volume(m *Mesh, pos *Attribute[float64]) float64 {
	total := 0.0
	for c := 0; c < m.CellCapacity(); c++ {
		if m.IsCellRemoved(c) {
			continue
		}
		vs := m.CellVertices(c)
		p0 := vec(pos.Get(vs[0]))
		switch m.Dim() {
		case 2:
			p1, p2 := vec(pos.Get(vs[1])), vec(pos.Get(vs[2]))
			total += ((p1.X-p0.X)*(p2.Y-p0.Y) - (p1.Y-p0.Y)*(p2.X-p0.X)) / 2
		case 3:
			a := vec(pos.Get(vs[1]))
			b := vec(pos.Get(vs[2]))
			d := vec(pos.Get(vs[3]))
			a.X, a.Y, a.Z = a.X-p0.X, a.Y-p0.Y, a.Z-p0.Z
			b.X, b.Y, b.Z = b.X-p0.X, b.Y-p0.Y, b.Z-p0.Z
			d.X, d.Y, d.Z = d.X-p0.X, d.Y-p0.Y, d.Z-p0.Z
			total += (a.X*(b.Y*d.Z-b.Z*d.Y) - a.Y*(b.X*d.Z-b.Z*d.X) + a.Z*(b.X*d.Y-b.Y*d.X)) / 6
		}
	}
	return total
}
