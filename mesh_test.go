package wildmesh

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		dim   int
		nv    int
		cells [][]int
		want  error
	}{
		{"dimension zero", 0, 3, nil, ErrDimension},
		{"dimension four", 4, 5, nil, ErrDimension},
		{"short cell", 2, 3, [][]int{{0, 1}}, ErrInvalidCell},
		{"out of range", 2, 3, [][]int{{0, 1, 3}}, ErrInvalidCell},
		{"negative id", 3, 4, [][]int{{0, 1, 2, -1}}, ErrInvalidCell},
		{"repeated vertex", 2, 3, [][]int{{0, 1, 1}}, ErrInvalidCell},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.dim, tt.nv, tt.cells)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewRemovesUnreferencedVertices(t *testing.T) {
	m, err := New(2, 5, [][]int{{0, 1, 3}})
	require.NoError(t, err)
	require.Equal(t, 5, m.VertexCapacity())
	require.Equal(t, 3, m.NumVertices())
	require.True(t, m.IsVertexRemoved(2))
	require.True(t, m.IsVertexRemoved(4))
	require.NoError(t, m.CheckConnectivity())

	// The lowest free id is reused first.
	require.Equal(t, 2, m.allocVertex())
	require.Equal(t, 4, m.allocVertex())
	require.Equal(t, 5, m.allocVertex())
}

func TestIncidence(t *testing.T) {
	m, _ := grid2D(t, 2)
	require.Equal(t, 9, m.NumVertices())
	require.Equal(t, 8, m.NumCells())
	require.Equal(t, []int{0, 1, 3, 5, 7, 8}, m.OneRingVertices(4))
	require.Len(t, m.IncidentCells(4), 6)
	require.Len(t, m.IncidentCells(0), 2)

	require.False(t, m.IsBoundaryVertex(4))
	for _, v := range []int{0, 1, 2, 3, 5, 6, 7, 8} {
		require.True(t, m.IsBoundaryVertex(v), "vertex %d", v)
	}
	require.True(t, m.IsBoundary(Edge, edge(t, m, 0, 1)))
	require.False(t, m.IsBoundary(Edge, edge(t, m, 0, 4)))
	require.False(t, m.IsBoundary(Edge, edge(t, m, 1, 4)))
}

func TestBoundaryOfCube(t *testing.T) {
	m, _ := grid3D(t, 2)
	center := 13
	require.False(t, m.IsBoundaryVertex(center))
	require.True(t, m.IsBoundaryVertex(0))
	require.Len(t, m.OneRingVertices(center), 14)
}

func TestCheckConnectivityFindsDuplicates(t *testing.T) {
	m, err := New(2, 3, [][]int{{0, 1, 2}, {1, 2, 0}})
	require.NoError(t, err)
	require.ErrorIs(t, m.CheckConnectivity(), ErrInvalidMesh)
}

func TestCheckConnectivityFindsBrokenIncidence(t *testing.T) {
	m, _ := quad(t)
	m.vertex(3).cells = nil
	require.ErrorIs(t, m.CheckConnectivity(), ErrInvalidMesh)
}

func TestCapacity(t *testing.T) {
	m, _ := grid3D(t, 1)
	require.Equal(t, 6, m.CellCapacity())
	require.Equal(t, 8, m.Capacity(Vertex))
	require.Equal(t, 36, m.Capacity(Edge))
	require.Equal(t, 24, m.Capacity(Face))
	require.Equal(t, 6, m.Capacity(Tetrahedron))
}

func TestForEachCell(t *testing.T) {
	m, _ := grid2D(t, 2)
	var seen []int
	m.ForEachCell(func(c int, verts []int) bool {
		require.Len(t, verts, 3)
		seen = append(seen, c)
		return len(seen) < 3
	})
	require.Equal(t, []int{0, 1, 2}, seen)
}
