package wildmesh

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLaplacianSmoothing(t *testing.T) {
	m, pos := grid2D(t, 2)
	pos.Set(nil, 4, 0.7, 0.6)
	smooth := &VertexSmooth{
		Relocate: Laplacian(pos),
		Checks:   Policy{Invariants: []Invariant{NoInversion{Positions: pos}}},
	}
	h := m.TupleFromVertex(4)
	out, o := m.Apply(smooth, h)
	require.Equal(t, Applied, o)
	require.InDeltaSlice(t, []float64{0.5, 0.5}, pos.Get(4), 1e-12)
	require.True(t, m.IsValid(h), "smoothing keeps handles valid")
	require.Equal(t, h, out[0])

	_, o = m.Apply(smooth, m.TupleFromVertex(0))
	require.Equal(t, RejectedAfter, o, "boundary vertices stay")
	require.Equal(t, []float64{0, 0}, pos.Get(0))
}

func TestSmoothingRejectsInversion(t *testing.T) {
	m, pos := grid2D(t, 2)
	smooth := &VertexSmooth{
		Relocate: func(e *Editor, v int) bool {
			pos.With(e.Scope()).Set(v, 2, 2)
			return true
		},
		Checks: Policy{Invariants: []Invariant{NoInversion{Positions: pos}}},
	}
	_, o := m.Apply(smooth, m.TupleFromVertex(4))
	require.Equal(t, RejectedAfter, o)
	require.Equal(t, []float64{0.5, 0.5}, pos.Get(4))
}

func TestEnergyBoundSeesPositionsBeforeTheEdit(t *testing.T) {
	m, pos := grid2D(t, 2)
	pos.Set(nil, 4, 0.6, 0.55)
	var before, after []float64
	smooth := &VertexSmooth{
		Relocate: Laplacian(pos),
		Checks: Policy{
			Invariants: []Invariant{EnergyBound{Positions: pos, Energy: InverseQuality}},
			After: func(e *Editor, out []Tuple) bool {
				acc := pos.With(e.Scope())
				e.Scope().ParentScope(func() {
					before = append(before, acc.Get(4)...)
				})
				after = append(after, acc.Get(4)...)
				return true
			},
		},
	}
	_, o := m.Apply(smooth, m.TupleFromVertex(4))
	require.Equal(t, Applied, o)
	require.Equal(t, []float64{0.6, 0.55}, before)
	require.InDeltaSlice(t, []float64{0.5, 0.5}, after, 1e-12)
}

func TestFrozenVertices(t *testing.T) {
	m, pos := grid2D(t, 2)
	frozen, err := Register[bool](m, "frozen", Vertex, 1)
	require.NoError(t, err)
	frozen.SetScalar(nil, 4, true)
	pos.Set(nil, 4, 0.6, 0.55)
	smooth := &VertexSmooth{
		Relocate: Laplacian(pos),
		Checks:   Policy{Invariants: []Invariant{FrozenVertices{Flag: frozen}}},
	}
	_, o := m.Apply(smooth, m.TupleFromVertex(4))
	require.Equal(t, RejectedBefore, o)
	require.Equal(t, []float64{0.6, 0.55}, pos.Get(4))
}

func TestEnvelope(t *testing.T) {
	m, pos := grid2D(t, 2)
	box := BoxEnvelope{Min: []float64{0, 0}, Max: []float64{1, 1}, Tolerance: 1e-9}
	smooth := &VertexSmooth{
		Relocate: func(e *Editor, v int) bool {
			pos.With(e.Scope()).Set(v, 0.5, 1.5)
			return true
		},
		Checks: Policy{Invariants: []Invariant{Envelope{Oracle: box, Positions: pos}}},
	}
	_, o := m.Apply(smooth, m.TupleFromVertex(4))
	require.Equal(t, RejectedAfter, o)

	smooth.Relocate = Laplacian(pos)
	_, o = m.Apply(smooth, m.TupleFromVertex(4))
	require.Equal(t, Applied, o)
}

func TestEdgeLengthChecks(t *testing.T) {
	m, pos := quad(t)
	split := &EdgeSplit{
		Positions: pos,
		Checks: Policy{Invariants: []Invariant{
			EdgeLengthAbove{Positions: pos, Min: 1.2},
		}},
	}
	_, o := m.Apply(split, edge(t, m, 0, 1))
	require.Equal(t, RejectedBefore, o)
	_, o = m.Apply(split, edge(t, m, 0, 2))
	require.Equal(t, Applied, o)

	collapse := &EdgeCollapse{Checks: Policy{Invariants: []Invariant{
		EdgeLengthBelow{Positions: pos, Max: 0.5},
	}}}
	_, o = m.Apply(collapse, edge(t, m, 4, 1))
	require.Equal(t, RejectedBefore, o)
}
