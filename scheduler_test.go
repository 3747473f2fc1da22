package wildmesh

import (
	"context"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func splitPass(pos *Attribute[float64], longer float64) *Pass {
	return &Pass{
		Operation: &EdgeSplit{
			Positions: pos,
			Checks: Policy{Invariants: []Invariant{
				EdgeLengthAbove{Positions: pos, Min: longer},
			}},
		},
		Priority: func(m *Mesh, t Tuple) float64 {
			a, b := m.edgeEnds(t)
			return edgeLength(pos.Get(a), pos.Get(b))
		},
		Renew: RenewEdges,
	}
}

func TestSequentialSplitPass(t *testing.T) {
	m, pos := grid2D(t, 2)
	p := splitPass(pos, 0.3)
	stats, err := p.Run(context.Background(), m, m.Edges())
	require.NoError(t, err)
	require.Positive(t, stats.Applied)
	require.Equal(t, stats.Attempted, stats.Applied+stats.Rejected)
	require.LessOrEqual(t, maxEdgeLength(m, pos), 0.3)
	require.NoError(t, m.CheckConnectivity())
	requirePositive(t, m, pos)
	require.InDelta(t, 1.0, volume(m, pos), 1e-9)
	require.Equal(t, 0, m.Attributes().OpenScopes())
}

func TestSequentialPassTakesHeaviestFirst(t *testing.T) {
	m, pos := quad(t)
	var order []float64
	p := splitPass(pos, 10)
	p.Admit = func(m *Mesh, t Tuple, w float64) bool {
		order = append(order, w)
		return true
	}
	p.Renew = nil
	_, err := p.Run(context.Background(), m, m.Edges())
	require.NoError(t, err)
	require.Len(t, order, 5)
	for i := 1; i < len(order); i++ {
		require.GreaterOrEqual(t, order[i-1], order[i])
	}
}

func TestPassBudgetAndStop(t *testing.T) {
	m, pos := grid2D(t, 2)
	p := splitPass(pos, 0.01)
	p.MaxIterations = 7
	stats, err := p.Run(context.Background(), m, m.Edges())
	require.NoError(t, err)
	require.Equal(t, int64(7), stats.Attempted)
	require.Equal(t, 9+7, m.NumVertices())

	m, pos = grid2D(t, 2)
	p = splitPass(pos, 0.01)
	p.Stop = func(m *Mesh) bool { return m.NumVertices() >= 12 }
	p.StopCheckEvery = 2
	stats, err = p.Run(context.Background(), m, m.Edges())
	require.NoError(t, err)
	require.Equal(t, int64(4), stats.Applied)
	require.Equal(t, 13, m.NumVertices())
}

func TestPassCanceled(t *testing.T) {
	m, pos := grid2D(t, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats, err := splitPass(pos, 0.01).Run(ctx, m, m.Edges())
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, int64(0), stats.Attempted)
}

func TestStaleHandlesAreSkipped(t *testing.T) {
	m, pos := quad(t)
	diag := edge(t, m, 0, 2)
	p := &Pass{Operation: &EdgeSplit{Positions: pos}}
	stats, err := p.Run(context.Background(), m, []Tuple{diag, diag})
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.Applied)
	require.Equal(t, int64(1), stats.Stale)
	require.Equal(t, int64(1), stats.Attempted)
}

func TestPartition(t *testing.T) {
	m, _ := grid2D(t, 4)
	parts := Partition(m, 4)
	require.Len(t, parts, m.VertexCapacity())
	sizes := map[int]int{}
	for _, p := range parts {
		sizes[p]++
	}
	require.Len(t, sizes, 4)
	total := 0
	for p, n := range sizes {
		require.LessOrEqual(t, n, 7, "part %d", p)
		total += n
	}
	require.Equal(t, m.NumVertices(), total)
	require.Equal(t, make([]int, m.VertexCapacity()), Partition(m, 1))
}

func TestPartitionedSplitPass(t *testing.T) {
	m, pos := grid2D(t, 4)
	p := splitPass(pos, 0.1)
	p.Policy = Partitioned
	p.Threads = 4
	p.MaxRetries = 2
	stats, err := p.Run(context.Background(), m, m.Edges())
	require.NoError(t, err)
	require.Positive(t, stats.Applied)
	require.LessOrEqual(t, maxEdgeLength(m, pos), 0.1)
	require.NoError(t, m.CheckConnectivity())
	requirePositive(t, m, pos)
	require.InDelta(t, 1.0, volume(m, pos), 1e-9)
	require.Equal(t, 0, m.Attributes().OpenScopes())
}

func TestPartitionedPassLocksOneRings(t *testing.T) {
	m, _ := grid2D(t, 6)
	busy := make([]atomic.Int32, m.VertexCapacity())
	var overlaps atomic.Int32
	smooth := &VertexSmooth{
		Relocate: func(e *Editor, v int) bool {
			region := append([]int{v}, e.Mesh().OneRingVertices(v)...)
			for _, w := range region {
				if busy[w].Add(1) > 1 {
					overlaps.Add(1)
				}
			}
			for i := 0; i < 10; i++ {
				runtime.Gosched()
			}
			for _, w := range region {
				busy[w].Add(-1)
			}
			return false
		},
	}
	p := &Pass{
		Operation:  smooth,
		Policy:     Partitioned,
		Threads:    4,
		MaxRetries: 1,
	}
	tuples := m.VertexTuples()
	stats, err := p.Run(context.Background(), m, tuples)
	require.NoError(t, err)
	require.Equal(t, int32(0), overlaps.Load())
	require.Equal(t, int64(len(tuples)), stats.Attempted)
	require.Equal(t, int64(len(tuples)), stats.Rejected)
}

func TestPartitionedPassBudget(t *testing.T) {
	m, pos := grid2D(t, 4)
	p := splitPass(pos, 0.01)
	p.Policy = Partitioned
	p.Threads = 3
	p.MaxIterations = 10
	stats, err := p.Run(context.Background(), m, m.Edges())
	require.NoError(t, err)
	require.LessOrEqual(t, stats.Attempted, int64(10))
	require.NoError(t, m.CheckConnectivity())
}
