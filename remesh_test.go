package wildmesh

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRemesher(t *testing.T) {
	for _, policy := range []string{"sequential", "partitioned"} {
		t.Run(policy, func(t *testing.T) {
			m, pos := grid2D(t, 4)
			frozen, err := Register[bool](m, "frozen", Vertex, 1)
			require.NoError(t, err)
			frozen.SetScalar(nil, 12, true)

			cfg := DefaultRemeshConfig()
			cfg.TargetEdgeLength = 0.15
			cfg.Rounds = 2
			for i := range cfg.Passes {
				cfg.Passes[i].Policy = policy
				cfg.Passes[i].Threads = 4
			}
			r := &Remesher{
				Mesh:      m,
				Positions: pos,
				Frozen:    frozen,
				Config:    cfg,
				Logger:    zaptest.NewLogger(t),
			}
			stats, err := r.Run(context.Background())
			require.NoError(t, err)
			require.Len(t, stats, 4)
			require.Positive(t, stats["split"].Applied)

			require.NoError(t, m.CheckConnectivity())
			requirePositive(t, m, pos)
			require.InDelta(t, 1.0, volume(m, pos), 1e-9)
			require.False(t, m.IsVertexRemoved(12))
			require.Equal(t, []float64{0.5, 0.5}, pos.Get(12))
			require.Equal(t, 0, m.Attributes().OpenScopes())
		})
	}
}

func TestRemesher3D(t *testing.T) {
	m, pos := grid3D(t, 2)
	cfg := DefaultRemeshConfig()
	cfg.TargetEdgeLength = 0.4
	cfg.Rounds = 1
	r := &Remesher{Mesh: m, Positions: pos, Config: cfg}
	stats, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Positive(t, stats["split"].Applied)
	require.NoError(t, m.CheckConnectivity())
	requirePositive(t, m, pos)
	require.InDelta(t, 1.0, volume(m, pos), 1e-9)
}

func TestRemesherUnknownOperation(t *testing.T) {
	m, pos := quad(t)
	r := &Remesher{
		Mesh:      m,
		Positions: pos,
		Config:    &RemeshConfig{TargetEdgeLength: 1, Rounds: 1, Passes: []PassConfig{{Operation: "flip"}}},
	}
	_, err := r.Run(context.Background())
	require.ErrorIs(t, err, ErrConfig)
}
