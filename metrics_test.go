package wildmesh

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewMetrics(reg)
	require.NoError(t, err)
	b, err := NewMetrics(reg)
	require.NoError(t, err)
	require.Same(t, a.Edits, b.Edits)
	require.Same(t, a.PassDurations, b.PassDurations)
	require.Equal(t, a.Vertices, b.Vertices)

	clash := prometheus.NewRegistry()
	clash.MustRegister(prometheus.NewGauge(prometheus.GaugeOpts{Name: "wildmesh_edits_total", Help: "clash"}))
	_, err = NewMetrics(clash)
	require.Error(t, err)
}

func TestPassMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	m, pos := grid2D(t, 2)
	p := splitPass(pos, 0.3)
	p.Name = "refine"
	p.Metrics = metrics
	stats, err := p.Run(context.Background(), m, m.Edges())
	require.NoError(t, err)

	require.Equal(t, float64(stats.Applied), testutil.ToFloat64(metrics.Edits.WithLabelValues("refine", "applied")))
	require.Equal(t, float64(stats.Rejected), testutil.ToFloat64(metrics.Edits.WithLabelValues("refine", "rejected_before")))
	require.Equal(t, float64(m.NumVertices()), testutil.ToFloat64(metrics.Vertices))
	require.Equal(t, float64(m.NumCells()), testutil.ToFloat64(metrics.Cells))
	require.Equal(t, 1, testutil.CollectAndCount(metrics.PassDurations))
}

func TestNilMetrics(t *testing.T) {
	var metrics *Metrics
	m, _ := quad(t)
	require.NotPanics(t, func() {
		metrics.observeEdit("p", Applied)
		metrics.observePass("p", Stats{}, 0, m)
	})
}
