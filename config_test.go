package wildmesh

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParseRemeshConfig(t *testing.T) {
	c, err := ParseRemeshConfig([]byte("rounds: 5\n"))
	require.NoError(t, err)
	want := DefaultRemeshConfig()
	want.Rounds = 5
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	c, err = ParseRemeshConfig([]byte(`
target_edge_length: 0.05
passes:
  - name: refine
    operation: split
    policy: partitioned
    threads: 8
    max_retries: 3
  - operation: smooth
`))
	require.NoError(t, err)
	require.Equal(t, 0.05, c.TargetEdgeLength)
	require.Equal(t, 3, c.Rounds)
	require.Equal(t, []PassConfig{
		{Name: "refine", Operation: "split", Policy: "partitioned", Threads: 8, MaxRetries: 3},
		{Operation: "smooth"},
	}, c.Passes)
}

func TestParseRemeshConfigErrors(t *testing.T) {
	for _, src := range []string{
		"target_edge_length: 0\n",
		"rounds: -1\n",
		"passes: [{operation: split, policy: eager}]\n",
		"passes: [{operation: flip}]\n",
		"passes: [{operation: swap, threads: -2}]\n",
		"rounds: [\n",
	} {
		_, err := ParseRemeshConfig([]byte(src))
		require.ErrorIs(t, err, ErrConfig, src)
	}
}

func TestLoadRemeshConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remesh.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rounds: 1\n"), 0o644))
	c, err := LoadRemeshConfig(path)
	require.NoError(t, err)
	require.Equal(t, 1, c.Rounds)

	_, err = LoadRemeshConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	path = filepath.Join(t.TempDir(), "pass.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: refine\nthreads: 2\n"), 0o644))
	pc, err := LoadPassConfig(path)
	require.NoError(t, err)
	require.Equal(t, PassConfig{Name: "refine", Threads: 2}, pc)
}

func TestPassConfigApply(t *testing.T) {
	c, err := ParsePassConfig([]byte(`
name: coarsen
operation: collapse
policy: parallel
threads: 4
max_iterations: 100
stop_check_every: 16
`))
	require.NoError(t, err)

	p := &Pass{Name: "old", Operation: &EdgeCollapse{}}
	require.NoError(t, c.Apply(p))
	require.Equal(t, "coarsen", p.Name)
	require.Equal(t, Partitioned, p.Policy)
	require.Equal(t, 4, p.Threads)
	require.Equal(t, 100, p.MaxIterations)
	require.Equal(t, 16, p.StopCheckEvery)
	require.Equal(t, 0, p.MaxRetries)

	require.ErrorIs(t, PassConfig{Policy: "eager"}.Apply(p), ErrConfig)
	_, err = ParsePassConfig([]byte("max_retries: -1\n"))
	require.ErrorIs(t, err, ErrConfig)
}

func TestExecutionPolicyString(t *testing.T) {
	require.Equal(t, "sequential", Sequential.String())
	require.Equal(t, "partitioned", Partitioned.String())
	require.Equal(t, "ExecutionPolicy(7)", ExecutionPolicy(7).String())
}
