package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	wildmesh "github.com/hajimehoshi/go-wildmesh"
)

var (
	verbose     bool
	trace       bool
	metricsAddr string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "wildmesh",
	Short: "Local simplicial mesh editing",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

type remeshFlags struct {
	dim         int
	grid        int
	config      string
	threads     int
	target      float64
	rounds      int
	output      string
	consolidate bool
}

var remeshOpts remeshFlags

var remeshCmd = &cobra.Command{
	Use:   "remesh",
	Short: "Remesh a generated grid toward a target edge length",
	Long: `Builds a unit square (--dim 2) or unit cube (--dim 3) grid and runs rounds
of split, collapse, swap and smooth passes on it.

Example:
  wildmesh remesh --dim 3 --grid 4 --target 0.2 --threads 4`,
	RunE: runRemesh,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Build a generated grid and audit its connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _, err := buildGrid(remeshOpts.dim, remeshOpts.grid)
		if err != nil {
			return err
		}
		if err := m.CheckConnectivity(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %d vertices, %d cells, %d edges\n",
			m.NumVertices(), m.NumCells(), len(m.Edges()))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVar(&remeshOpts.dim, "dim", 2, "mesh dimension (2 or 3)")
	rootCmd.PersistentFlags().IntVar(&remeshOpts.grid, "grid", 8, "grid resolution")

	f := remeshCmd.Flags()
	f.StringVar(&remeshOpts.config, "config", "", "YAML remeshing configuration")
	f.IntVar(&remeshOpts.threads, "threads", 0, "worker threads for every pass; 0 keeps the configuration")
	f.Float64Var(&remeshOpts.target, "target", 0, "target edge length; 0 keeps the configuration")
	f.IntVar(&remeshOpts.rounds, "rounds", 0, "number of rounds; 0 keeps the configuration")
	f.StringVarP(&remeshOpts.output, "output", "o", "", "write the resulting mesh as YAML")
	f.BoolVar(&remeshOpts.consolidate, "consolidate", true, "renumber the mesh densely after remeshing")
	f.BoolVar(&trace, "trace", false, "print pass spans to stdout")
	f.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address until interrupted")

	rootCmd.AddCommand(remeshCmd, checkCmd)
}

func buildGrid(dim, n int) (*wildmesh.Mesh, *wildmesh.Attribute[float64], error) {
	if n < 1 {
		return nil, nil, fmt.Errorf("grid resolution must be positive, got %d", n)
	}
	b := wildmesh.NewBuilder(dim, wildmesh.WithLogger(logger))
	switch dim {
	case 2:
		b.AddMesh(wildmesh.Grid2D(n, n))
	case 3:
		b.AddMesh(wildmesh.Grid3D(n))
	default:
		return nil, nil, fmt.Errorf("%w: %d", wildmesh.ErrDimension, dim)
	}
	return b.Build()
}

func setupTracing(ctx context.Context) (func(context.Context) error, error) {
	exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("create stdout exporter: %w", err)
	}
	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", "wildmesh"),
	))
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

func runRemesh(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := wildmesh.DefaultRemeshConfig()
	if remeshOpts.config != "" {
		var err error
		if cfg, err = wildmesh.LoadRemeshConfig(remeshOpts.config); err != nil {
			return err
		}
	}
	if remeshOpts.target > 0 {
		cfg.TargetEdgeLength = remeshOpts.target
	}
	if remeshOpts.rounds > 0 {
		cfg.Rounds = remeshOpts.rounds
	}
	if remeshOpts.threads > 0 {
		for i := range cfg.Passes {
			cfg.Passes[i].Threads = remeshOpts.threads
			if remeshOpts.threads > 1 {
				cfg.Passes[i].Policy = wildmesh.Partitioned.String()
			}
		}
	}

	if trace {
		shutdown, err := setupTracing(ctx)
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(sctx); err != nil {
				logger.Warn("tracer shutdown failed", zap.Error(err))
			}
		}()
	}

	reg := prometheus.NewRegistry()
	metrics, err := wildmesh.NewMetrics(reg)
	if err != nil {
		return err
	}

	m, pos, err := buildGrid(remeshOpts.dim, remeshOpts.grid)
	if err != nil {
		return err
	}
	r := &wildmesh.Remesher{
		Mesh:      m,
		Positions: pos,
		Config:    cfg,
		Logger:    logger,
		Metrics:   metrics,
	}
	start := time.Now()
	stats, err := r.Run(ctx)
	if err != nil {
		return err
	}
	if err := m.CheckConnectivity(); err != nil {
		return err
	}
	if remeshOpts.consolidate {
		m.Consolidate()
	}

	out := cmd.OutOrStdout()
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := stats[name]
		fmt.Fprintf(out, "%-10s attempted=%d applied=%d rejected=%d stale=%d contended=%d\n",
			name, s.Attempted, s.Applied, s.Rejected, s.Stale, s.Contended)
	}
	fmt.Fprintf(out, "%d vertices, %d cells in %v\n", m.NumVertices(), m.NumCells(), time.Since(start).Round(time.Millisecond))

	if remeshOpts.output != "" {
		data, err := yaml.Marshal(m.Export(pos))
		if err != nil {
			return err
		}
		if err := os.WriteFile(remeshOpts.output, data, 0o644); err != nil {
			return err
		}
	}

	if metricsAddr != "" {
		return serveMetrics(ctx, reg)
	}
	return nil
}

func serveMetrics(ctx context.Context, reg *prometheus.Registry) error {
	srv := &http.Server{
		Addr:              metricsAddr,
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	logger.Info("serving metrics", zap.String("addr", metricsAddr))
	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
