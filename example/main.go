//go:build example
// +build example

package main

import (
	"context"
	"image/color"
	"log"
	"math"

	"github.com/hajimehoshi/ebiten"
	"github.com/hajimehoshi/ebiten/ebitenutil"

	"github.com/hajimehoshi/go-wildmesh"
)

const (
	screenWidth  = 480
	screenHeight = 480
	margin       = 24
)

var (
	white     *ebiten.Image
	triangles []ebiten.Vertex
	indices   []uint16
	edges     [][4]float32
)

func project(p []float64) (float32, float32) {
	s := float64(screenWidth - 2*margin)
	return float32(margin + p[0]*s), float32(screenHeight - margin - p[1]*s)
}

// prepare remeshes a coarse grid and converts it into drawable vertices,
// shading every triangle by its quality.
func prepare() error {
	b := wildmesh.NewBuilder(2)
	b.AddMesh(wildmesh.Grid2D(6, 6))
	m, pos, err := b.Build()
	if err != nil {
		return err
	}
	cfg := wildmesh.DefaultRemeshConfig()
	cfg.TargetEdgeLength = 0.08
	r := &wildmesh.Remesher{Mesh: m, Positions: pos, Config: cfg}
	if _, err := r.Run(context.Background()); err != nil {
		return err
	}
	m.Consolidate()

	snap := m.Export(pos)
	index := map[int]int{}
	for i, v := range snap.Vertices {
		index[v] = i
	}
	q := wildmesh.FilteredPredicates{}
	for _, c := range snap.Cells {
		pts := [][]float64{snap.Positions[index[c[0]]], snap.Positions[index[c[1]]], snap.Positions[index[c[2]]]}
		shade := float32(math.Max(0, math.Min(1, q.Quality(pts))))
		for _, p := range pts {
			x, y := project(p)
			indices = append(indices, uint16(len(triangles)))
			triangles = append(triangles, ebiten.Vertex{
				DstX: x, DstY: y,
				SrcX: 1, SrcY: 1,
				ColorR: 1 - shade, ColorG: shade, ColorB: 0.3, ColorA: 1,
			})
		}
	}
	for _, e := range snap.Edges {
		x0, y0 := project(snap.Positions[index[e[0]]])
		x1, y1 := project(snap.Positions[index[e[1]]])
		edges = append(edges, [4]float32{x0, y0, x1, y1})
	}
	log.Printf("%d vertices, %d triangles", len(snap.Vertices), len(snap.Cells))
	return nil
}

func update(screen *ebiten.Image) error {
	if ebiten.IsDrawingSkipped() {
		return nil
	}
	screen.Fill(color.White)
	screen.DrawTriangles(triangles, indices, white, nil)
	for _, e := range edges {
		ebitenutil.DrawLine(screen, float64(e[0]), float64(e[1]), float64(e[2]), float64(e[3]), color.Black)
	}
	return nil
}

func main() {
	if err := prepare(); err != nil {
		log.Fatal(err)
	}
	var err error
	white, err = ebiten.NewImage(4, 4, ebiten.FilterDefault)
	if err != nil {
		log.Fatal(err)
	}
	white.Fill(color.White)
	if err := ebiten.Run(update, screenWidth, screenHeight, 1, "wildmesh"); err != nil {
		log.Fatal(err)
	}
}
