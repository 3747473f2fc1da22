// SGI FREE SOFTWARE LICENSE B (Version 2.0, Sept. 18, 2008)
// Copyright (C) [dates of first publication] Silicon Graphics, Inc.
// All Rights Reserved.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice including the dates of first publication and either this
// permission notice or a reference to http://oss.sgi.com/projects/FreeB/ shall be
// included in all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR IMPLIED,
// INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS FOR A
// PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL SILICON GRAPHICS, INC.
// BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
// TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE
// OR OTHER DEALINGS IN THE SOFTWARE.
//
// Except as contained in this notice, the name of Silicon Graphics, Inc. shall not
// be used in advertising or otherwise to promote the sale, use or other dealings in
// this Software without prior written authorization from Silicon Graphics, Inc.

package wildmesh

import (
	"fmt"
	"slices"
)

// Build creates a mesh from vertex coordinates and cells and registers the
// coordinates as the vertex attribute "position".
func Build(dim int, positions [][]float64, cells [][]int, opts ...Option) (*Mesh, *Attribute[float64], error) {
	m, err := New(dim, len(positions), cells, opts...)
	if err != nil {
		return nil, nil, err
	}
	arity := dim
	if len(positions) > 0 {
		arity = len(positions[0])
	}
	pos, err := Register[float64](m, "position", Vertex, arity)
	if err != nil {
		return nil, nil, err
	}
	for v, p := range positions {
		if len(p) != arity {
			return nil, nil, fmt.Errorf("wildmesh: vertex %d has %d coordinates, want %d", v, len(p), arity)
		}
		pos.Set(nil, v, p...)
	}
	return m, pos, nil
}

// Snapshot is a plain copy of the live part of a mesh. Ids are the mesh's
// own ids; they are dense only after Consolidate.
type Snapshot struct {
	Dim       int
	Vertices  []int
	Positions [][]float64
	Cells     [][]int
	Edges     [][2]int
}

// Export copies the live vertices, cells and edges of m. If pos is not nil
// the coordinates of each live vertex are copied too.
func (m *Mesh) Export(pos *Attribute[float64]) Snapshot {
	s := Snapshot{Dim: m.dim}
	for v := 0; v < m.verts.len(); v++ {
		if m.IsVertexRemoved(v) {
			continue
		}
		s.Vertices = append(s.Vertices, v)
		if pos != nil {
			s.Positions = append(s.Positions, slices.Clone(pos.Get(v)))
		}
	}
	for c := 0; c < m.cells.len(); c++ {
		if !m.IsCellRemoved(c) {
			s.Cells = append(s.Cells, m.CellVertices(c))
		}
	}
	for _, t := range m.Edges() {
		vs := m.Vertices(Edge, t)
		e := [2]int{vs[0], vs[1]}
		if e[0] > e[1] {
			e[0], e[1] = e[1], e[0]
		}
		s.Edges = append(s.Edges, e)
	}
	slices.SortFunc(s.Edges, func(a, b [2]int) int {
		if a[0] != b[0] {
			return a[0] - b[0]
		}
		return a[1] - b[1]
	})
	return s
}
