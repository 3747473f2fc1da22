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

import "slices"

// replace returns a copy of verts with every from replaced by to.
func replace(verts []int, from, to int) []int {
	out := slices.Clone(verts)
	for i, v := range out {
		if v == from {
			out[i] = to
		}
	}
	return out
}

// EdgeSplit inserts a vertex on an edge and splits every cell around the
// edge in two. The cell keeping the first endpoint reuses the old cell id;
// the other half is a new cell that copies the old cell's attributes.
//
// The new vertex gets its attributes from OnSplit. Without OnSplit and with
// Positions set, it is placed at the midpoint. The two halves of the split
// edge inherit the edge attributes of the original edge.
type EdgeSplit struct {
	Checks    Policy
	Positions *Attribute[float64]
	OnSplit   func(e *Editor, v, a, b int)
}

func (*EdgeSplit) Name() string {
	return "edge_split"
}

func (s *EdgeSplit) Policy() *Policy {
	return &s.Checks
}

func (*EdgeSplit) Seeds(m *Mesh, t Tuple) []int {
	return m.Vertices(Edge, t)
}

func (*EdgeSplit) Gather(e *Editor, t Tuple) bool {
	e.Gather(e.m.CellsAround(Edge, t)...)
	return len(e.region) > 0
}

func (s *EdgeSplit) Mutate(e *Editor, t Tuple) ([]Tuple, bool) {
	a, b := e.m.edgeEnds(t)
	v := e.NewVertex()
	switch {
	case s.OnSplit != nil:
		s.OnSplit(e, v, a, b)
	case s.Positions != nil:
		pa := s.Positions.Read(e.scope, a)
		pb := s.Positions.Read(e.scope, b)
		mid := make([]float64, len(pa))
		for i := range mid {
			mid[i] = interpolate(1, pa[i], 1, pb[i])
		}
		s.Positions.Set(e.scope, v, mid...)
	}
	for i, c := range e.region {
		verts := e.regionVts[i]
		e.RewriteCell(c, replace(verts, b, v)...)
		n := e.NewCell(replace(verts, a, v)...)
		e.CopyCellAttributes(n, c)
	}
	e.Inherit([]int{a, v}, []int{a, b})
	e.Inherit([]int{v, b}, []int{a, b})
	out, ok := e.m.TupleFromSimplex(v, b)
	return []Tuple{out}, ok
}

// CellSplit inserts a vertex inside a cell and connects it to every facet,
// replacing the cell by dim+1 cells. The first one reuses the old id.
type CellSplit struct {
	Checks    Policy
	Positions *Attribute[float64]
	// OnSplit sets the attributes of the new vertex v inside cell c, whose
	// vertices were verts.
	OnSplit func(e *Editor, v int, verts []int)
}

func (*CellSplit) Name() string {
	return "cell_split"
}

func (s *CellSplit) Policy() *Policy {
	return &s.Checks
}

func (*CellSplit) Seeds(m *Mesh, t Tuple) []int {
	return m.Vertices(m.CellKind(), t)
}

func (*CellSplit) Gather(e *Editor, t Tuple) bool {
	e.Gather(t.cell)
	return true
}

func (s *CellSplit) Mutate(e *Editor, t Tuple) ([]Tuple, bool) {
	c := t.cell
	verts := e.regionVts[0]
	v := e.NewVertex()
	switch {
	case s.OnSplit != nil:
		s.OnSplit(e, v, verts)
	case s.Positions != nil:
		centroid := make([]float64, s.Positions.Arity())
		for _, w := range verts {
			for i, x := range s.Positions.Read(e.scope, w) {
				centroid[i] += x / float64(len(verts))
			}
		}
		s.Positions.Set(e.scope, v, centroid...)
	}
	for i, w := range verts {
		nv := replace(verts, w, v)
		if i == 0 {
			e.RewriteCell(c, nv...)
			continue
		}
		n := e.NewCell(nv...)
		e.CopyCellAttributes(n, c)
	}
	return []Tuple{e.m.TupleFromVertex(v)}, true
}
