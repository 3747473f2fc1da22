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

import "gonum.org/v1/gonum/spatial/r3"

// VertexSmooth moves one vertex. The connectivity does not change, so no
// handle becomes stale; the post-checks see the cells around the vertex.
type VertexSmooth struct {
	Checks Policy
	// Relocate writes the new attributes of v. Returning false cancels the
	// edit.
	Relocate func(e *Editor, v int) bool
}

func (*VertexSmooth) Name() string {
	return "vertex_smooth"
}

func (s *VertexSmooth) Policy() *Policy {
	return &s.Checks
}

func (*VertexSmooth) Seeds(m *Mesh, t Tuple) []int {
	return []int{m.VertexID(t)}
}

func (*VertexSmooth) Gather(e *Editor, t Tuple) bool {
	e.Gather(e.m.vertex(e.m.VertexID(t)).cells...)
	return true
}

func (s *VertexSmooth) Mutate(e *Editor, t Tuple) ([]Tuple, bool) {
	v := e.m.VertexID(t)
	if s.Relocate == nil || !s.Relocate(e, v) {
		return nil, false
	}
	return []Tuple{t}, true
}

// Laplacian returns a relocation that moves an interior vertex to the
// average of its neighbors. Boundary vertices are left alone.
func Laplacian(positions *Attribute[float64]) func(e *Editor, v int) bool {
	return func(e *Editor, v int) bool {
		m := e.Mesh()
		if m.IsBoundaryVertex(v) {
			return false
		}
		ring := m.OneRingVertices(v)
		if len(ring) == 0 {
			return false
		}
		acc := positions.With(e.Scope())
		var sum r3.Vec
		for _, w := range ring {
			sum = r3.Add(sum, vec(acc.Get(w)))
		}
		avg := r3.Scale(1/float64(len(ring)), sum)
		p := []float64{avg.X, avg.Y, avg.Z}[:positions.Arity()]
		acc.Set(v, p...)
		return true
	}
}
