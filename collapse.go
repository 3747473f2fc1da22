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

// EdgeCollapse merges the vertex a handle points at into the other end of
// its edge. The cells containing the edge are deleted and every other cell
// of the removed vertex is rewritten in place to use the surviving vertex.
//
// Some special cases:
//   - A collapse that would leave a vertex without cells, or two cells
//     spanning the same vertices, is refused.
//   - The link condition is not checked unless LinkCondition is among the
//     invariants.
type EdgeCollapse struct {
	Checks Policy
	// OnCollapse runs before the connectivity changes with the removed
	// vertex a and the survivor b. It typically moves b.
	OnCollapse func(e *Editor, a, b int)
}

func (*EdgeCollapse) Name() string {
	return "edge_collapse"
}

func (c *EdgeCollapse) Policy() *Policy {
	return &c.Checks
}

func (*EdgeCollapse) Seeds(m *Mesh, t Tuple) []int {
	return m.Vertices(Edge, t)
}

func (*EdgeCollapse) Gather(e *Editor, t Tuple) bool {
	a, b := e.m.edgeEnds(t)
	e.Gather(e.m.vertex(a).cells...)
	e.Gather(e.m.vertex(b).cells...)
	return true
}

func (c *EdgeCollapse) Mutate(e *Editor, t Tuple) ([]Tuple, bool) {
	m := e.m
	a, b := m.edgeEnds(t)
	shared := m.cellsContaining([]int{a, b})
	aCells := slices.Clone(m.vertex(a).cells)
	bCells := m.vertex(b).cells

	var buf [4]int
	// Every vertex of a deleted cell must keep another cell.
	for _, s := range shared {
		for _, w := range m.cellVerts(s, &buf) {
			if w == a || w == b {
				continue
			}
			rest := 0
			for _, x := range m.vertex(w).cells {
				if !slices.Contains(shared, x) {
					rest++
				}
			}
			if rest == 0 {
				return nil, false
			}
		}
	}
	if len(aCells)+len(bCells)-2*len(shared) == 0 {
		return nil, false
	}
	// A rewritten cell must not duplicate a cell of b.
	existing := map[[4]int]bool{}
	for _, x := range bCells {
		if slices.Contains(shared, x) {
			continue
		}
		existing[sortedKey(m.cellVerts(x, &buf))] = true
	}
	for _, x := range aCells {
		if slices.Contains(shared, x) {
			continue
		}
		k := sortedKey(replace(m.cellVerts(x, &buf), a, b))
		if existing[k] {
			return nil, false
		}
		existing[k] = true
	}

	if c.OnCollapse != nil {
		c.OnCollapse(e, a, b)
	}
	for _, s := range shared {
		e.RemoveCell(s)
	}
	for _, x := range aCells {
		if slices.Contains(shared, x) {
			continue
		}
		e.RewriteCell(x, replace(m.cellVerts(x, &buf), a, b)...)
	}
	e.RemoveVertex(a)
	return []Tuple{m.TupleFromVertex(b)}, true
}

func sortedKey(verts []int) [4]int {
	k := [4]int{-1, -1, -1, -1}
	copy(k[:], verts)
	slices.Sort(k[:len(verts)])
	return k
}
