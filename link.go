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
	"math"
	"slices"
)

// dummyVertex closes the boundary: every boundary facet is treated as if it
// were connected to one extra vertex, so that the link condition also holds
// for edges touching the boundary.
const dummyVertex = math.MaxInt

// simplexSet is a set of simplices closed under taking faces.
type simplexSet map[simplexKey]struct{}

// addClosure adds the simplex spanned by verts and all its faces.
func (c simplexSet) addClosure(verts []int) {
	n := len(verts)
	for mask := 1; mask < 1<<n; mask++ {
		sub := make([]int, 0, n)
		for i, v := range verts {
			if mask&(1<<i) != 0 {
				sub = append(sub, v)
			}
		}
		c[makeKey(sub)] = struct{}{}
	}
}

func without(verts []int, drop ...int) []int {
	out := make([]int, 0, len(verts))
	for _, v := range verts {
		if !slices.Contains(drop, v) {
			out = append(out, v)
		}
	}
	return out
}

// link returns the link of the simplex spanned by s: the faces of the cells
// containing s that do not meet s, together with the cone to dummyVertex
// over the boundary facets containing s.
func (m *Mesh) link(s []int) simplexSet {
	l := simplexSet{}
	var buf [4]int
	for _, c := range m.cellsContaining(s) {
		vs := m.cellVerts(c, &buf)
		if rest := without(vs, s...); len(rest) > 0 {
			l.addClosure(rest)
		}
		for _, u := range vs {
			if slices.Contains(s, u) {
				continue
			}
			facet := without(vs, u)
			if !m.isBoundaryFacet(facet) {
				continue
			}
			l.addClosure(append(without(facet, s...), dummyVertex))
		}
	}
	return l
}

// LinkCondition reports whether collapsing the edge (a, b) preserves the
// topology of the mesh: the links of a and b must intersect exactly in the
// link of the edge.
func (m *Mesh) LinkCondition(a, b int) bool {
	la := m.link([]int{a})
	lb := m.link([]int{b})
	lab := m.link([]int{a, b})
	n := 0
	for k := range la {
		if _, ok := lb[k]; !ok {
			continue
		}
		if _, ok := lab[k]; !ok {
			return false
		}
		n++
	}
	return n == len(lab)
}
