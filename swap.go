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

// EdgeSwap replaces the cells around an interior edge by a different
// triangulation of the same region.
//
// In a triangle mesh the two triangles (a, b, c) and (b, a, d) become
// (a, d, c) and (b, c, d), keeping their ids.
//
// In a tetrahedral mesh the n tetrahedra around the edge (a, b) form a ring
// c_0 ... c_{n-1}. The ring polygon is triangulated as a fan from one ring
// vertex and each triangle is joined to a and to b, giving 2n-4 tetrahedra:
// the 3-2, 4-4 and 5-6 swaps for n = 3, 4, 5. Every fan apex is tried in its
// own nested scope; the first one that passes the post-checks is kept, or,
// if Score is set, the one with the lowest score.
type EdgeSwap struct {
	Checks Policy
	// MaxRing bounds n for tetrahedral meshes. Zero means 5.
	MaxRing int
	// Score ranks the candidate triangulations of a tetrahedral swap.
	Score func(e *Editor, out []Tuple) float64
}

func (*EdgeSwap) Name() string {
	return "edge_swap"
}

func (s *EdgeSwap) Policy() *Policy {
	return &s.Checks
}

func (*EdgeSwap) Seeds(m *Mesh, t Tuple) []int {
	return m.Vertices(Edge, t)
}

func (s *EdgeSwap) Gather(e *Editor, t Tuple) bool {
	cells := e.m.CellsAround(Edge, t)
	switch e.m.dim {
	case 2:
		if len(cells) != 2 {
			return false
		}
	case 3:
		limit := s.MaxRing
		if limit == 0 {
			limit = 5
		}
		if len(cells) < 3 || len(cells) > limit {
			return false
		}
	default:
		return false
	}
	e.Gather(cells...)
	return true
}

func (s *EdgeSwap) Mutate(e *Editor, t Tuple) ([]Tuple, bool) {
	if e.m.dim == 2 {
		return s.swap2(e, t)
	}
	return s.swap3(e, t)
}

func (s *EdgeSwap) swap2(e *Editor, t Tuple) ([]Tuple, bool) {
	m := e.m
	a, b := m.edgeEnds(t)
	c := without(e.regionVts[0], a, b)[0]
	d := without(e.regionVts[1], a, b)[0]
	if _, ok := m.TupleFromSimplex(c, d); ok {
		return nil, false
	}
	e.RewriteCell(e.region[0], replace(e.regionVts[0], b, d)...)
	e.RewriteCell(e.region[1], replace(e.regionVts[1], a, c)...)
	out, ok := m.TupleFromSimplex(c, d)
	return []Tuple{out}, ok
}

// ring returns the vertices around the edge (a, b) ordered so that
// (a, b, c_i, c_{i+1}) has the same orientation as the stored cells. It
// returns nil if the cells do not close up into one consistently oriented
// ring.
func ring(a, b int, cells [][]int) []int {
	next := map[int]int{}
	for _, verts := range cells {
		rest := without(verts, a, b)
		x, y := rest[0], rest[1]
		if !evenPermutation(verts, []int{a, b, x, y}) {
			x, y = y, x
		}
		if _, ok := next[x]; ok {
			return nil
		}
		next[x] = y
	}
	start := math.MaxInt
	for x := range next {
		start = min(start, x)
	}
	r := []int{start}
	for v := next[start]; v != start; v = next[v] {
		if len(r) > len(cells) {
			return nil
		}
		if _, ok := next[v]; !ok {
			return nil
		}
		r = append(r, v)
	}
	if len(r) != len(cells) {
		return nil
	}
	return r
}

func (s *EdgeSwap) swap3(e *Editor, t Tuple) ([]Tuple, bool) {
	m := e.m
	a, b := m.edgeEnds(t)
	r := ring(a, b, e.regionVts)
	if r == nil {
		return nil, false
	}
	n := len(r)
	apexes := n
	switch n {
	case 3:
		apexes = 1
	case 4:
		apexes = 2
	}

	if s.Score == nil {
		for k := 0; k < apexes; k++ {
			if out, ok := e.Attempt(func() ([]Tuple, bool) { return s.fan(e, a, b, r, k) }); ok {
				return out, true
			}
		}
		return nil, false
	}

	best, bestScore := -1, math.Inf(1)
	for k := 0; k < apexes; k++ {
		score := math.Inf(1)
		e.Attempt(func() ([]Tuple, bool) {
			out, ok := s.fan(e, a, b, r, k)
			if !ok {
				return nil, false
			}
			// Keep the score, then fail so that the attempt is undone.
			if e.op.Policy().after(e, out) {
				score = s.Score(e, out)
			}
			return nil, false
		})
		if score < bestScore {
			best, bestScore = k, score
		}
	}
	if best < 0 {
		return nil, false
	}
	return e.Attempt(func() ([]Tuple, bool) { return s.fan(e, a, b, r, best) })
}

// fan retriangulates the ring as a fan from r[k].
func (s *EdgeSwap) fan(e *Editor, a, b int, r []int, k int) ([]Tuple, bool) {
	m := e.m
	n := len(r)
	at := func(i int) int { return r[(k+i)%n] }
	for i := 2; i < n-1; i++ {
		if _, ok := m.TupleFromSimplex(at(0), at(i)); ok {
			return nil, false
		}
	}
	var cells [][]int
	for i := 1; i < n-1; i++ {
		x, y, z := at(0), at(i), at(i+1)
		if n == 3 {
			if m.firstCellContaining([]int{x, y, z}, -1) >= 0 {
				return nil, false
			}
		}
		cells = append(cells, []int{a, x, y, z}, []int{b, x, z, y})
	}
	placeCells(e, cells)
	out, ok := m.TupleFromSimplex(at(0), at(1), at(2))
	return []Tuple{out}, ok
}

// placeCells replaces the gathered cells by cells, rewriting the old ids
// first and then deleting or creating the difference.
func placeCells(e *Editor, cells [][]int) {
	for i, verts := range cells {
		if i < len(e.region) {
			e.RewriteCell(e.region[i], verts...)
			continue
		}
		c := e.NewCell(verts...)
		e.CopyCellAttributes(c, e.region[0])
	}
	for i := len(cells); i < len(e.region); i++ {
		e.RemoveCell(e.region[i])
	}
}

// FaceSwap replaces the two tetrahedra sharing an interior face (x, y, z)
// by the three tetrahedra around the edge joining their opposite vertices.
type FaceSwap struct {
	Checks Policy
}

func (*FaceSwap) Name() string {
	return "face_swap"
}

func (s *FaceSwap) Policy() *Policy {
	return &s.Checks
}

func (*FaceSwap) Seeds(m *Mesh, t Tuple) []int {
	return m.Vertices(Face, t)
}

func (*FaceSwap) Gather(e *Editor, t Tuple) bool {
	if e.m.dim != 3 {
		return false
	}
	cells := e.m.CellsAround(Face, t)
	if len(cells) != 2 {
		return false
	}
	e.Gather(cells...)
	return true
}

func (*FaceSwap) Mutate(e *Editor, t Tuple) ([]Tuple, bool) {
	m := e.m
	face := m.Vertices(Face, t)
	d := without(e.regionVts[0], face...)[0]
	f := without(e.regionVts[1], face...)[0]
	if _, ok := m.TupleFromSimplex(d, f); ok {
		return nil, false
	}
	tri := without(e.regionVts[0], d)
	if !evenPermutation(e.regionVts[0], append(slices.Clone(tri), d)) {
		tri[1], tri[2] = tri[2], tri[1]
	}
	x, y, z := tri[0], tri[1], tri[2]
	placeCells(e, [][]int{
		{f, d, x, y},
		{f, d, y, z},
		{f, d, z, x},
	})
	out, ok := m.TupleFromSimplex(d, f)
	return []Tuple{out}, ok
}

// evenPermutation reports whether perm is an even permutation of ref. Both
// hold the same distinct values.
func evenPermutation(ref, perm []int) bool {
	p := slices.Clone(perm)
	even := true
	for i := range ref {
		if p[i] == ref[i] {
			continue
		}
		j := slices.Index(p, ref[i])
		p[i], p[j] = p[j], p[i]
		even = !even
	}
	return even
}
