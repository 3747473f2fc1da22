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
	"math/big"
)

// HybridPositions stores vertex coordinates as floats that may be backed by
// exact rationals. A vertex whose Rounded flag is false uses its rational
// coordinates for every orientation test; Round tries to replace them with
// the nearest floats once doing so cannot flip any incident cell.
//
// Rational values are never modified in place; every write stores new
// values.
type HybridPositions struct {
	Float   *Attribute[float64]
	Exact   *Attribute[*big.Rat]
	Rounded *Attribute[bool]

	m *Mesh
}

// RegisterHybridPositions registers name, name+".exact" and name+".rounded"
// as vertex attributes with arity coordinates. Every vertex starts rounded.
func RegisterHybridPositions(m *Mesh, name string, arity int) (*HybridPositions, error) {
	f, err := Lookup[float64](m, name, Vertex)
	if err != nil {
		f, err = Register[float64](m, name, Vertex, arity)
		if err != nil {
			return nil, err
		}
	}
	if f.Arity() != arity {
		return nil, fmt.Errorf("%w: %q has arity %d", ErrAttributeType, name, f.Arity())
	}
	x, err := Register[*big.Rat](m, name+".exact", Vertex, arity)
	if err != nil {
		return nil, err
	}
	r, err := Register[bool](m, name+".rounded", Vertex, 1, true)
	if err != nil {
		return nil, err
	}
	return &HybridPositions{Float: f, Exact: x, Rounded: r, m: m}, nil
}

// Coords returns the exact coordinates of v as seen from scope s.
func (h *HybridPositions) Coords(s *Scope, v int) []*big.Rat {
	if h.Rounded.Read(s, v)[0] {
		f := h.Float.Read(s, v)
		out := make([]*big.Rat, len(f))
		for i, x := range f {
			out[i] = new(big.Rat).SetFloat64(x)
		}
		return out
	}
	return h.Exact.Read(s, v)
}

// SetExact gives v the exact coordinates coords and their float
// approximations, and marks v as not rounded.
func (h *HybridPositions) SetExact(s *Scope, v int, coords ...*big.Rat) {
	f := make([]float64, len(coords))
	for i, c := range coords {
		f[i], _ = c.Float64()
	}
	h.Exact.Set(s, v, coords...)
	h.Float.Set(s, v, f...)
	h.Rounded.SetScalar(s, v, false)
}

// SetFloat gives v float coordinates and marks it as rounded.
func (h *HybridPositions) SetFloat(s *Scope, v int, coords ...float64) {
	h.Float.Set(s, v, coords...)
	h.Exact.Set(s, v, make([]*big.Rat, len(coords))...)
	h.Rounded.SetScalar(s, v, true)
}

// SetMidpoint places v exactly halfway between a and b.
func (h *HybridPositions) SetMidpoint(s *Scope, v, a, b int) {
	pa, pb := h.Coords(s, a), h.Coords(s, b)
	mid := make([]*big.Rat, len(pa))
	half := big.NewRat(1, 2)
	for i := range pa {
		mid[i] = new(big.Rat).Add(pa[i], pb[i])
		mid[i].Mul(mid[i], half)
	}
	h.SetExact(s, v, mid...)
}

// Orientation returns the orientation of the simplex spanned by verts. If
// every vertex is rounded the float predicates decide; otherwise the exact
// coordinates do.
func (h *HybridPositions) Orientation(s *Scope, verts []int) Sign {
	exact := false
	for _, v := range verts {
		if !h.Rounded.Read(s, v)[0] {
			exact = true
			break
		}
	}
	if !exact {
		pts := make([][]float64, len(verts))
		for i, v := range verts {
			pts[i] = h.Float.Read(s, v)
		}
		return FilteredPredicates{}.Orientation(pts)
	}
	pts := make([][]*big.Rat, len(verts))
	for i, v := range verts {
		pts[i] = h.Coords(s, v)
	}
	return ExactOrientation(pts)
}

// Round tries to replace the exact coordinates of v by its float
// approximation. It succeeds if no incident cell changes orientation, and
// reports whether v is rounded afterwards.
func (h *HybridPositions) Round(s *Scope, v int) bool {
	if h.Rounded.Read(s, v)[0] {
		return true
	}
	m := h.m
	var buf [4]int
	for _, c := range m.vertex(v).cells {
		verts := m.cellVerts(c, &buf)
		before := h.Orientation(s, verts)
		pts := make([][]*big.Rat, len(verts))
		for i, w := range verts {
			if w == v {
				f := h.Float.Read(s, v)
				p := make([]*big.Rat, len(f))
				for j, x := range f {
					p[j] = new(big.Rat).SetFloat64(x)
				}
				pts[i] = p
				continue
			}
			pts[i] = h.Coords(s, w)
		}
		if ExactOrientation(pts) != before {
			return false
		}
	}
	h.Exact.Set(s, v, make([]*big.Rat, h.Exact.Arity())...)
	h.Rounded.SetScalar(s, v, true)
	return true
}
