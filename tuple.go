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

// Tuple is a handle to a fully oriented simplex flag inside one cell: a
// local vertex, a local edge containing it and a local face containing that
// edge, together with the cell id and the version stamp of the cell at the
// time the handle was made.
//
// A Tuple is a value; it stays valid exactly as long as its cell is live and
// the cell's stamp is unchanged. Any edit that removes or rewrites the cell
// makes the handle stale, which Mesh.IsValid detects.
type Tuple struct {
	cell int
	hash uint64
	lv   int8
	le   int8
	lf   int8
}

// InvalidTuple is the zero handle returned when no simplex exists.
var InvalidTuple = Tuple{cell: -1}

// Cell returns the id of the cell the handle lives in.
func (t Tuple) Cell() int {
	return t.cell
}

func (t Tuple) String() string {
	if t.cell < 0 {
		return "tuple(invalid)"
	}
	return fmt.Sprintf("tuple(cell=%d v=%d e=%d f=%d h=%d)", t.cell, t.lv, t.le, t.lf, t.hash)
}

// IsValid reports whether t still refers to a live cell with an unchanged
// version stamp.
func (m *Mesh) IsValid(t Tuple) bool {
	if t.cell < 0 || t.cell >= m.cells.len() {
		return false
	}
	rec := m.cell(t.cell)
	return !rec.removed.Load() && rec.hash.Load() == t.hash
}

// tupleAt builds a handle for cell c whose local vertex is lv. The local
// edge and face are the first ones in table order that contain it.
func (m *Mesh) tupleAt(c int, lv int8) Tuple {
	t := Tuple{cell: c, hash: m.cell(c).hash.Load(), lv: lv}
	for e := range topologies[m.dim].edges {
		if edgeHas(m.dim, int8(e), lv) {
			t.le = int8(e)
			break
		}
	}
	t.lf = m.faceOfEdge(t.le)
	return t
}

func (m *Mesh) faceOfEdge(le int8) int8 {
	if m.dim < 3 {
		return 0
	}
	for f := range topologies[3].faces {
		if faceHasEdge(3, int8(f), le) {
			return int8(f)
		}
	}
	return -1
}

// localTuple returns a handle in cell c pointing at its local simplex idx of
// kind k.
func (m *Mesh) localTuple(c int, k Kind, idx int) Tuple {
	switch {
	case k == Vertex:
		return m.tupleAt(c, int8(idx))
	case k == Edge && m.dim >= 1:
		e := topologies[m.dim].edges[idx]
		t := Tuple{cell: c, hash: m.cell(c).hash.Load(), lv: e[0], le: int8(idx)}
		t.lf = m.faceOfEdge(t.le)
		return t
	case k == Face && m.dim >= 2:
		f := topologies[m.dim].faces[idx]
		t := Tuple{cell: c, hash: m.cell(c).hash.Load(), lv: f[0], lf: int8(idx)}
		for _, e := range topologies[m.dim].faceEdges[idx] {
			if edgeHas(m.dim, e, f[0]) {
				t.le = e
				break
			}
		}
		return t
	}
	return m.tupleAt(c, 0)
}

// TupleFromCell returns the canonical handle of cell c: local vertex 0, the
// first local edge containing it and the first local face containing that
// edge.
func (m *Mesh) TupleFromCell(c int) Tuple {
	if m.IsCellRemoved(c) {
		return InvalidTuple
	}
	return m.tupleAt(c, 0)
}

// TupleFromVertex returns a handle pointing at vertex v inside its incident
// cell with the smallest id.
func (m *Mesh) TupleFromVertex(v int) Tuple {
	if m.IsVertexRemoved(v) {
		return InvalidTuple
	}
	cells := m.vertex(v).cells
	if len(cells) == 0 {
		return InvalidTuple
	}
	c := cells[0]
	return m.tupleAt(c, m.localIndex(c, v))
}

// TupleFromSimplex returns a handle to the simplex spanned by verts, pointing
// at verts[0], inside the smallest cell containing it. The boolean is false
// when no such simplex exists.
func (m *Mesh) TupleFromSimplex(verts ...int) (Tuple, bool) {
	if len(verts) == 0 || len(verts) > m.dim+1 {
		return InvalidTuple, false
	}
	for _, v := range verts {
		if m.IsVertexRemoved(v) {
			return InvalidTuple, false
		}
	}
	c := m.firstCellContaining(verts, -1)
	if c < 0 {
		return InvalidTuple, false
	}
	return m.orient(c, verts), true
}

// TupleFromEdge returns a handle to the edge (a, b) pointing at a.
func (m *Mesh) TupleFromEdge(a, b int) (Tuple, bool) {
	return m.TupleFromSimplex(a, b)
}

// orient returns the handle in cell c pointing at verts[0], at the edge
// (verts[0], verts[1]) if given, and at the face spanned by verts[0:3] if
// given.
func (m *Mesh) orient(c int, verts []int) Tuple {
	t := m.tupleAt(c, m.localIndex(c, verts[0]))
	if len(verts) >= 2 && m.dim >= 2 {
		t.le = localEdge(m.dim, t.lv, m.localIndex(c, verts[1]))
		t.lf = m.faceOfEdge(t.le)
	}
	if len(verts) >= 3 && m.dim == 3 {
		t.lf = localFace(3, t.lv, m.localIndex(c, verts[1]), m.localIndex(c, verts[2]))
	}
	return t
}

// localIndex returns the local index of vertex v in cell c, or -1.
func (m *Mesh) localIndex(c int, v int) int8 {
	rec := m.cell(c)
	for i := 0; i <= m.dim; i++ {
		if int(rec.verts[i].Load()) == v {
			return int8(i)
		}
	}
	return -1
}

// VertexID returns the global id of the vertex t points at.
func (m *Mesh) VertexID(t Tuple) int {
	return int(m.cell(t.cell).verts[t.lv].Load())
}

// Vertices returns the global vertex ids of the simplex of kind k that t
// points at. The vertex t points at comes first.
func (m *Mesh) Vertices(k Kind, t Tuple) []int {
	var buf [4]int
	vs := m.cellVerts(t.cell, &buf)
	var local []int8
	switch {
	case k == Vertex:
		return []int{vs[t.lv]}
	case int(k) >= m.dim:
		local = []int8{0, 1, 2, 3}[:m.dim+1]
	case k == Edge:
		e := topologies[m.dim].edges[t.le]
		local = e[:]
	case k == Face:
		f := topologies[m.dim].faces[t.lf]
		local = f[:]
	}
	out := make([]int, 0, len(local))
	out = append(out, vs[t.lv])
	for _, l := range local {
		if l != t.lv {
			out = append(out, vs[l])
		}
	}
	return out
}

// SwitchVertex returns the handle pointing at the other endpoint of the
// current edge.
func (m *Mesh) SwitchVertex(t Tuple) Tuple {
	e := topologies[m.dim].edges[t.le]
	if e[0] == t.lv {
		t.lv = e[1]
	} else {
		t.lv = e[0]
	}
	return t
}

// SwitchEdge returns the handle pointing at the other edge of the current
// face that contains the current vertex.
func (m *Mesh) SwitchEdge(t Tuple) Tuple {
	assert(m.dim >= 2)
	for _, e := range topologies[m.dim].faceEdges[t.lf] {
		if e != t.le && edgeHas(m.dim, e, t.lv) {
			t.le = e
			return t
		}
	}
	panic("wildmesh: inconsistent local tables")
}

// SwitchFace returns the handle pointing at the other face of the current
// tetrahedron that contains the current edge.
func (m *Mesh) SwitchFace(t Tuple) Tuple {
	assert(m.dim == 3)
	for f := range topologies[3].faces {
		if int8(f) != t.lf && faceHasEdge(3, int8(f), t.le) {
			t.lf = int8(f)
			return t
		}
	}
	panic("wildmesh: inconsistent local tables")
}

// SwitchCell returns the handle in the neighboring cell across the facet the
// handle points at, keeping the same vertex, edge and face. The facet is the
// current vertex for edge meshes, the current edge for triangle meshes and
// the current face for tetrahedral meshes.
//
// It returns false if the facet is on the boundary.
func (m *Mesh) SwitchCell(t Tuple) (Tuple, bool) {
	var buf [4]int
	vs := m.cellVerts(t.cell, &buf)
	var fbuf [3]int
	var facet []int
	switch m.dim {
	case 1:
		facet = append(fbuf[:0], vs[t.lv])
	case 2:
		e := topologies[2].edges[t.le]
		facet = append(fbuf[:0], vs[e[0]], vs[e[1]])
	case 3:
		f := topologies[3].faces[t.lf]
		facet = append(fbuf[:0], vs[f[0]], vs[f[1]], vs[f[2]])
	}
	n := m.firstCellContaining(facet, t.cell)
	if n < 0 {
		return InvalidTuple, false
	}

	ev := topologies[m.dim].edges[t.le]
	a, b := vs[ev[0]], vs[ev[1]]
	r := Tuple{cell: n, hash: m.cell(n).hash.Load()}
	r.lv = m.localIndex(n, vs[t.lv])
	if m.dim >= 2 {
		r.le = localEdge(m.dim, m.localIndex(n, a), m.localIndex(n, b))
	}
	if m.dim == 3 {
		f := topologies[3].faces[t.lf]
		r.lf = localFace(3, m.localIndex(n, vs[f[0]]), m.localIndex(n, vs[f[1]]), m.localIndex(n, vs[f[2]]))
	}
	return r, true
}

// Switch applies the switch operation of kind k: Vertex, Edge and Face call
// SwitchVertex, SwitchEdge and SwitchFace, and the cell kind calls
// SwitchCell, returning InvalidTuple at the boundary.
func (m *Mesh) Switch(t Tuple, k Kind) Tuple {
	switch {
	case int(k) == m.dim:
		if r, ok := m.SwitchCell(t); ok {
			return r
		}
		return InvalidTuple
	case k == Vertex:
		return m.SwitchVertex(t)
	case k == Edge:
		return m.SwitchEdge(t)
	case k == Face:
		return m.SwitchFace(t)
	}
	panic(fmt.Sprintf("wildmesh: cannot switch %v in a %d-mesh", k, m.dim))
}

// Equal reports whether a and b point at the same simplex of kind k,
// regardless of which cell they live in.
func (m *Mesh) Equal(k Kind, a, b Tuple) bool {
	va := m.Vertices(k, a)
	vb := m.Vertices(k, b)
	slices.Sort(va)
	slices.Sort(vb)
	return slices.Equal(va, vb)
}

// SimplexID returns the id used to index attributes of kind k for the
// simplex t points at. Vertices and cells use their own ids. An edge or a
// face uses the smallest live cell containing it and its local index there,
// so the id is the same from every incident cell.
func (m *Mesh) SimplexID(k Kind, t Tuple) int {
	switch {
	case k == Vertex:
		return m.VertexID(t)
	case int(k) == m.dim:
		return t.cell
	}
	return m.simplexIDOf(k, m.Vertices(k, t))
}

// simplexIDOf returns the attribute id of the edge or face spanned by verts,
// or -1 if no live cell contains it.
func (m *Mesh) simplexIDOf(k Kind, verts []int) int {
	c := m.firstCellContaining(verts, -1)
	if c < 0 {
		return -1
	}
	var idx int8
	switch k {
	case Edge:
		idx = localEdge(m.dim, m.localIndex(c, verts[0]), m.localIndex(c, verts[1]))
	case Face:
		idx = localFace(m.dim, m.localIndex(c, verts[0]), m.localIndex(c, verts[1]), m.localIndex(c, verts[2]))
	}
	return c*localCount(m.dim, k) + int(idx)
}

// Simplices returns one handle for every live simplex of kind k, in
// ascending order of the smallest cell containing it.
func (m *Mesh) Simplices(k Kind) []Tuple {
	var out []Tuple
	var buf [4]int
	if int(k) > m.dim {
		return nil
	}
	if k == Vertex {
		for v := 0; v < m.verts.len(); v++ {
			if !m.IsVertexRemoved(v) {
				out = append(out, m.TupleFromVertex(v))
			}
		}
		return out
	}
	n := localCount(m.dim, k)
	sub := make([]int, 0, 4)
	for c := 0; c < m.cells.len(); c++ {
		if m.IsCellRemoved(c) {
			continue
		}
		if int(k) == m.dim {
			out = append(out, m.tupleAt(c, 0))
			continue
		}
		vs := m.cellVerts(c, &buf)
		for i := 0; i < n; i++ {
			sub = sub[:0]
			for _, l := range localVertices(m.dim, k, i) {
				sub = append(sub, vs[l])
			}
			if m.firstCellContaining(sub, -1) == c {
				out = append(out, m.localTuple(c, k, i))
			}
		}
	}
	return out
}

// Cells returns one handle for every live cell.
func (m *Mesh) Cells() []Tuple {
	return m.Simplices(m.CellKind())
}

// ForEachCell calls f with the id and vertices of every live cell in
// increasing id order until f returns false. verts is only valid during
// the call.
func (m *Mesh) ForEachCell(f func(c int, verts []int) bool) {
	var buf [4]int
	for c := 0; c < m.cells.len(); c++ {
		if m.IsCellRemoved(c) {
			continue
		}
		if !f(c, m.cellVerts(c, &buf)) {
			return
		}
	}
}

// Edges returns one handle for every live edge.
func (m *Mesh) Edges() []Tuple {
	return m.Simplices(Edge)
}

// Faces returns one handle for every live face.
func (m *Mesh) Faces() []Tuple {
	return m.Simplices(Face)
}

// VertexTuples returns one handle for every live vertex.
func (m *Mesh) VertexTuples() []Tuple {
	return m.Simplices(Vertex)
}
