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

// simplexKey identifies an edge or a face by its sorted vertex ids. Unused
// entries are -1.
type simplexKey [3]int

func makeKey(verts []int) simplexKey {
	k := simplexKey{-1, -1, -1}
	copy(k[:], verts)
	slices.Sort(k[:len(verts)])
	return k
}

func (k simplexKey) verts() []int {
	n := 0
	for n < len(k) && k[n] >= 0 {
		n++
	}
	return k[:n:n]
}

// simplexSnapshot holds the edge and face attribute values of a gathered
// region. Edge and face ids are derived from cell ids, so an edit that
// removes or renumbers cells moves them; the snapshot lets the editor carry
// each surviving simplex's values to its new id.
type simplexSnapshot struct {
	kinds []kindSnapshot
}

type kindSnapshot struct {
	kind   Kind
	attrs  []attribute
	ids    map[simplexKey]int
	values []map[simplexKey]any
}

func (e *Editor) takeSnapshot() *simplexSnapshot {
	m := e.m
	var snap *simplexSnapshot
	for k := Edge; int(k) < m.dim; k++ {
		var attrs []attribute
		m.attrs.each(k, func(a attribute) { attrs = append(attrs, a) })
		if len(attrs) == 0 {
			continue
		}
		ks := kindSnapshot{
			kind:   k,
			attrs:  attrs,
			ids:    map[simplexKey]int{},
			values: make([]map[simplexKey]any, len(attrs)),
		}
		for i := range ks.values {
			ks.values[i] = map[simplexKey]any{}
		}
		sub := make([]int, 0, 3)
		for _, vs := range e.regionVts {
			for idx := 0; idx < localCount(m.dim, k); idx++ {
				sub = sub[:0]
				for _, l := range localVertices(m.dim, k, idx) {
					sub = append(sub, vs[l])
				}
				key := makeKey(sub)
				if _, ok := ks.ids[key]; ok {
					continue
				}
				id := m.simplexIDOf(k, sub)
				if id < 0 {
					continue
				}
				ks.ids[key] = id
				for i, a := range attrs {
					ks.values[i][key] = a.clone(id)
				}
			}
		}
		if snap == nil {
			snap = &simplexSnapshot{}
		}
		snap.kinds = append(snap.kinds, ks)
	}
	return snap
}

// transferSimplexAttributes moves the snapshot values of every surviving
// edge and face to its current id, gives inherited simplices the values of
// their parents, and resets the ids of brand-new simplices to the defaults.
func (e *Editor) transferSimplexAttributes() {
	if e.snapshot == nil {
		return
	}
	m := e.m
	touched := e.j.touchedCells()
	var buf [4]int
	sub := make([]int, 0, 3)
	for _, ks := range e.snapshot.kinds {
		written := map[int]bool{}
		for key, old := range ks.ids {
			id := m.simplexIDOf(ks.kind, key.verts())
			if id < 0 {
				continue
			}
			written[id] = true
			if id == old {
				continue
			}
			for i, a := range ks.attrs {
				a.assign(e.scope, id, ks.values[i][key])
			}
		}
		for _, c := range touched {
			vs := m.cellVerts(c, &buf)
			for idx := 0; idx < localCount(m.dim, ks.kind); idx++ {
				sub = sub[:0]
				for _, l := range localVertices(m.dim, ks.kind, idx) {
					sub = append(sub, vs[l])
				}
				id := m.simplexIDOf(ks.kind, sub)
				if written[id] {
					continue
				}
				written[id] = true
				key := makeKey(sub)
				if parent, ok := e.inherit[key]; ok {
					if _, ok := ks.ids[parent]; ok {
						for i, a := range ks.attrs {
							a.assign(e.scope, id, ks.values[i][parent])
						}
						continue
					}
				}
				for _, a := range ks.attrs {
					a.assignDefault(e.scope, id)
				}
			}
		}
	}
}
