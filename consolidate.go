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

import "go.uber.org/zap"

// Consolidate renumbers the live vertices and cells densely, keeping their
// relative order, and drops every tombstone. It returns the old-to-new id
// maps, with -1 for removed ids.
//
// Attributes follow their simplices. A cell whose id or vertex ids change
// gets a new version stamp; every other cell keeps its stamp, so calling
// Consolidate on a consolidated mesh changes nothing and leaves every handle
// valid.
//
// Consolidate waits for running passes and panics if any scope is open or
// if the connectivity is inconsistent.
func (m *Mesh) Consolidate() (vertexMap, cellMap []int) {
	m.exclusive.Lock()
	defer m.exclusive.Unlock()

	if n := m.attrs.OpenScopes(); n != 0 {
		fatalf("consolidate with %d open scopes", n)
	}
	if err := m.CheckConnectivity(); err != nil {
		fatalf("consolidate: %v", err)
	}

	nv, nc := m.verts.len(), m.cells.len()
	vertexMap = make([]int, nv)
	liveVerts := 0
	for v := range vertexMap {
		if m.IsVertexRemoved(v) {
			vertexMap[v] = -1
			continue
		}
		vertexMap[v] = liveVerts
		liveVerts++
	}
	cellMap = make([]int, nc)
	liveCells := 0
	for c := range cellMap {
		if m.IsCellRemoved(c) {
			cellMap[c] = -1
			continue
		}
		cellMap[c] = liveCells
		liveCells++
	}
	if liveVerts == nv && liveCells == nc {
		return vertexMap, cellMap
	}

	verts := newSegments[vertexRecord](1)
	verts.grow(liveVerts, nil)
	for v, nvid := range vertexMap {
		if nvid < 0 {
			continue
		}
		old := m.vertex(v).cells
		cells := make([]int, len(old))
		for i, c := range old {
			cells[i] = cellMap[c]
		}
		verts.at(nvid).cells = cells
	}

	cells := newSegments[cellRecord](1)
	cells.grow(liveCells, nil)
	for c, ncid := range cellMap {
		if ncid < 0 {
			continue
		}
		s := m.cell(c).load()
		changed := ncid != c
		for i := 0; i <= m.dim; i++ {
			if w := vertexMap[s.verts[i]]; w != s.verts[i] {
				s.verts[i] = w
				changed = true
			}
		}
		if changed {
			s.hash = max(s.hash, m.cell(ncid).hash.Load()) + 1
		}
		cells.at(ncid).store(s)
	}

	m.attrs.mu.Lock()
	for _, a := range m.attrs.list {
		if a == nil {
			continue
		}
		switch k := a.Kind(); {
		case k == Vertex:
			a.remap(vertexMap, 1, liveVerts)
		case int(k) == m.dim:
			a.remap(cellMap, 1, liveCells)
		default:
			a.remap(cellMap, localCount(m.dim, k), liveCells)
		}
	}
	m.attrs.mu.Unlock()

	m.verts, m.cells = verts, cells
	m.freeVerts, m.freeCells = nil, nil
	m.vertexHoles.Store(0)
	m.cellHoles.Store(0)

	m.logger.Info("mesh consolidated",
		zap.Int("vertices", liveVerts),
		zap.Int("cells", liveCells),
		zap.Int("dropped_vertices", nv-liveVerts),
		zap.Int("dropped_cells", nc-liveCells))
	return vertexMap, cellMap
}
