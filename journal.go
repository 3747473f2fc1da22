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

type vertexState struct {
	cells   []int
	removed bool
}

// journal records the connectivity an edit is about to change so that the
// edit can be undone. Every record is saved the first time the edit touches
// it. Ids allocated by the edit are returned to the free lists on rollback;
// ids the edit deletes are returned only on commit, so that no other worker
// can reuse a slot the edit may still restore.
//
// Journals nest like scopes: a child journal covers one attempt inside an
// edit and either folds into its parent or rolls back alone.
type journal struct {
	m      *Mesh
	parent *journal

	cells map[int]cellState
	verts map[int]vertexState

	newCells  []int
	newVerts  []int
	isNewCell map[int]bool
	isNewVert map[int]bool

	deadCells []int
	deadVerts []int
}

func newJournal(m *Mesh) *journal {
	return &journal{
		m:         m,
		cells:     map[int]cellState{},
		verts:     map[int]vertexState{},
		isNewCell: map[int]bool{},
		isNewVert: map[int]bool{},
	}
}

func (j *journal) child() *journal {
	c := newJournal(j.m)
	c.parent = j
	return c
}

func (j *journal) saveCell(c int) {
	if j.isNewCell[c] {
		return
	}
	if _, ok := j.cells[c]; ok {
		return
	}
	j.cells[c] = j.m.cell(c).load()
}

func (j *journal) saveVertex(v int) {
	if j.isNewVert[v] {
		return
	}
	if _, ok := j.verts[v]; ok {
		return
	}
	rec := j.m.vertex(v)
	j.verts[v] = vertexState{
		cells:   slices.Clone(rec.cells),
		removed: rec.removed.Load(),
	}
}

func (j *journal) addVertex() int {
	v := j.m.allocVertex()
	j.newVerts = append(j.newVerts, v)
	j.isNewVert[v] = true
	return v
}

func (j *journal) addCell(verts []int) int {
	c := j.m.allocCell(verts)
	j.newCells = append(j.newCells, c)
	j.isNewCell[c] = true
	for _, v := range verts {
		j.saveVertex(v)
		rec := j.m.vertex(v)
		rec.cells = insertSorted(rec.cells, c)
	}
	return c
}

func (j *journal) removeCell(c int) {
	if j.m.IsCellRemoved(c) {
		fatalf("removing dead cell %d", c)
	}
	var buf [4]int
	j.saveCell(c)
	for _, v := range j.m.cellVerts(c, &buf) {
		j.saveVertex(v)
		rec := j.m.vertex(v)
		rec.cells = removeSorted(rec.cells, c)
	}
	j.m.cell(c).removed.Store(true)
	j.deadCells = append(j.deadCells, c)
}

// rewriteCell replaces the vertices of cell c in place and bumps its stamp.
func (j *journal) rewriteCell(c int, verts []int) {
	var buf [4]int
	j.saveCell(c)
	old := j.m.cellVerts(c, &buf)
	for _, v := range old {
		if !slices.Contains(verts, v) {
			j.saveVertex(v)
			rec := j.m.vertex(v)
			rec.cells = removeSorted(rec.cells, c)
		}
	}
	for _, v := range verts {
		if !slices.Contains(old, v) {
			j.saveVertex(v)
			rec := j.m.vertex(v)
			rec.cells = insertSorted(rec.cells, c)
		}
	}
	rec := j.m.cell(c)
	for i, v := range verts {
		rec.verts[i].Store(int64(v))
	}
	rec.hash.Add(1)
}

func (j *journal) removeVertex(v int) {
	if j.m.IsVertexRemoved(v) {
		fatalf("removing dead vertex %d", v)
	}
	j.saveVertex(v)
	rec := j.m.vertex(v)
	rec.cells = nil
	rec.removed.Store(true)
	j.deadVerts = append(j.deadVerts, v)
}

// touchedCells returns the live cells the journal created or changed.
func (j *journal) touchedCells() []int {
	var out []int
	for c := range j.cells {
		if !j.m.IsCellRemoved(c) {
			out = append(out, c)
		}
	}
	for _, c := range j.newCells {
		if !j.m.IsCellRemoved(c) {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func (j *journal) rollback() {
	for c, s := range j.cells {
		j.m.cell(c).store(s)
	}
	for v, s := range j.verts {
		rec := j.m.vertex(v)
		rec.cells = s.cells
		rec.removed.Store(s.removed)
	}
	for _, c := range j.newCells {
		j.m.cell(c).removed.Store(true)
		j.m.freeCell(c)
	}
	for _, v := range j.newVerts {
		rec := j.m.vertex(v)
		rec.cells = nil
		rec.removed.Store(true)
		j.m.freeVertex(v)
	}
	j.reset()
}

// commit makes the journal's changes permanent, or hands them to the parent
// journal if there is one.
func (j *journal) commit() {
	if p := j.parent; p != nil {
		for c, s := range j.cells {
			if _, ok := p.cells[c]; ok || p.isNewCell[c] {
				continue
			}
			p.cells[c] = s
		}
		for v, s := range j.verts {
			if _, ok := p.verts[v]; ok || p.isNewVert[v] {
				continue
			}
			p.verts[v] = s
		}
		for _, c := range j.newCells {
			p.newCells = append(p.newCells, c)
			p.isNewCell[c] = true
		}
		for _, v := range j.newVerts {
			p.newVerts = append(p.newVerts, v)
			p.isNewVert[v] = true
		}
		p.deadCells = append(p.deadCells, j.deadCells...)
		p.deadVerts = append(p.deadVerts, j.deadVerts...)
	} else {
		for _, c := range j.deadCells {
			j.m.freeCell(c)
		}
		for _, v := range j.deadVerts {
			j.m.freeVertex(v)
		}
	}
	j.reset()
}

func (j *journal) reset() {
	clear(j.cells)
	clear(j.verts)
	clear(j.isNewCell)
	clear(j.isNewVert)
	j.newCells = j.newCells[:0]
	j.newVerts = j.newVerts[:0]
	j.deadCells = j.deadCells[:0]
	j.deadVerts = j.deadVerts[:0]
}
