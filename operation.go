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

// Outcome is the result of one attempted edit.
type Outcome int

const (
	// Applied means the edit passed every check and was committed.
	Applied Outcome = iota
	// Stale means the handle no longer referred to a live cell.
	Stale
	// RejectedBefore means the topology gather or a pre-check refused the
	// edit before anything changed.
	RejectedBefore
	// RejectedAfter means the mutation refused to proceed or a post-check
	// failed; every change was rolled back.
	RejectedAfter
	// Contended means the vertex locks around the edit could not be taken.
	Contended
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Stale:
		return "stale"
	case RejectedBefore:
		return "rejected_before"
	case RejectedAfter:
		return "rejected_after"
	case Contended:
		return "contended"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Operation is one kind of local edit.
//
// The engine runs an operation on a handle in five steps: Gather collects
// the cells the edit reads and may refuse on topological grounds; the
// policy pre-checks run on the untouched mesh; Mutate rewrites the
// connectivity and attributes inside a fresh scope; the policy post-checks
// run on the handles Mutate returns; and the scope is committed or every
// change is rolled back.
type Operation interface {
	Name() string
	// Seeds returns the vertices of the simplex the edit acts on. The
	// partitioned scheduler locks the closed one-rings of the seeds.
	Seeds(m *Mesh, t Tuple) []int
	Gather(e *Editor, t Tuple) bool
	Mutate(e *Editor, t Tuple) ([]Tuple, bool)
	Policy() *Policy
}

// Policy holds the checks an operation runs before and after mutating.
type Policy struct {
	Invariants []Invariant
	Before     func(e *Editor, t Tuple) bool
	After      func(e *Editor, out []Tuple) bool
}

func (p *Policy) before(e *Editor, t Tuple) bool {
	if p == nil {
		return true
	}
	for _, inv := range p.Invariants {
		if !inv.Before(e, t) {
			return false
		}
	}
	return p.Before == nil || p.Before(e, t)
}

func (p *Policy) after(e *Editor, out []Tuple) bool {
	if p == nil {
		return true
	}
	for _, inv := range p.Invariants {
		if !inv.After(e, out) {
			return false
		}
	}
	return p.After == nil || p.After(e, out)
}

// Editor is the state of one edit in flight: the worker's attribute scope,
// the connectivity journal and the cells gathered before mutation.
type Editor struct {
	m      *Mesh
	op     Operation
	scope  *Scope
	j      *journal
	locks  *lockSet
	worker int

	region    []int
	regionVts [][]int
	snapshot  *simplexSnapshot
	inherit   map[simplexKey]simplexKey
	scratch   map[any]any
}

func newEditor(m *Mesh, op Operation, worker int, locks *lockSet) *Editor {
	return &Editor{
		m:      m,
		op:     op,
		worker: worker,
		locks:  locks,
		j:      newJournal(m),
	}
}

func (e *Editor) Mesh() *Mesh {
	return e.m
}

// Scope returns the scope attribute writes of the edit go through.
func (e *Editor) Scope() *Scope {
	return e.scope
}

// Worker returns the index of the worker running the edit.
func (e *Editor) Worker() int {
	return e.worker
}

// Gather records cells as the region of the edit. Their vertex lists are
// kept as they were at gather time.
func (e *Editor) Gather(cells ...int) {
	var buf [4]int
	for _, c := range cells {
		if slices.Contains(e.region, c) {
			continue
		}
		e.region = append(e.region, c)
		e.regionVts = append(e.regionVts, slices.Clone(e.m.cellVerts(c, &buf)))
	}
}

// Region returns the ids of the gathered cells.
func (e *Editor) Region() []int {
	return e.region
}

// RegionVertices returns the vertex lists the gathered cells had before the
// mutation.
func (e *Editor) RegionVertices() [][]int {
	return e.regionVts
}

// Store keeps a value for the rest of the edit. Invariants use it to carry
// state from their pre-check to their post-check.
func (e *Editor) Store(key, value any) {
	if e.scratch == nil {
		e.scratch = map[any]any{}
	}
	e.scratch[key] = value
}

// Load returns a value kept by Store.
func (e *Editor) Load(key any) (any, bool) {
	v, ok := e.scratch[key]
	return v, ok
}

// NewVertex allocates a live vertex with default attribute values.
func (e *Editor) NewVertex() int {
	v := e.j.addVertex()
	if e.locks != nil {
		e.locks.lockFresh(v)
	}
	return v
}

// NewCell creates a cell with the given vertices.
func (e *Editor) NewCell(verts ...int) int {
	assert(len(verts) == e.m.dim+1)
	return e.j.addCell(verts)
}

// RemoveCell deletes cell c.
func (e *Editor) RemoveCell(c int) {
	e.j.removeCell(c)
}

// RewriteCell replaces the vertices of cell c keeping its id and its cell
// attributes. Handles to c become stale.
func (e *Editor) RewriteCell(c int, verts ...int) {
	assert(len(verts) == e.m.dim+1)
	e.j.rewriteCell(c, verts)
}

// RemoveVertex deletes vertex v, which must have no incident cells left.
func (e *Editor) RemoveVertex(v int) {
	if len(e.m.vertex(v).cells) != 0 {
		fatalf("removing vertex %d with incident cells", v)
	}
	e.j.removeVertex(v)
}

// CopyCellAttributes copies every cell attribute of src to dst.
func (e *Editor) CopyCellAttributes(dst, src int) {
	e.m.attrs.each(e.m.CellKind(), func(a attribute) {
		a.assign(e.scope, dst, a.clone(src))
	})
}

// Inherit makes the edge or face spanned by child take the attribute values
// the simplex spanned by parent had before the edit.
func (e *Editor) Inherit(child, parent []int) {
	if e.inherit == nil {
		e.inherit = map[simplexKey]simplexKey{}
	}
	e.inherit[makeKey(child)] = makeKey(parent)
}

// Attempt runs f in a nested scope and journal. If f succeeds and the
// post-checks accept its result the attempt is kept; otherwise it is rolled
// back and the mesh is as it was before the call.
func (e *Editor) Attempt(f func() ([]Tuple, bool)) ([]Tuple, bool) {
	outerScope, outerJournal := e.scope, e.j
	e.scope = outerScope.Begin()
	e.j = outerJournal.child()
	defer func() {
		e.scope, e.j = outerScope, outerJournal
	}()

	out, ok := f()
	if ok {
		e.transferSimplexAttributes()
		ok = e.checkAfter(out)
	}
	if !ok {
		e.scope.Discard()
		e.j.rollback()
		return nil, false
	}
	e.scope.Commit()
	e.j.commit()
	return out, true
}

func (e *Editor) checkAfter(out []Tuple) bool {
	for _, t := range out {
		if !e.m.IsValid(t) {
			return false
		}
	}
	return e.op.Policy().after(e, out)
}

// Apply runs op on t as a single edit and reports the outcome. It must not
// be called while a pass is running on m.
func (m *Mesh) Apply(op Operation, t Tuple) ([]Tuple, Outcome) {
	m.exclusive.RLock()
	defer m.exclusive.RUnlock()
	return m.apply(newEditor(m, op, 0, nil), t)
}

// apply runs the edit state machine. Vertex locks, if any, are already held.
func (m *Mesh) apply(e *Editor, t Tuple) ([]Tuple, Outcome) {
	if !m.IsValid(t) {
		return nil, Stale
	}
	op := e.op
	if !op.Gather(e, t) {
		return nil, RejectedBefore
	}
	e.scope = m.attrs.Begin()
	defer func() {
		e.scope = nil
	}()
	if !op.Policy().before(e, t) {
		e.scope.Discard()
		return nil, RejectedBefore
	}
	e.snapshot = e.takeSnapshot()

	out, ok := op.Mutate(e, t)
	if ok {
		e.transferSimplexAttributes()
		ok = e.checkAfter(out)
	}
	if !ok {
		e.scope.Discard()
		e.j.rollback()
		return nil, RejectedAfter
	}
	e.scope.Commit()
	e.j.commit()
	return out, Applied
}
