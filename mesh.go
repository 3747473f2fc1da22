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
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// vertexRecord is the per-vertex connectivity: the sorted list of incident
// cells and a removed flag. mu is the vertex lock used by the partitioned
// scheduler; cells may only be read or written while mu is held when more
// than one editor is running.
type vertexRecord struct {
	mu      sync.Mutex
	cells   []int
	removed atomic.Bool
}

// cellRecord is the per-cell connectivity. The fields are atomic so that a
// worker can test a handle for staleness without holding any lock.
type cellRecord struct {
	verts   [4]atomic.Int64
	hash    atomic.Uint64
	removed atomic.Bool
}

// cellState is a plain copy of a cellRecord.
type cellState struct {
	verts   [4]int
	hash    uint64
	removed bool
}

func (c *cellRecord) load() cellState {
	var s cellState
	for i := range s.verts {
		s.verts[i] = int(c.verts[i].Load())
	}
	s.hash = c.hash.Load()
	s.removed = c.removed.Load()
	return s
}

func (c *cellRecord) store(s cellState) {
	for i := range s.verts {
		c.verts[i].Store(int64(s.verts[i]))
	}
	c.hash.Store(s.hash)
	c.removed.Store(s.removed)
}

// Mesh is the connectivity store of a pure simplicial complex of dimension
// 1, 2 or 3. Vertex and cell ids are dense indices into growable arrays;
// deleted ids are kept as tombstones on free lists and reused by later
// allocations until Consolidate renumbers the mesh.
type Mesh struct {
	dim int

	verts *segments[vertexRecord]
	cells *segments[cellRecord]

	allocMu   sync.Mutex
	freeVerts []int
	freeCells []int

	vertexHoles atomic.Int64
	cellHoles   atomic.Int64

	attrs *AttributeSet

	// exclusive is held for reading by every pass and for writing by
	// Consolidate.
	exclusive sync.RWMutex

	logger *zap.Logger
}

// Option configures a Mesh.
type Option func(*Mesh)

// WithLogger sets the logger used by the mesh and the passes run on it.
func WithLogger(l *zap.Logger) Option {
	return func(m *Mesh) {
		if l != nil {
			m.logger = l
		}
	}
}

// New creates a mesh of dimension dim with numVertices vertices and the given
// cells. Each cell lists dim+1 distinct vertex ids in [0, numVertices).
// Vertices not referenced by any cell are created as removed.
func New(dim int, numVertices int, cells [][]int, opts ...Option) (*Mesh, error) {
	if dim < 1 || dim > 3 {
		return nil, fmt.Errorf("%w: %d", ErrDimension, dim)
	}
	if numVertices < 0 {
		return nil, fmt.Errorf("wildmesh: negative vertex count %d", numVertices)
	}
	for i, c := range cells {
		if len(c) != dim+1 {
			return nil, fmt.Errorf("%w: cell %d has %d vertices, want %d", ErrInvalidCell, i, len(c), dim+1)
		}
		for j, v := range c {
			if v < 0 || v >= numVertices {
				return nil, fmt.Errorf("%w: cell %d references vertex %d out of range", ErrInvalidCell, i, v)
			}
			for _, w := range c[:j] {
				if w == v {
					return nil, fmt.Errorf("%w: cell %d repeats vertex %d", ErrInvalidCell, i, v)
				}
			}
		}
	}

	m := &Mesh{
		dim:    dim,
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(m)
	}
	m.verts = newSegments[vertexRecord](1)
	m.cells = newSegments[cellRecord](1)
	m.attrs = newAttributeSet(m)

	m.verts.grow(numVertices, nil)
	m.cells.grow(len(cells), nil)
	for i, c := range cells {
		rec := m.cells.at(i)
		for j := range rec.verts {
			rec.verts[j].Store(-1)
		}
		for j, v := range c {
			rec.verts[j].Store(int64(v))
			vr := m.verts.at(v)
			vr.cells = append(vr.cells, i)
		}
	}
	for v := 0; v < numVertices; v++ {
		if len(m.verts.at(v).cells) == 0 {
			m.verts.at(v).removed.Store(true)
			m.freeVerts = append(m.freeVerts, v)
			m.vertexHoles.Add(1)
		}
	}
	// Reuse the lowest ids first.
	slices.Reverse(m.freeVerts)
	return m, nil
}

// Dim returns the dimension of the cells.
func (m *Mesh) Dim() int {
	return m.dim
}

// CellKind returns the kind of the top-dimensional simplices.
func (m *Mesh) CellKind() Kind {
	return Kind(m.dim)
}

// Logger returns the logger of the mesh.
func (m *Mesh) Logger() *zap.Logger {
	return m.logger
}

// Attributes returns the attribute registry of the mesh.
func (m *Mesh) Attributes() *AttributeSet {
	return m.attrs
}

func (m *Mesh) VertexCapacity() int {
	return m.verts.len()
}

func (m *Mesh) CellCapacity() int {
	return m.cells.len()
}

// NumVertices returns the number of live vertices.
func (m *Mesh) NumVertices() int {
	return m.verts.len() - int(m.vertexHoles.Load())
}

// NumCells returns the number of live cells.
func (m *Mesh) NumCells() int {
	return m.cells.len() - int(m.cellHoles.Load())
}

// Capacity returns the number of id slots for simplices of kind k. Edge and
// face ids are derived from cell ids, so their capacity follows the cell
// capacity.
func (m *Mesh) Capacity(k Kind) int {
	switch {
	case k == Vertex:
		return m.verts.len()
	case int(k) == m.dim:
		return m.cells.len()
	case int(k) < m.dim:
		return m.cells.len() * localCount(m.dim, k)
	}
	return 0
}

func (m *Mesh) vertex(v int) *vertexRecord {
	return m.verts.at(v)
}

func (m *Mesh) cell(c int) *cellRecord {
	return m.cells.at(c)
}

// cellVerts loads the vertex ids of cell c into buf.
func (m *Mesh) cellVerts(c int, buf *[4]int) []int {
	rec := m.cells.at(c)
	for i := 0; i <= m.dim; i++ {
		buf[i] = int(rec.verts[i].Load())
	}
	return buf[:m.dim+1]
}

// CellVertices returns the vertex ids of cell c in local order.
func (m *Mesh) CellVertices(c int) []int {
	var buf [4]int
	return slices.Clone(m.cellVerts(c, &buf))
}

func (m *Mesh) IsVertexRemoved(v int) bool {
	return v < 0 || v >= m.verts.len() || m.verts.at(v).removed.Load()
}

func (m *Mesh) IsCellRemoved(c int) bool {
	return c < 0 || c >= m.cells.len() || m.cells.at(c).removed.Load()
}

// IncidentCells returns the sorted ids of the cells incident to vertex v.
func (m *Mesh) IncidentCells(v int) []int {
	return slices.Clone(m.vertex(v).cells)
}

// OneRingVertices returns the sorted ids of the vertices sharing a cell with
// v, excluding v.
func (m *Mesh) OneRingVertices(v int) []int {
	var buf [4]int
	var ring []int
	for _, c := range m.vertex(v).cells {
		for _, w := range m.cellVerts(c, &buf) {
			if w != v {
				ring = append(ring, w)
			}
		}
	}
	slices.Sort(ring)
	return slices.Compact(ring)
}

// cellsContaining returns the sorted ids of the live cells whose vertex sets
// contain all of verts.
func (m *Mesh) cellsContaining(verts []int) []int {
	var out []int
	first := m.vertex(verts[0]).cells
outer:
	for _, c := range first {
		for _, v := range verts[1:] {
			if !containsSorted(m.vertex(v).cells, c) {
				continue outer
			}
		}
		out = append(out, c)
	}
	return out
}

// firstCellContaining returns the smallest cell id containing all of verts
// other than skip, or -1.
func (m *Mesh) firstCellContaining(verts []int, skip int) int {
	first := m.vertex(verts[0]).cells
outer:
	for _, c := range first {
		if c == skip {
			continue
		}
		for _, v := range verts[1:] {
			if !containsSorted(m.vertex(v).cells, c) {
				continue outer
			}
		}
		return c
	}
	return -1
}

// isBoundaryFacet reports whether the facet spanned by verts has exactly one
// incident cell.
func (m *Mesh) isBoundaryFacet(verts []int) bool {
	c := m.firstCellContaining(verts, -1)
	if c < 0 {
		return false
	}
	return m.firstCellContaining(verts, c) < 0
}

// IsBoundary reports whether the simplex of kind k at t lies on the boundary
// of the mesh, that is, whether some facet with a single incident cell
// contains it.
func (m *Mesh) IsBoundary(k Kind, t Tuple) bool {
	return m.isBoundarySimplex(m.Vertices(k, t))
}

// IsBoundaryVertex reports whether vertex v lies on the boundary.
func (m *Mesh) IsBoundaryVertex(v int) bool {
	return m.isBoundarySimplex([]int{v})
}

func (m *Mesh) isBoundarySimplex(simplex []int) bool {
	var buf [4]int
	facet := make([]int, 0, 3)
	for _, c := range m.cellsContaining(simplex) {
		vs := m.cellVerts(c, &buf)
		for skip := range vs {
			if slices.Contains(simplex, vs[skip]) {
				continue
			}
			facet = facet[:0]
			for i, v := range vs {
				if i != skip {
					facet = append(facet, v)
				}
			}
			if m.isBoundaryFacet(facet) {
				return true
			}
		}
	}
	return false
}

// CellsAround returns the sorted ids of the cells containing the simplex of
// kind k at t.
func (m *Mesh) CellsAround(k Kind, t Tuple) []int {
	return m.cellsContaining(m.Vertices(k, t))
}

// allocVertex returns a vertex id for a new vertex, reusing a tombstone if
// one is available. The record is live and has no incident cells.
func (m *Mesh) allocVertex() int {
	m.allocMu.Lock()
	defer m.allocMu.Unlock()

	var v int
	if n := len(m.freeVerts); n > 0 {
		v = m.freeVerts[n-1]
		m.freeVerts = m.freeVerts[:n-1]
		m.vertexHoles.Add(-1)
	} else {
		v = m.verts.len()
		m.verts.grow(v+1, nil)
		m.attrs.reserve(Vertex, m.verts.len())
	}
	rec := m.vertex(v)
	rec.cells = rec.cells[:0]
	rec.removed.Store(false)
	m.attrs.resetSlot(Vertex, v)
	return v
}

// allocCell returns a cell id for a new cell with the given vertices and a
// fresh version stamp. Incidence lists are not updated.
func (m *Mesh) allocCell(verts []int) int {
	m.allocMu.Lock()
	defer m.allocMu.Unlock()

	var c int
	if n := len(m.freeCells); n > 0 {
		c = m.freeCells[n-1]
		m.freeCells = m.freeCells[:n-1]
		m.cellHoles.Add(-1)
	} else {
		c = m.cells.len()
		m.cells.grow(c+1, nil)
		for k := Edge; int(k) <= m.dim; k++ {
			m.attrs.reserve(k, m.Capacity(k))
		}
	}
	rec := m.cell(c)
	s := cellState{verts: [4]int{-1, -1, -1, -1}, hash: rec.hash.Load() + 1}
	copy(s.verts[:], verts)
	rec.store(s)
	m.attrs.resetCellSlots(c)
	return c
}

func (m *Mesh) freeVertex(v int) {
	m.allocMu.Lock()
	defer m.allocMu.Unlock()
	m.freeVerts = append(m.freeVerts, v)
	m.vertexHoles.Add(1)
}

func (m *Mesh) freeCell(c int) {
	m.allocMu.Lock()
	defer m.allocMu.Unlock()
	m.freeCells = append(m.freeCells, c)
	m.cellHoles.Add(1)
}

// CheckConnectivity audits the whole store: every live cell references
// distinct live vertices, every live vertex lists exactly the live cells
// containing it in ascending order, no two live cells span the same vertex
// set, and removed vertices have no incident cells.
func (m *Mesh) CheckConnectivity() error {
	var buf [4]int
	nv := m.verts.len()
	seen := map[[4]int]int{}
	for c := 0; c < m.cells.len(); c++ {
		if m.IsCellRemoved(c) {
			continue
		}
		vs := m.cellVerts(c, &buf)
		key := [4]int{-1, -1, -1, -1}
		copy(key[:], vs)
		slices.Sort(key[:len(vs)])
		if o, ok := seen[key]; ok {
			return fmt.Errorf("%w: cells %d and %d span the same vertices", ErrInvalidMesh, o, c)
		}
		seen[key] = c
		for i, v := range vs {
			if v < 0 || v >= nv {
				return fmt.Errorf("%w: cell %d references vertex %d out of range", ErrInvalidMesh, c, v)
			}
			if m.IsVertexRemoved(v) {
				return fmt.Errorf("%w: cell %d references removed vertex %d", ErrInvalidMesh, c, v)
			}
			if slices.Contains(vs[:i], v) {
				return fmt.Errorf("%w: cell %d repeats vertex %d", ErrInvalidMesh, c, v)
			}
			if !containsSorted(m.vertex(v).cells, c) {
				return fmt.Errorf("%w: vertex %d does not list cell %d", ErrInvalidMesh, v, c)
			}
		}
	}
	for v := 0; v < nv; v++ {
		rec := m.vertex(v)
		if rec.removed.Load() {
			if len(rec.cells) != 0 {
				return fmt.Errorf("%w: removed vertex %d has incident cells", ErrInvalidMesh, v)
			}
			continue
		}
		if len(rec.cells) == 0 {
			return fmt.Errorf("%w: vertex %d is isolated", ErrInvalidMesh, v)
		}
		for i, c := range rec.cells {
			if i > 0 && rec.cells[i-1] >= c {
				return fmt.Errorf("%w: incident cells of vertex %d are not sorted", ErrInvalidMesh, v)
			}
			if m.IsCellRemoved(c) {
				return fmt.Errorf("%w: vertex %d lists removed cell %d", ErrInvalidMesh, v, c)
			}
			if !slices.Contains(m.cellVerts(c, &buf), v) {
				return fmt.Errorf("%w: vertex %d lists cell %d which does not contain it", ErrInvalidMesh, v, c)
			}
		}
	}
	return nil
}

func containsSorted(s []int, x int) bool {
	i := sort.SearchInts(s, x)
	return i < len(s) && s[i] == x
}

func insertSorted(s []int, x int) []int {
	i := sort.SearchInts(s, x)
	if i < len(s) && s[i] == x {
		return s
	}
	return slices.Insert(s, i, x)
}

func removeSorted(s []int, x int) []int {
	i := sort.SearchInts(s, x)
	if i < len(s) && s[i] == x {
		return slices.Delete(s, i, i+1)
	}
	return s
}
