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

// Invariant is a predicate an edit must respect. Before runs on the
// untouched mesh with the handle the edit was asked to act on; After runs on
// the mutated mesh with the handles the edit returned.
type Invariant interface {
	Before(e *Editor, t Tuple) bool
	After(e *Editor, out []Tuple) bool
}

// InvariantFunc adapts a pair of functions to the Invariant interface. A nil
// function accepts everything.
type InvariantFunc struct {
	BeforeFunc func(e *Editor, t Tuple) bool
	AfterFunc  func(e *Editor, out []Tuple) bool
}

func (f InvariantFunc) Before(e *Editor, t Tuple) bool {
	return f.BeforeFunc == nil || f.BeforeFunc(e, t)
}

func (f InvariantFunc) After(e *Editor, out []Tuple) bool {
	return f.AfterFunc == nil || f.AfterFunc(e, out)
}

// AffectedCells returns the live cells the edit created or changed. An edit
// that left the connectivity alone, such as a smoothing step, affects the
// cells around every vertex the returned handles point at.
func (e *Editor) AffectedCells(out []Tuple) []int {
	cells := e.j.touchedCells()
	if len(cells) > 0 {
		return cells
	}
	for _, t := range out {
		if !e.m.IsValid(t) {
			continue
		}
		cells = append(cells, e.m.vertex(e.m.VertexID(t)).cells...)
	}
	slices.Sort(cells)
	return slices.Compact(cells)
}

func (e *Editor) points(a *Attribute[float64], verts []int) [][]float64 {
	pts := make([][]float64, len(verts))
	for i, v := range verts {
		pts[i] = a.Read(e.scope, v)
	}
	return pts
}

// edgeEnds returns the vertex ids of the edge t points at.
func (m *Mesh) edgeEnds(t Tuple) (int, int) {
	return m.VertexID(t), m.VertexID(m.SwitchVertex(t))
}

// LinkCondition rejects edge collapses that would change the topology.
type LinkCondition struct{}

func (LinkCondition) Before(e *Editor, t Tuple) bool {
	a, b := e.m.edgeEnds(t)
	return e.m.LinkCondition(a, b)
}

func (LinkCondition) After(*Editor, []Tuple) bool {
	return true
}

// NoInversion rejects edits that leave a cell with non-positive
// orientation. Positions must have one component per mesh dimension; if
// Exact is set its coordinates are used instead. Predicates defaults to
// FilteredPredicates.
type NoInversion struct {
	Positions  *Attribute[float64]
	Exact      *HybridPositions
	Predicates Predicates
}

func (n NoInversion) Before(*Editor, Tuple) bool {
	return true
}

func (n NoInversion) After(e *Editor, out []Tuple) bool {
	var buf [4]int
	for _, c := range e.AffectedCells(out) {
		verts := e.m.cellVerts(c, &buf)
		if n.orientation(e, verts) != Positive {
			return false
		}
	}
	return true
}

func (n NoInversion) orientation(e *Editor, verts []int) Sign {
	if n.Exact != nil {
		return n.Exact.Orientation(e.scope, verts)
	}
	if n.Positions.Arity() != e.m.dim {
		return Positive
	}
	p := n.Predicates
	if p == nil {
		p = FilteredPredicates{}
	}
	return p.Orientation(e.points(n.Positions, verts))
}

// EnvelopeOracle tells whether a point, a segment or a triangle leaves the
// region the mesh must stay in.
type EnvelopeOracle interface {
	IsOutside(pts [][]float64) bool
}

// Envelope rejects edits whose cells leave the envelope. For tetrahedral
// meshes only boundary faces are tested.
type Envelope struct {
	Oracle    EnvelopeOracle
	Positions *Attribute[float64]
}

func (Envelope) Before(*Editor, Tuple) bool {
	return true
}

func (en Envelope) After(e *Editor, out []Tuple) bool {
	var buf [4]int
	for _, c := range e.AffectedCells(out) {
		verts := e.m.cellVerts(c, &buf)
		if e.m.dim < 3 {
			if en.Oracle.IsOutside(e.points(en.Positions, verts)) {
				return false
			}
			continue
		}
		for _, u := range verts {
			facet := without(verts, u)
			if !e.m.isBoundaryFacet(facet) {
				continue
			}
			if en.Oracle.IsOutside(e.points(en.Positions, facet)) {
				return false
			}
		}
	}
	return true
}

// BoxEnvelope is an axis-aligned box grown by Tolerance on every side.
type BoxEnvelope struct {
	Min, Max  []float64
	Tolerance float64
}

func (b BoxEnvelope) IsOutside(pts [][]float64) bool {
	for _, p := range pts {
		for i, x := range p {
			if i >= len(b.Min) {
				break
			}
			if x < b.Min[i]-b.Tolerance || x > b.Max[i]+b.Tolerance {
				return true
			}
		}
	}
	return false
}

// FrozenVertices rejects edits whose seed vertices carry a true flag.
type FrozenVertices struct {
	Flag *Attribute[bool]
}

func (f FrozenVertices) Before(e *Editor, t Tuple) bool {
	for _, v := range e.op.Seeds(e.m, t) {
		if f.Flag.Read(e.scope, v)[0] {
			return false
		}
	}
	return true
}

func (FrozenVertices) After(*Editor, []Tuple) bool {
	return true
}

// EdgeLengthAbove accepts edges strictly longer than Min.
type EdgeLengthAbove struct {
	Positions *Attribute[float64]
	Min       float64
}

func (l EdgeLengthAbove) Before(e *Editor, t Tuple) bool {
	a, b := e.m.edgeEnds(t)
	return edgeLength(l.Positions.Read(e.scope, a), l.Positions.Read(e.scope, b)) > l.Min
}

func (EdgeLengthAbove) After(*Editor, []Tuple) bool {
	return true
}

// EdgeLengthBelow accepts edges strictly shorter than Max.
type EdgeLengthBelow struct {
	Positions *Attribute[float64]
	Max       float64
}

func (l EdgeLengthBelow) Before(e *Editor, t Tuple) bool {
	a, b := e.m.edgeEnds(t)
	return edgeLength(l.Positions.Read(e.scope, a), l.Positions.Read(e.scope, b)) < l.Max
}

func (EdgeLengthBelow) After(*Editor, []Tuple) bool {
	return true
}

// EnergyBound rejects edits that raise the worst cell energy of the region
// by more than Slack. The energy of the gathered cells is measured with the
// positions from before the edit, through the enclosing scope, and compared
// with the energy of the cells the edit produced.
type EnergyBound struct {
	Positions *Attribute[float64]
	Energy    func(pts [][]float64) float64
	Slack     float64
}

func (EnergyBound) Before(*Editor, Tuple) bool {
	return true
}

func (b EnergyBound) After(e *Editor, out []Tuple) bool {
	before := math.Inf(-1)
	e.scope.ParentScope(func() {
		for _, verts := range e.regionVts {
			before = math.Max(before, b.Energy(e.points(b.Positions, verts)))
		}
	})
	var buf [4]int
	for _, c := range e.AffectedCells(out) {
		after := b.Energy(e.points(b.Positions, e.m.cellVerts(c, &buf)))
		if math.IsNaN(after) || after > before+b.Slack {
			return false
		}
	}
	return true
}
