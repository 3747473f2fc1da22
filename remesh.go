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
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Remesher drives rounds of split, collapse, swap and smooth passes toward
// a target edge length.
type Remesher struct {
	Mesh      *Mesh
	Positions *Attribute[float64]
	// Frozen marks vertices that must neither move nor disappear. It may
	// be nil.
	Frozen  *Attribute[bool]
	Config  *RemeshConfig
	Logger  *zap.Logger
	Metrics *Metrics
}

// Run executes the configured rounds and returns the accumulated stats per
// pass name.
func (r *Remesher) Run(ctx context.Context) (map[string]Stats, error) {
	cfg := r.Config
	if cfg == nil {
		cfg = DefaultRemeshConfig()
	}
	log := r.Logger
	if log == nil {
		log = r.Mesh.Logger()
	}
	total := map[string]Stats{}
	for round := 0; round < cfg.Rounds; round++ {
		for _, pc := range cfg.Passes {
			p, tuples, err := r.pass(cfg.TargetEdgeLength, pc)
			if err != nil {
				return total, err
			}
			p.Logger = log.With(zap.Int("round", round))
			st, err := p.Run(ctx, r.Mesh, tuples)
			acc := total[p.name()]
			acc.add(st)
			total[p.name()] = acc
			if err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

func (r *Remesher) length(m *Mesh, t Tuple) float64 {
	a, b := m.edgeEnds(t)
	return edgeLength(r.Positions.Get(a), r.Positions.Get(b))
}

func (r *Remesher) pass(target float64, pc PassConfig) (*Pass, []Tuple, error) {
	m := r.Mesh
	noInversion := NoInversion{Positions: r.Positions}
	var frozen []Invariant
	if r.Frozen != nil {
		frozen = append(frozen, FrozenVertices{Flag: r.Frozen})
	}

	p := &Pass{Metrics: r.Metrics}
	var tuples []Tuple
	switch pc.Operation {
	case "split":
		hi := target * 4 / 3
		p.Operation = &EdgeSplit{
			Positions: r.Positions,
			Checks: Policy{Invariants: []Invariant{
				EdgeLengthAbove{Positions: r.Positions, Min: hi},
			}},
		}
		p.Priority = r.length
		p.Admit = func(m *Mesh, t Tuple, w float64) bool { return r.length(m, t) == w }
		p.Renew = RenewEdges
		tuples = m.Edges()
	case "collapse":
		lo := target * 4 / 5
		p.Operation = &EdgeCollapse{
			Checks: Policy{
				Invariants: append(frozen,
					LinkCondition{},
					EdgeLengthBelow{Positions: r.Positions, Max: lo},
					noInversion,
				),
				Before: func(e *Editor, t Tuple) bool {
					// Keep the boundary in place.
					return !e.Mesh().IsBoundaryVertex(e.Mesh().VertexID(t))
				},
			},
		}
		p.Priority = func(m *Mesh, t Tuple) float64 { return -r.length(m, t) }
		p.Admit = func(m *Mesh, t Tuple, w float64) bool { return -r.length(m, t) == w }
		p.Renew = RenewEdges
		tuples = m.Edges()
	case "swap":
		p.Operation = &EdgeSwap{
			Checks: Policy{Invariants: []Invariant{
				noInversion,
				EnergyBound{Positions: r.Positions, Energy: InverseQuality, Slack: -1e-9},
			}},
		}
		tuples = m.Edges()
	case "smooth":
		p.Operation = &VertexSmooth{
			Relocate: Laplacian(r.Positions),
			Checks:   Policy{Invariants: append(frozen, noInversion)},
		}
		tuples = m.VertexTuples()
	default:
		return nil, nil, fmt.Errorf("%w: unknown operation %q", ErrConfig, pc.Operation)
	}
	if err := pc.Apply(p); err != nil {
		return nil, nil, err
	}
	return p, tuples, nil
}
