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
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExecutionPolicy selects how a pass schedules its edits.
type ExecutionPolicy int

const (
	// Sequential runs every edit on the calling goroutine in priority
	// order.
	Sequential ExecutionPolicy = iota
	// Partitioned splits the vertices into one region per thread and
	// runs the regions concurrently, locking the closed one-ring of every
	// edit.
	Partitioned
)

func (p ExecutionPolicy) String() string {
	switch p {
	case Sequential:
		return "sequential"
	case Partitioned:
		return "partitioned"
	}
	return fmt.Sprintf("ExecutionPolicy(%d)", int(p))
}

// Stats counts the outcomes of a pass.
type Stats struct {
	Attempted int64
	Applied   int64
	Stale     int64
	Rejected  int64
	Contended int64
}

func (s *Stats) record(o Outcome) {
	switch o {
	case Applied:
		s.Attempted++
		s.Applied++
	case RejectedBefore, RejectedAfter:
		s.Attempted++
		s.Rejected++
	case Stale:
		s.Stale++
	case Contended:
		s.Contended++
	}
}

func (s *Stats) add(o Stats) {
	s.Attempted += o.Attempted
	s.Applied += o.Applied
	s.Stale += o.Stale
	s.Rejected += o.Rejected
	s.Contended += o.Contended
}

// Pass applies one operation to a worklist of handles until the worklist is
// empty, a stopping condition holds or the iteration budget is spent.
//
// Handles are taken in decreasing Priority. When an edit applies, Renew
// turns the handles it returned into new work. A handle that went stale
// while queued is skipped.
type Pass struct {
	Name      string
	Operation Operation

	// Priority gives the weight of a handle. Nil means every handle weighs
	// the same and handles are taken in insertion order.
	Priority func(m *Mesh, t Tuple) float64
	// Admit decides, when a handle is taken from the queue, whether it is
	// still worth processing given the weight it was queued with.
	Admit func(m *Mesh, t Tuple, weight float64) bool
	// Renew returns the handles to queue after a successful edit.
	Renew func(m *Mesh, out []Tuple) []Tuple
	// Stop ends the pass early. It is checked every StopCheckEvery applied
	// edits (every edit if zero). In partitioned mode it is checked once
	// the workers have drained and during the final serial sweep.
	Stop           func(m *Mesh) bool
	StopCheckEvery int
	// MaxIterations bounds the number of attempted edits. Zero means no
	// bound.
	MaxIterations int

	Policy  ExecutionPolicy
	Threads int
	// MaxRetries is how often a handle whose locks were contended is
	// requeued before it is left for the final serial sweep. Zero means 10.
	MaxRetries int

	Logger  *zap.Logger
	Metrics *Metrics
}

func (p *Pass) weight(m *Mesh, t Tuple) float64 {
	if p.Priority == nil {
		return 0
	}
	return p.Priority(m, t)
}

func (p *Pass) admit(m *Mesh, it *workItem) bool {
	return p.Admit == nil || p.Admit(m, it.t, it.weight)
}

func (p *Pass) name() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Operation.Name()
}

func (p *Pass) logger(m *Mesh) *zap.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return m.logger
}

// Run executes the pass on m starting from tuples. It returns an error only
// if ctx is done before the pass finishes; the stats are valid either way.
func (p *Pass) Run(ctx context.Context, m *Mesh, tuples []Tuple) (Stats, error) {
	m.exclusive.RLock()
	defer m.exclusive.RUnlock()

	runID := uuid.NewString()
	log := p.logger(m).With(
		zap.String("pass", p.name()),
		zap.String("run_id", runID),
		zap.Stringer("policy", p.Policy),
	)
	ctx, span := startPassSpan(ctx, p, runID)
	defer span.End()

	start := time.Now()
	log.Info("pass started", zap.Int("tuples", len(tuples)), zap.Int("threads", p.Threads))

	var (
		stats Stats
		err   error
	)
	if p.Policy == Partitioned && p.Threads > 1 {
		stats, err = p.runPartitioned(ctx, m, tuples, log)
	} else {
		stats, err = p.runSequential(ctx, m, tuples, 0)
	}

	elapsed := time.Since(start)
	p.Metrics.observePass(p.name(), stats, elapsed, m)
	endPassSpan(span, stats, err)
	fields := []zap.Field{
		zap.Int64("attempted", stats.Attempted),
		zap.Int64("applied", stats.Applied),
		zap.Int64("rejected", stats.Rejected),
		zap.Int64("stale", stats.Stale),
		zap.Int64("contended", stats.Contended),
		zap.Duration("elapsed", elapsed),
	}
	if err != nil {
		log.Warn("pass interrupted", append(fields, zap.Error(err))...)
		return stats, err
	}
	log.Info("pass finished", fields...)
	return stats, nil
}

func (p *Pass) runSequential(ctx context.Context, m *Mesh, tuples []Tuple, budgetUsed int64) (Stats, error) {
	var (
		stats   Stats
		q       worklist
		applied int
	)
	for _, t := range tuples {
		q.push(t, p.weight(m, t))
	}
	log := p.logger(m)
	for q.len() > 0 {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if p.MaxIterations > 0 && budgetUsed+stats.Attempted >= int64(p.MaxIterations) {
			break
		}
		it, _ := q.pop()
		if !m.IsValid(it.t) {
			stats.record(Stale)
			continue
		}
		if !p.admit(m, it) {
			continue
		}
		out, o := m.apply(newEditor(m, p.Operation, 0, nil), it.t)
		stats.record(o)
		p.Metrics.observeEdit(p.name(), o)
		if o != Applied {
			log.Debug("edit not applied", zap.String("op", p.Operation.Name()), zap.Stringer("tuple", it.t), zap.Stringer("outcome", o))
			continue
		}
		if p.Renew != nil {
			for _, t := range p.Renew(m, out) {
				q.push(t, p.weight(m, t))
			}
		}
		applied++
		if p.Stop != nil && applied%max(p.StopCheckEvery, 1) == 0 && p.Stop(m) {
			break
		}
	}
	return stats, nil
}

// RenewEdges returns one handle for every edge of the cells incident to a
// vertex the given handles point at. Those cells are the ones an edit
// rewrites, so this covers every edge whose queued handle the edit made
// stale.
func RenewEdges(m *Mesh, out []Tuple) []Tuple {
	seen := map[simplexKey]bool{}
	var res []Tuple
	var buf [4]int
	for _, t := range out {
		if !m.IsValid(t) {
			continue
		}
		v := m.VertexID(t)
		for _, c := range m.vertex(v).cells {
			vs := m.cellVerts(c, &buf)
			for _, e := range topologies[m.dim].edges {
				k := makeKey([]int{vs[e[0]], vs[e[1]]})
				if seen[k] {
					continue
				}
				seen[k] = true
				if r, ok := m.TupleFromSimplex(vs[e[0]], vs[e[1]]); ok {
					res = append(res, r)
				}
			}
		}
	}
	return res
}

// RenewVertices returns one handle for every vertex sharing a cell with a
// vertex the given handles point at, including that vertex.
func RenewVertices(m *Mesh, out []Tuple) []Tuple {
	seen := map[int]bool{}
	var res []Tuple
	for _, t := range out {
		if !m.IsValid(t) {
			continue
		}
		v := m.VertexID(t)
		for _, w := range append([]int{v}, m.OneRingVertices(v)...) {
			if !seen[w] {
				seen[w] = true
				res = append(res, m.TupleFromVertex(w))
			}
		}
	}
	return res
}
