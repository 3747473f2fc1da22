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
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// shard is the locked worklist of one partition.
type shard struct {
	mu   sync.Mutex
	list worklist
}

func (s *shard) push(it *workItem) {
	s.mu.Lock()
	s.list.pushItem(it)
	s.mu.Unlock()
}

func (s *shard) pop() (*workItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.pop()
}

// Partition splits the live vertices of m into n parts of nearly equal size
// by cutting a breadth-first ordering of the vertex graph into consecutive
// runs. It returns the part of every vertex id; removed vertices are in
// part 0.
func Partition(m *Mesh, n int) []int {
	parts := make([]int, m.VertexCapacity())
	if n <= 1 {
		return parts
	}
	order := make([]int, 0, m.NumVertices())
	visited := make([]bool, len(parts))
	for s := range parts {
		if visited[s] || m.IsVertexRemoved(s) {
			continue
		}
		visited[s] = true
		queue := []int{s}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			order = append(order, v)
			for _, w := range m.OneRingVertices(v) {
				if !visited[w] {
					visited[w] = true
					queue = append(queue, w)
				}
			}
		}
	}
	size := (len(order) + n - 1) / n
	if size == 0 {
		return parts
	}
	for i, v := range order {
		parts[v] = i / size
	}
	return parts
}

func (p *Pass) runPartitioned(ctx context.Context, m *Mesh, tuples []Tuple, log *zap.Logger) (Stats, error) {
	n := p.Threads
	maxRetries := p.MaxRetries
	if maxRetries == 0 {
		maxRetries = 10
	}
	parts := Partition(m, n)
	shards := make([]*shard, n)
	for i := range shards {
		shards[i] = &shard{}
	}

	var (
		pending   atomic.Int64
		attempted atomic.Int64
		stopped   atomic.Bool

		deferredMu sync.Mutex
		deferred   []Tuple
	)
	route := func(t Tuple) int {
		v := m.VertexID(t)
		if v < 0 {
			return 0
		}
		if v < len(parts) {
			return parts[v]
		}
		return v % n
	}
	push := func(t Tuple) {
		pending.Add(1)
		shards[route(t)].push(&workItem{t: t, weight: p.weight(m, t)})
	}
	take := func(w int) (*workItem, bool) {
		for i := 0; i < n; i++ {
			if it, ok := shards[(w+i)%n].pop(); ok {
				return it, true
			}
		}
		return nil, false
	}
	for _, t := range tuples {
		push(t)
	}

	stats := make([]Stats, n)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < n; w++ {
		w := w
		g.Go(func() error {
			_, span := startWorkerSpan(gctx, w)
			defer span.End()

			locks := newLockSet(m)
			st := &stats[w]
			for {
				if err := gctx.Err(); err != nil {
					return err
				}
				it, ok := take(w)
				if !ok {
					if pending.Load() == 0 {
						return nil
					}
					runtime.Gosched()
					continue
				}
				if stopped.Load() {
					pending.Add(-1)
					continue
				}
				if !m.IsValid(it.t) {
					st.record(Stale)
					pending.Add(-1)
					continue
				}
				seeds := p.Operation.Seeds(m, it.t)
				if !locks.acquire(seeds) || !locks.confirm(p.Operation, it.t, seeds) {
					st.record(Contended)
					p.Metrics.observeEdit(p.name(), Contended)
					it.retries++
					if it.retries > maxRetries {
						deferredMu.Lock()
						deferred = append(deferred, it.t)
						deferredMu.Unlock()
						pending.Add(-1)
					} else {
						shards[w].push(it)
					}
					continue
				}
				p.process(m, it, w, locks, st, &attempted, &stopped, push)
				locks.release()
				pending.Add(-1)
			}
		})
	}
	err := g.Wait()

	var total Stats
	for _, st := range stats {
		total.add(st)
	}
	if err != nil {
		return total, err
	}
	if stopped.Load() || (p.Stop != nil && p.Stop(m)) {
		return total, nil
	}
	if len(deferred) > 0 {
		log.Debug("serial sweep of contended tuples", zap.Int("tuples", len(deferred)))
		st, err := p.runSequential(ctx, m, deferred, attempted.Load())
		total.add(st)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// process runs one edit whose locks are held.
func (p *Pass) process(m *Mesh, it *workItem, w int, locks *lockSet, st *Stats, attempted *atomic.Int64, stopped *atomic.Bool, push func(Tuple)) {
	if !m.IsValid(it.t) {
		st.record(Stale)
		return
	}
	if !p.admit(m, it) {
		return
	}
	if p.MaxIterations > 0 && attempted.Add(1) > int64(p.MaxIterations) {
		stopped.Store(true)
		return
	}
	out, o := m.apply(newEditor(m, p.Operation, w, locks), it.t)
	st.record(o)
	p.Metrics.observeEdit(p.name(), o)
	if o != Applied || p.Renew == nil {
		return
	}
	for _, t := range p.Renew(m, out) {
		push(t)
	}
}
