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

// lockSet is the set of vertex locks one worker holds for the edit it is
// running. Locks are only ever tried, never waited on, so two workers that
// want overlapping regions cannot deadlock: the one that fails releases
// everything and retries later.
type lockSet struct {
	m    *Mesh
	held []int
}

func newLockSet(m *Mesh) *lockSet {
	return &lockSet{m: m}
}

func (l *lockSet) tryLock(v int) bool {
	if slices.Contains(l.held, v) {
		return true
	}
	if !l.m.vertex(v).mu.TryLock() {
		return false
	}
	l.held = append(l.held, v)
	return true
}

// lockFresh locks a vertex the current edit has just allocated. Another
// worker can only hold it briefly, while finding out that the handle it
// locked it for is stale.
func (l *lockSet) lockFresh(v int) {
	if slices.Contains(l.held, v) {
		return
	}
	l.m.vertex(v).mu.Lock()
	l.held = append(l.held, v)
}

// acquire locks every seed, then every vertex sharing a cell with a seed.
// Incident cells are read only once the seed is locked. On failure nothing
// stays locked.
func (l *lockSet) acquire(seeds []int) bool {
	for _, v := range seeds {
		if v < 0 || !l.tryLock(v) {
			l.release()
			return false
		}
	}
	var buf [4]int
	for _, v := range seeds {
		for _, c := range l.m.vertex(v).cells {
			for _, w := range l.m.cellVerts(c, &buf) {
				if !l.tryLock(w) {
					l.release()
					return false
				}
			}
		}
	}
	return true
}

// confirm reads the seeds of t again now that the locks in l are held and
// reports whether they are still the ones that were locked. Seeds read
// without locks may come from an edit that was in flight and has since
// rolled back, restoring the stamp of t. On failure nothing stays locked.
func (l *lockSet) confirm(op Operation, t Tuple, seeds []int) bool {
	now := op.Seeds(l.m, t)
	if len(now) == len(seeds) {
		a, b := slices.Clone(seeds), slices.Clone(now)
		slices.Sort(a)
		slices.Sort(b)
		if slices.Equal(a, b) {
			return true
		}
	}
	l.release()
	return false
}

func (l *lockSet) release() {
	for _, v := range l.held {
		l.m.vertex(v).mu.Unlock()
	}
	l.held = l.held[:0]
}
