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

import "container/heap"

type workItem struct {
	t       Tuple
	weight  float64
	seq     uint64
	retries int
}

// pq orders work items by decreasing weight, and by insertion order among
// equal weights.
type pq []*workItem

func (p pq) Len() int {
	return len(p)
}

func (p pq) Less(i, j int) bool {
	if p[i].weight != p[j].weight {
		return p[i].weight > p[j].weight
	}
	return p[i].seq < p[j].seq
}

func (p pq) Swap(i, j int) {
	p[i], p[j] = p[j], p[i]
}

func (p *pq) Push(x interface{}) {
	*p = append(*p, x.(*workItem))
}

func (p *pq) Pop() interface{} {
	old := *p
	x := old[len(old)-1]
	old[len(old)-1] = nil
	*p = old[:len(old)-1]
	return x
}

// worklist is a priority queue of handles.
type worklist struct {
	items pq
	seq   uint64
}

func (w *worklist) push(t Tuple, weight float64) {
	w.seq++
	heap.Push(&w.items, &workItem{t: t, weight: weight, seq: w.seq})
}

func (w *worklist) pushItem(it *workItem) {
	w.seq++
	it.seq = w.seq
	heap.Push(&w.items, it)
}

func (w *worklist) pop() (*workItem, bool) {
	if len(w.items) == 0 {
		return nil, false
	}
	return heap.Pop(&w.items).(*workItem), true
}

func (w *worklist) len() int {
	return len(w.items)
}
