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
	"sync"
	"sync/atomic"
)

const segmentShift = 10

// segments is a growable array split into fixed-size chunks. Growing appends
// chunks to a copied directory and publishes it atomically, so an element
// never moves once allocated. Readers may index any id below a length they
// observed earlier without holding the growth lock.
//
// Each logical element occupies width consecutive T values; width is fixed at
// construction.
type segments[T any] struct {
	mu    sync.Mutex
	dir   atomic.Pointer[[][]T]
	n     atomic.Int64
	width int
}

func newSegments[T any](width int) *segments[T] {
	assert(width > 0)
	s := &segments[T]{width: width}
	s.dir.Store(&[][]T{})
	return s
}

func (s *segments[T]) len() int {
	return int(s.n.Load())
}

// slice returns the width values of element i.
func (s *segments[T]) slice(i int) []T {
	d := *s.dir.Load()
	chunk := d[i>>segmentShift]
	off := (i & (1<<segmentShift - 1)) * s.width
	return chunk[off : off+s.width : off+s.width]
}

// at returns a pointer to element i. Only valid for width 1.
func (s *segments[T]) at(i int) *T {
	return &s.slice(i)[0]
}

// grow makes the length at least n. New elements are filled by fill, which
// may be nil to leave them zeroed.
func (s *segments[T]) grow(n int, fill func(v []T)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.len()
	if n <= old {
		return
	}
	d := *s.dir.Load()
	need := (n + 1<<segmentShift - 1) >> segmentShift
	if need > len(d) {
		nd := make([][]T, need)
		copy(nd, d)
		for i := len(d); i < need; i++ {
			nd[i] = make([]T, (1<<segmentShift)*s.width)
		}
		s.dir.Store(&nd)
	}
	if fill != nil {
		for i := old; i < n; i++ {
			fill(s.slice(i))
		}
	}
	s.n.Store(int64(n))
}
