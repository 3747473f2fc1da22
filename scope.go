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

// undoLog records the values an attribute held before a scope first wrote
// them.
type undoLog interface {
	record(i int)
	rollback()
	mergeInto(parent undoLog)
	len() int
}

// valueLog keeps, for each written simplex id, the values it had when the
// owning scope first touched it. Later writes in the same scope are not
// recorded again.
type valueLog[T any] struct {
	attr *Attribute[T]
	pos  map[int]int
	ids  []int
	olds []T
}

func (l *valueLog[T]) record(i int) {
	if _, ok := l.pos[i]; ok {
		return
	}
	l.pos[i] = len(l.ids)
	l.ids = append(l.ids, i)
	l.olds = append(l.olds, l.attr.data.slice(i)...)
}

func (l *valueLog[T]) get(i int) ([]T, bool) {
	k, ok := l.pos[i]
	if !ok {
		return nil, false
	}
	n := l.attr.arity
	return l.olds[k*n : (k+1)*n : (k+1)*n], true
}

func (l *valueLog[T]) rollback() {
	n := l.attr.arity
	for k := len(l.ids) - 1; k >= 0; k-- {
		copy(l.attr.data.slice(l.ids[k]), l.olds[k*n:(k+1)*n])
	}
}

// mergeInto folds l into the log of the enclosing scope. Ids the parent has
// already recorded keep the parent's older values.
func (l *valueLog[T]) mergeInto(parent undoLog) {
	p := parent.(*valueLog[T])
	n := l.attr.arity
	for k, id := range l.ids {
		if _, ok := p.pos[id]; ok {
			continue
		}
		p.pos[id] = len(p.ids)
		p.ids = append(p.ids, id)
		p.olds = append(p.olds, l.olds[k*n:(k+1)*n]...)
	}
}

func (l *valueLog[T]) len() int {
	return len(l.ids)
}

// Scope is one level of a stack of attribute transactions owned by a single
// worker. Writes through a scope take effect immediately; the scope keeps
// the overwritten values so that Discard can restore them.
//
// Scopes nest: Begin on an open scope opens a child, and only the innermost
// scope of a chain may be written through or closed. Committing a child
// hands its recorded values to the parent, so discarding the parent later
// still restores the state from before the child was opened. Committing the
// outermost scope makes the writes permanent.
type Scope struct {
	set    *AttributeSet
	parent *Scope
	child  *Scope
	root   *Scope
	logs   map[int]undoLog
	closed bool

	// view is set on the root while ParentScope runs.
	view *Scope
}

// Begin opens an outermost scope.
func (s *AttributeSet) Begin() *Scope {
	s.open.Add(1)
	sc := &Scope{
		set:  s,
		logs: map[int]undoLog{},
	}
	sc.root = sc
	return sc
}

// Begin opens a scope nested in s.
func (s *Scope) Begin() *Scope {
	if s.closed {
		fatalf("begin on a closed scope")
	}
	if s.child != nil {
		fatalf("begin on a scope that already has an open nested scope")
	}
	s.set.open.Add(1)
	c := &Scope{
		set:    s.set,
		parent: s,
		root:   s.root,
		logs:   map[int]undoLog{},
	}
	s.child = c
	return c
}

// Parent returns the enclosing scope, or nil for an outermost scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Depth returns the nesting level of s, starting at 1 for an outermost scope.
func (s *Scope) Depth() int {
	d := 0
	for sc := s; sc != nil; sc = sc.parent {
		d++
	}
	return d
}

// Len returns the number of distinct simplex ids s has recorded.
func (s *Scope) Len() int {
	n := 0
	for _, l := range s.logs {
		n += l.len()
	}
	return n
}

func (s *Scope) record(a attribute, i int) {
	if s.closed {
		fatalf("write through a closed scope")
	}
	if s.child != nil {
		fatalf("write through a scope that has an open nested scope")
	}
	if s.root.view != nil {
		fatalf("write while viewing the enclosing scope")
	}
	l, ok := s.logs[a.id()]
	if !ok {
		l = a.newLog()
		s.logs[a.id()] = l
	}
	l.record(i)
}

// Commit closes s keeping its writes.
func (s *Scope) Commit() {
	s.close(true)
}

// Discard closes s restoring every value it overwrote.
func (s *Scope) Discard() {
	s.close(false)
}

func (s *Scope) close(keep bool) {
	switch {
	case s.closed:
		fatalf("scope closed twice")
	case s.child != nil:
		fatalf("closing a scope that has an open nested scope")
	case s.root.view != nil:
		fatalf("closing a scope while viewing the enclosing scope")
	}
	if keep {
		if p := s.parent; p != nil {
			for id, l := range s.logs {
				if pl, ok := p.logs[id]; ok {
					l.mergeInto(pl)
				} else {
					p.logs[id] = l
				}
			}
		}
	} else {
		for _, l := range s.logs {
			l.rollback()
		}
	}
	s.logs = nil
	s.closed = true
	if s.parent != nil {
		s.parent.child = nil
	}
	s.set.open.Add(-1)
}

// ParentScope runs f with every read made through this scope chain
// returning the values as they were when s was opened. Writes inside f
// panic. It is how an invariant compares the state before an edit with the
// state after it.
func (s *Scope) ParentScope(f func()) {
	if s.closed {
		fatalf("viewing through a closed scope")
	}
	if s.root.view != nil {
		fatalf("nested ParentScope")
	}
	s.root.view = s
	defer func() {
		s.root.view = nil
	}()
	f()
}
