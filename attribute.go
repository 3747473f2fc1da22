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
	"sync"
	"sync/atomic"
)

// attribute is the type-erased view of an Attribute[T] used by the registry.
type attribute interface {
	Name() string
	Kind() Kind
	Arity() int
	id() int
	reserve(n int)
	reset(i int)
	remap(old2new []int, block int, n int)
	newLog() undoLog
	clone(i int) any
	assign(s *Scope, i int, v any)
	assignDefault(s *Scope, i int)
}

type attrKey struct {
	name string
	kind Kind
}

// AttributeSet is the registry of the attributes of one mesh. Attribute
// storage grows together with the id space of its simplex kind.
type AttributeSet struct {
	m *Mesh

	mu    sync.Mutex
	byKey map[attrKey]int
	list  []attribute

	open atomic.Int64
}

func newAttributeSet(m *Mesh) *AttributeSet {
	return &AttributeSet{
		m:     m,
		byKey: map[attrKey]int{},
	}
}

// OpenScopes returns the number of scopes currently open on any worker.
func (s *AttributeSet) OpenScopes() int {
	return int(s.open.Load())
}

func (s *AttributeSet) each(k Kind, f func(a attribute)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.list {
		if a != nil && a.Kind() == k {
			f(a)
		}
	}
}

func (s *AttributeSet) reserve(k Kind, n int) {
	s.each(k, func(a attribute) { a.reserve(n) })
}

func (s *AttributeSet) resetSlot(k Kind, i int) {
	s.each(k, func(a attribute) { a.reset(i) })
}

// resetCellSlots resets the cell attributes of cell c together with the
// edge and face attributes whose ids belong to c.
func (s *AttributeSet) resetCellSlots(c int) {
	dim := s.m.dim
	for k := Edge; int(k) <= dim; k++ {
		n := localCount(dim, k)
		if int(k) == dim {
			n = 1
		}
		for i := 0; i < n; i++ {
			s.resetSlot(k, c*n+i)
		}
	}
}

// Names returns the registered attribute names of kind k.
func (s *AttributeSet) Names(k Kind) []string {
	var names []string
	s.each(k, func(a attribute) { names = append(names, a.Name()) })
	return names
}

// Unregister removes the attribute name of kind k. It reports whether the
// attribute existed.
func (s *AttributeSet) Unregister(name string, k Kind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.byKey[attrKey{name, k}]
	if !ok {
		return false
	}
	delete(s.byKey, attrKey{name, k})
	s.list[idx] = nil
	return true
}

// Attribute is a named array of values attached to the simplices of one
// kind. Every simplex carries arity values of type T.
//
// Reads never block. Writes made through a Scope are recorded so that the
// scope can undo them; writes with a nil scope go straight to the storage
// and are meant for initialization outside of any edit.
type Attribute[T any] struct {
	set   *AttributeSet
	name  string
	kind  Kind
	arity int
	index int
	def   []T
	data  *segments[T]
}

// Register creates the attribute name for simplices of kind k with arity
// values each. The optional defaults give either one value for every
// component or exactly arity values; without them the zero value is used.
func Register[T any](m *Mesh, name string, k Kind, arity int, defaults ...T) (*Attribute[T], error) {
	if arity < 1 {
		return nil, fmt.Errorf("wildmesh: attribute %q: arity %d must be positive", name, arity)
	}
	if k < Vertex || int(k) > m.dim {
		return nil, fmt.Errorf("%w: attribute %q of kind %v in a %d-mesh", ErrDimension, name, k, m.dim)
	}
	def := make([]T, arity)
	switch len(defaults) {
	case 0:
	case 1:
		for i := range def {
			def[i] = defaults[0]
		}
	case arity:
		copy(def, defaults)
	default:
		return nil, fmt.Errorf("wildmesh: attribute %q: %d defaults for arity %d", name, len(defaults), arity)
	}

	set := m.attrs
	// Growth of the id space happens under allocMu; registering under it
	// keeps the new attribute in step with the capacity.
	m.allocMu.Lock()
	defer m.allocMu.Unlock()
	set.mu.Lock()
	defer set.mu.Unlock()

	key := attrKey{name, k}
	if _, ok := set.byKey[key]; ok {
		return nil, fmt.Errorf("%w: %q (%v)", ErrAttributeExists, name, k)
	}
	a := &Attribute[T]{
		set:   set,
		name:  name,
		kind:  k,
		arity: arity,
		index: len(set.list),
		def:   def,
		data:  newSegments[T](arity),
	}
	a.reserve(m.Capacity(k))
	set.byKey[key] = a.index
	set.list = append(set.list, a)
	return a, nil
}

// Lookup returns the attribute name of kind k. It fails if no such attribute
// is registered or if its element type is not T.
func Lookup[T any](m *Mesh, name string, k Kind) (*Attribute[T], error) {
	set := m.attrs
	set.mu.Lock()
	defer set.mu.Unlock()
	idx, ok := set.byKey[attrKey{name, k}]
	if !ok {
		return nil, fmt.Errorf("wildmesh: no %v attribute %q", k, name)
	}
	a, ok := set.list[idx].(*Attribute[T])
	if !ok {
		return nil, fmt.Errorf("%w: %q is %T", ErrAttributeType, name, set.list[idx])
	}
	return a, nil
}

func (a *Attribute[T]) Name() string {
	return a.name
}

func (a *Attribute[T]) Kind() Kind {
	return a.kind
}

func (a *Attribute[T]) Arity() int {
	return a.arity
}

func (a *Attribute[T]) id() int {
	return a.index
}

// Len returns the number of id slots.
func (a *Attribute[T]) Len() int {
	return a.data.len()
}

func (a *Attribute[T]) reserve(n int) {
	a.data.grow(n, func(v []T) { copy(v, a.def) })
}

func (a *Attribute[T]) reset(i int) {
	if i < a.data.len() {
		copy(a.data.slice(i), a.def)
	}
}

func (a *Attribute[T]) remap(old2new []int, block int, n int) {
	data := newSegments[T](a.arity)
	data.grow(n*block, func(v []T) { copy(v, a.def) })
	for i := 0; i < a.data.len(); i++ {
		c := i / block
		if c >= len(old2new) || old2new[c] < 0 {
			continue
		}
		copy(data.slice(old2new[c]*block+i%block), a.data.slice(i))
	}
	a.data = data
}

// Get returns the current values of simplex id i. The slice aliases the
// storage and must not be modified or retained across edits.
func (a *Attribute[T]) Get(i int) []T {
	return a.data.slice(i)
}

// Scalar returns the first value of simplex id i.
func (a *Attribute[T]) Scalar(i int) T {
	return a.data.slice(i)[0]
}

// Read returns the values of simplex id i as seen from scope s. Inside
// s.ParentScope the values are the ones the enclosing state held; otherwise
// Read is the same as Get.
func (a *Attribute[T]) Read(s *Scope, i int) []T {
	if s != nil {
		if v := s.root.view; v != nil {
			for sc := v; sc != nil; sc = sc.child {
				l, ok := sc.logs[a.index]
				if !ok {
					continue
				}
				if old, ok := l.(*valueLog[T]).get(i); ok {
					return old
				}
			}
		}
	}
	return a.data.slice(i)
}

// Set writes the values of simplex id i, recording the previous values in s
// if s is not nil.
func (a *Attribute[T]) Set(s *Scope, i int, values ...T) {
	if len(values) != a.arity {
		fatalf("attribute %q: %d values for arity %d", a.name, len(values), a.arity)
	}
	if s != nil {
		s.record(a, i)
	}
	copy(a.data.slice(i), values)
}

// SetScalar writes the first value of simplex id i.
func (a *Attribute[T]) SetScalar(s *Scope, i int, v T) {
	if s != nil {
		s.record(a, i)
	}
	a.data.slice(i)[0] = v
}

// With binds a to scope s.
func (a *Attribute[T]) With(s *Scope) Accessor[T] {
	return Accessor[T]{attr: a, scope: s}
}

func (a *Attribute[T]) clone(i int) any {
	return slices.Clone(a.data.slice(i))
}

func (a *Attribute[T]) assign(s *Scope, i int, v any) {
	a.Set(s, i, v.([]T)...)
}

func (a *Attribute[T]) assignDefault(s *Scope, i int) {
	a.Set(s, i, a.def...)
}

func (a *Attribute[T]) newLog() undoLog {
	return &valueLog[T]{attr: a, pos: map[int]int{}}
}

// Accessor is an attribute bound to the scope of one editor.
type Accessor[T any] struct {
	attr  *Attribute[T]
	scope *Scope
}

func (a Accessor[T]) Get(i int) []T {
	return a.attr.Read(a.scope, i)
}

func (a Accessor[T]) Scalar(i int) T {
	return a.attr.Read(a.scope, i)[0]
}

func (a Accessor[T]) Set(i int, values ...T) {
	a.attr.Set(a.scope, i, values...)
}

func (a Accessor[T]) SetScalar(i int, v T) {
	a.attr.SetScalar(a.scope, i, v)
}

// Attribute returns the underlying attribute.
func (a Accessor[T]) Attribute() *Attribute[T] {
	return a.attr
}
