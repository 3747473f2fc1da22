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

import "fmt"

// Builder collects vertices and cells one at a time and turns them into a
// Mesh with a "position" attribute.
type Builder struct {
	dim       int
	positions [][]float64
	cells     [][]int
	opts      []Option

	// Orient flips cells with negative orientation before building. It
	// only applies when vertices have one coordinate per dimension.
	Orient bool
}

func NewBuilder(dim int, opts ...Option) *Builder {
	return &Builder{
		dim:  dim,
		opts: opts,
	}
}

// AddVertex appends a vertex and returns its id.
func (b *Builder) AddVertex(coords ...float64) int {
	b.positions = append(b.positions, append([]float64(nil), coords...))
	return len(b.positions) - 1
}

// AddCell appends a cell over previously added vertices.
func (b *Builder) AddCell(verts ...int) {
	b.cells = append(b.cells, append([]int(nil), verts...))
}

// AddMesh appends positions and cells whose vertex ids are relative to
// positions, as returned by Grid2D and Grid3D.
func (b *Builder) AddMesh(positions [][]float64, cells [][]int) {
	base := len(b.positions)
	for _, p := range positions {
		b.AddVertex(p...)
	}
	for _, c := range cells {
		shifted := make([]int, len(c))
		for i, v := range c {
			shifted[i] = v + base
		}
		b.cells = append(b.cells, shifted)
	}
}

// Build creates the mesh. The builder can be reused afterwards.
func (b *Builder) Build() (*Mesh, *Attribute[float64], error) {
	cells := b.cells
	if b.Orient {
		var err error
		if cells, err = b.oriented(); err != nil {
			return nil, nil, err
		}
	}
	return Build(b.dim, b.positions, cells, b.opts...)
}

func (b *Builder) oriented() ([][]int, error) {
	out := make([][]int, len(b.cells))
	pts := make([][]float64, 0, 4)
	for i, c := range b.cells {
		out[i] = append([]int(nil), c...)
		if len(c) != b.dim+1 || b.dim < 2 {
			continue
		}
		pts = pts[:0]
		for _, v := range c {
			if v < 0 || v >= len(b.positions) {
				return nil, fmt.Errorf("%w: cell %d references vertex %d out of range", ErrInvalidCell, i, v)
			}
			if len(b.positions[v]) != b.dim {
				return b.cells, nil
			}
			pts = append(pts, b.positions[v])
		}
		switch (FilteredPredicates{}).Orientation(pts) {
		case Negative:
			out[i][1], out[i][2] = out[i][2], out[i][1]
		case Zero:
			return nil, fmt.Errorf("%w: cell %d is degenerate", ErrInvalidCell, i)
		}
	}
	return out, nil
}
