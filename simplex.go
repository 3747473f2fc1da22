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

// Kind is the dimension of a simplex.
type Kind int8

const (
	Vertex Kind = iota
	Edge
	Face
	Tetrahedron
)

func (k Kind) String() string {
	switch k {
	case Vertex:
		return "vertex"
	case Edge:
		return "edge"
	case Face:
		return "face"
	case Tetrahedron:
		return "tetrahedron"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// topology holds the local orientation tables of one cell type. Local edge
// and face indices are positions in these tables.
//
// For a triangle, local edge j is the edge opposite local vertex j. For a
// tetrahedron, the face table lists faces so that every face contains
// local vertex 0 except the last one, and faceEdges[f] lists the three local
// edges bounding face f.
type topology struct {
	edges     [][2]int8
	faces     [][3]int8
	faceEdges [][3]int8
}

var topologies = [4]*topology{
	nil,
	{
		edges: [][2]int8{{0, 1}},
	},
	{
		edges:     [][2]int8{{1, 2}, {0, 2}, {0, 1}},
		faces:     [][3]int8{{0, 1, 2}},
		faceEdges: [][3]int8{{0, 1, 2}},
	},
	{
		edges:     [][2]int8{{0, 1}, {1, 2}, {0, 2}, {0, 3}, {1, 3}, {2, 3}},
		faces:     [][3]int8{{0, 1, 2}, {0, 2, 3}, {0, 1, 3}, {1, 2, 3}},
		faceEdges: [][3]int8{{0, 1, 2}, {2, 5, 3}, {3, 4, 0}, {5, 1, 4}},
	},
}

// localCount returns how many simplices of kind k one cell of dimension dim
// has.
func localCount(dim int, k Kind) int {
	switch k {
	case Vertex:
		return dim + 1
	case Edge:
		return len(topologies[dim].edges)
	case Face:
		return len(topologies[dim].faces)
	case Tetrahedron:
		return 1
	}
	panic(fmt.Sprintf("wildmesh: invalid kind %d", k))
}

// localVertices returns the local vertex indices of the local simplex idx of
// kind k.
func localVertices(dim int, k Kind, idx int) []int8 {
	t := topologies[dim]
	switch k {
	case Vertex:
		return []int8{int8(idx)}
	case Edge:
		e := t.edges[idx]
		return e[:]
	case Face:
		f := t.faces[idx]
		return f[:]
	case Tetrahedron:
		return []int8{0, 1, 2, 3}
	}
	panic(fmt.Sprintf("wildmesh: invalid kind %d", k))
}

func edgeHas(dim int, e int8, v int8) bool {
	p := topologies[dim].edges[e]
	return p[0] == v || p[1] == v
}

func faceHasEdge(dim int, f int8, e int8) bool {
	fe := topologies[dim].faceEdges[f]
	return fe[0] == e || fe[1] == e || fe[2] == e
}

// localEdge returns the local edge joining local vertices a and b.
func localEdge(dim int, a, b int8) int8 {
	for i, e := range topologies[dim].edges {
		if (e[0] == a && e[1] == b) || (e[0] == b && e[1] == a) {
			return int8(i)
		}
	}
	return -1
}

// localFace returns the local face spanned by local vertices a, b and c.
func localFace(dim int, a, b, c int8) int8 {
	mask := 1<<a | 1<<b | 1<<c
	for i, f := range topologies[dim].faces {
		if 1<<f[0]|1<<f[1]|1<<f[2] == mask {
			return int8(i)
		}
	}
	return -1
}
