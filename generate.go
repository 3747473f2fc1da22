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

// Grid2D returns a triangulated unit square with nx by ny quads, each cut
// along its rising diagonal. All triangles are counterclockwise.
func Grid2D(nx, ny int) ([][]float64, [][]int) {
	id := func(i, j int) int { return j*(nx+1) + i }
	var pos [][]float64
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			pos = append(pos, []float64{float64(i) / float64(nx), float64(j) / float64(ny)})
		}
	}
	var tris [][]int
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			tris = append(tris,
				[]int{id(i, j), id(i+1, j), id(i+1, j+1)},
				[]int{id(i, j), id(i+1, j+1), id(i, j+1)})
		}
	}
	return pos, tris
}

// Grid3D returns a unit cube cut into n^3 cubes, each split into six
// positively oriented tetrahedra around its main diagonal.
func Grid3D(n int) ([][]float64, [][]int) {
	id := func(i, j, k int) int { return (k*(n+1)+j)*(n+1) + i }
	var pos [][]float64
	for k := 0; k <= n; k++ {
		for j := 0; j <= n; j++ {
			for i := 0; i <= n; i++ {
				pos = append(pos, []float64{float64(i) / float64(n), float64(j) / float64(n), float64(k) / float64(n)})
			}
		}
	}
	perms := [6][3]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}
	var tets [][]int
	for k := 0; k < n; k++ {
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				for _, p := range perms {
					c := [3]int{i, j, k}
					tet := []int{id(c[0], c[1], c[2])}
					for _, axis := range p {
						c[axis]++
						tet = append(tet, id(c[0], c[1], c[2]))
					}
					pts := [][]float64{pos[tet[0]], pos[tet[1]], pos[tet[2]], pos[tet[3]]}
					if (FilteredPredicates{}).Orientation(pts) == Negative {
						tet[2], tet[3] = tet[3], tet[2]
					}
					tets = append(tets, tet)
				}
			}
		}
	}
	return pos, tets
}
