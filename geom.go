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
	"math"
	"math/big"

	"gonum.org/v1/gonum/spatial/r3"
)

// Sign is the sign of an orientation determinant.
type Sign int8

const (
	Negative Sign = -1
	Zero     Sign = 0
	Positive Sign = 1
)

// Predicates answers geometric questions about one cell given the
// coordinates of its vertices in local order.
type Predicates interface {
	// Orientation returns the sign of the determinant whose rows are
	// pts[i]-pts[0], so that a counterclockwise triangle and the
	// tetrahedron (0, e1, e2, e3) are positive. len(pts) is one more than
	// the dimension of each point.
	Orientation(pts [][]float64) Sign
	// Quality returns a shape measure in [0, 1]; 1 is the regular simplex
	// and 0 is degenerate.
	Quality(pts [][]float64) float64
}

// FilteredPredicates evaluates orientations in floating point and falls back
// to exact rational arithmetic when the result is within the rounding error
// bound of zero.
type FilteredPredicates struct{}

const epsilon = 1.0 / (1 << 53)

var (
	orient2dBound = (3 + 16*epsilon) * epsilon
	orient3dBound = (7 + 56*epsilon) * epsilon
)

func (FilteredPredicates) Orientation(pts [][]float64) Sign {
	switch len(pts) {
	case 2:
		return signOf(pts[1][0] - pts[0][0])
	case 3:
		a, b, c := pts[0], pts[1], pts[2]
		l := (a[0] - c[0]) * (b[1] - c[1])
		r := (a[1] - c[1]) * (b[0] - c[0])
		det := l - r
		if math.Abs(det) > orient2dBound*(math.Abs(l)+math.Abs(r)) {
			return signOf(det)
		}
	case 4:
		a, b, c, d := vec(pts[0]), vec(pts[1]), vec(pts[2]), vec(pts[3])
		ba, ca, da := r3.Sub(b, a), r3.Sub(c, a), r3.Sub(d, a)
		det := r3.Dot(ba, r3.Cross(ca, da))
		permanent := r3.Dot(abs(ba), crossPermanent(ca, da))
		if math.Abs(det) > orient3dBound*permanent {
			return signOf(det)
		}
	default:
		fatalf("orientation of %d points", len(pts))
	}
	return ExactOrientation(rationals(pts))
}

func (FilteredPredicates) Quality(pts [][]float64) float64 {
	switch len(pts) {
	case 2:
		return 1
	case 3:
		a, b, c := vec(pts[0]), vec(pts[1]), vec(pts[2])
		area := r3.Norm(r3.Cross(r3.Sub(b, a), r3.Sub(c, a))) / 2
		sum := r3.Norm2(r3.Sub(b, a)) + r3.Norm2(r3.Sub(c, b)) + r3.Norm2(r3.Sub(a, c))
		if sum == 0 {
			return 0
		}
		return 4 * math.Sqrt(3) * area / sum
	case 4:
		a, b, c, d := vec(pts[0]), vec(pts[1]), vec(pts[2]), vec(pts[3])
		vol := math.Abs(r3.Dot(r3.Sub(b, a), r3.Cross(r3.Sub(c, a), r3.Sub(d, a)))) / 6
		sum := 0.0
		ps := [4]r3.Vec{a, b, c, d}
		for i := 0; i < 4; i++ {
			for j := i + 1; j < 4; j++ {
				sum += r3.Norm2(r3.Sub(ps[i], ps[j]))
			}
		}
		if sum == 0 {
			return 0
		}
		rms := math.Sqrt(sum / 6)
		return 6 * math.Sqrt2 * vol / (rms * rms * rms)
	}
	fatalf("quality of %d points", len(pts))
	return 0
}

// InverseQuality is an energy that grows without bound as a cell
// degenerates.
func InverseQuality(pts [][]float64) float64 {
	q := FilteredPredicates{}.Quality(pts)
	if q <= 0 {
		return math.Inf(1)
	}
	return 1 / q
}

// vec converts up to three coordinates to a vector; missing ones are zero.
func vec(p []float64) r3.Vec {
	var v r3.Vec
	switch len(p) {
	default:
		v.Z = p[2]
		fallthrough
	case 2:
		v.Y = p[1]
		fallthrough
	case 1:
		v.X = p[0]
	case 0:
	}
	return v
}

func abs(v r3.Vec) r3.Vec {
	return r3.Vec{X: math.Abs(v.X), Y: math.Abs(v.Y), Z: math.Abs(v.Z)}
}

// crossPermanent returns the permanent of the cross product terms of a and
// b, that is the sum of the absolute values of each product.
func crossPermanent(a, b r3.Vec) r3.Vec {
	return r3.Vec{
		X: math.Abs(a.Y*b.Z) + math.Abs(a.Z*b.Y),
		Y: math.Abs(a.Z*b.X) + math.Abs(a.X*b.Z),
		Z: math.Abs(a.X*b.Y) + math.Abs(a.Y*b.X),
	}
}

func signOf(x float64) Sign {
	switch {
	case x > 0:
		return Positive
	case x < 0:
		return Negative
	}
	return Zero
}

func rationals(pts [][]float64) [][]*big.Rat {
	out := make([][]*big.Rat, len(pts))
	for i, p := range pts {
		out[i] = make([]*big.Rat, len(p))
		for j, x := range p {
			out[i][j] = new(big.Rat).SetFloat64(x)
		}
	}
	return out
}

// ExactOrientation returns the exact orientation of the simplex spanned by
// rational points.
func ExactOrientation(pts [][]*big.Rat) Sign {
	n := len(pts) - 1
	// Rows are p_i - p_0.
	m := make([][]*big.Rat, n)
	for i := 0; i < n; i++ {
		m[i] = make([]*big.Rat, n)
		for j := 0; j < n; j++ {
			m[i][j] = new(big.Rat).Sub(pts[i+1][j], pts[0][j])
		}
	}
	return Sign(determinant(m).Sign())
}

// determinant computes the determinant of a small square matrix by
// Gaussian elimination. m is overwritten.
func determinant(m [][]*big.Rat) *big.Rat {
	n := len(m)
	det := big.NewRat(1, 1)
	for col := 0; col < n; col++ {
		pivot := -1
		for r := col; r < n; r++ {
			if m[r][col].Sign() != 0 {
				pivot = r
				break
			}
		}
		if pivot < 0 {
			return new(big.Rat)
		}
		if pivot != col {
			m[pivot], m[col] = m[col], m[pivot]
			det.Neg(det)
		}
		det.Mul(det, m[col][col])
		for r := col + 1; r < n; r++ {
			if m[r][col].Sign() == 0 {
				continue
			}
			f := new(big.Rat).Quo(m[r][col], m[col][col])
			for c := col; c < n; c++ {
				m[r][c].Sub(m[r][c], new(big.Rat).Mul(f, m[col][c]))
			}
		}
	}
	return det
}

// interpolate:
// Given parameters a,x,b,y returns the value (b*x+a*y)/(a+b),
// or (x+y)/2 if a==b==0.  It requires that a,b >= 0, and enforces
// this in the rare case that one argument is slightly negative.
// The result r always satisfies MIN(x,y) <= r <= MAX(x,y).
func interpolate(a, x, b, y float64) float64 {
	if a < 0 {
		a = 0
	}
	if b < 0 {
		b = 0
	}
	if a <= b {
		if b == 0 {
			return (x + y) / 2
		}
		return x + (y-x)*(a/(a+b))
	}
	return y + (x-y)*(b/(a+b))
}

// edgeLength returns the Euclidean distance between two points.
func edgeLength(p, q []float64) float64 {
	return r3.Norm(r3.Sub(vec(p), vec(q)))
}
