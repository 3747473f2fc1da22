package wildmesh_test

import (
	"fmt"

	. "github.com/hajimehoshi/go-wildmesh"
)

func ExampleEdgeSplit() {
	m, pos, err := Build(2,
		[][]float64{{0, 0}, {1, 0}, {0, 1}},
		[][]int{{0, 1, 2}})
	if err != nil {
		panic(err)
	}
	t, _ := m.TupleFromEdge(1, 2)
	out, o := m.Apply(&EdgeSplit{Positions: pos}, t)
	fmt.Println(o, m.NumVertices(), m.NumCells())
	v := m.VertexID(out[0])
	fmt.Println(v, pos.Get(v))
	// Output:
	// applied 4 2
	// 3 [0.5 0.5]
}

func ExampleMesh_SwitchVertex() {
	m, _, err := Build(2,
		[][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		[][]int{{0, 1, 2}, {0, 2, 3}})
	if err != nil {
		panic(err)
	}
	t, _ := m.TupleFromEdge(0, 2)
	fmt.Println(m.VertexID(t), m.VertexID(m.SwitchVertex(t)))

	u, ok := m.SwitchCell(t)
	fmt.Println(ok, m.VertexID(u), m.SimplexID(Edge, u) == m.SimplexID(Edge, t))

	b, _ := m.TupleFromEdge(0, 1)
	_, ok = m.SwitchCell(b)
	fmt.Println(ok)
	// Output:
	// 0 2
	// true 0 true
	// false
}

func ExampleScope() {
	m, _, err := Build(1, [][]float64{{0}, {1}}, [][]int{{0, 1}})
	if err != nil {
		panic(err)
	}
	w, err := Register[float64](m, "weight", Vertex, 1)
	if err != nil {
		panic(err)
	}
	outer := m.Attributes().Begin()
	w.SetScalar(outer, 0, 10)
	inner := outer.Begin()
	w.SetScalar(inner, 0, 20)
	fmt.Println(w.Scalar(0))
	inner.Discard()
	fmt.Println(w.Scalar(0))
	outer.Discard()
	fmt.Println(w.Scalar(0))
	// Output:
	// 20
	// 10
	// 0
}
