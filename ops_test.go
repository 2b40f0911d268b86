// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package marian

import (
	"math/rand"
	"testing"

	"github.com/born-ml/marian/inits"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalarIdentityElision(t *testing.T) {
	a := constOf(Shape{2}, []float32{1, 2})

	// Neutral scalar operands return the operand node itself.
	assert.Same(t, a.Node(), AddScalar(a, 0).Node())
	assert.Same(t, a.Node(), ScalarAdd(0, a).Node())
	assert.Same(t, a.Node(), SubScalar(a, 0).Node())
	assert.Same(t, a.Node(), MulScalar(a, 1).Node())
	assert.Same(t, a.Node(), ScalarMul(1, a).Node())
	assert.Same(t, a.Node(), DivScalar(a, 1).Node())
}

func TestNonNeutralScalarsBuildRealOps(t *testing.T) {
	a := constOf(Shape{2}, []float32{1, 2})

	zero := MulScalar(a, 0)
	require.NotSame(t, a.Node(), zero.Node())
	assert.Equal(t, []float32{0, 0}, zero.Val().Data())

	neg := ScalarSub(0, a)
	require.NotSame(t, a.Node(), neg.Node())
	assert.Equal(t, []float32{-1, -2}, neg.Val().Data())

	diff := Sub(a, a)
	require.NotSame(t, a.Node(), diff.Node())
	assert.Equal(t, []float32{0, 0}, diff.Val().Data())

	assert.Equal(t, []float32{3, 4}, AddScalar(a, 2).Val().Data())
	assert.Equal(t, []float32{2, 1}, ScalarDiv(2, a).Val().Data())
}

func TestPlusBalancedTree(t *testing.T) {
	xs := []Expr{
		constOf(Shape{1}, []float32{1}),
		constOf(Shape{1}, []float32{2}),
		constOf(Shape{1}, []float32{3}),
	}

	root := Plus(xs)
	assert.Equal(t, float32(6), root.Scalar())

	// Three terms split as x0 + (x1 + x2).
	inputs := root.Node().Inputs()
	require.Len(t, inputs, 2)
	assert.Same(t, xs[0].Node(), inputs[0])
	right := inputs[1].Inputs()
	require.Len(t, right, 2)
	assert.Same(t, xs[1].Node(), right[0])
	assert.Same(t, xs[2].Node(), right[1])
}

func TestPlusSingleAndEmpty(t *testing.T) {
	a := constOf(Shape{1}, []float32{7})
	assert.Same(t, a.Node(), Plus([]Expr{a}).Node())
	assert.Panics(t, func() { Plus(nil) })
}

func TestVariadicActivations(t *testing.T) {
	a := constOf(Shape{1}, []float32{0.25})
	b := constOf(Shape{1}, []float32{0.25})

	assert.InDelta(t, 0.46211716, Tanh(a, b).Scalar(), 1e-6)
	assert.InDelta(t, 0.62245933, Logit(a, b).Scalar(), 1e-6)
	// swish(0.5) = 0.5 * sigmoid(0.5)
	assert.InDelta(t, 0.31122967, Swish(a, b).Scalar(), 1e-6)
	assert.Equal(t, float32(0.5), Relu(a, b).Scalar())
}

func TestTransposeMatrix(t *testing.T) {
	a := constOf(Shape{2, 3}, iota6())

	at := Transpose(a)
	assert.Equal(t, Shape{3, 2}, at.Shape().AsShape())
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, at.Val().Data())

	assert.Panics(t, func() { Transpose(constOf(Shape{3}, []float32{1, 2, 3})) })
}

func TestTransposeAxesRoundTrip(t *testing.T) {
	a := constOf(Shape{2, 3}, iota6())

	swapped := TransposeAxes(a, []int{1, 0})
	assert.Equal(t, Shape{3, 2}, swapped.Shape().AsShape())
	assert.Equal(t, a.Val().Data(), TransposeAxes(swapped, []int{1, 0}).Val().Data())
}

func TestConcatenateAndRepeat(t *testing.T) {
	a := constOf(Shape{2, 3}, iota6())

	// Repeat along Marian axis 0 stacks more rows.
	twice := Repeat(a, 2, 0)
	assert.Equal(t, Shape{4, 3}, twice.Shape().AsShape())
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6, 1, 2, 3, 4, 5, 6}, twice.Val().Data())

	assert.Same(t, a.Node(), Repeat(a, 1, 0).Node())
}

func TestReshapeAndFlatten(t *testing.T) {
	a := constOf(Shape{2, 3}, iota6())

	r := Reshape(a, Shape{3, 2})
	assert.Equal(t, Shape{3, 2}, r.Shape().AsShape())
	assert.Equal(t, a.Val().Data(), r.Val().Data())

	f := Flatten(a)
	assert.Equal(t, 1, f.Shape().Size())
	assert.Equal(t, 6, f.Shape().At(0))

	b := constOf(Shape{2, 2, 3}, make([]float32, 12))
	f2 := Flatten2D(b)
	assert.Equal(t, []int{3, 4}, f2.Shape().EngineDims())
}

func TestAtleastNdPadsSlowAxes(t *testing.T) {
	a := constOf(Shape{2, 3}, iota6())

	assert.Same(t, a.Node(), Atleast2D(a).Node())

	e := Atleast4D(a)
	assert.Equal(t, []int{3, 2, 1, 1}, e.Shape().EngineDims())
	assert.Equal(t, Shape{1, 1, 2, 3}, e.Shape().AsShape())
	assert.Equal(t, a.Val().Data(), e.Val().Data())
}

func TestRows(t *testing.T) {
	// Three rows of two columns.
	a := constOf(Shape{3, 2}, iota6())

	picked := Rows(a, []int{2, 0})
	assert.Equal(t, Shape{2, 2}, picked.Shape().AsShape())
	assert.Equal(t, []float32{5, 6, 1, 2}, picked.Val().Data())

	assert.Panics(t, func() { Rows(constOf(Shape{6}, iota6()), []int{0}) })
}

func TestCols(t *testing.T) {
	a := constOf(Shape{3, 2}, iota6())

	picked := Cols(a, []int{1})
	assert.Equal(t, Shape{3, 1}, picked.Shape().AsShape())
	assert.Equal(t, []float32{2, 4, 6}, picked.Val().Data())
}

func TestSumMeanKeepAxis(t *testing.T) {
	a := constOf(Shape{2, 3}, iota6())

	s := Sum(a, 0)
	assert.Equal(t, Shape{1, 3}, s.Shape().AsShape())
	assert.Equal(t, []float32{5, 7, 9}, s.Val().Data())

	m := Mean(a, 1)
	assert.Equal(t, Shape{2, 1}, m.Shape().AsShape())
	assert.Equal(t, []float32{2, 5}, m.Val().Data())
}

func TestStep(t *testing.T) {
	a := constOf(Shape{2, 3}, iota6())

	row1 := Step(a, 1, 0)
	assert.Equal(t, Shape{1, 3}, row1.Shape().AsShape())
	assert.Equal(t, []float32{4, 5, 6}, row1.Val().Data())
}

func TestSoftmaxAlongClassAxis(t *testing.T) {
	// Two positions with three classes each; classes are the innermost
	// engine axis, so each triple must normalize independently.
	logits := constOf(Shape{2, 3}, []float32{1, 2, 3, 1, 1, 1})

	s := Softmax(logits)
	data := s.Val().Data()
	assert.InDelta(t, 1, data[0]+data[1]+data[2], 1e-6)
	assert.InDelta(t, 0.66524096, data[2], 1e-6)
	assert.InDelta(t, 1.0/3.0, data[3], 1e-6)

	ls := LogSoftmax(logits)
	assert.InDelta(t, -0.40760596, ls.Val().Data()[2], 1e-5)
}

func TestCrossEntropyAgainstIndices(t *testing.T) {
	logits := constOf(Shape{2, 3}, []float32{1, 2, 3, 1, 1, 1})
	y := constOf(Shape{2}, []float32{0, 2})

	ce := CrossEntropy(logits, y)

	require.Equal(t, []int{1, 2}, ce.Shape().EngineDims())
	assert.InDelta(t, 2.40760596, ce.Val().Data()[0], 1e-5)
	assert.InDelta(t, 1.09861229, ce.Val().Data()[1], 1e-5)
}

func TestAffine(t *testing.T) {
	W := constOf(Shape{3, 2}, iota6())
	x := constOf(Shape{3}, []float32{1, 1, 1})
	b := constOf(Shape{2}, []float32{10, 20})

	y := Affine(x, W, b)

	assert.Equal(t, []float32{19, 32}, y.Val().Data())
}

func TestScalarProduct(t *testing.T) {
	a := constOf(Shape{2, 3}, iota6())
	b := constOf(Shape{2, 3}, iota6())

	sp := ScalarProduct(a, b, 0)
	assert.Equal(t, Shape{1, 3}, sp.Shape().AsShape())
	assert.Equal(t, []float32{17, 29, 45}, sp.Val().Data())
}

func TestWeightedAverage(t *testing.T) {
	in := constOf(Shape{2}, []float32{2, 4})
	weights := constOf(Shape{2}, []float32{1, 3})

	assert.InDelta(t, 3.5, WeightedAverage(in, weights, 0).Scalar(), 1e-6)
}

func TestSqrtWithEpsilon(t *testing.T) {
	a := constOf(Shape{2}, []float32{4, 9})
	assert.Equal(t, []float32{2, 3}, Sqrt(a, 0).Val().Data())

	z := constOf(Shape{1}, []float32{0})
	assert.Equal(t, float32(1), Sqrt(z, 1).Scalar())
}

func TestSquare(t *testing.T) {
	a := constOf(Shape{2}, []float32{3, -4})
	assert.Equal(t, []float32{9, 16}, Square(a).Val().Data())
}

func TestDropout(t *testing.T) {
	x := constOf(Shape{100}, onesVec(100))

	rng := rand.New(rand.NewSource(7))
	d := Dropout(x, 0.5, rng)

	zeros, scaled := 0, 0
	for _, v := range d.Val().Data() {
		switch v {
		case 0:
			zeros++
		case 2:
			scaled++
		default:
			t.Fatalf("unexpected dropout output %v", v)
		}
	}
	assert.Equal(t, 100, zeros+scaled)
	assert.Greater(t, zeros, 20)
	assert.Greater(t, scaled, 20)

	// Same seed, same mask.
	d2 := Dropout(x, 0.5, rand.New(rand.NewSource(7)))
	assert.Equal(t, d.Val().Data(), d2.Val().Data())
}

func TestDropoutWithMask(t *testing.T) {
	x := constOf(Shape{3}, []float32{1, 2, 3})
	mask := constOf(Shape{3}, []float32{2, 0, 2})

	assert.Equal(t, []float32{2, 0, 6}, DropoutWithMask(x, mask).Val().Data())
}

func TestDebugReturnsInput(t *testing.T) {
	a := constOf(Shape{1}, []float32{1})
	assert.Same(t, a.Node(), Debug(a, "probe").Node())
}

func TestConstantRequiresFromVector(t *testing.T) {
	assert.Panics(t, func() { Constant(Shape{2}, inits.Zeros) })
	assert.Panics(t, func() { Constant(Shape{2}, inits.FromVector([]float32{1, 2, 3})) })
}

func TestNotImplementedOpsPanic(t *testing.T) {
	a := constOf(Shape{2, 2}, []float32{1, 2, 3, 4})

	assert.PanicsWithError(t, "marian: dot: not implemented", func() { Dot(a, a, false, false, 1) })
	assert.Panics(t, func() { Bdot(a, a, false, false, 1) })
	assert.Panics(t, func() { Select(a, 0, []int{0}) })
	assert.Panics(t, func() { SoftmaxWithMask(a, a) })
	assert.Panics(t, func() { LayerNorm(a, a, a, NematusLNEps) })
	assert.Panics(t, func() { Highway(a, a, a) })
	assert.Panics(t, func() { LeakyRelu(a) })
	assert.Panics(t, func() { Prelu(0.01, a) })
	assert.Panics(t, func() { Shift(a, Shape{1, 0}) })
	assert.Panics(t, func() { AvgPooling(a, 2, 2, 0, 0, 1, 1) })
	assert.Panics(t, func() { MaxPooling(a, 2, 2, 0, 0, 1, 1) })
	assert.Panics(t, func() { PoolingWithMasking(a, a, 2, false) })
}

func onesVec(n int) []float32 {
	v := make([]float32, n)
	for i := range v {
		v[i] = 1
	}
	return v
}
