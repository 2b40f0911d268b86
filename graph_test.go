// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package marian

import (
	"math"
	"testing"

	"github.com/born-ml/marian/inits"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamCreateOrReturn(t *testing.T) {
	g := NewExpressionGraph()

	w1 := g.Param("W", Shape{2}, inits.FromVector([]float32{1, 2}), false)
	assert.Equal(t, []float32{1, 2}, w1.Val().Data())

	// Second request returns the same node; the new initializer is ignored.
	w2 := g.Param("W", Shape{2}, inits.Zeros, false)
	require.Same(t, w1.Node(), w2.Node())
	assert.Equal(t, []float32{1, 2}, w2.Val().Data())
}

func TestParamShapeMismatchPanics(t *testing.T) {
	g := NewExpressionGraph()
	g.Param("W", Shape{2, 3}, inits.Zeros, false)

	assert.Panics(t, func() { g.Param("W", Shape{3, 2}, inits.Zeros, false) })
}

func TestParamInitializers(t *testing.T) {
	g := NewExpressionGraph()
	g.SetSeed(11)

	zeros := g.Param("z", Shape{3}, inits.Zeros, false)
	assert.Equal(t, []float32{0, 0, 0}, zeros.Val().Data())

	ones := g.Param("o", Shape{3}, inits.Ones, false)
	assert.Equal(t, []float32{1, 1, 1}, ones.Val().Data())

	sevens := g.Param("s", Shape{2}, inits.FromValue(7), false)
	assert.Equal(t, []float32{7, 7}, sevens.Val().Data())

	uniform := g.Param("u", Shape{100}, inits.Uniform(0.5), false)
	for _, v := range uniform.Val().Data() {
		assert.LessOrEqual(t, float64(math.Abs(float64(v))), 0.5)
	}

	glorot := g.Param("g", Shape{4, 3}, inits.GlorotUniform, false)
	limit := math.Sqrt(6.0 / 7.0)
	nonZero := false
	for _, v := range glorot.Val().Data() {
		assert.LessOrEqual(t, math.Abs(float64(v)), limit)
		if v != 0 {
			nonZero = true
		}
	}
	assert.True(t, nonZero)
}

func TestParamFromVectorLengthMismatchPanics(t *testing.T) {
	g := NewExpressionGraph()

	assert.Panics(t, func() {
		g.Param("W", Shape{2, 2}, inits.FromVector([]float32{1, 2, 3}), false)
	})
}

func TestParamFromVectorCopiesData(t *testing.T) {
	g := NewExpressionGraph()
	src := []float32{1, 2}

	w := g.Param("W", Shape{2}, inits.FromVector(src), false)
	src[0] = 99

	assert.Equal(t, []float32{1, 2}, w.Val().Data())
}

func TestGetReturnsNullForUnknownName(t *testing.T) {
	g := NewExpressionGraph()
	g.Param("W", Shape{2}, inits.Zeros, false)

	assert.False(t, g.Get("W").IsNil())
	assert.True(t, g.Get("missing").IsNil())
}

func TestFromVectorIntConversion(t *testing.T) {
	g := NewExpressionGraph()

	w := g.Param("W", Shape{3}, inits.FromVector([]int{1, 2, 3}), false)

	assert.Equal(t, []float32{1, 2, 3}, w.Val().Data())
}

func TestBackwardFillsRegisteredGradients(t *testing.T) {
	g := NewExpressionGraph()
	p := g.Param("p", Shape{2}, inits.FromVector([]float32{1, 2}), false)

	loss := Sum(Square(p), 0)
	g.Backward(loss)

	grad := g.Grads()[p.Node()]
	require.NotNil(t, grad)
	assert.Equal(t, []float32{2, 4}, grad.Data())
}

func TestBackwardLeavesUnreachedParamsNil(t *testing.T) {
	g := NewExpressionGraph()
	p := g.Param("p", Shape{1}, inits.FromVector([]float32{2}), false)
	q := g.Param("q", Shape{1}, inits.FromVector([]float32{3}), false)

	g.Backward(Square(p))

	assert.NotNil(t, g.Grads()[p.Node()])
	assert.Nil(t, g.Grads()[q.Node()])
}

func TestGraphDropoutReproducibleWithSeed(t *testing.T) {
	g := NewExpressionGraph()

	g.SetSeed(42)
	m1 := g.Dropout(0.5, Shape{100})
	g.SetSeed(42)
	m2 := g.Dropout(0.5, Shape{100})

	assert.Equal(t, m1.Val().Data(), m2.Val().Data())
	for _, v := range m1.Val().Data() {
		assert.Contains(t, []float32{0, 2}, v)
	}
}

func TestGraphConstant(t *testing.T) {
	g := NewExpressionGraph()

	c := g.Constant(Shape{2, 2}, inits.FromVector([]float32{1, 2, 3, 4}))

	assert.Equal(t, Shape{2, 2}, c.Shape().AsShape())
	assert.Equal(t, []float32{1, 2, 3, 4}, c.Val().Data())
	assert.Panics(t, func() { g.Constant(Shape{2}, inits.Zeros) })
}

func TestGraphNoOps(t *testing.T) {
	g := NewExpressionGraph()

	// Eager evaluation: these exist for interface compatibility only.
	g.Clear()
	g.ReserveWorkspaceMB(512)
	g.Forward()
	g.ForwardNext()
}
