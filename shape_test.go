// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package marian

import (
	"testing"

	"github.com/born-ml/marian/inits"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constOf(shape Shape, data []float32) Expr {
	return Constant(shape, inits.FromVector(data))
}

func iota6() []float32 { return []float32{1, 2, 3, 4, 5, 6} }

func TestShapeProxyFlipsAxisOrder(t *testing.T) {
	e := constOf(Shape{2, 3, 4}, make([]float32, 24))

	p := e.Shape()
	assert.Equal(t, 3, p.Size())
	assert.Equal(t, 24, p.Elements())
	assert.Equal(t, 2, p.At(0))
	assert.Equal(t, 3, p.At(1))
	assert.Equal(t, 4, p.At(2))

	// Negative indices address engine axes from the innermost end.
	assert.Equal(t, 4, p.At(-1))
	assert.Equal(t, 3, p.At(-2))
	assert.Equal(t, 2, p.At(-3))
}

func TestShapeRoundTrip(t *testing.T) {
	shape := Shape{2, 3, 4}
	e := constOf(shape, make([]float32, 24))

	assert.Equal(t, shape, e.Shape().AsShape())
	assert.Equal(t, []int{4, 3, 2}, e.Shape().EngineDims())
	assert.Equal(t, 24, shape.Elements())
}

func TestAxisResolution(t *testing.T) {
	e := constOf(Shape{2, 3}, iota6())

	// Marian axis i is engine axis rank-1-i.
	assert.Equal(t, 1, toEngineAxis(e, 0))
	assert.Equal(t, 0, toEngineAxis(e, 1))
	assert.Equal(t, 0, toEngineAxis(e, -1))
	assert.Equal(t, 1, toEngineAxis(e, -2))
}

func TestAxisOutOfRangePanics(t *testing.T) {
	e := constOf(Shape{2, 3}, iota6())

	assert.Panics(t, func() { toEngineAxis(e, 2) })
	assert.Panics(t, func() { toEngineAxis(e, -3) })
}

func TestAxisListReversed(t *testing.T) {
	e := constOf(Shape{2, 3, 4}, make([]float32, 24))

	// Mapped individually, then reversed as a list.
	assert.Equal(t, []int{1, 2}, toEngineAxes(e, []int{0, 1}))
	assert.Equal(t, []int{0, 1, 2}, toEngineAxes(e, []int{0, 1, 2}))
}

func TestNullExpr(t *testing.T) {
	var e Expr
	assert.True(t, e.IsNil())
	assert.False(t, constOf(Shape{1}, []float32{0}).IsNil())
}

func TestScalarRequiresSingleElement(t *testing.T) {
	one := constOf(Shape{1}, []float32{42})
	assert.Equal(t, float32(42), one.Scalar())

	many := constOf(Shape{2}, []float32{1, 2})
	require.Panics(t, func() { many.Scalar() })
}
