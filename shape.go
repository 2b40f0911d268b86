// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package marian

import (
	"github.com/gomlx/exceptions"
)

// Shape is a tensor shape in Marian axis order: slowest-varying dimension
// first, NumPy style. The engine stores the same dimensions reversed.
type Shape []int

// Elements returns the total element count.
func (s Shape) Elements() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// ShapeProxy gives Marian-ordered access to an expression's engine
// dimensions without copying: it flips the axis order on every lookup and
// interprets negative indices.
type ShapeProxy struct {
	dims []int // engine order, innermost first
}

// At returns the dimension at the given Marian axis. Negative indices
// address engine axes directly from the innermost end, so At(-1) is the
// innermost engine dimension and At(0) == At(-rank).
func (p ShapeProxy) At(index int) int {
	rank := len(p.dims)
	if index < 0 {
		return p.dims[-(index + 1)]
	}
	return p.dims[rank-(index+1)]
}

// Size returns the rank.
func (p ShapeProxy) Size() int { return len(p.dims) }

// Elements returns the total element count.
func (p ShapeProxy) Elements() int {
	n := 1
	for _, d := range p.dims {
		n *= d
	}
	return n
}

// AsShape materializes the proxy as a Marian-ordered Shape.
func (p ShapeProxy) AsShape() Shape {
	rank := len(p.dims)
	shape := make(Shape, rank)
	for i := 0; i < rank; i++ {
		shape[i] = p.dims[rank-1-i]
	}
	return shape
}

// EngineDims returns the underlying engine-ordered dimensions. The slice
// is shared, not copied.
func (p ShapeProxy) EngineDims() []int { return p.dims }

// toEngineDims reverses a Marian shape into engine order.
func toEngineDims(shape Shape) []int {
	rank := len(shape)
	dims := make([]int, rank)
	for i, d := range shape {
		dims[rank-1-i] = d
	}
	return dims
}

// toEngineAxis resolves a Marian axis (negative allowed) against x and
// flips it into engine numbering.
func toEngineAxis(x Expr, axis int) int {
	rank := x.node.Value().Rank()
	if axis < 0 {
		axis += rank
	}
	if axis < 0 || axis >= rank {
		exceptions.Panicf("marian: axis out of range")
	}
	return rank - 1 - axis
}

// toEngineAxes maps each Marian axis into engine numbering and reverses
// the list, preserving the relative order the engine expects.
func toEngineAxes(x Expr, axes []int) []int {
	res := make([]int, len(axes))
	for i, ax := range axes {
		res[i] = toEngineAxis(x, ax)
	}
	for i, j := 0, len(res)-1; i < j; i, j = i+1, j-1 {
		res[i], res[j] = res[j], res[i]
	}
	return res
}
