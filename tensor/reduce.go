// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math"

	"github.com/gomlx/exceptions"
)

// reduce folds along one engine axis, keeping it with size 1.
func reduce(t *Tensor, axis int, seed float32, f func(acc, x float32) float32) *Tensor {
	if axis < 0 || axis >= t.Rank() {
		exceptions.Panicf("tensor: reduce axis %d out of range for rank %d", axis, t.Rank())
	}
	outDims := cloneDims(t.dims)
	outDims[axis] = 1
	out := New(outDims, t.device)
	inner := numElements(t.dims[:axis])
	outer := numElements(t.dims[axis+1:])
	n := t.dims[axis]
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			acc := seed
			for k := 0; k < n; k++ {
				acc = f(acc, t.data[i+inner*(k+n*o)])
			}
			out.data[i+inner*o] = acc
		}
	}
	return out
}

// ReduceSum sums along the given engine axis, keeping it with size 1.
func ReduceSum(t *Tensor, axis int) *Tensor {
	return reduce(t, axis, 0, func(acc, x float32) float32 { return acc + x })
}

// ReduceMean averages along the given engine axis, keeping it with size 1.
func ReduceMean(t *Tensor, axis int) *Tensor {
	return MulScalar(ReduceSum(t, axis), 1/float32(t.dims[axis]))
}

// ReduceMax takes the maximum along the given engine axis, keeping it with
// size 1.
func ReduceMax(t *Tensor, axis int) *Tensor {
	return reduce(t, axis, float32(math.Inf(-1)), func(acc, x float32) float32 {
		if x > acc {
			return x
		}
		return acc
	})
}

// SumAll returns the sum of every element.
func SumAll(t *Tensor) float32 {
	var s float32
	for _, v := range t.data {
		s += v
	}
	return s
}
