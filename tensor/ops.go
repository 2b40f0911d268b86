// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math"

	"github.com/gomlx/exceptions"
)

// BroadcastDims computes the broadcast result dims of two engine shapes.
//
// Shapes align from axis 0 upwards (the engine's innermost axis); for each
// axis the sizes must match or one of them must be 1, and a tensor missing a
// higher axis behaves as if it had size 1 there.
func BroadcastDims(a, b []int) []int {
	n := max(len(a), len(b))
	out := make([]int, n)
	for i := 0; i < n; i++ {
		ad, bd := 1, 1
		if i < len(a) {
			ad = a[i]
		}
		if i < len(b) {
			bd = b[i]
		}
		switch {
		case ad == bd:
			out[i] = ad
		case ad == 1:
			out[i] = bd
		case bd == 1:
			out[i] = ad
		default:
			exceptions.Panicf("tensor: cannot broadcast dims %v with %v (axis %d: %d vs %d)", a, b, i, ad, bd)
		}
	}
	return out
}

// binary applies f elementwise with broadcasting.
func binary(a, b *Tensor, f func(x, y float32) float32) *Tensor {
	dims := BroadcastDims(a.dims, b.dims)
	out := New(dims, a.device)
	if DimsEqual(a.dims, b.dims) {
		// Fast path: no broadcasting.
		for i := range out.data {
			out.data[i] = f(a.data[i], b.data[i])
		}
		return out
	}
	aStrides := broadcastStrides(a.dims, dims)
	bStrides := broadcastStrides(b.dims, dims)
	idx := make([]int, len(dims))
	ai, bi := 0, 0
	for o := range out.data {
		out.data[o] = f(a.data[ai], b.data[bi])
		// Odometer increment from axis 0 (fastest).
		for d := 0; d < len(dims); d++ {
			idx[d]++
			ai += aStrides[d]
			bi += bStrides[d]
			if idx[d] < dims[d] {
				break
			}
			idx[d] = 0
			ai -= aStrides[d] * dims[d]
			bi -= bStrides[d] * dims[d]
		}
	}
	return out
}

// broadcastStrides returns per-axis strides of src viewed as the (larger)
// out dims, with stride 0 on broadcast axes.
func broadcastStrides(src, out []int) []int {
	strides := make([]int, len(out))
	stride := 1
	for i := range out {
		if i < len(src) && src[i] != 1 {
			strides[i] = stride
		}
		if i < len(src) {
			stride *= src[i]
		}
	}
	return strides
}

// unary applies f elementwise.
func unary(a *Tensor, f func(x float32) float32) *Tensor {
	out := New(a.dims, a.device)
	for i, v := range a.data {
		out.data[i] = f(v)
	}
	return out
}

// Add returns a + b with broadcasting.
func Add(a, b *Tensor) *Tensor { return binary(a, b, func(x, y float32) float32 { return x + y }) }

// Sub returns a - b with broadcasting.
func Sub(a, b *Tensor) *Tensor { return binary(a, b, func(x, y float32) float32 { return x - y }) }

// Mul returns the elementwise product with broadcasting.
func Mul(a, b *Tensor) *Tensor { return binary(a, b, func(x, y float32) float32 { return x * y }) }

// Div returns the elementwise quotient with broadcasting.
func Div(a, b *Tensor) *Tensor { return binary(a, b, func(x, y float32) float32 { return x / y }) }

// Neg returns -a.
func Neg(a *Tensor) *Tensor { return unary(a, func(x float32) float32 { return -x }) }

// Exp returns elementwise e^a.
func Exp(a *Tensor) *Tensor {
	return unary(a, func(x float32) float32 { return float32(math.Exp(float64(x))) })
}

// Log returns the elementwise natural logarithm.
func Log(a *Tensor) *Tensor {
	return unary(a, func(x float32) float32 { return float32(math.Log(float64(x))) })
}

// Tanh returns the elementwise hyperbolic tangent.
func Tanh(a *Tensor) *Tensor {
	return unary(a, func(x float32) float32 { return float32(math.Tanh(float64(x))) })
}

// Sigmoid returns elementwise 1/(1+e^-a).
func Sigmoid(a *Tensor) *Tensor {
	return unary(a, func(x float32) float32 { return float32(1.0 / (1.0 + math.Exp(float64(-x)))) })
}

// Relu returns elementwise max(0, a).
func Relu(a *Tensor) *Tensor {
	return unary(a, func(x float32) float32 {
		if x > 0 {
			return x
		}
		return 0
	})
}

// Sqrt returns the elementwise square root.
func Sqrt(a *Tensor) *Tensor {
	return unary(a, func(x float32) float32 { return float32(math.Sqrt(float64(x))) })
}

// MulScalar returns a * s.
func MulScalar(a *Tensor, s float32) *Tensor {
	return unary(a, func(x float32) float32 { return x * s })
}

// Unbroadcast reduces grad (shaped like a broadcast result) back to the
// given input dims by summing over the axes that were broadcast. Used by
// the autodiff layer for the backward pass of broadcasting ops.
func Unbroadcast(grad *Tensor, dims []int) *Tensor {
	if DimsEqual(grad.dims, dims) {
		return grad.Clone()
	}
	out := grad
	// Sum away axes beyond the input rank (they are the slowest, so each
	// reduction keeps the flat layout of the remaining block intact).
	for out.Rank() > len(dims) {
		out = dropLastAxis(out)
	}
	// Sum over axes where the input had size 1.
	for i := 0; i < len(dims); i++ {
		if dims[i] == 1 && out.dims[i] > 1 {
			out = ReduceSum(out, i)
		}
	}
	if !DimsEqual(out.dims, dims) {
		exceptions.Panicf("tensor: cannot unbroadcast %v to %v", grad.dims, dims)
	}
	return out
}

// dropLastAxis sums over the slowest axis and removes it.
func dropLastAxis(t *Tensor) *Tensor {
	last := t.Rank() - 1
	block := numElements(t.dims[:last])
	out := New(t.dims[:last], t.device)
	for k := 0; k < t.dims[last]; k++ {
		base := k * block
		for i := 0; i < block; i++ {
			out.data[i] += t.data[base+i]
		}
	}
	return out
}
