// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package marian

import (
	"github.com/gomlx/exceptions"
)

// Operations below are part of the surface but have no eager
// implementation yet. Each panics with its own name so callers fail
// loudly instead of computing nonsense.

func notImplemented(name string) Expr {
	exceptions.Panicf("marian: %s: not implemented", name)
	return Expr{}
}

// Dot computes a batched matrix product with optional transposes.
func Dot(a, b Expr, transA, transB bool, scalar float32) Expr {
	return notImplemented("dot")
}

// Bdot computes a broadcasting batched matrix product.
func Bdot(a, b Expr, transA, transB bool, scalar float32) Expr {
	return notImplemented("bdot")
}

// Select gathers slices of a along an axis by index.
func Select(a Expr, axis int, indices []int) Expr {
	return notImplemented("select")
}

// SoftmaxWithMask normalizes along the class axis under a mask.
func SoftmaxWithMask(a, mask Expr) Expr {
	return notImplemented("softmax")
}

// LayerNorm applies layer normalization with scale gamma and bias beta.
func LayerNorm(x, gamma, beta Expr, eps float32) Expr {
	return notImplemented("layer_norm")
}

// Highway combines y and x through a transform gate t.
func Highway(y, x, t Expr) Expr {
	return notImplemented("highway")
}

// HighwayPrefix builds a highway layer with parameters named under
// prefix.
func HighwayPrefix(prefix string, x Expr) Expr {
	return notImplemented("highway")
}

// LeakyRelu applies max(alpha*x, x) to the sum of its arguments.
func LeakyRelu(xs ...Expr) Expr {
	return notImplemented("leakyrelu")
}

// Prelu applies a parameterized leaky rectifier to the sum of its
// arguments.
func Prelu(alpha float32, xs ...Expr) Expr {
	return notImplemented("prelu")
}

// Shift displaces a by an offset per axis, zero-padding the edges.
func Shift(a Expr, offsets Shape) Expr {
	return notImplemented("shift")
}

// Convert2CudnnFormat rearranges an image tensor to cuDNN layout.
func Convert2CudnnFormat(x Expr) Expr {
	return notImplemented("convert2cudnnFormat")
}

// ConvertFromCudnnFormat rearranges an image tensor from cuDNN layout.
func ConvertFromCudnnFormat(x Expr) Expr {
	return notImplemented("convertFromcudnnFormat")
}

// AvgPooling applies average pooling over spatial windows.
func AvgPooling(x Expr, height, width, padHeight, padWidth, strideHeight, strideWidth int) Expr {
	return notImplemented("avg_pooling")
}

// MaxPooling applies max pooling over spatial windows.
func MaxPooling(x Expr, height, width, padHeight, padWidth, strideHeight, strideWidth int) Expr {
	return notImplemented("max_pooling")
}

// PoolingWithMasking applies pooling under a padding mask.
func PoolingWithMasking(x, mask Expr, width int, isEven bool) Expr {
	return notImplemented("pooling_with_masking")
}
