// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/gomlx/exceptions"

// Times is the engine's matrix product: it contracts the last (slowest)
// axis of a with the first (fastest) axis of b. The result dims are
// a.dims[:last] ++ b.dims[1:].
//
// In column-major layout both operands flatten to plain matrices:
// a is [M x K] with a[m + M*k], b is [K x N] with b[k + K*n], and the
// result is [M x N] with out[m + M*n].
func Times(a, b *Tensor) *Tensor {
	if a.Rank() < 1 || b.Rank() < 1 {
		exceptions.Panicf("tensor: times requires rank >= 1 operands, got %v and %v", a.dims, b.dims)
	}
	k := a.dims[a.Rank()-1]
	if b.dims[0] != k {
		exceptions.Panicf("tensor: times contraction mismatch: %v x %v", a.dims, b.dims)
	}
	m := numElements(a.dims[:a.Rank()-1])
	n := numElements(b.dims[1:])
	outDims := append(cloneDims(a.dims[:a.Rank()-1]), b.dims[1:]...)
	out := New(outDims, a.device)
	for nn := 0; nn < n; nn++ {
		for kk := 0; kk < k; kk++ {
			bv := b.data[kk+k*nn]
			if bv == 0 {
				continue
			}
			aBase := m * kk
			oBase := m * nn
			for mm := 0; mm < m; mm++ {
				out.data[oBase+mm] += a.data[aBase+mm] * bv
			}
		}
	}
	return out
}

// TimesBackward returns the gradients of Times(a, b) w.r.t. a and b given
// the output gradient.
//
//	dA[m,k] = sum_n dY[m,n] * b[k,n]
//	dB[k,n] = sum_m a[m,k] * dY[m,n]
func TimesBackward(a, b, outGrad *Tensor) (gradA, gradB *Tensor) {
	k := a.dims[a.Rank()-1]
	m := numElements(a.dims[:a.Rank()-1])
	n := numElements(b.dims[1:])
	gradA = New(a.dims, a.device)
	gradB = New(b.dims, b.device)
	for nn := 0; nn < n; nn++ {
		gBase := m * nn
		for kk := 0; kk < k; kk++ {
			bv := b.data[kk+k*nn]
			aBase := m * kk
			var acc float32
			for mm := 0; mm < m; mm++ {
				g := outGrad.data[gBase+mm]
				gradA.data[aBase+mm] += g * bv
				acc += a.data[aBase+mm] * g
			}
			gradB.data[kk+k*nn] += acc
		}
	}
	return gradA, gradB
}
