// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/gomlx/exceptions"

// Reshape returns a view of t with new engine dims. The element count must
// match; the returned tensor shares t's backing data.
func Reshape(t *Tensor, dims []int) *Tensor {
	validateDims(dims)
	if numElements(dims) != len(t.data) {
		exceptions.Panicf("tensor: reshape %v to %v changes element count", t.dims, dims)
	}
	return &Tensor{dims: cloneDims(dims), data: t.data, device: t.device}
}

// Transpose permutes axes: output axis i takes its size (and data) from
// input axis perm[i].
func Transpose(t *Tensor, perm []int) *Tensor {
	if len(perm) != t.Rank() {
		exceptions.Panicf("tensor: transpose permutation %v does not match rank %d", perm, t.Rank())
	}
	seen := make([]bool, len(perm))
	outDims := make([]int, len(perm))
	for i, p := range perm {
		if p < 0 || p >= len(perm) || seen[p] {
			exceptions.Panicf("tensor: invalid transpose permutation %v", perm)
		}
		seen[p] = true
		outDims[i] = t.dims[p]
	}
	out := New(outDims, t.device)
	inStrides := t.strides()
	idx := make([]int, len(outDims))
	for o := range out.data {
		in := 0
		for i, p := range perm {
			in += idx[i] * inStrides[p]
		}
		out.data[o] = t.data[in]
		for d := 0; d < len(outDims); d++ {
			idx[d]++
			if idx[d] < outDims[d] {
				break
			}
			idx[d] = 0
		}
	}
	return out
}

// InversePerm returns the permutation q with q[perm[i]] == i.
func InversePerm(perm []int) []int {
	inv := make([]int, len(perm))
	for i, p := range perm {
		inv[p] = i
	}
	return inv
}

// Concat concatenates tensors along the given engine axis. All other axes
// must agree.
func Concat(ts []*Tensor, axis int) *Tensor {
	if len(ts) == 0 {
		exceptions.Panicf("tensor: concat of zero tensors")
	}
	first := ts[0]
	if axis < 0 || axis >= first.Rank() {
		exceptions.Panicf("tensor: concat axis %d out of range for rank %d", axis, first.Rank())
	}
	total := 0
	for _, t := range ts {
		if t.Rank() != first.Rank() {
			exceptions.Panicf("tensor: concat rank mismatch: %v vs %v", first.dims, t.dims)
		}
		for i := range t.dims {
			if i != axis && t.dims[i] != first.dims[i] {
				exceptions.Panicf("tensor: concat dims mismatch on axis %d: %v vs %v", i, first.dims, t.dims)
			}
		}
		total += t.dims[axis]
	}
	outDims := cloneDims(first.dims)
	outDims[axis] = total
	out := New(outDims, first.device)
	offset := 0
	for _, t := range ts {
		copyIntoRegion(out, t, axis, offset)
		offset += t.dims[axis]
	}
	return out
}

// Slice returns the sub-tensor with indices [begin, end) along the given
// engine axis. The sliced axis is kept (with size end-begin).
func Slice(t *Tensor, axis, begin, end int) *Tensor {
	if axis < 0 || axis >= t.Rank() {
		exceptions.Panicf("tensor: slice axis %d out of range for rank %d", axis, t.Rank())
	}
	if begin < 0 || end > t.dims[axis] || begin >= end {
		exceptions.Panicf("tensor: slice [%d,%d) out of range for axis %d (size %d)", begin, end, axis, t.dims[axis])
	}
	outDims := cloneDims(t.dims)
	outDims[axis] = end - begin
	out := New(outDims, t.device)
	inner := numElements(t.dims[:axis])
	outer := numElements(t.dims[axis+1:])
	n := t.dims[axis]
	width := end - begin
	for o := 0; o < outer; o++ {
		for k := 0; k < width; k++ {
			srcBase := inner * ((begin + k) + n*o)
			dstBase := inner * (k + width*o)
			copy(out.data[dstBase:dstBase+inner], t.data[srcBase:srcBase+inner])
		}
	}
	return out
}

// PadSlice is the adjoint of Slice: it places grad (shaped like the slice)
// into a zero tensor of the original dims at [begin, ...) along axis.
func PadSlice(grad *Tensor, dims []int, axis, begin int) *Tensor {
	out := New(dims, grad.device)
	copyIntoRegion(out, grad, axis, begin)
	return out
}

// copyIntoRegion copies src into dst at the given offset along axis; all
// other axes must match.
func copyIntoRegion(dst, src *Tensor, axis, offset int) {
	inner := numElements(src.dims[:axis])
	outer := numElements(src.dims[axis+1:])
	n := src.dims[axis]
	dstN := dst.dims[axis]
	for o := 0; o < outer; o++ {
		for k := 0; k < n; k++ {
			srcBase := inner * (k + n*o)
			dstBase := inner * ((offset + k) + dstN*o)
			copy(dst.data[dstBase:dstBase+inner], src.data[srcBase:srcBase+inner])
		}
	}
}

// OneHot expands t (whose elements must be integral class indices) into a
// one-hot encoding of the given depth. With atFront the class axis is
// inserted as the new engine axis 0 (fastest); otherwise it is appended as
// the new slowest axis.
func OneHot(t *Tensor, depth int, atFront bool) *Tensor {
	if depth <= 0 {
		exceptions.Panicf("tensor: one-hot depth must be positive, got %d", depth)
	}
	n := len(t.data)
	var out *Tensor
	if atFront {
		out = New(append([]int{depth}, t.dims...), t.device)
	} else {
		out = New(append(cloneDims(t.dims), depth), t.device)
	}
	for j, v := range t.data {
		c := int(v)
		if float32(c) != v || c < 0 || c >= depth {
			exceptions.Panicf("tensor: one-hot index %v out of range [0,%d)", v, depth)
		}
		if atFront {
			out.data[c+depth*j] = 1
		} else {
			out.data[j+n*c] = 1
		}
	}
	return out
}
