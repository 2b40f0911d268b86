// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor implements the eager float32 tensor engine underneath the
// Marian compatibility layer.
//
// The engine uses the column-major axis convention: axis 0 is the
// innermost, fastest-varying axis, and higher axes grow slower. This is the
// exact reverse of the NumPy-like convention the adapter surface exposes,
// which is why the adapter maps every shape and axis through a reversal
// (see the root package).
//
// All operations are eager: they allocate and fill their result immediately.
// Broadcasting aligns shapes from axis 0 upwards; a missing higher axis is
// treated as size 1. Reductions keep the reduced axis with size 1.
package tensor

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
)

// Device identifies the compute device a tensor lives on.
//
// The engine computes on the host; the device is placement bookkeeping
// carried so that callers can route allocations (the adapter's
// ExpressionGraph records a selected device for future allocations).
type Device int

// Supported compute devices.
const (
	CPU Device = iota
	GPU
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	case GPU:
		return "GPU"
	default:
		return "Unknown"
	}
}

// Tensor is a dense float32 tensor in the engine's column-major convention.
//
// dims[0] is the fastest-varying axis. The flat offset of an element with
// per-axis indices idx is sum(idx[i] * stride[i]) with stride[0] == 1 and
// stride[i] == stride[i-1] * dims[i-1].
//
// A rank-0 tensor holds exactly one element.
type Tensor struct {
	dims   []int
	data   []float32
	device Device
}

// New creates a zero-filled tensor of the given engine dims.
func New(dims []int, device Device) *Tensor {
	validateDims(dims)
	return &Tensor{
		dims:   cloneDims(dims),
		data:   make([]float32, numElements(dims)),
		device: device,
	}
}

// FromSlice creates a tensor that copies the given data.
// The data length must match the dims element count.
func FromSlice(data []float32, dims []int, device Device) *Tensor {
	validateDims(dims)
	if len(data) != numElements(dims) {
		exceptions.Panicf("tensor: dims %v require %d elements, got %d", dims, numElements(dims), len(data))
	}
	t := New(dims, device)
	copy(t.data, data)
	return t
}

// Full creates a tensor with every element set to value.
func Full(dims []int, value float32, device Device) *Tensor {
	t := New(dims, device)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// Ones creates a tensor filled with 1.
func Ones(dims []int, device Device) *Tensor {
	return Full(dims, 1, device)
}

// Scalar creates a rank-0 tensor holding value.
func Scalar(value float32, device Device) *Tensor {
	t := New(nil, device)
	t.data[0] = value
	return t
}

// Dims returns the engine dims. The returned slice is the backing slice and
// must not be modified.
func (t *Tensor) Dims() []int { return t.dims }

// Rank returns the number of axes.
func (t *Tensor) Rank() int { return len(t.dims) }

// NumElements returns the total element count.
func (t *Tensor) NumElements() int { return len(t.data) }

// Data returns the flat backing data. Modifications are visible to every
// view sharing the buffer (reshapes share, clones do not).
func (t *Tensor) Data() []float32 { return t.data }

// Device returns the placement of the tensor.
func (t *Tensor) Device() Device { return t.device }

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	c := New(t.dims, t.device)
	copy(c.data, t.data)
	return c
}

// At returns the element at the given engine-axis indices.
func (t *Tensor) At(indices ...int) float32 {
	return t.data[t.offset(indices)]
}

// SetAt sets the element at the given engine-axis indices.
func (t *Tensor) SetAt(value float32, indices ...int) {
	t.data[t.offset(indices)] = value
}

func (t *Tensor) offset(indices []int) int {
	if len(indices) != len(t.dims) {
		exceptions.Panicf("tensor: expected %d indices, got %d", len(t.dims), len(indices))
	}
	offset := 0
	stride := 1
	for i, idx := range indices {
		if idx < 0 || idx >= t.dims[i] {
			exceptions.Panicf("tensor: index %d out of bounds for axis %d (size %d)", idx, i, t.dims[i])
		}
		offset += idx * stride
		stride *= t.dims[i]
	}
	return offset
}

// strides returns the column-major strides for the tensor dims.
func (t *Tensor) strides() []int {
	return stridesOf(t.dims)
}

// String returns a short human-readable description.
func (t *Tensor) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tensor%v on %s", t.dims, t.device)
	if len(t.data) <= 8 {
		fmt.Fprintf(&sb, " %v", t.data)
	}
	return sb.String()
}

func stridesOf(dims []int) []int {
	strides := make([]int, len(dims))
	stride := 1
	for i, d := range dims {
		strides[i] = stride
		stride *= d
	}
	return strides
}

func numElements(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}

func cloneDims(dims []int) []int {
	c := make([]int, len(dims))
	copy(c, dims)
	return c
}

func validateDims(dims []int) {
	for i, d := range dims {
		if d <= 0 {
			exceptions.Panicf("tensor: invalid dimension at axis %d: %d (must be > 0)", i, d)
		}
	}
}

// DimsEqual reports whether two engine dims are identical.
func DimsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
