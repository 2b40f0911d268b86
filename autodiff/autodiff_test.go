// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package autodiff

import (
	"testing"

	"github.com/born-ml/marian/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func param(data []float32, dims []int) *Node {
	return Parameter(tensor.FromSlice(data, dims, tensor.CPU), "", false)
}

func backward(root *Node, params ...*Node) map[*Node]*tensor.Tensor {
	grads := make(map[*Node]*tensor.Tensor)
	for _, p := range params {
		grads[p] = nil
	}
	Backward(root, grads)
	return grads
}

func TestMulGradients(t *testing.T) {
	a := param([]float32{2, 3}, []int{2})
	b := param([]float32{4, 5}, []int{2})

	grads := backward(Mul(a, b), a, b)

	assert.Equal(t, []float32{4, 5}, grads[a].Data())
	assert.Equal(t, []float32{2, 3}, grads[b].Data())
}

func TestAddBroadcastGradient(t *testing.T) {
	a := param([]float32{1, 2}, []int{2, 1})
	b := param([]float32{1, 1, 1, 1, 1, 1}, []int{2, 3})

	grads := backward(Add(a, b), a, b)

	// The broadcast axis is summed away on the way back.
	require.Equal(t, []int{2, 1}, grads[a].Dims())
	assert.Equal(t, []float32{3, 3}, grads[a].Data())
	assert.Equal(t, []float32{1, 1, 1, 1, 1, 1}, grads[b].Data())
}

func TestDivGradients(t *testing.T) {
	a := param([]float32{6}, []int{1})
	b := param([]float32{2}, []int{1})

	grads := backward(Div(a, b), a, b)

	assert.InDelta(t, 0.5, grads[a].Data()[0], 1e-6)    // 1/b
	assert.InDelta(t, -1.5, grads[b].Data()[0], 1e-6)   // -a/b²
}

func TestTimesGradients(t *testing.T) {
	a := param([]float32{1, 2, 3, 4, 5, 6}, []int{2, 3})
	b := param([]float32{1, 2, 3, 4, 5, 6}, []int{3, 2})

	grads := backward(Times(a, b), a, b)

	assert.Equal(t, []float32{5, 5, 7, 7, 9, 9}, grads[a].Data())
	assert.Equal(t, []float32{3, 7, 11, 3, 7, 11}, grads[b].Data())
}

func TestTanhGradient(t *testing.T) {
	a := param([]float32{0.5}, []int{1})

	grads := backward(Tanh(a), a)

	// d/dx tanh(x) = 1 - tanh²(x); tanh(0.5) ≈ 0.4621172
	assert.InDelta(t, 1-0.4621172*0.4621172, grads[a].Data()[0], 1e-5)
}

func TestGradientAccumulatesOverReuse(t *testing.T) {
	a := param([]float32{3}, []int{1})

	// y = a*a; dy/da = 2a.
	grads := backward(Mul(a, a), a)

	assert.Equal(t, []float32{6}, grads[a].Data())
}

func TestReduceGradients(t *testing.T) {
	a := param([]float32{1, 2, 3, 4, 5, 6}, []int{2, 3})

	sumGrads := backward(ReduceSum(a, 1), a)
	assert.Equal(t, []float32{1, 1, 1, 1, 1, 1}, sumGrads[a].Data())

	meanGrads := backward(ReduceMean(a, 1), a)
	for _, g := range meanGrads[a].Data() {
		assert.InDelta(t, 1.0/3.0, g, 1e-6)
	}
}

func TestCrossEntropyGradient(t *testing.T) {
	logits := param([]float32{1, 2, 3}, []int{3})
	target := Constant(tensor.FromSlice([]float32{0, 0, 1}, []int{3}, tensor.CPU), "")

	grads := backward(CrossEntropyWithSoftmax(logits, target, 0), logits)

	// d ce / d logits = softmax(logits) - target
	assert.InDelta(t, 0.09003057, grads[logits].Data()[0], 1e-5)
	assert.InDelta(t, 0.24472847, grads[logits].Data()[1], 1e-5)
	assert.InDelta(t, -0.33475904, grads[logits].Data()[2], 1e-5)
}

func TestSoftmaxGradientSumsToZero(t *testing.T) {
	logits := param([]float32{1, 2, 3}, []int{3})

	// Seed from a sum so that the softmax output gradient is uniform;
	// a uniform upstream gradient must cancel exactly.
	grads := backward(ReduceSum(Softmax(logits, 0), 0), logits)

	sum := float32(0)
	for _, g := range grads[logits].Data() {
		sum += g
	}
	assert.InDelta(t, 0, sum, 1e-6)
}

func TestBackwardWritesOnlyRegisteredParams(t *testing.T) {
	a := param([]float32{2}, []int{1})
	b := param([]float32{3}, []int{1})

	grads := make(map[*Node]*tensor.Tensor)
	grads[a] = nil
	Backward(Mul(a, b), grads)

	require.NotNil(t, grads[a])
	_, registered := grads[b]
	assert.False(t, registered, "unregistered params must not be added to the map")
}

func TestBackwardLeavesUnreachedParamsAlone(t *testing.T) {
	a := param([]float32{2}, []int{1})
	unused := param([]float32{3}, []int{1})

	grads := backward(Mul(a, a), a, unused)

	assert.NotNil(t, grads[a])
	assert.Nil(t, grads[unused], "params outside the traversed graph keep their prior gradient")
}

func TestAliasPassesGradientThrough(t *testing.T) {
	a := param([]float32{2, 3}, []int{2})

	aliased := Alias(Mul(a, a), "squared")
	grads := backward(aliased, a)

	assert.Equal(t, "squared", aliased.Name())
	assert.Equal(t, []float32{4, 6}, grads[a].Data())
}

func TestVolatileConstantCutsTraversal(t *testing.T) {
	v := VolatileConstant(tensor.FromSlice([]float32{5}, []int{1}, tensor.CPU), "")
	a := param([]float32{2}, []int{1})

	grads := backward(Mul(a, v), a)

	assert.Equal(t, []float32{5}, grads[a].Data())
}
