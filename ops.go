// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package marian

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/marian/autodiff"
	"github.com/born-ml/marian/inits"
	"github.com/born-ml/marian/tensor"
	"github.com/gomlx/exceptions"
	"k8s.io/klog/v2"
)

// NematusLNEps is the layer-normalization epsilon used by Nematus-style
// models.
const NematusLNEps float32 = 1e-5

// scalarExpr wraps a host scalar as a rank-0 constant on a's device.
func scalarExpr(v float32, a Expr) Expr {
	return Expr{node: autodiff.Constant(tensor.Scalar(v, a.Val().Device()), "")}
}

// Neg returns -a.
func Neg(a Expr) Expr { return Expr{node: autodiff.Neg(a.node)} }

// Add returns a + b with broadcasting.
func Add(a, b Expr) Expr { return Expr{node: autodiff.Add(a.node, b.node)} }

// Sub returns a - b with broadcasting.
func Sub(a, b Expr) Expr { return Expr{node: autodiff.Sub(a.node, b.node)} }

// Mul returns the elementwise product with broadcasting.
func Mul(a, b Expr) Expr { return Expr{node: autodiff.Mul(a.node, b.node)} }

// Div returns the elementwise quotient with broadcasting.
func Div(a, b Expr) Expr { return Expr{node: autodiff.Div(a.node, b.node)} }

// AddScalar returns a + b. Adding 0 returns a unchanged.
func AddScalar(a Expr, b float32) Expr {
	if b == 0 {
		return a
	}
	return Add(a, scalarExpr(b, a))
}

// ScalarAdd returns a + b. Adding 0 returns b unchanged.
func ScalarAdd(a float32, b Expr) Expr {
	if a == 0 {
		return b
	}
	return Add(scalarExpr(a, b), b)
}

// SubScalar returns a - b. Subtracting 0 returns a unchanged.
func SubScalar(a Expr, b float32) Expr {
	if b == 0 {
		return a
	}
	return Sub(a, scalarExpr(b, a))
}

// ScalarSub returns a - b. With a == 0 this reduces to Neg(b).
func ScalarSub(a float32, b Expr) Expr {
	if a == 0 {
		return Neg(b)
	}
	return Sub(scalarExpr(a, b), b)
}

// MulScalar returns a * b. Multiplying by 1 returns a unchanged.
func MulScalar(a Expr, b float32) Expr {
	if b == 1 {
		return a
	}
	return Mul(a, scalarExpr(b, a))
}

// ScalarMul returns a * b. Multiplying by 1 returns b unchanged.
func ScalarMul(a float32, b Expr) Expr {
	if a == 1 {
		return b
	}
	return Mul(scalarExpr(a, b), b)
}

// DivScalar returns a / b. Dividing by 1 returns a unchanged.
func DivScalar(a Expr, b float32) Expr {
	if b == 1 {
		return a
	}
	return Div(a, scalarExpr(b, a))
}

// ScalarDiv returns a / b.
func ScalarDiv(a float32, b Expr) Expr {
	return Div(scalarExpr(a, b), b)
}

// Debug logs the expression at verbosity 1 and returns it unchanged, so
// it can be inserted into formulas without altering them.
func Debug(a Expr, message string) Expr {
	klog.V(1).Infof("debug %s: %s%v = %s", message, a.Name(), a.Val().Dims(), a.Val())
	return a
}

// Plus sums a list of expressions as a balanced binary tree, keeping the
// evaluation depth logarithmic in the list length.
func Plus(xs []Expr) Expr {
	if len(xs) == 0 {
		exceptions.Panicf("marian: plus: empty expression list")
	}
	return plusRange(xs)
}

func plusRange(xs []Expr) Expr {
	if len(xs) == 1 {
		return xs[0]
	}
	mid := len(xs) / 2
	return Add(plusRange(xs[:mid]), plusRange(xs[mid:]))
}

// Logit applies the logistic sigmoid to the sum of its arguments.
func Logit(xs ...Expr) Expr {
	return Expr{node: autodiff.Sigmoid(Plus(xs).node)}
}

// Swish applies x * sigmoid(x) to the sum of its arguments.
func Swish(xs ...Expr) Expr {
	x := Plus(xs)
	return Mul(x, Expr{node: autodiff.Sigmoid(x.node)})
}

// Tanh applies the hyperbolic tangent to the sum of its arguments.
func Tanh(xs ...Expr) Expr {
	x := Plus(xs)
	n := autodiff.Tanh(x.node)
	n.SetName(fmt.Sprintf("Tanh(%s)", x.Name()))
	return Expr{node: n}
}

// Relu applies max(0, x) to the sum of its arguments.
func Relu(xs ...Expr) Expr {
	return Expr{node: autodiff.Relu(Plus(xs).node)}
}

// Log returns the elementwise natural logarithm.
func Log(a Expr) Expr { return Expr{node: autodiff.Log(a.node)} }

// Exp returns the elementwise exponential.
func Exp(a Expr) Expr { return Expr{node: autodiff.Exp(a.node)} }

// Transpose swaps the two innermost engine axes of a matrix.
func Transpose(a Expr) Expr {
	rank := a.Val().Rank()
	if rank < 2 {
		exceptions.Panicf("marian: transpose: matrix expected, got rank %d", rank)
	}
	perm := make([]int, rank)
	for i := range perm {
		perm[i] = i
	}
	perm[0], perm[1] = 1, 0
	return Expr{node: autodiff.Transpose(a.node, perm)}
}

// TransposeAxes permutes axes: output axis i takes input axis axes[i],
// both in Marian numbering.
func TransposeAxes(a Expr, axes []int) Expr {
	return Expr{node: autodiff.Transpose(a.node, toEngineAxes(a, axes))}
}

// Concatenate joins expressions along the given Marian axis.
func Concatenate(xs []Expr, ax int) Expr {
	nodes := make([]*autodiff.Node, len(xs))
	for i, x := range xs {
		nodes[i] = x.node
	}
	return Expr{node: autodiff.Concat(nodes, toEngineAxis(xs[0], ax))}
}

// Repeat tiles a along the given Marian axis. A repeat count of 1
// returns a unchanged.
func Repeat(a Expr, repeats int, ax int) Expr {
	if repeats == 1 {
		return a
	}
	xs := make([]Expr, repeats)
	for i := range xs {
		xs[i] = a
	}
	return Concatenate(xs, ax)
}

// Reshape reinterprets a with the given Marian shape.
func Reshape(a Expr, shape Shape) Expr {
	return Expr{node: autodiff.Reshape(a.node, toEngineDims(shape))}
}

// AtleastNd pads the shape with singleton axes at the slow end until the
// rank is at least n. Expressions already of sufficient rank are
// returned unchanged.
func AtleastNd(a Expr, n int) Expr {
	dims := a.Val().Dims()
	if len(dims) >= n {
		return a
	}
	padded := make([]int, n)
	copy(padded, dims)
	for i := len(dims); i < n; i++ {
		padded[i] = 1
	}
	return Expr{node: autodiff.Reshape(a.node, padded)}
}

// Atleast1D pads the shape to rank 1 or more.
func Atleast1D(a Expr) Expr { return AtleastNd(a, 1) }

// Atleast2D pads the shape to rank 2 or more.
func Atleast2D(a Expr) Expr { return AtleastNd(a, 2) }

// Atleast3D pads the shape to rank 3 or more.
func Atleast3D(a Expr) Expr { return AtleastNd(a, 3) }

// Atleast4D pads the shape to rank 4 or more.
func Atleast4D(a Expr) Expr { return AtleastNd(a, 4) }

// Flatten reshapes a into a rank-1 vector.
func Flatten(a Expr) Expr {
	return Expr{node: autodiff.Reshape(a.node, []int{a.Val().NumElements()})}
}

// Flatten2D keeps the innermost engine axis and flattens the rest into a
// single second axis.
func Flatten2D(a Expr) Expr {
	dims := a.Val().Dims()
	inner := dims[0]
	rest := a.Val().NumElements() / inner
	return Expr{node: autodiff.Reshape(a.node, []int{inner, rest})}
}

// Rows gathers rows of a matrix by index, implemented as a product with a
// one-hot selection matrix.
func Rows(a Expr, indices []int) Expr {
	dims := a.Val().Dims()
	if len(dims) != 2 {
		exceptions.Panicf("marian: rows: data must be a matrix")
	}
	numClasses := dims[len(dims)-1]
	idx := make([]float32, len(indices))
	for i, index := range indices {
		idx[i] = float32(index)
	}
	idxNode := autodiff.Constant(tensor.FromSlice(idx, []int{len(indices)}, a.Val().Device()), "")
	oneHot := autodiff.OneHot(idxNode, numClasses, true)
	return Expr{node: autodiff.Times(a.node, oneHot)}
}

// Cols gathers columns of a matrix by index. Implemented via Rows on the
// transpose; not efficient.
func Cols(a Expr, indices []int) Expr {
	return Transpose(Rows(Transpose(a), indices))
}

// Sum reduces along the given Marian axis, keeping it with size 1.
func Sum(a Expr, ax int) Expr {
	return Expr{node: autodiff.ReduceSum(a.node, toEngineAxis(a, ax))}
}

// Mean averages along the given Marian axis, keeping it with size 1.
func Mean(a Expr, ax int) Expr {
	return Expr{node: autodiff.ReduceMean(a.node, toEngineAxis(a, ax))}
}

// Softmax normalizes along the class axis (engine axis 0).
func Softmax(a Expr) Expr {
	return Expr{node: autodiff.Softmax(a.node, 0)}
}

// LogSoftmax computes log(softmax) along the class axis (engine axis 0).
func LogSoftmax(x Expr) Expr {
	n := autodiff.LogSoftmax(x.node, 0)
	n.SetName(fmt.Sprintf("LogSoftmax(%s,Axis(0))", x.Name()))
	return Expr{node: n}
}

// CrossEntropy computes the fused softmax cross-entropy of unnormalized
// log probabilities o against integer class labels y (indices, not
// one-hot). The class count is taken from o's innermost engine dimension,
// and the reduced class axis is kept with size 1.
func CrossEntropy(o, y Expr) Expr {
	numClasses := o.Val().Dims()[0]
	yOneHot := autodiff.OneHot(y.node, numClasses, true)
	n := autodiff.CrossEntropyWithSoftmax(o.node, yOneHot, 0)
	n = autodiff.Alias(n, fmt.Sprintf("CrossEntropyWithSoftmax(%s,OneHot(%s,%d))", o.Name(), y.Name(), numClasses))
	return Expr{node: n}
}

// Affine computes W*x + b.
func Affine(x, W, b Expr) Expr {
	y := autodiff.Add(autodiff.Times(W.node, x.node), b.node)
	y = autodiff.Alias(y, fmt.Sprintf("Times(%s,%s)+(%s)", W.Name(), x.Name(), b.Name()))
	return Expr{node: y}
}

// ScalarProduct computes the inner product of a and b along the given
// Marian axis (reduced, kept with size 1).
func ScalarProduct(a, b Expr, ax int) Expr {
	return Expr{node: autodiff.ReduceSum(autodiff.Mul(a.node, b.node), toEngineAxis(a, ax))}
}

// WeightedAverage computes sum(in*weights, ax) / sum(weights, ax).
func WeightedAverage(in, weights Expr, ax int) Expr {
	axis := toEngineAxis(in, ax)
	numer := autodiff.ReduceSum(autodiff.Mul(in.node, weights.node), axis)
	denom := autodiff.ReduceSum(weights.node, axis)
	return Expr{node: autodiff.Div(numer, denom)}
}

// Step slices out position step along the given Marian axis, keeping the
// axis with size 1.
func Step(a Expr, step, ax int) Expr {
	return Expr{node: autodiff.Slice(a.node, toEngineAxis(a, ax), step, step+1)}
}

// Sqrt returns the elementwise square root of a + eps.
func Sqrt(a Expr, eps float32) Expr {
	return Expr{node: autodiff.Sqrt(AddScalar(a, eps).node)}
}

// Square returns the elementwise square.
func Square(a Expr) Expr { return Mul(a, a) }

// DropoutWithMask applies a precomputed dropout mask.
func DropoutWithMask(x, mask Expr) Expr { return Mul(x, mask) }

// Dropout samples an inverted dropout mask from rng and applies it to x.
// The mask is a constant: gradients flow through the product but not into
// the mask itself.
func Dropout(x Expr, dropProb float32, rng *rand.Rand) Expr {
	mask := dropoutMaskExpr(dropProb, x.Val().Dims(), x.Val().Device(), rng)
	return DropoutWithMask(x, mask)
}

// dropoutMask samples n inverted-dropout mask values: 1/(1-p) with
// probability 1-p, else 0.
func dropoutMask(n int, dropProb float32, rng *rand.Rand) []float32 {
	keepProb := 1 - dropProb
	invKeepProb := 1 / keepProb
	mask := make([]float32, n)
	for i := range mask {
		if rng.Float32() < keepProb {
			mask[i] = invKeepProb
		}
	}
	return mask
}

// dropoutMaskExpr wraps a sampled mask as a constant of the given engine
// dims.
func dropoutMaskExpr(dropProb float32, dims []int, device tensor.Device, rng *rand.Rand) Expr {
	n := 1
	for _, d := range dims {
		n *= d
	}
	mask := dropoutMask(n, dropProb, rng)
	return Expr{node: autodiff.Constant(tensor.FromSlice(mask, dims, device), "")}
}

// Constant builds a graph-free constant of the given Marian shape. Only
// from_vector initializers are supported here; materializing other
// initializer types requires a graph (and its random source).
func Constant(shape Shape, init inits.Initializer) Expr {
	return makeConstant(toEngineDims(shape), init, false, tensor.CPU)
}

// makeConstant materializes a from_vector initializer into a constant
// with the given engine dims. The data vector is copied.
func makeConstant(dims []int, init inits.Initializer, volatile bool, device tensor.Device) Expr {
	data := init.Data()
	if data == nil {
		exceptions.Panicf("marian: constant: only from_vector initializers are supported")
	}
	n := 1
	for _, d := range dims {
		n *= d
	}
	if len(data) != n {
		exceptions.Panicf("marian: constant: vector size %d does not match shape with %d elements", len(data), n)
	}
	t := tensor.FromSlice(append([]float32(nil), data...), dims, device)
	if volatile {
		return Expr{node: autodiff.VolatileConstant(t, "")}
	}
	return Expr{node: autodiff.Constant(t, "")}
}
