// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

// Softmax computes a numerically stable softmax along the given engine
// axis:
//
//	softmax(x)_i = exp(x_i - max(x)) / sum_j exp(x_j - max(x))
func Softmax(t *Tensor, axis int) *Tensor {
	shifted := Sub(t, ReduceMax(t, axis))
	e := Exp(shifted)
	return Div(e, ReduceSum(e, axis))
}

// LogSoftmax computes log(softmax(x)) along the given engine axis using the
// log-sum-exp trick.
func LogSoftmax(t *Tensor, axis int) *Tensor {
	shifted := Sub(t, ReduceMax(t, axis))
	return Sub(shifted, Log(ReduceSum(Exp(shifted), axis)))
}

// CrossEntropyWithSoftmax computes the fused softmax cross-entropy of
// logits against a one-hot target along the given engine axis:
//
//	ce = logsumexp(logits) - sum(logits * target)
//
// The reduced axis is kept with size 1, like every engine reduction.
func CrossEntropyWithSoftmax(logits, target *Tensor, axis int) *Tensor {
	m := ReduceMax(logits, axis)
	lse := Add(m, Log(ReduceSum(Exp(Sub(logits, m)), axis)))
	return Sub(lse, ReduceSum(Mul(logits, target), axis))
}
