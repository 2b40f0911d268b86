// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package marian

import (
	"github.com/born-ml/marian/learners"
)

// AlgorithmType selects the optimization algorithm of an
// OptimizerWrapper.
type AlgorithmType int

const (
	Sgd AlgorithmType = iota
	Adam
)

// OptimizerWrapper defers learner construction until the first update,
// when the graph's parameter set is known. Once bound, the wrapper stays
// bound to that parameter snapshot; parameters registered later are not
// picked up.
type OptimizerWrapper struct {
	lazyCreateLearner func(graph *ExpressionGraph) learners.Learner
	learner           learners.Learner
}

// NewOptimizerWrapper creates an unbound optimizer with learning rate
// eta. Adam uses decay rates 0.9 and 0.999 with epsilon 1e-8.
func NewOptimizerWrapper(eta float32, algorithmType AlgorithmType) *OptimizerWrapper {
	w := &OptimizerWrapper{}
	switch algorithmType {
	case Sgd:
		w.lazyCreateLearner = func(graph *ExpressionGraph) learners.Learner {
			return learners.NewSGD(graph.Params(), learners.SGDConfig{LR: eta})
		}
	case Adam:
		w.lazyCreateLearner = func(graph *ExpressionGraph) learners.Learner {
			return learners.NewAdam(graph.Params(), learners.AdamConfig{
				LR:    eta,
				Betas: [2]float32{0.9, 0.999},
				Eps:   1e-8,
			})
		}
	}
	return w
}

// Bound reports whether the wrapper has bound a learner yet.
func (w *OptimizerWrapper) Bound() bool { return w.learner != nil }

// Update applies one optimization step against the graph's gradients,
// binding the learner to the graph's parameters on first call. The
// sample count is fixed at 1: gradients are applied exactly as
// accumulated.
func (w *OptimizerWrapper) Update(graph *ExpressionGraph) {
	if w.learner == nil {
		w.learner = w.lazyCreateLearner(graph)
	}
	w.learner.Update(graph.Grads(), 1)
}

// Optimizer creates an optimizer of the given algorithm with learning
// rate eta.
func Optimizer(algorithmType AlgorithmType, eta float32) *OptimizerWrapper {
	return NewOptimizerWrapper(eta, algorithmType)
}
