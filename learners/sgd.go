// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package learners

import (
	"github.com/born-ml/marian/autodiff"
	"github.com/born-ml/marian/tensor"
)

// SGD implements plain stochastic gradient descent with a fixed learning
// rate:
//
//	param = param - lr * gradient
//
// The learning rate is supplied at construction and is not schedulable.
type SGD struct {
	params []*autodiff.Node
	lr     float32
}

// SGDConfig holds configuration for the SGD learner.
type SGDConfig struct {
	LR float32 // Learning rate (default: 0.01)
}

// NewSGD creates a new SGD learner over the given parameters.
func NewSGD(params []*autodiff.Node, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD{params: params, lr: config.LR}
}

// Update applies one SGD step. Parameters with a nil gradient or marked
// fixed are skipped.
func (s *SGD) Update(grads map[*autodiff.Node]*tensor.Tensor, sampleCount int) {
	scale := gradScale(sampleCount)
	for _, param := range s.params {
		if skip(param, grads) {
			continue
		}
		data := param.Value().Data()
		grad := grads[param].Data()
		for i := range data {
			data[i] -= s.lr * scale * grad[i]
		}
	}
}
