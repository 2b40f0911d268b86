// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package learners implements the optimization algorithms that consume a
// parameter list and a gradient map to update parameters in place.
//
// A learner never rescales gradients on its own: Update is called with a
// sample count, and a count of 1 (the adapter's fixed choice) means the
// gradients are applied exactly as accumulated. Parameters whose gradient
// slot is still nil (before the first backward pass) are skipped, which
// makes an early Update a deterministic no-op. Parameters marked fixed are
// skipped as well.
package learners

import (
	"github.com/born-ml/marian/autodiff"
	"github.com/born-ml/marian/tensor"
	"github.com/gomlx/exceptions"
)

// Learner applies one optimization step against accumulated gradients.
type Learner interface {
	Update(grads map[*autodiff.Node]*tensor.Tensor, sampleCount int)
}

// gradScale converts a sample count into a gradient scale factor.
// A count of 1 disables all rescaling.
func gradScale(sampleCount int) float32 {
	if sampleCount <= 0 {
		exceptions.Panicf("learners: sample count must be positive, got %d", sampleCount)
	}
	return 1 / float32(sampleCount)
}

// skip reports whether the parameter should be left untouched this step.
func skip(param *autodiff.Node, grads map[*autodiff.Node]*tensor.Tensor) bool {
	return param.IsFixed() || grads[param] == nil
}
