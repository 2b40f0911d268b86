// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package learners

import (
	"math"

	"github.com/born-ml/marian/autodiff"
	"github.com/born-ml/marian/tensor"
)

// Adam implements the Adam optimizer (Kingma & Ba, 2014) with fixed decay
// rates and epsilon:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²
//	m_hat = m_t / (1 - beta1^t)
//	v_hat = v_t / (1 - beta2^t)
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
type Adam struct {
	params []*autodiff.Node
	lr     float32
	beta1  float32
	beta2  float32
	eps    float32
	t      int
	m      map[*autodiff.Node][]float32 // first moment estimates
	v      map[*autodiff.Node][]float32 // second moment estimates
}

// AdamConfig holds configuration for the Adam learner.
type AdamConfig struct {
	LR    float32    // Learning rate (default: 0.001)
	Betas [2]float32 // Moment decay rates (default: [0.9, 0.999])
	Eps   float32    // Numerical stability term (default: 1e-8)
}

// NewAdam creates a new Adam learner over the given parameters.
func NewAdam(params []*autodiff.Node, config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	return &Adam{
		params: params,
		lr:     config.LR,
		beta1:  config.Betas[0],
		beta2:  config.Betas[1],
		eps:    config.Eps,
		m:      make(map[*autodiff.Node][]float32),
		v:      make(map[*autodiff.Node][]float32),
	}
}

// Update applies one Adam step with bias correction. Parameters with a nil
// gradient or marked fixed are skipped; the timestep advances only when at
// least one parameter is updated, so an empty-gradient call is a true
// no-op.
func (a *Adam) Update(grads map[*autodiff.Node]*tensor.Tensor, sampleCount int) {
	scale := gradScale(sampleCount)

	any := false
	for _, param := range a.params {
		if !skip(param, grads) {
			any = true
			break
		}
	}
	if !any {
		return
	}

	a.t++
	biasCorrection1 := float32(1 - math.Pow(float64(a.beta1), float64(a.t)))
	biasCorrection2 := float32(1 - math.Pow(float64(a.beta2), float64(a.t)))

	for _, param := range a.params {
		if skip(param, grads) {
			continue
		}
		data := param.Value().Data()
		grad := grads[param].Data()

		m, ok := a.m[param]
		if !ok {
			m = make([]float32, len(data))
			a.m[param] = m
		}
		v, ok := a.v[param]
		if !ok {
			v = make([]float32, len(data))
			a.v[param] = v
		}

		for i := range data {
			g := grad[i] * scale
			m[i] = a.beta1*m[i] + (1-a.beta1)*g
			v[i] = a.beta2*v[i] + (1-a.beta2)*g*g
			mHat := m[i] / biasCorrection1
			vHat := v[i] / biasCorrection2
			data[i] -= a.lr * mHat / (float32(math.Sqrt(float64(vHat))) + a.eps)
		}
	}
}
