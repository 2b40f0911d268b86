// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package inits provides parameter initializers. An Initializer is a small
// options dictionary describing how to fill a tensor; the graph reads the
// "type" key to pick the fill strategy and the remaining keys for its
// parameters.
//
// Supported types:
//
//	constant        fill with "value" (default 0)
//	uniform         sample uniformly from [-scale, scale] ("scale", default 1)
//	glorot_uniform  sample uniformly from ±sqrt(6/(fanIn+fanOut))
//	from_vector     copy (or reference) an explicit data vector
package inits

import (
	"github.com/born-ml/marian/options"
	"github.com/gomlx/exceptions"
)

// Initializer describes how to fill a parameter tensor.
type Initializer struct {
	opts *options.Options
}

// Zeros fills with 0.
var Zeros = FromValue(0)

// Ones fills with 1.
var Ones = FromValue(1)

// GlorotUniform samples uniformly from ±sqrt(6/(fanIn+fanOut)), where
// fanIn and fanOut are taken from the parameter's innermost and outermost
// dimensions.
var GlorotUniform = Initializer{opts: options.Set(options.New(), "type", "glorot_uniform")}

// FromValue fills every element with v.
func FromValue(v float32) Initializer {
	o := options.Set(options.New(), "type", "constant")
	options.Set(o, "value", v)
	return Initializer{opts: o}
}

// Uniform samples uniformly from [-scale, scale].
func Uniform(scale float32) Initializer {
	o := options.Set(options.New(), "type", "uniform")
	options.Set(o, "scale", scale)
	return Initializer{opts: o}
}

// FromVector fills from an explicit data vector. For []float32 input the
// slice is referenced without copying; integer element types are converted.
// The vector length must match the parameter's element count, which the
// graph checks at materialization time.
func FromVector[T int | int64 | float32 | float64](data []T) Initializer {
	o := options.Set(options.New(), "type", "from_vector")
	if fv, ok := any(data).([]float32); ok {
		options.Set(o, "data", fv)
	} else {
		fv := make([]float32, len(data))
		for i, v := range data {
			fv[i] = float32(v)
		}
		options.Set(o, "data", fv)
	}
	return Initializer{opts: o}
}

// FromWord2Vec loads embeddings from a word2vec file.
func FromWord2Vec(file string, dimVoc, dimEmb int, normalize bool) Initializer {
	exceptions.Panicf("inits: from_word2vec: not implemented")
	return Initializer{}
}

// Type returns the fill strategy name.
func (i Initializer) Type() string {
	if i.opts == nil {
		return "constant"
	}
	return options.Get[string](i.opts, "type")
}

// Value returns the constant fill value (default 0).
func (i Initializer) Value() float32 {
	return options.GetOr[float32](i.opts, "value", 0)
}

// Scale returns the uniform sampling bound (default 1).
func (i Initializer) Scale() float32 {
	return options.GetOr[float32](i.opts, "scale", 1)
}

// Data returns the explicit data vector of a from_vector initializer, or
// nil for other types.
func (i Initializer) Data() []float32 {
	if i.opts == nil || !i.opts.Has("data") {
		return nil
	}
	return options.Get[[]float32](i.opts, "data")
}
