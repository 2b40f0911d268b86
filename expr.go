// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package marian

import (
	"github.com/born-ml/marian/autodiff"
	"github.com/born-ml/marian/tensor"
	"github.com/gomlx/exceptions"
	"k8s.io/klog/v2"
)

// Expr is a handle to an eagerly evaluated expression node. The zero
// value is the null expression; handles compare equal exactly when they
// refer to the same node, which identity-preserving rewrites rely on.
type Expr struct {
	node *autodiff.Node
}

// IsNil reports whether this is the null expression.
func (e Expr) IsNil() bool { return e.node == nil }

// Val returns the expression's value tensor.
func (e Expr) Val() *tensor.Tensor { return e.node.Value() }

// Scalar returns the value of a single-element expression.
func (e Expr) Scalar() float32 {
	v := e.node.Value()
	if v.NumElements() != 1 {
		exceptions.Panicf("marian: scalar: expression has %d elements", v.NumElements())
	}
	return v.Data()[0]
}

// Shape returns a Marian-ordered view of the expression's dimensions.
func (e Expr) Shape() ShapeProxy { return ShapeProxy{dims: e.node.Value().Dims()} }

// Name returns the expression's name, empty if unnamed.
func (e Expr) Name() string { return e.node.Name() }

// Node exposes the underlying autodiff node.
func (e Expr) Node() *autodiff.Node { return e.node }

// Dump logs the expression's name, shape and values.
func (e Expr) Dump() {
	klog.Infof("%s%v: %s", e.node.Name(), e.node.Value().Dims(), e.node.Value())
}

// Graph returns the owning graph. Expressions do not track their graph;
// this always returns nil and exists for interface compatibility.
func (e Expr) Graph() *ExpressionGraph { return nil }
