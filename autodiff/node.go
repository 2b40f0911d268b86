// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff implements eager reverse-mode automatic differentiation
// over the engine tensors.
//
// Every operation materializes its result tensor immediately (there is no
// deferred forward pass) and records a Node carrying the input edges and a
// backward closure. Backward walks the node graph in reverse topological
// order from a root, applying the chain rule, and fills the caller's
// parameter gradient map.
package autodiff

import (
	"github.com/born-ml/marian/tensor"
)

// Node is one value in the computation graph. Multiple handles may share a
// node; node identity (pointer equality) is what the adapter's
// identity-elision contract is expressed in.
type Node struct {
	value  *tensor.Tensor
	name   string
	inputs []*Node

	// backward maps the output gradient to per-input gradients; a nil
	// entry marks a non-differentiable input. A nil backward marks a leaf
	// (constant or parameter).
	backward func(outGrad *tensor.Tensor) []*tensor.Tensor

	// volatile constants cut the backward walk (inference-only memory
	// optimization).
	volatile bool

	param bool
	fixed bool
}

// Value returns the materialized tensor.
func (n *Node) Value() *tensor.Tensor { return n.value }

// Name returns the debug name.
func (n *Node) Name() string { return n.name }

// SetName sets the debug name.
func (n *Node) SetName(name string) { n.name = name }

// Inputs returns the input edges of the node.
func (n *Node) Inputs() []*Node { return n.inputs }

// IsParam reports whether the node is a trainable parameter.
func (n *Node) IsParam() bool { return n.param }

// IsFixed reports whether the node is a parameter excluded from learner
// updates.
func (n *Node) IsFixed() bool { return n.fixed }

// Constant creates a leaf node holding t.
func Constant(t *tensor.Tensor, name string) *Node {
	return &Node{value: t, name: name}
}

// VolatileConstant creates a leaf node that additionally stops the
// backward walk (used for inference-only constants).
func VolatileConstant(t *tensor.Tensor, name string) *Node {
	return &Node{value: t, name: name, volatile: true}
}

// Parameter creates a trainable leaf node.
func Parameter(t *tensor.Tensor, name string, fixed bool) *Node {
	return &Node{value: t, name: name, param: true, fixed: fixed}
}

// Alias wraps a node under a new name. The alias shares the value and
// passes gradients through unchanged.
func Alias(n *Node, name string) *Node {
	return &Node{
		value:  n.value,
		name:   name,
		inputs: []*Node{n},
		backward: func(g *tensor.Tensor) []*tensor.Tensor {
			return []*tensor.Tensor{g}
		},
	}
}
