// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package autodiff

import (
	"github.com/born-ml/marian/tensor"
)

// Backward runs reverse-mode differentiation seeded at root and fills
// grads for every parameter node that (a) is reachable from root and
// (b) already has an entry in grads (i.e. is registered with the caller).
//
// The root is seeded with a ones tensor of its own shape. Parameters not
// reachable from root keep whatever gradient (possibly nil) they had
// before; callers must not assume unreached slots are reset.
func Backward(root *Node, grads map[*Node]*tensor.Tensor) {
	order := topoSort(root)

	acc := make(map[*Node]*tensor.Tensor, len(order))
	acc[root] = tensor.Ones(root.value.Dims(), root.value.Device())

	// order is topological (inputs before outputs), so walk it backwards.
	for i := len(order) - 1; i >= 0; i-- {
		n := order[i]
		g := acc[n]
		if g == nil || n.backward == nil {
			continue
		}
		inGrads := n.backward(g)
		for j, in := range n.inputs {
			ig := inGrads[j]
			if ig == nil {
				continue
			}
			if prev := acc[in]; prev != nil {
				acc[in] = tensor.Add(prev, ig)
			} else {
				acc[in] = ig
			}
		}
	}

	for n, g := range acc {
		if !n.param {
			continue
		}
		if _, registered := grads[n]; registered {
			grads[n] = g
		}
	}
}

// topoSort returns the nodes reachable from root in topological order
// (every node after all of its inputs). Volatile constants are treated as
// leaves.
func topoSort(root *Node) []*Node {
	var order []*Node
	visited := make(map[*Node]bool)
	var visit func(n *Node)
	visit = func(n *Node) {
		if visited[n] {
			return
		}
		visited[n] = true
		if !n.volatile {
			for _, in := range n.inputs {
				visit(in)
			}
		}
		order = append(order, n)
	}
	visit(root)
	return order
}
