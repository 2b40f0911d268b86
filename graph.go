// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package marian

import (
	"math"
	"math/rand"

	"github.com/born-ml/marian/autodiff"
	"github.com/born-ml/marian/inits"
	"github.com/born-ml/marian/tensor"
	"github.com/gomlx/exceptions"
)

// ExpressionGraph owns the named parameters of a model and their
// gradients. Expressions themselves are evaluated eagerly and are not
// stored in the graph; the graph's job is parameter bookkeeping, gradient
// storage for the optimizer, and the random source for initialization and
// dropout.
type ExpressionGraph struct {
	paramsByName  map[string]*autodiff.Node
	params        []*autodiff.Node
	grads         map[*autodiff.Node]*tensor.Tensor
	inferenceOnly bool
	device        tensor.Device
	rng           *rand.Rand
}

// NewExpressionGraph creates an empty graph on the CPU with a fixed
// default random seed.
func NewExpressionGraph() *ExpressionGraph {
	return &ExpressionGraph{
		paramsByName: make(map[string]*autodiff.Node),
		grads:        make(map[*autodiff.Node]*tensor.Tensor),
		device:       tensor.CPU,
		rng:          rand.New(rand.NewSource(1)),
	}
}

// Clear is a no-op: eager evaluation leaves nothing to clear.
func (g *ExpressionGraph) Clear() {}

// ReserveWorkspaceMB is a no-op: there is no preallocated workspace.
func (g *ExpressionGraph) ReserveWorkspaceMB(mb int) {}

// SetDevice selects the device for parameters and constants created
// afterwards.
func (g *ExpressionGraph) SetDevice(device tensor.Device) { g.device = device }

// GetDevice returns the current device.
func (g *ExpressionGraph) GetDevice() tensor.Device { return g.device }

// SetInference toggles inference mode. Constants created in inference
// mode are volatile: differentiation does not traverse them.
func (g *ExpressionGraph) SetInference(inference bool) { g.inferenceOnly = inference }

// SetSeed reseeds the graph's random source, making initialization and
// dropout reproducible.
func (g *ExpressionGraph) SetSeed(seed int64) { g.rng = rand.New(rand.NewSource(seed)) }

// Constant builds a constant of the given Marian shape on the graph's
// device. Only from_vector initializers are supported.
func (g *ExpressionGraph) Constant(shape Shape, init inits.Initializer) Expr {
	return makeConstant(toEngineDims(shape), init, g.inferenceOnly, g.device)
}

// Param returns the parameter registered under name, creating and
// initializing it on first use. A second request for the same name must
// carry the same shape; the initializer of an existing parameter is
// ignored. New parameters get a nil gradient slot, filled by Backward.
func (g *ExpressionGraph) Param(name string, shape Shape, init inits.Initializer, fixed bool) Expr {
	dims := toEngineDims(shape)

	if p, ok := g.paramsByName[name]; ok {
		if !tensor.DimsEqual(p.Value().Dims(), dims) {
			exceptions.Panicf("marian: param: requested shape for existing parameter %q does not match original shape", name)
		}
		return Expr{node: p}
	}

	var t *tensor.Tensor
	if data := init.Data(); data != nil {
		if len(data) != numElems(dims) {
			exceptions.Panicf("marian: param: vector size %d does not match shape of %q with %d elements",
				len(data), name, numElems(dims))
		}
		t = tensor.FromSlice(append([]float32(nil), data...), dims, g.device)
	} else {
		t = g.materialize(init, dims)
	}

	p := autodiff.Parameter(t, name, fixed)
	g.paramsByName[name] = p
	g.params = append(g.params, p)
	g.grads[p] = nil
	return Expr{node: p}
}

// Get returns the parameter registered under name, or the null
// expression when none exists.
func (g *ExpressionGraph) Get(name string) Expr {
	if p, ok := g.paramsByName[name]; ok {
		return Expr{node: p}
	}
	return Expr{}
}

// Params returns the registered parameters in creation order.
func (g *ExpressionGraph) Params() []*autodiff.Node { return g.params }

// Grads returns the gradient storage keyed by parameter. Slots are nil
// until the first Backward reaches them.
func (g *ExpressionGraph) Grads() map[*autodiff.Node]*tensor.Tensor { return g.grads }

// Dropout samples an inverted dropout mask of the given Marian shape
// from the graph's random source.
func (g *ExpressionGraph) Dropout(dropProb float32, shape Shape) Expr {
	return dropoutMaskExpr(dropProb, toEngineDims(shape), g.device, g.rng)
}

// Forward is a no-op: expressions are evaluated eagerly at construction.
func (g *ExpressionGraph) Forward() {}

// ForwardNext is a no-op, like Forward.
func (g *ExpressionGraph) ForwardNext() {}

// Backward differentiates root with respect to all registered
// parameters, storing the results in the graph's gradient slots.
// Parameters not reachable from root keep their previous gradients.
func (g *ExpressionGraph) Backward(root Expr) { g.Backprop(root) }

// Backprop is Backward under its other Marian name.
func (g *ExpressionGraph) Backprop(root Expr) {
	autodiff.Backward(root.node, g.grads)
}

// materialize fills a fresh parameter tensor according to the
// initializer type.
func (g *ExpressionGraph) materialize(init inits.Initializer, dims []int) *tensor.Tensor {
	switch init.Type() {
	case "constant":
		return tensor.Full(dims, init.Value(), g.device)
	case "uniform":
		return g.uniform(dims, init.Scale())
	case "glorot_uniform":
		fanIn, fanOut := fans(dims)
		limit := float32(math.Sqrt(6 / float64(fanIn+fanOut)))
		return g.uniform(dims, limit)
	}
	exceptions.Panicf("marian: param: unknown initializer type %q", init.Type())
	return nil
}

// uniform samples elementwise from [-limit, limit].
func (g *ExpressionGraph) uniform(dims []int, limit float32) *tensor.Tensor {
	t := tensor.New(dims, g.device)
	data := t.Data()
	for i := range data {
		data[i] = (g.rng.Float32()*2 - 1) * limit
	}
	return t
}

// fans derives fan-in and fan-out from engine dims: the innermost axis
// feeds the contraction (fan-in), the outermost indexes outputs
// (fan-out). Vectors use their length for both.
func fans(dims []int) (fanIn, fanOut int) {
	if len(dims) == 0 {
		return 1, 1
	}
	return dims[len(dims)-1], dims[0]
}

func numElems(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}
