// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package autodiff

import (
	"github.com/born-ml/marian/tensor"
)

// Add returns a + b with broadcasting.
//
// Backward: gradients flow unchanged to both inputs, summed back over any
// broadcast axes.
func Add(a, b *Node) *Node {
	out := tensor.Add(a.value, b.value)
	return &Node{
		value:  out,
		inputs: []*Node{a, b},
		backward: func(g *tensor.Tensor) []*tensor.Tensor {
			return []*tensor.Tensor{
				tensor.Unbroadcast(g, a.value.Dims()),
				tensor.Unbroadcast(g, b.value.Dims()),
			}
		},
	}
}

// Sub returns a - b with broadcasting.
func Sub(a, b *Node) *Node {
	out := tensor.Sub(a.value, b.value)
	return &Node{
		value:  out,
		inputs: []*Node{a, b},
		backward: func(g *tensor.Tensor) []*tensor.Tensor {
			return []*tensor.Tensor{
				tensor.Unbroadcast(g, a.value.Dims()),
				tensor.Unbroadcast(tensor.Neg(g), b.value.Dims()),
			}
		},
	}
}

// Mul returns the elementwise product with broadcasting.
func Mul(a, b *Node) *Node {
	out := tensor.Mul(a.value, b.value)
	return &Node{
		value:  out,
		inputs: []*Node{a, b},
		backward: func(g *tensor.Tensor) []*tensor.Tensor {
			return []*tensor.Tensor{
				tensor.Unbroadcast(tensor.Mul(g, b.value), a.value.Dims()),
				tensor.Unbroadcast(tensor.Mul(g, a.value), b.value.Dims()),
			}
		},
	}
}

// Div returns the elementwise quotient with broadcasting.
func Div(a, b *Node) *Node {
	out := tensor.Div(a.value, b.value)
	return &Node{
		value:  out,
		inputs: []*Node{a, b},
		backward: func(g *tensor.Tensor) []*tensor.Tensor {
			ga := tensor.Div(g, b.value)
			gb := tensor.Neg(tensor.Div(tensor.Mul(g, a.value), tensor.Mul(b.value, b.value)))
			return []*tensor.Tensor{
				tensor.Unbroadcast(ga, a.value.Dims()),
				tensor.Unbroadcast(gb, b.value.Dims()),
			}
		},
	}
}

// Neg returns -a.
func Neg(a *Node) *Node {
	return &Node{
		value:  tensor.Neg(a.value),
		inputs: []*Node{a},
		backward: func(g *tensor.Tensor) []*tensor.Tensor {
			return []*tensor.Tensor{tensor.Neg(g)}
		},
	}
}

// Exp returns elementwise e^a. Backward: g * out.
func Exp(a *Node) *Node {
	out := tensor.Exp(a.value)
	return &Node{
		value:  out,
		inputs: []*Node{a},
		backward: func(g *tensor.Tensor) []*tensor.Tensor {
			return []*tensor.Tensor{tensor.Mul(g, out)}
		},
	}
}

// Log returns the elementwise natural logarithm. Backward: g / a.
func Log(a *Node) *Node {
	return &Node{
		value:  tensor.Log(a.value),
		inputs: []*Node{a},
		backward: func(g *tensor.Tensor) []*tensor.Tensor {
			return []*tensor.Tensor{tensor.Div(g, a.value)}
		},
	}
}

// Tanh returns the elementwise hyperbolic tangent. Backward: g * (1 - out²).
func Tanh(a *Node) *Node {
	out := tensor.Tanh(a.value)
	return &Node{
		value:  out,
		inputs: []*Node{a},
		backward: func(g *tensor.Tensor) []*tensor.Tensor {
			one := tensor.Ones(out.Dims(), out.Device())
			return []*tensor.Tensor{tensor.Mul(g, tensor.Sub(one, tensor.Mul(out, out)))}
		},
	}
}

// Sigmoid returns elementwise 1/(1+e^-a). Backward: g * out * (1 - out).
func Sigmoid(a *Node) *Node {
	out := tensor.Sigmoid(a.value)
	return &Node{
		value:  out,
		inputs: []*Node{a},
		backward: func(g *tensor.Tensor) []*tensor.Tensor {
			one := tensor.Ones(out.Dims(), out.Device())
			return []*tensor.Tensor{tensor.Mul(g, tensor.Mul(out, tensor.Sub(one, out)))}
		},
	}
}

// Relu returns elementwise max(0, a). Backward: g where a > 0, else 0.
func Relu(a *Node) *Node {
	out := tensor.Relu(a.value)
	return &Node{
		value:  out,
		inputs: []*Node{a},
		backward: func(g *tensor.Tensor) []*tensor.Tensor {
			grad := g.Clone()
			gd, ad := grad.Data(), a.value.Data()
			for i := range gd {
				if ad[i] <= 0 {
					gd[i] = 0
				}
			}
			return []*tensor.Tensor{grad}
		},
	}
}

// Sqrt returns the elementwise square root. Backward: g * 0.5 / out.
func Sqrt(a *Node) *Node {
	out := tensor.Sqrt(a.value)
	return &Node{
		value:  out,
		inputs: []*Node{a},
		backward: func(g *tensor.Tensor) []*tensor.Tensor {
			return []*tensor.Tensor{tensor.Div(tensor.MulScalar(g, 0.5), out)}
		},
	}
}

// Times is the engine matrix product (see tensor.Times).
func Times(a, b *Node) *Node {
	return &Node{
		value:  tensor.Times(a.value, b.value),
		inputs: []*Node{a, b},
		backward: func(g *tensor.Tensor) []*tensor.Tensor {
			ga, gb := tensor.TimesBackward(a.value, b.value, g)
			return []*tensor.Tensor{ga, gb}
		},
	}
}

// Transpose permutes engine axes. Backward: transpose by the inverse
// permutation.
func Transpose(a *Node, perm []int) *Node {
	p := append([]int(nil), perm...)
	return &Node{
		value:  tensor.Transpose(a.value, p),
		inputs: []*Node{a},
		backward: func(g *tensor.Tensor) []*tensor.Tensor {
			return []*tensor.Tensor{tensor.Transpose(g, tensor.InversePerm(p))}
		},
	}
}

// Reshape changes the engine dims. Backward: reshape the gradient back.
func Reshape(a *Node, dims []int) *Node {
	return &Node{
		value:  tensor.Reshape(a.value, dims),
		inputs: []*Node{a},
		backward: func(g *tensor.Tensor) []*tensor.Tensor {
			return []*tensor.Tensor{tensor.Reshape(g, a.value.Dims())}
		},
	}
}

// Concat concatenates along an engine axis. Backward: slice the gradient
// back into per-input segments.
func Concat(xs []*Node, axis int) *Node {
	values := make([]*tensor.Tensor, len(xs))
	for i, x := range xs {
		values[i] = x.value
	}
	return &Node{
		value:  tensor.Concat(values, axis),
		inputs: append([]*Node(nil), xs...),
		backward: func(g *tensor.Tensor) []*tensor.Tensor {
			grads := make([]*tensor.Tensor, len(values))
			offset := 0
			for i, v := range values {
				n := v.Dims()[axis]
				grads[i] = tensor.Slice(g, axis, offset, offset+n)
				offset += n
			}
			return grads
		},
	}
}

// Slice takes [begin, end) along an engine axis. Backward: zero-pad the
// gradient back to the input dims.
func Slice(a *Node, axis, begin, end int) *Node {
	return &Node{
		value:  tensor.Slice(a.value, axis, begin, end),
		inputs: []*Node{a},
		backward: func(g *tensor.Tensor) []*tensor.Tensor {
			return []*tensor.Tensor{tensor.PadSlice(g, a.value.Dims(), axis, begin)}
		},
	}
}

// ReduceSum sums along an engine axis, keeping it with size 1.
// Backward: broadcast the gradient back along the reduced axis.
func ReduceSum(a *Node, axis int) *Node {
	return &Node{
		value:  tensor.ReduceSum(a.value, axis),
		inputs: []*Node{a},
		backward: func(g *tensor.Tensor) []*tensor.Tensor {
			return []*tensor.Tensor{spread(g, a.value)}
		},
	}
}

// ReduceMean averages along an engine axis, keeping it with size 1.
func ReduceMean(a *Node, axis int) *Node {
	n := float32(a.value.Dims()[axis])
	return &Node{
		value:  tensor.ReduceMean(a.value, axis),
		inputs: []*Node{a},
		backward: func(g *tensor.Tensor) []*tensor.Tensor {
			return []*tensor.Tensor{tensor.MulScalar(spread(g, a.value), 1 / n)}
		},
	}
}

// spread broadcasts a keep-dims reduction gradient back to the input dims.
func spread(g *tensor.Tensor, like *tensor.Tensor) *tensor.Tensor {
	return tensor.Add(g, tensor.New(like.Dims(), like.Device()))
}

// Softmax computes softmax along an engine axis.
//
// Backward: s * (g - sum(g*s, axis)).
func Softmax(a *Node, axis int) *Node {
	out := tensor.Softmax(a.value, axis)
	return &Node{
		value:  out,
		inputs: []*Node{a},
		backward: func(g *tensor.Tensor) []*tensor.Tensor {
			dot := tensor.ReduceSum(tensor.Mul(g, out), axis)
			return []*tensor.Tensor{tensor.Mul(out, tensor.Sub(g, dot))}
		},
	}
}

// LogSoftmax computes log(softmax) along an engine axis.
//
// Backward: g - softmax * sum(g, axis).
func LogSoftmax(a *Node, axis int) *Node {
	return &Node{
		value:  tensor.LogSoftmax(a.value, axis),
		inputs: []*Node{a},
		backward: func(g *tensor.Tensor) []*tensor.Tensor {
			s := tensor.Softmax(a.value, axis)
			return []*tensor.Tensor{tensor.Sub(g, tensor.Mul(s, tensor.ReduceSum(g, axis)))}
		},
	}
}

// OneHot expands integral class indices into a one-hot encoding. The
// result is constant with respect to differentiation.
func OneHot(a *Node, depth int, atFront bool) *Node {
	return &Node{
		value:  tensor.OneHot(a.value, depth, atFront),
		inputs: []*Node{a},
		backward: func(g *tensor.Tensor) []*tensor.Tensor {
			return []*tensor.Tensor{nil} // indices are not differentiable
		},
	}
}

// CrossEntropyWithSoftmax computes the fused softmax cross-entropy of
// logits against a one-hot target along an engine axis (kept with size 1).
//
// Backward w.r.t. logits: (softmax(logits) - target) * g; the target is
// not differentiated.
func CrossEntropyWithSoftmax(logits, target *Node, axis int) *Node {
	return &Node{
		value:  tensor.CrossEntropyWithSoftmax(logits.value, target.value, axis),
		inputs: []*Node{logits, target},
		backward: func(g *tensor.Tensor) []*tensor.Tensor {
			s := tensor.Softmax(logits.value, axis)
			return []*tensor.Tensor{tensor.Mul(tensor.Sub(s, target.value), g), nil}
		},
	}
}
