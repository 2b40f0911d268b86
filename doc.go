// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package marian provides a Marian-flavored front end over an eager
// autodiff engine: the expression vocabulary of the Marian neural machine
// translation toolkit (affine layers, cross-entropy costs, batch
// structures, an expression graph with named parameters, and optimizer
// wrappers), evaluated eagerly on the tensor/autodiff packages of this
// module.
//
// # Axis convention
//
// Marian orders shapes slowest-first like NumPy, while the engine stores
// dimensions fastest-first (column-major, dimension 0 has stride 1). The
// two orderings are exact reverses of each other, so a Marian shape maps
// to engine dimensions by reversing the list, and Marian axis i of a
// rank-r tensor is engine axis r-1-i. Expr.Shape returns a proxy that
// performs this translation on access without copying.
//
// Operations that take an axis argument accept Marian axis numbering,
// including negative axes counted from the end. Softmax, LogSoftmax and
// CrossEntropy always operate along the class axis, which is engine axis
// 0 (the innermost dimension).
package marian
