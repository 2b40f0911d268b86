// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package marian

import (
	"github.com/born-ml/marian/data"
	"github.com/born-ml/marian/inits"
	"github.com/born-ml/marian/options"
	"github.com/gomlx/exceptions"
)

// Cost computes a scalar training cost from per-position logits and
// integer labels.
//
// The per-word cross-entropy is optionally blended with a label-smoothing
// term and multiplied by mask (pass the null expression for no masking),
// then reduced according to costType:
//
//	ce-mean, cross-entropy   mean over positions of the per-sentence sum
//	ce-mean-words            total ce divided by total unmasked words
//	ce-sum                   total ce
//	perplexity               exp(total ce / total unmasked words)
//	ce-rescore               negated per-sentence sum
//
// An unrecognized costType silently falls back to ce-mean. Cost types
// that normalize by word count require a mask.
func Cost(logits, indices, mask Expr, costType string, smoothing float32) Expr {
	ce := CrossEntropy(logits, indices)

	if smoothing > 0 {
		ceq := Mean(LogSoftmax(logits), -1)
		ce = Sub(ScalarMul(1-smoothing, ce), ScalarMul(smoothing, ceq))
	}

	if !mask.IsNil() {
		ce = Mul(ce, mask)
	}

	wordCount := func() Expr {
		if mask.IsNil() {
			exceptions.Panicf("marian: cost: type %q requires a mask", costType)
		}
		return Sum(Sum(mask, -3), -2)
	}

	switch costType {
	case "ce-mean-words":
		return Div(Sum(Sum(ce, -3), -2), wordCount())
	case "ce-sum":
		return Sum(Sum(ce, -3), -2)
	case "perplexity":
		return Exp(Div(Sum(Sum(ce, -3), -2), wordCount()))
	case "ce-rescore":
		return Neg(Sum(ce, -3))
	default: // ce-mean, cross-entropy, and anything unrecognized
		return Mean(Sum(ce, -3), -2)
	}
}

// GuidedAlignmentCost penalizes an attention matrix att for deviating
// from the soft alignment attached to the batch. The alignment cost type
// and weight come from the "guided-alignment-cost" and
// "guided-alignment-weight" option keys; supported cost types are mse,
// mult and ce.
func GuidedAlignmentCost(graph *ExpressionGraph, batch *data.CorpusBatch, opts *options.Options, att Expr) Expr {
	dimBatch := att.Shape().At(0)
	dimSrc := att.Shape().At(2)
	dimTrg := att.Shape().At(3)

	aln := makeConstant(
		toEngineDims(Shape{dimBatch, 1, dimSrc, dimTrg}),
		inits.FromVector(batch.GuidedAlignment()),
		false, graph.device)

	guidedCostType := options.Get[string](opts, "guided-alignment-cost")

	var alnCost Expr
	const eps = 1e-6
	switch guidedCostType {
	case "mse":
		alnCost = DivScalar(Sum(Flatten(Square(Sub(att, aln))), 0), float32(2*dimBatch))
	case "mult":
		alnCost = DivScalar(Neg(Log(AddScalar(Sum(Flatten(Mul(att, aln)), 0), eps))), float32(dimBatch))
	case "ce":
		alnCost = DivScalar(Neg(Sum(Flatten(Mul(aln, Log(AddScalar(att, eps)))), 0)), float32(dimBatch))
	default:
		exceptions.Panicf("marian: unknown alignment cost type %q", guidedCostType)
	}

	guidedScalar := options.Get[float32](opts, "guided-alignment-weight")
	return ScalarMul(guidedScalar, alnCost)
}
