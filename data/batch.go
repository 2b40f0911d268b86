// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package data provides the minibatch structures fed to translation
// models: per-stream sub-batches of word indices with padding masks, and
// the corpus batch grouping one sub-batch per stream (source, target, and
// any factors in between).
package data

import (
	"github.com/gomlx/exceptions"
	"k8s.io/klog/v2"
)

// Word is a vocabulary index.
type Word = int

// Batch is the minimal interface common to all batch kinds.
type Batch interface {
	// Size returns the number of sentences in the batch.
	Size() int
}

// SubBatch holds the word indices and padding mask of one stream.
//
// Data is laid out position-major: the index of sequence j at position p
// is Indices()[p*BatchSize()+j], and Mask() uses the same layout with 1
// for real words and 0 for padding.
type SubBatch struct {
	indices []Word
	mask    []float32
	size    int // number of sequences
	width   int // maximum sequence length
	words   int // number of real (unmasked) words
}

// NewSubBatch creates a sub-batch of the given dimensions with all
// indices zero and an all-zero mask.
func NewSubBatch(size, width int) *SubBatch {
	return &SubBatch{
		indices: make([]Word, size*width),
		mask:    make([]float32, size*width),
		size:    size,
		width:   width,
	}
}

// BatchSize returns the number of sequences.
func (sb *SubBatch) BatchSize() int { return sb.size }

// BatchWidth returns the maximum sequence length.
func (sb *SubBatch) BatchWidth() int { return sb.width }

// BatchWords returns the number of real words (set via SetWords or
// counted by the builder).
func (sb *SubBatch) BatchWords() int { return sb.words }

// SetWords records the number of real words.
func (sb *SubBatch) SetWords(n int) { sb.words = n }

// Indices returns the position-major word index storage, writable in
// place.
func (sb *SubBatch) Indices() []Word { return sb.indices }

// Mask returns the position-major padding mask, writable in place.
func (sb *SubBatch) Mask() []float32 { return sb.mask }

// CorpusBatch groups one SubBatch per stream. By convention the first
// stream is the source and the last is the target.
type CorpusBatch struct {
	streams     []*SubBatch
	sentenceIds []int
	guidedAlign []float32
}

// NewCorpusBatch creates a batch over the given streams.
func NewCorpusBatch(streams []*SubBatch) *CorpusBatch {
	return &CorpusBatch{streams: streams}
}

// Sets returns the number of streams.
func (cb *CorpusBatch) Sets() int { return len(cb.streams) }

// At returns stream i.
func (cb *CorpusBatch) At(i int) *SubBatch { return cb.streams[i] }

// Front returns the source stream.
func (cb *CorpusBatch) Front() *SubBatch { return cb.streams[0] }

// Back returns the target stream.
func (cb *CorpusBatch) Back() *SubBatch { return cb.streams[len(cb.streams)-1] }

// Size returns the number of sentences, taken from the source stream.
func (cb *CorpusBatch) Size() int { return cb.Front().BatchSize() }

// Words returns the number of real source words.
func (cb *CorpusBatch) Words() int { return cb.Front().BatchWords() }

// SentenceIds returns the corpus positions of the batch sentences, or nil
// when not tracked.
func (cb *CorpusBatch) SentenceIds() []int { return cb.sentenceIds }

// SetSentenceIds records the corpus positions of the batch sentences.
func (cb *CorpusBatch) SetSentenceIds(ids []int) { cb.sentenceIds = ids }

// GuidedAlignment returns the flattened soft alignment matrix
// [size * sourceWidth * targetWidth], or nil when none was attached.
func (cb *CorpusBatch) GuidedAlignment() []float32 { return cb.guidedAlign }

// SetGuidedAlignment attaches a flattened soft alignment matrix.
func (cb *CorpusBatch) SetGuidedAlignment(a []float32) { cb.guidedAlign = a }

// Split partitions the batch into n smaller batches.
func (cb *CorpusBatch) Split(n int) []*CorpusBatch {
	exceptions.Panicf("data: CorpusBatch.Split: not implemented")
	return nil
}

// Debug logs the batch dimensions per stream at verbosity 1.
func (cb *CorpusBatch) Debug() {
	for i, sb := range cb.streams {
		klog.V(1).Infof("batch stream %d: size=%d width=%d words=%d",
			i, sb.BatchSize(), sb.BatchWidth(), sb.BatchWords())
	}
}

// FakeBatch builds a synthetic batch for testing and dry runs: one stream
// per entry of lengths, each with batchSize sequences of that length,
// fully unmasked, all indices zero. With guidedAlignment set, an all-zero
// alignment buffer of the right size is attached.
func FakeBatch(lengths []int, batchSize int, guidedAlignment bool) *CorpusBatch {
	streams := make([]*SubBatch, len(lengths))
	for i, length := range lengths {
		sb := NewSubBatch(batchSize, length)
		for j := range sb.mask {
			sb.mask[j] = 1
		}
		sb.SetWords(batchSize * length)
		streams[i] = sb
	}
	batch := NewCorpusBatch(streams)
	if guidedAlignment {
		batch.SetGuidedAlignment(make([]float32, batchSize*lengths[0]*lengths[len(lengths)-1]))
	}
	return batch
}
