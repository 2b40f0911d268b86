// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package data

import (
	"github.com/pkg/errors"
	"github.com/pkoukk/tiktoken-go"
)

// TextBatch tokenizes raw sentences with a tiktoken encoding and packs
// them into a single-stream corpus batch, padding shorter sentences to the
// longest one.
func TextBatch(enc *tiktoken.Tiktoken, sentences []string) (*CorpusBatch, error) {
	if len(sentences) == 0 {
		return nil, errors.New("empty sentence list")
	}

	tokens := make([][]int, len(sentences))
	width := 0
	for i, s := range sentences {
		tokens[i] = enc.Encode(s, nil, nil)
		if len(tokens[i]) == 0 {
			return nil, errors.Errorf("sentence %d tokenized to nothing", i)
		}
		if len(tokens[i]) > width {
			width = len(tokens[i])
		}
	}

	sb := NewSubBatch(len(sentences), width)
	words := 0
	for j, ts := range tokens {
		for p, t := range ts {
			sb.indices[p*sb.size+j] = t
			sb.mask[p*sb.size+j] = 1
			words++
		}
	}
	sb.SetWords(words)
	return NewCorpusBatch([]*SubBatch{sb}), nil
}
