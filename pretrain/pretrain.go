// Copyright 2025 The Loom Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package pretrain provides the public API for BERT-style pretraining
// data preparation: streaming chunking of tokenized documents and
// collation into whole-word-masked, sentence-order-labeled batches,
// optionally sharded across a sequence-parallel group.
//
// Example usage:
//
//	import (
//	    "github.com/loom-ml/loom/pretrain"
//	    "github.com/loom-ml/loom/tokenizer"
//	)
//
//	tok, _ := tokenizer.AutoLoad("vocab.txt")
//	proc, _ := pretrain.NewProcessor(tok, 512)
//	chunks, _ := proc.Process(pretrain.Columns{"text": docs})
//
//	coll, _ := pretrain.NewCollator(proc, 0.15)
//	batch, _ := coll.Collate(chunks)
package pretrain

import (
	"github.com/loom-ml/loom/internal/corpus"
	"github.com/loom-ml/loom/internal/pretrain"
	"github.com/loom-ml/loom/internal/tokenizer"
)

// Chunk is a fixed-length slice of concatenated token ids.
type Chunk = pretrain.Chunk

// Tokenizer is the tokenizer capability the processor is built with.
type Tokenizer = tokenizer.Tokenizer

// Columns is a columnar batch of raw dataset fields; the processor
// requires a "text" column.
type Columns = corpus.Columns

// Batch maps field names to tensors ready for a training step.
type Batch = pretrain.Batch

// Processor is the stateful chunking processor.
type Processor = pretrain.Processor

// Collator builds WWM+SOP examples and shards them.
type Collator = pretrain.Collator

// Masker selects token positions for MLM corruption.
type Masker = pretrain.Masker

// Rand is the injectable randomness source.
type Rand = pretrain.Rand

// Error taxonomy.
type (
	// SchemaError reports a missing or malformed field.
	SchemaError = pretrain.SchemaError
	// ConfigError reports an invalid construction-time option.
	ConfigError = pretrain.ConfigError
	// RangeError reports an input too small for the operation.
	RangeError = pretrain.RangeError
)

// Batch field names.
const (
	FieldInputIDs           = pretrain.FieldInputIDs
	FieldTokenTypeIDs       = pretrain.FieldTokenTypeIDs
	FieldAttentionMask      = pretrain.FieldAttentionMask
	FieldLabels             = pretrain.FieldLabels
	FieldSentenceOrderLabel = pretrain.FieldSentenceOrderLabel
)

// IgnoreLabel marks label positions excluded from the loss.
const IgnoreLabel = pretrain.IgnoreLabel

// Option types.
type (
	// ProcessorOption configures a Processor.
	ProcessorOption = pretrain.ProcessorOption
	// CollatorOption configures a Collator.
	CollatorOption = pretrain.CollatorOption
)

// Re-exported option constructors.
var (
	WithEncodeParallelism = pretrain.WithEncodeParallelism
	WithPadToMultipleOf   = pretrain.WithPadToMultipleOf
	WithParallelContext   = pretrain.WithParallelContext
	WithRand              = pretrain.WithRand
	WithMasker            = pretrain.WithMasker
	WithMaxPredictions    = pretrain.WithMaxPredictions
)

// NewProcessor creates a chunking processor with chunk size maxLength-3.
func NewProcessor(tok Tokenizer, maxLength int, opts ...ProcessorOption) (*Processor, error) {
	return pretrain.NewProcessor(tok, maxLength, opts...)
}

// NewCollator creates a collator bound to a processor's tokenizer.
func NewCollator(proc *Processor, mlmProbability float64, opts ...CollatorOption) (*Collator, error) {
	return pretrain.NewCollator(proc, mlmProbability, opts...)
}

// NewWholeWordMasker creates the default whole-word masking strategy.
func NewWholeWordMasker(probability float64, maxPredictions int, rng Rand, specials []string) Masker {
	return pretrain.NewWholeWordMasker(probability, maxPredictions, rng, specials)
}
