package pretrain

import (
	"fmt"

	"github.com/loom-ml/loom/internal/parallel"
	"github.com/loom-ml/loom/internal/tensor"
	"github.com/loom-ml/loom/internal/tokenizer"
)

// MLM corruption policy: of the selected positions, 80% become the mask
// token, 10% a random vocabulary id, 10% stay unchanged.
const (
	maskTokenFraction  = 0.8
	randomTokenCeiling = 0.9
)

// Collator builds whole-word-masked sentence-order examples from chunks
// and assembles them into a padded batch. With a sequence-parallel context
// it additionally shards every 2-D field's sequence dimension, keeping
// only the local rank's contiguous slice.
//
// Splitting, segment order, word selection, and corruption all draw from
// the injected Rand; each rank draws independently, which is sound because
// sharding happens after the full batch is constructed.
type Collator struct {
	proc            *Processor
	tok             tokenizer.Tokenizer
	mlmProbability  float64
	padToMultipleOf int
	maxPredictions  int
	rank            int
	world           int // 0 means no sequence-parallel sharding
	sharded         bool
	rng             Rand
	masker          Masker
}

// CollatorOption configures a Collator.
type CollatorOption func(*Collator)

// WithPadToMultipleOf rounds the padded batch length up to a multiple of n.
func WithPadToMultipleOf(n int) CollatorOption {
	return func(c *Collator) {
		c.padToMultipleOf = n
	}
}

// WithParallelContext enables sequence-parallel sharding using the
// context's rank and world size for the sequence dimension.
func WithParallelContext(ctx parallel.Context) CollatorOption {
	return func(c *Collator) {
		c.sharded = true
		c.rank = ctx.LocalRank(parallel.Sequence)
		c.world = ctx.WorldSize(parallel.Sequence)
	}
}

// WithRand replaces the default time-seeded randomness source.
func WithRand(rng Rand) CollatorOption {
	return func(c *Collator) {
		c.rng = rng
	}
}

// WithMasker replaces the default whole-word masker.
func WithMasker(m Masker) CollatorOption {
	return func(c *Collator) {
		c.masker = m
	}
}

// WithMaxPredictions caps the number of masked tokens per sequence.
func WithMaxPredictions(n int) CollatorOption {
	return func(c *Collator) {
		c.maxPredictions = n
	}
}

// NewCollator creates a collator bound to a processor's tokenizer
// capability. All configuration is validated here, never at collate time.
func NewCollator(proc *Processor, mlmProbability float64, opts ...CollatorOption) (*Collator, error) {
	if proc == nil {
		return nil, &ConfigError{Option: "processor", Reason: "must not be nil"}
	}

	c := &Collator{
		proc:           proc,
		tok:            proc.Tokenizer(),
		mlmProbability: mlmProbability,
		maxPredictions: defaultMaxPredictions,
	}
	for _, opt := range opts {
		opt(c)
	}

	if mlmProbability <= 0 || mlmProbability >= 1 {
		return nil, &ConfigError{
			Option: "mlmProbability",
			Reason: fmt.Sprintf("must be in (0, 1), got %v", mlmProbability),
		}
	}
	if c.padToMultipleOf < 0 {
		return nil, &ConfigError{
			Option: "padToMultipleOf",
			Reason: fmt.Sprintf("must be non-negative, got %d", c.padToMultipleOf),
		}
	}
	if c.maxPredictions <= 0 {
		return nil, &ConfigError{
			Option: "maxPredictions",
			Reason: fmt.Sprintf("must be positive, got %d", c.maxPredictions),
		}
	}
	if c.sharded {
		if c.world <= 0 {
			return nil, &ConfigError{
				Option: "worldSize",
				Reason: fmt.Sprintf("must be positive, got %d", c.world),
			}
		}
		if c.rank < 0 || c.rank >= c.world {
			return nil, &ConfigError{
				Option: "localRank",
				Reason: fmt.Sprintf("rank %d out of range [0, %d)", c.rank, c.world),
			}
		}
	}
	if c.tok.PadToken() < 0 {
		return nil, &ConfigError{Option: "tokenizer", Reason: "must define a pad token"}
	}
	if c.tok.MaskToken() < 0 {
		return nil, &ConfigError{Option: "tokenizer", Reason: "must define a mask token"}
	}

	if c.rng == nil {
		c.rng = newDefaultRand()
	}
	if c.masker == nil {
		c.masker = NewWholeWordMasker(mlmProbability, c.maxPredictions, c.rng, c.specialTokenStrings())
	}

	return c, nil
}

// specialTokenStrings returns the string forms of the tokenizer's defined
// special tokens, for the masker's never-maskable set.
func (c *Collator) specialTokenStrings() []string {
	var ids []int32
	for _, id := range []int32{
		c.tok.ClsToken(), c.tok.SepToken(), c.tok.PadToken(), c.tok.MaskToken(), c.tok.UnkToken(),
	} {
		if id >= 0 {
			ids = append(ids, id)
		}
	}
	return c.tok.ConvertIDsToTokens(ids)
}

// example is one chunk turned into a WWM+SOP training example, before
// padding and corruption.
type example struct {
	inputIDs  []int32
	typeIDs   []int32
	sopLabel  int32
	maskLabel []bool
}

// Collate turns a mini-batch of chunks into model-ready tensors:
// input_ids, token_type_ids, attention_mask, labels, and the per-example
// sentence_order_label. With a parallel context, 2-D fields hold only the
// local rank's sequence shard.
func (c *Collator) Collate(chunks []Chunk) (Batch, error) {
	if len(chunks) == 0 {
		return nil, &SchemaError{Field: FieldInputIDs, Reason: "batch must contain at least one chunk"}
	}

	examples := make([]example, len(chunks))
	for i, chunk := range chunks {
		ex, err := c.buildExample(chunk)
		if err != nil {
			return nil, fmt.Errorf("failed to build example %d: %w", i, err)
		}
		examples[i] = ex
	}

	batch := c.padAndCorrupt(examples)

	if !c.sharded {
		return batch, nil
	}
	return c.shard(batch), nil
}

// buildExample splits a chunk into two segments at a random position in
// [n/3, 2n/3), optionally reverses their order for the sentence-order
// objective, inserts special tokens, and selects whole-word mask positions.
func (c *Collator) buildExample(chunk Chunk) (example, error) {
	n := len(chunk)
	if n < 2 {
		return example{}, &RangeError{Op: "segment split", N: n}
	}

	lo, hi := n/3, (n/3)*2
	var split int
	if hi <= lo {
		// Degenerate range (n < 3): clamp to the midpoint so both
		// segments stay non-empty.
		split = n / 2
	} else {
		split = lo + c.rng.Intn(hi-lo)
	}

	reverse := c.rng.Float64() < 0.5
	var a, b []int32
	if reverse {
		a, b = chunk[split:], chunk[:split]
	} else {
		a, b = chunk[:split], chunk[split:]
	}

	ex := example{
		inputIDs: c.tok.BuildPairWithSpecialTokens(a, b),
		typeIDs:  c.tok.PairTokenTypeIDs(a, b),
	}
	if reverse {
		ex.sopLabel = 1
	}

	ex.maskLabel = c.masker.Mask(c.tok.ConvertIDsToTokens(ex.inputIDs))
	if len(ex.maskLabel) != len(ex.inputIDs) {
		return example{}, &SchemaError{
			Field:  "mask_label",
			Reason: fmt.Sprintf("masker returned %d flags for %d tokens", len(ex.maskLabel), len(ex.inputIDs)),
		}
	}

	return ex, nil
}

// padAndCorrupt pads the examples to a common length and applies MLM
// corruption, producing the full (unsharded) batch.
func (c *Collator) padAndCorrupt(examples []example) Batch {
	maxLen := 0
	for _, ex := range examples {
		maxLen = max(maxLen, len(ex.inputIDs))
	}
	if c.padToMultipleOf > 0 && maxLen%c.padToMultipleOf != 0 {
		maxLen = (maxLen/c.padToMultipleOf + 1) * c.padToMultipleOf
	}

	padID := c.tok.PadToken()
	maskID := c.tok.MaskToken()
	batchSize := len(examples)
	shape := tensor.Shape{batchSize, maxLen}

	inputIDs := tensor.Full(shape, padID)
	typeIDs := tensor.Zeros[int32](shape)
	attention := tensor.Zeros[int32](shape)
	labels := tensor.Full(shape, IgnoreLabel)
	sop := tensor.Zeros[int32](tensor.Shape{batchSize})

	for i, ex := range examples {
		idsRow := inputIDs.Row(i)
		typeRow := typeIDs.Row(i)
		attnRow := attention.Row(i)
		labelRow := labels.Row(i)

		copy(idsRow, ex.inputIDs)
		copy(typeRow, ex.typeIDs)
		for j := range ex.inputIDs {
			attnRow[j] = 1
		}

		for j, masked := range ex.maskLabel {
			if !masked {
				continue
			}
			labelRow[j] = ex.inputIDs[j]
			switch r := c.rng.Float64(); {
			case r < maskTokenFraction:
				idsRow[j] = maskID
			case r < randomTokenCeiling:
				idsRow[j] = int32(c.rng.Intn(c.tok.VocabSize())) //nolint:gosec // G115: Vocab size < 2^31.
			default:
				// Keep the original token.
			}
		}

		sop.Set(ex.sopLabel, i)
	}

	return Batch{
		FieldInputIDs:           inputIDs,
		FieldTokenTypeIDs:       typeIDs,
		FieldAttentionMask:      attention,
		FieldLabels:             labels,
		FieldSentenceOrderLabel: sop,
	}
}

// shard partitions every 2-D field's sequence dimension into world equal
// contiguous slices and keeps the local rank's, right-padding first with
// the field's role fill when the length is not divisible. Fields with
// fewer than two dimensions pass through unsharded. The returned shard is
// always contiguous and never aliases another rank's view.
func (c *Collator) shard(batch Batch) Batch {
	padID := c.tok.PadToken()
	for name, t := range batch {
		if t.Dims() < 2 {
			continue
		}

		seq := t.Shape()[1]
		if seq%c.world != 0 {
			required := (seq/c.world + 1) * c.world
			t = tensor.PadEnd(t, 1, required-seq, shardFill(name, padID))
		}

		batch[name] = t.Chunk(c.world, 1)[c.rank].Contiguous()
	}
	return batch
}
