package pretrain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loom-ml/loom/internal/parallel"
	"github.com/loom-ml/loom/internal/tensor"
)

// fakeCtx bypasses parallel.NewGroup validation so the collator's own
// construction-time checks can be exercised.
type fakeCtx struct {
	rank, world int
}

func (c fakeCtx) LocalRank(parallel.Mode) int { return c.rank }
func (c fakeCtx) WorldSize(parallel.Mode) int { return c.world }

func newTestProcessor(t *testing.T) *Processor {
	t.Helper()
	p, err := NewProcessor(fakeTokenizer{}, 13)
	require.NoError(t, err)
	return p
}

func TestNewCollator_Validation(t *testing.T) {
	proc := newTestProcessor(t)

	tests := []struct {
		name   string
		prob   float64
		opts   []CollatorOption
		option string
	}{
		{name: "zero probability", prob: 0, option: "mlmProbability"},
		{name: "probability of one", prob: 1, option: "mlmProbability"},
		{name: "probability above one", prob: 1.5, option: "mlmProbability"},
		{name: "negative pad multiple", prob: 0.15, opts: []CollatorOption{WithPadToMultipleOf(-1)}, option: "padToMultipleOf"},
		{name: "zero max predictions", prob: 0.15, opts: []CollatorOption{WithMaxPredictions(0)}, option: "maxPredictions"},
		{name: "zero world size", prob: 0.15, opts: []CollatorOption{WithParallelContext(fakeCtx{rank: 0, world: 0})}, option: "worldSize"},
		{name: "negative world size", prob: 0.15, opts: []CollatorOption{WithParallelContext(fakeCtx{rank: 0, world: -2})}, option: "worldSize"},
		{name: "rank out of range", prob: 0.15, opts: []CollatorOption{WithParallelContext(fakeCtx{rank: 4, world: 4})}, option: "localRank"},
		{name: "negative rank", prob: 0.15, opts: []CollatorOption{WithParallelContext(fakeCtx{rank: -1, world: 4})}, option: "localRank"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCollator(proc, tt.prob, tt.opts...)
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.option, cfgErr.Option)
		})
	}

	t.Run("nil processor", func(t *testing.T) {
		_, err := NewCollator(nil, 0.15)
		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
	})
}

func TestCollate_ForwardOrder(t *testing.T) {
	proc := newTestProcessor(t)
	rng := &scriptRand{ints: []int{1}, floats: []float64{0.9}}
	c, err := NewCollator(proc, 0.15, WithRand(rng), WithMasker(fixedMasker{}))
	require.NoError(t, err)

	// n=10: split range [3, 6), scripted draw picks split=4; 0.9 keeps
	// the original segment order.
	batch, err := c.Collate([]Chunk{seqChunk(10, 19)})
	require.NoError(t, err)

	input := batch[FieldInputIDs]
	require.Equal(t, tensor.Shape{1, 13}, input.Shape())
	assert.Equal(t, []int32{2, 10, 11, 12, 13, 3, 14, 15, 16, 17, 18, 19, 3}, input.Row(0))

	// The type id boundary sits exactly after [CLS] + segment A + [SEP].
	types := batch[FieldTokenTypeIDs]
	assert.Equal(t, []int32{0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1, 1}, types.Row(0))

	attention := batch[FieldAttentionMask]
	for _, v := range attention.Row(0) {
		assert.Equal(t, int32(1), v)
	}

	// Nothing masked: every label is the ignore sentinel.
	for _, v := range batch[FieldLabels].Row(0) {
		assert.Equal(t, IgnoreLabel, v)
	}

	sop := batch[FieldSentenceOrderLabel]
	require.Equal(t, tensor.Shape{1}, sop.Shape())
	assert.Equal(t, int32(0), sop.At(0))
}

func TestCollate_ReversedOrder(t *testing.T) {
	proc := newTestProcessor(t)
	rng := &scriptRand{ints: []int{1}, floats: []float64{0.3}}
	c, err := NewCollator(proc, 0.15, WithRand(rng), WithMasker(fixedMasker{}))
	require.NoError(t, err)

	batch, err := c.Collate([]Chunk{seqChunk(10, 19)})
	require.NoError(t, err)

	// reverse: segment A is the tail chunk[4:], segment B the head.
	assert.Equal(t, []int32{2, 14, 15, 16, 17, 18, 19, 3, 10, 11, 12, 13, 3},
		batch[FieldInputIDs].Row(0))
	assert.Equal(t, []int32{0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1},
		batch[FieldTokenTypeIDs].Row(0))
	assert.Equal(t, int32(1), batch[FieldSentenceOrderLabel].At(0))
}

func TestCollate_DegenerateSplitRange(t *testing.T) {
	proc := newTestProcessor(t)
	rng := &scriptRand{floats: []float64{0.9}}
	c, err := NewCollator(proc, 0.15, WithRand(rng), WithMasker(fixedMasker{}))
	require.NoError(t, err)

	// n=2: the range [0, 0) is empty; the split clamps to the midpoint
	// so both segments stay non-empty.
	batch, err := c.Collate([]Chunk{{10, 11}})
	require.NoError(t, err)
	assert.Equal(t, []int32{2, 10, 3, 11, 3}, batch[FieldInputIDs].Row(0))
}

func TestCollate_TooShortChunk(t *testing.T) {
	proc := newTestProcessor(t)
	c, err := NewCollator(proc, 0.15, WithRand(&scriptRand{}), WithMasker(fixedMasker{}))
	require.NoError(t, err)

	_, err = c.Collate([]Chunk{{10}})
	var rangeErr *RangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, 1, rangeErr.N)
}

func TestCollate_EmptyBatch(t *testing.T) {
	proc := newTestProcessor(t)
	c, err := NewCollator(proc, 0.15, WithRand(&scriptRand{}))
	require.NoError(t, err)

	_, err = c.Collate(nil)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
}

func TestCollate_MaskerLengthMismatch(t *testing.T) {
	proc := newTestProcessor(t)
	c, err := NewCollator(proc, 0.15, WithRand(&scriptRand{}), WithMasker(badMasker{}))
	require.NoError(t, err)

	_, err = c.Collate([]Chunk{seqChunk(10, 19)})
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "mask_label", schemaErr.Field)
}

func TestCollate_MLMCorruptionPolicy(t *testing.T) {
	proc := newTestProcessor(t)
	// Draw order: reverse, then one corruption draw per masked position.
	// 0.5 -> mask token, 0.85 -> random id (consumes Intn), 0.95 -> keep.
	rng := &scriptRand{ints: []int{1, 700}, floats: []float64{0.9, 0.5, 0.85, 0.95}}
	c, err := NewCollator(proc, 0.15,
		WithRand(rng), WithMasker(fixedMasker{positions: []int{1, 2, 3}}))
	require.NoError(t, err)

	batch, err := c.Collate([]Chunk{seqChunk(10, 19)})
	require.NoError(t, err)

	input := batch[FieldInputIDs].Row(0)
	assert.Equal(t, int32(4), input[1], "80% branch replaces with the mask token")
	assert.Equal(t, int32(700), input[2], "10% branch substitutes a random vocab id")
	assert.Equal(t, int32(12), input[3], "10% branch keeps the original token")

	labels := batch[FieldLabels].Row(0)
	assert.Equal(t, int32(10), labels[1])
	assert.Equal(t, int32(11), labels[2])
	assert.Equal(t, int32(12), labels[3])
	assert.Equal(t, IgnoreLabel, labels[0])
	assert.Equal(t, IgnoreLabel, labels[4])
}

func TestCollate_PadToMultipleOf(t *testing.T) {
	proc := newTestProcessor(t)
	rng := &scriptRand{ints: []int{0}, floats: []float64{0.9}}
	c, err := NewCollator(proc, 0.15,
		WithRand(rng), WithMasker(fixedMasker{}), WithPadToMultipleOf(6))
	require.NoError(t, err)

	// chunk of 5 -> example of 8 -> padded up to 12.
	batch, err := c.Collate([]Chunk{seqChunk(10, 14)})
	require.NoError(t, err)

	input := batch[FieldInputIDs]
	require.Equal(t, tensor.Shape{1, 12}, input.Shape())

	row := input.Row(0)
	for j := 8; j < 12; j++ {
		assert.Equal(t, int32(0), row[j], "input padding uses the pad id")
		assert.Equal(t, int32(0), batch[FieldAttentionMask].Row(0)[j])
		assert.Equal(t, int32(0), batch[FieldTokenTypeIDs].Row(0)[j])
		assert.Equal(t, IgnoreLabel, batch[FieldLabels].Row(0)[j])
	}
	for j := 0; j < 8; j++ {
		assert.Equal(t, int32(1), batch[FieldAttentionMask].Row(0)[j])
	}
}

func TestCollate_SequenceParallelSharding(t *testing.T) {
	// chunk of 7 -> example of 10. With world=4 the batch pads to 12 and
	// every rank holds a contiguous shard of length 3; concatenating the
	// ranks in order reproduces the padded (not original) sequence.
	const world = 4

	collect := func(rank int) Batch {
		proc := newTestProcessor(t)
		group, err := parallel.NewSequenceGroup(rank, world)
		require.NoError(t, err)

		rng := &scriptRand{ints: []int{1}, floats: []float64{0.9}}
		c, err := NewCollator(proc, 0.15,
			WithRand(rng), WithMasker(fixedMasker{}), WithParallelContext(group))
		require.NoError(t, err)

		batch, err := c.Collate([]Chunk{seqChunk(10, 16)})
		require.NoError(t, err)
		return batch
	}

	shards := make([]Batch, world)
	for r := 0; r < world; r++ {
		shards[r] = collect(r)
	}

	for _, field := range []string{FieldInputIDs, FieldTokenTypeIDs, FieldAttentionMask, FieldLabels} {
		var rows [][]int32
		for r := 0; r < world; r++ {
			shard := shards[r][field]
			require.Equal(t, tensor.Shape{1, 3}, shard.Shape(), "field %s rank %d", field, r)
			require.True(t, shard.IsContiguous())
			rows = append(rows, shard.Row(0))
		}
		var joined []int32
		for _, row := range rows {
			joined = append(joined, row...)
		}

		switch field {
		case FieldInputIDs:
			assert.Equal(t, []int32{2, 10, 11, 12, 3, 13, 14, 15, 16, 3, 0, 0}, joined)
		case FieldTokenTypeIDs:
			assert.Equal(t, []int32{0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1, 1}, joined)
		case FieldAttentionMask:
			assert.Equal(t, []int32{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0}, joined)
		case FieldLabels:
			expect := make([]int32, 12)
			for i := range expect {
				expect[i] = IgnoreLabel
			}
			assert.Equal(t, expect, joined)
		}
	}

	// Scalar per-example fields pass through unsharded.
	for r := 0; r < world; r++ {
		sop := shards[r][FieldSentenceOrderLabel]
		require.Equal(t, tensor.Shape{1}, sop.Shape())
		assert.Equal(t, int32(0), sop.At(0))
	}
}

func TestCollate_ShardingDivisibleLengthAddsNoPadding(t *testing.T) {
	proc := newTestProcessor(t)
	group, err := parallel.NewSequenceGroup(1, 2)
	require.NoError(t, err)

	rng := &scriptRand{ints: []int{1}, floats: []float64{0.9}}
	c, err := NewCollator(proc, 0.15,
		WithRand(rng), WithMasker(fixedMasker{}), WithParallelContext(group))
	require.NoError(t, err)

	// chunk of 7 -> example of 10, already divisible by 2.
	batch, err := c.Collate([]Chunk{seqChunk(10, 16)})
	require.NoError(t, err)

	input := batch[FieldInputIDs]
	require.Equal(t, tensor.Shape{1, 5}, input.Shape())
	assert.Equal(t, []int32{13, 14, 15, 16, 3}, input.Row(0))
}
