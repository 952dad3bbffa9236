// Package pretrain implements data preparation for BERT-style pretraining:
// a stateful chunking processor turning variable-length documents into
// fixed-size training chunks, and a collator building whole-word-masked
// sentence-order examples and sharding them across a sequence-parallel
// group.
package pretrain

import (
	"fmt"

	"github.com/loom-ml/loom/internal/corpus"
	"github.com/loom-ml/loom/internal/parallel"
	"github.com/loom-ml/loom/internal/tokenizer"
)

// specialTokenSlots is the number of positions the collator inserts around
// a chunk's two segments: [CLS], [SEP], [SEP].
const specialTokenSlots = 3

// Chunk is a fixed-length slice of concatenated token ids used as one
// training pseudo-document. Immutable once emitted by a Processor.
type Chunk []int32

// Processor is a stateful, per-replica token accumulator and chunker.
//
// Each Process call tokenizes a batch of documents, appends each document's
// ids plus a trailing separator to a persistent buffer, and drains the
// buffer into chunks of exactly maxLength-3 ids. Leftover ids stay
// buffered for the next call, so token order is preserved across calls
// with no loss or duplication. One Processor owns one logical document
// stream; it is not safe for concurrent use.
type Processor struct {
	tok       tokenizer.Tokenizer
	maxLength int
	chunkSize int
	buffer    []int32
	encodeCfg parallel.Config
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithEncodeParallelism overrides the fan-out configuration for per-document
// tokenization within a batch. Buffer mutation stays strictly sequential.
func WithEncodeParallelism(cfg parallel.Config) ProcessorOption {
	return func(p *Processor) {
		p.encodeCfg = cfg
	}
}

// NewProcessor creates a chunking processor. The chunk size is
// maxLength-3, reserving three slots for the special tokens the collator
// inserts later.
func NewProcessor(tok tokenizer.Tokenizer, maxLength int, opts ...ProcessorOption) (*Processor, error) {
	if tok == nil {
		return nil, &ConfigError{Option: "tokenizer", Reason: "must not be nil"}
	}
	if maxLength <= specialTokenSlots {
		return nil, &ConfigError{
			Option: "maxLength",
			Reason: fmt.Sprintf("must exceed the %d reserved special token slots, got %d", specialTokenSlots, maxLength),
		}
	}
	if tok.SepToken() < 0 {
		return nil, &ConfigError{Option: "tokenizer", Reason: "must define a separator token"}
	}

	p := &Processor{
		tok:       tok,
		maxLength: maxLength,
		chunkSize: maxLength - specialTokenSlots,
		encodeCfg: parallel.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Tokenizer returns the tokenizer capability this processor was built with.
func (p *Processor) Tokenizer() tokenizer.Tokenizer {
	return p.tok
}

// MaxLength returns the configured maximum sequence length.
func (p *Processor) MaxLength() int {
	return p.maxLength
}

// ChunkSize returns the emitted chunk length (maxLength-3).
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Process tokenizes the batch's "text" column into the persistent buffer
// and returns the chunks that became complete during this call.
//
// Output length is generally not proportional to input length within one
// call: leftover ids from earlier calls count toward the first chunk, and
// a final partial chunk stays invisible until a future call completes it.
func (p *Processor) Process(batch corpus.Columns) ([]Chunk, error) {
	texts, ok := batch[corpus.TextColumn]
	if !ok {
		return nil, &SchemaError{
			Field:  corpus.TextColumn,
			Reason: "the dataset column to tokenize must be named \"text\"",
		}
	}

	// Tokenization fans out per document; results are joined in index
	// order so the emitted token stream is deterministic.
	encoded := make([][]int32, len(texts))
	errs := make([]error, len(texts))
	parallel.For(len(texts), func(i int) {
		encoded[i], errs[i] = p.tok.Encode(texts[i])
	}, p.encodeCfg)
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("failed to tokenize document %d: %w", i, err)
		}
	}

	sep := p.tok.SepToken()
	var chunks []Chunk
	for _, ids := range encoded {
		p.buffer = append(p.buffer, ids...)
		p.buffer = append(p.buffer, sep)

		for len(p.buffer) >= p.chunkSize {
			chunk := make(Chunk, p.chunkSize)
			copy(chunk, p.buffer[:p.chunkSize])
			chunks = append(chunks, chunk)
			p.buffer = p.buffer[p.chunkSize:]
		}
	}

	return chunks, nil
}

// Buffered returns the number of leftover ids carried to the next call.
func (p *Processor) Buffered() int {
	return len(p.buffer)
}

// Leftover returns a copy of the buffered ids. Useful at stream
// boundaries and for token-conservation checks.
func (p *Processor) Leftover() []int32 {
	out := make([]int32, len(p.buffer))
	copy(out, p.buffer)
	return out
}

// Reset discards any buffered ids, starting a fresh document stream.
func (p *Processor) Reset() {
	p.buffer = p.buffer[:0]
}
