package tokenizer

// Tokenizer is the core interface for text tokenization in the pretraining
// data pipeline.
//
// All tokenizer implementations (WordPiece, HuggingFace, tiktoken) must
// implement this interface. Beyond plain encode/decode it exposes the
// BERT-style pair-building operations the collator needs: inserting special
// tokens around two segments and deriving segment (token type) ids.
type Tokenizer interface {
	// Encode converts text to token IDs.
	Encode(text string) ([]int32, error)

	// Decode converts token IDs back to text.
	Decode(ids []int32) (string, error)

	// VocabSize returns the total vocabulary size.
	VocabSize() int

	// ClsToken returns the classification (begin-of-sequence) token ID.
	// Returns -1 if not applicable.
	ClsToken() int32

	// SepToken returns the separator token ID.
	// Returns -1 if not applicable.
	SepToken() int32

	// PadToken returns the padding token ID.
	// Returns -1 if not applicable.
	PadToken() int32

	// MaskToken returns the mask token ID used for MLM corruption.
	// Returns -1 if not applicable.
	MaskToken() int32

	// UnkToken returns the unknown token ID.
	// Returns -1 if not applicable.
	UnkToken() int32

	// IsSpecialToken checks if a token ID is a special token.
	IsSpecialToken(id int32) bool

	// BuildPairWithSpecialTokens inserts special tokens around two
	// segments: [CLS] a [SEP] b [SEP].
	BuildPairWithSpecialTokens(a, b []int32) []int32

	// PairTokenTypeIDs returns the segment ids matching
	// BuildPairWithSpecialTokens: 0 over [CLS] a [SEP], 1 over b [SEP].
	PairTokenTypeIDs(a, b []int32) []int32

	// ConvertIDsToTokens maps token IDs to their string forms.
	ConvertIDsToTokens(ids []int32) []string
}

// buildBertPair assembles [CLS] a [SEP] b [SEP].
func buildBertPair(cls, sep int32, a, b []int32) []int32 {
	out := make([]int32, 0, len(a)+len(b)+3)
	out = append(out, cls)
	out = append(out, a...)
	out = append(out, sep)
	out = append(out, b...)
	out = append(out, sep)
	return out
}

// bertPairTypeIDs returns segment ids for [CLS] a [SEP] b [SEP]:
// zeros over the first segment including both leading specials, ones over
// the second segment including its trailing separator.
func bertPairTypeIDs(aLen, bLen int) []int32 {
	out := make([]int32, aLen+bLen+3)
	for i := aLen + 2; i < len(out); i++ {
		out[i] = 1
	}
	return out
}
