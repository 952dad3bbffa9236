package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// encodingCL100kBase is the encoding name for GPT-4 and GPT-3.5-turbo.
	encodingCL100kBase = "cl100k_base"
	// encodingP50kBase is the encoding name for GPT-3.
	encodingP50kBase = "p50k_base"
	// encodingR50kBase is the encoding name for older GPT-3 models.
	encodingR50kBase = "r50k_base"
)

// SpecialIDs configures the special token IDs for tokenizers whose
// vocabulary does not define them natively. Any field may be -1.
type SpecialIDs struct {
	Cls  int32
	Sep  int32
	Pad  int32
	Mask int32
	Unk  int32
}

// EOTSpecialIDs maps the end-of-text token of a tiktoken encoding onto the
// separator and pad roles. There is no mask or unknown token, so a
// tokenizer built from this cannot serve MLM corruption.
func EOTSpecialIDs(encodingName string) SpecialIDs {
	var eot int32 = -1
	switch encodingName {
	case encodingCL100kBase:
		eot = 100257
	case encodingP50kBase, encodingR50kBase:
		eot = 50256
	}
	return SpecialIDs{Cls: -1, Sep: eot, Pad: eot, Mask: -1, Unk: -1}
}

// TikToken wraps the pkoukk/tiktoken-go library for OpenAI tokenizers.
//
// Supported encodings:
//   - cl100k_base: GPT-4, GPT-3.5-turbo, text-embedding-ada-002
//   - p50k_base: GPT-3, Codex
//   - r50k_base: GPT-3, davinci-002, babbage-002
//
// tiktoken vocabularies define no BERT-style special tokens, so the roles
// are supplied explicitly via SpecialIDs.
type TikToken struct {
	encoding *tiktoken.Tiktoken
	name     string
	ids      SpecialIDs
	special  map[int32]bool
}

// NewTikToken creates a new TikToken tokenizer with the specified encoding.
//
// Supported encodings: "cl100k_base" (GPT-4), "p50k_base" (GPT-3).
func NewTikToken(encodingName string, ids SpecialIDs) (*TikToken, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding %q: %w", encodingName, err)
	}

	special := make(map[int32]bool, 5)
	for _, id := range []int32{ids.Cls, ids.Sep, ids.Pad, ids.Mask, ids.Unk} {
		if id >= 0 {
			special[id] = true
		}
	}

	return &TikToken{
		encoding: encoding,
		name:     encodingName,
		ids:      ids,
		special:  special,
	}, nil
}

// Encode converts text to token IDs.
func (t *TikToken) Encode(text string) ([]int32, error) {
	tokens := t.encoding.Encode(text, nil, nil)

	result := make([]int32, len(tokens))
	for i, tok := range tokens {
		result[i] = int32(tok) //nolint:gosec // G115: Token ID fits in int32 - vocab size < 2^31.
	}
	return result, nil
}

// Decode converts token IDs back to text.
func (t *TikToken) Decode(ids []int32) (string, error) {
	intTokens := make([]int, 0, len(ids))
	for _, id := range ids {
		if t.special[id] {
			continue
		}
		intTokens = append(intTokens, int(id))
	}
	return t.encoding.Decode(intTokens), nil
}

// VocabSize returns the total vocabulary size.
func (t *TikToken) VocabSize() int {
	// tiktoken-go doesn't expose vocab size directly.
	switch t.name {
	case encodingCL100kBase:
		return 100256
	case encodingP50kBase, encodingR50kBase:
		return 50257
	default:
		return 100000 // Conservative default
	}
}

// ClsToken returns the configured classification token ID.
func (t *TikToken) ClsToken() int32 { return t.ids.Cls }

// SepToken returns the configured separator token ID.
func (t *TikToken) SepToken() int32 { return t.ids.Sep }

// PadToken returns the configured padding token ID.
func (t *TikToken) PadToken() int32 { return t.ids.Pad }

// MaskToken returns the configured mask token ID.
func (t *TikToken) MaskToken() int32 { return t.ids.Mask }

// UnkToken returns the configured unknown token ID.
func (t *TikToken) UnkToken() int32 { return t.ids.Unk }

// IsSpecialToken checks if a token ID is a special token.
func (t *TikToken) IsSpecialToken(id int32) bool {
	return t.special[id]
}

// BuildPairWithSpecialTokens inserts the configured specials around the
// pair. A missing [CLS] role degrades to a [SEP]-joined pair.
func (t *TikToken) BuildPairWithSpecialTokens(a, b []int32) []int32 {
	if t.ids.Cls < 0 {
		out := make([]int32, 0, len(a)+len(b)+2)
		out = append(out, a...)
		out = append(out, t.ids.Sep)
		out = append(out, b...)
		out = append(out, t.ids.Sep)
		return out
	}
	return buildBertPair(t.ids.Cls, t.ids.Sep, a, b)
}

// PairTokenTypeIDs returns segment ids matching BuildPairWithSpecialTokens.
func (t *TikToken) PairTokenTypeIDs(a, b []int32) []int32 {
	if t.ids.Cls < 0 {
		out := make([]int32, len(a)+len(b)+2)
		for i := len(a) + 1; i < len(out); i++ {
			out[i] = 1
		}
		return out
	}
	return bertPairTypeIDs(len(a), len(b))
}

// ConvertIDsToTokens maps each token ID to its decoded string form.
func (t *TikToken) ConvertIDsToTokens(ids []int32) []string {
	tokens := make([]string, len(ids))
	for i, id := range ids {
		tokens[i] = t.encoding.Decode([]int{int(id)})
	}
	return tokens
}
