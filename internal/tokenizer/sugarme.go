package tokenizer

import (
	"fmt"

	sugarme "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// HFTokenizer wraps the sugarme/tokenizer library for pretrained
// HuggingFace tokenizer.json files (BPE, WordPiece, Unigram models).
type HFTokenizer struct {
	tk      *sugarme.Tokenizer
	vocab   map[string]int
	reverse map[int]string
	cls     int32
	sep     int32
	pad     int32
	mask    int32
	unk     int32
	special map[int32]bool
}

// NewHFTokenizer loads a tokenizer from a HuggingFace tokenizer.json file.
//
// Special token IDs are resolved from the vocabulary by their BERT string
// forms; tokens absent from the vocabulary report -1.
func NewHFTokenizer(path string) (*HFTokenizer, error) {
	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer from %q: %w", path, err)
	}

	vocab := tk.GetVocab(true)
	reverse := make(map[int]string, len(vocab))
	for token, id := range vocab {
		reverse[id] = token
	}

	h := &HFTokenizer{
		tk:      tk,
		vocab:   vocab,
		reverse: reverse,
		special: make(map[int32]bool, 5),
	}

	lookup := func(token string) int32 {
		if id, ok := vocab[token]; ok {
			h.special[int32(id)] = true //nolint:gosec // G115: Token ID fits in int32 - vocab size < 2^31.
			return int32(id)            //nolint:gosec // G115: Token ID fits in int32 - vocab size < 2^31.
		}
		return -1
	}
	h.cls = lookup(clsTokenString)
	h.sep = lookup(sepTokenString)
	h.pad = lookup(padTokenString)
	h.mask = lookup(maskTokenString)
	h.unk = lookup(unkTokenString)

	return h, nil
}

// Encode converts text to token IDs.
// Special tokens are not added; the collator inserts them per pair.
func (h *HFTokenizer) Encode(text string) ([]int32, error) {
	en, err := h.tk.EncodeSingle(text)
	if err != nil {
		return nil, fmt.Errorf("failed to encode text: %w", err)
	}

	ids := make([]int32, len(en.Ids))
	for i, id := range en.Ids {
		ids[i] = int32(id) //nolint:gosec // G115: Token ID fits in int32 - vocab size < 2^31.
	}
	return ids, nil
}

// Decode converts token IDs back to text, skipping special tokens.
func (h *HFTokenizer) Decode(ids []int32) (string, error) {
	intIDs := make([]int, len(ids))
	for i, id := range ids {
		intIDs[i] = int(id)
	}
	return h.tk.Decode(intIDs, true), nil
}

// VocabSize returns the total vocabulary size.
func (h *HFTokenizer) VocabSize() int {
	return len(h.vocab)
}

// ClsToken returns the [CLS] token ID, or -1 if absent.
func (h *HFTokenizer) ClsToken() int32 { return h.cls }

// SepToken returns the [SEP] token ID, or -1 if absent.
func (h *HFTokenizer) SepToken() int32 { return h.sep }

// PadToken returns the [PAD] token ID, or -1 if absent.
func (h *HFTokenizer) PadToken() int32 { return h.pad }

// MaskToken returns the [MASK] token ID, or -1 if absent.
func (h *HFTokenizer) MaskToken() int32 { return h.mask }

// UnkToken returns the [UNK] token ID, or -1 if absent.
func (h *HFTokenizer) UnkToken() int32 { return h.unk }

// IsSpecialToken checks if a token ID is a special token.
func (h *HFTokenizer) IsSpecialToken(id int32) bool {
	return h.special[id]
}

// BuildPairWithSpecialTokens inserts [CLS] a [SEP] b [SEP].
func (h *HFTokenizer) BuildPairWithSpecialTokens(a, b []int32) []int32 {
	return buildBertPair(h.cls, h.sep, a, b)
}

// PairTokenTypeIDs returns segment ids matching BuildPairWithSpecialTokens.
func (h *HFTokenizer) PairTokenTypeIDs(a, b []int32) []int32 {
	return bertPairTypeIDs(len(a), len(b))
}

// ConvertIDsToTokens maps token IDs to their string forms.
func (h *HFTokenizer) ConvertIDsToTokens(ids []int32) []string {
	tokens := make([]string, len(ids))
	for i, id := range ids {
		if token, ok := h.reverse[int(id)]; ok {
			tokens[i] = token
		} else {
			tokens[i] = unkTokenString
		}
	}
	return tokens
}
