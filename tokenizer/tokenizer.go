// Package tokenizer provides text tokenization for the Loom pretraining
// data pipeline.
//
// This package wraps the internal tokenizer implementations and provides
// a clean public API for tokenization tasks.
//
// Supported tokenizers:
//   - WordPiece: BERT-style subword tokenization (vocab.txt or tokenizer.json)
//   - HFTokenizer: any pretrained HuggingFace tokenizer.json via sugarme
//   - TikToken: OpenAI BPE tokenizers (GPT-3, GPT-4)
//
// Example usage:
//
//	import "github.com/loom-ml/loom/tokenizer"
//
//	tok, err := tokenizer.AutoLoad("bert-base-uncased/vocab.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ids, err := tok.Encode("Hello, world!")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pair := tok.BuildPairWithSpecialTokens(ids[:2], ids[2:])
package tokenizer

import (
	"github.com/loom-ml/loom/internal/tokenizer"
)

// Tokenizer is the core interface for text tokenization.
//
// All tokenizer implementations must implement this interface.
type Tokenizer = tokenizer.Tokenizer

// SpecialIDs configures special token roles for tokenizers whose
// vocabulary does not define them natively.
type SpecialIDs = tokenizer.SpecialIDs

// NewWordPiece creates a WordPiece tokenizer from an in-memory vocabulary.
func NewWordPiece(vocab map[string]int32, lowercase bool) (Tokenizer, error) {
	return tokenizer.NewWordPiece(vocab, lowercase)
}

// LoadWordPieceVocab loads a WordPiece tokenizer from a vocab.txt file.
func LoadWordPieceVocab(path string) (Tokenizer, error) {
	return tokenizer.LoadWordPieceVocab(path)
}

// NewHFTokenizer loads a pretrained HuggingFace tokenizer.json file.
func NewHFTokenizer(path string) (Tokenizer, error) {
	return tokenizer.NewHFTokenizer(path)
}

// NewTikToken creates a tiktoken tokenizer with explicit special ids.
//
// Supported encodings: "cl100k_base" (GPT-4), "p50k_base" (GPT-3).
func NewTikToken(encodingName string, ids SpecialIDs) (Tokenizer, error) {
	return tokenizer.NewTikToken(encodingName, ids)
}

// AutoLoad attempts to automatically load the correct tokenizer.
//
// It tries multiple strategies:
//  1. Directory: vocab.txt (WordPiece), then tokenizer.json
//  2. File: .txt as a WordPiece vocabulary, .json as tokenizer.json
//  3. Name: tiktoken encoding with end-of-text separator ids
func AutoLoad(pathOrName string) (Tokenizer, error) {
	return tokenizer.AutoLoad(pathOrName)
}
