package tokenizer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// hfTokenizerModel is the "model" section of a HuggingFace tokenizer.json.
type hfTokenizerModel struct {
	Type  string           `json:"type"`
	Vocab map[string]int32 `json:"vocab"`
}

type hfTokenizerFile struct {
	Model hfTokenizerModel `json:"model"`
}

// LoadWordPieceFromHuggingFace loads a WordPiece tokenizer from a
// HuggingFace tokenizer.json file containing a WordPiece model section.
func LoadWordPieceFromHuggingFace(path string) (*WordPiece, error) {
	//nolint:gosec // G304: Loading tokenizer from user-specified path is intentional.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tokenizer.json: %w", err)
	}

	var file hfTokenizerFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse tokenizer.json: %w", err)
	}
	if file.Model.Type != "WordPiece" {
		return nil, fmt.Errorf("tokenizer.json model type is %q, not WordPiece", file.Model.Type)
	}
	if len(file.Model.Vocab) == 0 {
		return nil, fmt.Errorf("tokenizer.json has an empty vocabulary")
	}

	return NewWordPiece(file.Model.Vocab, true)
}

// AutoLoad attempts to automatically load the correct tokenizer.
//
// It tries multiple strategies:
//  1. Directory: vocab.txt (WordPiece), then tokenizer.json
//  2. File: .txt as a WordPiece vocabulary, .json as tokenizer.json
//     (native WordPiece loader first, sugarme for other model types)
//  3. Name: tiktoken encoding with end-of-text separator ids
func AutoLoad(pathOrName string) (Tokenizer, error) {
	if info, err := os.Stat(pathOrName); err == nil {
		if info.IsDir() {
			if vocabPath := filepath.Join(pathOrName, "vocab.txt"); exists(vocabPath) {
				return LoadWordPieceVocab(vocabPath)
			}
			if jsonPath := filepath.Join(pathOrName, "tokenizer.json"); exists(jsonPath) {
				return loadTokenizerJSON(jsonPath)
			}
			return nil, fmt.Errorf("directory %q contains neither vocab.txt nor tokenizer.json", pathOrName)
		}

		switch strings.ToLower(filepath.Ext(pathOrName)) {
		case ".txt":
			return LoadWordPieceVocab(pathOrName)
		case ".json":
			return loadTokenizerJSON(pathOrName)
		default:
			return nil, fmt.Errorf("unsupported tokenizer file %q", pathOrName)
		}
	}

	// Not a path: treat as a tiktoken encoding name.
	tok, err := NewTikToken(pathOrName, EOTSpecialIDs(pathOrName))
	if err != nil {
		return nil, fmt.Errorf("tokenizer %q is neither a path nor a tiktoken encoding: %w", pathOrName, err)
	}
	return tok, nil
}

// loadTokenizerJSON prefers the native WordPiece implementation and falls
// back to the sugarme adapter for other model types (BPE, Unigram).
func loadTokenizerJSON(path string) (Tokenizer, error) {
	if wp, err := LoadWordPieceFromHuggingFace(path); err == nil {
		return wp, nil
	}
	return NewHFTokenizer(path)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
