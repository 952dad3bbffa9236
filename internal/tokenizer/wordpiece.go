package tokenizer

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"

	lru "github.com/hashicorp/golang-lru"
)

// Well-known BERT special token strings.
const (
	clsTokenString  = "[CLS]"
	sepTokenString  = "[SEP]"
	padTokenString  = "[PAD]"
	maskTokenString = "[MASK]"
	unkTokenString  = "[UNK]"

	// continuationPrefix marks subword pieces that continue a word.
	continuationPrefix = "##"

	// maxWordChars bounds greedy matching; longer words map to [UNK].
	maxWordChars = 100

	// pieceCacheSize is the word -> pieces LRU capacity.
	pieceCacheSize = 32768
)

// WordPiece implements BERT-style WordPiece tokenization.
//
// Encoding lowercases (optional), splits on whitespace and punctuation,
// then greedily matches the longest vocabulary entry per word, emitting
// "##"-prefixed continuation pieces. Words with no match become [UNK].
type WordPiece struct {
	vocab   map[string]int32
	reverse map[int32]string
	cls     int32
	sep     int32
	pad     int32
	mask    int32
	unk     int32
	special map[int32]bool

	lowercase bool
	pieces    *lru.ARCCache // word -> []int32
}

// NewWordPiece creates a WordPiece tokenizer from a vocabulary.
//
// The vocabulary must contain the five BERT special tokens
// ([CLS], [SEP], [PAD], [MASK], [UNK]).
func NewWordPiece(vocab map[string]int32, lowercase bool) (*WordPiece, error) {
	reverse := make(map[int32]string, len(vocab))
	for token, id := range vocab {
		reverse[id] = token
	}

	w := &WordPiece{
		vocab:     vocab,
		reverse:   reverse,
		special:   make(map[int32]bool, 5),
		lowercase: lowercase,
	}

	for _, s := range []struct {
		token string
		id    *int32
	}{
		{clsTokenString, &w.cls},
		{sepTokenString, &w.sep},
		{padTokenString, &w.pad},
		{maskTokenString, &w.mask},
		{unkTokenString, &w.unk},
	} {
		id, ok := vocab[s.token]
		if !ok {
			return nil, fmt.Errorf("vocabulary is missing special token %q", s.token)
		}
		*s.id = id
		w.special[id] = true
	}

	cache, err := lru.NewARC(pieceCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create piece cache: %w", err)
	}
	w.pieces = cache

	return w, nil
}

// LoadWordPieceVocab loads a WordPiece tokenizer from a vocab.txt file
// (one token per line, line number = token ID).
func LoadWordPieceVocab(path string) (*WordPiece, error) {
	//nolint:gosec // G304: Loading vocabulary from user-specified path is intentional.
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vocab file: %w", err)
	}
	defer f.Close()

	vocab := make(map[string]int32, 32768)
	var id int32
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		token := strings.TrimRight(scanner.Text(), "\r\n")
		if token == "" {
			continue
		}
		vocab[token] = id
		id++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vocab file: %w", err)
	}

	return NewWordPiece(vocab, true)
}

// Encode converts text to token IDs using WordPiece.
func (w *WordPiece) Encode(text string) ([]int32, error) {
	words := w.basicTokenize(text)
	ids := make([]int32, 0, len(words)*2)
	for _, word := range words {
		ids = append(ids, w.wordToPieces(word)...)
	}
	return ids, nil
}

// wordToPieces applies greedy longest-match-first to a single word.
// Results are memoized in an LRU cache keyed by the word.
func (w *WordPiece) wordToPieces(word string) []int32 {
	if cached, ok := w.pieces.Get(word); ok {
		return cached.([]int32)
	}

	runes := []rune(word)
	if len(runes) > maxWordChars {
		return []int32{w.unk}
	}

	var ids []int32
	start := 0
	for start < len(runes) {
		end := len(runes)
		var matched int32 = -1
		for end > start {
			piece := string(runes[start:end])
			if start > 0 {
				piece = continuationPrefix + piece
			}
			if id, ok := w.vocab[piece]; ok {
				matched = id
				break
			}
			end--
		}
		if matched < 0 {
			// No piece matches: the whole word degrades to [UNK].
			ids = []int32{w.unk}
			break
		}
		ids = append(ids, matched)
		start = end
	}

	w.pieces.Add(word, ids)
	return ids
}

// basicTokenize lowercases (if configured) and splits text into words,
// treating every punctuation rune as its own word.
func (w *WordPiece) basicTokenize(text string) []string {
	if w.lowercase {
		text = strings.ToLower(text)
	}

	var words []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}

	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush()
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			flush()
			words = append(words, string(r))
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return words
}

// Decode converts token IDs back to text, merging continuation pieces and
// skipping special tokens.
func (w *WordPiece) Decode(ids []int32) (string, error) {
	var sb strings.Builder
	for _, id := range ids {
		if w.special[id] {
			continue
		}
		token, ok := w.reverse[id]
		if !ok {
			return "", fmt.Errorf("unknown token ID %d", id)
		}
		if rest, found := strings.CutPrefix(token, continuationPrefix); found {
			sb.WriteString(rest)
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(token)
	}
	return sb.String(), nil
}

// VocabSize returns the total vocabulary size.
func (w *WordPiece) VocabSize() int {
	return len(w.vocab)
}

// ClsToken returns the [CLS] token ID.
func (w *WordPiece) ClsToken() int32 { return w.cls }

// SepToken returns the [SEP] token ID.
func (w *WordPiece) SepToken() int32 { return w.sep }

// PadToken returns the [PAD] token ID.
func (w *WordPiece) PadToken() int32 { return w.pad }

// MaskToken returns the [MASK] token ID.
func (w *WordPiece) MaskToken() int32 { return w.mask }

// UnkToken returns the [UNK] token ID.
func (w *WordPiece) UnkToken() int32 { return w.unk }

// IsSpecialToken checks if a token ID is a special token.
func (w *WordPiece) IsSpecialToken(id int32) bool {
	return w.special[id]
}

// BuildPairWithSpecialTokens inserts [CLS] a [SEP] b [SEP].
func (w *WordPiece) BuildPairWithSpecialTokens(a, b []int32) []int32 {
	return buildBertPair(w.cls, w.sep, a, b)
}

// PairTokenTypeIDs returns segment ids matching BuildPairWithSpecialTokens.
func (w *WordPiece) PairTokenTypeIDs(a, b []int32) []int32 {
	return bertPairTypeIDs(len(a), len(b))
}

// ConvertIDsToTokens maps token IDs to their string forms.
// Unknown IDs map to the [UNK] token string.
func (w *WordPiece) ConvertIDsToTokens(ids []int32) []string {
	tokens := make([]string, len(ids))
	for i, id := range ids {
		if token, ok := w.reverse[id]; ok {
			tokens[i] = token
		} else {
			tokens[i] = unkTokenString
		}
	}
	return tokens
}
