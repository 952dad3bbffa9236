package pretrain

import (
	"math"
	"strings"
)

// Masker selects token positions for masked-language-model corruption.
// Given the string forms of a sequence's tokens it returns a boolean
// vector of the same length flagging masked positions.
type Masker interface {
	Mask(tokens []string) []bool
}

// continuationPrefix marks WordPiece subword pieces that continue a word.
const continuationPrefix = "##"

// defaultMaxPredictions caps masked tokens per sequence.
const defaultMaxPredictions = 512

// WholeWordMasker masks all subword pieces of a selected word together.
//
// Tokens are grouped into words ("##"-prefixed pieces continue the
// previous word), word candidates are shuffled, and whole words are
// selected until the token budget max(1, round(len*p)) is met. Words that
// would overflow the budget are skipped, so the expected fraction of
// words (not tokens) masked approximates the configured probability.
// Special tokens never become candidates.
type WholeWordMasker struct {
	probability    float64
	maxPredictions int
	rng            Rand
	special        map[string]bool
}

// NewWholeWordMasker creates a whole-word masker. specials lists the token
// strings that must never be masked (e.g. [CLS], [SEP]).
func NewWholeWordMasker(probability float64, maxPredictions int, rng Rand, specials []string) *WholeWordMasker {
	special := make(map[string]bool, len(specials))
	for _, s := range specials {
		special[s] = true
	}
	return &WholeWordMasker{
		probability:    probability,
		maxPredictions: maxPredictions,
		rng:            rng,
		special:        special,
	}
}

// Mask returns a boolean vector flagging whole-word-masked positions.
func (m *WholeWordMasker) Mask(tokens []string) []bool {
	// Group token positions into words. A special token both escapes
	// masking and breaks the current word.
	var words [][]int
	for i, tok := range tokens {
		if m.special[tok] {
			continue
		}
		if len(words) > 0 && strings.HasPrefix(tok, continuationPrefix) && i > 0 && !m.special[tokens[i-1]] {
			last := len(words) - 1
			words[last] = append(words[last], i)
			continue
		}
		words = append(words, []int{i})
	}

	mask := make([]bool, len(tokens))
	if len(words) == 0 {
		return mask
	}

	m.rng.Shuffle(len(words), func(i, j int) {
		words[i], words[j] = words[j], words[i]
	})

	budget := int(math.Round(float64(len(tokens)) * m.probability))
	if budget < 1 {
		budget = 1
	}
	if budget > m.maxPredictions {
		budget = m.maxPredictions
	}

	masked := 0
	for _, word := range words {
		if masked >= budget {
			break
		}
		if masked+len(word) > budget {
			// Skip words that would overflow the budget.
			continue
		}
		for _, i := range word {
			mask[i] = true
		}
		masked += len(word)
	}

	return mask
}
