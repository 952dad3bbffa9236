package pretrain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bertSpecials = []string{"[CLS]", "[SEP]", "[PAD]", "[MASK]", "[UNK]"}

func TestWholeWordMasker_GroupsContinuations(t *testing.T) {
	m := NewWholeWordMasker(0.6, defaultMaxPredictions, &scriptRand{}, bertSpecials)

	// budget = round(5 * 0.6) = 3 tokens; the two-piece word and the
	// single-piece word together fit exactly.
	tokens := []string{"[CLS]", "ta", "##tb", "tc", "[SEP]"}
	mask := m.Mask(tokens)

	assert.Equal(t, []bool{false, true, true, true, false}, mask)
}

func TestWholeWordMasker_SkipsOverflowingWords(t *testing.T) {
	m := NewWholeWordMasker(0.25, defaultMaxPredictions, &scriptRand{}, bertSpecials)

	// budget = round(8 * 0.25) = 2: the three-piece word overflows and is
	// skipped; the following two singles fill the budget.
	tokens := []string{"[CLS]", "ta", "##tb", "##tc", "td", "te", "tf", "[SEP]"}
	mask := m.Mask(tokens)

	assert.Equal(t, []bool{false, false, false, false, true, true, false, false}, mask)
}

func TestWholeWordMasker_BudgetFloorIsOneToken(t *testing.T) {
	m := NewWholeWordMasker(0.01, defaultMaxPredictions, &scriptRand{}, bertSpecials)

	// budget clamps up to 1: the two-piece word overflows, the single fits.
	tokens := []string{"[CLS]", "ta", "##tb", "tc", "[SEP]"}
	mask := m.Mask(tokens)

	assert.Equal(t, []bool{false, false, false, true, false}, mask)
}

func TestWholeWordMasker_SpecialsNeverMasked(t *testing.T) {
	m := NewWholeWordMasker(0.9, defaultMaxPredictions, &scriptRand{}, bertSpecials)

	tokens := []string{"[CLS]", "[SEP]", "[PAD]", "[PAD]"}
	mask := m.Mask(tokens)

	assert.Equal(t, []bool{false, false, false, false}, mask)
}

func TestWholeWordMasker_MaxPredictionsCap(t *testing.T) {
	m := NewWholeWordMasker(0.9, 2, &scriptRand{}, bertSpecials)

	tokens := []string{"ta", "tb", "tc", "td", "te", "tf"}
	mask := m.Mask(tokens)

	masked := 0
	for _, f := range mask {
		if f {
			masked++
		}
	}
	assert.Equal(t, 2, masked)
}

func TestWholeWordMasker_ContinuationAfterSpecialStartsWord(t *testing.T) {
	m := NewWholeWordMasker(0.5, defaultMaxPredictions, &scriptRand{}, bertSpecials)

	// A continuation piece right after a special token cannot attach to
	// it; it starts a word of its own.
	tokens := []string{"[CLS]", "##ta", "tb", "[SEP]"}
	mask := m.Mask(tokens)

	require.Len(t, mask, 4)
	assert.False(t, mask[0])
	assert.False(t, mask[3])
	// budget = round(4*0.5) = 2: both one-piece words fit.
	assert.True(t, mask[1])
	assert.True(t, mask[2])
}
