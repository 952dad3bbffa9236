package pretrain

import (
	"fmt"
	"strconv"
	"strings"
)

// fakeTokenizer maps whitespace-separated integers directly to token ids,
// giving tests exact control over token counts. Special ids follow the
// BERT vocabulary head: [PAD]=0, [UNK]=1, [CLS]=2, [SEP]=3, [MASK]=4.
// Ids >= 500 render as "##"-continuation token strings.
type fakeTokenizer struct{}

func (fakeTokenizer) Encode(text string) ([]int32, error) {
	fields := strings.Fields(text)
	ids := make([]int32, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("fake tokenizer expects integers, got %q", f)
		}
		ids[i] = int32(v)
	}
	return ids, nil
}

func (t fakeTokenizer) Decode(ids []int32) (string, error) {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(int(id))
	}
	return strings.Join(parts, " "), nil
}

func (fakeTokenizer) VocabSize() int { return 1000 }

func (fakeTokenizer) ClsToken() int32  { return 2 }
func (fakeTokenizer) SepToken() int32  { return 3 }
func (fakeTokenizer) PadToken() int32  { return 0 }
func (fakeTokenizer) MaskToken() int32 { return 4 }
func (fakeTokenizer) UnkToken() int32  { return 1 }

func (fakeTokenizer) IsSpecialToken(id int32) bool { return id >= 0 && id <= 4 }

func (fakeTokenizer) BuildPairWithSpecialTokens(a, b []int32) []int32 {
	out := make([]int32, 0, len(a)+len(b)+3)
	out = append(out, 2)
	out = append(out, a...)
	out = append(out, 3)
	out = append(out, b...)
	out = append(out, 3)
	return out
}

func (fakeTokenizer) PairTokenTypeIDs(a, b []int32) []int32 {
	out := make([]int32, len(a)+len(b)+3)
	for i := len(a) + 2; i < len(out); i++ {
		out[i] = 1
	}
	return out
}

func (fakeTokenizer) ConvertIDsToTokens(ids []int32) []string {
	tokens := make([]string, len(ids))
	for i, id := range ids {
		switch id {
		case 0:
			tokens[i] = "[PAD]"
		case 1:
			tokens[i] = "[UNK]"
		case 2:
			tokens[i] = "[CLS]"
		case 3:
			tokens[i] = "[SEP]"
		case 4:
			tokens[i] = "[MASK]"
		default:
			if id >= 500 {
				tokens[i] = "##t" + strconv.Itoa(int(id))
			} else {
				tokens[i] = "t" + strconv.Itoa(int(id))
			}
		}
	}
	return tokens
}

// scriptRand replays scripted draws, cycling when exhausted. Shuffle is a
// no-op so candidate order stays deterministic.
type scriptRand struct {
	ints   []int
	floats []float64
	ip, fp int
}

func (r *scriptRand) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[r.ip%len(r.ints)]
	r.ip++
	return v % n
}

func (r *scriptRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.99
	}
	v := r.floats[r.fp%len(r.floats)]
	r.fp++
	return v
}

func (r *scriptRand) Shuffle(int, func(i, j int)) {}

// fixedMasker flags a fixed set of positions regardless of content.
type fixedMasker struct {
	positions []int
}

func (m fixedMasker) Mask(tokens []string) []bool {
	mask := make([]bool, len(tokens))
	for _, p := range m.positions {
		if p < len(mask) {
			mask[p] = true
		}
	}
	return mask
}

// badMasker returns a wrong-length vector to trigger schema validation.
type badMasker struct{}

func (badMasker) Mask(tokens []string) []bool {
	return make([]bool, len(tokens)+1)
}

// seqText renders "from from+1 ... to" for the fake tokenizer.
func seqText(from, to int) string {
	parts := make([]string, 0, to-from+1)
	for v := from; v <= to; v++ {
		parts = append(parts, strconv.Itoa(v))
	}
	return strings.Join(parts, " ")
}

// seqChunk builds a chunk of consecutive ids [from, to].
func seqChunk(from, to int32) Chunk {
	out := make(Chunk, 0, to-from+1)
	for v := from; v <= to; v++ {
		out = append(out, v)
	}
	return out
}
