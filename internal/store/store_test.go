package store

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeShard(t *testing.T, chunks [][]int32) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shard.loom")

	w, err := NewWriter(path, len(chunks[0]), "test-vocab")
	require.NoError(t, err)
	for _, c := range chunks {
		require.NoError(t, w.WriteChunk(c))
	}
	require.NoError(t, w.Close())
	return path
}

func TestWriteReadRoundTrip(t *testing.T) {
	chunks := [][]int32{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{-100, 0, 2147483647, -2147483648},
	}
	path := writeShard(t, chunks)

	r, err := OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 3, r.NumChunks())
	assert.Equal(t, 4, r.ChunkSize())
	assert.Equal(t, "test-vocab", r.Header().Tokenizer)
	assert.Equal(t, "int32", r.Header().DType)

	for i, want := range chunks {
		got, err := r.ChunkAt(i)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err = r.ChunkAt(3)
	assert.ErrorIs(t, err, ErrChunkOutOfRange)
	_, err = r.ChunkAt(-1)
	assert.ErrorIs(t, err, ErrChunkOutOfRange)
}

func TestWriter_ChunkSizeMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shard.loom")
	w, err := NewWriter(path, 4, "")
	require.NoError(t, err)
	defer w.Close()

	err = w.WriteChunk([]int32{1, 2, 3})
	assert.ErrorIs(t, err, ErrChunkSizeMismatch)
}

func TestWriter_InvalidChunkSize(t *testing.T) {
	_, err := NewWriter(filepath.Join(t.TempDir(), "s.loom"), 0, "")
	require.Error(t, err)
}

func TestWriter_ClosedTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shard.loom")
	w, err := NewWriter(path, 2, "")
	require.NoError(t, err)

	require.NoError(t, w.WriteChunk([]int32{1, 2}))
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Close(), ErrWriterClosed)
	assert.ErrorIs(t, w.WriteChunk([]int32{3, 4}), ErrWriterClosed)
}

func TestReader_InvalidMagic(t *testing.T) {
	path := writeShard(t, [][]int32{{1, 2}})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	copy(data[0:4], "NOPE")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	_, err = OpenReader(path)
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestReader_UnsupportedVersion(t *testing.T) {
	path := writeShard(t, [][]int32{{1, 2}})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	binary.LittleEndian.PutUint32(data[4:8], 99)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	_, err = OpenReader(path)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestReader_TruncatedPayload(t *testing.T) {
	path := writeShard(t, [][]int32{{1, 2}, {3, 4}})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data[:len(data)-4], 0o600))

	_, err = OpenReader(path)
	assert.ErrorIs(t, err, ErrTruncatedPayload)
}

func TestReader_TruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.loom")
	require.NoError(t, os.WriteFile(path, []byte("LOOM"), 0o600))

	_, err := OpenReader(path)
	assert.ErrorIs(t, err, ErrTruncatedFile)
}

func TestWriter_EmptyShard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.loom")
	w, err := NewWriter(path, 8, "")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := OpenReader(path)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, 0, r.NumChunks())
}
