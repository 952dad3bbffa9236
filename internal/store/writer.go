package store

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Writer streams token chunks into a shard file. Chunks are appended to
// the payload as they arrive; the header (including the final chunk
// count) is written into the reserved region at Close.
type Writer struct {
	file    *os.File
	buf     *bufio.Writer
	header  Header
	scratch []byte
	closed  bool
}

// NewWriter creates a shard file at path for chunks of chunkSize ids.
// tokenizerName records which tokenizer produced the ids.
//
// Always call Close to finalize the header (use defer).
func NewWriter(path string, chunkSize int, tokenizerName string) (*Writer, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}

	//nolint:gosec // G304: Writing shards to user-specified paths is intentional.
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create shard file: %w", err)
	}

	// Reserve the header region; the payload starts right after it.
	if _, err := file.Write(make([]byte, headerRegionSize)); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to reserve header region: %w", err)
	}

	return &Writer{
		file: file,
		buf:  bufio.NewWriterSize(file, 1<<20),
		header: Header{
			Version:   FormatVersion,
			ChunkSize: chunkSize,
			DType:     "int32",
			Tokenizer: tokenizerName,
			CreatedAt: time.Now().Unix(),
		},
		scratch: make([]byte, chunkSize*idSize),
	}, nil
}

// WriteChunk appends one chunk to the payload.
// The chunk length must equal the shard's chunk size.
func (w *Writer) WriteChunk(chunk []int32) error {
	if w.closed {
		return ErrWriterClosed
	}
	if len(chunk) != w.header.ChunkSize {
		return fmt.Errorf("%w: got %d, want %d", ErrChunkSizeMismatch, len(chunk), w.header.ChunkSize)
	}

	for i, id := range chunk {
		binary.LittleEndian.PutUint32(w.scratch[i*idSize:], uint32(id)) //nolint:gosec // G115: ids round-trip through uint32.
	}
	if _, err := w.buf.Write(w.scratch); err != nil {
		return fmt.Errorf("failed to write chunk: %w", err)
	}
	w.header.ChunkCount++
	return nil
}

// ChunkCount returns the number of chunks written so far.
func (w *Writer) ChunkCount() int64 {
	return w.header.ChunkCount
}

// Close flushes the payload, writes the finalized header, and closes the
// file.
func (w *Writer) Close() error {
	if w.closed {
		return ErrWriterClosed
	}
	w.closed = true

	if err := w.buf.Flush(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("failed to flush payload: %w", err)
	}

	headerBytes, err := cbor.Marshal(w.header)
	if err != nil {
		_ = w.file.Close()
		return fmt.Errorf("failed to encode header: %w", err)
	}
	if prefixSize+len(headerBytes) > headerRegionSize {
		_ = w.file.Close()
		return fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, len(headerBytes))
	}

	region := make([]byte, headerRegionSize)
	copy(region[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(region[4:8], FormatVersion)
	binary.LittleEndian.PutUint64(region[8:16], uint64(len(headerBytes)))
	copy(region[prefixSize:], headerBytes)

	if _, err := w.file.WriteAt(region, 0); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}

	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close shard file: %w", err)
	}
	return nil
}
