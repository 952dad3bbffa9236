package store

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/fxamacker/cbor/v2"
)

// Reader provides memory-mapped access to a chunk shard file. Only the
// header is parsed eagerly; chunk payloads are served on demand from the
// OS page cache.
//
// Always call Close to unmap the file (use defer).
type Reader struct {
	file    *os.File
	data    mmap.MMap
	header  Header
	payload []byte
}

// OpenReader memory-maps a shard file and validates its header.
func OpenReader(path string) (*Reader, error) {
	//nolint:gosec // G304: Reading shards from user-specified paths is intentional.
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open shard file: %w", err)
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("mmap failed: %w", err)
	}

	r := &Reader{file: file, data: data}
	if err := r.parseHeader(); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}
	return r, nil
}

func (r *Reader) parseHeader() error {
	if len(r.data) < headerRegionSize {
		return fmt.Errorf("%w: %d bytes", ErrTruncatedFile, len(r.data))
	}
	if string(r.data[0:4]) != MagicBytes {
		return ErrInvalidMagic
	}

	version := binary.LittleEndian.Uint32(r.data[4:8])
	if version != FormatVersion {
		return fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	headerLen := binary.LittleEndian.Uint64(r.data[8:16])
	if prefixSize+headerLen > headerRegionSize {
		return fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerLen)
	}

	if err := cbor.Unmarshal(r.data[prefixSize:prefixSize+headerLen], &r.header); err != nil {
		return fmt.Errorf("failed to decode header: %w", err)
	}
	if r.header.ChunkSize <= 0 || r.header.ChunkCount < 0 {
		return fmt.Errorf("invalid header: chunk_size %d, chunk_count %d", r.header.ChunkSize, r.header.ChunkCount)
	}

	r.payload = r.data[headerRegionSize:]
	want := r.header.ChunkCount * int64(r.header.ChunkSize) * idSize
	if int64(len(r.payload)) != want {
		return fmt.Errorf("%w: have %d bytes, want %d", ErrTruncatedPayload, len(r.payload), want)
	}
	return nil
}

// Header returns the shard's header.
func (r *Reader) Header() Header {
	return r.header
}

// NumChunks returns the number of chunks in the shard.
func (r *Reader) NumChunks() int {
	return int(r.header.ChunkCount)
}

// ChunkSize returns the length of every chunk in the shard.
func (r *Reader) ChunkSize() int {
	return r.header.ChunkSize
}

// ChunkAt returns a copy of the i-th chunk's token ids.
func (r *Reader) ChunkAt(i int) ([]int32, error) {
	if i < 0 || int64(i) >= r.header.ChunkCount {
		return nil, fmt.Errorf("%w: %d of %d", ErrChunkOutOfRange, i, r.header.ChunkCount)
	}

	size := r.header.ChunkSize
	start := i * size * idSize
	chunk := make([]int32, size)
	for j := range chunk {
		chunk[j] = int32(binary.LittleEndian.Uint32(r.payload[start+j*idSize:])) //nolint:gosec // G115: ids round-trip through uint32.
	}
	return chunk, nil
}

// Close unmaps and closes the shard file.
func (r *Reader) Close() error {
	var firstErr error
	if r.data != nil {
		if err := r.data.Unmap(); err != nil {
			firstErr = fmt.Errorf("failed to unmap shard: %w", err)
		}
		r.data = nil
	}
	if r.file != nil {
		if err := r.file.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close shard file: %w", err)
		}
		r.file = nil
	}
	return firstErr
}
