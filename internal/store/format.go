// Package store persists token chunk shards produced by the chunking
// processor.
//
// File layout:
//
//	[0, 4)    magic bytes "LOOM"
//	[4, 8)    format version (uint32, little-endian)
//	[8, 16)   CBOR header length (uint64, little-endian)
//	[16, 512) CBOR-encoded Header, zero-padded
//	[512, …)  payload: chunk_count × chunk_size int32 ids, little-endian
//
// The header region is fixed-size so the payload can be streamed while
// writing and the final chunk count patched in at close.
package store

// Format constants.
const (
	MagicBytes    = "LOOM"
	FormatVersion = 1

	// headerRegionSize reserves room for the prefix plus CBOR header.
	headerRegionSize = 512
	// prefixSize covers magic, version, and header length.
	prefixSize = 16

	// idSize is the byte width of one token id in the payload.
	idSize = 4
)

// Header describes a chunk shard file.
type Header struct {
	Version    int    `cbor:"version"`
	ChunkSize  int    `cbor:"chunk_size"`
	ChunkCount int64  `cbor:"chunk_count"`
	DType      string `cbor:"dtype"`
	Tokenizer  string `cbor:"tokenizer"`
	CreatedAt  int64  `cbor:"created_at"` // Unix seconds
}
