package store

import "errors"

// Common errors.
var (
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrHeaderTooLarge     = errors.New("header exceeds reserved region")
	ErrTruncatedFile      = errors.New("file smaller than header region")
	ErrTruncatedPayload   = errors.New("payload does not match declared chunk count")
	ErrChunkSizeMismatch  = errors.New("chunk length does not match shard chunk size")
	ErrChunkOutOfRange    = errors.New("chunk index out of range")
	ErrWriterClosed       = errors.New("writer already closed")
)
