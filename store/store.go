// Copyright 2025 The Loom Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package store provides the public API for persisting token chunk
// shards: a streaming writer and a memory-mapped reader.
package store

import (
	"github.com/loom-ml/loom/internal/store"
)

// Header describes a chunk shard file.
type Header = store.Header

// Writer streams token chunks into a shard file.
type Writer = store.Writer

// Reader provides memory-mapped access to a shard file.
type Reader = store.Reader

// Common errors.
var (
	ErrInvalidMagic       = store.ErrInvalidMagic
	ErrUnsupportedVersion = store.ErrUnsupportedVersion
	ErrTruncatedPayload   = store.ErrTruncatedPayload
	ErrChunkSizeMismatch  = store.ErrChunkSizeMismatch
	ErrChunkOutOfRange    = store.ErrChunkOutOfRange
)

// NewWriter creates a shard file for chunks of chunkSize ids.
func NewWriter(path string, chunkSize int, tokenizerName string) (*Writer, error) {
	return store.NewWriter(path, chunkSize, tokenizerName)
}

// OpenReader memory-maps a shard file and validates its header.
func OpenReader(path string) (*Reader, error) {
	return store.OpenReader(path)
}
