// Package corpus discovers and iterates pretraining text corpora.
//
// A corpus is a directory tree of .txt files (one document per file) and
// .jsonl files (one JSON object per line with a "text" key). Documents are
// grouped into fixed-size batches exposing the "text" column the chunking
// processor consumes.
package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Columns is a columnar batch of raw dataset fields.
type Columns map[string][]string

// TextColumn is the column name the pretraining pipeline requires.
const TextColumn = "text"

// Glob recursively finds all .txt and .jsonl files under root, sorted by
// path for deterministic iteration order.
func Glob(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt", ".jsonl":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %q: %w", root, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%q does not contain any .txt or .jsonl files", root)
	}
	sort.Strings(paths)
	return paths, nil
}

// jsonlRecord is one line of a .jsonl corpus file.
type jsonlRecord struct {
	Text string `json:"text"`
}

// Iterator yields documents from a list of corpus files, one at a time.
// A .txt file is one document; a .jsonl file is one document per line.
type Iterator struct {
	paths   []string
	next    int
	file    *os.File
	scanner *bufio.Scanner
}

// NewIterator creates an iterator over the given corpus files.
func NewIterator(paths []string) *Iterator {
	return &Iterator{paths: paths}
}

// Next returns the next document, or io.EOF when the corpus is exhausted.
// Empty documents are skipped.
func (it *Iterator) Next() (string, error) {
	for {
		if it.scanner != nil {
			doc, err := it.nextLine()
			if err == nil {
				if strings.TrimSpace(doc) == "" {
					continue
				}
				return doc, nil
			}
			if err != io.EOF {
				return "", err
			}
			// Fall through to the next file.
		}

		if it.next >= len(it.paths) {
			return "", io.EOF
		}

		path := it.paths[it.next]
		it.next++

		if strings.ToLower(filepath.Ext(path)) == ".txt" {
			//nolint:gosec // G304: Reading corpus files from user-specified paths is intentional.
			data, err := os.ReadFile(path)
			if err != nil {
				return "", fmt.Errorf("failed to read %q: %w", path, err)
			}
			doc := string(data)
			if strings.TrimSpace(doc) == "" {
				continue
			}
			return doc, nil
		}

		//nolint:gosec // G304: Reading corpus files from user-specified paths is intentional.
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("failed to open %q: %w", path, err)
		}
		it.file = f
		it.scanner = bufio.NewScanner(f)
		it.scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	}
}

// nextLine returns the next document of the open .jsonl file, or io.EOF
// once the file is drained (the file is closed before returning io.EOF).
func (it *Iterator) nextLine() (string, error) {
	for it.scanner.Scan() {
		line := strings.TrimSpace(it.scanner.Text())
		if line == "" {
			continue
		}
		var rec jsonlRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			name := it.file.Name()
			it.closeFile()
			return "", fmt.Errorf("malformed jsonl line in %q: %w", name, err)
		}
		return rec.Text, nil
	}
	err := it.scanner.Err()
	it.closeFile()
	if err != nil {
		return "", fmt.Errorf("failed to scan corpus file: %w", err)
	}
	return "", io.EOF
}

func (it *Iterator) closeFile() {
	if it.file != nil {
		_ = it.file.Close()
	}
	it.file = nil
	it.scanner = nil
}

// Close releases any open corpus file.
func (it *Iterator) Close() error {
	if it.file != nil {
		err := it.file.Close()
		it.file = nil
		it.scanner = nil
		return err
	}
	return nil
}

// Batcher groups documents from an iterator into fixed-size text batches.
type Batcher struct {
	it   *Iterator
	size int
}

// NewBatcher creates a batcher emitting batches of at most size documents.
func NewBatcher(it *Iterator, size int) (*Batcher, error) {
	if size <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", size)
	}
	return &Batcher{it: it, size: size}, nil
}

// Next returns the next batch as a Columns with the "text" column filled,
// or io.EOF when the corpus is exhausted. The final batch may be short.
func (b *Batcher) Next() (Columns, error) {
	texts := make([]string, 0, b.size)
	for len(texts) < b.size {
		doc, err := b.it.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		texts = append(texts, doc)
	}
	if len(texts) == 0 {
		return nil, io.EOF
	}
	return Columns{TextColumn: texts}, nil
}
