package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/loom-ml/loom/internal/corpus"
	"github.com/loom-ml/loom/internal/pretrain"
	"github.com/loom-ml/loom/internal/store"
	"github.com/loom-ml/loom/internal/tokenizer"
)

func newTokenizeCmd() *cobra.Command {
	var (
		tokenizerPath string
		maxLength     int
		batchSize     int
		outPath       string
	)

	cmd := &cobra.Command{
		Use:   "tokenize CORPUS_DIR",
		Short: "Tokenize a text corpus into a chunk shard",
		Long: `Tokenize recursively reads .txt and .jsonl files under CORPUS_DIR,
concatenates the token ids of all documents (separator-joined), and
writes fixed-size chunks of max-length minus 3 ids to a shard file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokenize(cmd, args[0], tokenizerPath, outPath, maxLength, batchSize)
		},
	}

	cmd.Flags().StringVarP(&tokenizerPath, "tokenizer", "t", "", "tokenizer vocab file, directory, or tiktoken encoding name")
	cmd.Flags().IntVarP(&maxLength, "max-length", "l", 512, "maximum sequence length after special tokens")
	cmd.Flags().IntVarP(&batchSize, "batch-size", "b", 256, "documents tokenized per batch")
	cmd.Flags().StringVarP(&outPath, "out", "o", "chunks.loom", "output shard path")
	_ = cmd.MarkFlagRequired("tokenizer")

	return cmd
}

func runTokenize(cmd *cobra.Command, corpusDir, tokenizerPath, outPath string, maxLength, batchSize int) error {
	start := time.Now()

	tok, err := tokenizer.AutoLoad(tokenizerPath)
	if err != nil {
		return fmt.Errorf("failed to load tokenizer: %w", err)
	}

	proc, err := pretrain.NewProcessor(tok, maxLength)
	if err != nil {
		return err
	}

	paths, err := corpus.Glob(corpusDir)
	if err != nil {
		return err
	}
	slog.Debug("discovered corpus", "files", len(paths), "dir", corpusDir)

	it := corpus.NewIterator(paths)
	defer it.Close()
	batcher, err := corpus.NewBatcher(it, batchSize)
	if err != nil {
		return err
	}

	w, err := store.NewWriter(outPath, proc.ChunkSize(), filepath.Base(tokenizerPath))
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("tokenizing"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("docs"),
		progressbar.OptionShowIts(),
		progressbar.OptionClearOnFinish(),
	)

	// Three stages: read document batches, chunk them, append to the
	// shard. The processor owns the chunking state, so stage two is a
	// single goroutine; tokenization still fans out inside Process.
	g, ctx := errgroup.WithContext(cmd.Context())
	batches := make(chan corpus.Columns, 4)
	chunks := make(chan pretrain.Chunk, 1024)

	g.Go(func() error {
		defer close(batches)
		for {
			batch, err := batcher.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			select {
			case batches <- batch:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	g.Go(func() error {
		defer close(chunks)
		for batch := range batches {
			out, err := proc.Process(batch)
			if err != nil {
				return err
			}
			_ = bar.Add(len(batch[corpus.TextColumn]))
			for _, chunk := range out {
				select {
				case chunks <- chunk:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
		return nil
	})

	g.Go(func() error {
		for chunk := range chunks {
			if err := w.WriteChunk(chunk); err != nil {
				return err
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		_ = w.Close()
		return err
	}
	_ = bar.Finish()

	written := w.ChunkCount()
	if err := w.Close(); err != nil {
		return err
	}

	tokens := written * int64(proc.ChunkSize())
	slog.Info("wrote shard",
		"path", outPath,
		"chunks", humanize.Comma(written),
		"tokens", humanize.Comma(tokens),
		"leftover", proc.Buffered(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	if proc.Buffered() > 0 {
		slog.Debug("trailing partial chunk dropped", "ids", proc.Buffered())
	}
	return nil
}
