package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/loom-ml/loom/internal/parallel"
	"github.com/loom-ml/loom/internal/pretrain"
	"github.com/loom-ml/loom/internal/store"
	"github.com/loom-ml/loom/internal/tensor"
	"github.com/loom-ml/loom/internal/tokenizer"
)

func newCollateCmd() *cobra.Command {
	var (
		tokenizerPath  string
		batchSize      int
		mlmProbability float64
		padMultiple    int
		world          int
		rank           int
	)

	cmd := &cobra.Command{
		Use:   "collate SHARD",
		Short: "Collate shard chunks into one training batch and print it",
		Long: `Collate reads the first batch of chunks from a shard, builds
whole-word-masked sentence-order examples, and prints the resulting
field tensors. Useful for eyeballing masking and sharding behavior
before a training run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runCollate(args[0], tokenizerPath, batchSize, mlmProbability, padMultiple, world, rank)
		},
	}

	cmd.Flags().StringVarP(&tokenizerPath, "tokenizer", "t", "", "tokenizer vocab file, directory, or tiktoken encoding name")
	cmd.Flags().IntVarP(&batchSize, "batch-size", "b", 4, "chunks per batch")
	cmd.Flags().Float64VarP(&mlmProbability, "mlm-probability", "p", 0.15, "fraction of tokens to mask")
	cmd.Flags().IntVarP(&padMultiple, "pad-multiple", "m", 0, "pad sequence length to a multiple of this (0 disables)")
	cmd.Flags().IntVarP(&world, "world", "w", 0, "sequence-parallel group size (0 disables sharding)")
	cmd.Flags().IntVarP(&rank, "rank", "r", 0, "this worker's rank within the sequence-parallel group")
	_ = cmd.MarkFlagRequired("tokenizer")

	return cmd
}

func runCollate(shardPath, tokenizerPath string, batchSize int, mlmProbability float64, padMultiple, world, rank int) error {
	tok, err := tokenizer.AutoLoad(tokenizerPath)
	if err != nil {
		return fmt.Errorf("failed to load tokenizer: %w", err)
	}

	r, err := store.OpenReader(shardPath)
	if err != nil {
		return err
	}
	defer r.Close()

	proc, err := pretrain.NewProcessor(tok, r.ChunkSize()+3)
	if err != nil {
		return err
	}

	opts := []pretrain.CollatorOption{}
	if padMultiple > 0 {
		opts = append(opts, pretrain.WithPadToMultipleOf(padMultiple))
	}
	if world > 0 {
		group, err := parallel.NewSequenceGroup(rank, world)
		if err != nil {
			return err
		}
		opts = append(opts, pretrain.WithParallelContext(group))
	}

	coll, err := pretrain.NewCollator(proc, mlmProbability, opts...)
	if err != nil {
		return err
	}

	n := batchSize
	if n > r.NumChunks() {
		n = r.NumChunks()
	}
	chunks := make([]pretrain.Chunk, n)
	for i := range chunks {
		chunk, err := r.ChunkAt(i)
		if err != nil {
			return err
		}
		chunks[i] = chunk
	}

	batch, err := coll.Collate(chunks)
	if err != nil {
		return err
	}

	printBatch(batch)
	return nil
}

// printBatch renders each field's shape and first row, fields sorted by
// name so output is stable.
func printBatch(batch pretrain.Batch) {
	names := make([]string, 0, len(batch))
	for name := range batch {
		names = append(names, name)
	}
	sort.Strings(names)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Field", "Shape", "Row 0"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, name := range names {
		t := batch[name]
		table.Append([]string{name, formatShape(t.Shape()), formatRow(t)})
	}
	table.Render()
}

func formatShape(s tensor.Shape) string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = strconv.Itoa(d)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

const previewWidth = 16

func formatRow(t *tensor.Tensor[int32]) string {
	var row []int32
	if t.Dims() == 1 {
		row = t.Data()
	} else {
		row = t.Row(0)
	}

	truncated := false
	if len(row) > previewWidth {
		row = row[:previewWidth]
		truncated = true
	}
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = strconv.FormatInt(int64(v), 10)
	}
	out := strings.Join(parts, " ")
	if truncated {
		out += " …"
	}
	return out
}
