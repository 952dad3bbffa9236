package main

import (
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/loom-ml/loom/internal/store"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect SHARD",
		Short: "Show a chunk shard's header and size statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runInspect(args[0])
		},
	}
}

func runInspect(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	r, err := store.OpenReader(path)
	if err != nil {
		return err
	}
	defer r.Close()

	h := r.Header()
	tokens := h.ChunkCount * int64(h.ChunkSize)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Field", "Value"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk([][]string{
		{"path", path},
		{"format version", humanize.Comma(int64(h.Version))},
		{"dtype", h.DType},
		{"tokenizer", h.Tokenizer},
		{"chunk size", humanize.Comma(int64(h.ChunkSize))},
		{"chunks", humanize.Comma(h.ChunkCount)},
		{"tokens", humanize.Comma(tokens)},
		{"file size", humanize.IBytes(uint64(info.Size()))}, //nolint:gosec // G115: file sizes are non-negative.
		{"created", time.Unix(h.CreatedAt, 0).UTC().Format(time.RFC3339)},
	})
	table.Render()
	return nil
}
