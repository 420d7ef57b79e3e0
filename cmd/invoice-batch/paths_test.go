package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-tracker/constants"
	"github.com/joseph-ayodele/invoice-tracker/internal/catalog"
	"github.com/joseph-ayodele/invoice-tracker/internal/core"
	"github.com/joseph-ayodele/invoice-tracker/internal/enrich"
	"github.com/joseph-ayodele/invoice-tracker/internal/extract"
	"github.com/joseph-ayodele/invoice-tracker/internal/ingest"
	"github.com/joseph-ayodele/invoice-tracker/internal/pagetext"
	"github.com/joseph-ayodele/invoice-tracker/internal/profit"
)

const invoiceText = `Order Number: 404-1111111-0000001
Order Date: 05.01.2025
Place of Delivery: Karnataka
Invoice Number : IN-1
Description
1
Cashew Nuts, 1kg | Whole Cashews | B0FW7291VR ( MS-H2GY-GWJX )
HSN:08013220
TOTAL:
Invoice Value: 1,380.00
`

func TestBatchKeepsUnreadableFiles(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte(invoiceText), 0o644))
	if err := os.Symlink(filepath.Join(dir, "missing.pdf"), filepath.Join(dir, "b.pdf")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.pdf"), []byte("garbage bytes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.docx"), []byte("ignored"), 0o644))

	docs, stats, err := ingest.NewFSScanner(logger).ScanDirectory(ctx, dir, true)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), stats.Failed)

	paths := batchPaths(docs, logger)
	require.Len(t, paths, 3)

	cat, err := catalog.Default()
	require.NoError(t, err)
	source := extract.NewPageTextAdapter(pagetext.NewExtractor(pagetext.Config{DisableFallback: true}, logger))
	enricher := enrich.NewEnricher(profit.NewCalculator(cat, profit.WithLogger(logger)), nil, logger)
	batch, err := core.NewProcessor(extract.NewAssembler(source, logger), enricher, logger).ProcessBatch(ctx, paths)
	require.NoError(t, err)

	require.Len(t, batch.Rows, 3)
	assert.Equal(t, 1, batch.OK)
	assert.Equal(t, 2, batch.Degraded)

	byName := map[string]enrich.Row{}
	for _, r := range batch.Rows {
		byName[r.Filename] = r
	}
	require.Contains(t, byName, "b.pdf")
	assert.Equal(t, constants.ExtractStatusDegraded, byName["b.pdf"].Status)
	assert.Empty(t, byName["b.pdf"].OrderNumber)
	assert.Equal(t, constants.ExtractStatusDegraded, byName["c.pdf"].Status)
	assert.Equal(t, "404-1111111-0000001", byName["a.txt"].OrderNumber)
}

func TestBatchPathsSkipsUnreadableNonInvoices(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	docs := []ingest.Document{
		{SourcePath: "/in/a.pdf", HashHex: "x"},
		{SourcePath: "/in/locked", Err: "permission denied"},
		{SourcePath: "/in/b.pdf", Err: "permission denied"},
		{SourcePath: "/in/c.pdf", HashHex: "x", Deduplicated: true},
	}
	assert.Equal(t, []string{"/in/a.pdf", "/in/b.pdf", "/in/c.pdf"}, batchPaths(docs, logger))
}
