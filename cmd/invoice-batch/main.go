package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/joseph-ayodele/invoice-tracker/internal/catalog"
	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/core"
	"github.com/joseph-ayodele/invoice-tracker/internal/enrich"
	"github.com/joseph-ayodele/invoice-tracker/internal/export"
	"github.com/joseph-ayodele/invoice-tracker/internal/extract"
	"github.com/joseph-ayodele/invoice-tracker/internal/ingest"
	"github.com/joseph-ayodele/invoice-tracker/internal/pagetext"
	"github.com/joseph-ayodele/invoice-tracker/internal/profit"
	"github.com/joseph-ayodele/invoice-tracker/internal/report"
	repo "github.com/joseph-ayodele/invoice-tracker/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		printError("Error: loading config: %v\n", err)
		os.Exit(1)
	}

	var (
		dir     = flag.String("dir", "", "directory of invoice PDFs (required)")
		page    = flag.Int("page", cfg.Extract.Page, "1-based page holding the invoice")
		out     = flag.String("out", cfg.Report.CSVPath, "output CSV path (defaults to <dir>/invoices.csv)")
		xlsx    = flag.String("xlsx", cfg.Report.XLSXPath, "optional XLSX workbook with report sheets")
		qtyPath = flag.String("qty", cfg.Extract.QtyPath, "optional CSV of Order Number,Qty")
		catPath = flag.String("catalog", cfg.Extract.CatalogPath, "product catalog JSON (defaults to the embedded one)")
		workers = flag.Int("workers", cfg.Extract.Workers, "parallel document readers")
		persist = flag.Bool("db", false, "upsert rows into the configured database")
		inmem   = flag.Bool("inmem", false, "use an in-memory SQLite database (implies -db)")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(*dir, "invoices.csv")
	}
	cfg.Extract.Page = *page
	cfg.Extract.Workers = *workers
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	logger := common.NewLogger(os.Stderr, cfg.Log)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cat, err := loadCatalog(*catPath)
	if err != nil {
		logger.Error("failed to load catalog", "path", *catPath, "error", err)
		os.Exit(1)
	}
	quantities, err := enrich.LoadQuantities(*qtyPath)
	if err != nil {
		logger.Error("failed to load quantities", "path", *qtyPath, "error", err)
		os.Exit(1)
	}

	source := extract.NewPageTextAdapter(pagetext.NewExtractor(pagetext.Config{
		Pdftotext:       cfg.Extract.Pdftotext,
		Page:            cfg.Extract.Page,
		DisableFallback: cfg.Extract.DisableFallback,
	}, logger))
	enricher := enrich.NewEnricher(profit.NewCalculator(cat, profit.WithLogger(logger)), quantities, logger)

	opts := []core.Option{core.WithWorkers(cfg.Extract.Workers)}
	if *persist || *inmem {
		var db *repo.DB
		if *inmem {
			db, err = repo.OpenInMemory(ctx, logger)
		} else {
			db, err = repo.Open(ctx, repo.ConfigFrom(cfg.Database), logger)
		}
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close(logger)
		if err := db.Migrate(ctx); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		opts = append(opts, core.WithInvoiceRepository(repo.NewInvoiceRepository(db, logger)))
	}
	processor := core.NewProcessor(extract.NewAssembler(source, logger), enricher, logger, opts...)

	scanner := ingest.NewFSScanner(logger)
	docs, stats, err := scanner.ScanDirectory(ctx, *dir, true)
	if err != nil {
		logger.Error("failed to scan directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	logger.Info("scan complete",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"deduplicated", stats.Deduplicated)

	paths := batchPaths(docs, logger)
	if len(paths) == 0 {
		printError("No invoice files found in %s\n", *dir)
		os.Exit(1)
	}

	batch, err := processor.ProcessBatch(ctx, paths)
	if err != nil {
		logger.Error("batch failed", "error", err)
		os.Exit(1)
	}

	exporter := export.NewService(logger)
	if err := exporter.WriteCSVFile(*out, batch.Rows); err != nil {
		logger.Error("failed to write CSV", "path", *out, "error", err)
		os.Exit(1)
	}
	rep := report.Build(batch.Rows)
	if *xlsx != "" {
		if err := exporter.WriteXLSXFile(*xlsx, batch.Rows, rep); err != nil {
			logger.Error("failed to write XLSX", "path", *xlsx, "error", err)
			os.Exit(1)
		}
	}

	logger.Info("batch processing complete",
		"batch_id", batch.ID,
		"files", len(batch.Rows),
		"ok", batch.OK,
		"degraded", batch.Degraded,
		"stored", batch.Stored,
		"elapsed", batch.Elapsed)

	printSummary(os.Stdout, batch.Rows)
	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files processed: %d\n", len(batch.Rows))
	fmt.Printf("- Degraded: %d\n", batch.Degraded)
	fmt.Printf("- Revenue: %s\n", rep.Overview.TotalRevenue.StringFixed(2))
	fmt.Printf("- Profit: %s\n", rep.Overview.TotalProfit.StringFixed(2))
	fmt.Printf("- Output: %s\n", *out)
	if *xlsx != "" {
		fmt.Printf("- Workbook: %s\n", *xlsx)
	}
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}
