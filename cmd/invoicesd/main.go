package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/joseph-ayodele/invoice-tracker/internal/catalog"
	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/core"
	"github.com/joseph-ayodele/invoice-tracker/internal/core/async"
	"github.com/joseph-ayodele/invoice-tracker/internal/enrich"
	"github.com/joseph-ayodele/invoice-tracker/internal/extract"
	"github.com/joseph-ayodele/invoice-tracker/internal/ingest"
	"github.com/joseph-ayodele/invoice-tracker/internal/pagetext"
	"github.com/joseph-ayodele/invoice-tracker/internal/profit"
	repo "github.com/joseph-ayodele/invoice-tracker/internal/repository"
	"github.com/joseph-ayodele/invoice-tracker/internal/server"
)

func main() {
	cfg, err := common.LoadConfig()
	if err == nil {
		err = cfg.Validate()
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	logger = common.NewLogger(os.Stdout, cfg.Log)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repo.Open(ctx, repo.ConfigFrom(cfg.Database), logger)
	if err != nil {
		logger.Error("opening DB", "error", err)
		os.Exit(1)
	}
	defer db.Close(logger)

	if err := db.HealthCheck(ctx, 3*time.Second, logger); err != nil {
		logger.Error("DB health failed", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(ctx); err != nil {
		logger.Error("migrating DB", "error", err)
		os.Exit(1)
	}
	logger.Info("DB health OK", "driver", cfg.Database.Driver)

	products, err := catalog.Default()
	if cfg.Extract.CatalogPath != "" {
		products, err = catalog.Load(cfg.Extract.CatalogPath)
	}
	if err != nil {
		logger.Error("loading catalog", "error", err)
		os.Exit(1)
	}
	quantities, err := enrich.LoadQuantities(cfg.Extract.QtyPath)
	if err != nil {
		logger.Error("loading quantities", "error", err)
		os.Exit(1)
	}

	invoices := repo.NewInvoiceRepository(db, logger)
	source := extract.NewPageTextAdapter(pagetext.NewExtractor(pagetext.Config{
		Pdftotext:       cfg.Extract.Pdftotext,
		Page:            cfg.Extract.Page,
		DisableFallback: cfg.Extract.DisableFallback,
	}, logger))
	processor := core.NewProcessor(
		extract.NewAssembler(source, logger),
		enrich.NewEnricher(profit.NewCalculator(products, profit.WithLogger(logger)), quantities, logger),
		logger,
		core.WithWorkers(cfg.Extract.Workers),
		core.WithInvoiceRepository(invoices),
		core.WithJobRepository(repo.NewExtractJobRepository(db, logger)),
	)

	queue := async.NewProcessorQueue(processor, logger,
		async.WithWorkers(cfg.Extract.Workers),
		async.WithQueueSize(cfg.Extract.QueueSize),
		async.WithProcessTimeout(cfg.Extract.ProcessTimeout),
	)
	scanner := ingest.NewFSScanner(logger)

	if cfg.Extract.WatchDir != "" {
		if err := watch(ctx, cfg.Extract.WatchDir, scanner, queue, logger); err != nil {
			logger.Error("starting watcher", "dir", cfg.Extract.WatchDir, "error", err)
			os.Exit(1)
		}
	}

	svc := server.NewInvoiceService(processor, invoices, scanner, queue, logger)
	grpcServer, hs := server.NewGRPCServer(svc, cfg.Server, logger)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("listen", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	logger.Info("gRPC serving", "addr", lis.Addr().String())

	serveErr := make(chan error, 1)
	go func() { serveErr <- grpcServer.Serve(lis) }()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Error("grpc serve", "error", err)
		}
	}

	logger.Info("shutting down...")
	hs.Shutdown()
	grpcServer.GracefulStop()

	drainCtx, cancel := context.WithTimeout(context.Background(), cfg.Extract.ProcessTimeout)
	defer cancel()
	queue.Shutdown(drainCtx)
	logger.Info("stopped")
}

// watch feeds files appearing under dir into the queue until ctx is done.
func watch(ctx context.Context, dir string, scanner ingest.Scanner, queue async.Queue, logger *slog.Logger) error {
	paths, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{dir},
		InitialScan: true,
		SkipHidden:  true,
		Debounce:    500 * time.Millisecond,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	logger.Info("watching for invoices", "dir", dir)

	go func() {
		for e := range errs {
			logger.Warn("watcher error", "error", e)
		}
	}()
	go func() {
		for p := range paths {
			doc, err := scanner.ScanPath(ctx, p)
			if err != nil {
				logger.Warn("skipping file", "path", p, "error", err)
				continue
			}
			if err := queue.Enqueue(ctx, async.Job{Path: doc.SourcePath, ContentHash: doc.HashHex}); err != nil {
				logger.Warn("enqueue failed", "path", p, "error", err)
			}
		}
	}()
	return nil
}
