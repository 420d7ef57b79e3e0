package core

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/invoice-tracker/constants"
	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/enrich"
	"github.com/joseph-ayodele/invoice-tracker/internal/extract"
	"github.com/joseph-ayodele/invoice-tracker/internal/repository"
)

// Processor coordinates page text extraction, field assembly, enrichment and storage.
type Processor struct {
	logger    *slog.Logger
	assembler *extract.Assembler
	enricher  *enrich.Enricher
	invoices  repository.InvoiceRepository   // optional
	jobs      repository.ExtractJobRepository // optional
	workers   int
	now       func() time.Time
}

type Option func(*Processor)

// WithWorkers bounds how many documents are read at once.
func WithWorkers(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithInvoiceRepository stores every processed row.
func WithInvoiceRepository(r repository.InvoiceRepository) Option {
	return func(p *Processor) { p.invoices = r }
}

// WithJobRepository records an extract_job per document handled by ProcessDocument.
func WithJobRepository(r repository.ExtractJobRepository) Option {
	return func(p *Processor) { p.jobs = r }
}

func NewProcessor(assembler *extract.Assembler, enricher *enrich.Enricher, logger *slog.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		logger:    logger,
		assembler: assembler,
		enricher:  enricher,
		workers:   4,
		now:       time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Batch is the outcome of one ProcessBatch run. Rows and Errors are index-aligned with
// the input paths.
type Batch struct {
	ID       string
	Rows     []enrich.Row
	Errors   []error // *extract.DocumentError for degraded slots, nil otherwise
	OK       int
	Degraded int
	Stored   int
	Elapsed  time.Duration
}

// ProcessBatch reads every path in parallel and returns one row per path, in input order.
// Unreadable documents yield degraded rows rather than errors. The returned error is
// reserved for cancellation and storage failures.
func (p *Processor) ProcessBatch(ctx context.Context, paths []string) (*Batch, error) {
	start := p.now()
	b := &Batch{
		ID:     uuid.NewString(),
		Rows:   make([]enrich.Row, len(paths)),
		Errors: make([]error, len(paths)),
	}
	ctx = common.WithBatchID(ctx, b.ID)
	p.logger.Info("batch started", "batch_id", b.ID, "documents", len(paths), "workers", p.workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			row, err := p.process(gctx, path)
			b.Rows[i] = row
			b.Errors[i] = err
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return b, err
	}

	for _, r := range b.Rows {
		if r.Status == constants.ExtractStatusDegraded {
			b.Degraded++
		} else {
			b.OK++
		}
	}

	if p.invoices != nil && len(b.Rows) > 0 {
		now := p.now()
		invs := make([]repository.Invoice, len(b.Rows))
		for i, r := range b.Rows {
			invs[i] = repository.InvoiceFromRow(r, b.ID, now)
		}
		n, err := p.invoices.UpsertMany(ctx, invs)
		if err != nil {
			return b, common.WrapError(err, "store batch "+b.ID)
		}
		b.Stored = n
	}

	b.Elapsed = p.now().Sub(start)
	p.logger.Info("batch finished",
		"batch_id", b.ID,
		"ok", b.OK,
		"degraded", b.Degraded,
		"stored", b.Stored,
		"elapsed_ms", b.Elapsed.Milliseconds(),
	)
	return b, nil
}

// process assembles and enriches a single document.
func (p *Processor) process(ctx context.Context, path string) (enrich.Row, error) {
	p.logger.Debug("processing file", "file", path)
	rec, err := p.assembler.FromDocument(ctx, path)
	status := constants.ExtractStatusOK
	if err != nil {
		status = constants.ExtractStatusDegraded
		var docErr *extract.DocumentError
		if errors.As(err, &docErr) {
			p.logger.Warn("document unreadable, emitting empty record",
				"file", docErr.Path,
				"batch_id", common.BatchIDFromContext(ctx),
				"error", docErr.Err,
			)
		} else {
			p.logger.Warn("document unreadable, emitting empty record", "file", path, "error", err)
		}
	}
	row := p.enricher.Enrich(rec, status)
	row.SourcePath = path
	return row, err
}

// ProcessDocument handles one document for the daemon: it tracks an extract_job, assembles,
// enriches and stores the row. A degraded document is still stored.
func (p *Processor) ProcessDocument(ctx context.Context, path, contentHash string) (enrich.Row, error) {
	var jobID string
	if p.jobs != nil {
		job, err := p.jobs.Start(ctx, path, contentHash)
		if err != nil {
			return enrich.Row{}, err
		}
		jobID = job.ID
		if err := p.jobs.MarkRunning(ctx, jobID); err != nil {
			return enrich.Row{}, err
		}
	}
	fail := func(err error) (enrich.Row, error) {
		if jobID != "" {
			_ = p.jobs.FinishFailure(context.WithoutCancel(ctx), jobID, err.Error())
		}
		return enrich.Row{}, err
	}

	row, _ := p.process(ctx, path)
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	if p.invoices != nil {
		inv := repository.InvoiceFromRow(row, jobID, p.now())
		if _, err := p.invoices.UpsertMany(ctx, []repository.Invoice{inv}); err != nil {
			return fail(common.WrapError(err, "store "+row.Filename))
		}
	}
	if jobID != "" {
		if err := p.jobs.FinishSuccess(ctx, jobID, row.Status); err != nil {
			return row, err
		}
	}
	p.logger.Info("processed file", "file", row.Filename, "status", row.Status, "job_id", jobID)
	return row, nil
}

// ProcessText assembles and enriches page text supplied directly by a caller.
func (p *Processor) ProcessText(filename, text string, qty any) enrich.Row {
	rec := p.assembler.FromText(filename, text)
	return p.enricher.EnrichQty(rec, constants.ExtractStatusOK, qty)
}
