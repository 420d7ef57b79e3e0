package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/core"
	"github.com/joseph-ayodele/invoice-tracker/internal/core/async"
	"github.com/joseph-ayodele/invoice-tracker/internal/ingest"
	"github.com/joseph-ayodele/invoice-tracker/internal/report"
	"github.com/joseph-ayodele/invoice-tracker/internal/repository"
)

const maxListLimit = 1000

type InvoiceService struct {
	processor *core.Processor
	invoices  repository.InvoiceRepository
	scanner   ingest.Scanner
	queue     async.Queue
	logger    *slog.Logger
}

// NewInvoiceService wires the service. scanner and queue may be nil, in which case
// IngestPath reports FailedPrecondition.
func NewInvoiceService(proc *core.Processor, invoices repository.InvoiceRepository, scanner ingest.Scanner, queue async.Queue, logger *slog.Logger) *InvoiceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &InvoiceService{
		processor: proc,
		invoices:  invoices,
		scanner:   scanner,
		queue:     queue,
		logger:    logger,
	}
}

// ExtractText assembles a record from page text supplied by the caller.
// Request: {filename, text, qty?}. Response: {record, qty, profit, state, date_time}.
func (s *InvoiceService) ExtractText(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := req.GetFields()
	text := f["text"].GetStringValue()
	if err := common.ValidateAndReturnError(common.NewValidator().Field("text", text, common.Required)); err != nil {
		s.logger.Error("invalid extract text request", "error", err)
		return nil, err
	}
	filename := strings.TrimSpace(f["filename"].GetStringValue())
	if filename == "" {
		filename = "inline.txt"
	}

	var qty any
	if v, ok := f["qty"]; ok {
		switch k := v.GetKind().(type) {
		case *structpb.Value_NumberValue:
			qty = k.NumberValue
		case *structpb.Value_StringValue:
			qty = k.StringValue
		}
	}

	row := s.processor.ProcessText(filename, text, qty)
	s.logger.Info("extracted text", "filename", filename, "request_id", common.RequestIDFromContext(ctx), "profit", row.Profit.StringFixed(2))
	return respond(rowMap(row))
}

// ListInvoices returns stored rows. Request: {state?, status?, batch_id?, limit?, offset?}.
func (s *InvoiceService) ListInvoices(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := req.GetFields()
	filter := repository.InvoiceFilter{
		State:   strings.ToUpper(strings.TrimSpace(f["state"].GetStringValue())),
		Status:  strings.ToUpper(strings.TrimSpace(f["status"].GetStringValue())),
		BatchID: strings.TrimSpace(f["batch_id"].GetStringValue()),
		Limit:   int(f["limit"].GetNumberValue()),
		Offset:  int(f["offset"].GetNumberValue()),
	}
	v := common.NewValidator().
		Field("limit", filter.Limit, common.NonNegative).
		Field("offset", filter.Offset, common.NonNegative)
	if err := common.ValidateAndReturnError(v); err != nil {
		s.logger.Error("invalid list request", "error", err)
		return nil, err
	}
	if filter.Limit == 0 || filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}

	invs, err := s.invoices.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list invoices", "error", err)
		return nil, common.ToStatus(err)
	}
	total, err := s.invoices.Count(ctx, repository.InvoiceFilter{State: filter.State, Status: filter.Status, BatchID: filter.BatchID})
	if err != nil {
		s.logger.Error("failed to count invoices", "error", err)
		return nil, common.ToStatus(err)
	}

	list := make([]any, 0, len(invs))
	for _, inv := range invs {
		list = append(list, invoiceMap(inv))
	}
	s.logger.Info("invoices listed", "count", len(list), "total", total)
	return respond(map[string]any{"invoices": list, "total": total})
}

// IngestPath queues one file for background processing. Request: {path, force?}.
func (s *InvoiceService) IngestPath(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.scanner == nil || s.queue == nil {
		return nil, status.Error(codes.FailedPrecondition, "ingest queue is not running")
	}
	f := req.GetFields()
	path := strings.TrimSpace(f["path"].GetStringValue())
	if err := common.ValidateAndReturnError(common.NewValidator().Field("path", path, common.Required)); err != nil {
		s.logger.Error("invalid ingest request", "error", err)
		return nil, err
	}

	doc, err := s.scanner.ScanPath(ctx, path)
	if err != nil {
		s.logger.Error("failed to scan path", "path", path, "error", err)
		if errors.Is(err, common.ErrInvalidInput) {
			return nil, common.InvalidArgumentErrorf("ingest %s: %v", path, err)
		}
		return nil, common.NotFoundError(err.Error())
	}
	job := async.Job{
		Path:        doc.SourcePath,
		ContentHash: doc.HashHex,
		Force:       f["force"].GetBoolValue(),
		TraceID:     common.RequestIDFromContext(ctx),
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		if errors.Is(err, async.ErrQueueClosed) {
			return nil, status.Error(codes.Unavailable, err.Error())
		}
		return nil, status.FromContextError(err).Err()
	}
	return respond(map[string]any{
		"queued":       true,
		"path":         doc.SourcePath,
		"content_hash": doc.HashHex,
	})
}

// GetReport aggregates stored rows. Request: {batch_id?}.
func (s *InvoiceService) GetReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	filter := repository.InvoiceFilter{BatchID: strings.TrimSpace(req.GetFields()["batch_id"].GetStringValue())}
	invs, err := s.invoices.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to load invoices for report", "error", err)
		return nil, common.ToStatus(err)
	}
	return respond(reportMap(report.Build(repository.Rows(invs))))
}

func respond(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return out, nil
}
