package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/invoice-tracker/internal/catalog"
	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/core"
	"github.com/joseph-ayodele/invoice-tracker/internal/core/async"
	"github.com/joseph-ayodele/invoice-tracker/internal/enrich"
	"github.com/joseph-ayodele/invoice-tracker/internal/extract"
	"github.com/joseph-ayodele/invoice-tracker/internal/ingest"
	"github.com/joseph-ayodele/invoice-tracker/internal/pagetext"
	"github.com/joseph-ayodele/invoice-tracker/internal/profit"
	"github.com/joseph-ayodele/invoice-tracker/internal/repository"
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
Payment Transaction ID: abc123
Date & Time: 05/01/2025, 10:00:00 hrs
Invoice Value: 1,380.00
Mode of Payment: UPI
`

type recordingQueue struct {
	jobs []async.Job
	err  error
}

func (q *recordingQueue) Enqueue(_ context.Context, job async.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *recordingQueue) Shutdown(context.Context) {}

type harness struct {
	client   *InvoiceServiceClient
	conn     *grpc.ClientConn
	queue    *recordingQueue
	invoices repository.InvoiceRepository
	proc     *core.Processor
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newHarness(t *testing.T, cfg common.ServerConfig, withQueue bool) *harness {
	t.Helper()
	ctx := context.Background()
	logger := quiet()

	db, err := repository.OpenInMemory(ctx, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(logger) })
	require.NoError(t, db.Migrate(ctx))
	invoices := repository.NewInvoiceRepository(db, logger)

	cat, err := catalog.Default()
	require.NoError(t, err)
	source := extract.NewPageTextAdapter(pagetext.NewExtractor(pagetext.Config{DisableFallback: true}, logger))
	enricher := enrich.NewEnricher(profit.NewCalculator(cat, profit.WithLogger(logger)), nil, logger)
	proc := core.NewProcessor(extract.NewAssembler(source, logger), enricher, logger, core.WithInvoiceRepository(invoices))

	h := &harness{invoices: invoices, proc: proc}
	var svc *InvoiceService
	if withQueue {
		h.queue = &recordingQueue{}
		svc = NewInvoiceService(proc, invoices, ingest.NewFSScanner(logger), h.queue, logger)
	} else {
		svc = NewInvoiceService(proc, invoices, nil, nil, logger)
	}

	lis := bufconn.Listen(1 << 20)
	srv, _ := NewGRPCServer(svc, cfg, logger)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	h.conn = conn
	h.client = NewInvoiceServiceClient(conn)
	return h
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestExtractText(t *testing.T) {
	h := newHarness(t, common.ServerConfig{}, false)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := h.client.ExtractText(ctx, mustStruct(t, map[string]any{
		"filename": "a.txt",
		"text":     invoiceText,
		"qty":      2,
	}))
	require.NoError(t, err)

	out := resp.AsMap()
	rec, ok := out["record"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a.txt", rec[extract.ColFilename])
	assert.Equal(t, "404-1111111-0000001", rec[extract.ColOrderNumber])
	assert.Equal(t, float64(2), out["qty"])
	assert.Equal(t, "KARNATAKA", out["state"])
	assert.Equal(t, "2025-01-05 10:00:00", out["date_time"])
	assert.Equal(t, "1380.00", out["invoice_amount"])
	assert.NotEmpty(t, out["profit"])
}

func TestExtractTextRequiresText(t *testing.T) {
	h := newHarness(t, common.ServerConfig{}, false)
	_, err := h.client.ExtractText(context.Background(), mustStruct(t, map[string]any{"filename": "a.txt"}))
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestListInvoicesAndReport(t *testing.T) {
	h := newHarness(t, common.ServerConfig{}, false)
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte(invoiceText), 0o644))
	_, err := h.proc.ProcessBatch(ctx, []string{path})
	require.NoError(t, err)

	resp, err := h.client.ListInvoices(ctx, mustStruct(t, map[string]any{"state": "karnataka"}))
	require.NoError(t, err)
	out := resp.AsMap()
	assert.Equal(t, float64(1), out["total"])
	list, ok := out["invoices"].([]any)
	require.True(t, ok)
	require.Len(t, list, 1)
	first := list[0].(map[string]any)
	assert.NotEmpty(t, first["batch_id"])

	resp, err = h.client.ListInvoices(ctx, mustStruct(t, map[string]any{"state": "GOA"}))
	require.NoError(t, err)
	assert.Equal(t, float64(0), resp.AsMap()["total"])

	_, err = h.client.ListInvoices(ctx, mustStruct(t, map[string]any{"limit": -1}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	resp, err = h.client.GetReport(ctx, mustStruct(t, map[string]any{}))
	require.NoError(t, err)
	rep := resp.AsMap()
	overview := rep["overview"].(map[string]any)
	assert.Equal(t, float64(1), overview["records"])
	assert.Equal(t, "1380.00", overview["revenue"])
	states := rep["by_state"].([]any)
	require.Len(t, states, 1)
	assert.Equal(t, "KARNATAKA", states[0].(map[string]any)["state"])
}

func TestIngestPath(t *testing.T) {
	t.Run("queues scanned file", func(t *testing.T) {
		h := newHarness(t, common.ServerConfig{}, true)
		path := filepath.Join(t.TempDir(), "a.txt")
		require.NoError(t, os.WriteFile(path, []byte(invoiceText), 0o644))

		ctx := metadata.AppendToOutgoingContext(context.Background(), "x-request-id", "req-42")
		resp, err := h.client.IngestPath(ctx, mustStruct(t, map[string]any{"path": path}))
		require.NoError(t, err)
		assert.Equal(t, true, resp.AsMap()["queued"])
		require.Len(t, h.queue.jobs, 1)
		assert.Equal(t, path, h.queue.jobs[0].Path)
		assert.Equal(t, "req-42", h.queue.jobs[0].TraceID)
		assert.Len(t, h.queue.jobs[0].ContentHash, 64)
	})

	t.Run("bad extension", func(t *testing.T) {
		h := newHarness(t, common.ServerConfig{}, true)
		path := filepath.Join(t.TempDir(), "a.docx")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		_, err := h.client.IngestPath(context.Background(), mustStruct(t, map[string]any{"path": path}))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("queue closed", func(t *testing.T) {
		h := newHarness(t, common.ServerConfig{}, true)
		h.queue.err = async.ErrQueueClosed
		path := filepath.Join(t.TempDir(), "a.txt")
		require.NoError(t, os.WriteFile(path, []byte(invoiceText), 0o644))
		_, err := h.client.IngestPath(context.Background(), mustStruct(t, map[string]any{"path": path}))
		assert.Equal(t, codes.Unavailable, status.Code(err))
	})

	t.Run("no queue", func(t *testing.T) {
		h := newHarness(t, common.ServerConfig{}, false)
		_, err := h.client.IngestPath(context.Background(), mustStruct(t, map[string]any{"path": "/tmp/a.txt"}))
		assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	})
}

func TestRateLimit(t *testing.T) {
	h := newHarness(t, common.ServerConfig{RateLimit: 0.001, RateBurst: 1}, false)
	req := mustStruct(t, map[string]any{"text": invoiceText})

	_, err := h.client.ExtractText(context.Background(), req)
	require.NoError(t, err)
	_, err = h.client.ExtractText(context.Background(), req)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}

func TestHealth(t *testing.T) {
	h := newHarness(t, common.ServerConfig{}, false)
	resp, err := healthpb.NewHealthClient(h.conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
