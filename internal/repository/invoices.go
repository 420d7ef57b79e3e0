package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/invoice-tracker/constants"
	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/enrich"
	"github.com/joseph-ayodele/invoice-tracker/internal/extract"
)

// Invoice is one stored, cleaned invoice row.
type Invoice struct {
	ID                   int64               `sql:"id"`
	SourcePath           string              `sql:"source_path"`
	PDFFilename          string              `sql:"pdf_filename"`
	OrderNumber          string              `sql:"order_number"`
	OrderDate            sql.NullTime        `sql:"order_date"`
	PlaceOfDelivery      string              `sql:"place_of_delivery"`
	InvoiceNumber        string              `sql:"invoice_number"`
	InvoiceValue         decimal.NullDecimal `sql:"invoice_value"`
	Description          string              `sql:"description"`
	Qty                  int64               `sql:"qty"`
	HSNCode              string              `sql:"hsn_code"`
	ASIN                 string              `sql:"asin"`
	SKU                  string              `sql:"sku"`
	PaymentTransactionID string              `sql:"payment_transaction_id"`
	ModeOfPayment        string              `sql:"mode_of_payment"`
	DateTime             sql.NullTime        `sql:"date_time"`
	ShippingAddress      string              `sql:"shipping_address"`
	Year                 sql.NullInt64       `sql:"year"`
	Month                sql.NullInt64       `sql:"month"`
	Day                  sql.NullInt64       `sql:"day"`
	DayOfWeek            string              `sql:"day_of_week"`
	WeekOfYear           sql.NullInt64       `sql:"week_of_year"`
	State                string              `sql:"state"`
	Profit               decimal.Decimal     `sql:"profit"`
	ExtractStatus        string              `sql:"extract_status"`
	BatchID              string              `sql:"batch_id"`
	UpdatedAt            sql.NullTime        `sql:"updated_at"`
}

var invoiceColumns = []string{
	"source_path", "pdf_filename", "order_number", "order_date", "place_of_delivery", "invoice_number",
	"invoice_value", "description", "qty", "hsn_code", "asin", "sku",
	"payment_transaction_id", "mode_of_payment", "date_time", "shipping_address",
	"year", "month", "day", "day_of_week", "week_of_year", "state", "profit",
	"extract_status", "batch_id", "updated_at",
}

func (inv *Invoice) values() []any {
	return []any{
		inv.SourcePath, inv.PDFFilename, inv.OrderNumber, inv.OrderDate, inv.PlaceOfDelivery, inv.InvoiceNumber,
		inv.InvoiceValue, inv.Description, inv.Qty, inv.HSNCode, inv.ASIN, inv.SKU,
		inv.PaymentTransactionID, inv.ModeOfPayment, inv.DateTime, inv.ShippingAddress,
		inv.Year, inv.Month, inv.Day, inv.DayOfWeek, inv.WeekOfYear, inv.State, inv.Profit,
		inv.ExtractStatus, inv.BatchID, inv.UpdatedAt,
	}
}

func nullInt(v int, valid bool) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: valid}
}

// InvoiceFromRow converts an enriched row into its stored form. Rows without a source
// path, such as inline text, are keyed by their file name.
func InvoiceFromRow(row enrich.Row, batchID string, now time.Time) Invoice {
	hasDate := !row.OrderDate.IsZero()
	source := row.SourcePath
	if source == "" {
		source = row.Filename
	}
	inv := Invoice{
		SourcePath:           source,
		PDFFilename:          row.Filename,
		OrderNumber:          row.OrderNumber,
		OrderDate:            sql.NullTime{Time: row.OrderDate, Valid: hasDate},
		PlaceOfDelivery:      row.PlaceOfDelivery,
		InvoiceNumber:        row.InvoiceNumber,
		InvoiceValue:         row.InvoiceAmount,
		Description:          row.Description,
		Qty:                  int64(row.Qty),
		HSNCode:              row.HSNCode,
		ASIN:                 row.ASIN,
		SKU:                  row.SKU,
		PaymentTransactionID: row.TransactionID,
		ModeOfPayment:        row.PaymentMode,
		ShippingAddress:      row.ShippingAddress,
		Year:                 nullInt(row.Year, hasDate),
		Month:                nullInt(row.Month, hasDate),
		Day:                  nullInt(row.Day, hasDate),
		DayOfWeek:            row.DayOfWeek,
		WeekOfYear:           nullInt(row.WeekOfYear, hasDate),
		State:                row.State,
		Profit:               row.Profit,
		ExtractStatus:        string(row.Status),
		BatchID:              batchID,
		UpdatedAt:            sql.NullTime{Time: now.UTC(), Valid: true},
	}
	if inv.ExtractStatus == "" {
		inv.ExtractStatus = string(constants.ExtractStatusOK)
	}
	if t, err := time.Parse(enrich.DateTimeFormat, row.DateTime); err == nil {
		inv.DateTime = sql.NullTime{Time: t, Valid: true}
	}
	return inv
}

// InvoiceFilter narrows List and Count. Zero values match everything.
type InvoiceFilter struct {
	State   string
	Status  string
	BatchID string
	Limit   int
	Offset  int
}

type InvoiceRepository interface {
	UpsertMany(ctx context.Context, invoices []Invoice) (int, error)
	List(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)
	Count(ctx context.Context, filter InvoiceFilter) (int, error)
	GetByFilename(ctx context.Context, filename string) (*Invoice, error)
}

type invoiceRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewInvoiceRepository(db *DB, logger *slog.Logger) InvoiceRepository {
	return &invoiceRepository{db: db, logger: logger}
}

// UpsertMany writes invoices in one transaction, replacing rows read from the same source path.
func (r *invoiceRepository) UpsertMany(ctx context.Context, invoices []Invoice) (int, error) {
	if len(invoices) == 0 {
		return 0, nil
	}
	tx, err := r.db.drv.Tx(ctx)
	if err != nil {
		r.logger.Error("failed to begin transaction", "error", err)
		return 0, dbError("begin transaction", err)
	}
	for i := range invoices {
		q, args := entsql.Dialect(r.db.Dialect()).
			Insert(InvoicesTable).
			Columns(invoiceColumns...).
			Values(invoices[i].values()...).
			OnConflict(
				entsql.ConflictColumns("source_path"),
				entsql.ResolveWithNewValues(),
			).
			Query()
		if err := tx.Exec(ctx, q, args, nil); err != nil {
			_ = tx.Rollback()
			r.logger.Error("failed to upsert invoice", "source_path", invoices[i].SourcePath, "error", err)
			return 0, dbError("upsert invoice "+invoices[i].SourcePath, err)
		}
	}
	if err := tx.Commit(); err != nil {
		r.logger.Error("failed to commit invoices", "error", err)
		return 0, dbError("commit invoices", err)
	}
	r.logger.Info("invoices stored", "count", len(invoices))
	return len(invoices), nil
}

func (r *invoiceRepository) where(s *entsql.Selector, f InvoiceFilter) *entsql.Selector {
	var preds []*entsql.Predicate
	if f.State != "" {
		preds = append(preds, entsql.EQ(s.C("state"), f.State))
	}
	if f.Status != "" {
		preds = append(preds, entsql.EQ(s.C("extract_status"), f.Status))
	}
	if f.BatchID != "" {
		preds = append(preds, entsql.EQ(s.C("batch_id"), f.BatchID))
	}
	if len(preds) > 0 {
		s.Where(entsql.And(preds...))
	}
	return s
}

func (r *invoiceRepository) List(ctx context.Context, filter InvoiceFilter) ([]Invoice, error) {
	t := entsql.Table(InvoicesTable)
	s := entsql.Dialect(r.db.Dialect()).
		Select(append([]string{"id"}, invoiceColumns...)...).
		From(t)
	s = r.where(s, filter).OrderBy(s.C("pdf_filename"), s.C("source_path"))
	if filter.Limit > 0 {
		s.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		s.Offset(filter.Offset)
	}

	q, args := s.Query()
	var rows entsql.Rows
	if err := r.db.drv.Query(ctx, q, args, &rows); err != nil {
		r.logger.Error("failed to list invoices", "error", err)
		return nil, dbError("list invoices", err)
	}
	defer rows.Close()

	var out []Invoice
	if err := entsql.ScanSlice(rows, &out); err != nil {
		r.logger.Error("failed to scan invoices", "error", err)
		return nil, dbError("scan invoices", err)
	}
	return out, nil
}

func (r *invoiceRepository) Count(ctx context.Context, filter InvoiceFilter) (int, error) {
	s := entsql.Dialect(r.db.Dialect()).Select().From(entsql.Table(InvoicesTable))
	s = r.where(s, filter)
	s.Count()

	q, args := s.Query()
	var rows entsql.Rows
	if err := r.db.drv.Query(ctx, q, args, &rows); err != nil {
		r.logger.Error("failed to count invoices", "error", err)
		return 0, dbError("count invoices", err)
	}
	defer rows.Close()
	n, err := entsql.ScanInt(rows)
	if err != nil {
		return 0, dbError("count invoices", err)
	}
	return n, nil
}

// GetByFilename returns the stored row for filename. When several source paths share the
// name the first path in sort order wins.
func (r *invoiceRepository) GetByFilename(ctx context.Context, filename string) (*Invoice, error) {
	t := entsql.Table(InvoicesTable)
	s := entsql.Dialect(r.db.Dialect()).
		Select(append([]string{"id"}, invoiceColumns...)...).
		From(t)
	s.Where(entsql.EQ(s.C("pdf_filename"), filename)).OrderBy(s.C("source_path")).Limit(1)

	q, args := s.Query()
	var rows entsql.Rows
	if err := r.db.drv.Query(ctx, q, args, &rows); err != nil {
		r.logger.Error("failed to get invoice", "pdf_filename", filename, "error", err)
		return nil, dbError("get invoice", err)
	}
	defer rows.Close()

	var out []Invoice
	if err := entsql.ScanSlice(rows, &out); err != nil {
		return nil, dbError("scan invoice", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("invoice %q: %w", filename, common.ErrNotFound)
	}
	return &out[0], nil
}

// Row rebuilds the enriched row for reporting. Raw extraction strings that are not
// stored (Invoice Value text, Date & Time text) are rendered from the cleaned values.
func (inv Invoice) Row() enrich.Row {
	rec := extract.EmptyRecord(inv.PDFFilename)
	rec.OrderNumber = inv.OrderNumber
	rec.PlaceOfDelivery = inv.PlaceOfDelivery
	rec.InvoiceNumber = inv.InvoiceNumber
	rec.Description = inv.Description
	rec.HSNCode = inv.HSNCode
	rec.ASIN = inv.ASIN
	rec.SKU = inv.SKU
	rec.TransactionID = inv.PaymentTransactionID
	rec.PaymentMode = inv.ModeOfPayment
	rec.ShippingAddress = inv.ShippingAddress

	row := enrich.Row{
		SourcePath:    inv.SourcePath,
		Status:        constants.ExtractStatus(inv.ExtractStatus),
		Qty:           int(inv.Qty),
		Profit:        inv.Profit,
		InvoiceAmount: inv.InvoiceValue,
		DayOfWeek:     inv.DayOfWeek,
		State:         inv.State,
		Year:          int(inv.Year.Int64),
		Month:         int(inv.Month.Int64),
		Day:           int(inv.Day.Int64),
		WeekOfYear:    int(inv.WeekOfYear.Int64),
	}
	if inv.OrderDate.Valid {
		d := inv.OrderDate.Time
		row.OrderDate = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		rec.OrderDate = row.OrderDate.Format("02.01.2006")
	}
	if inv.InvoiceValue.Valid {
		rec.InvoiceValue = "₹" + inv.InvoiceValue.Decimal.StringFixed(2)
	}
	if inv.DateTime.Valid {
		row.DateTime = inv.DateTime.Time.Format(enrich.DateTimeFormat)
		rec.DateTime = row.DateTime
	}
	row.Record = rec
	return row
}

// Rows converts stored invoices for reporting.
func Rows(invoices []Invoice) []enrich.Row {
	out := make([]enrich.Row, len(invoices))
	for i, inv := range invoices {
		out[i] = inv.Row()
	}
	return out
}
