package enrich

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/invoice-tracker/constants"
	"github.com/joseph-ayodele/invoice-tracker/internal/extract"
	"github.com/joseph-ayodele/invoice-tracker/internal/profit"
)

// Extra columns appended after the extracted fields.
const (
	ColQty    = "Qty"
	ColProfit = "Profit"
)

// Columns is the header of an enriched export.
var Columns = append(append([]string{}, extract.Columns...), ColQty, ColProfit)

// AnalysisColumns are the cleaned and derived values kept alongside each row.
var AnalysisColumns = []string{
	"Invoice Amount", "Order Date (ISO)", "Date & Time (ISO)",
	"Year", "Month", "Day", "DayOfWeek", "WeekOfYear", "State", "Status",
}

// Row is an extracted record plus quantity, profit and the values derived from it.
// The embedded record is a copy; enrichment never changes the extraction result.
type Row struct {
	extract.Record
	SourcePath string // file the record was read from; empty for inline text

	Status        constants.ExtractStatus
	Qty           int
	Profit        decimal.Decimal
	InvoiceAmount decimal.NullDecimal
	OrderDate     time.Time // zero when unparseable
	DateTime      string    // YYYY-MM-DD HH:MM:SS or ""
	Year          int
	Month         int
	Day           int
	DayOfWeek     string
	WeekOfYear    int
	State         string
}

// Values returns the export values in Columns order.
func (r Row) Values() []string {
	return append(r.Record.Values(), itoa(r.Qty), r.Profit.StringFixed(2))
}

// AnalysisValues returns the derived values in AnalysisColumns order.
func (r Row) AnalysisValues() []any {
	amount := any("")
	if r.InvoiceAmount.Valid {
		amount = r.InvoiceAmount.Decimal.InexactFloat64()
	}
	orderDate := ""
	if !r.OrderDate.IsZero() {
		orderDate = r.OrderDate.Format(time.DateOnly)
	}
	return []any{
		amount, orderDate, r.DateTime,
		r.Year, r.Month, r.Day, r.DayOfWeek, r.WeekOfYear, r.State, string(r.Status),
	}
}

// Enricher attaches quantity and profit to extracted records.
type Enricher struct {
	calc   *profit.Calculator
	qty    Quantities
	logger *slog.Logger
}

func NewEnricher(calc *profit.Calculator, qty Quantities, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{calc: calc, qty: qty, logger: logger}
}

// Enrich builds the row for one record, taking the quantity from the loaded quantity file.
func (e *Enricher) Enrich(rec extract.Record, status constants.ExtractStatus) Row {
	raw := e.qty.Lookup(rec.OrderNumber)
	if raw == nil && rec.OrderNumber != "" && len(e.qty) > 0 {
		e.logger.Debug("no quantity for order, using default", "order", rec.OrderNumber)
	}
	return e.EnrichQty(rec, status, raw)
}

// EnrichQty builds the row for one record with an explicit raw quantity.
func (e *Enricher) EnrichQty(rec extract.Record, status constants.ExtractStatus, raw any) Row {
	row := Row{
		Record:   rec,
		Status:   status,
		Qty:      profit.CoerceQuantity(raw),
		Profit:   decimal.Zero,
		DateTime: NormalizeDateTime(rec.DateTime),
		State:    NormalizeState(rec.PlaceOfDelivery),
	}
	if e.calc != nil {
		b := e.calc.Breakdown(rec.Description, raw)
		row.Qty = b.Qty
		row.Profit = b.Profit
	}
	if amt, ok := ParseInvoiceAmount(rec.InvoiceValue); ok {
		row.InvoiceAmount = decimal.NewNullDecimal(amt)
	}
	if d, ok := ParseOrderDate(rec.OrderDate); ok {
		row.OrderDate = d
		row.Year = d.Year()
		row.Month = int(d.Month())
		row.Day = d.Day()
		row.DayOfWeek = d.Weekday().String()
		_, row.WeekOfYear = d.ISOWeek()
	}
	return row
}

// EnrichAll enriches records in order.
func (e *Enricher) EnrichAll(recs []extract.Record, statuses []constants.ExtractStatus) []Row {
	rows := make([]Row, len(recs))
	for i, rec := range recs {
		st := constants.ExtractStatusOK
		if i < len(statuses) {
			st = statuses[i]
		}
		rows[i] = e.Enrich(rec, st)
	}
	return rows
}
