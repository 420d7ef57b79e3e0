package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/enrich"
	"github.com/joseph-ayodele/invoice-tracker/internal/report"
)

// Sheet names of the XLSX workbook.
const (
	SheetInvoices  = "Invoices"
	SheetOverview  = "Overview"
	SheetByState   = "By State"
	SheetMonthly   = "Monthly"
	SheetByProduct = "By Product"
)

// Service writes enriched rows and their reports to CSV and XLSX.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// WriteCSV writes the header and one line per row in enrich.Columns order.
func (s *Service) WriteCSV(w io.Writer, rows []enrich.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(enrich.Columns); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.Values()); err != nil {
			return fmt.Errorf("csv row %s: %w", r.Filename, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes rows to path, replacing any existing file.
func (s *Service) WriteCSVFile(path string, rows []enrich.Row) error {
	var buf bytes.Buffer
	if err := s.WriteCSV(&buf, rows); err != nil {
		return common.NewAppError("EXPORT_ERROR", "write csv", fmt.Errorf("%w: %w", common.ErrExport, err))
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return common.NewAppError("EXPORT_ERROR", "write "+path, fmt.Errorf("%w: %w", common.ErrExport, err))
	}
	s.logger.Info("export.csv.ok", "path", path, "rows", len(rows))
	return nil
}

// XLSX returns a workbook holding the invoice rows and every report sheet.
func (s *Service) XLSX(rows []enrich.Row, rep report.Report) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetInvoices); err != nil {
		return nil, err
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	sheets := []struct {
		name   string
		header []string
		rows   [][]any
		widths map[string]float64
	}{
		{SheetInvoices, append(append([]string{}, enrich.Columns...), enrich.AnalysisColumns...), invoiceRows(rows),
			map[string]float64{"A": 24, "G": 60, "N": 48}},
		{SheetOverview, []string{"Metric", "Value"}, overviewRows(rep.Overview),
			map[string]float64{"A": 32, "B": 16}},
		{SheetByState, []string{"State", "Orders", "Revenue", "Profit"}, stateRows(rep.ByState),
			map[string]float64{"A": 24}},
		{SheetMonthly, []string{"Month", "Year", "Month No", "Orders", "Revenue", "Profit"}, monthRows(rep.Monthly),
			map[string]float64{"A": 12}},
		{SheetByProduct, []string{"Product", "Description", "Orders", "Qty", "Revenue", "Profit"}, productRows(rep.ByProduct),
			map[string]float64{"A": 20, "B": 60}},
	}
	for _, sh := range sheets {
		if idx, _ := f.GetSheetIndex(sh.name); idx == -1 {
			if _, err := f.NewSheet(sh.name); err != nil {
				return nil, err
			}
		}
		if err := writeSheet(f, sh.name, sh.header, sh.rows, header); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", sh.name, err)
		}
		for col, w := range sh.widths {
			_ = f.SetColWidth(sh.name, col, col, w)
		}
	}
	active, _ := f.GetSheetIndex(SheetInvoices)
	f.SetActiveSheet(active)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"states", len(rep.ByState),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteXLSXFile builds the workbook and writes it to path.
func (s *Service) WriteXLSXFile(path string, rows []enrich.Row, rep report.Report) error {
	b, err := s.XLSX(rows, rep)
	if err != nil {
		return common.NewAppError("EXPORT_ERROR", "build xlsx", fmt.Errorf("%w: %w", common.ErrExport, err))
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return common.NewAppError("EXPORT_ERROR", "write "+path, fmt.Errorf("%w: %w", common.ErrExport, err))
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any, style int) error {
	hdr := make([]any, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &hdr); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, style); err != nil {
		return err
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return err
		}
	}
	return nil
}

func invoiceRows(rows []enrich.Row) [][]any {
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		vals := r.Record.Values()
		line := make([]any, 0, len(enrich.Columns)+len(enrich.AnalysisColumns))
		for _, v := range vals {
			line = append(line, truncate(v, 32767))
		}
		line = append(line, r.Qty, r.Profit.InexactFloat64())
		line = append(line, r.AnalysisValues()...)
		out = append(out, line)
	}
	return out
}

func overviewRows(o report.Overview) [][]any {
	out := [][]any{
		{"Records", o.Records},
		{"Degraded", o.Degraded},
		{"Total Revenue", o.TotalRevenue.InexactFloat64()},
		{"Total Profit", o.TotalProfit.InexactFloat64()},
	}
	for _, m := range o.Missing {
		out = append(out, []any{"Missing " + m.Column, m.Count})
	}
	return out
}

func stateRows(states []report.StateSummary) [][]any {
	out := make([][]any, 0, len(states))
	for _, s := range states {
		out = append(out, []any{s.State, s.Orders, s.Revenue.InexactFloat64(), s.Profit.InexactFloat64()})
	}
	return out
}

func monthRows(months []report.MonthSummary) [][]any {
	out := make([][]any, 0, len(months))
	for _, m := range months {
		out = append(out, []any{m.Label, m.Year, int(m.Month), m.Orders, m.Revenue.InexactFloat64(), m.Profit.InexactFloat64()})
	}
	return out
}

func productRows(products []report.ProductSummary) [][]any {
	out := make([][]any, 0, len(products))
	for _, p := range products {
		out = append(out, []any{p.Key, p.Description, p.Orders, p.Qty, p.Revenue.InexactFloat64(), p.Profit.InexactFloat64()})
	}
	return out
}

// truncate caps s at n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	n -= len("…")
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "…"
}
