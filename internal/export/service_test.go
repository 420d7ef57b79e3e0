package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-tracker/constants"
	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/enrich"
	"github.com/joseph-ayodele/invoice-tracker/internal/extract"
	"github.com/joseph-ayodele/invoice-tracker/internal/report"
)

func rows() []enrich.Row {
	rec := extract.EmptyRecord("a.pdf")
	rec.OrderNumber = "403-1"
	rec.Description = "Cashew Nuts, 1kg, \"W320\""
	rec.ShippingAddress = "12 Main Road\nBengaluru"
	return []enrich.Row{
		{
			Record:        rec,
			Status:        constants.ExtractStatusOK,
			Qty:           2,
			Profit:        decimal.RequireFromString("286.46"),
			InvoiceAmount: decimal.NewNullDecimal(decimal.NewFromInt(2760)),
			OrderDate:     time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
			State:         "KARNATAKA",
		},
		{Record: extract.EmptyRecord("b.pdf"), Status: constants.ExtractStatusDegraded, Qty: 1, Profit: decimal.Zero},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewService(nil).WriteCSV(&buf, rows()))

	got, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, enrich.Columns, got[0])
	assert.Equal(t, "a.pdf", got[1][0])
	assert.Equal(t, `Cashew Nuts, 1kg, "W320"`, got[1][6])
	assert.Equal(t, "12 Main Road\nBengaluru", got[1][13])
	assert.Equal(t, []string{"2", "286.46"}, got[1][14:])
	assert.Equal(t, "b.pdf", got[2][0])
	assert.Equal(t, "0.00", got[2][15])
}

func TestWriteCSVFile(t *testing.T) {
	svc := NewService(nil)
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, svc.WriteCSVFile(path, rows()))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "PDF Filename,"))

	err = svc.WriteCSVFile(filepath.Join(t.TempDir(), "missing", "out.csv"), rows())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExport)
	var appErr *common.AppError
	assert.True(t, errors.As(err, &appErr))
}

func TestXLSX(t *testing.T) {
	rs := rows()
	b, err := NewService(nil).XLSX(rs, report.Build(rs))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetInvoices, SheetOverview, SheetByState, SheetMonthly, SheetByProduct}, f.GetSheetList())

	inv, err := f.GetRows(SheetInvoices)
	require.NoError(t, err)
	require.Len(t, inv, 3)
	assert.Equal(t, "PDF Filename", inv[0][0])
	assert.Equal(t, "Status", inv[0][len(inv[0])-1])
	assert.Equal(t, "a.pdf", inv[1][0])

	states, err := f.GetRows(SheetByState)
	require.NoError(t, err)
	require.Len(t, states, 3)
	assert.Equal(t, "KARNATAKA", states[1][0])
	assert.Equal(t, report.UnknownState, states[2][0])

	monthly, err := f.GetRows(SheetMonthly)
	require.NoError(t, err)
	require.Len(t, monthly, 2)
	assert.Equal(t, "Jan 2025", monthly[1][0])

	overview, err := f.GetRows(SheetOverview)
	require.NoError(t, err)
	assert.Equal(t, []string{"Records", "2"}, overview[1])
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 5))
	assert.Equal(t, "₹…", truncate("₹₹₹", 7))
}
