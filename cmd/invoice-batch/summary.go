package main

import (
	"fmt"
	"io"

	"github.com/joseph-ayodele/invoice-tracker/constants"
	"github.com/joseph-ayodele/invoice-tracker/internal/enrich"
	"github.com/joseph-ayodele/invoice-tracker/internal/extract"
)

// summaryColumns are reported per file as found or not found.
var summaryColumns = []string{
	extract.ColOrderNumber,
	extract.ColOrderDate,
	extract.ColPlaceOfDelivery,
	extract.ColInvoiceNumber,
	extract.ColInvoiceValue,
	extract.ColDescription,
	extract.ColHSNCode,
	extract.ColASIN,
	extract.ColSKU,
}

func printSummary(w io.Writer, rows []enrich.Row) {
	for _, row := range rows {
		_, _ = fmt.Fprintf(w, "%s\n", row.Filename)
		if row.Status == constants.ExtractStatusDegraded {
			_, _ = fmt.Fprintf(w, "  ✗ document text unavailable\n")
			continue
		}
		for _, col := range summaryColumns {
			if v := row.Record.Get(col); v != "" {
				_, _ = fmt.Fprintf(w, "  ✓ %s: %s\n", col, v)
			} else {
				_, _ = fmt.Fprintf(w, "  ✗ %s: Not found\n", col)
			}
		}
		_, _ = fmt.Fprintf(w, "  Qty: %d  Profit: %s\n", row.Qty, row.Profit.StringFixed(2))
	}
}
