// Package report aggregates enriched invoice rows into the overview, state, monthly and
// product summaries used by the exporters and the dbhealth tool.
package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/invoice-tracker/constants"
	"github.com/joseph-ayodele/invoice-tracker/internal/enrich"
	"github.com/joseph-ayodele/invoice-tracker/internal/extract"
)

// UnknownState groups rows without a place of delivery.
const UnknownState = "UNKNOWN"

type MissingCount struct {
	Column string
	Count  int
}

type Overview struct {
	Records      int
	Degraded     int
	TotalRevenue decimal.Decimal
	TotalProfit  decimal.Decimal
	Missing      []MissingCount // extract.Columns order
}

type StateSummary struct {
	State   string
	Orders  int
	Revenue decimal.Decimal
	Profit  decimal.Decimal
}

type MonthSummary struct {
	Year    int
	Month   time.Month
	Label   string // "Jan 2025"
	Orders  int
	Revenue decimal.Decimal
	Profit  decimal.Decimal
}

type ProductSummary struct {
	Key         string // ASIN when present, otherwise the description
	Description string
	Orders      int
	Qty         int
	Revenue     decimal.Decimal
	Profit      decimal.Decimal
}

// Report bundles every summary computed over one set of rows.
type Report struct {
	Overview  Overview
	ByState   []StateSummary
	Monthly   []MonthSummary
	ByProduct []ProductSummary
}

// Build computes every summary.
func Build(rows []enrich.Row) Report {
	return Report{
		Overview:  BuildOverview(rows),
		ByState:   ByState(rows),
		Monthly:   Monthly(rows),
		ByProduct: ByProduct(rows),
	}
}

func revenue(r enrich.Row) decimal.Decimal {
	if r.InvoiceAmount.Valid {
		return r.InvoiceAmount.Decimal
	}
	return decimal.Zero
}

// BuildOverview counts records, sums revenue and profit and counts empty values per column.
func BuildOverview(rows []enrich.Row) Overview {
	o := Overview{
		Records:      len(rows),
		TotalRevenue: decimal.Zero,
		TotalProfit:  decimal.Zero,
		Missing:      make([]MissingCount, len(extract.Columns)),
	}
	for i, c := range extract.Columns {
		o.Missing[i].Column = c
	}
	for _, r := range rows {
		if r.Status == constants.ExtractStatusDegraded {
			o.Degraded++
		}
		o.TotalRevenue = o.TotalRevenue.Add(revenue(r))
		o.TotalProfit = o.TotalProfit.Add(r.Profit)
		for i, v := range r.Record.Values() {
			if v == "" {
				o.Missing[i].Count++
			}
		}
	}
	return o
}

// ByState groups orders by state, highest revenue first.
func ByState(rows []enrich.Row) []StateSummary {
	idx := map[string]int{}
	var out []StateSummary
	for _, r := range rows {
		state := r.State
		if state == "" {
			state = UnknownState
		}
		i, ok := idx[state]
		if !ok {
			i = len(out)
			idx[state] = i
			out = append(out, StateSummary{State: state, Revenue: decimal.Zero, Profit: decimal.Zero})
		}
		out[i].Orders++
		out[i].Revenue = out[i].Revenue.Add(revenue(r))
		out[i].Profit = out[i].Profit.Add(r.Profit)
	}
	slices.SortStableFunc(out, func(a, b StateSummary) int {
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.State, b.State)
	})
	return out
}

// Monthly groups orders by order month in chronological order. Rows without an order
// date are left out.
func Monthly(rows []enrich.Row) []MonthSummary {
	type key struct {
		year  int
		month time.Month
	}
	idx := map[key]int{}
	var out []MonthSummary
	for _, r := range rows {
		if r.OrderDate.IsZero() {
			continue
		}
		k := key{r.OrderDate.Year(), r.OrderDate.Month()}
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, MonthSummary{
				Year:    k.year,
				Month:   k.month,
				Label:   r.OrderDate.Format("Jan 2006"),
				Revenue: decimal.Zero,
				Profit:  decimal.Zero,
			})
		}
		out[i].Orders++
		out[i].Revenue = out[i].Revenue.Add(revenue(r))
		out[i].Profit = out[i].Profit.Add(r.Profit)
	}
	slices.SortFunc(out, func(a, b MonthSummary) int {
		if c := cmp.Compare(a.Year, b.Year); c != 0 {
			return c
		}
		return cmp.Compare(a.Month, b.Month)
	})
	return out
}

// ByProduct groups orders by ASIN (or description), most profitable first. Rows with
// neither are skipped.
func ByProduct(rows []enrich.Row) []ProductSummary {
	idx := map[string]int{}
	var out []ProductSummary
	for _, r := range rows {
		key := r.ASIN
		if key == "" {
			key = r.Description
		}
		if key == "" {
			continue
		}
		i, ok := idx[key]
		if !ok {
			i = len(out)
			idx[key] = i
			out = append(out, ProductSummary{Key: key, Description: r.Description, Revenue: decimal.Zero, Profit: decimal.Zero})
		}
		out[i].Orders++
		out[i].Qty += r.Qty
		out[i].Revenue = out[i].Revenue.Add(revenue(r))
		out[i].Profit = out[i].Profit.Add(r.Profit)
	}
	slices.SortStableFunc(out, func(a, b ProductSummary) int {
		if c := b.Profit.Cmp(a.Profit); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}
