package server

import (
	"github.com/joseph-ayodele/invoice-tracker/internal/enrich"
	"github.com/joseph-ayodele/invoice-tracker/internal/extract"
	"github.com/joseph-ayodele/invoice-tracker/internal/report"
	"github.com/joseph-ayodele/invoice-tracker/internal/repository"
)

func recordMap(r extract.Record) map[string]any {
	m := make(map[string]any, len(extract.Columns))
	for _, c := range extract.Columns {
		m[c] = r.Get(c)
	}
	return m
}

func rowMap(r enrich.Row) map[string]any {
	m := map[string]any{
		"record":    recordMap(r.Record),
		"qty":       r.Qty,
		"profit":    r.Profit.StringFixed(2),
		"state":     r.State,
		"date_time": r.DateTime,
		"status":    string(r.Status),
	}
	if r.InvoiceAmount.Valid {
		m["invoice_amount"] = r.InvoiceAmount.Decimal.StringFixed(2)
	}
	if !r.OrderDate.IsZero() {
		m["order_date"] = r.OrderDate.Format("2006-01-02")
	}
	return m
}

func invoiceMap(inv repository.Invoice) map[string]any {
	m := rowMap(inv.Row())
	m["batch_id"] = inv.BatchID
	m["source_path"] = inv.SourcePath
	if inv.UpdatedAt.Valid {
		m["updated_at"] = inv.UpdatedAt.Time.Format("2006-01-02T15:04:05Z07:00")
	}
	return m
}

func reportMap(r report.Report) map[string]any {
	missing := map[string]any{}
	for _, m := range r.Overview.Missing {
		missing[m.Column] = m.Count
	}
	states := make([]any, 0, len(r.ByState))
	for _, s := range r.ByState {
		states = append(states, map[string]any{
			"state":   s.State,
			"orders":  s.Orders,
			"revenue": s.Revenue.StringFixed(2),
			"profit":  s.Profit.StringFixed(2),
		})
	}
	months := make([]any, 0, len(r.Monthly))
	for _, m := range r.Monthly {
		months = append(months, map[string]any{
			"label":   m.Label,
			"year":    m.Year,
			"month":   int(m.Month),
			"orders":  m.Orders,
			"revenue": m.Revenue.StringFixed(2),
			"profit":  m.Profit.StringFixed(2),
		})
	}
	products := make([]any, 0, len(r.ByProduct))
	for _, p := range r.ByProduct {
		products = append(products, map[string]any{
			"product":     p.Key,
			"description": p.Description,
			"orders":      p.Orders,
			"qty":         p.Qty,
			"revenue":     p.Revenue.StringFixed(2),
			"profit":      p.Profit.StringFixed(2),
		})
	}
	return map[string]any{
		"overview": map[string]any{
			"records":  r.Overview.Records,
			"degraded": r.Overview.Degraded,
			"revenue":  r.Overview.TotalRevenue.StringFixed(2),
			"profit":   r.Overview.TotalProfit.StringFixed(2),
			"missing":  missing,
		},
		"by_state":   states,
		"monthly":    months,
		"by_product": products,
	}
}
