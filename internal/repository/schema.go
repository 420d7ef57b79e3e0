package repository

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table names.
const (
	InvoicesTable    = "invoices"
	ExtractJobsTable = "extract_job"
)

var decimalType = map[string]string{
	dialect.Postgres: "numeric(12,2)",
	dialect.SQLite:   "decimal(12,2)",
}

var textType = map[string]string{dialect.Postgres: "text"}

func str(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeString, Default: ""}
}

func nullable(c *schema.Column) *schema.Column {
	c.Nullable = true
	c.Default = nil
	return c
}

var (
	invoicesTable = func() *schema.Table {
		t := schema.NewTable(InvoicesTable)
		t.AddPrimary(&schema.Column{Name: "id", Type: field.TypeInt64, Increment: true})
		t.AddColumn(&schema.Column{Name: "source_path", Type: field.TypeString, SchemaType: textType, Unique: true})
		t.AddColumn(&schema.Column{Name: "pdf_filename", Type: field.TypeString})
		t.AddColumn(str("order_number"))
		t.AddColumn(nullable(&schema.Column{Name: "order_date", Type: field.TypeTime,
			SchemaType: map[string]string{dialect.Postgres: "date", dialect.SQLite: "date"}}))
		t.AddColumn(str("place_of_delivery"))
		t.AddColumn(str("invoice_number"))
		t.AddColumn(nullable(&schema.Column{Name: "invoice_value", Type: field.TypeFloat64, SchemaType: decimalType}))
		t.AddColumn(&schema.Column{Name: "description", Type: field.TypeString, SchemaType: textType, Default: ""})
		t.AddColumn(&schema.Column{Name: "qty", Type: field.TypeInt, Default: 1})
		t.AddColumn(str("hsn_code"))
		t.AddColumn(str("asin"))
		t.AddColumn(str("sku"))
		t.AddColumn(str("payment_transaction_id"))
		t.AddColumn(str("mode_of_payment"))
		t.AddColumn(nullable(&schema.Column{Name: "date_time", Type: field.TypeTime}))
		t.AddColumn(&schema.Column{Name: "shipping_address", Type: field.TypeString, SchemaType: textType, Default: ""})
		t.AddColumn(nullable(&schema.Column{Name: "year", Type: field.TypeInt}))
		t.AddColumn(nullable(&schema.Column{Name: "month", Type: field.TypeInt}))
		t.AddColumn(nullable(&schema.Column{Name: "day", Type: field.TypeInt}))
		t.AddColumn(str("day_of_week"))
		t.AddColumn(nullable(&schema.Column{Name: "week_of_year", Type: field.TypeInt}))
		t.AddColumn(str("state"))
		t.AddColumn(&schema.Column{Name: "profit", Type: field.TypeFloat64, SchemaType: decimalType, Default: 0})
		t.AddColumn(&schema.Column{Name: "extract_status", Type: field.TypeString, Default: "OK"})
		t.AddColumn(str("batch_id"))
		t.AddColumn(&schema.Column{Name: "updated_at", Type: field.TypeTime})
		t.AddIndex("invoices_pdf_filename", false, []string{"pdf_filename"})
		t.AddIndex("invoices_state", false, []string{"state"})
		t.AddIndex("invoices_batch_id", false, []string{"batch_id"})
		return t
	}()

	extractJobsTable = func() *schema.Table {
		t := schema.NewTable(ExtractJobsTable)
		t.AddPrimary(&schema.Column{Name: "id", Type: field.TypeString, Size: 36})
		t.AddColumn(&schema.Column{Name: "source_path", Type: field.TypeString, SchemaType: textType})
		t.AddColumn(&schema.Column{Name: "content_hash", Type: field.TypeString, Default: ""})
		t.AddColumn(&schema.Column{Name: "status", Type: field.TypeString})
		t.AddColumn(&schema.Column{Name: "extract_status", Type: field.TypeString, Default: ""})
		t.AddColumn(&schema.Column{Name: "started_at", Type: field.TypeTime})
		t.AddColumn(nullable(&schema.Column{Name: "finished_at", Type: field.TypeTime}))
		t.AddColumn(nullable(&schema.Column{Name: "error_message", Type: field.TypeString, SchemaType: textType}))
		t.AddIndex("extract_job_status", false, []string{"status"})
		return t
	}()
)

// Tables lists every table owned by the service.
func Tables() []*schema.Table {
	return []*schema.Table{invoicesTable, extractJobsTable}
}

// Migrate creates or updates the schema.
func (db *DB) Migrate(ctx context.Context) error {
	m, err := schema.NewMigrate(db.drv)
	if err != nil {
		return fmt.Errorf("create migrate: %w", err)
	}
	if err := m.Create(ctx, Tables()...); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
