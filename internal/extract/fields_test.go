package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func lookup(t *testing.T, column, text string) string {
	t.Helper()
	for _, f := range DefaultFields() {
		if f.Column == column {
			return f.Lookup(text)
		}
	}
	t.Fatalf("no field %q", column)
	return ""
}

func TestFieldPatterns(t *testing.T) {
	tests := []struct {
		name   string
		column string
		text   string
		want   string
	}{
		{"order number", ColOrderNumber, "Order Number: 404-1234567-7654321", "404-1234567-7654321"},
		{"order id", ColOrderNumber, "order id 171-5550001-0000001", "171-5550001-0000001"},
		{"order hash", ColOrderNumber, "Order #: ABC-1", "ABC-1"},
		{"order date dotted", ColOrderDate, "Order Date: 02.11.2025", "02.11.2025"},
		{"order date slashed", ColOrderDate, "Order Date 2/11/25", "2/11/25"},
		{"ordered on", ColOrderDate, "Ordered on 7.1.2024", "7.1.2024"},
		{"place of delivery", ColPlaceOfDelivery, "Place of Delivery: TAMIL NADU\nnext", "TAMIL NADU"},
		{"deliver to", ColPlaceOfDelivery, "Deliver to: Kerala ", "Kerala"},
		{"invoice number", ColInvoiceNumber, "Invoice No. IN-77", "IN-77"},
		{"invoice value from total line", ColInvoiceValue, "TOTAL:\n₹65.71\n₹1,380.00", "₹1,380.00"},
		{"invoice value label", ColInvoiceValue, "Invoice Value: 1,380.00", "₹1,380.00"},
		{"transaction id", ColTransactionID, "Payment Transaction ID: 4TrX9KQ2pLm", "4TrX9KQ2pLm"},
		{"utr", ColTransactionID, "UTR No: HDFC0001234", "HDFC0001234"},
		{"mode of payment", ColPaymentMode, "Mode of Payment: NetBanking", "NetBanking"},
		{"payment method", ColPaymentMode, "Payment Method - UPI", "- UPI"},
		{"date and time with hrs", ColDateTime, "Date & Time: 02/11/2025, 12:58:05 hrs", "02/11/2025, 12:58:05 hrs"},
		{"date and time short digits", ColDateTime, "Date and Time: 2/11/2025,9:05:01 hr", "2/11/2025,9:05:01 hr"},
		{"date and time without hrs", ColDateTime, "Date&Time: 2/11/2025, 09:05:01", "2/11/2025, 09:05:01"},
		{"not found", ColOrderNumber, "nothing useful here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lookup(t, tt.column, tt.text))
		})
	}
}

func TestShippingAddressBlock(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "header on its own line",
			text: "Shipping Address :\nRavi Kumar\n12 Lake View Road\nChennai,   600042\nInvoice Details : X",
			want: "Ravi Kumar 12 Lake View Road Chennai, 600042",
		},
		{
			name: "value on header line",
			text: "Ship To: A-1 Residency\nMG Road\n\nBangalore",
			want: "A-1 Residency MG Road",
		},
		{
			name: "stop word after indentation",
			text: "Delivery Address: Flat 4\n    payment due on delivery",
			want: "Flat 4",
		},
		{
			name: "at most five continuation lines",
			text: "Shipping Address: l0\nl1\nl2\nl3\nl4\nl5\nl6",
			want: "l0 l1 l2 l3 l4 l5",
		},
		{
			name: "missing",
			text: "Billing Address: somewhere",
			want: "",
		},
		{
			name: "trailing header with colon keeps the colon",
			text: "Ship To: Flat 9\nShipping Address:",
			want: ":",
		},
		{
			name: "trailing header with colon and line breaks",
			text: "Ship To: Flat 9\nShipping Address:\n\n",
			want: ":",
		},
		{
			name: "trailing header with blank after colon",
			text: "Ship To: Flat 9\nShipping Address: \n",
			want: "",
		},
		{
			name: "trailing header without colon falls through",
			text: "Ship To: Flat 9\nShipping Address\n\n",
			want: "Flat 9 Shipping Address",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lookup(t, ColShippingAddress, tt.text))
		})
	}
}

type constPattern string

func (p constPattern) Find(string) (string, bool) { return string(p), p != "" }

func TestFieldFirstMatchWins(t *testing.T) {
	f := Field{Column: ColSKU, Patterns: []FieldPattern{constPattern(""), constPattern("first"), constPattern("second")}}
	assert.Equal(t, "first", f.Lookup("x"))
}

func TestFieldExtractorApply(t *testing.T) {
	e := NewFieldExtractor(nil, nil)
	r := EmptyRecord("a.pdf")
	e.Apply(samplePage, &r)

	assert.Equal(t, "a.pdf", r.Filename)
	assert.Equal(t, "404-1234567-7654321", r.OrderNumber)
	assert.Equal(t, "02.11.2025", r.OrderDate)
	assert.Equal(t, "TAMIL NADU", r.PlaceOfDelivery)
	assert.Equal(t, "IN-KA-2025-0042", r.InvoiceNumber)
	assert.Equal(t, "₹1,380.00", r.InvoiceValue)
	assert.Equal(t, "4TrX9KQ2pLm", r.TransactionID)
	assert.Equal(t, "NetBanking", r.PaymentMode)
	assert.Equal(t, "02/11/2025, 12:58:05 hrs", r.DateTime)
	assert.Equal(t, "Ravi Kumar 12 Lake View Road Chennai, TAMIL NADU, 600042 IN", r.ShippingAddress)
	assert.Empty(t, r.Description)
}
