package extract

// Column headers in output order.
const (
	ColFilename        = "PDF Filename"
	ColOrderNumber     = "Order Number"
	ColOrderDate       = "Order Date"
	ColPlaceOfDelivery = "Place of Delivery"
	ColInvoiceNumber   = "Invoice Number"
	ColInvoiceValue    = "Invoice Value"
	ColDescription     = "Description"
	ColHSNCode         = "HSN Code"
	ColASIN            = "ASIN"
	ColSKU             = "SKU"
	ColTransactionID   = "Payment Transaction ID"
	ColPaymentMode     = "Mode of Payment"
	ColDateTime        = "Date & Time"
	ColShippingAddress = "Shipping Address"
)

// Columns is the fixed field order of every Record.
var Columns = []string{
	ColFilename,
	ColOrderNumber,
	ColOrderDate,
	ColPlaceOfDelivery,
	ColInvoiceNumber,
	ColInvoiceValue,
	ColDescription,
	ColHSNCode,
	ColASIN,
	ColSKU,
	ColTransactionID,
	ColPaymentMode,
	ColDateTime,
	ColShippingAddress,
}

// Record is the flat result for one invoice document. A field that was not found is "".
type Record struct {
	Filename        string `json:"pdf_filename"`
	OrderNumber     string `json:"order_number"`
	OrderDate       string `json:"order_date"`
	PlaceOfDelivery string `json:"place_of_delivery"`
	InvoiceNumber   string `json:"invoice_number"`
	InvoiceValue    string `json:"invoice_value"`
	Description     string `json:"description"`
	HSNCode         string `json:"hsn_code"`
	ASIN            string `json:"asin"`
	SKU             string `json:"sku"`
	TransactionID   string `json:"payment_transaction_id"`
	PaymentMode     string `json:"mode_of_payment"`
	DateTime        string `json:"date_time"`
	ShippingAddress string `json:"shipping_address"`
}

// EmptyRecord returns a record with only the filename set.
func EmptyRecord(filename string) Record {
	return Record{Filename: filename}
}

// Values returns the field values in Columns order.
func (r Record) Values() []string {
	return []string{
		r.Filename,
		r.OrderNumber,
		r.OrderDate,
		r.PlaceOfDelivery,
		r.InvoiceNumber,
		r.InvoiceValue,
		r.Description,
		r.HSNCode,
		r.ASIN,
		r.SKU,
		r.TransactionID,
		r.PaymentMode,
		r.DateTime,
		r.ShippingAddress,
	}
}

// Get returns the value of a column by header name.
func (r Record) Get(column string) string {
	for i, c := range Columns {
		if c == column {
			return r.Values()[i]
		}
	}
	return ""
}

// Set assigns a column by header name. Unknown columns are ignored.
func (r *Record) Set(column, value string) {
	switch column {
	case ColFilename:
		r.Filename = value
	case ColOrderNumber:
		r.OrderNumber = value
	case ColOrderDate:
		r.OrderDate = value
	case ColPlaceOfDelivery:
		r.PlaceOfDelivery = value
	case ColInvoiceNumber:
		r.InvoiceNumber = value
	case ColInvoiceValue:
		r.InvoiceValue = value
	case ColDescription:
		r.Description = value
	case ColHSNCode:
		r.HSNCode = value
	case ColASIN:
		r.ASIN = value
	case ColSKU:
		r.SKU = value
	case ColTransactionID:
		r.TransactionID = value
	case ColPaymentMode:
		r.PaymentMode = value
	case ColDateTime:
		r.DateTime = value
	case ColShippingAddress:
		r.ShippingAddress = value
	}
}

// IsEmpty reports whether nothing but the filename is set.
func (r Record) IsEmpty() bool {
	return r == EmptyRecord(r.Filename)
}

// FromValues rebuilds a record from values in Columns order. Missing trailing values stay "".
func FromValues(values []string) Record {
	v := make([]string, len(Columns))
	copy(v, values)
	return Record{
		Filename:        v[0],
		OrderNumber:     v[1],
		OrderDate:       v[2],
		PlaceOfDelivery: v[3],
		InvoiceNumber:   v[4],
		InvoiceValue:    v[5],
		Description:     v[6],
		HSNCode:         v[7],
		ASIN:            v[8],
		SKU:             v[9],
		TransactionID:   v[10],
		PaymentMode:     v[11],
		DateTime:        v[12],
		ShippingAddress: v[13],
	}
}
