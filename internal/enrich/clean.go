package enrich

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	orderDateLayout = "02.01.2006"
	dateTimeLayout  = "2/1/2006,15:04:05"

	// DateTimeFormat is the normalized Date & Time representation.
	DateTimeFormat = "2006-01-02 15:04:05"
)

var amountReplacer = strings.NewReplacer("₹", "", ",", "")

// ParseInvoiceAmount strips the currency symbol and thousands separators from an invoice value.
func ParseInvoiceAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(amountReplacer.Replace(s))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseOrderDate parses a DD.MM.YYYY order date.
func ParseOrderDate(s string) (time.Time, bool) {
	t, err := time.Parse(orderDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// NormalizeDateTime rewrites "DD/MM/YYYY, HH:MM:SS hrs", possibly split over lines, as
// "YYYY-MM-DD HH:MM:SS". It returns "" when the value cannot be parsed.
func NormalizeDateTime(s string) string {
	t, ok := ParseDateTime(s)
	if !ok {
		return ""
	}
	return t.Format(DateTimeFormat)
}

// ParseDateTime parses the raw Date & Time field.
func ParseDateTime(s string) (time.Time, bool) {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	s = strings.TrimSuffix(strings.TrimSuffix(s, "hrs"), "hr")
	s = strings.ReplaceAll(strings.TrimSpace(s), ", ", ",")
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateTimeLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// NormalizeState canonicalizes a place of delivery into a state key.
func NormalizeState(place string) string {
	return strings.ToUpper(strings.TrimSpace(place))
}

func itoa(n int) string { return strconv.Itoa(n) }
