package extract

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"
)

// FieldPattern locates one field value in page text.
// ok is true when the pattern matched, even if the captured value is blank.
type FieldPattern interface {
	Find(text string) (value string, ok bool)
}

// regexPattern returns the first capture group of the leftmost match.
type regexPattern struct {
	re *regexp.Regexp
}

func rx(expr string) FieldPattern {
	return regexPattern{re: regexp.MustCompile(`(?i)` + expr)}
}

func (p regexPattern) Find(text string) (string, bool) {
	m := p.re.FindStringSubmatch(text)
	if m == nil || len(m) < 2 {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// blockPattern matches a header followed by the rest of its line and up to maxLines
// continuation lines. A continuation stops at an empty line or at a line that starts
// with one of the stop words.
type blockPattern struct {
	header    *regexp.Regexp
	stopWords []string
	maxLines  int
}

var addressStopWords = []string{"order", "invoice", "payment", "mode", "date", "total"}

func block(header string) FieldPattern {
	return blockPattern{
		header:    regexp.MustCompile(`(?i)` + header + `(\s*:?)`),
		stopWords: addressStopWords,
		maxLines:  5,
	}
}

func (p blockPattern) Find(text string) (string, bool) {
	for _, loc := range p.header.FindAllStringSubmatchIndex(text, -1) {
		rest := strings.TrimLeftFunc(text[loc[1]:], unicode.IsSpace)
		if rest == "" {
			return trailingHeader(text[loc[2]:])
		}
		first, tail, _ := strings.Cut(rest, "\n")
		lines := []string{first}
		for n := 0; n < p.maxLines; n++ {
			next, more, found := strings.Cut(tail, "\n")
			if next == "" || p.stops(tail) {
				break
			}
			lines = append(lines, next)
			if !found {
				break
			}
			tail = more
		}
		return strings.Join(strings.Fields(strings.Join(lines, "\n")), " "), true
	}
	return "", false
}

// trailingHeader handles a header with nothing but whitespace and an optional colon
// after it. The value is the first non-newline run the line pattern can still take:
// the colon itself when only line breaks follow it, otherwise blank. A header followed
// by line breaks alone does not match.
func trailingHeader(tail string) (string, bool) {
	before, after, colon := strings.Cut(tail, ":")
	notNewline := func(r rune) bool { return r != '\n' }
	switch {
	case colon && !strings.ContainsFunc(after, notNewline):
		return ":", true
	case colon, strings.ContainsFunc(before, notNewline):
		return "", true
	default:
		return "", false
	}
}

func (p blockPattern) stops(s string) bool {
	s = strings.ToLower(strings.TrimLeftFunc(s, unicode.IsSpace))
	for _, w := range p.stopWords {
		if strings.HasPrefix(s, w) {
			return true
		}
	}
	return false
}

// Field is one output column with its patterns in priority order.
type Field struct {
	Column   string
	Patterns []FieldPattern
	Format   func(string) string
}

func currencyPrefixed(v string) string { return "₹" + v }

// DefaultFields are the header fields of the supported invoice layout, most specific pattern first.
func DefaultFields() []Field {
	return []Field{
		{
			Column: ColOrderNumber,
			Patterns: []FieldPattern{
				rx(`Order\s+(?:Number|No\.?|#)\s*:?\s*([A-Z0-9\-]+)`),
				rx(`Order\s+ID\s*:?\s*([A-Z0-9\-]+)`),
				rx(`Order\s*#?\s*:?\s*([A-Z0-9\-]+)`),
			},
		},
		{
			Column: ColOrderDate,
			Patterns: []FieldPattern{
				rx(`Order\s+Date\s*:?\s*(\d{2}\.\d{2}\.\d{4})`),
				rx(`Order\s+Date\s*:?\s*(\d{1,2}[./]\d{1,2}[./]\d{2,4})`),
				rx(`Ordered\s+on\s*:?\s*(\d{1,2}[./]\d{1,2}[./]\d{2,4})`),
			},
		},
		{
			Column: ColPlaceOfDelivery,
			Patterns: []FieldPattern{
				rx(`Place\s+of\s+Delivery\s*:?\s*([^\n]+)`),
				rx(`Delivery\s+(?:Location|Place)\s*:?\s*([^\n]+)`),
				rx(`Deliver\s+to\s*:?\s*([^\n]+)`),
			},
		},
		{
			Column: ColInvoiceNumber,
			Patterns: []FieldPattern{
				rx(`Invoice\s+(?:Number|No\.?|#)\s*:?\s*([A-Z0-9\-]+)`),
				rx(`Invoice\s+ID\s*:?\s*([A-Z0-9\-]+)`),
				rx(`Invoice\s*#?\s*:?\s*([A-Z0-9\-]+)`),
			},
		},
		{
			Column: ColInvoiceValue,
			Patterns: []FieldPattern{
				rx(`TOTAL\s*:?\s*[₹$€£]?\s*[\d,]+\.?\d*\s*[₹$€£]?\s*([\d,]+\.?\d*)`),
				rx(`Grand\s+Total\s*:?\s*[₹$€£]?\s*([\d,]+\.?\d*)`),
				rx(`Total\s+Amount\s*:?\s*[₹$€£]?\s*([\d,]+\.?\d*)`),
				rx(`Invoice\s+(?:Value|Amount|Total)\s*:?\s*[₹$€£]?\s*([\d,]+\.?\d*)`),
			},
			Format: currencyPrefixed,
		},
		{
			Column: ColTransactionID,
			Patterns: []FieldPattern{
				rx(`(?:Payment\s+)?Transaction\s+(?:ID|No\.?|#)\s*:?\s*([A-Z0-9\-]+)`),
				rx(`Transaction\s+Reference\s*:?\s*([A-Z0-9\-]+)`),
				rx(`Payment\s+ID\s*:?\s*([A-Z0-9\-]+)`),
				rx(`UTR\s*(?:Number|No\.?)?\s*:?\s*([A-Z0-9\-]+)`),
			},
		},
		{
			Column: ColPaymentMode,
			Patterns: []FieldPattern{
				rx(`Mode\s+of\s+Payment\s*:?\s*([^\n]+)`),
				rx(`Payment\s+(?:Mode|Method)\s*:?\s*([^\n]+)`),
				rx(`Payment\s+Type\s*:?\s*([^\n]+)`),
			},
		},
		{
			Column: ColDateTime,
			Patterns: []FieldPattern{
				rx(`Date\s+(?:&|and)\s+Time\s*:?\s*(\d{2}/\d{2}/\d{4},\s*\d{2}:\d{2}:\d{2}\s*hrs?)`),
				rx(`Date\s+(?:&|and)\s+Time\s*:?\s*(\d{1,2}/\d{1,2}/\d{4},\s*\d{1,2}:\d{2}:\d{2}\s*hrs?)`),
				rx(`Date\s*&\s*Time\s*:?\s*(\d{1,2}/\d{1,2}/\d{4},\s*\d{1,2}:\d{2}:\d{2})`),
			},
		},
		{
			Column: ColShippingAddress,
			Patterns: []FieldPattern{
				block(`Shipping\s+Address`),
				block(`Delivery\s+Address`),
				block(`Ship\s+To`),
			},
		},
	}
}

// FieldExtractor resolves every header field independently against the same text.
type FieldExtractor struct {
	fields []Field
	logger *slog.Logger
}

func NewFieldExtractor(fields []Field, logger *slog.Logger) *FieldExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if fields == nil {
		fields = DefaultFields()
	}
	return &FieldExtractor{fields: fields, logger: logger}
}

// Lookup returns the value for a single field: the first pattern that matches wins.
func (f Field) Lookup(text string) string {
	for _, p := range f.Patterns {
		v, ok := p.Find(text)
		if !ok {
			continue
		}
		if f.Format != nil {
			v = f.Format(v)
		}
		return v
	}
	return ""
}

// Apply fills the header fields of r from text.
func (e *FieldExtractor) Apply(text string, r *Record) {
	for _, f := range e.fields {
		v := f.Lookup(text)
		if v == "" {
			e.logger.Debug("field not found", "file", r.Filename, "field", f.Column)
		}
		r.Set(f.Column, v)
	}
}
