package enrich

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	ErrMissingHeader = errors.New("quantity file: missing header")
	ErrMissingColumn = errors.New("quantity file: required column not found")
)

const (
	qtyOrderColumn = "order number"
	qtyValueColumn = "qty"
)

// Quantities maps an order number to the raw quantity string supplied for it.
type Quantities map[string]string

// Lookup returns the raw quantity for an order, or nil when none was supplied.
func (q Quantities) Lookup(orderNumber string) any {
	if q == nil {
		return nil
	}
	v, ok := q[strings.TrimSpace(orderNumber)]
	if !ok {
		return nil
	}
	return v
}

// LoadQuantities reads an "Order Number,Qty" CSV file. An empty path yields no quantities.
func LoadQuantities(path string) (Quantities, error) {
	if path == "" {
		return Quantities{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open quantity file: %w", err)
	}
	defer f.Close()
	return ReadQuantities(f)
}

// ReadQuantities parses quantity CSV content. Header names are matched case-insensitively
// and a UTF-8 BOM is skipped. Later rows win for a repeated order number.
func ReadQuantities(r io.Reader) (Quantities, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		_, _ = br.Discard(3)
	}

	cr := csv.NewReader(br)
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read quantity header: %w", err)
	}
	orderIdx, qtyIdx := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case qtyOrderColumn:
			orderIdx = i
		case qtyValueColumn:
			qtyIdx = i
		}
	}
	if orderIdx < 0 || qtyIdx < 0 {
		return nil, ErrMissingColumn
	}

	q := Quantities{}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read quantity row: %w", err)
		}
		if orderIdx >= len(rec) || qtyIdx >= len(rec) {
			continue
		}
		order := strings.TrimSpace(rec[orderIdx])
		if order == "" {
			continue
		}
		q[order] = strings.TrimSpace(rec[qtyIdx])
	}
	return q, nil
}
