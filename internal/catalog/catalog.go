package catalog

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Row is one line of the product cost table as configured.
type Row struct {
	Name         string          `json:"name"`
	Purchase     decimal.Decimal `json:"purchase"`
	Referral     decimal.Decimal `json:"referral"`
	Packing      decimal.Decimal `json:"packing"`
	SellingPrice decimal.Decimal `json:"sp_before_gst"`
}

// Entry is a known product with per-unit cost components.
type Entry struct {
	Name         string
	Purchase     decimal.Decimal
	Referral     decimal.Decimal
	Packing      decimal.Decimal
	SellingPrice decimal.Decimal
	WeightKg     float64
}

// Catalog is the immutable name -> entry table. Build it once and share the pointer.
type Catalog struct {
	entries map[string]Entry
	keys    []string
}

// NormalizeName produces the match key used for a product name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Build creates a catalog from the configured table. Weights are derived from the names.
func Build(rows []Row) (*Catalog, error) {
	c := &Catalog{
		entries: make(map[string]Entry, len(rows)),
		keys:    make([]string, 0, len(rows)),
	}
	for i, r := range rows {
		key := NormalizeName(r.Name)
		if key == "" {
			return nil, fmt.Errorf("catalog row %d: empty product name", i)
		}
		if _, dup := c.entries[key]; dup {
			return nil, fmt.Errorf("catalog row %d: duplicate product %q", i, key)
		}
		c.entries[key] = Entry{
			Name:         key,
			Purchase:     r.Purchase,
			Referral:     r.Referral,
			Packing:      r.Packing,
			SellingPrice: r.SellingPrice,
			WeightKg:     ExtractWeight(key),
		}
		c.keys = append(c.keys, key)
	}
	// longest name first; ties keep table order
	sort.SliceStable(c.keys, func(i, j int) bool {
		return utf8.RuneCountInString(c.keys[i]) > utf8.RuneCountInString(c.keys[j])
	})
	return c, nil
}

// Keys returns the match keys ordered by descending length.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Lookup returns the entry for a match key.
func (c *Catalog) Lookup(key string) (Entry, bool) {
	e, ok := c.entries[key]
	return e, ok
}

// Len reports the number of products.
func (c *Catalog) Len() int { return len(c.entries) }
