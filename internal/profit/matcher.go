package profit

import (
	"strings"

	"github.com/joseph-ayodele/invoice-tracker/internal/catalog"
)

// Matcher finds the catalog entries referenced by a free-text description.
// An entry appears once per occurrence.
type Matcher interface {
	Match(description string) []catalog.Entry
}

// LongestMatch scans catalog keys longest-first and blanks every claimed occurrence,
// so a short name inside a longer one is not counted again.
type LongestMatch struct {
	Catalog *catalog.Catalog
}

func (m LongestMatch) Match(description string) []catalog.Entry {
	if m.Catalog == nil || description == "" {
		return nil
	}
	text := strings.ToLower(description)
	var out []catalog.Entry
	for _, key := range m.Catalog.Keys() {
		n := strings.Count(text, key)
		if n == 0 {
			continue
		}
		entry, _ := m.Catalog.Lookup(key)
		for i := 0; i < n; i++ {
			out = append(out, entry)
		}
		text = strings.ReplaceAll(text, key, " ")
	}
	return out
}
