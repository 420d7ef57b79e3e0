package extract

import (
	"context"
	"log/slog"
	"path/filepath"
)

// Assembler turns one invoice page into a Record.
type Assembler struct {
	fields *FieldExtractor
	source PageSource
	logger *slog.Logger
}

// NewAssembler creates an Assembler. source may be nil when only FromText is used.
func NewAssembler(source PageSource, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		fields: NewFieldExtractor(nil, logger),
		source: source,
		logger: logger,
	}
}

// WithFields replaces the header field table.
func (a *Assembler) WithFields(fields []Field) *Assembler {
	a.fields = NewFieldExtractor(fields, a.logger)
	return a
}

// FromText extracts every field from page text. It never fails; missing fields are "".
func (a *Assembler) FromText(filename, text string) Record {
	r := EmptyRecord(filename)
	a.fields.Apply(text, &r)

	seg := SegmentDescription(text, a.logger)
	r.Description = seg.Description
	r.HSNCode = seg.HSNCode
	r.ASIN = seg.ASIN
	r.SKU = seg.SKU
	return r
}

// FromDocument reads the invoice page of path and extracts it. The record is always
// returned; when the page text cannot be obtained it is empty apart from the filename
// and the error is a *DocumentError.
func (a *Assembler) FromDocument(ctx context.Context, path string) (Record, error) {
	filename := filepath.Base(path)
	if a.source == nil {
		return EmptyRecord(filename), &DocumentError{Path: path, Err: errNoSource}
	}
	pt, err := a.source.PageText(ctx, path)
	if err != nil {
		return EmptyRecord(filename), &DocumentError{Path: path, Err: err}
	}
	a.logger.Debug("page text ready",
		"file", filename,
		"page", pt.Page,
		"method", pt.Method,
		"chars", len(pt.Text),
		"duration_ms", pt.Duration.Milliseconds(),
	)
	return a.FromText(filename, pt.Text), nil
}
