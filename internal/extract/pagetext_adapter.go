package extract

import (
	"context"

	"github.com/joseph-ayodele/invoice-tracker/internal/pagetext"
)

type PageTextAdapter struct {
	e *pagetext.Extractor
}

func NewPageTextAdapter(e *pagetext.Extractor) *PageTextAdapter {
	return &PageTextAdapter{e: e}
}

func (a *PageTextAdapter) PageText(ctx context.Context, path string) (PageText, error) {
	r, err := a.e.Extract(ctx, path)
	return PageText{
		Text:     r.Text,
		Page:     r.Page,
		Pages:    r.Pages,
		Method:   r.Method,
		Duration: r.Duration,
		Warnings: r.Warnings,
	}, err
}
