package extract

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// PageSource is Stage 1: file -> text of the invoice page.
type PageSource interface {
	PageText(ctx context.Context, path string) (PageText, error)
}

type PageText struct {
	Text     string
	Page     int
	Pages    int
	Method   string // "pdf-text" | "pdftotext" | "text-file"
	Duration time.Duration
	Warnings []string
}

// DocumentError reports why a document produced a degraded record.
type DocumentError struct {
	Path string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document %s: %v", e.Path, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }

var errNoSource = errors.New("no page source configured")
