package pagetext

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/invoice-tracker/constants"
)

// DefaultPage is the invoice page carrying the order details in the supported layout.
const DefaultPage = 2

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Page      int    // 1-based target page, default DefaultPage

	// DisableFallback skips pdftotext when the embedded text layer is empty or unreadable.
	DisableFallback bool
}

// Result is the text of the selected page.
type Result struct {
	Text       string
	Page       int // page actually read
	Pages      int // 0 when unknown
	SourceType string
	Method     string // "pdf-text" | "pdftotext" | "text-file"
	Duration   time.Duration
	Warnings   []string
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Page <= 0 {
		cfg.Page = DefaultPage
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// Page returns the configured target page.
func (e *Extractor) Page() int { return e.cfg.Page }

// Extract reads the configured target page of path.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	return e.ExtractPage(ctx, path, e.cfg.Page)
}

// ExtractPage picks a strategy based on file extension. A document shorter than page
// yields its first page with a warning.
func (e *Extractor) ExtractPage(ctx context.Context, path string, page int) (Result, error) {
	start := time.Now()
	if page <= 0 {
		page = e.cfg.Page
	}
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("reading page text", "path", path, "page", page, "ext", ext)

	var (
		res Result
		err error
	)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res, err = e.extractPDF(ctx, path, page)
	case constants.TEXT:
		res, err = e.extractTextFile(path, page)
	default:
		e.logger.Error("unsupported extension", "extension", ext)
		return Result{}, fmt.Errorf("unsupported extension: %q", ext)
	}
	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}
	res.Text = Normalize(res.Text)
	for _, w := range res.Warnings {
		e.logger.Warn("page text warning", "path", path, "warning", w)
	}
	return res, nil
}

// clampPage maps a requested page onto a document with pages pages.
func clampPage(page, pages int) (int, string) {
	if pages > 0 && page > pages {
		return 1, fmt.Sprintf("document has only %d page(s), reading page 1", pages)
	}
	return page, ""
}
