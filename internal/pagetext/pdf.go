package pagetext

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/invoice-tracker/constants"
)

var errNoTextLayer = errors.New("page has no text layer")

func (e *Extractor) extractPDF(ctx context.Context, path string, page int) (Result, error) {
	res := Result{SourceType: constants.PDF, Method: "pdf-text"}

	text, used, pages, err := readPDFPage(path, page)
	res.Pages = pages
	res.Page = used
	if used != page && pages > 0 {
		_, w := clampPage(page, pages)
		res.Warnings = append(res.Warnings, w)
	}
	if err == nil && strings.TrimSpace(text) != "" {
		res.Text = text
		return res, nil
	}
	if err == nil {
		err = errNoTextLayer
	}
	if e.cfg.DisableFallback {
		return res, fmt.Errorf("read pdf %s: %w", path, err)
	}

	e.logger.Info("falling back to pdftotext", "path", path, "page", page, "reason", err)
	res.Warnings = append(res.Warnings, "pdf text layer: "+err.Error())
	target := page
	if res.Page > 0 {
		target = res.Page
	}
	out, warn, ferr := e.pdftotext(ctx, path, target)
	if _, otherPage := exitReason(ferr); ferr != nil && target > 1 && otherPage {
		// page count unknown: retry on the first page
		res.Warnings = append(res.Warnings, warn...)
		res.Warnings = append(res.Warnings, fmt.Sprintf("page %d unavailable, reading page 1", target))
		target = 1
		out, warn, ferr = e.pdftotext(ctx, path, target)
	}
	res.Warnings = append(res.Warnings, warn...)
	if ferr != nil {
		return res, fmt.Errorf("pdftotext %s: %w", path, ferr)
	}
	res.Text = out
	res.Page = target
	res.Method = "pdftotext"
	return res, nil
}

// readPDFPage returns the text of page (1-based) rebuilt row by row, the page actually
// read and the page count.
func readPDFPage(path string, page int) (text string, used, pages int, err error) {
	defer func() {
		// the pdf reader panics on some malformed files
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", 0, 0, err
	}
	defer f.Close()

	pages = r.NumPage()
	if pages == 0 {
		return "", 0, 0, errors.New("pdf has no pages")
	}
	used, _ = clampPage(page, pages)
	p := r.Page(used)
	if p.V.IsNull() {
		return "", used, pages, errNoTextLayer
	}
	rows, err := p.GetTextByRow()
	if err != nil {
		return "", used, pages, err
	}
	var b strings.Builder
	for _, row := range rows {
		line := joinGlyphs(row.Content)
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	return b.String(), used, pages, nil
}

// joinGlyphs rebuilds words from positioned glyph runs, inserting a space wherever the
// horizontal gap is wider than a fraction of the font size.
func joinGlyphs(texts []pdf.Text) string {
	var b strings.Builder
	for i, t := range texts {
		if i > 0 {
			prev := texts[i-1]
			gap := t.X - (prev.X + prev.W)
			if gap > 0.25*max(prev.FontSize, 1) && !strings.HasSuffix(b.String(), " ") && !strings.HasPrefix(t.S, " ") {
				b.WriteByte(' ')
			}
		}
		b.WriteString(t.S)
	}
	return strings.TrimSpace(b.String())
}

func (e *Extractor) pdftotext(ctx context.Context, path string, page int) (string, []string, error) {
	// pdftotext -f N -l N -layout -enc UTF-8 <path> -
	p := strconv.Itoa(page)
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-f", p, "-l", p, "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		var warns []string
		if s := strings.TrimSpace(string(errb)); s != "" {
			warns = append(warns, s)
		}
		if reason, _ := exitReason(err); reason != "" {
			warns = append(warns, fmt.Sprintf("pdftotext page %d: %s", page, reason))
		}
		return "", warns, err
	}
	return strings.TrimRight(string(out), "\f"), nil, nil
}
