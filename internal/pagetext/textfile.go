package pagetext

import (
	"fmt"
	"os"
	"strings"

	"github.com/joseph-ayodele/invoice-tracker/constants"
)

// extractTextFile reads pre-extracted text. Form feeds separate pages; a file without
// them is the target page itself.
func (e *Extractor) extractTextFile(path string, page int) (Result, error) {
	res := Result{SourceType: constants.TEXT, Method: "text-file"}
	b, err := os.ReadFile(path)
	if err != nil {
		return res, fmt.Errorf("read text file: %w", err)
	}
	text := string(b)
	if !strings.Contains(text, "\f") {
		res.Text = text
		res.Page = page
		return res, nil
	}
	parts := strings.Split(strings.TrimRight(text, "\f"), "\f")
	res.Pages = len(parts)
	used, warn := clampPage(page, len(parts))
	if warn != "" {
		res.Warnings = append(res.Warnings, warn)
	}
	res.Page = used
	res.Text = parts[used-1]
	return res, nil
}
