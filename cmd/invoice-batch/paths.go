package main

import (
	"log/slog"
	"path/filepath"

	"github.com/joseph-ayodele/invoice-tracker/internal/ingest"
)

// batchPaths lists every invoice file found by the scan, in scan order. Files that could
// not be read are kept so the batch emits an empty record for each of them.
func batchPaths(docs []ingest.Document, logger *slog.Logger) []string {
	paths := make([]string, 0, len(docs))
	for _, d := range docs {
		switch {
		case d.Err != "":
			if !ingest.AllowedExt(filepath.Ext(d.SourcePath)) {
				logger.Warn("skipping unreadable entry", "path", d.SourcePath, "error", d.Err)
				continue
			}
			logger.Warn("unreadable invoice file", "path", d.SourcePath, "error", d.Err)
		case d.Deduplicated:
			logger.Warn("duplicate content, processing anyway", "path", d.SourcePath)
		}
		paths = append(paths, d.SourcePath)
	}
	return paths
}
