package ingest

import (
	"context"
	"time"
)

// Document is one invoice file found on disk.
type Document struct {
	SourcePath   string
	Filename     string
	FileExt      string
	Size         int64
	HashHex      string
	ModTime      time.Time
	Deduplicated bool // same content as an earlier document in the scan
	Err          string
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Scanner is the behavior the batch and daemon binaries depend on.
type Scanner interface {
	// ScanPath inspects a single invoice file.
	ScanPath(ctx context.Context, path string) (Document, error)
	// ScanDirectory finds all invoice files under root, in lexical path order.
	ScanDirectory(ctx context.Context, root string, skipHidden bool) ([]Document, DirStats, error)
}
